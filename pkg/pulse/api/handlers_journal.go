package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/garunski/pulse/pkg/pulse/errors"
)

func (h *Handler) ListJournal(w http.ResponseWriter, r *http.Request) {
	if h.journal == nil {
		WriteError(w, h.logger, fmt.Errorf("%w: journal not available", apperrors.ErrJournal))
		return
	}

	filters, err := ParseJournalQueryParams(r)
	if err != nil {
		WriteError(w, h.logger, fmt.Errorf("%w: invalid query parameters: %w", apperrors.ErrInvalid, err))
		return
	}

	entries, err := h.journal.ListEntries(filters)
	if err != nil {
		h.logger.Error(err, "failed to list journal")
		WriteError(w, h.logger, err)
		return
	}

	WriteJSONResponse(w, h.logger, http.StatusOK, JournalResponse{Entries: entries})
}

func (h *Handler) GetEventJournal(w http.ResponseWriter, r *http.Request) {
	if h.journal == nil {
		WriteError(w, h.logger, fmt.Errorf("%w: journal not available", apperrors.ErrJournal))
		return
	}

	id := chi.URLParam(r, "id")
	entries, err := h.journal.GetByEvent(id)
	if err != nil {
		WriteError(w, h.logger, err)
		return
	}

	WriteJSONResponse(w, h.logger, http.StatusOK, JournalResponse{Entries: entries})
}

func (h *Handler) CleanupJournal(w http.ResponseWriter, r *http.Request) {
	beforeStr := r.URL.Query().Get("before")
	if beforeStr == "" {
		WriteError(w, h.logger, fmt.Errorf("%w: before parameter is required", apperrors.ErrMissingParameter))
		return
	}

	before, err := time.Parse(time.RFC3339, beforeStr)
	if err != nil {
		WriteError(w, h.logger, fmt.Errorf("%w: invalid before parameter format (use RFC3339): %w", apperrors.ErrInvalidParameter, err))
		return
	}

	if h.journal == nil {
		WriteError(w, h.logger, fmt.Errorf("%w: journal not available", apperrors.ErrJournal))
		return
	}

	n, err := h.journal.CleanupOld(before)
	if err != nil {
		h.logger.Error(err, "failed to cleanup journal")
		WriteError(w, h.logger, err)
		return
	}

	WriteJSONResponse(w, h.logger, http.StatusOK, CleanupResponse{Deleted: n, Message: "Journal cleaned up successfully"})
}
