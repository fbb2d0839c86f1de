package api

import (
	"errors"
	"net/http"

	apperrors "github.com/garunski/pulse/pkg/pulse/errors"
)

func httpStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	if errors.Is(err, apperrors.ErrNotFound) || errors.Is(err, apperrors.ErrUnknownPanel) {
		return http.StatusNotFound
	}
	if errors.Is(err, apperrors.ErrInvalid) || errors.Is(err, apperrors.ErrInvalidYAML) ||
		errors.Is(err, apperrors.ErrMissingParameter) || errors.Is(err, apperrors.ErrInvalidParameter) ||
		errors.Is(err, apperrors.ErrInvalidConfig) {
		return http.StatusBadRequest
	}
	if errors.Is(err, apperrors.ErrJournal) {
		return http.StatusServiceUnavailable
	}
	if errors.Is(err, apperrors.ErrStorage) {
		return http.StatusInternalServerError
	}

	return http.StatusInternalServerError
}

func extractErrorCode(err error) string {
	if err == nil {
		return "unknown_error"
	}

	if errors.Is(err, apperrors.ErrUnknownPanel) {
		return "unknown_panel"
	}
	if errors.Is(err, apperrors.ErrNotFound) {
		return "not_found"
	}
	if errors.Is(err, apperrors.ErrMissingParameter) {
		return "missing_parameter"
	}
	if errors.Is(err, apperrors.ErrInvalidParameter) {
		return "invalid_parameter"
	}
	if errors.Is(err, apperrors.ErrInvalidConfig) {
		return "invalid_config"
	}
	if errors.Is(err, apperrors.ErrInvalid) {
		return "validation_error"
	}
	if errors.Is(err, apperrors.ErrInvalidYAML) {
		return "invalid_yaml"
	}
	if errors.Is(err, apperrors.ErrJournal) {
		return "journal_unavailable"
	}
	if errors.Is(err, apperrors.ErrStorage) {
		return "storage_error"
	}

	return "internal_error"
}
