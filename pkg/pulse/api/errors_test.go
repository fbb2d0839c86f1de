package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	apperrors "github.com/garunski/pulse/pkg/pulse/errors"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
		code string
	}{
		{nil, http.StatusOK, "unknown_error"},
		{fmt.Errorf("%w: x", apperrors.ErrUnknownPanel), http.StatusNotFound, "unknown_panel"},
		{fmt.Errorf("%w: x", apperrors.ErrNotFound), http.StatusNotFound, "not_found"},
		{fmt.Errorf("%w: x", apperrors.ErrMissingParameter), http.StatusBadRequest, "missing_parameter"},
		{fmt.Errorf("%w: x", apperrors.ErrInvalidParameter), http.StatusBadRequest, "invalid_parameter"},
		{apperrors.WrapInvalidConfig(errors.New("capacity"), "simulator config"), http.StatusBadRequest, "invalid_config"},
		{apperrors.WrapInvalidYAML(errors.New("bad"), "parse"), http.StatusBadRequest, "invalid_yaml"},
		{fmt.Errorf("%w: x", apperrors.ErrJournal), http.StatusServiceUnavailable, "journal_unavailable"},
		{apperrors.WrapStorage(errors.New("disk"), "set"), http.StatusInternalServerError, "storage_error"},
		{errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		if got := httpStatus(tt.err); got != tt.want {
			t.Errorf("httpStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
		if got := extractErrorCode(tt.err); got != tt.code {
			t.Errorf("extractErrorCode(%v) = %s, want %s", tt.err, got, tt.code)
		}
	}
}
