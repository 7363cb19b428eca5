package http

import (
	"fmt"
	"io"
	"log/slog"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/lorrc/repair-desk/internal/core/errors"
)

func TestErrorHandler_Mapping(t *testing.T) {
	h := NewErrorHandler(slog.New(slog.NewTextHandler(io.Discard, nil)))

	tests := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("get ticket: %w", apperrors.ErrTicketNotFound), stdhttp.StatusNotFound, "TICKET_NOT_FOUND"},
		{apperrors.ErrPresetNotFound, stdhttp.StatusNotFound, "PRESET_NOT_FOUND"},
		{apperrors.ErrUnauthorized, stdhttp.StatusUnauthorized, "UNAUTHORIZED"},
		{apperrors.ErrInvalidPriority, stdhttp.StatusBadRequest, "VALIDATION_ERROR"},
		{fmt.Errorf("%w: missing id column", apperrors.ErrInvalidImport), stdhttp.StatusBadRequest, "INVALID_IMPORT"},
		{apperrors.ErrCannotAssignTerminal, stdhttp.StatusConflict, "CANNOT_ASSIGN_TERMINAL"},
		{apperrors.ErrRateLimited, stdhttp.StatusTooManyRequests, "RATE_LIMITED"},
		{apperrors.NewBadRequestError(nil, "preset name too long"), stdhttp.StatusBadRequest, "BAD_REQUEST"},
		{fmt.Errorf("list tickets: connection reset"), stdhttp.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.Handle(rec, httptest.NewRequest(stdhttp.MethodGet, "/", nil), tt.err)

			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), `"code":"`+tt.code+`"`)
		})
	}
}

func TestErrorHandler_ValidationErrors(t *testing.T) {
	h := NewErrorHandler(slog.New(slog.NewTextHandler(io.Discard, nil)))
	errs := apperrors.NewValidationErrors()
	errs.Add("title", "This field is required")

	rec := httptest.NewRecorder()
	h.Handle(rec, httptest.NewRequest(stdhttp.MethodPost, "/", nil), errs)

	assert.Equal(t, stdhttp.StatusUnprocessableEntity, rec.Code)
	assert.JSONEq(t, `{"error":"Validation failed","code":"VALIDATION_ERROR","fields":{"title":["This field is required"]}}`, rec.Body.String())
}
