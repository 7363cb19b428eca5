package middleware

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/lorrc/repair-desk/internal/core/errors"
)

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// writeError renders an AppError in the same shape as the handlers' ErrorResponse.
func writeError(w http.ResponseWriter, appErr *apperrors.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode)
	_ = json.NewEncoder(w).Encode(errorBody{Error: appErr.Message, Code: appErr.Code})
}
