package http

import (
	"context"
	"mime"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	mw "github.com/lorrc/repair-desk/internal/adapters/primary/http/middleware"
	"github.com/lorrc/repair-desk/internal/core/domain"
	apperrors "github.com/lorrc/repair-desk/internal/core/errors"
)

// GetRequestID retrieves the request ID from context
func GetRequestID(ctx context.Context) string {
	return mw.GetRequestID(ctx)
}

// getActor extracts the caller identity placed by the JWT middleware.
func getActor(w http.ResponseWriter, r *http.Request) (domain.Actor, bool) {
	claims, ok := mw.GetClaims(r.Context())
	if !ok {
		writeAppError(w, apperrors.NewUnauthorizedError("Not authorized"))
		return domain.Actor{}, false
	}
	return claims.Actor(), true
}

// pathParam returns a decoded chi URL parameter. chi matches against
// RawPath when the request has one, leaving that param still escaped.
func pathParam(r *http.Request, key string) string {
	value := chi.URLParam(r, key)
	if r.URL.RawPath == "" {
		return value
	}
	if unescaped, err := url.PathUnescape(value); err == nil {
		return unescaped
	}
	return value
}

func writeAttachmentHeaders(w http.ResponseWriter, contentType, filename string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
}
