package handlers

import (
	"log/slog"
	"net/http"

	"planets-api/internal/shared/errors"
	"planets-api/internal/shared/response"
)

// NotFound answers requests that match no route
func NotFound(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "not_found")
	response.Error(w, r, logger, errors.NotFoundf("%s not found", r.URL.Path))
}

// MethodNotAllowed answers requests whose path exists but whose method is not routed
func MethodNotAllowed(allow string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := slog.With("handler", "method_not_allowed")
		w.Header().Set("Allow", allow)
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
	}
}
