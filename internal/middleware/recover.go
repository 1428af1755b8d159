package middleware

import (
	"log/slog"
	"net/http"

	"planets-api/internal/shared/errors"
	"planets-api/internal/shared/response"
)

// Recover turns a handler panic into a 500 JSON response
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			logger := slog.With("middleware", "recover", "request_id", GetRequestID(r))
			response.Error(w, r, logger, errors.Internalf("panic: %v", rec))
		}()

		next.ServeHTTP(w, r)
	})
}

// Chain applies middlewares so that the first one listed is the outermost
func Chain(h http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}
