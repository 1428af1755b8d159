package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"planets-api/internal/shared/errors"
	"planets-api/internal/shared/response"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Storage   string `json:"storage"`
	Database  string `json:"database"`
}

type HealthHandler struct {
	store  Pinger
	driver string
}

func NewHealthHandler(store Pinger, driver string) *HealthHandler {
	return &HealthHandler{store: store, driver: driver}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "health", "storage", h.driver)

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		response.Error(w, r, logger, errors.WrapExternal("store unavailable", err))
		return
	}

	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Storage:   h.driver,
		Database:  "connected",
	}

	response.Success(w, http.StatusOK, resp)
}
