package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"planets-api/internal/planet"
	"planets-api/internal/shared/errors"
	"planets-api/internal/shared/response"
)

const maxBodyBytes = 1 << 20 // 1 MB

// planetRequest mirrors the create/update body; nil means the key was absent or null
type planetRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Moon        *int    `json:"moon"`
}

// input reports a missing key as an internal error; clients get a generic 500
func (req planetRequest) input() (planet.Input, error) {
	switch {
	case req.Name == nil:
		return planet.Input{}, errors.Internalf("missing required field %q", "name")
	case req.Moon == nil:
		return planet.Input{}, errors.Internalf("missing required field %q", "moon")
	case req.Description == nil:
		return planet.Input{}, errors.Internalf("missing required field %q", "description")
	}

	return planet.Input{
		Name:        *req.Name,
		Description: *req.Description,
		Moon:        *req.Moon,
	}, nil
}

type PlanetHandler struct {
	service *planet.Service
	logger  *slog.Logger
}

func NewPlanetHandler(service *planet.Service, logger *slog.Logger) *PlanetHandler {
	return &PlanetHandler{
		service: service,
		logger:  logger,
	}
}

func (h *PlanetHandler) decodeInput(w http.ResponseWriter, r *http.Request) (planet.Input, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req planetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return planet.Input{}, errors.WrapValidation("invalid JSON in request body", err)
	}

	return req.input()
}

// Create handles POST /planets
func (h *PlanetHandler) Create(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With("handler", "create_planet")

	input, err := h.decodeInput(w, r)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	created, err := h.service.Create(r.Context(), input)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusCreated, created)
}

// List handles GET /planets
func (h *PlanetHandler) List(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With("handler", "list_planets")

	query := r.URL.Query()
	params := planet.ListParams{
		Description: query.Get("description"),
		Moon:        query.Get("moon"),
		MoonParam:   query.Get("moon_param"),
		Sort:        query.Get("sort"),
	}

	planets, err := h.service.List(r.Context(), params)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	if planets == nil {
		planets = []planet.Planet{}
	}

	response.Success(w, http.StatusOK, planets)
}

// Get handles GET /planets/{planet_id}
func (h *PlanetHandler) Get(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With("handler", "get_planet")

	found, err := h.service.Get(r.Context(), r.PathValue("planet_id"))
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, found)
}

// Update handles PUT /planets/{planet_id}. The id is checked before the body is read.
func (h *PlanetHandler) Update(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With("handler", "update_planet")

	found, err := h.service.FindForUpdate(r.Context(), r.PathValue("planet_id"))
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	input, err := h.decodeInput(w, r)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	if err := h.service.Update(r.Context(), found, input); err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.NoContent(w)
}

// Delete handles DELETE /planets/{planet_id}
func (h *PlanetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With("handler", "delete_planet")

	if err := h.service.Delete(r.Context(), r.PathValue("planet_id")); err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.NoContent(w)
}

// Register mounts the planet routes on mux
func (h *PlanetHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /planets", h.Create)
	mux.HandleFunc("GET /planets", h.List)
	mux.HandleFunc("GET /planets/{planet_id}", h.Get)
	mux.HandleFunc("PUT /planets/{planet_id}", h.Update)
	mux.HandleFunc("DELETE /planets/{planet_id}", h.Delete)
}
