package planet

import (
	"context"
	stderrors "errors"
	"log/slog"
	"math/big"
	"strconv"
	"strings"

	"planets-api/internal/shared/errors"
)

type Service struct {
	store  Store
	logger *slog.Logger
}

func NewService(store Store, logger *slog.Logger) *Service {
	logger.Debug("Initializing planet service")

	return &Service{
		store:  store,
		logger: logger,
	}
}

func (s *Service) Create(ctx context.Context, input Input) (*Planet, error) {
	logger := s.logger.With("component", "planet_service", "operation", "create_planet")

	planet, err := s.store.Create(ctx, input)
	if err != nil {
		return nil, err
	}

	logger.Info("Planet created", "planet_id", planet.ID, "name", planet.Name)
	return planet, nil
}

// ParseFilter turns raw list parameters into a Filter. Empty values are treated as absent;
// a moon value that is not an integer is a validation error.
func ParseFilter(params ListParams) (Filter, error) {
	filter := Filter{
		Description:  params.Description,
		MoonOperator: ParseOperator(params.MoonParam),
		Sort:         ParseSort(params.Sort),
	}

	if params.Moon != "" {
		// out of range values keep the clamped bound, which compares like the exact value
		moon, err := parseInt(params.Moon)
		if err != nil && !stderrors.Is(err, strconv.ErrRange) {
			return Filter{}, errors.WrapValidation("Invalid moon parameter", err)
		}
		filter.Moon = &moon
	}

	return filter, nil
}

func (s *Service) List(ctx context.Context, params ListParams) ([]Planet, error) {
	filter, err := ParseFilter(params)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Listing planets",
		"component", "planet_service",
		"description", filter.Description,
		"has_moon_filter", filter.Moon != nil,
		"moon_operator", filter.MoonOperator.String(),
		"sort", filter.Sort.String(),
	)

	return s.store.List(ctx, filter)
}

// ValidateOne resolves a raw path id with a targeted lookup
func (s *Service) ValidateOne(ctx context.Context, rawID string) (*Planet, error) {
	id, err := parseInt(rawID)
	if err != nil {
		if n, ok := outOfRange(rawID, err); ok {
			return nil, errors.NotFoundf("%s not found", n)
		}
		return nil, errors.WrapValidation("planet "+rawID+" invalid", err)
	}

	planet, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if planet == nil {
		return nil, errors.NotFoundf("%d not found", id)
	}

	return planet, nil
}

// ValidateAmong resolves a raw path id by scanning an already loaded set of planets
func ValidateAmong(rawID string, planets []Planet) (*Planet, error) {
	id, err := parseInt(rawID)
	if err != nil {
		if n, ok := outOfRange(rawID, err); ok {
			return nil, errors.NotFoundf("Planet %s not found", n)
		}
		return nil, errors.WrapValidation("Planet id "+rawID+" invalid", err)
	}

	for i := range planets {
		if planets[i].ID == id {
			planet := planets[i]
			return &planet, nil
		}
	}

	return nil, errors.NotFoundf("Planet %d not found", id)
}

func (s *Service) Get(ctx context.Context, rawID string) (*Planet, error) {
	return s.ValidateOne(ctx, rawID)
}

// FindForUpdate validates the id of an update request against every stored planet
func (s *Service) FindForUpdate(ctx context.Context, rawID string) (*Planet, error) {
	planets, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return ValidateAmong(rawID, planets)
}

// Update overwrites name, description and moon of planet together
func (s *Service) Update(ctx context.Context, planet *Planet, input Input) error {
	logger := s.logger.With("component", "planet_service", "operation", "update_planet", "planet_id", planet.ID)

	updated := *planet
	updated.Name = input.Name
	updated.Description = input.Description
	updated.Moon = input.Moon

	if err := s.store.Update(ctx, &updated); err != nil {
		if stderrors.Is(err, ErrPlanetNotFound) {
			return errors.NotFoundf("Planet %d not found", planet.ID)
		}
		return err
	}

	*planet = updated
	logger.Info("Planet updated")
	return nil
}

func (s *Service) Delete(ctx context.Context, rawID string) error {
	planet, err := s.ValidateOne(ctx, rawID)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, planet.ID); err != nil {
		if stderrors.Is(err, ErrPlanetNotFound) {
			return errors.NotFoundf("%d not found", planet.ID)
		}
		return err
	}

	s.logger.Info("Planet deleted", "component", "planet_service", "planet_id", planet.ID)
	return nil
}

// parseInt accepts surrounding whitespace and an optional sign
func parseInt(raw string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(raw))
}

// outOfRange reports the canonical decimal form of an integer too large for int.
// No stored id can match it.
func outOfRange(raw string, err error) (string, bool) {
	if !stderrors.Is(err, strconv.ErrRange) {
		return "", false
	}
	n, ok := new(big.Int).SetString(strings.TrimSpace(raw), 10)
	if !ok {
		return "", false
	}
	return n.String(), true
}
