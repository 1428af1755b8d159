package planet

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"planets-api/internal/shared/database"
)

// Repository is the PostgreSQL Store
type Repository struct {
	db     *database.DB
	logger *slog.Logger
}

func NewRepository(db *database.DB, logger *slog.Logger) *Repository {
	logger.Debug("Initializing planet repository")

	return &Repository{
		db:     db,
		logger: logger,
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPlanet(row rowScanner) (Planet, error) {
	var planet Planet
	err := row.Scan(
		&planet.ID,
		&planet.Name,
		&planet.Description,
		&planet.Moon,
	)
	return planet, err
}

func (r *Repository) Create(ctx context.Context, input Input) (*Planet, error) {
	logger := r.logger.With(
		"component", "planet_repository",
		"operation", "create_planet",
		"name", input.Name,
	)
	logger.Debug("Creating planet")

	query := `
		INSERT INTO planet (name, description, moon)
		VALUES ($1, $2, $3)
		RETURNING ` + selectColumns

	var planet Planet
	err := r.db.WithTx(ctx, func(tx *database.Tx) error {
		var err error
		planet, err = scanPlanet(tx.QueryRowContext(ctx, query, input.Name, input.Description, input.Moon))
		return err
	})
	if err != nil {
		logger.Error("Failed to create planet", "error", err)
		return nil, fmt.Errorf("failed to create planet: %w", err)
	}

	logger.Debug("Planet created successfully", "planet_id", planet.ID)
	return &planet, nil
}

func (r *Repository) List(ctx context.Context, filter Filter) ([]Planet, error) {
	query, args := buildListQuery(filter)

	logger := r.logger.With(
		"component", "planet_repository",
		"operation", "list_planets",
		"sort", filter.Sort.String(),
	)
	logger.Debug("Listing planets", "query", query)

	return r.queryPlanets(ctx, logger, query, args...)
}

func (r *Repository) GetAll(ctx context.Context) ([]Planet, error) {
	logger := r.logger.With("component", "planet_repository", "operation", "get_all_planets")
	logger.Debug("Getting all planets")

	return r.queryPlanets(ctx, logger, "SELECT "+selectColumns+" FROM planet ORDER BY id")
}

func (r *Repository) queryPlanets(ctx context.Context, logger *slog.Logger, query string, args ...interface{}) ([]Planet, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.Error("Failed to query planets", "error", err)
		return nil, fmt.Errorf("failed to query planets: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("Failed to close rows", "error", err)
		}
	}()

	planets := []Planet{}
	for rows.Next() {
		planet, err := scanPlanet(rows)
		if err != nil {
			logger.Error("Failed to scan planet row", "error", err)
			return nil, fmt.Errorf("failed to scan planet: %w", err)
		}
		planets = append(planets, planet)
	}

	if err := rows.Err(); err != nil {
		logger.Error("Error during rows iteration", "error", err)
		return nil, fmt.Errorf("error iterating planets: %w", err)
	}

	logger.Debug("Planets retrieved", "count", len(planets))
	return planets, nil
}

func (r *Repository) GetByID(ctx context.Context, id int) (*Planet, error) {
	logger := r.logger.With("component", "planet_repository", "operation", "get_planet", "planet_id", id)
	logger.Debug("Getting planet by ID")

	query := `SELECT ` + selectColumns + ` FROM planet WHERE id = $1::bigint`

	planet, err := scanPlanet(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			logger.Debug("Planet not found")
			return nil, nil
		}
		logger.Error("Database error getting planet", "error", err)
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &planet, nil
}

func (r *Repository) Update(ctx context.Context, planet *Planet) error {
	logger := r.logger.With("component", "planet_repository", "operation", "update_planet", "planet_id", planet.ID)
	logger.Debug("Updating planet")

	query := `UPDATE planet SET name = $1, description = $2, moon = $3 WHERE id = $4::bigint`

	err := r.db.WithTx(ctx, func(tx *database.Tx) error {
		result, err := tx.ExecContext(ctx, query, planet.Name, planet.Description, planet.Moon, planet.ID)
		if err != nil {
			return err
		}
		return requireAffected(result)
	})
	if err != nil {
		if errors.Is(err, ErrPlanetNotFound) {
			logger.Warn("Planet not found for update")
			return err
		}
		logger.Error("Failed to update planet", "error", err)
		return fmt.Errorf("failed to update planet: %w", err)
	}

	logger.Debug("Planet updated")
	return nil
}

func (r *Repository) Delete(ctx context.Context, id int) error {
	logger := r.logger.With("component", "planet_repository", "operation", "delete_planet", "planet_id", id)
	logger.Info("Deleting planet")

	err := r.db.WithTx(ctx, func(tx *database.Tx) error {
		result, err := tx.ExecContext(ctx, `DELETE FROM planet WHERE id = $1::bigint`, id)
		if err != nil {
			return err
		}
		return requireAffected(result)
	})
	if err != nil {
		if errors.Is(err, ErrPlanetNotFound) {
			logger.Warn("Planet not found for deletion")
			return err
		}
		logger.Error("Failed to delete planet", "error", err)
		return fmt.Errorf("failed to delete planet: %w", err)
	}

	logger.Info("Planet deleted successfully")
	return nil
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func requireAffected(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrPlanetNotFound
	}
	return nil
}
