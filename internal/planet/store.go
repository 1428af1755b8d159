package planet

import "context"

// Store persists planets. Every mutating call commits exactly once before returning.
//
// GetByID returns (nil, nil) when no planet has the id. Update and Delete return
// ErrPlanetNotFound when the target row is gone.
type Store interface {
	Create(ctx context.Context, input Input) (*Planet, error)
	List(ctx context.Context, filter Filter) ([]Planet, error)
	GetByID(ctx context.Context, id int) (*Planet, error)
	GetAll(ctx context.Context) ([]Planet, error)
	Update(ctx context.Context, planet *Planet) error
	Delete(ctx context.Context, id int) error
	Ping(ctx context.Context) error
}

var (
	_ Store = (*Repository)(nil)
	_ Store = (*MemoryStore)(nil)
)
