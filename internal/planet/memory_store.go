package planet

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hashicorp/go-memdb"
)

const (
	memTable   = "planet"
	memIndexID = "id"
)

func memorySchema() *memdb.DBSchema {
	return &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			memTable: {
				Name: memTable,
				Indexes: map[string]*memdb.IndexSchema{
					memIndexID: {
						Name:    memIndexID,
						Unique:  true,
						Indexer: &memdb.IntFieldIndex{Field: "ID"},
					},
				},
			},
		},
	}
}

// MemoryStore is a transactional in-process Store. Ids are assigned from a
// counter that only advances inside write transactions, which go-memdb runs one at a time.
type MemoryStore struct {
	db     *memdb.MemDB
	lastID int
	logger *slog.Logger
}

func NewMemoryStore(logger *slog.Logger) (*MemoryStore, error) {
	db, err := memdb.NewMemDB(memorySchema())
	if err != nil {
		return nil, fmt.Errorf("failed to create memory store: %w", err)
	}

	logger.Debug("Initializing in-memory planet store")

	return &MemoryStore{
		db:     db,
		logger: logger,
	}, nil
}

func (s *MemoryStore) Create(ctx context.Context, input Input) (*Planet, error) {
	txn := s.db.Txn(true)
	defer txn.Abort()

	s.lastID++
	planet := &Planet{
		ID:          s.lastID,
		Name:        input.Name,
		Description: input.Description,
		Moon:        input.Moon,
	}

	if err := txn.Insert(memTable, planet); err != nil {
		return nil, fmt.Errorf("failed to create planet: %w", err)
	}
	txn.Commit()

	s.logger.Debug("Planet created", "component", "planet_memory_store", "planet_id", planet.ID)

	created := *planet
	return &created, nil
}

func (s *MemoryStore) List(ctx context.Context, filter Filter) ([]Planet, error) {
	planets, err := s.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return filter.Apply(planets), nil
}

func (s *MemoryStore) GetAll(ctx context.Context) ([]Planet, error) {
	txn := s.db.Txn(false)
	defer txn.Abort()

	it, err := txn.Get(memTable, memIndexID)
	if err != nil {
		return nil, fmt.Errorf("failed to query planets: %w", err)
	}

	planets := []Planet{}
	for obj := it.Next(); obj != nil; obj = it.Next() {
		planets = append(planets, *obj.(*Planet))
	}
	SortByID.Sort(planets)
	return planets, nil
}

func (s *MemoryStore) GetByID(ctx context.Context, id int) (*Planet, error) {
	txn := s.db.Txn(false)
	defer txn.Abort()

	raw, err := txn.First(memTable, memIndexID, id)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if raw == nil {
		return nil, nil
	}

	planet := *raw.(*Planet)
	return &planet, nil
}

func (s *MemoryStore) Update(ctx context.Context, planet *Planet) error {
	txn := s.db.Txn(true)
	defer txn.Abort()

	raw, err := txn.First(memTable, memIndexID, planet.ID)
	if err != nil {
		return fmt.Errorf("failed to update planet: %w", err)
	}
	if raw == nil {
		return ErrPlanetNotFound
	}

	// stored objects are never mutated in place; readers may still hold them
	updated := *planet
	if err := txn.Insert(memTable, &updated); err != nil {
		return fmt.Errorf("failed to update planet: %w", err)
	}
	txn.Commit()
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id int) error {
	txn := s.db.Txn(true)
	defer txn.Abort()

	raw, err := txn.First(memTable, memIndexID, id)
	if err != nil {
		return fmt.Errorf("failed to delete planet: %w", err)
	}
	if raw == nil {
		return ErrPlanetNotFound
	}

	if err := txn.Delete(memTable, raw); err != nil {
		return fmt.Errorf("failed to delete planet: %w", err)
	}
	txn.Commit()
	return nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}
