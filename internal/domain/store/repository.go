package store

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines persistence operations for stores
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Store, error)
	FindByCode(ctx context.Context, code string) (*Store, error)
	FindAll(ctx context.Context) ([]Store, error)
	Save(ctx context.Context, store *Store) error
}
