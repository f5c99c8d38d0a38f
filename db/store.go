package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("pessoa not found")

// Store is the set of operations the HTTP layer needs from persistence.
// Implementations must be safe for concurrent use.
type Store interface {
	Insert(ctx context.Context, person *Person) error
	FindByID(ctx context.Context, id uuid.UUID) (*Person, error)
	// Search returns every person whose name, nickname or one of the
	// stacks contains term, ignoring case. The result is never nil.
	Search(ctx context.Context, term string) ([]Person, error)
	Count(ctx context.Context) (int64, error)
}
