package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a test definition does not exist. Callers that
// build entry forms degrade to an empty parameter schema on this error.
var ErrNotFound = errors.New("test definition not found")

type Repository interface {
	Create(ctx context.Context, td *TestDefinition) error
	GetByID(ctx context.Context, id uuid.UUID) (*TestDefinition, error)
	GetByName(ctx context.Context, name string) (*TestDefinition, error)
	Update(ctx context.Context, td *TestDefinition) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, category string, limit, offset int) ([]*TestDefinition, int, error)
}

type SuggestionRepository interface {
	Add(ctx context.Context, s *GlobalSuggestion) error
	List(ctx context.Context) ([]*GlobalSuggestion, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
