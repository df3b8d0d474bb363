package results

import (
	"context"

	"github.com/google/uuid"
)

// Repository stores entered results keyed by registration and test key.
type Repository interface {
	// Get returns every saved test for the registration, keyed by test key.
	// A registration with no results yields an empty map, not an error.
	Get(ctx context.Context, registrationID uuid.UUID) (map[string]SavedTest, error)
	// Put upserts the given tests; keys already stored but absent from the
	// map are left untouched.
	Put(ctx context.Context, registrationID uuid.UUID, tests map[string]SavedTest) error
}
