package booking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a registration does not exist.
var ErrNotFound = errors.New("registration not found")

type Repository interface {
	Create(ctx context.Context, r *Registration) error
	GetByID(ctx context.Context, id uuid.UUID) (*Registration, error)
	Update(ctx context.Context, r *Registration) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Registration, int, error)
	List(ctx context.Context, limit, offset int) ([]*Registration, int, error)
	CountSince(ctx context.Context, since time.Time) (int, error)
	RevenueSince(ctx context.Context, since time.Time) (float64, error)
}
