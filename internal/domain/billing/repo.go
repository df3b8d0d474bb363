package billing

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("invoice not found")

// Repository is the persistence boundary for invoices.
type Repository interface {
	Create(ctx context.Context, inv *Invoice) error
	Get(ctx context.Context, id uuid.UUID) (*Invoice, error)
	Update(ctx context.Context, inv *Invoice) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Invoice, int, error)
	List(ctx context.Context, kind string, limit, offset int) ([]*Invoice, int, error)
}
