package booking

import (
	"time"

	"github.com/google/uuid"
)

// Booked test types. Outsourced tests are sent to an external lab and are
// excluded from in-house result entry.
const (
	TestTypeInHospital = "inhospital"
	TestTypeOutsource  = "outsource"
)

// BookedTest is one test within a registration. SelectedParameters, when
// non-empty, restricts result entry to that allow-list of the catalog's
// parameters.
type BookedTest struct {
	TestID             uuid.UUID `json:"test_id"`
	TestName           string    `json:"test_name"`
	TestType           string    `json:"test_type"`
	Price              float64   `json:"price"`
	SelectedParameters []string  `json:"selected_parameters,omitempty"`
}

// IsOutsourced reports whether the test is handled by an external lab.
func (bt *BookedTest) IsOutsourced() bool {
	return bt.TestType == TestTypeOutsource
}

// Registration maps to the registration table. Tests are stored as JSONB.
type Registration struct {
	ID          uuid.UUID    `db:"id" json:"id"`
	PatientID   uuid.UUID    `db:"patient_id" json:"patient_id"`
	Tests       []BookedTest `db:"tests" json:"tests"`
	TotalAmount float64      `db:"total_amount" json:"total_amount"`
	Discount    float64      `db:"discount" json:"discount"`
	AmountPaid  float64      `db:"amount_paid" json:"amount_paid"`
	ReferredBy  *string      `db:"referred_by" json:"referred_by,omitempty"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at" json:"updated_at"`
}

// Balance returns the amount still owed on the registration.
func (r *Registration) Balance() float64 {
	return r.TotalAmount - r.Discount - r.AmountPaid
}
