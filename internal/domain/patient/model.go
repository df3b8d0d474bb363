package patient

import (
	"time"

	"github.com/google/uuid"
)

// Age units accepted at registration.
const (
	AgeUnitYears  = "years"
	AgeUnitMonths = "months"
	AgeUnitDays   = "days"
)

// Patient maps to the patient table.
type Patient struct {
	ID         uuid.UUID `db:"id" json:"id"`
	MRN        string    `db:"mrn" json:"mrn"`
	FirstName  string    `db:"first_name" json:"first_name"`
	LastName   string    `db:"last_name" json:"last_name"`
	Age        int       `db:"age" json:"age"`
	AgeUnit    string    `db:"age_unit" json:"age_unit"`
	Gender     string    `db:"gender" json:"gender"`
	Phone      *string   `db:"phone" json:"phone,omitempty"`
	Address    *string   `db:"address" json:"address,omitempty"`
	ReferredBy *string   `db:"referred_by" json:"referred_by,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// AgeInDays normalizes the registered age to days. Years count as 365 days,
// months as 30; an unrecognized unit counts each age unit as one day.
func (p *Patient) AgeInDays() int {
	switch p.AgeUnit {
	case AgeUnitYears:
		return p.Age * 365
	case AgeUnitMonths:
		return p.Age * 30
	default:
		return p.Age
	}
}

// FullName returns the display name used on reports.
func (p *Patient) FullName() string {
	if p.LastName == "" {
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}
