package billing

import (
	"time"

	"github.com/google/uuid"
)

// Invoice kinds. X-ray invoices itemize film and view charges instead of
// booked tests.
const (
	KindLab  = "lab"
	KindXray = "xray"
)

// Payment modes.
const (
	ModeCash = "cash"
	ModeCard = "card"
	ModeUPI  = "upi"
)

// InvoiceItem is one billed line.
type InvoiceItem struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

// Payment is one entry in an invoice's payment history.
type Payment struct {
	Amount float64   `json:"amount"`
	Mode   string    `json:"mode"`
	PaidAt time.Time `json:"paid_at"`
}

// Invoice maps to the invoice table. Items and Payments are stored as JSONB.
// Lab invoices reference the registration they bill; x-ray invoices stand
// alone.
type Invoice struct {
	ID             uuid.UUID     `db:"id" json:"id"`
	RegistrationID *uuid.UUID    `db:"registration_id" json:"registration_id,omitempty"`
	PatientID      uuid.UUID     `db:"patient_id" json:"patient_id"`
	Kind           string        `db:"kind" json:"kind"`
	Items          []InvoiceItem `db:"items" json:"items"`
	TotalAmount    float64       `db:"total_amount" json:"total_amount"`
	Discount       float64       `db:"discount" json:"discount"`
	AmountPaid     float64       `db:"amount_paid" json:"amount_paid"`
	Payments       []Payment     `db:"payments" json:"payments"`
	CreatedAt      time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time     `db:"updated_at" json:"updated_at"`
}

// Balance returns the amount still owed.
func (inv *Invoice) Balance() float64 {
	return inv.TotalAmount - inv.Discount - inv.AmountPaid
}
