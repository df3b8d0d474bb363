package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

var validKinds = map[string]bool{KindLab: true, KindXray: true}

var validModes = map[string]bool{ModeCash: true, ModeCard: true, ModeUPI: true}

// Create validates and stores a new invoice. A zero TotalAmount is filled in
// from the item lines.
func (s *Service) Create(ctx context.Context, inv *Invoice) error {
	if inv.Kind == "" {
		inv.Kind = KindLab
	}
	if !validKinds[inv.Kind] {
		return fmt.Errorf("invalid invoice kind %q", inv.Kind)
	}
	if inv.PatientID == uuid.Nil {
		return fmt.Errorf("patient id is required")
	}
	if len(inv.Items) == 0 {
		return fmt.Errorf("invoice needs at least one item")
	}
	for _, it := range inv.Items {
		if it.Description == "" {
			return fmt.Errorf("invoice item needs a description")
		}
		if it.Amount < 0 {
			return fmt.Errorf("item %q: negative amount", it.Description)
		}
	}
	if inv.TotalAmount == 0 {
		for _, it := range inv.Items {
			inv.TotalAmount += it.Amount
		}
	}
	if inv.Discount < 0 || inv.Discount > inv.TotalAmount {
		return fmt.Errorf("discount out of range")
	}
	if inv.Payments == nil {
		inv.Payments = []Payment{}
	}
	return s.repo.Create(ctx, inv)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	return s.repo.Get(ctx, id)
}

// AddPayment appends a payment to the invoice's history and bumps the paid
// total. A payment that would exceed the balance is rejected.
func (s *Service) AddPayment(ctx context.Context, id uuid.UUID, amount float64, mode string) (*Invoice, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("payment amount must be positive")
	}
	if mode == "" {
		mode = ModeCash
	}
	if !validModes[mode] {
		return nil, fmt.Errorf("invalid payment mode %q", mode)
	}
	inv, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if amount > inv.Balance() {
		return nil, fmt.Errorf("payment %.2f exceeds balance %.2f", amount, inv.Balance())
	}
	inv.Payments = append(inv.Payments, Payment{Amount: amount, Mode: mode, PaidAt: s.now()})
	inv.AmountPaid += amount
	if err := s.repo.Update(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Invoice, int, error) {
	return s.repo.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) List(ctx context.Context, kind string, limit, offset int) ([]*Invoice, int, error) {
	if kind != "" && !validKinds[kind] {
		return nil, 0, fmt.Errorf("invalid invoice kind %q", kind)
	}
	return s.repo.List(ctx, kind, limit, offset)
}
