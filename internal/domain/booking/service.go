package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	registrations Repository
}

func NewService(registrations Repository) *Service {
	return &Service{registrations: registrations}
}

var validTestTypes = map[string]bool{
	TestTypeInHospital: true, TestTypeOutsource: true,
}

func (s *Service) Create(ctx context.Context, reg *Registration) error {
	if reg.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if len(reg.Tests) == 0 {
		return fmt.Errorf("at least one test is required")
	}
	for i := range reg.Tests {
		bt := &reg.Tests[i]
		if bt.TestName == "" {
			return fmt.Errorf("test name is required")
		}
		if bt.TestType == "" {
			bt.TestType = TestTypeInHospital
		}
		if !validTestTypes[bt.TestType] {
			return fmt.Errorf("test %s: invalid test_type %q", bt.TestName, bt.TestType)
		}
	}
	if reg.TotalAmount == 0 {
		for _, bt := range reg.Tests {
			reg.TotalAmount += bt.Price
		}
	}
	if reg.Discount < 0 || reg.Discount > reg.TotalAmount {
		return fmt.Errorf("discount out of range")
	}
	if reg.AmountPaid < 0 || reg.AmountPaid > reg.TotalAmount-reg.Discount {
		return fmt.Errorf("amount_paid out of range")
	}
	return s.registrations.Create(ctx, reg)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Registration, error) {
	return s.registrations.GetByID(ctx, id)
}

// BookedTests returns the registration's tests, the input to result entry.
func (s *Service) BookedTests(ctx context.Context, id uuid.UUID) ([]BookedTest, error) {
	reg, err := s.registrations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return reg.Tests, nil
}

func (s *Service) Update(ctx context.Context, reg *Registration) error {
	for i := range reg.Tests {
		if !validTestTypes[reg.Tests[i].TestType] {
			return fmt.Errorf("invalid test_type: %s", reg.Tests[i].TestType)
		}
	}
	return s.registrations.Update(ctx, reg)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.registrations.Delete(ctx, id)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Registration, int, error) {
	return s.registrations.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Registration, int, error) {
	return s.registrations.List(ctx, limit, offset)
}

// DashboardStats summarizes today's activity for the admin dashboard cards.
type DashboardStats struct {
	RegistrationsToday int     `json:"registrations_today"`
	RevenueToday       float64 `json:"revenue_today"`
}

func (s *Service) Stats(ctx context.Context) (*DashboardStats, error) {
	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	count, err := s.registrations.CountSince(ctx, midnight)
	if err != nil {
		return nil, fmt.Errorf("count today's registrations: %w", err)
	}
	revenue, err := s.registrations.RevenueSince(ctx, midnight)
	if err != nil {
		return nil, fmt.Errorf("sum today's revenue: %w", err)
	}
	return &DashboardStats{RegistrationsToday: count, RevenueToday: revenue}, nil
}
