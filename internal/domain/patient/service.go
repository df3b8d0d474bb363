package patient

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	patients Repository
}

func NewService(patients Repository) *Service {
	return &Service{patients: patients}
}

var validAgeUnits = map[string]bool{
	AgeUnitYears: true, AgeUnitMonths: true, AgeUnitDays: true,
}

var validGenders = map[string]bool{
	"male": true, "female": true, "other": true,
}

func (s *Service) Register(ctx context.Context, p *Patient) error {
	if p.FirstName == "" {
		return fmt.Errorf("first_name is required")
	}
	if p.Age < 0 {
		return fmt.Errorf("age must not be negative")
	}
	if p.AgeUnit == "" {
		p.AgeUnit = AgeUnitYears
	}
	if !validAgeUnits[p.AgeUnit] {
		return fmt.Errorf("invalid age_unit: %s", p.AgeUnit)
	}
	if !validGenders[p.Gender] {
		return fmt.Errorf("invalid gender: %s", p.Gender)
	}
	if p.MRN == "" {
		p.MRN = generateMRN()
	}
	return s.patients.Create(ctx, p)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.patients.GetByID(ctx, id)
}

func (s *Service) GetByMRN(ctx context.Context, mrn string) (*Patient, error) {
	return s.patients.GetByMRN(ctx, mrn)
}

func (s *Service) Update(ctx context.Context, p *Patient) error {
	if p.AgeUnit != "" && !validAgeUnits[p.AgeUnit] {
		return fmt.Errorf("invalid age_unit: %s", p.AgeUnit)
	}
	if p.Gender != "" && !validGenders[p.Gender] {
		return fmt.Errorf("invalid gender: %s", p.Gender)
	}
	return s.patients.Update(ctx, p)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.patients.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.patients.List(ctx, limit, offset)
}

func (s *Service) Search(ctx context.Context, query string, limit, offset int) ([]*Patient, int, error) {
	if query == "" {
		return s.patients.List(ctx, limit, offset)
	}
	return s.patients.Search(ctx, query, limit, offset)
}

// generateMRN builds a date-prefixed record number, e.g. "MRN-20250131-7f3a".
func generateMRN() string {
	id := uuid.New().String()
	return fmt.Sprintf("MRN-%s-%s", time.Now().Format("20060102"), id[:4])
}
