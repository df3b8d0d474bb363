package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Service struct {
	tests       Repository
	suggestions SuggestionRepository
}

func NewService(tests Repository, suggestions SuggestionRepository) *Service {
	return &Service{tests: tests, suggestions: suggestions}
}

var validCategories = map[string]bool{
	CategoryPathology: true, CategoryRadiology: true,
}

var validKinds = map[string]bool{
	KindNumeric: true, KindText: true,
}

func validateParameter(p *ParameterDefinition, nested bool) error {
	if p.Name == "" {
		return fmt.Errorf("parameter name is required")
	}
	if p.Kind == "" {
		p.Kind = KindNumeric
	}
	if !validKinds[p.Kind] {
		return fmt.Errorf("parameter %s: invalid kind %q", p.Name, p.Kind)
	}
	if p.Formula != "" && p.Kind != KindNumeric {
		return fmt.Errorf("parameter %s: formula on non-numeric parameter", p.Name)
	}
	if nested && len(p.SubParameters) > 0 {
		return fmt.Errorf("parameter %s: sub-parameters nest one level only", p.Name)
	}
	for i := range p.SubParameters {
		if err := validateParameter(&p.SubParameters[i], true); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) validate(td *TestDefinition) error {
	if td.Name == "" {
		return fmt.Errorf("name is required")
	}
	if td.Category == "" {
		td.Category = CategoryPathology
	}
	if !validCategories[td.Category] {
		return fmt.Errorf("invalid category: %s", td.Category)
	}

	seen := make(map[string]bool, len(td.Parameters))
	for i := range td.Parameters {
		p := &td.Parameters[i]
		if err := validateParameter(p, false); err != nil {
			return err
		}
		if seen[p.Name] {
			return fmt.Errorf("duplicate parameter name: %s", p.Name)
		}
		seen[p.Name] = true
	}

	for _, sh := range td.SubHeadings {
		if sh.Title == "" {
			return fmt.Errorf("subheading title is required")
		}
		for _, member := range sh.Parameters {
			if !seen[member] {
				return fmt.Errorf("subheading %s references unknown parameter %s", sh.Title, member)
			}
		}
	}
	return nil
}

func (s *Service) Create(ctx context.Context, td *TestDefinition) error {
	if err := s.validate(td); err != nil {
		return err
	}
	return s.tests.Create(ctx, td)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*TestDefinition, error) {
	return s.tests.GetByID(ctx, id)
}

// GetByName fetches the parameter schema for a test. Returns ErrNotFound when
// the catalog has no entry for the name.
func (s *Service) GetByName(ctx context.Context, name string) (*TestDefinition, error) {
	return s.tests.GetByName(ctx, name)
}

func (s *Service) Update(ctx context.Context, td *TestDefinition) error {
	if err := s.validate(td); err != nil {
		return err
	}
	return s.tests.Update(ctx, td)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.tests.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, category string, limit, offset int) ([]*TestDefinition, int, error) {
	if category != "" && !validCategories[category] {
		return nil, 0, fmt.Errorf("invalid category: %s", category)
	}
	return s.tests.List(ctx, category, limit, offset)
}

func (s *Service) AddSuggestion(ctx context.Context, description string) (*GlobalSuggestion, error) {
	if description == "" {
		return nil, fmt.Errorf("description is required")
	}
	gs := &GlobalSuggestion{Description: description}
	if err := s.suggestions.Add(ctx, gs); err != nil {
		return nil, err
	}
	return gs, nil
}

func (s *Service) ListSuggestions(ctx context.Context) ([]*GlobalSuggestion, error) {
	return s.suggestions.List(ctx)
}

func (s *Service) DeleteSuggestion(ctx context.Context, id uuid.UUID) error {
	return s.suggestions.Delete(ctx, id)
}
