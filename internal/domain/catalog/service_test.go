package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

type mockRepo struct {
	tests map[uuid.UUID]*TestDefinition
}

func newMockRepo() *mockRepo {
	return &mockRepo{tests: make(map[uuid.UUID]*TestDefinition)}
}

func (m *mockRepo) Create(_ context.Context, td *TestDefinition) error {
	td.ID = uuid.New()
	td.CreatedAt = time.Now()
	td.UpdatedAt = time.Now()
	m.tests[td.ID] = td
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*TestDefinition, error) {
	td, ok := m.tests[id]
	if !ok {
		return nil, ErrNotFound
	}
	return td, nil
}

func (m *mockRepo) GetByName(_ context.Context, name string) (*TestDefinition, error) {
	for _, td := range m.tests {
		if td.Name == name {
			return td, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepo) Update(_ context.Context, td *TestDefinition) error {
	m.tests[td.ID] = td
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.tests, id)
	return nil
}

func (m *mockRepo) List(_ context.Context, category string, limit, offset int) ([]*TestDefinition, int, error) {
	var result []*TestDefinition
	for _, td := range m.tests {
		if category == "" || td.Category == category {
			result = append(result, td)
		}
	}
	return result, len(result), nil
}

type mockSuggestionRepo struct {
	pool []*GlobalSuggestion
}

func (m *mockSuggestionRepo) Add(_ context.Context, s *GlobalSuggestion) error {
	s.ID = uuid.New()
	m.pool = append(m.pool, s)
	return nil
}

func (m *mockSuggestionRepo) List(_ context.Context) ([]*GlobalSuggestion, error) {
	return m.pool, nil
}

func (m *mockSuggestionRepo) Delete(_ context.Context, id uuid.UUID) error {
	for i, s := range m.pool {
		if s.ID == id {
			m.pool = append(m.pool[:i], m.pool[i+1:]...)
			break
		}
	}
	return nil
}

func newTestService() *Service {
	return NewService(newMockRepo(), &mockSuggestionRepo{})
}

func TestCreate_Valid(t *testing.T) {
	svc := newTestService()
	td := &TestDefinition{
		Name: "CBC",
		Parameters: []ParameterDefinition{
			{Name: "Hemoglobin", Kind: KindNumeric, Unit: "g/dL"},
			{Name: "Neutrophils", Kind: KindNumeric, Unit: "%"},
			{Name: "Lymphocytes", Kind: KindNumeric, Unit: "%"},
		},
		SubHeadings: []SubHeadingDefinition{
			{Title: "Differential Count", Parameters: []string{"Neutrophils", "Lymphocytes"}, MustSumTo100: true},
		},
	}
	if err := svc.Create(context.Background(), td); err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if td.Category != CategoryPathology {
		t.Errorf("Category = %s, want pathology default", td.Category)
	}
}

func TestCreate_Validation(t *testing.T) {
	svc := newTestService()
	tests := []struct {
		name string
		td   TestDefinition
	}{
		{"missing name", TestDefinition{}},
		{"bad category", TestDefinition{Name: "X", Category: "imaging"}},
		{"unnamed parameter", TestDefinition{Name: "X", Parameters: []ParameterDefinition{{}}}},
		{"bad kind", TestDefinition{Name: "X", Parameters: []ParameterDefinition{{Name: "A", Kind: "blob"}}}},
		{"formula on text", TestDefinition{Name: "X", Parameters: []ParameterDefinition{{Name: "A", Kind: KindText, Formula: "B+C"}}}},
		{"duplicate parameter", TestDefinition{Name: "X", Parameters: []ParameterDefinition{
			{Name: "A", Kind: KindNumeric}, {Name: "A", Kind: KindNumeric},
		}}},
		{"deep nesting", TestDefinition{Name: "X", Parameters: []ParameterDefinition{
			{Name: "A", Kind: KindNumeric, SubParameters: []ParameterDefinition{
				{Name: "B", Kind: KindNumeric, SubParameters: []ParameterDefinition{{Name: "C", Kind: KindNumeric}}},
			}},
		}}},
		{"subheading unknown member", TestDefinition{Name: "X",
			Parameters:  []ParameterDefinition{{Name: "A", Kind: KindNumeric}},
			SubHeadings: []SubHeadingDefinition{{Title: "G", Parameters: []string{"Z"}}},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := svc.Create(context.Background(), &tt.td); err == nil {
				t.Error("Create() succeeded, want error")
			}
		})
	}
}

func TestGetByName_NotFound(t *testing.T) {
	svc := newTestService()
	if _, err := svc.GetByName(context.Background(), "Widal"); err != ErrNotFound {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSuggestions(t *testing.T) {
	svc := newTestService()
	if _, err := svc.AddSuggestion(context.Background(), ""); err == nil {
		t.Error("AddSuggestion(\"\") succeeded, want error")
	}
	gs, err := svc.AddSuggestion(context.Background(), "Pus cells seen")
	if err != nil {
		t.Fatalf("AddSuggestion() error: %v", err)
	}
	pool, err := svc.ListSuggestions(context.Background())
	if err != nil {
		t.Fatalf("ListSuggestions() error: %v", err)
	}
	if len(pool) != 1 || pool[0].ID != gs.ID {
		t.Errorf("pool = %v, want the added suggestion", pool)
	}
}
