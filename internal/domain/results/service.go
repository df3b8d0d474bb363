package results

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lims/lims/internal/domain/booking"
	"github.com/lims/lims/internal/domain/catalog"
	"github.com/lims/lims/internal/domain/patient"
)

// CatalogReader is the slice of the catalog service the entry engine needs.
type CatalogReader interface {
	GetByName(ctx context.Context, name string) (*catalog.TestDefinition, error)
	ListSuggestions(ctx context.Context) ([]*catalog.GlobalSuggestion, error)
}

// PatientReader resolves the patient a registration belongs to.
type PatientReader interface {
	Get(ctx context.Context, id uuid.UUID) (*patient.Patient, error)
}

// BookingReader resolves registrations and their booked tests.
type BookingReader interface {
	Get(ctx context.Context, id uuid.UUID) (*booking.Registration, error)
}

// Service builds entry sessions and persists entered results.
type Service struct {
	repo     Repository
	catalog  CatalogReader
	patients PatientReader
	bookings BookingReader
	logger   zerolog.Logger
	now      func() time.Time
}

func NewService(repo Repository, cat CatalogReader, patients PatientReader, bookings BookingReader, logger zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		catalog:  cat,
		patients: patients,
		bookings: bookings,
		logger:   logger,
		now:      time.Now,
	}
}

// BuildSession assembles the data-entry state for a registration: one entry
// per booked test, seeded from the test definition, the patient's age and
// gender, and any results already saved. Outsourced tests appear with no
// parameters. A test whose definition cannot be fetched degrades to an empty
// schema rather than failing the whole sheet.
func (s *Service) BuildSession(ctx context.Context, registrationID uuid.UUID) (*EntrySession, error) {
	reg, err := s.bookings.Get(ctx, registrationID)
	if err != nil {
		return nil, fmt.Errorf("load registration: %w", err)
	}
	pat, err := s.patients.Get(ctx, reg.PatientID)
	if err != nil {
		return nil, fmt.Errorf("load patient: %w", err)
	}
	saved, err := s.repo.Get(ctx, registrationID)
	if err != nil {
		return nil, fmt.Errorf("load saved results: %w", err)
	}

	sess := &EntrySession{
		RegistrationID: registrationID,
		PatientID:      pat.ID,
		PatientName:    pat.FullName(),
		AgeDays:        pat.AgeInDays(),
		Gender:         pat.Gender,
	}
	for _, bt := range reg.Tests {
		entry := TestEntry{
			TestID:   bt.TestID,
			TestName: bt.TestName,
			TestKey:  TestKey(bt.TestName),
		}
		if bt.IsOutsourced() {
			entry.Outsourced = true
			sess.Tests = append(sess.Tests, entry)
			continue
		}
		def, err := s.catalog.GetByName(ctx, bt.TestName)
		if err != nil {
			if !errors.Is(err, catalog.ErrNotFound) {
				s.logger.Warn().Err(err).Str("test", bt.TestName).
					Msg("test definition unavailable, seeding empty schema")
			}
			sess.Tests = append(sess.Tests, entry)
			continue
		}
		prior := saved[entry.TestKey]
		entry.Parameters = seedParameters(def.Parameters, bt.SelectedParameters, &prior, sess.AgeDays, sess.Gender)
		entry.SubHeadings = def.SubHeadings
		sess.Tests = append(sess.Tests, entry)
	}
	return sess, nil
}

// Save persists the session's entered values. Saving merges: tests stored
// earlier but absent from this session keep their data, a re-saved test keeps
// its original creation time, and reported-on and entered-by are stamped
// fresh on every save. Outsourced tests write nothing.
func (s *Service) Save(ctx context.Context, sess *EntrySession, enteredBy string) error {
	existing, err := s.repo.Get(ctx, sess.RegistrationID)
	if err != nil {
		return fmt.Errorf("load saved results: %w", err)
	}
	now := s.now()
	merged := map[string]SavedTest{}
	for _, t := range sess.Tests {
		if t.Outsourced {
			continue
		}
		st := SavedTest{
			TestID:      t.TestID,
			Parameters:  toSavedParameters(t.Parameters),
			SubHeadings: t.SubHeadings,
			CreatedAt:   now,
			ReportedOn:  now,
			EnteredBy:   enteredBy,
		}
		if prev, ok := existing[t.TestKey]; ok && !prev.CreatedAt.IsZero() {
			st.CreatedAt = prev.CreatedAt
		}
		merged[t.TestKey] = st
	}
	if len(merged) == 0 {
		return nil
	}
	return s.repo.Put(ctx, sess.RegistrationID, merged)
}

func toSavedParameters(params []ResolvedParameterValue) []SavedParameter {
	out := make([]SavedParameter, 0, len(params))
	for i := range params {
		p := &params[i]
		sp := SavedParameter{
			Name:        p.Name,
			Value:       coerceValue(p.Value, p.Kind),
			Unit:        p.Unit,
			NormalRange: p.NormalRange,
		}
		if len(p.SubParameters) > 0 {
			sp.SubParameters = toSavedParameters(p.SubParameters)
		}
		out = append(out, sp)
	}
	return out
}

// Saved returns everything stored for a registration, keyed by test key.
func (s *Service) Saved(ctx context.Context, registrationID uuid.UUID) (map[string]SavedTest, error) {
	return s.repo.Get(ctx, registrationID)
}

// Suggest returns autocomplete candidates for a text parameter of a test. A
// parameter with its own suggestion list is searched alone; otherwise the
// shared pool is used. Sub-parameters are searched by their own name.
func (s *Service) Suggest(ctx context.Context, testName, paramName, query string) ([]string, error) {
	def, err := s.catalog.GetByName(ctx, testName)
	if err != nil {
		return nil, err
	}
	var own []catalog.Suggestion
	found := false
	for i := range def.Parameters {
		p := &def.Parameters[i]
		if p.Name == paramName {
			own, found = p.Suggestions, true
			break
		}
		for j := range p.SubParameters {
			if p.SubParameters[j].Name == paramName {
				own, found = p.SubParameters[j].Suggestions, true
				break
			}
		}
		if found {
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("no parameter %q in test %q", paramName, testName)
	}
	if len(own) > 0 {
		return filterSuggestions(own, nil, query), nil
	}
	pool, err := s.catalog.ListSuggestions(ctx)
	if err != nil {
		return nil, err
	}
	return filterSuggestions(nil, pool, query), nil
}
