package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lims/lims/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func scanTest(row pgx.Row) (*TestDefinition, error) {
	var td TestDefinition
	var params, subs []byte
	err := row.Scan(&td.ID, &td.Name, &td.Category, &td.Price, &params, &subs,
		&td.CreatedAt, &td.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(params, &td.Parameters); err != nil {
		return nil, fmt.Errorf("decode parameters for %s: %w", td.Name, err)
	}
	if err := json.Unmarshal(subs, &td.SubHeadings); err != nil {
		return nil, fmt.Errorf("decode sub_headings for %s: %w", td.Name, err)
	}
	return &td, nil
}

const testCols = `id, name, category, price, parameters, sub_headings, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, td *TestDefinition) error {
	td.ID = uuid.New()
	params, err := json.Marshal(td.Parameters)
	if err != nil {
		return fmt.Errorf("encode parameters: %w", err)
	}
	subs, err := json.Marshal(td.SubHeadings)
	if err != nil {
		return fmt.Errorf("encode sub_headings: %w", err)
	}
	_, err = r.conn(ctx).Exec(ctx, `
		INSERT INTO test_definition (id, name, category, price, parameters, sub_headings)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		td.ID, td.Name, td.Category, td.Price, params, subs)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*TestDefinition, error) {
	return scanTest(r.conn(ctx).QueryRow(ctx,
		`SELECT `+testCols+` FROM test_definition WHERE id = $1`, id))
}

func (r *repoPG) GetByName(ctx context.Context, name string) (*TestDefinition, error) {
	return scanTest(r.conn(ctx).QueryRow(ctx,
		`SELECT `+testCols+` FROM test_definition WHERE name = $1`, name))
}

func (r *repoPG) Update(ctx context.Context, td *TestDefinition) error {
	params, err := json.Marshal(td.Parameters)
	if err != nil {
		return fmt.Errorf("encode parameters: %w", err)
	}
	subs, err := json.Marshal(td.SubHeadings)
	if err != nil {
		return fmt.Errorf("encode sub_headings: %w", err)
	}
	_, err = r.conn(ctx).Exec(ctx, `
		UPDATE test_definition SET name=$2, category=$3, price=$4,
			parameters=$5, sub_headings=$6, updated_at=NOW()
		WHERE id = $1`,
		td.ID, td.Name, td.Category, td.Price, params, subs)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM test_definition WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, category string, limit, offset int) ([]*TestDefinition, int, error) {
	where := ""
	args := []interface{}{}
	if category != "" {
		where = " WHERE category = $1"
		args = append(args, category)
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM test_definition`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count test definitions: %w", err)
	}

	query := `SELECT ` + testCols + ` FROM test_definition` + where +
		fmt.Sprintf(` ORDER BY name LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var tests []*TestDefinition
	for rows.Next() {
		td, err := scanTest(rows)
		if err != nil {
			return nil, 0, err
		}
		tests = append(tests, td)
	}
	return tests, total, rows.Err()
}

type suggestionRepoPG struct{ pool *pgxpool.Pool }

func NewSuggestionRepoPG(pool *pgxpool.Pool) SuggestionRepository {
	return &suggestionRepoPG{pool: pool}
}

func (r *suggestionRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *suggestionRepoPG) Add(ctx context.Context, s *GlobalSuggestion) error {
	s.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx,
		`INSERT INTO suggestion_pool (id, description) VALUES ($1,$2)`,
		s.ID, s.Description)
	return err
}

func (r *suggestionRepoPG) List(ctx context.Context) ([]*GlobalSuggestion, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT id, description, created_at FROM suggestion_pool ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var suggestions []*GlobalSuggestion
	for rows.Next() {
		var s GlobalSuggestion
		if err := rows.Scan(&s.ID, &s.Description, &s.CreatedAt); err != nil {
			return nil, err
		}
		suggestions = append(suggestions, &s)
	}
	return suggestions, rows.Err()
}

func (r *suggestionRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM suggestion_pool WHERE id = $1`, id)
	return err
}
