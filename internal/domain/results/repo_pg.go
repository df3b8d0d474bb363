package results

import (
	"context"
	"encoding/json"
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

func (r *repoPG) Get(ctx context.Context, registrationID uuid.UUID) (map[string]SavedTest, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT test_key, data FROM test_result WHERE registration_id = $1`,
		registrationID)
	if err != nil {
		return nil, fmt.Errorf("query results for %s: %w", registrationID, err)
	}
	defer rows.Close()

	out := map[string]SavedTest{}
	for rows.Next() {
		var key string
		var data []byte
		if err := rows.Scan(&key, &data); err != nil {
			return nil, err
		}
		var st SavedTest
		if err := json.Unmarshal(data, &st); err != nil {
			return nil, fmt.Errorf("decode result %s/%s: %w", registrationID, key, err)
		}
		out[key] = st
	}
	return out, rows.Err()
}

func (r *repoPG) Put(ctx context.Context, registrationID uuid.UUID, tests map[string]SavedTest) error {
	conn := r.conn(ctx)
	for key, st := range tests {
		data, err := json.Marshal(st)
		if err != nil {
			return fmt.Errorf("encode result %s/%s: %w", registrationID, key, err)
		}
		_, err = conn.Exec(ctx, `
			INSERT INTO test_result (registration_id, test_key, data, updated_at)
			VALUES ($1, $2, $3, now())
			ON CONFLICT (registration_id, test_key)
			DO UPDATE SET data = EXCLUDED.data, updated_at = now()`,
			registrationID, key, data)
		if err != nil {
			return fmt.Errorf("upsert result %s/%s: %w", registrationID, key, err)
		}
	}
	return nil
}
