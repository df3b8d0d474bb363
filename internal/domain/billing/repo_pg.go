package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

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

const invoiceCols = `id, registration_id, patient_id, kind, items, total_amount,
	discount, amount_paid, payments, created_at, updated_at`

func scanInvoice(row pgx.Row) (*Invoice, error) {
	var inv Invoice
	var items, payments []byte
	err := row.Scan(&inv.ID, &inv.RegistrationID, &inv.PatientID, &inv.Kind, &items,
		&inv.TotalAmount, &inv.Discount, &inv.AmountPaid, &payments,
		&inv.CreatedAt, &inv.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &inv.Items); err != nil {
		return nil, fmt.Errorf("decode items for %s: %w", inv.ID, err)
	}
	if err := json.Unmarshal(payments, &inv.Payments); err != nil {
		return nil, fmt.Errorf("decode payments for %s: %w", inv.ID, err)
	}
	return &inv, nil
}

func (r *repoPG) Create(ctx context.Context, inv *Invoice) error {
	inv.ID = uuid.New()
	now := time.Now()
	inv.CreatedAt, inv.UpdatedAt = now, now
	items, err := json.Marshal(inv.Items)
	if err != nil {
		return fmt.Errorf("encode items: %w", err)
	}
	payments, err := json.Marshal(inv.Payments)
	if err != nil {
		return fmt.Errorf("encode payments: %w", err)
	}
	_, err = r.conn(ctx).Exec(ctx, `
		INSERT INTO invoice (id, registration_id, patient_id, kind, items,
			total_amount, discount, amount_paid, payments, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		inv.ID, inv.RegistrationID, inv.PatientID, inv.Kind, items,
		inv.TotalAmount, inv.Discount, inv.AmountPaid, payments,
		inv.CreatedAt, inv.UpdatedAt)
	return err
}

func (r *repoPG) Get(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	row := r.conn(ctx).QueryRow(ctx,
		`SELECT `+invoiceCols+` FROM invoice WHERE id = $1`, id)
	return scanInvoice(row)
}

func (r *repoPG) Update(ctx context.Context, inv *Invoice) error {
	inv.UpdatedAt = time.Now()
	items, err := json.Marshal(inv.Items)
	if err != nil {
		return fmt.Errorf("encode items: %w", err)
	}
	payments, err := json.Marshal(inv.Payments)
	if err != nil {
		return fmt.Errorf("encode payments: %w", err)
	}
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE invoice SET items=$2, total_amount=$3, discount=$4,
			amount_paid=$5, payments=$6, updated_at=$7
		WHERE id = $1`,
		inv.ID, items, inv.TotalAmount, inv.Discount, inv.AmountPaid,
		payments, inv.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Invoice, int, error) {
	return r.list(ctx,
		`SELECT `+invoiceCols+` FROM invoice WHERE patient_id = $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		`SELECT count(*) FROM invoice WHERE patient_id = $1`,
		[]interface{}{patientID}, limit, offset)
}

func (r *repoPG) List(ctx context.Context, kind string, limit, offset int) ([]*Invoice, int, error) {
	if kind == "" {
		return r.list(ctx,
			`SELECT `+invoiceCols+` FROM invoice
			 ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
			`SELECT count(*) FROM invoice`,
			nil, limit, offset)
	}
	return r.list(ctx,
		`SELECT `+invoiceCols+` FROM invoice WHERE kind = $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		`SELECT count(*) FROM invoice WHERE kind = $1`,
		[]interface{}{kind}, limit, offset)
}

func (r *repoPG) list(ctx context.Context, query, countQuery string, args []interface{}, limit, offset int) ([]*Invoice, int, error) {
	conn := r.conn(ctx)
	var total int
	if err := conn.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := conn.Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, inv)
	}
	return out, total, rows.Err()
}
