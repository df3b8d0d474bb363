package booking

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

const regCols = `id, patient_id, tests, total_amount, discount, amount_paid,
	referred_by, created_at, updated_at`

func scanRegistration(row pgx.Row) (*Registration, error) {
	var reg Registration
	var tests []byte
	err := row.Scan(&reg.ID, &reg.PatientID, &tests, &reg.TotalAmount, &reg.Discount,
		&reg.AmountPaid, &reg.ReferredBy, &reg.CreatedAt, &reg.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(tests, &reg.Tests); err != nil {
		return nil, fmt.Errorf("decode tests for %s: %w", reg.ID, err)
	}
	return &reg, nil
}

func (r *repoPG) Create(ctx context.Context, reg *Registration) error {
	reg.ID = uuid.New()
	tests, err := json.Marshal(reg.Tests)
	if err != nil {
		return fmt.Errorf("encode tests: %w", err)
	}
	_, err = r.conn(ctx).Exec(ctx, `
		INSERT INTO registration (id, patient_id, tests, total_amount, discount, amount_paid, referred_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		reg.ID, reg.PatientID, tests, reg.TotalAmount, reg.Discount, reg.AmountPaid, reg.ReferredBy)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Registration, error) {
	return scanRegistration(r.conn(ctx).QueryRow(ctx,
		`SELECT `+regCols+` FROM registration WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, reg *Registration) error {
	tests, err := json.Marshal(reg.Tests)
	if err != nil {
		return fmt.Errorf("encode tests: %w", err)
	}
	_, err = r.conn(ctx).Exec(ctx, `
		UPDATE registration SET tests=$2, total_amount=$3, discount=$4,
			amount_paid=$5, referred_by=$6, updated_at=NOW()
		WHERE id = $1`,
		reg.ID, tests, reg.TotalAmount, reg.Discount, reg.AmountPaid, reg.ReferredBy)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM registration WHERE id = $1`, id)
	return err
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Registration, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM registration WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count registrations: %w", err)
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+regCols+` FROM registration WHERE patient_id = $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	return collectRegistrations(rows, total)
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Registration, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM registration`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count registrations: %w", err)
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+regCols+` FROM registration ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	return collectRegistrations(rows, total)
}

func collectRegistrations(rows pgx.Rows, total int) ([]*Registration, int, error) {
	var regs []*Registration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, 0, err
		}
		regs = append(regs, reg)
	}
	return regs, total, rows.Err()
}

func (r *repoPG) CountSince(ctx context.Context, since time.Time) (int, error) {
	var count int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM registration WHERE created_at >= $1`, since).Scan(&count)
	return count, err
}

func (r *repoPG) RevenueSince(ctx context.Context, since time.Time) (float64, error) {
	var revenue float64
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COALESCE(SUM(amount_paid), 0) FROM registration WHERE created_at >= $1`,
		since).Scan(&revenue)
	return revenue, err
}
