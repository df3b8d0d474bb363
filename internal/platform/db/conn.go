package db

import (
	"context"

	"github.com/jackc/pgx/v5"
)

type contextKey string

// TxKey carries an open transaction so repositories participate in it
// instead of drawing from the pool.
const TxKey contextKey = "db_tx"

// WithTx returns a context carrying the given transaction.
func WithTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, TxKey, tx)
}

// TxFromContext retrieves the transaction from context, if any.
func TxFromContext(ctx context.Context) pgx.Tx {
	tx, _ := ctx.Value(TxKey).(pgx.Tx)
	return tx
}
