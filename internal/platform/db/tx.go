package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is the subset of pgx operations shared by *pgxpool.Pool and pgx.Tx.
// Repositories run their queries against whichever one the context carries.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type txKey struct{}

// QuerierFromContext returns the transaction stored in ctx by WithTx, or nil
// when the caller is not inside a transaction.
func QuerierFromContext(ctx context.Context) Querier {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return nil
}

// WithTx runs fn inside a single database transaction. The transaction is
// attached to the context passed to fn, so any repository call made through
// that context joins the transaction. The transaction commits when fn returns
// nil and rolls back otherwise.
func WithTx(ctx context.Context, pool *pgxpool.Pool, fn func(ctx context.Context) error) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// AdvisoryLock takes a transaction-scoped advisory lock keyed by (class, key).
// The key is hashed server-side with hashtext, so any stable string (such as a
// UUID) works. The lock is released automatically when the enclosing
// transaction ends, so it must be called through a context produced by WithTx.
func AdvisoryLock(ctx context.Context, class int32, key string) error {
	tx := QuerierFromContext(ctx)
	if tx == nil {
		return fmt.Errorf("advisory lock requires a transaction")
	}
	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1, hashtext($2))", class, key); err != nil {
		return fmt.Errorf("acquire advisory lock: %w", err)
	}
	return nil
}
