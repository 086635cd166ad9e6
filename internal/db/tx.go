package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/wellness-booking-backend/internal/pkg/apperror"
)

// Querier is the subset of pgx shared by *pgxpool.Pool and pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type txKey struct{}

// Conn returns the transaction bound to ctx, or the pool when there is none.
// Repositories call it on every statement so they join an enclosing slot transaction.
func Conn(ctx context.Context, pool *pgxpool.Pool) Querier {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return pool
}

// TxManager serializes writes with transaction-scoped advisory locks, one per
// (date, hour) slot and one per tenant.
type TxManager struct {
	pool *pgxpool.Pool
}

func NewTxManager(pool *pgxpool.Pool) *TxManager {
	return &TxManager{pool: pool}
}

// WithSlotLock runs fn inside a transaction holding the advisory lock of the slot.
// The lock is released on commit or rollback.
func (m *TxManager) WithSlotLock(ctx context.Context, date time.Time, hour int, fn func(ctx context.Context) error) error {
	return m.withLock(ctx, "SELECT pg_advisory_xact_lock($1)", SlotLockKey(date, hour), fn)
}

// WithTenantLock runs fn inside a transaction holding the advisory lock of the tenant.
// Tenant keys live in the two-int lock space so they never collide with slot keys.
func (m *TxManager) WithTenantLock(ctx context.Context, tenant string, fn func(ctx context.Context) error) error {
	return m.withLock(ctx, "SELECT pg_advisory_xact_lock(1, hashtext($1))", tenant, fn)
}

// withLock joins the transaction already bound to ctx, so nested locks share one
// transaction and are released together.
func (m *TxManager) withLock(ctx context.Context, lockSQL string, key any, fn func(ctx context.Context) error) error {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		if _, err := tx.Exec(ctx, lockSQL, key); err != nil {
			return apperror.Storage(err, "failed to acquire lock")
		}
		return fn(ctx)
	}

	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return apperror.Storage(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, lockSQL, key); err != nil {
		return apperror.Storage(err, "failed to acquire lock")
	}

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return apperror.Storage(err, "failed to commit transaction")
	}
	return nil
}

// SlotLockKey maps a slot to a unique advisory lock key (YYYYMMDDHH).
func SlotLockKey(date time.Time, hour int) int64 {
	y, m, d := date.Date()
	return int64(y)*1_000_000 + int64(m)*10_000 + int64(d)*100 + int64(hour)
}
