package reservation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/wellness-booking-backend/internal/db"
	"github.com/nekogravitycat/wellness-booking-backend/internal/pkg/apperror"
)

// Repository is the Reservation Ledger. It applies no business rules.
type Repository interface {
	Create(ctx context.Context, r *Reservation) error
	GetByID(ctx context.Context, id string) (*Reservation, error)
	// ActiveAt returns the active reservation of a slot, or ErrNotFound.
	ActiveAt(ctx context.Context, date time.Time, hour int) (*Reservation, error)
	// LatestActiveByTenant returns the tenant's active reservation with the latest date
	// (ties broken by creation order), or ErrNotFound.
	LatestActiveByTenant(ctx context.Context, tenantCode string) (*Reservation, error)
	// List returns matching reservations ordered by date, hour and creation order.
	List(ctx context.Context, filter Filter) ([]*Reservation, error)
	// Cancel moves an active reservation to cancelled; ErrNotActive if it already was.
	Cancel(ctx context.Context, id string, cancelledBy *string, at time.Time) error
	UpdateNote(ctx context.Context, id string, note *string) error
	MarkReminderSent(ctx context.Context, id string, at time.Time) error
}

var columns = []string{
	"id", "seq", "tenant_code", "date", "hour", "status", "note",
	"created_by", "cancelled_by", "cancelled_at", "reminder_sent_at", "created_at",
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func scan(row pgx.Row) (*Reservation, error) {
	var r Reservation
	err := row.Scan(
		&r.ID, &r.Seq, &r.TenantCode, &r.Date, &r.Hour, &r.Status, &r.Note,
		&r.CreatedBy, &r.CancelledBy, &r.CancelledAt, &r.ReminderSentAt, &r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (r *pgxRepository) Create(ctx context.Context, res *Reservation) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.reservations").
		Columns("tenant_code", "date", "hour", "status", "note", "created_by").
		Values(res.TenantCode, res.Date, res.Hour, res.Status, res.Note, res.CreatedBy).
		Suffix("RETURNING id, seq, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create reservation query failed: %w", err)
	}

	err = db.Conn(ctx, r.pool).QueryRow(ctx, query, args...).Scan(&res.ID, &res.Seq, &res.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ErrSlotTaken
		}
		return apperror.Storage(err, "create reservation failed")
	}
	return nil
}

func (r *pgxRepository) getOne(ctx context.Context, b squirrel.SelectBuilder, what string) (*Reservation, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build %s query failed: %w", what, err)
	}

	res, err := scan(db.Conn(ctx, r.pool).QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, apperror.Storage(err, what+" failed")
	}
	return res, nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Reservation, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	return r.getOne(ctx, psql.Select(columns...).
		From("public.reservations").
		Where(squirrel.Eq{"id": id}), "get reservation")
}

func (r *pgxRepository) ActiveAt(ctx context.Context, date time.Time, hour int) (*Reservation, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	return r.getOne(ctx, psql.Select(columns...).
		From("public.reservations").
		Where(squirrel.Eq{"date": date, "hour": hour, "status": StatusActive}), "get active reservation")
}

func (r *pgxRepository) LatestActiveByTenant(ctx context.Context, tenantCode string) (*Reservation, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	return r.getOne(ctx, psql.Select(columns...).
		From("public.reservations").
		Where(squirrel.Eq{"tenant_code": tenantCode, "status": StatusActive}).
		OrderBy("date DESC", "seq DESC").
		Limit(1), "get latest reservation")
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Reservation, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(columns...).From("public.reservations")

	if filter.TenantCode != "" {
		query = query.Where(squirrel.Eq{"tenant_code": filter.TenantCode})
	}
	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"status": filter.Status})
	}
	if filter.From != nil {
		query = query.Where(squirrel.GtOrEq{"date": *filter.From})
	}
	if filter.To != nil {
		query = query.Where(squirrel.LtOrEq{"date": *filter.To})
	}
	if filter.ReminderPending {
		query = query.Where(squirrel.Eq{"reminder_sent_at": nil})
	}

	sql, args, err := query.OrderBy("date ASC", "hour ASC", "seq ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list reservations query failed: %w", err)
	}

	rows, err := db.Conn(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, apperror.Storage(err, "list reservations failed")
	}
	defer rows.Close()

	var list []*Reservation
	for rows.Next() {
		res, err := scan(rows)
		if err != nil {
			return nil, apperror.Storage(err, "scan reservation failed")
		}
		list = append(list, res)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Storage(err, "list reservations failed")
	}
	return list, nil
}

func (r *pgxRepository) Cancel(ctx context.Context, id string, cancelledBy *string, at time.Time) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.reservations").
		Set("status", StatusCancelled).
		Set("cancelled_by", cancelledBy).
		Set("cancelled_at", at).
		Where(squirrel.Eq{"id": id, "status": StatusActive}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build cancel reservation query failed: %w", err)
	}

	ct, err := db.Conn(ctx, r.pool).Exec(ctx, query, args...)
	if err != nil {
		return apperror.Storage(err, "cancel reservation failed")
	}
	if ct.RowsAffected() == 0 {
		// Distinguish a missing row from one that is already cancelled.
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return ErrNotActive
	}
	return nil
}

func (r *pgxRepository) exec(ctx context.Context, b squirrel.UpdateBuilder, what string) error {
	query, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("build %s query failed: %w", what, err)
	}

	ct, err := db.Conn(ctx, r.pool).Exec(ctx, query, args...)
	if err != nil {
		return apperror.Storage(err, what+" failed")
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) UpdateNote(ctx context.Context, id string, note *string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	return r.exec(ctx, psql.Update("public.reservations").
		Set("note", note).
		Where(squirrel.Eq{"id": id}), "update reservation note")
}

func (r *pgxRepository) MarkReminderSent(ctx context.Context, id string, at time.Time) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	return r.exec(ctx, psql.Update("public.reservations").
		Set("reminder_sent_at", at).
		Where(squirrel.Eq{"id": id}), "mark reminder sent")
}
