package event

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/wellness-booking-backend/internal/db"
	"github.com/nekogravitycat/wellness-booking-backend/internal/pkg/apperror"
)

// Repository is the append-only audit trail. Listings are newest first.
type Repository interface {
	Append(ctx context.Context, e *Event) error
	// List returns one page of events and the total number of events.
	List(ctx context.Context, limit, offset int) ([]*Event, int, error)
	ListByDateRange(ctx context.Context, filter RangeFilter) ([]*Event, error)
}

var columns = []string{"id", "seq", "type", "tenant_code", "date", "hour", "admin_code", "note", "created_at"}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) Append(ctx context.Context, e *Event) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.events").
		Columns("type", "tenant_code", "date", "hour", "admin_code", "note").
		Values(e.Type, e.TenantCode, e.Date, e.Hour, e.AdminCode, e.Note).
		Suffix("RETURNING id, seq, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build append event query failed: %w", err)
	}

	if err := db.Conn(ctx, r.pool).QueryRow(ctx, query, args...).Scan(&e.ID, &e.Seq, &e.CreatedAt); err != nil {
		return apperror.Storage(err, "append event failed")
	}
	return nil
}

func (r *pgxRepository) query(ctx context.Context, b squirrel.SelectBuilder) ([]*Event, error) {
	sql, args, err := b.OrderBy("created_at DESC", "seq DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list events query failed: %w", err)
	}

	rows, err := db.Conn(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, apperror.Storage(err, "list events failed")
	}

	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*Event, error) {
		var e Event
		err := row.Scan(&e.ID, &e.Seq, &e.Type, &e.TenantCode, &e.Date, &e.Hour, &e.AdminCode, &e.Note, &e.CreatedAt)
		return &e, err
	})
	if err != nil {
		return nil, apperror.Storage(err, "scan events failed")
	}
	return list, nil
}

func (r *pgxRepository) List(ctx context.Context, limit, offset int) ([]*Event, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	countSQL, countArgs, err := psql.Select("COUNT(*)").From("public.events").ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count events query failed: %w", err)
	}
	var total int
	if err := db.Conn(ctx, r.pool).QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, apperror.Storage(err, "count events failed")
	}

	list, err := r.query(ctx, psql.Select(columns...).
		From("public.events").
		Limit(uint64(limit)).
		Offset(uint64(offset)))
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *pgxRepository) ListByDateRange(ctx context.Context, filter RangeFilter) ([]*Event, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	b := psql.Select(columns...).From("public.events")
	if filter.From != nil {
		b = b.Where(squirrel.GtOrEq{"date": *filter.From})
	}
	if filter.To != nil {
		b = b.Where(squirrel.LtOrEq{"date": *filter.To})
	}
	return r.query(ctx, b)
}
