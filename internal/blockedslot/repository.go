package blockedslot

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

// Repository is the Blocked-Slot Registry. It applies no business rules.
type Repository interface {
	Create(ctx context.Context, b *BlockedSlot) error
	GetByID(ctx context.Context, id string) (*BlockedSlot, error)
	// At returns the block on a slot, or ErrNotFound.
	At(ctx context.Context, date time.Time, hour int) (*BlockedSlot, error)
	List(ctx context.Context, filter Filter) ([]*BlockedSlot, error)
	Delete(ctx context.Context, id string) error
}

var columns = []string{"id", "date", "hour", "reason", "created_by", "created_at"}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) Create(ctx context.Context, b *BlockedSlot) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.blocked_slots").
		Columns("date", "hour", "reason", "created_by").
		Values(b.Date, b.Hour, b.Reason, b.CreatedBy).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create blocked slot query failed: %w", err)
	}

	if err := db.Conn(ctx, r.pool).QueryRow(ctx, query, args...).Scan(&b.ID, &b.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ErrAlreadyBlocked
		}
		return apperror.Storage(err, "create blocked slot failed")
	}
	return nil
}

func (r *pgxRepository) getOne(ctx context.Context, where squirrel.Eq) (*BlockedSlot, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(columns...).
		From("public.blocked_slots").
		Where(where).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get blocked slot query failed: %w", err)
	}

	var b BlockedSlot
	err = db.Conn(ctx, r.pool).QueryRow(ctx, query, args...).
		Scan(&b.ID, &b.Date, &b.Hour, &b.Reason, &b.CreatedBy, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, apperror.Storage(err, "get blocked slot failed")
	}
	return &b, nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*BlockedSlot, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

func (r *pgxRepository) At(ctx context.Context, date time.Time, hour int) (*BlockedSlot, error) {
	return r.getOne(ctx, squirrel.Eq{"date": date, "hour": hour})
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*BlockedSlot, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(columns...).From("public.blocked_slots")
	if filter.From != nil {
		query = query.Where(squirrel.GtOrEq{"date": *filter.From})
	}
	if filter.To != nil {
		query = query.Where(squirrel.LtOrEq{"date": *filter.To})
	}

	sql, args, err := query.OrderBy("date ASC", "hour ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list blocked slots query failed: %w", err)
	}

	rows, err := db.Conn(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, apperror.Storage(err, "list blocked slots failed")
	}
	defer rows.Close()

	var list []*BlockedSlot
	for rows.Next() {
		var b BlockedSlot
		if err := rows.Scan(&b.ID, &b.Date, &b.Hour, &b.Reason, &b.CreatedBy, &b.CreatedAt); err != nil {
			return nil, apperror.Storage(err, "scan blocked slot failed")
		}
		list = append(list, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Storage(err, "list blocked slots failed")
	}
	return list, nil
}

func (r *pgxRepository) Delete(ctx context.Context, id string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Delete("public.blocked_slots").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete blocked slot query failed: %w", err)
	}

	ct, err := db.Conn(ctx, r.pool).Exec(ctx, query, args...)
	if err != nil {
		return apperror.Storage(err, "delete blocked slot failed")
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
