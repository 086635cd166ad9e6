package clienterror

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/wellness-booking-backend/internal/db"
	"github.com/nekogravitycat/wellness-booking-backend/internal/pkg/apperror"
)

type Repository interface {
	Append(ctx context.Context, e *ClientError) error
	// List returns the most recent reports, newest first.
	List(ctx context.Context, limit int) ([]*ClientError, error)
}

var columns = []string{
	"id", "seq", "error_type", "error_message", "error_stack",
	"user_code", "page_url", "user_agent", "extra_data", "created_at",
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) Append(ctx context.Context, e *ClientError) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.app_errors").
		Columns("error_type", "error_message", "error_stack", "user_code", "page_url", "user_agent", "extra_data").
		Values(e.Type, e.Message, e.Stack, e.UserCode, e.PageURL, e.UserAgent, e.Extra).
		Suffix("RETURNING id, seq, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build append client error query failed: %w", err)
	}

	if err := db.Conn(ctx, r.pool).QueryRow(ctx, query, args...).Scan(&e.ID, &e.Seq, &e.CreatedAt); err != nil {
		return apperror.Storage(err, "append client error failed")
	}
	return nil
}

func (r *pgxRepository) List(ctx context.Context, limit int) ([]*ClientError, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	sql, args, err := psql.Select(columns...).
		From("public.app_errors").
		OrderBy("created_at DESC", "seq DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list client errors query failed: %w", err)
	}

	rows, err := db.Conn(ctx, r.pool).Query(ctx, sql, args...)
	if err != nil {
		return nil, apperror.Storage(err, "list client errors failed")
	}

	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*ClientError, error) {
		var e ClientError
		err := row.Scan(&e.ID, &e.Seq, &e.Type, &e.Message, &e.Stack,
			&e.UserCode, &e.PageURL, &e.UserAgent, &e.Extra, &e.CreatedAt)
		return &e, err
	})
	if err != nil {
		return nil, apperror.Storage(err, "scan client errors failed")
	}
	return list, nil
}
