package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/viccon/sturdyc"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/nekogravitycat/wellness-booking-backend/internal/calendar"
	"github.com/nekogravitycat/wellness-booking-backend/internal/event"
	"github.com/nekogravitycat/wellness-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/wellness-booking-backend/internal/reservation"
)

var tracer = otel.Tracer("github.com/nekogravitycat/wellness-booking-backend/internal/stats")

var ErrInvalidRange = apperror.Validation("invalid_input", calendar.ErrInvalidRange.Error())

type Config struct {
	Tenants       []string
	BookableHours []int
	TopN          int
	CacheTTL      time.Duration // zero disables caching
}

type Service interface {
	Statistics(ctx context.Context, from, to *time.Time) (*Statistics, error)
	MonthlyPivot(ctx context.Context, from, to calendar.Month) (*Pivot, error)
}

type service struct {
	cfg          Config
	reservations reservation.Repository
	events       event.Repository

	statsCache *sturdyc.Client[*Statistics]
	pivotCache *sturdyc.Client[*Pivot]
}

const (
	cacheCapacity    = 512
	cacheShards      = 4
	cacheEvictionPct = 10
)

// NewService builds the aggregator. Results are cached for cfg.CacheTTL; reporting
// reads tolerate that staleness.
func NewService(cfg Config, reservations reservation.Repository, events event.Repository) Service {
	s := &service{cfg: cfg, reservations: reservations, events: events}
	if cfg.CacheTTL > 0 {
		s.statsCache = sturdyc.New[*Statistics](cacheCapacity, cacheShards, cfg.CacheTTL, cacheEvictionPct)
		s.pivotCache = sturdyc.New[*Pivot](cacheCapacity, cacheShards, cfg.CacheTTL, cacheEvictionPct)
	}
	return s
}

func formatBound(d *time.Time) string {
	if d == nil {
		return "*"
	}
	return calendar.FormatDate(*d)
}

func (s *service) Statistics(ctx context.Context, from, to *time.Time) (*Statistics, error) {
	if from != nil && to != nil && from.After(*to) {
		return nil, ErrInvalidRange
	}

	key := fmt.Sprintf("stats:%s:%s", formatBound(from), formatBound(to))
	fetch := func(ctx context.Context) (*Statistics, error) {
		return s.computeStatistics(ctx, from, to)
	}
	if s.statsCache == nil {
		return fetch(ctx)
	}
	return s.statsCache.GetOrFetch(ctx, key, fetch)
}

func (s *service) computeStatistics(ctx context.Context, from, to *time.Time) (_ *Statistics, err error) {
	ctx, span := tracer.Start(ctx, "stats.Statistics", trace.WithAttributes(
		attribute.String("range.from", formatBound(from)),
		attribute.String("range.to", formatBound(to)),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
		}
		span.End()
	}()

	list, err := s.reservations.List(ctx, reservation.Filter{From: from, To: to})
	if err != nil {
		return nil, err
	}
	events, err := s.events.ListByDateRange(ctx, event.RangeFilter{From: from, To: to})
	if err != nil {
		return nil, err
	}

	st := Compute(list, events, s.cfg.BookableHours, s.cfg.TopN)
	st.From, st.To = from, to
	return st, nil
}

func (s *service) MonthlyPivot(ctx context.Context, from, to calendar.Month) (*Pivot, error) {
	months, err := calendar.MonthRange(from, to)
	if err != nil {
		return nil, ErrInvalidRange
	}

	fetch := func(ctx context.Context) (_ *Pivot, err error) {
		ctx, span := tracer.Start(ctx, "stats.MonthlyPivot", trace.WithAttributes(
			attribute.String("range.from", from.Key()),
			attribute.String("range.to", to.Key()),
		))
		defer func() {
			if err != nil {
				span.RecordError(err)
			}
			span.End()
		}()

		first, last := from.First(), to.Last()
		list, err := s.reservations.List(ctx, reservation.Filter{
			Status: reservation.StatusActive,
			From:   &first,
			To:     &last,
		})
		if err != nil {
			return nil, err
		}
		return BuildPivot(list, s.cfg.Tenants, months), nil
	}
	if s.pivotCache == nil {
		return fetch(ctx)
	}
	return s.pivotCache.GetOrFetch(ctx, "pivot:"+from.Key()+":"+to.Key(), fetch)
}
