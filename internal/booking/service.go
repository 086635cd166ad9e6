package booking

import (
	"context"
	"errors"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/nekogravitycat/wellness-booking-backend/internal/blockedslot"
	"github.com/nekogravitycat/wellness-booking-backend/internal/calendar"
	"github.com/nekogravitycat/wellness-booking-backend/internal/event"
	"github.com/nekogravitycat/wellness-booking-backend/internal/notify"
	"github.com/nekogravitycat/wellness-booking-backend/internal/pubsub"
	"github.com/nekogravitycat/wellness-booking-backend/internal/reservation"
	"github.com/nekogravitycat/wellness-booking-backend/internal/slotgrid"
)

var tracer = otel.Tracer("github.com/nekogravitycat/wellness-booking-backend/internal/booking")

// SlotLocker runs fn with exclusive access to one (date, hour) slot or to one tenant.
// A database-backed locker passes its transaction to fn through ctx, and a slot lock
// taken inside a tenant lock joins the same transaction.
type SlotLocker interface {
	WithSlotLock(ctx context.Context, date time.Time, hour int, fn func(ctx context.Context) error) error
	WithTenantLock(ctx context.Context, tenant string, fn func(ctx context.Context) error) error
}

// Publisher broadcasts committed changes. Delivery is best-effort.
type Publisher interface {
	Publish(topic string, payload any)
}

type Service interface {
	Reserve(ctx context.Context, tenant string, date time.Time, hour int) (*reservation.Reservation, error)
	AdminReserve(ctx context.Context, req AdminReserveRequest) (*reservation.Reservation, error)
	Cancel(ctx context.Context, id, tenant string) error
	AdminCancel(ctx context.Context, id, admin string) error
	Block(ctx context.Context, req BlockRequest) (*blockedslot.BlockedSlot, error)
	Unblock(ctx context.Context, id, admin string) error
	SetNote(ctx context.Context, id string, note *string, admin string) (*reservation.Reservation, error)

	Availability(ctx context.Context, date time.Time) ([]SlotView, error)
	ListMine(ctx context.Context, tenant string) ([]*reservation.Reservation, error)
	ListActive(ctx context.Context) ([]*reservation.Reservation, error)
	ListByRange(ctx context.Context, from, to *time.Time) ([]*reservation.Reservation, error)
	ListBlocked(ctx context.Context, from, to *time.Time) ([]*blockedslot.BlockedSlot, error)

	DueReminders(ctx context.Context) ([]*reservation.Reservation, error)
	MarkReminderSent(ctx context.Context, id string, at *time.Time) error
	SendDueReminders(ctx context.Context) (int, error)
}

type Deps struct {
	Grid         *slotgrid.Grid
	Clock        calendar.Clock
	Locker       SlotLocker
	Reservations reservation.Repository
	Blocks       blockedslot.Repository
	Events       event.Repository
	Dispatcher   notify.Dispatcher // optional
	Publisher    Publisher         // optional
}

type service struct {
	cfg     Config
	tenants map[string]struct{}
	Deps
}

func NewService(cfg Config, deps Deps) Service {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if deps.Clock == nil {
		deps.Clock = calendar.RealClock{}
	}
	tenants := make(map[string]struct{}, len(cfg.Tenants))
	for _, t := range cfg.Tenants {
		tenants[t] = struct{}{}
	}
	return &service{cfg: cfg, tenants: tenants, Deps: deps}
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func slotAttrs(date time.Time, hour int) trace.SpanStartOption {
	return trace.WithAttributes(
		attribute.String("slot.date", calendar.FormatDate(date)),
		attribute.Int("slot.hour", hour),
	)
}

func (s *service) checkTenant(tenant string) error {
	if _, ok := s.tenants[tenant]; !ok {
		return ErrUnknownTenant
	}
	return nil
}

func (s *service) checkHour(hour int) error {
	if !s.Grid.IsBookable(hour) {
		return ErrHourNotBookable
	}
	return nil
}

// checkFree must run under the slot lock.
func (s *service) checkFree(ctx context.Context, date time.Time, hour int) error {
	if _, err := s.Reservations.ActiveAt(ctx, date, hour); err == nil {
		return ErrSlotOccupied
	} else if !errors.Is(err, reservation.ErrNotFound) {
		return err
	}
	if _, err := s.Blocks.At(ctx, date, hour); err == nil {
		return ErrSlotOccupied
	} else if !errors.Is(err, blockedslot.ErrNotFound) {
		return err
	}
	return nil
}

// checkSpacing measures from the tenant's most recent active reservation.
func (s *service) checkSpacing(ctx context.Context, tenant string, date time.Time) error {
	latest, err := s.Reservations.LatestActiveByTenant(ctx, tenant)
	if errors.Is(err, reservation.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	earliest := calendar.AddDays(latest.Date, s.cfg.MinSpacingDays)
	if date.Before(earliest) {
		return ErrRateLimited.WithDetail("earliest_date", calendar.FormatDate(earliest))
	}
	return nil
}

func (s *service) create(ctx context.Context, r *reservation.Reservation, self bool) error {
	if self {
		// Reservations by one tenant on different slots must see each other for spacing.
		return s.Locker.WithTenantLock(ctx, r.TenantCode, func(ctx context.Context) error {
			return s.insert(ctx, r, true)
		})
	}
	return s.insert(ctx, r, false)
}

func (s *service) insert(ctx context.Context, r *reservation.Reservation, self bool) error {
	return s.Locker.WithSlotLock(ctx, r.Date, r.Hour, func(ctx context.Context) error {
		if err := s.checkFree(ctx, r.Date, r.Hour); err != nil {
			return err
		}
		if self {
			if err := s.checkSpacing(ctx, r.TenantCode, r.Date); err != nil {
				return err
			}
		}
		if err := s.Reservations.Create(ctx, r); err != nil {
			if errors.Is(err, reservation.ErrSlotTaken) {
				return ErrSlotOccupied
			}
			return err
		}
		return nil
	})
}

func (s *service) Reserve(ctx context.Context, tenant string, date time.Time, hour int) (_ *reservation.Reservation, err error) {
	ctx, span := tracer.Start(ctx, "booking.Reserve", slotAttrs(date, hour))
	defer func() { endSpan(span, err) }()

	now := s.Clock.Now()
	date = calendar.Normalize(date)

	if err := s.checkTenant(tenant); err != nil {
		return nil, err
	}
	if err := s.checkHour(hour); err != nil {
		return nil, err
	}

	today := calendar.DateOf(now, s.cfg.Location)
	latest := calendar.AddDays(today, s.cfg.HorizonDays)
	if date.Before(today) || date.After(latest) {
		return nil, ErrOutsideHorizon.WithDetail("latest_date", calendar.FormatDate(latest))
	}
	if !calendar.SlotStart(date, hour, s.cfg.Location).After(now) {
		return nil, ErrSlotInPast
	}

	r := &reservation.Reservation{
		TenantCode: tenant,
		Date:       date,
		Hour:       hour,
		Status:     reservation.StatusActive,
	}
	if err := s.create(ctx, r, true); err != nil {
		return nil, err
	}

	s.committed(ctx, &event.Event{
		Type:       event.TypeReservation,
		TenantCode: &r.TenantCode,
		Date:       r.Date,
		Hour:       r.Hour,
	}, notify.TypeNewReservation)
	s.publish(pubsub.TopicReservations, "created", r.ID, r.Date, r.Hour)
	return r, nil
}

func (s *service) AdminReserve(ctx context.Context, req AdminReserveRequest) (_ *reservation.Reservation, err error) {
	ctx, span := tracer.Start(ctx, "booking.AdminReserve", slotAttrs(req.Date, req.Hour))
	defer func() { endSpan(span, err) }()

	if err := s.checkTenant(req.Tenant); err != nil {
		return nil, err
	}
	if err := s.checkHour(req.Hour); err != nil {
		return nil, err
	}
	if req.Admin == "" {
		return nil, ErrInvalidInput
	}

	admin := req.Admin
	r := &reservation.Reservation{
		TenantCode: req.Tenant,
		Date:       calendar.Normalize(req.Date),
		Hour:       req.Hour,
		Status:     reservation.StatusActive,
		Note:       req.Note,
		CreatedBy:  &admin,
	}
	if err := s.create(ctx, r, false); err != nil {
		return nil, err
	}

	s.committed(ctx, &event.Event{
		Type:       event.TypeAdminBooking,
		TenantCode: &r.TenantCode,
		Date:       r.Date,
		Hour:       r.Hour,
		AdminCode:  &admin,
		Note:       r.Note,
	}, notify.TypeAdminBooking)
	s.publish(pubsub.TopicReservations, "created", r.ID, r.Date, r.Hour)
	return r, nil
}

// cancel re-reads the reservation under its slot lock; the conditional update in the
// ledger makes a concurrent second cancel observe ErrNotActive.
func (s *service) cancel(ctx context.Context, r *reservation.Reservation, by *string, at time.Time) error {
	err := s.Locker.WithSlotLock(ctx, r.Date, r.Hour, func(ctx context.Context) error {
		return s.Reservations.Cancel(ctx, r.ID, by, at)
	})
	if errors.Is(err, reservation.ErrNotActive) {
		return ErrAlreadyCancelled
	}
	return err
}

func (s *service) Cancel(ctx context.Context, id, tenant string) (err error) {
	ctx, span := tracer.Start(ctx, "booking.Cancel", trace.WithAttributes(attribute.String("reservation.id", id)))
	defer func() { endSpan(span, err) }()

	now := s.Clock.Now()

	r, err := s.Reservations.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if r.TenantCode != tenant {
		return ErrNotOwner
	}
	if !r.IsActive() {
		return ErrAlreadyCancelled
	}
	// Exactly the lead time remaining is already too late.
	if calendar.SlotStart(r.Date, r.Hour, s.cfg.Location).Sub(now) <= s.cfg.CancelLeadTime {
		return ErrCancelTooLate
	}

	if err := s.cancel(ctx, r, nil, now); err != nil {
		return err
	}

	s.committed(ctx, &event.Event{
		Type:       event.TypeCancellation,
		TenantCode: &r.TenantCode,
		Date:       r.Date,
		Hour:       r.Hour,
	}, notify.TypeCancellation)
	s.publish(pubsub.TopicReservations, "cancelled", r.ID, r.Date, r.Hour)
	return nil
}

func (s *service) AdminCancel(ctx context.Context, id, admin string) (err error) {
	ctx, span := tracer.Start(ctx, "booking.AdminCancel", trace.WithAttributes(attribute.String("reservation.id", id)))
	defer func() { endSpan(span, err) }()

	if admin == "" {
		return ErrInvalidInput
	}

	r, err := s.Reservations.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !r.IsActive() {
		return ErrAlreadyCancelled
	}

	if err := s.cancel(ctx, r, &admin, s.Clock.Now()); err != nil {
		return err
	}

	s.committed(ctx, &event.Event{
		Type:       event.TypeAdminCancel,
		TenantCode: &r.TenantCode,
		Date:       r.Date,
		Hour:       r.Hour,
		AdminCode:  &admin,
		Note:       r.Note,
	}, notify.TypeAdminCancel)
	s.publish(pubsub.TopicReservations, "cancelled", r.ID, r.Date, r.Hour)
	return nil
}

func (s *service) Block(ctx context.Context, req BlockRequest) (_ *blockedslot.BlockedSlot, err error) {
	ctx, span := tracer.Start(ctx, "booking.Block", slotAttrs(req.Date, req.Hour))
	defer func() { endSpan(span, err) }()

	if err := s.checkHour(req.Hour); err != nil {
		return nil, err
	}
	if req.Admin == "" {
		return nil, ErrInvalidInput
	}

	b := &blockedslot.BlockedSlot{
		Date:      calendar.Normalize(req.Date),
		Hour:      req.Hour,
		Reason:    req.Reason,
		CreatedBy: req.Admin,
	}
	err = s.Locker.WithSlotLock(ctx, b.Date, b.Hour, func(ctx context.Context) error {
		if err := s.checkFree(ctx, b.Date, b.Hour); err != nil {
			return err
		}
		if err := s.Blocks.Create(ctx, b); err != nil {
			if errors.Is(err, blockedslot.ErrAlreadyBlocked) {
				return ErrSlotOccupied
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, &event.Event{
		Type:      event.TypeBlock,
		Date:      b.Date,
		Hour:      b.Hour,
		AdminCode: &b.CreatedBy,
		Note:      &b.Reason,
	})
	s.publish(pubsub.TopicBlockedSlots, "created", b.ID, b.Date, b.Hour)
	return b, nil
}

func (s *service) Unblock(ctx context.Context, id, admin string) (err error) {
	ctx, span := tracer.Start(ctx, "booking.Unblock", trace.WithAttributes(attribute.String("block.id", id)))
	defer func() { endSpan(span, err) }()

	if admin == "" {
		return ErrInvalidInput
	}

	b, err := s.Blocks.GetByID(ctx, id)
	if err != nil {
		return err
	}
	err = s.Locker.WithSlotLock(ctx, b.Date, b.Hour, func(ctx context.Context) error {
		return s.Blocks.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.record(ctx, &event.Event{
		Type:      event.TypeUnblock,
		Date:      b.Date,
		Hour:      b.Hour,
		AdminCode: &admin,
		Note:      &b.Reason,
	})
	s.publish(pubsub.TopicBlockedSlots, "deleted", b.ID, b.Date, b.Hour)
	return nil
}

// SetNote edits reservation metadata. It is not a lifecycle transition and is not audited.
func (s *service) SetNote(ctx context.Context, id string, note *string, admin string) (*reservation.Reservation, error) {
	if admin == "" {
		return nil, ErrInvalidInput
	}
	if note != nil && *note == "" {
		note = nil
	}
	if err := s.Reservations.UpdateNote(ctx, id, note); err != nil {
		return nil, err
	}
	r, err := s.Reservations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	log.Printf("[booking] note on reservation %s updated by %s", id, admin)
	s.publish(pubsub.TopicReservations, "updated", r.ID, r.Date, r.Hour)
	return r, nil
}

func (s *service) Availability(ctx context.Context, date time.Time) ([]SlotView, error) {
	date = calendar.Normalize(date)

	active, err := s.Reservations.List(ctx, reservation.Filter{Status: reservation.StatusActive, From: &date, To: &date})
	if err != nil {
		return nil, err
	}
	blocks, err := s.Blocks.List(ctx, blockedslot.Filter{From: &date, To: &date})
	if err != nil {
		return nil, err
	}

	byHour := make(map[int]*reservation.Reservation, len(active))
	for _, r := range active {
		byHour[r.Hour] = r
	}
	blockByHour := make(map[int]*blockedslot.BlockedSlot, len(blocks))
	for _, b := range blocks {
		blockByHour[b.Hour] = b
	}

	slots := s.Grid.All()
	views := make([]SlotView, 0, len(slots))
	for _, slot := range slots {
		v := SlotView{Hour: slot.Hour, Bookable: slot.Bookable, Info: slot.Info, State: SlotFree}
		if slot.Bookable {
			if r, ok := byHour[slot.Hour]; ok {
				v.State = SlotReserved
				v.Tenant = &r.TenantCode
				v.ReservationID = &r.ID
				v.Note = r.Note
			} else if b, ok := blockByHour[slot.Hour]; ok {
				v.State = SlotBlocked
				v.BlockID = &b.ID
				v.Note = &b.Reason
			}
		}
		views = append(views, v)
	}
	return views, nil
}

func (s *service) ListMine(ctx context.Context, tenant string) ([]*reservation.Reservation, error) {
	if err := s.checkTenant(tenant); err != nil {
		return nil, err
	}
	today := calendar.DateOf(s.Clock.Now(), s.cfg.Location)
	return s.Reservations.List(ctx, reservation.Filter{
		TenantCode: tenant,
		Status:     reservation.StatusActive,
		From:       &today,
	})
}

func (s *service) ListActive(ctx context.Context) ([]*reservation.Reservation, error) {
	return s.Reservations.List(ctx, reservation.Filter{Status: reservation.StatusActive})
}

func checkRange(from, to *time.Time) error {
	if from != nil && to != nil && from.After(*to) {
		return ErrInvalidInput.WithDetail("range", calendar.ErrInvalidRange.Error())
	}
	return nil
}

func (s *service) ListByRange(ctx context.Context, from, to *time.Time) ([]*reservation.Reservation, error) {
	if err := checkRange(from, to); err != nil {
		return nil, err
	}
	return s.Reservations.List(ctx, reservation.Filter{From: from, To: to})
}

func (s *service) ListBlocked(ctx context.Context, from, to *time.Time) ([]*blockedslot.BlockedSlot, error) {
	if err := checkRange(from, to); err != nil {
		return nil, err
	}
	return s.Blocks.List(ctx, blockedslot.Filter{From: from, To: to})
}

// DueReminders returns active, unreminded reservations starting within the reminder window.
func (s *service) DueReminders(ctx context.Context) ([]*reservation.Reservation, error) {
	now := s.Clock.Now()
	today := calendar.DateOf(now, s.cfg.Location)
	tomorrow := calendar.AddDays(today, 1) // window may cross midnight

	candidates, err := s.Reservations.List(ctx, reservation.Filter{
		Status:          reservation.StatusActive,
		From:            &today,
		To:              &tomorrow,
		ReminderPending: true,
	})
	if err != nil {
		return nil, err
	}

	var due []*reservation.Reservation
	for _, r := range candidates {
		until := calendar.SlotStart(r.Date, r.Hour, s.cfg.Location).Sub(now)
		if until >= s.cfg.ReminderFrom && until <= s.cfg.ReminderTo {
			due = append(due, r)
		}
	}
	return due, nil
}

// MarkReminderSent stamps the reservation with at, or with the current time when at is nil.
func (s *service) MarkReminderSent(ctx context.Context, id string, at *time.Time) error {
	sentAt := s.Clock.Now()
	if at != nil {
		sentAt = *at
	}
	return s.Reservations.MarkReminderSent(ctx, id, sentAt)
}

// SendDueReminders dispatches a reminder for each due reservation and marks only
// those whose dispatch succeeded, so failures are retried on the next run.
func (s *service) SendDueReminders(ctx context.Context) (sent int, err error) {
	ctx, span := tracer.Start(ctx, "booking.SendDueReminders")
	defer func() { endSpan(span, err) }()

	due, err := s.DueReminders(ctx)
	if err != nil {
		return 0, err
	}
	for _, r := range due {
		if s.Dispatcher != nil {
			if err := s.Dispatcher.Dispatch(ctx, message(notify.TypeReminder, r.TenantCode, r.Date, r.Hour, r.Note, nil)); err != nil {
				log.Printf("[booking] reminder for reservation %s not sent: %v", r.ID, err)
				continue
			}
		}
		if err := s.Reservations.MarkReminderSent(ctx, r.ID, s.Clock.Now()); err != nil {
			return sent, err
		}
		sent++
	}
	return sent, nil
}

func message(t notify.Type, tenant string, date time.Time, hour int, note, admin *string) notify.Message {
	return notify.Message{
		Type:        t,
		Tenant:      tenant,
		Date:        calendar.FormatDate(date),
		Hour:        hour,
		Note:        note,
		ActingAdmin: admin,
	}
}

// record appends the audit event for a committed mutation. A failure is logged
// and never undoes the mutation.
func (s *service) record(ctx context.Context, e *event.Event) {
	if err := s.Events.Append(ctx, e); err != nil {
		log.Printf("[booking] append %s event for %s %02d:00 failed: %v", e.Type, calendar.FormatDate(e.Date), e.Hour, err)
	}
}

// committed records the event and then dispatches the matching notification.
func (s *service) committed(ctx context.Context, e *event.Event, nt notify.Type) {
	s.record(ctx, e)
	if s.Dispatcher == nil || e.TenantCode == nil {
		return
	}
	if err := s.Dispatcher.Dispatch(ctx, message(nt, *e.TenantCode, e.Date, e.Hour, e.Note, e.AdminCode)); err != nil {
		log.Printf("[booking] %s notification failed: %v", nt, err)
	}
}

func (s *service) publish(topic, action, id string, date time.Time, hour int) {
	if s.Publisher == nil {
		return
	}
	s.Publisher.Publish(topic, pubsub.Change{
		Topic:  topic,
		Action: action,
		ID:     id,
		Date:   calendar.FormatDate(date),
		Hour:   hour,
	})
}
