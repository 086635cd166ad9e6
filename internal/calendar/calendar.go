// Package calendar holds the date arithmetic shared by the booking engine.
//
// A civil date is represented as a time.Time at midnight UTC. This matches how
// pgx scans a PostgreSQL DATE column and keeps comparisons independent of the
// facility timezone. Instants (now, slot start) are converted to civil dates
// with DateOf using the facility location.
package calendar

import (
	"errors"
	"fmt"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	MonthLayout = "2006-01"
)

var ErrInvalidRange = errors.New("range start is after range end")

// Date returns the civil date y-m-d.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DateOf returns the civil date of instant t as observed in loc.
func DateOf(t time.Time, loc *time.Location) time.Time {
	if loc != nil {
		t = t.In(loc)
	}
	y, m, d := t.Date()
	return Date(y, m, d)
}

// Normalize strips any time-of-day and location from a civil date.
func Normalize(d time.Time) time.Time {
	y, m, day := d.Date()
	return Date(y, m, day)
}

// ParseDate parses a "YYYY-MM-DD" civil date.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return d, nil
}

// FormatDate formats a civil date as "YYYY-MM-DD".
func FormatDate(d time.Time) string {
	return d.Format(DateLayout)
}

// AddDays shifts a civil date by n calendar days.
func AddDays(d time.Time, n int) time.Time {
	return Normalize(d).AddDate(0, 0, n)
}

// SlotStart returns the instant at which hour begins on civil date d in loc.
func SlotStart(d time.Time, hour int, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, day := d.Date()
	return time.Date(y, m, day, hour, 0, 0, 0, loc)
}

// Weekday returns the day of week of civil date d.
func Weekday(d time.Time) time.Weekday {
	return Normalize(d).Weekday()
}

// ExpandRange lists every civil date in [from, to].
func ExpandRange(from, to time.Time) ([]time.Time, error) {
	from, to = Normalize(from), Normalize(to)
	if from.After(to) {
		return nil, ErrInvalidRange
	}
	var days []time.Time
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days, nil
}

// Month identifies a calendar month.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf returns the month civil date d falls in.
func MonthOf(d time.Time) Month {
	return Month{Year: d.Year(), Month: d.Month()}
}

// ParseMonth parses a "YYYY-MM" month key.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse(MonthLayout, s)
	if err != nil {
		return Month{}, fmt.Errorf("invalid month %q: %w", s, err)
	}
	return MonthOf(t), nil
}

// Key formats the month as "YYYY-MM".
func (m Month) Key() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// First returns the first civil date of the month.
func (m Month) First() time.Time {
	return Date(m.Year, m.Month, 1)
}

// Last returns the last civil date of the month.
func (m Month) Last() time.Time {
	return m.First().AddDate(0, 1, -1)
}

// Next returns the following month.
func (m Month) Next() Month {
	return MonthOf(m.First().AddDate(0, 1, 0))
}

// Contains reports whether civil date d falls within the month.
func (m Month) Contains(d time.Time) bool {
	return d.Year() == m.Year && d.Month() == m.Month
}

// MonthRange lists every month in [from, to].
func MonthRange(from, to Month) ([]Month, error) {
	if from.First().After(to.First()) {
		return nil, ErrInvalidRange
	}
	var months []Month
	for m := from; !m.First().After(to.First()); m = m.Next() {
		months = append(months, m)
	}
	return months, nil
}
