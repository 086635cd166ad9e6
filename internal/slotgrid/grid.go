package slotgrid

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrHourOutOfRange = errors.New("slot hour must be between 0 and 23")
	ErrDuplicateHour  = errors.New("slot hour listed twice")
	ErrNoBookable     = errors.New("slot grid has no bookable hour")
)

// Slot is one entry of the fixed daily schedule.
type Slot struct {
	Hour     int
	Bookable bool
	Info     string // shown for non-bookable hours, e.g. "open to all"
}

// Grid is the ordered, immutable daily schedule shared by all tenants.
type Grid struct {
	slots    []Slot
	byHour   map[int]Slot
	bookable []int
}

// New validates and orders the configured slots.
func New(slots []Slot) (*Grid, error) {
	g := &Grid{
		slots:  make([]Slot, 0, len(slots)),
		byHour: make(map[int]Slot, len(slots)),
	}
	for _, s := range slots {
		if s.Hour < 0 || s.Hour > 23 {
			return nil, fmt.Errorf("%w: %d", ErrHourOutOfRange, s.Hour)
		}
		if _, dup := g.byHour[s.Hour]; dup {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateHour, s.Hour)
		}
		g.byHour[s.Hour] = s
		g.slots = append(g.slots, s)
	}
	sort.Slice(g.slots, func(i, j int) bool { return g.slots[i].Hour < g.slots[j].Hour })

	for _, s := range g.slots {
		if s.Bookable {
			g.bookable = append(g.bookable, s.Hour)
		}
	}
	if len(g.bookable) == 0 {
		return nil, ErrNoBookable
	}
	return g, nil
}

// FromHours builds a grid from bookable hours plus informational hours sharing one info text.
func FromHours(bookable, info []int, infoText string) (*Grid, error) {
	slots := make([]Slot, 0, len(bookable)+len(info))
	for _, h := range bookable {
		slots = append(slots, Slot{Hour: h, Bookable: true})
	}
	for _, h := range info {
		slots = append(slots, Slot{Hour: h, Info: infoText})
	}
	return New(slots)
}

// All returns the full schedule, informational entries included, ordered by hour.
func (g *Grid) All() []Slot {
	out := make([]Slot, len(g.slots))
	copy(out, g.slots)
	return out
}

// BookableHours returns the hours that can be reserved or blocked, ordered.
func (g *Grid) BookableHours() []int {
	out := make([]int, len(g.bookable))
	copy(out, g.bookable)
	return out
}

// IsBookable reports whether hour is a bookable entry of the grid.
func (g *Grid) IsBookable(hour int) bool {
	s, ok := g.byHour[hour]
	return ok && s.Bookable
}

// Lookup returns the grid entry for hour.
func (g *Grid) Lookup(hour int) (Slot, bool) {
	s, ok := g.byHour[hour]
	return s, ok
}
