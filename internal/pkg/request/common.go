package request

import (
	"time"

	"github.com/nekogravitycat/wellness-booking-backend/internal/calendar"
)

// ByIDRequest is a common struct for endpoints that require an ID path parameter.
type ByIDRequest struct {
	ID string `uri:"id" binding:"required,uuid"`
}

// ListParams holds pagination query parameters shared by list endpoints.
type ListParams struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=200"`
}

// Normalize fills in defaults for missing pagination values.
func (p *ListParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
}

// Offset returns the row offset for the current page.
func (p ListParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// DateRangeParams holds optional civil date bounds (YYYY-MM-DD).
type DateRangeParams struct {
	From string `form:"from" binding:"omitempty,civildate"`
	To   string `form:"to" binding:"omitempty,civildate"`
}

// Bounds parses the optional bounds. Binding has already checked their format.
func (p DateRangeParams) Bounds() (from, to *time.Time, err error) {
	parse := func(s string) (*time.Time, error) {
		if s == "" {
			return nil, nil
		}
		d, err := calendar.ParseDate(s)
		if err != nil {
			return nil, err
		}
		return &d, nil
	}
	if from, err = parse(p.From); err != nil {
		return nil, nil, err
	}
	if to, err = parse(p.To); err != nil {
		return nil, nil, err
	}
	return from, to, nil
}
