package pricing

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Granularity selects calendar months or calendar years.
type Granularity string

const (
	ByMonth Granularity = "month"
	ByYear  Granularity = "year"
)

var ErrInvalidPeriod = errors.New("invalid_period")

// ParseGranularity accepts "month" or "year" in any case.
func ParseGranularity(s string) (Granularity, error) {
	switch g := Granularity(strings.ToLower(strings.TrimSpace(s))); g {
	case ByMonth, ByYear:
		return g, nil
	}
	return "", fmt.Errorf("%w: granularity %q", ErrInvalidPeriod, s)
}

// Period is a calendar year, or a month within a year.
type Period struct {
	Granularity Granularity `json:"granularity"`
	Year        int         `json:"year"`
	Month       time.Month  `json:"month,omitempty"`
}

// NewPeriod validates its arguments. month is ignored for ByYear.
func NewPeriod(g Granularity, year int, month time.Month) (Period, error) {
	switch g {
	case ByYear:
		return Period{Granularity: ByYear, Year: year}, nil
	case ByMonth:
		if month < time.January || month > time.December {
			return Period{}, fmt.Errorf("%w: month %d", ErrInvalidPeriod, month)
		}
		return Period{Granularity: ByMonth, Year: year, Month: month}, nil
	}
	return Period{}, fmt.Errorf("%w: granularity %q", ErrInvalidPeriod, g)
}

// PeriodOf returns the period of granularity g containing t.
func PeriodOf(g Granularity, t time.Time) Period {
	if g == ByMonth {
		return Period{Granularity: ByMonth, Year: t.Year(), Month: t.Month()}
	}
	return Period{Granularity: ByYear, Year: t.Year()}
}

// Contains reports whether t falls in p on the UTC calendar.
func (p Period) Contains(t time.Time) bool {
	return p.ContainsIn(t, time.UTC)
}

// ContainsIn reports whether t falls in p on loc's calendar, whatever
// location t itself carries. A nil loc means UTC.
func (p Period) ContainsIn(t time.Time, loc *time.Location) bool {
	if loc == nil {
		loc = time.UTC
	}
	start, end := p.Bounds(loc)
	return !t.Before(start) && t.Before(end)
}

// Previous returns the period immediately before p.
func (p Period) Previous() Period {
	if p.Granularity != ByMonth {
		return Period{Granularity: ByYear, Year: p.Year - 1}
	}
	if p.Month == time.January {
		return Period{Granularity: ByMonth, Year: p.Year - 1, Month: time.December}
	}
	return Period{Granularity: ByMonth, Year: p.Year, Month: p.Month - 1}
}

// Bounds returns the half-open interval [start, end) of p in loc.
func (p Period) Bounds(loc *time.Location) (time.Time, time.Time) {
	if p.Granularity == ByMonth {
		start := time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, loc)
		return start, start.AddDate(0, 1, 0)
	}
	start := time.Date(p.Year, time.January, 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(1, 0, 0)
}

func (p Period) String() string {
	if p.Granularity == ByMonth {
		return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
	}
	return fmt.Sprintf("%04d", p.Year)
}

// FilterByPeriod returns the quotes created within p on the UTC calendar,
// keeping their order. The result is never nil.
func FilterByPeriod(quotes []Quote, p Period) []Quote {
	return filterIn(quotes, p, time.UTC)
}

// FilterByPeriod filters on the policy's calendar.
func (pol Policy) FilterByPeriod(quotes []Quote, p Period) []Quote {
	return filterIn(quotes, p, pol.Location)
}

func filterIn(quotes []Quote, p Period, loc *time.Location) []Quote {
	out := make([]Quote, 0, len(quotes))
	for _, q := range quotes {
		if p.ContainsIn(q.CreatedAt, loc) {
			out = append(out, q)
		}
	}
	return out
}
