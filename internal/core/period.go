package core

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Period is a calendar month.
type Period struct {
	Year  int
	Month int
}

func PeriodOf(t time.Time) Period {
	t = t.UTC()
	return Period{Year: t.Year(), Month: int(t.Month())}
}

// ParsePeriod reads year and month query values. Empty values default to the
// month of now.
func ParsePeriod(year, month string, now time.Time) (Period, error) {
	p := PeriodOf(now)
	if s := strings.TrimSpace(year); s != "" {
		y, err := strconv.Atoi(s)
		if err != nil {
			return Period{}, NewValidationError("year", KindInvalidPeriod, "Invalid year or month")
		}
		p.Year = y
	}
	if s := strings.TrimSpace(month); s != "" {
		m, err := strconv.Atoi(s)
		if err != nil {
			return Period{}, NewValidationError("month", KindInvalidPeriod, "Invalid year or month")
		}
		p.Month = m
	}
	if err := p.Validate(); err != nil {
		return Period{}, err
	}
	return p, nil
}

func (p Period) Validate() error {
	if p.Month < 1 || p.Month > 12 || p.Year < 1 || p.Year > 9999 {
		return NewValidationError("month", KindInvalidPeriod, "Invalid year or month")
	}
	return nil
}

// Bounds returns the first and last day of the month, both inclusive.
func (p Period) Bounds() (Date, Date) {
	first := NewDate(p.Year, p.Month, 1)
	last := Date{Time: first.AddDate(0, 1, -1)}
	return first, last
}

func (p Period) Contains(d Date) bool {
	return d.Year() == p.Year && d.Month() == p.Month
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}
