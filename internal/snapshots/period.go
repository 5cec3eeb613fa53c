package snapshots

import (
	"fmt"
	"time"
)

// Period is one calendar month processing window.
type Period struct {
	Year       int
	Month      int
	RangeStart time.Time
	RangeEnd   time.Time
}

// Label returns the YYYY-MM form used in logs and results.
func (p Period) Label() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

// MonthRange derives the full calendar month window [first day, last day].
func MonthRange(year, month int) Period {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	return Period{Year: year, Month: month, RangeStart: start, RangeEnd: end}
}

// ParseMonth parses a YYYY-MM argument into its month window.
func ParseMonth(s string) (Period, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Period{}, fmt.Errorf("invalid month %q (expected YYYY-MM): %w", s, err)
	}
	return MonthRange(t.Year(), int(t.Month())), nil
}

// PrevMonth returns the month window immediately before p.
func PrevMonth(p Period) Period {
	prev := p.RangeStart.AddDate(0, -1, 0)
	return MonthRange(prev.Year(), int(prev.Month()))
}
