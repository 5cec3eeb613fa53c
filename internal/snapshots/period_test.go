package snapshots

import "testing"

func TestMonthRange_CoversWholeCalendarMonth(t *testing.T) {
	p := MonthRange(2026, 2)
	if got := p.RangeStart.Format("2006-01-02"); got != "2026-02-01" {
		t.Fatalf("range start = %s, want 2026-02-01", got)
	}
	if got := p.RangeEnd.Format("2006-01-02"); got != "2026-02-28" {
		t.Fatalf("range end = %s, want 2026-02-28", got)
	}
}

func TestMonthRange_LeapYear(t *testing.T) {
	p := MonthRange(2024, 2)
	if got := p.RangeEnd.Format("2006-01-02"); got != "2024-02-29" {
		t.Fatalf("range end = %s, want 2024-02-29", got)
	}
}

func TestParseMonth(t *testing.T) {
	p, err := ParseMonth("2026-07")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Year != 2026 || p.Month != 7 {
		t.Fatalf("parsed %d-%d, want 2026-7", p.Year, p.Month)
	}
	if got := p.RangeEnd.Format("2006-01-02"); got != "2026-07-31" {
		t.Fatalf("range end = %s, want 2026-07-31", got)
	}

	if _, err := ParseMonth("July 2026"); err == nil {
		t.Fatalf("expected error for malformed month")
	}
}

func TestPrevMonth_CrossesYearBoundary(t *testing.T) {
	p := PrevMonth(MonthRange(2026, 1))
	if p.Year != 2025 || p.Month != 12 {
		t.Fatalf("prev of 2026-01 = %d-%d, want 2025-12", p.Year, p.Month)
	}
}

func TestPeriodLabel(t *testing.T) {
	if got := MonthRange(2026, 3).Label(); got != "2026-03" {
		t.Fatalf("label = %q, want 2026-03", got)
	}
}
