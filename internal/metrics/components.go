// Package metrics turns snapshot rows into the UI component payloads stored
// in domain_metrics. Every payload is one of four closed component shapes,
// serialized to JSONB only at the repo boundary.
package metrics

import (
	"fmt"
	"strconv"
	"strings"
)

type ComponentStatus string

const (
	StatusSuccess  ComponentStatus = "success"
	StatusWarning  ComponentStatus = "warning"
	StatusCritical ComponentStatus = "critical"
)

// PageHeadlineData is the banner line at the top of a domain page.
type PageHeadlineData struct {
	Status   ComponentStatus `json:"status"`
	Message  string          `json:"message"`
	Subtitle string          `json:"subtitle,omitempty"`
}

type MetricCardItem struct {
	Label  string          `json:"label"`
	Value  string          `json:"value"`
	Change *float64        `json:"change"`
	Status ComponentStatus `json:"status"`
}

type MetricCardData struct {
	Cards []MetricCardItem `json:"cards"`
}

type QuickStatsItem struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Color string `json:"color"`
}

type QuickStatsData struct {
	Items []QuickStatsItem `json:"items"`
}

type ContextualInfoItem struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// ContextualInfoData styles are "info", "warning" or "critical".
type ContextualInfoData struct {
	Title string               `json:"title"`
	Style string               `json:"style"`
	Items []ContextualInfoItem `json:"items"`
}

// percentChange is nil when there is no previous value to compare against
// or the previous value is zero.
func percentChange(current float64, previous *float64) *float64 {
	if previous == nil || *previous == 0 {
		return nil
	}
	change := (current - *previous) / *previous * 100
	return &change
}

// statusFromChange maps a month-over-month change onto a card status. A
// missing comparison reads as warning rather than success.
func statusFromChange(change *float64) ComponentStatus {
	switch {
	case change == nil:
		return StatusWarning
	case *change >= 5:
		return StatusSuccess
	case *change >= 0:
		return StatusWarning
	default:
		return StatusCritical
	}
}

// formatCount renders an integer with comma thousand separators.
func formatCount(v int64) string {
	return groupThousands(strconv.FormatInt(v, 10))
}

// formatAmount renders a possibly fractional total, grouping the integer
// part and trimming trailing fractional zeros.
func formatAmount(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	intPart, fracPart, found := strings.Cut(s, ".")
	out := groupThousands(intPart)
	if found {
		out += "." + fracPart
	}
	return out
}

func formatPercent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

func groupThousands(s string) string {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	if len(s) <= 3 {
		if neg {
			return "-" + s
		}
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
