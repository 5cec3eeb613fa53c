package metrics

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/shareview/analytics/internal/snapshots"
	"github.com/shareview/analytics/internal/types"
)

// Page types served by the overview UI. Tab name mirrors the page type for
// every component the generator emits today.
const (
	PageOverview   = "overview"
	PageKeywords   = "keywords"
	PageCategories = "categories"
	PageProducts   = "products"
	PageAuctions   = "auctions"
	PageCoverage   = "coverage"
)

type component struct {
	componentType string
	data          interface{}
}

// buildRecords serializes each component into one domain metric row keyed to
// the same retailer, page and period.
func buildRecords(retailerID, pageType string, snapshotID uuid.UUID, period snapshots.Period, components ...component) ([]types.DomainMetric, error) {
	sourceID := snapshotID
	records := make([]types.DomainMetric, 0, len(components))
	for _, c := range components {
		raw, err := json.Marshal(c.data)
		if err != nil {
			return nil, fmt.Errorf("marshal %s %s component: %w", pageType, c.componentType, err)
		}
		records = append(records, types.DomainMetric{
			RetailerID:        retailerID,
			PageType:          pageType,
			TabName:           pageType,
			PeriodType:        types.PeriodTypeMonth,
			PeriodStart:       period.RangeStart,
			PeriodEnd:         period.RangeEnd,
			ComponentType:     c.componentType,
			ComponentData:     datatypes.JSON(raw),
			SourceSnapshotID:  &sourceID,
			CalculationMethod: "algorithmic",
			IsActive:          true,
		})
	}
	return records, nil
}

func card(label, value string, current float64, previous *float64) MetricCardItem {
	change := percentChange(current, previous)
	return MetricCardItem{
		Label:  label,
		Value:  value,
		Change: change,
		Status: statusFromChange(change),
	}
}

func fptr(v float64) *float64 { return &v }
