package classifier

import (
	"context"
	"encoding/json"
	"sort"

	"gorm.io/datatypes"

	"github.com/shareview/analytics/internal/repos"
	"github.com/shareview/analytics/internal/snapshots"
	"github.com/shareview/analytics/internal/tiers"
	"github.com/shareview/analytics/internal/warehouse"
)

// healthSummaryLimit caps the per-status offender lists stored on the
// snapshot row.
const healthSummaryLimit = 50

type healthSummaryEntry struct {
	CategoryPath string   `json:"category_path"`
	CVR          *float64 `json:"cvr"`
	Impressions  int64    `json:"impressions"`
	Clicks       int64    `json:"clicks"`
	Conversions  float64  `json:"conversions"`
}

// categoryHealth classifies every flattened path and groups offenders per
// status, each list capped and ordered by impressions descending.
func categoryHealth(rows []warehouse.CategoryPathRow) (repos.CategoryHealthCounts, error) {
	var counts repos.CategoryHealthCounts
	summary := map[tiers.HealthStatus][]healthSummaryEntry{}

	for _, row := range rows {
		status := tiers.ForCategory(row.CVR, row.Impressions)
		switch status {
		case tiers.HealthBroken:
			counts.Broken++
		case tiers.HealthUnderperforming:
			counts.Underperforming++
		case tiers.HealthAttention:
			counts.Attention++
		case tiers.HealthHealthy:
			counts.Healthy++
		case tiers.HealthStar:
			counts.Star++
		}
		summary[status] = append(summary[status], healthSummaryEntry{
			CategoryPath: row.CategoryPath,
			CVR:          row.CVR,
			Impressions:  row.Impressions,
			Clicks:       row.Clicks,
			Conversions:  row.Conversions,
		})
	}

	capped := map[tiers.HealthStatus][]healthSummaryEntry{}
	for status, entries := range summary {
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].Impressions > entries[j].Impressions
		})
		if len(entries) > healthSummaryLimit {
			entries = entries[:healthSummaryLimit]
		}
		capped[status] = entries
	}

	raw, err := json.Marshal(capped)
	if err != nil {
		return counts, err
	}
	counts.HealthSummary = datatypes.JSON(raw)
	return counts, nil
}

func (c *Classifier) classifyCategories(ctx context.Context, key repos.SnapshotKey, dryRun bool) (Result, error) {
	res := Result{
		Domain:     snapshots.DomainCategories,
		RetailerID: key.RetailerID,
		Month:      key.RangeStart.Format("2006-01"),
	}

	rows, err := c.warehouse.CategoryPathRows(ctx, key.RetailerID, key.RangeStart, key.RangeEnd)
	if err != nil {
		return res, err
	}
	if len(rows) == 0 {
		c.log.Info("No category facts for period, skipping", "retailer", key.RetailerID, "month", res.Month)
		res.Operation = OpSkipped
		return res, nil
	}

	counts, err := categoryHealth(rows)
	if err != nil {
		return res, err
	}

	if dryRun {
		c.log.Info("Dry run: category health",
			"retailer", key.RetailerID, "month", res.Month,
			"broken", counts.Broken, "underperforming", counts.Underperforming,
			"attention", counts.Attention, "healthy", counts.Healthy, "star", counts.Star)
		res.Operation = OpSkipped
		return res, nil
	}

	if err := c.categories.UpdateHealthCounts(ctx, nil, key.RetailerID, key.RangeStart, key.RangeEnd, counts); err != nil {
		return res, err
	}
	res.Operation = OpClassified
	return res, nil
}
