package classifier

import (
	"context"
	"math"

	"github.com/shareview/analytics/internal/repos"
	"github.com/shareview/analytics/internal/snapshots"
	"github.com/shareview/analytics/internal/tiers"
	"github.com/shareview/analytics/internal/warehouse"
)

// Wasted clicks: strong click-through that almost never converts.
const (
	wastedClickMinCTR = 5.0
	wastedClickMaxCVR = 1.0
)

// topShare measures conversion concentration in the top percent of
// products. Rows must already be ordered by conversions descending. At
// least one product is always included so small catalogs still report.
func topShare(rows []warehouse.ProductRow, totalConversions float64, percent float64) (count int, share float64) {
	if len(rows) == 0 {
		return 0, 0
	}
	count = int(math.Ceil(float64(len(rows)) * percent))
	if count < 1 {
		count = 1
	}
	if count > len(rows) {
		count = len(rows)
	}
	if totalConversions <= 0 {
		return count, 0
	}
	var subset float64
	for _, row := range rows[:count] {
		subset += row.Conversions
	}
	return count, round2(subset / totalConversions * 100)
}

func productClassificationCounts(rows []warehouse.ProductRow) repos.ProductClassificationCounts {
	var counts repos.ProductClassificationCounts
	var totalClicks int64
	var totalConversions float64

	for _, row := range rows {
		impressions := row.Impressions
		switch tiers.ForProduct(tiers.Classify(row.CVR, &impressions)) {
		case tiers.ProductStar:
			counts.Star++
		case tiers.ProductGood:
			counts.Good++
		case tiers.ProductUnderperformer:
			counts.Underperformer++
		}
		if row.CTR > wastedClickMinCTR && row.CVR < wastedClickMaxCVR {
			counts.ProductsWithWastedClicks++
			counts.TotalWastedClicks += row.Clicks
		}
		totalClicks += row.Clicks
		totalConversions += row.Conversions
	}

	if totalClicks > 0 {
		counts.WastedClicksPercentage = round2(float64(counts.TotalWastedClicks) / float64(totalClicks) * 100)
	}

	counts.Top1PctProducts, counts.Top1PctConversionsShare = topShare(rows, totalConversions, 0.01)
	counts.Top5PctProducts, counts.Top5PctConversionsShare = topShare(rows, totalConversions, 0.05)
	counts.Top10PctProducts, counts.Top10PctConversionsShare = topShare(rows, totalConversions, 0.10)

	return counts
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func (c *Classifier) classifyProducts(ctx context.Context, key repos.SnapshotKey, dryRun bool) (Result, error) {
	res := Result{
		Domain:     snapshots.DomainProducts,
		RetailerID: key.RetailerID,
		Month:      key.RangeStart.Format("2006-01"),
	}

	rows, err := c.warehouse.ProductRows(ctx, key.RetailerID, key.RangeStart, key.RangeEnd)
	if err != nil {
		return res, err
	}
	if len(rows) == 0 {
		c.log.Info("No product facts for period, skipping", "retailer", key.RetailerID, "month", res.Month)
		res.Operation = OpSkipped
		return res, nil
	}

	counts := productClassificationCounts(rows)

	if dryRun {
		c.log.Info("Dry run: product classification",
			"retailer", key.RetailerID, "month", res.Month,
			"star", counts.Star, "good", counts.Good, "underperformer", counts.Underperformer,
			"wasted_click_products", counts.ProductsWithWastedClicks)
		res.Operation = OpSkipped
		return res, nil
	}

	if err := c.products.UpdateClassificationCounts(ctx, nil, key.RetailerID, key.RangeStart, key.RangeEnd, counts); err != nil {
		return res, err
	}
	res.Operation = OpClassified
	return res, nil
}
