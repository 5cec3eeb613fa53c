package classifier

import (
	"context"

	"github.com/shareview/analytics/internal/repos"
	"github.com/shareview/analytics/internal/snapshots"
	"github.com/shareview/analytics/internal/tiers"
	"github.com/shareview/analytics/internal/warehouse"
)

// keywordTierCounts buckets every term into the four keyword tiers. Terms
// with no clicks carry a nil CVR, which classifies as zero.
func keywordTierCounts(rows []warehouse.KeywordTierRow) repos.KeywordTierCounts {
	var counts repos.KeywordTierCounts
	for _, row := range rows {
		cvr := 0.0
		if row.CVR != nil {
			cvr = *row.CVR
		}
		impressions := row.Impressions
		switch tiers.ForKeyword(tiers.Classify(cvr, &impressions)) {
		case tiers.KeywordStar:
			counts.Star++
		case tiers.KeywordStrong:
			counts.Strong++
		case tiers.KeywordUnderperforming:
			counts.Underperforming++
		case tiers.KeywordPoor:
			counts.Poor++
		}
	}
	return counts
}

func (c *Classifier) classifyKeywords(ctx context.Context, key repos.SnapshotKey, dryRun bool) (Result, error) {
	res := Result{
		Domain:     snapshots.DomainKeywords,
		RetailerID: key.RetailerID,
		Month:      key.RangeStart.Format("2006-01"),
	}

	rows, err := c.warehouse.KeywordTierRows(ctx, key.RetailerID, key.RangeStart, key.RangeEnd)
	if err != nil {
		return res, err
	}
	if len(rows) == 0 {
		c.log.Info("No keyword facts for period, skipping", "retailer", key.RetailerID, "month", res.Month)
		res.Operation = OpSkipped
		return res, nil
	}

	counts := keywordTierCounts(rows)

	if dryRun {
		c.log.Info("Dry run: keyword tiers",
			"retailer", key.RetailerID, "month", res.Month,
			"star", counts.Star, "strong", counts.Strong,
			"underperforming", counts.Underperforming, "poor", counts.Poor)
		res.Operation = OpSkipped
		return res, nil
	}

	if err := c.keywords.UpdateTierCounts(ctx, nil, key.RetailerID, key.RangeStart, key.RangeEnd, counts); err != nil {
		return res, err
	}
	res.Operation = OpClassified
	return res, nil
}
