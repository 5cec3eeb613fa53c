// Package warehouse reads raw performance facts from the source analytics
// database. The warehouse is an external system queried read-only, so this
// package speaks raw SQL over a pgx pool rather than GORM models.
package warehouse

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shareview/analytics/internal/logger"
	"github.com/shareview/analytics/internal/utils"
)

// Store wraps the read-only warehouse pool. Connections are established
// lazily by pgx on first query; Close releases them at process shutdown.
type Store struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

func NewStore(ctx context.Context, log *logger.Logger) (*Store, error) {
	storeLog := log.With("service", "WarehouseStore")

	host := utils.GetEnv("SOURCE_DB_HOST", "127.0.0.1", log)
	port := utils.GetEnv("SOURCE_DB_PORT", "5432", log)
	user := utils.GetEnv("SOURCE_DB_USER", "postgres", log)
	password := utils.GetEnv("SOURCE_DB_PASS", "", log)
	name := utils.GetEnv("SOURCE_DB_NAME", "acc_mgmt", log)

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, password, host, port, name)

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		storeLog.Error("Failed to create warehouse pool", "error", err)
		return nil, fmt.Errorf("Failed to create warehouse pool: %w", err)
	}

	return &Store{pool: pool, log: storeLog}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

// MonthActivity is one calendar month that has fact rows, with the newest
// fetch timestamp seen in that month.
type MonthActivity struct {
	Year      int
	Month     int
	LastFetch time.Time
}

// MonthsWithData lists every calendar month that has keyword facts for the
// retailer, newest first. The keyword table drives month detection because
// every fact load writes it.
func (s *Store) MonthsWithData(ctx context.Context, retailerID string) ([]MonthActivity, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT
			EXTRACT(YEAR FROM insight_date)::int AS year,
			EXTRACT(MONTH FROM insight_date)::int AS month,
			MAX(fetch_datetime) AS last_fetch
		FROM keywords
		WHERE retailer_id = $1
		GROUP BY 1, 2
		ORDER BY 1 DESC, 2 DESC
	`, retailerID)
	if err != nil {
		return nil, fmt.Errorf("query months with data: %w", err)
	}
	defer rows.Close()

	var months []MonthActivity
	for rows.Next() {
		var m MonthActivity
		if err := rows.Scan(&m.Year, &m.Month, &m.LastFetch); err != nil {
			return nil, fmt.Errorf("scan month activity: %w", err)
		}
		months = append(months, m)
	}
	return months, rows.Err()
}

// LastFetchForRange returns the newest fetch_datetime among keyword facts
// in the range, or nil when the range has no facts at all.
func (s *Store) LastFetchForRange(ctx context.Context, retailerID string, rangeStart, rangeEnd time.Time) (*time.Time, error) {
	var lastFetch *time.Time
	err := s.pool.QueryRow(ctx, `
		SELECT MAX(fetch_datetime)
		FROM keywords
		WHERE retailer_id = $1
		  AND insight_date BETWEEN $2 AND $3
	`, retailerID, rangeStart, rangeEnd).Scan(&lastFetch)
	if err != nil {
		return nil, fmt.Errorf("query last fetch for range: %w", err)
	}
	return lastFetch, nil
}

// KeywordAggregate is the whole-period rollup across all search terms.
type KeywordAggregate struct {
	RowCount         int
	TotalKeywords    int
	TotalImpressions int64
	TotalClicks      int64
	TotalConversions float64
	OverallCTR       *float64
	OverallCVR       *float64
}

func (s *Store) KeywordAggregate(ctx context.Context, retailerID string, rangeStart, rangeEnd time.Time) (*KeywordAggregate, error) {
	var agg KeywordAggregate
	err := s.pool.QueryRow(ctx, `
		SELECT
			COUNT(*)::int,
			COUNT(DISTINCT search_term)::int,
			COALESCE(SUM(impressions), 0)::bigint,
			COALESCE(SUM(clicks), 0)::bigint,
			COALESCE(SUM(conversions), 0)::float8,
			CASE WHEN COALESCE(SUM(impressions), 0) > 0
				THEN (SUM(clicks)::float8 / SUM(impressions)) * 100
			END,
			CASE WHEN COALESCE(SUM(clicks), 0) > 0
				THEN (SUM(conversions)::float8 / SUM(clicks)) * 100
			END
		FROM keywords
		WHERE retailer_id = $1
		  AND insight_date BETWEEN $2 AND $3
	`, retailerID, rangeStart, rangeEnd).Scan(
		&agg.RowCount,
		&agg.TotalKeywords,
		&agg.TotalImpressions,
		&agg.TotalClicks,
		&agg.TotalConversions,
		&agg.OverallCTR,
		&agg.OverallCVR,
	)
	if err != nil {
		return nil, fmt.Errorf("query keyword aggregate: %w", err)
	}
	return &agg, nil
}

// KeywordRow is one search term aggregated over the period.
type KeywordRow struct {
	SearchTerm  string
	Impressions int64
	Clicks      int64
	Conversions float64
	CTR         float64
	CVR         float64
}

// QualifiedKeywordRows returns per-term aggregates for terms clearing the
// qualification floors, for quadrant analysis.
func (s *Store) QualifiedKeywordRows(ctx context.Context, retailerID string, rangeStart, rangeEnd time.Time, minImpressions, minClicks int) ([]KeywordRow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT
			search_term,
			SUM(impressions)::bigint,
			SUM(clicks)::bigint,
			SUM(conversions)::float8,
			CASE WHEN SUM(impressions) > 0
				THEN (SUM(clicks)::float8 / SUM(impressions)) * 100
				ELSE 0
			END,
			CASE WHEN SUM(clicks) > 0
				THEN (SUM(conversions)::float8 / SUM(clicks)) * 100
				ELSE 0
			END
		FROM keywords
		WHERE retailer_id = $1
		  AND insight_date BETWEEN $2 AND $3
		GROUP BY search_term
		HAVING SUM(impressions) >= $4 AND SUM(clicks) >= $5
	`, retailerID, rangeStart, rangeEnd, minImpressions, minClicks)
	if err != nil {
		return nil, fmt.Errorf("query qualified keyword rows: %w", err)
	}
	defer rows.Close()

	var out []KeywordRow
	for rows.Next() {
		var r KeywordRow
		if err := rows.Scan(&r.SearchTerm, &r.Impressions, &r.Clicks, &r.Conversions, &r.CTR, &r.CVR); err != nil {
			return nil, fmt.Errorf("scan keyword row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// KeywordTierRow carries what the classifier needs per term: impressions
// and a CVR that is nil when the term had no clicks.
type KeywordTierRow struct {
	SearchTerm  string
	Impressions int64
	CVR         *float64
}

func (s *Store) KeywordTierRows(ctx context.Context, retailerID string, rangeStart, rangeEnd time.Time) ([]KeywordTierRow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT
			search_term,
			COALESCE(SUM(impressions), 0)::bigint,
			CASE WHEN COALESCE(SUM(clicks), 0) > 0
				THEN (SUM(conversions)::float8 / SUM(clicks)) * 100
			END
		FROM keywords
		WHERE retailer_id = $1
		  AND insight_date BETWEEN $2 AND $3
		GROUP BY search_term
	`, retailerID, rangeStart, rangeEnd)
	if err != nil {
		return nil, fmt.Errorf("query keyword tier rows: %w", err)
	}
	defer rows.Close()

	var out []KeywordTierRow
	for rows.Next() {
		var r KeywordTierRow
		if err := rows.Scan(&r.SearchTerm, &r.Impressions, &r.CVR); err != nil {
			return nil, fmt.Errorf("scan keyword tier row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// CategoryLevelRow is one distinct category path with node-only metrics:
// facts recorded at exactly this level, excluding child categories.
type CategoryLevelRow struct {
	Level1      string
	Level2      string
	Level3      string
	Level4      string
	Level5      string
	Impressions int64
	Clicks      int64
	Conversions float64
	CTR         *float64
	CVR         *float64
}

func (s *Store) CategoryLevelRows(ctx context.Context, retailerID string, rangeStart, rangeEnd time.Time) ([]CategoryLevelRow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT
			COALESCE(category_level1, ''),
			COALESCE(category_level2, ''),
			COALESCE(category_level3, ''),
			COALESCE(category_level4, ''),
			COALESCE(category_level5, ''),
			SUM(impressions)::bigint,
			SUM(clicks)::bigint,
			SUM(conversions)::float8,
			CASE WHEN SUM(impressions) > 0
				THEN (SUM(clicks)::float8 / SUM(impressions)) * 100
			END,
			CASE WHEN SUM(clicks) > 0
				THEN (SUM(conversions)::float8 / SUM(clicks)) * 100
			END
		FROM category_performance
		WHERE retailer_id = $1
		  AND insight_date BETWEEN $2 AND $3
		GROUP BY category_level1, category_level2, category_level3, category_level4, category_level5
	`, retailerID, rangeStart, rangeEnd)
	if err != nil {
		return nil, fmt.Errorf("query category level rows: %w", err)
	}
	defer rows.Close()

	var out []CategoryLevelRow
	for rows.Next() {
		var r CategoryLevelRow
		if err := rows.Scan(
			&r.Level1, &r.Level2, &r.Level3, &r.Level4, &r.Level5,
			&r.Impressions, &r.Clicks, &r.Conversions, &r.CTR, &r.CVR,
		); err != nil {
			return nil, fmt.Errorf("scan category level row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// CategoryPathRow is one flattened category path for health classification.
type CategoryPathRow struct {
	CategoryPath string
	Impressions  int64
	Clicks       int64
	Conversions  float64
	CVR          *float64
}

func (s *Store) CategoryPathRows(ctx context.Context, retailerID string, rangeStart, rangeEnd time.Time) ([]CategoryPathRow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT
			CONCAT_WS('>', category_level1, category_level2, category_level3, category_level4, category_level5),
			COALESCE(SUM(impressions), 0)::bigint,
			COALESCE(SUM(clicks), 0)::bigint,
			COALESCE(SUM(conversions), 0)::float8,
			CASE WHEN COALESCE(SUM(clicks), 0) > 0
				THEN (SUM(conversions)::float8 / SUM(clicks)) * 100
			END
		FROM category_performance
		WHERE retailer_id = $1
		  AND insight_date BETWEEN $2 AND $3
		GROUP BY 1
	`, retailerID, rangeStart, rangeEnd)
	if err != nil {
		return nil, fmt.Errorf("query category path rows: %w", err)
	}
	defer rows.Close()

	var out []CategoryPathRow
	for rows.Next() {
		var r CategoryPathRow
		if err := rows.Scan(&r.CategoryPath, &r.Impressions, &r.Clicks, &r.Conversions, &r.CVR); err != nil {
			return nil, fmt.Errorf("scan category path row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ProductAggregate is the whole-period rollup across all items.
type ProductAggregate struct {
	RowCount                        int
	TotalProducts                   int
	TotalImpressions                int64
	TotalClicks                     int64
	TotalConversions                float64
	AvgCTR                          *float64
	AvgCVR                          *float64
	ProductsWithConversions         int
	ProductsWithClicksNoConversions int
	ClicksWithoutConversions        int64
}

func (s *Store) ProductAggregate(ctx context.Context, retailerID string, rangeStart, rangeEnd time.Time) (*ProductAggregate, error) {
	var agg ProductAggregate
	err := s.pool.QueryRow(ctx, `
		SELECT
			COUNT(*)::int,
			COUNT(DISTINCT item_id)::int,
			COALESCE(SUM(impressions), 0)::bigint,
			COALESCE(SUM(clicks), 0)::bigint,
			COALESCE(SUM(conversions), 0)::float8,
			AVG(ctr)::float8,
			AVG(cvr)::float8,
			COUNT(DISTINCT item_id) FILTER (WHERE conversions > 0)::int,
			COUNT(DISTINCT item_id) FILTER (WHERE clicks > 0 AND conversions = 0)::int,
			COALESCE(SUM(clicks) FILTER (WHERE conversions = 0), 0)::bigint
		FROM product_performance
		WHERE retailer_id = $1
		  AND insight_date BETWEEN $2 AND $3
	`, retailerID, rangeStart, rangeEnd).Scan(
		&agg.RowCount,
		&agg.TotalProducts,
		&agg.TotalImpressions,
		&agg.TotalClicks,
		&agg.TotalConversions,
		&agg.AvgCTR,
		&agg.AvgCVR,
		&agg.ProductsWithConversions,
		&agg.ProductsWithClicksNoConversions,
		&agg.ClicksWithoutConversions,
	)
	if err != nil {
		return nil, fmt.Errorf("query product aggregate: %w", err)
	}
	return &agg, nil
}

// ProductRow is one item aggregated over the period, ordered by conversions
// descending so ranked-list consumers can slice directly.
type ProductRow struct {
	ItemID       string
	ProductTitle string
	Impressions  int64
	Clicks       int64
	Conversions  float64
	CTR          float64
	CVR          float64
}

func (s *Store) ProductRows(ctx context.Context, retailerID string, rangeStart, rangeEnd time.Time) ([]ProductRow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT
			item_id,
			COALESCE(MAX(product_title), ''),
			SUM(impressions)::bigint,
			SUM(clicks)::bigint,
			SUM(conversions)::float8,
			CASE WHEN SUM(impressions) > 0
				THEN (SUM(clicks)::float8 / SUM(impressions)) * 100
				ELSE 0
			END,
			CASE WHEN SUM(clicks) > 0
				THEN (SUM(conversions)::float8 / SUM(clicks)) * 100
				ELSE 0
			END
		FROM product_performance
		WHERE retailer_id = $1
		  AND insight_date BETWEEN $2 AND $3
		GROUP BY item_id
		ORDER BY SUM(conversions) DESC
	`, retailerID, rangeStart, rangeEnd)
	if err != nil {
		return nil, fmt.Errorf("query product rows: %w", err)
	}
	defer rows.Close()

	var out []ProductRow
	for rows.Next() {
		var r ProductRow
		if err := rows.Scan(&r.ItemID, &r.ProductTitle, &r.Impressions, &r.Clicks, &r.Conversions, &r.CTR, &r.CVR); err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// AuctionCompetitorRow is one competitor averaged across every campaign
// matching the retailer's campaign prefix in the month.
type AuctionCompetitorRow struct {
	ShopDisplayName string
	AvgOverlap      float64
	AvgOutranking   float64
	AvgImprShare    *float64
	CampaignCount   int
}

// AuctionCompetitorRows returns per-competitor averages for the month,
// sorted by overlap descending. Auction facts are keyed by a month column
// (first of month) rather than daily insight dates.
func (s *Store) AuctionCompetitorRows(ctx context.Context, retailerID string, monthDate time.Time) ([]AuctionCompetitorRow, error) {
	campaignPrefix := fmt.Sprintf("octer-%s~%%", retailerID)

	rows, err := s.pool.Query(ctx, `
		SELECT
			shop_display_name,
			AVG(overlap_rate::float8),
			AVG(outranking_share::float8),
			AVG(impr_share::float8),
			COUNT(DISTINCT campaign_name)::int
		FROM auction_insights
		WHERE campaign_name LIKE $1
		  AND month = $2
		GROUP BY shop_display_name
		ORDER BY 2 DESC NULLS LAST
	`, campaignPrefix, monthDate)
	if err != nil {
		return nil, fmt.Errorf("query auction competitor rows: %w", err)
	}
	defer rows.Close()

	var out []AuctionCompetitorRow
	for rows.Next() {
		var r AuctionCompetitorRow
		if err := rows.Scan(&r.ShopDisplayName, &r.AvgOverlap, &r.AvgOutranking, &r.AvgImprShare, &r.CampaignCount); err != nil {
			return nil, fmt.Errorf("scan auction competitor row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// CoverageAggregate summarizes catalogue visibility: how many items surfaced
// at all during the period versus sitting at zero impressions.
type CoverageAggregate struct {
	TotalProducts          int
	ActiveProducts         int
	ZeroVisibilityProducts int
}

func (s *Store) CoverageAggregate(ctx context.Context, retailerID string, rangeStart, rangeEnd time.Time) (*CoverageAggregate, error) {
	var agg CoverageAggregate
	err := s.pool.QueryRow(ctx, `
		WITH per_item AS (
			SELECT item_id, SUM(impressions) AS impressions
			FROM product_performance
			WHERE retailer_id = $1
			  AND insight_date BETWEEN $2 AND $3
			GROUP BY item_id
		)
		SELECT
			COUNT(*)::int,
			COUNT(*) FILTER (WHERE impressions > 0)::int,
			COUNT(*) FILTER (WHERE impressions = 0 OR impressions IS NULL)::int
		FROM per_item
	`, retailerID, rangeStart, rangeEnd).Scan(
		&agg.TotalProducts,
		&agg.ActiveProducts,
		&agg.ZeroVisibilityProducts,
	)
	if err != nil {
		return nil, fmt.Errorf("query coverage aggregate: %w", err)
	}
	return &agg, nil
}

// CoverageCategoryRow ranks top-level categories by impression volume for
// the top-category and biggest-gap call-outs.
type CoverageCategoryRow struct {
	Category    string
	Impressions int64
	Clicks      int64
	Conversions float64
}

func (s *Store) CoverageCategoryRows(ctx context.Context, retailerID string, rangeStart, rangeEnd time.Time) ([]CoverageCategoryRow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT
			COALESCE(category_level1, ''),
			COALESCE(SUM(impressions), 0)::bigint,
			COALESCE(SUM(clicks), 0)::bigint,
			COALESCE(SUM(conversions), 0)::float8
		FROM category_performance
		WHERE retailer_id = $1
		  AND insight_date BETWEEN $2 AND $3
		GROUP BY 1
		ORDER BY 2 DESC
	`, retailerID, rangeStart, rangeEnd)
	if err != nil {
		return nil, fmt.Errorf("query coverage category rows: %w", err)
	}
	defer rows.Close()

	var out []CoverageCategoryRow
	for rows.Next() {
		var r CoverageCategoryRow
		if err := rows.Scan(&r.Category, &r.Impressions, &r.Clicks, &r.Conversions); err != nil {
			return nil, fmt.Errorf("scan coverage category row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
