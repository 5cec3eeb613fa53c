package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// PeriodTypeMonth is the only range type the pipeline currently materializes.
const PeriodTypeMonth = "month"

// KeywordsSnapshot is one aggregated row of keyword performance for a
// retailer and calendar month. LastUpdated advances on every aggregation
// write; ClassifiedAt is stamped when tier counts are written. A snapshot is
// stale for classification whenever ClassifiedAt is null or older than
// LastUpdated.
type KeywordsSnapshot struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	RetailerID string    `gorm:"column:retailer_id;not null;uniqueIndex:idx_keywords_snapshots_key" json:"retailer_id"`
	RangeType  string    `gorm:"column:range_type;not null;default:'month';uniqueIndex:idx_keywords_snapshots_key" json:"range_type"`
	RangeStart time.Time `gorm:"column:range_start;type:date;not null;uniqueIndex:idx_keywords_snapshots_key" json:"range_start"`
	RangeEnd   time.Time `gorm:"column:range_end;type:date;not null;uniqueIndex:idx_keywords_snapshots_key" json:"range_end"`

	TotalKeywords    int     `gorm:"column:total_keywords" json:"total_keywords"`
	TotalImpressions int64   `gorm:"column:total_impressions" json:"total_impressions"`
	TotalClicks      int64   `gorm:"column:total_clicks" json:"total_clicks"`
	TotalConversions float64 `gorm:"column:total_conversions" json:"total_conversions"`
	OverallCTR       *float64 `gorm:"column:overall_ctr" json:"overall_ctr"`
	OverallCVR       *float64 `gorm:"column:overall_cvr" json:"overall_cvr"`

	TierStarCount            int `gorm:"column:tier_star_count" json:"tier_star_count"`
	TierStrongCount          int `gorm:"column:tier_strong_count" json:"tier_strong_count"`
	TierUnderperformingCount int `gorm:"column:tier_underperforming_count" json:"tier_underperforming_count"`
	TierPoorCount            int `gorm:"column:tier_poor_count" json:"tier_poor_count"`

	TopKeywords datatypes.JSON `gorm:"column:top_keywords;type:jsonb" json:"top_keywords"`

	LastUpdated  time.Time  `gorm:"column:last_updated;not null;default:now()" json:"last_updated"`
	ClassifiedAt *time.Time `gorm:"column:classified_at" json:"classified_at"`
}

func (KeywordsSnapshot) TableName() string {
	return "keywords_snapshots"
}

// CategorySnapshot is the period-level category summary row: totals across
// the whole tree plus health counts and a capped per-status offender list in
// HealthSummary.
type CategorySnapshot struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	RetailerID string    `gorm:"column:retailer_id;not null;uniqueIndex:idx_category_snapshots_key" json:"retailer_id"`
	RangeType  string    `gorm:"column:range_type;not null;default:'month';uniqueIndex:idx_category_snapshots_key" json:"range_type"`
	RangeStart time.Time `gorm:"column:range_start;type:date;not null;uniqueIndex:idx_category_snapshots_key" json:"range_start"`
	RangeEnd   time.Time `gorm:"column:range_end;type:date;not null;uniqueIndex:idx_category_snapshots_key" json:"range_end"`

	TotalCategories  int      `gorm:"column:total_categories" json:"total_categories"`
	TotalImpressions int64    `gorm:"column:total_impressions" json:"total_impressions"`
	TotalClicks      int64    `gorm:"column:total_clicks" json:"total_clicks"`
	TotalConversions float64  `gorm:"column:total_conversions" json:"total_conversions"`
	OverallCTR       *float64 `gorm:"column:overall_ctr" json:"overall_ctr"`
	OverallCVR       *float64 `gorm:"column:overall_cvr" json:"overall_cvr"`

	HealthBrokenCount          int `gorm:"column:health_broken_count" json:"health_broken_count"`
	HealthUnderperformingCount int `gorm:"column:health_underperforming_count" json:"health_underperforming_count"`
	HealthAttentionCount       int `gorm:"column:health_attention_count" json:"health_attention_count"`
	HealthHealthyCount         int `gorm:"column:health_healthy_count" json:"health_healthy_count"`
	HealthStarCount            int `gorm:"column:health_star_count" json:"health_star_count"`

	HealthSummary datatypes.JSON `gorm:"column:health_summary;type:jsonb" json:"health_summary"`

	LastUpdated  time.Time  `gorm:"column:last_updated;not null;default:now()" json:"last_updated"`
	ClassifiedAt *time.Time `gorm:"column:classified_at" json:"classified_at"`
}

func (CategorySnapshot) TableName() string {
	return "category_performance_snapshots"
}

// CategoryNodeSnapshot is one node of the category tree for a period. Node
// metrics cover products at exactly this level; branch metrics roll up the
// whole subtree. The generator replaces all node rows for a period in one
// transaction.
type CategoryNodeSnapshot struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	RetailerID string    `gorm:"column:retailer_id;not null;index:idx_category_nodes_period" json:"retailer_id"`
	RangeType  string    `gorm:"column:range_type;not null;default:'month';index:idx_category_nodes_period" json:"range_type"`
	RangeStart time.Time `gorm:"column:range_start;type:date;not null;index:idx_category_nodes_period" json:"range_start"`
	RangeEnd   time.Time `gorm:"column:range_end;type:date;not null;index:idx_category_nodes_period" json:"range_end"`

	Level1     string  `gorm:"column:category_level1" json:"category_level1"`
	Level2     string  `gorm:"column:category_level2" json:"category_level2"`
	Level3     string  `gorm:"column:category_level3" json:"category_level3"`
	Level4     string  `gorm:"column:category_level4" json:"category_level4"`
	Level5     string  `gorm:"column:category_level5" json:"category_level5"`
	FullPath   string  `gorm:"column:full_path;not null" json:"full_path"`
	Depth      int     `gorm:"column:depth;not null" json:"depth"`
	ParentPath *string `gorm:"column:parent_path" json:"parent_path"`

	NodeImpressions int64    `gorm:"column:node_impressions" json:"node_impressions"`
	NodeClicks      int64    `gorm:"column:node_clicks" json:"node_clicks"`
	NodeConversions float64  `gorm:"column:node_conversions" json:"node_conversions"`
	NodeCTR         *float64 `gorm:"column:node_ctr" json:"node_ctr"`
	NodeCVR         *float64 `gorm:"column:node_cvr" json:"node_cvr"`

	BranchImpressions int64    `gorm:"column:branch_impressions" json:"branch_impressions"`
	BranchClicks      int64    `gorm:"column:branch_clicks" json:"branch_clicks"`
	BranchConversions float64  `gorm:"column:branch_conversions" json:"branch_conversions"`
	BranchCTR         *float64 `gorm:"column:branch_ctr" json:"branch_ctr"`
	BranchCVR         *float64 `gorm:"column:branch_cvr" json:"branch_cvr"`

	HasChildren        bool    `gorm:"column:has_children" json:"has_children"`
	ChildCount         int     `gorm:"column:child_count" json:"child_count"`
	HealthStatusNode   *string `gorm:"column:health_status_node" json:"health_status_node"`
	HealthStatusBranch *string `gorm:"column:health_status_branch" json:"health_status_branch"`

	LastUpdated time.Time `gorm:"column:last_updated;not null;default:now()" json:"last_updated"`
}

func (CategoryNodeSnapshot) TableName() string {
	return "category_node_snapshots"
}

// ProductSnapshot is one aggregated row of product performance for a retailer
// and period, including classification counts and the four classification
// lists in ProductClassifications.
type ProductSnapshot struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	RetailerID string    `gorm:"column:retailer_id;not null;uniqueIndex:idx_product_snapshots_key" json:"retailer_id"`
	RangeType  string    `gorm:"column:range_type;not null;default:'month';uniqueIndex:idx_product_snapshots_key" json:"range_type"`
	RangeStart time.Time `gorm:"column:range_start;type:date;not null;uniqueIndex:idx_product_snapshots_key" json:"range_start"`
	RangeEnd   time.Time `gorm:"column:range_end;type:date;not null;uniqueIndex:idx_product_snapshots_key" json:"range_end"`

	TotalProducts    int      `gorm:"column:total_products" json:"total_products"`
	TotalImpressions int64    `gorm:"column:total_impressions" json:"total_impressions"`
	TotalClicks      int64    `gorm:"column:total_clicks" json:"total_clicks"`
	TotalConversions float64  `gorm:"column:total_conversions" json:"total_conversions"`
	AvgCTR           *float64 `gorm:"column:avg_ctr" json:"avg_ctr"`
	AvgCVR           *float64 `gorm:"column:avg_cvr" json:"avg_cvr"`

	ProductsWithConversions         int   `gorm:"column:products_with_conversions" json:"products_with_conversions"`
	ProductsWithClicksNoConversions int   `gorm:"column:products_with_clicks_no_conversions" json:"products_with_clicks_no_conversions"`
	ClicksWithoutConversions        int64 `gorm:"column:clicks_without_conversions" json:"clicks_without_conversions"`

	StarCount           int `gorm:"column:star_count" json:"star_count"`
	GoodCount           int `gorm:"column:good_count" json:"good_count"`
	UnderperformerCount int `gorm:"column:underperformer_count" json:"underperformer_count"`

	Top1PctProducts          int     `gorm:"column:top_1_pct_products" json:"top_1_pct_products"`
	Top1PctConversionsShare  float64 `gorm:"column:top_1_pct_conversions_share" json:"top_1_pct_conversions_share"`
	Top5PctProducts          int     `gorm:"column:top_5_pct_products" json:"top_5_pct_products"`
	Top5PctConversionsShare  float64 `gorm:"column:top_5_pct_conversions_share" json:"top_5_pct_conversions_share"`
	Top10PctProducts         int     `gorm:"column:top_10_pct_products" json:"top_10_pct_products"`
	Top10PctConversionsShare float64 `gorm:"column:top_10_pct_conversions_share" json:"top_10_pct_conversions_share"`

	ProductsWithWastedClicks int     `gorm:"column:products_with_wasted_clicks" json:"products_with_wasted_clicks"`
	TotalWastedClicks        int64   `gorm:"column:total_wasted_clicks" json:"total_wasted_clicks"`
	WastedClicksPercentage   float64 `gorm:"column:wasted_clicks_percentage" json:"wasted_clicks_percentage"`

	ProductClassifications datatypes.JSON `gorm:"column:product_classifications;type:jsonb" json:"product_classifications"`

	LastUpdated  time.Time  `gorm:"column:last_updated;not null;default:now()" json:"last_updated"`
	ClassifiedAt *time.Time `gorm:"column:classified_at" json:"classified_at"`
}

func (ProductSnapshot) TableName() string {
	return "product_performance_snapshots"
}

// AuctionSnapshot summarizes the competitive auction landscape for a retailer
// and period. Competitors holds the top-20 competitor rows for the UI.
type AuctionSnapshot struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	RetailerID string    `gorm:"column:retailer_id;not null;uniqueIndex:idx_auction_snapshots_key" json:"retailer_id"`
	RangeType  string    `gorm:"column:range_type;not null;default:'month';uniqueIndex:idx_auction_snapshots_key" json:"range_type"`
	RangeStart time.Time `gorm:"column:range_start;type:date;not null;uniqueIndex:idx_auction_snapshots_key" json:"range_start"`
	RangeEnd   time.Time `gorm:"column:range_end;type:date;not null;uniqueIndex:idx_auction_snapshots_key" json:"range_end"`

	AvgImpressionShare *float64 `gorm:"column:avg_impression_share" json:"avg_impression_share"`
	TotalCompetitors   int      `gorm:"column:total_competitors" json:"total_competitors"`
	AvgOverlapRate     float64  `gorm:"column:avg_overlap_rate" json:"avg_overlap_rate"`
	AvgOutrankingShare float64  `gorm:"column:avg_outranking_share" json:"avg_outranking_share"`
	AvgBeingOutranked  float64  `gorm:"column:avg_being_outranked" json:"avg_being_outranked"`

	Competitors datatypes.JSON `gorm:"column:competitors;type:jsonb" json:"competitors"`

	TopCompetitorID            *string  `gorm:"column:top_competitor_id" json:"top_competitor_id"`
	TopCompetitorOverlapRate   *float64 `gorm:"column:top_competitor_overlap_rate" json:"top_competitor_overlap_rate"`
	TopCompetitorOutrankingYou *float64 `gorm:"column:top_competitor_outranking_you" json:"top_competitor_outranking_you"`

	BiggestThreatID            *string  `gorm:"column:biggest_threat_id" json:"biggest_threat_id"`
	BiggestThreatOverlapRate   *float64 `gorm:"column:biggest_threat_overlap_rate" json:"biggest_threat_overlap_rate"`
	BiggestThreatOutrankingYou *float64 `gorm:"column:biggest_threat_outranking_you" json:"biggest_threat_outranking_you"`

	BestOpportunityID            *string  `gorm:"column:best_opportunity_id" json:"best_opportunity_id"`
	BestOpportunityOverlapRate   *float64 `gorm:"column:best_opportunity_overlap_rate" json:"best_opportunity_overlap_rate"`
	BestOpportunityYouOutranking *float64 `gorm:"column:best_opportunity_you_outranking" json:"best_opportunity_you_outranking"`

	LastUpdated time.Time `gorm:"column:last_updated;not null;default:now()" json:"last_updated"`
}

func (AuctionSnapshot) TableName() string {
	return "auction_insights_snapshots"
}

// CoverageSnapshot tracks how much of the catalog has any search visibility
// in a period.
type CoverageSnapshot struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	RetailerID string    `gorm:"column:retailer_id;not null;uniqueIndex:idx_coverage_snapshots_key" json:"retailer_id"`
	RangeType  string    `gorm:"column:range_type;not null;default:'month';uniqueIndex:idx_coverage_snapshots_key" json:"range_type"`
	RangeStart time.Time `gorm:"column:range_start;type:date;not null;uniqueIndex:idx_coverage_snapshots_key" json:"range_start"`
	RangeEnd   time.Time `gorm:"column:range_end;type:date;not null;uniqueIndex:idx_coverage_snapshots_key" json:"range_end"`

	TotalProducts          int     `gorm:"column:total_products" json:"total_products"`
	ActiveProducts         int     `gorm:"column:active_products" json:"active_products"`
	ZeroVisibilityProducts int     `gorm:"column:zero_visibility_products" json:"zero_visibility_products"`
	CoveragePct            float64 `gorm:"column:coverage_pct" json:"coverage_pct"`

	TopCategory datatypes.JSON `gorm:"column:top_category;type:jsonb" json:"top_category"`
	BiggestGap  datatypes.JSON `gorm:"column:biggest_gap;type:jsonb" json:"biggest_gap"`

	LastUpdated time.Time `gorm:"column:last_updated;not null;default:now()" json:"last_updated"`
}

func (CoverageSnapshot) TableName() string {
	return "product_coverage_snapshots"
}
