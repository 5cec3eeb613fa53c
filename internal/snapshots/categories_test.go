package snapshots

import (
	"testing"

	"github.com/shareview/analytics/internal/warehouse"
)

func levelRow(l1, l2, l3 string, impressions, clicks int64, conversions float64) warehouse.CategoryLevelRow {
	r := warehouse.CategoryLevelRow{
		Level1:      l1,
		Level2:      l2,
		Level3:      l3,
		Impressions: impressions,
		Clicks:      clicks,
		Conversions: conversions,
	}
	if impressions > 0 {
		ctr := float64(clicks) / float64(impressions) * 100
		r.CTR = &ctr
	}
	if clicks > 0 {
		cvr := conversions / float64(clicks) * 100
		r.CVR = &cvr
	}
	return r
}

func TestBuildPath(t *testing.T) {
	if got := buildPath("Home", "Garden", "Tools"); got != "Home > Garden > Tools" {
		t.Fatalf("path = %q", got)
	}
	if got := buildPath("Home", "", ""); got != "Home" {
		t.Fatalf("path = %q", got)
	}
}

func TestBuildCategoryTree_SynthesizesAncestors(t *testing.T) {
	rows := []warehouse.CategoryLevelRow{
		levelRow("Health", "Personal Care", "Cosmetics", 1000, 50, 5),
	}
	tree := buildCategoryTree(rows)

	if len(tree) != 3 {
		t.Fatalf("expected leaf plus two synthetic ancestors, got %d nodes", len(tree))
	}
	root, ok := tree["Health"]
	if !ok {
		t.Fatalf("missing synthetic root")
	}
	if root.nodeImpressions != 0 {
		t.Fatalf("synthetic node should have zero own metrics, got %d", root.nodeImpressions)
	}
	if root.branchImpressions != 1000 {
		t.Fatalf("root branch impressions = %d, want 1000", root.branchImpressions)
	}
	if root.parentPath != nil {
		t.Fatalf("root should have no parent, got %q", *root.parentPath)
	}
	mid := tree["Health > Personal Care"]
	if mid == nil || mid.parentPath == nil || *mid.parentPath != "Health" {
		t.Fatalf("mid node parent wrong: %+v", mid)
	}
}

func TestBuildCategoryTree_BranchRollupAcrossSiblings(t *testing.T) {
	rows := []warehouse.CategoryLevelRow{
		levelRow("Home", "Kitchen", "", 600, 30, 3),
		levelRow("Home", "Garden", "", 400, 10, 1),
		levelRow("Home", "", "", 100, 5, 0),
	}
	tree := buildCategoryTree(rows)

	root := tree["Home"]
	if root.branchImpressions != 1100 {
		t.Fatalf("root branch impressions = %d, want 1100", root.branchImpressions)
	}
	if root.branchClicks != 45 {
		t.Fatalf("root branch clicks = %d, want 45", root.branchClicks)
	}
	if root.nodeImpressions != 100 {
		t.Fatalf("root node impressions = %d, want 100", root.nodeImpressions)
	}
	if root.branchCTR == nil || *root.branchCTR < 4.0 || *root.branchCTR > 4.2 {
		t.Fatalf("root branch CTR = %v", root.branchCTR)
	}
}

func TestClassifyRelativeTier(t *testing.T) {
	ctr, cvr := 3.0, 3.0
	if got := classifyRelativeTier(&ctr, &cvr, 1000, 30, 1, 2.0, 2.0); got != "star" {
		t.Fatalf("1.5x both medians should be star, got %q", got)
	}
	if got := classifyRelativeTier(&ctr, &cvr, 1000, 30, 1, 3.5, 3.5); got != "strong" {
		t.Fatalf("0.8x both medians should be strong, got %q", got)
	}
	if got := classifyRelativeTier(&ctr, &cvr, 1000, 30, 1, 10, 10); got != "underperforming" {
		t.Fatalf("below 0.8x medians should be underperforming, got %q", got)
	}
	if got := classifyRelativeTier(&ctr, &cvr, 1000, 30, 0, 2, 2); got != "poor" {
		t.Fatalf("zero conversions should be poor, got %q", got)
	}
	if got := classifyRelativeTier(nil, nil, 0, 0, 0, 2, 2); got != "poor" {
		t.Fatalf("no engagement should be poor, got %q", got)
	}
}

func TestClassifyTree_RoutingNodesKeepNilNodeTier(t *testing.T) {
	rows := []warehouse.CategoryLevelRow{
		levelRow("A", "B", "", 1000, 50, 5),
	}
	tree := buildCategoryTree(rows)
	classifyTree(tree)

	root := tree["A"]
	if root.healthNode != nil {
		t.Fatalf("synthetic routing node should not get a node tier, got %q", *root.healthNode)
	}
	if root.healthBranch == nil {
		t.Fatalf("every node should get a branch tier")
	}
	leaf := tree["A > B"]
	if leaf.healthNode == nil {
		t.Fatalf("leaf with own traffic should get a node tier")
	}
}
