package snapshots

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/shareview/analytics/internal/types"
	"github.com/shareview/analytics/internal/warehouse"
)

// categoryNode is the in-memory tree node while building a period's category
// snapshot. Node metrics cover facts at exactly this path; branch metrics
// roll up the subtree.
type categoryNode struct {
	level1, level2, level3, level4, level5 string

	fullPath   string
	depth      int
	parentPath *string

	nodeImpressions int64
	nodeClicks      int64
	nodeConversions float64
	nodeCTR         *float64
	nodeCVR         *float64

	branchImpressions int64
	branchClicks      int64
	branchConversions float64
	branchCTR         *float64
	branchCVR         *float64

	healthNode   *string
	healthBranch *string
}

// buildPath joins non-empty levels with " > ".
func buildPath(levels ...string) string {
	parts := make([]string, 0, len(levels))
	for _, l := range levels {
		if l != "" {
			parts = append(parts, l)
		}
	}
	return strings.Join(parts, " > ")
}

func pathDepth(l1, l2, l3, l4, l5 string) int {
	switch {
	case l5 != "":
		return 5
	case l4 != "":
		return 4
	case l3 != "":
		return 3
	case l2 != "":
		return 2
	default:
		return 1
	}
}

func parentPath(l1, l2, l3, l4, l5 string) *string {
	var p string
	switch {
	case l5 != "":
		p = buildPath(l1, l2, l3, l4)
	case l4 != "":
		p = buildPath(l1, l2, l3)
	case l3 != "":
		p = buildPath(l1, l2)
	case l2 != "":
		p = buildPath(l1)
	default:
		return nil
	}
	return &p
}

// buildCategoryTree turns flat level rows into a full tree: real nodes from
// the facts, synthetic ancestors where the source has no standalone row for
// a parent level, and bottom-up branch aggregation.
func buildCategoryTree(rows []warehouse.CategoryLevelRow) map[string]*categoryNode {
	tree := make(map[string]*categoryNode, len(rows))

	for _, r := range rows {
		fullPath := buildPath(r.Level1, r.Level2, r.Level3, r.Level4, r.Level5)
		tree[fullPath] = &categoryNode{
			level1: r.Level1, level2: r.Level2, level3: r.Level3, level4: r.Level4, level5: r.Level5,
			fullPath:   fullPath,
			depth:      pathDepth(r.Level1, r.Level2, r.Level3, r.Level4, r.Level5),
			parentPath: parentPath(r.Level1, r.Level2, r.Level3, r.Level4, r.Level5),

			nodeImpressions: r.Impressions,
			nodeClicks:      r.Clicks,
			nodeConversions: r.Conversions,
			nodeCTR:         r.CTR,
			nodeCVR:         r.CVR,

			branchImpressions: r.Impressions,
			branchClicks:      r.Clicks,
			branchConversions: r.Conversions,
		}
	}

	// Synthesize missing ancestors so the tree is navigable from the top.
	// Source rows often exist only at leaf or mid levels.
	paths := make([]string, 0, len(tree))
	for p := range tree {
		paths = append(paths, p)
	}
	for _, p := range paths {
		node := tree[p]
		levels := []string{node.level1, node.level2, node.level3, node.level4, node.level5}
		for ancestorDepth := 1; ancestorDepth < node.depth; ancestorDepth++ {
			al := make([]string, 5)
			copy(al, levels[:ancestorDepth])
			ancestor := buildPath(al...)
			if ancestor == "" {
				continue
			}
			if _, ok := tree[ancestor]; !ok {
				tree[ancestor] = &categoryNode{
					level1: al[0], level2: al[1], level3: al[2], level4: al[3], level5: al[4],
					fullPath:   ancestor,
					depth:      ancestorDepth,
					parentPath: parentPath(al[0], al[1], al[2], al[3], al[4]),
				}
			}
		}
	}

	// Branch rollup, leaves first.
	nodes := make([]*categoryNode, 0, len(tree))
	for _, n := range tree {
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].depth > nodes[j].depth })
	for _, n := range nodes {
		for _, child := range tree {
			if child.parentPath != nil && *child.parentPath == n.fullPath {
				n.branchImpressions += child.branchImpressions
				n.branchClicks += child.branchClicks
				n.branchConversions += child.branchConversions
			}
		}
		if n.branchImpressions > 0 {
			ctr := float64(n.branchClicks) / float64(n.branchImpressions) * 100
			n.branchCTR = &ctr
		}
		if n.branchClicks > 0 {
			cvr := n.branchConversions / float64(n.branchClicks) * 100
			n.branchCVR = &cvr
		}
	}

	return tree
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// classifyRelativeTier buckets a node against the portfolio medians. Nodes
// with no engagement or no conversions are poor; 1.5x both medians is star,
// 0.8x both is strong.
func classifyRelativeTier(ctr, cvr *float64, impressions, clicks int64, conversions, medCTR, medCVR float64) string {
	if impressions == 0 || clicks == 0 || conversions == 0 {
		return "poor"
	}
	if ctr == nil || cvr == nil {
		return "poor"
	}
	var ctrRatio, cvrRatio float64
	if medCTR > 0 {
		ctrRatio = *ctr / medCTR
	}
	if medCVR > 0 {
		cvrRatio = *cvr / medCVR
	}
	if ctrRatio >= 1.5 && cvrRatio >= 1.5 {
		return "star"
	}
	if ctrRatio >= 0.8 && cvrRatio >= 0.8 {
		return "strong"
	}
	return "underperforming"
}

// classifyTree stamps node and branch tiers relative to the tree's medians.
// Pure routing nodes (zero own impressions) keep a nil node tier.
func classifyTree(tree map[string]*categoryNode) {
	var nodeCTRs, nodeCVRs, branchCTRs, branchCVRs []float64
	for _, n := range tree {
		if n.nodeImpressions > 0 && n.nodeCTR != nil {
			nodeCTRs = append(nodeCTRs, *n.nodeCTR)
		}
		if n.nodeClicks > 0 && n.nodeCVR != nil {
			nodeCVRs = append(nodeCVRs, *n.nodeCVR)
		}
		if n.branchImpressions > 0 && n.branchCTR != nil {
			branchCTRs = append(branchCTRs, *n.branchCTR)
		}
		if n.branchClicks > 0 && n.branchCVR != nil {
			branchCVRs = append(branchCVRs, *n.branchCVR)
		}
	}
	medNodeCTR, medNodeCVR := median(nodeCTRs), median(nodeCVRs)
	medBranchCTR, medBranchCVR := median(branchCTRs), median(branchCVRs)

	for _, n := range tree {
		if n.nodeImpressions > 0 {
			tier := classifyRelativeTier(n.nodeCTR, n.nodeCVR, n.nodeImpressions, n.nodeClicks, n.nodeConversions, medNodeCTR, medNodeCVR)
			n.healthNode = &tier
		}
		tier := classifyRelativeTier(n.branchCTR, n.branchCVR, n.branchImpressions, n.branchClicks, n.branchConversions, medBranchCTR, medBranchCVR)
		n.healthBranch = &tier
	}
}

func (g *Generator) generateCategorySnapshot(ctx context.Context, u unit) (Result, error) {
	rows, err := g.warehouse.CategoryLevelRows(ctx, u.RetailerID, u.RangeStart, u.RangeEnd)
	if err != nil {
		return Result{}, fmt.Errorf("category level rows: %w", err)
	}
	if len(rows) == 0 {
		return Result{Domain: DomainCategories, RetailerID: u.RetailerID, Month: u.Label(), Operation: OpSkipped}, nil
	}

	tree := buildCategoryTree(rows)
	classifyTree(tree)

	childCounts := make(map[string]int)
	for _, n := range tree {
		if n.parentPath != nil {
			childCounts[*n.parentPath]++
		}
	}

	nodes := make([]*types.CategoryNodeSnapshot, 0, len(tree))
	for _, n := range tree {
		nodes = append(nodes, &types.CategoryNodeSnapshot{
			RetailerID: u.RetailerID,
			RangeType:  types.PeriodTypeMonth,
			RangeStart: u.RangeStart,
			RangeEnd:   u.RangeEnd,

			Level1: n.level1, Level2: n.level2, Level3: n.level3, Level4: n.level4, Level5: n.level5,
			FullPath:   n.fullPath,
			Depth:      n.depth,
			ParentPath: n.parentPath,

			NodeImpressions: n.nodeImpressions,
			NodeClicks:      n.nodeClicks,
			NodeConversions: n.nodeConversions,
			NodeCTR:         n.nodeCTR,
			NodeCVR:         n.nodeCVR,

			BranchImpressions: n.branchImpressions,
			BranchClicks:      n.branchClicks,
			BranchConversions: n.branchConversions,
			BranchCTR:         n.branchCTR,
			BranchCVR:         n.branchCVR,

			HasChildren:        childCounts[n.fullPath] > 0,
			ChildCount:         childCounts[n.fullPath],
			HealthStatusNode:   n.healthNode,
			HealthStatusBranch: n.healthBranch,
		})
	}

	if err := g.categoryNodes.ReplaceForPeriod(ctx, nil, u.RetailerID, u.RangeStart, u.RangeEnd, nodes); err != nil {
		return Result{}, fmt.Errorf("replace category nodes: %w", err)
	}

	// Period summary row from the fact rows (real paths only, not synthetic
	// ancestors), so totals match the warehouse.
	var totalImpr, totalClicks int64
	var totalConv float64
	for _, r := range rows {
		totalImpr += r.Impressions
		totalClicks += r.Clicks
		totalConv += r.Conversions
	}
	summary := &types.CategorySnapshot{
		RetailerID:       u.RetailerID,
		RangeType:        types.PeriodTypeMonth,
		RangeStart:       u.RangeStart,
		RangeEnd:         u.RangeEnd,
		TotalCategories:  len(rows),
		TotalImpressions: totalImpr,
		TotalClicks:      totalClicks,
		TotalConversions: totalConv,
	}
	if totalImpr > 0 {
		ctr := float64(totalClicks) / float64(totalImpr) * 100
		summary.OverallCTR = &ctr
	}
	if totalClicks > 0 {
		cvr := totalConv / float64(totalClicks) * 100
		summary.OverallCVR = &cvr
	}
	if _, err := g.categories.Upsert(ctx, nil, summary); err != nil {
		return Result{}, fmt.Errorf("upsert category summary: %w", err)
	}

	return Result{Domain: DomainCategories, RetailerID: u.RetailerID, Month: u.Label(), RowCount: len(nodes), Operation: OpCreated}, nil
}
