// Package tiers holds the shared performance classification rule and the
// per-domain renames layered on top of it. Every stage that buckets an
// entity by conversion rate goes through Classify so the boundaries stay
// consistent across keywords, categories and products.
package tiers

// Status is the base five-tier bucket.
type Status string

const (
	StatusStar            Status = "star"
	StatusStrong          Status = "strong"
	StatusModerate        Status = "moderate"
	StatusUnderperforming Status = "underperforming"
	StatusCritical        Status = "critical"
)

// CVR thresholds, percentages. Boundary values belong to the higher tier.
const (
	MinCVRStar            = 4.0
	MinCVRStrong          = 3.0
	MinCVRModerate        = 2.0
	MinCVRUnderperforming = 1.0

	// MinStarImpressions gates the star tier when a volume figure is known.
	MinStarImpressions = 1000
)

// Classify buckets a conversion rate into one of the five tiers.
// impressions is optional; when present, star additionally requires the
// volume floor. A caller with zero clicks has an undefined CVR and should
// pass 0, which lands in critical.
func Classify(cvr float64, impressions *int64) Status {
	hasSignificantVolume := impressions == nil || *impressions >= MinStarImpressions

	switch {
	case cvr >= MinCVRStar && hasSignificantVolume:
		return StatusStar
	case cvr >= MinCVRStrong:
		return StatusStrong
	case cvr >= MinCVRModerate:
		return StatusModerate
	case cvr >= MinCVRUnderperforming:
		return StatusUnderperforming
	default:
		return StatusCritical
	}
}

// KeywordTier folds the base tiers into the four keyword buckets: moderate
// counts as underperforming, critical is reported as poor.
type KeywordTier string

const (
	KeywordStar            KeywordTier = "star"
	KeywordStrong          KeywordTier = "strong"
	KeywordUnderperforming KeywordTier = "underperforming"
	KeywordPoor            KeywordTier = "poor"
)

func ForKeyword(s Status) KeywordTier {
	switch s {
	case StatusStar:
		return KeywordStar
	case StatusStrong:
		return KeywordStrong
	case StatusModerate, StatusUnderperforming:
		return KeywordUnderperforming
	default:
		return KeywordPoor
	}
}

// HealthStatus is the category bucket set. An undefined CVR (no clicks in
// the period) maps to attention rather than broken, since the category may
// simply lack traffic.
type HealthStatus string

const (
	HealthBroken          HealthStatus = "broken"
	HealthUnderperforming HealthStatus = "underperforming"
	HealthAttention       HealthStatus = "attention"
	HealthHealthy         HealthStatus = "healthy"
	HealthStar            HealthStatus = "star"
)

// ForCategory maps a category's CVR to its health bucket. cvr is nil when
// the period had no clicks.
func ForCategory(cvr *float64, impressions int64) HealthStatus {
	if cvr == nil {
		return HealthAttention
	}
	imp := impressions
	switch Classify(*cvr, &imp) {
	case StatusStar:
		return HealthStar
	case StatusStrong, StatusModerate:
		return HealthHealthy
	case StatusUnderperforming:
		return HealthUnderperforming
	default:
		return HealthBroken
	}
}

// ProductTier folds the base tiers into the three product buckets.
type ProductTier string

const (
	ProductStar           ProductTier = "star"
	ProductGood           ProductTier = "good"
	ProductUnderperformer ProductTier = "underperformer"
)

func ForProduct(s Status) ProductTier {
	switch s {
	case StatusStar:
		return ProductStar
	case StatusStrong, StatusModerate:
		return ProductGood
	default:
		return ProductUnderperformer
	}
}
