package tiers

import "testing"

func i64(v int64) *int64 { return &v }

func TestClassify_BoundariesGoToHigherTier(t *testing.T) {
	cases := []struct {
		cvr  float64
		want Status
	}{
		{4.0, StatusStar},
		{3.0, StatusStrong},
		{2.0, StatusModerate},
		{1.0, StatusUnderperforming},
		{0.99, StatusCritical},
	}
	for _, c := range cases {
		got := Classify(c.cvr, nil)
		if got != c.want {
			t.Fatalf("Classify(%v, nil) = %q, want %q", c.cvr, got, c.want)
		}
	}
}

func TestClassify_IsTotal(t *testing.T) {
	vols := []*int64{nil, i64(0), i64(999), i64(1000), i64(50000)}
	for cvr := -1.0; cvr <= 10.0; cvr += 0.25 {
		for _, vol := range vols {
			got := Classify(cvr, vol)
			switch got {
			case StatusStar, StatusStrong, StatusModerate, StatusUnderperforming, StatusCritical:
			default:
				t.Fatalf("Classify(%v) returned unknown status %q", cvr, got)
			}
		}
	}
}

func TestClassify_StarRequiresVolumeWhenKnown(t *testing.T) {
	if got := Classify(4.5, i64(999)); got != StatusStrong {
		t.Fatalf("high CVR with thin volume should fall to strong, got %q", got)
	}
	if got := Classify(4.5, i64(1000)); got != StatusStar {
		t.Fatalf("high CVR at volume floor should be star, got %q", got)
	}
	if got := Classify(4.0, i64(5000)); got != StatusStar {
		t.Fatalf("CVR exactly 4.0 with volume should be star, got %q", got)
	}
	if got := Classify(4.5, nil); got != StatusStar {
		t.Fatalf("unknown volume should not gate star, got %q", got)
	}
}

func TestClassify_ZeroClickCVRIsCritical(t *testing.T) {
	if got := Classify(0, i64(20000)); got != StatusCritical {
		t.Fatalf("zero CVR should be critical regardless of volume, got %q", got)
	}
}

func TestForKeyword_FoldsModerateIntoUnderperforming(t *testing.T) {
	if got := ForKeyword(StatusModerate); got != KeywordUnderperforming {
		t.Fatalf("moderate should fold to underperforming, got %q", got)
	}
	if got := ForKeyword(StatusCritical); got != KeywordPoor {
		t.Fatalf("critical should map to poor, got %q", got)
	}
	if got := ForKeyword(StatusStar); got != KeywordStar {
		t.Fatalf("star should stay star, got %q", got)
	}
}

func TestForCategory_NilCVRIsAttention(t *testing.T) {
	if got := ForCategory(nil, 100000); got != HealthAttention {
		t.Fatalf("nil CVR should be attention, got %q", got)
	}
	cvr := 3.2
	if got := ForCategory(&cvr, 5000); got != HealthHealthy {
		t.Fatalf("strong CVR should be healthy, got %q", got)
	}
	low := 0.4
	if got := ForCategory(&low, 5000); got != HealthBroken {
		t.Fatalf("critical CVR should be broken, got %q", got)
	}
}

func TestForProduct_FoldsStrongAndModerateIntoGood(t *testing.T) {
	for _, s := range []Status{StatusStrong, StatusModerate} {
		if got := ForProduct(s); got != ProductGood {
			t.Fatalf("%q should fold to good, got %q", s, got)
		}
	}
	if got := ForProduct(StatusUnderperforming); got != ProductUnderperformer {
		t.Fatalf("underperforming should map to underperformer, got %q", got)
	}
}
