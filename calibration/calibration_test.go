package calibration

import "testing"

func TestMeasurePromotionCost_ReturnsPositiveDuration(t *testing.T) {
	tau := MeasurePromotionCost(200)
	if tau <= 0 {
		t.Fatalf("MeasurePromotionCost() = %s, want > 0", tau)
	}
}

func TestMeasurePromotionCost_DefaultsOnNonPositiveIterations(t *testing.T) {
	tau := MeasurePromotionCost(0)
	if tau <= 0 {
		t.Fatalf("MeasurePromotionCost(0) = %s, want > 0", tau)
	}
}

func TestCalibrate_RecommendedPeriodIsTwentyTimesCost(t *testing.T) {
	result := Calibrate(200)

	if result.PromotionCost <= 0 {
		t.Fatalf("PromotionCost = %s, want > 0", result.PromotionCost)
	}
	if result.RecommendedPeriod != 20*result.PromotionCost {
		t.Fatalf("RecommendedPeriod = %s, want 20x PromotionCost (%s)", result.RecommendedPeriod, 20*result.PromotionCost)
	}
	if result.Samples != 200 {
		t.Fatalf("Samples = %d, want 200", result.Samples)
	}
	if result.ExpectedOverheadPercent <= 0 || result.ExpectedOverheadPercent > 100 {
		t.Fatalf("ExpectedOverheadPercent = %v, want in (0, 100]", result.ExpectedOverheadPercent)
	}
}
