package bench

import (
	"testing"
)

func TestSweepThresholds(t *testing.T) {
	thresholds := SweepThresholds(0.1, 1.0, 0.2)

	want := []float64{0.1, 0.3, 0.5, 0.7, 0.9}
	if len(thresholds) != len(want) {
		t.Errorf("got %d thresholds, want %d", len(thresholds), len(want))
		t.Logf("got: %v", thresholds)
		return
	}

	for i := range want {
		diff := thresholds[i] - want[i]
		if diff < -0.001 || diff > 0.001 {
			t.Errorf("threshold[%d] = %v, want %v", i, thresholds[i], want[i])
		}
	}
}

func TestSweep(t *testing.T) {
	probs := []float64{0.9, 0.7, 0.4, 0.2, 0.1}
	labels := []float64{1, 1, 1, 0, 0}

	results, err := Sweep(probs, labels, DefaultConfig(), []float64{0.15, 0.3, 0.8})
	if err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	for i := 1; i < len(results); i++ {
		if results[i].Metrics.WeightedScore > results[i-1].Metrics.WeightedScore {
			t.Errorf("results not sorted at %d", i)
		}
	}
	if results[0].Threshold != 0.3 {
		t.Errorf("best threshold = %v, want 0.3", results[0].Threshold)
	}

	best, ok := BestF1(results)
	if !ok {
		t.Fatal("BestF1() returned no result")
	}
	if best.Metrics.F1 != 1 {
		t.Errorf("best F1 = %v, want 1", best.Metrics.F1)
	}
}

func TestSweep_LengthMismatch(t *testing.T) {
	if _, err := Sweep([]float64{0.5}, nil, DefaultConfig(), []float64{0.5}); err == nil {
		t.Error("expected error for mismatched lengths")
	}
}

func TestBestF1_Empty(t *testing.T) {
	if _, ok := BestF1(nil); ok {
		t.Error("expected no result for empty sweep")
	}
}
