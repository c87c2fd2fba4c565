// Package testutil holds shared assertion helpers for the simulation tests.
package testutil

import (
	"math"
	"testing"
)

// RequireNearlyEqual fails t when got and want differ by more than eps.
func RequireNearlyEqual(t *testing.T, got, want, eps float64) {
	t.Helper()

	if diff := math.Abs(got - want); diff > eps || math.IsNaN(diff) {
		t.Fatalf("got %v, want %v (diff %v > eps %v)", got, want, diff, eps)
	}
}

// RequireRelativelyEqual fails t when got and want differ by more than the
// relative tolerance rel of want.
func RequireRelativelyEqual(t *testing.T, got, want, rel float64) {
	t.Helper()

	if want == 0 {
		RequireNearlyEqual(t, got, want, rel)
		return
	}

	if diff := math.Abs(got-want) / math.Abs(want); diff > rel || math.IsNaN(diff) {
		t.Fatalf("got %v, want %v (relative diff %v > %v)", got, want, diff, rel)
	}
}

// RequireSliceNearlyEqual fails t if got and want differ in length or if any
// element pair exceeds eps.
func RequireSliceNearlyEqual(t *testing.T, got, want []float64, eps float64) {
	t.Helper()

	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}

	for i := range got {
		diff := math.Abs(got[i] - want[i])
		if diff > eps || math.IsNaN(diff) {
			t.Fatalf("index %d: got %v, want %v (diff %v > eps %v)", i, got[i], want[i], diff, eps)
		}
	}
}

// RequireFinite fails t if any element is NaN or Inf. Sweeps and impulse
// estimates must stay finite across the whole band.
func RequireFinite(t *testing.T, data []float64) {
	t.Helper()

	for i, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("index %d: non-finite value %v", i, v)
		}
	}
}
