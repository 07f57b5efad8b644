package stats

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func TestEloSymmetry(t *testing.T) {
	tests := []struct{ w, d, l int }{
		{0, 0, 0},
		{10, 5, 3},
		{1, 0, 0},
		{40, 120, 25},
	}

	for _, tt := range tests {
		lower, elo, upper := Elo(tt.w, tt.d, tt.l)
		mLower, mElo, mUpper := Elo(tt.l, tt.d, tt.w)

		if math.Abs(elo+mElo) > epsilon {
			t.Errorf("Elo(%d, %d, %d) = %f is not the negation of %f", tt.w, tt.d, tt.l, elo, mElo)
		}

		if math.Abs(lower+mUpper) > epsilon || math.Abs(upper+mLower) > epsilon {
			t.Errorf("Elo(%d, %d, %d) bounds are not mirrored", tt.w, tt.d, tt.l)
		}

		if !(lower <= elo && elo <= upper) {
			t.Errorf("Elo(%d, %d, %d): expected %f <= %f <= %f", tt.w, tt.d, tt.l, lower, elo, upper)
		}
	}
}

func TestEloDirection(t *testing.T) {
	if _, elo, _ := Elo(0, 0, 0); math.Abs(elo) > epsilon {
		t.Errorf("expected no results to be rated 0, got %f", elo)
	}

	if _, elo, _ := Elo(10, 5, 3); elo <= 0 {
		t.Errorf("expected a winning record to be rated above 0, got %f", elo)
	}

	_, small, _ := Elo(3, 0, 1)
	_, large, _ := Elo(30, 0, 10)
	if math.Abs(small-large) > 100 {
		t.Errorf("expected equal score rates to give similar estimates, got %f and %f", small, large)
	}

	lower, _, upper := Elo(3, 0, 1)
	lowerLarge, _, upperLarge := Elo(30, 0, 10)
	if upperLarge-lowerLarge >= upper-lower {
		t.Error("expected the error margin to shrink with more matches")
	}
}

func TestPentaElo(t *testing.T) {
	if _, elo, _ := PentaElo(0, 0, 0, 0, 0); math.Abs(elo) > epsilon {
		t.Errorf("expected no pairs to be rated 0, got %f", elo)
	}

	lower, elo, upper := PentaElo(1, 2, 10, 6, 3)
	_, mElo, _ := PentaElo(3, 6, 10, 2, 1)

	if elo <= 0 || math.Abs(elo+mElo) > epsilon {
		t.Errorf("expected mirrored pentanomial estimates, got %f and %f", elo, mElo)
	}

	if !(lower <= elo && elo <= upper) {
		t.Errorf("expected %f <= %f <= %f", lower, elo, upper)
	}
}

func TestLOS(t *testing.T) {
	tests := []struct {
		w, l     int
		min, max float64
	}{
		{0, 0, 0.5, 0.5},
		{5, 5, 0.5, 0.5},
		{10, 0, 0.99, 1},
		{0, 10, 0, 0.01},
	}

	for _, tt := range tests {
		if los := LOS(tt.w, tt.l); los < tt.min-epsilon || los > tt.max+epsilon {
			t.Errorf("LOS(%d, %d) = %f, expected between %f and %f", tt.w, tt.l, los, tt.min, tt.max)
		}
	}
}

func TestBoundsContainEstimate(t *testing.T) {
	for w := 0; w <= 4; w++ {
		for d := 0; d <= 2; d++ {
			for l := 0; l <= 4; l++ {
				lower, elo, upper := Elo(w, d, l)
				if !(lower <= elo && elo <= upper) || math.IsInf(upper-lower, 0) || math.IsNaN(elo) {
					t.Errorf("Elo(%d, %d, %d): expected %f <= %f <= %f", w, d, l, lower, elo, upper)
				}
			}
		}
	}

	tests := [][5]int{
		{0, 0, 0, 0, 1},
		{1, 0, 0, 0, 0},
		{0, 0, 0, 0, 4},
		{0, 0, 2, 0, 0},
		{0, 1, 0, 3, 0},
	}

	for _, pairs := range tests {
		lower, elo, upper := PentaElo(pairs[0], pairs[1], pairs[2], pairs[3], pairs[4])
		if !(lower <= elo && elo <= upper) {
			t.Errorf("PentaElo%v: expected %f <= %f <= %f", pairs, lower, elo, upper)
		}
	}
}

func TestOneSidedUpperBound(t *testing.T) {
	// A single win is rated positive, and its upper bound lies above it
	// instead of collapsing to zero.
	lower, elo, upper := Elo(1, 0, 0)
	if elo <= 0 || upper <= elo || lower >= elo {
		t.Errorf("expected %f < %f < %f with a positive estimate", lower, elo, upper)
	}

	if _, _, mUpper := Elo(0, 0, 1); math.Abs(mUpper+lower) > epsilon {
		t.Errorf("expected mirrored bounds, got %f and %f", lower, mUpper)
	}
}
