package util

import (
	"slices"
	"testing"

	"gomori.dev/x/judge/pkg/eve/match"
)

func TestNaturalCompare(t *testing.T) {
	tests := []struct {
		a, b     string
		expected int
	}{
		{"bot2", "bot10", -1},
		{"bot10", "bot2", +1},
		{"bot", "bot", 0},
		{"bot", "bot1", -1},
		{"a.json", "b.json", -1},
		{"greedy_bot", "random_bot", -1},
		{"v1.10.json", "v1.9.json", +1},
		{"07", "7", -1},
	}

	for _, tt := range tests {
		t.Run(tt.a+" "+tt.b, func(t *testing.T) {
			if got := NaturalCompare(tt.a, tt.b); got != tt.expected {
				t.Errorf("NaturalCompare(%q, %q) = %d, expected %d", tt.a, tt.b, got, tt.expected)
			}
		})
	}
}

func TestNaturalSort(t *testing.T) {
	names := []string{"bot10.json", "bot1.json", "bot2.json", "alpha.json"}
	slices.SortFunc(names, NaturalCompare)

	expected := []string{"alpha.json", "bot1.json", "bot2.json", "bot10.json"}
	if !slices.Equal(names, expected) {
		t.Errorf("expected %v, got %v", expected, names)
	}
}

func TestProgressCounts(t *testing.T) {
	progress := NewProgress(3)
	progress.Start()

	progress.Finished(match.Result{Number: 1})
	progress.Finished(match.Result{Number: 2})

	if n := progress.Count(); n != 2 {
		t.Errorf("expected 2 finished matches, got %d", n)
	}

	if err := progress.Close(); err != nil {
		t.Error(err)
	}
}
