package schedule

import "testing"

func TestRoundRobinCoversEveryPair(t *testing.T) {
	for n := 2; n <= 7; n++ {
		rr, err := New("round-robin")
		if err != nil {
			t.Fatal(err)
		}

		rr.Initialize(n)

		if total := rr.TotalEncounters(); total != n*(n-1)/2 {
			t.Fatalf("n=%d: expected %d encounters, got %d", n, n*(n-1)/2, total)
		}

		seen := map[[2]int]bool{}
		for i := 0; i < rr.TotalEncounters(); i++ {
			p1, p2 := rr.NextEncounter()
			if p1 == p2 || p1 < 0 || p2 < 0 || p1 >= n || p2 >= n {
				t.Fatalf("n=%d: invalid encounter %d vs %d", n, p1, p2)
			}

			key := [2]int{min(p1, p2), max(p1, p2)}
			if seen[key] {
				t.Fatalf("n=%d: encounter %v scheduled twice", n, key)
			}
			seen[key] = true
		}
	}
}

func TestRoundRobinTwoPlayers(t *testing.T) {
	var rr RoundRobin
	rr.Initialize(2)

	for i := 0; i < 3; i++ {
		if p1, p2 := rr.NextEncounter(); p1 != 0 || p2 != 1 {
			t.Errorf("expected 0 vs 1, got %d vs %d", p1, p2)
		}
	}
}

func TestGauntlet(t *testing.T) {
	g, err := New("gauntlet")
	if err != nil {
		t.Fatal(err)
	}

	g.Initialize(4)

	if total := g.TotalEncounters(); total != 3 {
		t.Fatalf("expected 3 encounters, got %d", total)
	}

	for i := 1; i <= 6; i++ {
		p1, p2 := g.NextEncounter()
		if expected := (i-1)%3 + 1; p1 != 0 || p2 != expected {
			t.Errorf("encounter %d: expected 0 vs %d, got %d vs %d", i, expected, p1, p2)
		}
	}
}

func TestNewInvalid(t *testing.T) {
	if _, err := New("swiss"); err == nil {
		t.Error("expected an error for an unknown scheduler")
	}
}
