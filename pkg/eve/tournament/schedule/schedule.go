package schedule

import (
	"fmt"
	"slices"
)

// New returns the scheduler with the given name.
func New(name string) (Scheduler, error) {
	switch name {
	case "round-robin", "":
		return &RoundRobin{}, nil
	case "gauntlet":
		return &Gauntlet{}, nil
	default:
		return nil, fmt.Errorf("new tour: invalid scheduler %s", name)
	}
}

// Names lists the names of the available schedulers.
func Names() []string {
	return []string{"round-robin", "gauntlet"}
}

// A Scheduler decides which players meet in a round. Players are
// identified by their index.
type Scheduler interface {
	Initialize(n int)
	NextEncounter() (int, int)
	TotalEncounters() int
}

// RoundRobin pairs every player with every other player once per round,
// using the circle method.
type RoundRobin struct {
	player_count int

	pair_number int

	circle_top, circle_bottom []int
}

func (rr *RoundRobin) Initialize(n int) {
	rr.player_count = n
	rounded_total := rr.player_count + rr.player_count%2

	rr.circle_top = make([]int, rounded_total/2)
	rr.circle_bottom = make([]int, rounded_total/2)

	for i := 0; i < rounded_total; i++ {
		if i < rounded_total/2 {
			rr.circle_top[i] = i
		} else {
			rr.circle_bottom[rounded_total-i-1] = i
		}
	}

	rr.pair_number = 0
}

func (rr *RoundRobin) NextEncounter() (int, int) {
	for {
		if rr.pair_number >= len(rr.circle_top) {
			rr.rotate()
		}

		player1 := rr.circle_top[rr.pair_number]
		player2 := rr.circle_bottom[rr.pair_number]
		rr.pair_number++

		// With an odd number of players, the extra slot is a bye.
		if player1 < rr.player_count && player2 < rr.player_count {
			return player1, player2
		}
	}
}

// rotate keeps the first player of the circle fixed and moves every other
// player by one slot.
func (rr *RoundRobin) rotate() {
	rr.pair_number = 0

	last_idx := len(rr.circle_top) - 1
	if last_idx == 0 {
		return
	}

	last_elem := rr.circle_top[last_idx]

	rr.circle_top = slices.Insert(rr.circle_top, 1, rr.circle_bottom[0])[:last_idx+1]
	rr.circle_bottom = append(rr.circle_bottom, last_elem)[1:]
}

func (rr *RoundRobin) TotalEncounters() int {
	return rr.player_count * (rr.player_count - 1) / 2
}
