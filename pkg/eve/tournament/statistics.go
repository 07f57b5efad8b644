package tournament

import (
	"gomori.dev/x/judge/pkg/eve/match"
	"gomori.dev/x/judge/pkg/eve/stats"
)

// Record is the running score of a single player.
type Record struct {
	Name string `yaml:"name" json:"name"`

	Wins          int `yaml:"wins" json:"wins"`
	ForfeitWins   int `yaml:"forfeit-wins" json:"forfeit_wins"`
	Losses        int `yaml:"losses" json:"losses"`
	ForfeitLosses int `yaml:"forfeit-losses" json:"forfeit_losses"`
	Draws         int `yaml:"draws" json:"draws"`
	Aborts        int `yaml:"aborts" json:"aborts"`

	// Pairs counts the player's results in completed game pairs, indexed
	// by the points it scored in the pair: 0 for two losses up to 4 for
	// two wins.
	Pairs [5]int `yaml:"pairs" json:"pairs"`
}

// Scored returns the number of matches the player won, drew, and lost,
// forfeits included.
func (record Record) Scored() (wins, draws, losses int) {
	return record.Wins + record.ForfeitWins, record.Draws, record.Losses + record.ForfeitLosses
}

// Elo estimates the player's elo difference to the rest of the field with
// its error margin. Completed pairs are preferred over single games.
func (record Record) Elo() (elo, margin float64) {
	var lower, upper float64

	pairs := record.Pairs
	if pairs != [5]int{} {
		lower, elo, upper = stats.PentaElo(pairs[0], pairs[1], pairs[2], pairs[3], pairs[4])
	} else {
		wins, draws, losses := record.Scored()
		lower, elo, upper = stats.Elo(wins, draws, losses)
	}

	return elo, max(upper-elo, elo-lower)
}

// Statistics is the running aggregate of the finished matches. The outcome
// counts always sum to Matches.
type Statistics struct {
	Matches int `yaml:"matches" json:"matches"`

	Wins     int `yaml:"wins" json:"wins"` // decisive matches under normal play
	Draws    int `yaml:"draws" json:"draws"`
	Forfeits int `yaml:"forfeits" json:"forfeits"`
	Aborts   int `yaml:"aborts" json:"aborts"`

	Terminations map[match.Termination]int `yaml:"terminations" json:"terminations"`

	Players []Record `yaml:"players" json:"players"`
}

func newStatistics(players []match.BotConfig) Statistics {
	statistics := Statistics{
		Terminations: make(map[match.Termination]int),
		Players:      make([]Record, len(players)),
	}

	for i, player := range players {
		statistics.Players[i].Name = player.Name
	}

	return statistics
}

// add counts the result of a match between the given players, who sat in
// the first and second seat respectively.
func (statistics *Statistics) add(player1, player2 int, result match.Result) {
	statistics.Matches++
	statistics.Terminations[result.Termination]++

	p1, p2 := &statistics.Players[player1], &statistics.Players[player2]

	switch result.Score {
	case match.Aborted:
		statistics.Aborts++
		p1.Aborts++
		p2.Aborts++
		return

	case match.Draw:
		statistics.Draws++
		p1.Draws++
		p2.Draws++
		return

	case match.Player2Wins:
		p1, p2 = p2, p1
	}

	// p1 is the winner from here on.
	if result.Termination.Forfeit() {
		statistics.Forfeits++
		p1.ForfeitWins++
		p2.ForfeitLosses++
	} else {
		statistics.Wins++
		p1.Wins++
		p2.Losses++
	}
}

// addPair counts a completed game pair. The first result has player1 in
// the first seat, the second one has the seats swapped. Pairs with an
// aborted match are not counted.
func (statistics *Statistics) addPair(player1, player2 int, first, second match.Result) {
	if first.Score == match.Aborted || second.Score == match.Aborted {
		return
	}

	// Points of player1 in the pair, two for a win and one for a draw.
	points := int(first.Score) + 1 - int(second.Score) + 1

	statistics.Players[player1].Pairs[points]++
	statistics.Players[player2].Pairs[4-points]++
}

func (statistics *Statistics) clone() Statistics {
	clone := *statistics

	clone.Terminations = make(map[match.Termination]int, len(statistics.Terminations))
	for termination, n := range statistics.Terminations {
		clone.Terminations[termination] = n
	}

	clone.Players = append([]Record{}, statistics.Players...)
	return clone
}
