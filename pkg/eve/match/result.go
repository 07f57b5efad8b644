package match

import "fmt"

// Score is the outcome of a match from the point of view of the first seat.
type Score int

const (
	Player1Wins Score = +1
	Draw        Score = 0
	Player2Wins Score = -1

	// Aborted matches have no attributable outcome.
	Aborted Score = 2
)

// GameLostBy maps the losing seat to the match's Score.
var GameLostBy = [2]Score{
	0: Player2Wins,
	1: Player1Wins,
}

// String returns a string representation of the given Score.
func (score Score) String() string {
	switch score {
	case Player1Wins:
		return "1-0"
	case Draw:
		return "1/2-1/2"
	case Player2Wins:
		return "0-1"
	case Aborted:
		return "*"
	default:
		return "?-?"
	}
}

// Termination is the way a match ended.
type Termination int

const (
	Normal Termination = iota
	IllegalMove
	ProtocolViolation
	Timeout
	Crash

	TerminationN
)

var terminationNames = [TerminationN]string{
	Normal:            "normal",
	IllegalMove:       "illegal move",
	ProtocolViolation: "protocol violation",
	Timeout:           "timeout",
	Crash:             "crash",
}

func (termination Termination) String() string {
	if termination < 0 || termination >= TerminationN {
		return fmt.Sprintf("Termination(%d)", int(termination))
	}

	return terminationNames[termination]
}

func (termination Termination) MarshalText() ([]byte, error) {
	return []byte(termination.String()), nil
}

func (termination *Termination) UnmarshalText(text []byte) error {
	for t, name := range terminationNames {
		if name == string(text) {
			*termination = Termination(t)
			return nil
		}
	}

	return fmt.Errorf("unknown termination %q", text)
}

// Forfeit reports whether the termination loses the match for the
// offending player.
func (termination Termination) Forfeit() bool {
	switch termination {
	case IllegalMove, ProtocolViolation, Timeout:
		return true
	default:
		return false
	}
}

// Result is the record of one finished match. It is created once, when the
// match reaches its terminal state.
type Result struct {
	Number  int       `yaml:"number" json:"number"`
	Players [2]string `yaml:"players" json:"players"`

	Score       Score       `yaml:"score" json:"score"`
	Termination Termination `yaml:"termination" json:"termination"`

	// Offender is the seat responsible for an abnormal termination, or -1.
	Offender int `yaml:"offender" json:"offender"`

	// Points are the cards won by each seat, as declared by the rules.
	Points [2]int `yaml:"points" json:"points"`

	Reason string `yaml:"reason" json:"reason"`
}

func forfeit(number int, players [2]string, seat int, termination Termination, reason string) Result {
	return Result{
		Number:      number,
		Players:     players,
		Score:       GameLostBy[seat],
		Termination: termination,
		Offender:    seat,
		Reason:      reason,
	}
}

func abort(number int, players [2]string, seat int, reason string) Result {
	return Result{
		Number:      number,
		Players:     players,
		Score:       Aborted,
		Termination: Crash,
		Offender:    seat,
		Reason:      reason,
	}
}

// Winner returns the seat which won the match, or -1 for draws and
// aborted matches.
func (result Result) Winner() int {
	switch result.Score {
	case Player1Wins:
		return 0
	case Player2Wins:
		return 1
	default:
		return -1
	}
}

func (result Result) String() string {
	switch result.Score {
	case Player1Wins, Player2Wins:
		winner := result.Players[result.Winner()]
		if result.Termination.Forfeit() {
			return fmt.Sprintf("%s wins by forfeit (%s: %s)", winner, result.Termination, result.Reason)
		}

		return fmt.Sprintf("%s wins %d to %d by %s", winner,
			result.Points[result.Winner()], result.Points[1^result.Winner()], result.Reason)

	case Draw:
		return fmt.Sprintf("draw %d to %d by %s", result.Points[0], result.Points[1], result.Reason)

	case Aborted:
		if result.Offender >= 0 {
			return fmt.Sprintf("aborted, %s crashed: %s", result.Players[result.Offender], result.Reason)
		}

		return fmt.Sprintf("aborted: %s", result.Reason)
	}

	return "illegal result"
}
