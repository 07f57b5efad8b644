package tournament

import (
	"bytes"
	"context"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"gomori.dev/x/judge/pkg/eve/match"
)

func players(names ...string) []match.BotConfig {
	configs := make([]match.BotConfig, len(names))
	for i, name := range names {
		configs[i] = match.BotConfig{Name: name, Cmd: "/bin/" + name}
	}

	return configs
}

func win(config *match.Config, seat int, termination match.Termination) match.Result {
	result := match.Result{
		Number:      config.Number,
		Players:     [2]string{config.Bots[0].Name, config.Bots[1].Name},
		Score:       match.GameLostBy[1^seat],
		Termination: termination,
		Offender:    -1,
		Reason:      "test",
	}

	if termination.Forfeit() {
		result.Offender = 1 ^ seat
	}

	return result
}

func aborted(config *match.Config) match.Result {
	return match.Result{
		Number:      config.Number,
		Players:     [2]string{config.Bots[0].Name, config.Bots[1].Name},
		Score:       match.Aborted,
		Termination: match.Crash,
		Offender:    1,
		Reason:      "test",
	}
}

// newTestTournament creates a tournament which plays its matches with the
// given function instead of real bots.
func newTestTournament(t *testing.T, config Config, spawn func(*match.Config) match.Result) (*Tournament, *atomic.Int32) {
	t.Helper()

	tour, err := NewTournament(config, nil)
	if err != nil {
		t.Fatal(err)
	}

	var spawned atomic.Int32
	tour.Output = io.Discard
	tour.spawn = func(config *match.Config) match.Result {
		spawned.Add(1)
		return spawn(config)
	}

	return tour, &spawned
}

func TestTournamentForfeitIsCounted(t *testing.T) {
	tour, _ := newTestTournament(t, Config{
		Players: players("A", "B"),
		Games:   2,
		Seed:    1,
	}, func(config *match.Config) match.Result {
		if config.Number == 1 {
			return win(config, 0, match.Normal)
		}

		// B answers with a malformed response.
		return win(config, 0, match.ProtocolViolation)
	})

	summary, err := tour.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if summary.Matches != 2 || summary.Total != 2 {
		t.Fatalf("expected 2/2 matches, got %d/%d", summary.Matches, summary.Total)
	}

	if summary.Wins != 1 || summary.Forfeits != 1 || summary.Aborts != 0 || summary.Draws != 0 {
		t.Errorf("unexpected outcome counts %+v", summary.Statistics)
	}

	a, b := summary.Players[0], summary.Players[1]
	if a.Wins != 1 || a.ForfeitWins != 1 || a.Losses != 0 {
		t.Errorf("unexpected record for A: %+v", a)
	}

	if b.Losses != 1 || b.ForfeitLosses != 1 || b.Wins != 0 {
		t.Errorf("unexpected record for B: %+v", b)
	}

	if summary.Terminations[match.ProtocolViolation] != 1 {
		t.Errorf("expected 1 protocol violation, got %v", summary.Terminations)
	}

	if summary.Halted {
		t.Error("tournament without halting reported as halted")
	}
}

func TestTournamentAborts(t *testing.T) {
	tour, _ := newTestTournament(t, Config{
		Players:     players("A", "B", "C"),
		Games:       4,
		Concurrency: 3,
		Seed:        7,
	}, func(config *match.Config) match.Result {
		switch config.Number % 4 {
		case 0:
			return aborted(config)
		case 1:
			return win(config, 1, match.Normal)
		case 2:
			return win(config, 0, match.Timeout)
		default:
			return match.Result{Number: config.Number, Score: match.Draw, Offender: -1}
		}
	})

	summary, err := tour.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if summary.Matches != 12 {
		t.Fatalf("expected 12 matches, got %d", summary.Matches)
	}

	if summary.Aborts != 3 {
		t.Errorf("expected 3 aborts, got %d", summary.Aborts)
	}

	if sum := summary.Wins + summary.Draws + summary.Forfeits + summary.Aborts; sum != summary.Matches {
		t.Errorf("outcomes sum to %d, expected %d", sum, summary.Matches)
	}

	for _, record := range summary.Players {
		wins, draws, losses := record.Scored()
		if total := wins + draws + losses + record.Aborts; total != 8 {
			t.Errorf("%s: expected 8 matches, got %d", record.Name, total)
		}
	}
}

func TestTournamentHaltsOnForfeit(t *testing.T) {
	tour, spawned := newTestTournament(t, Config{
		Players:           players("A", "B"),
		Games:             10,
		Seed:              1,
		StopOnIllegalMove: true,
	}, func(config *match.Config) match.Result {
		if config.Number == 1 {
			return win(config, 1, match.IllegalMove)
		}

		return win(config, 0, match.Normal)
	})

	summary, err := tour.Start(context.Background())
	if !errors.Is(err, ErrHalted) {
		t.Fatalf("expected ErrHalted, got %v", err)
	}

	if !summary.Halted {
		t.Error("expected the summary to be halted")
	}

	if summary.Matches != 1 || summary.Total != 10 {
		t.Errorf("expected 1/10 matches, got %d/%d", summary.Matches, summary.Total)
	}

	if n := spawned.Load(); n != 1 {
		t.Errorf("expected a single match to be started, got %d", n)
	}
}

func TestTournamentHaltOnLastMatch(t *testing.T) {
	tour, _ := newTestTournament(t, Config{
		Players:           players("A", "B"),
		Games:             3,
		Seed:              1,
		StopOnIllegalMove: true,
	}, func(config *match.Config) match.Result {
		if config.Number == 3 {
			return win(config, 1, match.IllegalMove)
		}

		return win(config, 0, match.Normal)
	})

	summary, err := tour.Start(context.Background())
	if err != nil {
		t.Fatalf("expected no error when every match was played, got %v", err)
	}

	if summary.Halted {
		t.Error("a completed tournament is not halted")
	}
}

func TestTournamentCancelled(t *testing.T) {
	tour, spawned := newTestTournament(t, Config{
		Players: players("A", "B"),
		Games:   4,
	}, func(config *match.Config) match.Result {
		return win(config, 0, match.Normal)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := tour.Start(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	if summary.Matches != 0 || spawned.Load() != 0 {
		t.Errorf("expected no matches, got %d played and %d started", summary.Matches, spawned.Load())
	}
}

func TestTournamentConcurrency(t *testing.T) {
	const limit = 3

	var running, peak atomic.Int32
	tour, _ := newTestTournament(t, Config{
		Players:     players("A", "B", "C", "D"),
		Games:       4,
		Concurrency: limit,
	}, func(config *match.Config) match.Result {
		n := running.Add(1)
		defer running.Add(-1)

		for {
			old := peak.Load()
			if n <= old || peak.CompareAndSwap(old, n) {
				break
			}
		}

		time.Sleep(5 * time.Millisecond)
		return win(config, config.Number%2, match.Normal)
	})

	summary, err := tour.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if summary.Matches != 24 {
		t.Errorf("expected 24 matches, got %d", summary.Matches)
	}

	if p := peak.Load(); p > limit {
		t.Errorf("expected at most %d concurrent matches, got %d", limit, p)
	}
}

func TestScheduleAlternate(t *testing.T) {
	tour, _ := newTestTournament(t, Config{
		Players:   players("A", "B"),
		Games:     3,
		Alternate: true,
		Seed:      42,
	}, nil)

	matches := tour.Schedule()
	if len(matches) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(matches))
	}

	first, second, third := matches[0], matches[1], matches[2]

	if first.Seed != second.Seed {
		t.Error("a pair should share its deal")
	}

	if second.Seed == third.Seed {
		t.Error("the next pair should have a new deal")
	}

	if first.Player1 != second.Player2 || first.Player2 != second.Player1 {
		t.Error("the seats of a pair should be swapped")
	}

	if first.Bots[0].Name != "A" || second.Bots[0].Name != "B" {
		t.Errorf("unexpected seating %s, %s", first.Bots[0].Name, second.Bots[0].Name)
	}

	if first.Pair < 0 || first.Pair != second.Pair {
		t.Errorf("expected the first two matches to be paired, got %d and %d", first.Pair, second.Pair)
	}

	if third.Pair != -1 {
		t.Errorf("expected an unpaired last match, got pair %d", third.Pair)
	}

	for i, m := range matches {
		if m.Number != i+1 {
			t.Errorf("expected match %d to be numbered %d", m.Number, i+1)
		}
	}

	// The same seed gives the same schedule.
	again, _ := newTestTournament(t, Config{
		Players:   players("A", "B"),
		Games:     3,
		Alternate: true,
		Seed:      42,
	}, nil)

	for i, m := range again.Schedule() {
		if m.Seed != matches[i].Seed {
			t.Errorf("match %d: expected seed %d, got %d", i+1, matches[i].Seed, m.Seed)
		}
	}
}

func TestTournamentPairs(t *testing.T) {
	tour, _ := newTestTournament(t, Config{
		Players:   players("A", "B"),
		Games:     4,
		Alternate: true,
		Seed:      3,
	}, func(config *match.Config) match.Result {
		// The first seat always wins, so every pair is split.
		return win(config, 0, match.Normal)
	})

	summary, err := tour.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	for _, record := range summary.Players {
		if record.Pairs != [5]int{0, 0, 2, 0, 0} {
			t.Errorf("%s: expected two split pairs, got %v", record.Name, record.Pairs)
		}

		if elo, _ := record.Elo(); math.Abs(elo) > 1e-6 {
			t.Errorf("%s: expected elo 0, got %f", record.Name, elo)
		}
	}
}

type recordingSink struct {
	match.Nop

	mu       sync.Mutex
	finished []match.Result
	reports  []Summary
}

func (sink *recordingSink) Finished(result match.Result) {
	sink.mu.Lock()
	defer sink.mu.Unlock()
	sink.finished = append(sink.finished, result)
}

func (sink *recordingSink) Report(summary Summary) {
	sink.mu.Lock()
	defer sink.mu.Unlock()
	sink.reports = append(sink.reports, summary)
}

func TestTournamentSinks(t *testing.T) {
	sink := &recordingSink{}

	tour, err := NewTournament(Config{
		Name:           "sinks",
		Players:        players("A", "B"),
		Games:          4,
		ReportInterval: 2,
	}, sink)
	if err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	tour.Output = &out
	tour.spawn = func(config *match.Config) match.Result {
		return win(config, 1, match.Normal)
	}

	if _, err := tour.Start(context.Background()); err != nil {
		t.Fatal(err)
	}

	if len(sink.finished) != 4 {
		t.Errorf("expected 4 finished matches, got %d", len(sink.finished))
	}

	// Two interval reports and the final one.
	if len(sink.reports) != 3 {
		t.Fatalf("expected 3 reports, got %d", len(sink.reports))
	}

	final := sink.reports[2]
	if final.Name != "sinks" || final.ID != tour.ID.String() || final.Matches != 4 {
		t.Errorf("unexpected final report %+v", final)
	}

	if !strings.Contains(out.String(), "4/4 matches") {
		t.Errorf("expected the table to show the progress, got:\n%s", out.String())
	}
}

func TestNewTournamentErrors(t *testing.T) {
	tests := []struct {
		name   string
		config Config
	}{
		{"single player", Config{Players: players("A")}},
		{"unknown rules", Config{Players: players("A", "B"), Rules: "chess"}},
		{"unknown scheduler", Config{Players: players("A", "B"), Scheduler: "swiss"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewTournament(tt.config, nil); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestNewTournamentDefaults(t *testing.T) {
	tour, err := NewTournament(Config{Players: players("A", "B")}, nil)
	if err != nil {
		t.Fatal(err)
	}

	config := tour.Config
	if config.Concurrency != 1 || config.Rounds != 1 || config.Games != 1 {
		t.Errorf("unexpected defaults %+v", config)
	}

	if config.Seed == 0 {
		t.Error("expected a random seed to be chosen")
	}
}

func TestReport(t *testing.T) {
	tour, _ := newTestTournament(t, Config{
		Players:   players("alpha", "a-very-long-bot-name"),
		Scheduler: "gauntlet",
	}, nil)

	var out bytes.Buffer
	tour.Output = &out

	summary := Summary{
		Total:  10,
		Halted: true,
		Statistics: Statistics{
			Matches:      3,
			Wins:         2,
			Forfeits:     1,
			Terminations: map[match.Termination]int{match.Normal: 2, match.Timeout: 1},
			Players: []Record{
				{Name: "alpha", Wins: 2, ForfeitWins: 1},
				{Name: "a-very-long-bot-name", Losses: 2, ForfeitLosses: 1},
			},
		},
	}

	tour.Report(summary)

	table := out.String()
	for _, expected := range []string{"alpha", "a-very-long-bot", "3/10 matches, halted", "normal 2, timeout 1"} {
		if !strings.Contains(table, expected) {
			t.Errorf("expected %q in the table:\n%s", expected, table)
		}
	}

	if strings.Contains(table, "a-very-long-bot-name") {
		t.Error("expected long names to be truncated")
	}
}

func writeDealBook(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "deals.txt")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	return path
}

func TestDealBookInOrder(t *testing.T) {
	book := writeDealBook(t, "# fixed deals\n11\n\n22\r\n33\n")

	tour, _ := newTestTournament(t, Config{
		Players:   players("A", "B"),
		Games:     8,
		Alternate: true,
		Deals:     book,
	}, nil)

	// Every pair replays one deal, and the book starts over after three.
	expected := []int64{11, 11, 22, 22, 33, 33, 11, 11}
	for i, m := range tour.Schedule() {
		if m.Seed != expected[i] {
			t.Errorf("match %d: expected deal %d, got %d", i+1, expected[i], m.Seed)
		}
	}

	// Scheduling again gives the same deals.
	if again := tour.Schedule(); again[2].Seed != 22 {
		t.Errorf("expected the book to start over, got %d", again[2].Seed)
	}
}

func TestDealBookRandom(t *testing.T) {
	book := writeDealBook(t, "1\n2\n3\n")

	tour, _ := newTestTournament(t, Config{
		Players:   players("A", "B"),
		Games:     20,
		Seed:      5,
		Deals:     book,
		DealOrder: "random",
	}, nil)

	for _, m := range tour.Schedule() {
		if m.Seed < 1 || m.Seed > 3 {
			t.Errorf("match %d: deal %d is not in the book", m.Number, m.Seed)
		}
	}
}

func TestDealBookErrors(t *testing.T) {
	tests := []struct{ name, content string }{
		{"empty", "# nothing\n\n"},
		{"not a seed", "12\ntwelve\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTournament(Config{
				Players: players("A", "B"),
				Deals:   writeDealBook(t, tt.content),
			}, nil)

			if err == nil {
				t.Error("expected an error")
			}
		})
	}

	if _, err := NewDealBook(filepath.Join(t.TempDir(), "missing"), ""); err == nil {
		t.Error("expected an error for a missing book")
	}

	for _, order := range []string{"", "sequential", "random"} {
		if _, err := NewDealBook(writeDealBook(t, "1\n"), order); err != nil {
			t.Errorf("deal order %q: %v", order, err)
		}
	}

	_, err := NewTournament(Config{
		Players:   players("A", "B"),
		Deals:     writeDealBook(t, "1\n2\n"),
		DealOrder: "shuffled",
	}, nil)
	if err == nil {
		t.Error("expected an error for an unknown deal order")
	}
}

// overlapSink records whether two reports were ever handled at once.
type overlapSink struct {
	match.Nop

	busy    atomic.Bool
	overlap atomic.Bool

	mu      sync.Mutex
	matches []int
}

func (sink *overlapSink) Report(summary Summary) {
	if !sink.busy.CompareAndSwap(false, true) {
		sink.overlap.Store(true)
		return
	}
	defer sink.busy.Store(false)

	time.Sleep(time.Millisecond)

	sink.mu.Lock()
	sink.matches = append(sink.matches, summary.Matches)
	sink.mu.Unlock()
}

func TestTournamentReportsInOrder(t *testing.T) {
	sink := &overlapSink{}

	tour, err := NewTournament(Config{
		Players:        players("A", "B", "C"),
		Games:          8,
		Concurrency:    6,
		ReportInterval: 1,
	}, sink)
	if err != nil {
		t.Fatal(err)
	}

	tour.Output = io.Discard
	tour.spawn = func(config *match.Config) match.Result {
		return win(config, config.Number%2, match.Normal)
	}

	if _, err := tour.Start(context.Background()); err != nil {
		t.Fatal(err)
	}

	if sink.overlap.Load() {
		t.Error("expected reports to never overlap")
	}

	// One report per match and the final one.
	if len(sink.matches) != 25 {
		t.Fatalf("expected 25 reports, got %d", len(sink.matches))
	}

	for i := 1; i < len(sink.matches); i++ {
		if sink.matches[i] < sink.matches[i-1] {
			t.Fatalf("report %d went back from %d to %d matches", i+1, sink.matches[i-1], sink.matches[i])
		}
	}

	if last := sink.matches[len(sink.matches)-1]; last != 24 {
		t.Errorf("expected the final report to count 24 matches, got %d", last)
	}
}
