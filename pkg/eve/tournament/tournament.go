// Copyright © 2023 Rak Laptudirm <rak@laptudirm.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package tournament

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/pool"

	"gomori.dev/x/judge/pkg/eve/match"
	"gomori.dev/x/judge/pkg/eve/match/games"
	"gomori.dev/x/judge/pkg/eve/tournament/schedule"
)

// ErrHalted is returned by Start when the tournament was stopped early
// because of a forfeit.
var ErrHalted = errors.New("tournament: halted after a forfeit")

type Config struct {
	// Name of the tournament, used to name its snapshot.
	Name string `yaml:"name" mapstructure:"name"`

	// The bots participating in the tournament.
	Players []match.BotConfig `yaml:"players" mapstructure:"players"`

	// The rules which will be played.
	Rules string `yaml:"rules" mapstructure:"rules"`

	// Number of matches that will be played concurrently.
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`

	Scheduler string `yaml:"scheduler" mapstructure:"scheduler"`

	// 1 Tournament = {ROUNDS} Rounds
	// 1 Round      = {SOME_N} Encounters
	// 1 Encounter  = {GAMES}  Matches
	Rounds int `yaml:"rounds" mapstructure:"rounds"`
	Games  int `yaml:"games" mapstructure:"games"`

	// Alternate swaps the seats after every match and deals the same cards
	// twice in a row, so that every deal is played from both sides.
	Alternate bool `yaml:"alternate" mapstructure:"alternate"`

	// Seed of the first deal. A zero seed is replaced by a random one.
	Seed int64 `yaml:"seed" mapstructure:"seed"`

	// Deals names a deal book to take the deals from, played in order or
	// picked at random depending on DealOrder.
	Deals     string `yaml:"deals" mapstructure:"deals"`
	DealOrder string `yaml:"deal-order" mapstructure:"deal-order"`

	// Time a bot has to answer a single request.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// Stop scheduling matches after the first forfeit.
	StopOnIllegalMove bool `yaml:"stop-on-illegal-move" mapstructure:"stop-on-illegal-move"`

	NotifyGameOver bool `yaml:"notify-game-over" mapstructure:"notify-game-over"`

	// Print the report table every this many results.
	ReportInterval int `yaml:"report-interval" mapstructure:"report-interval"`
}

// Reporter is implemented by sinks which want the running statistics.
type Reporter interface {
	Report(summary Summary)
}

// ResultSink is implemented by sinks which want every finished match.
type ResultSink interface {
	Finished(result match.Result)
}

// Summary is a snapshot of a tournament's progress.
type Summary struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
	Seed int64  `yaml:"seed" json:"seed"`

	// Total is the number of scheduled matches.
	Total int `yaml:"total" json:"total"`

	// Halted is set when the tournament stopped early.
	Halted bool `yaml:"halted" json:"halted"`

	Statistics `yaml:",inline" json:"statistics"`
}

func NewTournament(config Config, sink match.Sink) (*Tournament, error) {
	if len(config.Players) < 2 {
		return nil, fmt.Errorf("new tour: need at least 2 players, got %d", len(config.Players))
	}

	rules := games.GetRules(config.Rules)
	if rules == nil {
		return nil, fmt.Errorf("new tour: unknown rules %s", config.Rules)
	}

	scheduler, err := schedule.New(config.Scheduler)
	if err != nil {
		return nil, err
	}

	var book *DealBook
	if config.Deals != "" {
		book, err = NewDealBook(config.Deals, config.DealOrder)
		if err != nil {
			return nil, fmt.Errorf("new tour: %w", err)
		}
	}

	if sink == nil {
		sink = match.Nop{}
	}

	config.Concurrency = max(config.Concurrency, 1)
	config.Rounds = max(config.Rounds, 1)
	config.Games = max(config.Games, 1)

	if config.Seed == 0 {
		config.Seed = time.Now().UnixNano()
	}

	tour := Tournament{
		Config:    config,
		ID:        uuid.New(),
		Scheduler: scheduler,
		Sink:      sink,
		Output:    os.Stdout,

		rules:      rules,
		book:       book,
		spawn:      match.Run,
		statistics: newStatistics(config.Players),
		pending:    make(map[int]match.Result),
	}

	return &tour, nil
}

type Tournament struct {
	Config Config
	ID     uuid.UUID

	Scheduler schedule.Scheduler
	Sink      match.Sink

	// Output receives the report tables.
	Output io.Writer

	rules games.Rules
	book  *DealBook

	// spawn plays a single match, including starting and terminating its
	// bots.
	spawn func(*match.Config) match.Result

	halted atomic.Bool

	// reporting serializes reports, so tables don't interleave and sinks
	// see summaries in order.
	reporting sync.Mutex

	mu         sync.Mutex
	statistics Statistics
	total      int
	pending    map[int]match.Result // first matches of unfinished pairs
}

// Match is a scheduled match of the tournament.
type Match struct {
	match.Config

	Round int

	// Pair identifies the two matches of an alternated deal, or is -1.
	Pair int

	Player1, Player2 int
}

// Schedule lists every match of the tournament in the order it will be
// started.
func (tour *Tournament) Schedule() []*Match {
	rng := rand.New(rand.NewSource(tour.Config.Seed))

	deal := rng.Int63
	if tour.book != nil {
		deal = tour.book.Dealer(rng)
	}

	var matches []*Match
	number, pair := 0, 0

	for round := 0; round < tour.Config.Rounds; round++ {
		tour.Scheduler.Initialize(len(tour.Config.Players))

		for encounter := 0; encounter < tour.Scheduler.TotalEncounters(); encounter++ {
			p1, p2 := tour.Scheduler.NextEncounter()

			var seed int64
			for game := 0; game < tour.Config.Games; game++ {
				number++

				m := &Match{
					Config: match.Config{
						Number:         number,
						Bots:           [2]match.BotConfig{tour.Config.Players[p1], tour.Config.Players[p2]},
						Rules:          tour.rules,
						Timeout:        tour.Config.Timeout,
						NotifyGameOver: tour.Config.NotifyGameOver,
						Sink:           tour.Sink,
					},

					Round:   round + 1,
					Pair:    -1,
					Player1: p1,
					Player2: p2,
				}

				if !tour.Config.Alternate {
					m.Seed = deal()
					matches = append(matches, m)
					continue
				}

				// The second match of a pair replays the first one's deal
				// with the seats swapped.
				if game%2 == 0 {
					seed = deal()
					pair++
				}

				m.Seed = seed
				if game%2 == 1 || game+1 < tour.Config.Games {
					m.Pair = pair
				}

				matches = append(matches, m)

				// Switch seats.
				p1, p2 = p2, p1
			}
		}
	}

	return matches
}

// Start runs the tournament until every match has been played, the
// context is cancelled, or a forfeit halts it. The returned summary is
// always valid.
func (tour *Tournament) Start(ctx context.Context) (Summary, error) {
	matches := tour.Schedule()

	tour.mu.Lock()
	tour.total = len(matches)
	tour.mu.Unlock()

	logrus.Infof("Starting tournament %s (%s): %d matches, seed %d",
		tour.Config.Name, tour.ID, len(matches), tour.Config.Seed)

	workers := pool.New().WithMaxGoroutines(tour.Config.Concurrency)
	for _, game := range matches {
		if tour.halted.Load() || ctx.Err() != nil {
			break
		}

		game := game
		workers.Go(func() {
			tour.RunGame(ctx, game)
		})
	}

	workers.Wait()

	summary := tour.report()

	switch {
	case summary.Halted:
		return summary, ErrHalted
	case ctx.Err() != nil:
		return summary, ctx.Err()
	}

	return summary, nil
}

// RunGame plays a single match and records its result, unless the
// tournament has been halted or cancelled in the meantime.
func (tour *Tournament) RunGame(ctx context.Context, game *Match) {
	if tour.halted.Load() || ctx.Err() != nil {
		return
	}

	logrus.Infof(
		"\x1b[33mStarting\x1b[0m Round #%d Game #%d: %s vs %s\n",
		game.Round,
		game.Number,
		game.Bots[0].Name,
		game.Bots[1].Name,
	)

	result := tour.spawn(&game.Config)

	switch {
	case result.Score == match.Aborted:
		logrus.Errorf("\x1b[31mAborted\x1b[0m Round #%d Game #%d: %s\n", game.Round, game.Number, result)
	case result.Termination.Forfeit():
		logrus.Warnf("\x1b[33mForfeit\x1b[0m Round #%d Game #%d: %s\n", game.Round, game.Number, result)
	default:
		logrus.Infof("\x1b[32mFinished\x1b[0m Round #%d Game #%d: %s\n", game.Round, game.Number, result)
	}

	if sink, ok := tour.Sink.(ResultSink); ok {
		sink.Finished(result)
	}

	tour.record(game, result)
}

func (tour *Tournament) record(game *Match, result match.Result) {
	if tour.Config.StopOnIllegalMove && result.Termination.Forfeit() {
		tour.halted.Store(true)
		logrus.Warnf("Halting the tournament after the %s in game #%d", result.Termination, game.Number)
	}

	tour.mu.Lock()

	tour.statistics.add(game.Player1, game.Player2, result)

	if game.Pair >= 0 {
		if other, found := tour.pending[game.Pair]; found {
			// The other match of the pair has the seats swapped.
			delete(tour.pending, game.Pair)
			tour.statistics.addPair(game.Player1, game.Player2, result, other)
		} else {
			tour.pending[game.Pair] = result
		}
	}

	count := tour.statistics.Matches
	tour.mu.Unlock()

	if interval := tour.Config.ReportInterval; interval > 0 && count%interval == 0 {
		tour.report()
	}
}

// report takes a summary and hands it to the table and the sink. The
// summary is taken while reporting is locked, so successive reports never
// go backwards.
func (tour *Tournament) report() Summary {
	tour.reporting.Lock()
	defer tour.reporting.Unlock()

	summary := tour.Summary()
	tour.Report(summary)
	if reporter, ok := tour.Sink.(Reporter); ok {
		reporter.Report(summary)
	}

	return summary
}

// Summary returns a snapshot of the tournament's statistics.
func (tour *Tournament) Summary() Summary {
	tour.mu.Lock()
	defer tour.mu.Unlock()

	return Summary{
		ID:         tour.ID.String(),
		Name:       tour.Config.Name,
		Seed:       tour.Config.Seed,
		Total:      tour.total,
		Halted:     tour.halted.Load() && tour.statistics.Matches < tour.total,
		Statistics: tour.statistics.clone(),
	}
}
