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

package match

import (
	"errors"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"

	"gomori.dev/x/judge/pkg/eve/match/games"
	"gomori.dev/x/judge/pkg/eve/protocol"
)

// Config describes a single match.
type Config struct {
	Number int

	Bots  [2]BotConfig
	Rules games.Rules // gomori if nil

	// Seed determines the deal. Matches with equal seeds and rules are
	// dealt equally.
	Seed int64

	// Timeout is the time a bot has to answer a single request.
	Timeout time.Duration

	// NotifyGameOver sends a game over notice to both bots once a match
	// has been scored.
	NotifyGameOver bool

	Sink Sink
}

// Player is one side of a match, as seen by the judge. Bot is the only
// implementation outside of tests.
type Player interface {
	Name() string
	Send(request protocol.Request) (string, error)
	Receive(timeout time.Duration) (string, error)
	Terminate() error
}

// Run starts both bots, plays a match between them, and terminates them
// no matter how the match ended.
func Run(config *Config) Result {
	var players [2]Player
	names := [2]string{config.Bots[0].Name, config.Bots[1].Name}

	for seat := range config.Bots {
		bot, err := StartBot(config.Bots[seat])
		if err != nil {
			sink(config).Trace(Event{
				Match:  config.Number,
				Player: names[seat],
				Tag:    TagCrash,
				Detail: err.Error(),
			})

			return abort(config.Number, names, seat, err.Error())
		}

		defer bot.Terminate()
		players[seat] = bot
	}

	return Play(config, players)
}

// Play drives a match between two running players until it reaches a
// terminal state. It neither starts nor terminates the players.
func Play(config *Config, players [2]Player) Result {
	game := game{
		config:  config,
		players: players,
		names:   [2]string{players[0].Name(), players[1].Name()},
		sink:    sink(config),
	}

	rules := config.Rules
	if rules == nil {
		rules = games.GetRules("")
	}

	state := rules.Setup(rand.New(rand.NewSource(config.Seed)))

	for seat := range players {
		if _, result, ok := game.exchange(seat, rules.Introduce(state, seat)); !ok {
			return result
		}
	}

	for {
		if outcome, ended := rules.Terminal(state); ended {
			return game.finish(outcome)
		}

		seat := state.ToMove()

		move, result, ok := game.exchange(seat, rules.Request(state))
		if !ok {
			return result
		}

		next, err := rules.Validate(state, move)
		if err != nil {
			game.trace(seat, TagIllegal, "", err.Error())
			return game.forfeit(seat, IllegalMove, err.Error())
		}

		state = next
	}
}

func sink(config *Config) Sink {
	if config.Sink == nil {
		return Nop{}
	}

	return config.Sink
}

type game struct {
	config  *Config
	players [2]Player
	names   [2]string
	sink    Sink
}

func (game *game) trace(seat int, tag Tag, line, detail string) {
	game.sink.Trace(Event{
		Match:  game.config.Number,
		Player: game.names[seat],
		Tag:    tag,
		Line:   line,
		Detail: detail,
	})
}

// exchange sends a request to the given seat and decodes its response. If
// the exchange fails, the returned Result is the match's terminal result.
func (game *game) exchange(seat int, request protocol.Request) (protocol.Response, Result, bool) {
	player := game.players[seat]

	line, err := player.Send(request)
	if err != nil {
		game.trace(seat, TagCrash, line, err.Error())
		return nil, abort(game.config.Number, game.names, seat, err.Error()), false
	}

	game.trace(seat, TagSent, line, "")

	kind := request.Expects()
	if kind == protocol.NoResponse {
		return nil, Result{}, true
	}

	reply, err := player.Receive(game.config.Timeout)
	switch {
	case errors.Is(err, ErrTimeout):
		game.trace(seat, TagTimeout, "", err.Error())
		return nil, game.forfeit(seat, Timeout, err.Error()), false

	case err != nil:
		game.trace(seat, TagCrash, "", err.Error())
		return nil, abort(game.config.Number, game.names, seat, err.Error()), false
	}

	game.trace(seat, TagReceived, reply, "")

	response, err := protocol.DecodeResponse(kind, reply)
	if err != nil {
		game.trace(seat, TagIllegal, reply, err.Error())
		return nil, game.forfeit(seat, ProtocolViolation, err.Error()), false
	}

	return response, Result{}, true
}

func (game *game) forfeit(seat int, termination Termination, reason string) Result {
	result := forfeit(game.config.Number, game.names, seat, termination, reason)
	game.notify(result)
	return result
}

func (game *game) finish(outcome games.Outcome) Result {
	result := Result{
		Number:      game.config.Number,
		Players:     game.names,
		Score:       Draw,
		Termination: Normal,
		Offender:    -1,
		Points:      outcome.Scores,
		Reason:      outcome.Reason,
	}

	if outcome.Winner != games.NoWinner {
		result.Score = GameLostBy[1^outcome.Winner]
	}

	game.notify(result)
	return result
}

// notify sends the game over notice to both seats. The match is already
// scored, so failures are only logged.
func (game *game) notify(result Result) {
	if !game.config.NotifyGameOver {
		return
	}

	for seat := range game.players {
		notice := protocol.GameOver{
			Result:        protocol.GameDraw,
			Score:         result.Points[seat],
			OpponentScore: result.Points[1^seat],
		}

		switch result.Winner() {
		case seat:
			notice.Result = protocol.GameWon
		case 1 ^ seat:
			notice.Result = protocol.GameLost
		}

		if _, _, ok := game.exchange(seat, notice); !ok {
			logrus.Debugf("game #%d: could not notify %s of the result", game.config.Number, game.names[seat])
		}
	}
}
