// Copyright © 2024 Rak Laptudirm <rak@laptudirm.com>
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

package games

import (
	"math/rand"

	"gomori.dev/x/judge/pkg/eve/protocol"
)

// GetRules returns the rules engine registered under the given name, or
// nil if there is no such engine.
func GetRules(name string) Rules {
	switch name {
	case "gomori", "":
		return &Gomori{}
	default:
		return nil
	}
}

// Names lists the names of all the registered rules engines.
func Names() []string {
	return []string{"gomori"}
}

// Rules is the authority on move legality, state transitions, and the end
// of a game. The judge never inspects a State itself, it only passes states
// back into the Rules that created them.
type Rules interface {
	// Setup deals a new game. Equal random sources produce equal games.
	Setup(rng *rand.Rand) State

	// Introduce returns the notice sent to the given seat before the game
	// starts, which the bot must acknowledge.
	Introduce(state State, seat int) protocol.Request

	// Request returns the player visible request for the seat to move. It
	// hides any information private to the other seat.
	Request(state State) protocol.Request

	// Validate checks the move of the seat to move and returns the state
	// after it has been played. The given state is never modified. Any
	// returned error describes why the move is illegal.
	Validate(state State, move protocol.Response) (State, error)

	// Terminal reports the outcome of the game if it has ended.
	Terminal(state State) (Outcome, bool)
}

// State is an opaque game state owned by a Rules engine.
type State interface {
	// ToMove returns the seat whose turn it is.
	ToMove() int
}

// NoWinner is the Winner of a drawn game.
const NoWinner = -1

// Outcome is the result of a finished game as declared by the Rules.
type Outcome struct {
	Winner int // seat of the winner or NoWinner
	Scores [2]int
	Reason string
}
