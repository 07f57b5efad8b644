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

// Package protocol implements the line oriented JSON protocol spoken between
// the judge and the bots. The judge always sends a Request and, unless the
// request is a notification, reads back exactly one Response line.
package protocol

// RequestType is the value of the "type" tag of a request.
type RequestType string

const (
	TypeNewGame       RequestType = "NewGame"
	TypePlayFirstTurn RequestType = "PlayFirstTurn"
	TypePlayTurn      RequestType = "PlayTurn"
	TypeGameOver      RequestType = "GameOver"
	TypeBye           RequestType = "Bye"
)

// ResponseKind identifies the shape of the response a request expects.
type ResponseKind int

const (
	// NoResponse marks notifications; the bot must not reply to them.
	NoResponse ResponseKind = iota
	KindOkay
	KindCard
	KindTurn
)

func (kind ResponseKind) String() string {
	switch kind {
	case NoResponse:
		return "none"
	case KindOkay:
		return "okay"
	case KindCard:
		return "card"
	case KindTurn:
		return "turn"
	default:
		return "unknown"
	}
}

// Request is a message sent from the judge to a bot. The set of
// implementations is closed: NewGame, PlayFirstTurn, PlayTurn, GameOver
// and Bye.
type Request interface {
	Type() RequestType
	Expects() ResponseKind

	isRequest()
}

// NewGame asks a bot to reset its state for a new game.
type NewGame struct {
	Color Color
}

// PlayFirstTurn asks the starting bot for the single card that opens the board.
type PlayFirstTurn struct {
	Cards []Card
}

// PlayTurn asks a bot for its move, carrying the player visible game state.
type PlayTurn struct {
	Cards              []Card
	Fields             []Field
	CardsWonByOpponent []Card
}

// GameResult is the outcome of a game from the receiving bot's perspective.
type GameResult string

const (
	GameWon  GameResult = "win"
	GameLost GameResult = "loss"
	GameDraw GameResult = "draw"
)

// GameOver informs a bot about the final outcome of a game.
type GameOver struct {
	Result        GameResult
	Score         int
	OpponentScore int
}

// Bye tells a bot to shut down.
type Bye struct{}

func (NewGame) Type() RequestType       { return TypeNewGame }
func (PlayFirstTurn) Type() RequestType { return TypePlayFirstTurn }
func (PlayTurn) Type() RequestType      { return TypePlayTurn }
func (GameOver) Type() RequestType      { return TypeGameOver }
func (Bye) Type() RequestType           { return TypeBye }

func (NewGame) Expects() ResponseKind       { return KindOkay }
func (PlayFirstTurn) Expects() ResponseKind { return KindCard }
func (PlayTurn) Expects() ResponseKind      { return KindTurn }
func (GameOver) Expects() ResponseKind      { return NoResponse }
func (Bye) Expects() ResponseKind           { return NoResponse }

func (NewGame) isRequest()       {}
func (PlayFirstTurn) isRequest() {}
func (PlayTurn) isRequest()      {}
func (GameOver) isRequest()      {}
func (Bye) isRequest()           {}

// Response is a message sent from a bot to the judge. Responses carry no
// tag on the wire; their kind is implied by the request they answer.
type Response interface {
	Kind() ResponseKind

	isResponse()
}

// Okay acknowledges a request without carrying any data.
type Okay struct{}

// FirstTurn is the card chosen in response to PlayFirstTurn.
type FirstTurn struct {
	Card Card
}

// Turn is the ordered list of cards chosen in response to PlayTurn. An
// empty list skips the turn.
type Turn struct {
	Cards []CardToPlace
}

func (Okay) Kind() ResponseKind      { return KindOkay }
func (FirstTurn) Kind() ResponseKind { return KindCard }
func (Turn) Kind() ResponseKind      { return KindTurn }

func (Okay) isResponse()      {}
func (FirstTurn) isResponse() {}
func (Turn) isResponse()      {}
