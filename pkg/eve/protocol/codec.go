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

package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// HandSize is the number of cards in a player's hand in every request.
const HandSize = 5

// ErrMalformedMessage matches every *MalformedMessageError with errors.Is.
var ErrMalformedMessage = errors.New("protocol: malformed message")

// MalformedMessageError is returned when a line can't be decoded into a
// message of the expected shape.
type MalformedMessageError struct {
	Line string
	Err  error
}

func (err *MalformedMessageError) Error() string {
	return fmt.Sprintf("protocol: malformed message %q: %v", err.Line, err.Err)
}

func (err *MalformedMessageError) Unwrap() error {
	return err.Err
}

func (err *MalformedMessageError) Is(target error) bool {
	return target == ErrMalformedMessage
}

func malformed(line string, format string, a ...any) error {
	return &MalformedMessageError{Line: line, Err: fmt.Errorf(format, a...)}
}

type requestJSON struct {
	Type *RequestType `json:"type"`

	// NewGame
	Color *Color `json:"color,omitempty"`

	// PlayFirstTurn and PlayTurn
	Cards              *[]Card  `json:"cards,omitempty"`
	Fields             *[]Field `json:"fields,omitempty"`
	CardsWonByOpponent *[]Card  `json:"cards_won_by_opponent,omitempty"`

	// GameOver
	Result        *GameResult `json:"result,omitempty"`
	Score         *int        `json:"score,omitempty"`
	OpponentScore *int        `json:"opponent_score,omitempty"`
}

// Encode encodes the request into a single compact line, without the
// trailing line terminator.
func Encode(request Request) (string, error) {
	kind := request.Type()
	raw := requestJSON{Type: &kind}

	switch request := request.(type) {
	case NewGame:
		raw.Color = &request.Color
	case PlayFirstTurn:
		raw.Cards = nonNil(request.Cards)
	case PlayTurn:
		raw.Cards = nonNil(request.Cards)
		raw.Fields = nonNil(request.Fields)
		raw.CardsWonByOpponent = nonNil(request.CardsWonByOpponent)
	case GameOver:
		raw.Result = &request.Result
		raw.Score = &request.Score
		raw.OpponentScore = &request.OpponentScore
	case Bye:
	default:
		return "", fmt.Errorf("protocol: can't encode request %T", request)
	}

	return marshal(raw)
}

// DecodeRequest decodes a line into a Request. Every failure is a
// *MalformedMessageError carrying the offending line.
func DecodeRequest(line string) (Request, error) {
	if err := checkLine(line); err != nil {
		return nil, err
	}

	var raw requestJSON
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return nil, &MalformedMessageError{Line: line, Err: err}
	}

	if raw.Type == nil {
		return nil, malformed(line, "missing request type")
	}

	switch *raw.Type {
	case TypeNewGame:
		if raw.Color == nil {
			return nil, malformed(line, "missing color")
		}

		if *raw.Color != Black && *raw.Color != Red {
			return nil, malformed(line, "invalid color %q", *raw.Color)
		}

		return NewGame{Color: *raw.Color}, nil

	case TypePlayFirstTurn:
		if err := checkHand(line, raw.Cards); err != nil {
			return nil, err
		}

		return PlayFirstTurn{Cards: *raw.Cards}, nil

	case TypePlayTurn:
		if err := checkHand(line, raw.Cards); err != nil {
			return nil, err
		}

		if raw.Fields == nil || raw.CardsWonByOpponent == nil {
			return nil, malformed(line, "missing fields or cards won by opponent")
		}

		return PlayTurn{
			Cards:              *raw.Cards,
			Fields:             *raw.Fields,
			CardsWonByOpponent: *raw.CardsWonByOpponent,
		}, nil

	case TypeGameOver:
		if raw.Result == nil || raw.Score == nil || raw.OpponentScore == nil {
			return nil, malformed(line, "missing game over fields")
		}

		switch *raw.Result {
		case GameWon, GameLost, GameDraw:
		default:
			return nil, malformed(line, "invalid game result %q", *raw.Result)
		}

		return GameOver{
			Result:        *raw.Result,
			Score:         *raw.Score,
			OpponentScore: *raw.OpponentScore,
		}, nil

	case TypeBye:
		return Bye{}, nil

	default:
		return nil, malformed(line, "unknown request type %q", *raw.Type)
	}
}

// EncodeResponse encodes the response into a single compact line, without
// the trailing line terminator.
func EncodeResponse(response Response) (string, error) {
	switch response := response.(type) {
	case Okay:
		return marshal([]struct{}{})
	case FirstTurn:
		return marshal(response.Card)
	case Turn:
		return marshal(nonNil(response.Cards))
	default:
		return "", fmt.Errorf("protocol: can't encode response %T", response)
	}
}

// DecodeResponse decodes a line into a Response of the given kind. Every
// failure is a *MalformedMessageError carrying the offending line.
func DecodeResponse(kind ResponseKind, line string) (Response, error) {
	if err := checkLine(line); err != nil {
		return nil, err
	}

	switch kind {
	case KindOkay:
		var raw *[]json.RawMessage
		if err := json.Unmarshal([]byte(line), &raw); err != nil {
			return nil, &MalformedMessageError{Line: line, Err: err}
		}

		if raw == nil || len(*raw) != 0 {
			return nil, malformed(line, "expected an empty acknowledgement")
		}

		return Okay{}, nil

	case KindCard:
		var card *Card
		if err := json.Unmarshal([]byte(line), &card); err != nil {
			return nil, &MalformedMessageError{Line: line, Err: err}
		}

		if card == nil {
			return nil, malformed(line, "expected a card")
		}

		return FirstTurn{Card: *card}, nil

	case KindTurn:
		var cards *[]CardToPlace
		if err := json.Unmarshal([]byte(line), &cards); err != nil {
			return nil, &MalformedMessageError{Line: line, Err: err}
		}

		if cards == nil {
			return nil, malformed(line, "expected a list of cards to place")
		}

		return Turn{Cards: *cards}, nil

	default:
		return nil, malformed(line, "no response of kind %s expected", kind)
	}
}

func checkLine(line string) error {
	if strings.ContainsAny(line, "\r\n") {
		return malformed(line, "message spans multiple lines")
	}

	if strings.TrimSpace(line) == "" {
		return malformed(line, "empty message")
	}

	return nil
}

func checkHand(line string, cards *[]Card) error {
	if cards == nil {
		return malformed(line, "missing cards")
	}

	if len(*cards) != HandSize {
		return malformed(line, "expected %d cards, got %d", HandSize, len(*cards))
	}

	return nil
}

func marshal(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}

	return string(data), nil
}

func nonNil[T any](s []T) *[]T {
	if s == nil {
		s = []T{}
	}

	return &s
}
