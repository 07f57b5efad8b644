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
	"fmt"
	"strings"
)

// Suit represents the suit of a Card.
type Suit uint8

const (
	Diamond Suit = iota
	Heart
	Spade
	Club

	SuitN = 4
)

var suitSymbols = [SuitN]string{
	Diamond: "♦",
	Heart:   "♥",
	Spade:   "♠",
	Club:    "♣",
}

func (suit Suit) String() string {
	if suit >= SuitN {
		return "?"
	}

	return suitSymbols[suit]
}

// Rank represents the rank of a Card.
type Rank uint8

const (
	Two Rank = iota
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace

	RankN = 13
)

var rankNames = [RankN]string{
	"2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K", "A",
}

func (rank Rank) String() string {
	if rank >= RankN {
		return "?"
	}

	return rankNames[rank]
}

// Card is a playing card from a standard 52-card deck. The judge only ever
// compares cards for equality and passes them through to the rules engine.
type Card struct {
	Suit Suit
	Rank Rank
}

// Less orders cards by suit first and rank second.
func (card Card) Less(other Card) bool {
	if card.Suit != other.Suit {
		return card.Suit < other.Suit
	}

	return card.Rank < other.Rank
}

// String returns the two character code of the card, with T for ten.
func (card Card) String() string {
	rank := card.Rank.String()
	if card.Rank == Ten {
		rank = "T"
	}

	return rank + card.Suit.String()
}

// ParseCard parses the two character code of a card, like "T♥" or "A♠".
func ParseCard(code string) (Card, error) {
	runes := []rune(code)
	if len(runes) != 2 {
		return Card{}, fmt.Errorf("parse card: %q is not two characters long", code)
	}

	rank, ok := parseRank(string(runes[0]))
	if !ok && runes[0] == 'T' {
		rank, ok = Ten, true
	}

	if !ok {
		return Card{}, fmt.Errorf("parse card: invalid rank in %q", code)
	}

	suit, ok := parseSuit(string(runes[1]))
	if !ok {
		return Card{}, fmt.Errorf("parse card: invalid suit in %q", code)
	}

	return Card{Suit: suit, Rank: rank}, nil
}

// MustParseCards parses a space separated list of card codes and panics
// if any of them is invalid.
func MustParseCards(codes string) []Card {
	fields := strings.Fields(codes)
	cards := make([]Card, len(fields))
	for i, code := range fields {
		card, err := ParseCard(code)
		if err != nil {
			panic(err)
		}

		cards[i] = card
	}

	return cards
}

func parseSuit(symbol string) (Suit, bool) {
	for suit, s := range suitSymbols {
		if s == symbol {
			return Suit(suit), true
		}
	}

	return 0, false
}

func parseRank(name string) (Rank, bool) {
	for rank, r := range rankNames {
		if r == name {
			return Rank(rank), true
		}
	}

	return 0, false
}

type cardJSON struct {
	Suit *string `json:"suit"`
	Rank *string `json:"rank"`
}

func (card Card) MarshalJSON() ([]byte, error) {
	if card.Suit >= SuitN || card.Rank >= RankN {
		return nil, fmt.Errorf("marshal card: invalid card %d/%d", card.Suit, card.Rank)
	}

	suit, rank := card.Suit.String(), card.Rank.String()
	return json.Marshal(cardJSON{Suit: &suit, Rank: &rank})
}

func (card *Card) UnmarshalJSON(data []byte) error {
	var raw cardJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if raw.Suit == nil || raw.Rank == nil {
		return fmt.Errorf("card %s: missing suit or rank", data)
	}

	suit, ok := parseSuit(*raw.Suit)
	if !ok {
		return fmt.Errorf("card: invalid suit %q", *raw.Suit)
	}

	rank, ok := parseRank(*raw.Rank)
	if !ok {
		return fmt.Errorf("card: invalid rank %q", *raw.Rank)
	}

	*card = Card{Suit: suit, Rank: rank}
	return nil
}

// Color is the set of suits a player plays with.
type Color string

const (
	Black Color = "black" // clubs and spades
	Red   Color = "red"   // diamonds and hearts
)

// Suits returns the two suits which belong to the color.
func (color Color) Suits() [2]Suit {
	if color == Red {
		return [2]Suit{Diamond, Heart}
	}

	return [2]Suit{Spade, Club}
}

// Position is an absolute board coordinate pair.
type Position struct {
	I, J int8
}

func (pos Position) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int8{pos.I, pos.J})
}

func (pos *Position) UnmarshalJSON(data []byte) error {
	var pair [2]int8
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}

	// json.Unmarshal happily fills a short array, so check the arity by hand.
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil || len(raw) != 2 {
		return fmt.Errorf("position %s: expected a pair of coordinates", data)
	}

	*pos = Position{I: pair[0], J: pair[1]}
	return nil
}

// Field is a single occupied location on the board as seen by a bot.
type Field struct {
	I, J int8

	// TopCard is nil if the uppermost card has been turned face-down.
	TopCard *Card

	// HiddenCards holds every card below the top card, in no particular order.
	HiddenCards []Card
}

type fieldJSON struct {
	I           *int8   `json:"i"`
	J           *int8   `json:"j"`
	TopCard     *Card   `json:"top_card"`
	HiddenCards *[]Card `json:"hidden_cards"`
}

func (field Field) MarshalJSON() ([]byte, error) {
	hidden := field.HiddenCards
	if hidden == nil {
		hidden = []Card{}
	}

	return json.Marshal(fieldJSON{
		I:           &field.I,
		J:           &field.J,
		TopCard:     field.TopCard,
		HiddenCards: &hidden,
	})
}

func (field *Field) UnmarshalJSON(data []byte) error {
	var raw fieldJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if raw.I == nil || raw.J == nil || raw.HiddenCards == nil {
		return fmt.Errorf("field %s: missing required fields", data)
	}

	*field = Field{
		I:           *raw.I,
		J:           *raw.J,
		TopCard:     raw.TopCard,
		HiddenCards: *raw.HiddenCards,
	}
	return nil
}

// CardToPlace is a single card placement inside of a turn.
type CardToPlace struct {
	Card Card
	I, J int8

	// KingTarget is the field whose top card is turned face-down when a king
	// is played on top of another card. It is omitted otherwise.
	KingTarget *Position
}

type cardToPlaceJSON struct {
	Card       *Card     `json:"card"`
	I          *int8     `json:"i"`
	J          *int8     `json:"j"`
	KingTarget *Position `json:"target_field_for_king_ability,omitempty"`
}

func (ctp CardToPlace) MarshalJSON() ([]byte, error) {
	return json.Marshal(cardToPlaceJSON{
		Card:       &ctp.Card,
		I:          &ctp.I,
		J:          &ctp.J,
		KingTarget: ctp.KingTarget,
	})
}

func (ctp *CardToPlace) UnmarshalJSON(data []byte) error {
	var raw cardToPlaceJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if raw.Card == nil || raw.I == nil || raw.J == nil {
		return fmt.Errorf("card to place %s: missing required fields", data)
	}

	*ctp = CardToPlace{
		Card:       *raw.Card,
		I:          *raw.I,
		J:          *raw.J,
		KingTarget: raw.KingTarget,
	}
	return nil
}
