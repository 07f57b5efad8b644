package games

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"

	"gomori.dev/x/judge/pkg/eve/protocol"
)

// MaxCardsPerTurn is the maximum number of cards a player may place in a
// single turn.
const MaxCardsPerTurn = 5

var (
	ErrCardNotInHand = errors.New("tried to play a card that was not in the player's hand")
	ErrZeroCards     = errors.New("tried to play zero cards while a card could be placed")
	ErrTooManyCards  = errors.New("tried to play more than five cards")
	ErrGameOver      = errors.New("the game is already over")
)

// WrongMoveError is returned when a response doesn't fit the request.
type WrongMoveError struct {
	Expected, Got protocol.ResponseKind
}

func (err *WrongMoveError) Error() string {
	return fmt.Sprintf("expected a %s move, got %s", err.Expected, err.Got)
}

// IllegalCardError is returned when one of the cards of a turn can't be
// placed where the player wanted it.
type IllegalCardError struct {
	Index int
	Card  protocol.Card
	Err   error
}

func (err *IllegalCardError) Error() string {
	return fmt.Sprintf("error playing the %s card, which was %s: %v", ordinal(err.Index), err.Card, err.Err)
}

func (err *IllegalCardError) Unwrap() error {
	return err.Err
}

// ComboError is returned when a turn's cards don't follow the combo rules.
type ComboError struct {
	Index int

	// Premature is true if the turn ended on a combo although another card
	// could have been placed, and false if a card followed a non-combo card.
	Premature bool
}

func (err *ComboError) Error() string {
	if err.Premature {
		return fmt.Sprintf("the %s card should be followed up by another card, but wasn't", ordinal(err.Index))
	}

	return fmt.Sprintf("the %s card did not start a combo, but another card was played", ordinal(err.Index))
}

func ordinal(index int) string {
	switch index {
	case 0:
		return "first"
	case 1:
		return "second"
	case 2:
		return "third"
	case 3:
		return "fourth"
	case 4:
		return "fifth"
	default:
		return fmt.Sprintf("%dth", index+1)
	}
}

// Gomori implements Rules for the card game gomori. Each player plays with
// the 26 cards of one color and tries to win cards by completing lines of
// four cards of the same suit on a 4x4 board.
type Gomori struct{}

var _ Rules = (*Gomori)(nil)

type gomoriPlayer struct {
	color    protocol.Color
	hand     []protocol.Card
	drawPile []protocol.Card
	won      []protocol.Card
}

type gomoriState struct {
	toMove  int
	board   *Board // nil before the first turn
	players [2]gomoriPlayer

	skipped   bool // the previous turn was skipped
	ended     bool
	endReason string
}

func (state *gomoriState) ToMove() int {
	return state.toMove
}

// clone copies everything a turn may modify. Boards are immutable and are
// shared between states.
func (state *gomoriState) clone() *gomoriState {
	next := *state
	for i, player := range state.players {
		next.players[i] = gomoriPlayer{
			color:    player.color,
			hand:     append([]protocol.Card{}, player.hand...),
			drawPile: append([]protocol.Card{}, player.drawPile...),
			won:      append([]protocol.Card{}, player.won...),
		}
	}

	return &next
}

func deck(color protocol.Color) []protocol.Card {
	cards := make([]protocol.Card, 0, 2*protocol.RankN)
	for _, suit := range color.Suits() {
		for rank := protocol.Rank(0); rank < protocol.RankN; rank++ {
			cards = append(cards, protocol.Card{Suit: suit, Rank: rank})
		}
	}

	return cards
}

func (*Gomori) Setup(rng *rand.Rand) State {
	var state gomoriState

	colors := [2]protocol.Color{protocol.Red, protocol.Black}
	if rng.Intn(2) == 1 {
		colors[0], colors[1] = colors[1], colors[0]
	}

	for seat, color := range colors {
		pile := deck(color)
		rng.Shuffle(len(pile), func(a, b int) { pile[a], pile[b] = pile[b], pile[a] })

		split := len(pile) - protocol.HandSize
		state.players[seat] = gomoriPlayer{
			color:    color,
			hand:     append([]protocol.Card{}, pile[split:]...),
			drawPile: pile[:split],
		}
	}

	state.toMove = rng.Intn(2)
	return &state
}

func (*Gomori) Introduce(state State, seat int) protocol.Request {
	return protocol.NewGame{Color: state.(*gomoriState).players[seat].color}
}

func (*Gomori) Request(state State) protocol.Request {
	s := state.(*gomoriState)
	player, opponent := s.players[s.toMove], s.players[1^s.toMove]

	hand := append([]protocol.Card{}, player.hand...)
	if s.board == nil {
		return protocol.PlayFirstTurn{Cards: hand}
	}

	won := append([]protocol.Card{}, opponent.won...)
	sort.Slice(won, func(a, b int) bool { return won[a].Less(won[b]) })

	return protocol.PlayTurn{
		Cards:              hand,
		Fields:             s.board.Fields(),
		CardsWonByOpponent: won,
	}
}

func (*Gomori) Validate(state State, move protocol.Response) (State, error) {
	s := state.(*gomoriState)
	if s.ended {
		return nil, ErrGameOver
	}

	if s.board == nil {
		first, ok := move.(protocol.FirstTurn)
		if !ok {
			return nil, &WrongMoveError{Expected: protocol.KindCard, Got: move.Kind()}
		}

		return playFirstTurn(s, first.Card)
	}

	turn, ok := move.(protocol.Turn)
	if !ok {
		return nil, &WrongMoveError{Expected: protocol.KindTurn, Got: move.Kind()}
	}

	return playTurn(s, turn.Cards)
}

func playFirstTurn(state *gomoriState, card protocol.Card) (State, error) {
	next := state.clone()
	player := &next.players[next.toMove]

	index := indexOf(player.hand, card)
	if index < 0 {
		return nil, ErrCardNotInHand
	}

	// The first turn can't exhaust the draw pile.
	last := len(player.drawPile) - 1
	player.hand[index] = player.drawPile[last]
	player.drawPile = player.drawPile[:last]

	next.board = NewBoard([]protocol.Field{{I: 0, J: 0, TopCard: &card}})
	next.toMove ^= 1
	return next, nil
}

func playTurn(state *gomoriState, cards []protocol.CardToPlace) (State, error) {
	next := state.clone()
	player := &next.players[next.toMove]
	next.toMove ^= 1

	if len(cards) == 0 {
		for _, card := range player.hand {
			if state.board.CanPlaceCard(card) {
				return nil, ErrZeroCards
			}
		}

		if next.skipped {
			next.ended, next.endReason = true, "neither player could place a card"
		}

		next.skipped = true
		return next, nil
	}

	if len(cards) > MaxCardsPerTurn {
		return nil, ErrTooManyCards
	}

	hand := player.hand
	board := state.board

	for i, ctp := range cards {
		index := indexOf(hand, ctp.Card)
		if index < 0 {
			return nil, ErrCardNotInHand
		}

		hand = append(hand[:index:index], hand[index+1:]...)

		placement, err := board.Calculate(ctp)
		if err != nil {
			return nil, &IllegalCardError{Index: i, Card: ctp.Card, Err: err}
		}

		last := i == len(cards)-1
		if !placement.Combo && !last {
			return nil, &ComboError{Index: i}
		}

		board = placement.Apply()

		if placement.Combo && last {
			for _, card := range hand {
				if board.CanPlaceCard(card) {
					return nil, &ComboError{Index: i, Premature: true}
				}
			}
		}

		player.won = append(player.won, placement.CardsWon...)
	}

	next.board = board
	next.skipped = false

	sort.Slice(hand, func(a, b int) bool { return hand[a].Less(hand[b]) })
	for len(hand) < protocol.HandSize {
		if len(player.drawPile) == 0 {
			next.ended, next.endReason = true, "draw pile exhausted"
			break
		}

		last := len(player.drawPile) - 1
		hand = append(hand, player.drawPile[last])
		player.drawPile = player.drawPile[:last]
	}

	player.hand = hand
	return next, nil
}

func (*Gomori) Terminal(state State) (Outcome, bool) {
	s := state.(*gomoriState)
	if !s.ended {
		return Outcome{}, false
	}

	outcome := Outcome{
		Winner: NoWinner,
		Scores: [2]int{len(s.players[0].won), len(s.players[1].won)},
		Reason: s.endReason,
	}

	switch {
	case outcome.Scores[0] > outcome.Scores[1]:
		outcome.Winner = 0
	case outcome.Scores[1] > outcome.Scores[0]:
		outcome.Winner = 1
	}

	return outcome, true
}

func indexOf(cards []protocol.Card, card protocol.Card) int {
	for i, c := range cards {
		if c == card {
			return i
		}
	}

	return -1
}
