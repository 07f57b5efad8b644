package games

import (
	"errors"
	"fmt"
	"sort"

	"gomori.dev/x/judge/pkg/eve/protocol"
)

// BoardSize is the maximum width and height of the area covered by cards.
const BoardSize = 4

var (
	ErrOutOfBounds  = errors.New("card was played out of the bounds of the playing field")
	ErrNoKingTarget = errors.New("a king was played on top of another card, but no target for its ability was specified")
)

// IncompatibleCardError is returned when a card is placed on top of a card
// it can't be placed on.
type IncompatibleCardError struct {
	Existing protocol.Card
}

func (err *IncompatibleCardError) Error() string {
	return fmt.Sprintf("card was played on top of an incompatible card, %s", err.Existing)
}

// KingTargetError is returned when the target of a king's ability is not a
// face-up card on the board.
type KingTargetError struct {
	Target   protocol.Position
	FaceDown bool
}

func (err *KingTargetError) Error() string {
	if err.FaceDown {
		return fmt.Sprintf("the target card for the king's ability (%d, %d) is already face-down", err.Target.I, err.Target.J)
	}

	return fmt.Sprintf("the target card for the king's ability (%d, %d) does not exist", err.Target.I, err.Target.J)
}

// CanBePlacedOn reports whether card may be played on top of other.
func CanBePlacedOn(card, other protocol.Card) bool {
	if card.Rank == other.Rank {
		return true
	}

	switch card.Rank {
	case protocol.Ace:
		return true
	case protocol.Jack, protocol.Queen, protocol.King:
		return card.Suit == other.Suit
	default:
		return false
	}
}

// stack is the pile of cards on one field. A face-down top card is kept
// together with the other hidden cards.
type stack struct {
	top    *protocol.Card
	hidden []protocol.Card
}

func (s stack) place(card protocol.Card) stack {
	s = s.turnFaceDown()
	s.top = &card
	return s
}

func (s stack) turnFaceDown() stack {
	if s.top == nil {
		return s
	}

	hidden := make([]protocol.Card, len(s.hidden), len(s.hidden)+1)
	copy(hidden, s.hidden)
	return stack{hidden: append(hidden, *s.top)}
}

func (s stack) cards() []protocol.Card {
	cards := append([]protocol.Card{}, s.hidden...)
	if s.top != nil {
		cards = append(cards, *s.top)
	}

	return cards
}

// Board is the set of fields with at least one card on it. A Board is
// never modified after it has been created.
type Board struct {
	fields map[protocol.Position]stack
}

// NewBoard creates a board from a list of fields, like the ones sent to
// the bots in a PlayTurn request.
func NewBoard(fields []protocol.Field) *Board {
	board := &Board{fields: make(map[protocol.Position]stack, len(fields))}
	for _, field := range fields {
		board.fields[protocol.Position{I: field.I, J: field.J}] = stack{
			top:    field.TopCard,
			hidden: append([]protocol.Card{}, field.HiddenCards...),
		}
	}

	return board
}

// Fields returns the player visible representation of the board, sorted by
// i first and j second.
func (board *Board) Fields() []protocol.Field {
	fields := make([]protocol.Field, 0, len(board.fields))
	for pos, s := range board.fields {
		hidden := append([]protocol.Card{}, s.hidden...)
		sort.Slice(hidden, func(a, b int) bool { return hidden[a].Less(hidden[b]) })

		fields = append(fields, protocol.Field{
			I: pos.I, J: pos.J,
			TopCard:     s.top,
			HiddenCards: hidden,
		})
	}

	sort.Slice(fields, func(a, b int) bool {
		if fields[a].I != fields[b].I {
			return fields[a].I < fields[b].I
		}

		return fields[a].J < fields[b].J
	})

	return fields
}

// TopCard returns the face-up card on the given field, if any.
func (board *Board) TopCard(pos protocol.Position) (protocol.Card, bool) {
	s, found := board.fields[pos]
	if !found || s.top == nil {
		return protocol.Card{}, false
	}

	return *s.top, true
}

func (board *Board) bbox() (iMin, iMax, jMin, jMax int) {
	first := true
	for pos := range board.fields {
		i, j := int(pos.I), int(pos.J)
		if first {
			iMin, iMax, jMin, jMax = i, i, j, j
			first = false
			continue
		}

		iMin, iMax = min(iMin, i), max(iMax, i)
		jMin, jMax = min(jMin, j), max(jMax, j)
	}

	return iMin, iMax, jMin, jMax
}

// InBounds reports whether a card placed at (i, j) would keep every card
// inside a BoardSize x BoardSize area.
func (board *Board) InBounds(i, j int8) bool {
	if len(board.fields) == 0 {
		return true
	}

	iMin, iMax, jMin, jMax := board.bbox()
	return int(i)-iMin < BoardSize && iMax-int(i) < BoardSize &&
		int(j)-jMin < BoardSize && jMax-int(j) < BoardSize
}

// CanPlaceCard reports whether the card can be placed anywhere on the board.
func (board *Board) CanPlaceCard(card protocol.Card) bool {
	if len(board.fields) < BoardSize*BoardSize {
		return true
	}

	for _, s := range board.fields {
		if s.top == nil || CanBePlacedOn(card, *s.top) {
			return true
		}
	}

	return false
}

// Placement is the computed effect of placing a single card on a board.
type Placement struct {
	board *Board
	card  protocol.Card
	pos   protocol.Position

	flipped map[protocol.Position]bool
	won     map[protocol.Position]bool

	// CardsWon are all the cards taken off the board by this placement.
	CardsWon []protocol.Card

	// Combo is true if the card was placed on an occupied field, in which
	// case the player has to play another card.
	Combo bool
}

var lineDirections = [4]protocol.Position{
	{I: 0, J: 1}, {I: 1, J: 0}, {I: 1, J: 1}, {I: 1, J: -1},
}

// Calculate checks whether the placement is legal and computes its effects
// without modifying the board. It doesn't check the player's hand.
func (board *Board) Calculate(ctp protocol.CardToPlace) (*Placement, error) {
	pos := protocol.Position{I: ctp.I, J: ctp.J}

	if !board.InBounds(ctp.I, ctp.J) {
		return nil, ErrOutOfBounds
	}

	existing, occupied := board.fields[pos]
	if occupied && existing.top != nil && !CanBePlacedOn(ctp.Card, *existing.top) {
		return nil, &IncompatibleCardError{Existing: *existing.top}
	}

	flipped := map[protocol.Position]bool{}
	if occupied {
		if err := board.flips(ctp, flipped); err != nil {
			return nil, err
		}
	}

	// Visible cards of the placed card's suit after the placement.
	suited := map[protocol.Position]bool{pos: true}
	for p, s := range board.fields {
		if s.top != nil && s.top.Suit == ctp.Card.Suit {
			suited[p] = true
		}
	}

	for p := range flipped {
		delete(suited, p)
	}

	won := map[protocol.Position]bool{}
	for _, dir := range lineDirections {
		var line []protocol.Position
		for k := -BoardSize + 1; k < BoardSize; k++ {
			p := protocol.Position{
				I: int8(int(pos.I) + k*int(dir.I)),
				J: int8(int(pos.J) + k*int(dir.J)),
			}

			if suited[p] {
				line = append(line, p)
			}
		}

		if len(line) == BoardSize {
			for _, p := range line {
				won[p] = true
			}
		}
	}

	delete(won, pos)

	var cardsWon []protocol.Card
	for p := range won {
		cardsWon = append(cardsWon, board.fields[p].cards()...)
	}

	sort.Slice(cardsWon, func(a, b int) bool { return cardsWon[a].Less(cardsWon[b]) })

	return &Placement{
		board:    board,
		card:     ctp.Card,
		pos:      pos,
		flipped:  flipped,
		won:      won,
		CardsWon: cardsWon,
		Combo:    occupied,
	}, nil
}

// flips collects the fields whose top cards are turned face-down by the
// ability of a face card placed on top of another card.
func (board *Board) flips(ctp protocol.CardToPlace, flipped map[protocol.Position]bool) error {
	var neighbours []protocol.Position

	switch ctp.Card.Rank {
	case protocol.Jack:
		neighbours = []protocol.Position{
			{I: ctp.I - 1, J: ctp.J}, {I: ctp.I + 1, J: ctp.J},
			{I: ctp.I, J: ctp.J - 1}, {I: ctp.I, J: ctp.J + 1},
		}

	case protocol.Queen:
		neighbours = []protocol.Position{
			{I: ctp.I - 1, J: ctp.J - 1}, {I: ctp.I - 1, J: ctp.J + 1},
			{I: ctp.I + 1, J: ctp.J - 1}, {I: ctp.I + 1, J: ctp.J + 1},
		}

	case protocol.King:
		if ctp.KingTarget == nil {
			return ErrNoKingTarget
		}

		target := *ctp.KingTarget
		s, found := board.fields[target]
		if !found {
			return &KingTargetError{Target: target}
		}

		// A king may target the card it is placed on.
		if s.top == nil && target != (protocol.Position{I: ctp.I, J: ctp.J}) {
			return &KingTargetError{Target: target, FaceDown: true}
		}

		flipped[target] = true
		return nil
	}

	for _, p := range neighbours {
		if board.InBounds(p.I, p.J) {
			flipped[p] = true
		}
	}

	return nil
}

// Apply returns the board after the placement. The original board is left
// untouched.
func (placement *Placement) Apply() *Board {
	next := &Board{fields: make(map[protocol.Position]stack, len(placement.board.fields)+1)}

	for p, s := range placement.board.fields {
		if placement.won[p] {
			continue
		}

		next.fields[p] = s
	}

	s := next.fields[placement.pos].place(placement.card)
	next.fields[placement.pos] = s

	for p := range placement.flipped {
		if s, found := next.fields[p]; found {
			next.fields[p] = s.turnFaceDown()
		}
	}

	return next
}
