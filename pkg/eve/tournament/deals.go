package tournament

import (
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"
)

// DealBook is a fixed list of deals, given by their seeds, which a
// tournament plays instead of random ones. Lines starting with # and
// empty lines are ignored.
type DealBook struct {
	seeds    []int64
	strategy string
}

// NewDealBook reads a deal book. With the random strategy deals are picked
// at random from the book, otherwise they are played in order and the
// book starts over once it runs out.
func NewDealBook(name string, strategy string) (*DealBook, error) {
	switch strategy {
	case "sequential", "":
	case "random":
	default:
		return nil, fmt.Errorf("deal book %s: invalid deal order %s", name, strategy)
	}

	book := DealBook{strategy: strategy}

	file, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}

	for i, entry := range strings.Split(string(file), "\n") {
		entry = strings.Trim(entry, "\n\r\t ")
		if entry == "" || strings.HasPrefix(entry, "#") {
			continue
		}

		seed, err := strconv.ParseInt(entry, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("deal book %s:%d: %w", name, i+1, err)
		}

		book.seeds = append(book.seeds, seed)
	}

	if len(book.seeds) == 0 {
		return nil, fmt.Errorf("deal book %s: no deals", name)
	}

	return &book, nil
}

// Len returns the number of deals in the book.
func (book *DealBook) Len() int {
	return len(book.seeds)
}

// Dealer returns a function which yields the book's deals, picking them
// with the given source of randomness if the strategy is random.
func (book *DealBook) Dealer(rng *rand.Rand) func() int64 {
	current := 0

	return func() int64 {
		if book.strategy == "random" {
			return book.seeds[rng.Intn(len(book.seeds))]
		}

		seed := book.seeds[current%len(book.seeds)]
		current++
		return seed
	}
}
