package engine

import (
	"fmt"
	"math/rand/v2"
	"sort"

	"github.com/google/uuid"
)

// Suit is one of the four French suits.
type Suit string

const (
	SuitClubs    Suit = "clubs"
	SuitDiamonds Suit = "diamonds"
	SuitHearts   Suit = "hearts"
	SuitSpades   Suit = "spades"
)

// Suits lists all suits in deck-construction order.
var Suits = [4]Suit{SuitClubs, SuitDiamonds, SuitHearts, SuitSpades}

// Rank is a card rank, "A" through "K".
type Rank string

const (
	RankAce   Rank = "A"
	RankTwo   Rank = "2"
	RankThree Rank = "3"
	RankFour  Rank = "4"
	RankFive  Rank = "5"
	RankSix   Rank = "6"
	RankSeven Rank = "7"
	RankEight Rank = "8"
	RankNine  Rank = "9"
	RankTen   Rank = "10"
	RankJack  Rank = "J"
	RankQueen Rank = "Q"
	RankKing  Rank = "K"
)

// Ranks lists all ranks in ascending sort order.
var Ranks = [13]Rank{
	RankAce, RankTwo, RankThree, RankFour, RankFive, RankSix, RankSeven,
	RankEight, RankNine, RankTen, RankJack, RankQueen, RankKing,
}

// DeckSize is the number of cards in a full deck.
const DeckSize = 52

// Card is an immutable playing card. ID disambiguates otherwise-identical
// cards across a shuffled deck and is the sole equality key used by hand and
// pile operations.
type Card struct {
	Suit Suit      `json:"suit"`
	Rank Rank      `json:"rank"`
	ID   uuid.UUID `json:"id"`
}

// Value returns the card's point value for deadwood scoring:
// Ace = 1, Two-Ten = face value, face cards = 10.
func (c Card) Value() int {
	switch c.Rank {
	case RankAce:
		return 1
	case RankTen, RankJack, RankQueen, RankKing:
		return 10
	default:
		return int(c.Rank[0] - '0')
	}
}

// SortValue returns the card's run-ordering value, Ace = 1 through King = 13.
// Used only for run detection, never for scoring.
func (c Card) SortValue() int {
	switch c.Rank {
	case RankAce:
		return 1
	case RankTen:
		return 10
	case RankJack:
		return 11
	case RankQueen:
		return 12
	case RankKing:
		return 13
	default:
		return int(c.Rank[0] - '0')
	}
}

// Same reports whether the two cards are the same physical card instance.
func (c Card) Same(o Card) bool { return c.ID == o.ID }

func (c Card) String() string {
	return fmt.Sprintf("%s-%s", c.Rank, c.Suit)
}

// NewDeck builds the fixed 52-card deck, each card with a fresh identity.
func NewDeck() []Card {
	deck := make([]Card, 0, DeckSize)
	for _, suit := range Suits {
		for _, rank := range Ranks {
			deck = append(deck, Card{Suit: suit, Rank: rank, ID: uuid.New()})
		}
	}
	return deck
}

// Shuffle permutes the deck in place with a seeded PCG source, so a deal is
// reproducible from its seed.
func Shuffle(deck []Card, seed uint64) {
	rng := rand.New(rand.NewPCG(seed, 0))
	rng.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})
}

// sortBySortValue orders cards ascending by run value. Returns a copy.
func sortBySortValue(cards []Card) []Card {
	out := make([]Card, len(cards))
	copy(out, cards)
	sort.Slice(out, func(i, j int) bool {
		return out[i].SortValue() < out[j].SortValue()
	})
	return out
}

// cardValueSum returns the summed point value of the given cards.
func cardValueSum(cards []Card) int {
	total := 0
	for _, c := range cards {
		total += c.Value()
	}
	return total
}
