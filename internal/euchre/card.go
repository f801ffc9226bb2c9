package euchre

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
)

// Suit is one of the four French suits.
type Suit string

const (
	Hearts   Suit = "hearts"
	Diamonds Suit = "diamonds"
	Clubs    Suit = "clubs"
	Spades   Suit = "spades"
)

// Suits lists the suits in deck-building order.
var Suits = []Suit{Hearts, Diamonds, Clubs, Spades}

// Rank is a card rank in the 24-card euchre deck.
type Rank string

const (
	Nine  Rank = "9"
	Ten   Rank = "10"
	Jack  Rank = "J"
	Queen Rank = "Q"
	King  Rank = "K"
	Ace   Rank = "A"
)

// Ranks lists the ranks from lowest to highest natural order.
var Ranks = []Rank{Nine, Ten, Jack, Queen, King, Ace}

// naturalOrder is the plain (non-trump) strength of a rank.
var naturalOrder = map[Rank]int{
	Nine:  1,
	Ten:   2,
	Jack:  3,
	Queen: 4,
	King:  5,
	Ace:   6,
}

// Color returns "red" or "black".
func (s Suit) Color() string {
	switch s {
	case Hearts, Diamonds:
		return "red"
	default:
		return "black"
	}
}

func (s Suit) Valid() bool {
	switch s {
	case Hearts, Diamonds, Clubs, Spades:
		return true
	}
	return false
}

// Card is immutable once built; ID is the identity.
type Card struct {
	Rank Rank   `json:"rank"`
	Suit Suit   `json:"suit"`
	ID   string `json:"id"`
}

func NewCard(rank Rank, suit Suit) Card {
	return Card{Rank: rank, Suit: suit, ID: string(rank) + "-" + string(suit)}
}

func (c Card) String() string { return c.ID }

// ParseSuit accepts a suit name in any case.
func ParseSuit(s string) (Suit, error) {
	suit := Suit(strings.ToLower(strings.TrimSpace(s)))
	if !suit.Valid() {
		return "", fmt.Errorf("unknown suit %q", s)
	}
	return suit, nil
}

// ParseCardID turns "J-spades" back into a Card.
func ParseCardID(id string) (Card, error) {
	parts := strings.SplitN(strings.TrimSpace(id), "-", 2)
	if len(parts) != 2 {
		return Card{}, fmt.Errorf("malformed card id %q", id)
	}
	rank := Rank(strings.ToUpper(parts[0]))
	if _, ok := naturalOrder[rank]; !ok {
		return Card{}, fmt.Errorf("unknown rank in card id %q", id)
	}
	suit, err := ParseSuit(parts[1])
	if err != nil {
		return Card{}, fmt.Errorf("card id %q: %w", id, err)
	}
	return NewCard(rank, suit), nil
}

// CreateDeck returns the 24 cards in a fixed order.
func CreateDeck() []Card {
	deck := make([]Card, 0, len(Suits)*len(Ranks))
	for _, s := range Suits {
		for _, r := range Ranks {
			deck = append(deck, NewCard(r, s))
		}
	}
	return deck
}

// ShuffleDeck permutes deck in place.
func ShuffleDeck(deck []Card, rng *rand.Rand) {
	rng.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})
}

// LeftBowerSuit is the other suit of the trump colour.
func LeftBowerSuit(trump Suit) Suit {
	switch trump {
	case Hearts:
		return Diamonds
	case Diamonds:
		return Hearts
	case Clubs:
		return Spades
	case Spades:
		return Clubs
	}
	return ""
}

func IsRightBower(c Card, trump Suit) bool {
	return c.Rank == Jack && c.Suit == trump
}

func IsLeftBower(c Card, trump Suit) bool {
	return trump != "" && c.Rank == Jack && c.Suit == LeftBowerSuit(trump)
}

// EffectiveSuit is the suit a card belongs to for following and ranking.
// Both bowers belong to trump.
func EffectiveSuit(c Card, trump Suit) Suit {
	if IsLeftBower(c, trump) {
		return trump
	}
	return c.Suit
}

// EffectiveRank orders cards within one trick. Trump always beats the led
// suit, which beats everything else (0).
func EffectiveRank(c Card, trump, led Suit) int {
	switch {
	case IsRightBower(c, trump):
		return 200
	case IsLeftBower(c, trump):
		return 199
	case trump != "" && c.Suit == trump:
		return 100 + naturalOrder[c.Rank]
	case led != "" && EffectiveSuit(c, trump) == led:
		return naturalOrder[c.Rank]
	}
	return 0
}

// SortHand orders a hand for display: trump first, then by suit, strongest first.
func SortHand(hand []Card, trump Suit) {
	suitIndex := func(c Card) int {
		s := EffectiveSuit(c, trump)
		if trump != "" && s == trump {
			return -1
		}
		for i, v := range Suits {
			if v == s {
				return i
			}
		}
		return len(Suits)
	}
	sort.SliceStable(hand, func(i, j int) bool {
		si, sj := suitIndex(hand[i]), suitIndex(hand[j])
		if si != sj {
			return si < sj
		}
		led := EffectiveSuit(hand[i], trump)
		return EffectiveRank(hand[i], trump, led) > EffectiveRank(hand[j], trump, led)
	})
}

func indexOfCard(cards []Card, id string) int {
	for i, c := range cards {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func removeCard(cards []Card, idx int) []Card {
	out := make([]Card, 0, len(cards)-1)
	out = append(out, cards[:idx]...)
	return append(out, cards[idx+1:]...)
}
