package bridge

import "fmt"

// Suit represents one of the four card suits.
type Suit int

const (
	Clubs Suit = iota
	Diamonds
	Hearts
	Spades
)

// AllSuits lists the suits in ascending rank order (clubs lowest).
func AllSuits() []Suit {
	return []Suit{Clubs, Diamonds, Hearts, Spades}
}

func (s Suit) String() string {
	switch s {
	case Clubs:
		return "C"
	case Diamonds:
		return "D"
	case Hearts:
		return "H"
	case Spades:
		return "S"
	default:
		return "?"
	}
}

// Symbol returns the unicode suit symbol for display strings.
func (s Suit) Symbol() string {
	switch s {
	case Clubs:
		return "♣"
	case Diamonds:
		return "♦"
	case Hearts:
		return "♥"
	case Spades:
		return "♠"
	default:
		return "?"
	}
}

// Name returns the lowercase English suit name used in explanation text.
func (s Suit) Name() string {
	switch s {
	case Clubs:
		return "clubs"
	case Diamonds:
		return "diamonds"
	case Hearts:
		return "hearts"
	case Spades:
		return "spades"
	default:
		return "unknown"
	}
}

// IsMajor returns true for hearts and spades.
func (s Suit) IsMajor() bool {
	return s == Hearts || s == Spades
}

// ParseSuit accepts a letter or unicode symbol for a suit.
func ParseSuit(s string) (Suit, error) {
	switch s {
	case "C", "c", "♣":
		return Clubs, nil
	case "D", "d", "♦":
		return Diamonds, nil
	case "H", "h", "♥":
		return Hearts, nil
	case "S", "s", "♠":
		return Spades, nil
	}
	return 0, fmt.Errorf("invalid suit %q", s)
}

// Rank represents a card rank, 2 through 14 (ace high).
type Rank int

const (
	Ten   Rank = 10
	Jack  Rank = 11
	Queen Rank = 12
	King  Rank = 13
	Ace   Rank = 14
)

func (r Rank) String() string {
	switch r {
	case Ace:
		return "A"
	case King:
		return "K"
	case Queen:
		return "Q"
	case Jack:
		return "J"
	case Ten:
		return "T"
	default:
		if r >= 2 && r <= 9 {
			return fmt.Sprintf("%d", int(r))
		}
		return "?"
	}
}

// HCP returns the high-card point value of the rank (A=4, K=3, Q=2, J=1).
func (r Rank) HCP() int {
	switch r {
	case Ace:
		return 4
	case King:
		return 3
	case Queen:
		return 2
	case Jack:
		return 1
	default:
		return 0
	}
}

// ParseRank accepts a single rank character.
func ParseRank(c byte) (Rank, error) {
	switch c {
	case 'A', 'a':
		return Ace, nil
	case 'K', 'k':
		return King, nil
	case 'Q', 'q':
		return Queen, nil
	case 'J', 'j':
		return Jack, nil
	case 'T', 't':
		return Ten, nil
	case '1':
		// "10" handled by caller; a bare '1' is invalid
		return 0, fmt.Errorf("invalid rank character %q", c)
	}
	if c >= '2' && c <= '9' {
		return Rank(c - '0'), nil
	}
	return 0, fmt.Errorf("invalid rank character %q", c)
}

// Card is a single playing card.
type Card struct {
	Suit Suit
	Rank Rank
}

func (c Card) String() string {
	return c.Suit.String() + c.Rank.String()
}
