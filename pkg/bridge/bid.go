package bridge

import (
	"fmt"
	"strings"
)

// Strain is the denomination of a contract bid: a suit or notrump.
type Strain int

const (
	StrainClubs Strain = iota
	StrainDiamonds
	StrainHearts
	StrainSpades
	StrainNoTrump
)

func (s Strain) String() string {
	switch s {
	case StrainClubs:
		return "C"
	case StrainDiamonds:
		return "D"
	case StrainHearts:
		return "H"
	case StrainSpades:
		return "S"
	case StrainNoTrump:
		return "NT"
	default:
		return "?"
	}
}

// Name returns the English strain name used in explanation text.
func (s Strain) Name() string {
	if s == StrainNoTrump {
		return "notrump"
	}
	return Suit(s).Name()
}

// SuitStrain converts a suit to its strain.
func SuitStrain(s Suit) Strain {
	return Strain(s)
}

// ToSuit converts a suit strain back to a Suit. Not valid for notrump.
func (s Strain) ToSuit() (Suit, bool) {
	if s == StrainNoTrump {
		return 0, false
	}
	return Suit(s), true
}

// BidType distinguishes the call variants.
type BidType int

const (
	BidPass BidType = iota
	BidDouble
	BidRedouble
	BidContract
)

// Bid is a single call in the auction: pass, double, redouble, or a
// level/strain contract bid.
type Bid struct {
	Type   BidType
	Level  int // 1-7, contract bids only
	Strain Strain
}

// Pass, Double, and Redouble are the non-contract calls.
var (
	Pass     = Bid{Type: BidPass}
	Double   = Bid{Type: BidDouble}
	Redouble = Bid{Type: BidRedouble}
)

// NewBid constructs a contract bid.
func NewBid(level int, strain Strain) Bid {
	return Bid{Type: BidContract, Level: level, Strain: strain}
}

// IsContract reports whether the bid names a level and strain.
func (b Bid) IsContract() bool {
	return b.Type == BidContract
}

// Value returns the bid's position in the total contract order, level first
// then strain (1C=0 ... 7NT=34). Only meaningful for contract bids.
func (b Bid) Value() int {
	return (b.Level-1)*5 + int(b.Strain)
}

// Beats reports whether b strictly exceeds other in the contract order.
// Both bids must be contract bids.
func (b Bid) Beats(other Bid) bool {
	return b.Value() > other.Value()
}

func (b Bid) String() string {
	switch b.Type {
	case BidPass:
		return "P"
	case BidDouble:
		return "X"
	case BidRedouble:
		return "XX"
	case BidContract:
		return fmt.Sprintf("%d%s", b.Level, b.Strain)
	default:
		return "?"
	}
}

// Display returns the bid with a unicode suit symbol, for user-facing text.
func (b Bid) Display() string {
	if b.Type != BidContract {
		switch b.Type {
		case BidPass:
			return "Pass"
		case BidDouble:
			return "Dbl"
		case BidRedouble:
			return "Rdbl"
		}
	}
	if b.Strain == StrainNoTrump {
		return fmt.Sprintf("%dNT", b.Level)
	}
	suit, _ := b.Strain.ToSuit()
	return fmt.Sprintf("%d%s", b.Level, suit.Symbol())
}

// ParseBid parses a call in any common spelling: "P"/"Pass", "X"/"Dbl",
// "XX"/"Rdbl", "1NT"/"1N", "2♣"/"2C"/"2c".
func ParseBid(s string) (Bid, error) {
	t := strings.TrimSpace(s)
	switch strings.ToUpper(t) {
	case "P", "PASS", "-":
		return Pass, nil
	case "X", "DBL", "DOUBLE":
		return Double, nil
	case "XX", "RDBL", "REDOUBLE":
		return Redouble, nil
	}

	if len(t) < 2 {
		return Bid{}, fmt.Errorf("invalid bid %q", s)
	}
	level := int(t[0] - '0')
	if level < 1 || level > 7 {
		return Bid{}, fmt.Errorf("invalid bid level in %q", s)
	}

	rest := strings.ToUpper(t[1:])
	switch rest {
	case "NT", "N":
		return NewBid(level, StrainNoTrump), nil
	}
	suit, err := ParseSuit(t[1:])
	if err != nil {
		return Bid{}, fmt.Errorf("invalid bid %q: %w", s, err)
	}
	return NewBid(level, SuitStrain(suit)), nil
}

// MustParseBid is ParseBid that panics on error, for tests and fixtures.
func MustParseBid(s string) Bid {
	b, err := ParseBid(s)
	if err != nil {
		panic(err)
	}
	return b
}

// ParseBids parses a space- or comma-separated call sequence.
func ParseBids(s string) ([]Bid, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t'
	})
	bids := make([]Bid, 0, len(fields))
	for _, f := range fields {
		b, err := ParseBid(f)
		if err != nil {
			return nil, err
		}
		bids = append(bids, b)
	}
	return bids, nil
}
