package bridge

import (
	"fmt"
	"sort"
	"strings"
)

// Hand holds thirteen cards grouped by suit, ranks descending within each suit.
type Hand struct {
	suits [4][]Rank // indexed by Suit
}

// ParseHand parses dotted hand notation: spades.hearts.diamonds.clubs,
// e.g. "AKQ32.54.KJ9.T87". A void suit is an empty segment ("AKQJ2..T9876.543").
func ParseHand(s string) (*Hand, error) {
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) != 4 {
		return nil, fmt.Errorf("hand %q: expected 4 dot-separated suits, got %d", s, len(parts))
	}

	h := &Hand{}
	order := []Suit{Spades, Hearts, Diamonds, Clubs}
	total := 0
	for i, part := range parts {
		suit := order[i]
		for j := 0; j < len(part); j++ {
			c := part[j]
			// Accept "10" as an alternative spelling of T.
			if c == '1' && j+1 < len(part) && part[j+1] == '0' {
				h.suits[suit] = append(h.suits[suit], Ten)
				j++
				total++
				continue
			}
			r, err := ParseRank(c)
			if err != nil {
				return nil, fmt.Errorf("hand %q: %w", s, err)
			}
			h.suits[suit] = append(h.suits[suit], r)
			total++
		}
		sort.Slice(h.suits[suit], func(a, b int) bool { return h.suits[suit][a] > h.suits[suit][b] })
	}

	if total != 13 {
		return nil, fmt.Errorf("hand %q: expected 13 cards, got %d", s, total)
	}

	for _, suit := range order {
		seen := make(map[Rank]bool)
		for _, r := range h.suits[suit] {
			if seen[r] {
				return nil, fmt.Errorf("hand %q: duplicate %s in %s", s, r, suit.Name())
			}
			seen[r] = true
		}
	}
	return h, nil
}

// MustParseHand is ParseHand that panics on error, for tests and fixtures.
func MustParseHand(s string) *Hand {
	h, err := ParseHand(s)
	if err != nil {
		panic(err)
	}
	return h
}

func (h *Hand) String() string {
	var b strings.Builder
	order := []Suit{Spades, Hearts, Diamonds, Clubs}
	for i, suit := range order {
		if i > 0 {
			b.WriteByte('.')
		}
		for _, r := range h.suits[suit] {
			b.WriteString(r.String())
		}
	}
	return b.String()
}

// Ranks returns the ranks held in the given suit, descending.
func (h *Hand) Ranks(s Suit) []Rank {
	return h.suits[s]
}

// SuitLength returns the number of cards held in the given suit.
func (h *Hand) SuitLength(s Suit) int {
	return len(h.suits[s])
}

// HCP returns the hand's high-card points (A=4, K=3, Q=2, J=1).
func (h *Hand) HCP() int {
	total := 0
	for _, ranks := range h.suits {
		for _, r := range ranks {
			total += r.HCP()
		}
	}
	return total
}

// SuitHCP returns the high-card points held in a single suit.
func (h *Hand) SuitHCP(s Suit) int {
	total := 0
	for _, r := range h.suits[s] {
		total += r.HCP()
	}
	return total
}

// Shape returns the four suit lengths sorted descending, e.g. [5 4 3 1].
func (h *Hand) Shape() [4]int {
	var shape [4]int
	for i, ranks := range h.suits {
		shape[i] = len(ranks)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(shape[:])))
	return shape
}

// LongestSuit returns the longest suit and its length. Ties prefer the
// higher-ranking suit, matching standard bidding practice for 4-4 and 5-5.
func (h *Hand) LongestSuit() (Suit, int) {
	best := Clubs
	bestLen := len(h.suits[Clubs])
	for _, s := range []Suit{Diamonds, Hearts, Spades} {
		if len(h.suits[s]) >= bestLen {
			best = s
			bestLen = len(h.suits[s])
		}
	}
	return best, bestLen
}

// SecondSuit returns the second-longest suit and its length, skipping the
// longest. Ties prefer the higher-ranking suit.
func (h *Hand) SecondSuit() (Suit, int) {
	longest, _ := h.LongestSuit()
	best := Clubs
	bestLen := -1
	for _, s := range AllSuits() {
		if s == longest {
			continue
		}
		if len(h.suits[s]) >= bestLen {
			best = s
			bestLen = len(h.suits[s])
		}
	}
	return best, bestLen
}

// Balanced reports 4-3-3-3, 4-4-3-2, or 5-3-3-2 shape.
func (h *Hand) Balanced() bool {
	shape := h.Shape()
	switch shape {
	case [4]int{4, 3, 3, 3}, [4]int{4, 4, 3, 2}, [4]int{5, 3, 3, 2}:
		return true
	}
	return false
}

// SemiBalanced reports balanced shapes plus 5-4-2-2 and 6-3-2-2.
func (h *Hand) SemiBalanced() bool {
	if h.Balanced() {
		return true
	}
	shape := h.Shape()
	switch shape {
	case [4]int{5, 4, 2, 2}, [4]int{6, 3, 2, 2}:
		return true
	}
	return false
}

// QuickTricks returns defensive quick tricks in half-trick units
// (AK=2, AQ=1.5, A=1, KQ=1, Kx=0.5), summed across suits.
func (h *Hand) QuickTricks() float64 {
	total := 0.0
	for _, ranks := range h.suits {
		hasA, hasK, hasQ := false, false, false
		for _, r := range ranks {
			switch r {
			case Ace:
				hasA = true
			case King:
				hasK = true
			case Queen:
				hasQ = true
			}
		}
		switch {
		case hasA && hasK:
			total += 2.0
		case hasA && hasQ:
			total += 1.5
		case hasA:
			total += 1.0
		case hasK && hasQ:
			total += 1.0
		case hasK && len(ranks) >= 2:
			total += 0.5
		}
	}
	return total
}

// HasStopper reports whether the hand can reasonably stop the given suit in
// notrump: A, Kx, Qxx, or Jxxx.
func (h *Hand) HasStopper(s Suit) bool {
	ranks := h.suits[s]
	n := len(ranks)
	for _, r := range ranks {
		switch r {
		case Ace:
			return true
		case King:
			if n >= 2 {
				return true
			}
		case Queen:
			if n >= 3 {
				return true
			}
		case Jack:
			if n >= 4 {
				return true
			}
		}
	}
	return false
}

// SuitQuality scores a suit 0-10 for overcall purposes: honors weighted by
// rank plus length above four. Two of the top three honors in a five-card
// suit scores around 6.
func (h *Hand) SuitQuality(s Suit) int {
	q := 0
	for _, r := range h.suits[s] {
		switch r {
		case Ace, King:
			q += 2
		case Queen:
			q += 1
		case Jack, Ten:
			// Only count J/T when backed by a higher honor.
			if h.suits[s][0] >= Queen {
				q++
			}
		}
	}
	if n := len(h.suits[s]); n > 4 {
		q += n - 4
	}
	return q
}

// DistributionPoints returns long-suit points: one per card beyond four in
// each suit. Used for total-point evaluation alongside HCP.
func (h *Hand) DistributionPoints() int {
	total := 0
	for _, ranks := range h.suits {
		if len(ranks) > 4 {
			total += len(ranks) - 4
		}
	}
	return total
}

// TotalPoints is HCP plus distribution points.
func (h *Hand) TotalPoints() int {
	return h.HCP() + h.DistributionPoints()
}

// RuleOf20 reports whether HCP plus the two longest suit lengths is at
// least twenty, the standard light-opening test.
func (h *Hand) RuleOf20() bool {
	return h.RuleOf20Value() >= 20
}

// RuleOf20Value returns HCP plus the lengths of the two longest suits.
func (h *Hand) RuleOf20Value() int {
	shape := h.Shape()
	return h.HCP() + shape[0] + shape[1]
}
