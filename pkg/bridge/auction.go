package bridge

import (
	"fmt"
	"strings"
)

// Seat is a table position. Seats advance clockwise N -> E -> S -> W.
type Seat int

const (
	North Seat = iota
	East
	South
	West
)

// AllSeats lists the seats in clockwise order from North.
func AllSeats() []Seat {
	return []Seat{North, East, South, West}
}

func (s Seat) String() string {
	switch s {
	case North:
		return "N"
	case East:
		return "E"
	case South:
		return "S"
	case West:
		return "W"
	default:
		return "?"
	}
}

// Next returns the seat to the left (next to call).
func (s Seat) Next() Seat {
	return (s + 1) % 4
}

// Partner returns the seat across the table.
func (s Seat) Partner() Seat {
	return (s + 2) % 4
}

// LHO returns the left-hand opponent.
func (s Seat) LHO() Seat {
	return (s + 1) % 4
}

// RHO returns the right-hand opponent.
func (s Seat) RHO() Seat {
	return (s + 3) % 4
}

// SameSide reports whether two seats are partners (or the same seat).
func (s Seat) SameSide(other Seat) bool {
	return s%2 == other%2
}

// ParseSeat accepts a seat letter or full name.
func ParseSeat(v string) (Seat, error) {
	switch strings.ToUpper(strings.TrimSpace(v)) {
	case "N", "NORTH":
		return North, nil
	case "E", "EAST":
		return East, nil
	case "S", "SOUTH":
		return South, nil
	case "W", "WEST":
		return West, nil
	}
	return 0, fmt.Errorf("invalid seat %q", v)
}

// Vulnerability is the deal's vulnerability condition.
type Vulnerability int

const (
	VulNone Vulnerability = iota
	VulNS
	VulEW
	VulBoth
)

func (v Vulnerability) String() string {
	switch v {
	case VulNone:
		return "none"
	case VulNS:
		return "ns"
	case VulEW:
		return "ew"
	case VulBoth:
		return "both"
	default:
		return "?"
	}
}

// SeatVulnerable reports whether the given seat's side is vulnerable.
func (v Vulnerability) SeatVulnerable(s Seat) bool {
	ns := s == North || s == South
	switch v {
	case VulBoth:
		return true
	case VulNS:
		return ns
	case VulEW:
		return !ns
	}
	return false
}

// Unfavorable reports vulnerable-against-not, the worst condition for
// marginal competitive actions.
func (v Vulnerability) Unfavorable(s Seat) bool {
	return v.SeatVulnerable(s) && !v.SeatVulnerable(s.Next())
}

// Auction is an ordered call sequence starting from the dealer. An empty
// auction is valid.
type Auction struct {
	Dealer Seat
	Calls  []Bid
}

// NewAuction returns an empty auction with the given dealer.
func NewAuction(dealer Seat) *Auction {
	return &Auction{Dealer: dealer}
}

// ParseAuction builds an auction from a call string like "1NT P 2C P".
func ParseAuction(dealer Seat, calls string) (*Auction, error) {
	bids, err := ParseBids(calls)
	if err != nil {
		return nil, err
	}
	return &Auction{Dealer: dealer, Calls: bids}, nil
}

// SeatAt returns the seat that made the i-th call.
func (a *Auction) SeatAt(i int) Seat {
	return Seat((int(a.Dealer) + i) % 4)
}

// NextSeat returns the seat due to call next.
func (a *Auction) NextSeat() Seat {
	return a.SeatAt(len(a.Calls))
}

// Extend returns a copy of the auction with one more call appended. The
// receiver is not modified.
func (a *Auction) Extend(b Bid) *Auction {
	calls := make([]Bid, len(a.Calls), len(a.Calls)+1)
	copy(calls, a.Calls)
	return &Auction{Dealer: a.Dealer, Calls: append(calls, b)}
}

// LastContract returns the most recent contract bid, its index, and whether
// any contract bid exists.
func (a *Auction) LastContract() (Bid, int, bool) {
	for i := len(a.Calls) - 1; i >= 0; i-- {
		if a.Calls[i].IsContract() {
			return a.Calls[i], i, true
		}
	}
	return Bid{}, -1, false
}

// CallsBy returns the calls made by one seat, in order.
func (a *Auction) CallsBy(seat Seat) []Bid {
	var out []Bid
	for i, b := range a.Calls {
		if a.SeatAt(i) == seat {
			out = append(out, b)
		}
	}
	return out
}

// Opener returns the seat that made the first contract bid, if any.
func (a *Auction) Opener() (Seat, Bid, bool) {
	for i, b := range a.Calls {
		if b.IsContract() {
			return a.SeatAt(i), b, true
		}
	}
	return 0, Bid{}, false
}

// IsOver reports whether the auction has ended: three passes after any
// contract bid, or four initial passes.
func (a *Auction) IsOver() bool {
	n := len(a.Calls)
	if n < 3 {
		return false
	}
	trailing := 0
	for i := n - 1; i >= 0 && a.Calls[i].Type == BidPass; i-- {
		trailing++
	}
	if trailing == n {
		return n >= 4
	}
	return trailing >= 3
}

// Contested reports whether both sides have made a contract bid or double.
func (a *Auction) Contested() bool {
	var nsActed, ewActed bool
	for i, b := range a.Calls {
		if b.Type == BidPass {
			continue
		}
		if a.SeatAt(i)%2 == 0 {
			nsActed = true
		} else {
			ewActed = true
		}
	}
	return nsActed && ewActed
}

// OpponentActedSince reports whether an opponent of the given seat has made
// a non-pass call at or after index from. Used to release forcing
// obligations once the auction turns competitive.
func (a *Auction) OpponentActedSince(seat Seat, from int) bool {
	if from < 0 {
		from = 0
	}
	for i := from; i < len(a.Calls); i++ {
		if a.Calls[i].Type == BidPass {
			continue
		}
		if !a.SeatAt(i).SameSide(seat) {
			return true
		}
	}
	return false
}

// Legal reports whether the bid may be made now. Contract bids must beat
// the last contract bid; Double requires an opposing undoubled contract;
// Redouble requires an opposing double.
func (a *Auction) Legal(b Bid) bool {
	seat := a.NextSeat()
	switch b.Type {
	case BidPass:
		return true
	case BidContract:
		last, _, ok := a.LastContract()
		if !ok {
			return true
		}
		return b.Beats(last)
	case BidDouble:
		_, idx, ok := a.LastContract()
		if !ok {
			return false
		}
		if a.SeatAt(idx).SameSide(seat) {
			return false
		}
		// No intervening double or redouble.
		for i := idx + 1; i < len(a.Calls); i++ {
			if a.Calls[i].Type != BidPass {
				return false
			}
		}
		return true
	case BidRedouble:
		// Find the last non-pass call; it must be an opposing double.
		for i := len(a.Calls) - 1; i >= 0; i-- {
			if a.Calls[i].Type == BidPass {
				continue
			}
			return a.Calls[i].Type == BidDouble && !a.SeatAt(i).SameSide(seat)
		}
		return false
	}
	return false
}

// String renders the call sequence in compact form.
func (a *Auction) String() string {
	parts := make([]string, len(a.Calls))
	for i, b := range a.Calls {
		parts[i] = b.String()
	}
	return strings.Join(parts, " ")
}
