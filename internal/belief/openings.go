package belief

import (
	"fmt"

	"github.com/jlowell/bridgecoach/engine/pkg/bridge"
)

// openingShow is the inference attached to one opening bid: an HCP band,
// a length band in the bid suit (zero value means no suit inference), and
// whether the bid fully limits the hand.
type openingShow struct {
	hcpMin, hcpMax   int
	suitMin, suitMax int
	balanced         bool
	limited          bool
	tag              string
}

// openingTable maps an opening bid (by its compact string) to what it
// shows. One-level suit openings admit shaded 10-counts that satisfy the
// Rule of 20, so their floor is 10 rather than 12.
var openingTable = map[string]openingShow{
	"1C":  {hcpMin: 10, hcpMax: 21, suitMin: 3, suitMax: 13},
	"1D":  {hcpMin: 10, hcpMax: 21, suitMin: 3, suitMax: 13},
	"1H":  {hcpMin: 10, hcpMax: 21, suitMin: 5, suitMax: 13},
	"1S":  {hcpMin: 10, hcpMax: 21, suitMin: 5, suitMax: 13},
	"1NT": {hcpMin: 15, hcpMax: 17, balanced: true, limited: true, tag: "notrump_opening"},
	"2C":  {hcpMin: 22, hcpMax: 37, tag: "strong_opening"},
	"2D":  {hcpMin: 6, hcpMax: 10, suitMin: 6, suitMax: 6, limited: true, tag: "weak_two"},
	"2H":  {hcpMin: 6, hcpMax: 10, suitMin: 6, suitMax: 6, limited: true, tag: "weak_two"},
	"2S":  {hcpMin: 6, hcpMax: 10, suitMin: 6, suitMax: 6, limited: true, tag: "weak_two"},
	"2NT": {hcpMin: 20, hcpMax: 21, balanced: true, limited: true, tag: "notrump_opening"},
	"3C":  {hcpMin: 5, hcpMax: 9, suitMin: 7, suitMax: 13, limited: true, tag: "preempt"},
	"3D":  {hcpMin: 5, hcpMax: 9, suitMin: 7, suitMax: 13, limited: true, tag: "preempt"},
	"3H":  {hcpMin: 5, hcpMax: 9, suitMin: 7, suitMax: 13, limited: true, tag: "preempt"},
	"3S":  {hcpMin: 5, hcpMax: 9, suitMin: 7, suitMax: 13, limited: true, tag: "preempt"},
}

func init() {
	if err := validateOpeningTable(); err != nil {
		panic(err)
	}
}

// validateOpeningTable rejects internally inconsistent table entries at
// startup instead of letting them surface as clamped contradictions later.
func validateOpeningTable() error {
	for bid, show := range openingTable {
		if _, err := bridge.ParseBid(bid); err != nil {
			return fmt.Errorf("opening table: bad bid %q: %w", bid, err)
		}
		if show.hcpMin > show.hcpMax {
			return fmt.Errorf("opening table %s: inverted HCP band %d-%d", bid, show.hcpMin, show.hcpMax)
		}
		if show.suitMax > 0 && show.suitMin > show.suitMax {
			return fmt.Errorf("opening table %s: inverted length band %d-%d", bid, show.suitMin, show.suitMax)
		}
		if show.balanced && show.suitMax > 0 {
			return fmt.Errorf("opening table %s: balanced entry with a suit band", bid)
		}
	}
	return nil
}

// applyOpening applies the table entry for an opening bid. Unknown
// openings (freak preempts at the four level and above) get a generic
// preempt reading.
func (st *BiddingState) applyOpening(seat bridge.Seat, bid bridge.Bid) {
	b := st.Beliefs[seat]
	show, ok := openingTable[bid.String()]
	if !ok {
		if suit, has := bid.Strain.ToSuit(); has && bid.Level >= 4 {
			b.NarrowHCP(5, 9)
			b.NarrowSuit(suit, 7, 13)
			b.Limited = true
			b.Tag("preempt")
		}
		return
	}

	b.NarrowHCP(show.hcpMin, show.hcpMax)
	if show.suitMax > 0 {
		if suit, has := bid.Strain.ToSuit(); has {
			b.NarrowSuit(suit, show.suitMin, show.suitMax)
		}
	}
	if show.balanced {
		applyBalanced(b)
	}
	if show.limited {
		b.Limited = true
	}
	if show.tag != "" {
		b.Tag(show.tag)
	}
	if show.tag == "strong_opening" {
		st.forcePartnership(seat, ForcingOneRound)
	}
}

// applyBalanced narrows every suit to the lengths a balanced hand can hold:
// no singleton or void, at most one doubleton, no six-card suit.
func applyBalanced(b *SeatBelief) {
	for s := range b.SuitLen {
		b.NarrowSuit(bridge.Suit(s), 2, 5)
	}
	b.Tag("balanced")
}
