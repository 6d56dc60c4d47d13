// Package belief replays an auction bid by bid and maintains, per seat,
// monotonically-narrowing HCP and suit-length ranges plus convention tags.
// It uses both explicit inference ("this bid shows X") and implicit denial
// ("the bid not chosen denies Y"). Building a state is a pure function of
// (auction, dealer); nothing is cached between calls.
package belief

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/jlowell/bridgecoach/engine/pkg/bridge"
)

// Forcing is the partnership forcing obligation tracked during replay.
type Forcing int

const (
	NonForcing Forcing = iota
	ForcingOneRound
	GameForce
)

func (f Forcing) String() string {
	switch f {
	case NonForcing:
		return "non_forcing"
	case ForcingOneRound:
		return "forcing_one_round"
	case GameForce:
		return "game_force"
	default:
		return "?"
	}
}

// SeatBelief is everything inferred about one seat's hand so far.
type SeatBelief struct {
	Seat    bridge.Seat
	HCP     Range
	SuitLen [4]Range // indexed by bridge.Suit
	Limited bool     // hand's strength is fully bounded (e.g. weak two, 1NT)
	Tags    map[string]bool

	// Contradictions counts narrow() calls that would have inverted the
	// range and were clamped instead. Nonzero means two inferences
	// disagreed about this hand; diagnosable without breaking replay.
	Contradictions int
}

func newSeatBelief(seat bridge.Seat) *SeatBelief {
	b := &SeatBelief{
		Seat: seat,
		HCP:  NewRange(0, 37),
		Tags: make(map[string]bool),
	}
	for i := range b.SuitLen {
		b.SuitLen[i] = NewRange(0, 13)
	}
	return b
}

// NarrowHCP intersects the seat's HCP range with [min, max].
func (b *SeatBelief) NarrowHCP(min, max int) {
	next, clamped := b.HCP.Narrow(min, max)
	if clamped {
		b.Contradictions++
		log.Warn().Str("seat", b.Seat.String()).Str("have", b.HCP.String()).
			Int("min", min).Int("max", max).Msg("Contradictory HCP inference clamped")
	}
	b.HCP = next
}

// NarrowSuit intersects the seat's length range in one suit with [min, max].
func (b *SeatBelief) NarrowSuit(s bridge.Suit, min, max int) {
	next, clamped := b.SuitLen[s].Narrow(min, max)
	if clamped {
		b.Contradictions++
		log.Warn().Str("seat", b.Seat.String()).Str("suit", s.Name()).
			Str("have", b.SuitLen[s].String()).Int("min", min).Int("max", max).
			Msg("Contradictory suit-length inference clamped")
	}
	b.SuitLen[s] = next
}

// Tag records an append-only idempotent label used by later inference.
func (b *SeatBelief) Tag(name string) {
	b.Tags[name] = true
}

// Tagged reports whether a label has been applied.
func (b *SeatBelief) Tagged(name string) bool {
	return b.Tags[name]
}

// Describe renders the belief as coaching text, e.g.
// "15-17 HCP, hearts 4+, limited".
func (b *SeatBelief) Describe() string {
	var parts []string
	parts = append(parts, b.HCP.String()+" HCP")
	for _, s := range []bridge.Suit{bridge.Spades, bridge.Hearts, bridge.Diamonds, bridge.Clubs} {
		r := b.SuitLen[s]
		switch {
		case r.Min == 0 && r.Max == 13:
			continue
		case r.Exact():
			parts = append(parts, fmt.Sprintf("%s exactly %d", s.Name(), r.Min))
		case r.Max == 13:
			parts = append(parts, fmt.Sprintf("%s %d+", s.Name(), r.Min))
		case r.Min == 0:
			parts = append(parts, fmt.Sprintf("%s at most %d", s.Name(), r.Max))
		default:
			parts = append(parts, fmt.Sprintf("%s %d-%d", s.Name(), r.Min, r.Max))
		}
	}
	if b.Limited {
		parts = append(parts, "limited")
	}
	if len(b.Tags) > 0 {
		tags := make([]string, 0, len(b.Tags))
		for t := range b.Tags {
			tags = append(tags, t)
		}
		sort.Strings(tags)
		parts = append(parts, strings.Join(tags, ", "))
	}
	return strings.Join(parts, ", ")
}

// BiddingState is the full replay result: one belief per seat plus
// partnership-level facts. Immutable once Build returns.
type BiddingState struct {
	Dealer  bridge.Seat
	Beliefs [4]*SeatBelief

	// AgreedSuit per partnership (0 = N/S, 1 = E/W), nil if none agreed.
	AgreedSuit [2]*bridge.Suit

	// Forcing per partnership.
	Forcing [2]Forcing

	opener     bridge.Seat
	openingBid bridge.Bid
	hasOpener  bool
}

// Belief returns the belief for one seat.
func (st *BiddingState) Belief(seat bridge.Seat) *SeatBelief {
	return st.Beliefs[seat]
}

// Opener returns the opening seat and bid, if anyone has opened.
func (st *BiddingState) Opener() (bridge.Seat, bridge.Bid, bool) {
	return st.opener, st.openingBid, st.hasOpener
}

// side maps a seat to its partnership index (0 = N/S, 1 = E/W).
func side(seat bridge.Seat) int {
	return int(seat) % 2
}

// forcePartnership escalates a partnership's forcing level, never lowering it.
func (st *BiddingState) forcePartnership(seat bridge.Seat, f Forcing) {
	if f > st.Forcing[side(seat)] {
		st.Forcing[side(seat)] = f
	}
}

// agree records a trump fit for the seat's partnership.
func (st *BiddingState) agree(seat bridge.Seat, suit bridge.Suit) {
	s := suit
	st.AgreedSuit[side(seat)] = &s
}

// Build replays the auction from the beginning and returns the resulting
// state. Pure: identical auctions produce structurally identical states,
// and belief ranges for any seat only ever shrink as the replay proceeds.
func Build(auction *bridge.Auction) *BiddingState {
	st := &BiddingState{Dealer: auction.Dealer}
	for _, seat := range bridge.AllSeats() {
		st.Beliefs[seat] = newSeatBelief(seat)
	}

	for i, call := range auction.Calls {
		seat := auction.SeatAt(i)
		prefix := &bridge.Auction{Dealer: auction.Dealer, Calls: auction.Calls[:i]}
		st.applyCall(seat, call, i, prefix)
	}
	return st
}

// applyCall dispatches one call to the role-specific inference.
func (st *BiddingState) applyCall(seat bridge.Seat, call bridge.Bid, index int, before *bridge.Auction) {
	if !st.hasOpener {
		if call.IsContract() {
			st.opener = seat
			st.openingBid = call
			st.hasOpener = true
			st.applyOpening(seat, call)
			return
		}
		if call.Type == bridge.BidPass {
			st.applyPassBeforeOpening(seat, index)
		}
		return
	}

	switch {
	case seat == st.opener:
		st.applyOpenerRebid(seat, call, before)
	case seat == st.opener.Partner():
		st.applyResponse(seat, call, before)
	default:
		st.applyDefense(seat, call, before)
	}
}

// applyPassBeforeOpening caps an unopened hand: first- and second-seat
// passes deny 12+, third and fourth seat may be shaded lighter, so the cap
// is looser there.
func (st *BiddingState) applyPassBeforeOpening(seat bridge.Seat, index int) {
	b := st.Beliefs[seat]
	if index <= 1 {
		b.NarrowHCP(0, 11)
	} else {
		b.NarrowHCP(0, 13)
	}
	b.Tag("passed_before_opening")
}
