package belief

import (
	"github.com/jlowell/bridgecoach/engine/pkg/bridge"
)

// applyDefense infers from calls by the opening side's opponents: takeout
// doubles, overcalls, and advances of an overcall.
func (st *BiddingState) applyDefense(seat bridge.Seat, call bridge.Bid, before *bridge.Auction) {
	b := st.Beliefs[seat]
	prior := before.CallsBy(seat)
	actedBefore := len(prior) > countPasses(prior)

	switch call.Type {
	case bridge.BidPass:
		if !actedBefore && len(prior) == 0 {
			// A direct pass over the opening denies the values for a
			// takeout double or a sound overcall.
			b.NarrowHCP(0, 14)
			b.Tag("defensive_pass")
		}
		return
	case bridge.BidDouble:
		if !actedBefore {
			st.applyTakeoutDouble(seat)
		}
		return
	case bridge.BidRedouble:
		return
	}

	if actedBefore {
		return
	}
	if partnerSuit := st.lastSuitBidBy(before, seat.Partner()); partnerSuit != nil {
		st.applyAdvance(seat, call, *partnerSuit)
		return
	}
	st.applyOvercall(seat, call, before)
}

func countPasses(calls []bridge.Bid) int {
	n := 0
	for _, c := range calls {
		if c.Type == bridge.BidPass {
			n++
		}
	}
	return n
}

// applyTakeoutDouble shows opening values, shortness in the opened suit,
// and support for the others. The shapely sub-minimum double is a question
// of soundness, not of inference: the belief floor stays at 12.
func (st *BiddingState) applyTakeoutDouble(seat bridge.Seat) {
	b := st.Beliefs[seat]
	b.NarrowHCP(12, 37)
	b.Tag("takeout_double")
	openSuit, ok := st.openingBid.Strain.ToSuit()
	if !ok {
		return
	}
	b.NarrowSuit(openSuit, 0, 2)
	for s := bridge.Clubs; s <= bridge.Spades; s++ {
		if s != openSuit {
			b.NarrowSuit(s, 3, 13)
		}
	}
}

// applyOvercall classifies a first-time contract bid over the opponents'
// opening by its level relative to the cheapest legal one.
func (st *BiddingState) applyOvercall(seat bridge.Seat, call bridge.Bid, before *bridge.Auction) {
	b := st.Beliefs[seat]

	if call.Strain == bridge.StrainNoTrump {
		if call.Level == 1 {
			b.NarrowHCP(15, 18)
			applyBalanced(b)
			b.Limited = true
			b.Tag("notrump_overcall")
		}
		return
	}

	suit, ok := call.Strain.ToSuit()
	if !ok {
		return
	}
	cheapest := call.Level
	if last, _, has := before.LastContract(); has {
		cheapest = cheapestLevelOver(last, call.Strain)
	}

	switch {
	case call.Level > cheapest:
		// Weak jump overcall: preemptive, long suit.
		b.NarrowHCP(5, 10)
		b.NarrowSuit(suit, 6, 13)
		b.Limited = true
		b.Tag("weak_jump_overcall")
	case call.Level >= 2:
		b.NarrowHCP(10, 17)
		b.NarrowSuit(suit, 5, 13)
		b.Tag("overcall")
	default:
		b.NarrowHCP(8, 16)
		b.NarrowSuit(suit, 5, 13)
		b.Limited = true
		b.Tag("overcall")
	}
}

// applyAdvance handles the overcaller's partner. Only the direct raise
// carries a firm inference; new suits by the advancer are wide-ranging.
func (st *BiddingState) applyAdvance(seat bridge.Seat, call bridge.Bid, partnerSuit bridge.Suit) {
	b := st.Beliefs[seat]
	suit, ok := call.Strain.ToSuit()
	if !ok {
		return
	}
	if suit == partnerSuit {
		st.agree(seat, suit)
		b.NarrowHCP(6, 10)
		b.NarrowSuit(suit, 3, 13)
		b.Limited = true
		b.Tag("overcall_raise")
		return
	}
	b.NarrowHCP(8, 37)
	b.NarrowSuit(suit, 5, 13)
	b.Tag("advance_new_suit")
}
