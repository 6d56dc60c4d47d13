package belief

import (
	"github.com/jlowell/bridgecoach/engine/pkg/bridge"
)

// applyOpenerRebid infers from the opener's second and later calls.
// Rebids split the unlimited opening range into minimum, invitational,
// and strong bands.
func (st *BiddingState) applyOpenerRebid(seat bridge.Seat, call bridge.Bid, before *bridge.Auction) {
	if st.applyConvention(seat, call, before) {
		return
	}
	b := st.Beliefs[seat]

	switch call.Type {
	case bridge.BidPass:
		// Passing out partner's limited response shows a minimum.
		if st.Forcing[side(seat)] == NonForcing {
			b.NarrowHCP(0, 15)
			b.Limited = true
		}
		return
	case bridge.BidDouble, bridge.BidRedouble:
		return
	}

	if b.Limited {
		// Limited openings (1NT, weak twos) already told the story;
		// later bids refine shape at most.
		st.applyLimitedOpenerRebid(seat, call)
		return
	}

	partnerSuit := st.lastSuitBidBy(before, seat.Partner())
	openSuit, openerHasSuit := st.openingBid.Strain.ToSuit()

	switch {
	case partnerSuit != nil && call.Strain == bridge.SuitStrain(*partnerSuit):
		st.applyResponderRaise(seat, call, *partnerSuit, before)
	case call.Strain == bridge.StrainNoTrump:
		st.applyNTRebid(seat, call)
	case openerHasSuit && call.Strain == st.openingBid.Strain:
		st.applySuitRebid(seat, call, openSuit)
	default:
		st.applySecondSuit(seat, call, before)
	}
}

// lastSuitBidBy returns the suit of the seat's most recent natural suit
// bid, or nil.
func (st *BiddingState) lastSuitBidBy(a *bridge.Auction, seat bridge.Seat) *bridge.Suit {
	calls := a.CallsBy(seat)
	for i := len(calls) - 1; i >= 0; i-- {
		if !calls[i].IsContract() {
			continue
		}
		if suit, ok := calls[i].Strain.ToSuit(); ok {
			return &suit
		}
	}
	return nil
}

// applyLimitedOpenerRebid reads shape refinements from an already-limited
// opener, e.g. a weak two bidder raising itself.
func (st *BiddingState) applyLimitedOpenerRebid(seat bridge.Seat, call bridge.Bid) {
	b := st.Beliefs[seat]
	if suit, ok := call.Strain.ToSuit(); ok {
		if open, has := st.openingBid.Strain.ToSuit(); has && suit == open {
			b.NarrowSuit(suit, b.SuitLen[suit].Min+1, 13)
		}
	}
}

// applyResponderRaise handles the opener supporting the responder's suit.
func (st *BiddingState) applyResponderRaise(seat bridge.Seat, call bridge.Bid, suit bridge.Suit, before *bridge.Auction) {
	b := st.Beliefs[seat]
	st.agree(seat, suit)
	b.NarrowSuit(suit, 4, 13)

	jump := false
	if last, _, has := before.LastContract(); has {
		jump = call.Level > cheapestLevelOver(last, call.Strain)
	}
	if jump {
		b.NarrowHCP(16, 18)
		b.Tag("jump_raise")
	} else {
		b.NarrowHCP(12, 15)
		b.Limited = true
		b.Tag("minimum_raise")
	}
}

// applyNTRebid handles the opener's notrump rebids, which show a balanced
// hand in a narrow band.
func (st *BiddingState) applyNTRebid(seat bridge.Seat, call bridge.Bid) {
	b := st.Beliefs[seat]
	switch call.Level {
	case 1:
		b.NarrowHCP(12, 14)
	case 2:
		b.NarrowHCP(18, 19)
	default:
		b.NarrowHCP(19, 21)
	}
	applyBalanced(b)
	b.Limited = true
	b.Tag("nt_rebid")
}

// applySuitRebid handles the opener rebidding the opened suit, promising
// extra length.
func (st *BiddingState) applySuitRebid(seat bridge.Seat, call bridge.Bid, suit bridge.Suit) {
	b := st.Beliefs[seat]
	b.NarrowSuit(suit, 6, 13)
	delta := call.Level - st.openingBid.Level
	if delta >= 2 {
		b.NarrowHCP(16, 18)
		b.Tag("jump_rebid")
	} else {
		b.NarrowHCP(12, 15)
		b.Limited = true
		b.Tag("minimum_rebid")
	}
}

// applySecondSuit handles a new suit by the opener. A reverse (a second
// suit ranking above the first at the two level) shows extras and forces.
func (st *BiddingState) applySecondSuit(seat bridge.Seat, call bridge.Bid, before *bridge.Auction) {
	b := st.Beliefs[seat]
	suit, ok := call.Strain.ToSuit()
	if !ok {
		return
	}
	b.NarrowSuit(suit, 4, 13)
	b.Tag("second_suit")

	if _, has := st.openingBid.Strain.ToSuit(); has {
		reverse := call.Level >= 2 && call.Strain > st.openingBid.Strain && call.Level > st.openingBid.Level
		if reverse {
			b.NarrowHCP(17, 37)
			b.Tag("reverse")
			st.forcePartnership(seat, ForcingOneRound)
			return
		}
	}
	b.NarrowHCP(12, 18)
}
