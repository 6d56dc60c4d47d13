package belief

import (
	"github.com/jlowell/bridgecoach/engine/pkg/bridge"
)

// applyResponse infers from a call by the opener's partner. Convention
// sequences (Stayman, transfers, Blackwood) take precedence over the
// generic classification.
func (st *BiddingState) applyResponse(seat bridge.Seat, call bridge.Bid, before *bridge.Auction) {
	if st.applyConvention(seat, call, before) {
		return
	}
	b := st.Beliefs[seat]

	switch call.Type {
	case bridge.BidPass:
		st.applyResponderPass(seat, before)
		return
	case bridge.BidDouble:
		// Negative double: competing values with the unbid suits.
		b.NarrowHCP(6, 37)
		b.Tag("negative_double")
		return
	case bridge.BidRedouble:
		b.NarrowHCP(10, 37)
		b.Tag("redouble_strength")
		st.forcePartnership(seat, ForcingOneRound)
		return
	}

	// A major shown by a Stayman answer is raisable even though the
	// opening itself named no suit.
	if suit, ok := call.Strain.ToSuit(); ok {
		opb := st.Beliefs[st.opener]
		if (suit == bridge.Hearts && opb.Tagged("stayman_hearts")) ||
			(suit == bridge.Spades && opb.Tagged("stayman_spades")) {
			st.agree(seat, suit)
			b.NarrowSuit(suit, 4, 13)
			if call.Level >= 4 {
				b.NarrowHCP(10, 37)
			}
			b.Tag("major_fit_raise")
			return
		}
	}

	openSuit, openerHasSuit := st.openingBid.Strain.ToSuit()

	switch {
	case openerHasSuit && call.Strain == st.openingBid.Strain:
		st.applyRaise(seat, call, openSuit)
	case call.Strain == bridge.StrainNoTrump:
		st.applyNTResponse(seat, call)
	default:
		st.applyNewSuitResponse(seat, call, before)
	}
}

// applyResponderPass caps the responder. Over an uncontested opening the
// pass denies even the 6 HCP needed for a minimum response; in competition
// the responder may hold a little more with nothing convenient to say.
func (st *BiddingState) applyResponderPass(seat bridge.Seat, before *bridge.Auction) {
	b := st.Beliefs[seat]
	if st.Forcing[side(seat)] != NonForcing {
		// A pass under force is abnormal; infer nothing from it.
		return
	}
	if len(before.CallsBy(seat)) > 0 {
		return
	}
	if before.Contested() {
		b.NarrowHCP(0, 8)
	} else {
		b.NarrowHCP(0, 5)
	}
	b.Tag("weak_response_pass")
}

// applyRaise handles direct support of the opener's suit.
func (st *BiddingState) applyRaise(seat bridge.Seat, call bridge.Bid, suit bridge.Suit) {
	b := st.Beliefs[seat]
	st.agree(seat, suit)
	delta := call.Level - st.openingBid.Level

	switch {
	case delta <= 1:
		b.NarrowHCP(6, 10)
		b.NarrowSuit(suit, 3, 13)
		b.Limited = true
		b.Tag("simple_raise")
	case delta == 2:
		b.NarrowHCP(11, 12)
		b.NarrowSuit(suit, 4, 13)
		b.Limited = true
		b.Tag("jump_raise")
	default:
		// Game raise: either pure strength or preemptive shape with a
		// big fit. Strength stays open but the fit is certain.
		b.NarrowSuit(suit, 4, 13)
		b.Tag("game_raise")
	}
}

// applyNTResponse handles natural notrump responses, which deny a fit and
// limit the hand precisely.
func (st *BiddingState) applyNTResponse(seat bridge.Seat, call bridge.Bid) {
	b := st.Beliefs[seat]
	switch call.Level {
	case 1:
		b.NarrowHCP(6, 10)
		b.Limited = true
		b.Tag("nt_response")
	case 2:
		b.NarrowHCP(11, 12)
		applyBalanced(b)
		b.Limited = true
		b.Tag("nt_response")
	default:
		b.NarrowHCP(13, 15)
		applyBalanced(b)
		b.Limited = true
		b.Tag("nt_response")
	}
	if suit, ok := st.openingBid.Strain.ToSuit(); ok {
		b.NarrowSuit(suit, 0, 2)
	}
}

// applyNewSuitResponse handles a new suit by an unpassed responder, which
// is forcing for one round. The level sets the strength floor.
func (st *BiddingState) applyNewSuitResponse(seat bridge.Seat, call bridge.Bid, before *bridge.Auction) {
	b := st.Beliefs[seat]
	suit, ok := call.Strain.ToSuit()
	if !ok {
		return
	}

	jump := false
	if last, _, has := before.LastContract(); has {
		jump = call.Level > cheapestLevelOver(last, call.Strain)
	}

	switch {
	case call.Level == 1:
		b.NarrowHCP(6, 37)
		b.NarrowSuit(suit, 4, 13)
	case jump:
		b.NarrowHCP(16, 37)
		b.NarrowSuit(suit, 5, 13)
		b.Tag("jump_shift")
		st.forcePartnership(seat, GameForce)
	default:
		b.NarrowHCP(11, 37)
		b.NarrowSuit(suit, 5, 13)
	}

	if !b.Tagged("passed_before_opening") {
		st.forcePartnership(seat, ForcingOneRound)
	}
	b.Tag("new_suit_response")
}

// cheapestLevelOver returns the lowest level at which the strain would be
// a legal bid over last.
func cheapestLevelOver(last bridge.Bid, strain bridge.Strain) int {
	level := last.Level
	if strain <= last.Strain {
		level++
	}
	return level
}
