package belief

import (
	"fmt"

	"github.com/jlowell/bridgecoach/engine/pkg/bridge"
)

// applyConvention recognizes conventional sequences and applies their
// artificial meanings. Returns true if the call was conventional, in which
// case the generic natural classification must not run: a Stayman 2C says
// nothing about clubs.
func (st *BiddingState) applyConvention(seat bridge.Seat, call bridge.Bid, before *bridge.Auction) bool {
	if st.applyBlackwood(seat, call, before) {
		return true
	}
	if !st.hasOpener || st.openingBid.Strain != bridge.StrainNoTrump || st.openingBid.Level > 2 {
		return false
	}
	if before.Contested() {
		return false
	}
	if seat == st.opener.Partner() {
		return st.applyNotrumpResponse(seat, call, before)
	}
	if seat == st.opener {
		return st.applyNotrumpRebid(seat, call, before)
	}
	return false
}

// applyNotrumpResponse handles the responder's artificial calls over a
// partnership 1NT or 2NT opening: the club ask and Jacoby transfers, one
// level higher over 2NT.
func (st *BiddingState) applyNotrumpResponse(seat bridge.Seat, call bridge.Bid, before *bridge.Auction) bool {
	b := st.Beliefs[seat]
	prior := before.CallsBy(seat)

	if len(prior) == 0 && call.IsContract() && call.Level == st.openingBid.Level+1 {
		switch call.Strain {
		case bridge.StrainClubs:
			// The club ask promises a four-card major and says
			// nothing about clubs. Over 1NT it needs invitational
			// values; over 2NT the opener's strength carries it.
			if st.openingBid.Level == 1 {
				b.NarrowHCP(8, 37)
			} else {
				b.NarrowHCP(4, 37)
			}
			b.Tag("stayman")
			st.forcePartnership(seat, ForcingOneRound)
			return true
		case bridge.StrainDiamonds:
			b.NarrowSuit(bridge.Hearts, 5, 13)
			b.Tag("transfer_to_hearts")
			st.forcePartnership(seat, ForcingOneRound)
			return true
		case bridge.StrainHearts:
			b.NarrowSuit(bridge.Spades, 5, 13)
			b.Tag("transfer_to_spades")
			st.forcePartnership(seat, ForcingOneRound)
			return true
		}
	}

	// Responder's continuation after a Stayman answer is natural.
	return false
}

// applyNotrumpRebid handles the notrump opener's artificial rebids:
// Stayman answers and transfer completions. Neither narrows the opener's
// HCP; the notrump opening already limited the hand and an artificial
// answer shows no extra strength.
func (st *BiddingState) applyNotrumpRebid(seat bridge.Seat, call bridge.Bid, before *bridge.Auction) bool {
	b := st.Beliefs[seat]
	partner := st.Beliefs[seat.Partner()]
	if !call.IsContract() {
		return false
	}
	answerLevel := st.openingBid.Level + 1

	switch {
	case partner.Tagged("stayman") && call.Level == answerLevel:
		switch call.Strain {
		case bridge.StrainDiamonds:
			b.NarrowSuit(bridge.Hearts, 0, 3)
			b.NarrowSuit(bridge.Spades, 0, 3)
			b.Tag("stayman_deny")
			return true
		case bridge.StrainHearts:
			b.NarrowSuit(bridge.Hearts, 4, 13)
			b.Tag("stayman_hearts")
			return true
		case bridge.StrainSpades:
			b.NarrowSuit(bridge.Spades, 4, 13)
			b.NarrowSuit(bridge.Hearts, 0, 3)
			b.Tag("stayman_spades")
			return true
		}
	case partner.Tagged("transfer_to_hearts"):
		if call.Strain == bridge.StrainHearts && call.Level == answerLevel {
			b.Tag("transfer_complete")
			return true
		}
		if call.Strain == bridge.StrainHearts && call.Level == 3 && st.openingBid.Level == 1 {
			b.NarrowHCP(17, 17)
			b.NarrowSuit(bridge.Hearts, 4, 13)
			b.Tag("super_accept")
			return true
		}
	case partner.Tagged("transfer_to_spades"):
		if call.Strain == bridge.StrainSpades && call.Level == answerLevel {
			b.Tag("transfer_complete")
			return true
		}
		if call.Strain == bridge.StrainSpades && call.Level == 3 && st.openingBid.Level == 1 {
			b.NarrowHCP(17, 17)
			b.NarrowSuit(bridge.Spades, 4, 13)
			b.Tag("super_accept")
			return true
		}
	}
	return false
}

// applyBlackwood recognizes 4NT as an ace ask once a trump suit is agreed
// or the partnership is committed to game, and the step responses to it.
// Without either, 4NT stays natural (a quantitative raise).
func (st *BiddingState) applyBlackwood(seat bridge.Seat, call bridge.Bid, before *bridge.Auction) bool {
	b := st.Beliefs[seat]
	partner := st.Beliefs[seat.Partner()]

	if call.IsContract() && call.Level == 4 && call.Strain == bridge.StrainNoTrump &&
		(st.AgreedSuit[side(seat)] != nil || st.Forcing[side(seat)] == GameForce) {
		b.Tag("blackwood_ask")
		st.forcePartnership(seat, ForcingOneRound)
		return true
	}

	if partner.Tagged("blackwood_ask") && !partner.Tagged("blackwood_answered") &&
		call.IsContract() && call.Level == 5 && call.Strain != bridge.StrainNoTrump {
		aces := int(call.Strain) // 5C=0, 5D=1, 5H=2, 5S=3
		b.Tag(fmt.Sprintf("aces_%d", aces))
		partner.Tag("blackwood_answered")
		return true
	}
	return false
}
