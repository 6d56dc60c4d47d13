package engine

import (
	"fmt"

	"github.com/jlowell/bridgecoach/engine/pkg/bridge"
)

// Feature is a key in the closed feature space. Schema files referencing a
// feature outside this set fail at load time, not silently at match time.
type Feature string

const (
	// Hand-intrinsic features.
	FeatHCP           Feature = "hcp"
	FeatTotalPoints   Feature = "total_points"
	FeatQuickTricks   Feature = "quick_tricks"
	FeatSpades        Feature = "spades"
	FeatHearts        Feature = "hearts"
	FeatDiamonds      Feature = "diamonds"
	FeatClubs         Feature = "clubs"
	FeatLongestSuit   Feature = "longest_suit"
	FeatLongestLen    Feature = "longest_length"
	FeatSecondSuit    Feature = "second_suit"
	FeatSecondLen     Feature = "second_length"
	FeatBalanced      Feature = "balanced"
	FeatSemiBalanced  Feature = "semi_balanced"
	FeatRuleOf20      Feature = "rule_of_20"
	FeatRuleOf20Value Feature = "rule_of_20_value"
	FeatStopSpades    Feature = "stopper_spades"
	FeatStopHearts    Feature = "stopper_hearts"
	FeatStopDiamonds  Feature = "stopper_diamonds"
	FeatStopClubs     Feature = "stopper_clubs"
	FeatLongestQual   Feature = "longest_quality"

	// Auction-derived features.
	FeatSeatNumber     Feature = "seat_number"     // 1-4 relative to dealer
	FeatOpenerRelation Feature = "opener_relation" // none/self/partner/opponent
	FeatPartnerSuit    Feature = "partner_suit"    // letter of partner's first bid suit
	FeatPartnerLevel   Feature = "partner_level"   // level of partner's last contract bid
	FeatPartnerBid     Feature = "partner_bid"     // partner's last call, normalized
	FeatLastBid        Feature = "last_bid"        // last contract bid in the auction
	FeatOwnBids        Feature = "own_bids"        // contract bids this seat has made
	FeatPassedHand     Feature = "passed_hand"     // this seat passed before acting
	FeatInterference   Feature = "interference"    // opponents have entered the auction
	FeatOpponentsSuit  Feature = "opponents_suit"  // letter of opponents' first bid suit
	FeatVulnerable     Feature = "vulnerable"
	FeatUnfavorableVul Feature = "unfavorable_vul"
	FeatSupportPartner Feature = "partner_support"        // cards held in partner's suit
	FeatOppSuitLen     Feature = "opponents_suit_length"  // cards held in opponents' first suit
	FeatStopOpponents  Feature = "stopper_opponents"      // stopper in opponents' first suit
)

// knownFeatures is the load-time validation set.
var knownFeatures = map[Feature]bool{
	FeatHCP: true, FeatTotalPoints: true, FeatQuickTricks: true,
	FeatSpades: true, FeatHearts: true, FeatDiamonds: true, FeatClubs: true,
	FeatLongestSuit: true, FeatLongestLen: true, FeatSecondSuit: true,
	FeatSecondLen: true, FeatBalanced: true, FeatSemiBalanced: true,
	FeatRuleOf20: true, FeatRuleOf20Value: true,
	FeatStopSpades: true, FeatStopHearts: true, FeatStopDiamonds: true,
	FeatStopClubs: true, FeatSeatNumber: true, FeatOpenerRelation: true,
	FeatPartnerSuit: true, FeatPartnerLevel: true, FeatPartnerBid: true,
	FeatLastBid: true, FeatOwnBids: true, FeatPassedHand: true,
	FeatInterference: true, FeatOpponentsSuit: true, FeatVulnerable: true,
	FeatUnfavorableVul: true, FeatSupportPartner: true, FeatLongestQual: true,
	FeatOppSuitLen: true, FeatStopOpponents: true,
}

// KnownFeature reports whether the name is in the closed feature set.
func KnownFeature(name string) bool {
	return knownFeatures[Feature(name)]
}

// ValueKind tags the variant held by a Value.
type ValueKind int

const (
	KindNum ValueKind = iota
	KindStr
	KindBool
)

// Value is a single feature value: number, string, or boolean.
type Value struct {
	Kind ValueKind
	Num  float64
	Str  string
	Bool bool
}

// NumValue, StrValue, BoolValue, and IntValue construct tagged values.
func NumValue(f float64) Value { return Value{Kind: KindNum, Num: f} }
func StrValue(s string) Value  { return Value{Kind: KindStr, Str: s} }
func BoolValue(b bool) Value   { return Value{Kind: KindBool, Bool: b} }
func IntValue(i int) Value     { return NumValue(float64(i)) }

func (v Value) String() string {
	switch v.Kind {
	case KindNum:
		if v.Num == float64(int64(v.Num)) {
			return fmt.Sprintf("%d", int64(v.Num))
		}
		return fmt.Sprintf("%.1f", v.Num)
	case KindStr:
		return v.Str
	case KindBool:
		if v.Bool {
			return "true"
		}
		return "false"
	}
	return "?"
}

// FeatureVector maps feature keys to values. Built fresh per bid decision
// and treated as immutable afterwards.
type FeatureVector map[Feature]Value

// Num returns the numeric value of a feature, or 0 if absent or non-numeric.
func (fv FeatureVector) Num(f Feature) float64 {
	v, ok := fv[f]
	if !ok || v.Kind != KindNum {
		return 0
	}
	return v.Num
}

// Str returns the string value of a feature, or "" if absent or non-string.
func (fv FeatureVector) Str(f Feature) string {
	v, ok := fv[f]
	if !ok || v.Kind != KindStr {
		return ""
	}
	return v.Str
}

// Bool returns the boolean value of a feature; absent features are false.
func (fv FeatureVector) Bool(f Feature) bool {
	v, ok := fv[f]
	if !ok || v.Kind != KindBool {
		return false
	}
	return v.Bool
}

// ExtractFeatures computes the full feature vector for one bid decision.
// Pure: identical inputs always produce an identical vector.
func ExtractFeatures(hand *bridge.Hand, auction *bridge.Auction, seat bridge.Seat, vul bridge.Vulnerability) FeatureVector {
	fv := FeatureVector{}

	fv[FeatHCP] = IntValue(hand.HCP())
	fv[FeatTotalPoints] = IntValue(hand.TotalPoints())
	fv[FeatQuickTricks] = NumValue(hand.QuickTricks())
	fv[FeatSpades] = IntValue(hand.SuitLength(bridge.Spades))
	fv[FeatHearts] = IntValue(hand.SuitLength(bridge.Hearts))
	fv[FeatDiamonds] = IntValue(hand.SuitLength(bridge.Diamonds))
	fv[FeatClubs] = IntValue(hand.SuitLength(bridge.Clubs))

	longest, longestLen := hand.LongestSuit()
	second, secondLen := hand.SecondSuit()
	fv[FeatLongestSuit] = StrValue(longest.String())
	fv[FeatLongestLen] = IntValue(longestLen)
	fv[FeatLongestQual] = IntValue(hand.SuitQuality(longest))
	fv[FeatSecondSuit] = StrValue(second.String())
	fv[FeatSecondLen] = IntValue(secondLen)

	fv[FeatBalanced] = BoolValue(hand.Balanced())
	fv[FeatSemiBalanced] = BoolValue(hand.SemiBalanced())
	fv[FeatRuleOf20] = BoolValue(hand.RuleOf20())
	fv[FeatRuleOf20Value] = IntValue(hand.RuleOf20Value())
	fv[FeatStopSpades] = BoolValue(hand.HasStopper(bridge.Spades))
	fv[FeatStopHearts] = BoolValue(hand.HasStopper(bridge.Hearts))
	fv[FeatStopDiamonds] = BoolValue(hand.HasStopper(bridge.Diamonds))
	fv[FeatStopClubs] = BoolValue(hand.HasStopper(bridge.Clubs))

	seatNum := (int(seat)-int(auction.Dealer)+4)%4 + 1
	fv[FeatSeatNumber] = IntValue(seatNum)
	fv[FeatVulnerable] = BoolValue(vul.SeatVulnerable(seat))
	fv[FeatUnfavorableVul] = BoolValue(vul.Unfavorable(seat))

	opener, _, opened := auction.Opener()
	relation := "none"
	if opened {
		switch {
		case opener == seat:
			relation = "self"
		case opener == seat.Partner():
			relation = "partner"
		default:
			relation = "opponent"
		}
	}
	fv[FeatOpenerRelation] = StrValue(relation)

	if last, _, ok := auction.LastContract(); ok {
		fv[FeatLastBid] = StrValue(last.String())
	} else {
		fv[FeatLastBid] = StrValue("")
	}

	// Partner's bidding so far.
	partnerSuit := ""
	partnerLevel := 0
	partnerBid := ""
	for _, b := range auction.CallsBy(seat.Partner()) {
		if b.IsContract() {
			if partnerSuit == "" {
				if suit, ok := b.Strain.ToSuit(); ok {
					partnerSuit = suit.String()
				}
			}
			partnerLevel = b.Level
		}
		partnerBid = b.String()
	}
	fv[FeatPartnerSuit] = StrValue(partnerSuit)
	fv[FeatPartnerLevel] = IntValue(partnerLevel)
	fv[FeatPartnerBid] = StrValue(partnerBid)

	if partnerSuit != "" {
		if suit, err := bridge.ParseSuit(partnerSuit); err == nil {
			fv[FeatSupportPartner] = IntValue(hand.SuitLength(suit))
		}
	} else {
		fv[FeatSupportPartner] = IntValue(0)
	}

	// Own history.
	ownBids := 0
	passed := false
	for _, b := range auction.CallsBy(seat) {
		if b.IsContract() {
			ownBids++
		} else if b.Type == bridge.BidPass && ownBids == 0 {
			passed = true
		}
	}
	fv[FeatOwnBids] = IntValue(ownBids)
	fv[FeatPassedHand] = BoolValue(passed)

	// Interference: any opposing non-pass call.
	interference := false
	opponentsSuit := ""
	for i, b := range auction.Calls {
		caller := auction.SeatAt(i)
		if caller.SameSide(seat) || b.Type == bridge.BidPass {
			continue
		}
		interference = true
		if opponentsSuit == "" && b.IsContract() {
			if suit, ok := b.Strain.ToSuit(); ok {
				opponentsSuit = suit.String()
			}
		}
	}
	fv[FeatInterference] = BoolValue(interference)
	fv[FeatOpponentsSuit] = StrValue(opponentsSuit)
	if opponentsSuit != "" {
		if suit, err := bridge.ParseSuit(opponentsSuit); err == nil {
			fv[FeatOppSuitLen] = IntValue(hand.SuitLength(suit))
			fv[FeatStopOpponents] = BoolValue(hand.HasStopper(suit))
		}
	}

	return fv
}
