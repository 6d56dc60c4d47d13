package engine

import (
	"fmt"

	"github.com/jlowell/bridgecoach/engine/pkg/bridge"
)

// Verdict is the governor's judgment on a proposed bid's soundness. The
// governor never selects or rewrites bids; it only adjudicates, so it can
// run standalone against any (hand, bid, context) triple for feedback.
type Verdict struct {
	Valid       bool
	Rule        string // which floor table decided
	Reason      string
	HCP         int
	RequiredHCP int
}

func approve(rule string, hcp, required int, reason string) Verdict {
	return Verdict{Valid: true, Rule: rule, Reason: reason, HCP: hcp, RequiredHCP: required}
}

func reject(rule string, hcp, required int, reason string) Verdict {
	return Verdict{Valid: false, Rule: rule, Reason: reason, HCP: hcp, RequiredHCP: required}
}

// ValidateBid applies the hard-floor tables to a proposed bid. The check is
// orthogonal to schema match quality: a rule can match well and still be
// unsound here, and vice versa.
func ValidateBid(hand *bridge.Hand, bid bridge.Bid, auction *bridge.Auction, seat bridge.Seat, vul bridge.Vulnerability) Verdict {
	hcp := hand.HCP()

	if bid.Type == bridge.BidPass || bid.Type == bridge.BidRedouble {
		return approve("none", hcp, 0, "pass and redouble carry no floor")
	}

	_, _, opened := auction.Opener()
	if !opened {
		if bid.Type == bridge.BidDouble {
			return reject("opening", hcp, 0, "nothing to double")
		}
		return validateOpening(hand, vul, seat, hcp)
	}

	opener, _, _ := auction.Opener()
	if bid.Type == bridge.BidDouble {
		return validateTakeoutDouble(hand, auction, hcp)
	}

	if opener.SameSide(seat) {
		return validateResponse(hand, bid, hcp)
	}
	return validateOvercall(hand, bid, auction, hcp)
}

// validateOpening enforces 12+ HCP, or 10-11 HCP with the Rule of 20. The
// light opening is denied at unfavorable vulnerability.
func validateOpening(hand *bridge.Hand, vul bridge.Vulnerability, seat bridge.Seat, hcp int) Verdict {
	const rule = "rule_of_20"
	if hcp >= 12 {
		return approve(rule, hcp, 12, "full opening values")
	}
	if hcp >= 10 && hand.RuleOf20() {
		if vul.Unfavorable(seat) {
			return reject(rule, hcp, 12, fmt.Sprintf("rule of 20 opening (%d) denied at unfavorable vulnerability", hand.RuleOf20Value()))
		}
		return approve(rule, hcp, 10, fmt.Sprintf("light opening: HCP plus two longest suits = %d", hand.RuleOf20Value()))
	}
	if hcp >= 10 {
		return reject(rule, hcp, 12, fmt.Sprintf("HCP plus two longest suits = %d, needs 20", hand.RuleOf20Value()))
	}
	return reject(rule, hcp, 12, "below opening strength")
}

// validateResponse enforces the Rule of 6: a response at level L needs
// 6+(L-1) HCP. Extra length in the bid suit compensates up to two points.
func validateResponse(hand *bridge.Hand, bid bridge.Bid, hcp int) Verdict {
	const rule = "rule_of_6"
	required := 6 + (bid.Level - 1)

	if suit, ok := bid.Strain.ToSuit(); ok {
		if extra := hand.SuitLength(suit) - 4; extra > 0 {
			comp := extra
			if comp > 2 {
				comp = 2
			}
			required -= comp
		}
	}

	if hcp >= required {
		return approve(rule, hcp, required, fmt.Sprintf("meets response floor for the %d level", bid.Level))
	}
	return reject(rule, hcp, required, fmt.Sprintf("a level-%d response needs %d HCP", bid.Level, required))
}

// validateOvercall enforces level- and suit-quality-dependent floors, with
// separate bands for weak and strong jump overcalls.
func validateOvercall(hand *bridge.Hand, bid bridge.Bid, auction *bridge.Auction, hcp int) Verdict {
	suit, ok := bid.Strain.ToSuit()
	if !ok {
		// Notrump overcalls ride the response floor table.
		return validateResponse(hand, bid, hcp)
	}
	length := hand.SuitLength(suit)
	quality := hand.SuitQuality(suit)

	cheapest := cheapestLevel(auction, bid.Strain)
	if bid.Level > cheapest {
		return validateJumpOvercall(hcp, length)
	}

	switch bid.Level {
	case 1:
		const rule = "overcall_1_level"
		if hcp >= 8 {
			return approve(rule, hcp, 8, "one-level overcall values")
		}
		if hcp >= 7 && length >= 6 {
			return approve(rule, hcp, 7, "shaded one-level overcall on a six-card suit")
		}
		return reject(rule, hcp, 8, "one-level overcall needs 8 HCP, or 7 with a six-card suit")
	default:
		const rule = "overcall_2_level"
		required := 10
		switch {
		case quality >= 8:
			required -= 2
		case quality >= 6:
			required--
		case quality <= 3:
			required += 2
		case quality <= 4:
			required++
		}
		if hcp >= required {
			return approve(rule, hcp, required, fmt.Sprintf("two-level overcall, suit quality %d", quality))
		}
		return reject(rule, hcp, required, fmt.Sprintf("two-level overcall needs %d HCP with suit quality %d", required, quality))
	}
}

// validateJumpOvercall accepts the weak (5-10 with 6+ cards) and strong
// (15+) bands; the 11-14 band is rejected outright as too awkward to show.
func validateJumpOvercall(hcp, length int) Verdict {
	const rule = "jump_overcall"
	switch {
	case hcp >= 15:
		return approve(rule, hcp, 15, "strong jump overcall")
	case hcp >= 11:
		return reject(rule, hcp, 15, "11-14 HCP is awkward for a jump: too strong for weak, too weak for strong")
	case hcp >= 5 && length >= 6:
		return approve(rule, hcp, 5, "weak jump overcall on a six-card suit")
	case hcp >= 5:
		return reject(rule, hcp, 5, "weak jump overcall needs a six-card suit")
	default:
		return reject(rule, hcp, 5, "below weak jump overcall strength")
	}
}

// validateTakeoutDouble enforces 12+ HCP, or 10+ with two suits totaling
// nine or more cards.
func validateTakeoutDouble(hand *bridge.Hand, auction *bridge.Auction, hcp int) Verdict {
	const rule = "takeout_double"
	if hcp >= 12 {
		return approve(rule, hcp, 12, "full takeout double values")
	}
	shape := hand.Shape()
	if hcp >= 10 && shape[0]+shape[1] >= 9 {
		return approve(rule, hcp, 10, "shapely takeout double: two-suited nine cards")
	}
	return reject(rule, hcp, 12, "takeout double needs 12 HCP, or 10 with a nine-card two-suiter")
}

// cheapestLevel returns the lowest level at which the strain is currently
// biddable.
func cheapestLevel(auction *bridge.Auction, strain bridge.Strain) int {
	last, _, ok := auction.LastContract()
	if !ok {
		return 1
	}
	if strain > last.Strain {
		return last.Level
	}
	return last.Level + 1
}
