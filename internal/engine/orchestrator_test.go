package engine

import (
	"errors"
	"strings"
	"testing"

	"github.com/jlowell/bridgecoach/engine/pkg/bridge"
)

func newEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	return New(loadStore(t), opts...)
}

// TestFullDealReplay drives all four seats of one deal to completion and
// checks the two invariants that must hold for every decision: the bid is
// legal in the auction as it stands, and the auction eventually ends.
func TestFullDealReplay(t *testing.T) {
	hands := map[bridge.Seat]*bridge.Hand{
		bridge.North: bridge.MustParseHand("AQ54.KJ3.QJ4.A92"),  // 17 balanced
		bridge.East:  bridge.MustParseHand("K862.T942.63.T87"),  // 3
		bridge.South: bridge.MustParseHand("J93.AQ5.K972.KQ4"),  // 15 balanced
		bridge.West:  bridge.MustParseHand("T7.876.AT85.J653"),  // 5
	}
	e := newEngine(t)
	auction := bridge.NewAuction(bridge.North)
	deals := map[bridge.Seat]*DealContext{}
	for _, s := range bridge.AllSeats() {
		deals[s] = NewDealContext()
	}

	for i := 0; i < 40 && !auction.IsOver(); i++ {
		seat := auction.NextSeat()
		bid, explanation, err := e.GetNextBid(hands[seat], auction, seat, bridge.VulNone, deals[seat])
		if err != nil {
			t.Fatalf("call %d (%s): %v", i, seat, err)
		}
		if explanation == "" {
			t.Fatalf("call %d (%s): empty explanation", i, seat)
		}
		if !auction.Legal(bid) {
			t.Fatalf("call %d (%s): illegal bid %s after %q", i, seat, bid, auction)
		}
		auction = auction.Extend(bid)
	}

	if !auction.IsOver() {
		t.Fatalf("auction never ended: %s", auction)
	}
	last, _, ok := auction.LastContract()
	if !ok || last.String() != "3NT" {
		t.Errorf("final contract = %v, want 3NT (auction %s)", last, auction)
	}
}

func TestRepairBidEscalation(t *testing.T) {
	a, err := bridge.ParseAuction(bridge.North, "3D")
	if err != nil {
		t.Fatal(err)
	}

	// 2C is unbiddable over 3D; the same strain at the cheapest legal
	// level is 4C, two levels up and within the repair cap.
	got, ok := repairBid(bridge.MustParseBid("2C"), a)
	if !ok || got.String() != "4C" {
		t.Errorf("repair = %v, %v, want 4C", got, ok)
	}
}

func TestRepairBidCapDiscards(t *testing.T) {
	a, err := bridge.ParseAuction(bridge.North, "5D")
	if err != nil {
		t.Fatal(err)
	}

	// 2C over 5D would need four levels of escalation; discard instead.
	if _, ok := repairBid(bridge.MustParseBid("2C"), a); ok {
		t.Error("repair exceeded the escalation cap")
	}
}

func TestRepairBidNeverTouchesDoubles(t *testing.T) {
	a := bridge.NewAuction(bridge.North)
	if _, ok := repairBid(bridge.Double, a); ok {
		t.Error("illegal double was repaired instead of discarded")
	}
}

func TestForcedNoCandidate(t *testing.T) {
	// Partner's strong artificial 2C demands a response, but a yarborough
	// matches only the pass rule, which is filtered under force.
	hand := bridge.MustParseHand("8643.752.9642.53")
	a, err := bridge.ParseAuction(bridge.North, "2C P")
	if err != nil {
		t.Fatal(err)
	}
	deal := NewDealContext()
	deal.Apply(ForceOneRound, 0)

	e := newEngine(t)
	bid, explanation, err := e.GetNextBid(hand, a, bridge.South, bridge.VulNone, deal)
	if !errors.Is(err, ErrForcedNoCandidate) {
		t.Fatalf("err = %v, want ErrForcedNoCandidate", err)
	}
	if bid != bridge.Pass {
		t.Errorf("bid = %s, want the labeled Pass", bid)
	}
	if !strings.Contains(explanation, "failure") {
		t.Errorf("explanation %q does not label the failure", explanation)
	}
}

func TestGetNextBidWrongSeat(t *testing.T) {
	e := newEngine(t)
	a := bridge.NewAuction(bridge.North)
	_, _, err := e.GetNextBid(bridge.MustParseHand("AQ54.KJ3.QJ4.A92"), a, bridge.South, bridge.VulNone, NewDealContext())
	if err == nil {
		t.Fatal("out-of-turn call did not error")
	}
}

func TestPassFallbackWhenNothingMatches(t *testing.T) {
	// A yarborough with no obligations: the engine must pass gracefully.
	hand := bridge.MustParseHand("8643.752.9642.53")
	a := bridge.NewAuction(bridge.North)

	e := newEngine(t)
	bid, explanation, err := e.GetNextBid(hand, a, bridge.North, bridge.VulNone, NewDealContext())
	if err != nil {
		t.Fatalf("GetNextBid: %v", err)
	}
	if bid != bridge.Pass {
		t.Errorf("bid = %s, want P", bid)
	}
	if explanation == "" {
		t.Error("fallback pass carries no explanation")
	}
}

func TestGetBidCandidatesUnfiltered(t *testing.T) {
	e := newEngine(t)
	a := bridge.NewAuction(bridge.North)
	cands := e.GetBidCandidates(bridge.MustParseHand("AQ54.KJ3.QJ4.A92"), a, bridge.North, bridge.VulNone)
	if len(cands) == 0 {
		t.Fatal("no candidates for a clear 1NT opening")
	}
	for i := 1; i < len(cands); i++ {
		if cands[i].Quality > cands[i-1].Quality {
			t.Fatal("candidates not sorted by quality descending")
		}
	}
}

func TestEvaluateUserBidAgrees(t *testing.T) {
	e := newEngine(t)
	a := bridge.NewAuction(bridge.North)
	hand := bridge.MustParseHand("AQ54.KJ3.QJ4.A92")

	fb := e.EvaluateUserBid(hand, bridge.MustParseBid("1NT"), a, bridge.North, bridge.VulNone)
	if !fb.Agrees {
		t.Fatalf("engine disagrees with 1NT: %s", fb.Explanation)
	}
	if fb.UserRule != "open-1nt" {
		t.Errorf("user rule = %q, want open-1nt", fb.UserRule)
	}
	if !fb.Governor.Valid {
		t.Errorf("governor rejected a sound 1NT: %s", fb.Governor.Reason)
	}
}

func TestEvaluateUserBidNearMiss(t *testing.T) {
	e := newEngine(t)
	a := bridge.NewAuction(bridge.North)
	hand := bridge.MustParseHand("AQ54.KJ3.QJ4.A92") // 17: 2NT needs 20

	fb := e.EvaluateUserBid(hand, bridge.MustParseBid("2NT"), a, bridge.North, bridge.VulNone)
	if fb.Agrees {
		t.Fatal("engine agreed with an overbid 2NT")
	}
	if !strings.Contains(fb.Explanation, "open-2nt") {
		t.Errorf("explanation %q does not cite the nearest-miss rule", fb.Explanation)
	}
	if fb.EngineBid.String() != "1NT" {
		t.Errorf("engine bid = %s, want 1NT", fb.EngineBid)
	}
}

func TestEvaluateUserBidUnsound(t *testing.T) {
	e := newEngine(t)
	a, err := bridge.ParseAuction(bridge.North, "1H")
	if err != nil {
		t.Fatal(err)
	}
	// A flat 8-count has no business doubling.
	hand := bridge.MustParseHand("K954.32.QJ54.Q32")

	fb := e.EvaluateUserBid(hand, bridge.Double, a, bridge.East, bridge.VulNone)
	if fb.Governor.Valid {
		t.Error("governor approved a flat 8-count takeout double")
	}
}

func TestLegacyFallbackOption(t *testing.T) {
	// 14 balanced: the soft matcher still produces 1NT (penalized), and
	// the binary matcher drops it. With the fallback enabled the engine
	// must behave identically on this hand, proving the fallback only
	// engages when the soft pass yields nothing.
	e := newEngine(t, WithLegacyFallback())
	a := bridge.NewAuction(bridge.North)
	hand := bridge.MustParseHand("A954.KJ3.QJ4.K92")

	bid, _, err := e.GetNextBid(hand, a, bridge.North, bridge.VulNone, NewDealContext())
	if err != nil {
		t.Fatal(err)
	}
	if bid.String() != "1NT" {
		t.Errorf("bid = %s, want 1NT", bid)
	}
}
