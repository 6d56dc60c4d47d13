package engine

import (
	"strings"
	"testing"

	"github.com/jlowell/bridgecoach/engine/pkg/bridge"
)

func loadStore(t *testing.T) *SchemaStore {
	t.Helper()
	store, err := LoadSchemas("")
	if err != nil {
		t.Fatalf("LoadSchemas: %v", err)
	}
	return store
}

func evaluate(t *testing.T, hand string, dealer bridge.Seat, calls string, seat bridge.Seat) []BidCandidate {
	t.Helper()
	h := bridge.MustParseHand(hand)
	a, err := bridge.ParseAuction(dealer, calls)
	if err != nil {
		t.Fatal(err)
	}
	fv := ExtractFeatures(h, a, seat, bridge.VulNone)
	return NewInterpreter(loadStore(t)).Evaluate(fv, a)
}

func TestEvaluateNotrumpOpening(t *testing.T) {
	// 17 balanced: a clean 1NT, quality 1.0.
	cands := evaluate(t, "AQ54.KJ3.QJ4.A92", bridge.North, "", bridge.North)
	if len(cands) == 0 {
		t.Fatal("no candidates")
	}
	best := cands[0]
	if best.Bid.String() != "1NT" || best.RuleID != "open-1nt" {
		t.Fatalf("best = %s (%s), want 1NT via open-1nt", best.Bid, best.RuleID)
	}
	if best.Quality != 1.0 {
		t.Errorf("quality = %g, want 1.0", best.Quality)
	}
}

func TestEvaluateOffshapeNotrumpPenalized(t *testing.T) {
	// 14 balanced: inside the hard 14-18 gate but one under the soft
	// 15-17 band at 0.35 per point.
	cands := evaluate(t, "A954.KJ3.QJ4.K92", bridge.North, "", bridge.North)
	if len(cands) == 0 {
		t.Fatal("no candidates")
	}
	best := cands[0]
	if best.RuleID != "open-1nt" {
		t.Fatalf("best rule = %s, want open-1nt", best.RuleID)
	}
	if !almostEqual(best.Quality, 0.65) {
		t.Errorf("quality = %g, want 0.65", best.Quality)
	}
}

func TestEvaluateWeakTwoTemplate(t *testing.T) {
	cands := evaluate(t, "43.AQJ965.32.984", bridge.North, "", bridge.North)
	if len(cands) == 0 {
		t.Fatal("no candidates")
	}
	best := cands[0]
	if best.Bid.String() != "2H" || best.RuleID != "open-weak-two" {
		t.Fatalf("best = %s (%s), want 2H via open-weak-two", best.Bid, best.RuleID)
	}
	if !strings.Contains(best.Explanation, "H") || !strings.Contains(best.Explanation, "7") {
		t.Errorf("explanation %q missing substituted values", best.Explanation)
	}
}

func TestEvaluateStaymanTrigger(t *testing.T) {
	cands := evaluate(t, "K862.T942.A3.Q87", bridge.North, "1NT P", bridge.South)
	if len(cands) == 0 {
		t.Fatal("no candidates")
	}
	if cands[0].RuleID != "conv-stayman-ask" || cands[0].Bid.String() != "2C" {
		t.Fatalf("best = %s (%s), want 2C via conv-stayman-ask", cands[0].Bid, cands[0].RuleID)
	}
	if cands[0].Forcing != ForceOneRound {
		t.Errorf("Stayman forcing = %q, want one_round", cands[0].Forcing)
	}
}

func TestTriggerRequiresExactTail(t *testing.T) {
	// Same responder hand, but the opening was doubled: the tail is
	// 1NT X, not 1NT P, so the convention is off.
	cands := evaluate(t, "K862.T942.A3.Q87", bridge.North, "1NT X", bridge.South)
	for _, c := range cands {
		if c.RuleID == "conv-stayman-ask" {
			t.Fatal("Stayman fired on a non-matching auction tail")
		}
	}
}

func TestEvaluateOvercallTemplate(t *testing.T) {
	cands := evaluate(t, "AQJ54.K93.J4.982", bridge.North, "1D", bridge.East)
	if len(cands) == 0 {
		t.Fatal("no candidates")
	}
	best := cands[0]
	if best.Bid.String() != "1S" || best.RuleID != "overcall-simple" {
		t.Fatalf("best = %s (%s), want 1S via overcall-simple", best.Bid, best.RuleID)
	}
}

func TestBinaryModeDropsSoftMisses(t *testing.T) {
	h := bridge.MustParseHand("A954.KJ3.QJ4.K92") // 14 balanced
	a := bridge.NewAuction(bridge.North)
	fv := ExtractFeatures(h, a, bridge.North, bridge.VulNone)

	binary := &Interpreter{store: loadStore(t), Binary: true}
	for _, c := range binary.Evaluate(fv, a) {
		if c.RuleID == "open-1nt" {
			t.Fatal("binary matcher accepted a rule with an unmet soft constraint")
		}
		if c.Quality != 1.0 {
			t.Errorf("binary candidate quality = %g, want 1.0", c.Quality)
		}
	}
}

func TestNearestMiss(t *testing.T) {
	h := bridge.MustParseHand("AQ54.KJ3.QJ4.A92") // 17 balanced
	a := bridge.NewAuction(bridge.North)
	fv := ExtractFeatures(h, a, bridge.North, bridge.VulNone)
	in := NewInterpreter(loadStore(t))

	ruleID, reason, found := in.NearestMiss(fv, a, bridge.MustParseBid("2NT"))
	if !found {
		t.Fatal("no nearest miss for 2NT")
	}
	if ruleID != "open-2nt" {
		t.Errorf("rule = %s, want open-2nt", ruleID)
	}
	if !strings.Contains(reason, "hcp") {
		t.Errorf("reason %q does not name the failing feature", reason)
	}
}

func TestSubstituteErrors(t *testing.T) {
	fv := FeatureVector{FeatLongestSuit: StrValue("H")}

	if got, err := substitute("1{longest_suit}", fv); err != nil || got != "1H" {
		t.Errorf("substitute = %q, %v", got, err)
	}
	if _, err := substitute("1{second_suit}", fv); err == nil {
		t.Error("empty placeholder value did not error")
	}
	if _, err := substitute("1{longest_suit", fv); err == nil {
		t.Error("unterminated placeholder did not error")
	}
}
