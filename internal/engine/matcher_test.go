package engine

import (
	"math"
	"testing"
)

func fp(f float64) *float64 { return &f }

func softLeaf(feature Feature, min, max *float64, penalty float64) Constraint {
	return Constraint{Op: OpLeaf, Feature: feature, Kind: Soft, Min: min, Max: max, PenaltyPerUnit: penalty}
}

func hardLeaf(feature Feature, min, max *float64) Constraint {
	return Constraint{Op: OpLeaf, Feature: feature, Kind: Hard, Min: min, Max: max}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestScoreRuleAllSatisfied(t *testing.T) {
	rule := &Rule{Constraints: []Constraint{
		hardLeaf(FeatHCP, fp(12), fp(21)),
		hardLeaf(FeatSpades, fp(5), nil),
	}}
	fv := FeatureVector{FeatHCP: IntValue(15), FeatSpades: IntValue(5)}

	res := ScoreRule(rule, fv)
	if res.Score != 1.0 {
		t.Errorf("score = %g, want 1.0", res.Score)
	}
	if res.HardFail != "" {
		t.Errorf("unexpected hard fail on %s", res.HardFail)
	}
}

func TestScoreRuleHardFailZeroes(t *testing.T) {
	rule := &Rule{Constraints: []Constraint{
		softLeaf(FeatHCP, fp(15), fp(17), 0.1),
		hardLeaf(FeatSpades, fp(5), nil),
	}}
	fv := FeatureVector{FeatHCP: IntValue(16), FeatSpades: IntValue(4)}

	res := ScoreRule(rule, fv)
	if res.Score != 0 {
		t.Errorf("score = %g, want 0 on hard fail", res.Score)
	}
	if res.HardFail != FeatSpades {
		t.Errorf("hard fail = %q, want spades", res.HardFail)
	}
	if res.Reason == "" {
		t.Error("hard fail carries no reason")
	}
}

func TestScoreRuleSoftPenaltiesCompound(t *testing.T) {
	rule := &Rule{Constraints: []Constraint{
		softLeaf(FeatHCP, fp(15), nil, 0.2),
		softLeaf(FeatLongestQual, fp(5), nil, 0.2),
	}}
	// Each one unit under its floor: 0.8 * 0.8, not the average 0.8.
	fv := FeatureVector{FeatHCP: IntValue(14), FeatLongestQual: IntValue(4)}

	res := ScoreRule(rule, fv)
	if !almostEqual(res.Score, 0.64) {
		t.Errorf("score = %g, want 0.64", res.Score)
	}
	if len(res.Penalties) != 2 {
		t.Errorf("penalties recorded for %d features, want 2", len(res.Penalties))
	}
}

func TestStrengthDefiningCeilingAsymmetry(t *testing.T) {
	under := &Rule{StrengthDefining: true, Constraints: []Constraint{
		softLeaf(FeatHCP, fp(15), fp(17), 0.2),
	}}

	// One under the floor costs one unit.
	res := ScoreRule(under, FeatureVector{FeatHCP: IntValue(14)})
	if !almostEqual(res.Score, 0.8) {
		t.Errorf("one under floor: score = %g, want 0.8", res.Score)
	}

	// One over the ceiling of a strength-defining rule costs two.
	res = ScoreRule(under, FeatureVector{FeatHCP: IntValue(18)})
	if !almostEqual(res.Score, 0.6) {
		t.Errorf("one over ceiling: score = %g, want 0.6", res.Score)
	}
}

func TestAnyTakesBestAlternative(t *testing.T) {
	rule := &Rule{Constraints: []Constraint{{
		Op: OpAny,
		Children: []Constraint{
			hardLeaf(FeatHCP, fp(12), nil),
			{Op: OpAll, Children: []Constraint{
				hardLeaf(FeatHCP, fp(10), nil),
				{Op: OpLeaf, Feature: FeatRuleOf20, Kind: Hard, Equals: &Value{Kind: KindBool, Bool: true}},
			}},
		},
	}}}

	// First alternative fails, second holds: the group passes.
	fv := FeatureVector{FeatHCP: IntValue(11), FeatRuleOf20: BoolValue(true)}
	if res := ScoreRule(rule, fv); res.Score != 1.0 {
		t.Errorf("score = %g, want 1.0 via second alternative", res.Score)
	}

	// Both alternatives fail: the group hard-fails.
	fv = FeatureVector{FeatHCP: IntValue(11), FeatRuleOf20: BoolValue(false)}
	res := ScoreRule(rule, fv)
	if res.Score != 0 {
		t.Errorf("score = %g, want 0 when no alternative holds", res.Score)
	}
	if res.HardFail == "" {
		t.Error("failed any-group names no feature")
	}
}

func TestNotInvertsMatch(t *testing.T) {
	rule := &Rule{Constraints: []Constraint{{
		Op:       OpNot,
		Children: []Constraint{hardLeaf(FeatHCP, fp(12), nil)},
	}}}

	if res := ScoreRule(rule, FeatureVector{FeatHCP: IntValue(8)}); res.Score != 1.0 {
		t.Errorf("not over failing child: score = %g, want 1.0", res.Score)
	}
	if res := ScoreRule(rule, FeatureVector{FeatHCP: IntValue(15)}); res.Score != 0 {
		t.Errorf("not over holding child: score = %g, want 0", res.Score)
	}
}

func TestAbsentFeature(t *testing.T) {
	hard := &Rule{Constraints: []Constraint{
		{Op: OpLeaf, Feature: FeatStopOpponents, Kind: Hard, Equals: &Value{Kind: KindBool, Bool: true}},
	}}
	res := ScoreRule(hard, FeatureVector{})
	if res.Score != 0 {
		t.Errorf("absent hard feature: score = %g, want 0", res.Score)
	}
	if res.HardFail != FeatStopOpponents {
		t.Errorf("hard fail = %q, want stopper_opponents", res.HardFail)
	}

	soft := &Rule{Constraints: []Constraint{
		softLeaf(FeatStopOpponents, fp(1), nil, 0.2),
	}}
	if res := ScoreRule(soft, FeatureVector{}); res.Score != 1.0 {
		t.Errorf("absent soft feature: score = %g, want 1.0 (no penalty)", res.Score)
	}
}

func TestMembershipConstraints(t *testing.T) {
	in := &Rule{Constraints: []Constraint{
		{Op: OpLeaf, Feature: FeatLongestSuit, Kind: Hard, In: []string{"H", "S"}},
	}}
	if res := ScoreRule(in, FeatureVector{FeatLongestSuit: StrValue("H")}); res.Score != 1.0 {
		t.Errorf("in-set member scored %g", res.Score)
	}
	if res := ScoreRule(in, FeatureVector{FeatLongestSuit: StrValue("C")}); res.Score != 0 {
		t.Errorf("out-of-set member scored %g", res.Score)
	}

	notIn := &Rule{Constraints: []Constraint{
		{Op: OpLeaf, Feature: FeatLongestSuit, Kind: Hard, NotIn: []string{"C", "D"}},
	}}
	if res := ScoreRule(notIn, FeatureVector{FeatLongestSuit: StrValue("D")}); res.Score != 0 {
		t.Errorf("excluded member scored %g", res.Score)
	}
}

func TestSatisfiedConstraintDoesNotDilute(t *testing.T) {
	base := &Rule{Constraints: []Constraint{
		softLeaf(FeatHCP, fp(15), nil, 0.2),
	}}
	extended := &Rule{Constraints: []Constraint{
		softLeaf(FeatHCP, fp(15), nil, 0.2),
		hardLeaf(FeatSpades, fp(4), nil),
	}}
	fv := FeatureVector{FeatHCP: IntValue(14), FeatSpades: IntValue(5)}

	a := ScoreRule(base, fv).Score
	b := ScoreRule(extended, fv).Score
	if !almostEqual(a, b) {
		t.Errorf("adding a satisfied constraint changed the score: %g vs %g", a, b)
	}
}
