package engine

import (
	"fmt"
	"math"
)

// MatchResult is the outcome of scoring one rule against a feature vector.
type MatchResult struct {
	Score     float64             // 0.0-1.0 match quality
	Penalties map[Feature]float64 // per-feature quality lost to soft deviations
	HardFail  Feature             // first failing hard feature, "" if none
	Reason    string              // human-readable hard-fail description
}

// ScoreRule scores a rule's constraints against a feature vector. The final
// quality is the product of the individual constraint scores: one failed
// hard constraint zeroes the rule no matter how well the rest match, and
// several mild soft deviations compound instead of averaging away. Hard
// failures short-circuit with the failing feature named.
func ScoreRule(rule *Rule, fv FeatureVector) MatchResult {
	res := MatchResult{Score: 1.0, Penalties: make(map[Feature]float64)}
	for i := range rule.Constraints {
		score, failed := scoreConstraint(&rule.Constraints[i], fv, rule.StrengthDefining, &res)
		if failed {
			res.Score = 0.0
			return res
		}
		res.Score *= score
	}
	return res
}

// scoreConstraint evaluates one constraint node. Returns the node's score
// and whether a hard constraint failed (which must zero the whole rule).
func scoreConstraint(c *Constraint, fv FeatureVector, strengthDefining bool, res *MatchResult) (float64, bool) {
	switch c.Op {
	case OpAll:
		score := 1.0
		for i := range c.Children {
			s, failed := scoreConstraint(&c.Children[i], fv, strengthDefining, res)
			if failed {
				return 0, true
			}
			score *= s
		}
		return score, false
	case OpAny:
		// Best alternative wins; hard failures of individual alternatives
		// do not fail the group unless every alternative fails.
		best := 0.0
		anyOK := false
		sub := MatchResult{Penalties: make(map[Feature]float64)}
		for i := range c.Children {
			s, failed := scoreConstraint(&c.Children[i], fv, strengthDefining, &sub)
			if failed {
				continue
			}
			anyOK = true
			if s > best {
				best = s
			}
		}
		if !anyOK {
			res.HardFail = firstLeafFeature(c)
			res.Reason = fmt.Sprintf("no alternative satisfied for %s", res.HardFail)
			return 0, true
		}
		return best, false
	case OpNot:
		sub := MatchResult{Penalties: make(map[Feature]float64)}
		s, failed := scoreConstraint(&c.Children[0], fv, strengthDefining, &sub)
		if failed || s == 0 {
			return 1.0, false
		}
		if s == 1.0 {
			res.HardFail = firstLeafFeature(c)
			res.Reason = fmt.Sprintf("negated condition on %s holds", res.HardFail)
			return 0, true
		}
		return 1.0 - s, false
	}
	return scoreLeaf(c, fv, strengthDefining, res)
}

// scoreLeaf evaluates a leaf feature test. Hard constraints score exactly
// 1.0 or fail; soft constraints degrade linearly with distance from the
// nearest satisfied bound.
func scoreLeaf(c *Constraint, fv FeatureVector, strengthDefining bool, res *MatchResult) (float64, bool) {
	v, present := fv[c.Feature]
	if !present {
		// Feature keys are validated at load time, so absence means the
		// extractor legitimately produced nothing (e.g. no partner suit).
		if c.Kind == Hard {
			res.HardFail = c.Feature
			res.Reason = fmt.Sprintf("%s not available in this auction", c.Feature)
			return 0, true
		}
		return 1.0, false
	}

	dist := constraintDistance(c, v, strengthDefining)
	if dist == 0 {
		return 1.0, false
	}

	if c.Kind == Hard {
		res.HardFail = c.Feature
		res.Reason = hardFailReason(c, v)
		return 0, true
	}

	score := 1.0 - dist*c.PenaltyPerUnit
	if score < 0 {
		score = 0
	}
	res.Penalties[c.Feature] = 1.0 - score
	return score, false
}

// constraintDistance returns the weighted gap between the value and the
// nearest satisfied bound; 0 means the constraint is satisfied. For HCP
// ceilings on strength-defining bids, overshooting the maximum counts at
// double rate: opening a narrow-range bid with extra strength traps the
// hand, while a point light is usually recoverable.
func constraintDistance(c *Constraint, v Value, strengthDefining bool) float64 {
	if c.Equals != nil {
		return equalityDistance(*c.Equals, v)
	}
	if len(c.In) > 0 || len(c.NotIn) > 0 {
		return membershipDistance(c, v)
	}

	if v.Kind != KindNum {
		// Range bounds against a non-numeric value never match.
		return 1
	}
	if c.Min != nil && v.Num < *c.Min {
		return *c.Min - v.Num
	}
	if c.Max != nil && v.Num > *c.Max {
		d := v.Num - *c.Max
		if strengthDefining && c.Feature == FeatHCP {
			d *= 2
		}
		return d
	}
	return 0
}

// equalityDistance is 0 on an exact match; numeric mismatches report the
// numeric gap, categorical mismatches a unit gap.
func equalityDistance(want, got Value) float64 {
	if want.Kind != got.Kind {
		return 1
	}
	switch want.Kind {
	case KindNum:
		return math.Abs(want.Num - got.Num)
	case KindStr:
		if want.Str == got.Str {
			return 0
		}
		return 1
	case KindBool:
		if want.Bool == got.Bool {
			return 0
		}
		return 1
	}
	return 1
}

// membershipDistance is 0 when the value is in the "in" set (if given) and
// absent from the "not_in" set; otherwise a unit categorical gap.
func membershipDistance(c *Constraint, v Value) float64 {
	s := v.String()
	if len(c.In) > 0 {
		found := false
		for _, item := range c.In {
			if item == s {
				found = true
				break
			}
		}
		if !found {
			return 1
		}
	}
	for _, item := range c.NotIn {
		if item == s {
			return 1
		}
	}
	return 0
}

// hardFailReason names the violated bound for coaching feedback.
func hardFailReason(c *Constraint, v Value) string {
	switch {
	case c.Equals != nil:
		return fmt.Sprintf("%s is %s, needs %s", c.Feature, v, *c.Equals)
	case c.Min != nil && v.Kind == KindNum && v.Num < *c.Min:
		return fmt.Sprintf("%s is %s, needs at least %g", c.Feature, v, *c.Min)
	case c.Max != nil && v.Kind == KindNum && v.Num > *c.Max:
		return fmt.Sprintf("%s is %s, at most %g allowed", c.Feature, v, *c.Max)
	case len(c.In) > 0:
		return fmt.Sprintf("%s is %s, not in allowed set", c.Feature, v)
	case len(c.NotIn) > 0:
		return fmt.Sprintf("%s is %s, which is excluded", c.Feature, v)
	}
	return fmt.Sprintf("%s does not satisfy the rule", c.Feature)
}

// firstLeafFeature descends a combinator to name some involved feature.
func firstLeafFeature(c *Constraint) Feature {
	if c.Op == OpLeaf {
		return c.Feature
	}
	for i := range c.Children {
		if f := firstLeafFeature(&c.Children[i]); f != "" {
			return f
		}
	}
	return ""
}
