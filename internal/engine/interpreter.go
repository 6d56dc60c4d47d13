package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jlowell/bridgecoach/engine/pkg/bridge"
)

// BidCandidate is one ranked bid proposal. Lifetime is a single decision.
type BidCandidate struct {
	Bid         bridge.Bid
	RuleID      string
	Category    string
	Priority    int
	Quality     float64
	Explanation string
	Forcing     ForcingDirective
}

// Interpreter applies the soft matcher across a schema store and resolves
// bid and explanation templates into concrete candidates.
type Interpreter struct {
	store *SchemaStore

	// Binary reproduces the legacy matcher: every constraint is treated as
	// a hard gate and matching rules all score 1.0. Used as the
	// orchestrator's low-fidelity fallback.
	Binary bool
}

// NewInterpreter wraps a loaded schema store.
func NewInterpreter(store *SchemaStore) *Interpreter {
	return &Interpreter{store: store}
}

// Evaluate scores every rule against the features and returns candidates
// ranked by quality descending, ties broken by rule priority. Rules whose
// trigger does not match the auction tail are skipped outright, never
// scored. Zero-quality results are dropped.
func (in *Interpreter) Evaluate(fv FeatureVector, auction *bridge.Auction) []BidCandidate {
	var candidates []BidCandidate
	for i := range in.store.rules {
		rule := &in.store.rules[i]
		if !triggerMatches(rule.Trigger, auction) {
			continue
		}

		var quality float64
		if in.Binary {
			if !binaryMatch(rule, fv) {
				continue
			}
			quality = 1.0
		} else {
			res := ScoreRule(rule, fv)
			if res.Score <= 0 {
				continue
			}
			quality = res.Score
		}

		bid, err := resolveBidTemplate(rule.BidTemplate, fv)
		if err != nil {
			// A rule whose template cannot resolve in this auction simply
			// does not apply here.
			continue
		}

		candidates = append(candidates, BidCandidate{
			Bid:         bid,
			RuleID:      rule.ID,
			Category:    rule.Category,
			Priority:    rule.Priority,
			Quality:     quality,
			Explanation: resolveExplanation(rule.Explanation, fv),
			Forcing:     rule.Forcing,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Quality != candidates[j].Quality {
			return candidates[i].Quality > candidates[j].Quality
		}
		return candidates[i].Priority > candidates[j].Priority
	})
	return candidates
}

// MatchesFor returns every rule that matches the features and resolves to
// the given bid, best first. Used for differential feedback on user bids.
func (in *Interpreter) MatchesFor(fv FeatureVector, auction *bridge.Auction, bid bridge.Bid) []BidCandidate {
	var out []BidCandidate
	for _, c := range in.Evaluate(fv, auction) {
		if c.Bid == bid {
			out = append(out, c)
		}
	}
	return out
}

// NearestMiss finds the rule proposing the given bid whose score is highest
// even though it failed, along with the failure reason. Used to tell a user
// why their bid did not qualify.
func (in *Interpreter) NearestMiss(fv FeatureVector, auction *bridge.Auction, bid bridge.Bid) (string, string, bool) {
	bestID, bestReason := "", ""
	found := false
	for i := range in.store.rules {
		rule := &in.store.rules[i]
		if !triggerMatches(rule.Trigger, auction) {
			continue
		}
		rb, err := resolveBidTemplate(rule.BidTemplate, fv)
		if err != nil || rb != bid {
			continue
		}
		res := ScoreRule(rule, fv)
		if res.Score > 0 {
			continue
		}
		if !found {
			bestID, bestReason = rule.ID, res.Reason
			found = true
		}
	}
	return bestID, bestReason, found
}

// triggerMatches checks the rule's exact auction-tail pattern. An empty
// trigger matches everything. Calls compare in normalized form, so suit
// symbols and letters are equivalent.
func triggerMatches(trigger []string, auction *bridge.Auction) bool {
	if len(trigger) == 0 {
		return true
	}
	n := len(auction.Calls)
	if n < len(trigger) {
		return false
	}
	offset := n - len(trigger)
	for i, want := range trigger {
		if auction.Calls[offset+i].String() != want {
			return false
		}
	}
	return true
}

// binaryMatch is the legacy all-or-nothing evaluation: soft constraints are
// promoted to hard gates.
func binaryMatch(rule *Rule, fv FeatureVector) bool {
	for i := range rule.Constraints {
		if !binaryConstraint(&rule.Constraints[i], fv) {
			return false
		}
	}
	return true
}

func binaryConstraint(c *Constraint, fv FeatureVector) bool {
	switch c.Op {
	case OpAll:
		for i := range c.Children {
			if !binaryConstraint(&c.Children[i], fv) {
				return false
			}
		}
		return true
	case OpAny:
		for i := range c.Children {
			if binaryConstraint(&c.Children[i], fv) {
				return true
			}
		}
		return false
	case OpNot:
		return !binaryConstraint(&c.Children[0], fv)
	}
	v, present := fv[c.Feature]
	if !present {
		return false
	}
	return constraintDistance(c, v, false) == 0
}

// resolveBidTemplate substitutes {feature} placeholders and parses the
// result as a bid, e.g. "1{longest_suit}" with longest_suit=H becomes 1H.
func resolveBidTemplate(template string, fv FeatureVector) (bridge.Bid, error) {
	resolved, err := substitute(template, fv)
	if err != nil {
		return bridge.Bid{}, err
	}
	bid, err := bridge.ParseBid(resolved)
	if err != nil {
		return bridge.Bid{}, fmt.Errorf("bid template %q resolved to unparsable %q: %w", template, resolved, err)
	}
	return bid, nil
}

// resolveExplanation substitutes feature values into user-facing text.
// Unresolvable placeholders are left in place rather than dropping the
// explanation; every bid must carry one.
func resolveExplanation(template string, fv FeatureVector) string {
	out, err := substitute(template, fv)
	if err != nil {
		return template
	}
	return out
}

// substitute replaces each {feature} with its value. Unknown or empty
// features are an error so bid templates never silently produce garbage.
func substitute(template string, fv FeatureVector) (string, error) {
	var b strings.Builder
	rest := template
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			b.WriteString(rest)
			return b.String(), nil
		}
		closing := strings.IndexByte(rest[open:], '}')
		if closing < 0 {
			return "", fmt.Errorf("unterminated placeholder in %q", template)
		}
		b.WriteString(rest[:open])
		name := rest[open+1 : open+closing]
		v, ok := fv[Feature(name)]
		if !ok || v.String() == "" {
			return "", fmt.Errorf("placeholder %q has no value", name)
		}
		b.WriteString(v.String())
		rest = rest[open+closing+1:]
	}
}
