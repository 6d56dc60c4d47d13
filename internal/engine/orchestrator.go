package engine

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jlowell/bridgecoach/engine/pkg/bridge"
)

// ErrForcedNoCandidate reports that no candidate survived while the
// partnership is forced, so even the Pass fallback would be a violation.
// The returned bid is still Pass with a labeled failure explanation; the
// caller decides how loudly to surface it.
var ErrForcedNoCandidate = errors.New("no candidate available under forcing obligation")

/// maxRepairLevels caps illegal-bid repair: escalating a proposed bid more
// than two levels to legalize it would produce an unreasonable jump, so
// the candidate is discarded instead.
const maxRepairLevels = 2

// Engine composes the extractor, interpreter, governor, forcing machine,
// and oracle into bid decisions. It holds only read-only state and is safe
// to share; all per-deal mutability lives in the caller's DealContext.
type Engine struct {
	store  *SchemaStore
	interp *Interpreter
	legacy *Interpreter
	oracle Oracle
}

// Option configures an Engine.
type Option func(*Engine)

// WithOracle installs an external review oracle. The default is pass-through.
func WithOracle(o Oracle) Option {
	return func(e *Engine) {
		if o != nil {
			e.oracle = o
		}
	}
}

// WithLegacyFallback enables the binary matcher as a last resort when no
// soft-matched candidate survives filtering.
func WithLegacyFallback() Option {
	return func(e *Engine) {
		e.legacy = &Interpreter{store: e.store, Binary: true}
	}
}

// New builds an Engine over a loaded schema store.
func New(store *SchemaStore, opts ...Option) *Engine {
	e := &Engine{
		store:  store,
		interp: NewInterpreter(store),
		oracle: NoopOracle{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// GetNextBid selects the best bid for the seat to act. Candidates are taken
// in ranked order; illegal ones are repaired or discarded, forcing
// violations are filtered, and the survivor is offered to the oracle for
// review before the forcing directive is applied to the deal context.
func (e *Engine) GetNextBid(hand *bridge.Hand, auction *bridge.Auction, seat bridge.Seat, vul bridge.Vulnerability, deal *DealContext) (bridge.Bid, string, error) {
	if auction.NextSeat() != seat {
		return bridge.Pass, "", fmt.Errorf("seat %s is not due to call (next is %s)", seat, auction.NextSeat())
	}

	decisionID := uuid.NewString()
	fv := ExtractFeatures(hand, auction, seat, vul)

	bid, explanation, ok := e.selectFrom(e.interp, fv, hand, auction, seat, deal)
	if !ok && e.legacy != nil {
		log.Debug().Str("decision", decisionID).Msg("No soft-matched candidate; trying legacy binary matcher")
		bid, explanation, ok = e.selectFrom(e.legacy, fv, hand, auction, seat, deal)
	}

	if !ok {
		if !deal.PassAllowed(auction, seat) {
			explanation = "Bidding engine failure: the partnership is forced to bid, but no rule produced a playable call"
			log.Error().Str("decision", decisionID).Str("auction", auction.String()).Msg("Forced with no candidate")
			return bridge.Pass, explanation, ErrForcedNoCandidate
		}
		log.Debug().Str("decision", decisionID).Str("auction", auction.String()).Msg("No candidate survived; passing")
		return bridge.Pass, "No suitable bid found; passing", nil
	}

	log.Debug().
		Str("decision", decisionID).
		Str("seat", seat.String()).
		Str("auction", auction.String()).
		Str("bid", bid.String()).
		Msg("Bid selected")
	return bid, explanation, nil
}

// selectFrom runs one interpreter pass and returns the first surviving
// candidate after legality repair, forcing checks, and oracle review.
func (e *Engine) selectFrom(in *Interpreter, fv FeatureVector, hand *bridge.Hand, auction *bridge.Auction, seat bridge.Seat, deal *DealContext) (bridge.Bid, string, bool) {
	for _, cand := range in.Evaluate(fv, auction) {
		bid, ok := repairBid(cand.Bid, auction)
		if !ok {
			continue
		}
		if bid.Type == bridge.BidPass && !deal.PassAllowed(auction, seat) {
			// Expected filtering outcome, not an error.
			continue
		}

		finalBid, finalExplanation := e.oracle.Review(bid, cand.Explanation, hand, auction, fv)
		if finalBid != bid && !auction.Legal(finalBid) {
			log.Warn().Str("bid", finalBid.String()).Msg("Oracle rewrite is illegal; keeping engine bid")
			finalBid, finalExplanation = bid, cand.Explanation
		}
		if finalBid.Type == bridge.BidPass && !deal.PassAllowed(auction, seat) {
			continue
		}

		if finalBid.Type != bridge.BidPass {
			deal.CompleteRound()
		}
		deal.Apply(cand.Forcing, len(auction.Calls))
		return finalBid, finalExplanation, true
	}
	return bridge.Bid{}, "", false
}

// GetBidCandidates exposes the full ranked candidate list for debugging and
// audit. No filtering or repair is applied.
func (e *Engine) GetBidCandidates(hand *bridge.Hand, auction *bridge.Auction, seat bridge.Seat, vul bridge.Vulnerability) []BidCandidate {
	fv := ExtractFeatures(hand, auction, seat, vul)
	return e.interp.Evaluate(fv, auction)
}

// Feedback is the differential judgment on a user's bid against the
// engine's preferred bid.
type Feedback struct {
	UserBid     bridge.Bid
	EngineBid   bridge.Bid
	Agrees      bool
	UserRule    string  // best rule matching the user's bid, if any
	UserQuality float64 // that rule's match quality
	EngineRule  string
	Explanation string  // coaching text, always populated
	Governor    Verdict // soundness audit of the user's bid
}

// EvaluateUserBid compares the user's bid against the engine's choice and
// surfaces the specific unmet constraint when the user's bid matches no
// rule cleanly.
func (e *Engine) EvaluateUserBid(hand *bridge.Hand, userBid bridge.Bid, auction *bridge.Auction, seat bridge.Seat, vul bridge.Vulnerability) Feedback {
	fv := ExtractFeatures(hand, auction, seat, vul)

	fb := Feedback{
		UserBid:  userBid,
		Governor: ValidateBid(hand, userBid, auction, seat, vul),
	}

	deal := NewDealContext()
	engineBid, engineExplanation, ok := e.selectFrom(e.interp, fv, hand, auction, seat, deal)
	if !ok {
		engineBid, engineExplanation = bridge.Pass, "No rule produced a bid here"
	}
	fb.EngineBid = engineBid
	if best := e.interp.MatchesFor(fv, auction, engineBid); len(best) > 0 {
		fb.EngineRule = best[0].RuleID
	}

	if userBid == engineBid {
		fb.Agrees = true
		fb.Explanation = fmt.Sprintf("Good choice: %s. %s", userBid.Display(), engineExplanation)
		if matches := e.interp.MatchesFor(fv, auction, userBid); len(matches) > 0 {
			fb.UserRule = matches[0].RuleID
			fb.UserQuality = matches[0].Quality
		}
		return fb
	}

	if matches := e.interp.MatchesFor(fv, auction, userBid); len(matches) > 0 {
		fb.UserRule = matches[0].RuleID
		fb.UserQuality = matches[0].Quality
		fb.Explanation = fmt.Sprintf(
			"%s is reasonable (%s, quality %.2f), but %s is better here: %s",
			userBid.Display(), matches[0].RuleID, matches[0].Quality, engineBid.Display(), engineExplanation)
		return fb
	}

	if ruleID, reason, found := e.interp.NearestMiss(fv, auction, userBid); found {
		fb.Explanation = fmt.Sprintf(
			"%s does not fit: %s (rule %s). The engine prefers %s: %s",
			userBid.Display(), reason, ruleID, engineBid.Display(), engineExplanation)
		return fb
	}

	fb.Explanation = fmt.Sprintf(
		"No rule suggests %s on this hand. The engine prefers %s: %s",
		userBid.Display(), engineBid.Display(), engineExplanation)
	return fb
}

// repairBid legalizes a proposed bid. Contract bids are raised to the next
// legal level in the same strain, capped at two levels of escalation;
// beyond the cap the candidate is discarded. Pass is always legal; Double
// and Redouble are never repaired.
func repairBid(bid bridge.Bid, auction *bridge.Auction) (bridge.Bid, bool) {
	if auction.Legal(bid) {
		return bid, true
	}
	if bid.Type != bridge.BidContract {
		return bridge.Bid{}, false
	}

	level := cheapestLevel(auction, bid.Strain)
	if level <= bid.Level || level > 7 {
		return bridge.Bid{}, false
	}
	if level-bid.Level > maxRepairLevels {
		return bridge.Bid{}, false
	}
	return bridge.NewBid(level, bid.Strain), true
}
