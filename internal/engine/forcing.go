package engine

import "github.com/jlowell/bridgecoach/engine/pkg/bridge"

// ForcingLevel is the partnership's current forcing obligation.
type ForcingLevel int

const (
	NonForcing ForcingLevel = iota
	ForcingOneRound
	GameForce
)

func (f ForcingLevel) String() string {
	switch f {
	case NonForcing:
		return "non_forcing"
	case ForcingOneRound:
		return "forcing_one_round"
	case GameForce:
		return "game_force"
	default:
		return "?"
	}
}

// DealContext is the per-deal mutable state, owned by the caller and
// threaded through each decision. A fresh deal gets a fresh DealContext;
// nothing else in the engine carries cross-call state.
type DealContext struct {
	Forcing ForcingLevel

	// forcedAt is the call index at which the current obligation was
	// created, used to detect intervening opponent action.
	forcedAt int
}

// NewDealContext returns the start-of-deal state.
func NewDealContext() *DealContext {
	return &DealContext{Forcing: NonForcing, forcedAt: -1}
}

// Apply escalates the forcing level per a matched rule's directive. Levels
// only ever rise within a deal; a directive below the current level is a
// no-op rather than a downgrade.
func (d *DealContext) Apply(directive ForcingDirective, callIndex int) {
	var next ForcingLevel
	switch directive {
	case ForceOneRound:
		next = ForcingOneRound
	case ForceGame:
		next = GameForce
	default:
		return
	}
	if next > d.Forcing {
		d.Forcing = next
		d.forcedAt = callIndex
	} else if next == d.Forcing && d.Forcing == ForcingOneRound {
		// A fresh one-round force restarts the round obligation.
		d.forcedAt = callIndex
	}
}

// PassAllowed reports whether Pass is legal for the seat under the current
// forcing state. Forcing obligations bind only within an uninterrupted
// partnership sequence: once an opponent acts after the forcing bid, the
// obligation is released.
func (d *DealContext) PassAllowed(auction *bridge.Auction, seat bridge.Seat) bool {
	if d.Forcing == NonForcing {
		return true
	}
	return auction.OpponentActedSince(seat, d.forcedAt+1)
}

// CompleteRound clears a one-round force after the obliged bid is made.
// Game forces persist until the auction ends.
func (d *DealContext) CompleteRound() {
	if d.Forcing == ForcingOneRound {
		d.Forcing = NonForcing
		d.forcedAt = -1
	}
}
