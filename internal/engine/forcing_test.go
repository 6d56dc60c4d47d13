package engine

import (
	"testing"

	"github.com/jlowell/bridgecoach/engine/pkg/bridge"
)

func TestForcingOnlyEscalates(t *testing.T) {
	d := NewDealContext()
	if d.Forcing != NonForcing {
		t.Fatalf("fresh context forcing = %v", d.Forcing)
	}

	d.Apply(ForceOneRound, 0)
	if d.Forcing != ForcingOneRound {
		t.Fatalf("after one_round: %v", d.Forcing)
	}

	d.Apply(ForceGame, 2)
	if d.Forcing != GameForce {
		t.Fatalf("after game: %v", d.Forcing)
	}

	// A later one-round directive must not downgrade a game force.
	d.Apply(ForceOneRound, 4)
	if d.Forcing != GameForce {
		t.Errorf("game force downgraded to %v", d.Forcing)
	}
}

func TestPassAllowedUnderForce(t *testing.T) {
	d := NewDealContext()
	a, err := bridge.ParseAuction(bridge.North, "1C P 1S P")
	if err != nil {
		t.Fatal(err)
	}
	// The 1S response at index 2 created the force.
	d.Apply(ForceOneRound, 2)

	if d.PassAllowed(a, bridge.North) {
		t.Error("opener may not pass a forcing response with no interference")
	}
}

func TestForceReleasedByOpponentAction(t *testing.T) {
	d := NewDealContext()
	a, err := bridge.ParseAuction(bridge.North, "1C P 1S 2D")
	if err != nil {
		t.Fatal(err)
	}
	d.Apply(ForceOneRound, 2)

	if !d.PassAllowed(a, bridge.North) {
		t.Error("opponent's 2D overcall should release the forcing obligation")
	}
}

func TestOpponentPassesDoNotRelease(t *testing.T) {
	d := NewDealContext()
	a, err := bridge.ParseAuction(bridge.North, "1C P 1S P")
	if err != nil {
		t.Fatal(err)
	}
	d.Apply(ForceOneRound, 2)

	if d.PassAllowed(a, bridge.North) {
		t.Error("an opponent pass is not action; the force must hold")
	}
}

func TestCompleteRoundClearsOneRoundOnly(t *testing.T) {
	d := NewDealContext()
	d.Apply(ForceOneRound, 0)
	d.CompleteRound()
	if d.Forcing != NonForcing {
		t.Errorf("one-round force not cleared: %v", d.Forcing)
	}

	d.Apply(ForceGame, 1)
	d.CompleteRound()
	if d.Forcing != GameForce {
		t.Errorf("game force cleared by CompleteRound: %v", d.Forcing)
	}
}

func TestReforceRestartsRound(t *testing.T) {
	d := NewDealContext()
	a, err := bridge.ParseAuction(bridge.North, "1C P 1S 2D 2H P 3C P")
	if err != nil {
		t.Fatal(err)
	}

	// First force at index 2 was released by the 2D overcall; a second
	// one-round force at index 6 binds again from there.
	d.Apply(ForceOneRound, 2)
	d.Apply(ForceOneRound, 6)
	if d.PassAllowed(a, bridge.North) {
		t.Error("re-force did not restart the obligation window")
	}
}
