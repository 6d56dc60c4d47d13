package bridge

import "testing"

func mustAuction(t *testing.T, dealer Seat, calls string) *Auction {
	t.Helper()
	a, err := ParseAuction(dealer, calls)
	if err != nil {
		t.Fatalf("parse auction %q: %v", calls, err)
	}
	return a
}

func TestSeatRelations(t *testing.T) {
	if North.Partner() != South {
		t.Error("north's partner should be south")
	}
	if East.LHO() != South {
		t.Error("east's LHO should be south")
	}
	if East.RHO() != North {
		t.Error("east's RHO should be north")
	}
	if !West.SameSide(East) {
		t.Error("west and east are partners")
	}
	if North.SameSide(East) {
		t.Error("north and east are opponents")
	}
}

func TestAuctionSeatIndexing(t *testing.T) {
	a := mustAuction(t, East, "1H P 2H")
	if got := a.SeatAt(0); got != East {
		t.Errorf("call 0: expected E, got %s", got)
	}
	if got := a.SeatAt(2); got != West {
		t.Errorf("call 2: expected W, got %s", got)
	}
	if got := a.NextSeat(); got != North {
		t.Errorf("next seat: expected N, got %s", got)
	}
}

func TestLastContract(t *testing.T) {
	a := mustAuction(t, North, "1NT P 2C X")
	last, idx, ok := a.LastContract()
	if !ok {
		t.Fatal("expected a contract bid")
	}
	if last != NewBid(2, StrainClubs) || idx != 2 {
		t.Errorf("expected 2C at index 2, got %v at %d", last, idx)
	}
}

func TestLegal_ContractMustBeat(t *testing.T) {
	a := mustAuction(t, North, "1H P")
	if a.Legal(MustParseBid("1D")) {
		t.Error("1D should be illegal over 1H")
	}
	if !a.Legal(MustParseBid("1S")) {
		t.Error("1S should be legal over 1H")
	}
	if !a.Legal(Pass) {
		t.Error("pass is always legal")
	}
}

func TestLegal_Double(t *testing.T) {
	// East may double North's 1H.
	a := mustAuction(t, North, "1H")
	if !a.Legal(Double) {
		t.Error("opponent should be able to double 1H")
	}

	// South may not double partner's 1H.
	a = mustAuction(t, North, "1H P")
	if a.Legal(Double) {
		t.Error("doubling partner's bid should be illegal")
	}

	// Double of an already-doubled contract is illegal.
	a = mustAuction(t, North, "1H X P")
	if a.Legal(Double) {
		t.Error("double of a doubled contract should be illegal")
	}

	// No contract bid yet: double illegal.
	a = mustAuction(t, North, "P P")
	if a.Legal(Double) {
		t.Error("double with no contract should be illegal")
	}
}

func TestLegal_Redouble(t *testing.T) {
	a := mustAuction(t, North, "1H X")
	if !a.Legal(Redouble) {
		t.Error("redouble of opposing double should be legal")
	}

	a = mustAuction(t, North, "1H X XX")
	if a.Legal(Redouble) {
		t.Error("redouble of a redouble should be illegal")
	}

	a = mustAuction(t, North, "1H P")
	if a.Legal(Redouble) {
		t.Error("redouble with no double should be illegal")
	}
}

func TestIsOver(t *testing.T) {
	if mustAuction(t, North, "P P P").IsOver() {
		t.Error("three passes with no bid: auction continues to fourth seat")
	}
	if !mustAuction(t, North, "P P P P").IsOver() {
		t.Error("four passes should end the auction")
	}
	if !mustAuction(t, North, "1H P P P").IsOver() {
		t.Error("bid followed by three passes should end the auction")
	}
	if mustAuction(t, North, "1H P P").IsOver() {
		t.Error("only two passes after the bid: auction continues")
	}
}

func TestContested(t *testing.T) {
	if mustAuction(t, North, "1H P 2H").Contested() {
		t.Error("uncontested partnership sequence marked contested")
	}
	if !mustAuction(t, North, "1H 2C").Contested() {
		t.Error("overcall should mark the auction contested")
	}
	if !mustAuction(t, North, "1H X").Contested() {
		t.Error("double should mark the auction contested")
	}
}

func TestOpponentActedSince(t *testing.T) {
	a := mustAuction(t, North, "1H P 2H 3C")
	// East's 3C at index 3 is an opponent action for North.
	if !a.OpponentActedSince(North, 0) {
		t.Error("expected opponent action after index 0")
	}
	if a.OpponentActedSince(North, 4) {
		t.Error("no calls after index 3")
	}

	quiet := mustAuction(t, North, "1H P 2H P")
	if quiet.OpponentActedSince(North, 1) {
		t.Error("opponent passes should not count as action")
	}
}

func TestExtendDoesNotMutate(t *testing.T) {
	a := mustAuction(t, North, "1H P")
	b := a.Extend(MustParseBid("2H"))
	if len(a.Calls) != 2 {
		t.Errorf("original auction mutated: %d calls", len(a.Calls))
	}
	if len(b.Calls) != 3 {
		t.Errorf("extended auction: expected 3 calls, got %d", len(b.Calls))
	}
}
