package engine

import (
	"testing"

	"github.com/jlowell/bridgecoach/engine/pkg/bridge"
)

func validate(t *testing.T, hand string, dealer bridge.Seat, calls string, seat bridge.Seat, bid string, vul bridge.Vulnerability) Verdict {
	t.Helper()
	h := bridge.MustParseHand(hand)
	a, err := bridge.ParseAuction(dealer, calls)
	if err != nil {
		t.Fatal(err)
	}
	return ValidateBid(h, bridge.MustParseBid(bid), a, seat, vul)
}

func TestGovernorOpeningFloors(t *testing.T) {
	tests := []struct {
		name  string
		hand  string
		vul   bridge.Vulnerability
		valid bool
	}{
		{"full values", "AQ54.KJ3.QJ4.A92", bridge.VulNone, true},
		{"rule of 20 light opening", "AQ432.KJ54.J32.2", bridge.VulNone, true},
		{"rule of 20 denied unfavorable", "AQ432.KJ54.J32.2", bridge.VulNS, false},
		{"ten count failing rule of 20", "AQ32.J954.K32.32", bridge.VulNone, false},
		{"plain subminimum", "Q543.J54.Q32.J87", bridge.VulNone, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v := validate(t, tc.hand, bridge.North, "", bridge.North, "1S", tc.vul)
			if v.Valid != tc.valid {
				t.Errorf("valid = %v (%s), want %v", v.Valid, v.Reason, tc.valid)
			}
		})
	}
}

func TestGovernorPassAlwaysSound(t *testing.T) {
	v := validate(t, "Q543.J54.Q32.J87", bridge.North, "", bridge.North, "P", bridge.VulNone)
	if !v.Valid {
		t.Errorf("pass rejected: %s", v.Reason)
	}
}

func TestGovernorResponseFloor(t *testing.T) {
	// 2-level response needs 7; a five-card suit buys one point back.
	v := validate(t, "32.QJ542.K932.84", bridge.North, "1S P", bridge.South, "2H", bridge.VulNone)
	if !v.Valid {
		t.Errorf("6 HCP with a fifth heart rejected at the two level: %s", v.Reason)
	}

	// The same strength with only four hearts stays below the floor.
	v = validate(t, "32.QJ54.K9532.84", bridge.North, "1S P", bridge.South, "2H", bridge.VulNone)
	if v.Valid {
		t.Error("6 HCP with four hearts accepted at the two level")
	}
}

func TestGovernorOvercallFloors(t *testing.T) {
	// One level: 8 HCP is enough.
	v := validate(t, "AQ542.932.Q54.92", bridge.North, "1D", bridge.East, "1S", bridge.VulNone)
	if !v.Valid {
		t.Errorf("8 HCP one-level overcall rejected: %s", v.Reason)
	}

	// Two level with a strong suit: quality discount applies.
	v = validate(t, "92.54.AKQJ54.932", bridge.North, "1S", bridge.East, "2D", bridge.VulNone)
	if !v.Valid {
		t.Errorf("solid-suit two-level overcall rejected: %s", v.Reason)
	}

	// Two level with a ragged suit: the premium pushes the floor up.
	v = validate(t, "A2.K4.J86542.932", bridge.North, "1S", bridge.East, "2D", bridge.VulNone)
	if v.Valid {
		t.Error("ragged-suit two-level overcall accepted on 8 HCP")
	}
}

func TestGovernorJumpOvercallBands(t *testing.T) {
	// 1C - 2S is a jump: the cheapest spade bid is 1S.
	weak := validate(t, "KQJ765.32.954.32", bridge.North, "1C", bridge.East, "2S", bridge.VulNone)
	if !weak.Valid {
		t.Errorf("weak jump overcall rejected: %s", weak.Reason)
	}

	strong := validate(t, "AKQJ54.A2.K54.92", bridge.North, "1C", bridge.East, "2S", bridge.VulNone)
	if !strong.Valid {
		t.Errorf("strong jump overcall rejected: %s", strong.Reason)
	}

	middle := validate(t, "KQJ765.A2.K54.32", bridge.North, "1C", bridge.East, "2S", bridge.VulNone)
	if middle.Valid {
		t.Error("11-14 HCP jump overcall accepted; the band is unbiddable")
	}

	shortSuit := validate(t, "KQJ76.532.954.32", bridge.North, "1C", bridge.East, "2S", bridge.VulNone)
	if shortSuit.Valid {
		t.Error("weak jump overcall accepted on a five-card suit")
	}
}

func TestGovernorTakeoutDouble(t *testing.T) {
	full := validate(t, "KQ54.2.AJ54.K932", bridge.North, "1H", bridge.East, "X", bridge.VulNone)
	if !full.Valid {
		t.Errorf("12 HCP takeout double rejected: %s", full.Reason)
	}

	shapely := validate(t, "KQJ54.2.KJ542.32", bridge.North, "1H", bridge.East, "X", bridge.VulNone)
	if !shapely.Valid {
		t.Errorf("shapely 10-count takeout double rejected: %s", shapely.Reason)
	}

	flat := validate(t, "K954.32.QJ54.Q32", bridge.North, "1H", bridge.East, "X", bridge.VulNone)
	if flat.Valid {
		t.Error("flat 8-count takeout double accepted")
	}
}

func TestGovernorNothingToDouble(t *testing.T) {
	v := validate(t, "KQ54.2.AJ54.K932", bridge.North, "", bridge.North, "X", bridge.VulNone)
	if v.Valid {
		t.Error("double with no opening accepted")
	}
}
