package main

import (
	"strings"
	"testing"

	"github.com/jlowell/bridgecoach/engine/internal/engine"
)

// A strong artificial 2C obligates the whole partnership, so the replay
// must show the responder the same forcing context as the opener. A
// responder with nothing to say is then reported as an engine failure
// instead of quietly passing the force out.
func TestReplayDealSharesForcingAcrossPartnership(t *testing.T) {
	store, err := engine.LoadSchemas("")
	if err != nil {
		t.Fatal(err)
	}
	eng := engine.New(store)

	rec := &dealRecord{
		ID:     "strong-two",
		Dealer: "N",
		Vul:    "none",
		Hands: map[string]string{
			"N": "AKQJ.AKQ.AKQ.742",
			"E": "T97.JT96.JT8.AT8",
			"S": "8643.752.9642.53",
			"W": "52.843.753.KQJ96",
		},
	}

	res := replayDeal(eng, rec, 40)
	if !strings.HasPrefix(res.Auction, "2C") {
		t.Fatalf("auction = %q, want a 2C opening", res.Auction)
	}

	reported := false
	for _, e := range res.Errors {
		if strings.HasPrefix(e, "S:") && strings.Contains(e, "forcing") {
			reported = true
		}
	}
	if !reported {
		t.Fatalf("responder's pass under force went unreported; errors = %v", res.Errors)
	}
}
