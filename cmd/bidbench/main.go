// Command bidbench replays a corpus of deals through the bidding engine
// and reports how the auctions came out.
//
// Input is JSONL, one deal per line:
//
//	{"id":"d-001","dealer":"N","vul":"none","hands":{"N":"AQ54.KJ3.QJ4.A92",...}}
//
// Usage:
//
//	go run ./cmd/bidbench/ --input deals.jsonl --workers 4 --json
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/jlowell/bridgecoach/engine/internal/config"
	"github.com/jlowell/bridgecoach/engine/internal/engine"
	"github.com/jlowell/bridgecoach/engine/internal/logger"
	"github.com/jlowell/bridgecoach/engine/pkg/bridge"
)

// dealRecord is one line of the input corpus.
type dealRecord struct {
	ID     string            `json:"id"`
	Dealer string            `json:"dealer"`
	Vul    string            `json:"vul"`
	Hands  map[string]string `json:"hands"`
}

// dealResult is the outcome of replaying one deal.
type dealResult struct {
	ID       string   `json:"id"`
	Auction  string   `json:"auction"`
	Contract string   `json:"contract"`
	Declarer string   `json:"declarer,omitempty"`
	Calls    int      `json:"calls"`
	Errors   []string `json:"errors,omitempty"`
}

func main() {
	var (
		inputFile string
		workers   int
		jsonOut   bool
		maxCalls  int
	)
	flag.StringVar(&inputFile, "input", "", "Path to deals JSONL file")
	flag.IntVar(&workers, "workers", 1, "Concurrency (parallel deals)")
	flag.BoolVar(&jsonOut, "json", false, "Output results as JSON")
	flag.IntVar(&maxCalls, "max-calls", 40, "Abort an auction after this many calls")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Config load failed")
	}
	logger.Init(cfg.LogLevel, cfg.LogFile)

	if inputFile == "" {
		log.Fatal().Msg("--input is required")
	}

	store, err := engine.LoadSchemas(cfg.SchemaDir)
	if err != nil {
		log.Fatal().Err(err).Msg("Schema load failed")
	}

	var opts []engine.Option
	if cfg.LegacyFallback {
		opts = append(opts, engine.WithLegacyFallback())
	}
	if cfg.OraclePath != "" {
		oracle, err := engine.NewExecOracle(cfg.OraclePath, engine.WithReviewTimeout(cfg.OracleTimeout))
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.OraclePath).Msg("Oracle startup failed")
		}
		defer oracle.Close()
		opts = append(opts, engine.WithOracle(oracle))
	}
	eng := engine.New(store, opts...)

	deals, err := readDeals(inputFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Read input failed")
	}

	results := make([]*dealResult, len(deals))
	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)

	for i := range deals {
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }()
			results[idx] = replayDeal(eng, &deals[idx], maxCalls)
		}(i)
	}
	wg.Wait()

	if jsonOut {
		printJSON(results)
	} else {
		printSummary(results)
	}
}

func readDeals(path string) ([]dealRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var deals []dealRecord
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var rec dealRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			log.Warn().Err(err).Msg("Skipping line with bad JSON")
			continue
		}
		deals = append(deals, rec)
	}
	return deals, scanner.Err()
}

// replayDeal runs one auction to completion, collecting any decision
// errors without aborting the deal.
func replayDeal(eng *engine.Engine, rec *dealRecord, maxCalls int) *dealResult {
	res := &dealResult{ID: rec.ID}

	dealer, err := bridge.ParseSeat(rec.Dealer)
	if err != nil {
		res.Errors = append(res.Errors, err.Error())
		return res
	}
	vul, err := parseVul(rec.Vul)
	if err != nil {
		res.Errors = append(res.Errors, err.Error())
		return res
	}

	hands := make(map[bridge.Seat]*bridge.Hand, 4)
	for name, spec := range rec.Hands {
		seat, err := bridge.ParseSeat(name)
		if err != nil {
			res.Errors = append(res.Errors, err.Error())
			return res
		}
		hand, err := bridge.ParseHand(spec)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("seat %s: %v", seat, err))
			return res
		}
		hands[seat] = hand
	}
	if len(hands) != 4 {
		res.Errors = append(res.Errors, fmt.Sprintf("deal has %d hands, need 4", len(hands)))
		return res
	}

	auction := bridge.NewAuction(dealer)
	// One forcing context per partnership: a forcing directive created by
	// one member binds the other.
	contexts := [2]*engine.DealContext{engine.NewDealContext(), engine.NewDealContext()}

	for len(auction.Calls) < maxCalls && !auction.IsOver() {
		seat := auction.NextSeat()
		bid, _, err := eng.GetNextBid(hands[seat], auction, seat, vul, contexts[int(seat)%2])
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("%s: %v", seat, err))
		}
		auction = auction.Extend(bid)
	}

	res.Auction = auction.String()
	res.Calls = len(auction.Calls)
	if last, idx, ok := auction.LastContract(); ok {
		res.Contract = last.String()
		res.Declarer = auction.SeatAt(idx).String()
	} else {
		res.Contract = "passed out"
	}
	return res
}

func parseVul(s string) (bridge.Vulnerability, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return bridge.VulNone, nil
	case "ns":
		return bridge.VulNS, nil
	case "ew":
		return bridge.VulEW, nil
	case "both", "all":
		return bridge.VulBoth, nil
	}
	return 0, fmt.Errorf("invalid vulnerability %q", s)
}

func printSummary(results []*dealResult) {
	contracts := make(map[string]int)
	errored := 0
	totalCalls := 0
	for _, r := range results {
		if len(r.Errors) > 0 {
			errored++
		}
		contracts[r.Contract]++
		totalCalls += r.Calls
	}

	fmt.Printf("\nReplayed %d deals", len(results))
	if errored > 0 {
		fmt.Printf(" (%d with errors)", errored)
	}
	fmt.Println(":")
	for contract, count := range contracts {
		fmt.Printf("  %-10s %d\n", contract, count)
	}
	if len(results) > 0 {
		fmt.Printf("  avg calls per auction: %.1f\n", float64(totalCalls)/float64(len(results)))
	}
}

func printJSON(results []*dealResult) {
	out := struct {
		Total   int           `json:"total"`
		Results []*dealResult `json:"results"`
	}{Total: len(results), Results: results}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(out)
}
