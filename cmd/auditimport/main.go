// Command auditimport reads bid-decision audit records (JSONL) and imports
// them into a SQLite database for regression review. With --verify each
// recorded decision is replayed through the current engine and drift from
// the recorded bid is flagged.
//
// Usage:
//
//	go run ./cmd/auditimport/ --input decisions.jsonl --db audit.db --verify
package main

import (
	"bufio"
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jlowell/bridgecoach/engine/internal/engine"
	"github.com/jlowell/bridgecoach/engine/pkg/bridge"
)

// auditRecord is one logged bid decision.
type auditRecord struct {
	DealID      string  `json:"deal_id"`
	Seat        string  `json:"seat"`
	Dealer      string  `json:"dealer"`
	Vul         string  `json:"vul"`
	Hand        string  `json:"hand"`
	Auction     string  `json:"auction"` // calls before the decision
	Bid         string  `json:"bid"`
	RuleID      string  `json:"rule_id"`
	Quality     float64 `json:"quality"`
	Explanation string  `json:"explanation"`
}

const schema = `
CREATE TABLE IF NOT EXISTS decisions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	deal_id TEXT NOT NULL,
	seat TEXT NOT NULL,
	dealer TEXT NOT NULL,
	vul TEXT NOT NULL,
	hand TEXT NOT NULL,
	auction TEXT NOT NULL,
	bid TEXT NOT NULL,
	rule_id TEXT,
	quality REAL,
	explanation TEXT,
	engine_bid TEXT,
	drifted INTEGER NOT NULL DEFAULT 0,
	imported_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_decisions_deal ON decisions(deal_id);
CREATE INDEX IF NOT EXISTS idx_decisions_drifted ON decisions(drifted);
`

func main() {
	inputFile := flag.String("input", "", "Path to decisions JSONL file")
	dbPath := flag.String("db", "audit.db", "SQLite database path")
	verify := flag.Bool("verify", false, "Replay each decision through the current engine and flag drift")
	flag.Parse()

	if *inputFile == "" {
		log.Fatal("--input is required")
	}

	db, err := sql.Open("sqlite", *dbPath)
	if err != nil {
		log.Fatalf("open sqlite: %v", err)
	}
	defer db.Close()
	// modernc sqlite is single-writer; serialize access.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		log.Fatalf("create schema: %v", err)
	}

	var eng *engine.Engine
	if *verify {
		store, err := engine.LoadSchemas("")
		if err != nil {
			log.Fatalf("load schemas: %v", err)
		}
		eng = engine.New(store)
	}

	f, err := os.Open(*inputFile)
	if err != nil {
		log.Fatalf("open input: %v", err)
	}
	defer f.Close()

	tx, err := db.Begin()
	if err != nil {
		log.Fatalf("begin tx: %v", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO decisions
		(deal_id, seat, dealer, vul, hand, auction, bid, rule_id, quality, explanation, engine_bid, drifted, imported_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		log.Fatalf("prepare insert: %v", err)
	}

	imported, drifted := 0, 0
	now := time.Now().UTC().Format(time.RFC3339)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var rec auditRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			log.Printf("WARN: skip line (bad JSON): %v", err)
			continue
		}

		engineBid := ""
		drift := 0
		if eng != nil {
			got, err := replay(eng, &rec)
			if err != nil {
				log.Printf("WARN: verify %s/%s: %v", rec.DealID, rec.Seat, err)
			} else {
				engineBid = got
				if got != rec.Bid {
					drift = 1
					drifted++
				}
			}
		}

		if _, err := stmt.Exec(rec.DealID, rec.Seat, rec.Dealer, rec.Vul, rec.Hand,
			rec.Auction, rec.Bid, rec.RuleID, rec.Quality, rec.Explanation,
			engineBid, drift, now); err != nil {
			log.Printf("ERROR: insert %s/%s: %v", rec.DealID, rec.Seat, err)
			continue
		}
		imported++
	}
	if err := scanner.Err(); err != nil {
		log.Fatalf("read input: %v", err)
	}

	if err := stmt.Close(); err != nil {
		log.Fatalf("close statement: %v", err)
	}
	if err := tx.Commit(); err != nil {
		log.Fatalf("commit: %v", err)
	}

	if *verify {
		log.Printf("done: imported %d decisions, %d drifted from the current engine", imported, drifted)
	} else {
		log.Printf("done: imported %d decisions", imported)
	}
}

// replay runs one recorded decision through the engine and returns the bid
// it would make today.
func replay(eng *engine.Engine, rec *auditRecord) (string, error) {
	hand, err := bridge.ParseHand(rec.Hand)
	if err != nil {
		return "", fmt.Errorf("hand: %w", err)
	}
	dealer, err := bridge.ParseSeat(rec.Dealer)
	if err != nil {
		return "", fmt.Errorf("dealer: %w", err)
	}
	seat, err := bridge.ParseSeat(rec.Seat)
	if err != nil {
		return "", fmt.Errorf("seat: %w", err)
	}
	vul, err := parseVul(rec.Vul)
	if err != nil {
		return "", err
	}
	auction, err := bridge.ParseAuction(dealer, rec.Auction)
	if err != nil {
		return "", fmt.Errorf("auction: %w", err)
	}

	bid, _, err := eng.GetNextBid(hand, auction, seat, vul, engine.NewDealContext())
	if err != nil {
		return "", err
	}
	return bid.String(), nil
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
