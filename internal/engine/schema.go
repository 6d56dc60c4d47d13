package engine

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/jlowell/bridgecoach/engine/pkg/bridge"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// ConstraintKind distinguishes hard gates from soft preferences.
type ConstraintKind int

const (
	Hard ConstraintKind = iota
	Soft
)

// CombineOp tags a constraint node: a leaf feature test or a boolean
// combinator over child constraints.
type CombineOp int

const (
	OpLeaf CombineOp = iota
	OpAll
	OpAny
	OpNot
)

// Constraint is the single normalized constraint shape the matcher
// evaluates. Legacy binary conditions and the newer explicit constraint
// arrays are both converted into this at load time; the matcher never
// branches on schema shape.
type Constraint struct {
	Op       CombineOp
	Children []Constraint // combinator nodes only

	Feature        Feature
	Kind           ConstraintKind
	Min            *float64
	Max            *float64
	Equals         *Value
	In             []string
	NotIn          []string
	PenaltyPerUnit float64
}

// ForcingDirective is a rule's effect on the partnership forcing state.
type ForcingDirective string

const (
	ForceNone     ForcingDirective = ""
	ForceOneRound ForcingDirective = "one_round"
	ForceGame     ForcingDirective = "game"
)

// Rule is one immutable declarative bidding rule.
type Rule struct {
	ID               string
	Category         string
	Priority         int
	Trigger          []string // normalized auction-tail pattern, empty = no trigger
	Constraints      []Constraint
	BidTemplate      string
	Explanation      string
	Forcing          ForcingDirective
	StrengthDefining bool // doubles the over-ceiling HCP penalty rate
}

// SchemaStore is the loaded-once, read-only rule collection. Safe to share
// across any number of concurrent engines.
type SchemaStore struct {
	rules      []Rule
	byCategory map[string][]*Rule
}

// Rules returns all loaded rules.
func (s *SchemaStore) Rules() []Rule {
	return s.rules
}

// Category returns the rules of one category.
func (s *SchemaStore) Category(name string) []*Rule {
	return s.byCategory[name]
}

// Len returns the number of loaded rules.
func (s *SchemaStore) Len() int {
	return len(s.rules)
}

// schemaFile is the on-disk schema shape.
type schemaFile struct {
	Category string       `json:"category"`
	Rules    []schemaRule `json:"rules"`
}

// schemaRule accepts both the legacy binary "conditions" object and the
// newer explicit "constraints" array.
type schemaRule struct {
	ID               string         `json:"id"`
	Priority         int            `json:"priority"`
	Trigger          []string       `json:"trigger,omitempty"`
	Conditions       map[string]any `json:"conditions,omitempty"`
	Constraints      []schemaConstr `json:"constraints,omitempty"`
	Bid              string         `json:"bid"`
	Explanation      string         `json:"explanation"`
	Forcing          string         `json:"forcing,omitempty"`
	StrengthDefining bool           `json:"strength_defining,omitempty"`
}

// schemaConstr is one entry of the explicit constraint array, or a boolean
// combinator over nested entries.
type schemaConstr struct {
	Feature        string         `json:"feature,omitempty"`
	Type           string         `json:"constraint_type,omitempty"`
	Min            *float64       `json:"min,omitempty"`
	Max            *float64       `json:"max,omitempty"`
	Exact          any            `json:"exact,omitempty"`
	In             []string       `json:"in,omitempty"`
	NotIn          []string       `json:"not_in,omitempty"`
	PenaltyPerUnit float64        `json:"penalty_per_unit,omitempty"`
	All            []schemaConstr `json:"all,omitempty"`
	Any            []schemaConstr `json:"any,omitempty"`
	Not            *schemaConstr  `json:"not,omitempty"`
}

// defaultPenaltyPerUnit applies to soft constraints that do not specify one.
const defaultPenaltyPerUnit = 0.25

// LoadSchemas loads the embedded rule files plus any *.json files in
// extraDir (empty = embedded only). A malformed or invalid file is logged
// and skipped; the store always loads whatever rules remain.
func LoadSchemas(extraDir string) (*SchemaStore, error) {
	store := &SchemaStore{byCategory: make(map[string][]*Rule)}

	entries, err := schemaFS.ReadDir("schemas")
	if err != nil {
		return nil, fmt.Errorf("read embedded schemas: %w", err)
	}
	for _, e := range entries {
		data, err := schemaFS.ReadFile("schemas/" + e.Name())
		if err != nil {
			log.Warn().Err(err).Str("file", e.Name()).Msg("Skipping unreadable schema file")
			continue
		}
		store.loadFile(e.Name(), data)
	}

	if extraDir != "" {
		paths, err := filepath.Glob(filepath.Join(extraDir, "*.json"))
		if err != nil {
			return nil, fmt.Errorf("scan schema dir %s: %w", extraDir, err)
		}
		for _, p := range paths {
			data, err := os.ReadFile(p)
			if err != nil {
				log.Warn().Err(err).Str("file", p).Msg("Skipping unreadable schema file")
				continue
			}
			store.loadFile(filepath.Base(p), data)
		}
	}

	if store.Len() == 0 {
		return nil, fmt.Errorf("no valid rule schemas loaded")
	}

	// Stable order: category, then priority descending, then id.
	sort.Slice(store.rules, func(i, j int) bool {
		a, b := &store.rules[i], &store.rules[j]
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		return a.ID < b.ID
	})
	store.byCategory = make(map[string][]*Rule)
	for i := range store.rules {
		r := &store.rules[i]
		store.byCategory[r.Category] = append(store.byCategory[r.Category], r)
	}

	log.Info().Int("rules", store.Len()).Int("categories", len(store.byCategory)).Msg("Rule schemas loaded")
	return store, nil
}

// loadFile parses and validates one schema file, appending its rules. Any
// failure skips the whole file so one bad schema never takes down the rest.
func (s *SchemaStore) loadFile(name string, data []byte) {
	var file schemaFile
	if err := json.Unmarshal(data, &file); err != nil {
		log.Warn().Err(err).Str("file", name).Msg("Skipping malformed schema file")
		return
	}
	if file.Category == "" {
		log.Warn().Str("file", name).Msg("Skipping schema file with no category")
		return
	}

	var rules []Rule
	for i := range file.Rules {
		rule, err := normalizeRule(file.Category, &file.Rules[i])
		if err != nil {
			log.Warn().Err(err).Str("file", name).Str("rule", file.Rules[i].ID).Msg("Skipping schema file with invalid rule")
			return
		}
		rules = append(rules, rule)
	}
	s.rules = append(s.rules, rules...)
}

// normalizeRule converts a raw schema rule into the internal Rule shape,
// validating feature names and trigger calls.
func normalizeRule(category string, raw *schemaRule) (Rule, error) {
	if raw.ID == "" {
		return Rule{}, fmt.Errorf("rule with no id")
	}
	if raw.Bid == "" {
		return Rule{}, fmt.Errorf("rule %s: no bid template", raw.ID)
	}

	rule := Rule{
		ID:               raw.ID,
		Category:         category,
		Priority:         raw.Priority,
		BidTemplate:      raw.Bid,
		Explanation:      raw.Explanation,
		StrengthDefining: raw.StrengthDefining,
	}

	switch raw.Forcing {
	case "", "none":
		rule.Forcing = ForceNone
	case "one_round":
		rule.Forcing = ForceOneRound
	case "game", "game_force":
		rule.Forcing = ForceGame
	default:
		return Rule{}, fmt.Errorf("rule %s: unknown forcing directive %q", raw.ID, raw.Forcing)
	}

	for _, call := range raw.Trigger {
		b, err := bridge.ParseBid(call)
		if err != nil {
			return Rule{}, fmt.Errorf("rule %s: bad trigger call: %w", raw.ID, err)
		}
		rule.Trigger = append(rule.Trigger, b.String())
	}

	if len(raw.Constraints) > 0 && len(raw.Conditions) > 0 {
		return Rule{}, fmt.Errorf("rule %s: both constraints and legacy conditions present", raw.ID)
	}

	if len(raw.Constraints) > 0 {
		for i := range raw.Constraints {
			c, err := normalizeConstraint(&raw.Constraints[i])
			if err != nil {
				return Rule{}, fmt.Errorf("rule %s: %w", raw.ID, err)
			}
			rule.Constraints = append(rule.Constraints, c)
		}
	} else {
		cs, err := normalizeLegacyConditions(raw.Conditions)
		if err != nil {
			return Rule{}, fmt.Errorf("rule %s: %w", raw.ID, err)
		}
		rule.Constraints = cs
	}

	if len(rule.Constraints) == 0 && len(rule.Trigger) == 0 {
		return Rule{}, fmt.Errorf("rule %s: no constraints and no trigger", raw.ID)
	}
	return rule, nil
}

// normalizeConstraint converts one explicit constraint (or combinator) node.
func normalizeConstraint(raw *schemaConstr) (Constraint, error) {
	combinators := 0
	if len(raw.All) > 0 {
		combinators++
	}
	if len(raw.Any) > 0 {
		combinators++
	}
	if raw.Not != nil {
		combinators++
	}
	if combinators > 1 {
		return Constraint{}, fmt.Errorf("constraint mixes multiple combinators")
	}

	if combinators == 1 {
		var (
			op   CombineOp
			kids []schemaConstr
		)
		switch {
		case len(raw.All) > 0:
			op, kids = OpAll, raw.All
		case len(raw.Any) > 0:
			op, kids = OpAny, raw.Any
		default:
			op, kids = OpNot, []schemaConstr{*raw.Not}
		}
		node := Constraint{Op: op}
		for i := range kids {
			child, err := normalizeConstraint(&kids[i])
			if err != nil {
				return Constraint{}, err
			}
			node.Children = append(node.Children, child)
		}
		return node, nil
	}

	if !KnownFeature(raw.Feature) {
		return Constraint{}, fmt.Errorf("unknown feature %q", raw.Feature)
	}

	c := Constraint{
		Op:             OpLeaf,
		Feature:        Feature(raw.Feature),
		Min:            raw.Min,
		Max:            raw.Max,
		In:             raw.In,
		NotIn:          raw.NotIn,
		PenaltyPerUnit: raw.PenaltyPerUnit,
	}

	switch strings.ToLower(raw.Type) {
	case "", "hard":
		c.Kind = Hard
	case "soft":
		c.Kind = Soft
		if c.PenaltyPerUnit == 0 {
			c.PenaltyPerUnit = defaultPenaltyPerUnit
		}
	default:
		return Constraint{}, fmt.Errorf("feature %s: unknown constraint type %q", raw.Feature, raw.Type)
	}

	if raw.Exact != nil {
		v, err := valueFromJSON(raw.Exact)
		if err != nil {
			return Constraint{}, fmt.Errorf("feature %s: %w", raw.Feature, err)
		}
		c.Equals = &v
	}

	if c.Min == nil && c.Max == nil && c.Equals == nil && len(c.In) == 0 && len(c.NotIn) == 0 {
		return Constraint{}, fmt.Errorf("feature %s: constraint has no bound", raw.Feature)
	}
	return c, nil
}

// normalizeLegacyConditions converts the old binary conditions object:
// "<feature>_min"/"<feature>_max" numeric bounds, "<feature>_in"/
// "<feature>_not_in" membership lists, and bare "<feature>" equality.
// All legacy conditions are HARD.
func normalizeLegacyConditions(conds map[string]any) ([]Constraint, error) {
	// Deterministic order regardless of map iteration.
	keys := make([]string, 0, len(conds))
	for k := range conds {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	merged := make(map[Feature]*Constraint)
	var order []Feature
	get := func(f Feature) *Constraint {
		if c, ok := merged[f]; ok {
			return c
		}
		c := &Constraint{Op: OpLeaf, Feature: f, Kind: Hard}
		merged[f] = c
		order = append(order, f)
		return c
	}

	for _, key := range keys {
		raw := conds[key]
		switch {
		case strings.HasSuffix(key, "_min"):
			f := Feature(strings.TrimSuffix(key, "_min"))
			if !KnownFeature(string(f)) {
				return nil, fmt.Errorf("unknown feature %q", f)
			}
			n, ok := toFloat(raw)
			if !ok {
				return nil, fmt.Errorf("condition %s: expected number", key)
			}
			get(f).Min = &n
		case strings.HasSuffix(key, "_max"):
			f := Feature(strings.TrimSuffix(key, "_max"))
			if !KnownFeature(string(f)) {
				return nil, fmt.Errorf("unknown feature %q", f)
			}
			n, ok := toFloat(raw)
			if !ok {
				return nil, fmt.Errorf("condition %s: expected number", key)
			}
			get(f).Max = &n
		case strings.HasSuffix(key, "_not_in"):
			f := Feature(strings.TrimSuffix(key, "_not_in"))
			if !KnownFeature(string(f)) {
				return nil, fmt.Errorf("unknown feature %q", f)
			}
			vals, err := toStrings(raw)
			if err != nil {
				return nil, fmt.Errorf("condition %s: %w", key, err)
			}
			get(f).NotIn = vals
		case strings.HasSuffix(key, "_in"):
			f := Feature(strings.TrimSuffix(key, "_in"))
			if !KnownFeature(string(f)) {
				return nil, fmt.Errorf("unknown feature %q", f)
			}
			vals, err := toStrings(raw)
			if err != nil {
				return nil, fmt.Errorf("condition %s: %w", key, err)
			}
			get(f).In = vals
		default:
			if !KnownFeature(key) {
				return nil, fmt.Errorf("unknown feature %q", key)
			}
			v, err := valueFromJSON(raw)
			if err != nil {
				return nil, fmt.Errorf("condition %s: %w", key, err)
			}
			c := get(Feature(key))
			c.Equals = &v
		}
	}

	out := make([]Constraint, 0, len(order))
	for _, f := range order {
		out = append(out, *merged[f])
	}
	return out, nil
}

// valueFromJSON converts a decoded JSON scalar into a tagged Value.
func valueFromJSON(raw any) (Value, error) {
	switch v := raw.(type) {
	case float64:
		return NumValue(v), nil
	case string:
		return StrValue(v), nil
	case bool:
		return BoolValue(v), nil
	}
	return Value{}, fmt.Errorf("unsupported value %v (%T)", raw, raw)
}

func toFloat(raw any) (float64, bool) {
	f, ok := raw.(float64)
	return f, ok
}

func toStrings(raw any) ([]string, error) {
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("expected list, got %T", raw)
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		switch v := item.(type) {
		case string:
			out = append(out, v)
		case float64:
			out = append(out, Value{Kind: KindNum, Num: v}.String())
		default:
			return nil, fmt.Errorf("unsupported list element %v (%T)", item, item)
		}
	}
	return out, nil
}
