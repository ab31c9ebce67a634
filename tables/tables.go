// Copyright 2026 Trevor Campbell. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package tables loads and indexes the pre-compiled parser tables
// artifact that drives the ZPL parser and validator. The artifact is a
// JSON document produced by the external spec compiler; this package
// never parses authored spec sources.
package tables

import (
	_ "embed"
	"encoding/json"
	"os"

	"github.com/beevik/prefixtree/v2"
	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
)

// SchemaVersion is the artifact schema version this runtime was built
// against. A mismatched artifact still loads, with a warning.
const SchemaVersion = "1.1.1"

// ParserTables is the deserialized runtime artifact.
type ParserTables struct {
	SchemaVersion       string               `json:"schema_version"`
	Commands            []CommandEntry       `json:"commands"`
	OpcodeTrie          *TrieNode            `json:"opcode_trie,omitempty"`
	StructuralRuleIndex *StructuralRuleIndex `json:"structural_rule_index,omitempty"`

	byCode map[string]*CommandEntry
	finder *prefixtree.Tree[*CommandEntry]
}

// A CommandEntry describes one command's shape, typing, and validation
// rules.
type CommandEntry struct {
	Codes     []string   `json:"codes"`
	Name      string     `json:"name,omitempty"`
	Arity     int        `json:"arity"`
	Signature *Signature `json:"signature,omitempty"`
	Args      []ArgUnion `json:"args,omitempty"`

	// Structural flags. When a structural rule index is present in the
	// artifact, index membership overrides these.
	OpensField        bool `json:"opens_field,omitempty"`
	ClosesField       bool `json:"closes_field,omitempty"`
	FieldData         bool `json:"field_data,omitempty"`
	HexEscapeModifier bool `json:"hex_escape_modifier,omitempty"`
	RequiresField     bool `json:"requires_field,omitempty"`
	FieldNumber       bool `json:"field_number,omitempty"`
	Serialization     bool `json:"serialization,omitempty"`
	RawPayload        bool `json:"raw_payload,omitempty"`

	Scope              Scope               `json:"scope,omitempty"`
	Constraints        []Constraint        `json:"constraints,omitempty"`
	ConstraintDefaults *ConstraintDefaults `json:"constraintDefaults,omitempty"`
	Effects            *Effects            `json:"effects,omitempty"`
	StructuralRules    json.RawMessage     `json:"structuralRules,omitempty"`
}

// Code returns the canonical (first) opcode of the entry.
func (c *CommandEntry) Code() string {
	if len(c.Codes) == 0 {
		return ""
	}
	return c.Codes[0]
}

// Scope restricts where a command or constraint is evaluated.
type Scope string

// Command and constraint scopes.
const (
	ScopeLabel Scope = "label"
	ScopeField Scope = "field"
)

// A Signature describes how a command's argument text is split.
type Signature struct {
	Params             []string   `json:"params,omitempty"`
	Joiner             *string    `json:"joiner,omitempty"`
	AllowEmptyTrailing bool       `json:"allowEmptyTrailing,omitempty"`
	NoSpaceAfterOpcode bool       `json:"noSpaceAfterOpcode,omitempty"`
	SplitRule          *SplitRule `json:"splitRule,omitempty"`
}

// JoinerString resolves the effective joiner, defaulting to ",".
// An explicit empty string is a valid joiner (arguments collapse
// character by character).
func (s *Signature) JoinerString() string {
	if s == nil || s.Joiner == nil {
		return ","
	}
	return *s.Joiner
}

// A SplitRule extracts the first argument by fixed width from the text
// directly trailing the opcode (e.g. the font designator of ^A).
type SplitRule struct {
	FirstArgWidth int `json:"firstArgWidth"`
}

// An ArgUnion is either a single argument spec or a oneOf set of
// alternatives for the same position.
type ArgUnion struct {
	Single *Arg  `json:"-"`
	OneOf  []Arg `json:"-"`
}

// UnmarshalJSON accepts either a plain Arg object or {"oneOf": [...]}.
func (u *ArgUnion) UnmarshalJSON(data []byte) error {
	var probe struct {
		OneOf []Arg `json:"oneOf"`
	}
	if err := json.Unmarshal(data, &probe); err == nil && len(probe.OneOf) > 0 {
		u.OneOf = probe.OneOf
		return nil
	}
	u.Single = new(Arg)
	return json.Unmarshal(data, u.Single)
}

// MarshalJSON is the inverse of UnmarshalJSON.
func (u ArgUnion) MarshalJSON() ([]byte, error) {
	if len(u.OneOf) > 0 {
		return json.Marshal(struct {
			OneOf []Arg `json:"oneOf"`
		}{u.OneOf})
	}
	return json.Marshal(u.Single)
}

// Alternatives returns the argument alternatives for the position: the
// oneOf set, or a one-element slice holding the single spec.
func (u *ArgUnion) Alternatives() []Arg {
	if len(u.OneOf) > 0 {
		return u.OneOf
	}
	if u.Single != nil {
		return []Arg{*u.Single}
	}
	return nil
}

// Key returns a representative key for the position.
func (u *ArgUnion) Key() string {
	for _, a := range u.Alternatives() {
		if a.Key != "" {
			return a.Key
		}
	}
	return ""
}

// An Arg is the typed spec of one argument.
type Arg struct {
	Name                string              `json:"name,omitempty"`
	Key                 string              `json:"key,omitempty"`
	Type                string              `json:"type"`
	Unit                string              `json:"unit,omitempty"`
	Optional            bool                `json:"optional,omitempty"`
	Range               *[2]float64         `json:"range,omitempty"`
	RangeWhen           []ConditionalRange  `json:"rangeWhen,omitempty"`
	MinLength           *int                `json:"minLength,omitempty"`
	MaxLength           *int                `json:"maxLength,omitempty"`
	Enum                []EnumValue         `json:"enum,omitempty"`
	Default             string              `json:"default,omitempty"`
	DefaultFrom         string              `json:"defaultFrom,omitempty"`
	DefaultFromStateKey string              `json:"defaultFromStateKey,omitempty"`
	ProfileConstraint   *ProfileConstraint  `json:"profileConstraint,omitempty"`
	RoundingPolicy      *RoundingPolicy     `json:"roundingPolicy,omitempty"`
	RoundingPolicyWhen  string              `json:"roundingPolicyWhen,omitempty"`
}

// A ConditionalRange replaces the base range when its predicate matches
// the command's sibling argument slots.
type ConditionalRange struct {
	When  string     `json:"when"`
	Range [2]float64 `json:"range"`
}

// An EnumValue is either a bare string or {value, meaning}.
type EnumValue struct {
	Value   string `json:"value"`
	Meaning string `json:"meaning,omitempty"`
}

// UnmarshalJSON accepts "X" or {"value": "X", "meaning": "..."}.
func (e *EnumValue) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &e.Value)
	}
	type alias EnumValue
	return json.Unmarshal(data, (*alias)(e))
}

// MarshalJSON is the inverse of UnmarshalJSON.
func (e EnumValue) MarshalJSON() ([]byte, error) {
	if e.Meaning == "" {
		return json.Marshal(e.Value)
	}
	type alias EnumValue
	return json.Marshal(alias(e))
}

// A ProfileConstraint compares an argument against a named numeric
// profile field under a comparison operator.
type ProfileConstraint struct {
	Field string `json:"field"`
	Op    CmpOp  `json:"op"`
}

// CmpOp is a profile-constraint comparison operator.
type CmpOp string

// Comparison operators.
const (
	CmpLte CmpOp = "lte"
	CmpGte CmpOp = "gte"
	CmpLt  CmpOp = "lt"
	CmpGt  CmpOp = "gt"
	CmpEq  CmpOp = "eq"
)

// A RoundingPolicy requires values to be multiples of Multiple.
type RoundingPolicy struct {
	Mode     string  `json:"mode"`
	Multiple float64 `json:"multiple"`
}

// A Constraint is a declarative cross-command rule attached to a
// command entry.
type Constraint struct {
	Kind     ConstraintKind `json:"kind"`
	Scope    Scope          `json:"scope,omitempty"`
	Severity string         `json:"severity,omitempty"`
	Expr     string         `json:"expr,omitempty"`
	Message  string         `json:"message,omitempty"`
}

// ConstraintKind discriminates constraint rules.
type ConstraintKind string

// All constraint kinds.
const (
	KindOrder        ConstraintKind = "order"
	KindRequires     ConstraintKind = "requires"
	KindIncompatible ConstraintKind = "incompatible"
	KindEmptyData    ConstraintKind = "emptyData"
	KindNote         ConstraintKind = "note"
	KindRange        ConstraintKind = "range"
	KindCustom       ConstraintKind = "custom"
)

// ConstraintDefaults supplies a command-level default severity for
// constraints that do not declare one.
type ConstraintDefaults struct {
	Severity string `json:"severity,omitempty"`
}

// Effects lists the state keys a producer command writes.
type Effects struct {
	Sets []string `json:"sets,omitempty"`
}

// A StructuralRuleIndex is the artifact's precomputed trigger/effect
// membership. When present it is authoritative: a command absent from a
// trigger set does not trigger, regardless of its own flags.
type StructuralRuleIndex struct {
	ByKind    map[string][]string `json:"by_kind,omitempty"`
	ByEffect  map[string][]string `json:"by_effect,omitempty"`
	ByTrigger map[string][]string `json:"by_trigger,omitempty"`
}

// Structural trigger names used in the by_trigger index.
const (
	TriggerOpensField        = "OpensField"
	TriggerClosesField       = "ClosesField"
	TriggerFieldData         = "FieldData"
	TriggerFieldNumber       = "FieldNumber"
	TriggerSerialization     = "Serialization"
	TriggerRequiresField     = "RequiresField"
	TriggerHexEscapeModifier = "HexEscapeModifier"
)

// New builds parser tables directly from command entries, the way test
// harnesses and the spec compiler do. The structural rule index is
// optional.
func New(schemaVersion string, commands []CommandEntry, idx *StructuralRuleIndex) *ParserTables {
	t := &ParserTables{
		SchemaVersion:       schemaVersion,
		Commands:            commands,
		StructuralRuleIndex: idx,
	}
	t.buildIndexes()
	return t
}

// Parse deserializes a parser-tables artifact from JSON and builds the
// runtime indexes. A schema-version mismatch is logged, not fatal.
func Parse(data []byte) (*ParserTables, error) {
	t := new(ParserTables)
	if err := json.Unmarshal(data, t); err != nil {
		return nil, errors.Wrap(err, "parser tables")
	}
	if t.SchemaVersion != SchemaVersion {
		log.Warn("parser tables schema version mismatch",
			"artifact", t.SchemaVersion, "supported", SchemaVersion)
	}
	t.buildIndexes()
	return t, nil
}

// Load reads and parses a parser-tables artifact from disk.
func Load(path string) (*ParserTables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read parser tables %s", path)
	}
	return Parse(data)
}

//go:embed testdata/parser_tables.json
var defaultTables []byte

// TablesEnv is the environment variable used by test and benchmark
// harnesses to point LoadDefault at an alternate artifact.
const TablesEnv = "ZPL_TABLES_JSON"

// LoadDefault returns the parser tables from the path in ZPL_TABLES_JSON
// when set, falling back to the artifact embedded in the binary.
func LoadDefault() (*ParserTables, error) {
	if path := os.Getenv(TablesEnv); path != "" {
		return Load(path)
	}
	return Parse(defaultTables)
}

// buildIndexes constructs the code map, the abbreviation finder, and
// (when the artifact omits one) the opcode trie.
func (t *ParserTables) buildIndexes() {
	t.byCode = make(map[string]*CommandEntry)
	t.finder = prefixtree.New[*CommandEntry]()
	for i := range t.Commands {
		cmd := &t.Commands[i]
		for _, code := range cmd.Codes {
			t.byCode[code] = cmd
			t.finder.Add(code, cmd)
		}
	}
	if t.OpcodeTrie == nil {
		t.OpcodeTrie = buildTrie(t.Commands)
	}
}

// Command returns the entry for an exact canonical code (e.g. "^FO").
func (t *ParserTables) Command(code string) *CommandEntry {
	return t.byCode[code]
}

// CodeSet returns the set of all known canonical codes.
func (t *ParserTables) CodeSet() map[string]bool {
	set := make(map[string]bool, len(t.byCode))
	for code := range t.byCode {
		set[code] = true
	}
	return set
}

// Find looks up a command by unambiguous code prefix, the way the
// doctor/explain surfaces accept abbreviated opcodes. Returns
// prefixtree.ErrPrefixNotFound or prefixtree.ErrPrefixAmbiguous on
// failure.
func (t *ParserTables) Find(prefix string) (*CommandEntry, error) {
	return t.finder.FindValue(prefix)
}
