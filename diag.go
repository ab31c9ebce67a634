// Copyright 2026 Trevor Campbell. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gozpl

import "sort"

// Severity classifies a diagnostic.
type Severity string

// Diagnostic severities, from most to least severe.
const (
	SevError Severity = "error"
	SevWarn  Severity = "warn"
	SevInfo  Severity = "info"
)

// A Diagnostic is one issue reported by the parser or validator. The
// envelope is stable across language bindings.
type Diagnostic struct {
	ID       string            `json:"id"`
	Severity Severity          `json:"severity"`
	Message  string            `json:"message"`
	Span     *Span             `json:"span,omitempty"`
	Context  map[string]string `json:"context,omitempty"`
}

// NewDiagnostic builds a diagnostic anchored to a span. Pass a nil span
// for whole-document issues.
func NewDiagnostic(id string, sev Severity, msg string, span *Span) Diagnostic {
	return Diagnostic{ID: id, Severity: sev, Message: msg, Span: span}
}

// WithContext attaches a context map to the diagnostic and returns it.
func (d Diagnostic) WithContext(ctx map[string]string) Diagnostic {
	d.Context = ctx
	return d
}

// Parser diagnostic identifiers.
const (
	ParserUnterminatedLabel = "ZPL.PARSER.1001"
	ParserUnknownOpcode     = "ZPL.PARSER.1002"
	ParserBadEscape         = "ZPL.PARSER.1003"
)

// Validator diagnostic identifiers.
const (
	UnknownCommand           = "ZPL1103"
	OrderBefore              = "ZPL1201"
	OrderAfter               = "ZPL1202"
	RequiredCommand          = "ZPL1203"
	IncompatibleCommand      = "ZPL1204"
	EmptyFieldData           = "ZPL1205"
	Note                     = "ZPL1206"
	MissingRequiredArg       = "ZPL1501"
	TypeMismatch             = "ZPL1502"
	OutOfRange               = "ZPL1503"
	EnumMismatch             = "ZPL1504"
	LengthViolation          = "ZPL1505"
	RoundingViolation        = "ZPL1506"
	ProfileConstraint        = "ZPL1507"
	ArgUnionMismatch         = "ZPL1508"
	MissingFieldOrigin       = "ZPL2201"
	DuplicateFieldNumber     = "ZPL2202"
	RedundantState           = "ZPL2203"
	UnterminatedField        = "ZPL2204"
	HexEscape                = "ZPL2206"
	GFMemoryExceeded         = "ZPL2309"
	MissingExplicitDimension = "ZPL2310"
)

// A registry row associates a diagnostic code with its default severity,
// a one-line summary, and a longer description for Explain.
type diagEntry struct {
	id       string
	severity Severity
	summary  string
	describe string
}

var registry = []diagEntry{
	{ParserUnterminatedLabel, SevWarn, "label not terminated",
		"A ^XA label start was seen but the input ended before the matching ^XZ."},
	{ParserUnknownOpcode, SevError, "unknown opcode",
		"No command in the parser tables matches any prefix of the text following the leader character. The parser skips to the next leader."},
	{ParserBadEscape, SevWarn, "malformed escape continuation",
		"A hex escape indicator appeared at the end of a line or was followed by non-hex characters."},

	{UnknownCommand, SevWarn, "command not in spec tables",
		"The command parsed syntactically but no entry for it exists in the loaded parser tables, so it cannot be validated."},
	{OrderBefore, SevWarn, "command appears too late",
		"A before: ordering constraint fired because one of its target commands was already seen in the evaluated scope."},
	{OrderAfter, SevWarn, "command appears too early",
		"An after: ordering constraint fired because none of its target commands had been seen yet in the evaluated scope."},
	{RequiredCommand, SevWarn, "required companion command missing",
		"None of the commands this one requires appears anywhere in the label."},
	{IncompatibleCommand, SevWarn, "incompatible command present",
		"A command that cannot coexist with this one appears in the same label."},
	{EmptyFieldData, SevWarn, "empty field data",
		"The command's first argument is empty and no following field data before the next command carries content."},
	{Note, SevInfo, "advisory note",
		"A spec-authored informational note whose predicate (if any) matched."},
	{MissingRequiredArg, SevError, "required argument missing",
		"A non-optional argument was omitted and no producer command earlier in the label supplies its default."},
	{TypeMismatch, SevError, "argument has wrong type",
		"The argument text does not conform to the declared type (int, float, enum, string, raw)."},
	{OutOfRange, SevError, "argument out of range",
		"The numeric value falls outside the declared range, after applying any matching conditional range."},
	{EnumMismatch, SevError, "argument not an allowed value",
		"The value is not one of the declared enum members."},
	{LengthViolation, SevWarn, "argument length out of bounds",
		"The string argument is shorter than minLength or longer than maxLength."},
	{RoundingViolation, SevWarn, "value violates rounding policy",
		"The value is not a multiple of the declared rounding multiple."},
	{ProfileConstraint, SevError, "value exceeds printer capability",
		"The argument violates a limit taken from the active printer profile."},
	{ArgUnionMismatch, SevError, "argument matches no union alternative",
		"None of the acceptable shapes declared for this position accepts the value."},
	{MissingFieldOrigin, SevWarn, "field data without field origin",
		"^FD/^FV appeared with no preceding field-opening command such as ^FO or ^FT."},
	{DuplicateFieldNumber, SevWarn, "duplicate ^FN value",
		"The same field number was assigned twice within one label."},
	{RedundantState, SevInfo, "redundant state producer",
		"A producer command was repeated before any consumer used its previous value."},
	{UnterminatedField, SevWarn, "field block not terminated",
		"A field-opening command started a new block before the previous one was closed with ^FS."},
	{HexEscape, SevWarn, "invalid hex escape in field data",
		"An incomplete or non-hex escape sequence was found in ^FH-enabled field data."},
	{GFMemoryExceeded, SevWarn, "graphic data exceeds printer RAM",
		"The total ^GF byte count for the label exceeds the profile's available RAM."},
	{MissingExplicitDimension, SevInfo, "label relies on profile dimensions",
		"The profile declares page dimensions but the label sets no explicit ^PW/^LL, which hurts portability."},
}

var (
	severityByID map[string]Severity
	describeByID map[string]string
)

// Build the registry indexes.
func init() {
	severityByID = make(map[string]Severity, len(registry))
	describeByID = make(map[string]string, len(registry))
	for _, e := range registry {
		severityByID[e.id] = e.severity
		describeByID[e.id] = e.describe
	}
}

// SeverityFor returns the registry default severity for a diagnostic
// code, or SevWarn when the code is unknown.
func SeverityFor(id string) Severity {
	if s, ok := severityByID[id]; ok {
		return s
	}
	return SevWarn
}

// KnownCode reports whether the diagnostics registry contains the code.
func KnownCode(id string) bool {
	_, ok := severityByID[id]
	return ok
}

// Explain returns the long-form description for a diagnostic code, or
// an empty string when the code is unknown.
func Explain(id string) string {
	return describeByID[id]
}

// Codes returns all registered diagnostic identifiers in sorted order.
func Codes() []string {
	ids := make([]string, 0, len(registry))
	for _, e := range registry {
		ids = append(ids, e.id)
	}
	sort.Strings(ids)
	return ids
}
