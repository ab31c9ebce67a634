// Copyright 2026 Trevor Campbell. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package validate checks a parsed ZPL AST against the parser tables
// and an optional printer profile. All issues are collected, never
// thrown: validation always returns a complete result. Within one
// invocation, device state persists across labels while label state is
// rebuilt per label.
package validate

import (
	"fmt"
	"hash/fnv"
	"sort"

	"github.com/trevordcampbell/gozpl"
	"github.com/trevordcampbell/gozpl/hexescape"
	"github.com/trevordcampbell/gozpl/profile"
	"github.com/trevordcampbell/gozpl/tables"
)

// hexErrors validates ^FH escape sequences in field-data content.
func hexErrors(content string, indicator byte) []hexescape.Error {
	return hexescape.Validate(content, indicator)
}

// A Result aggregates validation output. OK is true when no issue has
// error severity (warnings and notes are allowed).
type Result struct {
	OK             bool                 `json:"ok"`
	Issues         []gozpl.Diagnostic   `json:"issues"`
	ResolvedLabels []ResolvedLabelState `json:"resolved_labels,omitempty"`
}

// Validate checks an AST without a printer profile.
func Validate(ast *gozpl.Ast, t *tables.ParserTables) *Result {
	return WithProfile(ast, t, nil)
}

// WithProfile checks an AST against the tables and a printer profile.
func WithProfile(ast *gozpl.Ast, t *tables.ParserTables, p *profile.Profile) *Result {
	r := &runner{
		tables:    t,
		profile:   p,
		planCtx:   newPlanContext(t),
		known:     t.CodeSet(),
		whenCache: map[string]whenExpr{},
	}
	if p != nil {
		dpi := p.DPI
		r.device.DPI = &dpi
	}

	result := &Result{}
	for i := range ast.Labels {
		result.ResolvedLabels = append(result.ResolvedLabels, r.validateLabel(&ast.Labels[i]))
	}

	sortDiagnostics(r.issues)
	result.Issues = dedupeDiagnostics(r.issues)
	result.OK = true
	for _, d := range result.Issues {
		if d.Severity == gozpl.SevError {
			result.OK = false
			break
		}
	}
	return result
}

// runner carries the per-invocation validation context.
type runner struct {
	tables    *tables.ParserTables
	profile   *profile.Profile
	planCtx   *planContext
	known     map[string]bool
	device    DeviceState
	whenCache map[string]whenExpr
	issues    []gozpl.Diagnostic
}

func (r *runner) compiledWhen(expr string) whenExpr {
	if w, ok := r.whenCache[expr]; ok {
		return w
	}
	w := compileWhen(expr)
	r.whenCache[expr] = w
	return w
}

func (r *runner) report(id, msg string, span gozpl.Span, ctx map[string]string) {
	r.reportSev(id, gozpl.SeverityFor(id), msg, span, ctx)
}

func (r *runner) reportSev(id string, sev gozpl.Severity, msg string, span gozpl.Span, ctx map[string]string) {
	s := span
	r.issues = append(r.issues, gozpl.NewDiagnostic(id, sev, msg, &s).WithContext(ctx))
}

// validateLabel runs the full pipeline over one label's nodes.
func (r *runner) validateLabel(label *gozpl.Label) ResolvedLabelState {
	nodes := label.Nodes

	// Pre-scan the label's opcodes for the planner and for label-wide
	// requires/incompatible evaluation.
	labelCodes := make(map[string]bool)
	for i := range nodes {
		switch nodes[i].Kind {
		case gozpl.NodeCommand:
			labelCodes[nodes[i].Command.Code] = true
		case gozpl.NodeFieldData:
			labelCodes[nodes[i].Field.Code] = true
		}
	}
	plan := r.planCtx.planForLabel(labelCodes, r.profile)

	ls := newLabelState()
	ft := newFieldTracker()
	seenLabelCodes := make(map[string]bool)

	var labelSpan gozpl.Span
	if len(nodes) > 0 {
		labelSpan = gozpl.Span{Start: nodes[0].Span().Start, End: nodes[len(nodes)-1].Span().End}
	}

	for idx := range nodes {
		n := &nodes[idx]
		switch n.Kind {
		case gozpl.NodeCommand:
			r.validateCommand(n.Command, idx, nodes, plan, ls, ft, labelCodes, seenLabelCodes)
		case gozpl.NodeFieldData:
			r.validateFieldData(n.Field, idx, nodes, plan, ls, ft, labelCodes, seenLabelCodes)
		case gozpl.NodeRawData, gozpl.NodeTrivia:
			// Raw payload sizing is accounted from its command's args;
			// trivia carries no semantics.
		}
	}

	r.preflight(plan, ls, labelSpan)

	return ResolvedLabelState{
		Values:          ls.values,
		EffectiveWidth:  ls.values.Layout.PrintWidth,
		EffectiveHeight: ls.values.Layout.LabelLength,
	}
}

func (r *runner) validateCommand(
	c *gozpl.CommandNode,
	idx int,
	nodes []gozpl.Node,
	plan labelPlan,
	ls *labelState,
	ft *fieldTracker,
	labelCodes map[string]bool,
	seenLabelCodes map[string]bool,
) {
	code := c.Code
	cmd := r.tables.Command(code)
	if cmd == nil {
		r.report(gozpl.UnknownCommand,
			fmt.Sprintf("command %s is not in the loaded spec tables", code),
			c.Span, map[string]string{"command": code})
		return
	}

	// Ordering constraints see the codes observed so far, not the
	// current occurrence.
	if plan.runSemanticBatch || len(cmd.Constraints) > 0 {
		r.validateConstraints(code, cmd, c.Args, c.Span, idx, nodes,
			labelCodes, seenLabelCodes, ft.seenCodes, ft.allCodes)
	}

	r.validateArgs(code, cmd, c.Args, c.Span, ls)

	markConsumption(cmd, ls)
	if plan.runEffectBatch && r.planCtx.isEffectProducer(code, cmd) {
		r.recordEffects(code, c.Args, c.Span, idx, ls)
	}

	if plan.runFieldBatch {
		flags := r.planCtx.resolveStructuralFlags(code, cmd)
		r.handleStructural(code, flags, c.Args, c.Span, idx, nodes, ls, ft)
	}

	if code == "^GF" {
		accumulateGF(c.Args, ls)
	}

	seenLabelCodes[code] = true
	if ft.open {
		ft.seenCodes[code] = true
	}
}

func (r *runner) validateFieldData(
	f *gozpl.FieldDataNode,
	idx int,
	nodes []gozpl.Node,
	plan labelPlan,
	ls *labelState,
	ft *fieldTracker,
	labelCodes map[string]bool,
	seenLabelCodes map[string]bool,
) {
	code := f.Code

	if plan.runFieldBatch && !ft.open {
		r.report(gozpl.MissingFieldOrigin,
			fmt.Sprintf("%s has no preceding field origin (^FO/^FT)", code),
			f.Span, map[string]string{"command": code})
	}

	// The field-data opener carries its own spec constraints (notably
	// emptyData); evaluate them against the node's content.
	if cmd := r.tables.Command(code); cmd != nil && len(cmd.Constraints) > 0 {
		args := []gozpl.ArgSlot{{Key: "d", Presence: gozpl.Value, Value: f.Content}}
		if f.Content == "" {
			args[0] = gozpl.ArgSlot{Key: "d", Presence: gozpl.Empty}
		}
		r.validateConstraints(code, cmd, args, f.Span, idx, nodes,
			labelCodes, seenLabelCodes, ft.seenCodes, ft.allCodes)
	}

	if f.HexEscaped {
		indicator := ft.hexEscape
		if indicator == 0 {
			indicator = '_'
		}
		contentStart := f.Span.Start + len(code)
		for _, e := range hexErrors(f.Content, indicator) {
			r.report(gozpl.HexEscape, e.Message,
				gozpl.Span{Start: contentStart + e.Offset, End: contentStart + e.Offset + 1},
				map[string]string{"command": code})
		}
	}

	seenLabelCodes[code] = true
	if ft.open {
		ft.seenCodes[code] = true
	}
}

// ── Deterministic ordering ──────────────────────────────────────────────

type sortKey struct {
	start, end int
	id         string
	msgHash    uint32
}

func keyFor(d *gozpl.Diagnostic) sortKey {
	k := sortKey{start: -1, end: -1, id: d.ID}
	if d.Span != nil {
		k.start, k.end = d.Span.Start, d.Span.End
	}
	h := fnv.New32a()
	h.Write([]byte(d.Message))
	k.msgHash = h.Sum32()
	return k
}

// sortDiagnostics orders issues by (span.start, span.end, id, message
// hash) so output is stable across runs and platforms.
func sortDiagnostics(issues []gozpl.Diagnostic) {
	sort.SliceStable(issues, func(i, j int) bool {
		a, b := keyFor(&issues[i]), keyFor(&issues[j])
		if a.start != b.start {
			return a.start < b.start
		}
		if a.end != b.end {
			return a.end < b.end
		}
		if a.id != b.id {
			return a.id < b.id
		}
		return a.msgHash < b.msgHash
	})
}

// dedupeDiagnostics drops adjacent issues with identical id, span, and
// context after sorting.
func dedupeDiagnostics(issues []gozpl.Diagnostic) []gozpl.Diagnostic {
	out := issues[:0]
	for i := range issues {
		if i > 0 && sameDiagnostic(&issues[i-1], &issues[i]) {
			continue
		}
		out = append(out, issues[i])
	}
	return out
}

func sameDiagnostic(a, b *gozpl.Diagnostic) bool {
	if a.ID != b.ID || a.Message != b.Message {
		return false
	}
	as, bs := a.Span, b.Span
	if (as == nil) != (bs == nil) {
		return false
	}
	if as != nil && (*as != *bs) {
		return false
	}
	if len(a.Context) != len(b.Context) {
		return false
	}
	for k, v := range a.Context {
		if b.Context[k] != v {
			return false
		}
	}
	return true
}
