// Copyright 2026 Trevor Campbell. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package validate

import (
	"strings"

	"github.com/trevordcampbell/gozpl"
	"github.com/trevordcampbell/gozpl/tables"
)

// constraintSeverity resolves a constraint's severity. Precedence:
// explicit constraint severity, then the command's constraint default,
// then the registry severity for the diagnostic code, then Warn.
func constraintSeverity(c *tables.Constraint, cmd *tables.CommandEntry, code string) gozpl.Severity {
	if c.Severity != "" {
		return gozpl.Severity(c.Severity)
	}
	if cmd.ConstraintDefaults != nil && cmd.ConstraintDefaults.Severity != "" {
		return gozpl.Severity(cmd.ConstraintDefaults.Severity)
	}
	if gozpl.KnownCode(code) {
		return gozpl.SeverityFor(code)
	}
	return gozpl.SevWarn
}

// constraintScope resolves the evaluation scope: the explicit constraint
// scope wins; field-scoped commands default their order/note constraints
// to field-local evaluation; everything else is label-wide.
func constraintScope(c *tables.Constraint, cmd *tables.CommandEntry, commandFallback bool) tables.Scope {
	if c.Scope != "" {
		return c.Scope
	}
	if commandFallback && cmd.Scope == tables.ScopeField {
		return tables.ScopeField
	}
	return tables.ScopeLabel
}

// validateConstraints runs one command occurrence's declarative
// constraints against the label and field context.
func (r *runner) validateConstraints(
	code string,
	cmd *tables.CommandEntry,
	args []gozpl.ArgSlot,
	span gozpl.Span,
	nodeIdx int,
	nodes []gozpl.Node,
	labelCodes map[string]bool,
	seenLabelCodes map[string]bool,
	seenFieldCodes map[string]bool,
	currentFieldCodes map[string]bool,
) {
	for ci := range cmd.Constraints {
		c := &cmd.Constraints[ci]
		switch c.Kind {
		case tables.KindOrder:
			if c.Expr == "" {
				continue
			}
			scope := constraintScope(c, cmd, true)
			seen := seenLabelCodes
			if scope == tables.ScopeField {
				seen = seenFieldCodes
			}
			if targets, ok := strings.CutPrefix(c.Expr, "before:"); ok {
				if anyTargetInSet(targets, seen) {
					r.reportSev(gozpl.OrderBefore, constraintSeverity(c, cmd, gozpl.OrderBefore),
						c.Message, span, orderCtx(code, targets, "order", scope))
				}
			} else if targets, ok := strings.CutPrefix(c.Expr, "after:"); ok {
				if !anyTargetInSet(targets, seen) {
					r.reportSev(gozpl.OrderAfter, constraintSeverity(c, cmd, gozpl.OrderAfter),
						c.Message, span, orderCtx(code, targets, "order", scope))
				}
			}

		case tables.KindRequires:
			if c.Expr == "" {
				continue
			}
			scope := constraintScope(c, cmd, false)
			targets := labelCodes
			if scope == tables.ScopeField {
				targets = currentFieldCodes
			}
			if !anyTargetInSet(c.Expr, targets) {
				r.reportSev(gozpl.RequiredCommand, constraintSeverity(c, cmd, gozpl.RequiredCommand),
					c.Message, span, orderCtx(code, c.Expr, "requires", scope))
			}

		case tables.KindIncompatible:
			if c.Expr == "" {
				continue
			}
			scope := constraintScope(c, cmd, false)
			targets := labelCodes
			if scope == tables.ScopeField {
				targets = currentFieldCodes
			}
			if anyTargetInSet(c.Expr, targets) {
				r.reportSev(gozpl.IncompatibleCommand, constraintSeverity(c, cmd, gozpl.IncompatibleCommand),
					c.Message, span, orderCtx(code, c.Expr, "incompatible", scope))
			}

		case tables.KindEmptyData:
			if !emptyDataFires(args, nodeIdx, nodes) {
				continue
			}
			r.reportSev(gozpl.EmptyFieldData, constraintSeverity(c, cmd, gozpl.EmptyFieldData),
				c.Message, span, map[string]string{"command": code})

		case tables.KindNote:
			if !r.noteFires(c, cmd, args, seenLabelCodes, seenFieldCodes, labelCodes) {
				continue
			}
			r.reportSev(gozpl.Note, constraintSeverity(c, cmd, gozpl.Note),
				c.Message, span, map[string]string{"command": code, "kind": "note"})

		case tables.KindRange, tables.KindCustom:
			// Range validation runs through each argument's range spec;
			// these constraint kinds are reserved.
		}
	}
}

// emptyDataFires when the command's own first argument carries no value
// and no following FieldData node before the next command has content.
func emptyDataFires(args []gozpl.ArgSlot, nodeIdx int, nodes []gozpl.Node) bool {
	if len(args) > 0 && args[0].Presence == gozpl.Value && args[0].Value != "" {
		return false
	}
	for i := nodeIdx + 1; i < len(nodes); i++ {
		switch nodes[i].Kind {
		case gozpl.NodeFieldData:
			if nodes[i].Field.Content != "" {
				return false
			}
		case gozpl.NodeCommand:
			return true
		}
	}
	return true
}

// noteFires evaluates a note constraint's optional predicate.
func (r *runner) noteFires(
	c *tables.Constraint,
	cmd *tables.CommandEntry,
	args []gozpl.ArgSlot,
	seenLabelCodes, seenFieldCodes, labelCodes map[string]bool,
) bool {
	if c.Expr == "" {
		return true
	}
	scope := constraintScope(c, cmd, true)
	seen := seenLabelCodes
	if scope == tables.ScopeField {
		seen = seenFieldCodes
	}
	if targets, ok := strings.CutPrefix(c.Expr, "after:first:"); ok {
		return anyTargetInSet(targets, seen)
	}
	if targets, ok := strings.CutPrefix(c.Expr, "before:first:"); ok {
		return !anyTargetInSet(targets, seen)
	}
	if targets, ok := strings.CutPrefix(c.Expr, "after:"); ok {
		return anyTargetInSet(targets, seen)
	}
	if targets, ok := strings.CutPrefix(c.Expr, "before:"); ok {
		return !anyTargetInSet(targets, seen)
	}
	if cond, ok := strings.CutPrefix(c.Expr, "when:"); ok {
		return r.compiledWhen(strings.TrimSpace(cond)).eval(args, labelCodes, r.profile)
	}
	return true
}

func orderCtx(code, target, kind string, scope tables.Scope) map[string]string {
	s := "label"
	if scope == tables.ScopeField {
		s = "field"
	}
	return map[string]string{
		"command": code,
		"target":  strings.TrimSpace(target),
		"kind":    kind,
		"scope":   s,
	}
}
