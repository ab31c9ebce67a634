// Copyright 2026 Trevor Campbell. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package validate

import (
	"strconv"
	"strings"

	"github.com/trevordcampbell/gozpl"
	"github.com/trevordcampbell/gozpl/profile"
)

// anyTargetInSet reports whether any of the pipe-separated targets is
// present in the set. Targets are trimmed; empty targets never match.
func anyTargetInSet(targets string, seen map[string]bool) bool {
	for _, t := range strings.Split(targets, "|") {
		t = strings.TrimSpace(t)
		if t != "" && seen[t] {
			return true
		}
	}
	return false
}

// predicateMatches evaluates the small arg-predicate language used by
// rangeWhen and roundingPolicyWhen:
//
//	arg:<key>IsValue:A|B    arg:<key>Present    arg:<key>Empty
func predicateMatches(when string, args []gozpl.ArgSlot) bool {
	rest, ok := strings.CutPrefix(when, "arg:")
	if !ok {
		return false
	}
	if key, rhs, ok := strings.Cut(rest, "IsValue:"); ok {
		accepted := strings.Split(rhs, "|")
		for _, a := range args {
			if a.Key != key || a.Presence != gozpl.Value {
				continue
			}
			for _, v := range accepted {
				if a.Value == v {
					return true
				}
			}
		}
		return false
	}
	if key, ok := strings.CutSuffix(rest, "Present"); ok {
		for _, a := range args {
			if a.Key == key && a.Presence == gozpl.Value {
				return true
			}
		}
		return false
	}
	if key, ok := strings.CutSuffix(rest, "Empty"); ok {
		for _, a := range args {
			if a.Key == key && a.Presence == gozpl.Empty {
				return true
			}
		}
		return false
	}
	return false
}

// firmwareVersionGte compares Zebra firmware version strings such as
// V60.19.15Z. True when fw >= min and both parse; false otherwise.
func firmwareVersionGte(fw, min string) bool {
	parse := func(s string) (major, minor int, ok bool) {
		s = strings.TrimPrefix(strings.TrimPrefix(s, "V"), "X")
		parts := strings.Split(s, ".")
		if len(parts) == 0 {
			return 0, 0, false
		}
		major, err := strconv.Atoi(parts[0])
		if err != nil {
			return 0, 0, false
		}
		if len(parts) > 1 {
			digits := parts[1]
			for i := 0; i < len(digits); i++ {
				if digits[i] < '0' || digits[i] > '9' {
					digits = digits[:i]
					break
				}
			}
			minor, _ = strconv.Atoi(digits)
		}
		return major, minor, true
	}
	fMaj, fMin, ok1 := parse(fw)
	mMaj, mMin, ok2 := parse(min)
	if !ok1 || !ok2 {
		return false
	}
	if fMaj != mMaj {
		return fMaj > mMaj
	}
	return fMin >= mMin
}

// profilePredicateMatches evaluates profile:* predicates. Without a
// profile every profile predicate is false (conservative).
func profilePredicateMatches(pred string, p *profile.Profile) bool {
	if p == nil {
		return false
	}
	splitList := func(s string) []string {
		var out []string
		for _, part := range strings.Split(s, "|") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out
	}
	if rest, ok := strings.CutPrefix(pred, "profile:id:"); ok {
		ids := splitList(rest)
		if len(ids) == 0 {
			return true
		}
		for _, id := range ids {
			if id == p.ID {
				return true
			}
		}
		return false
	}
	if rest, ok := strings.CutPrefix(pred, "profile:dpi:"); ok {
		for _, s := range splitList(rest) {
			if n, err := strconv.Atoi(s); err == nil && n == p.DPI {
				return true
			}
		}
		return false
	}
	if rest, ok := strings.CutPrefix(pred, "profile:featureMissing:"); ok {
		for _, g := range splitList(rest) {
			if v, known := p.ResolveGate(g); known && !v {
				return true
			}
		}
		return false
	}
	if rest, ok := strings.CutPrefix(pred, "profile:feature:"); ok {
		for _, g := range splitList(rest) {
			if v, known := p.ResolveGate(g); known && v {
				return true
			}
		}
		return false
	}
	if rest, ok := strings.CutPrefix(pred, "profile:firmwareGte:"); ok {
		if p.Memory == nil || p.Memory.FirmwareVersion == "" {
			return false
		}
		return firmwareVersionGte(p.Memory.FirmwareVersion, strings.TrimSpace(rest))
	}
	if rest, ok := strings.CutPrefix(pred, "profile:firmware:"); ok {
		if p.Memory == nil {
			return false
		}
		return strings.HasPrefix(p.Memory.FirmwareVersion, strings.TrimSpace(rest))
	}
	// profile:model: matches a profile id that equals or contains one of
	// the listed models (profile ids encode the model).
	if rest, ok := strings.CutPrefix(pred, "profile:model:"); ok {
		ids := splitList(rest)
		if len(ids) == 0 {
			return true
		}
		for _, m := range ids {
			if p.ID == m || strings.Contains(p.ID, m) {
				return true
			}
		}
		return false
	}
	return false
}

// A whenExpr is the compiled form of a when: expression: a disjunction
// of conjunctions of possibly negated terms. Compiled once per distinct
// expression and evaluated per occurrence without re-parsing.
type whenExpr [][]whenTerm

type whenTerm struct {
	negated bool
	pred    string
}

func compileWhen(expr string) whenExpr {
	var compiled whenExpr
	for _, dis := range strings.Split(expr, "||") {
		var conj []whenTerm
		for _, raw := range strings.Split(dis, "&&") {
			term := whenTerm{pred: strings.TrimSpace(raw)}
			if rest, ok := strings.CutPrefix(term.pred, "!"); ok {
				term.negated = true
				term.pred = strings.TrimSpace(rest)
			}
			conj = append(conj, term)
		}
		compiled = append(compiled, conj)
	}
	return compiled
}

// eval evaluates the expression: || is lowest precedence, && binds
// tighter, ! negates a single term. Unrecognized predicate tokens are
// false.
func (w whenExpr) eval(args []gozpl.ArgSlot, labelCodes map[string]bool, p *profile.Profile) bool {
	for _, conj := range w {
		all := len(conj) > 0
		for _, t := range conj {
			m := false
			switch {
			case t.pred == "":
				m = false
			case strings.HasPrefix(t.pred, "arg:"):
				m = predicateMatches(t.pred, args)
			case strings.HasPrefix(t.pred, "label:has:"):
				m = anyTargetInSet(strings.TrimPrefix(t.pred, "label:has:"), labelCodes)
			case strings.HasPrefix(t.pred, "label:missing:"):
				m = !anyTargetInSet(strings.TrimPrefix(t.pred, "label:missing:"), labelCodes)
			case strings.HasPrefix(t.pred, "profile:"):
				m = profilePredicateMatches(t.pred, p)
			}
			if t.negated {
				m = !m
			}
			if !m {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	return false
}
