// Copyright 2026 Trevor Campbell. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package validate

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/trevordcampbell/gozpl"
	"github.com/trevordcampbell/gozpl/tables"
)

// argIssue is one failed check against a single argument alternative.
type argIssue struct {
	id  string
	msg string
}

// validateArgs checks every argument slot of one command occurrence
// against its spec: type, range (with conditional replacements),
// length, enum membership, rounding policy, and profile constraints.
// Unset non-optional slots are satisfied by an earlier producer
// (defaultFrom / defaultFromStateKey) or reported missing.
func (r *runner) validateArgs(code string, cmd *tables.CommandEntry, args []gozpl.ArgSlot, span gozpl.Span, ls *labelState) {
	for i := range cmd.Args {
		union := &cmd.Args[i]
		slot := gozpl.ArgSlot{Presence: gozpl.Unset, Key: union.Key()}
		if i < len(args) {
			slot = args[i]
		}
		alts := union.Alternatives()
		if len(alts) == 0 {
			continue
		}

		switch slot.Presence {
		case gozpl.Value:
			if len(alts) == 1 {
				for _, issue := range r.checkArg(&alts[0], slot, args) {
					r.report(issue.id, issue.msg, span, map[string]string{
						"command": code,
						"arg":     slot.Key,
						"value":   slot.Value,
					})
				}
				continue
			}
			// Union position: valid when any alternative accepts the value.
			matched := false
			for a := range alts {
				if len(r.checkArg(&alts[a], slot, args)) == 0 {
					matched = true
					break
				}
			}
			if !matched {
				shapes := make([]string, len(alts))
				for a := range alts {
					shapes[a] = describeArgShape(&alts[a])
				}
				r.report(gozpl.ArgUnionMismatch,
					fmt.Sprintf("%s argument %q accepts %s; got %q",
						code, slot.Key, strings.Join(shapes, " or "), slot.Value),
					span, map[string]string{
						"command": code,
						"arg":     slot.Key,
						"value":   slot.Value,
					})
			}

		case gozpl.Unset:
			a := &alts[0]
			if a.Optional {
				continue
			}
			satisfied := false
			if a.DefaultFrom != "" && ls.hasProducer(a.DefaultFrom) {
				satisfied = true
			}
			if !satisfied && a.DefaultFromStateKey != "" && ls.values.HasKey(a.DefaultFromStateKey) {
				satisfied = true
			}
			if !satisfied {
				msg := fmt.Sprintf("%s is missing required argument %q", code, slot.Key)
				if a.DefaultFrom != "" {
					msg += fmt.Sprintf(" (no preceding %s supplies a default)", a.DefaultFrom)
				}
				r.report(gozpl.MissingRequiredArg, msg, span, map[string]string{
					"command": code,
					"arg":     slot.Key,
				})
			}

		case gozpl.Empty:
			// An explicit empty slot defers to the printer default.
		}
	}
}

// checkArg runs all checks of one alternative against a present value.
func (r *runner) checkArg(a *tables.Arg, slot gozpl.ArgSlot, siblings []gozpl.ArgSlot) []argIssue {
	var issues []argIssue
	val := slot.Value

	var num float64
	numeric := false
	switch a.Type {
	case "int":
		if !validInt(val) {
			issues = append(issues, argIssue{gozpl.TypeMismatch,
				fmt.Sprintf("argument %q must be an integer, got %q", slot.Key, val)})
		} else {
			num, _ = strconv.ParseFloat(val, 64)
			numeric = true
		}
	case "float":
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			issues = append(issues, argIssue{gozpl.TypeMismatch,
				fmt.Sprintf("argument %q must be a number, got %q", slot.Key, val)})
		} else {
			num, numeric = f, true
		}
	case "enum":
		if !enumContains(a.Enum, val) {
			issues = append(issues, argIssue{gozpl.EnumMismatch,
				fmt.Sprintf("argument %q must be one of %s, got %q", slot.Key, enumList(a.Enum), val)})
		}
	case "string":
		if a.MinLength != nil && len(val) < *a.MinLength {
			issues = append(issues, argIssue{gozpl.LengthViolation,
				fmt.Sprintf("argument %q must be at least %d characters", slot.Key, *a.MinLength)})
		}
		if a.MaxLength != nil && len(val) > *a.MaxLength {
			issues = append(issues, argIssue{gozpl.LengthViolation,
				fmt.Sprintf("argument %q must be at most %d characters", slot.Key, *a.MaxLength)})
		}
	case "raw":
		// Passthrough.
	}

	if numeric {
		hasRange := a.Range != nil
		var loV, hiV float64
		if hasRange {
			loV, hiV = a.Range[0], a.Range[1]
		}
		for _, cr := range a.RangeWhen {
			if predicateMatches(cr.When, siblings) {
				loV, hiV, hasRange = cr.Range[0], cr.Range[1], true
				break
			}
		}
		if hasRange && (!isFinite(num) || num < loV || num > hiV) {
			issues = append(issues, argIssue{gozpl.OutOfRange,
				fmt.Sprintf("argument %q value %s is outside [%s, %s]",
					slot.Key, trimFloat(num), trimFloat(loV), trimFloat(hiV))})
		}

		if a.RoundingPolicy != nil && a.RoundingPolicy.Multiple > 0 &&
			(a.RoundingPolicyWhen == "" || predicateMatches(a.RoundingPolicyWhen, siblings)) {
			if rem := math.Mod(num, a.RoundingPolicy.Multiple); math.Abs(rem) > 1e-9 &&
				math.Abs(rem-a.RoundingPolicy.Multiple) > 1e-9 {
				issues = append(issues, argIssue{gozpl.RoundingViolation,
					fmt.Sprintf("argument %q value %s is not a multiple of %s",
						slot.Key, trimFloat(num), trimFloat(a.RoundingPolicy.Multiple))})
			}
		}

		if a.ProfileConstraint != nil && r.profile != nil {
			if limit, ok := r.profile.ResolveField(a.ProfileConstraint.Field); ok {
				if !checkProfileOp(num, a.ProfileConstraint.Op, limit) {
					issues = append(issues, argIssue{gozpl.ProfileConstraint,
						fmt.Sprintf("argument %q value %s violates profile limit %s %s %s",
							slot.Key, trimFloat(num), a.ProfileConstraint.Field,
							string(a.ProfileConstraint.Op), trimFloat(limit))})
				}
			}
		}
	}

	return issues
}

// validInt accepts an optional sign followed by digits, with no leading
// zero except "0" itself.
func validInt(s string) bool {
	if s == "" {
		return false
	}
	digits := s
	if s[0] == '+' || s[0] == '-' {
		digits = s[1:]
	}
	if digits == "" {
		return false
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return false
		}
	}
	if len(digits) > 1 && digits[0] == '0' {
		return false
	}
	return true
}

func enumContains(values []tables.EnumValue, target string) bool {
	for _, v := range values {
		if v.Value == target {
			return true
		}
	}
	return false
}

func enumList(values []tables.EnumValue) string {
	names := make([]string, len(values))
	for i, v := range values {
		names[i] = v.Value
	}
	return strings.Join(names, "/")
}

func describeArgShape(a *tables.Arg) string {
	switch a.Type {
	case "enum":
		return "one of " + enumList(a.Enum)
	case "int", "float":
		if a.Range != nil {
			return fmt.Sprintf("%s in [%s, %s]", a.Type, trimFloat(a.Range[0]), trimFloat(a.Range[1]))
		}
		return a.Type
	default:
		return a.Type
	}
}

// checkProfileOp compares a value against a profile limit. Non-finite
// values fail closed. The Eq tolerance of 0.5 reflects that profile
// fields are integers cast to floats: two values represent the same
// integer exactly when their difference is below one half.
func checkProfileOp(value float64, op tables.CmpOp, limit float64) bool {
	if !isFinite(value) || !isFinite(limit) {
		return false
	}
	switch op {
	case tables.CmpLte:
		return value <= limit
	case tables.CmpGte:
		return value >= limit
	case tables.CmpLt:
		return value < limit
	case tables.CmpGt:
		return value > limit
	case tables.CmpEq:
		return math.Abs(value-limit) < 0.5
	}
	return false
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// trimFloat renders a float without trailing zeros.
func trimFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	return s
}
