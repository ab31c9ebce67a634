// Copyright 2026 Trevor Campbell. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trevordcampbell/gozpl/profile"
	"github.com/trevordcampbell/gozpl/tables"
)

func planTables() *tables.ParserTables {
	return tables.New("1.1.1", []tables.CommandEntry{
		{Codes: []string{"^FO"}, Arity: 2, OpensField: true},
		{Codes: []string{"^FS"}, Arity: 0, ClosesField: true},
		{Codes: []string{"^BY"}, Arity: 1, Effects: &tables.Effects{Sets: []string{"barcode.moduleWidth"}}},
		{Codes: []string{"^ZZ"}, Arity: 0},
	}, &tables.StructuralRuleIndex{
		ByKind:   map[string][]string{"fieldStructure": {"^FO", "^FS"}},
		ByEffect: map[string][]string{"barcode.moduleWidth": {"^BY"}},
		ByTrigger: map[string][]string{
			tables.TriggerOpensField:  {"^FO"},
			tables.TriggerClosesField: {"^FS"},
		},
	})
}

func TestTrivialLabelSkipsBatches(t *testing.T) {
	pc := newPlanContext(planTables())
	plan := pc.planForLabel(map[string]bool{"^ZZ": true}, nil)

	assert.False(t, plan.runSemanticBatch)
	assert.False(t, plan.runEffectBatch)
	assert.False(t, plan.runFieldBatch)
	assert.False(t, plan.runPreflightGFMemory)
	assert.False(t, plan.runPreflightMissingDimensions)
}

func TestActiveLabelEnablesBatches(t *testing.T) {
	pc := newPlanContext(planTables())
	plan := pc.planForLabel(map[string]bool{"^FO": true, "^BY": true}, nil)

	assert.True(t, plan.runSemanticBatch)
	assert.True(t, plan.runEffectBatch)
	assert.True(t, plan.runFieldBatch)
}

func TestGFPreflightTriggersOnPresence(t *testing.T) {
	pc := newPlanContext(planTables())
	plan := pc.planForLabel(map[string]bool{"^GF": true}, nil)
	assert.True(t, plan.runPreflightGFMemory)
}

func TestDimensionPreflightNeedsProfilePage(t *testing.T) {
	pc := newPlanContext(planTables())

	w := 812
	withPage := &profile.Profile{ID: "p", DPI: 203, Page: &profile.Page{WidthDots: &w}}
	plan := pc.planForLabel(map[string]bool{"^ZZ": true}, withPage)
	assert.True(t, plan.runPreflightMissingDimensions)

	noPage := &profile.Profile{ID: "p", DPI: 203}
	plan = pc.planForLabel(map[string]bool{"^ZZ": true}, noPage)
	assert.False(t, plan.runPreflightMissingDimensions)
}

func TestIndexMembershipIsAuthoritative(t *testing.T) {
	// The entry claims field_data, but the artifact index omits it: the
	// index wins and the flag resolves false.
	tbl := tables.New("1.1.1", []tables.CommandEntry{
		{Codes: []string{"^FD"}, Arity: 1, FieldData: true},
	}, &tables.StructuralRuleIndex{
		ByTrigger: map[string][]string{tables.TriggerOpensField: {}},
	})
	pc := newPlanContext(tbl)

	flags := pc.resolveStructuralFlags("^FD", tbl.Command("^FD"))
	assert.False(t, flags.fieldData)
}

func TestFlagsFallBackWithoutIndex(t *testing.T) {
	tbl := tables.New("1.1.1", []tables.CommandEntry{
		{Codes: []string{"^FD"}, Arity: 1, FieldData: true},
	}, nil)
	pc := newPlanContext(tbl)

	flags := pc.resolveStructuralFlags("^FD", tbl.Command("^FD"))
	assert.True(t, flags.fieldData)
	require.True(t, flags.isFieldRelated())
}
