// Copyright 2026 Trevor Campbell. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package validate

import (
	"github.com/trevordcampbell/gozpl/profile"
	"github.com/trevordcampbell/gozpl/tables"
)

// Index views are built once per validation invocation, either from the
// artifact's structural rule index (authoritative when present) or
// rebuilt from per-command flags. They are never rebuilt per label.

type semanticIndexView struct {
	codes map[string]bool
}

func newSemanticIndexView(t *tables.ParserTables) *semanticIndexView {
	v := &semanticIndexView{codes: make(map[string]bool)}
	if idx := t.StructuralRuleIndex; idx != nil && len(idx.ByKind) > 0 {
		for _, codes := range idx.ByKind {
			for _, c := range codes {
				v.codes[c] = true
			}
		}
		return v
	}
	for i := range t.Commands {
		cmd := &t.Commands[i]
		if len(cmd.StructuralRules) > 0 || len(cmd.Constraints) > 0 {
			for _, c := range cmd.Codes {
				v.codes[c] = true
			}
		}
	}
	return v
}

type effectIndexView struct {
	codes map[string]bool
}

func newEffectIndexView(t *tables.ParserTables) *effectIndexView {
	v := &effectIndexView{codes: make(map[string]bool)}
	if idx := t.StructuralRuleIndex; idx != nil && len(idx.ByEffect) > 0 {
		for _, codes := range idx.ByEffect {
			for _, c := range codes {
				v.codes[c] = true
			}
		}
		return v
	}
	for i := range t.Commands {
		cmd := &t.Commands[i]
		if cmd.Effects != nil {
			for _, c := range cmd.Codes {
				v.codes[c] = true
			}
		}
	}
	return v
}

type structuralIndexView struct {
	opensField        map[string]bool
	closesField       map[string]bool
	fieldData         map[string]bool
	fieldNumber       map[string]bool
	serialization     map[string]bool
	requiresField     map[string]bool
	hexEscapeModifier map[string]bool
}

func toSet(codes []string) map[string]bool {
	set := make(map[string]bool, len(codes))
	for _, c := range codes {
		set[c] = true
	}
	return set
}

func newStructuralIndexView(t *tables.ParserTables) *structuralIndexView {
	if idx := t.StructuralRuleIndex; idx != nil && len(idx.ByTrigger) > 0 {
		return &structuralIndexView{
			opensField:        toSet(idx.ByTrigger[tables.TriggerOpensField]),
			closesField:       toSet(idx.ByTrigger[tables.TriggerClosesField]),
			fieldData:         toSet(idx.ByTrigger[tables.TriggerFieldData]),
			fieldNumber:       toSet(idx.ByTrigger[tables.TriggerFieldNumber]),
			serialization:     toSet(idx.ByTrigger[tables.TriggerSerialization]),
			requiresField:     toSet(idx.ByTrigger[tables.TriggerRequiresField]),
			hexEscapeModifier: toSet(idx.ByTrigger[tables.TriggerHexEscapeModifier]),
		}
	}
	v := &structuralIndexView{
		opensField:        map[string]bool{},
		closesField:       map[string]bool{},
		fieldData:         map[string]bool{},
		fieldNumber:       map[string]bool{},
		serialization:     map[string]bool{},
		requiresField:     map[string]bool{},
		hexEscapeModifier: map[string]bool{},
	}
	for i := range t.Commands {
		cmd := &t.Commands[i]
		add := func(set map[string]bool, on bool) {
			if !on {
				return
			}
			for _, c := range cmd.Codes {
				set[c] = true
			}
		}
		add(v.opensField, cmd.OpensField)
		add(v.closesField, cmd.ClosesField)
		add(v.fieldData, cmd.FieldData)
		add(v.fieldNumber, cmd.FieldNumber)
		add(v.serialization, cmd.Serialization)
		add(v.requiresField, cmd.RequiresField)
		add(v.hexEscapeModifier, cmd.HexEscapeModifier)
	}
	return v
}

// structuralFlags are a command's resolved triggers for one validation.
type structuralFlags struct {
	opensField        bool
	closesField       bool
	fieldData         bool
	fieldNumber       bool
	serialization     bool
	requiresField     bool
	hexEscapeModifier bool
}

func (f structuralFlags) isFieldRelated() bool {
	return f.opensField || f.closesField || f.fieldData || f.requiresField ||
		f.hexEscapeModifier || f.fieldNumber || f.serialization
}

// planContext holds the index views for one validation invocation.
type planContext struct {
	artifactIndex bool // the artifact shipped a structural rule index
	semantic      *semanticIndexView
	effects       *effectIndexView
	structural    *structuralIndexView
}

func newPlanContext(t *tables.ParserTables) *planContext {
	return &planContext{
		artifactIndex: t.StructuralRuleIndex != nil,
		semantic:      newSemanticIndexView(t),
		effects:       newEffectIndexView(t),
		structural:    newStructuralIndexView(t),
	}
}

// resolveStructuralFlags returns the effective triggers for a command.
// When the artifact shipped an index, membership is authoritative: a
// command absent from a trigger set does not trigger even if its own
// flags claim otherwise.
func (pc *planContext) resolveStructuralFlags(code string, cmd *tables.CommandEntry) structuralFlags {
	if pc.artifactIndex {
		return structuralFlags{
			opensField:        pc.structural.opensField[code],
			closesField:       pc.structural.closesField[code],
			fieldData:         pc.structural.fieldData[code],
			fieldNumber:       pc.structural.fieldNumber[code],
			serialization:     pc.structural.serialization[code],
			requiresField:     pc.structural.requiresField[code],
			hexEscapeModifier: pc.structural.hexEscapeModifier[code],
		}
	}
	if cmd == nil {
		return structuralFlags{}
	}
	return structuralFlags{
		opensField:        cmd.OpensField,
		closesField:       cmd.ClosesField,
		fieldData:         cmd.FieldData,
		fieldNumber:       cmd.FieldNumber,
		serialization:     cmd.Serialization,
		requiresField:     cmd.RequiresField,
		hexEscapeModifier: cmd.HexEscapeModifier,
	}
}

// isEffectProducer reports whether a command writes device/label state.
func (pc *planContext) isEffectProducer(code string, cmd *tables.CommandEntry) bool {
	if cmd != nil && cmd.Effects != nil {
		return true
	}
	return pc.effects.codes[code]
}

// A labelPlan is the execution plan for one label: which validation
// batches are worth running given the label's observed opcodes.
type labelPlan struct {
	runSemanticBatch              bool
	runEffectBatch                bool
	runFieldBatch                 bool
	runPreflightGFMemory          bool
	runPreflightMissingDimensions bool
}

// planForLabel short-circuits expensive passes on labels that contain
// none of their trigger codes.
func (pc *planContext) planForLabel(labelCodes map[string]bool, p *profile.Profile) labelPlan {
	plan := labelPlan{}

	if len(pc.semantic.codes) == 0 {
		plan.runSemanticBatch = true
	} else {
		for c := range pc.semantic.codes {
			if labelCodes[c] {
				plan.runSemanticBatch = true
				break
			}
		}
	}

	for c := range pc.effects.codes {
		if labelCodes[c] {
			plan.runEffectBatch = true
			break
		}
	}

	fieldSets := []map[string]bool{
		pc.structural.opensField, pc.structural.closesField,
		pc.structural.fieldData, pc.structural.requiresField,
		pc.structural.hexEscapeModifier, pc.structural.fieldNumber,
		pc.structural.serialization,
	}
outer:
	for _, set := range fieldSets {
		for c := range set {
			if labelCodes[c] {
				plan.runFieldBatch = true
				break outer
			}
		}
	}

	plan.runPreflightGFMemory = labelCodes["^GF"]
	if p != nil {
		_, hasW := p.ResolveField("page.width_dots")
		_, hasH := p.ResolveField("page.height_dots")
		plan.runPreflightMissingDimensions = hasW || hasH
	}
	return plan
}
