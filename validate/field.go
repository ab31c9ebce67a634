// Copyright 2026 Trevor Campbell. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package validate

import (
	"fmt"
	"strconv"

	"github.com/trevordcampbell/gozpl"
	"github.com/trevordcampbell/gozpl/tables"
)

// fieldTracker follows field-block structure while a label's nodes are
// processed in order.
type fieldTracker struct {
	open      bool
	seenCodes map[string]bool // codes seen inside the current block
	allCodes  map[string]bool // pre-scanned codes of the current block
	hexEscape byte            // active ^FH indicator, 0 when inactive
}

func newFieldTracker() *fieldTracker {
	return &fieldTracker{seenCodes: map[string]bool{}, allCodes: map[string]bool{}}
}

// openBlock starts a new field block at node idx, pre-scanning forward
// to the block's end so field-scoped requires constraints can consult
// the full block content.
func (ft *fieldTracker) openBlock(idx int, nodes []gozpl.Node, pc *planContext, t *tables.ParserTables) {
	ft.open = true
	ft.seenCodes = map[string]bool{}
	ft.allCodes = map[string]bool{}
	ft.hexEscape = 0
	for i := idx + 1; i < len(nodes); i++ {
		n := &nodes[i]
		if n.Kind == gozpl.NodeFieldData {
			ft.allCodes[n.Field.Code] = true
			continue
		}
		if n.Kind != gozpl.NodeCommand {
			continue
		}
		code := n.Command.Code
		flags := pc.resolveStructuralFlags(code, t.Command(code))
		if flags.opensField || flags.closesField {
			break
		}
		ft.allCodes[code] = true
	}
}

func (ft *fieldTracker) closeBlock() {
	ft.open = false
	ft.seenCodes = map[string]bool{}
	ft.allCodes = map[string]bool{}
	ft.hexEscape = 0
}

// handleStructural applies one command's field-structure behavior:
// block boundaries, ^FH indicators, ^FN duplicate detection, and ^CW
// font registration.
func (r *runner) handleStructural(
	code string,
	flags structuralFlags,
	args []gozpl.ArgSlot,
	span gozpl.Span,
	idx int,
	nodes []gozpl.Node,
	ls *labelState,
	ft *fieldTracker,
) {
	switch {
	case flags.opensField:
		if ft.open {
			r.report(gozpl.UnterminatedField,
				fmt.Sprintf("%s starts a new field before the previous one was closed with ^FS", code),
				span, map[string]string{"command": code})
		}
		ft.openBlock(idx, nodes, r.planCtx, r.tables)
		if code == "^FO" || code == "^FT" {
			ls.lastFOX = argFloat(args, 0)
			ls.lastFOY = argFloat(args, 1)
		}
		return

	case flags.closesField:
		ft.closeBlock()
		return
	}

	if flags.hexEscapeModifier {
		ft.hexEscape = '_'
		if len(args) > 0 && args[0].Presence == gozpl.Value && args[0].Value != "" {
			ft.hexEscape = args[0].Value[0]
		}
	}

	if flags.fieldNumber && len(args) > 0 && args[0].Presence == gozpl.Value {
		val := args[0].Value
		if first, dup := ls.fieldNumbers[val]; dup {
			r.report(gozpl.DuplicateFieldNumber,
				fmt.Sprintf("^FN%s duplicates the field number first assigned at node %d", val, first),
				span, map[string]string{"command": code, "value": val})
		} else {
			ls.fieldNumbers[val] = idx
		}
	}

	if code == "^CW" && len(args) > 0 && args[0].Presence == gozpl.Value && args[0].Value != "" {
		ls.loadedFonts[args[0].Value[0]] = true
	}
}

// recordEffects registers a producer command, flags redundant
// reassignment, and writes its typed values into the label value state.
func (r *runner) recordEffects(code string, args []gozpl.ArgSlot, span gozpl.Span, idx int, ls *labelState) {
	if seen := ls.producersSeen[code]; seen && !ls.producerConsumed[code] {
		r.report(gozpl.RedundantState,
			fmt.Sprintf("%s overwrites state that no consumer has read since the previous %s", code, code),
			span, map[string]string{"command": code})
	}
	ls.recordProducer(code, idx)
	applyValueState(code, args, ls)
}

// markConsumption marks each producer referenced by the command's
// defaultFrom declarations as consumed.
func markConsumption(cmd *tables.CommandEntry, ls *labelState) {
	for i := range cmd.Args {
		for _, a := range cmd.Args[i].Alternatives() {
			if a.DefaultFrom != "" {
				ls.markConsumed(a.DefaultFrom)
			}
		}
	}
}

// applyValueState writes a producer's resolved values into the typed
// label state consulted by later consumers.
func applyValueState(code string, args []gozpl.ArgSlot, ls *labelState) {
	v := &ls.values
	switch code {
	case "^BY":
		setF(&v.Barcode.ModuleWidth, argFloat(args, 0))
		setF(&v.Barcode.Ratio, argFloat(args, 1))
		setF(&v.Barcode.Height, argFloat(args, 2))
	case "^CF":
		setS(&v.Font.Font, argString(args, 0))
		setF(&v.Font.Height, argFloat(args, 1))
		setF(&v.Font.Width, argFloat(args, 2))
	case "^FW":
		setS(&v.Field.Orientation, argString(args, 0))
		setF(&v.Field.Justification, argFloat(args, 1))
	case "^LH":
		if x := argFloat(args, 0); x != nil {
			v.LabelHome.X = *x
		}
		if y := argFloat(args, 1); y != nil {
			v.LabelHome.Y = *y
		}
	case "^PW":
		if w := argFloat(args, 0); w != nil {
			v.Layout.PrintWidth = w
			ls.hasExplicitPW = true
		}
	case "^LL":
		if l := argFloat(args, 0); l != nil {
			v.Layout.LabelLength = l
			ls.hasExplicitLL = true
		}
	case "^LT":
		setF(&v.Layout.LabelTop, argFloat(args, 0))
	case "^LS":
		setF(&v.Layout.LabelShift, argFloat(args, 0))
	case "^LR":
		setS(&v.Layout.ReversePrint, argString(args, 0))
	case "^PO":
		setS(&v.Layout.PrintOrientation, argString(args, 0))
	case "^PM":
		setS(&v.Layout.MirrorImage, argString(args, 0))
	}
}

// accumulateGF adds a ^GF occurrence's declared byte count to the
// label's running graphic total.
func accumulateGF(args []gozpl.ArgSlot, ls *labelState) {
	if b := argFloat(args, 1); b != nil && *b > 0 {
		ls.gfTotalBytes += uint64(*b)
	}
}

func argFloat(args []gozpl.ArgSlot, i int) *float64 {
	if i >= len(args) || args[i].Presence != gozpl.Value {
		return nil
	}
	f, err := strconv.ParseFloat(args[i].Value, 64)
	if err != nil {
		return nil
	}
	return &f
}

func argString(args []gozpl.ArgSlot, i int) *string {
	if i >= len(args) || args[i].Presence != gozpl.Value {
		return nil
	}
	s := args[i].Value
	return &s
}

func setF(dst **float64, v *float64) {
	if v != nil {
		*dst = v
	}
}

func setS(dst **string, v *string) {
	if v != nil {
		*dst = v
	}
}
