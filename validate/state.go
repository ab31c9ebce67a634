// Copyright 2026 Trevor Campbell. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package validate

// DeviceState tracks settings that persist between labels within one
// validation invocation (seeded from the profile when present).
type DeviceState struct {
	DPI *int
}

// BarcodeDefaults are the typed values produced by ^BY.
type BarcodeDefaults struct {
	ModuleWidth *float64 `json:"module_width,omitempty"`
	Ratio       *float64 `json:"ratio,omitempty"`
	Height      *float64 `json:"height,omitempty"`
}

// FontDefaults are the typed values produced by ^CF.
type FontDefaults struct {
	Font   *string  `json:"font,omitempty"`
	Height *float64 `json:"height,omitempty"`
	Width  *float64 `json:"width,omitempty"`
}

// FieldOrientationDefaults are the typed values produced by ^FW.
type FieldOrientationDefaults struct {
	Orientation   *string  `json:"orientation,omitempty"`
	Justification *float64 `json:"justification,omitempty"`
}

// LabelHome is the origin offset produced by ^LH.
type LabelHome struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// LayoutDefaults are the page-level values produced by ^PW, ^LL, ^LT,
// ^LS, ^PO, ^PM, and ^LR.
type LayoutDefaults struct {
	PrintWidth       *float64 `json:"print_width,omitempty"`
	LabelLength      *float64 `json:"label_length,omitempty"`
	PrintOrientation *string  `json:"print_orientation,omitempty"`
	MirrorImage      *string  `json:"mirror_image,omitempty"`
	ReversePrint     *string  `json:"reverse_print,omitempty"`
	LabelTop         *float64 `json:"label_top,omitempty"`
	LabelShift       *float64 `json:"label_shift,omitempty"`
}

// LabelValueState is the typed per-label snapshot that consumer
// commands consult when resolving defaults.
type LabelValueState struct {
	Barcode   BarcodeDefaults          `json:"barcode"`
	Font      FontDefaults             `json:"font"`
	Field     FieldOrientationDefaults `json:"field"`
	LabelHome LabelHome                `json:"label_home"`
	Layout    LayoutDefaults           `json:"layout"`
}

// HasKey reports whether the dotted state key currently holds a value.
// Key names mirror the effects declarations in the parser tables.
func (s *LabelValueState) HasKey(key string) bool {
	switch key {
	case "barcode.moduleWidth":
		return s.Barcode.ModuleWidth != nil
	case "barcode.ratio":
		return s.Barcode.Ratio != nil
	case "barcode.height":
		return s.Barcode.Height != nil
	case "font.font":
		return s.Font.Font != nil
	case "font.height":
		return s.Font.Height != nil
	case "font.width":
		return s.Font.Width != nil
	case "field.orientation":
		return s.Field.Orientation != nil
	case "field.justification":
		return s.Field.Justification != nil
	case "layout.printWidth":
		return s.Layout.PrintWidth != nil
	case "layout.labelLength":
		return s.Layout.LabelLength != nil
	case "layout.printOrientation":
		return s.Layout.PrintOrientation != nil
	case "layout.mirrorImage":
		return s.Layout.MirrorImage != nil
	case "layout.reversePrint":
		return s.Layout.ReversePrint != nil
	case "layout.labelTop":
		return s.Layout.LabelTop != nil
	case "layout.labelShift":
		return s.Layout.LabelShift != nil
	}
	return false
}

// ResolvedLabelState is the renderer-ready output of validating one
// label.
type ResolvedLabelState struct {
	Values          LabelValueState `json:"values"`
	EffectiveWidth  *float64        `json:"effective_width,omitempty"`
	EffectiveHeight *float64        `json:"effective_height,omitempty"`
}

// labelState is the mutable per-label working state of the validator.
// It is created on entry to a label, mutated linearly, and discarded
// after preflight.
type labelState struct {
	producersSeen    map[string]bool
	lastProducerIdx  map[string]int
	producerConsumed map[string]bool
	fieldNumbers     map[string]int // ^FN value -> first node index
	loadedFonts      map[byte]bool  // ^CW registrations

	hasExplicitPW bool
	hasExplicitLL bool
	lastFOX       *float64
	lastFOY       *float64
	gfTotalBytes  uint64

	values LabelValueState
}

func newLabelState() *labelState {
	return &labelState{
		producersSeen:    make(map[string]bool),
		lastProducerIdx:  make(map[string]int),
		producerConsumed: make(map[string]bool),
		fieldNumbers:     make(map[string]int),
		loadedFonts:      make(map[byte]bool),
	}
}

// recordProducer notes that a state-producing command ran.
func (s *labelState) recordProducer(code string, nodeIdx int) {
	s.producersSeen[code] = true
	s.lastProducerIdx[code] = nodeIdx
	s.producerConsumed[code] = false
}

func (s *labelState) hasProducer(code string) bool {
	return s.producersSeen[code]
}

// markConsumed flags a producer's state as used by a consumer command.
func (s *labelState) markConsumed(code string) {
	if _, ok := s.producerConsumed[code]; ok {
		s.producerConsumed[code] = true
	}
}
