// Copyright 2026 Trevor Campbell. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package profile models per-printer capability records consumed by the
// validator. A profile is optional; without one, profile-derived checks
// and predicates are skipped (predicates evaluate false).
package profile

import (
	"encoding/json"
	"os"

	"github.com/cockroachdb/errors"
)

// A Profile describes one printer's capabilities.
type Profile struct {
	ID            string    `json:"id"`
	SchemaVersion string    `json:"schema_version"`
	DPI           int       `json:"dpi"`
	Page          *Page     `json:"page,omitempty"`
	SpeedRange    *Range    `json:"speed_range,omitempty"`
	DarknessRange *Range    `json:"darkness_range,omitempty"`
	Features      *Features `json:"features,omitempty"`
	Media         *Media    `json:"media,omitempty"`
	Memory        *Memory   `json:"memory,omitempty"`
}

// Page holds the printable area in dots.
type Page struct {
	WidthDots  *int `json:"width_dots,omitempty"`
	HeightDots *int `json:"height_dots,omitempty"`
}

// Range is an inclusive numeric range.
type Range struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Features are optional hardware gates. A nil pointer means the gate is
// unknown, which satisfies neither feature: nor featureMissing:.
type Features struct {
	Cutter *bool `json:"cutter,omitempty"`
	Peeler *bool `json:"peeler,omitempty"`
	RFID   *bool `json:"rfid,omitempty"`
	Rewind *bool `json:"rewind,omitempty"`
}

// Media describes the loaded stock.
type Media struct {
	Type  string `json:"type,omitempty"`
	Width string `json:"width,omitempty"`
}

// Memory holds RAM/flash sizes and the firmware version string.
type Memory struct {
	RAMKB           *int   `json:"ram_kb,omitempty"`
	FlashKB         *int   `json:"flash_kb,omitempty"`
	FirmwareVersion string `json:"firmware_version,omitempty"`
}

// Parse deserializes a profile artifact from JSON.
func Parse(data []byte) (*Profile, error) {
	p := new(Profile)
	if err := json.Unmarshal(data, p); err != nil {
		return nil, errors.Wrap(err, "printer profile")
	}
	return p, nil
}

// Load reads and parses a profile artifact from disk.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read profile %s", path)
	}
	return Parse(data)
}

// fieldFn resolves one numeric profile field.
type fieldFn func(*Profile) (float64, bool)

func intField(v *int) (float64, bool) {
	if v == nil {
		return 0, false
	}
	return float64(*v), true
}

// Declarative registry of all numeric profile fields addressable by
// dotted path from profileConstraint declarations. Adding a numeric
// field means adding one row here.
var fieldRegistry = map[string]fieldFn{
	"dpi": func(p *Profile) (float64, bool) { return float64(p.DPI), true },
	"page.width_dots": func(p *Profile) (float64, bool) {
		if p.Page == nil {
			return 0, false
		}
		return intField(p.Page.WidthDots)
	},
	"page.height_dots": func(p *Profile) (float64, bool) {
		if p.Page == nil {
			return 0, false
		}
		return intField(p.Page.HeightDots)
	},
	"speed_range.min": func(p *Profile) (float64, bool) {
		if p.SpeedRange == nil {
			return 0, false
		}
		return float64(p.SpeedRange.Min), true
	},
	"speed_range.max": func(p *Profile) (float64, bool) {
		if p.SpeedRange == nil {
			return 0, false
		}
		return float64(p.SpeedRange.Max), true
	},
	"darkness_range.min": func(p *Profile) (float64, bool) {
		if p.DarknessRange == nil {
			return 0, false
		}
		return float64(p.DarknessRange.Min), true
	},
	"darkness_range.max": func(p *Profile) (float64, bool) {
		if p.DarknessRange == nil {
			return 0, false
		}
		return float64(p.DarknessRange.Max), true
	},
	"memory.ram_kb": func(p *Profile) (float64, bool) {
		if p.Memory == nil {
			return 0, false
		}
		return intField(p.Memory.RAMKB)
	},
	"memory.flash_kb": func(p *Profile) (float64, bool) {
		if p.Memory == nil {
			return 0, false
		}
		return intField(p.Memory.FlashKB)
	},
}

// ResolveField returns the numeric value of the named profile field, or
// false when the path is unrecognized or the value is not set.
func (p *Profile) ResolveField(field string) (float64, bool) {
	fn, ok := fieldRegistry[field]
	if !ok || p == nil {
		return 0, false
	}
	return fn(p)
}

// ResolveGate returns the state of a named feature gate. The second
// result is false when the gate is unknown or not set in the profile.
func (p *Profile) ResolveGate(gate string) (bool, bool) {
	if p == nil || p.Features == nil {
		return false, false
	}
	var v *bool
	switch gate {
	case "cutter":
		v = p.Features.Cutter
	case "peeler":
		v = p.Features.Peeler
	case "rfid":
		v = p.Features.RFID
	case "rewind":
		v = p.Features.Rewind
	}
	if v == nil {
		return false, false
	}
	return *v, true
}
