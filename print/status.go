// Copyright 2026 Trevor Campbell. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package print

import (
	"fmt"
	"strconv"
	"strings"
)

// PrintMode is the printer's configured media handling mode, decoded
// from ~HS.
type PrintMode int

// Print modes, in ~HS encoding order.
const (
	ModeRewind PrintMode = iota
	ModePeelOff
	ModeTearOff
	ModeCutter
	ModeApplicator
	ModeDelayedCut
	ModeUnknown PrintMode = -1
)

func (m PrintMode) String() string {
	switch m {
	case ModeRewind:
		return "Rewind"
	case ModePeelOff:
		return "Peel Off"
	case ModeTearOff:
		return "Tear Off"
	case ModeCutter:
		return "Cutter"
	case ModeApplicator:
		return "Applicator"
	case ModeDelayedCut:
		return "Delayed Cut"
	}
	return "Unknown"
}

// HostStatus is the decoded three-frame ~HS reply.
type HostStatus struct {
	CommunicationFlag      uint32    `json:"communication_flag"`
	PaperOut               bool      `json:"paper_out"`
	Paused                 bool      `json:"paused"`
	LabelLengthDots        uint32    `json:"label_length_dots"`
	FormatsInBuffer        uint32    `json:"formats_in_buffer"`
	BufferFull             bool      `json:"buffer_full"`
	CommDiagMode           bool      `json:"comm_diag_mode"`
	PartialFormat          bool      `json:"partial_format"`
	CorruptRAM             bool      `json:"corrupt_ram"`
	UnderTemperature       bool      `json:"under_temperature"`
	OverTemperature        bool      `json:"over_temperature"`
	FunctionSettings       uint32    `json:"function_settings"`
	HeadUp                 bool      `json:"head_up"`
	RibbonOut              bool      `json:"ribbon_out"`
	ThermalTransferMode    bool      `json:"thermal_transfer_mode"`
	PrintMode              PrintMode `json:"print_mode"`
	PrintWidthMode         uint32    `json:"print_width_mode"`
	LabelWaiting           bool      `json:"label_waiting"`
	LabelsRemaining        uint32    `json:"labels_remaining"`
	FormatWhilePrinting    bool      `json:"format_while_printing"`
	GraphicsStoredInMemory uint32    `json:"graphics_stored_in_memory"`
	Password               uint32    `json:"password"`
	StaticRAMInstalled     bool      `json:"static_ram_installed"`
}

// statusFields splits one ~HS frame and enforces a minimum field count.
func statusFields(frame []byte, min int, which string) ([]string, error) {
	fields := strings.Split(string(frame), ",")
	if len(fields) < min {
		return nil, errMalformedFrame(fmt.Sprintf(
			"~HS %s has %d fields, expected at least %d", which, len(fields), min))
	}
	return fields, nil
}

func statusUint(fields []string, i int, which string) (uint32, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(fields[i]), 10, 32)
	if err != nil {
		return 0, errMalformedFrame(fmt.Sprintf(
			"~HS %s field %d: %q is not a number", which, i+1, fields[i]))
	}
	return uint32(v), nil
}

func statusFlag(fields []string, i int) bool {
	return strings.TrimSpace(fields[i]) == "1"
}

// ParseHostStatus decodes the three ~HS frames into a typed record.
// Field counts and numeric fields are validated; anything malformed
// surfaces as a malformed-frame error.
func ParseHostStatus(frames [][]byte) (*HostStatus, error) {
	if len(frames) != 3 {
		return nil, errMalformedFrame(fmt.Sprintf("~HS returned %d frames, expected 3", len(frames)))
	}

	f1, err := statusFields(frames[0], 12, "frame 1")
	if err != nil {
		return nil, err
	}
	f2, err := statusFields(frames[1], 11, "frame 2")
	if err != nil {
		return nil, err
	}
	f3, err := statusFields(frames[2], 2, "frame 3")
	if err != nil {
		return nil, err
	}

	hs := &HostStatus{}
	if hs.CommunicationFlag, err = statusUint(f1, 0, "frame 1"); err != nil {
		return nil, err
	}
	hs.PaperOut = statusFlag(f1, 1)
	hs.Paused = statusFlag(f1, 2)
	if hs.LabelLengthDots, err = statusUint(f1, 3, "frame 1"); err != nil {
		return nil, err
	}
	if hs.FormatsInBuffer, err = statusUint(f1, 4, "frame 1"); err != nil {
		return nil, err
	}
	hs.BufferFull = statusFlag(f1, 5)
	hs.CommDiagMode = statusFlag(f1, 6)
	hs.PartialFormat = statusFlag(f1, 7)
	hs.CorruptRAM = statusFlag(f1, 9)
	hs.UnderTemperature = statusFlag(f1, 10)
	hs.OverTemperature = statusFlag(f1, 11)

	if hs.FunctionSettings, err = statusUint(f2, 0, "frame 2"); err != nil {
		return nil, err
	}
	hs.HeadUp = statusFlag(f2, 2)
	hs.RibbonOut = statusFlag(f2, 3)
	hs.ThermalTransferMode = statusFlag(f2, 4)
	mode, err := statusUint(f2, 5, "frame 2")
	if err != nil {
		return nil, err
	}
	if mode <= uint32(ModeDelayedCut) {
		hs.PrintMode = PrintMode(mode)
	} else {
		hs.PrintMode = ModeUnknown
	}
	if hs.PrintWidthMode, err = statusUint(f2, 6, "frame 2"); err != nil {
		return nil, err
	}
	hs.LabelWaiting = statusFlag(f2, 7)
	if hs.LabelsRemaining, err = statusUint(f2, 8, "frame 2"); err != nil {
		return nil, err
	}
	hs.FormatWhilePrinting = statusFlag(f2, 9)
	if hs.GraphicsStoredInMemory, err = statusUint(f2, 10, "frame 2"); err != nil {
		return nil, err
	}

	if hs.Password, err = statusUint(f3, 0, "frame 3"); err != nil {
		return nil, err
	}
	hs.StaticRAMInstalled = statusFlag(f3, 1)

	return hs, nil
}

// ErrorKinds translates the status flags into the set of active
// hardware error conditions.
func (hs *HostStatus) ErrorKinds() []PrinterErrorKind {
	var kinds []PrinterErrorKind
	if hs.PaperOut {
		kinds = append(kinds, PaperOut)
	}
	if hs.RibbonOut {
		kinds = append(kinds, RibbonOut)
	}
	if hs.HeadUp {
		kinds = append(kinds, HeadOpen)
	}
	if hs.OverTemperature {
		kinds = append(kinds, OverTemperature)
	}
	if hs.UnderTemperature {
		kinds = append(kinds, UnderTemperature)
	}
	if hs.CorruptRAM {
		kinds = append(kinds, CorruptRAM)
	}
	if hs.BufferFull {
		kinds = append(kinds, BufferFull)
	}
	return kinds
}

// PrinterInfo is the decoded single-frame ~HI reply.
type PrinterInfo struct {
	Model    string `json:"model"`
	Firmware string `json:"firmware"`
	DPI      uint32 `json:"dpi"`
	MemoryKB uint32 `json:"memory_kb"`
}

// ParsePrinterInfo decodes the ~HI frame: model, firmware, dots per
// millimeter, memory size in KB.
func ParsePrinterInfo(frames [][]byte) (*PrinterInfo, error) {
	if len(frames) != 1 {
		return nil, errMalformedFrame(fmt.Sprintf("~HI returned %d frames, expected 1", len(frames)))
	}
	fields := strings.Split(string(frames[0]), ",")
	if len(fields) < 4 {
		return nil, errMalformedFrame(fmt.Sprintf("~HI has %d fields, expected at least 4", len(fields)))
	}
	info := &PrinterInfo{
		Model:    strings.TrimSpace(fields[0]),
		Firmware: strings.TrimSpace(fields[1]),
	}
	dpi, err := strconv.ParseUint(strings.TrimSpace(fields[2]), 10, 32)
	if err != nil {
		return nil, errMalformedFrame(fmt.Sprintf("~HI dpi field: %q is not a number", fields[2]))
	}
	mem, err := strconv.ParseUint(strings.TrimSpace(fields[3]), 10, 32)
	if err != nil {
		return nil, errMalformedFrame(fmt.Sprintf("~HI memory field: %q is not a number", fields[3]))
	}
	info.DPI = uint32(dpi)
	info.MemoryKB = uint32(mem)
	return info, nil
}
