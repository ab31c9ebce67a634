// Copyright 2026 Trevor Campbell. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package print

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func healthyHSFrames() [][]byte {
	return [][]byte{
		[]byte("030,0,0,1245,000,0,0,0,000,0,0,0"),
		[]byte("000,0,0,0,0,2,4,0,00000000,1,000"),
		[]byte("1234,0"),
	}
}

func TestParseHostStatusHealthy(t *testing.T) {
	hs, err := ParseHostStatus(healthyHSFrames())
	require.NoError(t, err)

	assert.False(t, hs.PaperOut)
	assert.False(t, hs.Paused)
	assert.False(t, hs.HeadUp)
	assert.False(t, hs.RibbonOut)
	assert.Equal(t, uint32(1245), hs.LabelLengthDots)
	assert.Equal(t, uint32(0), hs.FormatsInBuffer)
	assert.Equal(t, uint32(0), hs.LabelsRemaining)
	assert.Equal(t, ModeTearOff, hs.PrintMode)
	assert.Equal(t, "Tear Off", hs.PrintMode.String())
	assert.Equal(t, uint32(1234), hs.Password)
	assert.Empty(t, hs.ErrorKinds())
}

func TestParseHostStatusErrorFlags(t *testing.T) {
	frames := [][]byte{
		[]byte("030,1,1,1245,002,1,0,0,000,1,1,1"),
		[]byte("000,0,1,1,0,2,4,0,00000003,1,000"),
		[]byte("0000,1"),
	}
	hs, err := ParseHostStatus(frames)
	require.NoError(t, err)

	assert.True(t, hs.PaperOut)
	assert.True(t, hs.Paused)
	assert.True(t, hs.HeadUp)
	assert.True(t, hs.RibbonOut)
	assert.True(t, hs.BufferFull)
	assert.True(t, hs.CorruptRAM)
	assert.True(t, hs.UnderTemperature)
	assert.True(t, hs.OverTemperature)
	assert.Equal(t, uint32(2), hs.FormatsInBuffer)
	assert.Equal(t, uint32(3), hs.LabelsRemaining)
	assert.True(t, hs.StaticRAMInstalled)

	kinds := hs.ErrorKinds()
	assert.ElementsMatch(t, []PrinterErrorKind{
		PaperOut, RibbonOut, HeadOpen, OverTemperature,
		UnderTemperature, CorruptRAM, BufferFull,
	}, kinds)
}

func TestParseHostStatusWrongFrameCount(t *testing.T) {
	_, err := ParseHostStatus(healthyHSFrames()[:2])
	assert.Equal(t, KindMalformedFrame, kindOf(t, err))
}

func TestParseHostStatusShortFrame(t *testing.T) {
	frames := healthyHSFrames()
	frames[0] = []byte("030,0,0")
	_, err := ParseHostStatus(frames)
	assert.Equal(t, KindMalformedFrame, kindOf(t, err))
}

func TestParseHostStatusNonNumericField(t *testing.T) {
	frames := healthyHSFrames()
	frames[0] = []byte("030,0,0,abcd,000,0,0,0,000,0,0,0")
	_, err := ParseHostStatus(frames)
	assert.Equal(t, KindMalformedFrame, kindOf(t, err))
}

func TestParsePrinterInfo(t *testing.T) {
	info, err := ParsePrinterInfo([][]byte{[]byte("ZD421-300dpi,V84.20.18,8,8192")})
	require.NoError(t, err)
	assert.Equal(t, "ZD421-300dpi", info.Model)
	assert.Equal(t, "V84.20.18", info.Firmware)
	assert.Equal(t, uint32(8), info.DPI)
	assert.Equal(t, uint32(8192), info.MemoryKB)
}

func TestParsePrinterInfoMalformed(t *testing.T) {
	_, err := ParsePrinterInfo([][]byte{[]byte("model-only")})
	assert.Equal(t, KindMalformedFrame, kindOf(t, err))

	_, err = ParsePrinterInfo([][]byte{[]byte("m,f,notanumber,8192")})
	assert.Equal(t, KindMalformedFrame, kindOf(t, err))
}

func TestPrintModeNames(t *testing.T) {
	assert.Equal(t, "Rewind", ModeRewind.String())
	assert.Equal(t, "Peel Off", ModePeelOff.String())
	assert.Equal(t, "Cutter", ModeCutter.String())
	assert.Equal(t, "Unknown", ModeUnknown.String())
}
