// Copyright 2026 Trevor Campbell. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package print

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kindOf(t *testing.T, err error) ErrorKind {
	t.Helper()
	pe, ok := err.(*Error)
	require.True(t, ok, "expected *Error, got %T (%v)", err, err)
	return pe.Kind
}

func framed(payloads ...string) []byte {
	var buf bytes.Buffer
	for i, p := range payloads {
		if i > 0 {
			buf.WriteString("\r\n")
		}
		buf.WriteByte(STX)
		buf.WriteString(p)
		buf.WriteByte(ETX)
	}
	return buf.Bytes()
}

func TestSingleFrame(t *testing.T) {
	frames, err := ReadFrames(bytes.NewReader(framed("Hello")), 1, time.Second, DefaultMaxFrameSize)
	require.NoError(t, err)
	require.Len(t, frames, 1)
	assert.Equal(t, []byte("Hello"), frames[0])
}

func TestThreeFramesLikeHS(t *testing.T) {
	data := framed(
		"030,0,0,1245,000,0,0,0,000,0,0,0",
		"000,0,0,0,0,2,4,0,00000000,1,000",
		"1234,0",
	)
	frames, err := ReadFrames(bytes.NewReader(data), 3, time.Second, DefaultMaxFrameSize)
	require.NoError(t, err)
	require.Len(t, frames, 3)
	assert.Equal(t, []byte("030,0,0,1245,000,0,0,0,000,0,0,0"), frames[0])
	assert.Equal(t, []byte("000,0,0,0,0,2,4,0,00000000,1,000"), frames[1])
	assert.Equal(t, []byte("1234,0"), frames[2])
}

func TestGarbageBeforeFirstFrame(t *testing.T) {
	data := append([]byte("\r\n\r\nnoise"), framed("data")...)
	frames, err := ReadFrames(bytes.NewReader(data), 1, time.Second, DefaultMaxFrameSize)
	require.NoError(t, err)
	assert.Equal(t, []byte("data"), frames[0])
}

func TestFrameAtExactMaxSize(t *testing.T) {
	body := bytes.Repeat([]byte("X"), 1024)
	data := append(append([]byte{STX}, body...), ETX)
	frames, err := ReadFrames(bytes.NewReader(data), 1, time.Second, 1024)
	require.NoError(t, err)
	assert.Len(t, frames[0], 1024)
}

func TestFrameOneByteOverMax(t *testing.T) {
	body := bytes.Repeat([]byte("X"), 1025)
	data := append(append([]byte{STX}, body...), ETX)
	_, err := ReadFrames(bytes.NewReader(data), 1, time.Second, 1024)
	require.Error(t, err)
	pe := err.(*Error)
	assert.Equal(t, KindFrameTooLarge, pe.Kind)
	assert.Equal(t, 1025, pe.Size)
	assert.Equal(t, 1024, pe.Max)
}

func TestEmptyFrame(t *testing.T) {
	frames, err := ReadFrames(bytes.NewReader([]byte{STX, ETX}), 1, time.Second, DefaultMaxFrameSize)
	require.NoError(t, err)
	assert.Empty(t, frames[0])
}

func TestEmptyInputIsConnectionClosed(t *testing.T) {
	_, err := ReadFrames(bytes.NewReader(nil), 1, time.Second, DefaultMaxFrameSize)
	assert.Equal(t, KindConnectionClosed, kindOf(t, err))
}

func TestExpectedCountZero(t *testing.T) {
	frames, err := ReadFrames(bytes.NewReader(framed("A")), 0, time.Second, DefaultMaxFrameSize)
	require.NoError(t, err)
	assert.Empty(t, frames)
}

func TestBackToBackFrames(t *testing.T) {
	data := []byte{STX, 'A', ETX, STX, 'B', ETX}
	frames, err := ReadFrames(bytes.NewReader(data), 2, time.Second, DefaultMaxFrameSize)
	require.NoError(t, err)
	assert.Equal(t, []byte("A"), frames[0])
	assert.Equal(t, []byte("B"), frames[1])
}

func TestGarbageOnlyNoStx(t *testing.T) {
	_, err := ReadFrames(bytes.NewReader([]byte("\r\nxy")), 1, time.Second, DefaultMaxFrameSize)
	assert.Equal(t, KindConnectionClosed, kindOf(t, err))
}

func TestConnectionClosedMidFrame(t *testing.T) {
	data := []byte{STX, 'p', 'a', 'r', 't'}
	_, err := ReadFrames(bytes.NewReader(data), 1, time.Second, DefaultMaxFrameSize)
	assert.Equal(t, KindConnectionClosed, kindOf(t, err))
}

// wouldBlockReader simulates a source that never delivers data but
// keeps reporting a timeout, the way a socket with a short deadline
// does.
type wouldBlockReader struct{}

func (wouldBlockReader) Read([]byte) (int, error) {
	return 0, timeoutError{}
}

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func TestDeadlineEnforcedAcrossWouldBlock(t *testing.T) {
	start := time.Now()
	_, err := ReadFrames(wouldBlockReader{}, 1, 50*time.Millisecond, DefaultMaxFrameSize)
	assert.Equal(t, KindReadTimeout, kindOf(t, err))
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestExpectedFrameCount(t *testing.T) {
	assert.Equal(t, 3, ExpectedFrameCount([]byte("~HS")))
	assert.Equal(t, 1, ExpectedFrameCount([]byte("~HI")))
	assert.Equal(t, 1, ExpectedFrameCount([]byte("~HD")))
}

// TestFramesConcatenation verifies the framing invariant: re-wrapping
// the returned payloads in STX/ETX reproduces the framed prefix of the
// stream.
func TestFramesConcatenation(t *testing.T) {
	data := []byte{STX, 'A', 'B', ETX, STX, ETX, STX, 'C', ETX}
	frames, err := ReadFrames(bytes.NewReader(data), 3, time.Second, DefaultMaxFrameSize)
	require.NoError(t, err)

	var rebuilt []byte
	for _, f := range frames {
		rebuilt = append(rebuilt, STX)
		rebuilt = append(rebuilt, f...)
		rebuilt = append(rebuilt, ETX)
	}
	assert.Equal(t, data, rebuilt)
}
