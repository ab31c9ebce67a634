// Copyright 2026 Trevor Campbell. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package print

import (
	"bytes"
	"errors"
	"io"
	"net"
	"os"
	"time"
)

// Framing bytes used by Zebra printer responses.
const (
	STX byte = 0x02
	ETX byte = 0x03
)

// DefaultMaxFrameSize bounds a single response frame. ~HS frames are
// about 100 bytes; the guard stops runaway reads from a misbehaving
// printer.
const DefaultMaxFrameSize = 1024

// frameState is the reader's two-state machine.
type frameState byte

const (
	waitingForStx frameState = iota
	readingFrame
)

// ReadFrames reads exactly expected STX/ETX-framed payloads from the
// stream. Bytes outside frames (CR, LF, garbage between frames) are
// dropped. A single frame buffer grows as needed and is reset between
// frames; no per-byte allocation occurs.
//
// The deadline is enforced on the wall clock even when the underlying
// source keeps returning timeout errors: those sleep one millisecond
// and re-check. A zero-length read (EOF) yields a connection-closed
// error; a frame longer than maxFrame yields a frame-too-large error.
func ReadFrames(stream io.Reader, expected int, timeout time.Duration, maxFrame int) ([][]byte, error) {
	deadline := time.Now().Add(timeout)
	frames := make([][]byte, 0, expected)
	current := bytes.NewBuffer(make([]byte, 0, 256))
	state := waitingForStx
	buf := make([]byte, 512)

	for len(frames) < expected {
		if !time.Now().Before(deadline) {
			return nil, errReadTimeout()
		}

		n, err := stream.Read(buf)
		if err != nil {
			switch {
			case errors.Is(err, io.EOF):
				return nil, errConnectionClosed()
			case isTimeout(err):
				if !time.Now().Before(deadline) {
					return nil, errReadTimeout()
				}
				time.Sleep(time.Millisecond)
				continue
			default:
				return nil, errReadFailed(err)
			}
		}
		if n == 0 {
			// Some sources (serial ports) report a timed-out slice as a
			// zero-byte read with no error.
			if !time.Now().Before(deadline) {
				return nil, errReadTimeout()
			}
			time.Sleep(time.Millisecond)
			continue
		}

		for _, b := range buf[:n] {
			switch {
			case state == waitingForStx && b == STX:
				current.Reset()
				state = readingFrame
			case state == waitingForStx:
				// Inter-frame garbage is dropped silently.
			case b == ETX:
				frame := make([]byte, current.Len())
				copy(frame, current.Bytes())
				frames = append(frames, frame)
				state = waitingForStx
				if len(frames) >= expected {
					return frames, nil
				}
			default:
				if current.Len() >= maxFrame {
					return nil, errFrameTooLarge(current.Len()+1, maxFrame)
				}
				current.WriteByte(b)
			}
		}
	}

	return frames, nil
}

// isTimeout recognizes deadline and would-block conditions from any
// synchronous byte source.
func isTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// ExpectedFrameCount returns how many STX/ETX frames a query command
// elicits: three for ~HS, one for everything else.
func ExpectedFrameCount(cmd []byte) int {
	if bytes.HasPrefix(cmd, []byte("~HS")) {
		return 3
	}
	return 1
}
