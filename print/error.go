// Copyright 2026 Trevor Campbell. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package print is a synchronous bidirectional client for networked and
// locally attached ZPL printers. It frames STX/ETX responses, decodes
// host-status and host-identification replies, retries transient
// failures, and tracks label-job completion.
package print

import (
	"fmt"
	"time"
)

// ErrorKind categorizes printer client failures.
type ErrorKind int

// All error kinds.
const (
	KindConnectionRefused ErrorKind = iota
	KindConnectionTimeout
	KindConnectionFailed
	KindConnectionClosed
	KindInvalidAddress
	KindNoAddressFound
	KindWriteFailed
	KindReadFailed
	KindReadTimeout
	KindMalformedFrame
	KindFrameTooLarge
	KindPrinterError
	KindRetriesExhausted
	KindPreflightFailed
	KindInvalidConfig
	KindUSBNotFound
	KindUSBError
	KindSerialError
	KindCompletionTimeout
)

// An Error is a typed printer client failure. Fields beyond Kind are
// populated per kind (Addr for connection errors, Size/Max for frame
// errors, and so on).
type Error struct {
	Kind    ErrorKind
	Addr    string
	Details string
	Timeout time.Duration

	// Frame sizing (KindFrameTooLarge).
	Size int
	Max  int

	// Retry accounting (KindRetriesExhausted).
	Attempts int

	// Hardware condition (KindPrinterError).
	Printer PrinterErrorKind

	// Completion counters (KindCompletionTimeout).
	FormatsInBuffer uint32
	LabelsRemaining uint32

	cause error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindConnectionRefused:
		return fmt.Sprintf("connection refused: %s", e.Addr)
	case KindConnectionTimeout:
		return fmt.Sprintf("connection timed out: %s (%s)", e.Addr, e.Timeout)
	case KindConnectionFailed:
		return fmt.Sprintf("connection failed: %s", e.Addr)
	case KindConnectionClosed:
		return "connection closed by printer"
	case KindInvalidAddress:
		return fmt.Sprintf("invalid address: %s", e.Addr)
	case KindNoAddressFound:
		return fmt.Sprintf("no address found for hostname: %s", e.Addr)
	case KindWriteFailed:
		return fmt.Sprintf("write failed: %v", e.cause)
	case KindReadFailed:
		return fmt.Sprintf("read failed: %v", e.cause)
	case KindReadTimeout:
		return "read timed out waiting for response"
	case KindMalformedFrame:
		return fmt.Sprintf("malformed response frame: %s", e.Details)
	case KindFrameTooLarge:
		return fmt.Sprintf("frame too large (%d bytes, max %d)", e.Size, e.Max)
	case KindPrinterError:
		return fmt.Sprintf("printer error: %s", e.Printer)
	case KindRetriesExhausted:
		return fmt.Sprintf("retries exhausted after %d attempts", e.Attempts)
	case KindPreflightFailed:
		return "preflight validation failed"
	case KindInvalidConfig:
		return fmt.Sprintf("invalid configuration: %s", e.Details)
	case KindUSBNotFound:
		return "USB device not found"
	case KindUSBError:
		return fmt.Sprintf("USB error: %s", e.Details)
	case KindSerialError:
		return fmt.Sprintf("serial port error: %s", e.Details)
	case KindCompletionTimeout:
		return fmt.Sprintf("timeout waiting for completion (%d formats in buffer, %d labels remaining)",
			e.FormatsInBuffer, e.LabelsRemaining)
	}
	return "unknown printer error"
}

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (e *Error) Unwrap() error {
	return e.cause
}

// IsRetryable reports whether the failure is transient and worth
// retrying: connection timeout/closed, write/read failures, read
// timeout, and completion timeout. Everything else — refused
// connections, DNS misses, malformed or oversized frames, hardware
// errors, configuration and preflight failures, and exhausted retries —
// is permanent.
func (e *Error) IsRetryable() bool {
	switch e.Kind {
	case KindConnectionTimeout, KindConnectionClosed, KindWriteFailed,
		KindReadFailed, KindReadTimeout, KindCompletionTimeout:
		return true
	}
	return false
}

// IsRetryable classifies any error: typed client errors answer for
// themselves; everything else is permanent.
func IsRetryable(err error) bool {
	if pe, ok := err.(*Error); ok {
		return pe.IsRetryable()
	}
	return false
}

// PrinterErrorKind identifies a hardware/media condition reported by
// the printer via ~HS.
type PrinterErrorKind int

// Hardware error conditions.
const (
	PaperOut PrinterErrorKind = iota
	RibbonOut
	HeadOpen
	OverTemperature
	UnderTemperature
	CorruptRAM
	BufferFull
)

func (k PrinterErrorKind) String() string {
	switch k {
	case PaperOut:
		return "paper out"
	case RibbonOut:
		return "ribbon out"
	case HeadOpen:
		return "head open"
	case OverTemperature:
		return "over temperature"
	case UnderTemperature:
		return "under temperature"
	case CorruptRAM:
		return "corrupt RAM"
	case BufferFull:
		return "buffer full"
	}
	return "unknown"
}

// ── Constructors ────────────────────────────────────────────────────────

func errConnectionRefused(addr string, cause error) *Error {
	return &Error{Kind: KindConnectionRefused, Addr: addr, cause: cause}
}

func errConnectionTimeout(addr string, timeout time.Duration, cause error) *Error {
	return &Error{Kind: KindConnectionTimeout, Addr: addr, Timeout: timeout, cause: cause}
}

func errConnectionFailed(addr string, cause error) *Error {
	return &Error{Kind: KindConnectionFailed, Addr: addr, cause: cause}
}

func errConnectionClosed() *Error {
	return &Error{Kind: KindConnectionClosed}
}

func errWriteFailed(cause error) *Error {
	return &Error{Kind: KindWriteFailed, cause: cause}
}

func errReadFailed(cause error) *Error {
	return &Error{Kind: KindReadFailed, cause: cause}
}

func errReadTimeout() *Error {
	return &Error{Kind: KindReadTimeout}
}

func errMalformedFrame(details string) *Error {
	return &Error{Kind: KindMalformedFrame, Details: details}
}

func errFrameTooLarge(size, max int) *Error {
	return &Error{Kind: KindFrameTooLarge, Size: size, Max: max}
}
