// Copyright 2026 Trevor Campbell. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package print

import (
	"fmt"

	"github.com/charmbracelet/log"
)

// A Printer is anything that can send raw bytes to a label printer.
// All concrete transports (TCP, USB, serial) implement it.
type Printer interface {
	// SendRaw writes all bytes and flushes.
	SendRaw(data []byte) error
}

// StatusQuery is the bidirectional capability: write a query command
// and read its framed response.
type StatusQuery interface {
	// QueryRaw writes cmd and reads ExpectedFrameCount(cmd) frames
	// under the configured read timeout.
	QueryRaw(cmd []byte) ([][]byte, error)
}

// Reconnectable transports can tear down and reopen their connection
// with the same configuration.
type Reconnectable interface {
	Reconnect() error
}

// SendZPL sends a ZPL program verbatim.
func SendZPL(p Printer, zpl string) error {
	if zpl == "" {
		return nil
	}
	return p.SendRaw([]byte(zpl))
}

// QueryStatus issues ~HS and decodes the reply.
func QueryStatus(q StatusQuery) (*HostStatus, error) {
	frames, err := q.QueryRaw([]byte("~HS"))
	if err != nil {
		return nil, err
	}
	return ParseHostStatus(frames)
}

// QueryInfo issues ~HI and decodes the reply.
func QueryInfo(q StatusQuery) (*PrinterInfo, error) {
	frames, err := q.QueryRaw([]byte("~HI"))
	if err != nil {
		return nil, err
	}
	return ParsePrinterInfo(frames)
}

// traceBytes logs a transport-level byte dump when TraceIO is enabled.
func traceBytes(label string, data []byte) {
	const maxDump = 64
	dump := data
	truncated := ""
	if len(dump) > maxDump {
		dump = dump[:maxDump]
		truncated = fmt.Sprintf(" (+%d more)", len(data)-maxDump)
	}
	hex := make([]byte, 0, len(dump)*3)
	ascii := make([]byte, 0, len(dump))
	for _, b := range dump {
		hex = append(hex, fmt.Sprintf("%02X ", b)...)
		if b >= 0x20 && b < 0x7F {
			ascii = append(ascii, b)
		} else {
			ascii = append(ascii, '.')
		}
	}
	log.Debug("trace-io", "dir", label, "len", len(data),
		"hex", string(hex)+truncated, "ascii", string(ascii))
}
