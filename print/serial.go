// Copyright 2026 Trevor Campbell. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package print

import (
	"time"

	"github.com/tarm/serial"
)

// DefaultBaud is the Zebra factory serial configuration (9600 8N1,
// XON/XOFF flow control on the printer side).
const DefaultBaud = 9600

// SerialSettings are the line settings used to open a serial port.
type SerialSettings struct {
	DataBits byte
	Parity   serial.Parity
	StopBits serial.StopBits
}

// DefaultSerialSettings returns the Zebra default line settings (8N1).
func DefaultSerialSettings() SerialSettings {
	return SerialSettings{
		DataBits: 8,
		Parity:   serial.ParityNone,
		StopBits: serial.Stop1,
	}
}

// A SerialPrinter is a printer on an RS-232, USB-serial, or Bluetooth
// SPP link. Serial links are inherently bidirectional, so it supports
// both sending and status queries.
type SerialPrinter struct {
	port   *serial.Port
	config Config
}

// OpenSerial opens a serial port (e.g. /dev/ttyUSB0, COM3) at the given
// baud rate with the Zebra default line settings.
func OpenSerial(path string, baud int, config Config) (*SerialPrinter, error) {
	return OpenSerialWithSettings(path, baud, DefaultSerialSettings(), config)
}

// OpenSerialDefault opens a serial port at the Zebra default baud rate.
func OpenSerialDefault(path string, config Config) (*SerialPrinter, error) {
	return OpenSerial(path, DefaultBaud, config)
}

// OpenSerialWithSettings opens a serial port with explicit line
// settings, for printers whose serial config has been changed.
func OpenSerialWithSettings(path string, baud int, settings SerialSettings, config Config) (*SerialPrinter, error) {
	timeout := config.Timeouts.Read
	if config.Timeouts.Write > timeout {
		timeout = config.Timeouts.Write
	}
	port, err := serial.OpenPort(&serial.Config{
		Name:        path,
		Baud:        baud,
		Size:        settings.DataBits,
		Parity:      settings.Parity,
		StopBits:    settings.StopBits,
		ReadTimeout: readSliceTimeout(timeout),
	})
	if err != nil {
		return nil, &Error{Kind: KindSerialError, Details: err.Error(), cause: err}
	}
	return &SerialPrinter{port: port, config: config}, nil
}

// readSliceTimeout picks the per-read timeout for the port. The frame
// reader enforces the overall deadline itself, so individual reads use
// a short slice to stay responsive.
func readSliceTimeout(total time.Duration) time.Duration {
	const slice = 250 * time.Millisecond
	if total < slice {
		return total
	}
	return slice
}

// Close releases the port.
func (p *SerialPrinter) Close() error {
	return p.port.Close()
}

// SendRaw writes all bytes and flushes the port.
func (p *SerialPrinter) SendRaw(data []byte) error {
	if p.config.TraceIO {
		traceBytes("serial tx", data)
	}
	n, err := p.port.Write(data)
	if err != nil {
		return errWriteFailed(err)
	}
	if n < len(data) {
		return errWriteFailed(&Error{Kind: KindSerialError, Details: "short write"})
	}
	return nil
}

// QueryRaw writes cmd and reads its framed response. The port already
// implements io.Reader, so the frame reader consumes it directly; the
// reader owns the overall deadline.
func (p *SerialPrinter) QueryRaw(cmd []byte) ([][]byte, error) {
	if err := p.SendRaw(cmd); err != nil {
		return nil, err
	}
	frames, err := ReadFrames(serialReader{p.port}, ExpectedFrameCount(cmd),
		p.config.Timeouts.Read, DefaultMaxFrameSize)
	if err != nil {
		return nil, err
	}
	if p.config.TraceIO {
		for _, f := range frames {
			traceBytes("serial rx", f)
		}
	}
	return frames, nil
}

// serialReader adapts the port's zero-on-timeout read convention to the
// frame reader's expectations: a timed-out slice reads zero bytes with
// no error, which the frame reader treats as an empty read and retries
// until its own deadline.
type serialReader struct {
	port *serial.Port
}

func (r serialReader) Read(buf []byte) (int, error) {
	return r.port.Read(buf)
}
