// Copyright 2026 Trevor Campbell. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package print

import (
	"errors"
	"io"
	"net"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
)

// keepaliveInterval is the TCP keepalive period applied to printer
// connections.
const keepaliveInterval = 60 * time.Second

// A TCPPrinter is a synchronous TCP connection to a printer's RAW port
// (typically 9100). One caller drives one connection at a time; for
// concurrent printing, open independent connections.
type TCPPrinter struct {
	conn   *net.TCPConn
	addr   string
	config Config
}

// ConnectTCP resolves addr (any form ResolveAddr accepts) and opens a
// configured connection: TCP_NODELAY, 60-second keepalive, and the
// connect timeout from the configuration. Read and write deadlines are
// applied per operation.
func ConnectTCP(addr string, config Config) (*TCPPrinter, error) {
	resolved, err := ResolveAddr(addr)
	if err != nil {
		return nil, err
	}
	conn, err := dial(resolved, &config)
	if err != nil {
		return nil, err
	}
	return &TCPPrinter{conn: conn, addr: resolved, config: config}, nil
}

func dial(addr string, config *Config) (*net.TCPConn, error) {
	d := net.Dialer{
		Timeout:   config.Timeouts.Connect,
		KeepAlive: keepaliveInterval,
	}
	conn, err := d.Dial("tcp", addr)
	if err != nil {
		switch {
		case errors.Is(err, syscall.ECONNREFUSED):
			return nil, errConnectionRefused(addr, err)
		case isTimeout(err):
			return nil, errConnectionTimeout(addr, config.Timeouts.Connect, err)
		default:
			return nil, errConnectionFailed(addr, err)
		}
	}
	tc := conn.(*net.TCPConn)
	if err := tc.SetNoDelay(true); err != nil {
		tc.Close()
		return nil, errConnectionFailed(addr, err)
	}
	return tc, nil
}

// RemoteAddr returns the resolved address this printer is connected to.
func (p *TCPPrinter) RemoteAddr() string {
	return p.addr
}

// Reconnect tears down the socket and reopens it with the same
// configuration. The old connection's close errors are ignored.
func (p *TCPPrinter) Reconnect() error {
	if p.conn != nil {
		_ = p.conn.Close()
	}
	conn, err := dial(p.addr, &p.config)
	if err != nil {
		return err
	}
	p.conn = conn
	log.Debug("reconnected to printer", "addr", p.addr)
	return nil
}

// Close shuts down the connection.
func (p *TCPPrinter) Close() error {
	if p.conn == nil {
		return nil
	}
	err := p.conn.Close()
	p.conn = nil
	return err
}

// SendRaw writes all bytes under the write timeout.
func (p *TCPPrinter) SendRaw(data []byte) error {
	if p.config.TraceIO {
		traceBytes("tcp tx", data)
	}
	if err := p.conn.SetWriteDeadline(time.Now().Add(p.config.Timeouts.Write)); err != nil {
		return errWriteFailed(err)
	}
	if _, err := p.conn.Write(data); err != nil {
		if errors.Is(err, io.ErrClosedPipe) || errors.Is(err, net.ErrClosed) ||
			errors.Is(err, syscall.EPIPE) || errors.Is(err, syscall.ECONNRESET) {
			return errConnectionClosed()
		}
		return errWriteFailed(err)
	}
	return nil
}

// QueryRaw writes cmd and reads its framed response under the read
// timeout.
func (p *TCPPrinter) QueryRaw(cmd []byte) ([][]byte, error) {
	if err := p.SendRaw(cmd); err != nil {
		return nil, err
	}
	if err := p.conn.SetReadDeadline(time.Now().Add(p.config.Timeouts.Read)); err != nil {
		return nil, errReadFailed(err)
	}
	frames, err := ReadFrames(p.conn, ExpectedFrameCount(cmd), p.config.Timeouts.Read, DefaultMaxFrameSize)
	if err != nil {
		return nil, err
	}
	if p.config.TraceIO {
		for _, f := range frames {
			traceBytes("tcp rx", f)
		}
	}
	return frames, nil
}

// WaitForCompletion polls ~HS until the printer reports an empty buffer
// and queue. See the package-level WaitForCompletion.
func (p *TCPPrinter) WaitForCompletion(pollInterval, timeout time.Duration) error {
	return WaitForCompletion(p, pollInterval, timeout)
}
