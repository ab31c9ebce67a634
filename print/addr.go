// Copyright 2026 Trevor Campbell. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package print

import (
	"net"
	"net/netip"
	"strconv"
)

// DefaultPort is the ZPL raw printing port (JetDirect / RAW).
const DefaultPort = 9100

// ResolveAddr turns a user-provided printer address into a dialable
// "ip:port" string. Accepted forms:
//
//	192.168.1.55:9100     IP with explicit port
//	192.168.1.55          IP without port (defaults to 9100)
//	[fe80::1]:9100        bracketed IPv6 with port
//	::1                   bare IPv6 (defaults to 9100)
//	printer01.local:9100  hostname with port
//	printer01.local       hostname (defaults to 9100)
//
// Hostnames resolving to multiple addresses use the first DNS result.
func ResolveAddr(input string) (string, error) {
	if input == "" {
		return "", &Error{Kind: KindInvalidAddress, Addr: input}
	}

	// IP with port, including bracketed IPv6.
	if ap, err := netip.ParseAddrPort(input); err == nil {
		return ap.String(), nil
	}

	// Bare IP without port.
	if ip, err := netip.ParseAddr(input); err == nil {
		return netip.AddrPortFrom(ip, DefaultPort).String(), nil
	}

	// host:port.
	if host, portStr, err := net.SplitHostPort(input); err == nil {
		port, perr := strconv.Atoi(portStr)
		if perr != nil || port < 1 || port > 65535 {
			return "", &Error{Kind: KindInvalidAddress, Addr: input}
		}
		return lookupFirst(host, uint16(port), input)
	}

	// Bare hostname.
	return lookupFirst(input, DefaultPort, input)
}

func lookupFirst(host string, port uint16, input string) (string, error) {
	addrs, err := net.LookupHost(host)
	if err != nil || len(addrs) == 0 {
		return "", &Error{Kind: KindNoAddressFound, Addr: input, cause: err}
	}
	return net.JoinHostPort(addrs[0], strconv.Itoa(int(port))), nil
}
