// Copyright 2026 Trevor Campbell. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package print

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIPWithPort(t *testing.T) {
	addr, err := ResolveAddr("192.168.1.55:9100")
	require.NoError(t, err)
	assert.Equal(t, "192.168.1.55:9100", addr)
}

func TestIPWithCustomPort(t *testing.T) {
	addr, err := ResolveAddr("10.0.0.1:6101")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1:6101", addr)
}

func TestIPWithoutPortDefaults(t *testing.T) {
	addr, err := ResolveAddr("192.168.1.55")
	require.NoError(t, err)
	assert.Equal(t, "192.168.1.55:9100", addr)
}

func TestIPv6WithPort(t *testing.T) {
	addr, err := ResolveAddr("[::1]:9100")
	require.NoError(t, err)
	assert.Equal(t, "[::1]:9100", addr)
}

func TestIPv6WithoutPort(t *testing.T) {
	addr, err := ResolveAddr("::1")
	require.NoError(t, err)
	assert.Equal(t, "[::1]:9100", addr)
}

func TestLocalhostResolves(t *testing.T) {
	addr, err := ResolveAddr("localhost:9100")
	require.NoError(t, err)
	assert.Contains(t, []string{"127.0.0.1:9100", "[::1]:9100"}, addr)

	addr, err = ResolveAddr("localhost")
	require.NoError(t, err)
	assert.Contains(t, []string{"127.0.0.1:9100", "[::1]:9100"}, addr)
}

func TestUnresolvableHostname(t *testing.T) {
	_, err := ResolveAddr("no-such-host.invalid")
	assert.Equal(t, KindNoAddressFound, kindOf(t, err))
}

func TestGarbageInput(t *testing.T) {
	_, err := ResolveAddr("not a valid address!!!")
	assert.Equal(t, KindNoAddressFound, kindOf(t, err))
}

func TestBadPort(t *testing.T) {
	_, err := ResolveAddr("host:notaport")
	assert.Equal(t, KindInvalidAddress, kindOf(t, err))
}

func TestEmptyInput(t *testing.T) {
	_, err := ResolveAddr("")
	assert.Equal(t, KindInvalidAddress, kindOf(t, err))
}
