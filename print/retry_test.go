// Copyright 2026 Trevor Campbell. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package print

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry(attempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts:  attempts,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Jitter:       false,
	}
}

func TestRetrySucceedsFirstTry(t *testing.T) {
	calls := 0
	v, err := WithRetry(fastRetry(3), func() (int, error) {
		calls++
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, 1, calls)
}

func TestRetryRecoversTransientFailure(t *testing.T) {
	calls := 0
	v, err := WithRetry(fastRetry(3), func() (string, error) {
		calls++
		if calls < 3 {
			return "", errReadTimeout()
		}
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, 3, calls)
}

func TestRetryExhaustionWrapsLastError(t *testing.T) {
	calls := 0
	_, err := WithRetry(fastRetry(3), func() (int, error) {
		calls++
		return 0, errReadTimeout()
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)

	pe, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, KindRetriesExhausted, pe.Kind)
	assert.Equal(t, 3, pe.Attempts)
	assert.False(t, pe.IsRetryable())

	last, ok := pe.Unwrap().(*Error)
	require.True(t, ok)
	assert.Equal(t, KindReadTimeout, last.Kind)
}

func TestPermanentErrorNotRetried(t *testing.T) {
	calls := 0
	_, err := WithRetry(fastRetry(5), func() (int, error) {
		calls++
		return 0, errConnectionRefused("127.0.0.1:9100", nil)
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)

	pe, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, KindConnectionRefused, pe.Kind)
}

func TestMalformedFrameNotRetried(t *testing.T) {
	calls := 0
	_, err := WithRetry(fastRetry(5), func() (int, error) {
		calls++
		return 0, errMalformedFrame("bad frame")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestSendRawRetryReconnectsBetweenAttempts(t *testing.T) {
	p := &flakyPrinter{failuresLeft: 2}
	err := SendRawRetry(p, fastRetry(3), []byte("^XA^XZ"))
	require.NoError(t, err)
	assert.Equal(t, 3, p.sends)
	assert.Equal(t, 2, p.reconnects)
}

type flakyPrinter struct {
	failuresLeft int
	sends        int
	reconnects   int
}

func (p *flakyPrinter) SendRaw(data []byte) error {
	p.sends++
	if p.failuresLeft > 0 {
		p.failuresLeft--
		return errConnectionClosed()
	}
	return nil
}

func (p *flakyPrinter) Reconnect() error {
	p.reconnects++
	return nil
}
