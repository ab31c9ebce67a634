// Copyright 2026 Trevor Campbell. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package print

import (
	"github.com/cenkalti/backoff/v4"
	"github.com/charmbracelet/log"
)

// WithRetry runs op with exponential backoff per the retry
// configuration. Only transient failures (IsRetryable) are retried;
// permanent failures return immediately. When MaxAttempts transient
// failures occur, the last error is wrapped in a retries-exhausted
// error, which is itself not retryable.
func WithRetry[T any](cfg RetryConfig, op func() (T, error)) (T, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = cfg.InitialDelay
	b.MaxInterval = cfg.MaxDelay
	b.MaxElapsedTime = 0
	if !cfg.Jitter {
		b.RandomizationFactor = 0
	}

	attempts := 0
	var lastErr error
	wrapped := func() (T, error) {
		attempts++
		v, err := op()
		if err == nil {
			return v, nil
		}
		lastErr = err
		if !IsRetryable(err) {
			return v, backoff.Permanent(err)
		}
		if attempts > 1 {
			log.Debug("retrying after transient printer error",
				"attempt", attempts, "err", err)
		}
		return v, err
	}

	maxAttempts := cfg.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	v, err := backoff.RetryWithData(wrapped, backoff.WithMaxRetries(b, uint64(maxAttempts-1)))
	if err == nil {
		return v, nil
	}
	if !IsRetryable(lastErr) {
		return v, lastErr
	}
	return v, &Error{Kind: KindRetriesExhausted, Attempts: attempts, cause: lastErr}
}

// SendRawRetry sends bytes through the retry wrapper. Between attempts,
// reconnectable transports are reopened so a dropped connection does
// not doom every following attempt.
func SendRawRetry(p Printer, cfg RetryConfig, data []byte) error {
	first := true
	_, err := WithRetry(cfg, func() (struct{}, error) {
		if !first {
			if rc, ok := p.(Reconnectable); ok {
				if rerr := rc.Reconnect(); rerr != nil {
					return struct{}{}, rerr
				}
			}
		}
		first = false
		return struct{}{}, p.SendRaw(data)
	})
	return err
}

// QueryStatusRetry queries ~HS through the retry wrapper.
func QueryStatusRetry(q StatusQuery, cfg RetryConfig) (*HostStatus, error) {
	return WithRetry(cfg, func() (*HostStatus, error) {
		return QueryStatus(q)
	})
}
