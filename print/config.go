// Copyright 2026 Trevor Campbell. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package print

import (
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// Config is the complete printer client configuration.
type Config struct {
	Timeouts Timeouts    `yaml:"timeouts"`
	Retry    RetryConfig `yaml:"retry"`

	// TraceIO enables byte-level transport tracing for diagnostics.
	TraceIO bool `yaml:"trace_io"`
}

// Timeouts are the independent per-operation deadlines.
//
// Defaults are tuned for LAN-connected label printers: connect 5s,
// write 30s (labels with embedded ^GF graphics can run to hundreds of
// kilobytes), read 10s (~HS responses are delayed while a printer is
// mid-print).
type Timeouts struct {
	Connect time.Duration `yaml:"connect"`
	Write   time.Duration `yaml:"write"`
	Read    time.Duration `yaml:"read"`
}

// RetryConfig drives the retry wrapper: exponential backoff from
// InitialDelay to MaxDelay, optional jitter, at most MaxAttempts total
// attempts (including the first).
type RetryConfig struct {
	MaxAttempts  int           `yaml:"max_attempts"`
	InitialDelay time.Duration `yaml:"initial_delay"`
	MaxDelay     time.Duration `yaml:"max_delay"`
	Jitter       bool          `yaml:"jitter"`
}

// UnmarshalYAML accepts Go duration strings ("5s", "500ms") for the
// timeout fields, leaving absent keys at their prior values.
func (t *Timeouts) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		Connect string `yaml:"connect"`
		Write   string `yaml:"write"`
		Read    string `yaml:"read"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	for _, f := range []struct {
		src string
		dst *time.Duration
	}{{raw.Connect, &t.Connect}, {raw.Write, &t.Write}, {raw.Read, &t.Read}} {
		if f.src == "" {
			continue
		}
		d, err := time.ParseDuration(f.src)
		if err != nil {
			return errors.Wrapf(err, "timeout %q", f.src)
		}
		*f.dst = d
	}
	return nil
}

// UnmarshalYAML accepts Go duration strings for the delay fields.
func (r *RetryConfig) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		MaxAttempts  *int   `yaml:"max_attempts"`
		InitialDelay string `yaml:"initial_delay"`
		MaxDelay     string `yaml:"max_delay"`
		Jitter       *bool  `yaml:"jitter"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	if raw.MaxAttempts != nil {
		r.MaxAttempts = *raw.MaxAttempts
	}
	if raw.Jitter != nil {
		r.Jitter = *raw.Jitter
	}
	for _, f := range []struct {
		src string
		dst *time.Duration
	}{{raw.InitialDelay, &r.InitialDelay}, {raw.MaxDelay, &r.MaxDelay}} {
		if f.src == "" {
			continue
		}
		d, err := time.ParseDuration(f.src)
		if err != nil {
			return errors.Wrapf(err, "retry delay %q", f.src)
		}
		*f.dst = d
	}
	return nil
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() Config {
	return Config{
		Timeouts: Timeouts{
			Connect: 5 * time.Second,
			Write:   30 * time.Second,
			Read:    10 * time.Second,
		},
		Retry: RetryConfig{
			MaxAttempts:  3,
			InitialDelay: 500 * time.Millisecond,
			MaxDelay:     10 * time.Second,
			Jitter:       true,
		},
	}
}

// LoadConfig reads a YAML configuration file over the defaults. Absent
// keys keep their default values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "read printer config %s", path)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parse printer config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects configurations the transports cannot honor.
func (c *Config) Validate() error {
	switch {
	case c.Retry.MaxAttempts < 1:
		return &Error{Kind: KindInvalidConfig, Details: "retry.max_attempts must be at least 1"}
	case c.Retry.InitialDelay < 0 || c.Retry.MaxDelay < 0:
		return &Error{Kind: KindInvalidConfig, Details: "retry delays must not be negative"}
	case c.Retry.MaxDelay > 0 && c.Retry.InitialDelay > c.Retry.MaxDelay:
		return &Error{Kind: KindInvalidConfig, Details: "retry.initial_delay exceeds retry.max_delay"}
	case c.Timeouts.Connect <= 0 || c.Timeouts.Write <= 0 || c.Timeouts.Read <= 0:
		return &Error{Kind: KindInvalidConfig, Details: "timeouts must be positive"}
	}
	return nil
}
