// Copyright 2026 Trevor Campbell. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gozpl

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryIDPattern(t *testing.T) {
	valid := regexp.MustCompile(`^ZPL(\d{4}|\.PARSER\.\d{4})$`)
	for _, id := range Codes() {
		assert.Regexp(t, valid, id)
	}
}

func TestRegistryHasNoDuplicates(t *testing.T) {
	seen := map[string]bool{}
	for _, id := range Codes() {
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestSeverityForKnownCodes(t *testing.T) {
	assert.Equal(t, SevWarn, SeverityFor(MissingFieldOrigin))
	assert.Equal(t, SevError, SeverityFor(MissingRequiredArg))
	assert.Equal(t, SevInfo, SeverityFor(RedundantState))
	assert.Equal(t, SevInfo, SeverityFor(MissingExplicitDimension))
	assert.Equal(t, SevError, SeverityFor(ParserUnknownOpcode))
	assert.Equal(t, SevWarn, SeverityFor(UnknownCommand))
}

func TestSeverityForUnknownCodeDefaultsToWarn(t *testing.T) {
	assert.Equal(t, SevWarn, SeverityFor("ZPL9999"))
	assert.False(t, KnownCode("ZPL9999"))
}

func TestExplainCoversEveryCode(t *testing.T) {
	for _, id := range Codes() {
		assert.NotEmpty(t, Explain(id), "missing description for %s", id)
	}
	assert.Empty(t, Explain("ZPL9999"))
}

func TestDiagnosticContextAttachment(t *testing.T) {
	d := NewDiagnostic(MissingFieldOrigin, SevWarn, "msg", &Span{1, 4}).
		WithContext(map[string]string{"command": "^FD"})
	assert.Equal(t, "^FD", d.Context["command"])
	require.NotNil(t, d.Span)
	assert.Equal(t, 1, d.Span.Start)
}
