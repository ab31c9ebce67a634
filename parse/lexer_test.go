// Copyright 2026 Trevor Campbell. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kinds(toks []Token) []TokKind {
	out := make([]TokKind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestTokenizeSimpleCommand(t *testing.T) {
	toks := Tokenize("^FO50,100")
	require.Len(t, toks, 4)
	assert.Equal(t, []TokKind{TokLeader, TokValue, TokComma, TokValue}, kinds(toks))
	assert.Equal(t, "^", toks[0].Text)
	assert.Equal(t, "FO50", toks[1].Text)
	assert.Equal(t, ",", toks[2].Text)
	assert.Equal(t, "100", toks[3].Text)
}

func TestTokensCoverInput(t *testing.T) {
	src := "^XA\r\n  ^FO50,50 ~HS\n^XZ"
	toks := Tokenize(src)
	pos := 0
	for _, tok := range toks {
		assert.Equal(t, pos, tok.Start)
		assert.Equal(t, src[tok.Start:tok.End], tok.Text)
		pos = tok.End
	}
	assert.Equal(t, len(src), pos)
}

func TestNewlineNormalization(t *testing.T) {
	for _, src := range []string{"a\r\nb", "a\rb", "a\nb"} {
		toks := Tokenize(src)
		require.Len(t, toks, 3, "input %q", src)
		assert.Equal(t, TokNewline, toks[1].Kind)
	}
}

func TestWhitespaceAggregatesHorizontalOnly(t *testing.T) {
	toks := Tokenize("  \t ^")
	require.Len(t, toks, 2)
	assert.Equal(t, TokWhitespace, toks[0].Kind)
	assert.Equal(t, "  \t ", toks[0].Text)
	assert.Equal(t, TokLeader, toks[1].Kind)
}

func TestValueRunsUntilDelimiterOrLeader(t *testing.T) {
	toks := Tokenize("hello world~next")
	require.Len(t, toks, 3)
	assert.Equal(t, TokValue, toks[0].Kind)
	assert.Equal(t, "hello world", toks[0].Text)
	assert.Equal(t, TokLeader, toks[1].Kind)
}

func TestUTF8NeverSplit(t *testing.T) {
	src := "^FDgrüße^FS"
	toks := Tokenize(src)
	// The multi-byte ü must stay inside one value token.
	for _, tok := range toks {
		if tok.Kind == TokValue && tok.Text != "FS" {
			assert.Equal(t, "FDgrüße", tok.Text)
		}
	}
}

func TestConfigurablePrefixes(t *testing.T) {
	l := NewLexer("*FO50;100")
	l.FormatPrefix = '*'
	l.Delimiter = ';'
	tok, ok := l.Next()
	require.True(t, ok)
	assert.Equal(t, TokLeader, tok.Kind)
	tok, _ = l.Next()
	assert.Equal(t, "FO50", tok.Text)
	tok, _ = l.Next()
	assert.Equal(t, TokComma, tok.Kind)
}

func TestEmptyInput(t *testing.T) {
	assert.Empty(t, Tokenize(""))
}
