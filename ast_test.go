// Copyright 2026 Trevor Campbell. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gozpl

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleAst() *Ast {
	return &Ast{Labels: []Label{{Nodes: []Node{
		NewCommand("^XA", nil, Span{0, 3}),
		NewCommand("^FO", []ArgSlot{
			{Key: "x", Presence: Value, Value: "50"},
			{Key: "y", Presence: Value, Value: "50"},
			{Key: "z", Presence: Unset},
		}, Span{3, 11}),
		NewFieldData("^FD", "Hello", false, Span{11, 19}),
		NewCommand("^FS", nil, Span{19, 22}),
		NewRawData("^GF", "FFAA", Span{22, 26}),
		NewTrivia("; note", Span{26, 32}),
		NewCommand("^XZ", nil, Span{32, 35}),
	}}}}
}

func TestNodeJSONRoundTrip(t *testing.T) {
	ast := sampleAst()
	data, err := json.Marshal(ast)
	require.NoError(t, err)

	var back Ast
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, *ast, back)
}

func TestNodeJSONUsesKindTag(t *testing.T) {
	data, err := json.Marshal(NewFieldData("^FD", "x", true, Span{0, 5}))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"kind":"FieldData"`)
	assert.Contains(t, string(data), `"hex_escaped":true`)

	var n Node
	err = json.Unmarshal([]byte(`{"kind":"Nope"}`), &n)
	assert.Error(t, err)
}

func TestStripSpansZeroesEveryVariant(t *testing.T) {
	stripped := StripSpans(sampleAst())
	for _, l := range stripped.Labels {
		for _, n := range l.Nodes {
			assert.Equal(t, Span{}, n.Span())
		}
	}
}

func TestStripSpansLeavesOriginalUntouched(t *testing.T) {
	ast := sampleAst()
	_ = StripSpans(ast)
	assert.Equal(t, Span{0, 3}, ast.Labels[0].Nodes[0].Span())
}

func TestSpanAccessorPerVariant(t *testing.T) {
	ast := sampleAst()
	nodes := ast.Labels[0].Nodes
	assert.Equal(t, Span{3, 11}, nodes[1].Span())
	assert.Equal(t, Span{11, 19}, nodes[2].Span())
	assert.Equal(t, Span{22, 26}, nodes[4].Span())
	assert.Equal(t, Span{26, 32}, nodes[5].Span())
}
