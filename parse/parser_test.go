// Copyright 2026 Trevor Campbell. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trevordcampbell/gozpl"
	"github.com/trevordcampbell/gozpl/tables"
)

func loadTables(t *testing.T) *tables.ParserTables {
	t.Helper()
	tbl, err := tables.LoadDefault()
	require.NoError(t, err)
	return tbl
}

func commandCodes(res *ParseResult) []string {
	var codes []string
	for _, l := range res.Ast.Labels {
		for _, n := range l.Nodes {
			if n.Kind == gozpl.NodeCommand {
				codes = append(codes, n.Command.Code)
			}
		}
	}
	return codes
}

func findCommand(t *testing.T, res *ParseResult, code string) *gozpl.CommandNode {
	t.Helper()
	for _, l := range res.Ast.Labels {
		for _, n := range l.Nodes {
			if n.Kind == gozpl.NodeCommand && n.Command.Code == code {
				return n.Command
			}
		}
	}
	t.Fatalf("command %s not found", code)
	return nil
}

func TestSimpleLabelShape(t *testing.T) {
	tbl := loadTables(t)
	res := WithTables("^XA^FO50,50^A0N,30,30^FDHello^FS^XZ", tbl)

	require.Empty(t, res.Diagnostics)
	require.Len(t, res.Ast.Labels, 1)
	nodes := res.Ast.Labels[0].Nodes
	require.Len(t, nodes, 6)

	assert.Equal(t, "^XA", nodes[0].Command.Code)
	assert.Equal(t, "^FO", nodes[1].Command.Code)
	assert.Equal(t, "^A", nodes[2].Command.Code)
	require.Equal(t, gozpl.NodeFieldData, nodes[3].Kind)
	assert.Equal(t, "Hello", nodes[3].Field.Content)
	assert.Equal(t, "^FS", nodes[4].Command.Code)
	assert.Equal(t, "^XZ", nodes[5].Command.Code)
}

func TestTrieLongestMatch(t *testing.T) {
	tbl := loadTables(t)
	res := WithTables("^XA^BY3,2,50^BCN,142,N,N,N^FO10,10^A0N,22,26^FS^XZ", tbl)
	assert.Equal(t,
		[]string{"^XA", "^BY", "^BC", "^FO", "^A", "^FS", "^XZ"},
		commandCodes(res))
}

func TestArityPaddingAndPresence(t *testing.T) {
	tbl := loadTables(t)
	res := WithTables("^XA^BC,,100,,,Y^FD12345^FS^XZ", tbl)

	bc := findCommand(t, res, "^BC")
	require.Len(t, bc.Args, 6)
	assert.Equal(t, gozpl.Empty, bc.Args[0].Presence)
	assert.Equal(t, gozpl.Empty, bc.Args[1].Presence)
	assert.Equal(t, gozpl.Value, bc.Args[2].Presence)
	assert.Equal(t, "100", bc.Args[2].Value)
	assert.Equal(t, gozpl.Empty, bc.Args[3].Presence)
	assert.Equal(t, gozpl.Empty, bc.Args[4].Presence)
	assert.Equal(t, "Y", bc.Args[5].Value)
}

func TestTrailingOmittedAreUnset(t *testing.T) {
	tbl := loadTables(t)
	res := WithTables("^XA^FO50,100^XZ", tbl)
	fo := findCommand(t, res, "^FO")
	require.Len(t, fo.Args, 3)
	assert.Equal(t, gozpl.Value, fo.Args[0].Presence)
	assert.Equal(t, gozpl.Value, fo.Args[1].Presence)
	assert.Equal(t, gozpl.Unset, fo.Args[2].Presence)
}

func TestSplitRuleFirstArg(t *testing.T) {
	tbl := loadTables(t)
	res := WithTables("^XA^A0N,30,30^FDx^FS^XZ", tbl)
	a := findCommand(t, res, "^A")
	require.Len(t, a.Args, 4)
	assert.Equal(t, "0", a.Args[0].Value)
	assert.Equal(t, "N", a.Args[1].Value)
	assert.Equal(t, "30", a.Args[2].Value)
	assert.Equal(t, "30", a.Args[3].Value)
	assert.Equal(t, "f", a.Args[0].Key)
}

func TestArgKeysFromSignature(t *testing.T) {
	tbl := loadTables(t)
	res := WithTables("^XA^FO50,60^XZ", tbl)
	fo := findCommand(t, res, "^FO")
	assert.Equal(t, "x", fo.Args[0].Key)
	assert.Equal(t, "y", fo.Args[1].Key)
	assert.Equal(t, "z", fo.Args[2].Key)
}

func TestUnknownOpcodeDiagnosticAndRecovery(t *testing.T) {
	tbl := loadTables(t)
	res := WithTables("^XA^ZZ999^FO50,50^FDx^FS^XZ", tbl)

	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, gozpl.ParserUnknownOpcode, res.Diagnostics[0].ID)

	// The bad command is preserved and the rest still parses.
	assert.Equal(t, []string{"^XA", "^ZZ999", "^FO", "^FS", "^XZ"}, commandCodes(res))
}

func TestFieldDataWithDelimitersAndSpaces(t *testing.T) {
	tbl := loadTables(t)
	res := WithTables("^XA^FO50,50^FDhello, world^FS^XZ", tbl)
	nodes := res.Ast.Labels[0].Nodes
	require.Equal(t, gozpl.NodeFieldData, nodes[2].Kind)
	assert.Equal(t, "hello, world", nodes[2].Field.Content)
}

func TestFieldVariableKeepsOpenerCode(t *testing.T) {
	tbl := loadTables(t)
	res := WithTables("^XA^FO10,10^FVDynamic Data^FS^XZ", tbl)
	nodes := res.Ast.Labels[0].Nodes
	require.Equal(t, gozpl.NodeFieldData, nodes[2].Kind)
	assert.Equal(t, "^FV", nodes[2].Field.Code)
	assert.Equal(t, "Dynamic Data", nodes[2].Field.Content)
}

func TestHexEscapeFlagSetWithinFieldBlock(t *testing.T) {
	tbl := loadTables(t)
	res := WithTables("^XA^FO10,10^FH_^FDHello_0AWorld^FS^FO10,40^FDplain^FS^XZ", tbl)

	var fields []*gozpl.FieldDataNode
	for _, n := range res.Ast.Labels[0].Nodes {
		if n.Kind == gozpl.NodeFieldData {
			fields = append(fields, n.Field)
		}
	}
	require.Len(t, fields, 2)
	assert.True(t, fields[0].HexEscaped)
	// A new field block resets the hex-escape modifier.
	assert.False(t, fields[1].HexEscaped)
}

func TestPrefixAndDelimiterChange(t *testing.T) {
	tbl := loadTables(t)
	res := WithTables("^XA^CC*\n*FO50,100\n*FDTest\n*FS\n*XZ", tbl)

	assert.Equal(t, []string{"^XA", "^CC", "^FO", "^FS", "^XZ"}, commandCodes(res))
	fo := findCommand(t, res, "^FO")
	assert.Equal(t, "50", fo.Args[0].Value)
}

func TestSemicolonComment(t *testing.T) {
	tbl := loadTables(t)
	res := WithTables("^XA\n^PW812   ; set print width\n^XZ", tbl)

	nodes := res.Ast.Labels[0].Nodes
	require.Len(t, nodes, 4)
	assert.Equal(t, "^PW", nodes[1].Command.Code)
	assert.Equal(t, "812", nodes[1].Command.Args[0].Value)
	require.Equal(t, gozpl.NodeTrivia, nodes[2].Kind)
	assert.Equal(t, "; set print width", nodes[2].Trivia.Text)
}

func TestTildeCommandOutsideLabel(t *testing.T) {
	tbl := loadTables(t)
	res := WithTables("~HS", tbl)
	require.Len(t, res.Ast.Labels, 1)
	assert.Equal(t, "~HS", res.Ast.Labels[0].Nodes[0].Command.Code)
	assert.Empty(t, res.Diagnostics)
}

func TestUnterminatedLabelDiagnostic(t *testing.T) {
	tbl := loadTables(t)
	res := WithTables("^XA^FO10,10^FDx^FS", tbl)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, gozpl.ParserUnterminatedLabel, res.Diagnostics[0].ID)
}

func TestMultipleLabels(t *testing.T) {
	tbl := loadTables(t)
	res := WithTables("^XA^FDLabel1^FS^XZ^XA^FDLabel2^FS^XZ", tbl)
	require.Len(t, res.Ast.Labels, 2)
}

func TestRawPayloadSplit(t *testing.T) {
	tbl := loadTables(t)
	res := WithTables("^XA^FO20,20^GFA,8,8,2,A1B2C3D4^FS^XZ", tbl)

	gf := findCommand(t, res, "^GF")
	require.Len(t, gf.Args, 5)
	assert.Equal(t, "A", gf.Args[0].Value)
	assert.Equal(t, "8", gf.Args[1].Value)
	assert.Equal(t, gozpl.Unset, gf.Args[4].Presence)

	var raw *gozpl.RawDataNode
	for _, n := range res.Ast.Labels[0].Nodes {
		if n.Kind == gozpl.NodeRawData {
			raw = n.Raw
		}
	}
	require.NotNil(t, raw)
	assert.Equal(t, "^GF", raw.Command)
	assert.Equal(t, "A1B2C3D4", raw.Data)
}

func TestSpansPointIntoInput(t *testing.T) {
	src := "^XA^FO50,50^FDHello^FS^XZ"
	tbl := loadTables(t)
	res := WithTables(src, tbl)

	fo := findCommand(t, res, "^FO")
	assert.Equal(t, "^FO50,50", src[fo.Span.Start:fo.Span.End])
}

func TestNoTablesFallback(t *testing.T) {
	res := Parse("^XA^FO50,100^FDHello^FS^XZ")
	assert.Equal(t, []string{"^XA", "^FO", "^FS", "^XZ"}, commandCodes(res))
	nodes := res.Ast.Labels[0].Nodes
	require.Equal(t, gozpl.NodeFieldData, nodes[2].Kind)
	assert.Equal(t, "Hello", nodes[2].Field.Content)
}

func TestEmptyJoinerCollapsesCharacters(t *testing.T) {
	tbl := loadTables(t)
	res := WithTables("^XA^FXnote^FS^XZ", tbl)
	fx := findCommand(t, res, "^FX")
	require.Len(t, fx.Args, 4)
	assert.Equal(t, "n", fx.Args[0].Value)
	assert.Equal(t, "e", fx.Args[3].Value)
}
