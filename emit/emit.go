// Copyright 2026 Trevor Campbell. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package emit renders a parsed AST back to normalized ZPL text.
//
// The emitter is total: it never fails for any AST the parser produced.
// Its two contracts are idempotence (format(format(x)) == format(x))
// and AST round-trip stability (reparsing the output yields the same
// span-stripped AST).
package emit

import (
	"strings"

	"github.com/trevordcampbell/gozpl"
	"github.com/trevordcampbell/gozpl/tables"
)

// Indent selects the indentation mode.
type Indent int

// Indentation modes.
const (
	IndentNone  Indent = iota // no leading whitespace
	IndentLabel               // two spaces for nodes inside ^XA…^XZ
	IndentField               // four spaces for nodes inside a field block
)

// Compaction selects field-block compaction.
type Compaction int

// Compaction modes.
const (
	CompactNone  Compaction = iota
	CompactField            // coalesce a field block onto a single line
)

// CommentPlacement controls where semicolon comments land.
type CommentPlacement int

// Comment placement modes.
const (
	CommentInline CommentPlacement = iota // after the nearest command
	CommentLine                           // on their own line
)

// A Config shapes the emitted text. The zero value is the default:
// no indentation, no compaction, inline comments — which reproduces a
// single-line label byte for byte.
type Config struct {
	Indent           Indent
	Compaction       Compaction
	CommentPlacement CommentPlacement
}

// Emit renders the AST. Tables are optional; without them argument
// joiners default to the delimiter and no compaction classification is
// available.
func Emit(ast *gozpl.Ast, t *tables.ParserTables, cfg Config) string {
	e := &emitter{
		tables:     t,
		cfg:        cfg,
		fmtPrefix:  '^',
		ctrlPrefix: '~',
		delimiter:  ',',
		multiline:  cfg.Indent != IndentNone || cfg.Compaction == CompactField,
	}
	for i := range ast.Labels {
		e.label(&ast.Labels[i])
	}
	e.flushGroup()
	if e.multiline && e.lineOpen {
		e.endLine()
	}
	return e.out.String()
}

type emitter struct {
	tables *tables.ParserTables
	cfg    Config
	out    strings.Builder

	fmtPrefix  byte
	ctrlPrefix byte
	delimiter  byte

	multiline   bool
	atLineStart bool
	lineOpen    bool

	insideLabel bool
	insideField bool

	group       []string // pending compaction group
	groupIndent string
}

// label renders one label's nodes in order.
func (e *emitter) label(l *gozpl.Label) {
	for i := 0; i < len(l.Nodes); i++ {
		n := &l.Nodes[i]
		switch n.Kind {
		case gozpl.NodeCommand:
			text := e.commandText(n.Command)
			// A raw payload directly following its command rides on the
			// same piece, joined like a final argument.
			if i+1 < len(l.Nodes) && l.Nodes[i+1].Kind == gozpl.NodeRawData &&
				l.Nodes[i+1].Raw.Command == n.Command.Code {
				text += e.joinerFor(n.Command.Code) + l.Nodes[i+1].Raw.Data
				i++
			}
			e.commandPiece(n.Command.Code, text)
			e.applyPrefixChanges(n.Command)
			switch n.Command.Code {
			case "^CC", "~CC", "^CT", "~CT":
				// The parser only ends a command's argument text at a
				// leader or newline, and the new leader is not one yet,
				// so single-line output breaks the line here.
				if !e.multiline {
					e.endLine()
				}
			}
		case gozpl.NodeFieldData:
			e.fieldDataPiece(n.Field)
		case gozpl.NodeRawData:
			// Orphaned raw data (no preceding command): emit verbatim.
			e.piece(n.Raw.Data, false)
		case gozpl.NodeTrivia:
			e.triviaPiece(n.Trivia)
		}
	}
}

// commandText renders leader + opcode + joined arguments.
func (e *emitter) commandText(c *gozpl.CommandNode) string {
	var b strings.Builder
	b.WriteByte(e.leaderFor(c.Code))
	b.WriteString(c.Code[1:])

	args := c.Args
	for len(args) > 0 && args[len(args)-1].Presence == gozpl.Unset {
		args = args[:len(args)-1]
	}
	if len(args) == 0 {
		return b.String()
	}

	joiner := e.joinerFor(c.Code)
	splitFirst := false
	if e.tables != nil {
		if cmd := e.tables.Command(c.Code); cmd != nil && cmd.Signature != nil && cmd.Signature.SplitRule != nil {
			splitFirst = true
		}
	}

	for i, a := range args {
		if i > 0 && !(i == 1 && splitFirst) {
			b.WriteString(joiner)
		}
		b.WriteString(a.Value)
	}
	return b.String()
}

// joinerFor resolves a command's argument joiner, substituting the
// current delimiter for the default comma.
func (e *emitter) joinerFor(code string) string {
	if e.tables != nil {
		if cmd := e.tables.Command(code); cmd != nil && cmd.Signature != nil {
			if j := cmd.Signature.JoinerString(); j != "," {
				return j
			}
		}
	}
	return string(e.delimiter)
}

func (e *emitter) leaderFor(code string) byte {
	if code[0] == '~' {
		return e.ctrlPrefix
	}
	return e.fmtPrefix
}

// applyPrefixChanges updates the emitter's leader and delimiter state
// after a ^CC/^CD/^CT, matching the parser's subsequent-tokens-only
// behavior.
func (e *emitter) applyPrefixChanges(c *gozpl.CommandNode) {
	if len(c.Args) == 0 || c.Args[0].Presence != gozpl.Value || c.Args[0].Value == "" {
		return
	}
	v := c.Args[0].Value[0]
	switch c.Code {
	case "^CC", "~CC":
		e.fmtPrefix = v
	case "^CD", "~CD":
		e.delimiter = v
	case "^CT", "~CT":
		e.ctrlPrefix = v
	}
}

// ── Piece layout ────────────────────────────────────────────────────────

func (e *emitter) commandPiece(code string, text string) {
	opens, closes, compactable := e.classify(code)

	switch code {
	case "^XA":
		e.flushGroup()
		e.piece(text, false)
		e.insideLabel = true
		return
	case "^XZ":
		e.flushGroup()
		e.insideLabel = false
		e.insideField = false
		e.piece(text, false)
		return
	}

	if opens {
		e.flushGroup()
		e.insideField = true
		if e.cfg.Compaction == CompactField {
			e.groupIndent = e.indentFor(false)
			e.group = append(e.group, text)
			return
		}
		e.piece(text, false)
		return
	}

	inField := e.insideField
	if closes {
		e.insideField = false
	}

	if e.cfg.Compaction == CompactField && inField && compactable {
		if len(e.group) == 0 {
			e.groupIndent = e.indentFor(true)
		}
		e.group = append(e.group, text)
		if closes {
			e.flushGroup()
		}
		return
	}

	e.flushGroup()
	e.piece(text, inField)
}

func (e *emitter) fieldDataPiece(f *gozpl.FieldDataNode) {
	text := string(e.leaderFor(f.Code)) + f.Code[1:] + f.Content
	if e.cfg.Compaction == CompactField && e.insideField {
		if len(e.group) == 0 {
			e.groupIndent = e.indentFor(true)
		}
		e.group = append(e.group, text)
		return
	}
	e.flushGroup()
	e.piece(text, e.insideField)
}

func (e *emitter) triviaPiece(t *gozpl.TriviaNode) {
	if strings.HasPrefix(t.Text, ";") && e.cfg.CommentPlacement == CommentInline {
		// Attach to the open compaction group or the current line.
		if len(e.group) > 0 {
			e.group = append(e.group, " "+t.Text)
			e.flushGroup()
			return
		}
		if e.lineOpen {
			e.out.WriteString(" ")
			e.out.WriteString(t.Text)
			e.endLine()
			return
		}
		e.piece(t.Text, e.insideField)
		e.endLine()
		return
	}
	e.flushGroup()
	if !e.atLineStart && e.lineOpen {
		e.endLine()
	}
	e.piece(t.Text, e.insideField)
	e.endLine()
}

// classify resolves a command's compaction behavior from the tables.
func (e *emitter) classify(code string) (opens, closes, compactable bool) {
	if e.tables == nil {
		fb := map[string][2]bool{"^FO": {true, false}, "^FT": {true, false}, "^FS": {false, true}}
		f, ok := fb[code]
		if ok {
			return f[0], f[1], true
		}
		return false, false, false
	}
	cmd := e.tables.Command(code)
	if cmd == nil {
		return false, false, false
	}
	opens = cmd.OpensField
	closes = cmd.ClosesField
	compactable = opens || closes || cmd.FieldData || cmd.RequiresField ||
		cmd.HexEscapeModifier || cmd.FieldNumber || cmd.Serialization ||
		cmd.Scope == tables.ScopeField
	return opens, closes, compactable
}

// indentFor returns the indent prefix for a piece at the current
// position. inField distinguishes nodes strictly inside a field block.
func (e *emitter) indentFor(inField bool) string {
	switch e.cfg.Indent {
	case IndentLabel:
		if e.insideLabel {
			return "  "
		}
	case IndentField:
		if inField {
			return "    "
		}
	}
	return ""
}

// piece writes one node's text, with line structure in multiline modes
// and plain concatenation otherwise.
func (e *emitter) piece(text string, inField bool) {
	if e.multiline {
		if e.lineOpen {
			e.endLine()
		}
		e.out.WriteString(e.indentFor(inField))
		e.out.WriteString(text)
		e.lineOpen = true
		e.atLineStart = false
		return
	}
	e.out.WriteString(text)
	e.lineOpen = true
	e.atLineStart = false
}

func (e *emitter) endLine() {
	e.out.WriteString("\n")
	e.lineOpen = false
	e.atLineStart = true
}

func (e *emitter) flushGroup() {
	if len(e.group) == 0 {
		return
	}
	text := strings.Join(e.group, "")
	e.group = e.group[:0]
	if e.lineOpen {
		e.endLine()
	}
	e.out.WriteString(e.groupIndent)
	e.out.WriteString(text)
	if e.multiline {
		e.endLine()
	} else {
		e.lineOpen = true
		e.atLineStart = false
	}
}
