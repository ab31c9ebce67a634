// Copyright 2026 Trevor Campbell. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package parse

import (
	"fmt"
	"strings"

	"github.com/trevordcampbell/gozpl"
	"github.com/trevordcampbell/gozpl/tables"
)

// A ParseResult holds the AST plus any parser diagnostics. Parsing never
// fails outright; diagnostics attach to spans and recovery is local.
type ParseResult struct {
	Ast         gozpl.Ast          `json:"ast"`
	Diagnostics []gozpl.Diagnostic `json:"diagnostics"`
}

// Parse parses ZPL input without parser tables. Opcode recognition
// degrades to the classic two-character rule and a small built-in set of
// structural commands.
func Parse(src string) *ParseResult {
	return WithTables(src, nil)
}

// WithTables parses ZPL input, consulting the parser tables for opcode
// recognition (longest-prefix trie match), argument splitting, and
// structural behavior.
func WithTables(src string, t *tables.ParserTables) *ParseResult {
	p := &parser{src: src, lex: NewLexer(src), tables: t}
	p.run()
	return &ParseResult{
		Ast:         gozpl.Ast{Labels: p.labels},
		Diagnostics: p.diags,
	}
}

// Minimal structural knowledge used when no tables are loaded.
var fallbackFlags = map[string]struct {
	opensField  bool
	closesField bool
	fieldData   bool
	hexEscape   bool
}{
	"^FO": {opensField: true},
	"^FT": {opensField: true},
	"^FS": {closesField: true},
	"^FD": {fieldData: true},
	"^FV": {fieldData: true},
	"^FH": {hexEscape: true},
}

type parser struct {
	src    string
	lex    *Lexer
	tables *tables.ParserTables

	peeked  *Token
	labels  []gozpl.Label
	nodes   []gozpl.Node
	open    bool // a label is being collected
	started bool // the open label began with an explicit ^XA

	fieldOpen    bool
	hexActive    bool
	hexIndicator byte

	diags []gozpl.Diagnostic
}

func (p *parser) peek() (Token, bool) {
	if p.peeked != nil {
		return *p.peeked, true
	}
	tok, ok := p.lex.Next()
	if !ok {
		return Token{}, false
	}
	p.peeked = &tok
	return tok, true
}

func (p *parser) next() (Token, bool) {
	tok, ok := p.peek()
	p.peeked = nil
	return tok, ok
}

func (p *parser) diag(id string, msg string, span gozpl.Span) {
	s := span
	p.diags = append(p.diags, gozpl.NewDiagnostic(id, gozpl.SeverityFor(id), msg, &s))
}

func (p *parser) run() {
	for {
		tok, ok := p.peek()
		if !ok {
			break
		}
		switch tok.Kind {
		case TokLeader:
			p.parseCommand()
		case TokNewline, TokWhitespace, TokComma:
			// Inter-command formatting carries no meaning; drop it so
			// that reformatted output reparses to an identical AST.
			p.next()
		case TokValue:
			if strings.HasPrefix(tok.Text, ";") {
				p.parseComment()
			} else {
				p.next()
				p.append(gozpl.NewTrivia(strings.Clone(tok.Text), gozpl.Span{Start: tok.Start, End: tok.End}))
			}
		}
	}
	if p.open {
		if p.started {
			p.diag(gozpl.ParserUnterminatedLabel, "label is missing its ^XZ terminator",
				gozpl.Span{Start: len(p.src), End: len(p.src)})
		}
		p.closeLabel()
	}
}

// append adds a node to the current label, opening an implicit one when
// no ^XA is active.
func (p *parser) append(n gozpl.Node) {
	if !p.open {
		p.open = true
		p.started = false
	}
	p.nodes = append(p.nodes, n)
}

func (p *parser) closeLabel() {
	if len(p.nodes) > 0 {
		p.labels = append(p.labels, gozpl.Label{Nodes: p.nodes})
	}
	p.nodes = nil
	p.open = false
	p.started = false
	p.fieldOpen = false
	p.hexActive = false
}

// parseComment consumes a semicolon comment through end of line.
func (p *parser) parseComment() {
	start := -1
	end := 0
	for {
		tok, ok := p.peek()
		if !ok || tok.Kind == TokNewline || tok.Kind == TokLeader {
			break
		}
		p.next()
		if start < 0 {
			start = tok.Start
		}
		if tok.Kind != TokWhitespace {
			end = tok.End
		}
	}
	if start >= 0 && end > start {
		p.append(gozpl.NewTrivia(strings.Clone(p.src[start:end]), gozpl.Span{Start: start, End: end}))
	}
}

// parseCommand handles one leader-introduced command, including its
// argument text and any attached field data or raw payload.
func (p *parser) parseCommand() {
	leader, _ := p.next()
	canonical := byte('^')
	if leader.Text[0] == p.lex.ControlPrefix {
		canonical = '~'
	}

	opTok, ok := p.peek()
	if !ok || opTok.Kind != TokValue {
		p.diag(gozpl.ParserUnknownOpcode, "leader with no opcode",
			gozpl.Span{Start: leader.Start, End: leader.End})
		return
	}
	p.next()

	var code string
	var cmd *tables.CommandEntry
	var opLen int
	if p.tables != nil {
		opLen = p.tables.LongestMatch(canonical, opTok.Text)
		if opLen == 0 {
			// Keep the unrecognized command in the AST (full token as
			// its code) so the validator can flag it and the emitter
			// can reproduce it.
			p.diag(gozpl.ParserUnknownOpcode,
				fmt.Sprintf("unknown opcode %c%s", canonical, opTok.Text),
				gozpl.Span{Start: leader.Start, End: opTok.End})
			opLen = len(opTok.Text)
			code = string(canonical) + opTok.Text
		} else {
			code = string(canonical) + opTok.Text[:opLen]
			cmd = p.tables.Command(code)
		}
	} else {
		opLen = len(opTok.Text)
		if opLen > 2 {
			opLen = 2
		}
		code = string(canonical) + opTok.Text[:opLen]
	}

	flags := p.structural(code, cmd)

	switch {
	case flags.fieldData:
		p.parseFieldData(code, leader, opTok, opLen)
		return
	case flags.rawPayload:
		p.parseRawPayload(code, cmd, leader, opTok, opLen)
		return
	}

	argText, end := p.collectArgText(opTok.Start+opLen, opTok.End)
	args := splitArgs(argText, cmd)
	span := gozpl.Span{Start: leader.Start, End: end}

	if code == "^XA" {
		if p.open {
			p.closeLabel()
		}
		p.open = true
		p.started = true
		p.nodes = append(p.nodes, gozpl.NewCommand(code, args, span))
		return
	}

	p.append(gozpl.NewCommand(code, args, span))

	switch {
	case code == "^XZ":
		p.closeLabel()
	case flags.opensField:
		// A new origin implicitly closes the previous block.
		p.fieldOpen = true
		p.hexActive = false
	case flags.closesField:
		p.fieldOpen = false
		p.hexActive = false
	case flags.hexEscape:
		p.hexActive = true
		p.hexIndicator = '_'
		if len(args) > 0 && args[0].Presence == gozpl.Value {
			p.hexIndicator = args[0].Value[0]
		}
	case code == "^CC" || code == "~CC":
		if v := firstArgByte(args); v != 0 {
			p.lex.FormatPrefix = v
		}
	case code == "^CD" || code == "~CD":
		if v := firstArgByte(args); v != 0 {
			p.lex.Delimiter = v
		}
	case code == "^CT" || code == "~CT":
		if v := firstArgByte(args); v != 0 {
			p.lex.ControlPrefix = v
		}
	}
}

type structuralFlags struct {
	opensField  bool
	closesField bool
	fieldData   bool
	hexEscape   bool
	rawPayload  bool
}

func (p *parser) structural(code string, cmd *tables.CommandEntry) structuralFlags {
	if cmd != nil {
		return structuralFlags{
			opensField:  cmd.OpensField,
			closesField: cmd.ClosesField,
			fieldData:   cmd.FieldData,
			hexEscape:   cmd.HexEscapeModifier,
			rawPayload:  cmd.RawPayload,
		}
	}
	fb := fallbackFlags[code]
	return structuralFlags{
		opensField:  fb.opensField,
		closesField: fb.closesField,
		fieldData:   fb.fieldData,
		hexEscape:   fb.hexEscape,
	}
}

func firstArgByte(args []gozpl.ArgSlot) byte {
	if len(args) > 0 && args[0].Presence == gozpl.Value && args[0].Value != "" {
		return args[0].Value[0]
	}
	return 0
}

// collectArgText gathers the raw argument text of a command: the
// remaining bytes of the opcode token plus any following value,
// delimiter, and whitespace tokens, stopping at a leader, a newline, or
// a semicolon comment. Returns the text and the command's end offset.
func (p *parser) collectArgText(start, end int) (string, int) {
	last := end
	for {
		tok, ok := p.peek()
		if !ok || tok.Kind == TokLeader || tok.Kind == TokNewline {
			break
		}
		if tok.Kind == TokValue && strings.HasPrefix(tok.Text, ";") {
			break
		}
		p.next()
		if tok.Kind != TokWhitespace {
			last = tok.End
		}
	}
	if last < start {
		return "", start
	}
	return p.src[start:last], last
}

// collectUntilLeader gathers raw content (field data, raw payloads) up
// to the next leader, dropping trailing newlines and indentation so that
// reformatted output reparses identically.
func (p *parser) collectUntilLeader(start int) (string, int) {
	last := start
	pendingWS := false
	for {
		tok, ok := p.peek()
		if !ok || tok.Kind == TokLeader {
			break
		}
		p.next()
		switch tok.Kind {
		case TokNewline:
			pendingWS = true
		case TokWhitespace:
			if !pendingWS {
				last = tok.End
			}
		default:
			last = tok.End
			pendingWS = false
		}
	}
	if last <= start {
		return "", start
	}
	return p.src[start:last], last
}

func (p *parser) parseFieldData(code string, leader, opTok Token, opLen int) {
	start := opTok.Start + opLen
	if start > opTok.End {
		start = opTok.End
	}
	content, end := p.collectUntilLeader(start)
	if end < opTok.End {
		end = opTok.End
		content = p.src[start:end]
	}
	span := gozpl.Span{Start: leader.Start, End: end}
	hex := p.hexActive
	if hex && len(content) > 0 && content[len(content)-1] == p.hexIndicator {
		p.diag(gozpl.ParserBadEscape,
			"hex escape indicator at end of field data",
			gozpl.Span{Start: end - 1, End: end})
	}
	p.append(gozpl.NewFieldData(code, strings.Clone(content), hex, span))
}

func (p *parser) parseRawPayload(code string, cmd *tables.CommandEntry, leader, opTok Token, opLen int) {
	start := opTok.Start + opLen
	if start > opTok.End {
		start = opTok.End
	}
	text, end := p.collectUntilLeader(start)
	if end < opTok.End {
		end = opTok.End
		text = p.src[start:end]
	}

	arity := 1
	joiner := ","
	if cmd != nil {
		arity = cmd.Arity
		joiner = cmd.Signature.JoinerString()
	}

	header := text
	data := ""
	dataStart := -1
	if arity > 1 && joiner != "" {
		parts := strings.SplitN(text, joiner, arity)
		if len(parts) == arity {
			data = parts[arity-1]
			header = text[:len(text)-len(data)-len(joiner)]
			dataStart = start + len(header) + len(joiner)
		}
	}

	args := splitArgs(header, cmd)
	p.append(gozpl.NewCommand(code, args, gozpl.Span{Start: leader.Start, End: end}))
	if dataStart >= 0 {
		p.append(gozpl.NewRawData(code, strings.Clone(data), gozpl.Span{Start: dataStart, End: end}))
	}
}

// splitArgs slices raw argument text into presence-tagged slots
// according to the command's signature. Without a command entry, one
// slot per segment is produced.
func splitArgs(argText string, cmd *tables.CommandEntry) []gozpl.ArgSlot {
	var sig *tables.Signature
	arity := -1
	if cmd != nil {
		sig = cmd.Signature
		arity = cmd.Arity
	}
	joiner := sig.JoinerString()

	var segs []string
	rest := argText
	if sig != nil && sig.SplitRule != nil && argText != "" {
		w := sig.SplitRule.FirstArgWidth
		if w > len(argText) {
			w = len(argText)
		}
		segs = append(segs, argText[:w])
		rest = argText[w:]
	}
	switch {
	case rest == "":
		// No further segments.
	case joiner == "":
		// Empty joiner: arguments collapse character by character;
		// whitespace is dropped.
		for i := 0; i < len(rest); i++ {
			if !horizontalSpace(rest[i]) {
				segs = append(segs, rest[i:i+1])
			}
		}
	default:
		segs = append(segs, strings.Split(rest, joiner)...)
	}

	// With a known command the slot count is its declared arity: short
	// inputs pad with Unset, extra segments are dropped. Otherwise (no
	// tables, or character-collapsed arguments) one slot per segment.
	count := len(segs)
	if arity >= 0 && joiner != "" {
		count = arity
	}
	slots := make([]gozpl.ArgSlot, 0, count)
	for i := 0; i < count; i++ {
		slot := gozpl.ArgSlot{Presence: gozpl.Unset}
		if cmd != nil {
			slot.Key = argKey(cmd, i)
		}
		if i < len(segs) {
			v := strings.TrimSpace(segs[i])
			if v == "" {
				slot.Presence = gozpl.Empty
			} else {
				slot.Presence = gozpl.Value
				slot.Value = strings.Clone(v)
			}
		}
		slots = append(slots, slot)
	}
	return slots
}

// argKey resolves the spec-assigned key for argument position i.
func argKey(cmd *tables.CommandEntry, i int) string {
	if cmd.Signature != nil && i < len(cmd.Signature.Params) {
		return cmd.Signature.Params[i]
	}
	if i < len(cmd.Args) {
		return cmd.Args[i].Key()
	}
	return ""
}
