// Copyright 2026 Trevor Campbell. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package parse converts ZPL text into the AST defined by the root
// package. The lexer is zero-copy: every token's Text is a substring of
// the source sharing its backing array. The parser copies the strings
// it keeps, so the AST does not pin the input buffer.
package parse

// TokKind classifies a lexer token.
type TokKind byte

// All token kinds.
const (
	TokLeader TokKind = iota // command leader (^ or ~ by default)
	TokComma                 // argument delimiter (, by default)
	TokValue                 // run of characters up to a leader, delimiter, newline, or ';'
	TokNewline               // \r\n, \r, or \n, normalized to one token
	TokWhitespace            // run of horizontal whitespace
)

// A Token is one lexical unit. Text is exactly src[Start:End].
type Token struct {
	Kind  TokKind
	Text  string
	Start int
	End   int
}

// A Lexer produces tokens on demand. The prefix and delimiter bytes are
// mutable so the parser can honor ^CC/^CD/^CT mid-stream.
//
// Classification compares single bytes against ASCII code points. UTF-8
// continuation bytes (0x80-0xBF) match no classifier, so multi-byte
// sequences are never split.
type Lexer struct {
	src string
	pos int

	FormatPrefix  byte // leader for format commands (default '^')
	ControlPrefix byte // leader for control commands (default '~')
	Delimiter     byte // argument delimiter (default ',')
}

// NewLexer returns a lexer over src with the default ZPL configuration.
func NewLexer(src string) *Lexer {
	return &Lexer{src: src, FormatPrefix: '^', ControlPrefix: '~', Delimiter: ','}
}

func horizontalSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\v' || c == '\f'
}

func (l *Lexer) isLeader(c byte) bool {
	return c == l.FormatPrefix || c == l.ControlPrefix
}

func (l *Lexer) stopsValue(c byte) bool {
	return l.isLeader(c) || c == l.Delimiter || c == '\n' || c == '\r' || c == ';'
}

// Next returns the next token. ok is false at end of input. Lexing has
// no failure mode; malformed constructs surface at parse time.
func (l *Lexer) Next() (tok Token, ok bool) {
	if l.pos >= len(l.src) {
		return Token{}, false
	}
	start := l.pos
	c := l.src[l.pos]
	switch {
	case l.isLeader(c):
		l.pos++
		tok = Token{TokLeader, l.src[start:l.pos], start, l.pos}

	case c == l.Delimiter:
		l.pos++
		tok = Token{TokComma, l.src[start:l.pos], start, l.pos}

	case c == '\n':
		l.pos++
		tok = Token{TokNewline, l.src[start:l.pos], start, l.pos}

	case c == '\r':
		l.pos++
		if l.pos < len(l.src) && l.src[l.pos] == '\n' {
			l.pos++
		}
		tok = Token{TokNewline, l.src[start:l.pos], start, l.pos}

	case horizontalSpace(c):
		for l.pos < len(l.src) && horizontalSpace(l.src[l.pos]) {
			l.pos++
		}
		tok = Token{TokWhitespace, l.src[start:l.pos], start, l.pos}

	default:
		l.pos++
		for l.pos < len(l.src) && !l.stopsValue(l.src[l.pos]) {
			l.pos++
		}
		tok = Token{TokValue, l.src[start:l.pos], start, l.pos}
	}
	return tok, true
}

// Tokenize runs the lexer over the whole input with the default
// configuration and returns all tokens.
func Tokenize(src string) []Token {
	l := NewLexer(src)
	var toks []Token
	for {
		tok, ok := l.Next()
		if !ok {
			return toks
		}
		toks = append(toks, tok)
	}
}
