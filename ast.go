// Copyright 2026 Trevor Campbell. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gozpl contains the shared domain types of the ZPL toolchain:
// the abstract syntax tree produced by the parser, source spans, and the
// diagnostics model used by both the parser and the validator.
package gozpl

import "encoding/json"

// A Span is a half-open byte interval [Start, End) into the original
// input buffer.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// An Ast is an ordered sequence of labels parsed from a ZPL document.
type Ast struct {
	Labels []Label `json:"labels"`
}

// A Label is a single ZPL label, normally delimited by ^XA and ^XZ.
// Content encountered outside an explicit label pair is collected into
// an implicit label so that node order is always preserved.
type Label struct {
	Nodes []Node `json:"nodes"`
}

// NodeKind identifies the variant held by a Node.
type NodeKind string

// All AST node kinds.
const (
	NodeCommand   NodeKind = "Command"
	NodeFieldData NodeKind = "FieldData"
	NodeRawData   NodeKind = "RawData"
	NodeTrivia    NodeKind = "Trivia"
)

// A Node is one element of a label. Exactly one of the variant pointers
// is non-nil, selected by Kind. The set of variants is closed; code that
// switches on Kind must handle all four.
type Node struct {
	Kind    NodeKind
	Command *CommandNode
	Field   *FieldDataNode
	Raw     *RawDataNode
	Trivia  *TriviaNode
}

// Span returns the source span of whichever variant the node holds.
func (n *Node) Span() Span {
	switch n.Kind {
	case NodeCommand:
		return n.Command.Span
	case NodeFieldData:
		return n.Field.Span
	case NodeRawData:
		return n.Raw.Span
	case NodeTrivia:
		return n.Trivia.Span
	}
	return Span{}
}

// A CommandNode is a recognized ZPL command with its parsed arguments.
// Code is canonical, including the leader character (e.g. "^FO", "~HS"),
// even when the source used a remapped prefix via ^CC or ^CT.
type CommandNode struct {
	Kind NodeKind  `json:"kind"`
	Code string    `json:"code"`
	Args []ArgSlot `json:"args"`
	Span Span      `json:"span"`
}

// A FieldDataNode is the payload between ^FD/^FV and ^FS. Code records
// which opener introduced the data. HexEscaped reports whether a ^FH in
// the enclosing field block makes _XX escapes significant here.
type FieldDataNode struct {
	Kind       NodeKind `json:"kind"`
	Code       string   `json:"code"`
	Content    string   `json:"content"`
	HexEscaped bool     `json:"hex_escaped"`
	Span       Span     `json:"span"`
}

// A RawDataNode is the binary/hex payload trailing a raw-payload command
// such as ^GF or ~DG.
type RawDataNode struct {
	Kind    NodeKind `json:"kind"`
	Command string   `json:"command"`
	Data    string   `json:"data,omitempty"`
	Span    Span     `json:"span"`
}

// A TriviaNode preserves comments and non-command content outside labels.
type TriviaNode struct {
	Kind NodeKind `json:"kind"`
	Text string   `json:"text"`
	Span Span     `json:"span"`
}

// Presence classifies one argument position of a command.
type Presence string

// Argument slot presence states.
const (
	// Unset means the position was never reached in the source.
	Unset Presence = "unset"
	// Empty means a delimiter was consumed but no characters followed.
	Empty Presence = "empty"
	// Value means characters were provided for the position.
	Value Presence = "value"
)

// An ArgSlot is one position in a command's argument list. The slot
// count of a recognized command equals the command's declared arity,
// except when its signature joiner is empty: then each non-space
// character of the argument text gets its own slot.
type ArgSlot struct {
	Key      string   `json:"key,omitempty"`
	Presence Presence `json:"presence"`
	Value    string   `json:"value,omitempty"`
}

// MarshalJSON emits the internally tagged representation shared by all
// language bindings: {"kind": "...", ...variant fields}.
func (n Node) MarshalJSON() ([]byte, error) {
	switch n.Kind {
	case NodeCommand:
		return json.Marshal(n.Command)
	case NodeFieldData:
		return json.Marshal(n.Field)
	case NodeRawData:
		return json.Marshal(n.Raw)
	case NodeTrivia:
		return json.Marshal(n.Trivia)
	}
	return nil, errUnknownNodeKind(string(n.Kind))
}

// UnmarshalJSON peeks at the "kind" discriminator before decoding the
// matching variant.
func (n *Node) UnmarshalJSON(data []byte) error {
	var header struct {
		Kind NodeKind `json:"kind"`
	}
	if err := json.Unmarshal(data, &header); err != nil {
		return err
	}
	n.Kind = header.Kind
	switch header.Kind {
	case NodeCommand:
		n.Command = new(CommandNode)
		return json.Unmarshal(data, n.Command)
	case NodeFieldData:
		n.Field = new(FieldDataNode)
		return json.Unmarshal(data, n.Field)
	case NodeRawData:
		n.Raw = new(RawDataNode)
		return json.Unmarshal(data, n.Raw)
	case NodeTrivia:
		n.Trivia = new(TriviaNode)
		return json.Unmarshal(data, n.Trivia)
	}
	return errUnknownNodeKind(string(n.Kind))
}

type errUnknownNodeKind string

func (e errUnknownNodeKind) Error() string {
	return "unknown node kind: " + string(e)
}

// NewCommand builds a Command node.
func NewCommand(code string, args []ArgSlot, span Span) Node {
	return Node{Kind: NodeCommand, Command: &CommandNode{
		Kind: NodeCommand, Code: code, Args: args, Span: span,
	}}
}

// NewFieldData builds a FieldData node.
func NewFieldData(code, content string, hexEscaped bool, span Span) Node {
	return Node{Kind: NodeFieldData, Field: &FieldDataNode{
		Kind: NodeFieldData, Code: code, Content: content, HexEscaped: hexEscaped, Span: span,
	}}
}

// NewRawData builds a RawData node.
func NewRawData(command, data string, span Span) Node {
	return Node{Kind: NodeRawData, Raw: &RawDataNode{
		Kind: NodeRawData, Command: command, Data: data, Span: span,
	}}
}

// NewTrivia builds a Trivia node.
func NewTrivia(text string, span Span) Node {
	return Node{Kind: NodeTrivia, Trivia: &TriviaNode{
		Kind: NodeTrivia, Text: text, Span: span,
	}}
}

// StripSpans returns a deep copy of the AST with every span zeroed.
// Used by round-trip comparisons, where formatting legitimately moves
// byte offsets.
func StripSpans(a *Ast) *Ast {
	out := &Ast{Labels: make([]Label, len(a.Labels))}
	for i, l := range a.Labels {
		nodes := make([]Node, len(l.Nodes))
		for j, n := range l.Nodes {
			switch n.Kind {
			case NodeCommand:
				c := *n.Command
				c.Span = Span{}
				c.Args = append([]ArgSlot(nil), c.Args...)
				nodes[j] = Node{Kind: NodeCommand, Command: &c}
			case NodeFieldData:
				f := *n.Field
				f.Span = Span{}
				nodes[j] = Node{Kind: NodeFieldData, Field: &f}
			case NodeRawData:
				r := *n.Raw
				r.Span = Span{}
				nodes[j] = Node{Kind: NodeRawData, Raw: &r}
			case NodeTrivia:
				t := *n.Trivia
				t.Span = Span{}
				nodes[j] = Node{Kind: NodeTrivia, Trivia: &t}
			}
		}
		out.Labels[i] = Label{Nodes: nodes}
	}
	return out
}
