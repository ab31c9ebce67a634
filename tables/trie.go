// Copyright 2026 Trevor Campbell. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tables

// A TrieNode is one node of the opcode trie. The artifact may ship the
// trie precomputed; when absent, buildTrie reconstructs an equivalent
// one from the command codes at load time.
type TrieNode struct {
	Terminal bool                 `json:"terminal"`
	Children map[string]*TrieNode `json:"children"`
}

func buildTrie(commands []CommandEntry) *TrieNode {
	root := &TrieNode{Children: map[string]*TrieNode{}}
	for i := range commands {
		for _, code := range commands[i].Codes {
			cur := root
			for _, ch := range code {
				key := string(ch)
				next := cur.Children[key]
				if next == nil {
					next = &TrieNode{Children: map[string]*TrieNode{}}
					if cur.Children == nil {
						cur.Children = map[string]*TrieNode{}
					}
					cur.Children[key] = next
				}
				cur = next
			}
			cur.Terminal = true
		}
	}
	return root
}

// LongestMatch walks the trie through leader+text and returns the
// length in bytes of the longest terminal opcode match within text
// (excluding the leader), or 0 when no terminal is reached. Preference
// for the longest match makes ^BC win over ^B.
func (t *ParserTables) LongestMatch(leader byte, text string) int {
	cur := t.OpcodeTrie
	if cur == nil {
		return 0
	}
	cur = cur.Children[string(leader)]
	if cur == nil {
		return 0
	}
	best := 0
	for i := 0; i < len(text); i++ {
		cur = cur.Children[string(text[i])]
		if cur == nil {
			break
		}
		if cur.Terminal {
			best = i + 1
		}
	}
	return best
}
