// SPDX-License-Identifier: GPL-2.0-only

// Package oracle implements the best-match query against an abstract CST
// capability: given a query range, find the longest prefix of it that
// occurs verbatim somewhere in the indexed data.
//
// The package depends only on the four-operation capability described by
// Tree below, never on a concrete suffix structure, so any data structure
// satisfying Tree — a suffix automaton, an enhanced suffix array, a real
// compressed suffix tree binding — can stand in as the section index.
package oracle

// Tree is the minimal capability the oracle needs from a section's
// index: root, per-byte descent, string depth, and an occurrence
// position for any reachable node at a caller-supplied matched length.
type Tree interface {
	Root() int32
	Child(node int32, b byte) int32
	Depth(node int32) int
	LeftmostLeafPosition(node int32, matched int) int
}

// Match is the result of BestMatch: the half-open byte range [Begin, End)
// within the section's data that is the longest verbatim occurrence of a
// prefix of the query.
type Match struct {
	Begin int
	End   int
}

// Length reports the matched span.
func (m Match) Length() int { return m.End - m.Begin }

// BestMatch returns the position, within tree's backing data, of the
// longest prefix of query that occurs verbatim there. The returned
// range is always a genuine occurrence of query[:matchedLen]; among
// occurrences reachable by a single root-to-node descent its length is
// maximal. A query with no match at all yields a zero-length Match.
func BestMatch(tree Tree, query []byte) Match {
	root := tree.Root()
	node := root
	matched := 0

	for matched < len(query) {
		next := tree.Child(node, query[matched])
		if next == root {
			break
		}
		node = next
		matched++
	}

	if matched == 0 {
		return Match{}
	}

	begin := tree.LeftmostLeafPosition(node, matched)
	return Match{Begin: begin, End: begin + matched}
}
