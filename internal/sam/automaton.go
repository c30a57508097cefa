// SPDX-License-Identifier: GPL-2.0-only

// Package sam provides this module's concrete realization of the
// best-match oracle's required CST capability (root/child/depth/
// leftmost-leaf-position) as a suffix automaton.
//
// The corpus offers no Go binding for a succinct compressed suffix tree
// (no package in the retrieved repos wraps an FM-index, wavelet tree, or
// similar), so this is the one place in the module built directly on the
// standard library rather than a third-party dependency — see DESIGN.md.
// A suffix automaton is the textbook substitute: O(n) states built in a
// single online pass, O(1) amortized transitions. Unlike a compressed
// suffix tree's edges, each Child call here advances exactly one byte of
// the query; Depth(node) is the longest string of node's whole
// end-position class, not the number of bytes a caller has actually
// traversed to reach it, so callers track consumed bytes themselves and
// pass that count to LeftmostLeafPosition rather than trusting Depth as
// an edge length.
package sam

// Node identifies a state of the automaton. The zero Node is the root.
// Declared as an alias (rather than a distinct type) so Tree structurally
// satisfies any interface expressed directly in terms of int32 — the
// oracle package depends only on such an interface, never on this
// package, per the "CST as capability" design note.
type Node = int32

type state struct {
	length   int32
	link     int32
	next     map[byte]int32
	firstPos int32
}

// Tree is a suffix automaton built over a fixed byte slice, exposing the
// CST capability the oracle needs: Root, Child, Depth,
// LeftmostLeafPosition.
type Tree struct {
	data   []byte
	states []state
}

// Build constructs the suffix automaton of data. data must outlive the
// returned Tree; LeftmostLeafPosition indexes into it.
func Build(data []byte) *Tree {
	t := &Tree{
		data:   data,
		states: make([]state, 1, 2*len(data)+1),
	}
	t.states[0] = state{length: 0, link: -1, next: nil, firstPos: -1}

	last := int32(0)
	for i, b := range data {
		last = t.extend(last, b, int32(i))
	}
	return t
}

// extend appends the character at position pos (data[pos] == c) to the
// automaton whose most recently extended state is last, and returns the
// new "last" state. Standard online suffix-automaton construction.
func (t *Tree) extend(last int32, c byte, pos int32) int32 {
	cur := t.newState(t.states[last].length+1, pos)

	p := last
	for p != -1 && t.transition(p, c) == -1 {
		t.setTransition(p, c, cur)
		p = t.states[p].link
	}

	switch {
	case p == -1:
		t.states[cur].link = 0

	default:
		q := t.transition(p, c)
		if t.states[p].length+1 == t.states[q].length {
			t.states[cur].link = q
		} else {
			clone := t.cloneState(q, t.states[p].length+1)
			for p != -1 && t.transition(p, c) == q {
				t.setTransition(p, c, clone)
				p = t.states[p].link
			}
			t.states[q].link = clone
			t.states[cur].link = clone
		}
	}

	return cur
}

func (t *Tree) newState(length, firstPos int32) int32 {
	t.states = append(t.states, state{length: length, link: -1, firstPos: firstPos})
	return int32(len(t.states) - 1)
}

func (t *Tree) cloneState(from int32, length int32) int32 {
	src := t.states[from]
	var next map[byte]int32
	if len(src.next) > 0 {
		next = make(map[byte]int32, len(src.next))
		for k, v := range src.next {
			next[k] = v
		}
	}
	t.states = append(t.states, state{
		length:   length,
		link:     src.link,
		next:     next,
		firstPos: src.firstPos,
	})
	return int32(len(t.states) - 1)
}

func (t *Tree) transition(node int32, c byte) int32 {
	if v, ok := t.states[node].next[c]; ok {
		return v
	}
	return -1
}

func (t *Tree) setTransition(node int32, c byte, target int32) {
	if t.states[node].next == nil {
		t.states[node].next = make(map[byte]int32, 1)
	}
	t.states[node].next[c] = target
}

// Root returns the automaton's initial state.
func (t *Tree) Root() Node { return 0 }

// Child returns the state reached by following the transition labelled
// b from node, or Root if no such transition exists.
func (t *Tree) Child(node Node, b byte) Node {
	if v := t.transition(int32(node), b); v != -1 {
		return Node(v)
	}
	return t.Root()
}

// Depth returns the length of the longest string represented by node —
// the longest member of its end-position class. It is not the number of
// single-byte transitions a particular walk took to reach node.
func (t *Tree) Depth(node Node) int {
	return int(t.states[node].length)
}

// LeftmostLeafPosition returns the start offset in the automaton's
// backing data of an occurrence of the matched-length string reaching
// node, where matched is the number of single-byte transitions actually
// taken to reach node (not Depth(node), which is the longest string of
// node's whole end-position class and may overrun what was traversed).
// Any length in (link(node).length, Depth(node)] shares node's end
// positions, and a root-to-node walk taken one query byte per
// transition always lands with matched inside that range, so this is
// always a genuine occurrence of the matched bytes.
func (t *Tree) LeftmostLeafPosition(node Node, matched int) int {
	return int(t.states[node].firstPos) - matched + 1
}
