package oracle

import (
	"testing"

	"github.com/arpatch/arpatch/internal/sam"
)

func TestBestMatch_FullQueryFound(t *testing.T) {
	data := []byte("the quick brown fox jumps over the lazy dog")
	tree := sam.Build(data)

	m := BestMatch(tree, []byte("brown fox"))
	if m.Length() != len("brown fox") {
		t.Fatalf("expected full match, got length %d", m.Length())
	}
	if string(data[m.Begin:m.End]) != "brown fox" {
		t.Fatalf("occurrence mismatch: %q", data[m.Begin:m.End])
	}
}

func TestBestMatch_PartialPrefixOnMismatch(t *testing.T) {
	data := []byte("abcdefg")
	tree := sam.Build(data)

	m := BestMatch(tree, []byte("abcXYZ"))
	if m.Length() != 3 {
		t.Fatalf("expected match length 3 (\"abc\"), got %d", m.Length())
	}
	if string(data[m.Begin:m.End]) != "abc" {
		t.Fatalf("occurrence mismatch: %q", data[m.Begin:m.End])
	}
}

func TestBestMatch_NoMatch(t *testing.T) {
	data := []byte("aaaaaaaa")
	tree := sam.Build(data)

	m := BestMatch(tree, []byte("zzz"))
	if m.Length() != 0 {
		t.Fatalf("expected no match, got length %d", m.Length())
	}
}

func TestBestMatch_EmptyData(t *testing.T) {
	tree := sam.Build(nil)
	m := BestMatch(tree, []byte("anything"))
	if m.Length() != 0 {
		t.Fatalf("expected no match against empty data, got %d", m.Length())
	}
}

func TestBestMatch_EmptyQuery(t *testing.T) {
	data := []byte("some data")
	tree := sam.Build(data)
	m := BestMatch(tree, nil)
	if m.Length() != 0 {
		t.Fatalf("expected zero-length match for empty query, got %d", m.Length())
	}
}

func TestBestMatch_ReturnsGenuineOccurrence(t *testing.T) {
	data := []byte("mississippi")
	tree := sam.Build(data)

	for _, q := range []string{"issi", "ppi", "miss", "sip", "x"} {
		m := BestMatch(tree, []byte(q))
		if m.Length() == 0 {
			continue
		}
		got := string(data[m.Begin:m.End])
		want := q[:m.Length()]
		if got != want {
			t.Fatalf("query %q: occurrence %q does not match expected prefix %q", q, got, want)
		}
	}
}

func TestBestMatch_MatchNotAtStringStart(t *testing.T) {
	data := []byte("the quick brown fox jumps over the lazy dog")
	tree := sam.Build(data)

	m := BestMatch(tree, []byte("brown fox"))
	if m.Begin != 10 {
		t.Fatalf("expected occurrence to start at offset 10, got %d", m.Begin)
	}
}

func TestBestMatch_RepeatedByteBufferFindsTailMatch(t *testing.T) {
	data := make([]byte, 1024)
	for i := range data {
		data[i] = byte(i % 256)
	}
	query := append([]byte(nil), data[501:]...)

	tree := sam.Build(data)
	m := BestMatch(tree, query)
	if m.Length() != len(query) {
		t.Fatalf("expected the whole tail to match, got length %d of %d", m.Length(), len(query))
	}
}
