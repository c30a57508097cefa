package reconstruct

import (
	"bytes"
	"errors"
	"testing"

	"github.com/arpatch/arpatch/internal/escape"
	"github.com/arpatch/arpatch/internal/patchfile"
)

func TestBatch_LiteralOnlyChunk(t *testing.T) {
	params := escape.Params{Victim: 0, Substitute: 1, Escape: 0xFE, Escape2: 0xFD}
	p := patchfile.PatchData{
		Escape: params,
		Chunks: []patchfile.DataChunk{patchfile.Literal([]byte("hello world"))},
	}

	got, err := Batch(p, nil)
	if err != nil {
		t.Fatalf("Batch failed: %v", err)
	}
	if string(got) != "hello world" {
		t.Fatalf("got %q", got)
	}
}

func TestBatch_ReferenceAndLiteralMix(t *testing.T) {
	params := escape.Params{Victim: 0, Substitute: 1, Escape: 0xFE, Escape2: 0xFD}
	escapedOld := escape.Escape([]byte("the quick brown fox"), params)

	p := patchfile.PatchData{
		Escape: params,
		Chunks: []patchfile.DataChunk{
			patchfile.Reference(4, 5),  // "quick"
			patchfile.Literal([]byte(" ")),
			patchfile.Reference(10, 5), // "brown"
		},
	}

	got, err := Batch(p, escapedOld)
	if err != nil {
		t.Fatalf("Batch failed: %v", err)
	}
	if string(got) != "quick brown" {
		t.Fatalf("got %q", got)
	}
}

func TestBatch_RejectsOutOfRangeReference(t *testing.T) {
	params := escape.Params{Victim: 0, Substitute: 1, Escape: 0xFE, Escape2: 0xFD}
	p := patchfile.PatchData{
		Escape: params,
		Chunks: []patchfile.DataChunk{patchfile.Reference(0, 100)},
	}

	_, err := Batch(p, []byte("short"))
	var ce *CorruptPatchError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *CorruptPatchError, got %v", err)
	}
}

func TestStreaming_MatchesBatchAcrossBufferSizes(t *testing.T) {
	params := escape.Params{Victim: 0, Substitute: 1, Escape: 0xFE, Escape2: 0xFD}
	old := bytes.Repeat([]byte{0x00, 0xFE, 'a', 'b', 'c', 0x00}, 50)
	escapedOld := escape.Escape(old, params)

	var chunks []patchfile.DataChunk
	for i := 0; i < len(escapedOld); i += 17 {
		end := i + 17
		if end > len(escapedOld) {
			end = len(escapedOld)
		}
		if i%2 == 0 {
			chunks = append(chunks, patchfile.Reference(i, end-i))
		} else {
			chunks = append(chunks, patchfile.Literal(escapedOld[i:end]))
		}
	}
	p := patchfile.PatchData{Escape: params, Chunks: chunks}

	want, err := Batch(p, escapedOld)
	if err != nil {
		t.Fatalf("Batch failed: %v", err)
	}

	for _, bufSize := range []int{1, 2, 3, 7, 16, 1024} {
		var out bytes.Buffer
		if err := Streaming(&out, p, escapedOld, bufSize); err != nil {
			t.Fatalf("Streaming(bufSize=%d) failed: %v", bufSize, err)
		}
		if !bytes.Equal(out.Bytes(), want) {
			t.Fatalf("Streaming(bufSize=%d) diverged from Batch", bufSize)
		}
	}
}

func TestStreaming_NeverFlushesMidEscapePair(t *testing.T) {
	params := escape.Params{Victim: 0, Substitute: 1, Escape: 0xFE, Escape2: 0xFD}
	// Every byte is the victim, so the escaped form is one long run of
	// (escape, substitute) pairs. Three-byte chunks make every other
	// chunk end on an escape byte, so with a buffer size of 1 the flush
	// guard must postpone the flush until the pair is complete.
	old := bytes.Repeat([]byte{0x00}, 40)
	escapedOld := escape.Escape(old, params)

	var chunks []patchfile.DataChunk
	for i := 0; i < len(escapedOld); i += 3 {
		chunks = append(chunks, patchfile.Reference(i, min(3, len(escapedOld)-i)))
	}
	p := patchfile.PatchData{Escape: params, Chunks: chunks}

	var out bytes.Buffer
	if err := Streaming(&out, p, escapedOld, 1); err != nil {
		t.Fatalf("Streaming failed: %v", err)
	}
	if !bytes.Equal(out.Bytes(), old) {
		t.Fatalf("got %v want %v", out.Bytes(), old)
	}
}

func TestStreaming_RejectsOutOfRangeReference(t *testing.T) {
	params := escape.Params{Victim: 0, Substitute: 1, Escape: 0xFE, Escape2: 0xFD}
	p := patchfile.PatchData{
		Escape: params,
		Chunks: []patchfile.DataChunk{patchfile.Reference(0, 100)},
	}

	var out bytes.Buffer
	err := Streaming(&out, p, []byte("short"), 16)
	var ce *CorruptPatchError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *CorruptPatchError, got %v", err)
	}
}

func TestBatch_EmptyPatchProducesEmptyOutput(t *testing.T) {
	params := escape.Params{Victim: 0, Substitute: 1, Escape: 0xFE, Escape2: 0xFD}
	p := patchfile.PatchData{Escape: params}

	got, err := Batch(p, nil)
	if err != nil {
		t.Fatalf("Batch failed: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty output, got %q", got)
	}
}
