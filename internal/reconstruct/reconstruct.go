// SPDX-License-Identifier: GPL-2.0-only

// Package reconstruct rebuilds escaped N from a PatchData and the bytes
// of escaped O, in two equivalent forms: an in-memory batch mode and a
// bounded-memory streaming mode that flushes through an io.Writer.
package reconstruct

import (
	"fmt"
	"io"

	"github.com/arpatch/arpatch/internal/escape"
	"github.com/arpatch/arpatch/internal/patchfile"
)

// CorruptPatchError reports that a patch's chunk stream is internally
// inconsistent with the old-file bytes it was built against: a
// reference chunk names a range that does not exist in escaped O, or
// unescape encountered an escape byte with no valid pair.
type CorruptPatchError struct {
	Reason string
}

func (e *CorruptPatchError) Error() string { return "reconstruct: corrupt patch: " + e.Reason }

func corruptf(format string, args ...any) error {
	return &CorruptPatchError{Reason: fmt.Sprintf(format, args...)}
}

// Batch materialises escaped N as a single buffer by copying every
// chunk's payload — literal bytes verbatim, reference bytes sliced from
// escapedOld — then applies unescape exactly once over the whole
// result.
func Batch(p patchfile.PatchData, escapedOld []byte) ([]byte, error) {
	escapedNew, err := concatChunks(p.Chunks, escapedOld)
	if err != nil {
		return nil, err
	}
	out, err := escape.Unescape(escapedNew, p.Escape)
	if err != nil {
		return nil, corruptf("%v", err)
	}
	return out, nil
}

func concatChunks(chunks []patchfile.DataChunk, escapedOld []byte) ([]byte, error) {
	var total int
	for _, c := range chunks {
		total += int(c.Length)
	}
	out := make([]byte, 0, total)
	for _, c := range chunks {
		if c.IsLiteral() {
			out = append(out, c.Literal...)
			continue
		}
		begin := int(c.SourcePosition)
		end := begin + int(c.Length)
		if begin < 0 || end > len(escapedOld) {
			return nil, corruptf("reference chunk [%d,%d) exceeds escaped old-file length %d", begin, end, len(escapedOld))
		}
		out = append(out, escapedOld[begin:end]...)
	}
	return out, nil
}

// Streaming reconstructs escaped N chunk by chunk and writes the
// unescaped result to dst as it goes. The working buffer is flushed once
// it holds more than maxBufferSize bytes, so it normally holds at most
// maxBufferSize plus one chunk; while it ends in an escape byte the
// flush is postponed and further chunks accumulate.
//
// The working buffer is only ever flushed through unescape when its
// last byte is not equal to escape.Escape: unescape requires that every
// escape byte be immediately followed by its pair byte, so flushing
// mid-pair would corrupt the decode. This mirrors the reference
// implementation's trailing-byte guard exactly.
func Streaming(dst io.Writer, p patchfile.PatchData, escapedOld []byte, maxBufferSize int) error {
	if maxBufferSize < 1 {
		maxBufferSize = 1
	}

	var w []byte
	for _, c := range p.Chunks {
		if c.IsLiteral() {
			w = append(w, c.Literal...)
		} else {
			begin := int(c.SourcePosition)
			end := begin + int(c.Length)
			if begin < 0 || end > len(escapedOld) {
				return corruptf("reference chunk [%d,%d) exceeds escaped old-file length %d", begin, end, len(escapedOld))
			}
			w = append(w, escapedOld[begin:end]...)
		}

		if len(w) > maxBufferSize && (len(w) == 0 || w[len(w)-1] != p.Escape.Escape) {
			if err := flush(dst, &w, p.Escape); err != nil {
				return err
			}
		}
	}

	return flush(dst, &w, p.Escape)
}

func flush(dst io.Writer, w *[]byte, params escape.Params) error {
	if len(*w) == 0 {
		return nil
	}
	decoded, err := escape.Unescape(*w, params)
	if err != nil {
		return corruptf("%v", err)
	}
	if _, err := dst.Write(decoded); err != nil {
		return err
	}
	*w = (*w)[:0]
	return nil
}
