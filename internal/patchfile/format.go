// SPDX-License-Identifier: GPL-2.0-only

package patchfile

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/arpatch/arpatch/internal/escape"
)

// magicHeader is the project's fixed signature, written verbatim at the
// start of every index file. It is not a checksum; it exists purely so
// a reader can reject files that are obviously not one of ours.
const magicHeader = "红警3吧装甲冲击更新描述文件"

// delimiter terminates every decimal-ASCII field on the wire.
const delimiter = "\r\n"

// maxWireValue is the largest value any 32-bit wire field may carry.
const maxWireValue = 0xFFFFFFFF

// FormatError reports a wire-format violation: a malformed or
// internally inconsistent index file. It is always returned before any
// byte of file content has been trusted.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string { return "patchfile: format error: " + e.Reason }

func formatErrorf(format string, args ...any) error {
	return &FormatError{Reason: fmt.Sprintf(format, args...)}
}

// Write serialises p to w per the version-1000 layout: magic header,
// decimal version, the two path fields, the four escape bytes, the
// chunk count, then the chunk records themselves.
func Write(w io.Writer, p PatchData) error {
	if p.Version != Version {
		return formatErrorf("refusing to write unsupported version %d", p.Version)
	}
	bw := bufio.NewWriter(w)

	if _, err := bw.WriteString(magicHeader); err != nil {
		return err
	}
	if err := writeDecimalField(bw, uint64(p.Version)); err != nil {
		return err
	}
	if err := writePathField(bw, p.OldFileName); err != nil {
		return err
	}
	if err := writePathField(bw, p.NewFileName); err != nil {
		return err
	}
	for _, b := range []byte{p.Escape.Victim, p.Escape.Substitute, p.Escape.Escape, p.Escape.Escape2} {
		if err := writeDecimalField(bw, uint64(b)); err != nil {
			return err
		}
	}
	if err := writeDecimalField(bw, uint64(len(p.Chunks))); err != nil {
		return err
	}
	for _, c := range p.Chunks {
		if err := writeChunk(bw, c); err != nil {
			return err
		}
	}

	return bw.Flush()
}

func writePathField(w *bufio.Writer, path string) error {
	if err := writeDecimalField(w, uint64(len(path))); err != nil {
		return err
	}
	if _, err := w.WriteString(path); err != nil {
		return err
	}
	_, err := w.WriteString(delimiter)
	return err
}

func writeDecimalField(w *bufio.Writer, v uint64) error {
	if _, err := fmt.Fprintf(w, "%d", v); err != nil {
		return err
	}
	_, err := w.WriteString(delimiter)
	return err
}

func writeChunk(w *bufio.Writer, c DataChunk) error {
	var header [8]byte
	binary.LittleEndian.PutUint32(header[0:4], c.Length)
	binary.LittleEndian.PutUint32(header[4:8], c.SourcePosition)
	if _, err := w.Write(header[:]); err != nil {
		return err
	}
	if c.IsLiteral() {
		if _, err := w.Write(c.Literal); err != nil {
			return err
		}
	}
	return nil
}

// Read parses an index file from r. Any deviation from the version-1000
// layout — including a decimal field that overflows 32 bits or a path
// length inconsistent with the bytes that follow it — yields a
// *FormatError rather than a partially populated PatchData.
func Read(r io.Reader) (PatchData, error) {
	br := bufio.NewReader(r)
	var p PatchData

	if err := expectMagic(br); err != nil {
		return PatchData{}, err
	}

	version, err := readDecimalField(br)
	if err != nil {
		return PatchData{}, err
	}
	if version != Version {
		return PatchData{}, formatErrorf("unsupported version %d", version)
	}
	p.Version = int(version)

	if p.OldFileName, err = readPathField(br); err != nil {
		return PatchData{}, err
	}
	if p.NewFileName, err = readPathField(br); err != nil {
		return PatchData{}, err
	}

	escapeBytes := make([]byte, 4)
	for i := range escapeBytes {
		v, err := readDecimalField(br)
		if err != nil {
			return PatchData{}, err
		}
		if v > 255 {
			return PatchData{}, formatErrorf("escape byte field %d out of range: %d", i, v)
		}
		escapeBytes[i] = byte(v)
	}
	p.Escape = escape.Params{
		Victim:     escapeBytes[0],
		Substitute: escapeBytes[1],
		Escape:     escapeBytes[2],
		Escape2:    escapeBytes[3],
	}

	chunkCount, err := readDecimalField(br)
	if err != nil {
		return PatchData{}, err
	}
	if chunkCount > 0 {
		p.Chunks = make([]DataChunk, 0, chunkCount)
	}
	for i := uint64(0); i < chunkCount; i++ {
		c, err := readChunk(br)
		if err != nil {
			return PatchData{}, err
		}
		p.Chunks = append(p.Chunks, c)
	}
	if _, err := br.ReadByte(); err == nil {
		return PatchData{}, formatErrorf("unexpected bytes after the last of %d chunks", chunkCount)
	} else if !errors.Is(err, io.EOF) {
		return PatchData{}, err
	}

	return p, nil
}

func expectMagic(r *bufio.Reader) error {
	want := []byte(magicHeader)
	got := make([]byte, len(want))
	if _, err := io.ReadFull(r, got); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return formatErrorf("truncated magic header")
		}
		return err
	}
	for i := range want {
		if got[i] != want[i] {
			return formatErrorf("magic header mismatch")
		}
	}
	return nil
}

// readDecimalField reads ASCII decimal digits up to the CRLF delimiter
// and parses them as an unsigned value, rejecting empty fields,
// non-digit bytes, and values that would not fit in 32 bits.
func readDecimalField(r *bufio.Reader) (uint64, error) {
	var digits []byte
	for {
		b, err := r.ReadByte()
		if err != nil {
			return 0, formatErrorf("truncated decimal field: %v", err)
		}
		if b == '\r' {
			nl, err := r.ReadByte()
			if err != nil || nl != '\n' {
				return 0, formatErrorf("malformed field delimiter")
			}
			break
		}
		if b < '0' || b > '9' {
			return 0, formatErrorf("non-digit byte 0x%02x in decimal field", b)
		}
		digits = append(digits, b)
	}
	if len(digits) == 0 {
		return 0, formatErrorf("empty decimal field")
	}

	var v uint64
	for _, d := range digits {
		v = v*10 + uint64(d-'0')
		if v > maxWireValue {
			return 0, formatErrorf("decimal field exceeds 32 bits")
		}
	}
	return v, nil
}

func readPathField(r *bufio.Reader) (string, error) {
	length, err := readDecimalField(r)
	if err != nil {
		return "", err
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", formatErrorf("truncated path field: %v", err)
	}
	var crlf [2]byte
	if _, err := io.ReadFull(r, crlf[:]); err != nil {
		return "", formatErrorf("truncated path delimiter: %v", err)
	}
	if crlf[0] != '\r' || crlf[1] != '\n' {
		return "", formatErrorf("malformed path delimiter")
	}
	return string(buf), nil
}

func readChunk(r *bufio.Reader) (DataChunk, error) {
	var header [8]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return DataChunk{}, formatErrorf("truncated chunk header: %v", err)
	}
	c := DataChunk{
		Length:         binary.LittleEndian.Uint32(header[0:4]),
		SourcePosition: binary.LittleEndian.Uint32(header[4:8]),
	}
	if c.IsLiteral() {
		c.Literal = make([]byte, c.Length)
		if _, err := io.ReadFull(r, c.Literal); err != nil {
			return DataChunk{}, formatErrorf("truncated literal payload: %v", err)
		}
	}
	return c, nil
}
