// SPDX-License-Identifier: GPL-2.0-only

// Package patchfile defines the logical patch data model and its wire
// encoding (format version 1000): the header, file names, escape
// parameters, and chunk stream that together let a reader rebuild N from
// O without any other input.
package patchfile

import "github.com/arpatch/arpatch/internal/escape"

// Version is the only wire format this module reads or writes.
const Version = 1000

// SentinelSourcePosition marks a DataChunk as a literal: its bytes are
// carried inline rather than referenced from escaped O.
const SentinelSourcePosition = 0xFFFFFFFF

// LowestReferencedBytesCount is the hard floor below which a match is
// never accepted as a reference chunk by the differencing engine.
const LowestReferencedBytesCount = 32

// DataChunk is one unit of the encoded patch: either a literal byte run
// or a reference (SourcePosition, Length) into escaped O.
type DataChunk struct {
	Length         uint32
	SourcePosition uint32
	Literal        []byte
}

// IsLiteral reports whether this chunk carries its payload inline.
func (c DataChunk) IsLiteral() bool {
	return c.SourcePosition == SentinelSourcePosition
}

// Reference builds a reference chunk covering [begin, begin+length) of
// escaped O.
func Reference(begin, length int) DataChunk {
	return DataChunk{Length: uint32(length), SourcePosition: uint32(begin)}
}

// Literal builds a literal chunk carrying data verbatim.
func Literal(data []byte) DataChunk {
	out := make([]byte, len(data))
	copy(out, data)
	return DataChunk{Length: uint32(len(data)), SourcePosition: SentinelSourcePosition, Literal: out}
}

// PatchData is the logical content of an index file.
type PatchData struct {
	Version     int
	OldFileName string
	NewFileName string
	Escape      escape.Params
	Chunks      []DataChunk
}
