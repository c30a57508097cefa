// SPDX-License-Identifier: GPL-2.0-only

package arpatch

// GenerateOptions configures index-file generation.
type GenerateOptions struct {
	// MaxSingleBufferSize bounds the size, in bytes, of each section the
	// old file is split into before a search index is built over it.
	// Non-positive means "one section covering the whole old file".
	MaxSingleBufferSize int

	// MinimumChunkFactor sets the floor, as a fraction of the escaped
	// new file's size, below which a match is treated as too short to
	// reference and is folded into a literal run instead. The absolute
	// floor patchfile.LowestReferencedBytesCount always applies too.
	MinimumChunkFactor float64

	// Progress, if non-nil, is called as differencing advances through
	// the escaped new file.
	Progress func(processed, total int)
}

// DefaultGenerateOptions returns options matching the reference
// generator's own defaults: the whole old file as a single section and
// a minimum chunk factor of 1e-6.
func DefaultGenerateOptions() *GenerateOptions {
	return &GenerateOptions{
		MaxSingleBufferSize: 0,
		MinimumChunkFactor:  1e-6,
	}
}

// ApplyOptions configures patch application.
type ApplyOptions struct {
	// Streaming selects the bounded-memory reconstructor over the
	// batch one. BufferSize is ignored when false.
	Streaming bool

	// BufferSize is the streaming reconstructor's flush threshold, in
	// bytes. Ignored unless Streaming is true.
	BufferSize int
}

// DefaultApplyOptions returns batch reconstruction, matching
// buildNewFile's own default.
func DefaultApplyOptions() *ApplyOptions {
	return &ApplyOptions{Streaming: false}
}

// streamingApplierBufferSize is the applier CLI's fixed streaming
// buffer size (32 MiB), per the external interface.
const streamingApplierBufferSize = 32 * 1024 * 1024
