// SPDX-License-Identifier: GPL-2.0-only

package arpatch

import (
	"errors"

	"github.com/arpatch/arpatch/internal/patchfile"
	"github.com/arpatch/arpatch/internal/reconstruct"
)

// Sentinel and exported error types for generation and application.
var (
	// ErrUsage is returned by CLI argument parsing when required
	// arguments are missing or unparseable.
	ErrUsage = errors.New("arpatch: usage error")
)

// FormatError reports that an index file violates the wire format:
// header mismatch, unsupported version, a malformed decimal field, or a
// truncated chunk payload. Use errors.As to recover the underlying
// reason.
type FormatError = patchfile.FormatError

// CorruptPatchError reports that a patch's chunk stream is internally
// inconsistent with the old-file bytes it was applied against.
type CorruptPatchError = reconstruct.CorruptPatchError

// TooLargeError reports that escaped O, or a single chunk's length or
// source position, would not fit in the 32-bit fields the wire format
// uses.
type TooLargeError struct {
	Reason string
}

func (e *TooLargeError) Error() string { return "arpatch: too large: " + e.Reason }

// VerifyFailedError reports that the post-generation verifier found
// that the reconstructed new file does not match the on-disk new file.
// No index file is committed to its final path when this occurs.
type VerifyFailedError struct {
	Reason string
}

func (e *VerifyFailedError) Error() string { return "arpatch: verify failed: " + e.Reason }
