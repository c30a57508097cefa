// SPDX-License-Identifier: GPL-2.0-only

// Package verify confirms that a freshly generated patch actually
// reproduces the new file it claims to, by reconstructing it and
// comparing against the on-disk bytes. Generation must not commit an
// index file to its final path unless this check passes.
package verify

import (
	"bytes"

	"github.com/arpatch/arpatch/internal/patchfile"
	"github.com/arpatch/arpatch/internal/reconstruct"
)

// MismatchError reports that a freshly generated patch, when
// reconstructed, does not reproduce the new file it was built from.
type MismatchError struct {
	WantLen int
	GotLen  int
}

func (e *MismatchError) Error() string {
	return "verify: reconstructed output does not match new file"
}

// Verify reconstructs N from p and escapedOld via the batch
// reconstructor — which unescapes as its final step — then compares the
// result against wantNew, the original (unescaped) new-file bytes,
// byte-for-byte. A nil error means generation may proceed to commit the
// index file.
func Verify(p patchfile.PatchData, escapedOld, wantNew []byte) error {
	got, err := reconstruct.Batch(p, escapedOld)
	if err != nil {
		return err
	}
	if !bytes.Equal(got, wantNew) {
		return &MismatchError{WantLen: len(wantNew), GotLen: len(got)}
	}
	return nil
}
