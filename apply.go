// SPDX-License-Identifier: GPL-2.0-only

package arpatch

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/arpatch/arpatch/internal/escape"
	"github.com/arpatch/arpatch/internal/patchfile"
	"github.com/arpatch/arpatch/internal/reconstruct"
)

// Apply reads the index file at indexPath, resolves the old- and
// new-file paths it records relative to indexPath's parent directory,
// and reconstructs the new file at that resolved path.
func Apply(indexPath string, opts *ApplyOptions, logger *zap.Logger) error {
	if opts == nil {
		opts = DefaultApplyOptions()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	f, err := os.Open(indexPath)
	if err != nil {
		return err
	}
	patch, err := patchfile.Read(f)
	closeErr := f.Close()
	if err != nil {
		return err
	}
	if closeErr != nil {
		return closeErr
	}

	dir := filepath.Dir(indexPath)
	oldPath := resolveRelative(dir, patch.OldFileName)
	newPath := resolveRelative(dir, patch.NewFileName)

	oldBuf := acquireBuffer()
	defer releaseBuffer(oldBuf)
	oldBytes, err := readFileInto(oldBuf, oldPath)
	if err != nil {
		return err
	}
	escapedOld := escape.Escape(oldBytes, patch.Escape)

	out, err := os.Create(newPath)
	if err != nil {
		return err
	}
	defer out.Close()

	if opts.Streaming {
		bufSize := opts.BufferSize
		if bufSize < 1 {
			bufSize = streamingApplierBufferSize
		}
		if err := reconstruct.Streaming(out, patch, escapedOld, bufSize); err != nil {
			return err
		}
	} else {
		data, err := reconstruct.Batch(patch, escapedOld)
		if err != nil {
			return err
		}
		if _, err := out.Write(data); err != nil {
			return err
		}
	}

	logger.Info("index file applied",
		zap.String("indexPath", indexPath),
		zap.String("oldPath", oldPath),
		zap.String("newPath", newPath),
		zap.Bool("streaming", opts.Streaming),
	)

	return nil
}

// resolveRelative joins a recorded path against the index file's
// directory unless the recorded path is already absolute.
func resolveRelative(dir, recorded string) string {
	if filepath.IsAbs(recorded) {
		return recorded
	}
	return filepath.Join(dir, recorded)
}
