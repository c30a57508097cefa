// SPDX-License-Identifier: GPL-2.0-only

package arpatch

import (
	"context"
	"os"

	"go.uber.org/zap"

	"github.com/arpatch/arpatch/internal/diffengine"
	"github.com/arpatch/arpatch/internal/escape"
	"github.com/arpatch/arpatch/internal/patchfile"
	"github.com/arpatch/arpatch/internal/section"
	"github.com/arpatch/arpatch/internal/verify"
)

// GenerateReport summarizes a successful Generate call.
type GenerateReport struct {
	ChunkCount     int
	ReferenceBytes uint64
	LiteralBytes   uint64
	IndexFileSize  int
}

// Generate builds an index file at indexPath describing how to
// reconstruct newPath from oldPath, and verifies the result before
// committing it. On any failure no file is left at indexPath: the index
// is built at a temporary path alongside it and renamed into place only
// once verification succeeds.
func Generate(oldPath, newPath, indexPath string, opts *GenerateOptions, logger *zap.Logger) (*GenerateReport, error) {
	if opts == nil {
		opts = DefaultGenerateOptions()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	oldBytes, err := os.ReadFile(oldPath)
	if err != nil {
		return nil, err
	}
	newBytes, err := os.ReadFile(newPath)
	if err != nil {
		return nil, err
	}

	escapeParams := escape.FindBest(oldBytes, 0)
	escapedOld := escape.Escape(oldBytes, escapeParams)
	if len(escapedOld) > 0xFFFFFFFF {
		return nil, &TooLargeError{Reason: "escaped old file exceeds 2^32-1 bytes"}
	}

	sections := section.Build(escapedOld, opts.MaxSingleBufferSize, logger)
	escapedNew := escape.Escape(newBytes, escapeParams)

	var progress diffengine.Progress
	if opts.Progress != nil {
		progress = diffengine.Progress(opts.Progress)
	}

	chunks, stats, err := diffengine.Run(context.Background(), sections, escapedNew, opts.MinimumChunkFactor, progress, logger)
	if err != nil {
		return nil, err
	}
	if err := checkChunkBounds(chunks); err != nil {
		return nil, err
	}

	patch := patchfile.PatchData{
		Version:     patchfile.Version,
		OldFileName: oldPath,
		NewFileName: newPath,
		Escape:      escapeParams,
		Chunks:      chunks,
	}

	if err := verify.Verify(patch, escapedOld, newBytes); err != nil {
		return nil, &VerifyFailedError{Reason: err.Error()}
	}

	tmpPath := indexPath + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return nil, err
	}
	if err := patchfile.Write(f, patch); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return nil, err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return nil, err
	}
	if err := os.Rename(tmpPath, indexPath); err != nil {
		os.Remove(tmpPath)
		return nil, err
	}

	info, _ := os.Stat(indexPath)
	size := 0
	if info != nil {
		size = int(info.Size())
	}

	logger.Info("index file generated",
		zap.String("indexPath", indexPath),
		zap.Int("chunks", stats.ChunkCount),
		zap.Uint64("referenceBytes", stats.ReferenceBytes),
		zap.Uint64("literalBytes", stats.LiteralBytes),
	)

	return &GenerateReport{
		ChunkCount:     stats.ChunkCount,
		ReferenceBytes: stats.ReferenceBytes,
		LiteralBytes:   stats.LiteralBytes,
		IndexFileSize:  size,
	}, nil
}

// checkChunkBounds rejects any chunk whose length or (non-sentinel)
// source position would not fit the wire format's 32-bit fields. The
// Length and SourcePosition fields are already uint32, so a literal's
// length is checked on its payload; reference chunks lie inside escaped
// O, whose size Generate bounds before differencing. This only ever
// fires on pathological multi-gigabyte inputs.
func checkChunkBounds(chunks []patchfile.DataChunk) error {
	for _, c := range chunks {
		if uint64(len(c.Literal)) > 0xFFFFFFFF {
			return &TooLargeError{Reason: "chunk length exceeds 2^32-1"}
		}
		if !c.IsLiteral() && uint64(c.SourcePosition) > 0xFFFFFFFF {
			return &TooLargeError{Reason: "chunk source position exceeds 2^32-1"}
		}
	}
	return nil
}
