// SPDX-License-Identifier: GPL-2.0-only

// Package diffengine drives the cursor over escaped N, dispatching a
// bulk-synchronous per-section search at each position, selecting the
// globally best match, emitting chunks, and falling back to an adaptive
// skip heuristic when no section offers a useful match.
package diffengine

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/arpatch/arpatch/internal/oracle"
	"github.com/arpatch/arpatch/internal/patchfile"
	"github.com/arpatch/arpatch/internal/section"
)

// initialPessimisticCounter is deliberately negative: combined with the
// max(1, ...) clamps below, it gives the first few failed iterations a
// step of exactly minimumChunkSize before geometric growth begins. Do
// not change this value without re-deriving the clamp behavior.
const initialPessimisticCounter = -3

// Stats summarizes one Run: how much of N ended up as literal bytes
// versus references into O, and how many chunks that took.
type Stats struct {
	ChunkCount     int
	ReferenceBytes uint64
	LiteralBytes   uint64
}

// Progress is called after each chunk is emitted, with the cursor
// position and the total length of escaped N. The core package never
// renders progress itself (§1 scope) — this is how a CLI observes it.
type Progress func(processed, total int)

// Run segments escapedNew into chunks using sections as the match index
// over escaped O. minChunkFactor sets minimumChunkSize =
// max(LowestReferencedBytesCount, len(escapedNew)*minChunkFactor).
//
// Per-section searches for a given cursor position run concurrently
// (§5's bulk-synchronous fan-out); results are written into a
// pre-sized, index-addressed slice so there is no aliasing and no need
// for a lock. If ctx is cancelled, or any section search fails, Run
// aborts and returns the first error; no partial chunk list is returned.
func Run(ctx context.Context, sections []section.Section, escapedNew []byte, minChunkFactor float64, progress Progress, logger *zap.Logger) ([]patchfile.DataChunk, Stats, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	minimumChunkSize := int(float64(len(escapedNew)) * minChunkFactor)
	if minimumChunkSize < patchfile.LowestReferencedBytesCount {
		minimumChunkSize = patchfile.LowestReferencedBytesCount
	}

	var (
		chunks             []patchfile.DataChunk
		stats              Stats
		pessimisticCounter = initialPessimisticCounter
		p                  = 0
	)

	for p < len(escapedNew) {
		best, err := searchSections(ctx, sections, escapedNew, p)
		if err != nil {
			return nil, Stats{}, err
		}

		length := best.Length()

		if length >= minimumChunkSize {
			chunks = append(chunks, patchfile.Reference(best.Begin, length))
			stats.ReferenceBytes += uint64(length)
			pessimisticCounter = initialPessimisticCounter
			p += length
		} else {
			pessimisticCounter += max(1, pessimisticCounter/2)
			step := max(1, pessimisticCounter) * minimumChunkSize
			literalLen := length + step
			if remaining := len(escapedNew) - p; literalLen > remaining {
				literalLen = remaining
			}

			chunks = append(chunks, patchfile.Literal(escapedNew[p:p+literalLen]))
			stats.LiteralBytes += uint64(literalLen)
			p += literalLen
		}
		stats.ChunkCount++

		if progress != nil {
			progress(p, len(escapedNew))
		}
	}

	logger.Info("differencing complete",
		zap.Int("chunks", stats.ChunkCount),
		zap.Uint64("referenceBytes", stats.ReferenceBytes),
		zap.Uint64("literalBytes", stats.LiteralBytes),
	)

	return chunks, stats, nil
}

// searchSections runs bestMatch for every section against
// escapedNew[cursor:] in parallel and returns the section result with
// the largest span, ties broken by section index. Absolute offsets
// within escaped O are already applied to each result.
func searchSections(ctx context.Context, sections []section.Section, escapedNew []byte, cursor int) (oracle.Match, error) {
	if len(sections) == 0 {
		return oracle.Match{}, nil
	}

	results := make([]oracle.Match, len(sections))
	g, gctx := errgroup.WithContext(ctx)
	query := escapedNew[cursor:]

	for i := range sections {
		sec := &sections[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			m := oracle.BestMatch(sec.Tree, query)
			results[sec.Index] = oracle.Match{Begin: m.Begin + sec.Offset, End: m.End + sec.Offset}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return oracle.Match{}, err
	}

	best := results[0]
	for _, r := range results[1:] {
		if r.Length() > best.Length() {
			best = r
		}
	}
	return best, nil
}
