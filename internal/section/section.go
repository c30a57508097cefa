// SPDX-License-Identifier: GPL-2.0-only

// Package section splits escaped old-file bytes into bounded windows and
// builds one best-match index per window, bounding the peak memory a
// generation run needs regardless of the old file's size.
package section

import (
	"go.uber.org/zap"

	"github.com/arpatch/arpatch/internal/sam"
)

// Section is a contiguous, non-overlapping window of escaped O together
// with the index built over it. Offset is absolute within escaped O.
type Section struct {
	Index  int
	Offset int
	Data   []byte
	Tree   *sam.Tree
}

// Build partitions data into consecutive windows of at most
// maxSingleBufferSize bytes each (the last window may be smaller) and
// constructs a suffix automaton over each one. maxSingleBufferSize <= 0
// means "one section covering the whole buffer".
//
// Construction is sequential, matching the source algorithm's own
// std::for_each over sections: only the per-cursor search in the
// differencing engine is required to fan out across sections (§5); there
// is no such requirement for one-time index construction.
func Build(data []byte, maxSingleBufferSize int, logger *zap.Logger) []Section {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxSingleBufferSize <= 0 {
		maxSingleBufferSize = len(data)
	}
	if len(data) == 0 || maxSingleBufferSize == 0 {
		return nil
	}

	var sections []Section
	for offset := 0; offset < len(data); offset += maxSingleBufferSize {
		end := offset + maxSingleBufferSize
		if end > len(data) {
			end = len(data)
		}
		sections = append(sections, Section{
			Index:  len(sections),
			Offset: offset,
			Data:   data[offset:end],
		})
	}

	logger.Info("constructing suffix automatons",
		zap.Int("sections", len(sections)),
		zap.Int("maxSingleBufferSize", maxSingleBufferSize),
		zap.Int("totalBytes", len(data)),
	)
	for i := range sections {
		sections[i].Tree = sam.Build(sections[i].Data)
	}
	logger.Info("suffix automatons constructed", zap.Int("sections", len(sections)))

	return sections
}
