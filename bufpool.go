// SPDX-License-Identifier: GPL-2.0-only

package arpatch

import (
	"io"
	"os"
	"sync"
)

// streamingBufferPool recycles the buffers Apply reads whole old files
// into, in both batch and streaming mode, so the applier CLI's
// per-index-file loop does not re-allocate on every iteration.
var streamingBufferPool = sync.Pool{
	New: func() any {
		buf := make([]byte, 0, streamingApplierBufferSize)
		return &buf
	},
}

// acquireBuffer returns a zero-length byte slice with spare capacity
// from the pool.
func acquireBuffer() *[]byte {
	buf := streamingBufferPool.Get().(*[]byte)
	*buf = (*buf)[:0]
	return buf
}

// releaseBuffer returns buf to the pool for reuse.
func releaseBuffer(buf *[]byte) {
	if buf == nil {
		return
	}
	streamingBufferPool.Put(buf)
}

// readFileInto reads the whole file at path into buf's backing array,
// growing it as needed, and returns the filled slice. Used by Apply so
// repeated invocations against the same old file across many index
// files reuse one allocation instead of one-per-call.
func readFileInto(buf *[]byte, path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size := int(info.Size())
	if cap(*buf) < size {
		*buf = make([]byte, size)
	} else {
		*buf = (*buf)[:size]
	}

	if _, err := io.ReadFull(f, *buf); err != nil {
		return nil, err
	}
	return *buf, nil
}
