package fsmio

import (
	"bytes"
	"sync"
)

// bytesBufPool reuses buffers for in-memory encoding.
var bytesBufPool = sync.Pool{
	New: func() any {
		return bytes.NewBuffer(make([]byte, 0, 4096))
	},
}

const (
	CHUNK_SIZE = 32 * 1024
	// MAX_LINE_SIZE bounds a single line of a textual (AT&T or Prolog) file.
	MAX_LINE_SIZE = 1 << 20
)

// scanBufPool holds initial line-scanner buffers for the textual readers.
var scanBufPool = sync.Pool{
	New: func() any {
		b := make([]byte, CHUNK_SIZE)
		return &b
	},
}
