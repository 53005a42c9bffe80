package fsmio

import "io"

// MaxInputSize bounds the decompressed size of a single binary file.
const MaxInputSize int64 = 4 << 30

// limitedReader fails with ErrInputTooLarge instead of returning a silent
// io.EOF once more than its limit has been read.
type limitedReader struct {
	*io.LimitedReader
}

// limitReader returns a reader that yields at most n bytes from r.
func limitReader(r io.Reader, n int64) *limitedReader {
	// one extra byte tells a stream of exactly n bytes from a longer one
	return &limitedReader{&io.LimitedReader{R: r, N: n + 1}}
}

func (r *limitedReader) Read(p []byte) (int, error) {
	n, err := r.LimitedReader.Read(p)
	if r.N <= 0 {
		return n, ErrInputTooLarge
	}
	return n, err
}
