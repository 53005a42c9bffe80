package fsmio

import (
	"bytes"
	"io"
)

// PeekableReader is a reader that allows peeking ahead at the underlying data stream.
// It is used to sniff the gzip signature without consuming it.
type PeekableReader struct {
	R io.Reader // The underlying reader.
	B []byte    // The buffer for peeked data.
}

// PeekReader returns a PeekableReader. If the given reader is already a
// PeekableReader, it is returned directly.
func PeekReader(r io.Reader) *PeekableReader {
	if pr, ok := r.(*PeekableReader); ok {
		return pr
	}
	return &PeekableReader{R: r}
}

// Peek returns up to n bytes without advancing the reader.
// Fewer bytes are returned together with the read error when the stream is shorter.
func (r *PeekableReader) Peek(n int) ([]byte, error) {
	if len(r.B) >= n {
		return r.B[:n], nil
	}

	i := len(r.B)
	r.B = append(r.B, make([]byte, n-i)...)

	var err error
	for i < n {
		read, er := r.R.Read(r.B[i:])
		i += read
		if er != nil {
			err = er
			break
		}
	}
	if i != n {
		r.B = r.B[:i]
	}
	return r.B, err
}

// HasPrefix reports whether the stream starts with magic.
// A stream shorter than magic simply does not match.
func (r *PeekableReader) HasPrefix(magic []byte) (bool, error) {
	b, err := r.Peek(len(magic))
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return false, err
	}
	return bytes.Equal(b, magic), nil
}

// Read reads data into p. It first drains the peeked buffer and then
// reads from the underlying reader.
func (r *PeekableReader) Read(p []byte) (n int, err error) {
	n = copy(p, r.B)
	if len(p) <= len(r.B) {
		r.B = r.B[n:]
		return n, nil
	}
	r.B = nil
	read, err := r.R.Read(p[n:])
	n += read
	return n, err
}
