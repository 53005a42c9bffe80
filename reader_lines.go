package fsmio

import (
	"bytes"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
)

// maxSizeHint caps buffer pre-allocation taken from an untrusted gzip trailer.
const maxSizeHint = 64 << 20

// LineReader hands out the newline-delimited lines of an in-memory buffer
// through a single forward-only cursor. Each decode owns its LineReader.
type LineReader struct {
	B    []byte // whole decompressed file
	N    int    // current read position
	line int    // number of lines handed out
}

// NewLineReader creates a LineReader over b.
func NewLineReader(b []byte) *LineReader {
	return &LineReader{B: b}
}

// Load reads the whole file at path, decompressing it if it is gzipped.
func Load(path string) (*LineReader, error) {
	b, err := GzFileToMem(path)
	if err != nil {
		return nil, err
	}
	return NewLineReader(b), nil
}

// Next returns the next line without its terminator.
// more is false once the buffer is exhausted; an empty line with more == true
// is a genuine blank line.
func (r *LineReader) Next() (line string, more bool) {
	if r.N >= len(r.B) {
		return "", false
	}
	rest := r.B[r.N:]
	var b []byte
	if i := bytes.IndexByte(rest, '\n'); i >= 0 {
		b = rest[:i]
		r.N += i + 1
	} else {
		b = rest
		r.N = len(r.B)
	}
	r.line++
	return string(bytes.TrimSuffix(b, []byte{'\r'})), true
}

// Line returns the 1-based number of the last line handed out.
func (r *LineReader) Line() int { return r.line }

// Pos returns the cursor offset in bytes.
func (r *LineReader) Pos() int { return r.N }

// Size returns the size of the underlying buffer.
func (r *LineReader) Size() int { return len(r.B) }

// Available returns the number of bytes not yet consumed.
func (r *LineReader) Available() int { return max(len(r.B)-r.N, 0) }

// Exhausted reports whether Next would return more == false.
func (r *LineReader) Exhausted() bool { return r.N >= len(r.B) }

// Reset rewinds the cursor to the start of the buffer.
func (r *LineReader) Reset() {
	r.N = 0
	r.line = 0
}

// Release drops the buffer. The reader is exhausted afterwards.
func (r *LineReader) Release() {
	r.B = nil
	r.N = 0
}

// GzFileToMem returns the decompressed content of the file at path.
// Plain files are returned as they are.
func GzFileToMem(path string) ([]byte, error) {
	size, err := ResolveSize(path)
	if err != nil {
		return nil, err
	}

	//nolint:gosec // G304: see IsGzip.
	f, err := os.Open(path)
	if err != nil {
		return nil, ioError("open", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	b, err := readAll(f, size)
	if err != nil {
		return nil, ioError("read", path, err)
	}
	return b, nil
}

// readAll reads r to the end, transparently gunzipping it.
// sizeHint pre-sizes the destination buffer.
func readAll(r io.Reader, sizeHint int64) ([]byte, error) {
	pr := PeekReader(r)
	gz, err := pr.HasPrefix(gzipMagic)
	if err != nil {
		return nil, err
	}

	var src io.Reader = pr
	if gz {
		zr, err := gzip.NewReader(pr)
		if err != nil {
			return nil, err
		}
		defer func() {
			_ = zr.Close()
		}()
		src = zr
	}

	buf := bytes.NewBuffer(make([]byte, 0, min(max(sizeHint, 0), maxSizeHint)+1))
	if _, err := buf.ReadFrom(limitReader(src, MaxInputSize)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FileToMem reads the whole file at path without any decompression.
func FileToMem(path string) ([]byte, error) {
	//nolint:gosec // G304: see IsGzip.
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, ioError("read", path, err)
	}
	return b, nil
}
