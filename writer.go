package fsmio

import (
	"bufio"
	"io"
	"strconv"
)

const writerBufferSize = 64 * 1024

// Writer provides a buffered line writer for the textual sections of the formats.
// It tracks the first error that occurs; after an error, all subsequent writes become no-ops.
type Writer struct {
	w       *bufio.Writer
	count   int64 // total bytes written
	err     error // first error encountered
	scratch []byte
}

// NewWriter creates a new Writer. An existing *bufio.Writer is reused instead of double-buffered.
func NewWriter(w io.Writer) (*Writer, error) {
	if w == nil {
		return nil, ErrNilIO
	}
	if bw, ok := w.(*bufio.Writer); ok {
		return &Writer{w: bw}, nil
	}
	return &Writer{w: bufio.NewWriterSize(w, writerBufferSize)}, nil
}

// Write implements the io.Writer interface.
func (w *Writer) Write(buf []byte) (int, error) {
	if len(buf) == 0 || w.err != nil {
		return 0, w.err
	}
	n, err := w.w.Write(buf)
	w.count += int64(n)
	w.setError(err)
	return n, w.err
}

// WriteString implements the io.StringWriter interface.
func (w *Writer) WriteString(str string) (int, error) {
	if str == "" || w.err != nil {
		return 0, w.err
	}
	n, err := w.w.WriteString(str)
	w.count += int64(n)
	w.setError(err)
	return n, w.err
}

// WriteByte implements the io.ByteWriter interface.
func (w *Writer) WriteByte(c byte) error {
	if w.err != nil {
		return w.err
	}
	err := w.w.WriteByte(c)
	if err == nil {
		w.count++
	} else {
		w.err = err
	}
	return err
}

// WriteLine writes s followed by a newline.
func (w *Writer) WriteLine(s string) {
	_, _ = w.WriteString(s)
	_ = w.WriteByte('\n')
}

// WriteInts writes vals separated by single spaces, followed by a newline.
func (w *Writer) WriteInts(vals ...int) {
	if w.err != nil {
		return
	}
	b := w.scratch[:0]
	for i, v := range vals {
		if i > 0 {
			b = append(b, ' ')
		}
		b = strconv.AppendInt(b, int64(v), 10)
	}
	b = append(b, '\n')
	w.scratch = b
	_, _ = w.Write(b)
}

func (w *Writer) Count() int64 { return w.count }
func (w *Writer) Err() error   { return w.err }

// setError records the first non-nil error.
func (w *Writer) setError(err error) {
	if w.err == nil && err != nil {
		w.err = err
	}
}

// Flush writes any buffered data to the underlying io.Writer.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	err := w.w.Flush()
	w.setError(err)
	return err
}

// Result flushes the buffer and returns the final count and error state.
func (w *Writer) Result() (int64, error) {
	_ = w.Flush()
	return w.count, w.err
}
