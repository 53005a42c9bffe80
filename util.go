package fsmio

import (
	"bufio"
	"io"
	"strconv"

	"golang.org/x/exp/constraints"
)

// parseInt parses a base-10 integer that must fit in T.
func parseInt[T constraints.Signed](s string) (T, bool) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	t := T(v)
	if int64(t) != v {
		return 0, false
	}
	return t, true
}

func isSpace(c byte) bool { return c == ' ' || c == '\t' || c == '\r' }

// scanInts splits s on runs of blanks and parses each field into dst.
// It returns the number of fields found, which may exceed len(dst);
// the fields past len(dst) are counted but not parsed.
func scanInts(s string, dst []int) (int, bool) {
	n := 0
	for i := 0; i < len(s); {
		for i < len(s) && isSpace(s[i]) {
			i++
		}
		if i == len(s) {
			break
		}
		j := i
		for j < len(s) && !isSpace(s[j]) {
			j++
		}
		if n < len(dst) {
			v, ok := parseInt[int](s[i:j])
			if !ok {
				return n, false
			}
			dst[n] = v
		}
		n++
		i = j
	}
	return n, true
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}

// newLineScanner returns a scanner over r with a pooled initial buffer.
// The returned func gives the buffer back and must be called when done.
func newLineScanner(r io.Reader) (*bufio.Scanner, func()) {
	bufPtr := scanBufPool.Get().(*[]byte)
	sc := bufio.NewScanner(r)
	sc.Buffer((*bufPtr)[:0], MAX_LINE_SIZE)
	return sc, func() { scanBufPool.Put(bufPtr) }
}
