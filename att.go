package fsmio

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ReadATT reads an AT&T tab-separated transition list.
// The network is named after the file, without directory and extension.
func ReadATT(path string, opts *Options) (*Network, error) {
	//nolint:gosec // G304: see IsGzip.
	f, err := os.Open(path)
	if err != nil {
		return nil, ioError("open", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	n, err := ParseATT(f, name, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "read att %s", path)
	}
	return n, nil
}

// ParseATT reads AT&T lines from r:
//
//	src<TAB>tgt<TAB>in<TAB>out[<TAB>weight]   arc
//	src[<TAB>...]                             final state, up to three fields
//
// Empty fields are skipped. State 0 is the initial state.
func ParseATT(r io.Reader, name string, opts *Options) (*Network, error) {
	if r == nil {
		return nil, ErrNilIO
	}
	o := resolveOptions(opts)
	b := NewBuilder(name)
	symbol := func(tok string) string {
		if tok == o.ATTEpsilon {
			return EpsilonSymbol
		}
		return tok
	}

	sc, release := newLineScanner(r)
	defer release()
	lineNo := 0
	for sc.Scan() {
		lineNo++
		tokens := strings.FieldsFunc(strings.TrimSuffix(sc.Text(), "\r"), func(c rune) bool { return c == '\t' })
		if len(tokens) == 0 {
			continue
		}
		src, ok := parseState(tokens[0])
		if !ok {
			return nil, formatErrorf("att", lineNo, "invalid state %q", tokens[0])
		}
		if len(tokens) < 4 {
			b.SetFinal(src)
			continue
		}
		tgt, ok := parseState(tokens[1])
		if !ok {
			return nil, formatErrorf("att", lineNo, "invalid target state %q", tokens[1])
		}
		b.AddArc(src, tgt, symbol(tokens[2]), symbol(tokens[3]))
	}
	if err := sc.Err(); err != nil {
		if err == bufio.ErrTooLong {
			return nil, formatErrorf("att", lineNo+1, "line longer than %d bytes", MAX_LINE_SIZE)
		}
		return nil, ioError("read", name, err)
	}

	b.SetInitial(0)
	return TopSort(b.Done()), nil
}

// WriteATT writes every arc of n as src<TAB>tgt<TAB>in<TAB>out, followed by
// one line per final state. The epsilon symbol is written as opts.ATTEpsilon.
func WriteATT(w io.Writer, n *Network, opts *Options) error {
	if n == nil || n.Sigma == nil {
		return ErrNilIO
	}
	o := resolveOptions(opts)
	bw, err := NewWriter(w)
	if err != nil {
		return err
	}

	symbol := func(id int) (string, error) {
		if id == Epsilon {
			return o.ATTEpsilon, nil
		}
		if s, ok := n.Sigma.String(id); ok {
			return s, nil
		}
		return "", formatErrorf("att", 0, "symbol id %d not in sigma", id)
	}

	for _, t := range n.States {
		if !t.HasArc() {
			continue
		}
		in, err := symbol(t.In)
		if err != nil {
			return err
		}
		out, err := symbol(t.Out)
		if err != nil {
			return err
		}
		_, _ = bw.WriteString(strconv.Itoa(t.State))
		_ = bw.WriteByte('\t')
		_, _ = bw.WriteString(strconv.Itoa(t.Target))
		_ = bw.WriteByte('\t')
		_, _ = bw.WriteString(in)
		_ = bw.WriteByte('\t')
		bw.WriteLine(out)
	}
	for _, s := range n.Finals() {
		bw.WriteInts(s)
	}

	if _, err := bw.Result(); err != nil {
		return ioError("write att", n.Name, err)
	}
	return nil
}

// WriteATTFile writes n in AT&T format to path.
func WriteATTFile(path string, n *Network, opts *Options) error {
	out, err := createOutput(path, false, 0)
	if err != nil {
		return err
	}
	if err := WriteATT(out, n, opts); err != nil {
		_ = out.Close()
		return errors.Wrapf(err, "write att %s", path)
	}
	return out.Close()
}
