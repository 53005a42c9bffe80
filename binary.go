package fsmio

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

// Section tags of the binary format, in the order they appear.
const (
	TagHeader  = "##foma-net 1.0##"
	TagProps   = "##props##"
	TagSigma   = "##sigma##"
	TagStates  = "##states##"
	TagCMatrix = "##cmatrix##"
	TagEnd     = "##end##"
)

const (
	propsFields = 13
	// maxPrealloc caps the records pre-allocated from a declared line count.
	maxPrealloc = 1 << 20
)

type decoder struct {
	r *LineReader
}

// Decode reads the next network from r.
// It returns io.EOF when r holds no further network, so that concatenated
// networks can be read by calling Decode until io.EOF.
func Decode(r *LineReader) (*Network, error) {
	if r == nil {
		return nil, ErrNilIO
	}
	d := &decoder{r: r}
	return d.network()
}

// DecodeBytes decodes the first network in b, which may be gzipped.
func DecodeBytes(b []byte) (*Network, error) {
	data, err := readAll(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFormat, err)
	}
	n, err := Decode(NewLineReader(data))
	if err == io.EOF {
		return nil, ErrNoNetwork
	}
	return n, err
}

// DecodeFile decodes the first network stored in the file at path.
func DecodeFile(path string) (*Network, error) {
	r, err := Load(path)
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}
	defer r.Release()

	n, err := Decode(r)
	if err == io.EOF {
		return nil, errors.Wrapf(ErrNoNetwork, "decode %s", path)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}
	return n, nil
}

// DecodeAll decodes every network left in r.
func DecodeAll(r *LineReader) ([]*Network, error) {
	var nets []*Network
	for {
		n, err := Decode(r)
		if err == io.EOF {
			return nets, nil
		}
		if err != nil {
			return nil, err
		}
		nets = append(nets, n)
	}
}

func (d *decoder) errorf(section, format string, args ...any) error {
	return formatErrorf(section, d.r.Line(), format, args...)
}

// next returns the next line or ErrUnexpectedEOF.
func (d *decoder) next(section string) (string, error) {
	line, more := d.r.Next()
	if !more {
		return "", fmt.Errorf("%w: in %s section after line %d", ErrUnexpectedEOF, section, d.r.Line())
	}
	return line, nil
}

func (d *decoder) expect(section, tag string) error {
	line, err := d.next(section)
	if err != nil {
		return err
	}
	if line != tag {
		return d.errorf(section, "expected %s, got %q", tag, line)
	}
	return nil
}

func (d *decoder) network() (*Network, error) {
	var line string
	for {
		l, more := d.r.Next()
		if !more {
			return nil, io.EOF
		}
		if strings.TrimSpace(l) != "" {
			line = l
			break
		}
	}
	if line != TagHeader {
		return nil, d.errorf("header", "expected %s, got %q", TagHeader, line)
	}

	if err := d.expect("props", TagProps); err != nil {
		return nil, err
	}
	line, err := d.next("props")
	if err != nil {
		return nil, err
	}
	n := &Network{Sigma: NewSigma()}
	if err := parseProps(line, n); err != nil {
		return nil, atLine(err, d.r.Line())
	}

	if err := d.expect("sigma", TagSigma); err != nil {
		return nil, err
	}
	if line, err = d.sigma(n.Sigma); err != nil {
		return nil, err
	}
	if line != TagStates {
		return nil, d.errorf("states", "expected %s, got %q", TagStates, line)
	}
	if line, err = d.states(n); err != nil {
		return nil, err
	}
	if line == TagCMatrix {
		if line, err = d.cmatrix(n); err != nil {
			return nil, err
		}
	}
	if line != TagEnd {
		return nil, d.errorf("end", "expected %s, got %q", TagEnd, line)
	}
	return n, nil
}

// parseProps fills the counts, flags and name of n from a props line:
// arity arccount statecount linecount finalcount pathcount
// deterministic pruned minimized epsilon_free loop_free completed name
func parseProps(line string, n *Network) error {
	fields := strings.Fields(line)
	if len(fields) != propsFields && len(fields) != propsFields-1 {
		return formatErrorf("props", 0, "expected %d fields, got %d", propsFields, len(fields))
	}

	counts := []*int{&n.Arity, &n.ArcCount, &n.StateCount, &n.LineCount, &n.FinalCount}
	for i, dst := range counts {
		v, ok := parseInt[int](fields[i])
		if !ok {
			return formatErrorf("props", 0, "field %d: invalid integer %q", i+1, fields[i])
		}
		*dst = v
	}
	if n.Arity != 1 && n.Arity != 2 {
		return formatErrorf("props", 0, "invalid arity %d", n.Arity)
	}
	pathCount, ok := parseInt[int64](fields[5])
	if !ok {
		return formatErrorf("props", 0, "invalid path count %q", fields[5])
	}
	n.PathCount = pathCount

	flags := []*bool{&n.Deterministic, &n.Pruned, &n.Minimized, &n.EpsilonFree, &n.LoopFree, &n.Completed}
	for i, dst := range flags {
		v, err := parseFlag(fields[6+i])
		if err != nil {
			return err
		}
		*dst = v
	}

	if len(fields) == propsFields {
		n.Name = fields[12]
	}
	return nil
}

// parseFlag accepts 0 and 1, and the "unknown" value 2, which reads as false.
func parseFlag(s string) (bool, error) {
	switch s {
	case "0", "2":
		return false, nil
	case "1":
		return true, nil
	}
	return false, formatErrorf("props", 0, "invalid flag %q", s)
}

// sigma reads "id symbol" lines and returns the tag line that ends the section.
func (d *decoder) sigma(s *Sigma) (string, error) {
	for {
		line, err := d.next("sigma")
		if err != nil {
			return "", err
		}
		if strings.HasPrefix(line, "#") {
			return line, nil
		}
		idText, sym, ok := strings.Cut(line, " ")
		if !ok {
			return "", d.errorf("sigma", "malformed symbol line %q", line)
		}
		id, ok := parseInt[int](idText)
		if !ok {
			return "", d.errorf("sigma", "invalid symbol id %q", idText)
		}
		if err := s.AddNumber(sym, id); err != nil {
			return "", atLine(err, d.r.Line())
		}
	}
}

// states reads transition lines up to the sentinel and returns the following tag line.
func (d *decoder) states(n *Network) (string, error) {
	n.States = make([]Transition, 0, min(max(n.LineCount, 0), maxPrealloc))
	c := noCarry
	for {
		line, err := d.next("states")
		if err != nil {
			return "", err
		}
		if strings.HasPrefix(line, "#") {
			return "", d.errorf("states", "missing sentinel before %q", line)
		}
		l, err := parseStateLine(line)
		if err != nil {
			return "", atLine(err, d.r.Line())
		}
		if l.kind == lineSentinel {
			break
		}
		t, next, err := expand(l, c)
		if err != nil {
			return "", atLine(err, d.r.Line())
		}
		c = next
		n.States = append(n.States, t)
	}

	// linecount may or may not include the sentinel.
	if got := len(n.States); got != n.LineCount && got+1 != n.LineCount {
		return "", d.errorf("states", "declared line count %d, found %d records", n.LineCount, got)
	}
	return d.next("states")
}

// cmatrix reads one cell per line and returns the tag line that ends the section.
func (d *decoder) cmatrix(n *Network) (string, error) {
	var cells []int
	for {
		line, err := d.next("cmatrix")
		if err != nil {
			return "", err
		}
		if strings.HasPrefix(line, "#") {
			dim := n.Sigma.Max() + 1
			if len(cells) != dim*dim {
				return "", d.errorf("cmatrix", "expected %d cells, got %d", dim*dim, len(cells))
			}
			n.Confusion = &ConfusionMatrix{Dim: dim, Cells: cells}
			return line, nil
		}
		v, ok := parseInt[int](strings.TrimSpace(line))
		if !ok {
			return "", d.errorf("cmatrix", "invalid cell %q", line)
		}
		cells = append(cells, v)
	}
}

// Encode writes n in the binary format, uncompressed.
func Encode(w io.Writer, n *Network) error {
	if n == nil || n.Sigma == nil {
		return ErrNilIO
	}
	if strings.ContainsFunc(n.Name, unicode.IsSpace) {
		return formatErrorf("props", 0, "network name %q contains whitespace", n.Name)
	}
	if m := n.Confusion; m != nil {
		if dim := n.Sigma.Max() + 1; m.Dim != dim || len(m.Cells) != dim*dim {
			return formatErrorf("cmatrix", 0, "matrix of dimension %d does not fit %d symbols", m.Dim, dim)
		}
	}

	bw, err := NewWriter(w)
	if err != nil {
		return err
	}

	bw.WriteLine(TagHeader)
	bw.WriteLine(TagProps)
	_, _ = fmt.Fprintf(bw, "%d %d %d %d %d %d %d %d %d %d %d %d %s\n",
		n.Arity, n.ArcCount, n.StateCount, n.LineCount, n.FinalCount, n.PathCount,
		b2i(n.Deterministic), b2i(n.Pruned), b2i(n.Minimized),
		b2i(n.EpsilonFree), b2i(n.LoopFree), b2i(n.Completed), n.Name)

	bw.WriteLine(TagSigma)
	for _, id := range n.Sigma.IDs() {
		sym, _ := n.Sigma.String(id)
		if strings.ContainsRune(sym, '\n') {
			return formatErrorf("sigma", 0, "symbol %d contains a newline", id)
		}
		_, _ = bw.WriteString(strconv.Itoa(id))
		_ = bw.WriteByte(' ')
		bw.WriteLine(sym)
	}

	bw.WriteLine(TagStates)
	last := -1
	for _, t := range n.States {
		writeStateLine(bw, t, last)
		last = t.State
	}
	writeSentinel(bw)

	if m := n.Confusion; m != nil {
		bw.WriteLine(TagCMatrix)
		for _, v := range m.Cells {
			bw.WriteInts(v)
		}
	}
	bw.WriteLine(TagEnd)

	if _, err := bw.Result(); err != nil {
		return fmt.Errorf("%w: write network %q: %w", ErrIO, n.Name, err)
	}
	return nil
}

// EncodeFile writes n to path, gzipped unless opts.Plain is set.
func EncodeFile(path string, n *Network, opts *Options) error {
	o := resolveOptions(opts)
	out, err := createOutput(path, !o.Plain, o.CompressionLevel)
	if err != nil {
		return err
	}
	if err := Encode(out, n); err != nil {
		_ = out.Close()
		return errors.Wrapf(err, "encode %s", path)
	}
	return out.Close()
}

// output is a file, optionally wrapped in a gzip stream.
type output struct {
	io.Writer
	path string
	f    *os.File
	zw   *gzip.Writer
}

func createOutput(path string, compress bool, level int) (*output, error) {
	//nolint:gosec // G304: see IsGzip.
	f, err := os.Create(path)
	if err != nil {
		return nil, ioError("create", path, err)
	}
	out := &output{Writer: f, path: path, f: f}
	if compress {
		zw, err := gzip.NewWriterLevel(f, level)
		if err != nil {
			_ = f.Close()
			return nil, ioError("gzip", path, err)
		}
		out.zw, out.Writer = zw, zw
	}
	return out, nil
}

// Close flushes the gzip stream, if any, and closes the file.
func (o *output) Close() error {
	if o.zw != nil {
		if err := o.zw.Close(); err != nil {
			_ = o.f.Close()
			return ioError("close", o.path, err)
		}
	}
	if err := o.f.Close(); err != nil {
		return ioError("close", o.path, err)
	}
	return nil
}
