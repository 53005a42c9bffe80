package fsmio

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
)

// NetworkReader decodes one network from a stream.
type NetworkReader interface {
	Read(r io.Reader) (*Network, error)
}

// NetworkWriter encodes one network to a stream.
type NetworkWriter interface {
	Write(w io.Writer, n *Network) error
}

// Format aggregates the decode and encode side of one on-disk notation.
type Format interface {
	// Name returns the identifier accepted by NewFormat.
	Name() string
	NetworkReader
	NetworkWriter
}

// Format names accepted by NewFormat.
const (
	FormatBinary = "binary"
	FormatATT    = "att"
	FormatProlog = "prolog"
)

// NewFormat returns the format called name. "foma" is an alias of "binary".
func NewFormat(name string, opts *Options) (Format, error) {
	o := resolveOptions(opts)
	switch name {
	case FormatBinary, "foma":
		return binaryFormat{}, nil
	case FormatATT:
		return attFormat{opts: o}, nil
	case FormatProlog:
		return prologFormat{opts: o}, nil
	}
	return nil, fmt.Errorf("fsmio: unknown format %q", name)
}

type binaryFormat struct{}

func (binaryFormat) Name() string { return FormatBinary }

// Read accepts plain and gzipped input.
func (binaryFormat) Read(r io.Reader) (*Network, error) {
	if r == nil {
		return nil, ErrNilIO
	}
	data, err := readAll(r, 0)
	if err != nil {
		return nil, ioError("read", FormatBinary, err)
	}
	return DecodeBytes(data)
}

func (binaryFormat) Write(w io.Writer, n *Network) error { return Encode(w, n) }

type attFormat struct{ opts *Options }

func (attFormat) Name() string { return FormatATT }

// Read names the network "att"; ReadFile names it after the file instead.
func (f attFormat) Read(r io.Reader) (*Network, error) { return ParseATT(r, FormatATT, f.opts) }

func (f attFormat) Write(w io.Writer, n *Network) error { return WriteATT(w, n, f.opts) }

type prologFormat struct{ opts *Options }

func (prologFormat) Name() string { return FormatProlog }

func (f prologFormat) Read(r io.Reader) (*Network, error) { return ParseProlog(r, f.opts) }

func (prologFormat) Write(w io.Writer, n *Network) error { return WriteProlog(w, n) }

// ReadFile reads the network stored at path in the given format.
func ReadFile(format Format, path string) (*Network, error) {
	switch f := format.(type) {
	case binaryFormat:
		return DecodeFile(path)
	case attFormat:
		return ReadATT(path, f.opts)
	case prologFormat:
		return ReadProlog(path, f.opts)
	}

	//nolint:gosec // G304: see IsGzip.
	file, err := os.Open(path)
	if err != nil {
		return nil, ioError("open", path, err)
	}
	defer func() {
		_ = file.Close()
	}()
	n, err := format.Read(file)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s %s", format.Name(), path)
	}
	return n, nil
}

// WriteFile writes n to path in the given format. Binary files follow opts.Plain.
func WriteFile(format Format, path string, n *Network, opts *Options) error {
	switch format.(type) {
	case binaryFormat:
		return EncodeFile(path, n, opts)
	case attFormat:
		return WriteATTFile(path, n, opts)
	case prologFormat:
		return WritePrologFile(path, n)
	}

	out, err := createOutput(path, false, 0)
	if err != nil {
		return err
	}
	if err := format.Write(out, n); err != nil {
		_ = out.Close()
		return errors.Wrapf(err, "write %s %s", format.Name(), path)
	}
	return out.Close()
}
