package fsmio

import (
	"errors"
	"fmt"
)

var (
	// ErrNilIO indicates that an encoder or decoder was called with a nil reader, writer or network.
	ErrNilIO = errors.New("fsmio: called with a nil io.Reader/io.Writer/network")

	// ErrIO indicates that a file could not be opened, read or written.
	ErrIO = errors.New("fsmio: i/o error")

	// ErrFormat indicates malformed input: a missing or misplaced section tag,
	// a state line with an unsupported field count, or an invalid field value.
	// Concrete failures are reported as *FormatError, which unwraps to ErrFormat.
	ErrFormat = errors.New("fsmio: file format error")

	// ErrUnexpectedEOF indicates that the buffer ended in the middle of a network.
	ErrUnexpectedEOF = errors.New("fsmio: unexpected end of buffer")

	// ErrInputTooLarge indicates that the decompressed input exceeds MaxInputSize.
	ErrInputTooLarge = errors.New("fsmio: input too large")

	// ErrNoNetwork indicates that the input did not contain any network.
	ErrNoNetwork = errors.New("fsmio: no network found")

	// ErrMultipleNetworks is logged (never returned) when a Prolog file declares
	// more than one network. Only the first one is kept.
	ErrMultipleNetworks = errors.New("fsmio: prolog file contains multiple nets, only returning the first one")

	// ErrEmptyRegistry is logged (never returned) when there is nothing to save.
	ErrEmptyRegistry = errors.New("fsmio: no defined networks")
)

// FormatError provides detailed information about a parse failure.
type FormatError struct {
	Section string // Section or syntax being parsed (e.g. "props", "states", "prolog")
	Line    int    // 1-based line number, 0 when unknown
	Msg     string
}

// Error implements the error interface.
func (e *FormatError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("fsmio: %s: line %d: %s", e.Section, e.Line, e.Msg)
	}
	return fmt.Sprintf("fsmio: %s: %s", e.Section, e.Msg)
}

// Unwrap makes every FormatError match ErrFormat.
func (e *FormatError) Unwrap() error { return ErrFormat }

func formatErrorf(section string, line int, format string, args ...any) error {
	return &FormatError{Section: section, Line: line, Msg: fmt.Sprintf(format, args...)}
}

// atLine fills in the line number of a FormatError that was raised without one.
func atLine(err error, line int) error {
	var fe *FormatError
	if errors.As(err, &fe) && fe.Line == 0 {
		fe.Line = line
	}
	return err
}

func ioError(op, path string, err error) error {
	return fmt.Errorf("%w: %s %s: %w", ErrIO, op, path, err)
}
