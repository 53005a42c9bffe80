package fsmio

import (
	"encoding/binary"
	"io"
	"os"
)

var gzipMagic = []byte{0x1f, 0x8b}

// IsGzip reports whether the file at path starts with the gzip signature.
func IsGzip(path string) (bool, error) {
	//nolint:gosec // G304: reading caller-supplied network files is the point of this package.
	f, err := os.Open(path)
	if err != nil {
		return false, ioError("open", path, err)
	}
	defer func() {
		_ = f.Close() // read-only
	}()

	gz, err := PeekReader(f).HasPrefix(gzipMagic)
	if err != nil {
		return false, ioError("read", path, err)
	}
	return gz, nil
}

// ResolveSize returns the uncompressed size of the file at path.
// For gzip files this is the ISIZE field of the trailer, which is the
// uncompressed length modulo 2^32 and is only used to pre-size buffers.
func ResolveSize(path string) (int64, error) {
	//nolint:gosec // G304: see IsGzip.
	f, err := os.Open(path)
	if err != nil {
		return 0, ioError("open", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	gz, err := PeekReader(f).HasPrefix(gzipMagic)
	if err != nil {
		return 0, ioError("read", path, err)
	}
	if !gz {
		stat, err := f.Stat()
		if err != nil {
			return 0, ioError("stat", path, err)
		}
		return stat.Size(), nil
	}

	if _, err := f.Seek(-4, io.SeekEnd); err != nil {
		return 0, ioError("seek", path, err)
	}
	var trailer [4]byte
	if _, err := io.ReadFull(f, trailer[:]); err != nil {
		return 0, ioError("read trailer", path, err)
	}
	return int64(binary.LittleEndian.Uint32(trailer[:])), nil
}
