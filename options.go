package fsmio

import (
	"fmt"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// DefaultATTEpsilon is the token AT&T files use for the empty string.
const DefaultATTEpsilon = "@0@"

// Options configures the readers and writers of this package.
// A nil *Options means DefaultOptions.
type Options struct {
	// ATTEpsilon is the literal token mapped to the epsilon symbol in AT&T files.
	ATTEpsilon string `yaml:"att_epsilon"`
	// CompressionLevel is the gzip level used for binary files (-2..9).
	// 0 selects gzip.DefaultCompression, like an unset ATTEpsilon; use
	// Plain for uncompressed output.
	CompressionLevel int `yaml:"compression_level"`
	// Plain disables gzip when writing single binary files.
	Plain bool `yaml:"plain"`
	// Logger receives warnings and progress messages.
	Logger logrus.FieldLogger `yaml:"-"`
}

// DefaultOptions returns the options used when nil is passed.
func DefaultOptions() *Options {
	return &Options{
		ATTEpsilon:       DefaultATTEpsilon,
		CompressionLevel: gzip.DefaultCompression,
		Logger:           logrus.StandardLogger(),
	}
}

// LoadOptions reads options from a YAML file. Missing keys keep their defaults.
func LoadOptions(path string) (*Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ioError("read", path, err)
	}
	opts := DefaultOptions()
	if err := yaml.Unmarshal(data, opts); err != nil {
		return nil, fmt.Errorf("fsmio: parse options %s: %w", path, err)
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return opts, nil
}

// WithATTEpsilon sets the AT&T epsilon token and returns o for chaining.
func (o *Options) WithATTEpsilon(token string) *Options {
	o.ATTEpsilon = token
	return o
}

// WithCompressionLevel sets the gzip level and returns o for chaining.
func (o *Options) WithCompressionLevel(level int) *Options {
	o.CompressionLevel = level
	return o
}

// WithPlain toggles uncompressed output and returns o for chaining.
func (o *Options) WithPlain(plain bool) *Options {
	o.Plain = plain
	return o
}

// WithLogger sets the logger and returns o for chaining.
func (o *Options) WithLogger(l logrus.FieldLogger) *Options {
	o.Logger = l
	return o
}

func (o *Options) validate() error {
	if o.CompressionLevel < gzip.HuffmanOnly || o.CompressionLevel > gzip.BestCompression {
		return fmt.Errorf("fsmio: invalid compression level %d", o.CompressionLevel)
	}
	if o.ATTEpsilon == "" {
		return fmt.Errorf("fsmio: empty att epsilon token")
	}
	return nil
}

// resolveOptions returns a private copy of opts with defaults filled in.
func resolveOptions(opts *Options) *Options {
	if opts == nil {
		return DefaultOptions()
	}
	o := *opts
	if o.ATTEpsilon == "" {
		o.ATTEpsilon = DefaultATTEpsilon
	}
	if o.Logger == nil {
		o.Logger = logrus.StandardLogger()
	}
	if o.CompressionLevel == gzip.NoCompression ||
		o.CompressionLevel < gzip.HuffmanOnly || o.CompressionLevel > gzip.BestCompression {
		o.CompressionLevel = gzip.DefaultCompression
	}
	return &o
}
