package fsmio

import (
	"bytes"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type BinaryTestSuite struct {
	suite.Suite
}

func TestBinarySuite(t *testing.T) {
	suite.Run(t, new(BinaryTestSuite))
}

func (s *BinaryTestSuite) roundTrip(n *Network) *Network {
	var buf bytes.Buffer
	s.Require().NoError(Encode(&buf, n))
	got, err := DecodeBytes(buf.Bytes())
	s.Require().NoError(err)
	return got
}

func (s *BinaryTestSuite) TestEncodeSample() {
	var buf bytes.Buffer
	s.Require().NoError(Encode(&buf, sampleNet(s.T())))
	s.Equal(sampleText, buf.String())
}

func (s *BinaryTestSuite) TestRoundTrip() {
	s.Run("EmptyLanguage", func() {
		n := NewNetwork("empty")
		n.States = []Transition{{State: 0, In: -1, Out: -1, Target: -1, Start: true}}
		n.Count()
		s.Equal(n, s.roundTrip(n))
	})

	s.Run("SingleAcceptingState", func() {
		n := NewNetwork("eps")
		n.States = []Transition{{State: 0, In: -1, Out: -1, Target: -1, Final: true, Start: true}}
		n.Count()
		got := s.roundTrip(n)
		s.Equal(n, got)
		s.Equal(1, got.FinalCount)
	})

	s.Run("ManyArcsFromOneState", func() {
		n := sampleNet(s.T())
		s.Equal(n, s.roundTrip(n))
	})

	s.Run("ConfusionMatrix", func() {
		n := sampleNet(s.T())
		n.Confusion = NewConfusionMatrix(n.Sigma.Max())
		n.Confusion.Set(3, 4, 1)
		n.Confusion.Set(4, 3, 2)
		got := s.roundTrip(n)
		s.Equal(n, got)
		s.Equal(2, got.Confusion.At(4, 3))
	})

	s.Run("NoName", func() {
		text := strings.Replace(sampleText, " net1\n", "\n", 1)
		got, err := DecodeBytes([]byte(text))
		s.Require().NoError(err)
		s.Empty(got.Name)
	})
}

func (s *BinaryTestSuite) TestProps() {
	n := &Network{}
	s.Require().NoError(parseProps("1 1 2 1 1 1 1 0 0 0 1 0 net1", n))
	s.Equal(1, n.Arity)
	s.Equal(1, n.ArcCount)
	s.Equal(2, n.StateCount)
	s.Equal(1, n.LineCount)
	s.Equal(1, n.FinalCount)
	s.EqualValues(1, n.PathCount)
	s.True(n.Deterministic)
	s.False(n.Pruned)
	s.False(n.Minimized)
	s.False(n.EpsilonFree)
	s.True(n.LoopFree)
	s.False(n.Completed)
	s.Equal("net1", n.Name)

	s.Require().NoError(parseProps("1 0 1 1 0 -3 2 2 2 2 2 2", n))
	s.False(n.Deterministic, "2 means unknown")
	s.Empty(n.Name)

	for _, line := range []string{
		"1 1 2 1 1 1 1 0 0 0 1",
		"3 1 2 1 1 1 1 0 0 0 1 0 x",
		"1 1 2 1 1 1 1 0 0 0 1 7 x",
		"1 x 2 1 1 1 1 0 0 0 1 0 x",
	} {
		s.ErrorIs(parseProps(line, n), ErrFormat, line)
	}
}

func (s *BinaryTestSuite) TestLineCount() {
	withLineCount := func(lc string) string {
		return strings.Replace(sampleText, "2 5 3 6 2", "2 5 3 "+lc+" 2", 1)
	}

	_, err := DecodeBytes([]byte(withLineCount("7")))
	s.NoError(err, "line count may include the sentinel")

	_, err = DecodeBytes([]byte(withLineCount("9")))
	s.ErrorIs(err, ErrFormat)

	_, err = DecodeBytes([]byte(withLineCount("2")))
	s.ErrorIs(err, ErrFormat)
}

func (s *BinaryTestSuite) TestDecodeErrors() {
	cases := []struct {
		name string
		text string
		want error
	}{
		{"BadHeader", strings.Replace(sampleText, "1.0", "2.0", 1), ErrFormat},
		{"MissingProps", strings.Replace(sampleText, "##props##\n", "", 1), ErrFormat},
		{"ReservedID", strings.Replace(sampleText, "3 a\n", "1 a\n", 1), ErrFormat},
		{"ReservedName", strings.Replace(sampleText, "3 a\n", "3 "+UnknownSymbol+"\n", 1), ErrFormat},
		{"FieldCount", strings.Replace(sampleText, "0 3 1 0\n", "0 3 3 1 0 9\n", 1), ErrFormat},
		{"NonInteger", strings.Replace(sampleText, "0 2\n", "0 x\n", 1), ErrFormat},
		{"ContinuationFirst", strings.Replace(sampleText, "0 3 1 0\n", "3 1\n", 1), ErrFormat},
		{"MissingSentinel", strings.Replace(sampleText, "-1 -1 -1 -1 -1\n", "", 1), ErrFormat},
		{"MissingEnd", strings.Replace(sampleText, "##end##", "##what##", 1), ErrFormat},
		{"Truncated", sampleText[:strings.Index(sampleText, "0 2\n")], ErrUnexpectedEOF},
		{"TruncatedSigma", sampleText[:strings.Index(sampleText, "3 a\n")], ErrUnexpectedEOF},
		{"Empty", "", ErrNoNetwork},
		{"OnlyBlank", "\n\n", ErrNoNetwork},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			_, err := DecodeBytes([]byte(tc.text))
			s.ErrorIs(err, tc.want)
		})
	}
}

func (s *BinaryTestSuite) TestFormatErrorLine() {
	text := strings.Replace(sampleText, "0 2\n", "0 x\n", 1)
	_, err := DecodeBytes([]byte(text))

	var fe *FormatError
	s.Require().True(errors.As(err, &fe))
	s.Equal("states", fe.Section)
	s.Equal(12, fe.Line)
}

func (s *BinaryTestSuite) TestConfusionMatrixSize() {
	text := strings.Replace(sampleText, "##end##\n", "##cmatrix##\n1\n2\n#\n##end##\n", 1)
	_, err := DecodeBytes([]byte(text))
	s.ErrorIs(err, ErrFormat)

	n := sampleNet(s.T())
	n.Confusion = NewConfusionMatrix(2)
	s.ErrorIs(Encode(io.Discard, n), ErrFormat)
}

func (s *BinaryTestSuite) TestEncodeErrors() {
	s.ErrorIs(Encode(io.Discard, nil), ErrNilIO)
	s.ErrorIs(Encode(nil, sampleNet(s.T())), ErrNilIO)

	n := sampleNet(s.T())
	n.Name = "two words"
	s.ErrorIs(Encode(io.Discard, n), ErrFormat)
}

func (s *BinaryTestSuite) TestDecodeAll() {
	text := sampleText + "\n" + sampleText
	nets, err := DecodeAll(NewLineReader([]byte(text)))
	s.Require().NoError(err)
	s.Len(nets, 2)
	s.Equal(nets[0], nets[1])

	r := NewLineReader([]byte(sampleText))
	_, err = Decode(r)
	s.Require().NoError(err)
	_, err = Decode(r)
	s.ErrorIs(err, io.EOF)

	_, err = Decode(nil)
	s.ErrorIs(err, ErrNilIO)
}

func (s *BinaryTestSuite) TestFiles() {
	dir := s.T().TempDir()
	n := sampleNet(s.T())

	gzPath := filepath.Join(dir, "net.foma")
	s.Require().NoError(EncodeFile(gzPath, n, nil))
	plainPath := filepath.Join(dir, "net.txt")
	s.Require().NoError(EncodeFile(plainPath, n, DefaultOptions().WithPlain(true)))

	gz, err := IsGzip(gzPath)
	s.Require().NoError(err)
	s.True(gz)
	gz, err = IsGzip(plainPath)
	s.Require().NoError(err)
	s.False(gz)

	fromGz, err := DecodeFile(gzPath)
	s.Require().NoError(err)
	fromPlain, err := DecodeFile(plainPath)
	s.Require().NoError(err)
	s.Equal(fromPlain, fromGz)
	s.Equal(n, fromGz)

	_, err = DecodeFile(filepath.Join(dir, "missing"))
	s.ErrorIs(err, ErrIO)

	empty := writeFile(s.T(), "empty", nil)
	_, err = DecodeFile(empty)
	s.ErrorIs(err, ErrNoNetwork)

	s.ErrorIs(EncodeFile(filepath.Join(dir, "no", "such", "dir"), n, nil), ErrIO)
}

func TestDecodeBytesGzipped(t *testing.T) {
	n, err := DecodeBytes(gzipBytes(t, []byte(sampleText)))
	require.NoError(t, err)
	assert.Equal(t, sampleNet(t), n)
}
