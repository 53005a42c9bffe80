package fsmio

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/require"
)

// sampleText is the binary encoding of sampleNet.
const sampleText = `##foma-net 1.0##
##props##
2 5 3 6 2 -1 0 0 0 0 0 0 net1
##sigma##
0 @_EPSILON_SYMBOL_@
2 @_IDENTITY_SYMBOL_@
3 a
4 b
##states##
0 3 1 0
3 4 1
0 2
2 0
1 4 2 1
2 -1 -1 1
-1 -1 -1 -1 -1
##end##
`

// sampleNet is a small cyclic transducer that uses every state line form.
func sampleNet(t testing.TB) *Network {
	t.Helper()
	n := NewNetwork("net1")
	n.Arity = 2
	n.PathCount = PathCountCyclic
	for _, s := range []struct {
		id  int
		sym string
	}{{0, EpsilonSymbol}, {2, IdentitySymbol}, {3, "a"}, {4, "b"}} {
		require.NoError(t, n.Sigma.AddNumber(s.sym, s.id))
	}
	n.States = []Transition{
		{State: 0, In: 3, Out: 3, Target: 1, Start: true},
		{State: 0, In: 3, Out: 4, Target: 1, Start: true},
		{State: 0, In: 0, Out: 0, Target: 2, Start: true},
		{State: 0, In: 2, Out: 2, Target: 0, Start: true},
		{State: 1, In: 4, Out: 4, Target: 2, Final: true},
		{State: 2, In: -1, Out: -1, Target: -1, Final: true},
	}
	n.Count()
	return n
}

// singleArcNet accepts exactly "a".
func singleArcNet() *Network {
	b := NewBuilder("foo")
	b.AddArc(0, 1, "a", "a")
	b.SetFinal(1)
	return TopSort(b.Done())
}

func writeFile(t testing.TB, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func gzipBytes(t testing.TB, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write(data)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}
