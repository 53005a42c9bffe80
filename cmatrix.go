package fsmio

// ConfusionMatrix holds symbol-pair costs for approximate matching.
// Cells is row-major with Dim*Dim entries, where Dim is the largest symbol id plus one.
type ConfusionMatrix struct {
	Dim   int
	Cells []int
}

// NewConfusionMatrix returns a zeroed matrix for symbol ids 0..maxSymbol.
func NewConfusionMatrix(maxSymbol int) *ConfusionMatrix {
	dim := max(maxSymbol+1, 0)
	return &ConfusionMatrix{Dim: dim, Cells: make([]int, dim*dim)}
}

func (m *ConfusionMatrix) At(in, out int) int     { return m.Cells[in*m.Dim+out] }
func (m *ConfusionMatrix) Set(in, out int, v int) { m.Cells[in*m.Dim+out] = v }
