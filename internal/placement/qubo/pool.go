package qubo

import "gonum.org/v1/gonum/mat"

// Pool recycles the dense scratch matrices a build allocates: coordinate
// tables, Gram products and the off-diagonal plane. Result matrices are never
// pooled; they are handed to the caller and stay immutable.
type Pool struct {
	dense []*mat.Dense
}

// NewPool creates an empty pool.
func NewPool() *Pool {
	return &Pool{
		dense: make([]*mat.Dense, 0, 8),
	}
}

// GetDense returns an r x c matrix, reusing a pooled allocation when one of
// the same shape is available. Contents are unspecified.
func (p *Pool) GetDense(r, c int) *mat.Dense {
	for i := len(p.dense) - 1; i >= 0; i-- {
		m := p.dense[i]
		if mr, mc := m.Dims(); mr == r && mc == c {
			p.dense = append(p.dense[:i], p.dense[i+1:]...)
			return m
		}
	}
	return mat.NewDense(r, c, nil)
}

// PutDense returns a matrix to the pool for reuse.
func (p *Pool) PutDense(m *mat.Dense) {
	if m == nil {
		return
	}
	p.dense = append(p.dense, m)
}
