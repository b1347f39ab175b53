package tensor

// #region vector

// Vector is a dense float32 vector.
type Vector []float32

// Clone returns an independent copy of the vector.
func (v Vector) Clone() Vector {
	out := make(Vector, len(v))
	copy(out, v)
	return out
}

// Scale returns a new vector equal to v * s. The receiver is untouched.
func (v Vector) Scale(s float32) Vector {
	out := make(Vector, len(v))
	for i, x := range v {
		out[i] = x * s
	}
	return out
}

// Add adds w to v in place. Panics if lengths differ.
func (v Vector) Add(w Vector) {
	if len(v) != len(w) {
		panic("tensor: vector length mismatch")
	}
	for i := range v {
		v[i] += w[i]
	}
}

// Equal reports whether two vectors have identical length and elements.
func (v Vector) Equal(w Vector) bool {
	if len(v) != len(w) {
		return false
	}
	for i := range v {
		if v[i] != w[i] {
			return false
		}
	}
	return true
}

// #endregion vector

// #region matrix

// Matrix is a dense row-major float32 matrix.
type Matrix struct {
	Rows int
	Cols int
	Data []float32
}

// NewMatrix allocates a zeroed rows x cols matrix.
func NewMatrix(rows, cols int) Matrix {
	return Matrix{Rows: rows, Cols: cols, Data: make([]float32, rows*cols)}
}

// FromRows builds a matrix from row slices. All rows must share one length.
func FromRows(rows [][]float32) Matrix {
	if len(rows) == 0 {
		return Matrix{}
	}
	m := NewMatrix(len(rows), len(rows[0]))
	for i, r := range rows {
		if len(r) != m.Cols {
			panic("tensor: ragged rows")
		}
		copy(m.Data[i*m.Cols:(i+1)*m.Cols], r)
	}
	return m
}

// Row returns row i as a vector. The slice shares storage with the matrix.
func (m Matrix) Row(i int) Vector {
	return Vector(m.Data[i*m.Cols : (i+1)*m.Cols])
}

// SetRow copies v into row i.
func (m Matrix) SetRow(i int, v Vector) {
	if len(v) != m.Cols {
		panic("tensor: row length mismatch")
	}
	copy(m.Data[i*m.Cols:(i+1)*m.Cols], v)
}

// MatVec returns m * v as a new vector.
func (m Matrix) MatVec(v Vector) Vector {
	if len(v) != m.Cols {
		panic("tensor: matvec dimension mismatch")
	}
	out := make(Vector, m.Rows)
	for i := 0; i < m.Rows; i++ {
		row := m.Data[i*m.Cols : (i+1)*m.Cols]
		var sum float32
		for j, x := range row {
			sum += x * v[j]
		}
		out[i] = sum
	}
	return out
}

// Equal reports whether two matrices have identical shape and elements.
func (m Matrix) Equal(n Matrix) bool {
	if m.Rows != n.Rows || m.Cols != n.Cols {
		return false
	}
	return Vector(m.Data).Equal(Vector(n.Data))
}

// #endregion matrix
