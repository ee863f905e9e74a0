package fluxqubit

import "gonum.org/v1/gonum/mat"

// Single-mode operators in the truncated charge basis. For cutoff ncut the
// basis spans charge states -ncut..+ncut, so each operator is d×d with
// d = 2·ncut+1. All operators for one composite must be built from the
// same cutoff; the arithmetic kernels below panic on any dimension
// mismatch.
//
// gonum's CDense carries no arithmetic (it is storage plus views), so the
// handful of dense complex operations the assembler needs live here,
// alongside kron.

// numberOperator returns the charge-number operator: a diagonal matrix
// with entries -ncut..+ncut.
func numberOperator(ncut int) *mat.CDense {
	dim := 2*ncut + 1
	op := mat.NewCDense(dim, dim, nil)
	for i := 0; i < dim; i++ {
		op.Set(i, i, complex(float64(i-ncut), 0))
	}
	return op
}

// phaseRaisingOperator returns e^{iφ} in the charge basis: ones on the
// first superdiagonal, raising the charge by one quantum. Its transpose is
// the lowering operator e^{-iφ}; the matrix is real, so transpose and
// Hermitian conjugate coincide.
func phaseRaisingOperator(ncut int) *mat.CDense {
	dim := 2*ncut + 1
	op := mat.NewCDense(dim, dim, nil)
	for i := 0; i < dim-1; i++ {
		op.Set(i, i+1, 1)
	}
	return op
}

// identityOperator returns the d×d identity.
func identityOperator(ncut int) *mat.CDense {
	dim := 2*ncut + 1
	op := mat.NewCDense(dim, dim, nil)
	for i := 0; i < dim; i++ {
		op.Set(i, i, 1)
	}
	return op
}

// kron returns the tensor product a ⊗ b. The first argument acts on mode 1
// and the second on mode 2, making mode 1 the slow index of the composite
// basis: reshaping a composite vector into a (rows(a) × rows(b)) matrix
// with mode-1 rows recovers exactly this ordering. Every composite
// operator and every wavefunction reshape in this package relies on that
// convention; no other composition path exists.
func kron(a, b mat.CMatrix) *mat.CDense {
	ra, ca := a.Dims()
	rb, cb := b.Dims()
	out := mat.NewCDense(ra*rb, ca*cb, nil)
	for i := 0; i < ra; i++ {
		for j := 0; j < ca; j++ {
			aij := a.At(i, j)
			if aij == 0 {
				continue
			}
			for k := 0; k < rb; k++ {
				for l := 0; l < cb; l++ {
					if bkl := b.At(k, l); bkl != 0 {
						out.Set(i*rb+k, j*cb+l, aij*bkl)
					}
				}
			}
		}
	}
	return out
}

// add returns a + b as a fresh matrix.
func add(a, b mat.CMatrix) *mat.CDense {
	ra, ca := a.Dims()
	rb, cb := b.Dims()
	if ra != rb || ca != cb {
		panic("fluxqubit: matrix dimension mismatch in add")
	}
	out := mat.NewCDense(ra, ca, nil)
	for i := 0; i < ra; i++ {
		for j := 0; j < ca; j++ {
			out.Set(i, j, a.At(i, j)+b.At(i, j))
		}
	}
	return out
}

// sub returns a - b as a fresh matrix.
func sub(a, b mat.CMatrix) *mat.CDense {
	ra, ca := a.Dims()
	rb, cb := b.Dims()
	if ra != rb || ca != cb {
		panic("fluxqubit: matrix dimension mismatch in sub")
	}
	out := mat.NewCDense(ra, ca, nil)
	for i := 0; i < ra; i++ {
		for j := 0; j < ca; j++ {
			out.Set(i, j, a.At(i, j)-b.At(i, j))
		}
	}
	return out
}

// mul returns the matrix product a·b as a fresh matrix. The operators here
// are sparse (diagonals and superdiagonals), so zero entries of a are
// skipped.
func mul(a, b mat.CMatrix) *mat.CDense {
	ra, ca := a.Dims()
	rb, cb := b.Dims()
	if ca != rb {
		panic("fluxqubit: matrix dimension mismatch in mul")
	}
	out := mat.NewCDense(ra, cb, nil)
	for i := 0; i < ra; i++ {
		for k := 0; k < ca; k++ {
			aik := a.At(i, k)
			if aik == 0 {
				continue
			}
			for j := 0; j < cb; j++ {
				if bkj := b.At(k, j); bkj != 0 {
					out.Set(i, j, out.At(i, j)+aik*bkj)
				}
			}
		}
	}
	return out
}

// scaled returns c·m as a fresh matrix.
func scaled(c complex128, m mat.CMatrix) *mat.CDense {
	r, cols := m.Dims()
	out := mat.NewCDense(r, cols, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < cols; j++ {
			out.Set(i, j, c*m.At(i, j))
		}
	}
	return out
}
