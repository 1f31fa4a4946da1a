// Copyright ©2025 gescholt. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package approx

import (
	"errors"
	"math/big"

	"gonum.org/v1/gonum/mat"
)

// bigLstsq solves min‖A·c - y‖₂ through the normal equations AᵀA·c = Aᵀy in
// big.Float arithmetic at the given mantissa precision. The extra mantissa
// bits absorb the squared conditioning of the normal equations, which is what
// the Extended precision mode exists for.
func bigLstsq(a *mat.Dense, y []float64, bits uint) ([]float64, error) {

	rows, cols := a.Dims()

	nf := func() *big.Float { return new(big.Float).SetPrec(bits) }

	// N = AᵀA, rhs = Aᵀy.
	n := make([]*big.Float, cols*cols)
	rhs := make([]*big.Float, cols)
	tmp := nf()
	for i := 0; i < cols; i++ {
		rhs[i] = nf()
		for r := 0; r < rows; r++ {
			tmp.SetFloat64(a.At(r, i) * y[r])
			rhs[i].Add(rhs[i], tmp)
		}
		for j := i; j < cols; j++ {
			s := nf()
			ai, aj := nf(), nf()
			for r := 0; r < rows; r++ {
				ai.SetFloat64(a.At(r, i))
				aj.SetFloat64(a.At(r, j))
				tmp.Mul(ai, aj)
				s.Add(s, tmp)
			}
			n[i*cols+j] = s
			if i != j {
				n[j*cols+i] = nf().Set(s)
			}
		}
	}

	// Gaussian elimination with partial pivoting.
	abs := nf()
	for col := 0; col < cols; col++ {
		pivot := col
		best := nf().Abs(n[col*cols+col])
		for r := col + 1; r < cols; r++ {
			abs.Abs(n[r*cols+col])
			if abs.Cmp(best) > 0 {
				pivot = r
				best.Set(abs)
			}
		}
		if best.Sign() == 0 {
			return nil, errors.New("normal equations are singular")
		}
		if pivot != col {
			for c := col; c < cols; c++ {
				n[col*cols+c], n[pivot*cols+c] = n[pivot*cols+c], n[col*cols+c]
			}
			rhs[col], rhs[pivot] = rhs[pivot], rhs[col]
		}
		for r := col + 1; r < cols; r++ {
			if n[r*cols+col].Sign() == 0 {
				continue
			}
			factor := nf().Quo(n[r*cols+col], n[col*cols+col])
			for c := col; c < cols; c++ {
				tmp.Mul(factor, n[col*cols+c])
				n[r*cols+c].Sub(n[r*cols+c], tmp)
			}
			tmp.Mul(factor, rhs[col])
			rhs[r].Sub(rhs[r], tmp)
		}
	}

	sol := make([]*big.Float, cols)
	for r := cols - 1; r >= 0; r-- {
		sum := nf().Set(rhs[r])
		for c := r + 1; c < cols; c++ {
			tmp.Mul(n[r*cols+c], sol[c])
			sum.Sub(sum, tmp)
		}
		sol[r] = sum.Quo(sum, n[r*cols+r])
	}

	coeffs := make([]float64, cols)
	for i, v := range sol {
		coeffs[i], _ = v.Float64()
	}
	return coeffs, nil
}
