// Copyright ©2025 gescholt. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package refine

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/gescholt/globtim/domain"
)

// Classify computes the Hessian of f at x and classifies the point by
// eigenvalue signs. zeroBand is the numerical-zero width, relative to the
// eigenvalue scale: |λ| inside it makes the point Degenerate. Any Hessian or
// eigenvalue failure degrades to Unknown with nil eigenvalues; it never
// aborts a batch.
func Classify(f domain.Objective, x []float64, zeroBand float64) (Class, []float64) {

	n := len(x)
	hess := make([]float64, n*n)
	if err := Hessian(f, x, hess); err != nil {
		return Unknown, nil
	}

	// Symmetrize: finite differences leave the off-diagonal pairs equal by
	// construction, exact objectives might not.
	sym := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			sym.SetSym(i, j, (hess[i*n+j]+hess[j*n+i])/2)
		}
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(sym, false); !ok {
		return Unknown, nil
	}
	eigs := eig.Values(nil)

	scale := 0.0
	for _, v := range eigs {
		scale = math.Max(scale, math.Abs(v))
	}
	band := zeroBand * math.Max(1, scale)

	pos, neg := 0, 0
	for _, v := range eigs {
		switch {
		case math.Abs(v) <= band:
			return Degenerate, eigs
		case v > 0:
			pos++
		default:
			neg++
		}
	}
	switch {
	case neg == 0:
		return Minimum, eigs
	case pos == 0:
		return Maximum, eigs
	}
	return Saddle, eigs
}
