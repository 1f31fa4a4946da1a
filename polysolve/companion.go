// Copyright ©2025 gescholt. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package polysolve

import (
	"context"
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Companion is a complete solver for univariate systems: the roots are the
// eigenvalues of the companion matrix of the polynomial.
type Companion struct{}

// Solve implements Solver for Vars == 1.
func (Companion) Solve(_ context.Context, sys System) ([]Solution, error) {

	if err := sys.Validate(); err != nil {
		return nil, err
	}
	if sys.Vars != 1 {
		return nil, errors.New("companion solver handles univariate systems only")
	}

	deg := sys.Degrees()[0]
	coeffs := make([]float64, deg+1)
	for _, t := range sys.Eqs[0] {
		coeffs[t.Exp[0]] += t.Coeff
	}

	// Drop a numerically vanishing leading coefficient.
	scale := 0.0
	for _, c := range coeffs {
		scale = math.Max(scale, math.Abs(c))
	}
	if scale == 0 {
		return nil, errors.New("degenerate system: identically zero equation")
	}
	n := len(coeffs) - 1
	for n > 0 && math.Abs(coeffs[n]) <= 1e-14*scale {
		n--
	}
	if n == 0 {
		// Nonzero constant: no roots.
		return nil, nil
	}

	comp := mat.NewDense(n, n, nil)
	for i := 1; i < n; i++ {
		comp.Set(i, i-1, 1)
	}
	for i := 0; i < n; i++ {
		comp.Set(i, n-1, -coeffs[i]/coeffs[n])
	}

	var eig mat.Eigen
	if ok := eig.Factorize(comp, mat.EigenNone); !ok {
		return nil, errors.New("companion eigenvalue decomposition failed")
	}

	values := eig.Values(nil)
	sols := make([]Solution, len(values))
	for i, v := range values {
		sols[i] = Solution{v}
	}
	return sols, nil
}
