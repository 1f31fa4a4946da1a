// Copyright ©2025 gescholt. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package approx

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/gescholt/globtim/basis"
	"github.com/gescholt/globtim/domain"
)

// Approximant is a tensor-product polynomial fit of the objective over the
// canonical box. Evaluating it at the sample grid reproduces the sample
// values up to Residual.
type Approximant struct {
	Kind   basis.Kind
	Degree basis.Degree
	// Coeffs are the basis coefficients in Degree.ForEach order.
	Coeffs []float64
	// Residual is the L2 norm of the approximation error over the grid.
	Residual float64
	// Cond is the design-matrix condition number σ₁/σₘᵢₙ. Large values are
	// a quality signal, not an error.
	Cond float64

	dim int
}

// Build samples the domain and fits an approximant of the given per-axis
// degree. High conditioning and large residuals are reported on the result;
// only an ill-posed degree/sample-count relation is an error.
func (b *Builder) Build(ctx context.Context, dom *domain.Domain, deg basis.Degree) (*Approximant, error) {

	switch {
	case !deg.Valid():
		return nil, errors.New("approximant degree must be at least 1 on every axis")
	case len(deg) != dom.Dim():
		return nil, errors.New("degree size must equal to dimension")
	}
	for a, d := range deg {
		// Strictly more samples than basis functions per axis keeps the
		// least-squares system overdetermined.
		if dom.Samples() <= d+1 {
			return nil, fmt.Errorf("sample count must exceed basis size on axis %d", a)
		}
	}

	set, err := b.Sample(ctx, dom)
	if err != nil {
		return nil, err
	}

	kind := dom.Basis()
	rows, cols := set.Len(), deg.Size()
	samples, dim := dom.Samples(), dom.Dim()

	// Per-axis basis values at every node.
	axisVals := make([][]float64, samples)
	for n := range axisVals {
		axisVals[n] = make([]float64, deg.Max()+1)
		kind.Eval(set.Nodes[n], axisVals[n])
	}

	design := mat.NewDense(rows, cols, nil)
	nodeIdx := make([]int, dim)
	for r := 0; r < rows; r++ {
		rem := r
		for a := dim - 1; a >= 0; a-- {
			nodeIdx[a] = rem % samples
			rem /= samples
		}
		deg.ForEach(func(flat int, idx []int) {
			v := 1.0
			for a, j := range idx {
				v *= axisVals[nodeIdx[a]][j]
			}
			design.Set(r, flat, v)
		})
	}

	var coeffs []float64
	var cond float64
	switch dom.Precision() {
	case domain.Extended:
		coeffs, err = bigLstsq(design, set.Values, dom.MantissaBits())
		if err != nil {
			return nil, err
		}
		_, cond, err = svdLstsq(design, set.Values)
	default:
		coeffs, cond, err = svdLstsq(design, set.Values)
	}
	if err != nil {
		return nil, err
	}

	// Residual L2 over the grid.
	resid := 0.0
	for r := 0; r < rows; r++ {
		pred := 0.0
		for c := 0; c < cols; c++ {
			pred += design.At(r, c) * coeffs[c]
		}
		d := pred - set.Values[r]
		resid += d * d
	}

	return &Approximant{
		Kind:     kind,
		Degree:   append(basis.Degree(nil), deg...),
		Coeffs:   coeffs,
		Residual: math.Sqrt(resid),
		Cond:     cond,
		dim:      dim,
	}, nil
}

// svdLstsq solves min‖A·c - y‖₂ by thin SVD and reports the condition number.
func svdLstsq(a *mat.Dense, y []float64) (coeffs []float64, cond float64, err error) {

	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDThin); !ok {
		return nil, 0, errors.New("design matrix SVD failed to converge")
	}

	s := svd.Values(nil)
	if s[len(s)-1] <= 0 {
		cond = math.Inf(1)
	} else {
		cond = s[0] / s[len(s)-1]
	}

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	rows, cols := a.Dims()
	cutoff := float64(max(rows, cols)) * s[0] * 1e-15
	coeffs = make([]float64, cols)
	for j := range s {
		if s[j] <= cutoff {
			continue
		}
		w := 0.0
		for r := 0; r < rows; r++ {
			w += u.At(r, j) * y[r]
		}
		w /= s[j]
		for c := 0; c < cols; c++ {
			coeffs[c] += v.At(c, j) * w
		}
	}
	return coeffs, cond, nil
}

// Evaluate computes the approximant at a canonical point u.
func (p *Approximant) Evaluate(u []float64) float64 {
	if len(u) != p.dim {
		panic("approx: point dimension not match approximant")
	}
	axisVals := make([][]float64, p.dim)
	for a := range axisVals {
		axisVals[a] = make([]float64, p.Degree[a]+1)
		p.Kind.Eval(u[a], axisVals[a])
	}
	sum := 0.0
	p.Degree.ForEach(func(flat int, idx []int) {
		v := p.Coeffs[flat]
		if v == 0 {
			return
		}
		for a, j := range idx {
			v *= axisVals[a][j]
		}
		sum += v
	})
	return sum
}

// Dim returns the approximant's spatial dimension.
func (p *Approximant) Dim() int { return p.dim }
