// Copyright ©2025 gescholt. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package approx

import (
	"math"

	"github.com/gescholt/globtim/polysolve"
)

// GradientSystem derives the critical system ∇p = 0 of the approximant in
// power basis over the canonical variables. trim drops terms whose
// coefficient magnitude falls below trim·max|coeff| per equation; sampling
// noise otherwise inflates every equation to the full tensor degree, and
// with it the Bézout bound the algebraic solver has to track.
func (p *Approximant) GradientSystem(trim float64) polysolve.System {

	dim := p.dim
	// Strides of the power tensor, same shape as the coefficient tensor.
	size := p.Degree.Size()
	stride := make([]int, dim)
	st := 1
	for a := dim - 1; a >= 0; a-- {
		stride[a] = st
		st *= p.Degree[a] + 1
	}

	// Change of basis: apply the per-axis basis→monomial matrix along every
	// axis of the coefficient tensor.
	power := append([]float64(nil), p.Coeffs...)
	next := make([]float64, size)
	for a := 0; a < dim; a++ {
		rows := p.Kind.PowerRows(p.Degree[a])
		n := p.Degree[a] + 1
		for i := range next {
			next[i] = 0
		}
		// Iterate over all positions with axis a factored out.
		outer := size / n
		for o := 0; o < outer; o++ {
			base := (o/stride[a])*(stride[a]*n) + o%stride[a]
			for j := 0; j < n; j++ {
				c := power[base+j*stride[a]]
				if c == 0 {
					continue
				}
				for q, r := range rows[j] {
					next[base+q*stride[a]] += c * r
				}
			}
		}
		power, next = next, power
	}

	eqs := make([][]polysolve.Term, dim)
	exp := make([]int, dim)
	for v := 0; v < dim; v++ {
		var eq []polysolve.Term
		maxAbs := 0.0
		for flat, c := range power {
			if c == 0 {
				continue
			}
			rem := flat
			for a := 0; a < dim; a++ {
				exp[a] = rem / stride[a]
				rem %= stride[a]
			}
			if exp[v] == 0 {
				continue
			}
			coeff := c * float64(exp[v])
			e := append([]int(nil), exp...)
			e[v]--
			eq = append(eq, polysolve.Term{Coeff: coeff, Exp: e})
			maxAbs = math.Max(maxAbs, math.Abs(coeff))
		}
		if trim > 0 && maxAbs > 0 {
			kept := eq[:0]
			for _, t := range eq {
				if math.Abs(t.Coeff) > trim*maxAbs {
					kept = append(kept, t)
				}
			}
			eq = kept
		}
		eqs[v] = eq
	}

	return polysolve.System{Vars: dim, Eqs: eqs}
}
