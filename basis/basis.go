// Copyright ©2025 gescholt. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package basis provides the orthogonal polynomial families used to build
// tensor-product approximants: canonical node sets on [-1,1], three-term
// recurrence evaluation, and conversion to the power (monomial) basis for
// gradient-system export.
package basis

import "math"

// Kind identifies the orthogonal polynomial family of an approximant.
// The family is fixed when a domain is constructed and is never re-dispatched
// from a runtime string.
type Kind int

const (
	// Chebyshev polynomials of the first kind Tₖ.
	Chebyshev Kind = iota
	// Legendre polynomials Pₖ.
	Legendre
)

func (k Kind) String() string {
	switch k {
	case Chebyshev:
		return "chebyshev"
	case Legendre:
		return "legendre"
	}
	return "unknown"
}

// Nodes returns the n canonical sample nodes on [-1,1], in ascending order.
// Chebyshev nodes are the Chebyshev–Gauss points 𝚌𝚘𝚜((i-½)π/n).
// Legendre nodes are the Gauss–Legendre points, the roots of Pₙ,
// located by Newton iteration from the classic cosine estimate.
func (k Kind) Nodes(n int) []float64 {
	if n <= 0 {
		return nil
	}
	u := make([]float64, n)
	switch k {
	case Chebyshev:
		for i := 0; i < n; i++ {
			u[n-1-i] = math.Cos((float64(i) + 0.5) * math.Pi / float64(n))
		}
	case Legendre:
		for i := 1; i <= n; i++ {
			x := math.Cos(math.Pi * (float64(i) - 0.25) / (float64(n) + 0.5))
			for it := 0; it < 64; it++ {
				p, d := legendreND(n, x)
				dx := p / d
				x -= dx
				if math.Abs(dx) < 1e-15 {
					break
				}
			}
			u[n-i] = x
		}
	}
	return u
}

// legendreND evaluates Pₙ and Pₙ′ at x via the recurrence
// (k+1)Pₖ₊₁ = (2k+1)xPₖ - kPₖ₋₁.
func legendreND(n int, x float64) (p, d float64) {
	p0, p1 := 1.0, x
	for k := 1; k < n; k++ {
		p0, p1 = p1, ((2*float64(k)+1)*x*p1-float64(k)*p0)/float64(k+1)
	}
	if n == 0 {
		return 1, 0
	}
	// Pₙ′(x) = n(xPₙ - Pₙ₋₁)/(x²-1)
	d = float64(n) * (x*p1 - p0) / (x*x - 1)
	return p1, d
}

// Eval fills vals[j] = φⱼ(x) for j = 0 … len(vals)-1.
func (k Kind) Eval(x float64, vals []float64) {
	if len(vals) == 0 {
		return
	}
	vals[0] = 1
	if len(vals) == 1 {
		return
	}
	vals[1] = x
	switch k {
	case Chebyshev:
		for j := 2; j < len(vals); j++ {
			vals[j] = 2*x*vals[j-1] - vals[j-2]
		}
	case Legendre:
		for j := 2; j < len(vals); j++ {
			kk := float64(j - 1)
			vals[j] = ((2*kk+1)*x*vals[j-1] - kk*vals[j-2]) / (kk + 1)
		}
	}
}

// EvalDeriv fills vals[j] = φⱼ(x) and d1[j] = φⱼ′(x) by differentiating the
// three-term recurrence. len(d1) must equal len(vals).
func (k Kind) EvalDeriv(x float64, vals, d1 []float64) {
	if len(vals) != len(d1) {
		panic("basis: value and derivative dimension mismatch")
	}
	if len(vals) == 0 {
		return
	}
	vals[0], d1[0] = 1, 0
	if len(vals) == 1 {
		return
	}
	vals[1], d1[1] = x, 1
	switch k {
	case Chebyshev:
		for j := 2; j < len(vals); j++ {
			vals[j] = 2*x*vals[j-1] - vals[j-2]
			d1[j] = 2*vals[j-1] + 2*x*d1[j-1] - d1[j-2]
		}
	case Legendre:
		for j := 2; j < len(vals); j++ {
			kk := float64(j - 1)
			vals[j] = ((2*kk+1)*x*vals[j-1] - kk*vals[j-2]) / (kk + 1)
			d1[j] = ((2*kk+1)*(vals[j-1]+x*d1[j-1]) - kk*d1[j-2]) / (kk + 1)
		}
	}
}

// PowerRows returns the monomial coefficients of φ₀ … φ_deg as rows:
// φⱼ(x) = Σₚ rows[j][p]·xᵖ. Rows are built by the same recurrence applied to
// coefficient vectors.
func (k Kind) PowerRows(deg int) [][]float64 {
	rows := make([][]float64, deg+1)
	for j := range rows {
		rows[j] = make([]float64, deg+1)
	}
	rows[0][0] = 1
	if deg == 0 {
		return rows
	}
	rows[1][1] = 1
	for j := 2; j <= deg; j++ {
		prev, prev2 := rows[j-1], rows[j-2]
		row := rows[j]
		switch k {
		case Chebyshev:
			for p := 0; p < j; p++ {
				row[p+1] += 2 * prev[p]
			}
			for p := 0; p <= j-2; p++ {
				row[p] -= prev2[p]
			}
		case Legendre:
			kk := float64(j - 1)
			for p := 0; p < j; p++ {
				row[p+1] += (2*kk + 1) * prev[p] / (kk + 1)
			}
			for p := 0; p <= j-2; p++ {
				row[p] -= kk * prev2[p] / (kk + 1)
			}
		}
	}
	return rows
}

// Power converts basis coefficients c to monomial coefficients of the same
// length: Σ c[j]·φⱼ = Σ out[p]·xᵖ.
func (k Kind) Power(c []float64) []float64 {
	rows := k.PowerRows(len(c) - 1)
	out := make([]float64, len(c))
	for j, cj := range c {
		if cj == 0 {
			continue
		}
		for p, r := range rows[j] {
			out[p] += cj * r
		}
	}
	return out
}
