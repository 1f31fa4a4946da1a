// Copyright ©2025 gescholt. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package polysolve

import (
	"context"
	"math"
)

// Solution is one (possibly complex) solution vector of a System.
type Solution []complex128

// Solver is the external algebraic-solver boundary. Implementations are
// expected to return every isolated complex solution of the system, bounded
// by its total degree. Solve must honor context cancellation: a degenerate
// system may otherwise block a caller for an unbounded time.
type Solver interface {
	Solve(ctx context.Context, sys System) ([]Solution, error)
}

// Filter reduces raw solver output to real candidates inside the canonical
// box [-1,1]ᵈ. Solutions failing either test are approximation artifacts,
// not critical points of the objective.
type Filter struct {
	// ImagTol is the largest imaginary magnitude per coordinate for a
	// solution to count as real (default 1e-8).
	ImagTol float64
	// BoxSlack widens the canonical box acceptance to 1+BoxSlack so roots
	// sitting numerically on the boundary survive; accepted points are
	// clamped back onto the box (default 1e-9).
	BoxSlack float64
}

// RealInBox returns the real canonical points of the solutions that pass
// both the imaginary-part and box tests.
func (f Filter) RealInBox(sols []Solution) [][]float64 {
	imagTol := f.ImagTol
	if imagTol == 0 {
		imagTol = 1e-8
	}
	slack := f.BoxSlack
	if slack == 0 {
		slack = 1e-9
	}

	var pts [][]float64
next:
	for _, s := range sols {
		u := make([]float64, len(s))
		for a, z := range s {
			if math.Abs(imag(z)) > imagTol {
				continue next
			}
			re := real(z)
			if math.Abs(re) > 1+slack {
				continue next
			}
			u[a] = math.Max(-1, math.Min(1, re))
		}
		pts = append(pts, u)
	}
	return pts
}
