// Copyright ©2025 gescholt. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package refine

import (
	"errors"
	"math"

	"github.com/gescholt/globtim/domain"
)

// Termination specifies the stopping criteria for the local descent.
type Termination struct {
	// The descent stop when the number of iteration exceeds limit.
	MaxIterations int
	// The descent stop when the projected gradient satisfied:
	//   ‖ 𝚙𝚛𝚘𝚓 g ‖∞ ≤ 𝚐𝚝𝚘𝚕
	GradTolerance float64
	// The descent stop when the step satisfied: ‖ xₖ₊₁ - xₖ ‖∞ ≤ 𝚡𝚝𝚘𝚕
	StepTolerance float64
	// The descent stop when the function value satisfied:
	//   |fₖ - fₖ₊₁| ≤ 𝚏𝚝𝚘𝚕 × 𝚖𝚊𝚡(|fₖ|,|fₖ₊₁|,1)
	FuncTolerance float64
}

func (t *Termination) defaults() Termination {
	s := *t
	if s.MaxIterations <= 0 {
		s.MaxIterations = 100
	}
	if s.GradTolerance <= 0 {
		s.GradTolerance = 1e-10
	}
	if s.StepTolerance <= 0 {
		s.StepTolerance = 1e-12
	}
	if s.FuncTolerance <= 0 {
		s.FuncTolerance = 1e-14
	}
	return s
}

// Descent is a projected BFGS minimizer over a box. It refines a candidate
// against the true objective to remove polynomial-approximation bias.
type Descent struct {
	Stop   Termination
	Bounds [][2]float64
}

// Result contains the final state of one descent.
type Result struct {
	OK      bool      // Whether the descent converged within budget.
	X       []float64 // Final point, inside the box.
	F       float64   // Final function value.
	G       []float64 // Final gradient.
	NumIter int       // Iterations performed.
	NumEval int       // Function evaluations performed.
}

// Minimize runs the descent from x0. A budget-exhausted run returns the best
// point found with OK=false; only invalid input or a non-finite objective is
// an error.
func (d *Descent) Minimize(f domain.Objective, x0 []float64) (*Result, error) {

	n := len(x0)
	switch {
	case f == nil:
		return nil, errors.New("objective function is required")
	case n == 0:
		return nil, errors.New("descent dimension must greater than 0")
	case d.Bounds != nil && len(d.Bounds) != n:
		return nil, errors.New("bounds size must equal to dimension")
	}

	stop := d.Stop.defaults()

	x := append([]float64(nil), x0...)
	d.project(x)

	g := make([]float64, n)
	fx := f.Eval(x)
	evals := 1
	if math.IsNaN(fx) || math.IsInf(fx, 0) {
		return nil, errNonFinite
	}
	if err := Gradient(f, x, d.Bounds, g); err != nil {
		return nil, err
	}
	evals += 2 * n

	// Inverse Hessian approximation, identity to start.
	hInv := make([]float64, n*n)
	for i := 0; i < n; i++ {
		hInv[i*n+i] = 1
	}

	p := make([]float64, n)
	xNew := make([]float64, n)
	gNew := make([]float64, n)
	s := make([]float64, n)

	res := &Result{X: x, G: g}
	iter := 0
	for ; iter < stop.MaxIterations; iter++ {

		if d.projGradNorm(x, g) <= stop.GradTolerance {
			res.OK = true
			break
		}

		// Search direction p = -H·g, reset to steepest descent when the
		// curvature estimate has gone bad.
		descent := 0.0
		for i := 0; i < n; i++ {
			v := 0.0
			for j := 0; j < n; j++ {
				v -= hInv[i*n+j] * g[j]
			}
			p[i] = v
			descent += v * g[i]
		}
		if descent >= 0 {
			for i := range hInv {
				hInv[i] = 0
			}
			descent = 0
			for i := 0; i < n; i++ {
				hInv[i*n+i] = 1
				p[i] = -g[i]
				descent -= g[i] * g[i]
			}
		}

		// Backtracking Armijo line search with projection onto the box.
		const c1 = 1e-4
		alpha := 1.0
		var fNew float64
		ok := false
		for ls := 0; ls < 40; ls++ {
			for i := 0; i < n; i++ {
				xNew[i] = x[i] + alpha*p[i]
			}
			d.project(xNew)
			fNew = f.Eval(xNew)
			evals++
			slope := 0.0
			for i := 0; i < n; i++ {
				slope += g[i] * (xNew[i] - x[i])
			}
			if !math.IsNaN(fNew) && fNew <= fx+c1*slope {
				ok = true
				break
			}
			alpha /= 2
		}
		if !ok {
			// No decrease along the direction: flat to machine precision.
			res.OK = true
			break
		}

		stepNorm := 0.0
		for i := 0; i < n; i++ {
			s[i] = xNew[i] - x[i]
			stepNorm = math.Max(stepNorm, math.Abs(s[i]))
		}

		if err := Gradient(f, xNew, d.Bounds, gNew); err != nil {
			return nil, err
		}
		evals += 2 * n

		// BFGS inverse update with y = gₖ₊₁ - gₖ, before g is overwritten.
		d.updateInverse(hInv, s, g, gNew, n)

		fDiff := fx - fNew
		copy(x, xNew)
		copy(g, gNew)
		fx = fNew

		if stepNorm <= stop.StepTolerance ||
			fDiff <= stop.FuncTolerance*math.Max(math.Abs(fx), math.Max(math.Abs(fx+fDiff), 1)) {
			res.OK = true
			iter++
			break
		}
	}

	res.X = x
	res.G = g
	res.F = fx
	res.NumIter = iter
	res.NumEval = evals
	return res, nil
}

// updateInverse applies the BFGS inverse-Hessian update
// H ← (I - ρsyᵀ)H(I - ρysᵀ) + ρssᵀ with y = gNew - gOld.
func (d *Descent) updateInverse(hInv, s, gOld, gNew []float64, n int) {
	y := make([]float64, n)
	sy := 0.0
	for i := 0; i < n; i++ {
		y[i] = gNew[i] - gOld[i]
		sy += s[i] * y[i]
	}
	if sy <= 1e-12 {
		return
	}
	rho := 1 / sy

	hy := make([]float64, n)
	for i := 0; i < n; i++ {
		v := 0.0
		for j := 0; j < n; j++ {
			v += hInv[i*n+j] * y[j]
		}
		hy[i] = v
	}
	yhy := 0.0
	for i := 0; i < n; i++ {
		yhy += y[i] * hy[i]
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			hInv[i*n+j] += rho*rho*yhy*s[i]*s[j] + rho*s[i]*s[j] -
				rho*(s[i]*hy[j]+hy[i]*s[j])
		}
	}
}

// project clamps x onto the box.
func (d *Descent) project(x []float64) {
	if d.Bounds == nil {
		return
	}
	for i := range x {
		x[i] = math.Max(d.Bounds[i][0], math.Min(d.Bounds[i][1], x[i]))
	}
}

// projGradNorm is ‖proj g‖∞: gradient components pushing through an active
// bound do not count.
func (d *Descent) projGradNorm(x, g []float64) float64 {
	norm := 0.0
	for i := range g {
		v := g[i]
		if d.Bounds != nil {
			if x[i] <= d.Bounds[i][0] && v > 0 {
				v = 0
			}
			if x[i] >= d.Bounds[i][1] && v < 0 {
				v = 0
			}
		}
		norm = math.Max(norm, math.Abs(v))
	}
	return norm
}
