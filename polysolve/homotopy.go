// Copyright ©2025 gescholt. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package polysolve

import (
	"context"
	"errors"
	"math"
	"math/cmplx"
	"math/rand"
)

// Homotopy is the default complete solver: total-degree homotopy continuation
// with the gamma trick. The start system zᵢ^{dᵢ} = bᵢ has Πdᵢ known roots;
// each is tracked along H(z,t) = t·γ·G(z) + (1-t)·F(z) from t=1 to t=0 with
// an Euler predictor, a Newton corrector and adaptive step halving, then
// polished against F. Paths escaping to infinity correspond to solutions at
// infinity and are dropped.
type Homotopy struct {
	// Steps is the initial number of path steps (default 64).
	Steps int
	// Corrector is the Newton corrections per step (default 3).
	Corrector int
	// Polish is the Newton iteration budget at t=0 (default 20).
	Polish int
	// Seed fixes the gamma and start-system constants, keeping runs
	// deterministic (default 1).
	Seed int64
}

const (
	pathEscape  = 1e8   // |z| beyond which a path is declared divergent
	pathMinStep = 1e-10 // smallest step before a path is abandoned
	solveDedup  = 1e-8  // distance below which two end points are one root
)

// Solve implements Solver.
func (h Homotopy) Solve(ctx context.Context, sys System) ([]Solution, error) {

	if err := sys.Validate(); err != nil {
		return nil, err
	}

	degs := sys.Degrees()
	for _, d := range degs {
		if d == -1 {
			return nil, errors.New("degenerate system: identically zero equation")
		}
		if d == 0 {
			// A nonzero constant equation is unsatisfiable: no solutions.
			return nil, nil
		}
	}

	steps := h.Steps
	if steps <= 0 {
		steps = 64
	}
	corrector := h.Corrector
	if corrector <= 0 {
		corrector = 3
	}
	polish := h.Polish
	if polish <= 0 {
		polish = 20
	}
	seed := h.Seed
	if seed == 0 {
		seed = 1
	}

	d := sys.Vars
	rng := rand.New(rand.NewSource(seed))
	gamma := cmplx.Exp(complex(0, 2*math.Pi*rng.Float64()))
	b := make([]complex128, d)
	for a := range b {
		b[a] = cmplx.Exp(complex(0, 2*math.Pi*rng.Float64()))
	}

	tr := tracker{
		sys:   sys,
		degs:  degs,
		gamma: gamma,
		b:     b,
		f:     make([]complex128, d),
		jac:   make([]complex128, d*d),
		dz:    make([]complex128, d),
		zNew:  make([]complex128, d),
	}

	var sols []Solution
	idx := make([]int, d)
	total := sys.TotalDegree()
	for path := 0; path < total; path++ {
		select {
		case <-ctx.Done():
			return sols, ctx.Err()
		default:
		}

		z := make([]complex128, d)
		for a := range z {
			root := cmplx.Pow(b[a], complex(1/float64(degs[a]), 0))
			z[a] = root * cmplx.Exp(complex(0, 2*math.Pi*float64(idx[a])/float64(degs[a])))
		}
		for a := d - 1; a >= 0; a-- {
			idx[a]++
			if idx[a] < degs[a] {
				break
			}
			idx[a] = 0
		}

		if !tr.track(z, steps, corrector) {
			continue
		}
		if !tr.polish(z, polish) {
			continue
		}

		dup := false
		for _, s := range sols {
			if zdist(s, z) < solveDedup {
				dup = true
				break
			}
		}
		if !dup {
			sols = append(sols, Solution(z))
		}
	}
	return sols, nil
}

type tracker struct {
	sys   System
	degs  []int
	gamma complex128
	b     []complex128

	f, jac, dz, zNew []complex128
}

// startEval returns G(z) and ∂G/∂zₐ for the start equation a.
func (tr *tracker) startEval(z []complex128, a int) (g, dg complex128) {
	p := zpow(z[a], tr.degs[a]-1)
	return p*z[a] - tr.b[a], complex(float64(tr.degs[a]), 0) * p
}

// homEval fills f and jac with H(z,t) and ∂H/∂z.
func (tr *tracker) homEval(z []complex128, t float64) {
	d := tr.sys.Vars
	ct := complex(t, 0) * tr.gamma
	cf := complex(1-t, 0)
	tr.sys.EvalAll(z, tr.f)
	tr.sys.Jacobian(z, tr.jac)
	for i := 0; i < d; i++ {
		g, dg := tr.startEval(z, i)
		tr.f[i] = ct*g + cf*tr.f[i]
		for a := 0; a < d; a++ {
			tr.jac[i*d+a] *= cf
		}
		tr.jac[i*d+i] += ct * dg
	}
}

// track follows one path from t=1 to t=0, updating z in place.
func (tr *tracker) track(z []complex128, steps, corrector int) bool {
	d := tr.sys.Vars
	t := 1.0
	dt := 1.0 / float64(steps)
	for t > 0 {
		step := math.Min(dt, t)
		tNew := t - step

		// Euler predictor: ∂H/∂z · dz = -∂H/∂t · (-step), with
		// ∂H/∂t = γG(z) - F(z).
		tr.homEval(z, t)
		tr.sys.EvalAll(z, tr.zNew)
		for i := 0; i < d; i++ {
			g, _ := tr.startEval(z, i)
			tr.dz[i] = complex(step, 0) * (tr.gamma*g - tr.zNew[i])
		}
		if !csolve(tr.jac, tr.dz, d) {
			if step <= pathMinStep {
				return false
			}
			dt = step / 2
			continue
		}
		for a := 0; a < d; a++ {
			tr.zNew[a] = z[a] + tr.dz[a]
		}

		// Newton corrector at tNew.
		ok := true
		for c := 0; c < corrector; c++ {
			tr.homEval(tr.zNew, tNew)
			for i := 0; i < d; i++ {
				tr.dz[i] = -tr.f[i]
			}
			if !csolve(tr.jac, tr.dz, d) {
				ok = false
				break
			}
			for a := 0; a < d; a++ {
				tr.zNew[a] += tr.dz[a]
			}
		}
		if ok {
			tr.homEval(tr.zNew, tNew)
			res := 0.0
			for _, v := range tr.f {
				res = math.Max(res, cmplx.Abs(v))
			}
			ok = res < 1e-4
		}
		if !ok {
			if step <= pathMinStep {
				return false
			}
			dt = step / 2
			continue
		}

		copy(z, tr.zNew)
		t = tNew
		dt = math.Min(dt*2, 1.0/8)
		for _, v := range z {
			if cmplx.Abs(v) > pathEscape {
				return false
			}
		}
	}
	return true
}

// polish runs plain Newton on F from the path end point.
func (tr *tracker) polish(z []complex128, iters int) bool {
	d := tr.sys.Vars
	for it := 0; it < iters; it++ {
		if tr.sys.residual(z, tr.f) < 1e-12 {
			return true
		}
		tr.sys.Jacobian(z, tr.jac)
		for i := 0; i < d; i++ {
			tr.dz[i] = -tr.f[i]
		}
		if !csolve(tr.jac, tr.dz, d) {
			return false
		}
		for a := 0; a < d; a++ {
			z[a] += tr.dz[a]
		}
	}
	return tr.sys.residual(z, tr.f) < 1e-8
}

func zdist(a, b []complex128) float64 {
	m := 0.0
	for i := range a {
		m = math.Max(m, cmplx.Abs(a[i]-b[i]))
	}
	return m
}

// csolve solves the dense n×n complex system a·x = rhs in place by Gaussian
// elimination with partial pivoting. rhs receives the solution. Returns false
// on a numerically singular matrix. a is clobbered.
func csolve(a, rhs []complex128, n int) bool {
	for col := 0; col < n; col++ {
		pivot, best := col, cmplx.Abs(a[col*n+col])
		for r := col + 1; r < n; r++ {
			if v := cmplx.Abs(a[r*n+col]); v > best {
				pivot, best = r, v
			}
		}
		if best < 1e-300 {
			return false
		}
		if pivot != col {
			for c := col; c < n; c++ {
				a[col*n+c], a[pivot*n+c] = a[pivot*n+c], a[col*n+c]
			}
			rhs[col], rhs[pivot] = rhs[pivot], rhs[col]
		}
		inv := 1 / a[col*n+col]
		for r := col + 1; r < n; r++ {
			factor := a[r*n+col] * inv
			if factor == 0 {
				continue
			}
			for c := col; c < n; c++ {
				a[r*n+c] -= factor * a[col*n+c]
			}
			rhs[r] -= factor * rhs[col]
		}
	}
	for r := n - 1; r >= 0; r-- {
		sum := rhs[r]
		for c := r + 1; c < n; c++ {
			sum -= a[r*n+c] * rhs[c]
		}
		rhs[r] = sum / a[r*n+r]
	}
	return true
}
