// Copyright ©2025 gescholt. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package polysolve defines the algebraic-solver boundary: a power-basis
// representation of square polynomial systems, the Solver interface through
// which a complete equation solver is plugged in, and filtering of raw
// solutions down to real, in-box candidates.
package polysolve

import (
	"errors"
	"math"
	"math/cmplx"
)

// Term is a single power-basis monomial coeff·Πₐ zₐ^Exp[a].
type Term struct {
	Coeff float64
	Exp   []int
}

// System is a square polynomial system over the canonical box variables:
// d equations in d unknowns.
type System struct {
	Vars int
	Eqs  [][]Term
}

// Validate checks that the system is square and every term matches Vars.
func (s System) Validate() error {
	switch {
	case s.Vars <= 0:
		return errors.New("system must have at least one variable")
	case len(s.Eqs) != s.Vars:
		return errors.New("system must be square")
	}
	for _, eq := range s.Eqs {
		for _, t := range eq {
			if len(t.Exp) != s.Vars {
				return errors.New("term exponent size must equal to variable count")
			}
		}
	}
	return nil
}

// Degrees returns the total degree of every equation.
// An equation with no terms has degree -1.
func (s System) Degrees() []int {
	degs := make([]int, len(s.Eqs))
	for i, eq := range s.Eqs {
		degs[i] = -1
		for _, t := range eq {
			td := 0
			for _, e := range t.Exp {
				td += e
			}
			degs[i] = max(degs[i], td)
		}
	}
	return degs
}

// TotalDegree returns the Bézout number Πᵢ deg(eqᵢ), the upper bound on the
// count of isolated solutions. Constant equations contribute a factor of 0.
func (s System) TotalDegree() int {
	n := 1
	for _, d := range s.Degrees() {
		if d < 1 {
			return 0
		}
		n *= d
	}
	return n
}

func zpow(z complex128, e int) complex128 {
	p := complex(1, 0)
	for ; e > 0; e-- {
		p *= z
	}
	return p
}

// Eval evaluates equation i at z.
func (s System) Eval(i int, z []complex128) complex128 {
	var sum complex128
	for _, t := range s.Eqs[i] {
		v := complex(t.Coeff, 0)
		for a, e := range t.Exp {
			v *= zpow(z[a], e)
		}
		sum += v
	}
	return sum
}

// EvalAll stores every equation value at z into f.
func (s System) EvalAll(z, f []complex128) {
	for i := range s.Eqs {
		f[i] = s.Eval(i, z)
	}
}

// Jacobian stores ∂eqᵢ/∂zₐ at z into the row-major d×d slice jac.
func (s System) Jacobian(z, jac []complex128) {
	d := s.Vars
	for i := range jac {
		jac[i] = 0
	}
	for i, eq := range s.Eqs {
		for _, t := range eq {
			for v, ev := range t.Exp {
				if ev == 0 {
					continue
				}
				p := complex(t.Coeff*float64(ev), 0)
				for a, e := range t.Exp {
					if a == v {
						p *= zpow(z[a], e-1)
					} else {
						p *= zpow(z[a], e)
					}
				}
				jac[i*d+v] += p
			}
		}
	}
}

// residual returns ‖F(z)‖∞.
func (s System) residual(z, f []complex128) float64 {
	s.EvalAll(z, f)
	r := 0.0
	for _, v := range f {
		r = math.Max(r, cmplx.Abs(v))
	}
	return r
}
