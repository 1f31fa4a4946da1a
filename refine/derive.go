// Package refine turns filtered solver candidates into certified critical
// points: bounded quasi-Newton descent against the true objective, Hessian
// eigenvalue classification, and order-independent local deduplication.
package refine

import (
	"errors"
	"math"

	"github.com/gescholt/globtim/domain"
)

var (
	cubeEps  = math.Pow(math.Nextafter(1, 2)-1, float64(1)/3)
	quartEps = math.Pow(math.Nextafter(1, 2)-1, float64(1)/4)
)

var errNonFinite = errors.New("derivative evaluation is not finite")

// Gradient estimates ∇f at x into g. Exact derivatives are used when the
// objective provides them; otherwise central differences with steps
// h = ∛𝚎𝚙𝚜𝚖𝚌𝚑 × 𝚖𝚊𝚡(1,|xᵢ|), flipped to a second order one-sided stencil
// when the central one would leave the box.
func Gradient(f domain.Objective, x []float64, bounds [][2]float64, g []float64) error {

	if gf, ok := f.(domain.GradObjective); ok {
		gf.Grad(x, g)
		for _, v := range g {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return errNonFinite
			}
		}
		return nil
	}

	f0 := math.NaN()
	for i := range x {
		h := cubeEps * math.Max(1, math.Abs(x[i]))
		t := x[i]

		lo, hi := math.Inf(-1), math.Inf(1)
		if bounds != nil {
			lo, hi = bounds[i][0], bounds[i][1]
		}

		var d float64
		switch {
		case t-h >= lo && t+h <= hi:
			x[i] = t - h
			f1 := f.Eval(x)
			x[i] = t + h
			f2 := f.Eval(x)
			d = (f2 - f1) / (2 * h)
		case t+2*h <= hi:
			if math.IsNaN(f0) {
				x[i] = t
				f0 = f.Eval(x)
			}
			x[i] = t + h
			f1 := f.Eval(x)
			x[i] = t + 2*h
			f2 := f.Eval(x)
			d = (4*f1 - 3*f0 - f2) / (2 * h)
		default:
			if math.IsNaN(f0) {
				x[i] = t
				f0 = f.Eval(x)
			}
			x[i] = t - h
			f1 := f.Eval(x)
			x[i] = t - 2*h
			f2 := f.Eval(x)
			d = (3*f0 - 4*f1 + f2) / (2 * h)
		}
		x[i] = t

		if math.IsNaN(d) || math.IsInf(d, 0) {
			return errNonFinite
		}
		g[i] = d
	}
	return nil
}

// Hessian estimates ∇²f at x into the row-major d×d slice hess with central
// second differences at steps h = ⁴√𝚎𝚙𝚜𝚖𝚌𝚑 × 𝚖𝚊𝚡(1,|xᵢ|). The stencil may
// poke slightly outside the box; the objective contract requires
// evaluability in a neighborhood of the domain.
func Hessian(f domain.Objective, x []float64, hess []float64) error {

	n := len(x)
	if len(hess) != n*n {
		return errors.New("hessian size must equal to dimension squared")
	}

	if hf, ok := f.(domain.HessObjective); ok {
		hf.Hess(x, hess)
		for _, v := range hess {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return errNonFinite
			}
		}
		return nil
	}

	step := make([]float64, n)
	for i := range x {
		step[i] = quartEps * math.Max(1, math.Abs(x[i]))
	}

	f0 := f.Eval(x)
	for i := 0; i < n; i++ {
		ti, hi := x[i], step[i]

		x[i] = ti + hi
		fp := f.Eval(x)
		x[i] = ti - hi
		fm := f.Eval(x)
		x[i] = ti
		hess[i*n+i] = (fp - 2*f0 + fm) / (hi * hi)

		for j := i + 1; j < n; j++ {
			tj, hj := x[j], step[j]

			x[i], x[j] = ti+hi, tj+hj
			fpp := f.Eval(x)
			x[i], x[j] = ti+hi, tj-hj
			fpm := f.Eval(x)
			x[i], x[j] = ti-hi, tj+hj
			fmp := f.Eval(x)
			x[i], x[j] = ti-hi, tj-hj
			fmm := f.Eval(x)
			x[i], x[j] = ti, tj

			v := (fpp - fpm - fmp + fmm) / (4 * hi * hj)
			hess[i*n+j] = v
			hess[j*n+i] = v
		}
	}

	for _, v := range hess {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errNonFinite
		}
	}
	return nil
}
