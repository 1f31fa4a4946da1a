// Copyright ©2025 gescholt. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package approx

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gescholt/globtim/basis"
	"github.com/gescholt/globtim/domain"
)

func newDomain(t *testing.T, spec domain.Spec) *domain.Domain {
	t.Helper()
	d, err := spec.New()
	require.NoError(t, err)
	return d
}

func quadratic(x []float64) float64 {
	// (x-0.3)² + (y+0.1)²
	dx, dy := x[0]-0.3, x[1]+0.1
	return dx*dx + dy*dy
}

func TestBuildExactRecovery(t *testing.T) {
	dom := newDomain(t, domain.Spec{
		Objective: domain.Func(quadratic),
		Dim:       2,
		Center:    []float64{0, 0},
		HalfWidth: []float64{1},
		Samples:   8,
		Basis:     basis.Chebyshev,
	})

	b := Builder{}
	p, err := b.Build(context.Background(), dom, basis.Uniform(2, 3))
	require.NoError(t, err)

	// A degree-2 polynomial fitted at degree 3 is reproduced exactly.
	require.Less(t, p.Residual, 1e-10)
	require.Greater(t, p.Cond, 1.0)
	require.False(t, math.IsInf(p.Cond, 1))

	// The approximant agrees with the objective away from sample nodes.
	u := []float64{0.21, -0.63}
	x := make([]float64, 2)
	dom.Map(u, x)
	require.InDelta(t, quadratic(x), p.Evaluate(u), 1e-10)
}

func TestBuildLegendre(t *testing.T) {
	dom := newDomain(t, domain.Spec{
		Objective: domain.Func(quadratic),
		Dim:       2,
		Center:    []float64{0.5, -0.5},
		HalfWidth: []float64{0.75, 1.5},
		Samples:   7,
		Basis:     basis.Legendre,
	})

	p, err := (&Builder{Workers: 2}).Build(context.Background(), dom, basis.Uniform(2, 2))
	require.NoError(t, err)
	require.Less(t, p.Residual, 1e-10)
}

func TestBuildExtendedPrecision(t *testing.T) {
	dom := newDomain(t, domain.Spec{
		Objective: domain.Func(quadratic),
		Dim:       2,
		Center:    []float64{0, 0},
		HalfWidth: []float64{1},
		Samples:   8,
		Basis:     basis.Chebyshev,
		Precision: domain.Extended,
	})

	p, err := (&Builder{}).Build(context.Background(), dom, basis.Uniform(2, 3))
	require.NoError(t, err)
	require.Less(t, p.Residual, 1e-10)
	require.Greater(t, p.Cond, 1.0)
}

func TestBuildInputValidation(t *testing.T) {
	dom := newDomain(t, domain.Spec{
		Objective: domain.Func(quadratic),
		Dim:       2,
		Center:    []float64{0, 0},
		HalfWidth: []float64{1},
		Samples:   4,
		Basis:     basis.Chebyshev,
	})

	b := Builder{}
	_, err := b.Build(context.Background(), dom, basis.Degree{3, 0})
	require.Error(t, err)
	_, err = b.Build(context.Background(), dom, basis.Uniform(3, 2))
	require.Error(t, err)
	// samples=4 cannot support degree 3 (4 basis functions per axis).
	_, err = b.Build(context.Background(), dom, basis.Uniform(2, 3))
	require.Error(t, err)
	_, err = b.Build(context.Background(), dom, basis.Uniform(2, 2))
	require.NoError(t, err)
}

func TestBuildNonFiniteObjective(t *testing.T) {
	dom := newDomain(t, domain.Spec{
		Objective: domain.Func(func(x []float64) float64 { return math.Log(x[0]) }),
		Dim:       1,
		Center:    []float64{0},
		HalfWidth: []float64{1},
		Samples:   6,
		Basis:     basis.Chebyshev,
	})
	_, err := (&Builder{}).Build(context.Background(), dom, basis.Uniform(1, 3))
	require.Error(t, err)
}

func TestGradientSystem(t *testing.T) {
	dom := newDomain(t, domain.Spec{
		Objective: domain.Func(quadratic),
		Dim:       2,
		Center:    []float64{0, 0},
		HalfWidth: []float64{1},
		Samples:   8,
		Basis:     basis.Chebyshev,
	})

	p, err := (&Builder{}).Build(context.Background(), dom, basis.Uniform(2, 3))
	require.NoError(t, err)

	sys := p.GradientSystem(1e-10)
	require.NoError(t, sys.Validate())
	require.Equal(t, 2, sys.Vars)
	// ∇ of a separable quadratic: both equations are linear.
	require.Equal(t, []int{1, 1}, sys.Degrees())

	// The unique root is the canonical image of the minimum (0.3, -0.1).
	// 2(x-0.3) = 0 → u₀ = 0.3, 2(y+0.1) = 0 → u₁ = -0.1.
	z := []complex128{complex(0.3, 0), complex(-0.1, 0)}
	f := make([]complex128, 2)
	sys.EvalAll(z, f)
	for i := range f {
		require.InDelta(t, 0, real(f[i]), 1e-9)
		require.InDelta(t, 0, imag(f[i]), 1e-12)
	}
}

func TestSamplePoint(t *testing.T) {
	dom := newDomain(t, domain.Spec{
		Objective: domain.Func(quadratic),
		Dim:       2,
		Center:    []float64{1, 2},
		HalfWidth: []float64{0.5},
		Samples:   5,
		Basis:     basis.Chebyshev,
	})
	set, err := (&Builder{}).Sample(context.Background(), dom)
	require.NoError(t, err)
	require.Equal(t, 25, set.Len())

	x := make([]float64, 2)
	for i := 0; i < set.Len(); i++ {
		set.Point(dom, i, x)
		require.InDelta(t, quadratic(x), set.Values[i], 1e-15)
	}
}
