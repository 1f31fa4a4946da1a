// Copyright ©2025 gescholt. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package globtim

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gescholt/globtim/basis"
	"github.com/gescholt/globtim/domain"
	"github.com/gescholt/globtim/polysolve"
	"github.com/gescholt/globtim/refine"
)

// wellTerm is a degree-6 well with stationary points at 0, ±0.5 and ±0.9:
// p′(x) = x(x²-0.25)(x²-0.81).
func wellTerm(v float64) float64 {
	v2 := v * v
	return v2*v2*v2/6 - 1.06*v2*v2/4 + 0.2025*v2/2
}

var wellRoots = []float64{-0.9, -0.5, 0, 0.5, 0.9}

// well2 has exactly five critical points, all with y = 0:
// three minima (x = 0, ±0.9) and two saddles (x = ±0.5).
func well2(x, y float64) float64 {
	return wellTerm(x) + y*y/2
}

func TestDecomposedWell2D(t *testing.T) {
	dom := newDomain(t, domain.Spec{
		Objective: domain.Func(func(x []float64) float64 { return well2(x[0], x[1]) }),
		Dim:       2,
		Center:    []float64{0, 0},
		HalfWidth: []float64{1},
		Samples:   8,
		Basis:     basis.Chebyshev,
	})
	subs, err := dom.Orthants(0.1)
	require.NoError(t, err)
	require.Len(t, subs, 4)

	c := newCertifier(t, Pipeline{Degree: basis.Degree{6, 2}, DedupTol: 0.02})
	rep, err := c.RunDecomposed(context.Background(), subs)
	require.NoError(t, err)

	require.Len(t, rep.Points, 5)
	require.Equal(t, Flag(0), rep.Flags)
	require.Len(t, rep.Subdomains, 4)

	minima, saddles := 0, 0
	for i, p := range rep.Points {
		require.InDelta(t, wellRoots[i], p.X[0], 1e-6)
		require.InDelta(t, 0, p.X[1], 1e-6)
		require.True(t, p.Converged)
		require.NotEmpty(t, p.Subdomain)
		switch p.Class {
		case refine.Minimum:
			minima++
		case refine.Saddle:
			saddles++
		}
	}
	require.Equal(t, 3, minima)
	require.Equal(t, 2, saddles)
}

func TestDecomposedTensor4D(t *testing.T) {
	if testing.Short() {
		t.Skip("16-orthant 4D decomposition is slow")
	}

	// Sum of two independent 2D terms: the merged result must contain the
	// full tensor product of the sub-problem's critical points, 5×5 = 25.
	f := func(x []float64) float64 {
		return well2(x[0], x[1]) + well2(x[2], x[3])
	}
	dom := newDomain(t, domain.Spec{
		Objective: domain.Func(f),
		Dim:       4,
		Center:    []float64{0, 0, 0, 0},
		HalfWidth: []float64{1},
		Samples:   8,
		Basis:     basis.Chebyshev,
	})
	subs, err := dom.Orthants(0.1)
	require.NoError(t, err)
	require.Len(t, subs, 16)

	const dedupTol = 0.02
	c := newCertifier(t, Pipeline{Degree: basis.Degree{6, 2, 6, 2}, DedupTol: dedupTol})
	rep, err := c.RunDecomposed(context.Background(), subs)
	require.NoError(t, err)

	require.Len(t, rep.Points, 25)
	require.Equal(t, Flag(0), rep.Flags)

	// No surviving pair lies within the dedup tolerance.
	for i := range rep.Points {
		for j := i + 1; j < len(rep.Points); j++ {
			d := 0.0
			for a := range rep.Points[i].X {
				dd := rep.Points[i].X[a] - rep.Points[j].X[a]
				d += dd * dd
			}
			require.Greater(t, math.Sqrt(d), dedupTol)
		}
	}

	// Every tensor pair of 1D stationary points appears once, and the
	// classes compose: minimum ⊗ minimum = minimum, anything else saddles.
	found := map[[2]float64]refine.Class{}
	for _, p := range rep.Points {
		require.InDelta(t, 0, p.X[1], 1e-6)
		require.InDelta(t, 0, p.X[3], 1e-6)
		found[[2]float64{math.Round(p.X[0]*10) / 10, math.Round(p.X[2]*10) / 10}] = p.Class
	}
	require.Len(t, found, 25)

	isMin := func(r float64) bool { return r == 0 || math.Abs(r) == 0.9 }
	minima := 0
	for _, r1 := range wellRoots {
		for _, r3 := range wellRoots {
			cls, ok := found[[2]float64{r1, r3}]
			require.True(t, ok, "missing critical point (%v, 0, %v, 0)", r1, r3)
			if isMin(r1) && isMin(r3) {
				require.Equal(t, refine.Minimum, cls)
				minima++
			} else {
				require.Equal(t, refine.Saddle, cls)
			}
		}
	}
	require.Equal(t, 9, minima)
}

func TestDecomposedEmptySubdomains(t *testing.T) {
	// A subdomain containing no critical point contributes an empty
	// candidate list, not an error.
	dom := newDomain(t, domain.Spec{
		Objective: domain.Func(func(x []float64) float64 {
			d0, d1 := x[0]-0.9, x[1]-0.9
			return d0*d0 + d1*d1
		}),
		Dim:       2,
		Center:    []float64{0, 0},
		HalfWidth: []float64{1},
		Samples:   8,
		Basis:     basis.Chebyshev,
	})
	subs, err := dom.Orthants(0.05)
	require.NoError(t, err)

	c := newCertifier(t, Pipeline{Degree: basis.Uniform(2, 3), DedupTol: 0.01})
	rep, err := c.RunDecomposed(context.Background(), subs)
	require.NoError(t, err)

	require.Len(t, rep.Points, 1)
	require.Equal(t, "++", rep.Points[0].Subdomain)
	require.Equal(t, Flag(0), rep.Subdomains["--"])
	require.Equal(t, Flag(0), rep.Flags)
}

type blockingSolver struct{}

func (blockingSolver) Solve(ctx context.Context, _ polysolve.System) ([]polysolve.Solution, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestDecomposedTimeout(t *testing.T) {
	dom := newDomain(t, domain.Spec{
		Objective: domain.Func(func(x []float64) float64 { return x[0]*x[0] + x[1]*x[1] }),
		Dim:       2,
		Center:    []float64{0, 0},
		HalfWidth: []float64{1},
		Samples:   6,
		Basis:     basis.Chebyshev,
	})
	subs, err := dom.Orthants(0.1)
	require.NoError(t, err)

	c := newCertifier(t, Pipeline{
		Degree:           basis.Uniform(2, 2),
		Solver:           blockingSolver{},
		SubdomainTimeout: 20 * time.Millisecond,
	})
	rep, err := c.RunDecomposed(context.Background(), subs)
	require.NoError(t, err)

	// Every subdomain degraded to zero candidates with a flag instead of
	// stalling the merge.
	require.Empty(t, rep.Points)
	for _, f := range rep.Subdomains {
		require.True(t, f.Has(FlagIncomplete))
	}
}

func TestDecomposedSolverFailure(t *testing.T) {
	dom := newDomain(t, domain.Spec{
		Objective: domain.Func(func(x []float64) float64 { return x[0] * x[0] }),
		Dim:       1,
		Center:    []float64{0},
		HalfWidth: []float64{1},
		Samples:   6,
		Basis:     basis.Chebyshev,
	})
	subs, err := dom.Grid(2, 0.2)
	require.NoError(t, err)

	c := newCertifier(t, Pipeline{Degree: basis.Uniform(1, 2), Solver: failingSolver{}})
	rep, err := c.RunDecomposed(context.Background(), subs)
	require.NoError(t, err)
	require.Empty(t, rep.Points)
	require.True(t, rep.Flags.Has(FlagSolverFailed))
	require.True(t, rep.Subdomains["0"].Has(FlagSolverFailed))
}

func TestDecomposedCancellation(t *testing.T) {
	dom := newDomain(t, domain.Spec{
		Objective: domain.Func(func(x []float64) float64 { return x[0] * x[0] }),
		Dim:       1,
		Center:    []float64{0},
		HalfWidth: []float64{1},
		Samples:   6,
		Basis:     basis.Chebyshev,
	})
	subs, err := dom.Grid(2, 0.2)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := newCertifier(t, Pipeline{Degree: basis.Uniform(1, 2)})
	_, err = c.RunDecomposed(ctx, subs)
	require.ErrorIs(t, err, context.Canceled)

	_, err = c.RunDecomposed(context.Background(), nil)
	require.Error(t, err)
}
