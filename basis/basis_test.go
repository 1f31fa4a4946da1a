// Copyright ©2025 gescholt. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package basis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChebyshevNodes(t *testing.T) {
	u := Chebyshev.Nodes(5)
	require.Len(t, u, 5)
	// Nodes are symmetric about 0 and strictly inside (-1,1).
	for i := range u {
		require.Less(t, math.Abs(u[i]), 1.0)
		require.InDelta(t, -u[len(u)-1-i], u[i], 1e-14)
	}
	require.InDelta(t, 0, u[2], 1e-14)
	// T₅ vanishes at every node.
	vals := make([]float64, 6)
	for _, x := range u {
		Chebyshev.Eval(x, vals)
		require.InDelta(t, 0, vals[5], 1e-12)
	}
}

func TestLegendreNodes(t *testing.T) {
	u := Legendre.Nodes(6)
	require.Len(t, u, 6)
	vals := make([]float64, 7)
	for i, x := range u {
		require.Less(t, math.Abs(x), 1.0)
		if i > 0 {
			require.Greater(t, x, u[i-1])
		}
		// P₆ vanishes at every node.
		Legendre.Eval(x, vals)
		require.InDelta(t, 0, vals[6], 1e-12)
	}
}

func TestEvalClosedForm(t *testing.T) {
	vals := make([]float64, 5)
	for _, x := range []float64{-0.9, -0.3, 0, 0.42, 1} {
		Chebyshev.Eval(x, vals)
		require.InDelta(t, 1, vals[0], 1e-15)
		require.InDelta(t, x, vals[1], 1e-15)
		require.InDelta(t, 2*x*x-1, vals[2], 1e-14)
		require.InDelta(t, 4*x*x*x-3*x, vals[3], 1e-14)

		Legendre.Eval(x, vals)
		require.InDelta(t, (3*x*x-1)/2, vals[2], 1e-14)
		require.InDelta(t, (5*x*x*x-3*x)/2, vals[3], 1e-14)
	}
}

func TestEvalDeriv(t *testing.T) {
	const h = 1e-6
	vals := make([]float64, 7)
	d1 := make([]float64, 7)
	lo := make([]float64, 7)
	hi := make([]float64, 7)
	for _, k := range []Kind{Chebyshev, Legendre} {
		for _, x := range []float64{-0.7, 0.1, 0.63} {
			k.EvalDeriv(x, vals, d1)
			k.Eval(x-h, lo)
			k.Eval(x+h, hi)
			for j := range vals {
				require.InDelta(t, (hi[j]-lo[j])/(2*h), d1[j], 1e-7, "kind %v degree %d", k, j)
			}
		}
	}
}

func TestPowerRoundTrip(t *testing.T) {
	// Evaluating the monomial form must agree with the recurrence form.
	c := []float64{0.5, -1.25, 2, 0.75, -0.1}
	for _, k := range []Kind{Chebyshev, Legendre} {
		mono := k.Power(c)
		vals := make([]float64, len(c))
		for _, x := range []float64{-1, -0.33, 0, 0.5, 0.99} {
			k.Eval(x, vals)
			want := 0.0
			for j := range c {
				want += c[j] * vals[j]
			}
			got := 0.0
			for p := len(mono) - 1; p >= 0; p-- {
				got = got*x + mono[p]
			}
			require.InDelta(t, want, got, 1e-12)
		}
	}
}

func TestDegreeEnumeration(t *testing.T) {
	d := Degree{2, 1}
	require.True(t, d.Valid())
	require.Equal(t, 6, d.Size())
	require.Equal(t, 2, d.Max())

	var flats []int
	var idxs [][]int
	d.ForEach(func(flat int, idx []int) {
		flats = append(flats, flat)
		idxs = append(idxs, append([]int(nil), idx...))
	})
	require.Equal(t, []int{0, 1, 2, 3, 4, 5}, flats)
	require.Equal(t, [][]int{{0, 0}, {0, 1}, {1, 0}, {1, 1}, {2, 0}, {2, 1}}, idxs)

	require.False(t, Degree{}.Valid())
	require.False(t, Degree{2, 0}.Valid())
	require.Equal(t, Degree{3, 2}, Degree{2, 1}.Bump())
}

func TestUniform(t *testing.T) {
	require.Equal(t, Degree{4, 4, 4}, Uniform(3, 4))
}
