// Copyright ©2025 gescholt. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package approx builds polynomial approximants of an objective over a
// domain: tensor-grid sampling, design-matrix least squares with residual
// and conditioning report, and export of the gradient critical system.
package approx

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/gescholt/globtim/domain"
)

// SampleSet holds the tensor evaluation grid for one approximant build.
// It is ephemeral scratch owned by that build.
type SampleSet struct {
	// Nodes are the canonical per-axis sample nodes.
	Nodes []float64
	// Values holds the objective at every grid point, row-major over the
	// per-axis node indices (last axis fastest).
	Values []float64
}

// Len returns the number of grid points.
func (s *SampleSet) Len() int { return len(s.Values) }

// Builder assembles approximants. It is stateless: degree escalation is the
// caller's loop around Build.
type Builder struct {
	// Workers bounds the sampling parallelism (default GOMAXPROCS).
	// Sampling is the one place the possibly-expensive objective is called
	// O(samplesᵈ) times, and the grid points are mutually independent.
	Workers int
}

func (b *Builder) workers() int {
	if b.Workers > 0 {
		return b.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// Sample evaluates the objective over the full tensor grid of canonical
// basis nodes mapped into the real box.
func (b *Builder) Sample(ctx context.Context, dom *domain.Domain) (*SampleSet, error) {

	dim, samples := dom.Dim(), dom.Samples()
	nodes := dom.Basis().Nodes(samples)

	total := 1
	for a := 0; a < dim; a++ {
		total *= samples
	}
	values := make([]float64, total)

	obj := dom.Objective()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers())

	chunk := max(total/(4*b.workers()), 1)
	for lo := 0; lo < total; lo += chunk {
		lo, hi := lo, min(lo+chunk, total)
		g.Go(func() error {
			u := make([]float64, dim)
			x := make([]float64, dim)
			for i := lo; i < hi; i++ {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
				rem := i
				for a := dim - 1; a >= 0; a-- {
					u[a] = nodes[rem%samples]
					rem /= samples
				}
				dom.Map(u, x)
				v := obj.Eval(x)
				if math.IsNaN(v) || math.IsInf(v, 0) {
					return fmt.Errorf("objective is not finite at %v", x)
				}
				values[i] = v
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &SampleSet{Nodes: nodes, Values: values}, nil
}

// Point reconstructs the real coordinates of grid point i into x.
func (s *SampleSet) Point(dom *domain.Domain, i int, x []float64) {
	dim, samples := dom.Dim(), dom.Samples()
	u := make([]float64, dim)
	for a := dim - 1; a >= 0; a-- {
		u[a] = s.Nodes[i%samples]
		i /= samples
	}
	dom.Map(u, x)
}
