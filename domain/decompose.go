// Copyright ©2025 gescholt. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package domain

import (
	"errors"
	"fmt"
)

// Subdomain is a sub-box of a parent domain produced by decomposition.
// Its box extends beyond the exact split boundaries by the overlap margin,
// so any two face-adjacent subdomains share a strip of nonzero width and a
// critical point sitting on a shared face is seen by both owners.
type Subdomain struct {
	// Label identifies the subdomain, one symbol per axis:
	// '-'/'+' for orthants, cell digits for grid splits.
	Label     string
	Center    []float64
	HalfWidth []float64
	parent    *Domain
}

// Parent returns the decomposed domain.
func (s *Subdomain) Parent() *Domain { return s.parent }

// Bounds returns the sub-box as per-axis [lower, upper] pairs.
func (s *Subdomain) Bounds() [][2]float64 {
	b := make([][2]float64, len(s.Center))
	for a := range b {
		b[a] = [2]float64{s.Center[a] - s.HalfWidth[a], s.Center[a] + s.HalfWidth[a]}
	}
	return b
}

// Domain derives an independent domain descriptor for this sub-box,
// inheriting the parent's objective, basis, sampling and precision settings.
func (s *Subdomain) Domain() (*Domain, error) {
	p := s.parent
	spec := Spec{
		Objective:    p.obj,
		Dim:          p.dim,
		Center:       s.Center,
		HalfWidth:    s.HalfWidth,
		Samples:      p.samples,
		Basis:        p.kind,
		Precision:    p.prec,
		MantissaBits: p.bits,
		ResidualTol:  p.resTol,
		MaxDegree:    p.maxDeg,
	}
	return spec.New()
}

// Grid splits the domain into kᵈ sub-boxes, k cells per axis.
// The overlap fraction, relative to a cell half-width, widens every cell
// beyond each interior split boundary; outer faces stay on the parent
// boundary. Labels are the per-axis cell digits, first axis first.
func (d *Domain) Grid(k int, overlap float64) ([]*Subdomain, error) {

	switch {
	case k < 2:
		return nil, errors.New("grid factor must greater than 1")
	case k > 10:
		return nil, errors.New("grid factor must not greater than 10")
	case overlap <= 0 || overlap >= 1:
		return nil, errors.New("overlap margin must lie in (0,1)")
	}

	total := 1
	for a := 0; a < d.dim; a++ {
		total *= k
	}

	subs := make([]*Subdomain, total)
	cell := make([]int, d.dim)
	for i := 0; i < total; i++ {
		label := make([]byte, d.dim)
		center := make([]float64, d.dim)
		half := make([]float64, d.dim)
		for a := 0; a < d.dim; a++ {
			c, h := d.center[a], d.half[a]
			width := 2 * h / float64(k)
			margin := overlap * width / 2
			lo := c - h + float64(cell[a])*width
			hi := lo + width
			if cell[a] > 0 {
				lo -= margin
			}
			if cell[a] < k-1 {
				hi += margin
			}
			center[a] = (lo + hi) / 2
			half[a] = (hi - lo) / 2
			label[a] = byte('0' + cell[a])
		}
		subs[i] = &Subdomain{
			Label:     string(label),
			Center:    center,
			HalfWidth: half,
			parent:    d,
		}
		for a := d.dim - 1; a >= 0; a-- {
			cell[a]++
			if cell[a] < k {
				break
			}
			cell[a] = 0
		}
	}
	return subs, nil
}

// Orthants splits the domain into its 2ᵈ orthants with the given overlap
// margin. Labels use one sign per axis, e.g. "+-+" in three dimensions.
func (d *Domain) Orthants(overlap float64) ([]*Subdomain, error) {
	subs, err := d.Grid(2, overlap)
	if err != nil {
		return nil, err
	}
	for _, s := range subs {
		label := make([]byte, len(s.Label))
		for a := range label {
			switch s.Label[a] {
			case '0':
				label[a] = '-'
			case '1':
				label[a] = '+'
			default:
				return nil, fmt.Errorf("unexpected orthant cell %q", s.Label[a])
			}
		}
		s.Label = string(label)
	}
	return subs, nil
}
