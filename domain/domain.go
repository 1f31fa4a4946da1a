// Copyright ©2025 gescholt. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package domain defines the immutable certification domain descriptor,
// the affine map between canonical [-1,1]ᵈ coordinates and the real box,
// and the decomposition of a domain into labeled overlapping sub-boxes.
package domain

import (
	"errors"
	"fmt"
	"math"

	"github.com/gescholt/globtim/basis"
)

// Objective is the caller-supplied scalar function under certification.
// It must be evaluable at arbitrary points of (a neighborhood of) the domain.
type Objective interface {
	Eval(x []float64) float64
}

// GradObjective is implemented by objectives that provide exact first
// derivatives. When absent, gradients fall back to finite differences.
type GradObjective interface {
	Objective
	// Grad stores ∇f(x) into g.
	Grad(x, g []float64)
}

// HessObjective is implemented by objectives that provide exact second
// derivatives, stored row-major into the d×d slice h.
type HessObjective interface {
	Objective
	Hess(x, h []float64)
}

// Func adapts a plain function to Objective.
type Func func(x []float64) float64

// Eval implements Objective.
func (f Func) Eval(x []float64) float64 { return f(x) }

// Precision selects the arithmetic used to solve the approximation system.
type Precision int

const (
	// Standard solves the least-squares system in float64 via SVD.
	Standard Precision = iota
	// Extended solves the normal equations in multi-precision arithmetic.
	Extended
)

func (p Precision) String() string {
	switch p {
	case Standard:
		return "standard"
	case Extended:
		return "extended"
	}
	return "unknown"
}

// Spec describes a certification domain.
type Spec struct {
	Objective Objective // Scalar function under certification
	Dim       int       // Spatial dimension d
	Center    []float64 // Box center, one entry per axis
	HalfWidth []float64 // Box half-width; length 1 broadcasts to every axis
	Samples   int       // Sample nodes per axis
	Basis     basis.Kind
	Precision Precision
	// MantissaBits is the big.Float precision for Extended mode (default 256).
	MantissaBits uint
	// ResidualTol enables degree escalation: the approximant degree is raised
	// until the residual L2 norm drops below this tolerance or MaxDegree is
	// reached. Zero disables escalation.
	ResidualTol float64
	// MaxDegree caps degree escalation. Required when ResidualTol is set.
	MaxDegree int
}

// Domain is a validated, immutable Spec.
type Domain struct {
	obj     Objective
	dim     int
	samples int
	center  []float64
	half    []float64
	kind    basis.Kind
	prec    Precision
	bits    uint
	resTol  float64
	maxDeg  int
}

// New validates the spec and freezes it into a Domain.
func (s *Spec) New() (*Domain, error) {

	var err error
	switch {
	case s.Objective == nil:
		err = errors.New("objective function is required")
	case s.Dim <= 0:
		err = errors.New("domain dimension must greater than 0")
	case len(s.Center) != s.Dim:
		err = errors.New("center size must equal to dimension")
	case len(s.HalfWidth) != 1 && len(s.HalfWidth) != s.Dim:
		err = errors.New("half-width must be scalar or one entry per axis")
	case s.Samples < 2:
		err = errors.New("sample count per axis must greater than 1")
	case s.Basis != basis.Chebyshev && s.Basis != basis.Legendre:
		err = errors.New("unknown basis kind")
	case s.Precision != Standard && s.Precision != Extended:
		err = errors.New("unknown precision mode")
	case s.ResidualTol < 0:
		err = errors.New("residual tolerance must not less than 0")
	case s.ResidualTol > 0 && s.MaxDegree <= 0:
		err = errors.New("degree escalation requires a max degree")
	}
	if err != nil {
		return nil, err
	}

	center := append([]float64(nil), s.Center...)
	half := make([]float64, s.Dim)
	for a := range half {
		h := s.HalfWidth[0]
		if len(s.HalfWidth) == s.Dim {
			h = s.HalfWidth[a]
		}
		switch {
		case math.IsNaN(center[a]) || math.IsInf(center[a], 0):
			return nil, fmt.Errorf("center at axis %d is not finite", a)
		case math.IsNaN(h) || math.IsInf(h, 0) || h <= 0:
			return nil, fmt.Errorf("half-width at axis %d must be finite and positive", a)
		}
		half[a] = h
	}

	bits := s.MantissaBits
	if bits == 0 {
		bits = 256
	}

	return &Domain{
		obj:     s.Objective,
		dim:     s.Dim,
		samples: s.Samples,
		center:  center,
		half:    half,
		kind:    s.Basis,
		prec:    s.Precision,
		bits:    bits,
		resTol:  s.ResidualTol,
		maxDeg:  s.MaxDegree,
	}, nil
}

// Objective returns the function under certification.
func (d *Domain) Objective() Objective { return d.obj }

// Dim returns the spatial dimension.
func (d *Domain) Dim() int { return d.dim }

// Samples returns the sample count per axis.
func (d *Domain) Samples() int { return d.samples }

// Basis returns the approximation basis family.
func (d *Domain) Basis() basis.Kind { return d.kind }

// Precision returns the arithmetic mode for approximant builds.
func (d *Domain) Precision() Precision { return d.prec }

// MantissaBits returns the big.Float precision for Extended builds.
func (d *Domain) MantissaBits() uint { return d.bits }

// ResidualTol returns the degree-escalation tolerance (0 when disabled).
func (d *Domain) ResidualTol() float64 { return d.resTol }

// MaxDegree returns the degree-escalation cap.
func (d *Domain) MaxDegree() int { return d.maxDeg }

// Center returns a copy of the box center.
func (d *Domain) Center() []float64 { return append([]float64(nil), d.center...) }

// HalfWidth returns a copy of the per-axis half-width.
func (d *Domain) HalfWidth() []float64 { return append([]float64(nil), d.half...) }

// Map converts a canonical point u ∈ [-1,1]ᵈ to real coordinates:
// xₐ = cₐ + hₐ·uₐ.
func (d *Domain) Map(u, x []float64) {
	for a := 0; a < d.dim; a++ {
		x[a] = d.center[a] + d.half[a]*u[a]
	}
}

// Unmap converts real coordinates back to canonical ones:
// uₐ = (xₐ - cₐ)/hₐ.
func (d *Domain) Unmap(x, u []float64) {
	for a := 0; a < d.dim; a++ {
		u[a] = (x[a] - d.center[a]) / d.half[a]
	}
}

// Bounds returns the real box as per-axis [lower, upper] pairs.
func (d *Domain) Bounds() [][2]float64 {
	b := make([][2]float64, d.dim)
	for a := 0; a < d.dim; a++ {
		b[a] = [2]float64{d.center[a] - d.half[a], d.center[a] + d.half[a]}
	}
	return b
}
