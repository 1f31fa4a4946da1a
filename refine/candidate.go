// Copyright ©2025 gescholt. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package refine

// Status records the outcome of a candidate's local descent.
type Status int

const (
	// Converged means the descent met a convergence criterion.
	Converged Status = iota
	// Exhausted means the iteration budget ran out first. The candidate is
	// retained with this flag rather than discarded.
	Exhausted
)

func (s Status) String() string {
	switch s {
	case Converged:
		return "converged"
	case Exhausted:
		return "exhausted"
	}
	return "unknown"
}

// Class is the Hessian-based classification of a critical point.
type Class int

const (
	// Unknown marks a candidate whose Hessian analysis failed or was
	// disabled.
	Unknown Class = iota
	// Minimum: all Hessian eigenvalues positive.
	Minimum
	// Maximum: all Hessian eigenvalues negative.
	Maximum
	// Saddle: eigenvalues of both signs.
	Saddle
	// Degenerate: some eigenvalue inside the numerical-zero band.
	Degenerate
)

func (c Class) String() string {
	switch c {
	case Minimum:
		return "minimum"
	case Maximum:
		return "maximum"
	case Saddle:
		return "saddle"
	case Degenerate:
		return "degenerate"
	}
	return "unknown"
}

// Candidate is one prospective critical point moving through refinement.
// It is created from a filtered solver solution, mutated in place by the
// refiner, and final once classified.
type Candidate struct {
	// U is the point in canonical coordinates of its pipeline run.
	U []float64
	// X is the point in real coordinates.
	X []float64
	// Value is the true objective at X.
	Value float64
	// Status is the descent outcome.
	Status Status
	// Eigen holds the Hessian eigenvalues in ascending order, nil when the
	// analysis failed or was disabled.
	Eigen []float64
	// Class is the final classification.
	Class Class
}
