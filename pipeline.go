// Copyright ©2025 gescholt. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package globtim

import (
	"context"
	"errors"
	"time"

	"github.com/gescholt/globtim/approx"
	"github.com/gescholt/globtim/basis"
	"github.com/gescholt/globtim/domain"
	"github.com/gescholt/globtim/polysolve"
	"github.com/gescholt/globtim/refine"
)

// Pipeline specifies one certification pipeline:
// approximate → solve → filter → map → refine → classify → dedup.
type Pipeline struct {
	// Degree is the per-axis approximant degree; the starting degree when
	// the domain enables escalation.
	Degree basis.Degree
	// Solver is the algebraic solver boundary (default polysolve.Homotopy).
	Solver polysolve.Solver
	// Stop bounds the per-candidate descent.
	Stop refine.Termination
	// SkipRefine disables the descent against the true objective.
	SkipRefine bool
	// SkipHessian disables classification; every point reports Unknown.
	SkipHessian bool
	// DedupTol is the distance below which two candidates are one critical
	// point (default 1e-6).
	DedupTol float64
	// Filter reduces raw solver output to real in-box candidates.
	Filter polysolve.Filter
	// CondLimit raises FlagHighCondition above it (default 1e12).
	CondLimit float64
	// ZeroBand is the relative eigenvalue width classified as degenerate
	// (default 1e-8).
	ZeroBand float64
	// TrimTol drops relatively negligible gradient-system coefficients
	// (default 1e-10).
	TrimTol float64
	// Workers bounds sampling and subdomain parallelism.
	Workers int
	// SubdomainTimeout caps one subdomain run in a decomposed certification;
	// a timed-out subdomain degrades to zero candidates with FlagIncomplete
	// (0 disables).
	SubdomainTimeout time.Duration
	// Logger receives progress output (nil for none).
	Logger *Logger
}

// New validates the pipeline and returns a Certifier.
func (p *Pipeline) New() (*Certifier, error) {

	s := *p
	switch {
	case !s.Degree.Valid():
		return nil, errors.New("pipeline degree must be at least 1 on every axis")
	case s.DedupTol < 0:
		return nil, errors.New("dedup tolerance must not less than 0")
	case s.SubdomainTimeout < 0:
		return nil, errors.New("subdomain timeout must not less than 0")
	}
	if s.Solver == nil {
		s.Solver = polysolve.Homotopy{}
	}
	if s.DedupTol == 0 {
		s.DedupTol = 1e-6
	}
	if s.CondLimit <= 0 {
		s.CondLimit = 1e12
	}
	if s.ZeroBand <= 0 {
		s.ZeroBand = 1e-8
	}
	if s.TrimTol <= 0 {
		s.TrimTol = 1e-10
	}
	return &Certifier{
		spec:    s,
		builder: approx.Builder{Workers: s.Workers},
	}, nil
}

// Certifier runs certification pipelines built from one Pipeline spec.
// It holds no per-run state and is safe for concurrent use.
type Certifier struct {
	spec    Pipeline
	builder approx.Builder
}

// Run certifies a whole domain with a single pipeline pass.
func (c *Certifier) Run(ctx context.Context, dom *domain.Domain) (*Report, error) {

	if dom.Dim() != len(c.spec.Degree) {
		return nil, errInvalidDegreeDim
	}

	cands, flags, err := c.runOne(ctx, dom, "")
	if err != nil {
		return nil, err
	}
	return c.report(dom, cands, map[*refine.Candidate]string{}, map[string]Flag{"": flags}), nil
}

// runOne executes the per-(sub)domain pipeline. The returned error is fatal
// only for descriptor/degree validation and cancellation; solver trouble
// comes back as flags with an empty candidate set.
func (c *Certifier) runOne(ctx context.Context, dom *domain.Domain, label string) ([]*refine.Candidate, Flag, error) {

	log := c.spec.Logger
	name := label
	if name == "" {
		name = "domain"
	}

	// Build, escalating the degree while the domain asks for it.
	deg := append(basis.Degree(nil), c.spec.Degree...)
	var ap *approx.Approximant
	for {
		var err error
		ap, err = c.builder.Build(ctx, dom, deg)
		if err != nil {
			return nil, 0, err
		}
		if log.enable(LogStage) {
			log.log("%s: degree %v residual %.3e cond %.3e\n", name, deg, ap.Residual, ap.Cond)
		}
		if dom.ResidualTol() == 0 || ap.Residual <= dom.ResidualTol() {
			break
		}
		next := deg.Bump()
		if next.Max() > dom.MaxDegree() || dom.Samples() <= next.Max()+1 {
			break
		}
		deg = next
	}

	var flags Flag
	if ap.Cond > c.spec.CondLimit {
		flags |= FlagHighCondition
	}
	if dom.ResidualTol() > 0 && ap.Residual > dom.ResidualTol() {
		flags |= FlagLargeResidual
	}

	sys := ap.GradientSystem(c.spec.TrimTol)
	sols, err := c.spec.Solver.Solve(ctx, sys)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			flags |= FlagIncomplete
		} else {
			flags |= FlagSolverFailed
		}
		if log.enable(LogRun) {
			log.log("%s: solver failed: %v\n", name, err)
		}
		return nil, flags, nil
	}

	pts := c.spec.Filter.RealInBox(sols)
	if log.enable(LogStage) {
		log.log("%s: %d solutions, %d real in box\n", name, len(sols), len(pts))
	}

	obj := dom.Objective()
	bounds := dom.Bounds()
	cands := make([]*refine.Candidate, 0, len(pts))
	for _, u := range pts {
		x := make([]float64, dom.Dim())
		dom.Map(u, x)

		cand := &refine.Candidate{U: u, X: x, Value: obj.Eval(x)}
		if !c.spec.SkipRefine {
			d := refine.Descent{Stop: c.spec.Stop, Bounds: bounds}
			res, err := d.Minimize(obj, x)
			switch {
			case err != nil:
				// Keep the unrefined point; derivative trouble is not
				// fatal to the batch.
				cand.Status = refine.Exhausted
			case res.OK:
				cand.X, cand.Value = res.X, res.F
				dom.Unmap(cand.X, cand.U)
			default:
				cand.X, cand.Value = res.X, res.F
				dom.Unmap(cand.X, cand.U)
				cand.Status = refine.Exhausted
			}
			if log.enable(LogCand) {
				log.log("%s: candidate %v value %.6e %s\n", name, cand.X, cand.Value, cand.Status)
			}
		}
		if !c.spec.SkipHessian {
			cand.Class, cand.Eigen = refine.Classify(obj, cand.X, c.spec.ZeroBand)
		}
		cands = append(cands, cand)
	}

	cands = refine.Dedup(cands, c.spec.DedupTol)
	if log.enable(LogRun) {
		log.log("%s: %d critical points (flags: %s)\n", name, len(cands), flags)
	}
	return cands, flags, nil
}
