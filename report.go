// Copyright ©2025 gescholt. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package globtim

import (
	"errors"
	"fmt"
	"runtime"
	"strconv"

	"github.com/gescholt/globtim/domain"
	"github.com/gescholt/globtim/refine"
)

var (
	errInvalidDegreeDim = errors.New("pipeline degree size must equal to domain dimension")
	errNoSubdomains     = errors.New("decomposed run requires at least one subdomain")
)

func defaultWorkers() int { return runtime.GOMAXPROCS(0) }

// Point is one certified critical point of the output table.
type Point struct {
	// X are the real coordinates.
	X []float64
	// Value is the true objective at X.
	Value float64
	// Class is the Hessian classification.
	Class refine.Class
	// Eigen holds the Hessian eigenvalues backing Class (nil when Unknown).
	Eigen []float64
	// Converged reports whether the refinement descent converged.
	Converged bool
	// Subdomain is the owning subdomain label, empty for whole-domain runs.
	Subdomain string
	// Flags are the quality conditions attached to this point.
	Flags Flag
}

// Report is the deduplicated, classified critical-point table of one
// certification run, with provenance and quality flags.
type Report struct {
	// Dim is the domain dimension.
	Dim int
	// Points are the certified critical points, ordered lexicographically
	// by coordinates.
	Points []Point
	// Flags is the union of all quality flags raised during the run.
	Flags Flag
	// Subdomains maps every subdomain label to the flags its run raised.
	Subdomains map[string]Flag
}

func (c *Certifier) report(dom *domain.Domain, cands []*refine.Candidate,
	owner map[*refine.Candidate]string, subFlags map[string]Flag) *Report {

	r := &Report{
		Dim:        dom.Dim(),
		Subdomains: subFlags,
	}
	for _, f := range subFlags {
		r.Flags |= f
	}
	for _, cand := range cands {
		label := owner[cand]
		flags := subFlags[label]
		if cand.Status != refine.Converged {
			flags |= FlagNotConverged
		}
		r.Flags |= flags
		r.Points = append(r.Points, Point{
			X:         cand.X,
			Value:     cand.Value,
			Class:     cand.Class,
			Eigen:     cand.Eigen,
			Converged: cand.Status == refine.Converged,
			Subdomain: label,
			Flags:     flags,
		})
	}
	return r
}

// Header returns the export column names. Axes acquire names only here, at
// the output boundary: x1 … xd, value, class, converged, subdomain, flags.
func (r *Report) Header() []string {
	h := make([]string, 0, r.Dim+5)
	for a := 1; a <= r.Dim; a++ {
		h = append(h, fmt.Sprintf("x%d", a))
	}
	return append(h, "value", "class", "converged", "subdomain", "flags")
}

// Row renders point i in Header order.
func (r *Report) Row(i int) []string {
	p := r.Points[i]
	row := make([]string, 0, r.Dim+5)
	for _, v := range p.X {
		row = append(row, strconv.FormatFloat(v, 'g', 17, 64))
	}
	return append(row,
		strconv.FormatFloat(p.Value, 'g', 17, 64),
		p.Class.String(),
		strconv.FormatBool(p.Converged),
		p.Subdomain,
		p.Flags.String(),
	)
}
