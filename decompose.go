// Copyright ©2025 gescholt. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package globtim

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/gescholt/globtim/domain"
	"github.com/gescholt/globtim/refine"
)

// RunDecomposed certifies a decomposed domain: the full pipeline runs
// independently per subdomain with no shared mutable state, results land in
// a write-once slot per subdomain, and after the fan-in barrier a global
// order-independent deduplication merges candidates across subdomain
// boundaries. A failing or timed-out subdomain contributes zero candidates
// and a flag, never an error.
func (c *Certifier) RunDecomposed(ctx context.Context, subs []*domain.Subdomain) (*Report, error) {

	if len(subs) == 0 {
		return nil, errNoSubdomains
	}
	parent := subs[0].Parent()
	if parent.Dim() != len(c.spec.Degree) {
		return nil, errInvalidDegreeDim
	}

	results := make([][]*refine.Candidate, len(subs))
	flags := make([]Flag, len(subs))

	g := new(errgroup.Group)
	g.SetLimit(c.workers())
	for i, sub := range subs {
		i, sub := i, sub
		g.Go(func() error {
			subCtx := ctx
			if c.spec.SubdomainTimeout > 0 {
				var cancel context.CancelFunc
				subCtx, cancel = context.WithTimeout(ctx, c.spec.SubdomainTimeout)
				defer cancel()
			}

			dom, err := sub.Domain()
			if err != nil {
				flags[i] = FlagIncomplete
				return nil
			}
			cands, f, err := c.runOne(subCtx, dom, sub.Label)
			if err != nil {
				// Approximant/sampling failure inside one subdomain is
				// skipped, not fatal to the decomposition.
				flags[i] = f | FlagIncomplete
				return nil
			}
			results[i] = cands
			flags[i] = f
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Global merge across subdomain boundaries: pool everything, then apply
	// the same order-independent clustering used locally.
	owner := make(map[*refine.Candidate]string)
	var pool []*refine.Candidate
	subFlags := make(map[string]Flag, len(subs))
	for i, sub := range subs {
		subFlags[sub.Label] = flags[i]
		for _, cand := range results[i] {
			owner[cand] = sub.Label
			pool = append(pool, cand)
		}
	}
	merged := refine.Dedup(pool, c.spec.DedupTol)
	if c.spec.Logger.enable(LogRun) {
		c.spec.Logger.log("merge: %d pooled, %d after dedup\n", len(pool), len(merged))
	}

	return c.report(parent, merged, owner, subFlags), nil
}

func (c *Certifier) workers() int {
	if c.spec.Workers > 0 {
		return c.spec.Workers
	}
	return defaultWorkers()
}
