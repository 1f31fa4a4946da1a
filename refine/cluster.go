// Copyright ©2025 gescholt. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package refine

import (
	"sort"

	"gonum.org/v1/gonum/floats"
)

// dsu is a disjoint-set over candidate indices with path compression.
type dsu struct {
	parent []int
}

func newDSU(n int) *dsu {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	return &dsu{parent: p}
}

func (d *dsu) find(i int) int {
	for d.parent[i] != i {
		d.parent[i] = d.parent[d.parent[i]]
		i = d.parent[i]
	}
	return i
}

func (d *dsu) union(i, j int) {
	ri, rj := d.find(i), d.find(j)
	if ri != rj {
		d.parent[ri] = rj
	}
}

// Dedup merges candidates whose real coordinates lie within tol of each
// other and returns one representative per cluster, ordered
// lexicographically by coordinates.
//
// Clustering is the transitive closure of the pairwise distance relation:
// a chain A–B–C collapses to one point even when A and C are farther than
// tol apart. The representative is the member with the lowest objective
// value, ties broken by lexicographically smallest coordinates. Both rules
// are independent of input order, and re-running Dedup on its own output is
// a no-op: surviving representatives of distinct clusters are more than tol
// apart by construction.
func Dedup(cands []*Candidate, tol float64) []*Candidate {

	n := len(cands)
	if n <= 1 {
		return append([]*Candidate(nil), cands...)
	}

	sets := newDSU(n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if floats.Distance(cands[i].X, cands[j].X, 2) <= tol {
				sets.union(i, j)
			}
		}
	}

	best := make(map[int]int)
	for i := range cands {
		root := sets.find(i)
		k, seen := best[root]
		if !seen || better(cands[i], cands[k]) {
			best[root] = i
		}
	}

	out := make([]*Candidate, 0, len(best))
	for _, i := range best {
		out = append(out, cands[i])
	}
	sort.Slice(out, func(i, j int) bool {
		return lexLess(out[i].X, out[j].X)
	})
	return out
}

func better(a, b *Candidate) bool {
	if a.Value != b.Value {
		return a.Value < b.Value
	}
	return lexLess(a.X, b.X)
}

func lexLess(a, b []float64) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
