// Copyright ©2025 gescholt. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package globtim certifies all critical points (minima, maxima, saddles) of
// a smooth scalar function over a bounded box.
//
// The pipeline approximates the objective by a tensor polynomial in an
// orthogonal basis, solves the approximant's gradient system through a
// complete algebraic solver, maps the filtered real solutions back to the
// real domain, refines them against the true objective, classifies them by
// Hessian eigenvalues, and deduplicates. When a single global approximation
// is intractable the domain is decomposed into labeled overlapping
// sub-boxes, the pipeline runs independently per sub-box, and the results
// are merged with an order-independent global deduplication.
//
// Error policy: only domain and degree validation errors are fatal to a run.
// A failing or timed-out subdomain degrades to zero candidates, poor
// conditioning or large residuals are reported as flags, a candidate whose
// descent budget runs out keeps an Exhausted status, and a failed Hessian
// degrades the classification to Unknown. All such conditions travel with
// the output table so consumers can filter by quality.
package globtim
