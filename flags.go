// Copyright ©2025 gescholt. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package globtim

import "strings"

// Flag marks non-fatal quality conditions. Flags raised for a (sub)domain
// attach to every point it contributed and to the report.
type Flag uint8

const (
	// FlagHighCondition: the design-matrix condition number exceeded the
	// pipeline limit; coefficients may be inaccurate.
	FlagHighCondition Flag = 1 << iota
	// FlagLargeResidual: degree escalation stopped above the residual
	// tolerance.
	FlagLargeResidual
	// FlagSolverFailed: the algebraic solver returned an error; the
	// affected candidate set is empty.
	FlagSolverFailed
	// FlagIncomplete: the subdomain timed out or could not start; its
	// candidate set is empty but the merge proceeded without it.
	FlagIncomplete
	// FlagNotConverged: the point's descent budget was exhausted.
	FlagNotConverged
)

var flagNames = []struct {
	flag Flag
	name string
}{
	{FlagHighCondition, "high-condition"},
	{FlagLargeResidual, "large-residual"},
	{FlagSolverFailed, "solver-failed"},
	{FlagIncomplete, "incomplete"},
	{FlagNotConverged, "not-converged"},
}

// Has reports whether every bit of o is set.
func (f Flag) Has(o Flag) bool { return f&o == o }

func (f Flag) String() string {
	if f == 0 {
		return "ok"
	}
	var names []string
	for _, fn := range flagNames {
		if f.Has(fn.flag) {
			names = append(names, fn.name)
		}
	}
	return strings.Join(names, "|")
}
