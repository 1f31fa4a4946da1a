// Copyright ©2025 gescholt. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package globtim

import (
	"fmt"
	"io"
)

// LogLevel controls the frequency and type of logger output
type LogLevel int

const (
	// LogNoop no output is generated (level < 0)
	LogNoop LogLevel = -1
	// LogRun print one line per (sub)domain run
	LogRun LogLevel = 0
	// LogStage print also every pipeline stage (build, solve, refine, merge)
	LogStage LogLevel = 1
	// LogCand print also per-candidate refinement details
	LogCand LogLevel = 2
)

// Logger handles logging output for the pipeline.
// Note the writer must be thread-safe: decomposed runs log concurrently.
type Logger struct {
	Level LogLevel
	Msg   io.Writer // Writer to output log messages.
}

func (l *Logger) enable(level LogLevel) bool {
	return l != nil && l.Level >= level
}

func (l *Logger) log(format string, a ...any) {
	if l == nil || l.Msg == nil {
		return
	}
	if len(a) > 0 {
		_, _ = fmt.Fprintf(l.Msg, format, a...)
	} else {
		_, _ = fmt.Fprint(l.Msg, format)
	}
}
