// Copyright 2026 The Giga-Header Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package compileloop implements the amalgamation engine's Compile Loop
// (spec.md §4.8): drive the host C compiler in syntax-only mode against a
// candidate artifact, and on failure remove one offending source file
// identified from the diagnostics, retrying up to a bounded number of
// iterations.
package compileloop

import (
	"os"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/jaywyawhare/Giga-Header/internal/engine/emit"
	"github.com/jaywyawhare/Giga-Header/internal/orderedset"
)

// MaxIterations is the hard bound from spec.md §4.5 Strategy C / §4.8.
const MaxIterations = 10

// diagnosticMarkers are searched for, in artifact-output order; the first
// occurrence of any one identifies the offending diagnostic line.
var diagnosticMarkers = []string{"redefinition of", "conflicting types"}

// Compiler is the capability injected into the Compile Loop: invoke the
// host compiler in syntax-only mode against path, returning its exit code
// and combined stdout+stderr. Tests substitute a fake compiler that
// returns canned diagnostics.
type Compiler func(path string) (exitCode int, output []byte, err error)

// ContextFactory builds a fresh conversion context (include buckets +
// inlined set) for one candidate emission. A new context is required
// every iteration because a different file selection produces a
// different include/inlined state.
type ContextFactory func() emit.Buckets

// Result is the outcome of running the loop to completion.
type Result struct {
	Artifact   emit.Artifact
	Selected   []string
	Removed    []string
	Iterations int
	// Resolved is true if the loop ended with a compile known to be
	// clean. It's false for every other halting condition (empty
	// selection, unparseable diagnostic, or the iteration cap) — the
	// last candidate is still returned and usable, per spec.md §7's
	// DiagnosticUnparseable handling.
	Resolved bool
}

// Run drives the loop. selected is the initial candidate .c set (not
// mutated in place; a copy is taken). allHeaders is the full collected .h
// list, passed through to Emit's header sweep.
func Run(repoRoot, repoName string, selected, allHeaders []string, tempDir string, newCtx ContextFactory, compile Compiler) (Result, error) {
	current := orderedset.Of(selected...)
	var removed []string
	seenHashes := map[uint64]bool{}

	var last emit.Artifact
	for iter := 0; iter < MaxIterations; iter++ {
		if current.Len() == 0 {
			return Result{Artifact: last, Selected: current.Values(), Removed: removed, Iterations: iter}, nil
		}

		ctx := newCtx()
		art, err := emit.Emit(repoRoot, repoName, current.Values(), ctx, emit.Options{SweepHeaders: true, AllHeaders: allHeaders})
		if err != nil {
			return Result{}, err
		}
		last = art

		hash := xxhash.Sum64String(art.Content)
		if seenHashes[hash] {
			// Pruning produced an artifact identical to one already
			// rejected: further iteration can't make progress.
			return Result{Artifact: art, Selected: current.Values(), Removed: removed, Iterations: iter}, nil
		}
		seenHashes[hash] = true

		path, err := writeTemp(tempDir, art.Content)
		if err != nil {
			return Result{}, err
		}
		exitCode, output, compileErr := compile(path)
		os.Remove(path)

		if compileErr != nil {
			// CompilerAbsent (spec.md §7): the loop returns the
			// unmodified candidate rather than failing the conversion.
			return Result{Artifact: art, Selected: current.Values(), Removed: removed, Iterations: iter + 1}, nil
		}
		if exitCode == 0 {
			return Result{Artifact: art, Selected: current.Values(), Removed: removed, Iterations: iter + 1, Resolved: true}, nil
		}

		lineNo, ok := findDiagnosticLine(output)
		if !ok {
			return Result{Artifact: art, Selected: current.Values(), Removed: removed, Iterations: iter + 1}, nil
		}
		offender, ok := findOffender(art.LineMap, lineNo)
		if !ok {
			return Result{Artifact: art, Selected: current.Values(), Removed: removed, Iterations: iter + 1}, nil
		}
		current.Remove(offender)
		removed = append(removed, offender)
	}

	return Result{Artifact: last, Selected: current.Values(), Removed: removed, Iterations: MaxIterations}, nil
}

func writeTemp(dir, content string) (string, error) {
	f, err := os.CreateTemp(dir, "giga-header-candidate-*.c")
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := f.WriteString(content); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

// findDiagnosticLine scans output for the first occurrence of a known
// redefinition-style marker, walks back to the start of that line, and
// parses the first ':'-delimited integer field as a 1-based line number.
func findDiagnosticLine(output []byte) (int, bool) {
	s := string(output)
	idx := -1
	for _, marker := range diagnosticMarkers {
		if i := strings.Index(s, marker); i >= 0 && (idx == -1 || i < idx) {
			idx = i
		}
	}
	if idx < 0 {
		return 0, false
	}
	lineStart := strings.LastIndexByte(s[:idx], '\n') + 1
	lineEnd := strings.IndexByte(s[idx:], '\n')
	var line string
	if lineEnd < 0 {
		line = s[lineStart:]
	} else {
		line = s[lineStart : idx+lineEnd]
	}
	for _, field := range strings.Split(line, ":") {
		if n, err := strconv.Atoi(strings.TrimSpace(field)); err == nil {
			return n, true
		}
	}
	return 0, false
}

// findOffender returns the source path of the line-map entry whose range
// contains lineNo.
func findOffender(lineMap []emit.LineMapEntry, lineNo int) (string, bool) {
	for _, e := range lineMap {
		if lineNo >= e.StartLine && lineNo <= e.EndLine {
			return e.SourcePath, true
		}
	}
	return "", false
}
