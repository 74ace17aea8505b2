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

// Package emit implements the amalgamation engine's Emitter (spec.md
// §4.7): it composes the final artifact from an include-guard preamble, a
// classified include block, the inlined body, and a closing guard, while
// building the line map the Compile Loop uses to identify offending
// source files.
package emit

import (
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jaywyawhare/Giga-Header/internal/engine/inline"
)

// sweepExcludedDirs lists repository-relative path components that
// exclude a header from the optional header sweep (spec.md §4.7), both as
// a leading prefix and as an interior path component.
var sweepExcludedDirs = []string{"test", "tests", "example", "examples", "bench", "benchmark"}

// LineMapEntry records the inclusive 1-based output line range that a
// top-level .c entry contributed to the final artifact.
type LineMapEntry struct {
	SourcePath string
	StartLine  int
	EndLine    int
}

// Artifact is the fully composed amalgamation output and its line map.
type Artifact struct {
	Content string
	LineMap []LineMapEntry
}

// Buckets is what Emit needs from the conversion context: the inliner's
// Classifier contract, plus read access to the accumulated include
// buckets and inlined set for composing the preamble and header sweep.
type Buckets interface {
	inline.Classifier
	StandardTokens() []string
	ExternalTokens() []string
	IsInlined(path string) bool
}

// Options controls composition beyond the fixed set of selected .c files.
type Options struct {
	// SweepHeaders, when true, inlines every collected header not
	// already in the inlined set after the .c entries (feedback
	// strategy only, per spec.md §4.5 Strategy C).
	SweepHeaders bool
	// AllHeaders is the full collected .h list, consulted only when
	// SweepHeaders is true.
	AllHeaders []string
}

// Emit composes the artifact from the selected .c files, in selection
// order, against ctx (which accumulates the standard/external buckets and
// inlined set as inlining proceeds).
func Emit(repoRoot, repoName string, selected []string, ctx Buckets, opts Options) (Artifact, error) {
	var body strings.Builder
	var lineMap []LineMapEntry

	for _, path := range selected {
		rel, err := filepath.Rel(repoRoot, path)
		if err != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)

		fmt.Fprintf(&body, "\n/* %s */\n", rel)
		startLine := countLines(body.String()) + 1
		content, err := inline.File(path, ctx)
		if err != nil {
			return Artifact{}, fmt.Errorf("inlining %s: %w", path, err)
		}
		body.WriteString(content)
		endLine := countLines(body.String())
		lineMap = append(lineMap, LineMapEntry{SourcePath: path, StartLine: startLine, EndLine: endLine})
	}

	if opts.SweepHeaders {
		for _, h := range opts.AllHeaders {
			if ctx.IsInlined(h) {
				continue
			}
			rel, err := filepath.Rel(repoRoot, h)
			if err != nil {
				rel = h
			}
			rel = filepath.ToSlash(rel)
			if isSweepExcluded(rel) {
				continue
			}
			ctx.MarkInlined(h)
			content, err := inline.File(h, ctx)
			if err != nil {
				continue // local I/O errors during the sweep don't abort emission
			}
			body.WriteString(content)
		}
	}

	preamble := buildPreamble(repoName, ctx)
	shift := countLines(preamble)
	for i := range lineMap {
		lineMap[i].StartLine += shift
		lineMap[i].EndLine += shift
	}

	var out strings.Builder
	out.WriteString(preamble)
	out.WriteString(body.String())
	fmt.Fprintf(&out, "\n#endif /* %s_COMBINED_H */\n", Guard(repoName))

	return Artifact{Content: out.String(), LineMap: lineMap}, nil
}

func buildPreamble(repoName string, ctx Buckets) string {
	guard := Guard(repoName)
	var b strings.Builder
	fmt.Fprintf(&b, "#ifndef %s_COMBINED_H\n#define %s_COMBINED_H\n\n", guard, guard)
	b.WriteString("/*\n")
	b.WriteString(" * Auto-generated header-only file\n")
	fmt.Fprintf(&b, " * Repository: %s\n", repoName)
	b.WriteString(" */\n\n")

	if standard := ctx.StandardTokens(); len(standard) > 0 {
		for _, tok := range standard {
			fmt.Fprintf(&b, "#include <%s>\n", tok)
		}
		b.WriteString("\n")
	}
	if external := ctx.ExternalTokens(); len(external) > 0 {
		for _, tok := range external {
			fmt.Fprintf(&b, "#include <%s>\n", tok)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Guard derives the include-guard prefix from repoName: lowercase letters
// are uppercased, digits are kept, and every other character becomes '_'.
func Guard(repoName string) string {
	upper := cases.Upper(language.Und).String(repoName)
	var b strings.Builder
	for _, r := range upper {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

func countLines(s string) int {
	if s == "" {
		return 0
	}
	n := strings.Count(s, "\n")
	if !strings.HasSuffix(s, "\n") {
		n++
	}
	return n
}

func isSweepExcluded(relPath string) bool {
	parts := strings.Split(relPath, "/")
	for _, p := range parts {
		for _, excl := range sweepExcludedDirs {
			if p == excl {
				return true
			}
		}
	}
	return false
}
