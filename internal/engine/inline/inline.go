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

// Package inline implements the amalgamation engine's Inliner (spec.md
// §4.6): a depth-first, visit-once, streaming substitution of local
// #include directives with the contents of the file they name.
package inline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jaywyawhare/Giga-Header/internal/engine/include"
)

// Classifier resolves include tokens, reporting dispositions back to the
// caller. It is satisfied by *engine.Context in production and by fakes
// in tests.
type Classifier interface {
	// ResolveLocal returns the absolute in-repository path for a quoted
	// include token seen while inlining a file located in currentDir, or
	// ("", false) if the token doesn't resolve inside the repository.
	ResolveLocal(token, currentDir string) (string, bool)
	// ClassifyExternal records token (quoted-but-unresolved, or angled)
	// into the standard/external buckets.
	ClassifyExternal(token string)
	// MarkInlined records path as inlined if not already present,
	// returning true if this call newly marked it.
	MarkInlined(path string) bool
}

// File streams path, substituting resolvable quoted includes with the
// recursively inlined contents of the files they name, and classifying
// every other include into the caller's standard/external buckets. It
// returns the fully substituted text.
//
// Reads are whole-buffer; an I/O error for a single file is local to this
// call and returned to the caller, which may choose to skip the file and
// continue traversal elsewhere (spec.md §7's recovery policy).
func File(path string, c Classifier) (string, error) {
	var buf strings.Builder
	if err := inlineInto(&buf, path, c); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func inlineInto(buf *strings.Builder, path string, c Classifier) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	dir := filepath.Dir(path)
	lines := splitLines(string(data))
	for _, line := range lines {
		directive := include.Parse(line)
		switch directive.Kind {
		case include.Quoted:
			if resolved, ok := c.ResolveLocal(directive.Token, dir); ok {
				if c.MarkInlined(resolved) {
					fmt.Fprintf(buf, "/* --- Inlined: %s --- */\n", directive.Token)
					if err := inlineInto(buf, resolved, c); err != nil {
						return err
					}
					fmt.Fprintf(buf, "/* --- End: %s --- */\n", directive.Token)
				}
				// Already inlined: drop the line entirely, no re-emission.
				continue
			}
			c.ClassifyExternal(directive.Token)
		case include.Angled:
			c.ClassifyExternal(directive.Token)
		default:
			buf.WriteString(line)
			buf.WriteByte('\n')
		}
	}
	return nil
}

// splitLines splits s on '\n', treating a final unterminated fragment (if
// any) as a last line, matching spec.md §4.6's whole-buffer read model.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
