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

// Package resolver implements the amalgamation engine's header resolution:
// given an include token, decide whether it names a file inside the
// repository, a header on the host toolchain's search paths, or neither.
package resolver

import (
	"log"
	"os"
	"path/filepath"

	"github.com/hbollon/go-edlib"
)

// Resolver resolves include tokens against a fixed repository search order
// and, as a fallback, against the process-wide system include paths.
type Resolver struct {
	repoRoot string
	sys      SystemPaths
}

// New returns a Resolver scoped to repoRoot, using sys as the system
// include-path fallback.
func New(repoRoot string, sys SystemPaths) *Resolver {
	return &Resolver{repoRoot: repoRoot, sys: sys}
}

// ResolveQuoted resolves a quoted include token (from "#include \"x\"")
// against the caller-local directory, then the repo-relative fallback
// chain from spec.md §4.2. It returns ("", false) if nothing in the
// repository matches.
func (r *Resolver) ResolveQuoted(token, currentDir string) (string, bool) {
	candidates := []string{
		filepath.Join(currentDir, token),
		filepath.Join(r.repoRoot, token),
		filepath.Join(r.repoRoot, "include", token),
		filepath.Join(r.repoRoot, "src", token),
		filepath.Join(r.repoRoot, "lib", token),
	}
	for _, c := range candidates {
		if canon, ok := canonicalExisting(c); ok {
			return canon, true
		}
	}
	return "", false
}

// IsSystem reports whether token resolves against one of the configured
// system include paths (directory join + existence check). Both quoted
// includes that miss the in-repo search and angle-bracket includes use
// this as the decision between the "standard" and "external" buckets.
func (r *Resolver) IsSystem(token string) bool {
	for _, dir := range r.sys.Dirs() {
		if _, ok := canonicalExisting(filepath.Join(dir, token)); ok {
			return true
		}
	}
	return false
}

// LogUnresolved logs a diagnostic for a quoted include that did not
// resolve inside the repository, suggesting the closest known repository
// header by Jaro-Winkler similarity. It does not consult the system paths.
// This is purely informational: it never changes resolution.
func LogUnresolved(token string, knownHeaders []string) {
	best, bestScore := "", float32(0)
	for _, h := range knownHeaders {
		base := filepath.Base(h)
		score, err := edlib.StringsSimilarity(token, base, edlib.JaroWinkler)
		if err != nil {
			continue
		}
		if score > bestScore {
			best, bestScore = base, score
		}
	}
	if best != "" && bestScore > 0.8 {
		log.Printf("giga-header: could not resolve include %q; did you mean %q?", token, best)
	} else {
		log.Printf("giga-header: could not resolve include %q in the repository", token)
	}
}

func canonicalExisting(path string) (string, bool) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", false
	}
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", false
	}
	return resolved, true
}
