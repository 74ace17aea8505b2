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

// Package selection implements the amalgamation engine's Selection
// Strategies (spec.md §4.5): build-manifest extraction, header-name
// pairing, and the compile-feedback fallback (the latter is a thin
// orchestration of internal/engine/compileloop, kept in the root engine
// package to avoid this package depending on the compiler capability).
package selection

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/jaywyawhare/Giga-Header/internal/collections"
	"github.com/jaywyawhare/Giga-Header/internal/orderedset"
)

// manifestFiles are inspected, in order, at the repository root. The
// first one present whose scrape yields a non-empty match against the
// collected .c set wins.
var manifestFiles = []string{"CMakeLists.txt", "Makefile", "makefile", "meson.build"}

// BuildManifest implements Strategy A. It returns the selected .c files,
// in manifest-candidate order, or nil if no recognized manifest yielded a
// non-empty match.
func BuildManifest(repoRoot string, cFiles []string) []string {
	return BuildManifestIn([]string{repoRoot}, repoRoot, cFiles)
}

// BuildManifestIn is BuildManifest extended with extra directories to
// search for a manifest (from .gigaheader.yml's manifest_search_dirs),
// checked in order after the repository root, before falling through to
// Strategy B. dirs must list absolute directory paths; manifestRoot is
// used only to resolve glob expansion relative to the repository.
func BuildManifestIn(dirs []string, manifestRoot string, cFiles []string) []string {
	for _, dir := range dirs {
		for _, name := range manifestFiles {
			data, err := os.ReadFile(filepath.Join(dir, name))
			if err != nil {
				continue
			}
			content := string(data)

			var candidates []string
			switch name {
			case "CMakeLists.txt":
				candidates = extractCMakeCandidates(content)
				candidates = append(candidates, expandCMakeGlobs(manifestRoot, content)...)
			case "Makefile", "makefile":
				candidates = extractMakeCandidates(content)
			case "meson.build":
				candidates = extractMesonCandidates(content)
			}
			if len(candidates) == 0 {
				continue
			}
			if matched := matchByBasename(candidates, cFiles); len(matched) > 0 {
				return matched
			}
		}
	}
	return nil
}

// HeaderPairing implements Strategy B: select every collected .c whose
// filename stem equals the stem of some collected .h.
func HeaderPairing(cFiles, hFiles []string) []string {
	stems := make(map[string]bool, len(hFiles))
	for _, h := range hFiles {
		stems[stem(h)] = true
	}
	var out []string
	for _, c := range cFiles {
		if stems[stem(c)] {
			out = append(out, c)
		}
	}
	return out
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// matchByBasename matches each candidate filename against cFiles by
// basename, in candidate order, deduplicated; a candidate matching
// multiple repository files (shared basename) includes all of them.
func matchByBasename(candidates, cFiles []string) []string {
	result := orderedset.New[string]()
	for _, cand := range candidates {
		base := filepath.Base(cand)
		for _, f := range cFiles {
			if filepath.Base(f) == base {
				result.Add(f)
			}
		}
	}
	return result.Values()
}

var cmakeKeywords = map[string]bool{"STATIC": true, "SHARED": true, "MODULE": true, "OBJECT": true}

// extractCMakeCandidates scrapes every add_library(NAME [STATIC|SHARED|
// MODULE|OBJECT] files...) invocation for its .c-suffixed source tokens.
// This is deliberately not a CMake parser: it's a textual scrape of the
// call's argument list, matching spec.md §9's "deliberately not a real
// parser" design note.
func extractCMakeCandidates(content string) []string {
	var candidates []string
	pos := 0
	for {
		idx := strings.Index(content[pos:], "add_library(")
		if idx < 0 {
			break
		}
		argStart := pos + idx + len("add_library(")
		end := matchingParen(content, argStart)
		args := strings.Fields(strings.NewReplacer("\"", " ", "(", " ", ")", " ").Replace(content[argStart:end]))
		for i, tok := range args {
			if i == 0 || cmakeKeywords[tok] {
				continue
			}
			if strings.HasSuffix(tok, ".c") {
				candidates = append(candidates, tok)
			}
		}
		pos = end + 1
	}
	return candidates
}

// expandCMakeGlobs expands file(GLOB <var> <patterns...>) calls into
// concrete .c candidates, an enrichment beyond the literal spec text for
// the common "vendored doublestar glob" CMake idiom.
func expandCMakeGlobs(repoRoot, content string) []string {
	re := regexp.MustCompile(`(?s)file\(\s*GLOB\s+\w+\s+(.*?)\)`)
	fsys := os.DirFS(repoRoot)
	var out []string
	for _, m := range re.FindAllStringSubmatch(content, -1) {
		for _, pattern := range quotedStrings(m[1]) {
			if !strings.HasSuffix(pattern, ".c") || !doublestar.ValidatePattern(pattern) {
				continue
			}
			matches, err := doublestar.Glob(fsys, pattern)
			if err != nil {
				continue
			}
			out = append(out, matches...)
		}
	}
	return out
}

var quotedRe = regexp.MustCompile(`"([^"]*)"`)

func quotedStrings(s string) []string {
	return collections.MapSlice(quotedRe.FindAllStringSubmatch(s, -1), func(m []string) string { return m[1] })
}

// matchingParen returns the index of the ')' matching the '(' implicitly
// opened just before argStart (depth already at 1).
func matchingParen(content string, argStart int) int {
	depth := 1
	i := argStart
	for i < len(content) && depth > 0 {
		switch content[i] {
		case '(':
			depth++
		case ')':
			depth--
		}
		if depth == 0 {
			return i
		}
		i++
	}
	return len(content)
}

var makeAssignRe = regexp.MustCompile(`^\s*(SRCS|SOURCES|SRC|OBJS)\s*[:+]?=\s*(.*)$`)

// extractMakeCandidates scrapes lines assigning to SRCS/SOURCES/SRC/OBJS,
// joining backslash line continuations first. Tokens ending in .o are
// rewritten to .c.
func extractMakeCandidates(content string) []string {
	joined := joinContinuations(content)
	var candidates []string
	for _, line := range strings.Split(joined, "\n") {
		m := makeAssignRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		for _, tok := range strings.Fields(m[2]) {
			if strings.HasSuffix(tok, ".o") {
				tok = strings.TrimSuffix(tok, ".o") + ".c"
			}
			if strings.HasSuffix(tok, ".c") {
				candidates = append(candidates, tok)
			}
		}
	}
	return candidates
}

func joinContinuations(content string) string {
	return strings.ReplaceAll(content, "\\\n", " ")
}

var mesonLibraryRe = regexp.MustCompile(`(?:^|\W)(?:library|static_library|shared_library)\s*\(`)

// extractMesonCandidates scrapes library()/static_library()/
// shared_library() calls for single-quoted .c-suffixed string literals in
// the first argument list.
func extractMesonCandidates(content string) []string {
	var candidates []string
	locs := mesonLibraryRe.FindAllStringIndex(content, -1)
	for _, loc := range locs {
		argStart := loc[1]
		end := matchingParen(content, argStart)
		for _, lit := range singleQuoted(content[argStart:end]) {
			if strings.HasSuffix(lit, ".c") {
				candidates = append(candidates, lit)
			}
		}
	}
	return candidates
}

var singleQuotedRe = regexp.MustCompile(`'([^']*)'`)

func singleQuoted(s string) []string {
	return collections.MapSlice(singleQuotedRe.FindAllStringSubmatch(s, -1), func(m []string) string { return m[1] })
}
