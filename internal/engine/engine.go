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

package engine

import (
	"os"

	"github.com/jaywyawhare/Giga-Header/internal/collections"
	"github.com/jaywyawhare/Giga-Header/internal/engine/collect"
	"github.com/jaywyawhare/Giga-Header/internal/engine/compileloop"
	"github.com/jaywyawhare/Giga-Header/internal/engine/emit"
	"github.com/jaywyawhare/Giga-Header/internal/engine/maindetect"
	"github.com/jaywyawhare/Giga-Header/internal/engine/resolver"
	"github.com/jaywyawhare/Giga-Header/internal/engine/selection"
)

// Stats are the pre-conversion scan counts from spec.md §6: the raw
// number of .c/.h files discovered by the File Collector across the
// whole tree. Per spec.md §9's preserved Open Question, these counts are
// intentionally independent of the set the engine ultimately selects and
// inlines.
type Stats struct {
	CFilesFound int
	HFilesFound int
}

// Options configures a single conversion.
type Options struct {
	// CCPath overrides the host C compiler binary used both to probe
	// the builtin system include directory and to drive the Compile
	// Loop. Empty means "cc".
	CCPath string
	// SystemIncludeDirs overrides the default system include-path list
	// (/usr/include, /usr/local/include, plus the compiler's reported
	// builtin directory). Nil means use the default.
	SystemIncludeDirs []string
	// TempDir is where the Compile Loop writes its candidate artifacts.
	// Empty means os.TempDir().
	TempDir string
	// Compiler overrides the Compile Loop's compiler capability (for
	// tests, or to avoid shelling out at all). Nil means
	// compileloop.NewExecCompiler(CCPath).
	Compiler compileloop.Compiler
	// ExcludePatterns lists doublestar glob patterns (relative to
	// repoDir) for files the File Collector should skip entirely, from
	// .gigaheader.yml's exclude_patterns.
	ExcludePatterns []string
	// ManifestSearchDirs adds extra absolute directories, checked after
	// repoDir, when looking for a recognized build manifest (Strategy
	// A), from .gigaheader.yml's manifest_search_dirs.
	ManifestSearchDirs []string
}

// Result is everything Convert produces for one repository.
type Result struct {
	Artifact emit.Artifact
	Stats    Stats
	Strategy string
	// Warning holds a non-empty, caller-visible message when the engine
	// still produced output despite every selection strategy, or the
	// Compile Loop's pruning, yielding an empty .c set (spec.md §7's
	// NoSelection condition). It's not an error: Convert still returns
	// a (possibly empty-body) artifact.
	Warning string
}

// Convert runs the full amalgamation pipeline against repoDir, producing
// a single self-contained header under repoName's include guard.
func Convert(repoDir, repoName string, opts Options) (Result, error) {
	collected, err := collect.WalkExcluding(repoDir, opts.ExcludePatterns)
	if err != nil {
		return Result{}, newError(Unclassified, "failed to scan repository", err)
	}
	stats := Stats{CFilesFound: len(collected.CFiles), HFilesFound: len(collected.HFiles)}
	if len(collected.CFiles) == 0 {
		return Result{}, newError(EmptyRepo, "No C files found", nil)
	}

	filtered := filterMainFiles(collected.CFiles)

	sys := systemPaths(opts)
	res := resolver.New(repoDir, sys)
	newCtx := func() *Context { return NewContext(repoDir, res, collected.HFiles) }

	tempDir := opts.TempDir
	if tempDir == "" {
		tempDir = os.TempDir()
	}

	manifestDirs := append([]string{repoDir}, opts.ManifestSearchDirs...)
	if selected := selection.BuildManifestIn(manifestDirs, repoDir, filtered); len(selected) > 0 {
		return emitSelected(repoDir, repoName, selected, newCtx(), stats, "build-manifest")
	}
	if selected := selection.HeaderPairing(filtered, collected.HFiles); len(selected) > 0 {
		return emitSelected(repoDir, repoName, selected, newCtx(), stats, "header-pairing")
	}

	compiler := opts.Compiler
	if compiler == nil {
		compiler = compileloop.NewExecCompiler(opts.CCPath)
	}
	loopResult, err := compileloop.Run(repoDir, repoName, filtered, collected.HFiles, tempDir,
		func() emit.Buckets { return newCtx() }, compiler)
	if err != nil {
		return Result{}, newError(EmitFailure, "Failed to create header-only file", err)
	}

	result := Result{Artifact: loopResult.Artifact, Stats: stats, Strategy: "compile-feedback"}
	if len(loopResult.Selected) == 0 {
		result.Warning = "no .c files survived selection; emitted artifact has an empty body"
	}
	return result, nil
}

func emitSelected(repoDir, repoName string, selected []string, ctx *Context, stats Stats, strategy string) (Result, error) {
	art, err := emit.Emit(repoDir, repoName, selected, ctx, emit.Options{})
	if err != nil {
		return Result{}, newError(EmitFailure, "Failed to create header-only file", err)
	}
	return Result{Artifact: art, Stats: stats, Strategy: strategy}, nil
}

func filterMainFiles(cFiles []string) []string {
	return collections.FilterSlice(cFiles, func(path string) bool {
		content, err := os.ReadFile(path)
		if err != nil {
			// Local I/O errors are skipped, not fatal to the conversion,
			// matching spec.md §7's recovery policy.
			return false
		}
		return !maindetect.HasUnguardedMain(string(content))
	})
}

func systemPaths(opts Options) resolver.SystemPaths {
	if opts.SystemIncludeDirs != nil {
		return resolver.NewSystemPaths(opts.SystemIncludeDirs)
	}
	return resolver.DefaultSystemPaths(opts.CCPath)
}
