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

// Package collect walks a repository tree and enumerates the .c and .h
// files it contains, following real subdirectories only and skipping
// version-control metadata.
package collect

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// Result is the outcome of a repository scan: canonical absolute paths to
// every .c and .h file found, in host directory-enumeration order.
type Result struct {
	CFiles []string
	HFiles []string
}

// skipDirNames are directory entries that are never descended into.
var skipDirNames = map[string]bool{
	".git": true,
	".":    true,
	"..":   true,
}

// Walk recursively enumerates root, classifying regular files by extension
// (case-sensitive) into the C and H lists. Every emitted path is
// canonicalized with filepath.EvalSymlinks. Symlinked directories are not
// followed; only real directories are descended into.
func Walk(root string) (Result, error) {
	return WalkExcluding(root, nil)
}

// WalkExcluding is Walk, additionally skipping any regular file whose
// path relative to root matches one of the doublestar glob patterns in
// excludePatterns (from .gigaheader.yml's exclude_patterns). An invalid
// pattern is silently skipped rather than aborting the whole scan.
func WalkExcluding(root string, excludePatterns []string) (Result, error) {
	var res Result
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walking %s: %w", path, err)
		}
		name := d.Name()
		if d.IsDir() {
			if path != root && skipDirNames[name] {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if rel, relErr := filepath.Rel(root, path); relErr == nil && matchesAny(excludePatterns, filepath.ToSlash(rel)) {
			return nil
		}
		switch filepath.Ext(name) {
		case ".c":
			canon, err := canonicalize(path)
			if err != nil {
				return err
			}
			res.CFiles = append(res.CFiles, canon)
		case ".h":
			canon, err := canonicalize(path)
			if err != nil {
				return err
			}
			res.HFiles = append(res.HFiles, canon)
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return res, nil
}

func matchesAny(patterns []string, relPath string) bool {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			continue
		}
		if doublestar.MatchUnvalidated(p, relPath) {
			return true
		}
	}
	return false
}

// canonicalize resolves path to an absolute, symlink-free form.
func canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("canonicalizing %s: %w", path, err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("canonicalizing %s: %w", path, err)
	}
	return resolved, nil
}
