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

package resolver

import (
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/jaywyawhare/Giga-Header/internal/collections"
)

// SystemPaths is the process-wide, read-only list of directories searched
// for headers that aren't part of the repository. The default list is
// populated once per process (per compiler path, on first use) and is safe
// to share across concurrent conversions.
type SystemPaths struct {
	dirs []string
}

// defaultPaths caches DefaultSystemPaths results, keyed by compiler path.
var defaultPaths sync.Map

// DefaultSystemPaths returns the standard search list: /usr/include,
// /usr/local/include, plus whatever the host C compiler reports as its
// builtin include directory (via "cc -print-file-name=include"). Entries
// that don't exist, or that aren't directories, are silently dropped. The
// list is built on the first call for a given ccPath and reused after.
func DefaultSystemPaths(ccPath string) SystemPaths {
	if cached, ok := defaultPaths.Load(ccPath); ok {
		return cached.(SystemPaths)
	}
	candidates := []string{"/usr/include", "/usr/local/include"}
	if builtin := compilerBuiltinIncludeDir(ccPath); builtin != "" {
		candidates = append(candidates, builtin)
	}
	paths := NewSystemPaths(candidates)
	defaultPaths.Store(ccPath, paths)
	return paths
}

// NewSystemPaths filters candidates down to the directories that exist.
func NewSystemPaths(candidates []string) SystemPaths {
	dirs := collections.FilterSlice(candidates, func(c string) bool {
		info, err := os.Stat(c)
		return err == nil && info.IsDir()
	})
	return SystemPaths{dirs: dirs}
}

// Dirs returns the filtered, existing system include directories.
func (s SystemPaths) Dirs() []string { return s.dirs }

func compilerBuiltinIncludeDir(ccPath string) string {
	if ccPath == "" {
		ccPath = "cc"
	}
	out, err := exec.Command(ccPath, "-print-file-name=include").Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}
