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

// Package config loads the optional .gigaheader.yml project configuration
// file: compiler path overrides, extra manifest search directories, and
// exclude-pattern lists, in the spirit of how gazelle_cc's ccConfig
// carries grouping-mode settings loaded from directives.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the name searched for at a repository root.
const FileName = ".gigaheader.yml"

// Config is the parsed contents of .gigaheader.yml. All fields are
// optional; a missing file yields a zero-value Config.
type Config struct {
	// Compiler overrides the host C compiler binary used for syntax
	// probing and the Compile Loop.
	Compiler string `yaml:"compiler"`
	// SystemIncludeDirs overrides the default system include search
	// path list.
	SystemIncludeDirs []string `yaml:"system_include_dirs"`
	// ManifestSearchDirs adds extra directories (besides the repository
	// root) to search for build manifests, relative to the repo root.
	ManifestSearchDirs []string `yaml:"manifest_search_dirs"`
	// ExcludePatterns lists doublestar glob patterns, relative to the
	// repo root, for files the File Collector should skip entirely.
	ExcludePatterns []string `yaml:"exclude_patterns"`
}

// Load reads FileName from repoRoot. A missing file is not an error: it
// returns a zero-value Config.
func Load(repoRoot string) (Config, error) {
	data, err := os.ReadFile(filepath.Join(repoRoot, FileName))
	if os.IsNotExist(err) {
		return Config{}, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("reading %s: %w", FileName, err)
	}
	return parse(data, FileName)
}

// LoadFile reads the config file at the exact path given, bypassing the
// FileName repo-root convention. Used when a caller names a config file
// explicitly (the CLI's -config flag) rather than relying on the
// repository root lookup; unlike Load, a missing file is an error here —
// the caller named it explicitly.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return parse(data, path)
}

func parse(data []byte, name string) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing %s: %w", name, err)
	}
	return cfg, nil
}
