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

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsRemote(t *testing.T) {
	assert.True(t, isRemote("https://github.com/foo/bar.git"))
	assert.True(t, isRemote("git@github.com:foo/bar.git"))
	assert.False(t, isRemote("/local/path/to/repo"))
	assert.False(t, isRemote("relative/path"))
}

func TestIsSourceFile(t *testing.T) {
	assert.True(t, isSourceFile("foo.c"))
	assert.True(t, isSourceFile("foo.h"))
	assert.False(t, isSourceFile("foo.txt"))
	assert.False(t, isSourceFile("foo.cpp"))
}

func TestResolveRepoDirLocalPath(t *testing.T) {
	dir := t.TempDir()
	resolved, cleanup, err := resolveRepoDir(dir)
	require.NoError(t, err)
	defer cleanup()
	assert.Equal(t, dir, resolved)
}

func TestConvertAndWriteUsesConfigDir(t *testing.T) {
	repo := t.TempDir()
	// Give foo.c a same-stem header so Strategy B (header pairing) selects
	// it directly, without falling through to the compile-feedback loop
	// (which would shell out to a real host compiler).
	require.NoError(t, os.WriteFile(filepath.Join(repo, "foo.c"), []byte("int x;\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(repo, "foo.h"), []byte("extern int x;\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(repo, ".gigaheader.yml"), []byte("exclude_patterns: []\n"), 0o644))

	out := filepath.Join(t.TempDir(), "out.h")
	err := convertAndWrite(repo, "myrepo", "", out)
	require.NoError(t, err)

	content, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(content), "MYREPO")
}

// TestConvertAndWriteUsesExplicitConfigPath guards against the -config
// flag silently reading <dir-of-configPath>/.gigaheader.yml instead of
// configPath itself.
func TestConvertAndWriteUsesExplicitConfigPath(t *testing.T) {
	repo := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(repo, "foo.c"), []byte("int x;\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(repo, "foo.h"), []byte("extern int x;\n"), 0o644))

	configDir := t.TempDir()
	// A .gigaheader.yml living alongside the named config file is invalid
	// YAML; if convertAndWrite wrongly fell back to the directory
	// convention instead of the exact -config path, this would fail.
	require.NoError(t, os.WriteFile(filepath.Join(configDir, ".gigaheader.yml"), []byte("compiler: [unterminated\n"), 0o644))
	customConfig := filepath.Join(configDir, "custom.yml")
	require.NoError(t, os.WriteFile(customConfig, []byte("compiler: right-compiler\n"), 0o644))

	out := filepath.Join(t.TempDir(), "out.h")
	err := convertAndWrite(repo, "myrepo", customConfig, out)
	require.NoError(t, err)
	_, statErr := os.Stat(out)
	require.NoError(t, statErr)
}
