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

package compileloop

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaywyawhare/Giga-Header/internal/engine/emit"
	"github.com/jaywyawhare/Giga-Header/internal/orderedset"
)

type fakeBuckets struct {
	dir     string
	inlined *orderedset.Set[string]
}

func (f *fakeBuckets) ResolveLocal(token, currentDir string) (string, bool) {
	p := filepath.Join(f.dir, token)
	if _, err := os.Stat(p); err != nil {
		return "", false
	}
	return p, true
}
func (f *fakeBuckets) ClassifyExternal(token string) {}
func (f *fakeBuckets) MarkInlined(path string) bool  { return f.inlined.Add(path) }
func (f *fakeBuckets) IsInlined(path string) bool     { return f.inlined.Contains(path) }
func (f *fakeBuckets) StandardTokens() []string       { return nil }
func (f *fakeBuckets) ExternalTokens() []string       { return nil }

func newFakeCtxFactory(dir string) ContextFactory {
	return func() emit.Buckets {
		return &fakeBuckets{dir: dir, inlined: orderedset.New[string]()}
	}
}

func TestRunPrunesRedefinition(t *testing.T) {
	dir := t.TempDir()
	aC := filepath.Join(dir, "a.c")
	bC := filepath.Join(dir, "b.c")
	require.NoError(t, os.WriteFile(aC, []byte("int g(void){return 0;}\n"), 0o644))
	require.NoError(t, os.WriteFile(bC, []byte("int g(void){return 0;}\n"), 0o644))

	calls := 0
	compile := func(path string) (int, []byte, error) {
		calls++
		content, err := os.ReadFile(path)
		require.NoError(t, err)
		s := string(content)
		if strings.Count(s, "int g(void){return 0;}") > 1 {
			lines := strings.Split(s, "\n")
			seen := 0
			for i, l := range lines {
				if strings.Contains(l, "int g(void){return 0;}") {
					seen++
					if seen == 2 {
						return 1, []byte(fmt.Sprintf("%s:%d:5: error: redefinition of 'g'", path, i+1)), nil
					}
				}
			}
		}
		return 0, nil, nil
	}

	res, err := Run(dir, "lib", []string{aC, bC}, nil, dir, newFakeCtxFactory(dir), compile)
	require.NoError(t, err)
	assert.True(t, res.Resolved)
	assert.Equal(t, []string{bC}, res.Removed)
	assert.Equal(t, []string{aC}, res.Selected)
	assert.Equal(t, 2, calls)
}

func TestRunHaltsOnEmptySelection(t *testing.T) {
	res, err := Run(t.TempDir(), "lib", nil, nil, t.TempDir(), newFakeCtxFactory(t.TempDir()),
		func(string) (int, []byte, error) {
			t.Fatal("compiler should not be invoked for an empty selection")
			return 0, nil, nil
		})
	require.NoError(t, err)
	assert.False(t, res.Resolved)
	assert.Empty(t, res.Selected)
}

func TestRunHaltsOnUnparseableDiagnostic(t *testing.T) {
	dir := t.TempDir()
	aC := filepath.Join(dir, "a.c")
	require.NoError(t, os.WriteFile(aC, []byte("int a(void){return 1;}\n"), 0o644))

	res, err := Run(dir, "lib", []string{aC}, nil, dir, newFakeCtxFactory(dir),
		func(string) (int, []byte, error) {
			return 1, []byte("some unrelated error"), nil
		})
	require.NoError(t, err)
	assert.False(t, res.Resolved)
	assert.Equal(t, []string{aC}, res.Selected)
}
