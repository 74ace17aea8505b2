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

package inline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClassifier resolves quoted includes by joining the token onto a
// fixed directory and records standard/external tokens in slices.
type fakeClassifier struct {
	dir      string
	inlined  map[string]bool
	standard []string
	external []string
}

func newFakeClassifier(dir string) *fakeClassifier {
	return &fakeClassifier{dir: dir, inlined: map[string]bool{}}
}

func (f *fakeClassifier) ResolveLocal(token, currentDir string) (string, bool) {
	p := filepath.Join(f.dir, token)
	if _, err := os.Stat(p); err != nil {
		return "", false
	}
	return p, true
}

func (f *fakeClassifier) ClassifyExternal(token string) {
	// Treat tokens containing "std" as standard, everything else external,
	// matching the tests' fixtures below.
	if strings.Contains(token, "std") {
		f.standard = append(f.standard, token)
	} else {
		f.external = append(f.external, token)
	}
}

func (f *fakeClassifier) MarkInlined(path string) bool {
	if f.inlined[path] {
		return false
	}
	f.inlined[path] = true
	return true
}

func write(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestFileInlinesLocalInclude(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "a.h", "int f(void);\n")
	aPath := write(t, dir, "a.c", "#include \"a.h\"\nint f(void){return 1;}\n")

	c := newFakeClassifier(dir)
	out, err := File(aPath, c)
	require.NoError(t, err)
	assert.Contains(t, out, "/* --- Inlined: a.h --- */")
	assert.Contains(t, out, "int f(void);")
	assert.Contains(t, out, "int f(void){return 1;}")
	assert.Contains(t, out, "/* --- End: a.h --- */")
}

func TestVisitOnceAndCycles(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "a.h", "")
	write(t, dir, "b.h", "#include \"a.h\"\n")
	cPath := write(t, dir, "c.c", "#include \"b.h\"\n#include \"a.h\"\n")

	c := newFakeClassifier(dir)
	out, err := File(cPath, c)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "Inlined: a.h"))
	assert.Equal(t, 1, strings.Count(out, "Inlined: b.h"))
}

func TestClassifiesUnresolvedAndAngled(t *testing.T) {
	dir := t.TempDir()
	cPath := write(t, dir, "c.c", "#include <stdio.h>\n#include \"missing.h\"\nint g(void){}\n")

	c := newFakeClassifier(dir)
	out, err := File(cPath, c)
	require.NoError(t, err)
	assert.NotContains(t, out, "#include")
	assert.Contains(t, out, "int g(void){}")
	assert.Equal(t, []string{"stdio.h"}, c.standard)
	assert.Equal(t, []string{"missing.h"}, c.external)
}
