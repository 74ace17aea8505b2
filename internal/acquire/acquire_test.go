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

package acquire

import (
	"archive/tar"
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"
)

func TestRepoName(t *testing.T) {
	cases := []struct{ in, want string }{
		{"https://github.com/foo/bar.git", "bar"},
		{"https://github.com/foo/bar", "bar"},
		{"https://github.com/foo/bar/", "bar"},
		{"/local/path/to/repo", "repo"},
		{"repo.git", "repo"},
		{"https://example.com/releases/bar-1.0.tar.xz", "bar-1.0"},
	}
	for _, tc := range cases {
		got, err := RepoName(tc.in)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}
}

func TestIsSnapshot(t *testing.T) {
	assert.True(t, IsSnapshot("https://example.com/releases/bar-1.0.tar.xz"))
	assert.False(t, IsSnapshot("https://github.com/foo/bar.git"))
}

// buildSnapshotTarXZ builds a .tar.xz payload with a single top-level
// directory wrapping one regular file, mirroring how GitHub/GitLab
// release snapshots are shaped.
func buildSnapshotTarXZ(t *testing.T, topDir, relPath, content string) []byte {
	t.Helper()
	var tarBuf bytes.Buffer
	tw := tar.NewWriter(&tarBuf)
	require.NoError(t, tw.WriteHeader(&tar.Header{
		Name:     topDir + "/",
		Typeflag: tar.TypeDir,
		Mode:     0o755,
	}))
	full := topDir + "/" + relPath
	require.NoError(t, tw.WriteHeader(&tar.Header{
		Name:     full,
		Typeflag: tar.TypeReg,
		Mode:     0o644,
		Size:     int64(len(content)),
	}))
	_, err := tw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, tw.Close())

	var xzBuf bytes.Buffer
	xw, err := xz.NewWriter(&xzBuf)
	require.NoError(t, err)
	_, err = xw.Write(tarBuf.Bytes())
	require.NoError(t, err)
	require.NoError(t, xw.Close())
	return xzBuf.Bytes()
}

func TestFetchSnapshotExtractsStrippingTopLevelDir(t *testing.T) {
	payload := buildSnapshotTarXZ(t, "mylib-1.0", "src/a.c", "int f(void){return 1;}\n")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer srv.Close()

	targetDir := filepath.Join(t.TempDir(), "mylib")
	require.NoError(t, FetchSnapshot(srv.URL+"/mylib-1.0.tar.xz", targetDir))

	got, err := os.ReadFile(filepath.Join(targetDir, "src", "a.c"))
	require.NoError(t, err)
	assert.Equal(t, "int f(void){return 1;}\n", string(got))
}

func TestFetchDispatchesOnSnapshotSuffix(t *testing.T) {
	payload := buildSnapshotTarXZ(t, "mylib-1.0", "a.h", "int f(void);\n")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer srv.Close()

	targetDir := filepath.Join(t.TempDir(), "mylib")
	require.NoError(t, Fetch(srv.URL+"/mylib-1.0.tar.xz", targetDir))

	_, err := os.Stat(filepath.Join(targetDir, "a.h"))
	require.NoError(t, err)
}

func TestRepoNameInvalid(t *testing.T) {
	_, err := RepoName("")
	assert.ErrorIs(t, err, ErrInvalidIdentifier)
}

func TestWorkingDirCleansStaleState(t *testing.T) {
	root := t.TempDir()
	stale := filepath.Join(root, "myrepo", "leftover.txt")
	require.NoError(t, os.MkdirAll(filepath.Dir(stale), 0o755))
	require.NoError(t, os.WriteFile(stale, []byte("x"), 0o644))

	dir, err := WorkingDir(root, "myrepo")
	require.NoError(t, err)
	_, statErr := os.Stat(dir)
	assert.True(t, os.IsNotExist(statErr))
}

func TestCleanupRefusesRoot(t *testing.T) {
	assert.Error(t, Cleanup("/"))
	assert.Error(t, Cleanup(""))
}
