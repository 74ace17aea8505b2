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

// Package acquire is the amalgamation engine's external collaborator for
// repository acquisition: extracting a repository name from a URL or
// local path, cloning it with git, and fetching/decompressing/extracting a
// .tar.xz snapshot as an alternative transport for hosts that only publish
// release tarballs. Fetch dispatches between the two based on the
// identifier's suffix. It reimplements, in Go, the
// extract_repo_name/clone_repository/cleanup_directory trio from the
// pre-distillation server, without shelling out through a formatted
// command string.
package acquire

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"
)

// ErrInvalidIdentifier is spec.md §7's InvalidRepoIdentifier: the
// repository name couldn't be extracted from the input string.
var ErrInvalidIdentifier = errors.New("invalid repository identifier")

// snapshotSuffix marks an identifier as a .tar.xz release snapshot rather
// than a git remote.
const snapshotSuffix = ".tar.xz"

// IsSnapshot reports whether identifier names a .tar.xz snapshot, as
// opposed to a git URL or local path.
func IsSnapshot(identifier string) bool {
	return strings.HasSuffix(identifier, snapshotSuffix)
}

// RepoName extracts a repository name from a git URL, a .tar.xz snapshot
// URL, or a local path, stripping a trailing ".git" or ".tar.xz" suffix
// if present.
func RepoName(identifier string) (string, error) {
	trimmed := strings.TrimRight(identifier, "/")
	if trimmed == "" {
		return "", ErrInvalidIdentifier
	}
	base := trimmed
	if idx := strings.LastIndexByte(trimmed, '/'); idx >= 0 {
		base = trimmed[idx+1:]
	}
	base = strings.TrimSuffix(base, snapshotSuffix)
	base = strings.TrimSuffix(base, ".git")
	if base == "" {
		return "", ErrInvalidIdentifier
	}
	return base, nil
}

// Clone clones gitURL into targetDir with "git clone", returning
// AcquisitionFailed-shaped errors (via fmt.Errorf wrapping) on non-zero
// exit. targetDir must not already exist; the caller owns its lifecycle.
func Clone(gitURL, targetDir string) error {
	cmd := exec.Command("git", "clone", gitURL, targetDir)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("git clone failed: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

// Fetch populates targetDir (which must not already exist) with
// identifier's contents: a git clone for an ordinary repository URL or
// local path, or a download+decompress+extract for a .tar.xz snapshot
// URL, dispatched by IsSnapshot.
func Fetch(identifier, targetDir string) error {
	if IsSnapshot(identifier) {
		return FetchSnapshot(identifier, targetDir)
	}
	return Clone(identifier, targetDir)
}

// FetchSnapshot downloads the .tar.xz snapshot at url, decompresses it,
// and extracts the resulting tar archive into targetDir.
func FetchSnapshot(url, targetDir string) error {
	tmp, err := os.CreateTemp("", "giga-header-snapshot-*.tar")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := FetchTarXZ(url, tmpPath); err != nil {
		return err
	}
	return extractTar(tmpPath, targetDir)
}

// FetchTarXZ downloads a .tar.xz snapshot from url and decompresses it
// (but does not untar it — callers pass the decompressed tar stream to a
// tar reader) into destPath. This is the alternative to shelling out to
// git for hosts that only publish release tarballs.
func FetchTarXZ(url, destPath string) error {
	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetching %s: unexpected status %s", url, resp.Status)
	}

	xzReader, err := xz.NewReader(resp.Body)
	if err != nil {
		return fmt.Errorf("decompressing %s: %w", url, err)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", destPath, err)
	}
	defer out.Close()

	buf := make([]byte, 64*1024)
	for {
		n, readErr := xzReader.Read(buf)
		if n > 0 {
			if _, writeErr := out.Write(buf[:n]); writeErr != nil {
				return fmt.Errorf("writing %s: %w", destPath, writeErr)
			}
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				break
			}
			return fmt.Errorf("decompressing %s: %w", url, readErr)
		}
	}
	return nil
}

// extractTar extracts the tar archive at tarPath into targetDir, creating
// it if needed. Snapshot archives commonly wrap their contents in a
// single top-level directory (e.g. "repo-1.0/"); that component is
// stripped so targetDir itself becomes the repository root.
func extractTar(tarPath, targetDir string) error {
	f, err := os.Open(tarPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", tarPath, err)
	}
	defer f.Close()

	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", targetDir, err)
	}
	cleanTarget := filepath.Clean(targetDir)

	tr := tar.NewReader(f)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading %s: %w", tarPath, err)
		}
		name := stripTopLevelDir(hdr.Name)
		if name == "" {
			continue
		}
		dest := filepath.Join(cleanTarget, name)
		if dest != cleanTarget && !strings.HasPrefix(dest, cleanTarget+string(os.PathSeparator)) {
			return fmt.Errorf("tar entry %q escapes target directory", hdr.Name)
		}
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(dest, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := extractTarFile(tr, dest, hdr); err != nil {
				return err
			}
		}
	}
}

func extractTarFile(tr *tar.Reader, dest string, hdr *tar.Header) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dest, err)
	}
	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, hdr.FileInfo().Mode().Perm())
	if err != nil {
		return fmt.Errorf("creating %s: %w", dest, err)
	}
	defer out.Close()
	if _, err := io.Copy(out, tr); err != nil {
		return fmt.Errorf("writing %s: %w", dest, err)
	}
	return nil
}

// stripTopLevelDir removes the first path component of name, returning ""
// if name has no component beneath the top-level directory (the
// top-level directory entry itself).
func stripTopLevelDir(name string) string {
	name = filepath.ToSlash(name)
	idx := strings.IndexByte(name, '/')
	if idx < 0 {
		return ""
	}
	return name[idx+1:]
}

// Cleanup removes dir and everything under it. Unlike the original's
// system("rm -rf ...") this never shells out to a formatted command
// string.
func Cleanup(dir string) error {
	if dir == "" || dir == "/" {
		return fmt.Errorf("refusing to remove %q", dir)
	}
	return os.RemoveAll(dir)
}

// WorkingDir returns the path under root named after repoName, removing
// any stale leftover from a previous run first. It creates root if needed
// but not the returned directory itself, so the path is free for Fetch,
// which expects its target not to exist yet.
func WorkingDir(root, repoName string) (string, error) {
	dir := filepath.Join(root, repoName)
	if err := Cleanup(dir); err != nil {
		return "", err
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", root, err)
	}
	return dir, nil
}
