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

// Command giga-header is the CLI entrypoint for the amalgamation engine:
// given a git URL or local repository path, it writes a single
// self-contained header to disk. A "serve" subcommand instead runs the
// HTTP front-end from internal/server.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jaywyawhare/Giga-Header/internal/acquire"
	"github.com/jaywyawhare/Giga-Header/internal/config"
	"github.com/jaywyawhare/Giga-Header/internal/engine"
	"github.com/jaywyawhare/Giga-Header/internal/server"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "serve" {
		runServe(os.Args[2:])
		return
	}
	runConvert(os.Args[1:])
}

func runConvert(argv []string) {
	fs := flag.NewFlagSet("giga-header", flag.ExitOnError)
	output := fs.String("o", "", "output path for the combined header (default: <repo>_combined.h)")
	configPath := fs.String("config", "", "path to a .gigaheader.yml config file (default: <repo>/.gigaheader.yml)")
	watch := fs.Bool("watch", false, "re-run the conversion whenever a source file under the repository changes (local paths only)")
	fs.Parse(argv)

	if fs.NArg() != 1 {
		fs.Usage()
		log.Fatalf("giga-header requires exactly one argument: a git URL or a local repository path")
	}
	identifier := fs.Arg(0)

	repoDir, cleanup, err := resolveRepoDir(identifier)
	if err != nil {
		log.Fatalf("giga-header: %v", err)
	}
	defer cleanup()

	repoName, err := acquire.RepoName(identifier)
	if err != nil {
		log.Fatalf("giga-header: %v", err)
	}

	outputPath := *output
	if outputPath == "" {
		outputPath = repoName + "_combined.h"
	}

	convertOnce := func() error {
		return convertAndWrite(repoDir, repoName, *configPath, outputPath)
	}

	if err := convertOnce(); err != nil {
		log.Fatalf("giga-header: %v", err)
	}
	fmt.Printf("wrote %s\n", outputPath)

	if *watch {
		if isRemote(identifier) {
			log.Fatalf("giga-header: -watch requires a local repository path, not %q", identifier)
		}
		if err := watchAndReconvert(repoDir, convertOnce); err != nil {
			log.Fatalf("giga-header: %v", err)
		}
	}
}

func runServe(argv []string) {
	fs := flag.NewFlagSet("giga-header serve", flag.ExitOnError)
	addr := fs.String("addr", ":8080", "address to listen on")
	workDir := fs.String("workdir", os.TempDir(), "directory used to clone repositories for conversion")
	maxInFlight := fs.Int("max-inflight", 4, "maximum number of concurrent conversions")
	fs.Parse(argv)

	srv := server.New(*workDir, *maxInFlight)
	log.Printf("giga-header: listening on %s", *addr)
	log.Fatal(server.ListenAndServe(*addr, srv))
}

// resolveRepoDir returns a local directory to scan: identifier unchanged
// if it's already a local path, or a fresh clone or extracted snapshot
// under a temp directory otherwise. The returned cleanup func removes
// anything Fetch created.
func resolveRepoDir(identifier string) (dir string, cleanup func(), err error) {
	if !isRemote(identifier) {
		return identifier, func() {}, nil
	}

	repoName, err := acquire.RepoName(identifier)
	if err != nil {
		return "", nil, err
	}
	workDir, err := acquire.WorkingDir(os.TempDir(), repoName)
	if err != nil {
		return "", nil, err
	}
	if err := acquire.Fetch(identifier, workDir); err != nil {
		return "", nil, err
	}
	return workDir, func() {
		if err := acquire.Cleanup(workDir); err != nil {
			log.Printf("giga-header: failed to clean up %s: %v", workDir, err)
		}
	}, nil
}

func isRemote(identifier string) bool {
	return strings.Contains(identifier, "://") || strings.HasPrefix(identifier, "git@")
}

func convertAndWrite(repoDir, repoName, configPath, outputPath string) error {
	var cfg config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load(repoDir)
	}
	if err != nil {
		return err
	}

	manifestDirs := make([]string, 0, len(cfg.ManifestSearchDirs))
	for _, d := range cfg.ManifestSearchDirs {
		if !filepath.IsAbs(d) {
			d = filepath.Join(repoDir, d)
		}
		manifestDirs = append(manifestDirs, d)
	}

	result, err := engine.Convert(repoDir, repoName, engine.Options{
		CCPath:             cfg.Compiler,
		SystemIncludeDirs:  cfg.SystemIncludeDirs,
		ExcludePatterns:    cfg.ExcludePatterns,
		ManifestSearchDirs: manifestDirs,
	})
	if err != nil {
		return err
	}
	if result.Warning != "" {
		log.Printf("giga-header: %s", result.Warning)
	}
	return os.WriteFile(outputPath, []byte(result.Artifact.Content), 0o644)
}

// watchAndReconvert watches every directory under repoDir and reruns
// convert whenever a .c/.h file changes, debouncing bursts of events
// (editors routinely emit several writes per save).
func watchAndReconvert(repoDir string, convert func() error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := addWatches(watcher, repoDir); err != nil {
		return err
	}

	const debounce = 300 * time.Millisecond
	var timer *time.Timer
	pending := make(chan struct{}, 1)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isSourceFile(event.Name) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() {
				select {
				case pending <- struct{}{}:
				default:
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("giga-header: watch error: %v", err)
		case <-pending:
			log.Printf("giga-header: change detected, reconverting")
			if err := convert(); err != nil {
				log.Printf("giga-header: reconversion failed: %v", err)
				continue
			}
			log.Printf("giga-header: reconversion complete")
		}
	}
}

func addWatches(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			if addErr := watcher.Add(path); addErr != nil {
				log.Printf("giga-header: failed to watch %s: %v", path, addErr)
			}
		}
		return nil
	})
}

func isSourceFile(path string) bool {
	ext := filepath.Ext(path)
	return ext == ".c" || ext == ".h"
}
