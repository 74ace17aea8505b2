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

// Package server is the HTTP front-end named in spec.md §1 as an
// external collaborator of the amalgamation engine core: a GET / landing
// page and a POST /convert JSON endpoint, reimplementing the shape of
// original_source/server.c's libmicrohttpd daemon on top of net/http.
package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"golang.org/x/sync/semaphore"

	"github.com/jaywyawhare/Giga-Header/internal/acquire"
	"github.com/jaywyawhare/Giga-Header/internal/engine"
)

// landingPage mirrors original_source/server.c's inline HTML response;
// there's no static asset pipeline in this repository.
const landingPage = `<html><body><h1>Giga-Header</h1></body></html>`

// convertRequest is the POST /convert request body.
type convertRequest struct {
	GitURL string `json:"git_url"`
}

// convertResponse is the POST /convert response body, matching the field
// names original_source/server.c's create_json_response produces.
type convertResponse struct {
	Success          bool   `json:"success"`
	Repository       string `json:"repository,omitempty"`
	CFilesCount      int    `json:"c_files_count,omitempty"`
	HeaderFilesCount int    `json:"header_files_count,omitempty"`
	Filename         string `json:"filename,omitempty"`
	Error            string `json:"error,omitempty"`
}

// Server holds everything the HTTP handlers need: where to clone
// repositories, and a bound on concurrent conversions.
type Server struct {
	WorkDir     string
	MaxInFlight int
	sem         *semaphore.Weighted
}

// New returns a Server that clones into workDir and runs at most
// maxInFlight conversions concurrently, each in its own subdirectory —
// matching spec.md §5's requirement that parallel conversions each get a
// distinct working directory and temp-file path.
func New(workDir string, maxInFlight int) *Server {
	if maxInFlight <= 0 {
		maxInFlight = 4
	}
	return &Server{WorkDir: workDir, MaxInFlight: maxInFlight, sem: semaphore.NewWeighted(int64(maxInFlight))}
}

// Handler returns the http.Handler serving GET / and POST /convert.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/convert", s.handleConvert)
	return mux
}

// ListenAndServe starts an HTTP server on addr using srv's Handler. It
// blocks until the server stops, matching the signature of
// http.ListenAndServe so callers can pass the result straight to
// log.Fatal.
func ListenAndServe(addr string, srv *Server) error {
	return http.ListenAndServe(addr, srv.Handler())
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html")
	w.Write([]byte(landingPage))
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req convertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, convertResponse{Success: false, Error: "Invalid JSON"})
		return
	}
	if req.GitURL == "" {
		writeJSON(w, http.StatusBadRequest, convertResponse{Success: false, Error: "Missing git_url field"})
		return
	}

	if err := s.sem.Acquire(r.Context(), 1); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, convertResponse{Success: false, Error: "Request cancelled while waiting for a free worker"})
		return
	}
	defer s.sem.Release(1)

	resp := s.convert(req.GitURL)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) convert(gitURL string) convertResponse {
	repoName, err := acquire.RepoName(gitURL)
	if err != nil {
		return convertResponse{Success: false, Error: "Invalid repository URL"}
	}

	if err := os.MkdirAll(s.WorkDir, 0o755); err != nil {
		return convertResponse{Success: false, Error: "Failed to prepare working directory"}
	}
	parentDir, err := os.MkdirTemp(s.WorkDir, repoName+"-*")
	if err != nil {
		return convertResponse{Success: false, Error: "Failed to prepare working directory"}
	}
	defer func() {
		if cleanupErr := acquire.Cleanup(parentDir); cleanupErr != nil {
			log.Printf("giga-header: failed to clean up %s: %v", parentDir, cleanupErr)
		}
	}()
	repoDir := filepath.Join(parentDir, repoName)

	if err := acquire.Fetch(gitURL, repoDir); err != nil {
		log.Printf("giga-header: fetch failed for %s: %v", gitURL, err)
		return convertResponse{Success: false, Error: "Failed to clone repository"}
	}

	result, err := engine.Convert(repoDir, repoName, engine.Options{})
	if err != nil {
		var engErr *engine.Error
		if errors.As(err, &engErr) && engErr.Kind == engine.EmptyRepo {
			return convertResponse{Success: false, Error: "No C files found"}
		}
		log.Printf("giga-header: conversion failed for %s: %v", repoName, err)
		return convertResponse{Success: false, Error: "Failed to create header-only file"}
	}

	filename := repoName + "_combined.h"
	if err := os.WriteFile(filename, []byte(result.Artifact.Content), 0o644); err != nil {
		log.Printf("giga-header: failed to write %s: %v", filename, err)
		return convertResponse{Success: false, Error: "Failed to create header-only file"}
	}

	return convertResponse{
		Success:          true,
		Repository:       repoName,
		CFilesCount:      result.Stats.CFilesFound,
		HeaderFilesCount: result.Stats.HFilesFound,
		Filename:         filename,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("giga-header: failed to encode response: %v", err)
	}
}
