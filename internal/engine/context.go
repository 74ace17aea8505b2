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

// Package engine ties together the amalgamation engine's components:
// collection, main-detection, selection, inlining, emission, and the
// compile-feedback loop. Convert is the single entry point.
package engine

import (
	"github.com/jaywyawhare/Giga-Header/internal/engine/resolver"
	"github.com/jaywyawhare/Giga-Header/internal/orderedset"
)

// Context holds the per-conversion state described by spec.md §3: the
// three include buckets, the set of repository files already inlined, and
// the repository root. No mutable state here is shared across
// conversions.
type Context struct {
	RepoRoot string
	Resolver *resolver.Resolver

	// KnownHeaders is the repository's full .h file list from the File
	// Collector, used only to suggest the closest match when a quoted
	// include fails to resolve; it never affects resolution itself.
	KnownHeaders []string

	// Standard holds header tokens resolved against host toolchain
	// include paths, emitted as #include <token>.
	Standard *orderedset.Set[string]
	// External holds header tokens that resolved against neither the
	// repository nor the host paths but were referenced anyway, emitted
	// as #include <token>.
	External *orderedset.Set[string]
	// Inlined holds absolute repository paths already pasted into the
	// body, preventing re-inlining and include cycles.
	Inlined *orderedset.Set[string]
}

// NewContext returns a fresh, empty Context rooted at repoRoot. knownHeaders
// is the repository's full .h file list, used only for the "did you mean"
// diagnostic on a failed quoted resolve.
func NewContext(repoRoot string, res *resolver.Resolver, knownHeaders []string) *Context {
	return &Context{
		RepoRoot:     repoRoot,
		Resolver:     res,
		KnownHeaders: knownHeaders,
		Standard:     orderedset.New[string](),
		External:     orderedset.New[string](),
		Inlined:      orderedset.New[string](),
	}
}

// ResolveLocal resolves a quoted include token against the repository,
// implementing inline.Classifier. On failure it logs a closest-known-header
// suggestion before reporting the miss to the caller.
func (c *Context) ResolveLocal(token, currentDir string) (string, bool) {
	resolved, ok := c.Resolver.ResolveQuoted(token, currentDir)
	if !ok {
		resolver.LogUnresolved(token, c.KnownHeaders)
	}
	return resolved, ok
}

// MarkInlined records path as inlined if not already present, implementing
// inline.Classifier.
func (c *Context) MarkInlined(path string) bool {
	return c.Inlined.Add(path)
}

// StandardTokens implements emit.Buckets.
func (c *Context) StandardTokens() []string { return c.Standard.Values() }

// ExternalTokens implements emit.Buckets.
func (c *Context) ExternalTokens() []string { return c.External.Values() }

// IsInlined implements emit.Buckets.
func (c *Context) IsInlined(path string) bool { return c.Inlined.Contains(path) }

// ClassifyExternal records token in the Standard bucket if it resolves
// against the system include paths, otherwise in the External bucket.
// Tokens are deduplicated and the two buckets never share a token, per
// spec.md §3's invariant.
func (c *Context) ClassifyExternal(token string) {
	if c.Standard.Contains(token) || c.External.Contains(token) {
		return
	}
	if c.Resolver.IsSystem(token) {
		c.Standard.Add(token)
	} else {
		c.External.Add(token)
	}
}
