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

// Package include recognizes #include directives on a single line of C
// source, distinguishing quoted ("local") includes from angle-bracketed
// ("system") ones. It is a minimal, single-line scan: it does not expand
// macros and does not understand macro-indirect includes like
// "#include SOMETHING".
package include

import "strings"

// Kind classifies a line's #include directive, if any.
type Kind byte

const (
	// None means the line is not a recognizable #include directive.
	None Kind = iota
	// Quoted is `#include "header.h"`.
	Quoted
	// Angled is `#include <header.h>`.
	Angled
)

// Directive is the result of scanning a single line for an #include.
type Directive struct {
	Kind  Kind
	Token string
}

// Parse scans a single line for an #include directive. It returns
// Kind == None if the line isn't one, if it uses macro indirection
// (`#include FOO`), or if it's missing a closing delimiter.
func Parse(line string) Directive {
	s := strings.TrimLeft(line, " \t")
	s, ok := cutPrefix(s, "#")
	if !ok {
		return Directive{}
	}
	s = strings.TrimLeft(s, " \t")
	s, ok = cutPrefix(s, "include")
	if !ok {
		return Directive{}
	}
	s = strings.TrimLeft(s, " \t")
	if s == "" {
		return Directive{}
	}

	var kind Kind
	var closing byte
	switch s[0] {
	case '"':
		kind = Quoted
		closing = '"'
	case '<':
		kind = Angled
		closing = '>'
	default:
		return Directive{}
	}
	rest := s[1:]
	end := strings.IndexByte(rest, closing)
	if end < 0 {
		return Directive{}
	}
	return Directive{Kind: kind, Token: rest[:end]}
}

func cutPrefix(s, prefix string) (string, bool) {
	if !strings.HasPrefix(s, prefix) {
		return s, false
	}
	return s[len(prefix):], true
}
