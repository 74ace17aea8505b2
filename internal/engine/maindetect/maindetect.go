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

// Package maindetect implements the amalgamation engine's entry-point
// filter: a .c file is excluded from the library surface if it defines an
// unguarded top-level main(). A main() guarded by #if/#ifdef/#ifndef is
// left alone, since it's typically an alternate entry point used only by a
// file's own self-test harness.
package maindetect

import "strings"

// HasUnguardedMain reports whether content contains an occurrence of the
// token "main" immediately followed (after optional whitespace) by '(' and
// preceded by a plausible identifier boundary, at a point where the
// preprocessor conditional-nesting depth is zero.
//
// Nesting depth is computed textually: it is the number of #if/#ifdef/
// #ifndef lines seen so far, minus the number of #endif lines seen so far,
// strictly before the line containing the occurrence.
func HasUnguardedMain(content string) bool {
	depth := 0
	lineStart := 0
	for lineStart <= len(content) {
		nl := strings.IndexByte(content[lineStart:], '\n')
		var line string
		var lineEnd int
		if nl < 0 {
			line = content[lineStart:]
			lineEnd = len(content)
		} else {
			line = content[lineStart : lineStart+nl]
			lineEnd = lineStart + nl
		}

		if lineHasUnguardedMainAt(content, lineStart, lineEnd, depth) {
			return true
		}

		trimmed := strings.TrimLeft(line, " \t")
		switch {
		case hasDirective(trimmed, "#if"), hasDirective(trimmed, "#ifdef"), hasDirective(trimmed, "#ifndef"):
			depth++
		case hasDirective(trimmed, "#endif"):
			if depth > 0 {
				depth--
			}
		}

		if nl < 0 {
			break
		}
		lineStart += nl + 1
	}
	return false
}

// hasDirective reports whether trimmed begins with the given directive
// keyword followed by a word boundary (whitespace, end of line, or, for
// "#if" only, '('). "#if" never matches the prefix of "#ifdef"/"#ifndef".
func hasDirective(trimmed, directive string) bool {
	if !strings.HasPrefix(trimmed, directive) {
		return false
	}
	rest := trimmed[len(directive):]
	if directive == "#if" {
		// Don't let "#if" match the prefix of "#ifdef" or "#ifndef".
		if strings.HasPrefix(rest, "def") || strings.HasPrefix(rest, "ndef") {
			return false
		}
	}
	if rest == "" {
		return true
	}
	return rest[0] == ' ' || rest[0] == '\t' || (directive == "#if" && rest[0] == '(')
}

func lineHasUnguardedMainAt(content string, lineStart, lineEnd, depth int) bool {
	if depth != 0 {
		return false
	}
	line := content[lineStart:lineEnd]
	offset := 0
	for {
		idx := strings.Index(line[offset:], "main")
		if idx < 0 {
			return false
		}
		pos := offset + idx
		absPos := lineStart + pos

		if precedingBoundaryOK(content, absPos) && followedByCallParen(content, lineEnd, absPos+len("main")) {
			return true
		}
		offset = pos + len("main")
	}
}

func precedingBoundaryOK(content string, absPos int) bool {
	if absPos == 0 {
		return true
	}
	prev := content[absPos-1]
	return prev == ' ' || prev == '\t' || prev == '\n' || prev == '\r' || prev == '*'
}

// followedByCallParen reports whether, starting at absPos (within the same
// line, bounded by lineEnd), the next non-whitespace byte is '('.
func followedByCallParen(content string, lineEnd, absPos int) bool {
	i := absPos
	for i < lineEnd && (content[i] == ' ' || content[i] == '\t') {
		i++
	}
	return i < lineEnd && content[i] == '('
}
