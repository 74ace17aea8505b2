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
	"context"
	"errors"
	"os/exec"
	"time"
)

// maxCapturedOutput bounds the combined stdout+stderr captured from the
// compiler; excess is truncated silently, per spec.md §4.8.
const maxCapturedOutput = 64 * 1024

// defaultTimeout bounds a single syntax-only invocation, guarding against
// a hung compiler process (e.g. one blocked reading stdin it never gets).
const defaultTimeout = 20 * time.Second

// NewExecCompiler returns a Compiler that shells out to ccPath (or "cc" if
// empty) in syntax-only mode: "<ccPath> -fsyntax-only -x c <path>". If the
// process doesn't exit within defaultTimeout, its whole process group is
// killed.
func NewExecCompiler(ccPath string) Compiler {
	if ccPath == "" {
		ccPath = "cc"
	}
	return func(path string) (int, []byte, error) {
		ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
		defer cancel()

		cmd := exec.CommandContext(ctx, ccPath, "-fsyntax-only", "-x", "c", path)
		configureProcessGroup(cmd)
		buf := &boundedBuffer{limit: maxCapturedOutput}
		cmd.Stdout = buf
		cmd.Stderr = buf

		err := cmd.Run()
		var exitErr *exec.ExitError
		switch {
		case err == nil:
			return 0, buf.Bytes(), nil
		case errors.As(err, &exitErr):
			return exitErr.ExitCode(), buf.Bytes(), nil
		default:
			// The probe failed to execute at all (spec.md §7's
			// CompilerAbsent): the caller keeps the unmodified candidate.
			return 0, buf.Bytes(), err
		}
	}
}

// boundedBuffer is an io.Writer that stops accumulating bytes past limit
// while still reporting a successful write, so cmd.Run() never fails
// because the compiler was chatty.
type boundedBuffer struct {
	buf   []byte
	limit int
}

func (b *boundedBuffer) Write(p []byte) (int, error) {
	if room := b.limit - len(b.buf); room > 0 {
		if room > len(p) {
			room = len(p)
		}
		b.buf = append(b.buf, p[:room]...)
	}
	return len(p), nil
}

func (b *boundedBuffer) Bytes() []byte { return b.buf }
