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

//go:build !unix

package compileloop

import "os/exec"

// configureProcessGroup is a no-op on non-POSIX platforms; the context
// timeout in NewExecCompiler still kills the direct child process via
// cmd.Cancel's default behavior.
func configureProcessGroup(cmd *exec.Cmd) {}
