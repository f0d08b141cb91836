// This file is part of hackvm - https://github.com/pcardune/hackvm
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

// Package asm provides a disassembler for a linked Hack VM Program
// (github.com/pcardune/hackvm/vm). It plays the role db47h/ngaro's asm
// package plays for Ngaro images, but only in the listing direction: the
// Hack VM's own assembler is vm.Parse plus vm.Link, there being no separate
// textual "Hack VM assembly" distinct from the .vm source format itself.
//
// Disassemble renders the flat instruction array with branch/call targets
// resolved to absolute indices, marking function entries and native call
// sites; FunctionTable renders the function table and the per-unit static
// bases. Both are useful for get_debug-style tooling and the reference
// CLI's -disasm flag.
package asm
