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

// Program plays the role of the teacher's Image (db47h/ngaro vm/image.go):
// an immutable, linked artifact the interpreter runs directly. Unlike the
// teacher's flat Cell array, ours keeps a resolved Instruction stream plus
// side tables (functions, statics) since our "opcodes" carry structured
// operands rather than being self-describing cells.

package vm

import "sort"

// FuncEntry records where a function's instructions begin and how many
// local slots its header allocates.
type FuncEntry struct {
	Entry   int
	NLocals int
}

// Program is the immutable, linked artifact produced by Link. It is safe
// to run multiple Instances against the same Program concurrently, since
// nothing here is mutated after linking.
type Program struct {
	Instructions []Instruction
	Functions    map[string]FuncEntry
	// Statics maps each translation unit's name to its assigned base
	// address in the shared static pool (§4.2, step 2a).
	Statics map[string]int
	// EntryFunction is the function the bootstrap prologue calls: either
	// the program's own Sys.init, or Main.main when Sys.init isn't
	// user-defined (the native OS library's documented fallback, §4.6).
	EntryFunction string
}

// BuiltinNames returns the sorted names of native OS routines the linker
// would dispatch natively for this Program, i.e. every built-in for which
// the program did not supply its own VM-level implementation. Not part of
// the spec's required surface; a convenience for hosts that want to show
// which calls are served natively (see SPEC_FULL.md §4).
func (p *Program) BuiltinNames() []string {
	var names []string
	for name := range nativeTable {
		if _, userDefined := p.Functions[name]; !userDefined {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
