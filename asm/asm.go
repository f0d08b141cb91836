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

package asm

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pcardune/hackvm/vm"
)

// Disassemble renders every instruction in p in program order, with a
// function-entry marker inserted ahead of each function's first
// instruction. Each line is "<index>\t<instruction text>".
func Disassemble(p *vm.Program) string {
	entries := make(map[int]string, len(p.Functions))
	for name, fn := range p.Functions {
		entries[fn.Entry] = name
	}

	var b strings.Builder
	for idx, ins := range p.Instructions {
		if name, ok := entries[idx]; ok {
			fmt.Fprintf(&b, "; --- %s ---\n", name)
		}
		fmt.Fprintf(&b, "%4d\t%s\n", idx, ins)
	}
	return b.String()
}

// FunctionTable renders the linked function table sorted by entry address,
// one "<name> entry=<n> locals=<n>" line per function, followed by the
// static segment base assigned to each translation unit. Useful alongside
// Disassemble for inspecting link results without stepping the interpreter.
func FunctionTable(p *vm.Program) string {
	type fn struct {
		name string
		e    vm.FuncEntry
	}
	fns := make([]fn, 0, len(p.Functions))
	for name, e := range p.Functions {
		fns = append(fns, fn{name, e})
	}
	sort.Slice(fns, func(i, j int) bool { return fns[i].e.Entry < fns[j].e.Entry })

	var b strings.Builder
	b.WriteString("functions:\n")
	for _, f := range fns {
		fmt.Fprintf(&b, "  %-24s entry=%-6d locals=%d\n", f.name, f.e.Entry, f.e.NLocals)
	}

	units := make([]string, 0, len(p.Statics))
	for u := range p.Statics {
		units = append(units, u)
	}
	sort.Slice(units, func(i, j int) bool { return p.Statics[units[i]] < p.Statics[units[j]] })
	b.WriteString("statics:\n")
	for _, u := range units {
		fmt.Fprintf(&b, "  %-24s base=%d\n", u, p.Statics[u])
	}
	return b.String()
}
