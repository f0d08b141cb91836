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

// Link plays the role the teacher splits across asm.Assemble and the
// implicit single-file linking ngaro images already have (ngaro has no
// multi-file linking step; Hack VM's cross-file function/static resolution
// is this package's closest analogue to db47h/ngaro asm/parser.go's label
// resolution pass, generalized to span multiple translation units).

package vm

import "github.com/pkg/errors"

const maxStatics = 240

// Link merges parsed translation units into a single Program. Units are
// processed in the order supplied; within each unit, static indices are
// assigned a base per §4.2 step 2a and branch labels are resolved against
// that unit's own function-local label table.
func Link(units []*ParsedUnit) (*Program, error) {
	p := &Program{
		Functions: make(map[string]FuncEntry),
		Statics:   make(map[string]int),
	}

	// Reserve slot 0 for the bootstrap call; its target is patched once we
	// know whether the program defines Sys.init. Slot 1 is the terminal
	// halt marker the bootstrap's call returns into.
	p.Instructions = append(p.Instructions, Instruction{Op: OpCall, NArgs: 0})
	p.Instructions = append(p.Instructions, Instruction{Op: OpHalt})

	nextStatic := StaticBase
	for _, u := range units {
		base := nextStatic
		p.Statics[u.File] = base
		if u.MaxStatic >= 0 {
			nextStatic += u.MaxStatic + 1
		}
		if nextStatic-StaticBase > maxStatics {
			return nil, errors.WithStack(&LinkError{File: u.File, Reason: "static segment overflow: more than 240 statics across program"})
		}

		offset := len(p.Instructions)
		labels, err := scopedLabels(u)
		if err != nil {
			return nil, err
		}

		var curFunc string
		for _, ins := range u.Instructions {
			switch ins.Op {
			case OpFunction:
				curFunc = ins.Name
				if _, dup := p.Functions[ins.Name]; dup {
					return nil, errors.WithStack(&LinkError{File: u.File, Reason: "duplicate function: " + ins.Name})
				}
				p.Functions[ins.Name] = FuncEntry{Entry: len(p.Instructions), NLocals: ins.NLocals}
			case OpGoto, OpIfGoto:
				target, ok := labels[curFunc+"\x00"+ins.Name]
				if !ok {
					return nil, errors.WithStack(&LinkError{File: u.File, Reason: "undefined label in " + curFunc + ": " + ins.Name})
				}
				ins.Target = target + offset
			case OpPush, OpPop:
				if ins.Segment == SegStatic {
					ins.Index = base + ins.Index
				}
			}
			p.Instructions = append(p.Instructions, ins)
		}
	}

	// Resolve call targets: direct call into the linked function table, or
	// a native dispatch when no program-supplied body exists for that name
	// (§4.6, §9 "Native vs. VM override").
	for idx := range p.Instructions {
		ins := &p.Instructions[idx]
		if ins.Op != OpCall || idx == 0 { // idx 0 is the bootstrap, patched below
			continue
		}
		if fn, ok := p.Functions[ins.Name]; ok {
			ins.Target = fn.Entry
			continue
		}
		if nid, ok := nativeTable[ins.Name]; ok {
			ins.Op = OpCallNative
			ins.Native = nid
			continue
		}
		return nil, errors.WithStack(&LinkError{File: ins.File, Reason: "undefined call target: " + ins.Name})
	}

	if err := resolveBootstrap(p); err != nil {
		return nil, err
	}

	return p, nil
}

// resolveBootstrap points instruction 0's `call` at Sys.init, or at
// Main.main if the program doesn't supply its own Sys.init — which is
// exactly what the native Sys.init fallback in §4.6 does ("calls Main.main
// then Sys.halt"), so choosing the target at link time makes that fallback
// free at run time instead of needing a native handler that can itself
// issue a VM call (see DESIGN.md, "Sys.init and nativeTable", for the
// rationale).
func resolveBootstrap(p *Program) error {
	boot := &p.Instructions[0]
	if fn, ok := p.Functions["Sys.init"]; ok {
		boot.Target = fn.Entry
		boot.Name = "Sys.init"
		p.EntryFunction = "Sys.init"
		return nil
	}
	if fn, ok := p.Functions["Main.main"]; ok {
		boot.Target = fn.Entry
		boot.Name = "Main.main"
		p.EntryFunction = "Main.main"
		return nil
	}
	return errors.WithStack(&LinkError{Reason: "no Sys.init or Main.main defined"})
}

// scopedLabels builds a "func\x00label" -> unit-relative-index map for one
// translation unit. Labels are scoped to their enclosing function per
// §4.1: the same label text may be reused in different functions.
func scopedLabels(u *ParsedUnit) (map[string]int, error) {
	labels := make(map[string]int)
	var curFunc string
	for i, ins := range u.Instructions {
		if ins.Op == OpFunction {
			curFunc = ins.Name
		}
		if ins.Op == OpLabel {
			key := curFunc + "\x00" + ins.Name
			if _, dup := labels[key]; dup {
				return nil, errors.WithStack(&LinkError{File: u.File, Reason: "duplicate label in " + curFunc + ": " + ins.Name})
			}
			labels[key] = i
		}
	}
	return labels, nil
}
