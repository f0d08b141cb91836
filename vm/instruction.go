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

// The tagged-variant Instruction here plays the role of the teacher's Cell
// opcode stream (db47h/ngaro vm/opcodes.go), but our instructions carry
// resolved operands (segment+index, branch target, call target) rather than
// being raw cells in a flat array, since the linker (§4.2 of the spec)
// resolves labels and call targets ahead of execution instead of at fetch
// time.

package vm

import "fmt"

// Segment identifies one of the eight addressable memory regions a
// push/pop instruction can reference.
type Segment int

const (
	SegConstant Segment = iota
	SegLocal
	SegArgument
	SegThis
	SegThat
	SegPointer
	SegTemp
	SegStatic
)

var segmentNames = [...]string{
	SegConstant: "constant",
	SegLocal:    "local",
	SegArgument: "argument",
	SegThis:     "this",
	SegThat:     "that",
	SegPointer:  "pointer",
	SegTemp:     "temp",
	SegStatic:   "static",
}

func (s Segment) String() string {
	if int(s) < 0 || int(s) >= len(segmentNames) {
		return "?"
	}
	return segmentNames[s]
}

// Op identifies the operation an Instruction performs.
type Op int

const (
	OpPush Op = iota
	OpPop
	OpAdd
	OpSub
	OpNeg
	OpEq
	OpLt
	OpGt
	OpAnd
	OpOr
	OpNot
	OpLabel // no-op at runtime; resolved away at link time but kept for disassembly
	OpGoto
	OpIfGoto
	OpFunction
	OpCall
	OpCallNative
	OpReturn
	OpHalt
)

var opNames = [...]string{
	OpPush:       "push",
	OpPop:        "pop",
	OpAdd:        "add",
	OpSub:        "sub",
	OpNeg:        "neg",
	OpEq:         "eq",
	OpLt:         "lt",
	OpGt:         "gt",
	OpAnd:        "and",
	OpOr:         "or",
	OpNot:        "not",
	OpLabel:      "label",
	OpGoto:       "goto",
	OpIfGoto:     "if-goto",
	OpFunction:   "function",
	OpCall:       "call",
	OpCallNative: "call-native",
	OpReturn:     "return",
	OpHalt:       "halt",
}

func (o Op) String() string {
	if int(o) < 0 || int(o) >= len(opNames) {
		return "?"
	}
	return opNames[o]
}

// Instruction is the internal representation produced by the parser and
// rewritten in place by the linker. Not every field is meaningful for every
// Op; see the comments on each field.
type Instruction struct {
	Op Op

	// Push/Pop
	Segment Segment
	Index   int // operand index; for a linked push/pop static, this is
	// already the absolute RAM address (rewritten by Link in linker.go), so the
	// interpreter never needs to know which file an instruction came from.

	// Goto/IfGoto
	Target int // resolved instruction index

	// Function
	Name    string // function name, kept for profiling/debug
	NLocals int

	// Call / CallNative
	NArgs  int
	Native nativeID // valid when Op == OpCallNative

	// source position, kept for disassembly and debug dumps
	File string
	Line int
}

// String renders a linked Instruction in roughly the mnemonic shape it was
// parsed from, with branch/call targets resolved to absolute indices. Used
// by Instance.Debug and by the asm package's disassembler.
func (ins Instruction) String() string {
	switch ins.Op {
	case OpPush, OpPop:
		return fmt.Sprintf("%s %s %d", ins.Op, ins.Segment, ins.Index)
	case OpGoto, OpIfGoto:
		return fmt.Sprintf("%s %s -> %d", ins.Op, ins.Name, ins.Target)
	case OpLabel:
		return fmt.Sprintf("label %s", ins.Name)
	case OpFunction:
		return fmt.Sprintf("function %s %d", ins.Name, ins.NLocals)
	case OpCall:
		return fmt.Sprintf("call %s %d -> %d", ins.Name, ins.NArgs, ins.Target)
	case OpCallNative:
		return fmt.Sprintf("call-native %s %d", ins.Name, ins.NArgs)
	default:
		return ins.Op.String()
	}
}
