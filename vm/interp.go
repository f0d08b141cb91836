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

// The fetch-decode-execute loop here plays the role of db47h/ngaro's
// Instance.Run (vm/core.go): a switch over an opcode enum advancing a
// program counter against a flat instruction array. The operand/call stacks
// live in RAM rather than as separate Go slices (ngaro keeps data/address
// as dedicated slices with a Tos cache) because the Hack VM's calling
// convention (§4.4) explicitly specifies the stack frame layout in terms of
// RAM addresses that VM code itself can read (LCL-5 etc.), so the stack has
// to be real, addressable memory rather than a Go-side cache.

package vm

import "github.com/pkg/errors"

// Instance is one running Hack VM: an immutable Program plus the mutable
// RAM, program counter and native OS state the interpreter advances.
// Instances are not safe for concurrent use (§5): a single Instance is
// driven by one goroutine calling Tick/TickProfiled in series.
type Instance struct {
	Program *Program
	RAM     Memory
	PC      int
	Status  Status
	Fault   error

	os osState

	// callNames is a shadow stack of function names parallel to the VM
	// call stack, maintained on every OpCall/OpReturn regardless of
	// profiling state. It backs Debug() and is reused, when profiling is
	// active, by the profiler (profile.go) instead of duplicating the
	// bookkeeping (§9 "Profiling").
	callNames []string

	steps int64

	prof *profiler

	pending []*ParsedUnit // buffered by LoadFile, consumed by Init

	opts instanceOptions
}

type instanceOptions struct {
	// WaitScale approximates the host tick rate Sys.wait(n) should scale
	// against: each unit of n costs WaitScale native-call retries (one
	// interpreter step each, however those steps are spread across Ticks)
	// before the call completes. §4.6 calls this "approximate only".
	WaitScale int
}

// Option configures an Instance at construction time, in the same style as
// db47h/ngaro's vm.Option (vm/vm.go: DataSize, AddressSize, Output, ...).
type Option func(*Instance) error

// WaitScale sets the Sys.wait(n) scaling factor described on
// instanceOptions.WaitScale. The default is 1000.
func WaitScale(n int) Option {
	return func(i *Instance) error {
		if n < 1 {
			return errors.Errorf("WaitScale must be >= 1, got %d", n)
		}
		i.opts.WaitScale = n
		return nil
	}
}

// SetOptions applies the given options in order, matching
// db47h/ngaro's Instance.SetOptions.
func (i *Instance) SetOptions(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(i); err != nil {
			return err
		}
	}
	return nil
}

// NewInstance allocates a fresh, empty Instance. Call LoadFile for each
// translation unit, then Init before the first Tick.
func NewInstance(opts ...Option) (*Instance, error) {
	i := &Instance{
		RAM:    NewMemory(),
		Status: StatusRunning,
		opts:   instanceOptions{WaitScale: 1000},
	}
	if err := i.SetOptions(opts...); err != nil {
		return nil, err
	}
	return i, nil
}

// push writes v to RAM[SP] and increments SP, per the §4.4 stack
// convention. It reports a RuntimeError if SP has run off the end of RAM.
func (i *Instance) push(v Word) error {
	sp := int(i.RAM[AddrSP])
	if sp < 0 || sp >= len(i.RAM) {
		return errors.WithStack(&RuntimeError{PC: i.PC, Reason: "operand stack overflow"})
	}
	i.RAM[sp] = v
	i.RAM[AddrSP] = Word(sp + 1)
	return nil
}

// pop decrements SP and returns RAM[SP], per the §4.4 stack convention. It
// reports a RuntimeError on stack underflow.
func (i *Instance) pop() (Word, error) {
	sp := int(i.RAM[AddrSP]) - 1
	if sp < 0 {
		return 0, errors.WithStack(&RuntimeError{PC: i.PC, Reason: "operand stack underflow"})
	}
	v := i.RAM[sp]
	i.RAM[AddrSP] = Word(sp)
	return v, nil
}

// segAddr resolves a push/pop segment+index operand to an absolute RAM
// address, per the decode table in §4.4. SegConstant has no address and is
// handled directly by the caller.
func (i *Instance) segAddr(seg Segment, idx int) (int, error) {
	switch seg {
	case SegLocal:
		return int(i.RAM[AddrLCL]) + idx, nil
	case SegArgument:
		return int(i.RAM[AddrARG]) + idx, nil
	case SegThis:
		return int(i.RAM[AddrTHIS]) + idx, nil
	case SegThat:
		return int(i.RAM[AddrTHAT]) + idx, nil
	case SegPointer:
		if idx == 0 {
			return AddrTHIS, nil
		}
		return AddrTHAT, nil
	case SegTemp:
		return AddrTemp + idx, nil
	case SegStatic:
		// The linker already rewrote this to an absolute address
		// (linker.go, resolveStatics inline in Link); the interpreter
		// never needs to know which file an instruction came from (§9).
		return idx, nil
	default:
		return 0, errors.WithStack(&RuntimeError{PC: i.PC, Reason: "bad segment in push/pop"})
	}
}

// pushCallName/popCallName maintain the shadow call-name stack (§9).
func (i *Instance) pushCallName(name string) {
	i.callNames = append(i.callNames, name)
}

func (i *Instance) popCallName() {
	if n := len(i.callNames); n > 0 {
		i.callNames = i.callNames[:n-1]
	}
}

// CurrentFunction returns the name of the function whose body PC currently
// points into, or "" before any call has been made.
func (i *Instance) CurrentFunction() string {
	if n := len(i.callNames); n > 0 {
		return i.callNames[n-1]
	}
	return ""
}

// step executes exactly one instruction. It returns an error, which step
// callers translate into StatusFaulted. PC is left unchanged when a native
// call stalls waiting on the keyboard or a Sys.wait countdown.
func (i *Instance) step() error {
	ins := &i.Program.Instructions[i.PC]
	switch ins.Op {
	case OpPush:
		var v Word
		if ins.Segment == SegConstant {
			v = Word(ins.Index)
		} else {
			addr, err := i.segAddr(ins.Segment, ins.Index)
			if err != nil {
				return err
			}
			v, err = i.RAM.Peek(addr)
			if err != nil {
				return err
			}
		}
		if err := i.push(v); err != nil {
			return err
		}
		i.PC++

	case OpPop:
		addr, err := i.segAddr(ins.Segment, ins.Index)
		if err != nil {
			return err
		}
		v, err := i.pop()
		if err != nil {
			return err
		}
		if err := i.RAM.Poke(addr, v); err != nil {
			return err
		}
		i.PC++

	case OpAdd, OpSub, OpAnd, OpOr:
		y, err := i.pop()
		if err != nil {
			return err
		}
		x, err := i.pop()
		if err != nil {
			return err
		}
		var r Word
		switch ins.Op {
		case OpAdd:
			r = x + y
		case OpSub:
			r = x - y
		case OpAnd:
			r = x & y
		case OpOr:
			r = x | y
		}
		if err := i.push(r); err != nil {
			return err
		}
		i.PC++

	case OpNeg, OpNot:
		x, err := i.pop()
		if err != nil {
			return err
		}
		var r Word
		if ins.Op == OpNeg {
			r = -x
		} else {
			r = ^x
		}
		if err := i.push(r); err != nil {
			return err
		}
		i.PC++

	case OpEq, OpLt, OpGt:
		y, err := i.pop()
		if err != nil {
			return err
		}
		x, err := i.pop()
		if err != nil {
			return err
		}
		var cond bool
		switch ins.Op {
		case OpEq:
			cond = x == y
		case OpLt:
			cond = x < y
		case OpGt:
			cond = x > y
		}
		var r Word
		if cond {
			r = -1
		}
		if err := i.push(r); err != nil {
			return err
		}
		i.PC++

	case OpLabel:
		i.PC++

	case OpGoto:
		i.PC = ins.Target

	case OpIfGoto:
		v, err := i.pop()
		if err != nil {
			return err
		}
		if v != 0 {
			i.PC = ins.Target
		} else {
			i.PC++
		}

	case OpFunction:
		for k := 0; k < ins.NLocals; k++ {
			if err := i.push(0); err != nil {
				return err
			}
		}
		i.PC++

	case OpCall:
		return i.doCall(ins)

	case OpCallNative:
		return i.doCallNative(ins)

	case OpReturn:
		return i.doReturn()

	case OpHalt:
		i.Status = StatusHalted

	default:
		return errors.WithStack(&RuntimeError{PC: i.PC, Reason: "unreachable opcode"})
	}
	return nil
}

// doCall implements the calling convention of §4.4: it saves the caller's
// frame, computes the callee's ARG base, sets LCL = SP, and jumps to the
// callee's entry (whose `function` header, executed next, allocates the
// local slots).
func (i *Instance) doCall(ins *Instruction) error {
	if err := i.push(Word(i.PC + 1)); err != nil {
		return err
	}
	for _, reg := range [4]int{AddrLCL, AddrARG, AddrTHIS, AddrTHAT} {
		if err := i.push(i.RAM[reg]); err != nil {
			return err
		}
	}
	sp := int(i.RAM[AddrSP])
	newArg := sp - ins.NArgs - 5
	if newArg < 0 {
		return errors.WithStack(&RuntimeError{PC: i.PC, Reason: "call argument underflow"})
	}
	i.RAM[AddrARG] = Word(newArg)
	i.RAM[AddrLCL] = Word(sp)
	i.PC = ins.Target
	i.pushCallName(ins.Name)
	if i.prof != nil {
		i.prof.countCall(ins.Name)
	}
	return nil
}

// doReturn implements the five steps of §4.4's `return`.
func (i *Instance) doReturn() error {
	frame := int(i.RAM[AddrLCL])
	ret, err := i.RAM.Peek(frame - 5)
	if err != nil {
		return err
	}
	retVal, err := i.pop()
	if err != nil {
		return err
	}
	argAddr := int(i.RAM[AddrARG])
	if err := i.RAM.Poke(argAddr, retVal); err != nil {
		return err
	}
	i.RAM[AddrSP] = Word(argAddr + 1)
	that, err := i.RAM.Peek(frame - 1)
	if err != nil {
		return err
	}
	this, err := i.RAM.Peek(frame - 2)
	if err != nil {
		return err
	}
	arg, err := i.RAM.Peek(frame - 3)
	if err != nil {
		return err
	}
	lcl, err := i.RAM.Peek(frame - 4)
	if err != nil {
		return err
	}
	i.RAM[AddrTHAT] = that
	i.RAM[AddrTHIS] = this
	i.RAM[AddrARG] = arg
	i.RAM[AddrLCL] = lcl
	i.PC = int(ret)
	i.popCallName()
	return nil
}

// doCallNative dispatches to a native OS routine (§4.6). Arguments are only
// popped, and the result only pushed, once the routine reports done: a
// blocking Keyboard read can poll several times, across several Ticks,
// before that happens, leaving the operand stack untouched in the meantime.
func (i *Instance) doCallNative(ins *Instruction) error {
	fn, ok := nativeFns[ins.Native]
	if !ok {
		return errors.WithStack(&RuntimeError{PC: i.PC, Reason: "unknown native: " + ins.Name})
	}
	if ins.NArgs < nativeArity[ins.Native] {
		return errors.WithStack(&RuntimeError{PC: i.PC, Reason: "wrong argument count for native: " + ins.Name})
	}
	sp := int(i.RAM[AddrSP])
	base := sp - ins.NArgs
	if base < 0 {
		return errors.WithStack(&RuntimeError{PC: i.PC, Reason: "native call argument underflow: " + ins.Name})
	}
	result, done, err := fn(i, i.RAM[base:sp])
	if err != nil {
		return err
	}
	if !done {
		return nil
	}
	i.RAM[AddrSP] = Word(base)
	if err := i.push(result); err != nil {
		return err
	}
	i.PC++
	return nil
}
