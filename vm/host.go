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

// The host-facing surface here (LoadFile/Init/Tick/Reset/SetKeyboard/
// DrawScreen/Debug) plays the role db47h/ngaro splits across vm.Load,
// vm.New and Instance.Run (vm/mem.go, vm/vm.go, vm/core.go): a staged
// load-then-link-then-run lifecycle, except our "load" step buffers text
// rather than reading a binary image, since the VM text files are the
// program's source form, not a pre-linked artifact (§4.2, §4.7).

package vm

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// LoadFile parses one translation unit's text and buffers it for the next
// Init call. Per §1's non-goals, units cannot be loaded after Init: doing
// so returns an error rather than silently relinking.
func (i *Instance) LoadFile(name string, r io.Reader) error {
	if i.Program != nil {
		return errors.Errorf("LoadFile(%s): cannot load additional units after Init", name)
	}
	u, err := Parse(name, r)
	if err != nil {
		return err
	}
	i.pending = append(i.pending, u)
	return nil
}

// Init links every buffered translation unit into a Program, zeroes RAM,
// and sets SP=256 and PC=0 ready to execute the bootstrap prologue (§4.2,
// §3 "Lifetime").
func (i *Instance) Init() error {
	p, err := Link(i.pending)
	if err != nil {
		return err
	}
	i.Program = p
	i.pending = nil
	i.resetState()
	return nil
}

// resetState zeroes RAM and native OS state and rewinds PC to the
// bootstrap, without touching the linked Program. Shared by Init and Reset.
func (i *Instance) resetState() {
	i.RAM.Reset()
	i.RAM[AddrSP] = StackBase
	i.PC = 0
	i.Status = StatusRunning
	i.Fault = nil
	i.callNames = nil
	i.steps = 0
	i.os.reset()
}

// Reset implements §4.5: it clears RAM, rewinds PC, sets SP=256 and
// re-enters at the bootstrap prologue, re-running Sys.init from scratch.
// The linked Program is preserved.
func (i *Instance) Reset() error {
	if i.Program == nil {
		return errors.New("Reset: not initialized")
	}
	i.resetState()
	return nil
}

// Tick advances the interpreter at most maxSteps times, stopping early on
// Halt or Fault (§4.4). It returns the number of steps actually executed.
// Once Status is no longer StatusRunning, Tick is a no-op that returns
// (0, i.Fault) (§4.4, §7).
func (i *Instance) Tick(maxSteps int) (int, error) {
	return i.tick(maxSteps, false)
}

// TickProfiled behaves like Tick but additionally accumulates per-function
// instruction counts, retrievable with Stats (§4.7, §9 "Profiling"). The
// profiler it creates stays attached, so once TickProfiled has been called,
// later plain Tick calls update the same counters too.
func (i *Instance) TickProfiled(maxSteps int) (int, error) {
	return i.tick(maxSteps, true)
}

func (i *Instance) tick(maxSteps int, profiled bool) (int, error) {
	if i.Status != StatusRunning {
		return 0, i.Fault
	}
	if profiled && i.prof == nil {
		i.prof = newProfiler()
	}
	executed := 0
	for executed < maxSteps && i.Status == StatusRunning {
		if i.prof != nil {
			i.prof.countStep(i.CurrentFunction())
		}
		if err := i.step(); err != nil {
			i.Status = StatusFaulted
			i.Fault = err
			break
		}
		i.steps++
		executed++
	}
	return executed, i.Fault
}

// Run executes to completion (Halted or Faulted) or until maxSteps total
// instructions have run, whichever comes first, batching internally in
// chunks of 10000 steps. It is a convenience for offline/batch use (tests,
// the CLI) distinct from the frame-paced Tick an interactive host drives
// (SPEC_FULL.md §4, "Single-program run-to-completion helper").
func (i *Instance) Run(maxSteps int) (int, error) {
	const batch = 10000
	total := 0
	for total < maxSteps && i.Status == StatusRunning {
		n := batch
		if total+n > maxSteps {
			n = maxSteps - total
		}
		executed, err := i.Tick(n)
		total += executed
		if err != nil {
			return total, err
		}
		if executed == 0 {
			break
		}
	}
	return total, i.Fault
}

// SetKeyboard writes code to the keyboard register (RAM[24576]), per §4.7.
// 0 means released. code must lie in 0..255, a range that covers the Hack
// ASCII and special-key codes of §6.
func (i *Instance) SetKeyboard(code int) error {
	if code < 0 || code > 255 {
		return errors.Errorf("SetKeyboard: code out of range [0..255]: %d", code)
	}
	i.RAM[KeyboardAddr] = Word(code)
	return nil
}

// ScreenSink receives one full frame per DrawScreen call. pixels is
// row-major, width*height bytes, one per pixel: 0 = white, 1 = black. The
// sink contract is one call per frame (§4.7).
type ScreenSink func(pixels []byte, width, height int)

// DrawScreen unpacks the bit-packed screen region (§3, §6) into a flat
// one-byte-per-pixel buffer and hands it to sink.
func (i *Instance) DrawScreen(sink ScreenSink) {
	buf := make([]byte, ScreenCols*ScreenRows)
	for r := 0; r < ScreenRows; r++ {
		for w := 0; w < ScreenWordsPerRow; w++ {
			word := i.RAM[ScreenBase+r*ScreenWordsPerRow+w]
			for b := 0; b < 16; b++ {
				if (word>>uint(b))&1 != 0 {
					buf[r*ScreenCols+w*16+b] = 1
				}
			}
		}
	}
	sink(buf, ScreenCols, ScreenRows)
}

// Debug returns a textual dump matching the shape of the original
// implementation's debug(): step counter, call stack, an operand-stack
// window, and the next instruction, as required by §4.7's get_debug (format
// left open there; SPEC_FULL.md §4 resolves it to follow the original).
func (i *Instance) Debug() string {
	var b strings.Builder
	fmt.Fprintf(&b, "step: %d\n", i.steps)
	fmt.Fprintf(&b, "pc: %d status: %s\n", i.PC, i.Status)
	if i.Fault != nil {
		fmt.Fprintf(&b, "fault: %v\n", i.Fault)
	}
	b.WriteString("call stack:\n")
	for k := len(i.callNames) - 1; k >= 0; k-- {
		fmt.Fprintf(&b, "  %s\n", i.callNames[k])
	}
	sp := int(i.RAM[AddrSP])
	lo := sp - 8
	if lo < StackBase {
		lo = StackBase
	}
	fmt.Fprintf(&b, "sp: %d lcl: %d arg: %d this: %d that: %d\n",
		sp, i.RAM[AddrLCL], i.RAM[AddrARG], i.RAM[AddrTHIS], i.RAM[AddrTHAT])
	b.WriteString("stack:")
	for a := lo; a < sp; a++ {
		b.WriteString(" " + strconv.Itoa(int(i.RAM[a])))
	}
	b.WriteString("\n")
	if i.Program != nil && i.PC < len(i.Program.Instructions) {
		fmt.Fprintf(&b, "next: %s\n", i.Program.Instructions[i.PC])
	}
	return b.String()
}
