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

package vm

import (
	"strings"
	"testing"
)

// run links the given file-name/source pairs, runs the program to
// completion (or maxSteps, whichever first) and returns the Instance for
// inspection, matching the shape of the scenarios in spec.md §8.
func run(t *testing.T, maxSteps int, files map[string]string) *Instance {
	t.Helper()
	inst, err := NewInstance()
	if err != nil {
		t.Fatalf("NewInstance: %v", err)
	}
	for name, src := range files {
		if err := inst.LoadFile(name, strings.NewReader(src)); err != nil {
			t.Fatalf("LoadFile(%s): %v", name, err)
		}
	}
	if err := inst.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if inst.RAM[AddrSP] != StackBase || inst.PC != 0 {
		t.Fatalf("post-Init invariant violated: SP=%d PC=%d", inst.RAM[AddrSP], inst.PC)
	}
	if _, err := inst.Run(maxSteps); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if inst.Status != StatusHalted {
		t.Fatalf("Status = %s, want halted (fault: %v)", inst.Status, inst.Fault)
	}
	return inst
}

// Scenario 1: add two constants.
func TestScenarioAddTwoConstants(t *testing.T) {
	inst := run(t, 1000, map[string]string{
		"Main": "function Main.main 0\npush constant 7\npush constant 8\nadd\nreturn\n",
	})
	if inst.RAM[256] != 15 {
		t.Errorf("RAM[256] = %d, want 15", inst.RAM[256])
	}
	if inst.RAM[AddrSP] != 257 {
		t.Errorf("SP = %d, want 257", inst.RAM[AddrSP])
	}
}

// Scenario 2: function with locals and static.
func TestScenarioLocalsAndStatic(t *testing.T) {
	src := `function Main.main 2
push constant 3
pop local 0
push constant 5
pop local 1
push local 0
push local 1
sub
pop static 0
push static 0
return
`
	inst := run(t, 1000, map[string]string{"Main": src})
	if inst.RAM[16] != -2 {
		t.Errorf("RAM[16] (Main's static 0) = %d, want -2", inst.RAM[16])
	}
}

// Scenario 3: branching.
func TestScenarioBranching(t *testing.T) {
	src := `function Main.main 0
push constant 10
push constant 10
eq
if-goto EQUAL
push constant 0
return
label EQUAL
push constant 1
return
`
	inst := run(t, 1000, map[string]string{"Main": src})
	if got := inst.RAM[inst.RAM[AddrSP]-1]; got != 1 {
		t.Errorf("return value = %d, want 1", got)
	}
}

// Scenario 4: call + return convention, with a native builtin in the mix.
func TestScenarioCallReturnConvention(t *testing.T) {
	src := `function Main.mul 0
push argument 0
push argument 1
call Math.multiply 2
return
function Main.main 0
push constant 6
push constant 7
call Main.mul 2
return
`
	inst := run(t, 1000, map[string]string{"Main": src})
	if got := inst.RAM[inst.RAM[AddrSP]-1]; got != 42 {
		t.Errorf("return value = %d, want 42", got)
	}
	if inst.RAM[AddrLCL] != 0 || inst.RAM[AddrARG] != 0 || inst.RAM[AddrTHIS] != 0 || inst.RAM[AddrTHAT] != 0 {
		t.Errorf("segment pointers not restored: LCL=%d ARG=%d THIS=%d THAT=%d",
			inst.RAM[AddrLCL], inst.RAM[AddrARG], inst.RAM[AddrTHIS], inst.RAM[AddrTHAT])
	}
}

// Scenario 5: screen poke via Memory.poke.
func TestScenarioScreenPoke(t *testing.T) {
	src := `function Main.main 0
push constant 16384
push constant 1
neg
call Memory.poke 2
return
`
	inst := run(t, 1000, map[string]string{"Main": src})
	if inst.RAM[ScreenBase] != -1 {
		t.Errorf("RAM[16384] = %d, want -1", inst.RAM[ScreenBase])
	}
}

// Scenario 6: keyboard read reflects the host-set register.
func TestScenarioKeyboardRead(t *testing.T) {
	inst, err := NewInstance()
	if err != nil {
		t.Fatal(err)
	}
	src := "function Sys.init 0\ncall Keyboard.keyPressed 0\nreturn\n"
	if err := inst.LoadFile("Main", strings.NewReader(src)); err != nil {
		t.Fatal(err)
	}
	if err := inst.Init(); err != nil {
		t.Fatal(err)
	}
	if err := inst.SetKeyboard(65); err != nil {
		t.Fatal(err)
	}
	if _, err := inst.Run(1000); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := inst.RAM[inst.RAM[AddrSP]-1]; got != 65 {
		t.Errorf("stack top = %d, want 65", got)
	}

	if err := inst.Reset(); err != nil {
		t.Fatal(err)
	}
	if err := inst.SetKeyboard(0); err != nil {
		t.Fatal(err)
	}
	if _, err := inst.Run(1000); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := inst.RAM[inst.RAM[AddrSP]-1]; got != 0 {
		t.Errorf("stack top after release = %d, want 0", got)
	}
}

func TestArithmeticWrapsAndComparisonsReturnCanonicalBooleans(t *testing.T) {
	src := `function Main.main 0
push constant 32767
push constant 1
add
push constant 3
push constant 3
eq
push constant 1
push constant 2
lt
push constant 2
push constant 1
gt
return
`
	inst, err := NewInstance()
	if err != nil {
		t.Fatal(err)
	}
	if err := inst.LoadFile("Main", strings.NewReader(src)); err != nil {
		t.Fatal(err)
	}
	if err := inst.Init(); err != nil {
		t.Fatal(err)
	}
	// Stop just before Main.main's return, which keeps only the top value:
	// bootstrap call, function header, then 12 push/arithmetic steps.
	if n, err := inst.Tick(14); n != 14 || err != nil {
		t.Fatalf("Tick(14) = %d, %v, want 14, nil", n, err)
	}
	sp := int(inst.RAM[AddrSP])
	// stack, bottom to top: wrapped add, eq, lt, gt
	got := []Word{inst.RAM[sp-4], inst.RAM[sp-3], inst.RAM[sp-2], inst.RAM[sp-1]}
	want := []Word{-32768, -1, -1, -1}
	for k := range want {
		if got[k] != want[k] {
			t.Errorf("stack[%d] = %d, want %d", k, got[k], want[k])
		}
	}
}

func TestDivisionByZeroFaults(t *testing.T) {
	inst, err := NewInstance()
	if err != nil {
		t.Fatal(err)
	}
	src := "function Sys.init 0\npush constant 1\npush constant 0\ncall Math.divide 2\nreturn\n"
	if err := inst.LoadFile("Main", strings.NewReader(src)); err != nil {
		t.Fatal(err)
	}
	if err := inst.Init(); err != nil {
		t.Fatal(err)
	}
	if _, err := inst.Run(1000); err == nil {
		t.Fatal("expected a RuntimeError from division by zero")
	}
	if inst.Status != StatusFaulted {
		t.Fatalf("Status = %s, want faulted", inst.Status)
	}
	if n, err := inst.Tick(10); n != 0 || err == nil {
		t.Errorf("Tick after fault: n=%d err=%v, want n=0 and a non-nil error", n, err)
	}
}

func TestResetClearsFaultAndRAM(t *testing.T) {
	inst, err := NewInstance()
	if err != nil {
		t.Fatal(err)
	}
	src := "function Sys.init 0\npush constant 1\npush constant 0\ncall Math.divide 2\nreturn\n"
	if err := inst.LoadFile("Main", strings.NewReader(src)); err != nil {
		t.Fatal(err)
	}
	if err := inst.Init(); err != nil {
		t.Fatal(err)
	}
	inst.Run(1000)
	if inst.Status != StatusFaulted {
		t.Fatal("expected fault before reset")
	}
	if err := inst.Reset(); err != nil {
		t.Fatal(err)
	}
	if inst.Status != StatusRunning || inst.PC != 0 || inst.RAM[AddrSP] != StackBase {
		t.Errorf("Reset did not restore initial state: status=%s pc=%d sp=%d", inst.Status, inst.PC, inst.RAM[AddrSP])
	}
}

func TestStaticRoundTrip(t *testing.T) {
	src := "function Sys.init 0\npush constant 1234\npop static 5\npush static 5\nreturn\n"
	inst := run(t, 1000, map[string]string{"Main": src})
	if got := inst.RAM[inst.RAM[AddrSP]-1]; got != 1234 {
		t.Errorf("round-tripped static value = %d, want 1234", got)
	}
}
