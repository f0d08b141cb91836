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

func TestLoadFileAfterInitIsError(t *testing.T) {
	i, err := NewInstance()
	if err != nil {
		t.Fatal(err)
	}
	if err := i.LoadFile("Main", strings.NewReader("function Main.main 0\nreturn\n")); err != nil {
		t.Fatal(err)
	}
	if err := i.Init(); err != nil {
		t.Fatal(err)
	}
	if err := i.LoadFile("Extra", strings.NewReader("function Extra.f 0\nreturn\n")); err == nil {
		t.Error("LoadFile after Init: expected an error")
	}
}

func TestResetBeforeInitIsError(t *testing.T) {
	i, err := NewInstance()
	if err != nil {
		t.Fatal(err)
	}
	if err := i.Reset(); err == nil {
		t.Error("Reset before Init: expected an error")
	}
}

func TestSetKeyboardValidatesRange(t *testing.T) {
	i, err := NewInstance()
	if err != nil {
		t.Fatal(err)
	}
	if err := i.SetKeyboard(-1); err == nil {
		t.Error("SetKeyboard(-1): expected an error")
	}
	if err := i.SetKeyboard(256); err == nil {
		t.Error("SetKeyboard(256): expected an error")
	}
	if err := i.SetKeyboard(128); err != nil {
		t.Errorf("SetKeyboard(128): unexpected error %v", err)
	}
	if i.RAM[KeyboardAddr] != 128 {
		t.Errorf("RAM[KeyboardAddr] = %d, want 128", i.RAM[KeyboardAddr])
	}
}

func TestDrawScreenUnpacksBitsRowMajor(t *testing.T) {
	i, err := NewInstance()
	if err != nil {
		t.Fatal(err)
	}
	if err := i.LoadFile("Main", strings.NewReader("function Main.main 0\nreturn\n")); err != nil {
		t.Fatal(err)
	}
	if err := i.Init(); err != nil {
		t.Fatal(err)
	}
	i.RAM[ScreenBase] = 0x0003 // bits 0 and 1 of row 0, word 0 set

	var got []byte
	var gotW, gotH int
	i.DrawScreen(func(pixels []byte, width, height int) {
		got = pixels
		gotW, gotH = width, height
	})
	if gotW != ScreenCols || gotH != ScreenRows {
		t.Fatalf("DrawScreen dims = %dx%d, want %dx%d", gotW, gotH, ScreenCols, ScreenRows)
	}
	if got[0] != 1 || got[1] != 1 || got[2] != 0 {
		t.Errorf("row 0 pixels = %v, want [1 1 0 ...]", got[:3])
	}
}

func TestDebugDoesNotPanicBeforeInit(t *testing.T) {
	i, err := NewInstance()
	if err != nil {
		t.Fatal(err)
	}
	if s := i.Debug(); !strings.Contains(s, "status") {
		t.Errorf("Debug() before Init produced unexpected output: %q", s)
	}
}

func TestTickIsNoOpOnceHalted(t *testing.T) {
	i, err := NewInstance()
	if err != nil {
		t.Fatal(err)
	}
	if err := i.LoadFile("Main", strings.NewReader("function Main.main 0\nreturn\n")); err != nil {
		t.Fatal(err)
	}
	if err := i.Init(); err != nil {
		t.Fatal(err)
	}
	if _, err := i.Run(1000); err != nil {
		t.Fatal(err)
	}
	if i.Status != StatusHalted {
		t.Fatalf("Status = %s, want halted", i.Status)
	}
	n, err := i.Tick(100)
	if n != 0 || err != nil {
		t.Errorf("Tick after halt: n=%d err=%v, want 0, nil", n, err)
	}
}

func TestTickProfiledAccumulatesStats(t *testing.T) {
	i, err := NewInstance()
	if err != nil {
		t.Fatal(err)
	}
	src := "function Main.main 0\npush constant 1\npush constant 2\nadd\nreturn\n"
	if err := i.LoadFile("Main", strings.NewReader(src)); err != nil {
		t.Fatal(err)
	}
	if err := i.Init(); err != nil {
		t.Fatal(err)
	}
	for i.Status == StatusRunning {
		if _, err := i.TickProfiled(1); err != nil {
			t.Fatal(err)
		}
	}
	stats := i.Stats()
	if !strings.Contains(stats, "Main.main") {
		t.Errorf("Stats() missing Main.main entry: %q", stats)
	}
}

func TestBuiltinNamesExcludesUserOverrides(t *testing.T) {
	i, err := NewInstance()
	if err != nil {
		t.Fatal(err)
	}
	src := "function Sys.init 0\nreturn\nfunction Math.multiply 0\nreturn\n"
	if err := i.LoadFile("Main", strings.NewReader(src)); err != nil {
		t.Fatal(err)
	}
	if err := i.Init(); err != nil {
		t.Fatal(err)
	}
	for _, name := range i.Program.BuiltinNames() {
		if name == "Math.multiply" {
			t.Error("BuiltinNames: user-defined Math.multiply should not be listed")
		}
	}
}
