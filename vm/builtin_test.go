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

import "testing"

func newTestInstance(t *testing.T) *Instance {
	t.Helper()
	i, err := NewInstance()
	if err != nil {
		t.Fatal(err)
	}
	i.os.reset()
	return i
}

func TestMathBuiltins(t *testing.T) {
	i := newTestInstance(t)
	if v, _, err := mathMultiply(i, []Word{6, 7}); err != nil || v != 42 {
		t.Errorf("mathMultiply = %d, %v, want 42, nil", v, err)
	}
	if v, _, err := mathDivide(i, []Word{20, 4}); err != nil || v != 5 {
		t.Errorf("mathDivide = %d, %v, want 5, nil", v, err)
	}
	if _, _, err := mathDivide(i, []Word{1, 0}); err == nil {
		t.Error("mathDivide by zero: expected error")
	}
	if v, _, _ := mathMin(i, []Word{3, -1}); v != -1 {
		t.Errorf("mathMin = %d, want -1", v)
	}
	if v, _, _ := mathMax(i, []Word{3, -1}); v != 3 {
		t.Errorf("mathMax = %d, want 3", v)
	}
	if v, _, err := mathSqrt(i, []Word{17}); err != nil || v != 4 {
		t.Errorf("mathSqrt(17) = %d, %v, want 4, nil", v, err)
	}
	if _, _, err := mathSqrt(i, []Word{-1}); err == nil {
		t.Error("mathSqrt(-1): expected error")
	}
	if v, _, _ := mathAbs(i, []Word{-9}); v != 9 {
		t.Errorf("mathAbs(-9) = %d, want 9", v)
	}
}

func TestMemoryPeekPoke(t *testing.T) {
	i := newTestInstance(t)
	if _, _, err := memoryPoke(i, []Word{2048, 99}); err != nil {
		t.Fatal(err)
	}
	if v, _, err := memoryPeek(i, []Word{2048}); err != nil || v != 99 {
		t.Errorf("memoryPeek = %d, %v, want 99, nil", v, err)
	}
}

func TestMemoryAllocBumpsHeapAndRejectsExhaustion(t *testing.T) {
	i := newTestInstance(t)
	a, _, err := memoryAlloc(i, []Word{10})
	if err != nil || a != HeapBase {
		t.Fatalf("first alloc = %d, %v, want %d, nil", a, err, HeapBase)
	}
	b, _, err := memoryAlloc(i, []Word{5})
	if err != nil || b != HeapBase+10 {
		t.Fatalf("second alloc = %d, %v, want %d, nil", b, err, HeapBase+10)
	}
	if _, err := i.memAlloc(0); err == nil {
		t.Error("memAlloc(0): expected error")
	}
	if _, err := i.memAlloc(HeapEnd); err == nil {
		t.Error("memAlloc(huge): expected heap exhaustion error")
	}
}

func TestKeyboardKeyPressedIsNonBlocking(t *testing.T) {
	i := newTestInstance(t)
	i.RAM[KeyboardAddr] = 42
	v, done, err := keyboardKeyPressed(i, nil)
	if err != nil || !done || v != 42 {
		t.Errorf("keyboardKeyPressed = %d, %v, %v, want 42, true, nil", v, done, err)
	}
}

func TestKeyboardReadCharBlocksUntilPressAndRelease(t *testing.T) {
	i := newTestInstance(t)
	if _, done, err := keyboardReadChar(i, nil); err != nil || done {
		t.Fatalf("before any press: done=%v err=%v, want false, nil", done, err)
	}
	i.RAM[KeyboardAddr] = 'A'
	if _, done, err := keyboardReadChar(i, nil); err != nil || done {
		t.Fatalf("while held: done=%v err=%v, want false, nil", done, err)
	}
	i.RAM[KeyboardAddr] = 0
	v, done, err := keyboardReadChar(i, nil)
	if err != nil || !done || v != 'A' {
		t.Fatalf("on release: v=%d done=%v err=%v, want 'A', true, nil", v, done, err)
	}
}

func TestStringNewAppendAndIntValue(t *testing.T) {
	i := newTestInstance(t)
	ptr, _, err := stringNew(i, []Word{5})
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range []Word{'4', '2'} {
		if _, _, err := stringAppendChar(i, []Word{ptr, c}); err != nil {
			t.Fatal(err)
		}
	}
	if n, _, err := stringLength(i, []Word{ptr}); err != nil || n != 2 {
		t.Errorf("stringLength = %d, %v, want 2, nil", n, err)
	}
	if v, _, err := stringIntValue(i, []Word{ptr}); err != nil || v != 42 {
		t.Errorf("stringIntValue = %d, %v, want 42, nil", v, err)
	}
}

func TestSysWaitCountsDownAcrossCalls(t *testing.T) {
	i := newTestInstance(t)
	i.opts.WaitScale = 1
	if _, done, err := sysWait(i, []Word{3}); err != nil || done {
		t.Fatalf("sysWait start: done=%v err=%v, want false, nil", done, err)
	}
	var done bool
	var err error
	for k := 0; k < 10 && !done; k++ {
		_, done, err = sysWait(i, []Word{3})
		if err != nil {
			t.Fatal(err)
		}
	}
	if !done {
		t.Error("sysWait never completed")
	}
}

func TestSysErrorFaults(t *testing.T) {
	i := newTestInstance(t)
	if _, _, err := sysError(i, []Word{7}); err == nil {
		t.Error("sysError: expected an error")
	}
}
