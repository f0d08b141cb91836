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

// Keyboard.* natives (§4.6, §5). keyPressed is a plain, non-blocking read
// of RAM[24576]; readChar/readLine/readInt poll across ticks using the
// kbdState press/release state machine defined in builtin.go, matching the
// nand2tetris reference Keyboard.jack's busy-wait shape without ever
// spinning inside a single step.

package vm

import "strconv"

func keyboardKeyPressed(i *Instance, args []Word) (Word, bool, error) {
	return i.RAM[KeyboardAddr], true, nil
}

func keyboardReadChar(i *Instance, args []Word) (Word, bool, error) {
	ks := &i.os.kbd
	if ks.op != kbdChar {
		*ks = kbdState{op: kbdChar}
	}
	val, released := ks.poll(i.RAM[KeyboardAddr])
	if !released {
		return 0, false, nil
	}
	ks.op = kbdNone
	if err := i.outputPrintChar(val); err != nil {
		return 0, true, err
	}
	return val, true, nil
}

func keyboardReadLine(i *Instance, args []Word) (Word, bool, error) {
	ks := &i.os.kbd
	if ks.op != kbdLine {
		*ks = kbdState{op: kbdLine}
	}
	val, released := ks.poll(i.RAM[KeyboardAddr])
	if !released {
		return 0, false, nil
	}
	switch {
	case val == 128: // newline: finish the line
		ptr, err := i.allocString(ks.buf)
		ks.op = kbdNone
		if err != nil {
			return 0, true, err
		}
		if err := i.outputPrintChar(128); err != nil {
			return 0, true, err
		}
		return ptr, true, nil
	case val == 129: // backspace
		if n := len(ks.buf); n > 0 {
			ks.buf = ks.buf[:n-1]
		}
		i.outputBackSpace()
	case val >= 32 && val < 127:
		ks.buf = append(ks.buf, byte(val))
		i.outputPrintChar(val)
	}
	return 0, false, nil
}

func keyboardReadInt(i *Instance, args []Word) (Word, bool, error) {
	ks := &i.os.kbd
	if ks.op != kbdInt {
		*ks = kbdState{op: kbdInt}
	}
	val, released := ks.poll(i.RAM[KeyboardAddr])
	if !released {
		return 0, false, nil
	}
	switch {
	case val == 128: // newline: finish the number
		ks.op = kbdNone
		n, _ := strconv.Atoi(string(ks.buf))
		if err := i.outputPrintChar(128); err != nil {
			return 0, true, err
		}
		return Word(n), true, nil
	case val == 129: // backspace
		if n := len(ks.buf); n > 0 {
			ks.buf = ks.buf[:n-1]
		}
		i.outputBackSpace()
	case val == '-' && len(ks.buf) == 0, val >= '0' && val <= '9':
		ks.buf = append(ks.buf, byte(val))
		i.outputPrintChar(val)
	}
	return 0, false, nil
}
