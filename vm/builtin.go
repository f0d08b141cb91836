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

// The native OS library plays the role the teacher's port I/O handlers play
// in db47h/ngaro (vm.InHandler/OutHandler/WaitHandler, vm/vm.go): a small set
// of Go functions the interpreter consults instead of executing a VM body,
// keyed here by function name rather than by port number. §4.6 and §9's
// "Native vs. VM override" note are implemented by the linker (linker.go)
// choosing OpCallNative over OpCall per call site; this file only supplies
// the handler table the linker consults and the interpreter dispatches.
//
// A native handler's signature lets it stall: it returns (result, done,
// err). Most builtins finish within a single call and set done=true, but
// the blocking Keyboard routines (§5: "block by polling") return done=false
// to make the interpreter retry the same OpCallNative instruction on the
// next step, so blocking spans ticks without any interpreter-level
// suspension point, exactly as §5 requires.

package vm

// nativeID identifies one native OS routine.
type nativeID int

const (
	nMathMultiply nativeID = iota
	nMathDivide
	nMathMin
	nMathMax
	nMathSqrt
	nMathAbs
	nMemoryPeek
	nMemoryPoke
	nMemoryAlloc
	nMemoryDeAlloc
	nScreenSetColor
	nScreenDrawPixel
	nScreenDrawLine
	nScreenDrawRectangle
	nScreenDrawCircle
	nScreenClearScreen
	nOutputPrintChar
	nOutputPrintString
	nOutputPrintInt
	nOutputPrintln
	nOutputBackSpace
	nOutputMoveCursor
	nKeyboardKeyPressed
	nKeyboardReadChar
	nKeyboardReadLine
	nKeyboardReadInt
	nStringNew
	nStringDispose
	nStringLength
	nStringCharAt
	nStringSetCharAt
	nStringAppendChar
	nStringEraseLastChar
	nStringIntValue
	nStringSetInt
	nArrayNew
	nArrayDispose
	nSysHalt
	nSysWait
	nSysError
)

// nativeFn is a native OS routine. args is a read-only view of the
// instruction's arguments still sitting on the operand stack (top nArgs
// words below SP); the interpreter only pops them once done is true. A
// non-nil err always implies done; the interpreter treats it as a
// RuntimeError and transitions to StatusFaulted.
type nativeFn func(i *Instance, args []Word) (result Word, done bool, err error)

// nativeTable maps a program-visible function name to its native routine.
// The linker consults this when a call site's target has no VM-level
// definition (§4.6, §9).
var nativeTable = map[string]nativeID{
	"Math.multiply":        nMathMultiply,
	"Math.divide":          nMathDivide,
	"Math.min":             nMathMin,
	"Math.max":             nMathMax,
	"Math.sqrt":            nMathSqrt,
	"Math.abs":             nMathAbs,
	"Memory.peek":          nMemoryPeek,
	"Memory.poke":          nMemoryPoke,
	"Memory.alloc":         nMemoryAlloc,
	"Memory.deAlloc":       nMemoryDeAlloc,
	"Screen.setColor":      nScreenSetColor,
	"Screen.drawPixel":     nScreenDrawPixel,
	"Screen.drawLine":      nScreenDrawLine,
	"Screen.drawRectangle": nScreenDrawRectangle,
	"Screen.drawCircle":    nScreenDrawCircle,
	"Screen.clearScreen":   nScreenClearScreen,
	"Output.printChar":     nOutputPrintChar,
	"Output.printString":   nOutputPrintString,
	"Output.printInt":      nOutputPrintInt,
	"Output.println":       nOutputPrintln,
	"Output.backSpace":     nOutputBackSpace,
	"Output.moveCursor":    nOutputMoveCursor,
	"Keyboard.keyPressed":  nKeyboardKeyPressed,
	"Keyboard.readChar":    nKeyboardReadChar,
	"Keyboard.readLine":    nKeyboardReadLine,
	"Keyboard.readInt":     nKeyboardReadInt,
	"String.new":           nStringNew,
	"String.dispose":       nStringDispose,
	"String.length":        nStringLength,
	"String.charAt":        nStringCharAt,
	"String.setCharAt":     nStringSetCharAt,
	"String.appendChar":    nStringAppendChar,
	"String.eraseLastChar": nStringEraseLastChar,
	"String.intValue":      nStringIntValue,
	"String.setInt":        nStringSetInt,
	"Array.new":            nArrayNew,
	"Array.dispose":        nArrayDispose,
	"Sys.halt":             nSysHalt,
	"Sys.wait":             nSysWait,
	"Sys.error":            nSysError,
}

// nativeArity records the minimum argument count each native routine reads
// out of args before doCallNative hands it off. A correctly linked program
// always supplies the right arity (the Hack VM text format gives the
// call-site nArgs directly), but a hand-edited or corrupted `call` site
// with too few arguments would otherwise index args out of range and panic
// instead of Faulting per §7; doCallNative checks against this table first.
var nativeArity = map[nativeID]int{
	nMathMultiply:        2,
	nMathDivide:          2,
	nMathMin:             2,
	nMathMax:             2,
	nMathSqrt:            1,
	nMathAbs:             1,
	nMemoryPeek:          1,
	nMemoryPoke:          2,
	nMemoryAlloc:         1,
	nMemoryDeAlloc:       1,
	nScreenSetColor:      1,
	nScreenDrawPixel:     2,
	nScreenDrawLine:      4,
	nScreenDrawRectangle: 4,
	nScreenDrawCircle:    3,
	nScreenClearScreen:   0,
	nOutputPrintChar:     1,
	nOutputPrintString:   1,
	nOutputPrintInt:      1,
	nOutputPrintln:       0,
	nOutputBackSpace:     0,
	nOutputMoveCursor:    2,
	nKeyboardKeyPressed:  0,
	nKeyboardReadChar:    0,
	nKeyboardReadLine:    0,
	nKeyboardReadInt:     0,
	nStringNew:           1,
	nStringDispose:       1,
	nStringLength:        1,
	nStringCharAt:        2,
	nStringSetCharAt:     3,
	nStringAppendChar:    2,
	nStringEraseLastChar: 1,
	nStringIntValue:      1,
	nStringSetInt:        2,
	nArrayNew:            1,
	nArrayDispose:        1,
	nSysHalt:             0,
	nSysWait:             1,
	nSysError:            1,
}

var nativeFns = map[nativeID]nativeFn{
	nMathMultiply:        mathMultiply,
	nMathDivide:          mathDivide,
	nMathMin:             mathMin,
	nMathMax:             mathMax,
	nMathSqrt:            mathSqrt,
	nMathAbs:             mathAbs,
	nMemoryPeek:          memoryPeek,
	nMemoryPoke:          memoryPoke,
	nMemoryAlloc:         memoryAlloc,
	nMemoryDeAlloc:       memoryDeAlloc,
	nScreenSetColor:      screenSetColor,
	nScreenDrawPixel:     screenDrawPixel,
	nScreenDrawLine:      screenDrawLine,
	nScreenDrawRectangle: screenDrawRectangle,
	nScreenDrawCircle:    screenDrawCircle,
	nScreenClearScreen:   screenClearScreen,
	nOutputPrintChar:     outputPrintCharNative,
	nOutputPrintString:   outputPrintString,
	nOutputPrintInt:      outputPrintInt,
	nOutputPrintln:       outputPrintln,
	nOutputBackSpace:     outputBackSpace,
	nOutputMoveCursor:    outputMoveCursor,
	nKeyboardKeyPressed:  keyboardKeyPressed,
	nKeyboardReadChar:    keyboardReadChar,
	nKeyboardReadLine:    keyboardReadLine,
	nKeyboardReadInt:     keyboardReadInt,
	nStringNew:           stringNew,
	nStringDispose:       memoryDeAlloc,
	nStringLength:        stringLength,
	nStringCharAt:        stringCharAt,
	nStringSetCharAt:     stringSetCharAt,
	nStringAppendChar:    stringAppendChar,
	nStringEraseLastChar: stringEraseLastChar,
	nStringIntValue:      stringIntValue,
	nStringSetInt:        stringSetInt,
	nArrayNew:            memoryAlloc,
	nArrayDispose:        memoryDeAlloc,
	nSysHalt:             sysHalt,
	nSysWait:             sysWait,
	nSysError:            sysError,
}

// kbdOp names which blocking Keyboard routine currently owns kbdState.
type kbdOp int

const (
	kbdNone kbdOp = iota
	kbdChar
	kbdLine
	kbdInt
)

// kbdState drives the press/release polling state machine described in
// DESIGN.md's grounding for §4.6 Keyboard.readChar/readLine/readInt: a
// "char cycle" only completes once the host releases the key, mirroring the
// nand2tetris reference Keyboard.jack busy-wait loops, just spread across
// Tick calls instead of spinning inside one.
type kbdState struct {
	op    kbdOp
	phase int // 0: waiting for a keypress, 1: waiting for release
	val   Word
	buf   []byte
}

// poll advances the press/release state machine by one step given the
// current keyboard register value. released is true exactly when a full
// press-then-release cycle has just completed, in which case val holds the
// code that was pressed.
func (ks *kbdState) poll(reg Word) (val Word, released bool) {
	switch ks.phase {
	case 0:
		if reg == 0 {
			return 0, false
		}
		ks.val = reg
		ks.phase = 1
		return 0, false
	default:
		if reg == ks.val {
			return 0, false
		}
		ks.phase = 0
		return ks.val, true
	}
}

// osState holds the native OS library's own small mutable state: the
// Output/Screen cursor and draw color, the bump-allocator's next free heap
// address, and any in-progress blocking Keyboard operation. Reset clears all
// of it (§9 "Shared cursor/color state").
type osState struct {
	cursorRow, cursorCol int
	screenColor          bool // true = black

	heapNext Word

	kbd kbdState

	waiting       bool
	waitRemaining int
}

func (s *osState) reset() {
	*s = osState{heapNext: HeapBase}
}
