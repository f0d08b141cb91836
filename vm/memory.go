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

// This file is grounded on the db47h/ngaro vm package's Cell/Image types
// (vm/vm.go, vm/image.go, vm/mem.go): a sized, named word type backing a
// flat memory image, with load/decode helpers in the same style.

package vm

import (
	"fmt"

	"github.com/pkg/errors"
)

// Word is the raw 16-bit value stored in a RAM cell. Arithmetic on Word
// wraps modulo 2^16 with two's-complement (signed) interpretation, which is
// exactly what Go's int16 gives us for +, -, * and bitwise ops.
type Word int16

// Memory map, per the fixed 16-bit address space.
const (
	AddrSP   = 0
	AddrLCL  = 1
	AddrARG  = 2
	AddrTHIS = 3
	AddrTHAT = 4
	AddrTemp = 5 // TEMP occupies 5..12

	StaticBase = 16
	StaticEnd  = 256

	StackBase = 256
	StackEnd  = 2048

	HeapBase = 2048
	HeapEnd  = 16384

	ScreenBase = 16384
	ScreenEnd  = 24576
	ScreenRows = 256
	ScreenCols = 512
	ScreenWordsPerRow = ScreenCols / 16

	KeyboardAddr = 24576

	RAMSize = 32768
)

// Memory is the flat 16-bit word array the interpreter runs against.
type Memory []Word

// NewMemory allocates a zeroed, full-sized RAM.
func NewMemory() Memory {
	return make(Memory, RAMSize)
}

// Reset zeroes every word in place.
func (m Memory) Reset() {
	for i := range m {
		m[i] = 0
	}
}

// Peek reads a single word, returning a RuntimeError if addr is out of range.
func (m Memory) Peek(addr int) (Word, error) {
	if addr < 0 || addr >= len(m) {
		return 0, errors.WithStack(&RuntimeError{Reason: errOutOfRange(addr)})
	}
	return m[addr], nil
}

// Poke writes a single word, returning a RuntimeError if addr is out of range.
func (m Memory) Poke(addr int, v Word) error {
	if addr < 0 || addr >= len(m) {
		return errors.WithStack(&RuntimeError{Reason: errOutOfRange(addr)})
	}
	m[addr] = v
	return nil
}

func errOutOfRange(addr int) string {
	return fmt.Sprintf("memory access out of range: %d", addr)
}
