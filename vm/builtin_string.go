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

// String.* natives (§4.6): a heap-backed array object with a length
// prefix, laid out as [maxLength, length, char0, char1, ...] starting at
// the pointer Memory.alloc returns, matching the standard Jack String
// implementation's layout.

package vm

import (
	"strconv"

	"github.com/pkg/errors"
)

// allocString allocates a String object sized to hold buf and copies buf
// in as its initial contents, used by Keyboard.readLine to hand back a
// freshly-read line (§4.6).
func (i *Instance) allocString(buf []byte) (Word, error) {
	ptr, err := i.memAlloc(len(buf) + 2)
	if err != nil {
		return 0, err
	}
	p := int(ptr)
	i.RAM[p] = Word(len(buf))
	i.RAM[p+1] = Word(len(buf))
	for idx, c := range buf {
		i.RAM[p+2+idx] = Word(c)
	}
	return ptr, nil
}

func stringNew(i *Instance, args []Word) (Word, bool, error) {
	maxLen := int(args[0])
	if maxLen < 0 {
		return 0, true, errors.WithStack(&RuntimeError{PC: i.PC, Reason: "String.new: negative length"})
	}
	ptr, err := i.memAlloc(maxLen + 2)
	if err != nil {
		return 0, true, err
	}
	i.RAM[int(ptr)] = Word(maxLen)
	i.RAM[int(ptr)+1] = 0
	return ptr, true, nil
}

func stringLength(i *Instance, args []Word) (Word, bool, error) {
	v, err := i.RAM.Peek(int(args[0]) + 1)
	return v, true, err
}

func stringCharAt(i *Instance, args []Word) (Word, bool, error) {
	v, err := i.RAM.Peek(int(args[0]) + 2 + int(args[1]))
	return v, true, err
}

func stringSetCharAt(i *Instance, args []Word) (Word, bool, error) {
	err := i.RAM.Poke(int(args[0])+2+int(args[1]), args[2])
	return 0, true, err
}

func stringAppendChar(i *Instance, args []Word) (Word, bool, error) {
	s := int(args[0])
	maxLen, err := i.RAM.Peek(s)
	if err != nil {
		return 0, true, err
	}
	length, err := i.RAM.Peek(s + 1)
	if err != nil {
		return 0, true, err
	}
	if length >= maxLen {
		return 0, true, errors.WithStack(&RuntimeError{PC: i.PC, Reason: "String.appendChar: string full"})
	}
	if err := i.RAM.Poke(s+2+int(length), args[1]); err != nil {
		return 0, true, err
	}
	if err := i.RAM.Poke(s+1, length+1); err != nil {
		return 0, true, err
	}
	return args[0], true, nil // Jack's appendChar returns `this`
}

func stringEraseLastChar(i *Instance, args []Word) (Word, bool, error) {
	s := int(args[0])
	length, err := i.RAM.Peek(s + 1)
	if err != nil {
		return 0, true, err
	}
	if length > 0 {
		err = i.RAM.Poke(s+1, length-1)
	}
	return 0, true, err
}

func stringIntValue(i *Instance, args []Word) (Word, bool, error) {
	s := int(args[0])
	length, err := i.RAM.Peek(s + 1)
	if err != nil {
		return 0, true, err
	}
	buf := make([]byte, 0, length)
	for k := 0; k < int(length); k++ {
		c, err := i.RAM.Peek(s + 2 + k)
		if err != nil {
			return 0, true, err
		}
		buf = append(buf, byte(c))
	}
	n, _ := strconv.Atoi(string(buf))
	return Word(n), true, nil
}

func stringSetInt(i *Instance, args []Word) (Word, bool, error) {
	s := int(args[0])
	digits := strconv.Itoa(int(args[1]))
	maxLen, err := i.RAM.Peek(s)
	if err != nil {
		return 0, true, err
	}
	if len(digits) > int(maxLen) {
		return 0, true, errors.WithStack(&RuntimeError{PC: i.PC, Reason: "String.setInt: value too long for string"})
	}
	if err := i.RAM.Poke(s+1, Word(len(digits))); err != nil {
		return 0, true, err
	}
	for idx, c := range []byte(digits) {
		if err := i.RAM.Poke(s+2+idx, Word(c)); err != nil {
			return 0, true, err
		}
	}
	return 0, true, nil
}
