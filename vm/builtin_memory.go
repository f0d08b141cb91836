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

// Memory.peek/poke/alloc/deAlloc (§4.6). Array.new/Array.dispose are
// registered directly against memoryAlloc/memoryDeAlloc in builtin.go's
// nativeFns table since §4.6 defines them as pure aliases.

package vm

import "github.com/pkg/errors"

func memoryPeek(i *Instance, args []Word) (Word, bool, error) {
	v, err := i.RAM.Peek(int(args[0]))
	return v, true, err
}

func memoryPoke(i *Instance, args []Word) (Word, bool, error) {
	err := i.RAM.Poke(int(args[0]), args[1])
	return 0, true, err
}

// memAlloc is the bump allocator behind Memory.alloc / Array.new / the
// internal String heap objects. It is a plain method (not a nativeFn) so
// String.new/Keyboard.readLine can call it directly without going through
// the operand stack.
func (i *Instance) memAlloc(size int) (Word, error) {
	if size <= 0 {
		return 0, errors.WithStack(&RuntimeError{PC: i.PC, Reason: "Memory.alloc: size must be positive"})
	}
	ptr := int(i.os.heapNext)
	if ptr+size > HeapEnd {
		return 0, errors.WithStack(&RuntimeError{PC: i.PC, Reason: "Memory.alloc: heap exhausted"})
	}
	i.os.heapNext = Word(ptr + size)
	return Word(ptr), nil
}

func memoryAlloc(i *Instance, args []Word) (Word, bool, error) {
	ptr, err := i.memAlloc(int(args[0]))
	return ptr, true, err
}

func memoryDeAlloc(i *Instance, args []Word) (Word, bool, error) {
	return 0, true, nil
}
