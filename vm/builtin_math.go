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

// Native Math routines (§4.6). Word is int16, so +, -, *, and the bitwise
// ops already wrap modulo 2^16 with signed interpretation the way plain Go
// arithmetic on a fixed-width signed integer does; nothing here needs
// explicit masking.

package vm

import "github.com/pkg/errors"

func mathMultiply(i *Instance, args []Word) (Word, bool, error) {
	return args[0] * args[1], true, nil
}

func mathDivide(i *Instance, args []Word) (Word, bool, error) {
	if args[1] == 0 {
		return 0, true, errors.WithStack(&RuntimeError{PC: i.PC, Reason: "Math.divide: division by zero"})
	}
	return args[0] / args[1], true, nil
}

func mathMin(i *Instance, args []Word) (Word, bool, error) {
	if args[0] < args[1] {
		return args[0], true, nil
	}
	return args[1], true, nil
}

func mathMax(i *Instance, args []Word) (Word, bool, error) {
	if args[0] > args[1] {
		return args[0], true, nil
	}
	return args[1], true, nil
}

func mathSqrt(i *Instance, args []Word) (Word, bool, error) {
	x := int(args[0])
	if x < 0 {
		return 0, true, errors.WithStack(&RuntimeError{PC: i.PC, Reason: "Math.sqrt: negative operand"})
	}
	r := 0
	for (r+1)*(r+1) <= x {
		r++
	}
	return Word(r), true, nil
}

func mathAbs(i *Instance, args []Word) (Word, bool, error) {
	x := args[0]
	if x < 0 {
		return -x, true, nil
	}
	return x, true, nil
}
