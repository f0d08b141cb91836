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

// Screen.* natives (§4.6). All operate directly on the bit-packed screen
// region (§3, §6): word ScreenBase + row*ScreenWordsPerRow + col/16, bit
// (col mod 16), 1 = black.

package vm

import "github.com/pkg/errors"

func (i *Instance) setPixel(x, y int, black bool) error {
	if x < 0 || x >= ScreenCols || y < 0 || y >= ScreenRows {
		return errors.WithStack(&RuntimeError{PC: i.PC, Reason: "Screen: coordinate out of range"})
	}
	addr := ScreenBase + y*ScreenWordsPerRow + x/16
	word, err := i.RAM.Peek(addr)
	if err != nil {
		return err
	}
	bit := uint(x % 16)
	if black {
		word |= 1 << bit
	} else {
		word &^= 1 << bit
	}
	return i.RAM.Poke(addr, word)
}

func screenSetColor(i *Instance, args []Word) (Word, bool, error) {
	i.os.screenColor = args[0] != 0
	return 0, true, nil
}

func screenClearScreen(i *Instance, args []Word) (Word, bool, error) {
	for a := ScreenBase; a < ScreenEnd; a++ {
		i.RAM[a] = 0
	}
	return 0, true, nil
}

func screenDrawPixel(i *Instance, args []Word) (Word, bool, error) {
	err := i.setPixel(int(args[0]), int(args[1]), i.os.screenColor)
	return 0, true, err
}

func screenDrawLine(i *Instance, args []Word) (Word, bool, error) {
	x1, y1, x2, y2 := int(args[0]), int(args[1]), int(args[2]), int(args[3])
	dx := abs(x2 - x1)
	dy := -abs(y2 - y1)
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}
	err2 := dx + dy
	x, y := x1, y1
	for {
		if e := i.setPixel(x, y, i.os.screenColor); e != nil {
			return 0, true, e
		}
		if x == x2 && y == y2 {
			break
		}
		e2 := 2 * err2
		if e2 >= dy {
			err2 += dy
			x += sx
		}
		if e2 <= dx {
			err2 += dx
			y += sy
		}
	}
	return 0, true, nil
}

func screenDrawRectangle(i *Instance, args []Word) (Word, bool, error) {
	x1, y1, x2, y2 := int(args[0]), int(args[1]), int(args[2]), int(args[3])
	for y := y1; y <= y2; y++ {
		for x := x1; x <= x2; x++ {
			if err := i.setPixel(x, y, i.os.screenColor); err != nil {
				return 0, true, err
			}
		}
	}
	return 0, true, nil
}

func screenDrawCircle(i *Instance, args []Word) (Word, bool, error) {
	cx, cy, r := int(args[0]), int(args[1]), int(args[2])
	if r < 0 {
		return 0, true, errors.WithStack(&RuntimeError{PC: i.PC, Reason: "Screen.drawCircle: negative radius"})
	}
	for dy := -r; dy <= r; dy++ {
		dx := isqrt(r*r - dy*dy)
		for x := cx - dx; x <= cx+dx; x++ {
			if err := i.setPixel(x, cy+dy, i.os.screenColor); err != nil {
				return 0, true, err
			}
		}
	}
	return 0, true, nil
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func isqrt(x int) int {
	if x <= 0 {
		return 0
	}
	r := 0
	for (r+1)*(r+1) <= x {
		r++
	}
	return r
}
