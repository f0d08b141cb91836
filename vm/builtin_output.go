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

// Output.* natives (§4.6) print to the screen region using 11-row by
// 8-column character glyphs, echoing the nand2tetris reference OS's
// Output.jack (§9, Open Question (c)). The exact reference bitmap is not
// available in this repo's source pack (see DESIGN.md); glyphGrid below is
// a from-scratch 11x8 font covering the printable ASCII range used by the
// test programs and the CLI, built the same way the reference font is
// structured (one byte per row, MSB = leftmost column) so a caller
// swapping in the exact reference table only needs to replace glyphTable.

package vm

import (
	"strconv"

	"github.com/pkg/errors"
)

const (
	glyphRows    = 11
	glyphCols    = 8
	screenRowsOf = ScreenRows / glyphRows // 23 lines of text
	screenColsOf = ScreenCols / glyphCols // 64 columns of text
)

var glyphTable [128][glyphRows]byte

// glyphGrid defines one character's bitmap as glyphRows strings of
// glyphCols characters; '#' is a black pixel, anything else is white.
func glyphGrid(rows ...string) [glyphRows]byte {
	var g [glyphRows]byte
	for r := 0; r < glyphRows && r < len(rows); r++ {
		row := rows[r]
		var b byte
		for c := 0; c < glyphCols && c < len(row); c++ {
			if row[c] == '#' {
				b |= 1 << uint(glyphCols-1-c)
			}
		}
		g[r] = b
	}
	return g
}

func init() {
	blank := glyphGrid("........", "........", "........", "........", "........", "........", "........", "........", "........", "........", "........")
	for c := range glyphTable {
		glyphTable[c] = blank
	}
	letters := map[byte][glyphRows]string{
		'A': {"..##....", ".####...", "##..##..", "##..##..", "##..##..", "########", "##..##..", "##..##..", "##..##..", "........", "........"},
		'B': {"#######.", "##....##", "##....##", "#######.", "##....##", "##....##", "##....##", "#######.", "........", "........", "........"},
		'C': {".######.", "##....##", "##......", "##......", "##......", "##......", "##....##", ".######.", "........", "........", "........"},
		'D': {"#######.", "##....##", "##....##", "##....##", "##....##", "##....##", "##....##", "#######.", "........", "........", "........"},
		'E': {"########", "##......", "##......", "######..", "##......", "##......", "##......", "########", "........", "........", "........"},
		'F': {"########", "##......", "##......", "######..", "##......", "##......", "##......", "##......", "........", "........", "........"},
		'G': {".######.", "##....##", "##......", "##......", "##..####", "##....##", "##....##", ".######.", "........", "........", "........"},
		'H': {"##....##", "##....##", "##....##", "########", "##....##", "##....##", "##....##", "##....##", "........", "........", "........"},
		'I': {"########", "...##...", "...##...", "...##...", "...##...", "...##...", "...##...", "########", "........", "........", "........"},
		'J': {".#######", "....##..", "....##..", "....##..", "....##..", "##..##..", "##..##..", ".####...", "........", "........", "........"},
		'K': {"##...##.", "##..##..", "##.##...", "####....", "##.##...", "##..##..", "##...##.", "##....##", "........", "........", "........"},
		'L': {"##......", "##......", "##......", "##......", "##......", "##......", "##......", "########", "........", "........", "........"},
		'M': {"##....##", "###..###", "########", "##.##.##", "##....##", "##....##", "##....##", "##....##", "........", "........", "........"},
		'N': {"##....##", "###...##", "####..##", "##.##.##", "##..####", "##...###", "##....##", "##....##", "........", "........", "........"},
		'O': {".######.", "##....##", "##....##", "##....##", "##....##", "##....##", "##....##", ".######.", "........", "........", "........"},
		'P': {"#######.", "##....##", "##....##", "#######.", "##......", "##......", "##......", "##......", "........", "........", "........"},
		'Q': {".######.", "##....##", "##....##", "##....##", "##.##.##", "##..###.", ".######.", "......#.", "........", "........", "........"},
		'R': {"#######.", "##....##", "##....##", "#######.", "##.##...", "##..##..", "##...##.", "##....##", "........", "........", "........"},
		'S': {".######.", "##....##", "##......", ".######.", "......##", "......##", "##....##", ".######.", "........", "........", "........"},
		'T': {"########", "...##...", "...##...", "...##...", "...##...", "...##...", "...##...", "...##...", "........", "........", "........"},
		'U': {"##....##", "##....##", "##....##", "##....##", "##....##", "##....##", "##....##", ".######.", "........", "........", "........"},
		'V': {"##....##", "##....##", "##....##", "##....##", ".##..##.", ".##..##.", "..####..", "...##...", "........", "........", "........"},
		'W': {"##....##", "##....##", "##....##", "##.##.##", "##.##.##", "########", "###..###", "##....##", "........", "........", "........"},
		'X': {"##....##", ".##..##.", "..####..", "...##...", "...##...", "..####..", ".##..##.", "##....##", "........", "........", "........"},
		'Y': {"##....##", ".##..##.", "..####..", "...##...", "...##...", "...##...", "...##...", "...##...", "........", "........", "........"},
		'Z': {"########", ".....##.", "....##..", "...##...", "..##....", ".##.....", "##......", "########", "........", "........", "........"},
		'0': {".######.", "##....##", "##...###", "##..####", "##.##.##", "####..##", "###...##", ".######.", "........", "........", "........"},
		'1': {"...##...", "..###...", ".####...", "...##...", "...##...", "...##...", "...##...", "########", "........", "........", "........"},
		'2': {".######.", "##....##", "......##", ".....##.", "...##...", "..##....", ".##.....", "########", "........", "........", "........"},
		'3': {".######.", "##....##", "......##", "...####.", "......##", "......##", "##....##", ".######.", "........", "........", "........"},
		'4': {"....##..", "...###..", "..####..", ".##.##..", "##..##..", "########", "....##..", "....##..", "........", "........", "........"},
		'5': {"########", "##......", "##......", "#######.", "......##", "......##", "##....##", ".######.", "........", "........", "........"},
		'6': {"..####..", ".##.....", "##......", "#######.", "##....##", "##....##", "##....##", ".######.", "........", "........", "........"},
		'7': {"########", "......##", ".....##.", "....##..", "...##...", "...##...", "...##...", "...##...", "........", "........", "........"},
		'8': {".######.", "##....##", "##....##", ".######.", "##....##", "##....##", "##....##", ".######.", "........", "........", "........"},
		'9': {".######.", "##....##", "##....##", "##....##", ".#######", "......##", "......##", "..####..", "........", "........", "........"},
		' ': {"........", "........", "........", "........", "........", "........", "........", "........", "........", "........", "........"},
		'.': {"........", "........", "........", "........", "........", "........", "..##....", "..##....", "........", "........", "........"},
		',': {"........", "........", "........", "........", "........", "........", "..##....", "..##....", ".##.....", "........", "........"},
		':': {"........", "........", "..##....", "..##....", "........", "..##....", "..##....", "........", "........", "........", "........"},
		';': {"........", "........", "..##....", "..##....", "........", "..##....", "..##....", ".##.....", "........", "........", "........"},
		'!': {"...##...", "...##...", "...##...", "...##...", "...##...", "........", "...##...", "...##...", "........", "........", "........"},
		'?': {".######.", "##....##", "......##", "....###.", "...##...", "........", "...##...", "...##...", "........", "........", "........"},
		'-': {"........", "........", "........", "########", "........", "........", "........", "........", "........", "........", "........"},
		'+': {"........", "...##...", "...##...", "########", "...##...", "...##...", "........", "........", "........", "........", "........"},
		'=': {"........", "........", "########", "........", "########", "........", "........", "........", "........", "........", "........"},
		'/': {"......##", ".....##.", "....##..", "...##...", "..##....", ".##.....", "##......", "........", "........", "........", "........"},
		'\'': {"..##....", "..##....", ".##.....", "........", "........", "........", "........", "........", "........", "........", "........"},
		'"': {".##.##..", ".##.##..", "#..#....", "........", "........", "........", "........", "........", "........", "........", "........"},
		'(': {"...##...", "..##....", ".##.....", ".##.....", ".##.....", ".##.....", "..##....", "...##...", "........", "........", "........"},
		')': {"..##....", "...##...", "....##..", "....##..", "....##..", "....##..", "...##...", "..##....", "........", "........", "........"},
		'_': {"........", "........", "........", "........", "........", "........", "........", "########", "........", "........", "........"},
	}
	for ch, rows := range letters {
		glyphTable[ch] = glyphGrid(rows[0], rows[1], rows[2], rows[3], rows[4], rows[5], rows[6], rows[7], rows[8], rows[9], rows[10])
		if ch >= 'A' && ch <= 'Z' {
			// Lowercase reuses the uppercase glyph: this font's one
			// deliberate simplification against the reference table.
			glyphTable[ch+32] = glyphTable[ch]
		}
	}
}

// advanceCursor moves the text cursor by one column, wrapping to a new row and
// wrapping the row back to the top once the screen is full (the reference
// OS instead scrolls; wrapping is this implementation's simplification).
func (i *Instance) advanceCursor() {
	i.os.cursorCol++
	if i.os.cursorCol >= screenColsOf {
		i.os.cursorCol = 0
		i.os.cursorRow++
	}
	if i.os.cursorRow >= screenRowsOf {
		i.os.cursorRow = 0
	}
}

func (i *Instance) drawGlyphAt(row, col int, code byte, black bool) error {
	g := glyphTable[code]
	for gr := 0; gr < glyphRows; gr++ {
		bits := g[gr]
		for gc := 0; gc < glyphCols; gc++ {
			set := black && bits&(1<<uint(glyphCols-1-gc)) != 0
			if err := i.setPixel(col*glyphCols+gc, row*glyphRows+gr, set); err != nil {
				return err
			}
		}
	}
	return nil
}

// outputPrintChar draws c at the text cursor and advances it, shared by the
// Output.printChar native and Keyboard.readChar/readLine's echo.
func (i *Instance) outputPrintChar(c Word) error {
	if c == 128 { // newline
		return i.outputPrintln()
	}
	if c == 129 { // backspace
		return i.outputBackSpace()
	}
	if c < 0 || c > 127 {
		return errors.WithStack(&RuntimeError{PC: i.PC, Reason: "Output.printChar: code out of range"})
	}
	if err := i.drawGlyphAt(i.os.cursorRow, i.os.cursorCol, byte(c), true); err != nil {
		return err
	}
	i.advanceCursor()
	return nil
}

func (i *Instance) outputPrintln() error {
	i.os.cursorCol = 0
	i.os.cursorRow++
	if i.os.cursorRow >= screenRowsOf {
		i.os.cursorRow = 0
	}
	return nil
}

func (i *Instance) outputBackSpace() error {
	if i.os.cursorCol > 0 {
		i.os.cursorCol--
	} else if i.os.cursorRow > 0 {
		i.os.cursorRow--
		i.os.cursorCol = screenColsOf - 1
	}
	return i.drawGlyphAt(i.os.cursorRow, i.os.cursorCol, ' ', false)
}

func outputPrintCharNative(i *Instance, args []Word) (Word, bool, error) {
	return 0, true, i.outputPrintChar(args[0])
}

func outputPrintString(i *Instance, args []Word) (Word, bool, error) {
	s := int(args[0])
	length, err := i.RAM.Peek(s + 1)
	if err != nil {
		return 0, true, err
	}
	for k := 0; k < int(length); k++ {
		c, err := i.RAM.Peek(s + 2 + k)
		if err != nil {
			return 0, true, err
		}
		if err := i.outputPrintChar(c); err != nil {
			return 0, true, err
		}
	}
	return 0, true, nil
}

func outputPrintInt(i *Instance, args []Word) (Word, bool, error) {
	s := strconv.Itoa(int(args[0]))
	for _, c := range []byte(s) {
		if err := i.outputPrintChar(Word(c)); err != nil {
			return 0, true, err
		}
	}
	return 0, true, nil
}

func outputPrintln(i *Instance, args []Word) (Word, bool, error) {
	return 0, true, i.outputPrintln()
}

func outputBackSpace(i *Instance, args []Word) (Word, bool, error) {
	return 0, true, i.outputBackSpace()
}

func outputMoveCursor(i *Instance, args []Word) (Word, bool, error) {
	row, col := int(args[0]), int(args[1])
	if row < 0 || row >= screenRowsOf || col < 0 || col >= screenColsOf {
		return 0, true, errors.WithStack(&RuntimeError{PC: i.PC, Reason: "Output.moveCursor: out of range"})
	}
	i.os.cursorRow, i.os.cursorCol = row, col
	return 0, true, nil
}
