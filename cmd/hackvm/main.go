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

// The reference host CLI follows db47h/ngaro's cmd/retro/main.go: stdlib
// flag for options, a raw-tty setup/teardown pair, and an atExit that
// prints a plain error normally and a full %+v stack trace under -debug.
// Unlike retro (one continuous Run), the Hack VM's host contract is a
// frame-paced Tick loop (§4.4, §4.7), so main here always drives a ticker
// (runInteractive) instead of calling Run.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/term"

	"github.com/pcardune/hackvm/asm"
	"github.com/pcardune/hackvm/internal/ngi"
	"github.com/pcardune/hackvm/vm"
)

var (
	debug        bool
	disasm       bool
	listBuiltins bool
	asciiScreen  bool
	noRaw        bool
	stepsPerTick int
	maxSteps     int
)

// stdout/stderr wrap the real file descriptors in ngi.ErrWriter so the
// disassembly dump, -list-builtins listing, and the ASCII screen renderer
// (many small Fprint calls per frame) only need one Err check at exit
// instead of one after every write.
var (
	stdout = ngi.NewErrWriter(os.Stdout)
	stderr = ngi.NewErrWriter(os.Stderr)
)

func atExit(inst *vm.Instance, err error) {
	if err == nil {
		if stdout.Err != nil {
			fmt.Fprintf(os.Stderr, "\nwrite to stdout failed: %v\n", stdout.Err)
			os.Exit(1)
		}
		return
	}
	if !debug {
		fmt.Fprintf(stderr, "\n%v\n", err)
	} else {
		fmt.Fprintf(stderr, "\n%+v\n", err)
		if inst != nil {
			fmt.Fprint(stderr, inst.Debug())
		}
	}
	os.Exit(1)
}

func main() {
	flag.BoolVar(&debug, "debug", false, "print a stack trace and a debug dump on fatal error")
	flag.BoolVar(&disasm, "disasm", false, "print the linked program's disassembly and exit")
	flag.BoolVar(&listBuiltins, "list-builtins", false, "print native OS call targets and exit")
	flag.BoolVar(&asciiScreen, "ascii-screen", false, "render the screen region as terminal ASCII art")
	flag.BoolVar(&noRaw, "noraw", false, "disable raw terminal keyboard input")
	flag.IntVar(&stepsPerTick, "batch", 10000, "instructions executed per Tick")
	flag.IntVar(&maxSteps, "max-steps", 0, "stop after this many total instructions (0 = unlimited)")
	flag.Parse()

	files := flag.Args()
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "usage: hackvm [flags] file.vm [file2.vm ...]")
		os.Exit(2)
	}

	inst, err := vm.NewInstance()
	if err != nil {
		atExit(nil, err)
		return
	}

	for _, name := range files {
		f, ferr := os.Open(name)
		if ferr != nil {
			atExit(inst, ferr)
			return
		}
		unit := unitName(name)
		err = inst.LoadFile(unit, bufio.NewReader(f))
		f.Close()
		if err != nil {
			atExit(inst, err)
			return
		}
	}

	if err = inst.Init(); err != nil {
		atExit(inst, err)
		return
	}

	if listBuiltins {
		for _, name := range inst.Program.BuiltinNames() {
			fmt.Fprintln(stdout, name)
		}
		atExit(inst, nil)
		return
	}
	if disasm {
		fmt.Fprint(stdout, asm.FunctionTable(inst.Program))
		fmt.Fprint(stdout, asm.Disassemble(inst.Program))
		atExit(inst, nil)
		return
	}

	runInteractive(inst)
}

func unitName(path string) string {
	base := path
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' || path[i] == '\\' {
			base = path[i+1:]
			break
		}
	}
	for i := len(base) - 1; i >= 0; i-- {
		if base[i] == '.' {
			return base[:i]
		}
	}
	return base
}

// runInteractive drives Tick on a fixed-rate ticker, polling raw stdin for
// keyboard input between ticks and optionally rendering the screen region
// as terminal ASCII art (SPEC_FULL.md §3's -ascii-screen flag).
func runInteractive(inst *vm.Instance) {
	rawTorn := func() {}
	if !noRaw {
		if teardown, err := setRawIO(); err == nil {
			rawTorn = teardown
		}
	}
	defer rawTorn()

	keys := make(chan byte, 64)
	go pollKeyboard(keys)

	var draw singleflight.Group

	ticker := time.NewTicker(16 * time.Millisecond) // ~60 fps
	defer ticker.Stop()

	total := 0
	for range ticker.C {
		select {
		case k := <-keys:
			inst.SetKeyboard(int(hackKeyCode(k)))
		default:
		}

		n := stepsPerTick
		if maxSteps > 0 && total+n > maxSteps {
			n = maxSteps - total
		}
		executed, err := inst.Tick(n)
		total += executed

		if asciiScreen {
			// A slow terminal can still be drawing the previous frame
			// when the next tick fires; singleflight coalesces the
			// redundant request onto the in-flight draw instead of
			// queuing redraws behind it.
			go draw.Do("frame", func() (interface{}, error) {
				renderASCIIScreen(inst)
				return nil, nil
			})
		}

		if err != nil {
			atExit(inst, err)
			return
		}
		if inst.Status != vm.StatusRunning {
			break
		}
		if maxSteps > 0 && total >= maxSteps {
			break
		}
	}
	atExit(inst, nil)
}

// pollKeyboard reads raw bytes from stdin and forwards them, non-blocking
// from the ticker's perspective: it runs on its own goroutine so a read
// that blocks waiting on a keystroke never stalls the Tick loop (§5: the
// host writes the keyboard register between ticks).
func pollKeyboard(out chan<- byte) {
	buf := make([]byte, 1)
	for {
		n, err := os.Stdin.Read(buf)
		if err != nil {
			return
		}
		if n > 0 {
			out <- buf[0]
		}
	}
}

// hackKeyCode maps a raw stdin byte to the Hack keyboard codes of §6.
func hackKeyCode(b byte) byte {
	switch b {
	case '\r', '\n':
		return 128
	case 127, 8:
		return 129
	case 27:
		return 140
	default:
		return b
	}
}

func renderASCIIScreen(inst *vm.Instance) {
	w, h, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 || h <= 0 {
		w, h = 128, 32
	}
	scaleX := vm.ScreenCols / w
	if scaleX < 1 {
		scaleX = 1
	}
	scaleY := vm.ScreenRows / h
	if scaleY < 1 {
		scaleY = 1
	}
	inst.DrawScreen(func(pixels []byte, width, height int) {
		fmt.Fprint(stdout, "\x1b[H")
		for y := 0; y < height; y += scaleY {
			for x := 0; x < width; x += scaleX {
				if pixels[y*width+x] != 0 {
					fmt.Fprint(stdout, "#")
				} else {
					fmt.Fprint(stdout, " ")
				}
			}
			fmt.Fprint(stdout, "\n")
		}
	})
}
