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

// Raw terminal IO follows db47h/ngaro's cmd/retro/term.go: switch stdin to
// raw mode via termios directly (rather than the higher-level term.Term)
// so we can read one keystroke at a time without waiting for Enter, which
// the Hack keyboard register (§6) needs in order to behave like real
// hardware instead of a line-buffered console.

//go:build !windows

package main

import (
	"os"

	"github.com/pkg/errors"
	"github.com/pkg/term/termios"
	"golang.org/x/sys/unix"
)

func setRawIO() (func(), error) {
	var tios unix.Termios
	if err := termios.Tcgetattr(os.Stdin.Fd(), &tios); err != nil {
		return nil, errors.Wrap(err, "Tcgetattr failed")
	}
	a := tios
	a.Iflag &^= unix.IGNBRK | unix.ISTRIP | unix.IXON | unix.IXOFF
	a.Iflag |= unix.BRKINT | unix.IGNPAR
	a.Lflag &^= unix.ICANON | unix.IEXTEN | unix.ECHO
	a.Cc[unix.VMIN] = 0
	a.Cc[unix.VTIME] = 0
	if err := termios.Tcsetattr(os.Stdin.Fd(), termios.TCSANOW, &a); err != nil {
		termios.Tcsetattr(os.Stdin.Fd(), termios.TCSANOW, &tios)
		return nil, errors.Wrap(err, "Tcsetattr failed")
	}
	return func() {
		termios.Tcsetattr(os.Stdin.Fd(), termios.TCSANOW, &tios)
	}, nil
}
