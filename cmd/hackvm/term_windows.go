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

// Windows has no termios; fall back to buffered, line-oriented stdin like
// db47h/ngaro's cmd/retro does on platforms its term_linux.go doesn't
// cover. Interactive single-keystroke input (§5) degrades to per-line
// input on this platform.

//go:build windows

package main

func setRawIO() (func(), error) {
	return func() {}, nil
}
