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

// Package vm implements the core of a Hack platform virtual machine
// emulator: the VM-file parser, the cross-file linker, a two-stack
// interpreter over a flat 16-bit RAM, and a native implementation of the
// standard OS library (Math, Memory, Screen, Output, Keyboard, String,
// Array and Sys).
//
// A caller feeds one or more translation units (VM text files) to an
// Instance with LoadFile, calls Init to link them into a Program and zero
// the RAM, then drives execution in batches with Tick. The host embeds the
// interpreter: it owns the render loop, the keyboard source, and any
// packaging around this package, none of which live here.
//
// For the curriculum this implements, see
// https://www.nand2tetris.org/project08 and the accompanying OS
// specification in Chapter 12.
package vm
