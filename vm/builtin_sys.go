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

// Sys.halt/Sys.wait/Sys.error (§4.6). Sys.init is deliberately not in
// nativeTable: the only place it matters is the bootstrap prologue, which
// the linker resolves directly to Sys.init or, per §4.6's documented
// fallback, to Main.main (linker.go, resolveBootstrap) — see DESIGN.md for
// why a native handler for arbitrary mid-program `call Sys.init` sites
// isn't worth the added complexity.

package vm

import "github.com/pkg/errors"

func sysHalt(i *Instance, args []Word) (Word, bool, error) {
	i.Status = StatusHalted
	return 0, true, nil
}

func sysWait(i *Instance, args []Word) (Word, bool, error) {
	if !i.os.waiting {
		n := int(args[0])
		if n < 0 {
			n = 0
		}
		i.os.waiting = true
		i.os.waitRemaining = n * i.opts.WaitScale
	}
	if i.os.waitRemaining <= 0 {
		i.os.waiting = false
		return 0, true, nil
	}
	i.os.waitRemaining--
	return 0, false, nil
}

func sysError(i *Instance, args []Word) (Word, bool, error) {
	code := args[0]
	return 0, true, errors.WithStack(&RuntimeError{PC: i.PC, Reason: "Sys.error", Code: code})
}
