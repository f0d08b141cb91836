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

// The profiler is grounded on original_source/hackvm/src/vmemulator.rs's
// VMProfiler/profile_step/profiler_stats: a counter map keyed by the
// currently-executing function, updated once per step and once per call,
// rendered as a fixed-width table sorted by step count. §9 calls this out
// explicitly as driven by "a shadow stack of names parallel to calls and
// returns", which here is Instance.callNames (interp.go), shared with
// Debug rather than duplicated.

package vm

import (
	"fmt"
	"sort"
	"strings"
)

type funcStats struct {
	calls int64
	steps int64
}

type profiler struct {
	stats map[string]*funcStats
}

func newProfiler() *profiler {
	return &profiler{stats: make(map[string]*funcStats)}
}

func (p *profiler) entry(name string) *funcStats {
	if name == "" {
		name = "<bootstrap>"
	}
	s, ok := p.stats[name]
	if !ok {
		s = &funcStats{}
		p.stats[name] = s
	}
	return s
}

func (p *profiler) countStep(currentFunc string) {
	p.entry(currentFunc).steps++
}

func (p *profiler) countCall(name string) {
	p.entry(name).calls++
}

// Stats returns the serialized profile counters (§4.7's get_stats),
// formatted as a table of function/calls/steps/steps-per-call/percent-of-
// total, sorted by ascending step count as in the original implementation's
// profiler_stats. Returns "" if TickProfiled was never called.
func (i *Instance) Stats() string {
	if i.prof == nil {
		return ""
	}
	type row struct {
		name string
		s    *funcStats
	}
	rows := make([]row, 0, len(i.prof.stats))
	var total int64
	for name, s := range i.prof.stats {
		rows = append(rows, row{name, s})
		total += s.steps
	}
	sort.Slice(rows, func(a, b int) bool { return rows[a].s.steps < rows[b].s.steps })

	var b strings.Builder
	fmt.Fprintf(&b, "%-30s %10s %10s %10s %10s\n", "function", "calls", "steps", "steps/call", "% steps")
	for _, r := range rows {
		perCall := int64(0)
		if r.s.calls > 0 {
			perCall = r.s.steps / r.s.calls
		}
		pct := float64(0)
		if total > 0 {
			pct = float64(r.s.steps) / float64(total) * 100
		}
		fmt.Fprintf(&b, "%-30s %10d %10d %10d %9.2f%%\n", r.name, r.s.calls, r.s.steps, perCall, pct)
	}
	return b.String()
}
