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

package vm

import (
	"strings"
	"testing"
)

func parseOne(t *testing.T, src string) *ParsedUnit {
	t.Helper()
	u, err := Parse("Test", strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse: unexpected error: %v", err)
	}
	return u
}

func TestParseValidInstructions(t *testing.T) {
	src := `
// a comment
push constant 7   // trailing comment
push local 2
pop argument 1
add
sub
neg
eq
lt
gt
and
or
not
label LOOP
goto LOOP
if-goto LOOP
function Foo.bar 3
call Foo.bar 2
return
push pointer 0
push pointer 1
push temp 7
pop static 3
`
	u := parseOne(t, src)
	if len(u.Instructions) != 22 {
		t.Fatalf("expected 22 instructions, got %d", len(u.Instructions))
	}
	if u.Instructions[0].Op != OpPush || u.Instructions[0].Segment != SegConstant || u.Instructions[0].Index != 7 {
		t.Errorf("bad first instruction: %+v", u.Instructions[0])
	}
	if u.MaxStatic != 3 {
		t.Errorf("MaxStatic = %d, want 3", u.MaxStatic)
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	cases := []string{
		"push constant -1",
		"pop constant 0",
		"push pointer 2",
		"pop temp 8",
		"frobnicate",
		"push constant",
		"push constant 1 2",
		"label",
		"function Foo.bar",
		"call Foo.bar abc",
	}
	for _, src := range cases {
		if _, err := Parse("Test", strings.NewReader(src)); err == nil {
			t.Errorf("Parse(%q): expected error, got none", src)
		} else if _, ok := errors_As(err); !ok {
			t.Errorf("Parse(%q): expected *ParseError, got %T", src, err)
		}
	}
}

// errors_As avoids importing errors.As just for a type assertion in this
// test file; ParseError is never wrapped by Parse itself (only Link wraps).
func errors_As(err error) (*ParseError, bool) {
	pe, ok := err.(*ParseError)
	return pe, ok
}

func TestParseIgnoresBlankAndCommentLines(t *testing.T) {
	u := parseOne(t, "\n   \n// just a comment\nadd\n")
	if len(u.Instructions) != 1 {
		t.Fatalf("expected 1 instruction, got %d", len(u.Instructions))
	}
}
