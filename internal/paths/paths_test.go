// Copyright (C) 2025 Dyne.org foundation
// designed, written and maintained by Denis Roio <jaromil@dyne.org>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package paths

import (
	"errors"
	"path/filepath"
	"testing"

	apperrors "dirpilot/internal/errors"
)

func testEnv() Env {
	return MapEnv("/home/u", map[string]string{
		"HOME":  "/home/u",
		"FOO":   "foo",
		"EMPTY": "",
		"NEST":  "$FOO",
	})
}

func TestExpand(t *testing.T) {
	env := testEnv()

	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{name: "empty", raw: "", expected: ""},
		{name: "blank", raw: "   ", expected: "   "},
		{name: "tilde", raw: "~", expected: "/home/u"},
		{name: "tilde slash", raw: "~/docs", expected: "/home/u/docs"},
		{name: "tilde user untouched", raw: "~bob/docs", expected: "~bob/docs"},
		{name: "inner tilde untouched", raw: "a/~/b", expected: "a/~/b"},
		{name: "bare var", raw: "$HOME/x", expected: "/home/u/x"},
		{name: "brace var", raw: "${HOME}/x", expected: "/home/u/x"},
		{name: "brace then literal", raw: "${FOO}BAR", expected: "fooBAR"},
		{name: "bare swallows identifier", raw: "$FOOBAR", expected: ""},
		{name: "missing var", raw: "a/$NOPE/b", expected: "a//b"},
		{name: "empty var", raw: "x$EMPTY", expected: "x"},
		{name: "dollar digit untouched", raw: "$1abc", expected: "$1abc"},
		{name: "lone dollar", raw: "cost$", expected: "cost$"},
		{name: "unterminated brace", raw: "${FOO", expected: "${FOO"},
		{name: "no re-expansion", raw: "$NEST", expected: "$FOO"},
		{name: "tilde plus var", raw: "~/$FOO", expected: "/home/u/foo"},
		{name: "multiple", raw: "$FOO-${FOO}_$FOO", expected: "foo-foo_foo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Expand(tt.raw, env); got != tt.expected {
				t.Errorf("Expand(%q) = %q, want %q", tt.raw, got, tt.expected)
			}
		})
	}
}

func TestExpandNilLookup(t *testing.T) {
	if got := Expand("$FOO/x", Env{Home: "/h"}); got != "/x" {
		t.Fatalf("expected unset variable to expand empty, got %q", got)
	}
}

func TestResolveRelativeJoinsBase(t *testing.T) {
	env := testEnv()
	base := "/work"

	for _, raw := range []string{"a", "a/b/../c", "./x//y", "..", "../../..", "a/./b/"} {
		for _, mode := range []Mode{Unsandboxed, Sandboxed} {
			got, err := Resolve(raw, base, mode, env)
			want := filepath.Clean(base + "/" + raw)
			if mode == Sandboxed && !HasPathPrefix(want, base) {
				if !errors.Is(err, ErrOutsideBase) {
					t.Fatalf("Resolve(%q, %s) expected sandbox refusal, got %v", raw, mode, err)
				}
				continue
			}
			if err != nil {
				t.Fatalf("Resolve(%q, %s) unexpected error: %v", raw, mode, err)
			}
			if got != want {
				t.Fatalf("Resolve(%q, %s) = %q, want %q", raw, mode, got, want)
			}
		}
	}
}

func TestResolveAbsoluteIgnoresBase(t *testing.T) {
	env := testEnv()
	for _, base := range []string{"/work", "/", "/srv/data"} {
		got, err := Resolve("/etc/../var//log/", base, Unsandboxed, env)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "/var/log" {
			t.Fatalf("expected /var/log, got %q", got)
		}
	}
}

func TestResolveSandboxed(t *testing.T) {
	env := testEnv()

	tests := []struct {
		name    string
		raw     string
		want    string
		refused bool
	}{
		{name: "child", raw: "a/b", want: "/work/a/b"},
		{name: "base itself", raw: ".", want: "/work"},
		{name: "absolute inside", raw: "/work/x", want: "/work/x"},
		{name: "parent escape", raw: "../outside", want: "/outside", refused: true},
		{name: "absolute outside", raw: "/etc/passwd", want: "/etc/passwd", refused: true},
		{name: "sibling prefix", raw: "/workshop/a", want: "/workshop/a", refused: true},
		{name: "escape and return", raw: "../work/a", want: "/work/a"},
		{name: "variable escape", raw: "$HOME/x", want: "/home/u/x", refused: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.raw, "/work", Sandboxed, env)
			if tt.refused {
				if !errors.Is(err, ErrOutsideBase) {
					t.Fatalf("expected ErrOutsideBase, got %v", err)
				}
				if apperrors.CodeOf(err) != apperrors.CodeSandbox {
					t.Fatalf("expected sandbox code, got %q", apperrors.CodeOf(err))
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestResolveHomeParent(t *testing.T) {
	got, err := Resolve("$HOME/../etc", "/work", Unsandboxed, testEnv())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "/home/etc" {
		t.Fatalf("expected /home/etc, got %q", got)
	}
}

func TestResolveRejectsInvalidInput(t *testing.T) {
	for _, raw := range []string{"", "  ", "bad\x00path", string([]byte{0xff, 0xfe})} {
		if _, err := Resolve(raw, "/work", Unsandboxed, testEnv()); apperrors.CodeOf(err) != apperrors.CodeInvalidInput {
			t.Fatalf("expected invalid input for %q, got %v", raw, err)
		}
	}
}

func TestValidatePathStringRejectsNullByte(t *testing.T) {
	if err := ValidatePathString("bad\x00path", 0); err == nil {
		t.Fatal("expected error for null byte path")
	}
}

func TestValidatePathStringAcceptsCombiningMarks(t *testing.T) {
	for _, name := range []string{"cafe\u0301.txt", "\u0939\u093f\u0902\u0926\u0940", "\u0e20\u0e32\u0e29\u0e32"} {
		if err := ValidatePathString(name, 0); err != nil {
			t.Fatalf("ValidatePathString(%q) = %v", name, err)
		}
	}
}

func TestValidatePathStringLength(t *testing.T) {
	long := make([]byte, 20)
	for i := range long {
		long[i] = 'a'
	}
	if err := ValidatePathString(string(long), 10); err == nil {
		t.Fatal("expected length error")
	}
	if err := ValidatePathString(string(long), 0); err != nil {
		t.Fatalf("zero limit should disable the check, got %v", err)
	}
}

func TestHasPathPrefix(t *testing.T) {
	tests := []struct {
		path, base string
		want       bool
	}{
		{"/work", "/work", true},
		{"/work/a", "/work", true},
		{"/workshop", "/work", false},
		{"/", "/work", false},
		{"/etc", "/", true},
		{"/work/..a", "/work", true},
	}
	for _, tt := range tests {
		if got := HasPathPrefix(tt.path, tt.base); got != tt.want {
			t.Errorf("HasPathPrefix(%q, %q) = %v, want %v", tt.path, tt.base, got, tt.want)
		}
	}
}
