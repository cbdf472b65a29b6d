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

package main

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/chzyer/readline"
	"github.com/rs/zerolog"

	"dirpilot/internal/fsops"
	"dirpilot/internal/workdir"
)

func TestClassifyReadlineError(t *testing.T) {
	cases := []struct {
		name     string
		line     string
		err      error
		expected readlineAction
	}{
		{"interrupt", "", readline.ErrInterrupt, readlineContinue},
		{"eof-empty", "", io.EOF, readlineExit},
		{"eof-whitespace", "   ", io.EOF, readlineExit},
		{"eof-line", "hello", io.EOF, readlineContinue},
		{"other", "", errors.New("boom"), readlineUnhandled},
		{"none", "hello", nil, readlineUnhandled},
	}

	for _, tc := range cases {
		if got := classifyReadlineError(tc.line, tc.err); got != tc.expected {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.expected, got)
		}
	}
}

func TestSanitizeInputLine(t *testing.T) {
	cases := []struct {
		input    string
		expected string
	}{
		{"\x03/quit", "/quit"},
		{"\x07/quit", "/quit"},
		{"\x1f\t/quit", "\t/quit"},
		{"/quit\x7f", "/quit"},
		{"list ~/notes", "list ~/notes"},
		{"héllo", "héllo"},
	}

	for _, tc := range cases {
		if got := sanitizeInputLine(tc.input); got != tc.expected {
			t.Fatalf("expected %q, got %q", tc.expected, got)
		}
	}
}

func TestSubdirectories(t *testing.T) {
	base := t.TempDir()
	for _, dir := range []string{"zeta", "alpha"} {
		if err := os.Mkdir(filepath.Join(base, dir), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(base, "file.txt"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	if got := subdirectories(base); !reflect.DeepEqual(got, []string{"alpha", "zeta"}) {
		t.Fatalf("unexpected subdirectories %v", got)
	}
	if got := subdirectories(filepath.Join(base, "missing")); got != nil {
		t.Fatalf("expected nil for missing dir, got %v", got)
	}
}

func TestPromptFor(t *testing.T) {
	base := filepath.Join(t.TempDir(), "project")
	ops := fsops.New(workdir.New(base), zerolog.Nop(), fsops.Options{})
	if got := promptFor(ops); got != "project ❯ " {
		t.Fatalf("unexpected prompt %q", got)
	}

	root := fsops.New(workdir.New("/"), zerolog.Nop(), fsops.Options{})
	if got := promptFor(root); got != "/ ❯ " {
		t.Fatalf("unexpected root prompt %q", got)
	}
}
