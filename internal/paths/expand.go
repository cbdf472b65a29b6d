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
	"os"
	"regexp"
	"strings"
)

// varPattern matches ${NAME} or $NAME. The braced alternative is tried first so
// that "${FOO}BAR" expands FOO and keeps BAR literal.
var varPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

// Env supplies the home directory and variable lookup used by Expand.
type Env struct {
	Home   string
	Lookup func(name string) (string, bool)
}

// OSEnv returns an Env backed by the process environment.
func OSEnv() Env {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.Getenv("HOME")
	}
	return Env{Home: home, Lookup: os.LookupEnv}
}

// MapEnv returns an Env backed by a fixed map.
func MapEnv(home string, vars map[string]string) Env {
	return Env{
		Home: home,
		Lookup: func(name string) (string, bool) {
			v, ok := vars[name]
			return v, ok
		},
	}
}

func (e Env) lookup(name string) string {
	if e.Lookup == nil {
		return ""
	}
	v, _ := e.Lookup(name)
	return v
}

// Expand replaces a leading "~" and every $NAME / ${NAME} token in raw.
// Unset variables expand to the empty string. Substituted text is never
// expanded again and a "$" not followed by an identifier is left alone.
func Expand(raw string, env Env) string {
	if strings.TrimSpace(raw) == "" {
		return raw
	}

	prefix, rest := "", raw
	if raw == "~" || strings.HasPrefix(raw, "~/") {
		prefix, rest = env.Home, raw[1:]
	}

	expanded := varPattern.ReplaceAllStringFunc(rest, func(token string) string {
		m := varPattern.FindStringSubmatch(token)
		name := m[1]
		if name == "" {
			name = m[2]
		}
		return env.lookup(name)
	})

	return prefix + expanded
}
