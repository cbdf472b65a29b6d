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

package tools

import (
	"strconv"
	"strings"
)

// stringArg reads a string-like argument. Missing or unusable values come
// back as "" so the operation can report them in its own words.
func stringArg(args map[string]interface{}, key string) string {
	if args == nil {
		return ""
	}
	s, _ := getText(args[key])
	return s
}

// pathArg reads a path argument, falling back to the generic keys models
// tend to emit instead of the declared one.
func pathArg(args map[string]interface{}, key string) string {
	if args == nil {
		return ""
	}
	if p, ok := getStringLike(args[key]); ok {
		return p
	}
	for _, alias := range []string{"path", "file", "filepath"} {
		if p, ok := getStringLike(args[alias]); ok {
			return p
		}
	}
	return ""
}

// boolArg reads a bool argument; models sometimes send "true" as a string.
func boolArg(args map[string]interface{}, key string) bool {
	if args == nil {
		return false
	}
	b, _ := parseBool(args[key])
	return b
}

// getText accepts a string, raw bytes or the first string in an array.
// Unlike getStringLike it keeps empty strings, which are valid content.
func getText(val interface{}) (string, bool) {
	switch v := val.(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok {
				return s, true
			}
		}
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	}
	return "", false
}

// getStringLike accepts the same shapes as getText but rejects blank values.
func getStringLike(val interface{}) (string, bool) {
	switch v := val.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return "", false
		}
		return v, true
	case []byte:
		if len(v) == 0 {
			return "", false
		}
		return string(v), true
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				return s, true
			}
		}
	}
	return "", false
}

func parseBool(val interface{}) (bool, bool) {
	switch v := val.(type) {
	case bool:
		return v, true
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return false, false
		}
		return b, true
	case float64:
		return v != 0, true
	}
	return false, false
}
