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
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/567-labs/instructor-go/pkg/instructor"
)

// Argument shapes of the built-in tools. They only drive schema generation;
// execution reads the raw argument map so that loosely typed calls work.

type noArgs struct{}

type setCurrentDirectoryArgs struct {
	NewDirectory string `json:"newDirectory" jsonschema:"description=Directory to switch to; relative to the current directory unless absolute. Supports ~ and $VAR"`
}

type readFileArgs struct {
	FileName string `json:"fileName" jsonschema:"description=File to read; relative to the current directory unless absolute"`
}

type removePathArgs struct {
	Target string `json:"target" jsonschema:"description=File or directory to delete; must be inside the current directory"`
}

type renamePathArgs struct {
	OldName string `json:"oldName" jsonschema:"description=Existing entry inside the current directory"`
	NewName string `json:"newName" jsonschema:"description=New name inside the current directory"`
}

type makeDirectoryArgs struct {
	DirName string `json:"dirName" jsonschema:"description=Directory to create, parents included"`
}

type createFileArgs struct {
	FileName string `json:"fileName" jsonschema:"description=New empty file inside the current directory"`
}

type writeFileArgs struct {
	FileName string `json:"fileName" jsonschema:"description=File inside the current directory to create or overwrite"`
	Content  string `json:"content" jsonschema:"description=Full new content of the file"`
}

type appendFileArgs struct {
	FileName string `json:"fileName" jsonschema:"description=File inside the current directory to append to"`
	Content  string `json:"content" jsonschema:"description=Text appended followed by a line break"`
}

type movePathArgs struct {
	Source    string `json:"source" jsonschema:"description=Entry to move"`
	Target    string `json:"target" jsonschema:"description=Destination path"`
	Overwrite bool   `json:"overwrite,omitempty" jsonschema:"description=Replace an existing target (default: false)"`
}

func mustSchemaParametersFor[T any]() map[string]interface{} {
	var zero T
	t := reflect.TypeOf(zero)
	if t == nil {
		panic("schema type is nil")
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.NumField() == 0 {
		return emptyParameters()
	}
	params, err := schemaParametersForType(t)
	if err != nil {
		panic(err)
	}
	return params
}

func emptyParameters() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	}
}

func schemaParametersForType(t reflect.Type) (map[string]interface{}, error) {
	schema, err := instructor.NewSchema(t)
	if err != nil {
		return nil, err
	}

	defName := t.Name()
	for _, fn := range schema.Functions {
		if fn.Name != defName {
			continue
		}
		return jsonSchemaToMap(fn.Parameters)
	}

	return nil, fmt.Errorf("schema definition %q not found", defName)
}

func jsonSchemaToMap(schema interface{}) (map[string]interface{}, error) {
	raw, err := json.Marshal(schema)
	if err != nil {
		return nil, err
	}
	var params map[string]interface{}
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, err
	}
	return params, nil
}
