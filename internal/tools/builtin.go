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
	"context"

	"dirpilot/internal/fsops"
)

const builtinToolVersion = "1.0.0"

// registerBuiltInTools registers the filesystem tools bound to r.ops.
func registerBuiltInTools(r *Registry) {
	register := func(tool Tool) {
		if err := r.RegisterTool(tool); err != nil {
			panic(err)
		}
	}
	for _, tool := range builtinTools(r.ops) {
		register(tool)
	}
}

func builtinTools(ops *fsops.Ops) []Tool {
	return []Tool{
		&ToolDefinition{
			NameValue:        "getCurrentDateTimeLocal",
			DescriptionValue: "Get the current local date and time",
			ParametersValue:  mustSchemaParametersFor[noArgs](),
			ExecuteFunc: func(ctx context.Context, args map[string]interface{}) (string, error) {
				return ops.CurrentDateTime(), nil
			},
			VersionValue: builtinToolVersion,
		},
		&ToolDefinition{
			NameValue:        "getCurrentDirectory",
			DescriptionValue: "Get the absolute path of the current working directory",
			ParametersValue:  mustSchemaParametersFor[noArgs](),
			ExecuteFunc: func(ctx context.Context, args map[string]interface{}) (string, error) {
				return ops.CurrentDirectory(), nil
			},
			VersionValue: builtinToolVersion,
		},
		&ToolDefinition{
			NameValue:        "setCurrentDirectory",
			DescriptionValue: "Change the current working directory. All relative paths of later calls resolve against it",
			ParametersValue:  mustSchemaParametersFor[setCurrentDirectoryArgs](),
			ExecuteFunc: func(ctx context.Context, args map[string]interface{}) (string, error) {
				return ops.ChangeDirectory(pathArg(args, "newDirectory"))
			},
			ValidateFunc: RequirePathArg("newDirectory"),
			VersionValue: builtinToolVersion,
		},
		&ToolDefinition{
			NameValue:        "listCurrentDirectory",
			DescriptionValue: "List the entries of the current working directory; directories are marked [DIR]",
			ParametersValue:  mustSchemaParametersFor[noArgs](),
			ExecuteFunc: func(ctx context.Context, args map[string]interface{}) (string, error) {
				return ops.ListCurrentDirectory()
			},
			VersionValue: builtinToolVersion,
		},
		&ToolDefinition{
			NameValue:        "readFile",
			DescriptionValue: "Read the full content of a UTF-8 text file",
			ParametersValue:  mustSchemaParametersFor[readFileArgs](),
			ExecuteFunc: func(ctx context.Context, args map[string]interface{}) (string, error) {
				return ops.ReadFile(pathArg(args, "fileName"))
			},
			ValidateFunc: RequirePathArg("fileName"),
			VersionValue: builtinToolVersion,
		},
		&ToolDefinition{
			NameValue:        "removePath",
			DescriptionValue: "Delete a file, a symlink or a whole directory tree inside the current working directory",
			ParametersValue:  mustSchemaParametersFor[removePathArgs](),
			ExecuteFunc: func(ctx context.Context, args map[string]interface{}) (string, error) {
				return ops.RemovePath(pathArg(args, "target"))
			},
			ValidateFunc:  RequirePathArg("target"),
			VersionValue:  builtinToolVersion,
			MutatingValue: true,
		},
		&ToolDefinition{
			NameValue:        "renamePath",
			DescriptionValue: "Rename an entry; both names must stay inside the current working directory",
			ParametersValue:  mustSchemaParametersFor[renamePathArgs](),
			ExecuteFunc: func(ctx context.Context, args map[string]interface{}) (string, error) {
				return ops.RenamePath(stringArg(args, "oldName"), stringArg(args, "newName"))
			},
			ValidateFunc: ChainValidation(
				RequireTextArg("oldName"),
				RequireTextArg("newName"),
			),
			VersionValue:  builtinToolVersion,
			MutatingValue: true,
		},
		&ToolDefinition{
			NameValue:        "makeDirectory",
			DescriptionValue: "Create a directory, including missing parents",
			ParametersValue:  mustSchemaParametersFor[makeDirectoryArgs](),
			ExecuteFunc: func(ctx context.Context, args map[string]interface{}) (string, error) {
				return ops.MakeDirectory(pathArg(args, "dirName"))
			},
			ValidateFunc:  RequirePathArg("dirName"),
			VersionValue:  builtinToolVersion,
			MutatingValue: true,
		},
		&ToolDefinition{
			NameValue:        "createFile",
			DescriptionValue: "Create a new empty file inside the current working directory",
			ParametersValue:  mustSchemaParametersFor[createFileArgs](),
			ExecuteFunc: func(ctx context.Context, args map[string]interface{}) (string, error) {
				return ops.CreateFile(pathArg(args, "fileName"))
			},
			ValidateFunc:  RequirePathArg("fileName"),
			VersionValue:  builtinToolVersion,
			MutatingValue: true,
		},
		&ToolDefinition{
			NameValue:        "writeFile",
			DescriptionValue: "Create or overwrite a text file inside the current working directory",
			ParametersValue:  mustSchemaParametersFor[writeFileArgs](),
			ExecuteFunc: func(ctx context.Context, args map[string]interface{}) (string, error) {
				return ops.WriteFile(pathArg(args, "fileName"), stringArg(args, "content"))
			},
			ValidateFunc: ChainValidation(
				RequirePathArg("fileName"),
				OptionalTextArg("content"),
			),
			VersionValue:  builtinToolVersion,
			MutatingValue: true,
		},
		&ToolDefinition{
			NameValue:        "appendFile",
			DescriptionValue: "Append text and a line break to a file inside the current working directory",
			ParametersValue:  mustSchemaParametersFor[appendFileArgs](),
			ExecuteFunc: func(ctx context.Context, args map[string]interface{}) (string, error) {
				return ops.AppendFile(pathArg(args, "fileName"), stringArg(args, "content"))
			},
			ValidateFunc: ChainValidation(
				RequirePathArg("fileName"),
				OptionalTextArg("content"),
			),
			VersionValue:  builtinToolVersion,
			MutatingValue: true,
		},
		&ToolDefinition{
			NameValue:        "movePath",
			DescriptionValue: "Move a file or directory anywhere, across filesystems if needed",
			ParametersValue:  mustSchemaParametersFor[movePathArgs](),
			ExecuteFunc: func(ctx context.Context, args map[string]interface{}) (string, error) {
				return ops.MovePath(stringArg(args, "source"), stringArg(args, "target"), boolArg(args, "overwrite"))
			},
			ValidateFunc: ChainValidation(
				RequireTextArg("source"),
				RequireTextArg("target"),
				OptionalBoolArg("overwrite"),
			),
			VersionValue:  builtinToolVersion,
			MutatingValue: true,
		},
	}
}
