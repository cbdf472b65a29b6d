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

// Package fsops implements the filesystem operations behind the tool
// surface: navigation, file and directory manipulation, and moves.
//
// Every operation resolves its arguments against one snapshot of the
// working directory taken at call start. Success is reported as a
// human-readable string; failures are *errors.Error values whose message
// is equally meant to be shown to the model.
package fsops

import (
	"errors"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	apperrors "dirpilot/internal/errors"
	"dirpilot/internal/paths"
	"dirpilot/internal/workdir"
)

const dateTimeLayout = "Monday, January 2, 2006 03:04:05.000 PM"

// Options tunes an Ops instance. Zero values select defaults.
type Options struct {
	Env    *paths.Env
	Limits Limits
	Now    func() time.Time
}

// Ops performs filesystem operations relative to a working directory state.
type Ops struct {
	state  *workdir.State
	env    paths.Env
	limits Limits
	logger zerolog.Logger
	now    func() time.Time
	rename func(oldpath, newpath string) error
}

// New creates Ops bound to state.
func New(state *workdir.State, logger zerolog.Logger, opts Options) *Ops {
	env := paths.OSEnv()
	if opts.Env != nil {
		env = *opts.Env
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Ops{
		state:  state,
		env:    env,
		limits: normalizeLimits(opts.Limits),
		logger: logger.With().Str("component", "fsops").Logger(),
		now:    now,
		rename: os.Rename,
	}
}

// State exposes the working directory state the operations share.
func (o *Ops) State() *workdir.State {
	return o.state
}

// Limits returns the effective limits.
func (o *Ops) Limits() Limits {
	return o.limits
}

// CurrentDateTime returns the local time in a long, human-readable layout.
func (o *Ops) CurrentDateTime() string {
	return o.now().Format(dateTimeLayout)
}

// resolve maps a raw argument to an absolute path against base. refusal is
// the message prefix used when a sandboxed path escapes base.
func (o *Ops) resolve(raw, base string, mode paths.Mode, refusal string) (string, error) {
	resolved, err := paths.Resolve(raw, base, mode, o.env)
	if err != nil {
		if errors.Is(err, paths.ErrOutsideBase) {
			return "", apperrors.Newf(apperrors.CodeSandbox, "%s: %s", refusal, resolved)
		}
		return "", err
	}
	return resolved, nil
}

// failure prefixes err and classifies it. Sandbox refusals already carry a
// complete message and pass through unchanged.
func failure(prefix string, err error) error {
	var coded *apperrors.Error
	if errors.As(err, &coded) {
		if coded.Code == apperrors.CodeSandbox {
			return err
		}
		return apperrors.Wrap(coded.Code, prefix, err)
	}
	code := apperrors.CodeUnexpected
	switch {
	case errors.Is(err, fs.ErrPermission):
		code = apperrors.CodePermission
	case errors.Is(err, fs.ErrNotExist):
		code = apperrors.CodeNotFound
	case errors.Is(err, fs.ErrExist):
		code = apperrors.CodeCollision
	}
	return apperrors.Wrap(code, prefix, err)
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// present reports whether an entry exists at path without following it.
func present(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
