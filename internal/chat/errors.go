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

package chat

import (
	"errors"
	"fmt"

	apperrors "dirpilot/internal/errors"
)

var (
	// ErrEmptyResponse is returned when a completion carries no choices.
	ErrEmptyResponse = errors.New("completion returned no choices")

	// ErrToolLoopExceeded is returned when the model keeps requesting tools
	// past the round limit.
	ErrToolLoopExceeded = errors.New("too many tool rounds")
)

func newAPIError(operation string, err error) *apperrors.Error {
	return apperrors.Wrap(apperrors.CodeAPI, "API error during "+operation, err)
}

func newHistoryError(operation, path string, err error) *apperrors.Error {
	return apperrors.Wrap(apperrors.CodeHistory, fmt.Sprintf("history error during %s on %s", operation, path), err)
}
