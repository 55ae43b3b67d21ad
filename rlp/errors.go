// Copyright 2024 The Erigon Authors
// This file is part of Erigon.
//
// Erigon is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Erigon is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Erigon. If not, see <http://www.gnu.org/licenses/>.

package rlp

import (
	"errors"
	"fmt"
)

var (
	ErrBase  = errors.New("rlp")
	ErrParse = fmt.Errorf("%w parse", ErrBase)

	// ErrMalformedHeader is returned for length prefixes that are not the unique minimal encoding.
	ErrMalformedHeader = fmt.Errorf("%w: malformed header", ErrParse)
	// ErrInputTooShort is returned when a prefix declares more bytes than remain in the payload.
	ErrInputTooShort    = fmt.Errorf("%w: input too short", ErrParse)
	ErrNonCanonicalInt  = fmt.Errorf("%w: non-canonical integer (leading zero bytes)", ErrParse)
	ErrUnexpectedString = fmt.Errorf("%w: unexpected string, expected list", ErrParse)
	ErrUnexpectedList   = fmt.Errorf("%w: unexpected list, expected string", ErrParse)
	ErrOverflow         = fmt.Errorf("%w: value overflows target type", ErrParse)
	ErrListSizeMismatch = fmt.Errorf("%w: list elements do not fill declared size", ErrParse)
)

func IsRLPError(err error) bool { return errors.Is(err, ErrBase) }
