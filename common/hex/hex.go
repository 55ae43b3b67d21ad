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

package hex

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

var ErrOddLength = errors.New("hex string of odd length")

func MustDecodeString(s string) []byte {
	r, err := DecodeString(s)
	if err != nil {
		panic(err)
	}
	return r
}

// DecodeString decodes s with an optional 0x prefix. Whitespace around s is ignored.
func DecodeString(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if Has0xPrefix(s) {
		s = s[2:]
	}
	if len(s)%2 == 1 {
		return nil, ErrOddLength
	}
	return hex.DecodeString(s)
}

// FromHex returns the bytes represented by the hexadecimal string s.
// s may be prefixed with "0x". Odd-length input is left-padded with a zero nibble.
func FromHex(s string) []byte {
	if Has0xPrefix(s) {
		s = s[2:]
	}
	if len(s)%2 == 1 {
		s = "0" + s
	}
	h, _ := hex.DecodeString(s)
	return h
}

// Has0xPrefix validates str begins with '0x' or '0X'.
func Has0xPrefix(str string) bool {
	return len(str) >= 2 && str[0] == '0' && (str[1] == 'x' || str[1] == 'X')
}

// IsHex validates whether each byte is valid hexadecimal string.
func IsHex(str string) bool {
	if len(str)%2 != 0 {
		return false
	}
	for _, c := range []byte(str) {
		if !isHexCharacter(c) {
			return false
		}
	}
	return true
}

func isHexCharacter(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

// UnmarshalFixed decodes the input as a 0x-prefixed string of exactly len(out) bytes.
func UnmarshalFixed(typname string, input, out []byte) error {
	s := string(input)
	if !Has0xPrefix(s) {
		return fmt.Errorf("hex string without 0x prefix for %s", typname)
	}
	s = s[2:]
	if len(s)/2 != len(out) || len(s)%2 != 0 {
		return fmt.Errorf("hex string has length %d, want %d for %s", len(s), len(out)*2, typname)
	}
	if _, err := hex.Decode(out, []byte(s)); err != nil {
		return fmt.Errorf("invalid hex for %s: %w", typname, err)
	}
	return nil
}
