// Copyright 2021 Erigon contributors
// (original work)
// Copyright 2024 The Erigon Authors
// (modifications)
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
	"fmt"

	"github.com/holiman/uint256"

	"github.com/erigontech/txcodec/common"
)

const ParseHashErrorPrefix = "parse hash payload"

// Prefix parses RLP Prefix from given payload at given position. It returns the offset and length of the RLP element
// as well as the indication of whether it is a list of string.
// The declared element is guaranteed to fit into payload when err is nil.
func Prefix(payload []byte, pos int) (dataPos int, dataLen int, isList bool, err error) {
	if pos < 0 {
		return 0, 0, false, fmt.Errorf("%w: negative position not allowed", ErrParse)
	}
	if pos >= len(payload) {
		return 0, 0, false, fmt.Errorf("%w: unexpected end of payload", ErrInputTooShort)
	}
	switch first := payload[pos]; {
	case first < 0x80:
		return pos, 1, false, nil
	case first < 0xb8:
		dataPos, dataLen = pos+1, int(first-0x80)
		if dataPos+dataLen > len(payload) {
			return 0, 0, false, fmt.Errorf("%w: string of %d bytes, %d remain", ErrInputTooShort, dataLen, len(payload)-dataPos)
		}
		// for single byte below 0x80 the byte itself is the encoding
		if dataLen == 1 && payload[dataPos] < 0x80 {
			return 0, 0, false, fmt.Errorf("%w: non-canonical size information", ErrMalformedHeader)
		}
		return dataPos, dataLen, false, nil
	case first < 0xc0:
		dataPos, dataLen, err = longPrefix(payload, pos, int(first-0xb7))
		return dataPos, dataLen, false, err
	case first < 0xf8:
		dataPos, dataLen = pos+1, int(first-0xc0)
		if dataPos+dataLen > len(payload) {
			return 0, 0, false, fmt.Errorf("%w: list of %d bytes, %d remain", ErrInputTooShort, dataLen, len(payload)-dataPos)
		}
		return dataPos, dataLen, true, nil
	default:
		dataPos, dataLen, err = longPrefix(payload, pos, int(first-0xf7))
		return dataPos, dataLen, true, err
	}
}

// longPrefix reads the big-endian size that follows a long-form prefix byte.
func longPrefix(payload []byte, pos, lenOfLen int) (int, int, error) {
	beStart := pos + 1
	dataPos := beStart + lenOfLen
	if dataPos > len(payload) {
		return 0, 0, fmt.Errorf("%w: size of %d bytes, %d remain", ErrInputTooShort, lenOfLen, len(payload)-beStart)
	}
	if payload[beStart] == 0 {
		return 0, 0, fmt.Errorf("%w: size has leading zeros", ErrMalformedHeader)
	}
	var size uint64
	for _, b := range payload[beStart:dataPos] {
		size = size<<8 | uint64(b)
	}
	if size < 56 {
		return 0, 0, fmt.Errorf("%w: long form used for %d bytes", ErrMalformedHeader, size)
	}
	if size > uint64(len(payload)-dataPos) {
		return 0, 0, fmt.Errorf("%w: element of %d bytes, %d remain", ErrInputTooShort, size, len(payload)-dataPos)
	}
	return dataPos, int(size), nil
}

// List parses a list prefix and returns the position of the first element and the payload length.
func List(payload []byte, pos int) (dataPos, dataLen int, err error) {
	dataPos, dataLen, isList, err := Prefix(payload, pos)
	if err != nil {
		return 0, 0, err
	}
	if !isList {
		return 0, 0, fmt.Errorf("%w: must be a list", ErrUnexpectedString)
	}
	return dataPos, dataLen, nil
}

// String parses a string prefix and returns the position of the content and its length.
func String(payload []byte, pos int) (dataPos, dataLen int, err error) {
	dataPos, dataLen, isList, err := Prefix(payload, pos)
	if err != nil {
		return 0, 0, err
	}
	if isList {
		return 0, 0, fmt.Errorf("%w: must be a string, instead of a list", ErrUnexpectedList)
	}
	return dataPos, dataLen, nil
}

// StringOfLen parses a string of exactly expectedLen bytes.
func StringOfLen(payload []byte, pos, expectedLen int) (dataPos int, err error) {
	dataPos, dataLen, err := String(payload, pos)
	if err != nil {
		return 0, err
	}
	if dataLen != expectedLen {
		return 0, fmt.Errorf("%w: expected string of len %d, got %d", ErrParse, expectedLen, dataLen)
	}
	return dataPos, nil
}

// ParseString returns the content of the string at pos (aliasing payload) and the position after it.
func ParseString(payload []byte, pos int) ([]byte, int, error) {
	dataPos, dataLen, err := String(payload, pos)
	if err != nil {
		return nil, 0, err
	}
	return payload[dataPos : dataPos+dataLen], dataPos + dataLen, nil
}

// intContent locates the content bytes of an integer and enforces the canonical form.
func intContent(payload []byte, pos, maxLen int) (dataPos, dataLen int, err error) {
	dataPos, dataLen, err = String(payload, pos)
	if err != nil {
		return 0, 0, err
	}
	if dataLen > maxLen {
		return 0, 0, fmt.Errorf("%w: integer of %d bytes, max %d", ErrOverflow, dataLen, maxLen)
	}
	if dataLen > 0 && payload[dataPos] == 0 {
		return 0, 0, fmt.Errorf("%w: %x", ErrNonCanonicalInt, payload[dataPos:dataPos+dataLen])
	}
	return dataPos, dataLen, nil
}

// U64 parses uint64 number from given payload at given position
func U64(payload []byte, pos int) (int, uint64, error) {
	dataPos, dataLen, err := intContent(payload, pos, 8)
	if err != nil {
		return 0, 0, err
	}
	var r uint64
	for _, b := range payload[dataPos : dataPos+dataLen] {
		r = r<<8 | uint64(b)
	}
	return dataPos + dataLen, r, nil
}

// U32 parses uint32 number from given payload at given position
func U32(payload []byte, pos int) (int, uint32, error) {
	dataPos, dataLen, err := intContent(payload, pos, 4)
	if err != nil {
		return 0, 0, err
	}
	var r uint32
	for _, b := range payload[dataPos : dataPos+dataLen] {
		r = r<<8 | uint32(b)
	}
	return dataPos + dataLen, r, nil
}

// U256 parses uint256 number from given payload at given position
func U256(payload []byte, pos int, x *uint256.Int) (int, error) {
	return U256Bounded(payload, pos, x, 32)
}

// U256Bounded parses an integer of at most maxBytes bytes into x.
func U256Bounded(payload []byte, pos int, x *uint256.Int, maxBytes int) (int, error) {
	dataPos, dataLen, err := intContent(payload, pos, maxBytes)
	if err != nil {
		return 0, err
	}
	x.SetBytes(payload[dataPos : dataPos+dataLen])
	return dataPos + dataLen, nil
}

// ParseHash extracts the next hash from the RLP encoding (payload) from a given position.
// It appends the hash to the given slice, reusing the space if there is enough capacity
func ParseHash(payload []byte, pos int, hashbuf []byte) (int, error) {
	pos, err := StringOfLen(payload, pos, common.HashLength)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", ParseHashErrorPrefix, err)
	}
	copy(hashbuf, payload[pos:pos+common.HashLength])
	return pos + common.HashLength, nil
}

// ParseAddress extracts a 20 byte address.
func ParseAddress(payload []byte, pos int, addr *common.Address) (int, error) {
	pos, err := StringOfLen(payload, pos, common.AddressLength)
	if err != nil {
		return 0, fmt.Errorf("parse address: %w", err)
	}
	copy(addr[:], payload[pos:pos+common.AddressLength])
	return pos + common.AddressLength, nil
}

// ParseOptionalAddress accepts either the empty string (nil result) or a 20 byte address.
func ParseOptionalAddress(payload []byte, pos int) (*common.Address, int, error) {
	dataPos, dataLen, err := String(payload, pos)
	if err != nil {
		return nil, 0, err
	}
	switch dataLen {
	case 0:
		return nil, dataPos, nil
	case common.AddressLength:
		var addr common.Address
		copy(addr[:], payload[dataPos:dataPos+dataLen])
		return &addr, dataPos + dataLen, nil
	default:
		return nil, 0, fmt.Errorf("%w: wrong size for address: %d", ErrParse, dataLen)
	}
}

// Bool parses a boolean encoded as the empty string (false) or 0x01 (true).
func Bool(payload []byte, pos int) (int, bool, error) {
	pos, v, err := U64(payload, pos)
	if err != nil {
		return 0, false, err
	}
	if v > 1 {
		return 0, false, fmt.Errorf("%w: invalid boolean value %d", ErrParse, v)
	}
	return pos, v == 1, nil
}
