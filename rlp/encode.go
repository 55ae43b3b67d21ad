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
	"io"

	"github.com/holiman/uint256"

	"github.com/erigontech/txcodec/common"
)

// Writer-based encoders. Every function takes a scratch buffer b of at least 33 bytes
// which it may overwrite; callers reuse one buffer for a whole structure.

// EncodeStructSizePrefix writes a list header announcing size bytes of payload.
func EncodeStructSizePrefix(size int, w io.Writer, b []byte) error {
	n := EncodeListPrefix(size, b)
	_, err := w.Write(b[:n])
	return err
}

// EncodeStringSizePrefix writes a string header announcing size bytes of content.
func EncodeStringSizePrefix(size int, w io.Writer, b []byte) error {
	n := EncodeStringPrefix(size, b)
	_, err := w.Write(b[:n])
	return err
}

func EncodeInt(i uint64, w io.Writer, b []byte) error {
	n := EncodeU64(i, b)
	_, err := w.Write(b[:n])
	return err
}

func EncodeUint256(i *uint256.Int, w io.Writer, b []byte) error {
	n := EncodeU256(i, b)
	_, err := w.Write(b[:n])
	return err
}

func EncodeStringToWriter(s []byte, w io.Writer, b []byte) error {
	if len(s) == 1 && s[0] < 0x80 {
		_, err := w.Write(s)
		return err
	}
	if err := EncodeStringSizePrefix(len(s), w, b); err != nil {
		return err
	}
	_, err := w.Write(s)
	return err
}

// EncodeOptionalAddress writes the empty string for a nil address, the 20 address bytes otherwise.
func EncodeOptionalAddress(addr *common.Address, w io.Writer, b []byte) error {
	if addr == nil {
		b[0] = 0x80
	} else {
		b[0] = 0x80 + common.AddressLength
	}
	if _, err := w.Write(b[:1]); err != nil {
		return err
	}
	if addr != nil {
		if _, err := w.Write(addr[:]); err != nil {
			return err
		}
	}
	return nil
}

// OptionalAddressLen is the encoded size of an optional address.
func OptionalAddressLen(addr *common.Address) int {
	if addr == nil {
		return 1
	}
	return 1 + common.AddressLength
}
