/*
   Copyright 2021 Erigon contributors

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package rlp

import (
	"encoding/binary"
	"math/bits"

	"github.com/holiman/uint256"
)

// General design:
//      - rlp package doesn't manage memory - and Caller must ensure buffers are big enough.
//      - no io.Writer in this file, because it's incompatible with binary.BigEndian functions and Writer can't be used as temporary buffer
//
// Composition:
//     - each Encode method does write to given buffer and return written len
//     - each Parse accept position in payload and return new position
//
// General rules:
//      - functions to calculate prefix len are fast (and pure). it's ok to call them multiple times during encoding of large object for readability.
//      - rlp has 2 data types: List and String (bytes array), and low-level funcs are operate with this types.
//      - but for convenience and performance - provided higher-level functions (for example for EncodeHash - for []byte of len 32)
//      - functions to Parse (Decode) data - using data type as name (without any prefix): rlp.String(), rlp.List, rlp.U64(), rlp.U256()
//

// beLen is the number of bytes in the minimal big-endian form of n.
func beLen(n uint64) int {
	return (bits.Len64(n) + 7) / 8
}

// putBE writes the minimal big-endian form of n into to and returns the number of bytes written.
func putBE(n uint64, to []byte) int {
	l := beLen(n)
	var be [8]byte
	binary.BigEndian.PutUint64(be[:], n)
	copy(to, be[8-l:])
	return l
}

func ListPrefixLen(dataLen int) int {
	if dataLen >= 56 {
		return 1 + beLen(uint64(dataLen))
	}
	return 1
}

func EncodeListPrefix(dataLen int, to []byte) int {
	if dataLen >= 56 {
		l := putBE(uint64(dataLen), to[1:])
		to[0] = 0xf7 + byte(l)
		return 1 + l
	}
	to[0] = 0xc0 + byte(dataLen)
	return 1
}

// StringPrefixLen is the size of the header of a byte string with dataLen bytes of content.
// It does not cover the single byte case, see StringLen.
func StringPrefixLen(dataLen int) int {
	if dataLen >= 56 {
		return 1 + beLen(uint64(dataLen))
	}
	return 1
}

func EncodeStringPrefix(dataLen int, to []byte) int {
	if dataLen >= 56 {
		l := putBE(uint64(dataLen), to[1:])
		to[0] = 0xb7 + byte(l)
		return 1 + l
	}
	to[0] = 0x80 + byte(dataLen)
	return 1
}

// IntLenExcludingHead is the number of content bytes of i, not counting the string prefix.
// Values below 0x80 are encoded as themselves and have no content bytes beyond the head.
func IntLenExcludingHead(i uint64) int {
	if i < 0x80 {
		return 0
	}
	return beLen(i)
}

func U64Len(i uint64) int {
	return 1 + IntLenExcludingHead(i)
}

func EncodeU64(i uint64, to []byte) int {
	if i == 0 {
		to[0] = 0x80
		return 1
	}
	if i < 0x80 {
		to[0] = byte(i)
		return 1
	}
	l := putBE(i, to[1:])
	to[0] = 0x80 + byte(l)
	return 1 + l
}

func Uint256LenExcludingHead(i *uint256.Int) int {
	if i.LtUint64(0x80) {
		return 0
	}
	return i.ByteLen()
}

func U256Len(i *uint256.Int) int {
	return 1 + Uint256LenExcludingHead(i)
}

func EncodeU256(i *uint256.Int, to []byte) int {
	if i.IsUint64() {
		return EncodeU64(i.Uint64(), to)
	}
	l := i.ByteLen()
	be := i.Bytes32()
	to[0] = 0x80 + byte(l)
	copy(to[1:], be[32-l:])
	return 1 + l
}

// StringLen is the full encoded size of s, header included.
func StringLen(s []byte) int {
	if len(s) == 1 && s[0] < 0x80 {
		return 1
	}
	return StringPrefixLen(len(s)) + len(s)
}

func EncodeString(s []byte, to []byte) int {
	if len(s) == 1 && s[0] < 0x80 {
		to[0] = s[0]
		return 1
	}
	pos := EncodeStringPrefix(len(s), to)
	copy(to[pos:], s)
	return pos + len(s)
}

// EncodeHash assumes that `to` buffer is already 33 bytes long
func EncodeHash(h, to []byte) int {
	_ = to[32] // early bounds check to guarantee safety of writes below
	to[0] = 0x80 + 32
	copy(to[1:33], h[:32])
	return 33
}

func HashesLen(hashes []byte) int {
	hashesLen := len(hashes) / 32 * 33
	return ListPrefixLen(hashesLen) + hashesLen
}

func EncodeHashes(hashes []byte, encodeBuf []byte) int {
	pos := 0
	hashesLen := len(hashes) / 32 * 33
	pos += EncodeListPrefix(hashesLen, encodeBuf)
	for i := 0; i < len(hashes); i += 32 {
		pos += EncodeHash(hashes[i:], encodeBuf[pos:])
	}
	return pos
}

// EncodeAddress assumes that `to` buffer is at least 21 bytes long
func EncodeAddress(a, to []byte) int {
	_ = to[20]
	to[0] = 0x80 + 20
	copy(to[1:21], a[:20])
	return 21
}
