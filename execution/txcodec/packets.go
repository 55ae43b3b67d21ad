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

package txcodec

import (
	"fmt"

	"github.com/erigontech/txcodec/common"
	"github.com/erigontech/txcodec/execution/types"
	"github.com/erigontech/txcodec/rlp"
)

// ParseHashesCount looks at the RLP length Prefix for list of 32-byte hashes
// and returns number of hashes in the list to expect
func ParseHashesCount(payload []byte, pos int) (count int, dataPos int, err error) {
	dataPos, dataLen, err := rlp.List(payload, pos)
	if err != nil {
		return 0, 0, fmt.Errorf("%s: hashes len: %w", rlp.ParseHashErrorPrefix, err)
	}
	if dataLen%33 != 0 {
		return 0, 0, fmt.Errorf("%s: hashes len must be multiple of 33", rlp.ParseHashErrorPrefix)
	}
	return dataLen / 33, dataPos, nil
}

// EncodeHashes produces RLP encoding of concatenated 32-byte hashes as an RLP list,
// reusing encodeBuf when it has enough capacity.
func EncodeHashes(hashes []byte, encodeBuf []byte) []byte {
	encodeBuf = common.EnsureEnoughSize(encodeBuf, rlp.HashesLen(hashes))
	rlp.EncodeHashes(hashes, encodeBuf)
	return encodeBuf
}

// ParseHash extracts the next hash from the RLP encoding (payload) from a given position.
// It appends the hash to the given slice, reusing the space if there is enough capacity
// The first returned value is the slice where hash is appended to.
// The second returned value is the new position in the RLP payload after the extraction
// of the hash.
func ParseHash(payload []byte, pos int, hashbuf []byte) ([]byte, int, error) {
	hashbuf = common.EnsureEnoughSize(hashbuf, common.HashLength)
	pos, err := rlp.ParseHash(payload, pos, hashbuf)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: hash len: %w", rlp.ParseHashErrorPrefix, err)
	}
	return hashbuf, pos, nil
}

// EncodeGetPooledTransactions66 produces encoding of GetPooledTransactions66 packet
func EncodeGetPooledTransactions66(hashes []byte, requestID uint64, encodeBuf []byte) []byte {
	pos := 0
	dataLen := rlp.HashesLen(hashes) + rlp.U64Len(requestID)
	encodeBuf = common.EnsureEnoughSize(encodeBuf, rlp.ListPrefixLen(dataLen)+dataLen)
	// Length Prefix for the entire structure
	pos += rlp.EncodeListPrefix(dataLen, encodeBuf[pos:])
	pos += rlp.EncodeU64(requestID, encodeBuf[pos:])
	rlp.EncodeHashes(hashes, encodeBuf[pos:])
	return encodeBuf
}

func ParseGetPooledTransactions66(payload []byte, pos int, hashbuf []byte) (requestID uint64, hashes []byte, newPos int, err error) {
	pos, dataLen, err := rlp.List(payload, pos)
	if err != nil {
		return 0, hashes, 0, err
	}
	end := pos + dataLen
	payload = payload[:end]

	pos, requestID, err = rlp.U64(payload, pos)
	if err != nil {
		return 0, hashes, 0, err
	}
	var hashesCount int
	hashesCount, pos, err = ParseHashesCount(payload, pos)
	if err != nil {
		return 0, hashes, 0, err
	}
	hashes = common.EnsureEnoughSize(hashbuf, common.HashLength*hashesCount)

	for i := 0; i < hashesCount; i++ {
		pos, err = rlp.ParseHash(payload, pos, hashes[i*common.HashLength:])
		if err != nil {
			return 0, hashes, 0, err
		}
	}
	if pos != end {
		return 0, hashes, 0, fmt.Errorf("%w: get pooled transactions packet", rlp.ErrListSizeMismatch)
	}
	return requestID, hashes, pos, nil
}

// == Pooled transactions ==

// txsBodyLen is the size of txsRlp in block body form: legacy lists as they are,
// typed envelopes wrapped into RLP strings.
func txsBodyLen(txsRlp [][]byte) int {
	n := 0
	for i := range txsRlp {
		if isLegacy(txsRlp[i]) {
			n += len(txsRlp[i])
		} else {
			n += rlp.StringLen(txsRlp[i])
		}
	}
	return n
}

func encodeTxsBody(txsRlp [][]byte, to []byte) int {
	pos := 0
	for i := range txsRlp {
		if isLegacy(txsRlp[i]) {
			pos += copy(to[pos:], txsRlp[i])
		} else {
			pos += rlp.EncodeString(txsRlp[i], to[pos:])
		}
	}
	return pos
}

func isLegacy(txRlp []byte) bool { return len(txRlp) > 0 && txRlp[0] >= 0xc0 }

// EncodePooledTransactions66 encodes [requestID, [tx...]] from canonical transaction bytes
// as produced by MarshalBinary.
func EncodePooledTransactions66(txsRlp [][]byte, requestID uint64, encodeBuf []byte) []byte {
	pos := 0
	txsRlpLen := txsBodyLen(txsRlp)
	dataLen := rlp.U64Len(requestID) + rlp.ListPrefixLen(txsRlpLen) + txsRlpLen

	encodeBuf = common.EnsureEnoughSize(encodeBuf, rlp.ListPrefixLen(dataLen)+dataLen)

	// Length Prefix for the entire structure
	pos += rlp.EncodeListPrefix(dataLen, encodeBuf[pos:])
	pos += rlp.EncodeU64(requestID, encodeBuf[pos:])
	pos += rlp.EncodeListPrefix(txsRlpLen, encodeBuf[pos:])
	encodeTxsBody(txsRlp, encodeBuf[pos:])
	return encodeBuf
}

// EncodeTransactions encodes the transaction list of a block body.
func EncodeTransactions(txsRlp [][]byte, encodeBuf []byte) []byte {
	dataLen := txsBodyLen(txsRlp)
	encodeBuf = common.EnsureEnoughSize(encodeBuf, rlp.ListPrefixLen(dataLen)+dataLen)
	pos := rlp.EncodeListPrefix(dataLen, encodeBuf)
	encodeTxsBody(txsRlp, encodeBuf[pos:])
	return encodeBuf
}

// ParseTransactions decodes a transaction list in block body form.
func ParseTransactions(payload []byte, pos int) (txs []*types.SignedTx, newPos int, err error) {
	dataPos, dataLen, err := rlp.List(payload, pos)
	if err != nil {
		return nil, 0, err
	}
	return parseTxList(payload[:dataPos+dataLen], dataPos)
}

// ParsePooledTransactions66 decodes a [requestID, [tx...]] packet.
func ParsePooledTransactions66(payload []byte, pos int) (requestID uint64, txs []*types.SignedTx, newPos int, err error) {
	p, dataLen, err := rlp.List(payload, pos)
	if err != nil {
		return requestID, nil, 0, err
	}
	end := p + dataLen
	p, requestID, err = rlp.U64(payload[:end], p)
	if err != nil {
		return requestID, nil, 0, err
	}
	txs, p, err = ParseTransactions(payload[:end], p)
	if err != nil {
		return requestID, nil, 0, err
	}
	if p != end {
		return requestID, nil, 0, fmt.Errorf("%w: pooled transactions packet", rlp.ErrListSizeMismatch)
	}
	return requestID, txs, p, nil
}

func parseTxList(payload []byte, pos int) ([]*types.SignedTx, int, error) {
	var txs []*types.SignedTx
	for i := 0; pos < len(payload); i++ {
		tx, next, err := types.DecodeRLPTransaction(payload, pos)
		if err != nil {
			return nil, 0, fmt.Errorf("transaction %d: %w", i, err)
		}
		txs = append(txs, tx)
		pos = next
	}
	return txs, pos, nil
}
