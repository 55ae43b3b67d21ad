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

package types

import (
	"fmt"

	"github.com/erigontech/txcodec/common"
	"github.com/erigontech/txcodec/rlp"
)

// decodeFunc parses the RLP list of one variant starting at pos and returns the
// position right after it.
type decodeFunc func(payload []byte, pos int) (TxData, Signature, int, error)

// typedDecoders is the set of EIP-2718 variants, keyed by type byte.
var typedDecoders = map[byte]decodeFunc{
	AccessListTxType: decodeAccessListTx,
	DynamicFeeTxType: decodeDynamicFeeTx,
}

// IsTypeSupported reports whether t is a registered EIP-2718 transaction type.
func IsTypeSupported(t byte) bool {
	_, ok := typedDecoders[t]
	return ok
}

// UnmarshalTransactionFromBinary decodes the canonical encoding produced by
// MarshalBinary. Every byte of data must be consumed.
func UnmarshalTransactionFromBinary(data []byte) (*SignedTx, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty transaction bytes", rlp.ErrInputTooShort)
	}
	var (
		decode = decodeLegacyTx
		pos    int
	)
	// a legacy transaction starts with a list header
	if data[0] < 0xc0 {
		var ok bool
		if decode, ok = typedDecoders[data[0]]; !ok {
			return nil, fmt.Errorf("%w: %d", ErrTxTypeNotSupported, data[0])
		}
		pos = 1
	}
	tx, sig, end, err := decode(data, pos)
	if err != nil {
		return nil, err
	}
	if end != len(data) {
		return nil, fmt.Errorf("%w: %d", ErrTrailingBytes, len(data)-end)
	}
	return newDecodedTx(tx, sig, data), nil
}

// DecodeRLPTransaction decodes a transaction in block body form at pos: either a
// legacy RLP list or an RLP string wrapping a typed envelope. It returns the
// position right after the transaction.
func DecodeRLPTransaction(payload []byte, pos int) (*SignedTx, int, error) {
	dataPos, dataLen, isList, err := rlp.Prefix(payload, pos)
	if err != nil {
		return nil, 0, err
	}
	if isList {
		tx, sig, end, err := decodeLegacyTx(payload, pos)
		if err != nil {
			return nil, 0, err
		}
		return newDecodedTx(tx, sig, payload[pos:end]), end, nil
	}
	envelope := payload[dataPos : dataPos+dataLen]
	if len(envelope) > 0 && envelope[0] >= 0xc0 {
		return nil, 0, fmt.Errorf("%w: legacy transaction wrapped into a string", rlp.ErrUnexpectedList)
	}
	stx, err := UnmarshalTransactionFromBinary(envelope)
	if err != nil {
		return nil, 0, err
	}
	return stx, dataPos + dataLen, nil
}

// newDecodedTx seals a freshly decoded transaction. raw is its canonical encoding,
// which the decoders guarantee to be identical to the re-encoded value.
func newDecodedTx(tx TxData, sig Signature, raw []byte) *SignedTx {
	return &SignedTx{tx: tx, sig: sig, hash: common.HashData(raw)}
}
