// Copyright 2020 The go-ethereum Authors
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

package types

import (
	"fmt"
	"io"

	"github.com/holiman/uint256"

	"github.com/erigontech/txcodec/rlp"
)

// LegacyTx is the transaction data of the original Ethereum transactions.
// ChainID is not a wire field: it is carried in the signature V (EIP-155) and
// zero means the transaction is not replay protected.
type LegacyTx struct {
	CommonTx
	GasPrice uint256.Int
	ChainID  uint64
}

func (tx *LegacyTx) Type() byte { return LegacyTxType }
func (tx *LegacyTx) GetChainID() uint64 { return tx.ChainID }
func (tx *LegacyTx) GetPrice() uint256.Int { return tx.GasPrice }
func (tx *LegacyTx) GetTipCap() uint256.Int { return tx.GasPrice }
func (tx *LegacyTx) GetAccessList() AccessList { return nil }

// Protected reports whether the transaction is bound to a chain id.
func (tx *LegacyTx) Protected() bool { return tx.ChainID != 0 }

func (tx *LegacyTx) copy() TxData {
	return &LegacyTx{
		CommonTx: tx.copyCommon(),
		GasPrice: tx.GasPrice,
		ChainID:  tx.ChainID,
	}
}

func (tx *LegacyTx) Size() int {
	return 8 + 32 + 8 + tx.recipientSize() + 32 + len(tx.Data)
}

func (tx *LegacyTx) FieldsSize() int {
	size := rlp.U64Len(tx.Nonce)
	size += rlp.U256Len(&tx.GasPrice)
	size += rlp.U64Len(tx.GasLimit)
	size += rlp.OptionalAddressLen(tx.To)
	size += rlp.U256Len(&tx.Value)
	size += rlp.StringLen(tx.Data)
	return size
}

func (tx *LegacyTx) EncodeFields(w io.Writer, b []byte) error {
	if err := rlp.EncodeInt(tx.Nonce, w, b); err != nil {
		return err
	}
	if err := rlp.EncodeUint256(&tx.GasPrice, w, b); err != nil {
		return err
	}
	if err := rlp.EncodeInt(tx.GasLimit, w, b); err != nil {
		return err
	}
	if err := rlp.EncodeOptionalAddress(tx.To, w, b); err != nil {
		return err
	}
	if err := rlp.EncodeUint256(&tx.Value, w, b); err != nil {
		return err
	}
	return rlp.EncodeStringToWriter(tx.Data, w, b)
}

// eip155Size is the length of the chain id, 0, 0 suffix of the EIP-155 signing payload.
func (tx *LegacyTx) eip155Size() int {
	if !tx.Protected() {
		return 0
	}
	return rlp.U64Len(tx.ChainID) + 2
}

// encodeForSigning writes rlp([fields..., chainID, 0, 0]), or rlp([fields...]) when
// the transaction is not replay protected.
func (tx *LegacyTx) encodeForSigning(w io.Writer, b []byte) error {
	if err := rlp.EncodeStructSizePrefix(tx.FieldsSize()+tx.eip155Size(), w, b); err != nil {
		return err
	}
	if err := tx.EncodeFields(w, b); err != nil {
		return err
	}
	if !tx.Protected() {
		return nil
	}
	if err := rlp.EncodeInt(tx.ChainID, w, b); err != nil {
		return err
	}
	b[0], b[1] = 0x80, 0x80
	_, err := w.Write(b[:2])
	return err
}

func decodeLegacyTx(payload []byte, pos int) (TxData, Signature, int, error) {
	var sig Signature
	dataPos, dataLen, err := rlp.List(payload, pos)
	if err != nil {
		return nil, sig, 0, err
	}
	end := dataPos + dataLen
	payload = payload[:end]

	tx := &LegacyTx{}
	if pos, tx.Nonce, err = rlp.U64(payload, dataPos); err != nil {
		return nil, sig, 0, fmt.Errorf("read Nonce: %w", err)
	}
	if pos, err = rlp.U256(payload, pos, &tx.GasPrice); err != nil {
		return nil, sig, 0, fmt.Errorf("read GasPrice: %w", err)
	}
	if pos, tx.GasLimit, err = rlp.U64(payload, pos); err != nil {
		return nil, sig, 0, fmt.Errorf("read GasLimit: %w", err)
	}
	if tx.To, pos, err = rlp.ParseOptionalAddress(payload, pos); err != nil {
		return nil, sig, 0, fmt.Errorf("read To: %w", err)
	}
	if pos, err = rlp.U256(payload, pos, &tx.Value); err != nil {
		return nil, sig, 0, fmt.Errorf("read Value: %w", err)
	}
	var data []byte
	if data, pos, err = rlp.ParseString(payload, pos); err != nil {
		return nil, sig, 0, fmt.Errorf("read Data: %w", err)
	}
	tx.Data = copyData(data)
	if pos, err = rlp.U256(payload, pos, &sig.V); err != nil {
		return nil, sig, 0, fmt.Errorf("read V: %w", err)
	}
	if tx.ChainID, _, err = deriveChainID(&sig.V); err != nil {
		return nil, sig, 0, err
	}
	if pos, err = rlp.U256(payload, pos, &sig.R); err != nil {
		return nil, sig, 0, fmt.Errorf("read R: %w", err)
	}
	if pos, err = rlp.U256(payload, pos, &sig.S); err != nil {
		return nil, sig, 0, fmt.Errorf("read S: %w", err)
	}
	if pos != end {
		return nil, sig, 0, fmt.Errorf("close LegacyTx: %w", rlp.ErrListSizeMismatch)
	}
	return tx, sig, end, nil
}
