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

// DynamicFeeTx is the data of EIP-1559 fee market transactions.
type DynamicFeeTx struct {
	CommonTx
	ChainID    uint64
	TipCap     uint256.Int // max priority fee per gas
	FeeCap     uint256.Int // max fee per gas
	AccessList AccessList
}

func (tx *DynamicFeeTx) Type() byte { return DynamicFeeTxType }
func (tx *DynamicFeeTx) GetChainID() uint64 { return tx.ChainID }
func (tx *DynamicFeeTx) GetPrice() uint256.Int { return tx.FeeCap }
func (tx *DynamicFeeTx) GetTipCap() uint256.Int { return tx.TipCap }
func (tx *DynamicFeeTx) GetAccessList() AccessList { return tx.AccessList }

func (tx *DynamicFeeTx) copy() TxData {
	return &DynamicFeeTx{
		CommonTx:   tx.copyCommon(),
		ChainID:    tx.ChainID,
		TipCap:     tx.TipCap,
		FeeCap:     tx.FeeCap,
		AccessList: tx.AccessList.copy(),
	}
}

func (tx *DynamicFeeTx) validate() error {
	if tx.ChainID == 0 {
		return fmt.Errorf("%w: fee market transaction without chain id", ErrInvalidChainID)
	}
	return nil
}

func (tx *DynamicFeeTx) Size() int {
	return 8 + 8 + 32 + 32 + 8 + tx.recipientSize() + 32 + tx.AccessList.Size() + len(tx.Data)
}

func (tx *DynamicFeeTx) FieldsSize() int {
	size := rlp.U64Len(tx.ChainID)
	size += rlp.U64Len(tx.Nonce)
	size += rlp.U256Len(&tx.TipCap)
	size += rlp.U256Len(&tx.FeeCap)
	size += rlp.U64Len(tx.GasLimit)
	size += rlp.OptionalAddressLen(tx.To)
	size += rlp.U256Len(&tx.Value)
	size += rlp.StringLen(tx.Data)
	size += tx.AccessList.payloadSize()
	return size
}

func (tx *DynamicFeeTx) EncodeFields(w io.Writer, b []byte) error {
	if err := rlp.EncodeInt(tx.ChainID, w, b); err != nil {
		return err
	}
	if err := rlp.EncodeInt(tx.Nonce, w, b); err != nil {
		return err
	}
	if err := rlp.EncodeUint256(&tx.TipCap, w, b); err != nil {
		return err
	}
	if err := rlp.EncodeUint256(&tx.FeeCap, w, b); err != nil {
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
	if err := rlp.EncodeStringToWriter(tx.Data, w, b); err != nil {
		return err
	}
	return tx.AccessList.encode(w, b)
}

func decodeDynamicFeeTx(payload []byte, pos int) (TxData, Signature, int, error) {
	var sig Signature
	dataPos, dataLen, err := rlp.List(payload, pos)
	if err != nil {
		return nil, sig, 0, err
	}
	end := dataPos + dataLen
	payload = payload[:end]

	tx := &DynamicFeeTx{}
	if pos, tx.ChainID, err = rlp.U64(payload, dataPos); err != nil {
		return nil, sig, 0, fmt.Errorf("read ChainID: %w", err)
	}
	if pos, tx.Nonce, err = rlp.U64(payload, pos); err != nil {
		return nil, sig, 0, fmt.Errorf("read Nonce: %w", err)
	}
	if pos, err = rlp.U256(payload, pos, &tx.TipCap); err != nil {
		return nil, sig, 0, fmt.Errorf("read MaxPriorityFeePerGas: %w", err)
	}
	if pos, err = rlp.U256(payload, pos, &tx.FeeCap); err != nil {
		return nil, sig, 0, fmt.Errorf("read MaxFeePerGas: %w", err)
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
	if tx.AccessList, pos, err = decodeAccessList(payload, pos); err != nil {
		return nil, sig, 0, fmt.Errorf("read AccessList: %w", err)
	}
	if sig, pos, err = decodeTypedSignature(payload, pos); err != nil {
		return nil, sig, 0, err
	}
	if pos != end {
		return nil, sig, 0, fmt.Errorf("close DynamicFeeTx: %w", rlp.ErrListSizeMismatch)
	}
	return tx, sig, end, nil
}
