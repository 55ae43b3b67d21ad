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

// maxGasPriceBytes bounds the gas price of access list transactions to 128 bits.
const maxGasPriceBytes = 16

// AccessListTx is the data of EIP-2930 access list transactions.
type AccessListTx struct {
	CommonTx
	ChainID    uint64
	GasPrice   uint256.Int // must fit in 128 bits, see SetGasPrice
	AccessList AccessList  // EIP-2930 access list
}

// SetGasPrice sets the gas price. Values wider than 128 bits are rejected
// with ErrGasPriceOverflow and leave the transaction unchanged.
func (tx *AccessListTx) SetGasPrice(price *uint256.Int) error {
	if price.BitLen() > 8*maxGasPriceBytes {
		return fmt.Errorf("%w: %s", ErrGasPriceOverflow, price.Hex())
	}
	tx.GasPrice.Set(price)
	return nil
}

func (tx *AccessListTx) Type() byte { return AccessListTxType }
func (tx *AccessListTx) GetChainID() uint64 { return tx.ChainID }
func (tx *AccessListTx) GetPrice() uint256.Int { return tx.GasPrice }
func (tx *AccessListTx) GetTipCap() uint256.Int { return tx.GasPrice }
func (tx *AccessListTx) GetAccessList() AccessList { return tx.AccessList }

func (tx *AccessListTx) copy() TxData {
	return &AccessListTx{
		CommonTx:   tx.copyCommon(),
		ChainID:    tx.ChainID,
		GasPrice:   tx.GasPrice,
		AccessList: tx.AccessList.copy(),
	}
}

func (tx *AccessListTx) validate() error {
	if tx.ChainID == 0 {
		return fmt.Errorf("%w: access list transaction without chain id", ErrInvalidChainID)
	}
	if tx.GasPrice.BitLen() > 8*maxGasPriceBytes {
		return fmt.Errorf("%w: %s", ErrGasPriceOverflow, tx.GasPrice.Hex())
	}
	return nil
}

// Size: chain id, nonce, 128-bit gas price, gas limit, recipient, value, access list and input.
func (tx *AccessListTx) Size() int {
	return 8 + 8 + maxGasPriceBytes + 8 + tx.recipientSize() + 32 + tx.AccessList.Size() + len(tx.Data)
}

func (tx *AccessListTx) FieldsSize() int {
	size := rlp.U64Len(tx.ChainID)
	size += rlp.U64Len(tx.Nonce)
	size += rlp.U256Len(&tx.GasPrice)
	size += rlp.U64Len(tx.GasLimit)
	size += rlp.OptionalAddressLen(tx.To)
	size += rlp.U256Len(&tx.Value)
	size += rlp.StringLen(tx.Data)
	size += tx.AccessList.payloadSize()
	return size
}

func (tx *AccessListTx) EncodeFields(w io.Writer, b []byte) error {
	if err := rlp.EncodeInt(tx.ChainID, w, b); err != nil {
		return err
	}
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
	if err := rlp.EncodeStringToWriter(tx.Data, w, b); err != nil {
		return err
	}
	return tx.AccessList.encode(w, b)
}

// decodeAccessListTx parses the RLP list of an access list transaction, the type byte
// already consumed. The returned position is the end of the list.
func decodeAccessListTx(payload []byte, pos int) (TxData, Signature, int, error) {
	var sig Signature
	dataPos, dataLen, err := rlp.List(payload, pos)
	if err != nil {
		return nil, sig, 0, err
	}
	end := dataPos + dataLen
	payload = payload[:end]

	tx := &AccessListTx{}
	if pos, tx.ChainID, err = rlp.U64(payload, dataPos); err != nil {
		return nil, sig, 0, fmt.Errorf("read ChainID: %w", err)
	}
	if pos, tx.Nonce, err = rlp.U64(payload, pos); err != nil {
		return nil, sig, 0, fmt.Errorf("read Nonce: %w", err)
	}
	if pos, err = rlp.U256Bounded(payload, pos, &tx.GasPrice, maxGasPriceBytes); err != nil {
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
	if tx.AccessList, pos, err = decodeAccessList(payload, pos); err != nil {
		return nil, sig, 0, fmt.Errorf("read AccessList: %w", err)
	}
	if sig, pos, err = decodeTypedSignature(payload, pos); err != nil {
		return nil, sig, 0, err
	}
	if pos != end {
		return nil, sig, 0, fmt.Errorf("close AccessListTx: %w", rlp.ErrListSizeMismatch)
	}
	return tx, sig, end, nil
}
