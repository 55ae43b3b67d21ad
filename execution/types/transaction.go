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
	"bytes"
	"errors"
	"io"
	"sync"
	"sync/atomic"

	"github.com/holiman/uint256"

	"github.com/erigontech/txcodec/common"
	"github.com/erigontech/txcodec/rlp"
)

// Transaction types.
const (
	LegacyTxType = iota
	AccessListTxType
	DynamicFeeTxType
)

var (
	ErrTxTypeNotSupported = errors.New("transaction type not supported")
	ErrTrailingBytes      = errors.New("trailing bytes after transaction")
	ErrInvalidParity      = errors.New("invalid signature parity")
	ErrInvalidSig         = errors.New("invalid transaction v, r, s values")
	ErrGasPriceOverflow   = errors.New("gas price exceeds 128 bits")
	ErrInvalidChainID     = errors.New("invalid chain id for signer")
)

// TxData is the unsigned payload of one transaction variant. The set of
// implementations is closed: LegacyTx, AccessListTx and DynamicFeeTx.
type TxData interface {
	Type() byte
	GetChainID() uint64
	GetNonce() uint64
	GetGasLimit() uint64
	// GetPrice is the gas price, or the fee cap for fee-market transactions.
	GetPrice() uint256.Int
	GetTipCap() uint256.Int
	GetTo() *common.Address
	GetValue() uint256.Int
	GetData() []byte
	GetAccessList() AccessList

	// Size is a heuristic for the in-memory footprint of the value.
	Size() int
	// FieldsSize is the summed encoded length of the unsigned fields, without a list header.
	FieldsSize() int
	// EncodeFields writes the unsigned fields in wire order, without a list header.
	EncodeFields(w io.Writer, b []byte) error

	copy() TxData
}

// CommonTx holds the fields shared by every transaction variant.
type CommonTx struct {
	Nonce    uint64
	GasLimit uint64
	To       *common.Address // nil means contract creation
	Value    uint256.Int
	Data     []byte
}

func (ct *CommonTx) GetNonce() uint64 { return ct.Nonce }
func (ct *CommonTx) GetGasLimit() uint64 { return ct.GasLimit }
func (ct *CommonTx) GetValue() uint256.Int { return ct.Value }
func (ct *CommonTx) GetData() []byte { return ct.Data }
func (ct *CommonTx) GetTo() *common.Address { return copyAddressPtr(ct.To) }

func (ct *CommonTx) copyCommon() CommonTx {
	return CommonTx{
		Nonce:    ct.Nonce,
		GasLimit: ct.GasLimit,
		To:       copyAddressPtr(ct.To),
		Value:    ct.Value,
		Data:     copyData(ct.Data),
	}
}

// copyData copies transaction input, returning nil for empty input as decoding does.
func copyData(data []byte) []byte {
	if len(data) == 0 {
		return nil
	}
	return common.CopyBytes(data)
}

// recipientSize is the in-memory footprint of the optional recipient.
func (ct *CommonTx) recipientSize() int {
	if ct.To == nil {
		return 8
	}
	return 8 + common.AddressLength
}

func copyAddressPtr(a *common.Address) *common.Address {
	if a == nil {
		return nil
	}
	cpy := *a
	return &cpy
}

type encodingBuf [33]byte

var pooledBuf = sync.Pool{
	New: func() any { return new(encodingBuf) },
}

func newEncodingBuf() *encodingBuf {
	b := pooledBuf.Get().(*encodingBuf)
	*b = encodingBuf{}
	return b
}

// SignedTx is a sealed transaction: a private copy of the unsigned payload, the
// signature in its wire form and the transaction hash computed once at sealing.
// A SignedTx is never modified after construction and may be shared between goroutines.
type SignedTx struct {
	tx   TxData
	sig  Signature
	hash common.Hash

	from atomic.Pointer[common.Address]
}

func (stx *SignedTx) Type() byte { return stx.tx.Type() }

// Tx returns a deep copy of the unsigned payload.
func (stx *SignedTx) Tx() TxData { return stx.tx.copy() }

func (stx *SignedTx) ChainID() uint64 { return stx.tx.GetChainID() }
func (stx *SignedTx) Nonce() uint64 { return stx.tx.GetNonce() }
func (stx *SignedTx) GasLimit() uint64 { return stx.tx.GetGasLimit() }
func (stx *SignedTx) To() *common.Address { return stx.tx.GetTo() }
func (stx *SignedTx) Value() uint256.Int { return stx.tx.GetValue() }
func (stx *SignedTx) Data() []byte { return common.CopyBytes(stx.tx.GetData()) }
func (stx *SignedTx) Signature() Signature { return stx.sig }
func (stx *SignedTx) AccessList() AccessList { return stx.tx.GetAccessList().copy() }

// YParity is the recovery parity of the signature.
func (stx *SignedTx) YParity() bool { return stx.sig.YParity() }

// Hash is the transaction hash: keccak256 of the network encoding without the outer string header.
func (stx *SignedTx) Hash() common.Hash { return stx.hash }

// SigningHash is the digest the sender signed over.
func (stx *SignedTx) SigningHash() common.Hash { return SigningHash(stx.tx) }

func (stx *SignedTx) payloadSize() int {
	return stx.tx.FieldsSize() + stx.sig.encodingSize()
}

// EncodingSize is the length of MarshalBinary output: type byte, list header and list payload.
func (stx *SignedTx) EncodingSize() int {
	payloadSize := stx.payloadSize()
	size := rlp.ListPrefixLen(payloadSize) + payloadSize
	if stx.tx.Type() != LegacyTxType {
		size++
	}
	return size
}

// EnvelopeEncodingSize is the length of EncodeRLP output. Typed transactions are
// additionally wrapped into an RLP string header.
func (stx *SignedTx) EnvelopeEncodingSize() int {
	size := stx.EncodingSize()
	if stx.tx.Type() == LegacyTxType {
		return size
	}
	return rlp.StringPrefixLen(size) + size
}

// MarshalBinary writes the canonical encoding: the RLP list for legacy
// transactions, type byte followed by the RLP list for EIP-2718 typed ones.
func (stx *SignedTx) MarshalBinary(w io.Writer) error {
	b := newEncodingBuf()
	defer pooledBuf.Put(b)
	return stx.marshalBinary(w, b[:])
}

func (stx *SignedTx) marshalBinary(w io.Writer, b []byte) error {
	if t := stx.tx.Type(); t != LegacyTxType {
		b[0] = t
		if _, err := w.Write(b[:1]); err != nil {
			return err
		}
	}
	return encodeWithSignature(stx.tx, &stx.sig, w, b)
}

// EncodeRLP writes the block body form: legacy transactions as a plain RLP list,
// typed ones as an RLP string wrapping MarshalBinary output.
func (stx *SignedTx) EncodeRLP(w io.Writer) error {
	b := newEncodingBuf()
	defer pooledBuf.Put(b)
	if stx.tx.Type() != LegacyTxType {
		if err := rlp.EncodeStringSizePrefix(stx.EncodingSize(), w, b[:]); err != nil {
			return err
		}
	}
	return stx.marshalBinary(w, b[:])
}

// Bytes returns MarshalBinary output.
func (stx *SignedTx) Bytes() []byte {
	var buf bytes.Buffer
	buf.Grow(stx.EncodingSize())
	if err := stx.MarshalBinary(&buf); err != nil {
		panic(err) // bytes.Buffer never fails
	}
	return buf.Bytes()
}

// encodeWithSignature writes listHeader(fields + sig) ‖ fields ‖ v ‖ r ‖ s.
// sig must already be in wire form.
func encodeWithSignature(tx TxData, sig *Signature, w io.Writer, b []byte) error {
	payloadSize := tx.FieldsSize() + sig.encodingSize()
	if err := rlp.EncodeStructSizePrefix(payloadSize, w, b); err != nil {
		return err
	}
	if err := tx.EncodeFields(w, b); err != nil {
		return err
	}
	return sig.encode(w, b)
}

func computeHash(tx TxData, sig *Signature) common.Hash {
	h := common.NewHasher()
	defer common.ReturnHasherToPool(h)

	b := newEncodingBuf()
	defer pooledBuf.Put(b)
	if t := tx.Type(); t != LegacyTxType {
		b[0] = t
		h.Sha.Write(b[:1])
	}
	_ = encodeWithSignature(tx, sig, h.Sha, b[:]) // hash.Hash writes never fail
	var hash common.Hash
	h.Sha.Sum(hash[:0])
	return hash
}
