// Copyright 2014 The go-ethereum Authors
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
	"errors"

	"github.com/erigontech/txcodec/common"
	"github.com/erigontech/txcodec/crypto"
	"github.com/erigontech/txcodec/rlp"
)

var ErrNotContractCreation = errors.New("transaction is not a contract creation")

// CreateAddress derives the address of a contract created by account a at the given nonce:
// the last 20 bytes of keccak256(rlp([a, nonce])).
func CreateAddress(a common.Address, nonce uint64) common.Address {
	listLen := 21 + rlp.U64Len(nonce)
	data := make([]byte, rlp.ListPrefixLen(listLen)+listLen)
	pos := rlp.EncodeListPrefix(listLen, data)
	pos += rlp.EncodeAddress(a[:], data[pos:])
	rlp.EncodeU64(nonce, data[pos:])
	return common.BytesToAddress(crypto.Keccak256(data)[12:])
}

// CreateAddress2 derives the EIP-1014 address from the creator, a salt and the init code hash.
func CreateAddress2(b common.Address, salt [32]byte, inithash []byte) common.Address {
	return common.BytesToAddress(crypto.Keccak256([]byte{0xff}, b.Bytes(), salt[:], inithash)[12:])
}

// ContractAddress returns the address of the contract a creation transaction deploys.
func (stx *SignedTx) ContractAddress(recoverer SenderRecoverer) (common.Address, error) {
	if stx.tx.GetTo() != nil {
		return common.Address{}, ErrNotContractCreation
	}
	sender, err := stx.Sender(recoverer)
	if err != nil {
		return common.Address{}, err
	}
	return CreateAddress(sender, stx.tx.GetNonce()), nil
}
