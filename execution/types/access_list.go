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
	"io"

	"github.com/erigontech/txcodec/common"
	"github.com/erigontech/txcodec/rlp"
)

// AccessTuple is the element type of an access list.
type AccessTuple struct {
	Address     common.Address `json:"address"`
	StorageKeys []common.Hash  `json:"storageKeys"`
}

// AccessList is an EIP-2930 access list.
type AccessList []AccessTuple

// StorageKeys returns the total number of storage keys in the access list.
func (al AccessList) StorageKeys() int {
	sum := 0
	for _, tuple := range al {
		sum += len(tuple.StorageKeys)
	}
	return sum
}

// Size is a heuristic for the in-memory footprint of the access list.
func (al AccessList) Size() int {
	const tupleSize = common.AddressLength + 24 // address + slice header
	size := cap(al) * tupleSize
	for _, tuple := range al {
		size += cap(tuple.StorageKeys) * common.HashLength
	}
	return size
}

// copy returns a deep copy. Empty lists come back as nil, the form decoding produces.
func (al AccessList) copy() AccessList {
	if len(al) == 0 {
		return nil
	}
	cpy := make(AccessList, len(al))
	for i, tuple := range al {
		cpy[i].Address = tuple.Address
		if len(tuple.StorageKeys) > 0 {
			cpy[i].StorageKeys = append(make([]common.Hash, 0, len(tuple.StorageKeys)), tuple.StorageKeys...)
		}
	}
	return cpy
}

// encodingSize is the length of the access list payload, without its own list header.
func (al AccessList) encodingSize() int {
	var accessListLen int
	for _, tuple := range al {
		tupleLen := 21 // For the address
		// size of StorageKeys
		// Each storage key takes 33 bytes
		storageLen := 33 * len(tuple.StorageKeys)
		tupleLen += rlp.ListPrefixLen(storageLen) + storageLen
		accessListLen += rlp.ListPrefixLen(tupleLen) + tupleLen
	}
	return accessListLen
}

// payloadSize is the full encoded length, list header included.
func (al AccessList) payloadSize() int {
	l := al.encodingSize()
	return rlp.ListPrefixLen(l) + l
}

func (al AccessList) encode(w io.Writer, b []byte) error {
	if err := rlp.EncodeStructSizePrefix(al.encodingSize(), w, b); err != nil {
		return err
	}
	for i := 0; i < len(al); i++ {
		tupleLen := 21
		// Each storage key takes 33 bytes
		storageLen := 33 * len(al[i].StorageKeys)
		tupleLen += rlp.ListPrefixLen(storageLen) + storageLen
		if err := rlp.EncodeStructSizePrefix(tupleLen, w, b); err != nil {
			return err
		}
		if err := rlp.EncodeOptionalAddress(&al[i].Address, w, b); err != nil {
			return err
		}
		if err := rlp.EncodeStructSizePrefix(storageLen, w, b); err != nil {
			return err
		}
		for idx := 0; idx < len(al[i].StorageKeys); idx++ {
			b[0] = 128 + 32
			if _, err := w.Write(b[:1]); err != nil {
				return err
			}
			if _, err := w.Write(al[i].StorageKeys[idx][:]); err != nil {
				return err
			}
		}
	}
	return nil
}

// decodeAccessList parses an access list starting at pos. Nested elements are parsed
// against a payload cut at the end of their enclosing list, so an element running
// past its parent fails with rlp.ErrInputTooShort.
func decodeAccessList(payload []byte, pos int) (AccessList, int, error) {
	dataPos, dataLen, err := rlp.List(payload, pos)
	if err != nil {
		return nil, 0, fmt.Errorf("open accessList: %w", err)
	}
	end := dataPos + dataLen
	payload = payload[:end]

	var al AccessList
	for pos = dataPos; pos < end; {
		tuplePos, tupleLen, err := rlp.List(payload, pos)
		if err != nil {
			return nil, 0, fmt.Errorf("open accessTuple %d: %w", len(al), err)
		}
		tupleEnd := tuplePos + tupleLen
		tuplePayload := payload[:tupleEnd]

		var tuple AccessTuple
		p, err := rlp.ParseAddress(tuplePayload, tuplePos, &tuple.Address)
		if err != nil {
			return nil, 0, fmt.Errorf("read Address: %w", err)
		}
		keysPos, keysLen, err := rlp.List(tuplePayload, p)
		if err != nil {
			return nil, 0, fmt.Errorf("open StorageKeys: %w", err)
		}
		keysEnd := keysPos + keysLen
		if keysEnd != tupleEnd {
			return nil, 0, fmt.Errorf("close AccessTuple: %w", rlp.ErrListSizeMismatch)
		}
		if keysLen > 0 {
			tuple.StorageKeys = make([]common.Hash, 0, keysLen/33)
		}
		for p = keysPos; p < keysEnd; {
			var key common.Hash
			if p, err = rlp.ParseHash(tuplePayload, p, key[:]); err != nil {
				return nil, 0, fmt.Errorf("read StorageKey: %w", err)
			}
			tuple.StorageKeys = append(tuple.StorageKeys, key)
		}
		al = append(al, tuple)
		pos = tupleEnd
	}
	return al, end, nil
}
