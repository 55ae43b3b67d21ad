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

	"github.com/holiman/uint256"

	"github.com/erigontech/txcodec/crypto"
	"github.com/erigontech/txcodec/rlp"
)

// Signature holds the secp256k1 signature values. V is either a plain parity (0 or 1),
// a pre-EIP-155 value (27 or 28) or an EIP-155 value (35 + 2*chainID + parity).
type Signature struct {
	V, R, S uint256.Int
}

// SignatureFromBytes converts a signature in the [R || S || V] format.
func SignatureFromBytes(sig []byte) (Signature, error) {
	if len(sig) != crypto.SignatureLength {
		return Signature{}, fmt.Errorf("%w: wrong size for signature: got %d, want %d", ErrInvalidSig, len(sig), crypto.SignatureLength)
	}
	var s Signature
	s.R.SetBytes(sig[:32])
	s.S.SetBytes(sig[32:64])
	s.V.SetUint64(uint64(sig[64]))
	return s, nil
}

// YParity normalizes V to the recovery parity:
// 0..26 map to v%2, 27..34 to (v-27)%2 and everything from 35 on to (v-35)%2.
func (s *Signature) YParity() bool {
	odd := s.V[0]&1 == 1
	if s.V.IsUint64() && s.V.Uint64() < 27 {
		return odd
	}
	// both offsets are odd, so parity flips
	return !odd
}

// WithParity returns a copy whose V is the plain parity bit.
func (s *Signature) WithParity(parity bool) Signature {
	cpy := *s
	if parity {
		cpy.V.SetOne()
	} else {
		cpy.V.Clear()
	}
	return cpy
}

// Bytes returns the signature in the [R || S || V] format with V as parity bit.
func (s *Signature) Bytes() []byte {
	sig := make([]byte, crypto.SignatureLength)
	r, ss := s.R.Bytes32(), s.S.Bytes32()
	copy(sig[:32], r[:])
	copy(sig[32:64], ss[:])
	if s.YParity() {
		sig[64] = 1
	}
	return sig
}

// ValidateSignatureValues checks 0 < r, s < N and rejects high s values.
func ValidateSignatureValues(s *Signature) error {
	var v byte
	if s.YParity() {
		v = 1
	}
	if !crypto.TransactionSignatureIsValid(v, &s.R, &s.S, false) {
		return ErrInvalidSig
	}
	return nil
}

func (s *Signature) encodingSize() int {
	return rlp.U256Len(&s.V) + rlp.U256Len(&s.R) + rlp.U256Len(&s.S)
}

func (s *Signature) encode(w io.Writer, b []byte) error {
	if err := rlp.EncodeUint256(&s.V, w, b); err != nil {
		return err
	}
	if err := rlp.EncodeUint256(&s.R, w, b); err != nil {
		return err
	}
	return rlp.EncodeUint256(&s.S, w, b)
}

// decodeTypedSignature reads parity, r and s. Typed transactions only carry 0 or 1 as parity.
func decodeTypedSignature(payload []byte, pos int) (Signature, int, error) {
	var sig Signature
	pos, parity, err := rlp.U64(payload, pos)
	if err != nil {
		return sig, 0, fmt.Errorf("read V: %w", err)
	}
	if parity > 1 {
		return sig, 0, fmt.Errorf("%w: %d", ErrInvalidParity, parity)
	}
	sig.V.SetUint64(parity)
	if pos, err = rlp.U256(payload, pos, &sig.R); err != nil {
		return sig, 0, fmt.Errorf("read R: %w", err)
	}
	if pos, err = rlp.U256(payload, pos, &sig.S); err != nil {
		return sig, 0, fmt.Errorf("read S: %w", err)
	}
	return sig, pos, nil
}

// legacyV is the V carried by a legacy transaction: 35 + 2*chainID + parity when
// replay protected, 27 + parity otherwise.
func legacyV(chainID uint64, parity bool) uint256.Int {
	var v uint256.Int
	if chainID == 0 {
		v.SetUint64(27)
	} else {
		v.SetUint64(chainID)
		v.Lsh(&v, 1)
		v.AddUint64(&v, 35)
	}
	if parity {
		v.AddUint64(&v, 1)
	}
	return v
}

// deriveChainID splits a legacy wire V into chain id and parity.
func deriveChainID(v *uint256.Int) (chainID uint64, parity bool, err error) {
	if v.IsUint64() {
		switch vv := v.Uint64(); {
		case vv == 27 || vv == 28:
			return 0, vv == 28, nil
		case vv < 35:
			return 0, false, fmt.Errorf("%w: legacy v %d", ErrInvalidSig, vv)
		}
	}
	var id uint256.Int
	id.SubUint64(v, 35)
	parity = id[0]&1 == 1
	id.Rsh(&id, 1)
	if !id.IsUint64() {
		return 0, false, fmt.Errorf("%w: chain id in v %s overflows", ErrInvalidChainID, v.Hex())
	}
	// unprotected transactions use 27 and 28
	if id.IsZero() {
		return 0, false, fmt.Errorf("%w: zero chain id in v %d", ErrInvalidChainID, v.Uint64())
	}
	return id.Uint64(), parity, nil
}
