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
	"fmt"
	"io"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/erigontech/txcodec/common"
	"github.com/erigontech/txcodec/crypto"
	"github.com/erigontech/txcodec/rlp"
)

// TxSigner produces a signature in the [R || S || V] format over a 32 byte digest.
type TxSigner interface {
	Sign(hash common.Hash) ([]byte, error)
}

// SenderRecoverer recovers the signing address from a digest and a [R || S || V] signature.
type SenderRecoverer interface {
	Recover(hash common.Hash, sig []byte) (common.Address, error)
}

// KeySigner signs with a secp256k1 private key.
type KeySigner struct {
	key *secp256k1.PrivateKey
}

func NewKeySigner(key *secp256k1.PrivateKey) *KeySigner { return &KeySigner{key: key} }

func (s *KeySigner) Sign(hash common.Hash) ([]byte, error) { return crypto.Sign(hash[:], s.key) }

// Address of the signing key.
func (s *KeySigner) Address() common.Address { return crypto.PubkeyToAddress(s.key.PubKey()) }

// Secp256k1Recoverer recovers senders with secp256k1 public key recovery.
type Secp256k1Recoverer struct{}

func (Secp256k1Recoverer) Recover(hash common.Hash, sig []byte) (common.Address, error) {
	pub, err := crypto.SigToPub(hash[:], sig)
	if err != nil {
		return common.Address{}, err
	}
	return crypto.PubkeyToAddress(pub), nil
}

type validator interface {
	validate() error
}

// SigningPreimage returns the bytes the sender signs over (before hashing):
// type ‖ rlp(fields) for typed transactions, the EIP-155 or pre-EIP-155 list for legacy ones.
func SigningPreimage(tx TxData) []byte {
	var buf bytes.Buffer
	if err := encodeForSigning(tx, &buf); err != nil {
		panic(err) // bytes.Buffer never fails
	}
	return buf.Bytes()
}

// SigningHash is keccak256 of SigningPreimage.
func SigningHash(tx TxData) common.Hash {
	h := common.NewHasher()
	defer common.ReturnHasherToPool(h)
	_ = encodeForSigning(tx, h.Sha) // hash.Hash writes never fail
	var hash common.Hash
	h.Sha.Sum(hash[:0])
	return hash
}

func encodeForSigning(tx TxData, w io.Writer) error {
	b := newEncodingBuf()
	defer pooledBuf.Put(b)
	if ltx, ok := tx.(*LegacyTx); ok {
		return ltx.encodeForSigning(w, b[:])
	}
	b[0] = tx.Type()
	if _, err := w.Write(b[:1]); err != nil {
		return err
	}
	if err := rlp.EncodeStructSizePrefix(tx.FieldsSize(), w, b[:]); err != nil {
		return err
	}
	return tx.EncodeFields(w, b[:])
}

// EncodeWithSignature writes listHeader(fields + sig) ‖ fields ‖ v ‖ r ‖ s, without
// the type byte. The signature is first brought into the wire form of the variant.
func EncodeWithSignature(tx TxData, sig Signature, w io.Writer) error {
	wire := wireSignature(tx, &sig)
	b := newEncodingBuf()
	defer pooledBuf.Put(b)
	return encodeWithSignature(tx, &wire, w, b[:])
}

// wireSignature normalizes V: typed transactions carry the plain parity, legacy ones
// the V derived from parity and chain id.
func wireSignature(tx TxData, sig *Signature) Signature {
	parity := sig.YParity()
	if ltx, ok := tx.(*LegacyTx); ok {
		wire := *sig
		wire.V = legacyV(ltx.ChainID, parity)
		return wire
	}
	return sig.WithParity(parity)
}

// Seal combines tx with sig into an immutable SignedTx. tx is deep-copied, V is
// normalized to the wire form and the transaction hash is computed once.
func Seal(tx TxData, sig Signature) *SignedTx {
	cpy := tx.copy()
	wire := wireSignature(cpy, &sig)
	return &SignedTx{tx: cpy, sig: wire, hash: computeHash(cpy, &wire)}
}

// SignTx signs tx with signer and seals the result.
func SignTx(tx TxData, signer TxSigner) (*SignedTx, error) {
	if v, ok := tx.(validator); ok {
		if err := v.validate(); err != nil {
			return nil, err
		}
	}
	raw, err := signer.Sign(SigningHash(tx))
	if err != nil {
		return nil, fmt.Errorf("sign: %w", err)
	}
	sig, err := SignatureFromBytes(raw)
	if err != nil {
		return nil, err
	}
	return Seal(tx, sig), nil
}

// Sender returns the address derived from the signature. The result is cached,
// concurrent first calls may both run the recovery.
func (stx *SignedTx) Sender(recoverer SenderRecoverer) (common.Address, error) {
	if from := stx.from.Load(); from != nil {
		return *from, nil
	}
	if err := ValidateSignatureValues(&stx.sig); err != nil {
		return common.Address{}, err
	}
	addr, err := recoverer.Recover(stx.SigningHash(), stx.sig.Bytes())
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %w", ErrInvalidSig, err)
	}
	stx.from.Store(&addr)
	return addr, nil
}

// CachedSender returns the sender if it was already recovered.
func (stx *SignedTx) CachedSender() (common.Address, bool) {
	if from := stx.from.Load(); from != nil {
		return *from, true
	}
	return common.Address{}, false
}
