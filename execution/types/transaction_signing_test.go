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
	"encoding/hex"
	"errors"
	"sync"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erigontech/txcodec/common"
	"github.com/erigontech/txcodec/crypto"
)

// fixedSigner returns the test signature regardless of the digest.
type fixedSigner struct{}

func (fixedSigner) Sign(common.Hash) ([]byte, error) {
	sig := testSignature(0)
	return sig.Bytes(), nil
}

type failingSigner struct{}

func (failingSigner) Sign(common.Hash) ([]byte, error) { return nil, errors.New("hsm offline") }

type countingRecoverer struct {
	mu    sync.Mutex
	calls int
}

func (r *countingRecoverer) Recover(hash common.Hash, sig []byte) (common.Address, error) {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
	return Secp256k1Recoverer{}.Recover(hash, sig)
}

// Example from EIP-155.
const (
	eip155Key         = "4646464646464646464646464646464646464646464646464646464646464646"
	eip155Sender      = "0x9d8A62f656a8d1615C1294fd71e9CFb3E4855A4F"
	eip155SigningData = "ec098504a817c800825208943535353535353535353535353535353535353535880de0b6b3a764000080018080"
	eip155SigningHash = "0xdaf5a779ae972f972197303d7b574746c7ef83eadac0f2791ad23db92e4c8e53"
	eip155SignedTx    = "f86c098504a817c800825208943535353535353535353535353535353535353535880de0b6b3a76400008025a028ef61340bd939bc2195fe537567866003e1a15d3c71ff63e1590620aa636276a067cbe9d8997f761aecb703304b3800ccf555c9f3dc64214b297fb1966a3b6d83"
)

func eip155Tx() *LegacyTx {
	to := common.HexToAddress("0x3535353535353535353535353535353535353535")
	tx := &LegacyTx{
		CommonTx: CommonTx{
			Nonce:    9,
			GasLimit: 21000,
			To:       &to,
		},
		ChainID: 1,
	}
	tx.GasPrice.SetUint64(20_000_000_000)
	tx.Value.SetUint64(1_000_000_000_000_000_000)
	return tx
}

func TestLegacyEIP155Vector(t *testing.T) {
	tx := eip155Tx()
	assert.Equal(t, eip155SigningData, hex.EncodeToString(SigningPreimage(tx)))
	assert.Equal(t, eip155SigningHash, SigningHash(tx).Hex())

	key, err := crypto.HexToECDSA(eip155Key)
	require.NoError(t, err)
	stx, err := SignTx(tx, NewKeySigner(key))
	require.NoError(t, err)
	assert.Equal(t, eip155SignedTx, hex.EncodeToString(stx.Bytes()))
	sig := stx.Signature()
	assert.Equal(t, uint64(37), sig.V.Uint64())

	raw, _ := hex.DecodeString(eip155SignedTx)
	decoded, err := UnmarshalTransactionFromBinary(raw)
	require.NoError(t, err)
	assert.Equal(t, byte(LegacyTxType), decoded.Type())
	assert.Equal(t, uint64(1), decoded.ChainID())
	assert.Equal(t, stx.Hash(), decoded.Hash())
	assert.Equal(t, common.HashData(raw), decoded.Hash())
	assert.Equal(t, len(raw), decoded.EncodingSize())
	assert.Equal(t, len(raw), decoded.EnvelopeEncodingSize())

	sender, err := decoded.Sender(Secp256k1Recoverer{})
	require.NoError(t, err)
	assert.Equal(t, eip155Sender, sender.Hex())

	// block body form of a legacy transaction is the list itself
	decoded2, pos, err := DecodeRLPTransaction(raw, 0)
	require.NoError(t, err)
	assert.Equal(t, len(raw), pos)
	assert.Equal(t, decoded.Hash(), decoded2.Hash())
}

func TestLegacyUnprotected(t *testing.T) {
	tx := eip155Tx()
	tx.ChainID = 0
	// pre-EIP-155 signing payload has no chain id suffix
	assert.Equal(t, "e9098504a817c800825208943535353535353535353535353535353535353535880de0b6b3a764000080", hex.EncodeToString(SigningPreimage(tx)))

	key, err := crypto.HexToECDSA(eip155Key)
	require.NoError(t, err)
	stx, err := SignTx(tx, NewKeySigner(key))
	require.NoError(t, err)
	sig := stx.Signature()
	v := sig.V.Uint64()
	assert.True(t, v == 27 || v == 28, "v=%d", v)

	decoded, err := UnmarshalTransactionFromBinary(stx.Bytes())
	require.NoError(t, err)
	assert.Equal(t, uint64(0), decoded.ChainID())
	sender, err := decoded.Sender(Secp256k1Recoverer{})
	require.NoError(t, err)
	assert.Equal(t, eip155Sender, sender.Hex())
}

func TestLegacyV(t *testing.T) {
	tests := []struct {
		chainID uint64
		parity  bool
		v       string
	}{
		{0, false, "0x1b"},
		{0, true, "0x1c"},
		{1, false, "0x25"},
		{1, true, "0x26"},
		{^uint64(0), true, "0x20000000000000022"},
	}
	for _, tt := range tests {
		v := legacyV(tt.chainID, tt.parity)
		assert.Equal(t, tt.v, v.Hex())

		chainID, parity, err := deriveChainID(&v)
		require.NoError(t, err)
		assert.Equal(t, tt.chainID, chainID)
		assert.Equal(t, tt.parity, parity)
	}

	for _, bad := range []uint64{0, 1, 26, 29, 34} {
		_, _, err := deriveChainID(uint256.NewInt(bad))
		require.ErrorIs(t, err, ErrInvalidSig, "v=%d", bad)
	}
	huge := new(uint256.Int).Lsh(uint256.NewInt(1), 70)
	_, _, err := deriveChainID(huge)
	require.ErrorIs(t, err, ErrInvalidChainID)
	_, _, err = deriveChainID(uint256.NewInt(36))
	require.ErrorIs(t, err, ErrInvalidChainID)
}

func TestYParity(t *testing.T) {
	var sig Signature
	for v, want := range map[uint64]bool{0: false, 1: true, 2: false, 25: true, 27: false, 28: true, 29: false, 35: false, 36: true, 37: false, 38: true} {
		sig.V.SetUint64(v)
		assert.Equal(t, want, sig.YParity(), "v=%d", v)
	}
	sig.V.Lsh(uint256.NewInt(1), 100) // even, above 35
	assert.True(t, sig.YParity())
}

func TestSignAndRecover(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	signer := NewKeySigner(key)

	txs := []TxData{
		testAccessListTx(&common.Address{0x42}),
		testAccessListTx(nil),
		eip155Tx(),
		&DynamicFeeTx{CommonTx: CommonTx{Nonce: 7, GasLimit: 21000}, ChainID: 5},
	}
	for _, tx := range txs {
		stx, err := SignTx(tx, signer)
		require.NoError(t, err)
		require.NoError(t, ValidateSignatureValues(&stx.sig))

		_, cached := stx.CachedSender()
		assert.False(t, cached)

		r := &countingRecoverer{}
		sender, err := stx.Sender(r)
		require.NoError(t, err)
		assert.Equal(t, signer.Address(), sender)
		// second call is served from the cache
		sender, err = stx.Sender(r)
		require.NoError(t, err)
		assert.Equal(t, signer.Address(), sender)
		assert.Equal(t, 1, r.calls)

		// a round trip through the wire recovers the same sender
		decoded, err := UnmarshalTransactionFromBinary(stx.Bytes())
		require.NoError(t, err)
		from, err := decoded.Sender(Secp256k1Recoverer{})
		require.NoError(t, err)
		assert.Equal(t, sender, from)
	}
}

func TestSignTxErrors(t *testing.T) {
	tx := testAccessListTx(nil)
	_, err := SignTx(tx, failingSigner{})
	require.ErrorContains(t, err, "hsm offline")

	tx.ChainID = 0
	_, err = SignTx(tx, fixedSigner{})
	require.ErrorIs(t, err, ErrInvalidChainID)

	_, err = SignTx(&DynamicFeeTx{}, fixedSigner{})
	require.ErrorIs(t, err, ErrInvalidChainID)

	_, err = SignatureFromBytes(make([]byte, 64))
	require.ErrorIs(t, err, ErrInvalidSig)
}

func TestSenderRejectsInvalidSignature(t *testing.T) {
	tx := testAccessListTx(nil)

	zero := Seal(tx, Signature{})
	_, err := zero.Sender(Secp256k1Recoverer{})
	require.ErrorIs(t, err, ErrInvalidSig)

	// high s
	sig := testSignature(0)
	sig.S.Sub(uint256.MustFromHex("0xfffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141"), &sig.S)
	_, err = Seal(tx, sig).Sender(Secp256k1Recoverer{})
	require.ErrorIs(t, err, ErrInvalidSig)
}

func TestContractAddress(t *testing.T) {
	sender := common.HexToAddress("0x6ac7ea33f8831ea9dcc53393aaa88b25a785dbf0")
	assert.Equal(t, common.HexToAddress("0xcd234a471b72ba2f1ccf0a70fcaba648a5eecd8d"), CreateAddress(sender, 0))
	assert.Equal(t, common.HexToAddress("0x343c43a37d37dff08ae8c4a11544c718abb4fcf8"), CreateAddress(sender, 1))

	// EIP-1014 example 0
	assert.Equal(t, common.HexToAddress("0x4D1A2e2bB4F88F0250f26Ffff098B0b30B26BF38"),
		CreateAddress2(common.Address{}, [32]byte{}, crypto.Keccak256([]byte{0x00})))

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	signer := NewKeySigner(key)
	create := testAccessListTx(nil)
	create.Nonce = 5
	stx, err := SignTx(create, signer)
	require.NoError(t, err)
	addr, err := stx.ContractAddress(Secp256k1Recoverer{})
	require.NoError(t, err)
	assert.Equal(t, CreateAddress(signer.Address(), 5), addr)

	call, err := SignTx(testAccessListTx(&common.Address{}), signer)
	require.NoError(t, err)
	_, err = call.ContractAddress(Secp256k1Recoverer{})
	require.ErrorIs(t, err, ErrNotContractCreation)
}
