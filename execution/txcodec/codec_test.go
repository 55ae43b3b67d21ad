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

package txcodec

import (
	"context"
	"encoding/hex"
	"testing"

	"github.com/c2h5oh/datasize"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/erigontech/txcodec/common"
	"github.com/erigontech/txcodec/crypto"
	"github.com/erigontech/txcodec/execution/types"
	"github.com/erigontech/txcodec/rlp"
)

// canonical bytes of an access list call with an arbitrary signature
const callTx = "01f8610180010294000000000000000000000000000000000000000003820102c080a0840cfc572845f5786e702984c2a582528cad4b49b2a10b9db1be7fca90058565a025e7109ceb98168d95b09b18bbf6b685130e0562f233877d492b94eee0c5b6d1"

func newTestCodec(t *testing.T, mutate func(*Config)) *Codec {
	t.Helper()
	cfg := DefaultConfig
	cfg.DecodeWorkers = 4
	if mutate != nil {
		mutate(&cfg)
	}
	c, err := New(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	return c
}

func newKey(t *testing.T) *secp256k1.PrivateKey {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	return key
}

func accessListTx(chainID, nonce uint64) *types.AccessListTx {
	to := common.HexToAddress("0x095e7baea6a6c7c4c2dfeb977efac326af552d87")
	tx := &types.AccessListTx{
		CommonTx: types.CommonTx{Nonce: nonce, GasLimit: 21000, To: &to},
		ChainID:  chainID,
		AccessList: types.AccessList{{
			Address:     to,
			StorageKeys: []common.Hash{{0x01}},
		}},
	}
	tx.GasPrice.SetUint64(1_000_000_000)
	tx.Value.SetUint64(nonce + 1)
	return tx
}

func signedBatch(t *testing.T, c *Codec, key *secp256k1.PrivateKey, n int) [][]byte {
	t.Helper()
	raws := make([][]byte, n)
	for i := range raws {
		stx, err := c.Sign(accessListTx(1, uint64(i)), key)
		require.NoError(t, err)
		raws[i] = stx.Bytes()
	}
	return raws
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig
	cfg.DecodeWorkers = 0
	_, err := New(cfg, nil)
	require.Error(t, err)
}

func TestDecodeVector(t *testing.T) {
	c := newTestCodec(t, func(cfg *Config) { cfg.RecoverSenders = false })
	raw, err := hex.DecodeString(callTx)
	require.NoError(t, err)

	before := decodeOk.GetValue()
	stx, err := c.Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, byte(types.AccessListTxType), stx.Type())
	assert.Equal(t, common.HashData(raw), stx.Hash())
	assert.Equal(t, before+1, decodeOk.GetValue())
}

func TestDecodeRejects(t *testing.T) {
	raw, err := hex.DecodeString(callTx)
	require.NoError(t, err)

	small := newTestCodec(t, func(cfg *Config) { cfg.MaxTxSize = 64 * datasize.B })
	before := decodeTooLarge.GetValue()
	_, err = small.Decode(raw)
	require.ErrorIs(t, err, ErrTxTooLarge)
	assert.Equal(t, before+1, decodeTooLarge.GetValue())

	c := newTestCodec(t, func(cfg *Config) { cfg.RecoverSenders = false; cfg.ChainID = 5 })
	before = decodeWrongChain.GetValue()
	_, err = c.Decode(raw)
	require.ErrorIs(t, err, ErrWrongChainID)
	assert.Equal(t, before+1, decodeWrongChain.GetValue())

	before = decodeMalformed.GetValue()
	_, err = c.Decode(raw[:len(raw)-1])
	require.ErrorIs(t, err, rlp.ErrInputTooShort)
	_, err = c.Decode([]byte{0x05, 0xc0})
	require.ErrorIs(t, err, types.ErrTxTypeNotSupported)
	assert.Equal(t, before+2, decodeMalformed.GetValue())

	verifying := newTestCodec(t, nil)
	zeroSig := types.Seal(accessListTx(1, 0), types.Signature{})
	before = decodeInvalidSig.GetValue()
	_, err = verifying.Decode(zeroSig.Bytes())
	require.ErrorIs(t, err, types.ErrInvalidSig)
	assert.Equal(t, before+1, decodeInvalidSig.GetValue())
}

func TestSenderCache(t *testing.T) {
	c := newTestCodec(t, nil)
	signer := newTestCodec(t, nil)
	key := newKey(t)
	raws := signedBatch(t, signer, key, 1)

	misses, hits := senderCacheMiss.GetValue(), senderCacheHit.GetValue()
	stx, err := c.Decode(raws[0])
	require.NoError(t, err)
	assert.Equal(t, misses+1, senderCacheMiss.GetValue())
	assert.Equal(t, uint64(1), senderCacheSize.GetValueUint64())

	// a fresh decode of the same bytes is served from the cache
	again, err := types.UnmarshalTransactionFromBinary(raws[0])
	require.NoError(t, err)
	from, err := c.Sender(again)
	require.NoError(t, err)
	assert.Equal(t, crypto.PubkeyToAddress(key.PubKey()), from)
	assert.Equal(t, hits+1, senderCacheHit.GetValue())
	_, cached := again.CachedSender()
	assert.False(t, cached)

	from2, err := stx.Sender(types.Secp256k1Recoverer{})
	require.NoError(t, err)
	assert.Equal(t, from, from2)
}

func TestSignChecksChainID(t *testing.T) {
	c := newTestCodec(t, func(cfg *Config) { cfg.ChainID = 1 })
	key := newKey(t)
	_, err := c.Sign(accessListTx(2, 0), key)
	require.ErrorIs(t, err, ErrWrongChainID)

	stx, err := c.Sign(accessListTx(1, 0), key)
	require.NoError(t, err)
	// Sign primes the cache
	hits := senderCacheHit.GetValue()
	from, err := c.Sender(stx)
	require.NoError(t, err)
	assert.Equal(t, crypto.PubkeyToAddress(key.PubKey()), from)
	assert.Equal(t, hits+1, senderCacheHit.GetValue())
}

func TestDecodeBatch(t *testing.T) {
	c := newTestCodec(t, func(cfg *Config) { cfg.ChainID = 1 })
	key := newKey(t)
	raws := signedBatch(t, c, key, 32)

	txs, err := c.DecodeBatch(context.Background(), raws)
	require.NoError(t, err)
	require.Len(t, txs, len(raws))
	for i, stx := range txs {
		assert.Equal(t, uint64(i), stx.Nonce())
		assert.Equal(t, common.HashData(raws[i]), stx.Hash())
	}

	raws[7] = raws[7][:10]
	_, err = c.DecodeBatch(context.Background(), raws)
	require.ErrorContains(t, err, "transaction 7")
	require.ErrorIs(t, err, rlp.ErrInputTooShort)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.DecodeBatch(ctx, raws[:7])
	require.ErrorIs(t, err, context.Canceled)

	empty, err := c.DecodeBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestDecodePooledTransactions(t *testing.T) {
	c := newTestCodec(t, nil)
	key := newKey(t)
	raws := signedBatch(t, c, key, 5)
	packet := EncodePooledTransactions66(raws, 42, nil)

	requestID, txs, err := c.DecodePooledTransactions(context.Background(), packet)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), requestID)
	require.Len(t, txs, 5)
	for i := range txs {
		assert.Equal(t, raws[i], txs[i].Bytes())
	}

	zeroSig := types.Seal(accessListTx(1, 9), types.Signature{})
	packet = EncodePooledTransactions66([][]byte{raws[0], zeroSig.Bytes()}, 43, nil)
	_, _, err = c.DecodePooledTransactions(context.Background(), packet)
	require.ErrorIs(t, err, types.ErrInvalidSig)
	require.ErrorContains(t, err, "transaction 1")

	_, _, err = c.DecodePooledTransactions(context.Background(), packet[:len(packet)-1])
	require.Error(t, err)
}
