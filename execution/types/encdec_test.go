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
	"math/rand"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	fuzz "github.com/google/gofuzz"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/erigontech/txcodec/common"
)

const RUNS = 100

type TRand struct {
	rnd *rand.Rand
}

func NewTRand() *TRand {
	seed := time.Now().UnixNano()
	src := rand.NewSource(seed)
	return &TRand{rnd: rand.New(src)}
}

func (tr *TRand) RandIntInRange(min, max int) int {
	return tr.rnd.Intn(max-min) + min
}

func (tr *TRand) RandBytes(size int) []byte {
	arr := make([]byte, size)
	tr.rnd.Read(arr)
	return arr
}

func (tr *TRand) RandAddress() common.Address {
	return common.Address(tr.RandBytes(20))
}

func (tr *TRand) RandHash() common.Hash {
	return common.Hash(tr.RandBytes(32))
}

// RandUint256 returns a value of up to maxWords 64-bit words, sometimes zero.
func (tr *TRand) RandUint256(maxWords int) uint256.Int {
	var x uint256.Int
	n := tr.RandIntInRange(0, maxWords+1)
	for i := 0; i < n; i++ {
		x[i] = tr.rnd.Uint64()
	}
	return x
}

func (tr *TRand) RandAccessList(size int) AccessList {
	al := make(AccessList, size)
	for i := range al {
		keys := make([]common.Hash, tr.RandIntInRange(0, 5))
		for j := range keys {
			keys[j] = tr.RandHash()
		}
		al[i] = AccessTuple{Address: tr.RandAddress(), StorageKeys: keys}
	}
	return al
}

func (tr *TRand) RandCommonTx() CommonTx {
	ct := CommonTx{
		Nonce:    tr.rnd.Uint64(),
		GasLimit: tr.rnd.Uint64(),
		Value:    tr.RandUint256(4),
		Data:     tr.RandBytes(tr.RandIntInRange(0, 1024)),
	}
	if tr.rnd.Intn(4) > 0 {
		to := tr.RandAddress()
		ct.To = &to
	}
	return ct
}

func (tr *TRand) RandTransaction() TxData {
	switch tr.RandIntInRange(0, 3) {
	case LegacyTxType:
		return &LegacyTx{
			CommonTx: tr.RandCommonTx(),
			GasPrice: tr.RandUint256(4),
			ChainID:  uint64(tr.RandIntInRange(0, 3)) * tr.rnd.Uint64(),
		}
	case AccessListTxType:
		return &AccessListTx{
			CommonTx:   tr.RandCommonTx(),
			ChainID:    tr.rnd.Uint64(),
			GasPrice:   tr.RandUint256(2),
			AccessList: tr.RandAccessList(tr.RandIntInRange(0, 5)),
		}
	default:
		return &DynamicFeeTx{
			CommonTx:   tr.RandCommonTx(),
			ChainID:    tr.rnd.Uint64(),
			TipCap:     tr.RandUint256(4),
			FeeCap:     tr.RandUint256(4),
			AccessList: tr.RandAccessList(tr.RandIntInRange(0, 5)),
		}
	}
}

func (tr *TRand) RandSignature() Signature {
	var sig Signature
	sig.V.SetUint64(tr.rnd.Uint64())
	sig.R = tr.RandUint256(4)
	sig.S = tr.RandUint256(4)
	return sig
}

func checkRoundTrip(t *testing.T, stx *SignedTx) {
	t.Helper()
	enc := stx.Bytes()
	require.Equal(t, stx.EncodingSize(), len(enc))

	decoded, err := UnmarshalTransactionFromBinary(enc)
	require.NoError(t, err)
	require.Equal(t, stx.Hash(), decoded.Hash())
	require.Equal(t, common.HashData(enc), decoded.Hash())
	require.Equal(t, stx.Signature(), decoded.Signature())
	if diff := cmp.Diff(stx.Tx(), decoded.Tx()); diff != "" {
		t.Fatalf("decoded transaction differs (-want +got):\n%s", diff)
	}
	require.Equal(t, enc, decoded.Bytes())

	var body bytes.Buffer
	require.NoError(t, stx.EncodeRLP(&body))
	require.Equal(t, stx.EnvelopeEncodingSize(), body.Len())
	fromBody, end, err := DecodeRLPTransaction(body.Bytes(), 0)
	require.NoError(t, err)
	require.Equal(t, body.Len(), end)
	require.Equal(t, stx.Hash(), fromBody.Hash())
}

func TestRandomTransactionRoundTrip(t *testing.T) {
	tr := NewTRand()
	for i := 0; i < RUNS; i++ {
		checkRoundTrip(t, Seal(tr.RandTransaction(), tr.RandSignature()))
	}
}

func TestFuzzedAccessListRoundTrip(t *testing.T) {
	f := fuzz.New().NilChance(0.2).NumElements(0, 4)
	for i := 0; i < RUNS; i++ {
		var (
			ct  CommonTx
			al  AccessList
			sig Signature
		)
		f.Fuzz(&ct)
		f.Fuzz(&al)
		f.Fuzz(&sig.R)
		f.Fuzz(&sig.S)
		tx := &AccessListTx{CommonTx: ct, AccessList: al}
		f.Fuzz(&tx.ChainID)
		f.Fuzz(&tx.GasPrice[0])
		f.Fuzz(&tx.GasPrice[1])
		checkRoundTrip(t, Seal(tx, sig))
	}
}

func TestMultipleBodyTransactions(t *testing.T) {
	tr := NewTRand()
	var (
		body bytes.Buffer
		want []common.Hash
	)
	for i := 0; i < 10; i++ {
		stx := Seal(tr.RandTransaction(), tr.RandSignature())
		require.NoError(t, stx.EncodeRLP(&body))
		want = append(want, stx.Hash())
	}
	payload := body.Bytes()
	var got []common.Hash
	for pos := 0; pos < len(payload); {
		stx, next, err := DecodeRLPTransaction(payload, pos)
		require.NoError(t, err)
		got = append(got, stx.Hash())
		pos = next
	}
	require.Equal(t, want, got)
}

func FuzzUnmarshalTransaction(f *testing.F) {
	f.Add([]byte{})
	f.Add([]byte{0x01, 0xc0})
	f.Add([]byte{0x02, 0xc3, 0x01, 0x02, 0x03})
	f.Add(Seal(testAccessListTx(&common.Address{}), testSignature(0)).Bytes())
	f.Add(Seal(testAccessListTx(nil), testSignature(1)).Bytes())
	f.Add(Seal(eip155Tx(), testSignature(1)).Bytes())
	f.Add(Seal(&DynamicFeeTx{ChainID: 1, AccessList: AccessList{{StorageKeys: []common.Hash{{}}}}}, testSignature(0)).Bytes())
	f.Fuzz(func(t *testing.T, in []byte) {
		stx, err := UnmarshalTransactionFromBinary(in)
		if err != nil {
			return
		}
		// anything accepted is canonical
		require.Equal(t, in, stx.Bytes())
		require.Equal(t, common.HashData(in), stx.Hash())
		require.Equal(t, len(in), stx.EncodingSize())
	})
}
