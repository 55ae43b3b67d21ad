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

package common

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddressChecksum(t *testing.T) {
	for _, s := range []string{
		"0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
		"0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359",
		"0xdbF03B407c01E7cD3CBea99509d93f8DDDC8C6FB",
		"0xD1220A0cf47c7B9Be7A2E6BA89F429762e7b9aDb",
	} {
		addr := HexToAddress(s)
		assert.Equal(t, s, addr.Hex())
		assert.True(t, IsHexAddress(s))
	}
}

func TestIsHexAddress(t *testing.T) {
	tests := []struct {
		str string
		exp bool
	}{
		{"0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed", true},
		{"5aaeb6053f3e94c9b9a09f33669435e7ef1beaed", true},
		{"0X5aaeb6053f3e94c9b9a09f33669435e7ef1beaed", true},
		{"0xXaaeb6053f3e94c9b9a09f33669435e7ef1beaed", false},
		{"0x5aaeb6053f3e94c9b9a09f33669435e7ef1beae", false},
		{"0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed00", false},
	}
	for _, test := range tests {
		assert.Equal(t, test.exp, IsHexAddress(test.str), test.str)
	}
}

func TestHashData(t *testing.T) {
	h := HashData([]byte("abc"))
	assert.Equal(t, "0x4e03657aea45a94fc7d47ba826c8d667c0d1e6e33a64a036ec44f58fa12d6c45", h.Hex())
	// split input hashes the same as the concatenation
	assert.Equal(t, h, HashData([]byte("a"), []byte("bc")))
	assert.Equal(t, "0xc5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470", HashData().Hex())
}

func TestHashJSON(t *testing.T) {
	h := HexToHash("0x01")
	enc, err := json.Marshal(h)
	require.NoError(t, err)
	assert.Equal(t, "\"0x0000000000000000000000000000000000000000000000000000000000000001\"", string(enc))

	var back Hash
	require.NoError(t, json.Unmarshal(enc, &back))
	assert.Equal(t, h, back)

	var addr Address
	require.Error(t, json.Unmarshal([]byte("\"0x0102\""), &addr))
	require.Error(t, json.Unmarshal([]byte("\"5aaeb6053f3e94c9b9a09f33669435e7ef1beaed\""), &addr))
	require.NoError(t, json.Unmarshal([]byte("\"0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed\""), &addr))
	assert.Equal(t, "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", addr.Hex())
}

func TestBytesToHashCrops(t *testing.T) {
	b := make([]byte, 40)
	b[39] = 7
	b[0] = 9
	h := BytesToHash(b)
	assert.Equal(t, byte(7), h[31])
	assert.Equal(t, byte(0), h[0])
	assert.Equal(t, 3, BitLenToByteLen(17))
}
