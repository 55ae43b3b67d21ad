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
	"strconv"

	jsoniter "github.com/json-iterator/go"
)

// WriteJSON writes the transaction as a JSON object in the usual RPC field naming.
func (stx *SignedTx) WriteJSON(stream *jsoniter.Stream) {
	tx := stx.tx
	stream.WriteObjectStart()
	writeString(stream, "type", hexUint64(uint64(tx.Type())))
	stream.WriteMore()
	writeString(stream, "hash", stx.hash.Hex())
	if tx.Type() != LegacyTxType || tx.GetChainID() != 0 {
		stream.WriteMore()
		writeString(stream, "chainId", hexUint64(tx.GetChainID()))
	}
	stream.WriteMore()
	writeString(stream, "nonce", hexUint64(tx.GetNonce()))
	switch t := tx.(type) {
	case *DynamicFeeTx:
		stream.WriteMore()
		writeString(stream, "maxPriorityFeePerGas", t.TipCap.Hex())
		stream.WriteMore()
		writeString(stream, "maxFeePerGas", t.FeeCap.Hex())
	default:
		price := tx.GetPrice()
		stream.WriteMore()
		writeString(stream, "gasPrice", price.Hex())
	}
	stream.WriteMore()
	writeString(stream, "gas", hexUint64(tx.GetGasLimit()))
	stream.WriteMore()
	stream.WriteObjectField("to")
	if to := tx.GetTo(); to != nil {
		stream.WriteString(to.Hex())
	} else {
		stream.WriteNil()
	}
	value := tx.GetValue()
	stream.WriteMore()
	writeString(stream, "value", value.Hex())
	stream.WriteMore()
	writeString(stream, "input", "0x"+hex.EncodeToString(tx.GetData()))
	if tx.Type() != LegacyTxType {
		stream.WriteMore()
		writeAccessList(stream, tx.GetAccessList())
	}
	stream.WriteMore()
	writeString(stream, "v", stx.sig.V.Hex())
	stream.WriteMore()
	writeString(stream, "r", stx.sig.R.Hex())
	stream.WriteMore()
	writeString(stream, "s", stx.sig.S.Hex())
	if tx.Type() != LegacyTxType {
		stream.WriteMore()
		writeString(stream, "yParity", hexUint64(stx.sig.V.Uint64()))
	}
	if from, ok := stx.CachedSender(); ok {
		stream.WriteMore()
		writeString(stream, "from", from.Hex())
	}
	stream.WriteObjectEnd()
}

// MarshalJSON implements json.Marshaler.
func (stx *SignedTx) MarshalJSON() ([]byte, error) {
	stream := jsoniter.ConfigDefault.BorrowStream(nil)
	defer jsoniter.ConfigDefault.ReturnStream(stream)
	stx.WriteJSON(stream)
	if stream.Error != nil {
		return nil, stream.Error
	}
	return append([]byte(nil), stream.Buffer()...), nil
}

func writeAccessList(stream *jsoniter.Stream, al AccessList) {
	stream.WriteObjectField("accessList")
	stream.WriteArrayStart()
	for i, tuple := range al {
		if i > 0 {
			stream.WriteMore()
		}
		stream.WriteObjectStart()
		writeString(stream, "address", tuple.Address.Hex())
		stream.WriteMore()
		stream.WriteObjectField("storageKeys")
		stream.WriteArrayStart()
		for j, key := range tuple.StorageKeys {
			if j > 0 {
				stream.WriteMore()
			}
			stream.WriteString(key.Hex())
		}
		stream.WriteArrayEnd()
		stream.WriteObjectEnd()
	}
	stream.WriteArrayEnd()
}

func writeString(stream *jsoniter.Stream, field, value string) {
	stream.WriteObjectField(field)
	stream.WriteString(value)
}

func hexUint64(v uint64) string { return "0x" + strconv.FormatUint(v, 16) }
