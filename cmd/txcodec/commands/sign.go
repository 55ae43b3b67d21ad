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

package commands

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/holiman/uint256"
	"github.com/spf13/cobra"

	"github.com/erigontech/txcodec/common"
	commonhex "github.com/erigontech/txcodec/common/hex"
	"github.com/erigontech/txcodec/crypto"
	"github.com/erigontech/txcodec/execution/types"
)

type signFlags struct {
	key      string
	keyFile  string
	chainID  uint64
	nonce    uint64
	gasPrice string
	gas      uint64
	to       string
	value    string
	data     string
}

func signCmd(a *app) *cobra.Command {
	var f signFlags
	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Build and sign an access list transaction, print its canonical encoding",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tx, err := f.accessListTx()
			if err != nil {
				return err
			}
			key, err := f.loadKey()
			if err != nil {
				return err
			}
			stx, err := a.codec.Sign(tx, key)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "0x%s\n", hex.EncodeToString(stx.Bytes()))
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&f.key, "key", "", "hex encoded secp256k1 private key")
	flags.StringVar(&f.keyFile, "keyfile", "", "file holding a hex encoded private key")
	flags.Uint64Var(&f.chainID, "chain-id", 1, "chain id")
	flags.Uint64Var(&f.nonce, "nonce", 0, "sender nonce")
	flags.StringVar(&f.gasPrice, "gas-price", "0", "gas price in wei, decimal or 0x-prefixed hex")
	flags.Uint64Var(&f.gas, "gas", 21000, "gas limit")
	flags.StringVar(&f.to, "to", "", "recipient address, empty for contract creation")
	flags.StringVar(&f.value, "value", "0", "value in wei, decimal or 0x-prefixed hex")
	flags.StringVar(&f.data, "data", "", "hex encoded input data")
	cmd.MarkFlagsOneRequired("key", "keyfile")
	cmd.MarkFlagsMutuallyExclusive("key", "keyfile")
	return cmd
}

func (f *signFlags) accessListTx() (*types.AccessListTx, error) {
	tx := &types.AccessListTx{
		CommonTx: types.CommonTx{Nonce: f.nonce, GasLimit: f.gas},
		ChainID:  f.chainID,
	}
	if f.to != "" {
		if !common.IsHexAddress(f.to) {
			return nil, fmt.Errorf("invalid recipient %q", f.to)
		}
		to := common.HexToAddress(f.to)
		tx.To = &to
	}
	price, err := parseUint256(f.gasPrice)
	if err != nil {
		return nil, fmt.Errorf("gas price: %w", err)
	}
	if err := tx.SetGasPrice(price); err != nil {
		return nil, err
	}
	value, err := parseUint256(f.value)
	if err != nil {
		return nil, fmt.Errorf("value: %w", err)
	}
	tx.Value = *value
	if f.data != "" {
		if tx.Data, err = commonhex.DecodeString(f.data); err != nil {
			return nil, fmt.Errorf("data: %w", err)
		}
	}
	return tx, nil
}

func (f *signFlags) loadKey() (*secp256k1.PrivateKey, error) {
	if f.keyFile != "" {
		return crypto.LoadECDSA(f.keyFile)
	}
	return crypto.HexToECDSA(strings.TrimPrefix(f.key, "0x"))
}

func parseUint256(s string) (*uint256.Int, error) {
	if commonhex.Has0xPrefix(s) {
		return uint256.FromHex(s)
	}
	return uint256.FromDecimal(s)
}
