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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/erigontech/txcodec/execution/types"
)

func hashCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "hash <hex|->",
		Short: "Print the transaction hash and the signing hash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readHexArg(cmd, args[0])
			if err != nil {
				return err
			}
			// hashing does not need a valid signature
			stx, err := types.UnmarshalTransactionFromBinary(raw)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "type:         %d\n", stx.Type())
			fmt.Fprintf(out, "hash:         %s\n", stx.Hash())
			fmt.Fprintf(out, "signing hash: %s\n", stx.SigningHash())
			return nil
		},
	}
}
