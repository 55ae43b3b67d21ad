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
	"io"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/erigontech/txcodec/common/hex"
	"github.com/erigontech/txcodec/execution/types"
)

func decodeCmd(a *app) *cobra.Command {
	var body bool
	cmd := &cobra.Command{
		Use:   "decode <hex|->",
		Short: "Decode a transaction and print it as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readHexArg(cmd, args[0])
			if err != nil {
				return err
			}
			if body {
				// block body form: legacy list or string wrapped envelope
				stx, pos, err := types.DecodeRLPTransaction(raw, 0)
				if err != nil {
					return err
				}
				if pos != len(raw) {
					return fmt.Errorf("%w: %d", types.ErrTrailingBytes, len(raw)-pos)
				}
				raw = stx.Bytes()
			}
			stx, err := a.codec.Decode(raw)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), stx)
		},
	}
	cmd.Flags().BoolVar(&body, "body", false, "input is in block body form (typed transactions wrapped into an RLP string)")
	return cmd
}

func writeJSON(w io.Writer, stx *types.SignedTx) error {
	stream := jsoniter.NewStream(jsoniter.ConfigDefault, w, 4096)
	stx.WriteJSON(stream)
	stream.WriteRaw("\n")
	if stream.Error != nil {
		return stream.Error
	}
	return stream.Flush()
}

// readHexArg decodes arg, reading it from stdin when it is "-".
func readHexArg(cmd *cobra.Command, arg string) ([]byte, error) {
	if arg == "-" {
		in, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, err
		}
		arg = string(in)
	}
	raw, err := hex.DecodeString(strings.TrimSpace(arg))
	if err != nil {
		return nil, fmt.Errorf("invalid hex input: %w", err)
	}
	return raw, nil
}
