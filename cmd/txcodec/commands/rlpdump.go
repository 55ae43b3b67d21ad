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

	"github.com/spf13/cobra"

	"github.com/erigontech/txcodec/rlp"
)

func rlpdumpCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rlpdump <hex|->",
		Short: "Print the structure of RLP encoded data",
		Long:  "Print the structure of RLP encoded data. A leading EIP-2718 type byte is shown separately.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readHexArg(cmd, args[0])
			if err != nil {
				return err
			}
			return dumpRLP(cmd.OutOrStdout(), raw)
		},
	}
}

// dumpRLP writes every top level item of payload, one element per line.
func dumpRLP(w io.Writer, payload []byte) error {
	pos := 0
	if len(payload) > 0 && payload[0] < 0x80 && len(payload) > 1 && payload[1] >= 0xc0 {
		fmt.Fprintf(w, "type 0x%02x\n", payload[0])
		pos = 1
	}
	for pos < len(payload) {
		next, err := dumpItem(w, payload, pos, 0)
		if err != nil {
			return fmt.Errorf("at offset %d: %w", pos, err)
		}
		pos = next
	}
	return nil
}

func dumpItem(w io.Writer, payload []byte, pos, depth int) (int, error) {
	dataPos, dataLen, isList, err := rlp.Prefix(payload, pos)
	if err != nil {
		return 0, err
	}
	indent := strings.Repeat("  ", depth)
	end := dataPos + dataLen
	if !isList {
		fmt.Fprintf(w, "%s0x%x\n", indent, payload[dataPos:end])
		return end, nil
	}
	fmt.Fprintf(w, "%s[\n", indent)
	list := payload[:end]
	for p := dataPos; p < end; {
		if p, err = dumpItem(w, list, p, depth+1); err != nil {
			return 0, err
		}
	}
	fmt.Fprintf(w, "%s]\n", indent)
	return end, nil
}
