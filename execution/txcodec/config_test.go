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
	"os"
	"path/filepath"
	"testing"

	"github.com/c2h5oh/datasize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	require.NoError(t, DefaultConfig.Validate())
	assert.Equal(t, 128*datasize.KB, DefaultConfig.MaxTxSize)
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig
	cfg.DecodeWorkers = 0
	require.Error(t, cfg.Validate())

	cfg = DefaultConfig
	cfg.SenderCacheSize = -1
	require.Error(t, cfg.Validate())

	cfg = DefaultConfig
	cfg.MaxTxSize = 0
	require.Error(t, cfg.Validate())
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "txcodec.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
chain-id = 5
max-tx-size = "64KB"
decode-workers = 3
recover-senders = false
`), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), cfg.ChainID)
	assert.Equal(t, 64*datasize.KB, cfg.MaxTxSize)
	assert.Equal(t, 3, cfg.DecodeWorkers)
	assert.False(t, cfg.RecoverSenders)
	// not in the file
	assert.Equal(t, DefaultConfig.SenderCacheSize, cfg.SenderCacheSize)
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadConfig(filepath.Join(dir, "missing.toml"))
	require.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("max-tx-size = \"lots\"\n"), 0o600))
	_, err = LoadConfig(bad)
	require.Error(t, err)

	invalid := filepath.Join(dir, "invalid.toml")
	require.NoError(t, os.WriteFile(invalid, []byte("decode-workers = 0\n"), 0o600))
	_, err = LoadConfig(invalid)
	require.Error(t, err)
}

func TestConfigTOMLRoundTrip(t *testing.T) {
	cfg := DefaultConfig
	cfg.ChainID = 1
	cfg.MaxTxSize = 2 * datasize.MB
	data, err := cfg.MarshalTOML()
	require.NoError(t, err)
	assert.Contains(t, string(data), "2MB")

	path := filepath.Join(t.TempDir(), "out.toml")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
