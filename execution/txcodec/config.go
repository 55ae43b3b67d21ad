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
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/c2h5oh/datasize"
	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	// ChainID rejects transactions for other chains when non-zero.
	ChainID uint64 `toml:"chain-id"`
	// MaxTxSize bounds the canonical encoding of a single transaction.
	MaxTxSize datasize.ByteSize `toml:"max-tx-size"`
	// DecodeWorkers bounds the goroutines of DecodeBatch.
	DecodeWorkers   int  `toml:"decode-workers"`
	SenderCacheSize int  `toml:"sender-cache-size"`
	RecoverSenders  bool `toml:"recover-senders"`
}

var DefaultConfig = Config{
	MaxTxSize:       128 * datasize.KB,
	DecodeWorkers:   runtime.NumCPU(),
	SenderCacheSize: 4096,
	RecoverSenders:  true,
}

func (cfg Config) Validate() error {
	if cfg.MaxTxSize == 0 {
		return errors.New("max-tx-size must be positive")
	}
	if cfg.DecodeWorkers <= 0 {
		return fmt.Errorf("decode-workers must be positive, got %d", cfg.DecodeWorkers)
	}
	if cfg.SenderCacheSize <= 0 {
		return fmt.Errorf("sender-cache-size must be positive, got %d", cfg.SenderCacheSize)
	}
	return nil
}

// LoadConfig reads a TOML file on top of DefaultConfig.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// MarshalTOML renders cfg the way LoadConfig reads it.
func (cfg Config) MarshalTOML() ([]byte, error) {
	return toml.Marshal(cfg)
}
