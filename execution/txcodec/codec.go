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
	"errors"
	"fmt"
	"time"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/erigontech/txcodec/common"
	"github.com/erigontech/txcodec/execution/types"
	"github.com/erigontech/txcodec/metrics"
)

var (
	ErrTxTooLarge   = errors.New("transaction too large")
	ErrWrongChainID = errors.New("wrong chain id")
)

var (
	decodeOk         = metrics.GetOrCreateCounter(`txcodec_decode{result="ok"}`)
	decodeTooLarge   = metrics.GetOrCreateCounter(`txcodec_decode{result="too_large"}`)
	decodeMalformed  = metrics.GetOrCreateCounter(`txcodec_decode{result="malformed"}`)
	decodeWrongChain = metrics.GetOrCreateCounter(`txcodec_decode{result="wrong_chain"}`)
	decodeInvalidSig = metrics.GetOrCreateCounter(`txcodec_decode{result="invalid_sig"}`)
	senderCacheHit   = metrics.GetOrCreateCounter(`txcodec_sender_cache{result="hit"}`)
	senderCacheMiss  = metrics.GetOrCreateCounter(`txcodec_sender_cache{result="miss"}`)
	senderCacheSize  = metrics.GetOrCreateGauge("txcodec_sender_cache_size")
	batchDuration    = metrics.GetOrCreateHistogram("txcodec_decode_batch_seconds")
)

// Codec decodes and signs transactions for one chain. Safe for concurrent use.
type Codec struct {
	cfg       Config
	logger    *zap.Logger
	recoverer types.SenderRecoverer
	senders   *lru.Cache[common.Hash, common.Address]
}

func New(cfg Config, logger *zap.Logger) (*Codec, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	senders, err := lru.New[common.Hash, common.Address](cfg.SenderCacheSize)
	if err != nil {
		return nil, err
	}
	return &Codec{
		cfg:       cfg,
		logger:    logger,
		recoverer: types.Secp256k1Recoverer{},
		senders:   senders,
	}, nil
}

func (c *Codec) Config() Config { return c.cfg }

// Decode parses the canonical encoding of one transaction and checks it against
// the codec's chain id. With RecoverSenders the signature is verified too.
func (c *Codec) Decode(raw []byte) (*types.SignedTx, error) {
	if uint64(len(raw)) > c.cfg.MaxTxSize.Bytes() {
		decodeTooLarge.Inc()
		c.logger.Debug("rejected transaction", zap.Int("size", len(raw)), zap.Error(ErrTxTooLarge))
		return nil, fmt.Errorf("%w: %d bytes, limit %s", ErrTxTooLarge, len(raw), c.cfg.MaxTxSize)
	}
	stx, err := types.UnmarshalTransactionFromBinary(raw)
	if err != nil {
		decodeMalformed.Inc()
		c.logger.Debug("malformed transaction", zap.Int("size", len(raw)), zap.Error(err))
		return nil, err
	}
	if err := c.check(stx); err != nil {
		return nil, err
	}
	decodeOk.Inc()
	return stx, nil
}

// check applies the chain id and signature rules to a decoded transaction.
func (c *Codec) check(stx *types.SignedTx) error {
	// unprotected legacy transactions carry no chain id
	if c.cfg.ChainID != 0 && stx.ChainID() != 0 && stx.ChainID() != c.cfg.ChainID {
		decodeWrongChain.Inc()
		c.logger.Debug("transaction for another chain", zap.Stringer("hash", stx.Hash()), zap.Uint64("chainId", stx.ChainID()))
		return fmt.Errorf("%w: got %d, want %d", ErrWrongChainID, stx.ChainID(), c.cfg.ChainID)
	}
	if c.cfg.RecoverSenders {
		if _, err := c.Sender(stx); err != nil {
			decodeInvalidSig.Inc()
			c.logger.Debug("invalid signature", zap.Stringer("hash", stx.Hash()), zap.Error(err))
			return err
		}
	}
	return nil
}

// DecodeBatch decodes independent transactions on up to DecodeWorkers goroutines.
// The first failure cancels the rest.
func (c *Codec) DecodeBatch(ctx context.Context, raws [][]byte) ([]*types.SignedTx, error) {
	defer batchDuration.UpdateDuration(time.Now())
	txs := make([]*types.SignedTx, len(raws))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.DecodeWorkers)
	for i, raw := range raws {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			stx, err := c.Decode(raw)
			if err != nil {
				return fmt.Errorf("transaction %d: %w", i, err)
			}
			txs[i] = stx
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return txs, nil
}

// DecodePooledTransactions parses a PooledTransactions66 packet and checks every
// transaction in it.
func (c *Codec) DecodePooledTransactions(ctx context.Context, payload []byte) (uint64, []*types.SignedTx, error) {
	requestID, txs, _, err := ParsePooledTransactions66(payload, 0)
	if err != nil {
		decodeMalformed.Inc()
		return 0, nil, err
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.DecodeWorkers)
	for i, stx := range txs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if size := stx.EncodingSize(); uint64(size) > c.cfg.MaxTxSize.Bytes() {
				decodeTooLarge.Inc()
				return fmt.Errorf("transaction %d: %w: %d bytes", i, ErrTxTooLarge, size)
			}
			if err := c.check(stx); err != nil {
				return fmt.Errorf("transaction %d: %w", i, err)
			}
			decodeOk.Inc()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return requestID, nil, err
	}
	c.logger.Debug("decoded pooled transactions", zap.Uint64("requestId", requestID), zap.Int("count", len(txs)))
	return requestID, txs, nil
}

// Sender recovers the sender of stx through the codec-wide cache keyed by tx hash.
func (c *Codec) Sender(stx *types.SignedTx) (common.Address, error) {
	if from, ok := c.senders.Get(stx.Hash()); ok {
		senderCacheHit.Inc()
		return from, nil
	}
	senderCacheMiss.Inc()
	from, err := stx.Sender(c.recoverer)
	if err != nil {
		return common.Address{}, err
	}
	c.senders.Add(stx.Hash(), from)
	senderCacheSize.SetInt(c.senders.Len())
	return from, nil
}

// Sign signs tx with key. Transactions for another chain than the configured one are refused.
func (c *Codec) Sign(tx types.TxData, key *secp256k1.PrivateKey) (*types.SignedTx, error) {
	if c.cfg.ChainID != 0 && tx.GetChainID() != c.cfg.ChainID {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrWrongChainID, tx.GetChainID(), c.cfg.ChainID)
	}
	signer := types.NewKeySigner(key)
	stx, err := types.SignTx(tx, signer)
	if err != nil {
		return nil, err
	}
	c.senders.Add(stx.Hash(), signer.Address())
	senderCacheSize.SetInt(c.senders.Len())
	c.logger.Info("signed transaction",
		zap.Stringer("hash", stx.Hash()),
		zap.Uint8("type", stx.Type()),
		zap.Stringer("from", signer.Address()),
		zap.Uint64("nonce", stx.Nonce()))
	return stx, nil
}
