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
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/erigontech/txcodec/execution/txcodec"
	"github.com/erigontech/txcodec/metrics"
)

// app holds the state shared by the subcommands of one invocation.
type app struct {
	configPath  string
	verbosity   int
	dumpMetrics bool

	logger *zap.Logger
	codec  *txcodec.Codec
}

// NewRootCmd builds the txcodec command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:           "txcodec",
		Short:         "Decode, hash, sign and inspect Ethereum transactions",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.teardown(cmd)
		},
	}
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "path to a TOML config file")
	flags.IntVar(&a.verbosity, "verbosity", 2, "log level: 0=silent, 1=error, 2=warn, 3=info, 4=debug")
	flags.BoolVar(&a.dumpMetrics, "metrics", false, "print metrics to stderr on exit")
	must(rootCmd.MarkPersistentFlagFilename("config", "toml"))

	rootCmd.AddCommand(
		decodeCmd(a),
		hashCmd(a),
		signCmd(a),
		rlpdumpCmd(a),
	)
	return rootCmd
}

func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		cancel()
		os.Exit(1)
	}
}

func (a *app) setup(cmd *cobra.Command) error {
	a.logger = newLogger(a.verbosity)
	cfg := txcodec.DefaultConfig
	if a.configPath != "" {
		var err error
		if cfg, err = txcodec.LoadConfig(a.configPath); err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		a.logger.Debug("loaded config", zap.String("path", a.configPath))
	}
	codec, err := txcodec.New(cfg, a.logger)
	if err != nil {
		return err
	}
	a.codec = codec
	return nil
}

func (a *app) teardown(cmd *cobra.Command) error {
	if a.dumpMetrics {
		if err := metrics.WriteText(cmd.ErrOrStderr()); err != nil {
			return err
		}
	}
	_ = a.logger.Sync() // stderr sync fails on some terminals
	return nil
}

// newLogger builds a console logger writing to stderr at the given verbosity.
func newLogger(verbosity int) *zap.Logger {
	if verbosity <= 0 {
		return zap.NewNop()
	}
	level := zapcore.DebugLevel
	switch verbosity {
	case 1:
		level = zapcore.ErrorLevel
	case 2:
		level = zapcore.WarnLevel
	case 3:
		level = zapcore.InfoLevel
	}
	encoderCfg := zap.NewDevelopmentEncoderConfig()
	encoderCfg.EncodeTime = zapcore.TimeEncoderOfLayout("01-02|15:04:05.000")
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), zapcore.Lock(os.Stderr), level)
	return zap.New(core)
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
