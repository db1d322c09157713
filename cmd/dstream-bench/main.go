package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/outofforest/dstream/bench"
	"github.com/outofforest/logger"
)

func main() {
	config, err := bench.ParseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(
		logger.WithLogger(context.Background(), logger.New(logger.DefaultConfig)),
		os.Interrupt, syscall.SIGTERM,
	)
	defer cancel()

	if err := run(ctx, config); err != nil && !errors.Is(err, context.Canceled) {
		logger.Get(ctx).Error("Benchmark failed", zap.Error(err))
		cancel()
		os.Exit(1)
	}
}

func run(ctx context.Context, config bench.Config) error {
	var out io.Writer = os.Stdout
	if config.Output != "" {
		f, err := os.OpenFile(config.Output, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
		if err != nil {
			return errors.WithStack(err)
		}
		defer f.Close()

		out = f
	}

	logger.Get(ctx).Info("Starting benchmark",
		zap.Strings("algorithms", config.Algorithms),
		zap.Strings("dataTypes", config.DataTypes),
		zap.Uint32s("capacities", config.Capacities),
		zap.Uint32s("numItems", config.NumItems),
		zap.Uint32("replicates", config.Replicates),
	)

	return bench.Run(ctx, config, out)
}
