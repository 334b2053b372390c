package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/landa/character-clusterer/internal/runner"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: true}).With().Timestamp().Logger()

	opts, err := runner.ParseFlags()
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid arguments")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	r, err := runner.New(opts, os.Stdout, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to start")
	}

	if err := r.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Fatal().Err(err).Msg("clustering failed")
	}
}
