package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Vitoster1098/PhantomBot/internal/bot"
	"github.com/Vitoster1098/PhantomBot/internal/config"
	v "github.com/Vitoster1098/PhantomBot/internal/version"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.New()
	if err != nil {
		log.Fatal().Err(err).Msg("Configuration error")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	log.Info().Str("version", v.Version).Msgf("Starting %s", v.AppName)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := bot.New(cfg, log.Logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- b.Run(ctx)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		log.Info().Str("signal", s.String()).Msg("Shutting down")
		cancel()
		<-errCh
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("Bot exited with error")
			os.Exit(1)
		}
	}

	log.Info().Msg("Bot exited cleanly")
}
