package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/rs/zerolog"

	"github.com/matrixvert/donorcli/auth"
	"github.com/matrixvert/donorcli/credstore"
	"github.com/matrixvert/donorcli/donation"
	"github.com/matrixvert/donorcli/internal/config"
	"github.com/matrixvert/donorcli/session"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := newLogger(cfg.Log.Level)

	store, err := credstore.NewFileStore(cfg.Vault.Path, []byte(cfg.Vault.Passphrase))
	if err != nil {
		return err
	}

	sess := session.New()
	client := donation.NewClient(cfg.API.BaseURL,
		donation.WithTimeout(cfg.API.Timeout),
		donation.WithLogger(logger),
	)

	svc, err := auth.NewService(client, store, sess, logger,
		auth.WithSessionEndHook(func() {
			fmt.Fprintln(os.Stderr, "Session ended. Please log in again.")
		}),
	)
	if err != nil {
		return err
	}
	client.Bind(svc)

	if err := svc.Restore(context.Background()); err != nil {
		logger.Warn().Err(err).Msg("could not restore stored session")
	}

	app := &app{cfg: cfg, client: client, auth: svc, log: logger}
	return newRootCmd(app).Execute()
}

func newLogger(level string) zerolog.Logger {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		parsed = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(parsed).With().Timestamp().Logger()
}
