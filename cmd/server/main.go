// The server command is the main entrypoint: it loads configuration, opens
// the account database, and runs the bancho frontend until interrupted.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/kisaten/bancho/internal/bancho"
	"github.com/kisaten/bancho/internal/core"
	"github.com/kisaten/bancho/internal/core/auth"
	"github.com/kisaten/bancho/internal/core/data"
)

func main() {
	app := &cli.App{
		Name:  "bancho",
		Usage: "multiplayer game server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the directory containing the server config file",
				EnvVars: []string{"BANCHO_CONFIG"},
				Value:   "./",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	config, err := core.LoadConfig(c.String("config"))
	if err != nil {
		return err
	}

	logger, err := core.NewLogger(config)
	if err != nil {
		return err
	}

	db, err := data.Open(config.Database.Path, config.Database.LoggingEnabled)
	if err != nil {
		return err
	}
	defer func() {
		if err := data.Shutdown(db); err != nil {
			logger.Errorf("error shutting down database: %v", err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		logger.Info("shutting down")
		cancel()
	}()

	server := bancho.NewServer(config, logger, auth.NewService(db))
	if err := server.ListenAndServe(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
