package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/distincto/journal/internal/journal/cli"
	"github.com/distincto/journal/internal/journal/config"
	"github.com/distincto/journal/internal/logging"
)

func main() {
	ctx := context.Background()
	cfg := config.LoadConfig()

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	passphrase, err := cli.GetPassword(os.Stdout)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app, err := cli.NewApp(ctx, cfg, passphrase, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(ctx)
}
