package main

import (
	"fmt"
	"os"

	"github.com/petems/trackdeck/internal/app"
	"github.com/petems/trackdeck/internal/cli"
	"github.com/petems/trackdeck/internal/config"
	"github.com/petems/trackdeck/internal/logging"
	"github.com/petems/trackdeck/internal/store"
	"github.com/petems/trackdeck/internal/transport"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log := logging.NewWithLevel(cfg.LogLevel)
	files := store.New()

	// No peer layer is wired in yet; sessions record the host alone
	// until a transport implementation lands.
	peers := transport.NewNop()

	application := app.New(app.Config{
		Transport: peers,
		Store:     files,
		Config:    cfg,
		Logger:    log,
	})

	deps := &cli.Dependencies{
		App:    application,
		Config: cfg,
		Store:  files,
		Logger: log,
	}

	return cli.NewRootCmd(deps).Execute()
}
