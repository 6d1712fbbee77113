package main

import (
	"fmt"
	"os"

	"github.com/jwulff/vocabtrack/internal/audio/portaudio"
	"github.com/jwulff/vocabtrack/internal/cli"
	"github.com/jwulff/vocabtrack/internal/config"
	"github.com/jwulff/vocabtrack/internal/logging"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run() error {
	path := os.Getenv("VOCABTRACK_CONFIG")
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer logger.Sync()

	deps := &cli.Dependencies{
		Config: cfg,
		Logger: logger,
		Audio:  portaudio.New(logger.Named("audio")),
	}

	return cli.NewRootCmd(deps).Execute()
}
