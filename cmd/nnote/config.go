package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/starford/nnote/internal"
	"github.com/starford/nnote/internal/logging"
	"github.com/starford/nnote/internal/noteservice"
	pkgconfig "github.com/starford/nnote/pkg/config"
)

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Usage:       "Path to config file",
			DefaultText: internal.DefaultConfigFile(),
			Sources:     cli.EnvVars("NNOTE_CONFIG"),
		},
		&cli.StringFlag{
			Name:    "vault",
			Usage:   "Note directory",
			Sources: cli.EnvVars("NOTE_DIR"),
		},
		&cli.IntFlag{
			Name:    "cut",
			Usage:   "Bucket depth: 0 flat, 1 year, 2 month, 3 day, 4 hour",
			Sources: cli.EnvVars("NOTE_CUT"),
		},
	}
}

// loadConfig reads the config file and applies flag overrides. An
// explicit --config must exist; the default location is optional.
func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if path := cmd.String("config"); path != "" {
		if err := pkgconfig.Load(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	} else if err := pkgconfig.LoadOptional(internal.DefaultConfigFile(), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cmd.IsSet("vault") {
		cfg.Vault.Path = cmd.String("vault")
	}
	if cmd.IsSet("cut") {
		cfg.Vault.Cut = int(cmd.Int("cut"))
	}
	if err := pkgconfig.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

type session struct {
	cfg    *internal.Config
	svc    *noteservice.Service
	logger *slog.Logger
}

// open loads the config and opens the vault, logging to stderr.
func open(cmd *cli.Command) (*session, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger := logging.New(os.Stderr, cfg.App.LogLevel, cfg.App.LogFormat)
	svc, err := internal.OpenVault(cfg, logger)
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, svc: svc, logger: logger}, nil
}
