package main

import (
	"context"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"
)

var version = "dev"

func newApp() *cli.Command {
	flags := append(globalFlags(), queryFlags()...)
	flags = append(flags, formatFlags()...)
	return &cli.Command{
		Name:    "nnote",
		Usage:   "Timestamped notes in a date-bucketed directory tree",
		Version: version,
		Flags:   flags,
		Action:  runList,
		Commands: []*cli.Command{
			listCommand(),
			addCommand(),
			editCommand(),
			tagCommand(),
			showCommand(),
			fsckCommand(),
			serveCommand(),
			mcpCommand(),
			hashTokenCommand(),
		},
	}
}

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
