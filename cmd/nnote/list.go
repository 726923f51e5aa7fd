package main

import (
	"context"
	"log/slog"

	"github.com/urfave/cli/v3"
)

func listCommand() *cli.Command {
	return &cli.Command{
		Name:      "list",
		Aliases:   []string{"ls"},
		Usage:     "List notes (the default command)",
		ArgsUsage: "[date|id]",
		Action:    runList,
	}
}

func runList(ctx context.Context, cmd *cli.Command) error {
	format, err := formatFromFlags(cmd)
	if err != nil {
		return err
	}
	s, err := open(cmd)
	if err != nil {
		return err
	}
	w, err := s.svc.Walker(queryFromFlags(cmd))
	if err != nil {
		return err
	}
	p, err := newPrinter(cmd, s, format)
	if err != nil {
		return err
	}
	for w.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.Print(ctx, w.Index(), w.Note()); err != nil {
			return err
		}
	}
	if n := w.Corrupt(); n > 0 {
		s.logger.Warn("list: corrupt entries skipped", slog.Int("count", n))
	}
	return w.Err()
}
