package main

import (
	"context"
	"errors"

	"github.com/urfave/cli/v3"

	"github.com/starford/nnote/internal/nnid"
	"github.com/starford/nnote/internal/output"
)

func showCommand() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Print notes by identifier with headers and text",
		ArgsUsage: "<id>...",
		Action:    runShow,
	}
}

func runShow(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() == 0 {
		return errors.New("show: at least one identifier is required")
	}
	format := output.FormatFull
	if cmd.IsSet("format") || cmd.Bool("identify") || cmd.Bool("filename") || cmd.Bool("realpath") {
		f, err := formatFromFlags(cmd)
		if err != nil {
			return err
		}
		format = f
	}
	s, err := open(cmd)
	if err != nil {
		return err
	}
	p, err := newPrinter(cmd, s, format)
	if err != nil {
		return err
	}
	for i, raw := range cmd.Args().Slice() {
		id, err := nnid.Parse(raw)
		if err != nil {
			return err
		}
		n, err := s.svc.Find(ctx, id)
		if err != nil {
			return err
		}
		if err := p.Print(ctx, i+1, n); err != nil {
			return err
		}
	}
	return nil
}
