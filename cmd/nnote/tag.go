package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/starford/nnote/internal/filter"
)

func tagCommand() *cli.Command {
	return &cli.Command{
		Name:      "tag",
		Aliases:   []string{"t"},
		Usage:     "Remove then assign attributes on the selected notes",
		ArgsUsage: "[date|id]",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{Name: "assign", Aliases: []string{"a"}, Usage: "Attribute to assign, key or key=value"},
			&cli.StringSliceFlag{Name: "remove", Aliases: []string{"r"}, Usage: "Attribute to remove; a bare key removes any value"},
		},
		Action: runTag,
	}
}

func runTag(ctx context.Context, cmd *cli.Command) error {
	assign, err := filter.ParseAttributes(cmd.StringSlice("assign"))
	if err != nil {
		return err
	}
	remove, err := filter.ParseAttributes(cmd.StringSlice("remove"))
	if err != nil {
		return err
	}
	s, err := open(cmd)
	if err != nil {
		return err
	}
	n, err := s.svc.Tag(ctx, queryFromFlags(cmd), assign, remove)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.Root().Writer, "tagged %d note(s)\n", n)
	return err
}
