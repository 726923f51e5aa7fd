package main

import (
	"context"
	"errors"

	"github.com/urfave/cli/v3"

	"github.com/starford/nnote/internal/content"
)

func editCommand() *cli.Command {
	return &cli.Command{
		Name:      "edit",
		Aliases:   []string{"e"},
		Usage:     "Open the text files of the selected notes in the editor",
		ArgsUsage: "[date|id]",
		Action:    runEdit,
	}
}

func runEdit(ctx context.Context, cmd *cli.Command) error {
	s, err := open(cmd)
	if err != nil {
		return err
	}
	w, err := s.svc.Walker(queryFromFlags(cmd))
	if err != nil {
		return err
	}
	var paths []string
	for n := range w.All() {
		for _, ext := range n.Exts {
			if content.IsText(ext) {
				paths = append(paths, s.svc.Path(n.ID, ext))
			}
		}
	}
	if err := w.Err(); err != nil {
		return err
	}
	if len(paths) == 0 {
		return errors.New("no text files selected")
	}
	return runEditor(ctx, s.cfg.Editor.Command, paths...)
}
