package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/starford/nnote/internal/filter"
)

func addCommand() *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Create a note from a file, stdin (-) or the editor",
		ArgsUsage: "[file|-]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "ext", Aliases: []string{"x"}, Usage: "File extension, default .md or the source file's"},
			&cli.StringSliceFlag{Name: "attribute", Aliases: []string{"a"}, Usage: "Attribute to assign, key or key=value"},
		},
		Action: runAdd,
	}
}

func runAdd(ctx context.Context, cmd *cli.Command) error {
	attrs, err := filter.ParseAttributes(cmd.StringSlice("attribute"))
	if err != nil {
		return err
	}
	s, err := open(cmd)
	if err != nil {
		return err
	}

	ext := cmd.String("ext")
	var data []byte
	switch src := cmd.Args().First(); src {
	case "-":
		data, err = io.ReadAll(cmd.Root().Reader)
	case "":
		if ext == "" {
			ext = ".md"
		}
		data, err = composeInEditor(ctx, s.cfg.Editor.Command, ext)
	default:
		if ext == "" {
			ext = strings.ToLower(filepath.Ext(src))
		}
		data, err = os.ReadFile(src)
	}
	if err != nil {
		return err
	}
	if ext == "" {
		ext = ".md"
	}
	if ext[0] != '.' {
		ext = "." + ext
	}
	if len(data) == 0 {
		return errors.New("empty note, nothing added")
	}

	n, err := s.svc.Add(ctx, ext, data, attrs...)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.Root().Writer, n.ID)
	return err
}

// composeInEditor lets the user write a note in a scratch file.
func composeInEditor(ctx context.Context, editor, ext string) ([]byte, error) {
	f, err := os.CreateTemp("", "nnote-*"+ext)
	if err != nil {
		return nil, err
	}
	path := f.Name()
	f.Close()
	defer os.Remove(path)

	if err := runEditor(ctx, editor, path); err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}
