package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// editorCommand picks $VISUAL, then $EDITOR, then the configured command,
// then vi.
func editorCommand(configured string) []string {
	for _, c := range []string{os.Getenv("VISUAL"), os.Getenv("EDITOR"), configured} {
		if f := strings.Fields(c); len(f) > 0 {
			return f
		}
	}
	return []string{"vi"}
}

// runEditor opens paths in the editor attached to the terminal.
func runEditor(ctx context.Context, configured string, paths ...string) error {
	if len(paths) == 0 {
		return errors.New("nothing to edit")
	}
	argv := append(editorCommand(configured), paths...)
	c := exec.CommandContext(ctx, argv[0], argv[1:]...)
	c.Stdin, c.Stdout, c.Stderr = os.Stdin, os.Stdout, os.Stderr
	if err := c.Run(); err != nil {
		return fmt.Errorf("editor %s: %w", argv[0], err)
	}
	return nil
}
