package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/starford/nnote/internal/fsck"
)

func fsckCommand() *cli.Command {
	return &cli.Command{
		Name:  "fsck",
		Usage: "Scan the whole vault for corrupt, misfiled, orphaned and stray files",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "fix", Usage: "Move misfiled notes into their buckets"},
		},
		Action: runFsck,
	}
}

func runFsck(ctx context.Context, cmd *cli.Command) error {
	s, err := open(cmd)
	if err != nil {
		return err
	}
	ignored, err := s.cfg.Vault.Matcher()
	if err != nil {
		return err
	}
	report, err := fsck.Scan(ctx, s.svc.Layout(), s.logger, fsck.WithIgnore(ignored))
	if err != nil {
		return err
	}
	out := cmd.Root().Writer
	for _, issue := range report.Issues {
		fmt.Fprintln(out, issue)
	}
	fmt.Fprintf(out, "%d files, %d notes, %d issues\n", report.Files, len(report.Notes), len(report.Issues))

	remaining := len(report.Issues)
	if cmd.Bool("fix") {
		moved, err := fsck.Fix(ctx, s.svc.Store(), report, s.logger)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "moved %d file(s)\n", moved)
		remaining -= moved
	}
	if remaining > 0 {
		return fmt.Errorf("fsck: %d issue(s) remain", remaining)
	}
	return nil
}
