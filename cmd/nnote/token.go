package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/starford/nnote/internal/auth"
)

func hashTokenCommand() *cli.Command {
	return &cli.Command{
		Name:      "hash-token",
		Usage:     "Print a bcrypt hash to use as auth.token",
		Description: "Reads the token from the terminal without echo, or the first line of stdin.\n" +
			"With --generate a random token is created and printed above its hash.",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "generate", Aliases: []string{"G"}, Usage: "Generate a random token"},
		},
		Action: runHashToken,
	}
}

func runHashToken(_ context.Context, cmd *cli.Command) error {
	out := cmd.Root().Writer
	var (
		token string
		err   error
	)
	if cmd.Bool("generate") {
		if token, err = auth.GenerateToken(); err != nil {
			return err
		}
		fmt.Fprintf(out, "token: %s\n", token)
	} else if token, err = readToken(cmd.Root().Reader, cmd.Root().ErrWriter); err != nil {
		return err
	}

	hash, err := auth.HashToken(token)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, hash)
	return nil
}

// readToken prompts without echo when in is a terminal and otherwise
// takes the first line of in.
func readToken(in io.Reader, prompt io.Writer) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if prompt == nil {
			prompt = os.Stderr
		}
		fmt.Fprint(prompt, "Token: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", fmt.Errorf("read token: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read token: %w", err)
	}
	token := strings.TrimSpace(line)
	if token == "" {
		return "", errors.New("read token: no token given")
	}
	return token, nil
}
