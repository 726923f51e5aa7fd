package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang.org/x/crypto/bcrypt"

	"github.com/starford/nnote/internal/nnid"
)

type harness struct {
	t     *testing.T
	vault string
	conf  string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	conf := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(conf, []byte("app:\n  timezone: UTC\n  log_format: text\n  log_level: error\n"), 0o644))
	return &harness{t: t, vault: filepath.Join(dir, "vault"), conf: conf}
}

// run executes the CLI with stdin and returns stdout.
func (h *harness) run(stdin string, args ...string) (string, error) {
	h.t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.Reader = strings.NewReader(stdin)
	argv := append([]string{"nnote", "--config", h.conf, "--vault", h.vault}, args...)
	err := app.Run(context.Background(), argv)
	return out.String(), err
}

func (h *harness) mustRun(stdin string, args ...string) string {
	h.t.Helper()
	out, err := h.run(stdin, args...)
	require.NoError(h.t, err)
	return out
}

func (h *harness) add(body string, args ...string) nnid.ID {
	h.t.Helper()
	out := h.mustRun(body, append([]string{"add"}, append(args, "-")...)...)
	id, err := nnid.Parse(strings.TrimSpace(out))
	require.NoError(h.t, err)
	return id
}

func TestAddAndList(t *testing.T) {
	h := newHarness(t)
	first := h.add("# First\nbody\n", "-a", "todo")
	time.Sleep(2 * time.Microsecond)
	second := h.add("Second\n")

	out := h.mustRun("")
	assert.Equal(t, "[ 1] Second\n[ 2] First (todo)\n", out)

	out = h.mustRun("", "list", "--identify", "-o", "forward")
	assert.Equal(t, first.String()+"\n"+second.String()+"\n", out)

	out = h.mustRun("", "-S", "todo", "-I")
	assert.Equal(t, first.String()+"\n", out)

	out = h.mustRun("", "-g", "^Sec", "-c", "1", "-I")
	assert.Equal(t, second.String()+"\n", out)
}

func TestAddFromFile(t *testing.T) {
	h := newHarness(t)
	src := filepath.Join(t.TempDir(), "notes.TXT")
	require.NoError(t, os.WriteFile(src, []byte("from a file\n"), 0o644))

	out := h.mustRun("", "add", src)
	id, err := nnid.Parse(strings.TrimSpace(out))
	require.NoError(t, err)

	out = h.mustRun("", "--filename")
	assert.Equal(t, id.String()+".txt\n", out)
}

func TestAddRejectsEmpty(t *testing.T) {
	h := newHarness(t)
	_, err := h.run("", "add", "-")
	assert.Error(t, err)
}

func TestTagCommand(t *testing.T) {
	h := newHarness(t)
	id := h.add("x\n", "-a", "status=open")

	out := h.mustRun("", "tag", "-r", "status", "-a", "status=done", id.String())
	assert.Equal(t, "tagged 1 note(s)\n", out)

	out = h.mustRun("", "-S", "status=done", "-I")
	assert.Equal(t, id.String()+"\n", out)
	out = h.mustRun("", "-S", "status=open", "-I")
	assert.Empty(t, out)
}

func TestShowCommand(t *testing.T) {
	h := newHarness(t)
	id := h.add("# Shown\ncontent line\n")

	out := h.mustRun("", "show", id.String())
	assert.Contains(t, out, id.String())
	assert.Contains(t, out, "content line")

	assert.NotContains(t, out, "\x1b[")

	out = h.mustRun("", "--color", "always", "show", id.String())
	assert.Contains(t, out, "\x1b[")
	assert.Contains(t, out, "content")

	_, err := h.run("", "show")
	assert.Error(t, err)
	_, err = h.run("", "show", "zzz")
	assert.Error(t, err)
	_, err = h.run("", "--color", "rainbow", "show", id.String())
	assert.ErrorContains(t, err, "color mode")
}

func TestSyntaxErrors(t *testing.T) {
	h := newHarness(t)
	for _, args := range [][]string{
		{"-i", "1-"},
		{"-s", "2024-13"},
		{"-o", "sideways"},
		{"-S", "=x"},
		{"--format", "xml"},
		{"tag", "-a", ".md"},
	} {
		_, err := h.run("", args...)
		assert.Error(t, err, "args %v", args)
	}
}

func TestFsckCommand(t *testing.T) {
	h := newHarness(t)
	h.add("fine\n")
	out := h.mustRun("", "fsck")
	assert.Contains(t, out, "0 issues")

	lost := nnid.ID{Time: time.Date(2023, 12, 31, 23, 0, 0, 0, time.UTC), Nonce: 1}
	dir := filepath.Join(h.vault, "2024", "01")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, lost.String()+".md"), []byte("lost\n"), 0o644))

	out, err := h.run("", "fsck")
	assert.Error(t, err)
	assert.Contains(t, out, "misfiled")

	out = h.mustRun("", "fsck", "--fix")
	assert.Contains(t, out, "moved 1 file(s)")
	assert.FileExists(t, filepath.Join(h.vault, "2023", "12", lost.String()+".md"))
}

func TestCutFlag(t *testing.T) {
	h := newHarness(t)
	h.add("deep\n", "--ext", ".txt")
	out := h.mustRun("", "--cut", "0", "-I")
	assert.Empty(t, out, "flat layout does not see bucketed notes")

	_, err := h.run("", "--cut", "7")
	assert.Error(t, err)
}

func TestEditorCommand(t *testing.T) {
	t.Setenv("VISUAL", "")
	t.Setenv("EDITOR", "")
	assert.Equal(t, []string{"vi"}, editorCommand(""))
	assert.Equal(t, []string{"nano", "-w"}, editorCommand("nano -w"))
	t.Setenv("EDITOR", "emacs")
	assert.Equal(t, []string{"emacs"}, editorCommand("nano"))
	t.Setenv("VISUAL", "code --wait")
	assert.Equal(t, []string{"code", "--wait"}, editorCommand("nano"))
}

func TestEditCommand(t *testing.T) {
	h := newHarness(t)
	id := h.add("text\n")
	dir := t.TempDir()
	marker := filepath.Join(dir, "edited")
	// The editor records the paths it was given.
	script := filepath.Join(dir, "editor.sh")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\necho \"$@\" > "+marker+"\n"), 0o755))
	t.Setenv("VISUAL", "")
	t.Setenv("EDITOR", script)
	h.mustRun("", "edit")
	got, err := os.ReadFile(marker)
	require.NoError(t, err)
	assert.Contains(t, string(got), id.String()+".md")
}

func TestHashToken(t *testing.T) {
	h := newHarness(t)
	out := h.mustRun("s3cret\n", "hash-token")
	hash := strings.TrimSpace(out)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret")))

	_, err := h.run("", "hash-token")
	assert.ErrorContains(t, err, "no token given")

	out = h.mustRun("", "hash-token", "--generate")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	token, ok := strings.CutPrefix(lines[0], "token: ")
	require.True(t, ok)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(lines[1]), []byte(token)))
}
