package storage

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func tempVault(t *testing.T) *FS {
	t.Helper()
	s, err := NewFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return s
}

func TestWriteReadOpen(t *testing.T) {
	s := tempVault(t)
	content := []byte("first line\nsecond line\n")
	if err := s.Write("2024/05/0007e3a1-02faf080-1c2d3e4f.txt", content); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := s.Read("2024/05/0007e3a1-02faf080-1c2d3e4f.txt")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content = %q, want %q", got, content)
	}

	rc, err := s.Open("2024/05/0007e3a1-02faf080-1c2d3e4f.txt")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()
	streamed, _ := io.ReadAll(rc)
	if string(streamed) != string(content) {
		t.Errorf("streamed = %q", streamed)
	}
}

func TestReadDirNames(t *testing.T) {
	s := tempVault(t)
	_ = s.Write("2024/b.txt", []byte("b"))
	_ = s.Write("2024/a.txt", []byte("a"))
	_ = s.Write("2023/c.txt", []byte("c"))

	root, err := s.ReadDirNames("")
	if err != nil {
		t.Fatalf("ReadDirNames root: %v", err)
	}
	if len(root) != 2 || root[0] != "2023" || root[1] != "2024" {
		t.Errorf("root = %v", root)
	}

	dot, err := s.ReadDirNames(".")
	if err != nil || len(dot) != 2 {
		t.Errorf("ReadDirNames(.) = %v, %v", dot, err)
	}

	year, _ := s.ReadDirNames("2024")
	if len(year) != 2 || year[0] != "a.txt" {
		t.Errorf("2024 = %v", year)
	}
}

func TestReadDirNamesMissing(t *testing.T) {
	s := tempVault(t)
	_, err := s.ReadDirNames("1999/12")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("err = %v, want fs.ErrNotExist", err)
	}
}

func TestDelete(t *testing.T) {
	s := tempVault(t)
	_ = s.Write("gone.txt", []byte("bye"))
	if err := s.Delete("gone.txt"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Stat("gone.txt"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Stat after delete = %v", err)
	}
}

func TestMove(t *testing.T) {
	s := tempVault(t)
	_ = s.Write("2024/06/n.txt", []byte("data"))
	if err := s.Move("2024/06/n.txt", "2024/05/n.txt"); err != nil {
		t.Fatalf("Move: %v", err)
	}
	got, err := s.Read("2024/05/n.txt")
	if err != nil || string(got) != "data" {
		t.Errorf("Read after move = %q, %v", got, err)
	}
	if _, err := s.Read("2024/06/n.txt"); err == nil {
		t.Error("old path should not exist")
	}
}

func TestTraversalBlocked(t *testing.T) {
	s := tempVault(t)
	for _, p := range []string{"../../etc/passwd", "../outside.txt", "/etc/shadow"} {
		if _, err := s.Read(p); err == nil {
			t.Errorf("expected error reading %q", p)
		}
		if err := s.Write(p, []byte("x")); err == nil {
			t.Errorf("expected error writing %q", p)
		}
		if _, err := s.ReadDirNames(p); err == nil {
			t.Errorf("expected error listing %q", p)
		}
	}
}

func TestAtomicWriteLeavesNoTemp(t *testing.T) {
	s := tempVault(t)
	_ = s.Write("atomic.txt", []byte("original"))
	if err := s.Write("atomic.txt", []byte("updated")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, _ := s.Read("atomic.txt")
	if string(got) != "updated" {
		t.Errorf("content = %q", got)
	}
	matches, _ := filepath.Glob(filepath.Join(s.Root(), ".nnote-tmp-*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestNewFS_NonExistentDir(t *testing.T) {
	if _, err := NewFS(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for non-existent dir")
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "nnote-test-*")
	if err != nil {
		t.Fatal(err)
	}
	_ = f.Close()
	if _, err := NewFS(f.Name()); err == nil {
		t.Error("expected error when root is a file")
	}
}
