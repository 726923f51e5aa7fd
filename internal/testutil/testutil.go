// Package testutil provides shared test helpers for setting up vaults.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/starford/nnote/internal/layout"
	"github.com/starford/nnote/internal/meta"
	"github.com/starford/nnote/internal/models"
	"github.com/starford/nnote/internal/nnid"
	"github.com/starford/nnote/internal/storage"
)

// TestVault creates a temporary vault directory with a storage provider.
func TestVault(t *testing.T) (string, *storage.FS) {
	t.Helper()
	vaultDir := t.TempDir()
	store, err := storage.NewFS(vaultDir)
	if err != nil {
		t.Fatal(err)
	}
	return vaultDir, store
}

// TestLayout creates a temporary vault bucketed cut levels deep.
func TestLayout(t *testing.T, cut int) (layout.Layout, *storage.FS) {
	t.Helper()
	_, store := TestVault(t)
	l, err := layout.New(store.Root(), cut)
	if err != nil {
		t.Fatal(err)
	}
	return l, store
}

// WriteNote files body under id with the given extension.
func WriteNote(t *testing.T, store storage.Provider, l layout.Layout, id nnid.ID, ext, body string) {
	t.Helper()
	if err := store.Write(filepath.ToSlash(l.RelPath(id, ext)), []byte(body)); err != nil {
		t.Fatal(err)
	}
}

// WriteAttributes assigns attrs to the note and saves its sidecar.
func WriteAttributes(t *testing.T, store storage.Provider, l layout.Layout, id nnid.ID, attrs ...models.Attribute) {
	t.Helper()
	rec, err := meta.NewLoader(store, l).Record(models.Note{ID: id})
	if err != nil {
		t.Fatal(err)
	}
	for _, a := range attrs {
		if err := rec.Assign(a); err != nil {
			t.Fatal(err)
		}
	}
	if err := rec.Save(); err != nil {
		t.Fatal(err)
	}
}
