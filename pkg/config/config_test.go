package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `yaml:"name"`
	Depth int    `yaml:"depth"`
}

func (s *sample) Validate() error {
	if s.Depth < 0 {
		return errors.New("depth must not be negative")
	}
	return nil
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadKeepsDefaults(t *testing.T) {
	path := writeFile(t, "depth: 3\n")
	cfg := sample{Name: "default", Depth: 1}
	require.NoError(t, Load(path, &cfg))
	assert.Equal(t, sample{Name: "default", Depth: 3}, cfg)
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("NNOTE_TEST_NAME", "from-env")
	path := writeFile(t, "name: ${NNOTE_TEST_NAME}\n")
	var cfg sample
	require.NoError(t, Load(path, &cfg))
	assert.Equal(t, "from-env", cfg.Name)
}

func TestLoadValidates(t *testing.T) {
	path := writeFile(t, "depth: -1\n")
	var cfg sample
	err := Load(path, &cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config validation failed")
}

func TestLoadErrors(t *testing.T) {
	var cfg sample
	assert.Error(t, Load(filepath.Join(t.TempDir(), "missing.yaml"), &cfg))
	assert.Error(t, Load(writeFile(t, "depth: [\n"), &cfg))
}

func TestLoadOptional(t *testing.T) {
	cfg := sample{Name: "default"}
	require.NoError(t, LoadOptional(filepath.Join(t.TempDir(), "missing.yaml"), &cfg))
	assert.Equal(t, "default", cfg.Name)

	bad := sample{Depth: -1}
	assert.Error(t, LoadOptional(filepath.Join(t.TempDir(), "missing.yaml"), &bad))

	require.NoError(t, LoadOptional(writeFile(t, "name: file\n"), &cfg))
	assert.Equal(t, "file", cfg.Name)
}
