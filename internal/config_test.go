package internal

import (
	"strings"
	"testing"
	"time"

	"github.com/starford/nnote/internal/layout"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestDefaultConfigValid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.Vault.Cut != layout.DefaultCut {
		t.Errorf("cut = %d, want %d", cfg.Vault.Cut, layout.DefaultCut)
	}
	if !strings.HasSuffix(cfg.Vault.Path, ".note") {
		t.Errorf("vault path = %q", cfg.Vault.Path)
	}
	m, err := cfg.Vault.Matcher()
	if err != nil {
		t.Fatalf("default ignore patterns: %v", err)
	}
	if !m.Match(".git/HEAD") {
		t.Error(".git should be ignored by default")
	}
}

func TestFullConfig_Invalid(t *testing.T) {
	cases := map[string]func(*Config){
		"auth token": func(c *Config) { c.Auth.Mode = "token" },
		"cut":        func(c *Config) { c.Vault.Cut = 5 },
		"negative":   func(c *Config) { c.Vault.Cut = -1 },
		"vault path": func(c *Config) { c.Vault.Path = "" },
		"port":       func(c *Config) { c.App.HTTP.Port = 70000 },
		"log format": func(c *Config) { c.App.LogFormat = "xml" },
		"timezone":   func(c *Config) { c.App.Timezone = "Mars/Olympus" },
		"ignore":     func(c *Config) { c.Vault.Ignore = []string{"[a-"} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestLocation(t *testing.T) {
	app := ApplicationConfig{}
	loc, err := app.Location()
	if err != nil || loc != time.Local {
		t.Fatalf("empty timezone = %v, %v", loc, err)
	}
	app.Timezone = "UTC"
	loc, err = app.Location()
	if err != nil || loc.String() != "UTC" {
		t.Fatalf("UTC = %v, %v", loc, err)
	}
}
