package config

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadWritesFileOnFirstRun(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "universe.toml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Universe.Port != 6670 {
		t.Fatalf("expected default port 6670, got %d", cfg.Universe.Port)
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded != cfg {
		t.Fatalf("expected reload to match saved config: %+v vs %+v", reloaded, cfg)
	}
}

func TestRunConfiguratorAcceptsDefaultsOnBlankInput(t *testing.T) {
	var out bytes.Buffer
	in := strings.NewReader("\n\n\n\n")

	cfg := runConfigurator(in, &out)
	want := defaultConfig()
	if cfg != want {
		t.Fatalf("expected defaults preserved on blank answers, got %+v", cfg)
	}
}

func TestRunConfiguratorRejectsInvalidIPUntilValid(t *testing.T) {
	var out bytes.Buffer
	in := strings.NewReader("not-an-ip\n10.0.0.5\n\n\n\n")

	cfg := runConfigurator(in, &out)
	if cfg.Universe.BindIP != "10.0.0.5" {
		t.Fatalf("expected bind ip 10.0.0.5, got %q", cfg.Universe.BindIP)
	}
	if !strings.Contains(out.String(), "Invalid IP address") {
		t.Fatalf("expected a re-prompt message for the invalid ip")
	}
}

func TestRunConfiguratorExternalDatabaseBranch(t *testing.T) {
	var out bytes.Buffer
	in := strings.NewReader("\n\n\nexternal\ndbhost\n3307\nadmin\nhunter2\naworld\n")

	cfg := runConfigurator(in, &out)
	if cfg.SQL.Type != DatabaseExternal {
		t.Fatalf("expected external database type, got %q", cfg.SQL.Type)
	}
	if cfg.SQL.MySQLHostname != "dbhost" || cfg.SQL.MySQLPort != 3307 {
		t.Fatalf("unexpected mysql config: %+v", cfg.SQL)
	}
}
