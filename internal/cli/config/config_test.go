package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/yndnr/myke/internal/core/domain"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for name := range EnvKeys {
		if v, ok := os.LookupEnv(name); ok {
			t.Setenv(name, v)
			os.Unsetenv(name)
		}
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.File.Name != "Mykefile" {
		t.Errorf("File.Name = %q, want Mykefile", cfg.File.Name)
	}
	if cfg.Modules.Dir != "tasks" {
		t.Errorf("Modules.Dir = %q, want tasks", cfg.Modules.Dir)
	}
	if cfg.Output.Format != "table" {
		t.Errorf("Output.Format = %q, want table", cfg.Output.Format)
	}
	if cfg.Shell.Executable != "/bin/sh" {
		t.Errorf("Shell.Executable = %q, want /bin/sh", cfg.Shell.Executable)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want warn", cfg.Log.Level)
	}
}

func TestDefaultConfigPath(t *testing.T) {
	t.Setenv(ConfigEnv, "/etc/myke.yaml")
	if got := DefaultConfigPath(); got != "/etc/myke.yaml" {
		t.Errorf("DefaultConfigPath() = %q, want /etc/myke.yaml", got)
	}

	t.Setenv(ConfigEnv, "")
	if got := DefaultConfigPath(); !strings.HasSuffix(got, filepath.Join("myke", "config.yaml")) {
		t.Errorf("DefaultConfigPath() = %q", got)
	}
}

func TestLoad_NonExistentFile(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"), nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Errorf("Load() = %+v, want defaults", cfg)
	}
}

func TestLoad_Layers(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
file:
  name: Build
modules:
  preload: [docker]
output:
  format: yaml
http:
  timeout: 5s
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("MYKE_OUTPUT", "json")
	t.Setenv("MYKE_FILTER", "build*,test")
	t.Setenv("MYKE_UPDATE_MODULES", "1")

	cfg, err := Load(path, map[string]any{"file.name": "FromFlag"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.File.Name != "FromFlag" {
		t.Errorf("File.Name = %q, want FromFlag", cfg.File.Name)
	}
	if cfg.Output.Format != "json" {
		t.Errorf("Output.Format = %q, want json", cfg.Output.Format)
	}
	if !reflect.DeepEqual(cfg.Filter, []string{"build*", "test"}) {
		t.Errorf("Filter = %v", cfg.Filter)
	}
	if !reflect.DeepEqual(cfg.Modules.Preload, []string{"docker"}) {
		t.Errorf("Modules.Preload = %v", cfg.Modules.Preload)
	}
	if !cfg.Modules.Update {
		t.Error("Modules.Update should be true")
	}
	if cfg.HTTP.Timeout != 5*time.Second {
		t.Errorf("HTTP.Timeout = %v, want 5s", cfg.HTTP.Timeout)
	}
	if cfg.Modules.Dir != "tasks" {
		t.Errorf("Modules.Dir = %q, want default tasks", cfg.Modules.Dir)
	}
}

func TestLoad_Invalid(t *testing.T) {
	clearEnv(t)
	tests := []struct {
		name    string
		content string
		env     string
	}{
		{"bad yaml", "file: [", ""},
		{"bad format", "output:\n  format: xml\n", ""},
		{"bad env format", "", "csv"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			if tt.env != "" {
				t.Setenv("MYKE_OUTPUT", tt.env)
			}
			_, err := Load(path, nil)
			if !errors.Is(err, domain.ErrInvalidConfig) {
				t.Errorf("Load() error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}
