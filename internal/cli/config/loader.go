package config

import (
	"os"
	"path/filepath"

	"github.com/yndnr/myke/internal/core/domain"
	"github.com/yndnr/myke/internal/infra/confloader"
)

// ConfigEnv names the variable that overrides the config file path.
const ConfigEnv = "MYKE_CONFIG"

// DefaultConfigPath returns the config file path: $MYKE_CONFIG, or
// ~/.config/myke/config.yaml.
func DefaultConfigPath() string {
	if p := os.Getenv(ConfigEnv); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "myke", "config.yaml")
}

// Load loads configuration from defaults, the file at path (skipped when
// missing), MYKE_* variables and finally overrides, which carry flag
// values keyed like "file.name".
func Load(path string, overrides map[string]any) (*Config, error) {
	if path == "" {
		path = DefaultConfigPath()
	}

	l := confloader.NewLoader(
		confloader.WithConfigFile(path),
		confloader.WithEnvKeys(EnvKeys),
		confloader.WithDefaults(defaults()),
		confloader.WithListKey("file.paths", confloader.SplitPathList),
		confloader.WithListKey("modules.paths", confloader.SplitPathList),
		confloader.WithListKey("modules.preload", confloader.SplitList),
		confloader.WithListKey("filter", confloader.SplitList),
	)

	cfg := &Config{}
	if err := l.Load(cfg); err != nil {
		return nil, domain.ErrInvalidConfig.WithDetails(path).WithCause(err)
	}
	if len(overrides) > 0 {
		if err := l.LoadMap(overrides); err != nil {
			return nil, domain.ErrInvalidConfig.WithCause(err)
		}
		if err := l.Unmarshal(cfg); err != nil {
			return nil, domain.ErrInvalidConfig.WithCause(err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, domain.ErrInvalidConfig.WithCause(err)
	}
	return cfg, nil
}
