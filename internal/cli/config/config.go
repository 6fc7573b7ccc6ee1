package config

import (
	"time"

	"github.com/yndnr/myke/internal/cli/output"
	"github.com/yndnr/myke/internal/loader"
	"github.com/yndnr/myke/internal/telemetry/logger"
)

// Config is the configuration for myke.
type Config struct {
	File    FileConfig    `koanf:"file"`
	Env     EnvConfig     `koanf:"env"`
	Modules ModulesConfig `koanf:"modules"`
	Filter  []string      `koanf:"filter"`
	Output  OutputConfig  `koanf:"output"`
	Shell   ShellConfig   `koanf:"shell"`
	Log     LogConfig     `koanf:"log"`
	HTTP    HTTPConfig    `koanf:"http"`
}

// FileConfig locates Mykefiles.
type FileConfig struct {
	Name  string   `koanf:"name"`
	Paths []string `koanf:"paths"`
}

// EnvConfig names a dotenv file loaded before tasks are imported.
type EnvConfig struct {
	File string `koanf:"file"`
}

// ModulesConfig controls module resolution and installation.
type ModulesConfig struct {
	Dir     string   `koanf:"dir"`
	Paths   []string `koanf:"paths"`
	Update  bool     `koanf:"update"`
	Preload []string `koanf:"preload"`
}

// OutputConfig controls task listings.
type OutputConfig struct {
	Format string `koanf:"format"` // table, json, yaml
}

// ShellConfig sets the interpreter for shell scripts.
type ShellConfig struct {
	Executable string `koanf:"executable"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// HTTPConfig configures remote module downloads and read.url.
type HTTPConfig struct {
	Timeout time.Duration `koanf:"timeout"`
	Token   string        `koanf:"token"`

	// CAFile is a PEM file or directory trusted in addition to the
	// system roots.
	CAFile string `koanf:"ca_file"`
}

// EnvKeys maps MYKE_* variables to config keys. Unlisted variables are
// ignored.
var EnvKeys = map[string]string{
	"MYKE_FILE":           "file.name",
	"MYKE_FILE_PATHS":     "file.paths",
	"MYKE_ENV_FILE":       "env.file",
	"MYKE_MODULES_DIR":    "modules.dir",
	"MYKE_MODULE_PATHS":   "modules.paths",
	"MYKE_UPDATE_MODULES": "modules.update",
	"MYKE_MODULES":        "modules.preload",
	"MYKE_FILTER":         "filter",
	"MYKE_OUTPUT":         "output.format",
	"MYKE_SHELL":          "shell.executable",
	"MYKE_LOG_LEVEL":      "log.level",
	"MYKE_LOG_FORMAT":     "log.format",
	"MYKE_HTTP_TIMEOUT":   "http.timeout",
	"MYKE_HTTP_TOKEN":     "http.token",
	"MYKE_HTTP_CA_FILE":   "http.ca_file",
}

// Default returns the default configuration.
func Default() *Config {
	log := logger.DefaultConfig()
	return &Config{
		File: FileConfig{
			Name:  loader.DefaultMykefile,
			Paths: loader.DefaultFilePaths(),
		},
		Modules: ModulesConfig{
			Dir:   loader.DefaultModulesDir,
			Paths: loader.DefaultModulePaths(loader.DefaultModulesDir),
		},
		Output: OutputConfig{Format: string(output.FormatTable)},
		Shell:  ShellConfig{Executable: "/bin/sh"},
		Log:    LogConfig{Level: log.Level, Format: log.Format},
		HTTP:   HTTPConfig{Timeout: 30 * time.Second},
	}
}

// defaults flattens Default() into dotted keys for the loader.
func defaults() map[string]any {
	d := Default()
	return map[string]any{
		"file.name":        d.File.Name,
		"file.paths":       d.File.Paths,
		"modules.dir":      d.Modules.Dir,
		"modules.paths":    d.Modules.Paths,
		"output.format":    d.Output.Format,
		"shell.executable": d.Shell.Executable,
		"log.level":        d.Log.Level,
		"log.format":       d.Log.Format,
		"http.timeout":     d.HTTP.Timeout.String(),
	}
}

// Validate checks values that cannot be checked by type.
func (c *Config) Validate() error {
	if _, err := output.ParseFormat(c.Output.Format); err != nil {
		return err
	}
	return nil
}
