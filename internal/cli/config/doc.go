// Package config defines the myke CLI configuration.
//
//   - config.go: Config struct, defaults and the environment mapping
//   - loader.go: layered loading through confloader
//
// Configuration includes:
//
//   - Mykefile name and search paths
//   - Module directory, search paths and preloaded modules
//   - Task filter and listing format
//   - Shell executable, logging and HTTP settings
package config
