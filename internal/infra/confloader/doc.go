// Package confloader loads layered configuration and watches files.
//
//   - loader.go: koanf-backed Loader (defaults, YAML file, mapped
//     environment variables, flag overrides)
//   - provider.go: in-memory koanf provider for defaults and flags
//   - watcher.go: debounced fsnotify watcher
//
// Priority (highest to lowest):
//
//  1. Command-line flags
//  2. Environment variables
//  3. Configuration file
//  4. Default values
package confloader
