package loader

import (
	"os"
	"path/filepath"
	"strings"
)

// DefaultMykefile is the file name looked up when none is given.
const DefaultMykefile = "Mykefile"

// DefaultFilePaths returns the directories searched for the Mykefile:
// the home directory, then the working directory.
func DefaultFilePaths() []string {
	var paths []string
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, home)
	}
	if wd, err := os.Getwd(); err == nil {
		paths = append(paths, wd)
	}
	return paths
}

// Locate returns the Mykefiles to import for name. A name with a
// directory component is returned as is, existing or not; a bare name
// is joined with every search path where it exists.
func Locate(name string, searchPaths []string) []string {
	if name == "" {
		name = DefaultMykefile
	}
	if strings.ContainsRune(name, '/') || strings.ContainsRune(name, filepath.Separator) {
		return []string{name}
	}

	var found []string
	seen := map[string]bool{}
	for _, dir := range searchPaths {
		candidate := filepath.Join(dir, name)
		abs, err := filepath.Abs(candidate)
		if err != nil || seen[abs] {
			continue
		}
		if info, err := os.Stat(abs); err == nil && !info.IsDir() {
			seen[abs] = true
			found = append(found, candidate)
		}
	}
	return found
}
