package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/yndnr/myke/internal/core/domain"
	"github.com/yndnr/myke/internal/core/service"
)

// DefaultModulesDir is where remote modules are downloaded.
const DefaultModulesDir = "tasks"

// DefaultModulePaths returns the directories searched for dotted module
// names: the working directory, the modules directory and ~/.myke/modules.
func DefaultModulePaths(modulesDir string) []string {
	paths := []string{".", modulesDir}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".myke", "modules"))
	}
	return paths
}

// ModuleProvider registers the tasks of a module compiled into the binary.
type ModuleProvider func(reg *service.Registry) error

var (
	providersMu sync.RWMutex
	providers   = make(map[string]ModuleProvider)
)

// RegisterModule makes a Go module importable by name. It panics if
// called twice for the same name or with a nil provider.
func RegisterModule(name string, p ModuleProvider) {
	providersMu.Lock()
	defer providersMu.Unlock()
	if p == nil {
		panic("loader: RegisterModule provider is nil")
	}
	if _, dup := providers[name]; dup {
		panic("loader: RegisterModule called twice for " + name)
	}
	providers[name] = p
}

// Modules returns the names of the registered Go modules.
func Modules() []string {
	providersMu.RLock()
	defer providersMu.RUnlock()
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lookupProvider(name string) (ModuleProvider, bool) {
	providersMu.RLock()
	defer providersMu.RUnlock()
	p, ok := providers[name]
	return p, ok
}

// ImportModule imports a module by URL, Go provider name or dotted name.
func (l *Loader) ImportModule(ctx context.Context, name string) error {
	if isURL(name) {
		return l.InstallModule(ctx, name)
	}

	if p, ok := lookupProvider(name); ok {
		key := "module:" + name
		if err, ok := l.imported[key]; ok {
			return err
		}
		mark := l.registry.Mark()
		err := p(l.registry)
		l.imported[key] = err
		if err != nil {
			return err
		}
		if l.registry.Since(mark) == 0 {
			return domain.ErrNoTasksFound.WithDetails(name)
		}
		return nil
	}

	path, ok := l.resolveModule(name)
	if !ok {
		return domain.ErrModuleNotFound.WithDetailsf("%s (searched %s)", name, strings.Join(l.modulePaths, ", "))
	}
	return l.ImportFile(ctx, path)
}

// ImportModules imports each name in order.
func (l *Loader) ImportModules(ctx context.Context, names ...string) error {
	for _, name := range names {
		if err := l.ImportModule(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

// resolveModule maps a dotted name to a file under the module paths.
// "ci.docker" tries ci/docker.lua, ci/docker.yaml, ci/docker.yml and
// ci/docker/Mykefile in each path. A name that is an existing file path
// resolves to itself.
func (l *Loader) resolveModule(name string) (string, bool) {
	if info, err := os.Stat(name); err == nil && !info.IsDir() {
		return name, true
	}

	rel := filepath.FromSlash(strings.ReplaceAll(name, ".", "/"))
	candidates := []string{
		rel + ".lua",
		rel + ".yaml",
		rel + ".yml",
		filepath.Join(rel, DefaultMykefile),
	}
	for _, dir := range l.modulePaths {
		for _, c := range candidates {
			p := filepath.Join(dir, c)
			if info, err := os.Stat(p); err == nil && !info.IsDir() {
				return p, true
			}
		}
	}
	return "", false
}

// InstallModule downloads a Mykefile from rawURL into the modules
// directory and imports it. An existing download is reused unless
// updates are enabled. A fresh download that fails to load or defines
// no tasks is removed again.
func (l *Loader) InstallModule(ctx context.Context, rawURL string) error {
	name, err := moduleFileName(rawURL)
	if err != nil {
		return err
	}
	dest := filepath.Join(l.modulesDir, name)

	_, statErr := os.Stat(dest)
	exists := statErr == nil
	if statErr != nil && !errors.Is(statErr, fs.ErrNotExist) {
		return statErr
	}

	downloaded := false
	if !exists || l.update {
		l.logger.Info("downloading module", "url", rawURL, "dest", dest)
		if _, err := l.fetcher.Download(ctx, rawURL, dest); err != nil {
			return err
		}
		downloaded = true
	}

	if err := l.ImportFile(ctx, dest); err != nil {
		if !downloaded {
			return err
		}
		if rmErr := os.Remove(dest); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			l.logger.Warn("removing broken module", "path", dest, "error", rmErr)
		}
		return domain.ErrModuleNotFound.WithDetails(rawURL).WithCause(err)
	}
	return nil
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "https://") || strings.HasPrefix(s, "http://")
}

// moduleFileName derives the local file name of a remote module from
// the last path element of its URL.
func moduleFileName(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", domain.ErrInvalidArgument.WithDetails(rawURL).WithCause(err)
	}
	base := path.Base(u.Path)
	if base == "/" || base == "." || base == "" {
		return "", domain.ErrInvalidArgument.WithDetails(fmt.Sprintf("%s has no file name", rawURL))
	}
	return base, nil
}
