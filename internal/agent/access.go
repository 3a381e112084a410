package agent

import (
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/fpt/folio/pkg/bridge"
)

// roots is the set of folders the UI has opened or listed during this
// agent's lifetime.
type roots struct {
	mu    sync.RWMutex
	paths []string
}

func (r *roots) add(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if slices.Contains(r.paths, path) {
		return
	}
	r.paths = append(r.paths, path)
}

// forget drops path and every root below it.
func (r *roots) forget(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = slices.DeleteFunc(r.paths, func(p string) bool {
		return within(path, p)
	})
}

func (r *roots) list() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.paths)
}

func (r *roots) contains(path string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, root := range r.paths {
		if within(root, path) {
			return true
		}
	}
	return false
}

// within reports whether path is dir or lies below it.
func within(dir, path string) bool {
	if path == dir {
		return true
	}
	if dir == string(filepath.Separator) {
		return strings.HasPrefix(path, dir)
	}
	return strings.HasPrefix(path, dir+string(filepath.Separator))
}

// checkRoot refuses paths outside every known root when root restriction
// is on.
func (a *Agent) checkRoot(paths ...string) error {
	if !a.access.RestrictToRoots {
		return nil
	}
	for _, p := range paths {
		if !a.roots.contains(p) {
			return bridge.InvalidTarget("%s is outside every opened folder", p)
		}
	}
	return nil
}

// checkBlacklist refuses files matching a blacklisted pattern. Patterns
// match the base name, the full path, or for patterns with separators the
// same number of trailing path elements.
func (a *Agent) checkBlacklist(path string) error {
	name := filepath.Base(path)
	for _, pattern := range a.access.BlacklistedFiles {
		if matchBlacklist(pattern, name, path) {
			return bridge.Permission("access to %s is denied: matches blacklisted pattern %s", path, pattern)
		}
	}
	return nil
}

func matchBlacklist(pattern, name, path string) bool {
	if ok, _ := filepath.Match(pattern, name); ok {
		return true
	}
	if ok, _ := filepath.Match(pattern, path); ok {
		return true
	}
	depth := strings.Count(pattern, "/") + 1
	if depth < 2 {
		return false
	}
	parts := strings.Split(filepath.ToSlash(path), "/")
	if len(parts) < depth {
		return false
	}
	tail := strings.Join(parts[len(parts)-depth:], "/")
	ok, _ := filepath.Match(filepath.FromSlash(pattern), filepath.FromSlash(tail))
	return ok
}
