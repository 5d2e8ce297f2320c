package gitconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/gopasspw/gopass/pkg/debug"
)

// Store bundles the two config documents git-profile works with: the
// per-user ("global") config that defines the profiles, read-only, and the
// repository-local config the profiles are applied to.
//
// Missing files yield empty documents. The local document keeps its path so
// it can be created on the first Flush.
type Store struct {
	GlobalPath string
	LocalPath  string
	NoWrites   bool // do not persist changes to disk (e.g. for tests)

	gitDir string
	global *Config
	local  *Config
}

// NewStore returns a store for the repository with the given git dir. The
// paths can be overridden before calling Load.
func NewStore(gitDir string) *Store {
	return &Store{
		GlobalPath: GlobalConfigFile(),
		LocalPath:  filepath.Join(gitDir, "config"),
		gitDir:     gitDir,
	}
}

// Load reads both documents from disk. The global config is loaded with
// includes resolved and marked read-only.
func (s *Store) Load() error {
	g, err := LoadConfigWithIncludes(s.GlobalPath, s.gitDir)
	switch {
	case err == nil:
		debug.V(1).Log("loaded global config from %s", s.GlobalPath)
		s.global = g
	case errors.Is(err, fs.ErrNotExist):
		debug.V(1).Log("no global config at %s", s.GlobalPath)
		s.global = &Config{path: s.GlobalPath}
	default:
		return fmt.Errorf("failed to read global config %s: %w", s.GlobalPath, err)
	}
	// the global config defines the profiles, it is never written from here
	s.global.readonly = true

	l, err := LoadConfig(s.LocalPath)
	switch {
	case err == nil:
		debug.V(1).Log("loaded local config from %s", s.LocalPath)
		s.local = l
	case errors.Is(err, fs.ErrNotExist):
		debug.V(1).Log("no local config at %s, will create on write", s.LocalPath)
		s.local = &Config{path: s.LocalPath}
	default:
		return fmt.Errorf("failed to read local config %s: %w", s.LocalPath, err)
	}
	s.local.noWrites = s.NoWrites

	return nil
}

// Global returns the per-user config document.
func (s *Store) Global() *Config {
	return s.global
}

// Local returns the repository-local config document.
func (s *Store) Local() *Config {
	return s.local
}

// Flush persists the local document if it was modified. This is the single
// write of an invocation.
func (s *Store) Flush() error {
	if s.local == nil {
		return nil
	}

	return s.local.Write()
}
