package gitconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gopasspw/gopass/pkg/appdir"
	"github.com/gopasspw/gopass/pkg/debug"
)

// GlobalConfigFile returns the location of the per-user ("global") git
// config. $XDG_CONFIG_HOME/git/config is preferred if it exists, otherwise
// the classic ~/.gitconfig is used.
func GlobalConfigFile() string {
	xdg := filepath.Join(appdir.New("git").UserConfig(), "config")
	if _, err := os.Stat(xdg); err == nil {
		debug.V(1).Log("using XDG global config at %s", xdg)

		return xdg
	}

	return filepath.Join(appdir.UserHome(), ".gitconfig")
}

// FindGitDir walks up from dir to the git dir of the enclosing repository.
// Both a .git directory and a .git file with a "gitdir:" redirect (worktrees,
// submodules) are recognized. Returns ErrNoRepository if no parent of dir is
// a repository.
func FindGitDir(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	for {
		gitDir := filepath.Join(dir, ".git")
		if fi, err := os.Stat(gitDir); err == nil {
			if fi.IsDir() {
				return gitDir, nil
			}
			if p := resolveGitFile(gitDir); p != "" {
				debug.V(1).Log("resolved gitdir file %s to %s", gitDir, p)

				return p, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%w (or any parent up to /)", ErrNoRepository)
		}
		dir = parent
	}
}

// resolveGitFile reads a "gitdir: <path>" redirect from a .git file.
// Relative paths are resolved against the directory containing the file.
func resolveGitFile(fn string) string {
	content, err := os.ReadFile(fn)
	if err != nil {
		return ""
	}

	p, found := strings.CutPrefix(strings.TrimSpace(string(content)), "gitdir:")
	if !found {
		return ""
	}
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}

	if !filepath.IsAbs(p) {
		p = filepath.Join(filepath.Dir(fn), p)
	}

	return filepath.Clean(p)
}

// readGitBranch returns the branch HEAD points at, or an empty string for a
// detached HEAD. Used for includeIf onbranch conditions.
func readGitBranch(gitDir string) string {
	if gitDir == "" {
		return ""
	}

	content, err := os.ReadFile(filepath.Join(gitDir, "HEAD"))
	if err != nil {
		return ""
	}

	// content is like "ref: refs/heads/main"
	if branch, found := strings.CutPrefix(string(content), "ref: refs/heads/"); found {
		return strings.TrimSpace(branch)
	}

	return ""
}
