package gitconfig

import (
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gopasspw/gopass/pkg/debug"
)

// LoadConfigWithIncludes loads the config at fn and resolves its include and
// includeIf directives, merging every included file into the result. The
// gitDir (may be empty) provides the repository context for includeIf
// conditions: the workdir for gitdir patterns and HEAD for onbranch ones.
//
// Includes that cannot be read are skipped like git does, not treated as
// fatal.
func LoadConfigWithIncludes(fn, gitDir string) (*Config, error) {
	c, err := LoadConfig(fn)
	if err != nil {
		return nil, err
	}
	c.branch = readGitBranch(gitDir)

	// gitdir patterns are matched against the worktree rather than the git
	// dir itself. Patterns people actually write ("~/work/", a group of
	// checkouts) target the worktree path; matching the .git dir would
	// require every pattern to carry the /.git suffix.
	workdir := ""
	if gitDir != "" {
		workdir = filepath.Dir(gitDir)
	}

	loaded := map[string]struct{}{
		fn: {},
	}

	// this is using a slice as a queue because an included config may
	// include further configs, which are loaded in the order found
	queue := includePaths(c, workdir, c.path)
	for len(queue) > 0 {
		head := queue[0]
		queue = queue[1:]

		// avoid infinite loops on circular includes
		if _, done := loaded[head]; done {
			debug.V(3).Log("skipping already loaded config %q", head)

			continue
		}
		loaded[head] = struct{}{}

		nc, err := LoadConfig(head)
		if err != nil {
			debug.V(1).Log("skipping unreadable include %q: %s", head, err)

			continue
		}
		nc.branch = c.branch

		debug.V(2).Log("merging included config %q", head)
		c = mergeConfigs(c, nc)

		queue = append(queue, includePaths(nc, workdir, nc.path)...)
	}

	return c, nil
}

func includePaths(c *Config, workdir, baseConfig string) []string {
	paths, _ := c.GetAll("include.path")

	for _, e := range c.entries {
		// conditional includes have the form includeIf.<condition>.path,
		// e.g. includeIf."gitdir:/path/to/group/".path
		// see https://git-scm.com/docs/git-config#_conditional_includes
		if !strings.EqualFold(e.Section, "includeif") || e.Subsection == "" || e.Key != "path" {
			continue
		}
		if matchIncludeCondition(e.Subsection, workdir, c.branch) {
			paths = append(paths, e.Value)
		}
	}

	return absoluteIncludePaths(paths, baseConfig)
}

// matchIncludeCondition evaluates a single includeIf condition. Supported
// are gitdir:, gitdir/i: and onbranch:.
func matchIncludeCondition(cond, workdir, branch string) bool {
	if pattern, found := strings.CutPrefix(cond, "onbranch:"); found {
		if branch == "" {
			return false
		}
		match, err := globMatch(pattern, branch)
		if err != nil {
			debug.V(1).Log("invalid glob pattern in onbranch: %s", err)

			return false
		}

		return match
	}

	fold := false
	dir, found := strings.CutPrefix(cond, "gitdir:")
	if !found {
		dir, found = strings.CutPrefix(cond, "gitdir/i:")
		fold = true
	}
	if !found {
		debug.V(3).Log("skipping unsupported include condition %q", cond)

		return false
	}

	if equalPath(dir, workdir, fold) {
		return true
	}

	return prefixMatch(workdir, dir, fold)
}

func equalPath(a, b string, fold bool) bool {
	a = strings.TrimSuffix(a, "/")
	b = strings.TrimSuffix(b, "/")
	if fold {
		return strings.EqualFold(a, b)
	}

	return a == b
}

// prefixMatch reports whether path is inside prefix. The prefix must end
// with a slash, matching git's handling of gitdir patterns.
func prefixMatch(path, prefix string, fold bool) bool {
	if !strings.HasSuffix(prefix, "/") {
		return false
	}
	if fold {
		return strings.HasPrefix(strings.ToLower(path+"/"), strings.ToLower(prefix))
	}

	return strings.HasPrefix(path+"/", prefix)
}

// absoluteIncludePaths converts paths of included configs ('/absolute',
// '~/from/home', 'relative/to/base') to absolute paths.
func absoluteIncludePaths(nestedConfigs []string, baseConfig string) []string {
	absolutePaths := make([]string, 0, len(nestedConfigs))
	for _, nc := range nestedConfigs {
		if path.IsAbs(nc) {
			absolutePaths = append(absolutePaths, nc)

			continue
		}
		if strings.HasPrefix(nc, "~/") {
			home, exists := os.LookupEnv("HOME")
			if !exists {
				debug.V(3).Log("cannot resolve home directory, skipping %q", nc)

				continue
			}
			absolutePaths = append(absolutePaths, path.Join(home, strings.TrimPrefix(nc, "~/")))

			continue
		}
		absolutePaths = append(absolutePaths, path.Clean(path.Join(path.Dir(baseConfig), nc)))
	}

	return absolutePaths
}
