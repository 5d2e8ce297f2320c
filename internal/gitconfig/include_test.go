package gitconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigWithIncludes(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("Skipping test on windows")
	}

	td := t.TempDir()
	fn := filepath.Join(td, "config")
	require.NoError(t, os.WriteFile(fn, []byte(`[user]
	name = Jane Doe
[include]
	path = work.config
`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(td, "work.config"), []byte(`[Work.user]
	email = jane@work.example
`), 0o600))

	cfg, err := LoadConfigWithIncludes(fn, "")
	require.NoError(t, err)

	v, ok := cfg.Get("work.user.email")
	assert.True(t, ok)
	assert.Equal(t, "jane@work.example", v)

	// entries from included files come after the including file's
	entries := cfg.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "Work.user", entries[2].Section)
}

func TestLoadConfigWithNestedIncludes(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("Skipping test on windows")
	}

	td := t.TempDir()
	fn := filepath.Join(td, "config")
	require.NoError(t, os.WriteFile(fn, []byte(`[core]
	int = 7
[include]
	path = foo.config
`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(td, "foo.config"), []byte(`[core]
	int = 8
[include]
	path = bar.config
	path = config
`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(td, "bar.config"), []byte(`[core]
	int = 9
`), 0o600))

	// the circular include of "config" itself must be ignored
	cfg, err := LoadConfigWithIncludes(fn, "")
	require.NoError(t, err)

	vs, ok := cfg.GetAll("core.int")
	assert.True(t, ok)
	assert.Equal(t, []string{"7", "8", "9"}, vs)
}

func TestLoadConfigSkipsMissingInclude(t *testing.T) {
	t.Parallel()

	td := t.TempDir()
	fn := filepath.Join(td, "config")
	require.NoError(t, os.WriteFile(fn, []byte(`[user]
	name = Jane Doe
[include]
	path = missing.config
`), 0o600))

	cfg, err := LoadConfigWithIncludes(fn, "")
	require.NoError(t, err)

	v, ok := cfg.Get("user.name")
	assert.True(t, ok)
	assert.Equal(t, "Jane Doe", v)
}

func TestOnbranchInclude(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("Skipping test on windows")
	}

	td := t.TempDir()
	gitDir := filepath.Join(td, "repo", ".git")
	require.NoError(t, os.MkdirAll(gitDir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(gitDir, "HEAD"), []byte("ref: refs/heads/feat/login\n"), 0o600))

	fn := filepath.Join(td, "config")
	require.NoError(t, os.WriteFile(fn, []byte(`[user]
	name = Jane Doe
[includeIf "onbranch:feat/*"]
	path = feature.config
[includeIf "onbranch:main"]
	path = main.config
`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(td, "feature.config"), []byte(`[core]
	flag = feature
`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(td, "main.config"), []byte(`[core]
	flag = main
`), 0o600))

	cfg, err := LoadConfigWithIncludes(fn, gitDir)
	require.NoError(t, err)

	v, ok := cfg.Get("core.flag")
	assert.True(t, ok)
	assert.Equal(t, "feature", v)
}

func TestGitdirInclude(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("Skipping test on windows")
	}

	td := t.TempDir()
	gitDir := filepath.Join(td, "group", "repo", ".git")
	require.NoError(t, os.MkdirAll(gitDir, 0o700))

	fn := filepath.Join(td, "config")
	require.NoError(t, os.WriteFile(fn, []byte(fmt.Sprintf(`[includeIf "gitdir:%s/"]
	path = group.config
`, filepath.Join(td, "group"))), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(td, "group.config"), []byte(`[core]
	flag = group
`), 0o600))

	cfg, err := LoadConfigWithIncludes(fn, gitDir)
	require.NoError(t, err)

	v, ok := cfg.Get("core.flag")
	assert.True(t, ok)
	assert.Equal(t, "group", v)
}

func TestMatchIncludeCondition(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		cond    string
		workdir string
		branch  string
		want    bool
	}{
		{cond: "gitdir:/home/user/work/", workdir: "/home/user/work/proj", want: true},
		{cond: "gitdir:/home/user/work", workdir: "/home/user/work", want: true},
		{cond: "gitdir:/home/user/work", workdir: "/home/user/workbench", want: false},
		{cond: "gitdir/i:/Home/User/Work/", workdir: "/home/user/work/proj", want: true},
		{cond: "onbranch:main", branch: "main", want: true},
		{cond: "onbranch:feat/*", branch: "feat/x", want: true},
		{cond: "onbranch:feat/*", branch: "", want: false},
		{cond: "hostname:x", want: false},
	} {
		assert.Equal(t, tc.want, matchIncludeCondition(tc.cond, tc.workdir, tc.branch), tc.cond)
	}
}
