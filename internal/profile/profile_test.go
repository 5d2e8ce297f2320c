package profile

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nrosenstein/git-profile/internal/gitconfig"
)

func parse(t *testing.T, in string) *gitconfig.Config {
	t.Helper()

	return gitconfig.ParseConfig(strings.NewReader(in))
}

func TestExtractProfiles(t *testing.T) {
	t.Parallel()

	global := parse(t, `[user]
	name = Jane Doe
[Work.user]
	email = jane@work.example
	signingkey = ABCD1234
[Personal.user]
	email = jane@home.example
[core]
	editor = vim
`)

	table := Extract(global)

	work, ok := table.Lookup("Work")
	require.True(t, ok)
	assert.Equal(t, "Work", work.Name)
	assert.Equal(t, []Override{
		{Key: "user.email", Value: "jane@work.example"},
		{Key: "user.signingkey", Value: "ABCD1234"},
	}, work.Overrides)

	personal, ok := table.Lookup("Personal")
	require.True(t, ok)
	assert.Equal(t, []Override{
		{Key: "user.email", Value: "jane@home.example"},
	}, personal.Overrides)

	// unprefixed sections belong to no profile
	_, ok = table.Lookup("user")
	assert.False(t, ok)
}

func TestExtractNamesSortedWithDefault(t *testing.T) {
	t.Parallel()

	global := parse(t, `[Work.user]
	email = jane@work.example
[Personal.user]
	email = jane@home.example
`)

	table := Extract(global)
	assert.Equal(t, []string{Default, "Personal", "Work"}, table.Names())
}

func TestExtractNoProfiles(t *testing.T) {
	t.Parallel()

	table := Extract(parse(t, `[user]
	name = Jane Doe
`))

	assert.Equal(t, []string{Default}, table.Names())
}

func TestExtractLookupIsCaseInsensitive(t *testing.T) {
	t.Parallel()

	global := parse(t, `[Work.user]
	email = jane@work.example
[work.core]
	editor = ed
`)

	table := Extract(global)

	// both sections feed the same profile, spelled as first seen
	p, ok := table.Lookup("WORK")
	require.True(t, ok)
	assert.Equal(t, "Work", p.Name)
	assert.Len(t, p.Overrides, 2)

	assert.Equal(t, []string{Default, "Work"}, table.Names())
}

func TestExtractPlainSectionShadowsPrefix(t *testing.T) {
	t.Parallel()

	// "core" is in use as a plain section name, so [core.foo] is plain
	// configuration, not a profile named "core"
	global := parse(t, `[core]
	editor = vim
[core.foo]
	bar = baz
`)

	table := Extract(global)
	_, ok := table.Lookup("core")
	assert.False(t, ok)
	assert.Equal(t, []string{Default}, table.Names())
}

func TestExtractDottedSectionWithoutPlainBase(t *testing.T) {
	t.Parallel()

	// Known edge case: the deprecated [section.subsection] syntax is
	// indistinguishable from a profile-prefixed section. Without a plain
	// [branch] section in the global config, [branch.master] is picked up
	// as a profile named "branch".
	global := parse(t, `[branch.master]
	remote = origin
`)

	table := Extract(global)
	p, ok := table.Lookup("branch")
	require.True(t, ok)
	assert.Equal(t, []Override{{Key: "master.remote", Value: "origin"}}, p.Overrides)
}

func TestExtractSubsectionedProfileSection(t *testing.T) {
	t.Parallel()

	global := parse(t, `[Work.remote "origin"]
	url = git@work.example:proj.git
`)

	table := Extract(global)
	p, ok := table.Lookup("Work")
	require.True(t, ok)
	assert.Equal(t, []Override{{Key: "remote.origin.url", Value: "git@work.example:proj.git"}}, p.Overrides)
}

func TestExtractDefaultPrefixIsReserved(t *testing.T) {
	t.Parallel()

	global := parse(t, `[default.user]
	email = jane@home.example
`)

	table := Extract(global)
	assert.Equal(t, []string{Default}, table.Names())

	p, ok := table.Lookup(Default)
	require.True(t, ok)
	assert.Empty(t, p.Overrides)
}

func TestExtractRepeatedKeyKeepsLastValue(t *testing.T) {
	t.Parallel()

	global := parse(t, `[Work.user]
	email = old@work.example
	email = new@work.example
`)

	table := Extract(global)
	p, ok := table.Lookup("Work")
	require.True(t, ok)
	assert.Equal(t, []Override{{Key: "user.email", Value: "new@work.example"}}, p.Overrides)
}

func TestLookupDefaultAlwaysPresent(t *testing.T) {
	t.Parallel()

	table := Extract(parse(t, ""))

	p, ok := table.Lookup("DEFAULT")
	require.True(t, ok)
	assert.Equal(t, Default, p.Name)
	assert.Empty(t, p.Overrides)
}
