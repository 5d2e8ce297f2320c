// Package profile implements the profile model of git-profile: named sets of
// config overrides derived from specially prefixed sections in the global
// git config. A global section [Work.user] contributes its keys to the
// profile "Work" with effective section "user". The reserved profile
// "default" is always present and owns no overrides.
//
// Profiles are extracted fresh from the global document on every invocation.
// There is no persistent state: the set of keys the switcher may touch is
// recomputed from the union of all override sets, so switching to "default"
// always restores a local config without any managed keys, no matter which
// profile was applied last or how the file was hand-edited in between.
package profile

import (
	"sort"
	"strings"

	"github.com/gopasspw/gopass/pkg/debug"

	"github.com/nrosenstein/git-profile/internal/gitconfig"
)

// Default is the name of the reserved profile representing the absence of
// any override.
const Default = "default"

// Override is a single key a profile installs in the local config.
type Override struct {
	Key   string // canonical config key, e.g. "user.email"
	Value string
}

// Profile is a named override set. Overrides keep the order they were first
// seen in the global config.
type Profile struct {
	Name      string // as first spelled in the global config
	Overrides []Override
}

func (p *Profile) has(key string) bool {
	for _, o := range p.Overrides {
		if o.Key == key {
			return true
		}
	}

	return false
}

// Table holds every profile discovered in the global config, in the order
// first seen, keyed case-insensitively by name.
type Table struct {
	byName map[string]*Profile
	order  []*Profile
}

// Extract scans the global document's section names and groups all keys
// under a `<Profile>.` prefixed section by profile name.
//
// Only the top-level section name is split, before any quoted subsection: a
// section [remote "origin"] has no prefix, while [Work.remote "origin"]
// contributes remote.origin.* keys to the profile "Work". A prefix that also
// occurs as a plain, undotted section name in the global config is not
// treated as a profile; those dotted sections stay plain configuration.
func Extract(global *gitconfig.Config) *Table {
	t := &Table{
		byName: make(map[string]*Profile, 8),
	}

	plain := make(map[string]struct{}, 16)
	for _, s := range global.Sections() {
		if !strings.Contains(s.Name, ".") {
			plain[strings.ToLower(s.Name)] = struct{}{}
		}
	}

	for _, e := range global.Entries() {
		prefix, base, found := strings.Cut(e.Section, ".")
		if !found || prefix == "" || base == "" {
			continue
		}

		lower := strings.ToLower(prefix)
		if lower == Default {
			// reserved, the default profile owns no overrides
			continue
		}
		if _, inUse := plain[lower]; inUse {
			debug.V(1).Log("section %q shadowed by plain section %q, not a profile", e.Section, prefix)

			continue
		}

		p := t.byName[lower]
		if p == nil {
			p = &Profile{Name: prefix}
			t.byName[lower] = p
			t.order = append(t.order, p)
		}

		key := gitconfig.CanonicalKey(base, e.Subsection, e.Key)
		if key == "" {
			continue
		}
		p.setOverride(key, e.Value)
	}

	debug.Log("extracted %d profiles", len(t.order))

	return t
}

// setOverride records a key for the profile. A key seen twice keeps its
// position but takes the later value, matching how git reads repeated keys.
func (p *Profile) setOverride(key, value string) {
	for i, o := range p.Overrides {
		if o.Key == key {
			p.Overrides[i].Value = value

			return
		}
	}

	p.Overrides = append(p.Overrides, Override{Key: key, Value: value})
}

// Lookup finds a profile by name, case-insensitively. The default profile
// resolves to an empty override set.
func (t *Table) Lookup(name string) (*Profile, bool) {
	lower := strings.ToLower(name)
	if lower == Default {
		return &Profile{Name: Default}, true
	}

	p, ok := t.byName[lower]

	return p, ok
}

// Names returns all profile names including Default, sorted
// case-insensitively.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.order)+1)
	names = append(names, Default)
	for _, p := range t.order {
		names = append(names, p.Name)
	}

	sort.Slice(names, func(i, j int) bool {
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})

	return names
}
