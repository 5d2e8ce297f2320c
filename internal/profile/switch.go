package profile

import (
	"fmt"
	"strings"

	"github.com/gopasspw/gopass/pkg/debug"
	"github.com/gopasspw/gopass/pkg/set"

	"github.com/nrosenstein/git-profile/internal/gitconfig"
)

// Kind classifies a single key-level change performed by a switch.
type Kind int

const (
	// Removed means the key was deleted from the local config.
	Removed Kind = iota
	// Added means the key was not present before.
	Added
	// Changed means the key was present with a different value.
	Changed
)

// Change is one key-level operation performed by Switch. Old is set for
// Removed and Changed, New for Added and Changed.
type Change struct {
	Kind Kind
	Key  string
	Old  string
	New  string
}

// ChangeSet is the ordered list of changes of one switch: removals first,
// then additions and value changes in override-set order.
type ChangeSet []Change

// Switch rewrites the local config so that exactly the target profile's
// overrides are applied and no other profile's remain.
//
// The set of keys considered is the union of every profile's override keys,
// computed from the global config, not from any memory of past switches.
// Every key in that union not owned by the target is removed (emptied
// sections disappear with their last key), then the target's overrides are
// applied. Switching to the same profile twice yields an empty ChangeSet;
// switching to Default removes every managed key.
//
// Keys outside the union are never touched. Returns ErrUnknownProfile
// without modifying anything if target names no known profile.
func (t *Table) Switch(local *gitconfig.Config, target string) (ChangeSet, error) {
	p, ok := t.Lookup(target)
	if !ok {
		return nil, fmt.Errorf("%w: %q (valid names: %s)", ErrUnknownProfile, target, strings.Join(t.Names(), ", "))
	}

	managed := make(map[string]struct{}, 16)
	for _, q := range t.order {
		for _, o := range q.Overrides {
			managed[o.Key] = struct{}{}
		}
	}

	var cs ChangeSet

	for _, key := range set.SortedKeys(managed) {
		if p.has(key) {
			continue
		}
		old, found := local.Get(key)
		if !found {
			continue
		}
		if err := local.Unset(key); err != nil {
			return nil, err
		}
		cs = append(cs, Change{Kind: Removed, Key: key, Old: old})
	}

	for _, o := range p.Overrides {
		old, found := local.Get(o.Key)
		if found && old == o.Value {
			continue
		}
		if err := local.Set(o.Key, o.Value); err != nil {
			return nil, err
		}
		ch := Change{Kind: Added, Key: o.Key, New: o.Value}
		if found {
			ch.Kind = Changed
			ch.Old = old
		}
		cs = append(cs, ch)
	}

	debug.Log("switched to profile %q with %d changes", p.Name, len(cs))

	return cs, nil
}
