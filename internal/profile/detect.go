package profile

import (
	"github.com/gopasspw/gopass/pkg/debug"

	"github.com/nrosenstein/git-profile/internal/gitconfig"
)

// Detect returns the name of the profile currently applied to the local
// config: the first profile, in global-config order, whose every override is
// present with an equal value. If no named profile fully matches, Default is
// reported.
//
// Should two profiles have identical override sets the first one defined in
// the global config wins. That is the documented tie-break, not an error.
func (t *Table) Detect(local *gitconfig.Config) string {
	for _, p := range t.order {
		if len(p.Overrides) == 0 {
			continue
		}
		if p.matches(local) {
			debug.V(1).Log("profile %q is active", p.Name)

			return p.Name
		}
	}

	return Default
}

func (p *Profile) matches(local *gitconfig.Config) bool {
	for _, o := range p.Overrides {
		v, found := local.Get(o.Key)
		if !found || v != o.Value {
			return false
		}
	}

	return true
}
