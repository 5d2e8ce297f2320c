package profile

import (
	"fmt"
	"strings"

	"github.com/nrosenstein/git-profile/internal/gitconfig"
)

// Render formats the change set as a unified-diff-like report. Changes are
// grouped under their section header in order of first appearance, one line
// per removed or added value; changed keys emit both.
//
//	[user]
//	- email = me@home.example
//	+ email = me@work.example
func (cs ChangeSet) Render() string {
	if len(cs) == 0 {
		return ""
	}

	headers := make([]string, 0, 4)
	groups := make(map[string]ChangeSet, 4)
	for _, ch := range cs {
		h := sectionHeader(ch.Key)
		if _, seen := groups[h]; !seen {
			headers = append(headers, h)
		}
		groups[h] = append(groups[h], ch)
	}

	var b strings.Builder
	for _, h := range headers {
		b.WriteString(h)
		b.WriteString("\n")
		for _, ch := range groups[h] {
			_, _, key := gitconfig.SplitKey(ch.Key)
			switch ch.Kind {
			case Removed:
				fmt.Fprintf(&b, "- %s = %s\n", key, ch.Old)
			case Added:
				fmt.Fprintf(&b, "+ %s = %s\n", key, ch.New)
			case Changed:
				fmt.Fprintf(&b, "- %s = %s\n", key, ch.Old)
				fmt.Fprintf(&b, "+ %s = %s\n", key, ch.New)
			}
		}
	}

	return b.String()
}

func sectionHeader(key string) string {
	section, subsection, _ := gitconfig.SplitKey(key)
	if subsection != "" {
		return fmt.Sprintf("[%s %q]", section, subsection)
	}

	return fmt.Sprintf("[%s]", section)
}
