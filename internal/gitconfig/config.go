package gitconfig

import (
	"bufio"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/gopasspw/gopass/pkg/debug"
)

var (
	keyValueTpl     = "\t%s = %s%s"
	keyTpl          = "\t%s%s"
	reQuotedComment = regexp.MustCompile(`"[^"]*[#;][^"]*"`)
	// "The variable names are case-insensitive, allow only alphanumeric characters and -, and must start with an alphabetic character."
	reValidKey = regexp.MustCompile(`^[a-z]+[a-z0-9-]*$`)
)

// Section identifies one section header as it appeared in the file. Name is
// the top-level section name with its original case, i.e. for a header like
// [Work.user] the Name is "Work.user" and the Subsection is empty, while
// [remote "origin"] yields Name "remote" and Subsection "origin".
type Section struct {
	Name       string
	Subsection string
}

// Entry is a single key-value pair together with the section it was found
// in. Entries keep the order they appeared in the file, which is what the
// profile extractor iterates over.
type Entry struct {
	Section    string
	Subsection string
	Key        string
	Value      string
}

// FQKey returns the canonical dotted key of the entry, e.g. "user.email" or
// "remote.origin.url".
func (e Entry) FQKey() string {
	return CanonicalKey(e.Section, e.Subsection, e.Key)
}

// Config represents a single git configuration file from one scope.
//
// Config handles reading and rewriting a single configuration file while
// attempting to preserve the original formatting (comments, whitespace,
// section order). All mutations happen in memory on the raw text copy;
// nothing is persisted until Write is called.
//
// Config is not thread-safe. git-profile is a single-pass tool, callers must
// provide synchronization if they need any.
type Config struct {
	path     string
	readonly bool // do not allow modifying values (even in memory)
	noWrites bool // do not persist changes to disk (e.g. for tests)
	dirty    bool
	raw      strings.Builder
	vars     map[string][]string
	entries  []Entry
	sections []Section
	branch   string
}

// Path returns the file this config was loaded from (or will be written to).
func (c *Config) Path() string {
	return c.path
}

// IsEmpty returns true if the config has no content loaded.
func (c *Config) IsEmpty() bool {
	if c == nil || c.vars == nil {
		return true
	}

	return c.raw.Len() == 0
}

// Entries returns all key-value pairs in the order they appeared in the
// file, included files last.
func (c *Config) Entries() []Entry {
	return slices.Clone(c.entries)
}

// Sections returns every section header seen in the file, in order. Headers
// appearing multiple times are reported multiple times.
func (c *Config) Sections() []Section {
	return slices.Clone(c.sections)
}

// Get returns the first value of the key.
//
// The key is case-insensitive for section and key names but case-sensitive
// for subsection names (per git-config specification).
func (c *Config) Get(key string) (string, bool) {
	key = canonicalizeKey(key)
	vs, found := c.vars[key]
	if !found || len(vs) < 1 {
		return "", false
	}

	return vs[0], true
}

// GetAll returns all values of the key. Git config allows multiple values
// for the same key, e.g. multiple include paths.
func (c *Config) GetAll(key string) ([]string, bool) {
	key = canonicalizeKey(key)
	vs, found := c.vars[key]
	if !found {
		return nil, false
	}

	return vs, true
}

// IsSet returns true if the key was set in this config, even to an empty
// value.
func (c *Config) IsSet(key string) bool {
	key = canonicalizeKey(key)
	_, present := c.vars[key]

	return present
}

// Set updates or adds a key in the config.
//
// If the key exists its first value is updated in place, otherwise it is
// added to an existing matching section or a new section at the end of the
// file. The change is only applied in memory, call Write to persist it.
func (c *Config) Set(key, value string) error {
	canon := canonicalizeKey(key)
	section, _, subkey := splitKey(canon)
	if canon == "" || section == "" || subkey == "" {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	key = canon

	if c.readonly {
		debug.Log("not modifying a readonly config")

		return nil
	}

	// already present at the same value, nothing to rewrite
	if vs, found := c.vars[key]; found && len(vs) > 0 && vs[0] == value {
		debug.V(1).Log("key %q already has value %q", key, value)

		return nil
	}

	if c.IsSet(key) {
		debug.V(3).Log("updating %q to %q", key, value)
		c.updateValue(key, value)
	} else {
		debug.V(3).Log("inserting %q with %q", key, value)
		c.insertValue(key, value)
	}

	c.reindex()
	c.dirty = true

	return nil
}

// Unset deletes a key from the config. Removing the last key of a section
// removes the section header as well. Unsetting a key that is not present is
// a no-op. The change is only applied in memory, call Write to persist it.
func (c *Config) Unset(key string) error {
	if c.readonly {
		return nil
	}

	key = canonicalizeKey(key)
	if _, present := c.vars[key]; !present {
		return nil
	}

	debug.V(3).Log("removing %q", key)
	c.removeKey(key)

	c.reindex()
	c.dirty = true

	return nil
}

// updateValue replaces the first line defining key with the new value,
// keeping the original key spelling and any trailing comment.
func (c *Config) updateValue(key, value string) {
	lines := c.rawLines()

	var section, subsection string
	var updated bool
	for i, fullLine := range lines {
		if updated {
			break
		}

		line := strings.TrimSpace(fullLine)
		if isComment(line) {
			continue
		}
		if strings.HasPrefix(line, "[") {
			s, subs, skip := parseSectionHeader(line)
			if skip {
				continue
			}
			section, subsection = s, subs

			continue
		}

		k, rest, found := cutKeyValue(line)
		if !found {
			continue
		}
		if CanonicalKey(section, subsection, strings.ToLower(k)) != key {
			continue
		}

		_, comment := splitValueComment(rest)
		lines[i] = formatKeyValue(k, value, comment)
		updated = true
	}

	c.setRaw(lines)
}

// insertValue adds a new key, either right below the header of an existing
// matching section or in a fresh section appended at the end.
func (c *Config) insertValue(key, value string) {
	wSection, wSubsection, wKey := splitKey(key)

	lines := c.rawLines()
	out := make([]string, 0, len(lines)+2)

	var section, subsection string
	var written bool
	for _, fullLine := range lines {
		out = append(out, fullLine)

		if written {
			continue
		}

		line := strings.TrimSpace(fullLine)
		if isComment(line) {
			continue
		}
		if strings.HasPrefix(line, "[") {
			s, subs, skip := parseSectionHeader(line)
			if skip {
				continue
			}
			section, subsection = s, subs
		}

		if !strings.EqualFold(section, wSection) || subsection != wSubsection {
			continue
		}

		out = append(out, formatKeyValue(wKey, value, ""))
		written = true
	}

	// no matching section, append a new one at the end
	if !written {
		header := fmt.Sprintf("[%s]", wSection)
		if wSubsection != "" {
			header = fmt.Sprintf("[%s %q]", wSection, wSubsection)
		}
		out = append(out, header, formatKeyValue(wKey, value, ""))
	}

	c.setRaw(out)
}

// removeKey drops every line defining key. A section that ends up with
// nothing but blank lines is dropped entirely, header included. Sections the
// removal did not touch are never altered.
func (c *Config) removeKey(key string) {
	type block struct {
		header  string
		lines   []string
		removed bool // at least one line was removed from this block
		keeps   bool // non-blank content besides the header remains
	}

	var section, subsection string
	cur := &block{}
	blocks := []*block{cur}

	for _, fullLine := range c.rawLines() {
		line := strings.TrimSpace(fullLine)

		if strings.HasPrefix(line, "[") && !isComment(line) {
			if s, subs, skip := parseSectionHeader(line); !skip {
				section, subsection = s, subs
				cur = &block{header: fullLine}
				blocks = append(blocks, cur)

				continue
			}
		}

		if !isComment(line) {
			if k, _, found := cutKeyValue(line); found {
				if CanonicalKey(section, subsection, strings.ToLower(k)) == key {
					cur.removed = true

					continue
				}
			}
		}

		cur.lines = append(cur.lines, fullLine)
		if line != "" {
			cur.keeps = true
		}
	}

	out := make([]string, 0, 128)
	for _, b := range blocks {
		if b.header != "" && b.removed && !b.keeps {
			// the removal emptied this section
			continue
		}
		if b.header != "" {
			out = append(out, b.header)
		}
		out = append(out, b.lines...)
	}

	c.setRaw(out)
}

func (c *Config) rawLines() []string {
	raw := strings.TrimSuffix(c.raw.String(), "\n")
	if raw == "" {
		return nil
	}

	return strings.Split(raw, "\n")
}

func (c *Config) setRaw(lines []string) {
	c.raw = strings.Builder{}
	if len(lines) == 0 {
		return
	}
	c.raw.WriteString(strings.Join(lines, "\n"))
	c.raw.WriteString("\n")
}

// reindex rebuilds vars, entries and sections from the raw copy after a
// mutation. The files involved are tiny, a full re-parse keeps the three
// views consistent without bookkeeping.
func (c *Config) reindex() {
	nc := ParseConfig(strings.NewReader(c.raw.String()))
	c.vars = nc.vars
	c.entries = nc.entries
	c.sections = nc.sections
}

// Write persists the config to disk if it was modified. Unmodified configs
// and configs without a path are left alone.
func (c *Config) Write() error {
	if !c.dirty {
		debug.V(1).Log("config %q unchanged, not writing", c.path)

		return nil
	}
	if c.noWrites || c.path == "" {
		debug.V(1).Log("not writing changes to disk (noWrites %t, path %q)", c.noWrites, c.path)

		return nil
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0o700); err != nil {
		return fmt.Errorf("%w %q for %q: %s", ErrCreateConfigDir, filepath.Dir(c.path), c.path, err)
	}

	if err := os.WriteFile(c.path, []byte(c.raw.String()), 0o600); err != nil {
		return fmt.Errorf("%w to %s: %s", ErrWriteConfig, c.path, err)
	}

	debug.V(1).Log("wrote config to %s", c.path)
	c.dirty = false

	return nil
}

// formatKeyValue renders one key-value line. The value is escaped and, where
// needed, quoted so that re-parsing the line yields it unchanged.
func formatKeyValue(key, value, comment string) string {
	value = escapeValue(value)
	if value == "" {
		return fmt.Sprintf(keyTpl, key, comment)
	}

	return fmt.Sprintf(keyValueTpl, key, value, comment)
}

func parseSectionHeader(line string) (section, subsection string, skip bool) { //nolint:nonamedreturns
	line = strings.Trim(line, "[]")
	if line == "" {
		return "", "", true
	}
	wsp := strings.Index(line, " ")
	if wsp < 0 {
		return line, "", false
	}

	section = line[:wsp]
	subsection = line[wsp+1:]
	subsection = strings.ReplaceAll(subsection, "\\", "")
	subsection = strings.TrimPrefix(subsection, "\"")
	subsection = strings.TrimSuffix(subsection, "\"")

	return section, subsection, false
}

func isComment(line string) bool {
	return strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";")
}

// cutKeyValue splits a trimmed config line into key and the raw remainder
// after the '='. Bare keys (boolean shorthand) are returned with an empty
// remainder. The key is validated but not lowercased.
func cutKeyValue(line string) (string, string, bool) {
	if line == "" || strings.HasPrefix(line, "[") {
		return "", "", false
	}

	k, v, found := strings.Cut(line, "=")
	if !found {
		// bare boolean
		v = ""
	}

	k = strings.TrimSpace(k)
	v = strings.TrimSpace(v)
	if !reValidKey.MatchString(strings.ToLower(k)) {
		return "", "", false
	}

	return k, v, true
}

// ParseConfig will try to parse a gitconfig from the given io.Reader. It
// never fails, invalid lines are silently skipped. The raw input is retained
// so the file can be reproduced almost exactly.
func ParseConfig(r io.Reader) *Config {
	c := &Config{
		vars: make(map[string][]string, 42),
	}

	s := bufio.NewScanner(r)

	var section, subsection string
	for s.Scan() {
		fullLine := s.Text()
		c.raw.WriteString(fullLine)
		c.raw.WriteString("\n")

		line := strings.TrimSpace(fullLine)
		if isComment(line) {
			continue
		}

		if strings.HasPrefix(line, "[") {
			sec, subs, skip := parseSectionHeader(line)
			if skip {
				continue
			}
			section, subsection = sec, subs
			c.sections = append(c.sections, Section{Name: section, Subsection: subsection})

			continue
		}

		if section == "" {
			// key-value pairs before the first section header are invalid
			debug.V(3).Log("skipping line outside of any section: %q", line)

			continue
		}

		k, rest, found := cutKeyValue(line)
		if !found {
			debug.V(3).Log("no valid KV-pair on line: %q", line)

			continue
		}

		// "Whitespace characters surrounding name, = and value are discarded."
		// https://git-scm.com/docs/git-config#_syntax
		value, _ := splitValueComment(rest)
		value = unescapeValue(value)

		e := Entry{
			Section:    section,
			Subsection: subsection,
			Key:        strings.ToLower(k),
			Value:      value,
		}
		c.entries = append(c.entries, e)
		c.vars[e.FQKey()] = append(c.vars[e.FQKey()], value)
	}

	return c
}

// LoadConfig tries to load a gitconfig from the given path.
func LoadConfig(fn string) (*Config, error) {
	fh, err := os.Open(fn)
	if err != nil {
		return nil, err
	}
	defer fh.Close() //nolint:errcheck

	c := ParseConfig(fh)
	c.path = fn

	return c, nil
}

// NewFromMap allows creating a new preset config from a map. Used in tests.
func NewFromMap(data map[string]string) *Config {
	c := &Config{
		readonly: true,
		vars:     make(map[string][]string, len(data)),
	}

	for k, v := range data {
		c.vars[canonicalizeKey(k)] = []string{v}
	}

	return c
}

// mergeConfigs merges two configs, using the first config as a base and
// extending its vars, entries and sections with the latter. The raw copy
// stays that of the base config: writing the merged config back must not
// flatten included files into the including one.
func mergeConfigs(base, extension *Config) *Config {
	merged := &Config{
		path:     base.path,
		readonly: base.readonly,
		noWrites: base.noWrites,
		branch:   base.branch,
		vars:     make(map[string][]string, len(base.vars)+len(extension.vars)),
	}
	merged.raw.WriteString(base.raw.String())

	maps.Copy(merged.vars, base.vars)
	for k, vs := range extension.vars {
		_, existing := merged.vars[k]
		if !existing {
			merged.vars[k] = []string{}
		}
		merged.vars[k] = append(merged.vars[k], vs...)
	}

	merged.entries = append(slices.Clone(base.entries), extension.entries...)
	merged.sections = append(slices.Clone(base.sections), extension.sections...)

	return merged
}
