// Package gitconfig implements the subset of the Git SCM config format that
// git-profile needs: parsing a single config file into an ordered list of
// (section, subsection, key, value) entries, looking values up by their
// canonical dotted key and rewriting individual keys while preserving the
// original file as much as possible (comments, whitespace, section order).
//
// The reference for this implementation is
// https://mirrors.edge.kernel.org/pub/software/scm/git/docs/git-config.html
//
// Two scopes are handled, bundled in a Store:
//
//   - `global` - `$XDG_CONFIG_HOME/git/config` or `~/.gitconfig`, read-only,
//     with include and includeIf directives resolved
//   - `local` - `<gitdir>/config`, writable
//
// Unlike git itself all modifications are kept in memory until Write (or
// Store.Flush) is called, so a caller can apply a whole set of changes and
// persist them in a single file write.
package gitconfig
