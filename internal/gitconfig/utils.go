package gitconfig

import (
	"strings"

	"github.com/gobwas/glob"
)

// globMatch implements a glob matcher that supports double-asterisk (**) patterns.
func globMatch(pattern, s string) (bool, error) {
	g, err := glob.Compile(pattern, '/')
	if err != nil {
		return false, err
	}

	return g.Match(s), nil
}

// splitKey splits a fully qualified gitconfig key into two or three parts.
// A valid key consists of either a section and a key separated by a dot
// or section, subsection and key, all separated by a dot. Note that
// the subsection might contain dots itself.
//
// Valid examples:
// - core.push
// - insteadof.git@github.com.push
func splitKey(key string) (section, subsection, skey string) { //nolint:nonamedreturns
	n := strings.Index(key, ".")
	if n > 0 {
		section = key[:n]
	}

	if m := strings.LastIndex(key, "."); n != m && m > 0 && len(key) > m+1 {
		subsection = key[n+1 : m]
		skey = key[m+1:]

		return
	}

	skey = key[n+1:]

	return
}

// SplitKey is the exported variant of splitKey, used by the diff reporter to
// group changes by section.
func SplitKey(key string) (string, string, string) {
	return splitKey(key)
}

func joinKey(section, subsection, skey string) string {
	if subsection == "" {
		return section + "." + skey
	}

	return section + "." + subsection + "." + skey
}

// CanonicalKey joins section, subsection and key name into the canonical
// dotted form: section and key name lowercased, subsection case preserved.
func CanonicalKey(section, subsection, skey string) string {
	return canonicalizeKey(joinKey(section, subsection, skey))
}

func canonicalizeKey(key string) string {
	if key == "" {
		// invalid key, return empty string
		return ""
	}

	section, subsection, skey := splitKey(key)
	// "Section names are case-insensitive."
	section = strings.ToLower(section)
	// "Subsection names are case sensitive."
	// "The variable names are case-insensitive."
	skey = strings.ToLower(skey)

	if section == "" || skey == "" {
		// invalid key, return empty string
		return ""
	}

	if subsection == "" {
		return section + "." + skey
	}

	return section + "." + subsection + "." + skey
}

func splitValueComment(rValue string) (string, string) {
	// Trivial case: no comment. Return early, do not alter anything.
	if !strings.ContainsAny(rValue, "#;") {
		// "If value needs to contain leading or trailing whitespace characters, it must be enclosed in double quotation marks (")."
		rValue = trimQuotedPair(rValue)

		return rValue, ""
	}

	// Medium case: comment present, but not quoted.
	if !reQuotedComment.MatchString(rValue) {
		comment := " " + rValue[strings.IndexAny(rValue, "#;"):]
		rValue = rValue[:strings.IndexAny(rValue, "#;")]
		rValue = strings.TrimSpace(rValue)
		rValue = trimQuotedPair(rValue)

		return rValue, comment
	}

	// Hard case: comment present and quoted.
	return parseLineForComment(rValue)
}

// trimQuotedPair removes one pair of surrounding double quotes. Unlike a
// blanket strings.Trim it leaves an escaped quote at the end of the value
// alone, so escaped values survive the round trip.
func trimQuotedPair(s string) string {
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) && !strings.HasSuffix(s, `\"`) {
		return s[1 : len(s)-1]
	}

	return s
}

// escapeValue is the inverse of unescapeValue plus quoting: it encodes a
// value so that parsing the written line yields the value byte for byte.
// Values without comment characters, escapable characters or surrounding
// whitespace are returned untouched.
func escapeValue(value string) string {
	if !strings.ContainsAny(value, "#;\"\\\n\t\b") && strings.TrimSpace(value) == value {
		return value
	}

	value = strings.ReplaceAll(value, `\`, `\\`)
	value = strings.ReplaceAll(value, `"`, `\"`)
	value = strings.ReplaceAll(value, "\n", `\n`)
	value = strings.ReplaceAll(value, "\t", `\t`)
	value = strings.ReplaceAll(value, "\b", `\b`)

	// comment characters and surrounding whitespace only survive inside
	// quotes, escape sequences work either way
	if strings.ContainsAny(value, "#;") || strings.TrimSpace(value) != value {
		return `"` + value + `"`
	}

	return value
}

func unescapeValue(value string) string {
	// The following escape sequences (beside \" and \\) are recognized:
	// \n for newline character (NL),
	// \t for horizontal tabulation (HT, TAB) and
	// \b for backspace (BS).
	// Other char escape sequences (including octal escape sequences) are invalid.
	//
	// Decoded in a single pass. Sequential ReplaceAll would re-interpret the
	// backslash produced by \\ together with the following character.
	if !strings.Contains(value, `\`) {
		return value
	}

	var sb strings.Builder
	sb.Grow(len(value))
	for i := 0; i < len(value); i++ {
		c := value[i]
		if c != '\\' || i == len(value)-1 {
			sb.WriteByte(c)

			continue
		}

		i++
		switch value[i] {
		case '\\':
			sb.WriteByte('\\')
		case '"':
			sb.WriteByte('"')
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'b':
			sb.WriteByte('\b')
		default:
			// invalid escape sequence, keep it as is
			sb.WriteByte('\\')
			sb.WriteByte(value[i])
		}
	}

	return sb.String()
}

// parseLineForComment separates a line into content and comment parts.
// It finds the first unquoted comment character (# or ;) to split the line.
// It trims whitespace from the content part and removes matching surrounding
// double ("") quotes from it.
// The returned comment string does NOT include the delimiter character itself
// and is also trimmed of leading/trailing whitespace.
func parseLineForComment(line string) (string, string) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, `"`) {
		// no properly quoted value string, we shouldn't have ended up here.
		if value, comment, found := strings.Cut(line, "#"); found {
			return strings.TrimSpace(value), strings.TrimSpace(comment)
		}
		if value, comment, found := strings.Cut(line, ";"); found {
			return strings.TrimSpace(value), strings.TrimSpace(comment)
		}

		// no comment found, return the line as is
		return line, ""
	}

	commentStartIndex := -1
	inQuotes := false
	escaped := false

	// Iterate through the string to find the first unquoted comment
	// character. Backslash-escaped quotes do not open or close a quote.
	for i := 0; i < len(line); i++ {
		if escaped {
			escaped = false

			continue
		}
		switch line[i] {
		case '\\':
			escaped = true
		case '"':
			inQuotes = !inQuotes
		case '#', ';':
			if !inQuotes {
				commentStartIndex = i
			}
		}
		if commentStartIndex != -1 {
			break
		}
	}

	comment := ""
	var initialContent string
	if commentStartIndex != -1 {
		initialContent = line[:commentStartIndex]
		if commentStartIndex+1 <= len(line) {
			comment = strings.TrimSpace(line[commentStartIndex+1:])
		}
	} else {
		initialContent = line
	}

	content := trimQuotedPair(strings.TrimSpace(initialContent))

	return content, comment
}
