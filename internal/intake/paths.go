package intake

import (
	"net/url"
	"strings"
	"unicode"
)

// ParseDroppedPaths splits text pasted into a terminal, typically by dragging
// files onto it, into file paths. It understands single and double quotes,
// backslash-escaped spaces and file:// URIs; paths may be separated by
// whitespace or newlines.
func ParseDroppedPaths(text string) []string {
	var (
		paths   []string
		current strings.Builder
		quote   rune
		escaped bool
		started bool
	)

	flush := func() {
		if started {
			paths = append(paths, fromURI(current.String()))
		}
		current.Reset()
		started = false
	}

	for _, r := range text {
		switch {
		case escaped:
			current.WriteRune(r)
			escaped = false
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				current.WriteRune(r)
			}
		case r == '\\':
			escaped = true
			started = true
		case r == '\'' || r == '"':
			quote = r
			started = true
		case unicode.IsSpace(r):
			flush()
		default:
			current.WriteRune(r)
			started = true
		}
	}
	flush()

	out := paths[:0]
	for _, p := range paths {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func fromURI(s string) string {
	if !strings.HasPrefix(s, "file://") {
		return s
	}
	u, err := url.Parse(s)
	if err != nil {
		return strings.TrimPrefix(s, "file://")
	}
	return u.Path
}
