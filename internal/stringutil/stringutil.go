package stringutil

import (
	"bytes"
	"strings"
	"unicode"
)

// PascalToSnake converts Go field names to the snake case used for flags,
// environment variables and config file keys. Runs of capitals are kept
// together, so APIBaseURL becomes api_base_url.
func PascalToSnake(s string) string {
	var b bytes.Buffer

	r := []rune(s)

	for i, c := range r {
		if !unicode.IsUpper(c) {
			b.WriteRune(c)
			continue
		}

		if i > 0 && (unicode.IsLower(r[i-1]) || unicode.IsDigit(r[i-1]) || (i+1 < len(r) && unicode.IsLower(r[i+1]))) {
			b.WriteByte('_')
		}

		b.WriteRune(unicode.ToLower(c))
	}

	return b.String()
}

func LooksTrue(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "y", "1", "on", "enabled", "enable":
		return true
	default:
		return false
	}
}
