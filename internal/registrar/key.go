package registrar

import (
	"regexp"
	"strings"
)

// keyRegex validates environment variable names: letters, digits and
// underscores, not starting with a digit.
var keyRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidKey reports whether key can be registered.
func ValidKey(key string) bool {
	return keyRegex.MatchString(key) && strings.Trim(key, "_") != ""
}

// LogicalName converts an environment variable name to its default config
// name: the underscore-separated words in lower camel case.
// e.g. "API_TIMEOUT" -> "apiTimeout", "JWT_PRIVATE_KEY" -> "jwtPrivateKey"
func LogicalName(key string) string {
	var sb strings.Builder
	for _, word := range strings.Split(key, "_") {
		if word == "" {
			continue
		}
		word = strings.ToLower(word)
		if sb.Len() > 0 {
			word = strings.ToUpper(word[:1]) + word[1:]
		}
		sb.WriteString(word)
	}
	return sb.String()
}
