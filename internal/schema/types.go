// Package schema reads and edits the project's configuration schema file:
// a JSON document that declares, for each logical config name, the
// environment variable it comes from and whether it is required.
//
//	{
//	  "apiTimeout": { "env": "API_TIMEOUT", "required": true, "label": "Request timeout ms" },
//	  "db": {
//	    "host": { "env": "DB_HOST", "required": true }
//	  }
//	}
//
// An object with a string "env" member is an entry; any other object is a
// namespace that groups entries under a dotted path.
package schema

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrPathOccupied is returned when inserting at a path that already exists.
var ErrPathOccupied = errors.New("path already exists")

// ErrPathBlocked is returned when a prefix of the path is an entry or a
// non-object value, so the path cannot be created.
var ErrPathBlocked = errors.New("path is blocked by a non-namespace value")

// ErrInvalidPath is returned for malformed dotted paths.
var ErrInvalidPath = errors.New("invalid config path")

// Entry is one declared configuration value.
type Entry struct {
	Path     string // e.g. "db.host"
	Env      string // e.g. "DB_HOST"
	Required bool
	Label    string
	Default  *string // nil when no default is declared
}

// ParseError reports a schema file that is not a valid schema document.
type ParseError struct {
	Path string
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Msg)
}

var segmentRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidPath reports whether path is a dotted sequence of identifiers.
func ValidPath(path string) bool {
	if path == "" {
		return false
	}
	for _, seg := range strings.Split(path, ".") {
		if !segmentRegex.MatchString(seg) {
			return false
		}
	}
	return true
}
