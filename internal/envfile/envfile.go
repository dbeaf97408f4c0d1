// Package envfile reads and edits dotenv files without disturbing their layout.
// Comments, blank lines, quoting and line endings of existing lines survive a
// parse/serialize round trip byte for byte.
package envfile

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
)

// ParseError reports a malformed line in an env file.
type ParseError struct {
	Path string
	Line int // 1-based
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Msg)
}

// line is one logical entry of the file. Raw holds the exact source text,
// which spans several physical lines for multi-line quoted values.
type line struct {
	Raw string
	Key string // empty for blank and comment lines
}

// File is an ordered, layout-preserving view of a dotenv file.
type File struct {
	Path            string
	lines           []line
	crlf            bool
	trailingNewline bool
}

// keyRegex matches keys already present in a file. It is looser than the
// registrar's key rule so existing dotted keys still parse.
var keyRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)

// Parse reads env file content. path is used only for error messages.
func Parse(path string, data []byte) (*File, error) {
	f := &File{Path: path}
	if len(data) == 0 {
		return f, nil
	}

	text := string(data)
	f.crlf = strings.Contains(text, "\r\n")
	f.trailingNewline = strings.HasSuffix(text, "\n")

	physical := strings.Split(text, "\n")
	if f.trailingNewline {
		physical = physical[:len(physical)-1]
	}

	for i := 0; i < len(physical); i++ {
		raw := physical[i]
		trimmed := strings.TrimSpace(raw)

		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			f.lines = append(f.lines, line{Raw: raw})
			continue
		}

		key, value, ok := splitAssignment(trimmed)
		if !ok {
			return nil, &ParseError{Path: path, Line: i + 1, Msg: "expected KEY=VALUE"}
		}
		if !keyRegex.MatchString(key) {
			return nil, &ParseError{Path: path, Line: i + 1, Msg: fmt.Sprintf("invalid key %q", key)}
		}

		// A quoted value may continue on the following lines.
		start := i
		if q := openQuote(value); q != 0 {
			for !closesQuote(value[1:], q) {
				i++
				if i >= len(physical) {
					return nil, &ParseError{Path: path, Line: start + 1, Msg: "unterminated quoted value"}
				}
				raw += "\n" + physical[i]
				value = "x" + strings.TrimRight(physical[i], "\r")
			}
		}

		f.lines = append(f.lines, line{Raw: raw, Key: key})
	}

	return f, nil
}

// splitAssignment splits "[export ]KEY=VALUE" into key and value.
func splitAssignment(s string) (string, string, bool) {
	s = strings.TrimPrefix(s, "export ")
	idx := strings.Index(s, "=")
	if idx <= 0 {
		return "", "", false
	}
	key := strings.TrimSpace(s[:idx])
	value := strings.TrimSpace(s[idx+1:])
	return key, value, true
}

// openQuote returns the quote character a value starts with, or 0.
func openQuote(value string) byte {
	if value == "" {
		return 0
	}
	if value[0] == '"' || value[0] == '\'' {
		return value[0]
	}
	return 0
}

// closesQuote reports whether s contains the closing quote q. Backslash
// escapes only apply inside double quotes.
func closesQuote(s string, q byte) bool {
	for i := 0; i < len(s); i++ {
		if q == '"' && s[i] == '\\' {
			i++
			continue
		}
		if s[i] == q {
			return true
		}
	}
	return false
}

// Has reports whether key is assigned anywhere in the file.
func (f *File) Has(key string) bool {
	for _, l := range f.lines {
		if l.Key == key {
			return true
		}
	}
	return false
}

// Keys returns assigned keys in file order.
func (f *File) Keys() []string {
	var keys []string
	for _, l := range f.lines {
		if l.Key != "" {
			keys = append(keys, l.Key)
		}
	}
	return keys
}

// Append adds KEY=VALUE as the last line. It does not check for an
// existing assignment; callers use Has first.
func (f *File) Append(key, value string) error {
	formatted, err := FormatValue(value)
	if err != nil {
		return err
	}

	eol := ""
	if f.crlf {
		eol = "\r"
	}

	if n := len(f.lines); n > 0 && !f.trailingNewline && f.crlf {
		last := &f.lines[n-1]
		if !strings.HasSuffix(last.Raw, "\r") {
			last.Raw += "\r"
		}
	}

	f.lines = append(f.lines, line{Raw: key + "=" + formatted + eol, Key: key})
	f.trailingNewline = true
	return nil
}

// Bytes serializes the file.
func (f *File) Bytes() []byte {
	if len(f.lines) == 0 {
		return nil
	}
	var sb strings.Builder
	for i, l := range f.lines {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(l.Raw)
	}
	if f.trailingNewline {
		sb.WriteString("\n")
	}
	return []byte(sb.String())
}

// Values resolves the file's assignments the way the dotenv loader of a
// generated project does (quotes removed, escapes and ${VAR} expanded).
func (f *File) Values() (map[string]string, error) {
	values, err := godotenv.Unmarshal(string(f.Bytes()))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Path, err)
	}
	return values, nil
}

var plainValueRegex = regexp.MustCompile(`^[A-Za-z0-9_./:@,+%=-]*$`)

// ErrUnquotableValue is returned for values no quoting style carries
// unchanged through both godotenv and the npm dotenv package.
var ErrUnquotableValue = errors.New("value cannot be written portably to an env file")

// FormatValue renders value for the right-hand side of an assignment.
// Plain values are written bare. Other values use single quotes, which both
// loaders read literally, or double quotes when the value holds a quote or a
// line break. Inside double quotes only \n and \r are escaped, since npm
// dotenv expands nothing else.
func FormatValue(value string) (string, error) {
	if plainValueRegex.MatchString(value) {
		return value, nil
	}
	if !strings.ContainsAny(value, "'\n\r") && !strings.HasSuffix(value, `\`) {
		return "'" + value + "'", nil
	}
	if !strings.ContainsAny(value, `"\$`) {
		r := strings.NewReplacer("\n", `\n`, "\r", `\r`)
		return `"` + r.Replace(value) + `"`, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnquotableValue, value)
}
