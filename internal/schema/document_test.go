package schema

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// For any set of entries at distinct top-level paths, serializing the
// document and parsing it back yields the same entries.
func TestSchemaRoundTrip_Property(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	genEntry := gopter.CombineGens(
		gen.RegexMatch(`[a-z][a-zA-Z0-9]{0,8}`),
		gen.Bool(),
		gen.AlphaString(),
		gen.AlphaString(),
	).Map(func(vals []interface{}) Entry {
		path := vals[0].(string)
		e := Entry{
			Path:     path,
			Env:      strings.ToUpper(path),
			Required: vals[1].(bool),
			Label:    vals[2].(string),
		}
		if !e.Required {
			def := vals[3].(string)
			e.Default = &def
		}
		return e
	})

	genEntries := gen.SliceOfN(4, genEntry).SuchThat(func(entries []Entry) bool {
		seen := make(map[string]bool)
		for _, e := range entries {
			if seen[e.Path] {
				return false
			}
			seen[e.Path] = true
		}
		return true
	})

	properties.Property("round-trip preserves entries", prop.ForAll(
		func(entries []Entry) bool {
			doc := New("config/schema.json")
			for _, e := range entries {
				if err := doc.Insert(e); err != nil {
					t.Logf("Insert failed: %v", err)
					return false
				}
			}

			data, err := doc.Bytes()
			if err != nil {
				return false
			}

			parsed, err := Parse("config/schema.json", data)
			if err != nil {
				t.Logf("Parse failed: %v", err)
				return false
			}

			return reflect.DeepEqual(doc.Entries(), parsed.Entries())
		},
		genEntries,
	))

	properties.Property("serialization is stable", prop.ForAll(
		func(entries []Entry) bool {
			doc := New("config/schema.json")
			for _, e := range entries {
				_ = doc.Insert(e)
			}
			first, _ := doc.Bytes()
			parsed, err := Parse("config/schema.json", first)
			if err != nil {
				return false
			}
			second, _ := parsed.Bytes()
			return string(first) == string(second)
		},
		genEntries,
	))

	properties.TestingRun(t)
}

// Malformed documents produce a ParseError.
func TestParse_InvalidProducesParseError_Property(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)

	genInvalid := gen.OneConstOf(
		`{"apiTimeout": {`,
		`[1, 2, 3]`,
		`"just a string"`,
		`{"a": 1} {"b": 2}`,
		`{"apiTimeout": {"env": 42}}`,
		`{"db": {"host": {"env": "DB_HOST", "required": "yes"}}}`,
		`{"x": {"env": "X", "label": false}}`,
		`{"x": {"env": ""}}`,
	)

	properties.Property("invalid schema produces ParseError", prop.ForAll(
		func(content string) bool {
			_, err := Parse("config/schema.json", []byte(content))
			var pe *ParseError
			return errors.As(err, &pe) && pe.Path == "config/schema.json"
		},
		genInvalid,
	))

	properties.TestingRun(t)
}

func TestParse_EmptyFileIsEmptyDocument(t *testing.T) {
	doc, err := Parse("config/schema.json", []byte("  \n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(doc.Entries()) != 0 {
		t.Errorf("expected no entries, got %v", doc.Entries())
	}
}

func TestEntries_NestedAndSorted(t *testing.T) {
	content := `{
  "version": 2,
  "jwtPrivateKey": {"env": "JWT_PRIVATE_KEY", "required": true},
  "db": {
    "name": {"env": "DB_NAME", "required": true, "label": "Database name"},
    "host": {"env": "DB_HOST", "required": false, "default": "localhost"}
  }
}`
	doc, err := Parse("config/schema.json", []byte(content))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	entries := doc.Entries()
	var paths []string
	for _, e := range entries {
		paths = append(paths, e.Path)
	}
	want := []string{"db.host", "db.name", "jwtPrivateKey"}
	if !reflect.DeepEqual(paths, want) {
		t.Errorf("paths = %v, want %v", paths, want)
	}

	host, ok := doc.Lookup("db.host")
	if !ok {
		t.Fatal("Lookup(db.host) failed")
	}
	if host.Env != "DB_HOST" || host.Required || host.Default == nil || *host.Default != "localhost" {
		t.Errorf("unexpected db.host entry: %+v", host)
	}

	name, ok := doc.FindByEnv("DB_NAME")
	if !ok || name.Path != "db.name" || name.Label != "Database name" {
		t.Errorf("FindByEnv(DB_NAME) = %+v, %v", name, ok)
	}

	if _, ok := doc.Lookup("db"); ok {
		t.Error("namespace must not be returned as an entry")
	}
	if _, ok := doc.Lookup("version"); ok {
		t.Error("scalar must not be returned as an entry")
	}
}

func TestInsert_CreatesNamespaces(t *testing.T) {
	doc := New("config/schema.json")
	if err := doc.Insert(Entry{Path: "db.host", Env: "DB_HOST", Required: true}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := doc.Insert(Entry{Path: "db.port", Env: "DB_PORT"}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	data, err := doc.Bytes()
	if err != nil {
		t.Fatalf("Bytes failed: %v", err)
	}
	want := `{
  "db": {
    "host": {
      "env": "DB_HOST",
      "required": true
    },
    "port": {
      "env": "DB_PORT",
      "required": false
    }
  }
}
`
	if string(data) != want {
		t.Errorf("Bytes() =\n%s\nwant\n%s", data, want)
	}
}

func TestInsert_Conflicts(t *testing.T) {
	content := `{"db": {"env": "DB", "required": true}, "port": 8080, "jwt": {"key": {"env": "JWT_KEY"}}}`

	tests := []struct {
		name string
		path string
		want error
	}{
		{"occupied entry", "jwt.key", ErrPathOccupied},
		{"occupied top level", "port", ErrPathOccupied},
		{"blocked by entry", "db.host", ErrPathBlocked},
		{"blocked by scalar", "port.number", ErrPathBlocked},
		{"invalid path", "db..host", ErrInvalidPath},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse("config/schema.json", []byte(content))
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			before, _ := doc.Bytes()

			err = doc.Insert(Entry{Path: tt.path, Env: "NEW_VAR"})
			if !errors.Is(err, tt.want) {
				t.Fatalf("Insert(%q) error = %v, want %v", tt.path, err, tt.want)
			}

			after, _ := doc.Bytes()
			if string(before) != string(after) {
				t.Error("document modified by failed insert")
			}
		})
	}
}

func TestBytes_PreservesUnknownMembersAndNumbers(t *testing.T) {
	content := `{"limits": {"max": 12345678901234567890}, "x": {"env": "X", "required": true, "format": "json"}}`
	doc, err := Parse("config/schema.json", []byte(content))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	data, err := doc.Bytes()
	if err != nil {
		t.Fatalf("Bytes failed: %v", err)
	}
	s := string(data)
	if !strings.Contains(s, "12345678901234567890") {
		t.Errorf("large number not preserved:\n%s", s)
	}
	if !strings.Contains(s, `"format": "json"`) {
		t.Errorf("unknown member not preserved:\n%s", s)
	}
}

func TestBytes_NoHTMLEscaping(t *testing.T) {
	doc := New("config/schema.json")
	if err := doc.Insert(Entry{Path: "limit", Env: "LIMIT", Label: "must be < 10 & > 0"}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	data, _ := doc.Bytes()
	if !strings.Contains(string(data), "must be < 10 & > 0") {
		t.Errorf("label was escaped:\n%s", data)
	}
}

func TestValidPath(t *testing.T) {
	valid := []string{"apiTimeout", "db.host", "a.b.c", "_private"}
	invalid := []string{"", ".", "db.", ".db", "db..host", "bad key", "9lives", "a-b"}

	for _, p := range valid {
		if !ValidPath(p) {
			t.Errorf("ValidPath(%q) = false, want true", p)
		}
	}
	for _, p := range invalid {
		if ValidPath(p) {
			t.Errorf("ValidPath(%q) = true, want false", p)
		}
	}
}
