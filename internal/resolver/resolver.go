// Package resolver looks up the value of every schema entry the way a
// generated project does at startup: process environment first, then the
// environment's dotenv file, then the declared default.
package resolver

import (
	"strings"

	"microflame/internal/schema"
)

// Source tells where a resolved value came from.
type Source string

const (
	SourceEnvironment Source = "environment"
	SourceEnvFile     Source = "env file"
	SourceDefault     Source = "default"
	SourceNone        Source = ""
)

// ResolvedValue represents a resolved config value
type ResolvedValue struct {
	Key     string // The config path (e.g., "db.host")
	EnvVar  string // The environment variable name (e.g., "DB_HOST")
	Value   string // The resolved value (empty if not set)
	Present bool   // Whether any source provided a value
	Source  Source
}

// Resolve looks up all schema entries. fileValues holds the assignments of
// the env file; environ is a process environment slice ("KEY=VALUE").
// Results follow the order of entries.
func Resolve(entries []schema.Entry, fileValues map[string]string, environ []string) []ResolvedValue {
	envMap := parseEnviron(environ)

	results := make([]ResolvedValue, 0, len(entries))
	for _, e := range entries {
		rv := ResolvedValue{Key: e.Path, EnvVar: e.Env}

		if v, ok := envMap[e.Env]; ok {
			rv.Value, rv.Present, rv.Source = v, true, SourceEnvironment
		} else if v, ok := fileValues[e.Env]; ok {
			rv.Value, rv.Present, rv.Source = v, true, SourceEnvFile
		} else if e.Default != nil {
			rv.Value, rv.Present, rv.Source = *e.Default, true, SourceDefault
		}

		results = append(results, rv)
	}

	return results
}

// Undeclared returns the keys in fileKeys that no entry declares, in first
// occurrence order.
func Undeclared(entries []schema.Entry, fileKeys []string) []string {
	declared := make(map[string]bool, len(entries))
	for _, e := range entries {
		declared[e.Env] = true
	}

	var out []string
	seen := make(map[string]bool)
	for _, k := range fileKeys {
		if !declared[k] && !seen[k] {
			out = append(out, k)
			seen[k] = true
		}
	}
	return out
}

// parseEnviron converts an environ slice (["KEY=VALUE", ...]) into a map.
// Handles edge cases like empty values ("KEY=") and values containing "=" ("KEY=a=b").
func parseEnviron(environ []string) map[string]string {
	result := make(map[string]string)
	for _, entry := range environ {
		// Split on first "=" only - values can contain "="
		idx := strings.Index(entry, "=")
		if idx == -1 {
			// No "=" found, skip malformed entry
			continue
		}
		key := entry[:idx]
		value := entry[idx+1:]
		result[key] = value
	}
	return result
}
