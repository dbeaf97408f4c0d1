// Package validator performs the startup check of a generated project:
// every required schema entry must resolve to a non-empty value.
package validator

import (
	"microflame/internal/resolver"
	"microflame/internal/schema"
)

// Reason tells why a required value failed validation.
type Reason string

const (
	ReasonMissing Reason = "missing"
	ReasonEmpty   Reason = "empty"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Key    string // The config path (e.g., "db.host")
	EnvVar string // The environment variable name (e.g., "DB_HOST")
	Label  string // Human-readable description from the schema, if any
	Reason Reason
}

// ValidationResult contains all validation outcomes
type ValidationResult struct {
	Valid  bool
	Errors []ValidationError
}

// Validate checks all resolved values against their schema entries.
// It collects all errors rather than stopping at the first one. Values with
// no schema entry are ignored.
func Validate(entries []schema.Entry, resolved []resolver.ResolvedValue) ValidationResult {
	byPath := make(map[string]schema.Entry, len(entries))
	for _, e := range entries {
		byPath[e.Path] = e
	}

	var errors []ValidationError
	for _, rv := range resolved {
		entry, ok := byPath[rv.Key]
		if !ok || !entry.Required {
			continue
		}

		// An empty value counts as unset, as the generated project's
		// startup check does.
		switch {
		case !rv.Present:
			errors = append(errors, ValidationError{Key: rv.Key, EnvVar: rv.EnvVar, Label: entry.Label, Reason: ReasonMissing})
		case rv.Value == "":
			errors = append(errors, ValidationError{Key: rv.Key, EnvVar: rv.EnvVar, Label: entry.Label, Reason: ReasonEmpty})
		}
	}

	return ValidationResult{
		Valid:  len(errors) == 0,
		Errors: errors,
	}
}
