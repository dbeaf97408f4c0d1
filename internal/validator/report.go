package validator

import (
	"encoding/json"

	"microflame/internal/resolver"
)

// Report is the JSON output of a startup check. Values are never included,
// only where they came from.
type Report struct {
	Valid      bool          `json:"valid"`
	EnvFile    string        `json:"envFile"`
	Entries    []EntryReport `json:"entries"`
	Errors     []ErrorReport `json:"errors"`
	ErrorCount int           `json:"errorCount"`
}

// EntryReport describes how one schema entry was resolved.
type EntryReport struct {
	Key     string `json:"key"`
	EnvVar  string `json:"envVar"`
	Present bool   `json:"present"`
	Source  string `json:"source,omitempty"`
}

// ErrorReport is a ValidationError in JSON form.
type ErrorReport struct {
	Key     string `json:"key"`
	EnvVar  string `json:"envVar"`
	Reason  Reason `json:"reason"`
	Message string `json:"message"`
}

// NewReport builds the report for a validated env file.
func NewReport(envFile string, resolved []resolver.ResolvedValue, result ValidationResult) Report {
	r := Report{
		Valid:      result.Valid,
		EnvFile:    envFile,
		Entries:    make([]EntryReport, 0, len(resolved)),
		Errors:     make([]ErrorReport, 0, len(result.Errors)),
		ErrorCount: len(result.Errors),
	}
	for _, rv := range resolved {
		r.Entries = append(r.Entries, EntryReport{
			Key:     rv.Key,
			EnvVar:  rv.EnvVar,
			Present: rv.Present,
			Source:  string(rv.Source),
		})
	}
	for _, e := range result.Errors {
		r.Errors = append(r.Errors, ErrorReport{
			Key:     e.Key,
			EnvVar:  e.EnvVar,
			Reason:  e.Reason,
			Message: FormatError(e),
		})
	}
	return r
}

// FormatJSON returns the report as indented JSON.
func FormatJSON(r Report) ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}
