package validator

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"microflame/internal/resolver"
	"microflame/internal/schema"
)

func TestNewReport(t *testing.T) {
	entries := []schema.Entry{
		{Path: "db.host", Env: "DB_HOST", Required: true},
		{Path: "jwtPrivateKey", Env: "JWT_PRIVATE_KEY", Required: true},
	}
	resolved := []resolver.ResolvedValue{
		{Key: "db.host", EnvVar: "DB_HOST", Value: "secret-host", Present: true, Source: resolver.SourceEnvFile},
		{Key: "jwtPrivateKey", EnvVar: "JWT_PRIVATE_KEY"},
	}

	report := NewReport(".env.development", resolved, Validate(entries, resolved))

	if report.Valid {
		t.Error("expected invalid report")
	}
	if report.ErrorCount != 1 || len(report.Errors) != 1 {
		t.Fatalf("expected 1 error, got %d", report.ErrorCount)
	}
	if report.Errors[0].Message != "jwtPrivateKey: required but JWT_PRIVATE_KEY is not set" {
		t.Errorf("unexpected message: %s", report.Errors[0].Message)
	}
	if report.Entries[0].Source != "env file" {
		t.Errorf("unexpected source: %s", report.Entries[0].Source)
	}

	data, err := FormatJSON(report)
	if err != nil {
		t.Fatalf("FormatJSON() error = %v", err)
	}
	if strings.Contains(string(data), "secret-host") {
		t.Error("report must not contain values")
	}
}

// The JSON report is always valid JSON whose errorCount matches the errors.
func TestFormatJSON_Property(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("report round-trips through JSON", prop.ForAll(
		func(n int, present bool) bool {
			entries, resolved := genEntries(n, true)
			for i := range resolved {
				resolved[i].Present = present
				resolved[i].Value = "x"
			}
			data, err := FormatJSON(NewReport(".env", resolved, Validate(entries, resolved)))
			if err != nil {
				return false
			}

			var decoded Report
			if err := json.Unmarshal(data, &decoded); err != nil {
				return false
			}
			return decoded.ErrorCount == len(decoded.Errors) &&
				decoded.Valid == (present || n == 0) &&
				len(decoded.Entries) == n
		},
		gen.IntRange(0, 10),
		gen.Bool(),
	))

	properties.TestingRun(t)
}
