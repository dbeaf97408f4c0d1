package schema

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// metaSchemaJSON describes the layout of a schema file: nested namespaces
// whose leaves are entries with a string "env" member.
//
//go:embed metaschema.json
var metaSchemaJSON []byte

const metaSchemaURL = "https://microflame.dev/schema/config-schema.json"

var metaSchema = mustCompileMetaSchema()

func mustCompileMetaSchema() *jsonschema.Schema {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(metaSchemaJSON))
	if err != nil {
		panic(fmt.Sprintf("schema: invalid meta-schema: %v", err))
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(metaSchemaURL, doc); err != nil {
		panic(fmt.Sprintf("schema: cannot add meta-schema: %v", err))
	}
	s, err := c.Compile(metaSchemaURL)
	if err != nil {
		panic(fmt.Sprintf("schema: cannot compile meta-schema: %v", err))
	}
	return s
}

// validateLayout checks a decoded document (numbers as json.Number) against
// the meta-schema. The returned message lists every violation on one line.
func validateLayout(v any) error {
	err := metaSchema.Validate(v)
	if err == nil {
		return nil
	}

	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return err
	}

	// The first line names the meta-schema; the rest are "- at '<ptr>': <msg>".
	lines := strings.Split(strings.TrimSpace(verr.Error()), "\n")
	var details []string
	for _, l := range lines[1:] {
		if l = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(l), "-")); l != "" {
			details = append(details, l)
		}
	}
	if len(details) == 0 {
		return errors.New(lines[0])
	}
	return errors.New(strings.Join(details, "; "))
}
