// Package tabledata decodes the versioned YAML configuration tables that
// drive selection and planning. Each table is checked against a JSON Schema
// and a supported major version before it is decoded into Go types.
package tabledata

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

// schemaCache holds compiled schemas by table name.
var schemaCache sync.Map // map[string]*jsonschema.Schema

// Spec describes one kind of table.
type Spec struct {
	// Name identifies the table in errors and the schema cache.
	Name string

	// Schema is the JSON Schema document the raw table must satisfy.
	Schema []byte

	// Major is the supported major version, e.g. "v1".
	Major string
}

// Decode validates raw YAML against spec and unmarshals it into out.
// It returns the table's version string.
func Decode(spec Spec, raw []byte, out any) (string, error) {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return "", fmt.Errorf("parse %s table: %w", spec.Name, err)
	}

	// Round-trip through JSON so the validator sees JSON-native types.
	asJSON, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("convert %s table: %w", spec.Name, err)
	}
	var instance any
	if err := json.Unmarshal(asJSON, &instance); err != nil {
		return "", fmt.Errorf("convert %s table: %w", spec.Name, err)
	}

	compiled, err := compiledSchema(spec)
	if err != nil {
		return "", err
	}
	if err := compiled.Validate(instance); err != nil {
		return "", fmt.Errorf("%s table does not match schema: %w", spec.Name, err)
	}

	version, _ := instance.(map[string]any)["version"].(string)
	if err := CheckVersion(spec, version); err != nil {
		return "", err
	}

	if err := yaml.Unmarshal(raw, out); err != nil {
		return "", fmt.Errorf("decode %s table: %w", spec.Name, err)
	}
	return version, nil
}

// CheckVersion verifies that version is valid semver with the supported major.
func CheckVersion(spec Spec, version string) error {
	if !semver.IsValid(version) {
		return fmt.Errorf("%s table version %q is not valid semver", spec.Name, version)
	}
	if got := semver.Major(version); got != spec.Major {
		return fmt.Errorf("%s table version %s unsupported: want major %s", spec.Name, version, spec.Major)
	}
	return nil
}

func compiledSchema(spec Spec) (*jsonschema.Schema, error) {
	if cached, ok := schemaCache.Load(spec.Name); ok {
		return cached.(*jsonschema.Schema), nil
	}

	var def any
	if err := json.Unmarshal(spec.Schema, &def); err != nil {
		return nil, fmt.Errorf("parse %s schema: %w", spec.Name, err)
	}

	c := jsonschema.NewCompiler()
	url := fmt.Sprintf("table://%s.schema.json", spec.Name)
	if err := c.AddResource(url, def); err != nil {
		return nil, fmt.Errorf("add %s schema: %w", spec.Name, err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile %s schema: %w", spec.Name, err)
	}

	schemaCache.Store(spec.Name, compiled)
	return compiled, nil
}
