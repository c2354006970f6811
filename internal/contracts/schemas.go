package contracts

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"log"
	"strings"

	"github.com/mzton/vantage/schemas"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	SessionEventType    = "SessionEvent"
	ListingsSeedType    = "ListingsSeed"
	CurrentVersion      = "1.0.0"
	schemaFileExtension = ".json"
)

// schemaRoots maps an embedded directory to the suffix of its contract names.
var schemaRoots = map[string]string{
	"events": "Event",
	"seeds":  "Seed",
}

var compiledSchemas = make(map[string]*jsonschema.Schema)

func init() {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true

	// Register every file first so schemas can $ref each other.
	paths := make([]string, 0)
	for root := range schemaRoots {
		err := fs.WalkDir(schemas.SchemasFS, root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !strings.HasSuffix(path, schemaFileExtension) {
				return nil
			}
			file, err := schemas.SchemasFS.Open(path)
			if err != nil {
				return err
			}
			defer file.Close()
			if err := compiler.AddResource(path, file); err != nil {
				return fmt.Errorf("add schema resource %s: %w", path, err)
			}
			paths = append(paths, path)
			return nil
		})
		if err != nil {
			log.Fatalf("error walking and adding schema resources: %v", err)
		}
	}

	for _, path := range paths {
		schema, err := compiler.Compile(path)
		if err != nil {
			log.Fatalf("could not compile schema %s: %v", path, err)
		}
		if key := generateKeyFromPath(path); key != "" {
			compiledSchemas[key] = schema
		}
	}
}

// generateKeyFromPath turns "events/session-event/v1.json" into "SessionEvent/1.0.0".
func generateKeyFromPath(path string) string {
	parts := strings.Split(strings.TrimSuffix(path, schemaFileExtension), "/")
	if len(parts) != 3 {
		return ""
	}
	suffix, ok := schemaRoots[parts[0]]
	if !ok {
		return ""
	}

	caser := cases.Title(language.English)
	var name strings.Builder
	for _, p := range strings.Split(parts[1], "-") {
		name.WriteString(caser.String(p))
	}
	if !strings.HasSuffix(name.String(), suffix) {
		name.WriteString(suffix)
	}

	version := strings.Replace(parts[2], "v", "", 1) + ".0.0"
	return fmt.Sprintf("%s/%s", name.String(), version)
}

// Validate checks body against the named contract.
func Validate(contractType, version string, body []byte) error {
	key := fmt.Sprintf("%s/%s", contractType, version)
	schema, ok := compiledSchemas[key]
	if !ok {
		return fmt.Errorf("schema for '%s' version '%s' not found", contractType, version)
	}

	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		return fmt.Errorf("body is not a valid JSON: %w", err)
	}

	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("JSON schema validation failed: %w", err)
	}
	return nil
}

// ValidateEvent checks an outgoing event body.
func ValidateEvent(eventType, eventVersion string, body []byte) error {
	return Validate(eventType, eventVersion, body)
}

// ValidateSeed checks a listings seed file.
func ValidateSeed(body []byte) error {
	return Validate(ListingsSeedType, CurrentVersion, body)
}
