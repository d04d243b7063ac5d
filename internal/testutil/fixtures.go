// Package testutil provides test utilities and fixtures for unit tests.
package testutil

import (
	_ "embed"
	"os"
	"path/filepath"
	"testing"

	"go.yaml.in/yaml/v4"

	"github.com/erraggy/oastools/parser"
)

// petstoreYAML is an OAS 3.0 document exercising every negotiation path:
// JSON CRUD, a table accepting JSON or CSV, a bodiless 404, a default
// clause, a multipart upload with a binary part and an operation without
// an operationId.
//
//go:embed testdata/petstore.yaml
var petstoreYAML []byte

// PetstoreYAML returns the raw petstore fixture.
func PetstoreYAML() []byte {
	return petstoreYAML
}

// Petstore parses the petstore fixture with references resolved.
func Petstore(t testing.TB) *parser.ParseResult {
	t.Helper()
	return Parse(t, string(petstoreYAML))
}

// Parse parses an OpenAPI document from source with references resolved.
// The test fails if the document does not parse.
func Parse(t testing.TB, source string) *parser.ParseResult {
	t.Helper()

	result, err := parser.ParseWithOptions(
		parser.WithBytes([]byte(source)),
		parser.WithResolveRefs(true),
	)
	if err != nil {
		t.Fatalf("Failed to parse document: %v", err)
	}
	if len(result.Errors) > 0 {
		t.Fatalf("Document has errors: %v", result.Errors)
	}
	return result
}

// WriteTempYAML marshals doc to YAML in a temporary file and returns its path.
func WriteTempYAML(t testing.TB, doc any) string {
	t.Helper()

	data, err := yaml.Marshal(doc)
	if err != nil {
		t.Fatalf("Failed to marshal document to YAML: %v", err)
	}

	tmpFile := filepath.Join(t.TempDir(), "test.yaml")
	if err := os.WriteFile(tmpFile, data, 0600); err != nil {
		t.Fatalf("Failed to write temporary YAML file: %v", err)
	}

	return tmpFile
}

// WriteTempFile writes data to a named temporary file and returns its path.
func WriteTempFile(t testing.TB, name string, data []byte) string {
	t.Helper()

	tmpFile := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(tmpFile, data, 0600); err != nil {
		t.Fatalf("Failed to write temporary file: %v", err)
	}
	return tmpFile
}
