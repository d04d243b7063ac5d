package testutil

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v4"
)

// TestPetstore verifies the fixture parses as OAS 3 with the expected paths.
func TestPetstore(t *testing.T) {
	result := Petstore(t)

	doc, ok := result.OAS3Document()
	require.True(t, ok, "fixture should be OAS 3")
	for _, path := range []string{"/pets", "/pets/{petId}", "/pets/{petId}/photos", "/tables/{name}", "/health"} {
		assert.Contains(t, doc.Paths, path)
	}
	require.NotNil(t, doc.Components)
	assert.Contains(t, doc.Components.Schemas, "Pet")
}

// TestWriteTempYAML verifies the temporary file round-trips through YAML.
func TestWriteTempYAML(t *testing.T) {
	path := WriteTempYAML(t, map[string]any{"openapi": "3.0.3"})

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, yaml.Unmarshal(data, &got))
	assert.Equal(t, "3.0.3", got["openapi"])
}

func TestWriteTempFile(t *testing.T) {
	path := WriteTempFile(t, "petstore.yaml", PetstoreYAML())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, PetstoreYAML(), data)
}
