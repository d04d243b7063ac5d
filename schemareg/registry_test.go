package schemareg

import (
	"errors"
	"strings"
	"testing"

	"github.com/erraggy/oastools/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/oaspipe/internal/testutil"
	"github.com/erraggy/oaspipe/oaserrors"
	"github.com/erraggy/oaspipe/opdef"
)

func petstoreRegistry(t *testing.T) *Registry {
	t.Helper()
	result := testutil.Petstore(t)
	defs, err := opdef.Extract(result)
	require.NoError(t, err)

	doc, _ := result.OAS3Document()
	reg, err := ForDefinitions(defs, WithComponents(doc.Components))
	require.NoError(t, err)
	return reg
}

func incompatible(t *testing.T, err error) *oaserrors.IncompatibleValueError {
	t.Helper()
	var iv *oaserrors.IncompatibleValueError
	require.True(t, errors.As(err, &iv), "expected IncompatibleValueError, got %v", err)
	assert.ErrorIs(t, err, oaserrors.ErrIncompatibleValue)
	return iv
}

func TestKey_String(t *testing.T) {
	tests := []struct {
		key  Key
		want string
	}{
		{ParameterKey("getPet", "petId"), "getPet/parameter/petId"},
		{RequestBodyKey("createPet", "application/json"), "createPet/requestBody/application/json"},
		{RequestBodyPropertyKey("uploadPhoto", "multipart/form-data", "metadata"), "uploadPhoto/requestBodyProperty/multipart/form-data/metadata"},
		{ResponseBodyKey("getPet", "200", "application/json"), "getPet/responseBody/200/application/json"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.key.String())
		})
	}
}

func TestRegistry_ValidateResponseBody(t *testing.T) {
	reg := petstoreRegistry(t)
	key := ResponseBodyKey("getPet", "200", "application/json")
	require.True(t, reg.Has(key))

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, reg.Validate(key, map[string]any{"id": 1, "name": "Rex"}))
	})

	t.Run("nullable tag", func(t *testing.T) {
		assert.NoError(t, reg.Validate(key, map[string]any{"id": 1, "name": "Rex", "tag": nil}))
	})

	t.Run("struct values are validated by their JSON form", func(t *testing.T) {
		type pet struct {
			ID   int    `json:"id"`
			Name string `json:"name"`
		}
		assert.NoError(t, reg.Validate(key, pet{ID: 7, Name: "Tom"}))
	})

	t.Run("invalid", func(t *testing.T) {
		value := map[string]any{"name": ""}
		iv := incompatible(t, reg.Validate(key, value))
		assert.Equal(t, key.String(), iv.Key)
		assert.Equal(t, value, iv.Value)
		require.NotEmpty(t, iv.Issues)

		var keywords []string
		for _, issue := range iv.Issues {
			keywords = append(keywords, issue.Keyword)
		}
		assert.Contains(t, keywords, "required")
		assert.Contains(t, keywords, "minLength")
	})

	t.Run("sequence element schema", func(t *testing.T) {
		ndjson := ResponseBodyKey("listPets", "200", "application/x-ndjson")
		assert.NoError(t, reg.Validate(ndjson, map[string]any{"id": 2, "name": "a"}))
		assert.Error(t, reg.Validate(ndjson, []any{}))
	})
}

func TestRegistry_Parameters(t *testing.T) {
	reg := petstoreRegistry(t)
	limit := ParameterKey("listPets", "limit")

	t.Run("coerces integers", func(t *testing.T) {
		v, err := reg.Coerce(limit, "10")
		require.NoError(t, err)
		assert.Equal(t, int64(10), v)
	})

	t.Run("reports bounds against the parameter name", func(t *testing.T) {
		_, err := reg.Coerce(limit, "500")
		iv := incompatible(t, err)
		require.Len(t, iv.Issues, 1)
		assert.Equal(t, "/limit", iv.Issues[0].InstancePath)
		assert.Equal(t, "maximum", iv.Issues[0].Keyword)
		assert.Equal(t, "limit", iv.Issues[0].Field())
	})

	t.Run("keeps unconvertible input", func(t *testing.T) {
		v, err := reg.Coerce(limit, "abc")
		assert.Equal(t, "abc", v)
		incompatible(t, err)
	})

	t.Run("splits arrays", func(t *testing.T) {
		v, err := reg.Coerce(ParameterKey("listPets", "tags"), "a,b")
		require.NoError(t, err)
		assert.Equal(t, []any{"a", "b"}, v)

		v, err = reg.Coerce(ParameterKey("listPets", "tags"), []string{"x", "y", "z"})
		require.NoError(t, err)
		assert.Equal(t, []any{"x", "y", "z"}, v)
	})

	t.Run("path parameter from path item", func(t *testing.T) {
		v, err := reg.Coerce(ParameterKey("getPet", "petId"), "0")
		assert.Equal(t, int64(0), v)
		incompatible(t, err)
	})
}

func TestRegistry_FormBodyCoercion(t *testing.T) {
	reg := petstoreRegistry(t)
	key := RequestBodyKey("createPet", "application/x-www-form-urlencoded")

	v, err := reg.Coerce(key, map[string]any{"name": "Rex", "tag": "dog"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "Rex", "tag": "dog"}, v)

	_, err = reg.Coerce(key, map[string]any{"tag": "dog"})
	incompatible(t, err)
}

func TestRegistry_Multipart(t *testing.T) {
	reg := petstoreRegistry(t)
	const ct = "multipart/form-data"

	assert.Equal(t, []string{"metadata", "signature"}, reg.MultipartProperties("uploadPhoto", ct))
	assert.Nil(t, reg.MultipartProperties("createPet", "application/json"))

	meta := RequestBodyPropertyKey("uploadPhoto", ct, "metadata")
	assert.NoError(t, reg.Validate(meta, map[string]any{"caption": "hi"}))
	incompatible(t, reg.Validate(meta, map[string]any{"caption": ""}))

	sig := RequestBodyPropertyKey("uploadPhoto", ct, "signature")
	assert.NoError(t, reg.Validate(sig, strings.NewReader("bytes")))
	assert.NoError(t, reg.Validate(sig, "placeholder"), "binary schemas are not validated structurally")

	whole := RequestBodyKey("uploadPhoto", ct)
	assert.NoError(t, reg.Validate(whole, map[string]any{
		"metadata":  map[string]any{"caption": "hi"},
		"signature": map[string]any{"fileName": "sig.bin"},
	}))
	iv := incompatible(t, reg.Validate(whole, map[string]any{"metadata": map[string]any{"caption": "hi"}}))
	assert.Equal(t, "required", iv.Issues[0].Keyword)
}

func TestRegistry_Type(t *testing.T) {
	reg := petstoreRegistry(t)

	tests := []struct {
		key  Key
		want string
	}{
		{ParameterKey("listPets", "limit"), "integer"},
		{ParameterKey("listPets", "tags"), "array"},
		{RequestBodyKey("createPet", "application/json"), "object"},
		{RequestBodyPropertyKey("uploadPhoto", "multipart/form-data", "metadata"), "object"},
		{RequestBodyPropertyKey("uploadPhoto", "multipart/form-data", "signature"), "string"},
		{ResponseBodyKey("listPets", "200", "application/x-ndjson"), "object"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, reg.Type(tt.key), tt.key.String())
	}
}

func TestRegistry_MissingKeyPanics(t *testing.T) {
	reg, err := New()
	require.NoError(t, err)
	assert.Panics(t, func() {
		_ = reg.Validate(ParameterKey("nope", "x"), "1")
	})
}

func TestRegistry_NilSchemaIsPermissive(t *testing.T) {
	reg, err := New()
	require.NoError(t, err)
	key := ResponseBodyKey("op", opdef.DefaultCode, "application/json")
	require.NoError(t, reg.RegisterResponseBody("op", opdef.DefaultCode, "application/json", nil))
	assert.NoError(t, reg.Validate(key, map[string]any{"anything": []any{1, "two"}}))
}

func TestRegistry_CircularReference(t *testing.T) {
	node := &parser.Schema{
		Type: "object",
		Properties: map[string]*parser.Schema{
			"name":     {Type: "string"},
			"children": {Type: "array", Items: &parser.Schema{Ref: "#/components/schemas/Node"}},
		},
	}
	reg, err := New(WithComponents(&parser.Components{
		Schemas: map[string]*parser.Schema{"Node": node},
	}))
	require.NoError(t, err)

	key := ResponseBodyKey("tree", "200", "application/json")
	require.NoError(t, reg.RegisterResponseBody("tree", "200", "application/json",
		&parser.Schema{Ref: "#/components/schemas/Node"}))

	valid := map[string]any{"name": "root", "children": []any{
		map[string]any{"name": "leaf", "children": []any{}},
	}}
	assert.NoError(t, reg.Validate(key, valid))

	invalid := map[string]any{"name": "root", "children": []any{
		map[string]any{"name": 5},
	}}
	iv := incompatible(t, reg.Validate(key, invalid))
	assert.Equal(t, "/children/0/name", iv.Issues[0].InstancePath)
}

func TestRegistry_UnresolvableReference(t *testing.T) {
	reg, err := New()
	require.NoError(t, err)

	err = reg.RegisterResponseBody("op", "200", "application/json",
		&parser.Schema{Ref: "#/components/schemas/Missing"})
	assert.ErrorIs(t, err, oaserrors.ErrConfig)
}
