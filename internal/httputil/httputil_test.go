package httputil

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyResponseKey(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		wantKey  string
		wantKind CodeKind
	}{
		{"default keyword", "default", "default", CodeDefault},
		{"valid 200", "200", "200", CodeExact},
		{"valid 418", "418", "418", CodeExact}, // I'm a teapot
		{"valid 599", "599", "599", CodeExact},
		{"wildcard 2XX", "2XX", "2XX", CodeRange},
		{"lowercase wildcard", "4xx", "4XX", CodeRange},
		{"mixed case wildcard", "5Xx", "5XX", CodeRange},

		{"extension", "x-custom", "x-custom", CodeInvalid},
		{"invalid wildcard 0XX", "0XX", "0XX", CodeInvalid},
		{"invalid wildcard 6XX", "6XX", "6XX", CodeInvalid},
		{"partial wildcard", "20X", "20X", CodeInvalid},
		{"below range", "099", "099", CodeInvalid},
		{"above range", "600", "600", CodeInvalid},
		{"too long", "2000", "2000", CodeInvalid},
		{"empty", "", "", CodeInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, kind := ClassifyResponseKey(tt.key)
			assert.Equal(t, tt.wantKey, key)
			assert.Equal(t, tt.wantKind, kind, "ClassifyResponseKey(%q) kind = %s", tt.key, kind)
		})
	}
}

func TestRangeKey(t *testing.T) {
	assert.Equal(t, "2XX", RangeKey(200))
	assert.Equal(t, "2XX", RangeKey(299))
	assert.Equal(t, "4XX", RangeKey(404))
	assert.Equal(t, "5XX", RangeKey(503))
}

func TestCodeKindString(t *testing.T) {
	assert.Equal(t, "exact", CodeExact.String())
	assert.Equal(t, "range", CodeRange.String())
	assert.Equal(t, "default", CodeDefault.String())
	assert.Equal(t, "invalid", CodeInvalid.String())
}

func TestIsNoBodyStatus(t *testing.T) {
	assert.True(t, IsNoBodyStatus(http.StatusNoContent))
	assert.True(t, IsNoBodyStatus(http.StatusNotModified))
	assert.True(t, IsNoBodyStatus(http.StatusContinue))
	assert.False(t, IsNoBodyStatus(http.StatusOK))
	assert.False(t, IsNoBodyStatus(http.StatusNotFound))
}

// TestMethods verifies the method table mirrors the OpenAPI path item fields.
func TestMethods(t *testing.T) {
	assert.Len(t, Methods, 8)
	assert.True(t, IsSupportedMethod(http.MethodTrace))
	assert.True(t, IsSupportedMethod(http.MethodPatch))
	assert.False(t, IsSupportedMethod("get"), "methods are upper case")
	assert.False(t, IsSupportedMethod("CONNECT"))
}
