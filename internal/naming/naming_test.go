package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToPascalCase(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		// Empty and single characters
		{name: "empty string", input: "", want: ""},
		{name: "single lowercase letter", input: "a", want: "A"},
		{name: "single digit", input: "1", want: "1"},

		// Separators
		{name: "snake_case simple", input: "user_profile", want: "UserProfile"},
		{name: "leading underscore", input: "_private", want: "Private"},
		{name: "double underscore", input: "double__under", want: "DoubleUnder"},
		{name: "kebab-case", input: "get-user-by-id", want: "GetUserById"},
		{name: "dot separator", input: "com.example.api", want: "ComExampleApi"},
		{name: "path-like", input: "/api/v1/users", want: "ApiV1Users"},
		{name: "mixed separators", input: "get_user-by.id/name", want: "GetUserByIdName"},
		{name: "other punctuation", input: "a:b~c", want: "ABC"},

		// Already cased
		{name: "already PascalCase", input: "UserProfile", want: "UserProfile"},
		{name: "all caps", input: "API", want: "API"},
		{name: "camelCase", input: "userProfile", want: "UserProfile"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToPascalCase(tt.input))
		})
	}
}

func TestToCamelCase(t *testing.T) {
	assert.Equal(t, "", ToCamelCase(""))
	assert.Equal(t, "userProfile", ToCamelCase("user_profile"))
	assert.Equal(t, "userProfile", ToCamelCase("UserProfile"))
}

func TestOperationID(t *testing.T) {
	tests := []struct {
		method string
		path   string
		want   string
	}{
		{"GET", "/pets", "getPets"},
		{"GET", "/pets/{petId}", "getPetsByPetId"},
		{"PUT", "/tables/{table_name}/rows", "putTablesByTableNameRows"},
		{"POST", "/", "postRoot"},
		{"DELETE", "", "deleteRoot"},
		{"PATCH", "/v1/user-profiles", "patchV1UserProfiles"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, OperationID(tt.method, tt.path))
		})
	}
}
