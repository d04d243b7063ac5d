package naming

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ToPascalCase converts a string to PascalCase.
// Separators (underscore, hyphen, dot, slash, space) trigger capitalization of the next letter.
// Example: "user_profile" -> "UserProfile"
// Example: "api-client" -> "ApiClient"
func ToPascalCase(s string) string {
	if s == "" {
		return ""
	}
	fields := strings.FieldsFunc(s, isSeparator)
	// Casers are stateful; one per call.
	titleCaser := cases.Title(language.Und, cases.NoLower)
	var result strings.Builder
	for _, f := range fields {
		result.WriteString(titleCaser.String(f))
	}
	return result.String()
}

// ToCamelCase converts a string to camelCase.
// Like PascalCase but with the first letter lowercase.
// Example: "user_profile" -> "userProfile"
// Example: "UserProfile" -> "userProfile"
func ToCamelCase(s string) string {
	pascal := ToPascalCase(s)
	if pascal == "" {
		return ""
	}
	runes := []rune(pascal)
	runes[0] = unicode.ToLower(runes[0])
	return string(runes)
}

// OperationID synthesizes an operation id for an operation that declares none.
// Static path segments are appended in PascalCase and template parameters
// as "By<Name>".
// Example: ("GET", "/pets/{petId}") -> "getPetsByPetId"
// Example: ("POST", "/") -> "postRoot"
func OperationID(method, path string) string {
	var result strings.Builder
	result.WriteString(strings.ToLower(method))
	wrote := false
	for _, seg := range strings.Split(path, "/") {
		if seg == "" {
			continue
		}
		if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
			result.WriteString("By")
			seg = seg[1 : len(seg)-1]
		}
		if p := ToPascalCase(seg); p != "" {
			result.WriteString(p)
			wrote = true
		}
	}
	if !wrote {
		result.WriteString("Root")
	}
	return result.String()
}

func isSeparator(r rune) bool {
	switch r {
	case '_', '-', '.', '/', ' ', '{', '}':
		return true
	}
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}
