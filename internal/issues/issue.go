// Package issues provides the issue type reported by schema validation.
package issues

import (
	"fmt"
	"strings"
)

// Issue represents a single schema violation found while validating a value.
type Issue struct {
	// InstancePath is the JSON pointer to the offending part of the value (e.g., "/pets/0/name")
	InstancePath string
	// SchemaPath is the JSON pointer to the failing schema keyword (e.g., "/properties/name/type")
	SchemaPath string
	// Keyword is the failing schema keyword (last segment of SchemaPath)
	Keyword string
	// Message is a human-readable description of the issue
	Message string
}

// String returns a formatted string representation of the issue.
func (i Issue) String() string {
	path := i.InstancePath
	if path == "" {
		path = "/"
	}
	if i.Keyword != "" {
		return fmt.Sprintf("✗ %s (%s): %s", path, i.Keyword, i.Message)
	}
	return fmt.Sprintf("✗ %s: %s", path, i.Message)
}

// Field returns the first segment of the instance path, which names the
// top-level property the issue belongs to. Empty for root-level issues.
func (i Issue) Field() string {
	p := strings.TrimPrefix(i.InstancePath, "/")
	if p == "" {
		return ""
	}
	if idx := strings.IndexByte(p, '/'); idx >= 0 {
		p = p[:idx]
	}
	return unescapePointer(p)
}

// Join renders a list of issues one per line.
func Join(list []Issue) string {
	var sb strings.Builder
	for n, i := range list {
		if n > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(i.String())
	}
	return sb.String()
}

// unescapePointer reverses JSON pointer escaping (RFC 6901).
func unescapePointer(s string) string {
	s = strings.ReplaceAll(s, "~1", "/")
	return strings.ReplaceAll(s, "~0", "~")
}
