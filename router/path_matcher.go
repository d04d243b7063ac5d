package router

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// pathTemplate matches request paths against one OpenAPI path template
// such as "/pets/{petId}".
type pathTemplate struct {
	template string
	re       *regexp.Regexp
	names    []string
	// literal counts non-slash literal bytes minus placeholders; templates
	// with more literal text win ties.
	literal int
}

func compileTemplate(template string) (*pathTemplate, error) {
	if template == "" || template[0] != '/' {
		return nil, fmt.Errorf("router: path template %q must start with '/'", template)
	}

	var expr strings.Builder
	expr.WriteByte('^')
	pt := &pathTemplate{template: template}
	for rest := template; rest != ""; {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			pt.addLiteral(&expr, rest)
			break
		}
		pt.addLiteral(&expr, rest[:open])
		end := strings.IndexByte(rest[open:], '}')
		if end < 0 {
			return nil, fmt.Errorf("router: unclosed placeholder in path template %q", template)
		}
		name := rest[open+1 : open+end]
		if name == "" {
			return nil, fmt.Errorf("router: empty placeholder in path template %q", template)
		}
		if slices.Contains(pt.names, name) {
			return nil, fmt.Errorf("router: duplicate placeholder %q in path template %q", name, template)
		}
		pt.names = append(pt.names, name)
		pt.literal--
		expr.WriteString("([^/]+)")
		rest = rest[open+end+1:]
	}
	expr.WriteByte('$')

	re, err := regexp.Compile(expr.String())
	if err != nil {
		return nil, fmt.Errorf("router: compile path template %q: %w", template, err)
	}
	pt.re = re
	return pt, nil
}

func (pt *pathTemplate) addLiteral(expr *strings.Builder, s string) {
	expr.WriteString(regexp.QuoteMeta(s))
	pt.literal += len(s) - strings.Count(s, "/")
}

func (pt *pathTemplate) match(path string) (map[string]string, bool) {
	m := pt.re.FindStringSubmatch(path)
	if m == nil {
		return nil, false
	}
	params := make(map[string]string, len(pt.names))
	for i, name := range pt.names {
		params[name] = m[i+1]
	}
	return params, true
}

// templateSet finds the most specific template matching a path: more
// literal text first, then longer templates, then lexical order.
type templateSet []*pathTemplate

func newTemplateSet(templates []string) (templateSet, error) {
	set := make(templateSet, 0, len(templates))
	for _, t := range templates {
		pt, err := compileTemplate(t)
		if err != nil {
			return nil, err
		}
		set = append(set, pt)
	}
	slices.SortFunc(set, func(a, b *pathTemplate) int {
		if a.literal != b.literal {
			return b.literal - a.literal
		}
		if len(a.template) != len(b.template) {
			return len(b.template) - len(a.template)
		}
		return strings.Compare(a.template, b.template)
	})
	return set, nil
}

func (s templateSet) match(path string) (string, map[string]string, bool) {
	for _, pt := range s {
		if params, ok := pt.match(path); ok {
			return pt.template, params, true
		}
	}
	return "", nil, false
}
