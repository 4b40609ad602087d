package notification

import (
	"fmt"
	"html"
	"strings"
)

// Context carries the named entities a definition's templates interpolate,
// e.g. {"inviter": map[string]any{"name": "Alice"}}. Producers build one per
// dispatch; templates only ever read from it.
type Context map[string]any

// Template is a compiled interpolation template. Compiled once, then safe for
// unsynchronized concurrent rendering.
type Template struct {
	src   string
	nodes []node
}

type node struct {
	lit    string
	path   []string
	escape bool
}

// Compile parses src into a reusable template. Two marker styles are
// supported: {{{a.b}}} inserts the raw value, {{a.b}} HTML-escapes it.
// The marker style is the per-field escaping policy.
func Compile(src string) (*Template, error) {
	t := &Template{src: src}
	rest := src
	pos := 0
	for {
		open := strings.Index(rest, "{{")
		if open < 0 {
			if rest != "" {
				t.nodes = append(t.nodes, node{lit: rest})
			}
			return t, nil
		}
		if open > 0 {
			t.nodes = append(t.nodes, node{lit: rest[:open]})
		}
		marker := rest[open:]
		raw := strings.HasPrefix(marker, "{{{")
		openLen, closeTok := 2, "}}"
		if raw {
			openLen, closeTok = 3, "}}}"
		}
		end := strings.Index(marker[openLen:], closeTok)
		if end < 0 {
			return nil, &BadTemplateError{Src: src, Pos: pos + open, Reason: "unterminated interpolation marker"}
		}
		expr := strings.TrimSpace(marker[openLen : openLen+end])
		path, err := parsePath(expr)
		if err != nil {
			return nil, &BadTemplateError{Src: src, Pos: pos + open, Reason: err.Error()}
		}
		t.nodes = append(t.nodes, node{path: path, escape: !raw})
		consumed := open + openLen + end + len(closeTok)
		rest = rest[consumed:]
		pos += consumed
	}
}

func parsePath(expr string) ([]string, error) {
	if expr == "" {
		return nil, fmt.Errorf("empty interpolation path")
	}
	if strings.ContainsAny(expr, "{} \t\n") {
		return nil, fmt.Errorf("malformed interpolation path %q", expr)
	}
	segments := strings.Split(expr, ".")
	for _, seg := range segments {
		if seg == "" {
			return nil, fmt.Errorf("malformed interpolation path %q", expr)
		}
	}
	return segments, nil
}

// Render evaluates the template against ctx. A missing field or a chain
// broken partway resolves to the empty string; Render never fails.
func (t *Template) Render(ctx Context) string {
	if len(t.nodes) == 0 {
		return ""
	}
	var b strings.Builder
	for _, n := range t.nodes {
		if n.path == nil {
			b.WriteString(n.lit)
			continue
		}
		val := formatValue(lookup(ctx, n.path))
		if n.escape {
			val = html.EscapeString(val)
		}
		b.WriteString(val)
	}
	return b.String()
}

// Source returns the original template string.
func (t *Template) Source() string { return t.src }

// Blank reports whether the template source is empty.
func (t *Template) Blank() bool { return t.src == "" }

func lookup(ctx Context, path []string) any {
	var cur any = map[string]any(ctx)
	for _, seg := range path {
		var m map[string]any
		switch v := cur.(type) {
		case map[string]any:
			m = v
		case Context:
			m = map[string]any(v)
		default:
			return nil
		}
		next, ok := m[seg]
		if !ok {
			return nil
		}
		cur = next
	}
	return cur
}

func formatValue(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}
