package typeinfer

import (
	"regexp"
	"strings"

	"github.com/mark3labs/bru2openapi/internal/jsonvalue"
)

type inferrer struct {
	decls []Declaration
}

// Infer builds the declaration forest for v. Declarations are ordered so that
// every referenced declaration precedes the one referring to it; the
// declaration named seed is always last. Only the first element of an array
// is sampled. Names are not deduplicated (see Dedupe).
func Infer(v jsonvalue.Value, seed string) []Declaration {
	in := &inferrer{}
	if v.Kind == jsonvalue.Object {
		in.declare(seed, v)
		return in.decls
	}
	alias := in.node(v, seed)
	in.decls = append(in.decls, Declaration{Name: seed, Alias: &alias})
	return in.decls
}

func (in *inferrer) node(v jsonvalue.Value, seed string) TypeNode {
	switch v.Kind {
	case jsonvalue.String:
		return PrimitiveNode(String)
	case jsonvalue.Number:
		return PrimitiveNode(Number)
	case jsonvalue.Bool:
		return PrimitiveNode(Boolean)
	case jsonvalue.Array:
		if len(v.Items) == 0 {
			return ArrayOf(PrimitiveNode(Any))
		}
		first := v.Items[0]
		if first.Kind == jsonvalue.Object {
			return ArrayOf(in.declare(seed+"Item", first))
		}
		return ArrayOf(in.node(first, seed))
	case jsonvalue.Object:
		return in.declare(seed, v)
	default:
		return PrimitiveNode(Null)
	}
}

// declare appends the declaration for obj after everything its fields need.
func (in *inferrer) declare(name string, obj jsonvalue.Value) TypeNode {
	decl := Declaration{Name: name, Fields: make([]Field, 0, obj.Fields.Len())}
	for key, val := range obj.Fields.All() {
		decl.Fields = append(decl.Fields, Field{Name: key, Type: in.node(val, PascalCase(key))})
	}
	in.decls = append(in.decls, decl)
	return RefTo(name)
}

// Dedupe keeps one declaration per name: the last one in decls, at its own
// position. Earlier declarations with the same name are dropped even when
// their fields differ.
func Dedupe(decls []Declaration) []Declaration {
	last := make(map[string]int, len(decls))
	for i, d := range decls {
		last[d.Name] = i
	}
	out := make([]Declaration, 0, len(last))
	for i, d := range decls {
		if last[d.Name] == i {
			out = append(out, d)
		}
	}
	return out
}

var paramSegmentRe = regexp.MustCompile(`^(:\w+|\{\w+\})$`)

// TypeName derives a seed name from an operation, e.g.
// ("GET", "/users/{id}", "Response") -> "GetUsersByIdResponse".
func TypeName(method, path, suffix string) string {
	var b strings.Builder
	b.WriteString(PascalCase(strings.ToLower(method)))
	for _, part := range strings.Split(path, "/") {
		if part == "" {
			continue
		}
		if paramSegmentRe.MatchString(part) {
			b.WriteString("ById")
			continue
		}
		b.WriteString(PascalCase(sanitizeSegment(part)))
	}
	b.WriteString(suffix)
	return b.String()
}

var nonIdentRe = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

func sanitizeSegment(s string) string {
	return nonIdentRe.ReplaceAllString(s, "-")
}
