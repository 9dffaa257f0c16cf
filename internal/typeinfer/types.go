// Package typeinfer derives named structural type declarations from example
// JSON values.
package typeinfer

import "strings"

// Kind tags a TypeNode.
type Kind int

const (
	KindPrimitive Kind = iota
	KindArray
	KindRef
)

// Primitive is one of the scalar tags.
type Primitive string

const (
	String  Primitive = "string"
	Number  Primitive = "number"
	Boolean Primitive = "boolean"
	Null    Primitive = "null"
	// Any only appears as the element of an empty array.
	Any Primitive = "any"
)

// TypeNode is a primitive, an array of another node, or a reference to a
// declaration by name.
type TypeNode struct {
	Kind      Kind
	Primitive Primitive
	Elem      *TypeNode
	Ref       string
}

func PrimitiveNode(p Primitive) TypeNode { return TypeNode{Kind: KindPrimitive, Primitive: p} }
func ArrayOf(elem TypeNode) TypeNode     { return TypeNode{Kind: KindArray, Elem: &elem} }
func RefTo(name string) TypeNode         { return TypeNode{Kind: KindRef, Ref: name} }

// String renders the node in TypeScript notation, e.g. "UserItem[]".
func (n TypeNode) String() string {
	switch n.Kind {
	case KindArray:
		if n.Elem == nil {
			return string(Any) + "[]"
		}
		return n.Elem.String() + "[]"
	case KindRef:
		return n.Ref
	default:
		return string(n.Primitive)
	}
}

// Field is one property of an object declaration.
type Field struct {
	Name string
	Type TypeNode
}

// Declaration is a named type. Object declarations carry Fields in source key
// order; when the inferred value was not an object, Alias holds its type.
type Declaration struct {
	Name   string
	Fields []Field
	Alias  *TypeNode
}

// IsAlias reports whether d names a non-object type.
func (d Declaration) IsAlias() bool { return d.Alias != nil }

// Field returns the named field.
func (d Declaration) Field(name string) (TypeNode, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f.Type, true
		}
	}
	return TypeNode{}, false
}

// PascalCase strips '-' and '_' and upper-cases the character after each, then
// upper-cases the first character.
func PascalCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	upper := true
	for _, r := range s {
		if r == '-' || r == '_' {
			upper = true
			continue
		}
		if upper {
			b.WriteString(strings.ToUpper(string(r)))
			upper = false
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
