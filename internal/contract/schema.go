package contract

import (
	"github.com/getkin/kin-openapi/openapi3"

	"github.com/mark3labs/bru2openapi/internal/typeinfer"
)

const componentsPrefix = "#/components/schemas/"

// forestSchema converts an inferred forest into a schema for its last (seed)
// declaration.
//
// Inline mode resolves each reference to the nearest earlier declaration of
// that name, which is exactly the object the reference was inferred from, so
// name collisions inside one forest do not corrupt the result.
//
// Hoist mode writes every declaration into components (last write wins across
// the whole contract) and returns a $ref.
//
// TODO: a hoisted component overwritten by a later forest leaves earlier $ref
// values pointing at the replaced schema in memory; re-resolve refs after
// Build if in-memory consumers start reading them.
func forestSchema(decls []typeinfer.Declaration, components openapi3.Schemas, hoist bool) *openapi3.SchemaRef {
	if len(decls) == 0 {
		return openapi3.NewSchemaRef("", &openapi3.Schema{})
	}
	b := &schemaBuilder{hoist: hoist, resolved: make(map[string]*openapi3.Schema, len(decls))}
	for _, d := range decls {
		s := b.declaration(d)
		b.resolved[d.Name] = s
		if hoist {
			components[d.Name] = openapi3.NewSchemaRef("", s)
		}
	}
	root := decls[len(decls)-1]
	if hoist {
		return openapi3.NewSchemaRef(componentsPrefix+root.Name, b.resolved[root.Name])
	}
	return openapi3.NewSchemaRef("", b.resolved[root.Name])
}

type schemaBuilder struct {
	hoist    bool
	resolved map[string]*openapi3.Schema
}

func (b *schemaBuilder) declaration(d typeinfer.Declaration) *openapi3.Schema {
	if d.IsAlias() {
		return b.node(*d.Alias).Value
	}
	s := openapi3.NewObjectSchema()
	for _, f := range d.Fields {
		s.Properties[f.Name] = b.node(f.Type)
	}
	return s
}

func (b *schemaBuilder) node(n typeinfer.TypeNode) *openapi3.SchemaRef {
	switch n.Kind {
	case typeinfer.KindArray:
		s := openapi3.NewArraySchema()
		if n.Elem != nil {
			s.Items = b.node(*n.Elem)
		} else {
			s.Items = openapi3.NewSchemaRef("", &openapi3.Schema{})
		}
		return openapi3.NewSchemaRef("", s)
	case typeinfer.KindRef:
		s, ok := b.resolved[n.Ref]
		if !ok {
			s = &openapi3.Schema{}
		}
		if b.hoist {
			// The value is kept so the in-memory document validates; only the
			// $ref is serialized.
			return openapi3.NewSchemaRef(componentsPrefix+n.Ref, s)
		}
		return openapi3.NewSchemaRef("", s)
	default:
		return openapi3.NewSchemaRef("", primitiveSchema(n.Primitive))
	}
}

func primitiveSchema(p typeinfer.Primitive) *openapi3.Schema {
	switch p {
	case typeinfer.String:
		return openapi3.NewStringSchema()
	case typeinfer.Number:
		return openapi3.NewFloat64Schema()
	case typeinfer.Boolean:
		return openapi3.NewBoolSchema()
	case typeinfer.Null:
		return &openapi3.Schema{Nullable: true}
	default:
		return &openapi3.Schema{}
	}
}
