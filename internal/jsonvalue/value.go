// Package jsonvalue decodes JSON into a tree that keeps object keys in source order.
package jsonvalue

import (
	"encoding/json"

	"github.com/speakeasy-api/openapi/sequencedmap"
)

// Kind identifies the JSON type of a Value.
type Kind int

const (
	Null Kind = iota
	Bool
	Number
	String
	Array
	Object
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "boolean"
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	default:
		return "unknown"
	}
}

// Value is one decoded JSON value. Only the field matching Kind is set.
type Value struct {
	Kind   Kind
	Bool   bool
	Number json.Number
	String string
	Items  []Value
	Fields *sequencedmap.Map[string, Value]
}

// IsPrimitive reports whether v is a scalar (including null).
func (v Value) IsPrimitive() bool {
	return v.Kind != Array && v.Kind != Object
}

// Interface converts v into plain Go values. Objects keep their key order by
// staying as sequenced maps, which marshal back to JSON in the same order.
func (v Value) Interface() any {
	switch v.Kind {
	case Bool:
		return v.Bool
	case Number:
		return v.Number
	case String:
		return v.String
	case Array:
		out := make([]any, 0, len(v.Items))
		for _, item := range v.Items {
			out = append(out, item.Interface())
		}
		return out
	case Object:
		m := sequencedmap.New[string, any]()
		for k, field := range v.Fields.All() {
			m.Set(k, field.Interface())
		}
		return m
	default:
		return nil
	}
}

// MarshalJSON writes v back out with object keys in their original order.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}
