package jsonvalue

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/speakeasy-api/openapi/sequencedmap"
)

// ErrTrailingData is returned by Parse when more than one value is present.
var ErrTrailingData = errors.New("jsonvalue: trailing data after value")

// Parse decodes exactly one JSON value from data.
func Parse(data []byte) (Value, error) {
	dec := newDecoder(bytes.NewReader(data))
	v, err := decodeValue(dec)
	if err != nil {
		return Value{}, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return Value{}, ErrTrailingData
	}
	return v, nil
}

// ParseString is Parse for string input.
func ParseString(s string) (Value, error) {
	return Parse([]byte(s))
}

// ParsePrefix decodes the first JSON value in s and ignores whatever follows it.
func ParsePrefix(s string) (Value, error) {
	return decodeValue(newDecoder(strings.NewReader(s)))
}

func newDecoder(r io.Reader) *json.Decoder {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return dec
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		if err == io.EOF {
			return Value{}, io.ErrUnexpectedEOF
		}
		return Value{}, err
	}
	return decodeToken(dec, tok)
}

func decodeToken(dec *json.Decoder, tok json.Token) (Value, error) {
	switch t := tok.(type) {
	case nil:
		return Value{Kind: Null}, nil
	case bool:
		return Value{Kind: Bool, Bool: t}, nil
	case json.Number:
		return Value{Kind: Number, Number: t}, nil
	case string:
		return Value{Kind: String, String: t}, nil
	case json.Delim:
		switch t {
		case '[':
			return decodeArray(dec)
		case '{':
			return decodeObject(dec)
		}
		return Value{}, fmt.Errorf("jsonvalue: unexpected delimiter %q", t)
	default:
		return Value{}, fmt.Errorf("jsonvalue: unexpected token %T", tok)
	}
}

func decodeArray(dec *json.Decoder) (Value, error) {
	items := make([]Value, 0)
	for dec.More() {
		item, err := decodeValue(dec)
		if err != nil {
			return Value{}, err
		}
		items = append(items, item)
	}
	// closing ']'
	if _, err := dec.Token(); err != nil {
		return Value{}, err
	}
	return Value{Kind: Array, Items: items}, nil
}

func decodeObject(dec *json.Decoder) (Value, error) {
	fields := sequencedmap.New[string, Value]()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Value{}, err
		}
		key, ok := tok.(string)
		if !ok {
			return Value{}, fmt.Errorf("jsonvalue: object key is %T, want string", tok)
		}
		val, err := decodeValue(dec)
		if err != nil {
			return Value{}, err
		}
		// Duplicate keys: the last value wins, placed at the end.
		if fields.Has(key) {
			fields.Delete(key)
		}
		fields.Set(key, val)
	}
	// closing '}'
	if _, err := dec.Token(); err != nil {
		return Value{}, err
	}
	return Value{Kind: Object, Fields: fields}, nil
}
