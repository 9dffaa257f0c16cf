package contract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi2conv"
	"github.com/getkin/kin-openapi/openapi3"
	yamljson "github.com/invopop/yaml"
	"gopkg.in/yaml.v3"
)

// ErrorCode categorizes contract loading and validation errors.
type ErrorCode string

const (
	InputError      ErrorCode = "InputError"
	ParseError      ErrorCode = "ParseError"
	ValidationError ErrorCode = "ValidationError"
	ConversionError ErrorCode = "ConversionError"
)

// ContractError is a structured error with optional location and JSON Pointer.
type ContractError struct {
	Code        ErrorCode
	Message     string
	Location    string // file path
	JSONPointer string // e.g. "#/paths/~1users/get"
	Cause       error
}

func (e *ContractError) Error() string { return e.Message }
func (e *ContractError) Unwrap() error { return e.Cause }

// Load reads a contract from a local JSON or YAML file and validates it.
// Swagger 2.0 documents are converted to OpenAPI 3 first.
func Load(ctx context.Context, path string) (*openapi3.T, error) {
	if strings.TrimSpace(path) == "" {
		return nil, &ContractError{Code: InputError, Message: "contract: input is empty"}
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, &ContractError{Code: InputError, Message: fmt.Sprintf("resolve path: %v", err), Location: path, Cause: err}
	}
	raw, err := os.ReadFile(abs)
	if err != nil {
		return nil, &ContractError{Code: InputError, Message: fmt.Sprintf("read file %s: %v", abs, err), Location: abs, Cause: err}
	}

	version, err := detectVersion(raw)
	if err != nil {
		return nil, &ContractError{Code: ParseError, Message: err.Error(), Location: abs, Cause: err}
	}

	var doc *openapi3.T
	switch version {
	case 2:
		doc, err = convertV2ToV3(raw)
		if err != nil {
			return nil, &ContractError{Code: ConversionError, Message: fmt.Sprintf("convert swagger 2.0 to openapi 3: %v", err), Location: abs, Cause: err}
		}
	default:
		loader := openapi3.NewLoader()
		loader.IsExternalRefsAllowed = false
		doc, err = loader.LoadFromFile(abs)
		if err != nil {
			return nil, mapValidateOrParseErr(err, abs)
		}
	}

	if err := Validate(ctx, doc); err != nil {
		var ce *ContractError
		if errors.As(err, &ce) {
			ce.Location = abs
		}
		return doc, err
	}
	return doc, nil
}

// detectVersion returns 3 for OpenAPI 3.x and 2 for Swagger 2.0.
func detectVersion(data []byte) (int, error) {
	var root map[string]any
	if err := yaml.Unmarshal(data, &root); err != nil {
		return 0, fmt.Errorf("parse contract: %w", err)
	}
	if s, ok := root["openapi"].(string); ok && strings.HasPrefix(strings.TrimSpace(s), "3.") {
		return 3, nil
	}
	if s, ok := root["swagger"].(string); ok && strings.HasPrefix(strings.TrimSpace(s), "2.") {
		return 2, nil
	}
	return 0, errors.New("contract: missing or unknown version (expected 'openapi: 3.x' or 'swagger: 2.0')")
}

func convertV2ToV3(data []byte) (*openapi3.T, error) {
	// openapi2.T only carries JSON tags, so YAML input goes through JSON.
	js, err := yamljson.YAMLToJSON(data)
	if err != nil {
		return nil, err
	}
	var v2 openapi2.T
	if err := json.Unmarshal(js, &v2); err != nil {
		return nil, err
	}
	return openapi2conv.ToV3(&v2)
}

// Validate runs OpenAPI structural validation over doc.
func Validate(ctx context.Context, doc *openapi3.T) error {
	if doc == nil {
		return &ContractError{Code: InputError, Message: "contract: nil document"}
	}
	if err := doc.Validate(ctx); err != nil {
		return mapValidateOrParseErr(err, "")
	}
	return nil
}

func mapValidateOrParseErr(err error, location string) error {
	pointer := extractJSONPointer(err)
	code := ValidationError
	lower := strings.ToLower(err.Error())
	if strings.Contains(lower, "unmarshal") || strings.Contains(lower, "invalid character") || strings.Contains(lower, "yaml:") {
		code = ParseError
	}
	return &ContractError{Code: code, Message: err.Error(), Location: location, JSONPointer: pointer, Cause: err}
}

var jsonPtrRe = regexp.MustCompile(`#/[^\s'\"]+`)

func extractJSONPointer(err error) string {
	if err == nil {
		return ""
	}
	if me, ok := err.(openapi3.MultiError); ok {
		if len(me) > 0 {
			return extractJSONPointer(me[0])
		}
	}
	var se *openapi3.SchemaError
	if errors.As(err, &se) {
		if parts := se.JSONPointer(); len(parts) > 0 {
			return "#/" + strings.Join(parts, "/")
		}
		if se.SchemaField != "" {
			return se.SchemaField
		}
	}
	if m := jsonPtrRe.FindString(err.Error()); m != "" {
		return m
	}
	return ""
}
