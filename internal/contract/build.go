// Package contract assembles parsed request definitions into an OpenAPI 3.0
// document, and reads, validates, and writes such documents.
package contract

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/mark3labs/bru2openapi/internal/bru"
	"github.com/mark3labs/bru2openapi/internal/jsonvalue"
	"github.com/mark3labs/bru2openapi/internal/typeinfer"
)

// OpenAPIVersion is written into every assembled contract.
const OpenAPIVersion = "3.0.0"

const successDescription = "Successful response"

// Options configures Build.
type Options struct {
	Title       string
	Version     string
	Description string
	BaseURL     string // emitted as the single server entry when set
	// HoistSchemas moves inferred declarations into components.schemas and
	// references them from operations instead of inlining.
	HoistSchemas bool
	Logger       *slog.Logger
}

func (o Options) withDefaults() Options {
	o.Title = strings.TrimSpace(o.Title)
	if o.Title == "" {
		o.Title = "API"
	}
	o.Version = strings.TrimSpace(o.Version)
	if o.Version == "" {
		o.Version = "1.0.0"
	}
	o.Description = strings.TrimSpace(o.Description)
	o.BaseURL = strings.TrimSpace(o.BaseURL)
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// Build folds the parsed files into one contract. Files without a URL are
// skipped with a warning. When two files normalize to the same path and
// method, the later one replaces the earlier. One tag is emitted per domain in
// the order domains were first seen.
func Build(files []bru.File, opts Options) *openapi3.T {
	opts = opts.withDefaults()

	doc := &openapi3.T{
		OpenAPI: OpenAPIVersion,
		Info: &openapi3.Info{
			Title:       opts.Title,
			Version:     opts.Version,
			Description: opts.Description,
		},
		Paths:      openapi3.Paths{},
		Components: &openapi3.Components{Schemas: openapi3.Schemas{}},
		Tags:       openapi3.Tags{},
	}
	if opts.BaseURL != "" {
		doc.Servers = openapi3.Servers{&openapi3.Server{URL: opts.BaseURL}}
	}

	seen := make(map[string]struct{})
	for _, f := range files {
		if !f.Document.HasRequest() {
			opts.Logger.Warn("skipping request without URL", "file", f.Path)
			continue
		}
		path := NormalizePath(f.Document.Request.URL)
		op := buildOperation(f, path, doc.Components.Schemas, opts)

		item := doc.Paths[path]
		if item == nil {
			item = &openapi3.PathItem{}
			doc.Paths[path] = item
		}
		method := strings.ToUpper(f.Document.Request.Method)
		if item.GetOperation(method) != nil {
			opts.Logger.Debug("operation replaced by later file", "method", method, "path", path, "file", f.Path)
		}
		item.SetOperation(method, op)

		if _, ok := seen[f.Domain]; !ok {
			seen[f.Domain] = struct{}{}
			doc.Tags = append(doc.Tags, &openapi3.Tag{
				Name:        f.Domain,
				Description: f.Domain + " related endpoints",
			})
		}
	}
	return doc
}

func buildOperation(f bru.File, path string, components openapi3.Schemas, opts Options) *openapi3.Operation {
	d := f.Document
	method := strings.ToUpper(d.Request.Method)

	summary := d.Meta.Name
	if summary == "" {
		summary = method + " " + path
	}

	op := &openapi3.Operation{
		Tags:        []string{f.Domain},
		Summary:     summary,
		OperationID: OperationID(method, f.Domain, path),
		Parameters:  buildParameters(d, path),
		Responses: openapi3.Responses{
			"200": &openapi3.ResponseRef{Value: openapi3.NewResponse().WithDescription(successDescription)},
		},
	}

	if raw := d.JSONBody(); raw != "" {
		if body, err := jsonvalue.ParseString(raw); err == nil {
			seed := typeinfer.TypeName(method, path, "Request")
			schema := forestSchema(typeinfer.Infer(body, seed), components, opts.HoistSchemas)
			op.RequestBody = &openapi3.RequestBodyRef{
				Value: openapi3.NewRequestBody().
					WithRequired(true).
					WithContent(openapi3.NewContentWithJSONSchemaRef(schema)),
			}
		} else {
			opts.Logger.Debug("request body is not valid JSON", "file", f.Path, "error", err)
		}
	}

	if d.Docs != "" {
		if payload, ok := bru.ExtractPayload(d.Docs); ok {
			seed := typeinfer.TypeName(method, path, "Response")
			schema := forestSchema(typeinfer.Infer(payload, seed), components, opts.HoistSchemas)
			op.Responses["200"] = &openapi3.ResponseRef{
				Value: openapi3.NewResponse().
					WithDescription(successDescription).
					WithContent(openapi3.NewContentWithJSONSchemaRef(schema)),
			}
		}
	}
	return op
}

// buildParameters lists header parameters in declaration order, then one
// required parameter per path template variable, then query parameters.
func buildParameters(d *bru.Document, path string) openapi3.Parameters {
	params := openapi3.Parameters{}
	for name, value := range d.Headers.All() {
		p := openapi3.NewHeaderParameter(name).WithSchema(openapi3.NewStringSchema())
		p.Required = false
		p.Example = value
		params = append(params, &openapi3.ParameterRef{Value: p})
	}

	for _, name := range PathParams(path) {
		p := openapi3.NewPathParameter(name).WithSchema(openapi3.NewStringSchema())
		if example, ok := d.PathParams.Get(name); ok && example != "" {
			p.Example = example
		}
		params = append(params, &openapi3.ParameterRef{Value: p})
	}

	query := QueryParams(d.Request.URL)
	for name, value := range d.Query.All() {
		if query.Has(name) {
			query.Delete(name)
		}
		query.Set(name, value)
	}
	for name, value := range query.All() {
		p := openapi3.NewQueryParameter(name).WithSchema(openapi3.NewStringSchema())
		if value != "" {
			p.Example = value
		}
		params = append(params, &openapi3.ParameterRef{Value: p})
	}
	return params
}

// Operations returns every (path, method) pair in the contract, for callers
// that want to iterate without knowing PathItem's layout.
func Operations(doc *openapi3.T) map[string]map[string]*openapi3.Operation {
	out := make(map[string]map[string]*openapi3.Operation, len(doc.Paths))
	for path, item := range doc.Paths {
		if item == nil {
			continue
		}
		ops := make(map[string]*openapi3.Operation)
		for _, m := range []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch,
			http.MethodDelete, http.MethodHead, http.MethodOptions,
		} {
			if op := item.GetOperation(m); op != nil {
				ops[strings.ToLower(m)] = op
			}
		}
		out[path] = ops
	}
	return out
}
