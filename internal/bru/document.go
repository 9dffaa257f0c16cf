package bru

import "github.com/speakeasy-api/openapi/sequencedmap"

// Parsed representation of a single .bru request definition.

type Meta struct {
	Name string
	Type string
	Seq  *int
}

type Request struct {
	Method string // upper-case verb, GET when the file has none
	URL    string // raw URL as written, host placeholders included
}

type Body struct {
	Kind string // json, text, xml, ... from "body:<kind> {"
	Raw  string
}

type Scripts struct {
	Pre  string
	Post string
}

type Document struct {
	Meta       Meta
	Request    Request
	Headers    *sequencedmap.Map[string, string]
	Query      *sequencedmap.Map[string, string]
	PathParams *sequencedmap.Map[string, string]
	Body       *Body
	Docs       string
	Scripts    *Scripts
	Tests      string
}

// HasRequest reports whether the document carries a usable URL. Documents
// without one are kept by the parser but skipped by every consumer.
func (d *Document) HasRequest() bool {
	return d != nil && d.Request.URL != ""
}

// JSONBody returns the raw JSON body, or "" when the body is absent or not JSON.
func (d *Document) JSONBody() string {
	if d == nil || d.Body == nil || d.Body.Kind != "json" {
		return ""
	}
	return d.Body.Raw
}

func newDocument() *Document {
	return &Document{
		Meta:    Meta{Type: "http"},
		Request: Request{Method: "GET"},
	}
}
