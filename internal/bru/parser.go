// Package bru reads Bruno request-definition files.
//
// The format is a flat sequence of named blocks ("meta {", "headers {",
// "docs {", ...) closed by a line holding a single "}". Parsing is a one-pass
// line scanner with a single open-block state; it never fails; unknown lines
// outside a block are dropped and an unterminated block runs to end of input.
package bru

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/speakeasy-api/openapi/sequencedmap"
)

type blockKind int

const (
	blockNone blockKind = iota
	blockMeta
	blockHTTP
	blockHeaders
	blockQuery
	blockPathParams
	blockBody
	blockDocs
	blockScriptPre
	blockScriptPost
	blockTests
)

var (
	methodLineRe = regexp.MustCompile(`(?i)^(get|post|put|patch|delete|head|options)\s+(.+)$`)
	httpBlockRe  = regexp.MustCompile(`(?i)^(get|post|put|patch|delete|head|options)\s*\{$`)
	bodyBlockRe  = regexp.MustCompile(`^body:([A-Za-z0-9-]+)\s*\{$`)
)

var fixedOpeners = map[string]blockKind{
	"meta {":                 blockMeta,
	"headers {":              blockHeaders,
	"params:query {":         blockQuery,
	"params:path {":          blockPathParams,
	"docs {":                 blockDocs,
	"script:pre-request {":   blockScriptPre,
	"script:post-response {": blockScriptPost,
	"tests {":                blockTests,
}

type scanner struct {
	doc      *Document
	block    blockKind
	bodyKind string
	lines    []string
	inFence  bool
}

// Parse turns the text of one .bru file into a Document.
func Parse(text string) *Document {
	s := &scanner{doc: newDocument()}
	for _, line := range strings.Split(text, "\n") {
		s.scan(strings.TrimSuffix(line, "\r"))
	}
	if s.block != blockNone {
		s.commit()
	}
	return s.doc
}

func (s *scanner) scan(line string) {
	trimmed := strings.TrimSpace(line)

	if s.block == blockNone {
		s.scanOutside(trimmed)
		return
	}

	// Block content is indented, the terminator is not. The terminator wins
	// even inside a docs code fence: a fenced example must not contain a line
	// that is exactly "}".
	if strings.TrimRight(line, " \t") == "}" {
		s.commit()
		return
	}

	if s.block == blockDocs && (trimmed == "```" || trimmed == "```json") {
		s.inFence = !s.inFence
		return
	}
	s.lines = append(s.lines, line)
}

func (s *scanner) scanOutside(trimmed string) {
	if kind, ok := fixedOpeners[trimmed]; ok {
		s.open(kind)
		return
	}
	if m := bodyBlockRe.FindStringSubmatch(trimmed); m != nil {
		s.open(blockBody)
		s.bodyKind = strings.ToLower(m[1])
		return
	}
	if m := httpBlockRe.FindStringSubmatch(trimmed); m != nil {
		s.doc.Request.Method = strings.ToUpper(m[1])
		s.open(blockHTTP)
		return
	}
	if m := methodLineRe.FindStringSubmatch(trimmed); m != nil {
		s.doc.Request.Method = strings.ToUpper(m[1])
		s.doc.Request.URL = strings.TrimSpace(m[2])
	}
}

func (s *scanner) open(kind blockKind) {
	s.block = kind
	s.bodyKind = ""
	s.lines = s.lines[:0]
	s.inFence = false
}

func (s *scanner) commit() {
	d := s.doc
	switch s.block {
	case blockMeta:
		parseMeta(&d.Meta, s.lines)
	case blockHTTP:
		for _, line := range s.lines {
			if key, value, ok := splitPair(line); ok && key == "url" {
				d.Request.URL = value
			}
		}
	case blockHeaders:
		d.Headers = parsePairs(s.lines)
	case blockQuery:
		d.Query = parsePairs(s.lines)
	case blockPathParams:
		d.PathParams = parsePairs(s.lines)
	case blockBody:
		d.Body = &Body{Kind: s.bodyKind, Raw: joinBlock(s.lines)}
	case blockDocs:
		d.Docs = joinBlock(s.lines)
	case blockScriptPre:
		if d.Scripts == nil {
			d.Scripts = &Scripts{}
		}
		d.Scripts.Pre = joinBlock(s.lines)
	case blockScriptPost:
		if d.Scripts == nil {
			d.Scripts = &Scripts{}
		}
		d.Scripts.Post = joinBlock(s.lines)
	case blockTests:
		d.Tests = joinBlock(s.lines)
	}
	s.block = blockNone
	s.lines = nil
	s.inFence = false
}

func parseMeta(meta *Meta, lines []string) {
	for _, line := range lines {
		key, value, ok := splitPair(line)
		if !ok {
			continue
		}
		switch key {
		case "name":
			meta.Name = value
		case "type":
			meta.Type = value
		case "seq":
			if n, err := strconv.Atoi(value); err == nil {
				meta.Seq = &n
			}
		}
	}
}

// parsePairs reads "key: value" lines in order. Bruno marks disabled entries
// with a leading "~"; those are dropped.
func parsePairs(lines []string) *sequencedmap.Map[string, string] {
	pairs := sequencedmap.New[string, string]()
	for _, line := range lines {
		key, value, ok := splitPair(line)
		if !ok || strings.HasPrefix(key, "~") {
			continue
		}
		if pairs.Has(key) {
			pairs.Delete(key)
		}
		pairs.Set(key, value)
	}
	return pairs
}

func splitPair(line string) (key, value string, ok bool) {
	trimmed := strings.TrimSpace(line)
	idx := strings.Index(trimmed, ":")
	if idx <= 0 {
		return "", "", false
	}
	return strings.TrimSpace(trimmed[:idx]), strings.TrimSpace(trimmed[idx+1:]), true
}

func joinBlock(lines []string) string {
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
