package contract

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/speakeasy-api/openapi/sequencedmap"
)

var (
	// A leading "scheme://host[:port]" or "{{baseUrl}}[:port]".
	hostPrefixRe  = regexp.MustCompile(`^(?:[A-Za-z][A-Za-z0-9+.-]*://[^/]*|\{\{[^{}]*\}\}(?::\d+)?)`)
	templateVarRe = regexp.MustCompile(`\{\{\s*(\w+)\s*\}\}`)
	colonParamRe  = regexp.MustCompile(`:(\w+)`)
	pathParamRe   = regexp.MustCompile(`\{(\w+)\}`)
	hyphenRunRe   = regexp.MustCompile(`-{2,}`)
)

// NormalizePath turns a request URL into an OpenAPI path template: the query
// string and host are dropped and ":id" / "{{id}}" become "{id}". Applying it
// to its own output changes nothing.
func NormalizePath(raw string) string {
	p := raw
	if i := strings.Index(p, "?"); i >= 0 {
		p = p[:i]
	}
	p = strings.TrimSpace(p)
	p = hostPrefixRe.ReplaceAllString(p, "")
	p = templateVarRe.ReplaceAllString(p, "{${1}}")
	p = colonParamRe.ReplaceAllString(p, "{${1}}")
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

// OperationID builds "<method>-<domain>-<path>" with braces removed and
// slashes turned into single hyphens. Distinct operations can collide.
func OperationID(method, domain, path string) string {
	clean := strings.NewReplacer("{", "", "}", "", "/", "-").Replace(path)
	clean = hyphenRunRe.ReplaceAllString(clean, "-")
	clean = strings.Trim(clean, "-")
	return strings.ToLower(method) + "-" + domain + "-" + clean
}

// PathParams lists the template parameters of a normalized path in order.
func PathParams(path string) []string {
	matches := pathParamRe.FindAllStringSubmatch(path, -1)
	out := make([]string, 0, len(matches))
	seen := make(map[string]struct{}, len(matches))
	for _, m := range matches {
		if _, dup := seen[m[1]]; dup {
			continue
		}
		seen[m[1]] = struct{}{}
		out = append(out, m[1])
	}
	return out
}

// QueryParams returns the literal query-string pairs of a raw URL in order.
func QueryParams(raw string) *sequencedmap.Map[string, string] {
	out := sequencedmap.New[string, string]()
	i := strings.Index(raw, "?")
	if i < 0 {
		return out
	}
	query := raw[i+1:]
	if j := strings.Index(query, "#"); j >= 0 {
		query = query[:j]
	}
	for _, pair := range strings.Split(query, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		if k, err := url.QueryUnescape(key); err == nil {
			key = k
		}
		if v, err := url.QueryUnescape(value); err == nil {
			value = v
		}
		if key == "" {
			continue
		}
		if out.Has(key) {
			out.Delete(key)
		}
		out.Set(key, value)
	}
	return out
}
