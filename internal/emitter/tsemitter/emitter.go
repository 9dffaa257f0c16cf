// Package tsemitter renders inferred request and response types as
// TypeScript declaration files, one per domain.
package tsemitter

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mark3labs/bru2openapi/internal/bru"
	"github.com/mark3labs/bru2openapi/internal/contract"
	"github.com/mark3labs/bru2openapi/internal/jsonvalue"
	"github.com/mark3labs/bru2openapi/internal/typeinfer"
)

// FileName is written inside each domain directory.
const FileName = "types.ts"

// Options controls how the TypeScript emitter writes declarations.
type Options struct {
	OutDir string // required; each domain gets <OutDir>/<domain>/types.ts
	Force  bool   // overwrite a non-empty OutDir
	DryRun bool   // don't write, only plan
	Logger *slog.Logger
}

// PlannedFile describes a file the emitter intends to write.
type PlannedFile struct {
	RelPath      string
	Size         int
	Mode         os.FileMode
	Declarations int
}

// Result returns the planned files in domain order.
type Result struct {
	Planned []PlannedFile
}

// Emit infers a Request declaration forest from every JSON body and a
// Response forest from every docs payload, merges them per domain with
// typeinfer.Dedupe and renders one file per domain.
func Emit(ctx context.Context, files []bru.File, opts Options) (*Result, error) {
	_ = ctx
	if strings.TrimSpace(opts.OutDir) == "" {
		return nil, fmt.Errorf("tsemitter: OutDir is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	byDomain := map[string][]typeinfer.Declaration{}
	for _, f := range files {
		d := f.Document
		if d == nil || !d.HasRequest() {
			continue
		}
		method := strings.ToUpper(d.Request.Method)
		path := contract.NormalizePath(d.Request.URL)
		var decls []typeinfer.Declaration
		if raw := d.JSONBody(); raw != "" {
			if body, err := jsonvalue.ParseString(raw); err == nil {
				decls = append(decls, typeinfer.Infer(body, typeinfer.TypeName(method, path, "Request"))...)
			}
		}
		if payload, ok := bru.ExtractPayload(d.Docs); ok {
			decls = append(decls, typeinfer.Infer(payload, typeinfer.TypeName(method, path, "Response"))...)
		}
		if len(decls) == 0 {
			continue
		}
		byDomain[f.Domain] = append(byDomain[f.Domain], decls...)
	}

	domains := make([]string, 0, len(byDomain))
	for d := range byDomain {
		domains = append(domains, d)
	}
	sort.Strings(domains)

	out := map[string][]byte{}
	planned := make([]PlannedFile, 0, len(domains))
	for _, domain := range domains {
		decls := typeinfer.Dedupe(byDomain[domain])
		rel := filepath.ToSlash(filepath.Join(domain, FileName))
		content := []byte(Render(decls))
		out[rel] = content
		planned = append(planned, PlannedFile{RelPath: rel, Size: len(content), Mode: 0o644, Declarations: len(decls)})
		logger.Debug("planned type file", "file", rel, "declarations", len(decls))
	}

	if !opts.DryRun {
		if err := writeFiles(opts.OutDir, out, opts.Force); err != nil {
			return nil, err
		}
	}
	return &Result{Planned: planned}, nil
}

// Render prints declarations in order, separated by blank lines.
func Render(decls []typeinfer.Declaration) string {
	var b strings.Builder
	for i, d := range decls {
		if i > 0 {
			b.WriteString("\n")
		}
		if d.IsAlias() {
			fmt.Fprintf(&b, "export type %s = %s;\n", d.Name, d.Alias.String())
			continue
		}
		fmt.Fprintf(&b, "export interface %s {\n", d.Name)
		for _, f := range d.Fields {
			fmt.Fprintf(&b, "  %s: %s;\n", propertyName(f.Name), f.Type.String())
		}
		b.WriteString("}\n")
	}
	return b.String()
}

var identRe = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

func propertyName(name string) string {
	if identRe.MatchString(name) {
		return name
	}
	return strconv.Quote(name)
}

func writeFiles(outDir string, files map[string][]byte, force bool) error {
	abs, err := filepath.Abs(outDir)
	if err != nil {
		return fmt.Errorf("resolve out dir: %w", err)
	}
	if st, err := os.Stat(abs); err == nil && st.IsDir() && !force {
		entries, rerr := os.ReadDir(abs)
		if rerr == nil && len(entries) > 0 {
			return fmt.Errorf("tsemitter: output directory %q is not empty (use --force to overwrite)", abs)
		}
	}
	for rel, content := range files {
		p := filepath.Join(abs, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return fmt.Errorf("mkdir: %w", err)
		}
		tmp := p + ".tmp-" + time.Now().Format("20060102150405")
		if err := os.WriteFile(tmp, content, 0o644); err != nil {
			return fmt.Errorf("write temp %s: %w", rel, err)
		}
		if err := os.Rename(tmp, p); err != nil {
			_ = os.Remove(tmp)
			return fmt.Errorf("rename %s: %w", rel, err)
		}
	}
	return nil
}
