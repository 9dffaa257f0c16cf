package bru

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Extension is the suffix of request-definition files.
const Extension = ".bru"

// DefaultDomain groups files that sit directly in the collection root.
const DefaultDomain = "default"

// ErrorCode categorizes load errors.
type ErrorCode string

const (
	InputError    ErrorCode = "InputError"
	ReadError     ErrorCode = "ReadError"
	EncodingError ErrorCode = "EncodingError"
)

// LoadError is a structured error for collection and file loading.
type LoadError struct {
	Code     ErrorCode
	Message  string
	Location string
	Cause    error
}

func (e *LoadError) Error() string { return e.Message }
func (e *LoadError) Unwrap() error { return e.Cause }

// File is one parsed request definition together with its domain key.
type File struct {
	Path     string
	RelPath  string
	Domain   string
	Document *Document
}

// Failure records a file that could not be turned into a Document.
type Failure struct {
	Path string
	Err  error
}

// Collection is the outcome of walking a directory: every file that parsed,
// and every file that did not.
type Collection struct {
	Root     string
	Files    []File
	Failures []Failure
}

// ParseFile reads and parses a single .bru file. Malformed content is never
// an error; only unreadable files and non-UTF-8 content are.
func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Code: ReadError, Message: fmt.Sprintf("read %s: %v", path, err), Location: path, Cause: err}
	}
	if !utf8.Valid(data) {
		return nil, &LoadError{Code: EncodingError, Message: fmt.Sprintf("read %s: content is not valid UTF-8", path), Location: path}
	}
	return Parse(string(data)), nil
}

// Collect walks root depth-first and parses every .bru file below it. A
// missing root is fatal; per-file failures are collected and the walk goes on.
func Collect(root string) (*Collection, error) {
	if strings.TrimSpace(root) == "" {
		return nil, &LoadError{Code: InputError, Message: "bru: input directory is empty"}
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, &LoadError{Code: InputError, Message: fmt.Sprintf("resolve path: %v", err), Location: root, Cause: err}
	}
	st, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &LoadError{Code: InputError, Message: fmt.Sprintf("Bruno directory not found: %s", abs), Location: abs, Cause: err}
		}
		return nil, &LoadError{Code: InputError, Message: fmt.Sprintf("stat %s: %v", abs, err), Location: abs, Cause: err}
	}
	if !st.IsDir() {
		return nil, &LoadError{Code: InputError, Message: fmt.Sprintf("not a directory: %s", abs), Location: abs}
	}

	col := &Collection{Root: abs}
	walkErr := filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == abs {
				return err
			}
			col.Failures = append(col.Failures, Failure{Path: path, Err: err})
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !isRequestFile(d.Name()) {
			return nil
		}
		doc, perr := ParseFile(path)
		if perr != nil {
			col.Failures = append(col.Failures, Failure{Path: path, Err: perr})
			return nil
		}
		rel, _ := filepath.Rel(abs, path)
		col.Files = append(col.Files, File{
			Path:     path,
			RelPath:  filepath.ToSlash(rel),
			Domain:   DomainOf(abs, path),
			Document: doc,
		})
		return nil
	})
	if walkErr != nil {
		return nil, &LoadError{Code: InputError, Message: fmt.Sprintf("walk %s: %v", abs, walkErr), Location: abs, Cause: walkErr}
	}
	return col, nil
}

// DomainOf returns the first directory below root that contains path, or
// DefaultDomain for files in root itself.
func DomainOf(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return DefaultDomain
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) < 2 || parts[0] == "" || parts[0] == "." || parts[0] == ".." {
		return DefaultDomain
	}
	return parts[0]
}

// collection.bru and folder.bru hold collection settings, not requests.
func isRequestFile(name string) bool {
	if !strings.HasSuffix(name, Extension) {
		return false
	}
	return name != "collection.bru" && name != "folder.bru"
}
