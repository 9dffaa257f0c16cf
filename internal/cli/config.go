package cli

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// fileConfig holds every key a config file may set. Each command reads the
// fields it cares about; pointers distinguish "unset" from zero values.
type fileConfig struct {
	Input        *string
	Output       *string
	Title        *string
	Version      *string
	Description  *string
	BaseURL      *string
	Format       *string
	HoistSchemas *bool
	Validate     *bool
	Watch        *bool
	TypesOut     *string
	DryRun       *bool
	Force        *bool
	Verbose      *bool
	LogLevel     *string
	LogFile      *string
}

// readConfigFile parses a YAML (or JSON) config file. Keys are matched case-
// and separator-insensitively; an unknown key is a usage error.
func readConfigFile(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, newUsageError(fmt.Sprintf("read config file %q: %v", path, err))
	}

	var raw map[string]yaml.Node
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, newUsageError(fmt.Sprintf("parse config file %q: %v", path, err))
	}

	fc := &fileConfig{}
	for key, value := range raw {
		var target any
		switch normalizeKey(key) {
		case "input":
			target = &fc.Input
		case "output":
			target = &fc.Output
		case "title":
			target = &fc.Title
		case "version":
			target = &fc.Version
		case "description":
			target = &fc.Description
		case "baseurl":
			target = &fc.BaseURL
		case "format":
			target = &fc.Format
		case "hoistschemas":
			target = &fc.HoistSchemas
		case "validate":
			target = &fc.Validate
		case "watch":
			target = &fc.Watch
		case "typesout":
			target = &fc.TypesOut
		case "dryrun":
			target = &fc.DryRun
		case "force":
			target = &fc.Force
		case "verbose":
			target = &fc.Verbose
		case "loglevel":
			target = &fc.LogLevel
		case "logfile":
			target = &fc.LogFile
		default:
			return nil, newUsageError(fmt.Sprintf("config file %q: unknown field %q", path, key))
		}

		switch dst := target.(type) {
		case **string:
			str, err := scalarAsString(value)
			if err != nil {
				return nil, newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			*dst = &str
		case **bool:
			var decoded any
			if err := value.Decode(&decoded); err != nil {
				return nil, newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			b, err := valueAsBool(decoded)
			if err != nil {
				return nil, newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			*dst = &b
		}
	}
	return fc, nil
}

// configFromFlag loads the file named by the persistent --config flag, or
// returns an empty config when the flag is unset.
func configFromFlag(flags interface {
	GetString(name string) (string, error)
}) (*fileConfig, string, error) {
	path, err := flags.GetString("config")
	if err != nil {
		return nil, "", err
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return &fileConfig{}, "", nil
	}
	fc, err := readConfigFile(path)
	if err != nil {
		return nil, path, err
	}
	return fc, path, nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

func normalizeKey(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	lowered = strings.ReplaceAll(lowered, "-", "")
	lowered = strings.ReplaceAll(lowered, "_", "")
	return lowered
}

// scalarAsString returns the scalar's source text, so an unquoted
// `version: 1.10` stays "1.10" instead of going through a float.
func scalarAsString(n yaml.Node) (string, error) {
	if n.Kind != yaml.ScalarNode {
		return "", fmt.Errorf("expected string, got %s", nodeKindName(n.Kind))
	}
	if n.Tag == "!!null" {
		return "", nil
	}
	return strings.TrimSpace(n.Value), nil
}

func nodeKindName(k yaml.Kind) string {
	switch k {
	case yaml.MappingNode:
		return "mapping"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.AliasNode:
		return "alias"
	default:
		return "document"
	}
}

func valueAsBool(v any) (bool, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		trimmed := strings.ToLower(strings.TrimSpace(val))
		switch trimmed {
		case "true", "t", "1", "yes", "y":
			return true, nil
		case "false", "f", "0", "no", "n", "":
			return false, nil
		default:
			return false, fmt.Errorf("invalid boolean value %q", val)
		}
	case nil:
		return false, nil
	default:
		return false, fmt.Errorf("expected boolean, got %T", v)
	}
}
