package textio

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/tidwall/gjson"
	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"

	"github.com/yndnr/myke/internal/core/domain"
)

// ReadText returns the file contents with surrounding whitespace trimmed.
func ReadText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// ReadLines returns the trimmed, non-empty lines of a file.
func ReadLines(path string) ([]string, error) {
	text, err := ReadText(path)
	if err != nil {
		return nil, err
	}
	return splitLines(text), nil
}

func splitLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// ReadJSON parses a JSON object from path.
func ReadJSON(path string) (map[string]any, error) {
	text, err := ReadText(path)
	if err != nil {
		return nil, err
	}
	return ParseJSON([]byte(text))
}

// ParseJSON parses a JSON object.
func ParseJSON(data []byte) (map[string]any, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, domain.ErrInvalidDocument.WithCause(err)
	}
	return asMap(v)
}

// QueryJSON evaluates a gjson path against the JSON file at path and
// returns the matched value, or nil when nothing matches.
func QueryJSON(path, query string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(data) {
		return nil, domain.ErrInvalidDocument.WithDetailsf("%s is not valid JSON", path)
	}
	res := gjson.GetBytes(data, query)
	if !res.Exists() {
		return nil, nil
	}
	return res.Value(), nil
}

// ReadYAML parses a single YAML mapping from path.
func ReadYAML(path string) (map[string]any, error) {
	text, err := ReadText(path)
	if err != nil {
		return nil, err
	}
	var v any
	if err := yaml.Unmarshal([]byte(text), &v); err != nil {
		return nil, domain.ErrInvalidDocument.WithCause(err)
	}
	return asMap(v)
}

// ReadYAMLAll parses every document of a multi-document YAML file.
func ReadYAMLAll(path string) ([]map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var docs []map[string]any
	for {
		var v any
		err := dec.Decode(&v)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, domain.ErrInvalidDocument.WithCause(err)
		}
		m, err := asMap(v)
		if err != nil {
			return nil, err
		}
		docs = append(docs, m)
	}
	return docs, nil
}

// ReadTOML parses a TOML document from path.
func ReadTOML(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, domain.ErrInvalidDocument.WithCause(err)
	}
	return m, nil
}

// ReadINI parses an INI file into one map per section. Keys of the
// DEFAULT section are inherited by every other section and key names are
// lower-cased. DEFAULT itself is not returned.
func ReadINI(path string) (map[string]map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := ini.LoadSources(ini.LoadOptions{InsensitiveKeys: true}, data)
	if err != nil {
		return nil, domain.ErrInvalidDocument.WithCause(err)
	}

	defaults := f.Section(ini.DefaultSection).KeysHash()
	out := make(map[string]map[string]string)
	for _, sec := range f.Sections() {
		if sec.Name() == ini.DefaultSection {
			continue
		}
		m := make(map[string]string, len(defaults))
		for k, v := range defaults {
			m[k] = v
		}
		for k, v := range sec.KeysHash() {
			m[k] = v
		}
		out[sec.Name()] = m
	}
	return out, nil
}

// ReadEnvFile parses KEY=VALUE pairs from a dotenv file.
func ReadEnvFile(path string) (map[string]string, error) {
	return godotenv.Read(path)
}

// LoadEnvFile applies a dotenv file to the process environment,
// overriding variables that are already set.
func LoadEnvFile(path string) error {
	return godotenv.Overload(path)
}

// Fetcher downloads remote documents.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// ReadURL returns the body of a remote document.
func ReadURL(ctx context.Context, f Fetcher, url string) (string, error) {
	data, err := f.Fetch(ctx, url)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ReadURLJSON parses a remote JSON object.
func ReadURLJSON(ctx context.Context, f Fetcher, url string) (map[string]any, error) {
	data, err := f.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	return ParseJSON(data)
}

// asMap accepts only mappings with string keys. yaml.v3 decodes
// mappings into map[string]any already, so other key types mean the
// document was not a plain mapping.
func asMap(v any) (map[string]any, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, domain.ErrInvalidDocument.WithDetailsf("got %T", v)
	}
	return m, nil
}
