package model

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type schemaFile struct {
	Fields []fieldFile `yaml:"fields"`
}

type fieldFile struct {
	ID             string       `yaml:"id"`
	Kind           string       `yaml:"kind"`
	Label          string       `yaml:"label"`
	Placeholder    string       `yaml:"placeholder"`
	Help           string       `yaml:"help"`
	Required       bool         `yaml:"required"`
	ConfirmationOf string       `yaml:"confirmation_of"`
	Multiple       bool         `yaml:"multiple"`
	Options        []optionFile `yaml:"options"`
	ErrorMessage   string       `yaml:"error_message"`
}

// optionFile accepts either {value, label} mappings or bare scalars, where a
// scalar is used for both value and label.
type optionFile struct {
	Value string
	Label string
}

func (o *optionFile) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		o.Value = node.Value
		o.Label = node.Value
		return nil
	}
	var raw struct {
		Value string  `yaml:"value"`
		Label *string `yaml:"label"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	o.Value = raw.Value
	o.Label = raw.Value
	if raw.Label != nil {
		o.Label = *raw.Label
	}
	return nil
}

// LoadSchema parses a YAML or JSON schema document. source names the document
// in error messages.
func LoadSchema(data []byte, source string) (Schema, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return Schema{}, fmt.Errorf("model: schema %s is empty", source)
	}
	var doc schemaFile
	// JSON is a subset of YAML, a single decoder handles both.
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Schema{}, fmt.Errorf("model: parse %s: %w", source, err)
	}
	if len(doc.Fields) == 0 {
		return Schema{}, fmt.Errorf("model: schema %s declares no fields", source)
	}

	fields := make([]Field, 0, len(doc.Fields))
	for _, raw := range doc.Fields {
		field := Field{
			ID:             raw.ID,
			Kind:           Kind(raw.Kind),
			Label:          raw.Label,
			Placeholder:    raw.Placeholder,
			Help:           raw.Help,
			Required:       raw.Required,
			ConfirmationOf: raw.ConfirmationOf,
			Multiple:       raw.Multiple,
			ErrorMessage:   raw.ErrorMessage,
		}
		for _, option := range raw.Options {
			field.Options = append(field.Options, Option{Value: option.Value, Label: option.Label})
		}
		fields = append(fields, field)
	}

	schema, err := NewSchema(fields...)
	if err != nil {
		return Schema{}, fmt.Errorf("model: schema %s: %w", source, err)
	}
	return schema, nil
}

// LoadSchemaFS reads and parses a schema file from fsys.
func LoadSchemaFS(fsys fs.FS, path string) (Schema, error) {
	if fsys == nil {
		return Schema{}, fmt.Errorf("model: nil filesystem")
	}
	if !IsSchemaFile(path) {
		return Schema{}, fmt.Errorf("model: %s is not a .json, .yaml or .yml file", path)
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return Schema{}, fmt.Errorf("model: read %s: %w", path, err)
	}
	return LoadSchema(data, path)
}

// IsSchemaFile reports whether path has a supported schema extension.
func IsSchemaFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
