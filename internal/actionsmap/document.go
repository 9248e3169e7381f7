// Copyright (c) 2026 Kilu Team
// Kilu - actions map command-line front end
// This source code is licensed under the MIT license found in the LICENSE file.

// Package actionsmap loads the declarative actions map and builds the
// argument tree from it.
//
// An actions map is a YAML, TOML or JSON (with comments) document with a
// "_global" section and a "categories" map. Each category holds actions;
// each action declares its arguments in order. Help fields are message
// IDs resolved through the i18n catalog.
package actionsmap

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
	"github.com/tidwall/jsonc"
)

//go:embed default.yaml
var defaultFS embed.FS

// Document is a decoded actions map.
type Document struct {
	Global     Global              `yaml:"_global" toml:"_global" json:"_global"`
	Categories map[string]Category `yaml:"categories" toml:"categories" json:"categories"`
}

// Global describes the root parser and the options shared by every action.
type Global struct {
	Name      string     `yaml:"name" toml:"name" json:"name"`
	Help      string     `yaml:"help" toml:"help" json:"help"`
	Arguments []Argument `yaml:"arguments" toml:"arguments" json:"arguments"`
}

// Category groups actions. Its arguments must be options; they are
// inherited by every action of the category.
type Category struct {
	Help      string            `yaml:"category_help" toml:"category_help" json:"category_help"`
	Arguments []Argument        `yaml:"arguments" toml:"arguments" json:"arguments"`
	Actions   map[string]Action `yaml:"actions" toml:"actions" json:"actions"`
}

// Action is a leaf command.
type Action struct {
	Help      string     `yaml:"action_help" toml:"action_help" json:"action_help"`
	Arguments []Argument `yaml:"arguments" toml:"arguments" json:"arguments"`
}

// Argument declares a positional argument or an option.
type Argument struct {
	Name     string   `yaml:"name" toml:"name" json:"name"`
	Full     string   `yaml:"full" toml:"full" json:"full"`
	Help     string   `yaml:"help" toml:"help" json:"help"`
	Type     string   `yaml:"type" toml:"type" json:"type"`
	Nargs    string   `yaml:"nargs" toml:"nargs" json:"nargs"`
	Default  any      `yaml:"default" toml:"default" json:"default"`
	Required bool     `yaml:"required" toml:"required" json:"required"`
	Choices  []string `yaml:"choices" toml:"choices" json:"choices"`
	Action   string   `yaml:"action" toml:"action" json:"action"`
	Metavar  string   `yaml:"metavar" toml:"metavar" json:"metavar"`
	Dest     string   `yaml:"dest" toml:"dest" json:"dest"`
	Extra    *Extra   `yaml:"extra" toml:"extra" json:"extra"`
}

// Extra holds the interactive and validation extensions of an argument.
type Extra struct {
	// Ask is the message ID of the question asked when the value is absent.
	Ask string `yaml:"ask" toml:"ask" json:"ask"`
	// Password is the message ID of the secret prompt (with confirmation)
	// shown when the value is absent.
	Password string `yaml:"password" toml:"password" json:"password"`
	// Pattern is a regular expression and the message ID reported when a
	// value does not match it.
	Pattern []string `yaml:"pattern" toml:"pattern" json:"pattern"`
	// Required rejects absent or empty values once prompts have run.
	Required bool `yaml:"required" toml:"required" json:"required"`
}

// Format names a supported encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".json", ".jsonc":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unsupported actions map format: %s", path)
}

// Parse decodes data in the given format and validates the result.
func Parse(data []byte, format Format) (*Document, error) {
	var doc Document
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &doc)
	case FormatTOML:
		err = toml.Unmarshal(data, &doc)
	case FormatJSON:
		err = json.Unmarshal(jsonc.ToJSON(data), &doc)
	default:
		return nil, fmt.Errorf("unsupported actions map format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing actions map: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Load reads and parses the actions map at path.
func Load(path string) (*Document, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	doc, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Default returns the actions map bundled with kilu.
func Default() (*Document, error) {
	data, err := defaultFS.ReadFile("default.yaml")
	if err != nil {
		return nil, err
	}
	return Parse(data, FormatYAML)
}

// Validate checks the structure that decoding cannot.
func (d *Document) Validate() error {
	if d.Global.Name == "" {
		return fmt.Errorf("actions map: _global.name is required")
	}
	if len(d.Categories) == 0 {
		return fmt.Errorf("actions map: no categories defined")
	}
	for cname, c := range d.Categories {
		if len(c.Actions) == 0 {
			return fmt.Errorf("actions map: category %s has no actions", cname)
		}
		for aname, a := range c.Actions {
			for _, arg := range a.Arguments {
				if err := arg.validate(); err != nil {
					return fmt.Errorf("actions map: %s %s: %w", cname, aname, err)
				}
			}
		}
		for _, arg := range c.Arguments {
			if err := arg.validate(); err != nil {
				return fmt.Errorf("actions map: %s: %w", cname, err)
			}
		}
	}
	return nil
}

func (a Argument) validate() error {
	if a.Name == "" {
		return fmt.Errorf("argument without a name")
	}
	if a.Extra != nil && len(a.Extra.Pattern) > 0 && len(a.Extra.Pattern) != 2 {
		return fmt.Errorf("%s: pattern takes a regular expression and a message", a.Name)
	}
	return nil
}

// HelpKeys returns every message ID referenced by the document.
func (d *Document) HelpKeys() []string {
	var keys []string
	add := func(k string) {
		if k != "" {
			keys = append(keys, k)
		}
	}
	addArgs := func(args []Argument) {
		for _, a := range args {
			add(a.Help)
			if a.Extra != nil {
				add(a.Extra.Ask)
				add(a.Extra.Password)
				if len(a.Extra.Pattern) == 2 {
					add(a.Extra.Pattern[1])
				}
			}
		}
	}
	add(d.Global.Help)
	addArgs(d.Global.Arguments)
	for _, c := range d.Categories {
		add(c.Help)
		addArgs(c.Arguments)
		for _, a := range c.Actions {
			add(a.Help)
			addArgs(a.Arguments)
		}
	}
	return keys
}
