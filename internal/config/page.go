package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// PageTemplate is one HTML entry point that is composed from fragments.
type PageTemplate struct {
	File    string        `yaml:"file"` // relative to <source>/site, mirrored under the output root
	Title   string        `yaml:"title,omitempty"`
	Replace []ReplaceRule `yaml:"replace,omitempty"`
}

// ReplaceRule substitutes {{{Find}}} with the literal Replace value.
type ReplaceRule struct {
	Find    string `yaml:"find"`
	Replace string `yaml:"replace"`
}

// Fragment registers a reusable markup file under a token name.
type Fragment struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"` // project relative
}

// UnmarshalYAML accepts either a mapping or a bare path. A bare path is its
// own token name, so `- sources/site/_header.html` is matched by
// {{{sources/site/_header.html}}}.
func (f *Fragment) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		f.Name = value.Value
		f.Path = value.Value
		return nil
	case yaml.MappingNode:
		type plain Fragment
		var p plain
		if err := value.Decode(&p); err != nil {
			return err
		}
		*f = Fragment(p)
		if f.Name == "" {
			f.Name = f.Path
		}
		return nil
	default:
		return fmt.Errorf("line %d: fragment must be a path or a {name, path} mapping", value.Line)
	}
}
