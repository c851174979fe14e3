package source

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/unalkalkan/NovelReader/pkg/types"
)

// File is the on-disk layout of a sources file
type File struct {
	Sources []types.SourceConfig `yaml:"sources"`
}

// ReadYAML decodes a sources file. Every source needs an id, a name and a
// base URL; duplicate ids are rejected.
func ReadYAML(r io.Reader) ([]types.SourceConfig, error) {
	var f File
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		if err == io.EOF {
			return []types.SourceConfig{}, nil
		}
		return nil, fmt.Errorf("failed to parse sources: %w", err)
	}

	seen := make(map[string]bool, len(f.Sources))
	for i, s := range f.Sources {
		if err := Validate(s); err != nil {
			return nil, fmt.Errorf("source %d: %w", i, err)
		}
		if seen[s.ID] {
			return nil, fmt.Errorf("source %d: duplicate id %q", i, s.ID)
		}
		seen[s.ID] = true
	}
	if f.Sources == nil {
		f.Sources = []types.SourceConfig{}
	}
	return f.Sources, nil
}

// WriteYAML encodes sources in the layout read by ReadYAML
func WriteYAML(w io.Writer, sources []types.SourceConfig) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(File{Sources: sources}); err != nil {
		return fmt.Errorf("failed to write sources: %w", err)
	}
	return enc.Close()
}

// Validate checks the fields a stored source cannot do without
func Validate(s types.SourceConfig) error {
	if strings.TrimSpace(s.ID) == "" {
		return fmt.Errorf("id is required")
	}
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if _, ok := ResolveURL(s.BaseURL, "/"); !ok {
		return fmt.Errorf("base_url %q is not an absolute URL", s.BaseURL)
	}
	return nil
}
