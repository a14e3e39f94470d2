package schema

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Document is the YAML representation of a schema, used by CI pipelines
// that lint a checked-in schema file instead of a live database.
type Document struct {
	Name   string  `yaml:"name"`
	Tables []Table `yaml:"tables"`
}

// LoadFile reads a YAML schema document from disk.
func LoadFile(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}

	s, err := Load(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema file %s: %w", path, err)
	}
	return s, nil
}

// Load parses a YAML schema document.
func Load(data []byte) (*Schema, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse schema document: %w", err)
	}

	seen := make(map[string]bool, len(doc.Tables))
	for i := range doc.Tables {
		t := &doc.Tables[i]
		if t.Name == "" {
			return nil, fmt.Errorf("table at position %d has no name", i)
		}
		if seen[t.Name] {
			return nil, fmt.Errorf("duplicate table name: %s", t.Name)
		}
		seen[t.Name] = true
	}

	return New(doc.Name, doc.Tables), nil
}
