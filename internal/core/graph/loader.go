package graph

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// document is the YAML shape of a playbook file.
type document struct {
	Start StepID `yaml:"start"`
	Steps []Step `yaml:"steps"`
}

// Load parses and validates a playbook from YAML bytes.
func Load(data []byte) (*Graph, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse playbook: %w", err)
	}
	if doc.Start == "" {
		return nil, fmt.Errorf("playbook does not declare a start step")
	}
	g, err := New(doc.Start, doc.Steps)
	if err != nil {
		return nil, fmt.Errorf("invalid playbook: %w", err)
	}
	return g, nil
}

// LoadFile parses and validates a playbook YAML file.
func LoadFile(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read playbook: %w", err)
	}
	return Load(data)
}
