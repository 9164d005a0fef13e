// Package templates holds the embedded files `wicket init` writes into a
// fresh workspace.
package templates

import (
	"embed"
)

//go:embed playbook/playbook.yaml
var playbookFiles embed.FS

// DefaultPlaybook returns the default playbook YAML content.
func DefaultPlaybook() (string, error) {
	content, err := playbookFiles.ReadFile("playbook/playbook.yaml")
	if err != nil {
		return "", err
	}
	return string(content), nil
}
