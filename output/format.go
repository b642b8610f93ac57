// Package output renders a SimplifiedDesign as text. It is a pure encoder:
// simplification semantics live entirely upstream in the simplify package.
package output

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"figma-simplify-mcp/config"
)

// Render serializes v per the configured format, defaulting to YAML.
func Render(v any, format config.OutputFormat) (string, error) {
	switch format {
	case config.FormatJSON:
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return "", fmt.Errorf("output: marshal json: %w", err)
		}
		return string(b), nil
	default:
		b, err := yaml.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("output: marshal yaml: %w", err)
		}
		return string(b), nil
	}
}
