package main

import (
	"encoding/json"
	"fmt"

	"github.com/TrevorS/clusterkit/internal/config"
	"gopkg.in/yaml.v3"
)

// print writes v to the app output in the configured format.
func (a *app) print(v any) error {
	switch a.cfg.Format {
	case config.FormatYAML:
		enc := yaml.NewEncoder(a.out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encoding json: %w", err)
		}
		return nil
	}
}
