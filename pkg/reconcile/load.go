package reconcile

import (
	"fmt"
	"os"

	"github.com/beam-cloud/emailreader/pkg/types"
	"gopkg.in/yaml.v3"
)

// LoadPatterns reads a YAML list of patterns. An empty path yields no patterns.
func LoadPatterns(path string) ([]types.Pattern, error) {
	var patterns []types.Pattern
	if err := loadYAML(path, &patterns); err != nil {
		return nil, fmt.Errorf("load patterns: %w", err)
	}
	return patterns, nil
}

// LoadScheduled reads a YAML list of scheduled items. An empty path yields none.
func LoadScheduled(path string) ([]types.ScheduledItem, error) {
	var items []types.ScheduledItem
	if err := loadYAML(path, &items); err != nil {
		return nil, fmt.Errorf("load scheduled items: %w", err)
	}
	return items, nil
}

func loadYAML(path string, out any) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, out)
}
