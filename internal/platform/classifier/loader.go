// internal/platform/classifier/loader.go
package classifier

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// rulesFile is the on-disk rule table. YAML sequences keep the evaluation order:
//
//	sites:
//	  - key: humboldt
//	    pattern: '.*\.z05\..*'
//	pipelines:
//	  - key: a2e_buoy_ingest
//	    pattern: 'buoy\..*\.(?:csv|zip|tar|tar\.gz)'
type rulesFile struct {
	Sites     []PatternRule `yaml:"sites"`
	Pipelines []PatternRule `yaml:"pipelines"`
}

// Parse builds a classifier from a YAML rule table.
func Parse(data []byte) (*Classifier, error) {
	var f rulesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse rules: %w", err)
	}
	if len(f.Sites) == 0 {
		return nil, fmt.Errorf("rules: at least one site rule is required")
	}
	if len(f.Pipelines) == 0 {
		return nil, fmt.Errorf("rules: at least one pipeline rule is required")
	}

	sites, err := NewRuleSet(f.Sites...)
	if err != nil {
		return nil, fmt.Errorf("site rules: %w", err)
	}
	kinds, err := NewRuleSet(f.Pipelines...)
	if err != nil {
		return nil, fmt.Errorf("pipeline rules: %w", err)
	}
	return New(sites, kinds), nil
}

// LoadFile reads a YAML rule table from path.
func LoadFile(path string) (*Classifier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}
	return Parse(data)
}

// Load returns the rule table at path, or the built-in rules when path is empty.
func Load(path string) (*Classifier, error) {
	if path == "" {
		return NewDefault(), nil
	}
	return LoadFile(path)
}
