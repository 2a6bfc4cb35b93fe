package analysis

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileProvider serves Features computed elsewhere and saved as YAML or JSON.
type FileProvider struct {
	Path string
}

func (p FileProvider) Analyze(ctx context.Context, audioPath string) (*Features, error) {
	f, err := LoadFeatures(p.Path)
	if err != nil {
		return nil, err
	}
	f.AudioPath = audioPath
	return f, nil
}

// LoadFeatures reads a features document. JSON is a subset of YAML, so both
// go through the same decoder.
func LoadFeatures(path string) (*Features, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f Features
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("features %s: %w", path, err)
	}
	if f.Duration <= 0 {
		return nil, fmt.Errorf("features %s: missing duration", path)
	}
	f.Normalize()
	return &f, nil
}

func SaveFeatures(path string, f *Features) error {
	b, err := yaml.Marshal(f)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}
