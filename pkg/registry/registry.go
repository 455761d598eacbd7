// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"os"
)

func LoadRegistry(path string) (*FeatureRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg FeatureRegistry
	err = json.Unmarshal(data, &reg)
	return &reg, err
}

// Lookup returns the feature with the given name, or nil if unknown.
func (r *FeatureRegistry) Lookup(name string) *Feature {
	for i := range r.Features {
		if r.Features[i].Name == name {
			return &r.Features[i]
		}
	}
	return nil
}

// StageFeatures returns the features produced by the given pipeline stage.
func (r *FeatureRegistry) StageFeatures(stage string) []Feature {
	var out []Feature
	for _, f := range r.Features {
		if f.Stage == stage {
			out = append(out, f)
		}
	}
	return out
}
