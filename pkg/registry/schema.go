// pkg/registry/schema.go
package registry

type FeatureRegistry struct {
	Version     string    `json:"version"`
	LastUpdated string    `json:"lastUpdated"`
	Features    []Feature `json:"features"`
}

type Feature struct {
	Name        string  `json:"name"`
	DisplayName string  `json:"displayName"`
	Description string  `json:"description"`
	Stage       string  `json:"stage"` // "preprocessing" or "feature_engineering"
	Kind        string  `json:"kind"`  // "numeric", "categorical", "flag"
	Default     float64 `json:"default"`

	// Numeric features only.
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`

	// Categorical features only: source label to encoded value.
	Levels map[string]float64 `json:"levels,omitempty"`

	Tags []string `json:"tags,omitempty"`
}
