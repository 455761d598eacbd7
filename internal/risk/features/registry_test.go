package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loanrisk-workers/internal/models"
	"loanrisk-workers/internal/risk/preprocess"
	"loanrisk-workers/pkg/registry"
)

// The registry declares every feature the pipeline emits; derivation on an
// empty application must produce each declared feature at its declared
// default.
func TestRegistryCoversDerivedFeatures(t *testing.T) {
	reg, err := registry.LoadRegistry("../../../configs/feature-registry.json")
	require.NoError(t, err)
	require.NotEmpty(t, reg.Features)

	rec := &models.ApplicationRecord{}
	pre := preprocess.Preprocess(rec)
	vec := Derive(pre, rec)

	for _, f := range reg.StageFeatures("feature_engineering") {
		val, ok := vec[f.Name]
		assert.True(t, ok, "derived vector missing %s", f.Name)
		assert.Equal(t, f.Default, val, "default mismatch for %s", f.Name)
	}

	for _, f := range reg.StageFeatures("preprocessing") {
		_, ok := pre[f.Name]
		assert.True(t, ok, "preprocessed record missing %s", f.Name)
	}
}

func TestRegistryLookupAndBounds(t *testing.T) {
	reg, err := registry.LoadRegistry("../../../configs/feature-registry.json")
	require.NoError(t, err)

	credit := reg.Lookup("credit_score")
	require.NotNil(t, credit)
	assert.Equal(t, "numeric", credit.Kind)
	require.NotNil(t, credit.Min)
	require.NotNil(t, credit.Max)
	assert.Equal(t, 300.0, *credit.Min)
	assert.Equal(t, 850.0, *credit.Max)

	assert.Nil(t, reg.Lookup("no_such_feature"))

	for _, f := range reg.Features {
		if f.Kind == "categorical" {
			assert.NotEmpty(t, f.Levels, "categorical %s has no levels", f.Name)
		}
	}
}
