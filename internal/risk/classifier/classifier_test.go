// internal/risk/classifier/classifier_test.go
package classifier

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeArtifact(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

const validArtifact = `{
  "version": "test.1",
  "intercept": 1.5,
  "weights": {
    "dti_ratio": 2.5,
    "ltv_ratio": 1.8,
    "credit_score": -0.005,
    "fraud_flag": 2.2
  }
}`

func TestLoad_Valid(t *testing.T) {
	clf, err := Load(writeArtifact(t, validArtifact))
	require.NoError(t, err)
	assert.Equal(t, "test.1", clf.Version())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading model artifact")
}

func TestLoad_MalformedJSON(t *testing.T) {
	_, err := Load(writeArtifact(t, "{not json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing model artifact")
}

func TestLoad_MissingWeight(t *testing.T) {
	_, err := Load(writeArtifact(t, `{"intercept": 0, "weights": {"dti_ratio": 1}}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing weight: ltv_ratio")
}

func TestPredictProba(t *testing.T) {
	clf, err := Load(writeArtifact(t, validArtifact))
	require.NoError(t, err)

	tests := []struct {
		name                    string
		dti, ltv, credit, fraud float64
	}{
		{"strong applicant", 0.2, 0.5, 780, 0},
		{"stressed applicant", 0.46, 0.78, 610, 1},
		{"midrange applicant", 0.3, 0.6, 700, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := clf.PredictProba(tt.dti, tt.ltv, tt.credit, tt.fraud)
			require.NoError(t, err)

			z := 1.5 + 2.5*tt.dti + 1.8*tt.ltv - 0.005*tt.credit + 2.2*tt.fraud
			want := 1.0 / (1.0 + math.Exp(-z))
			assert.InDelta(t, want, p, 1e-12)
			assert.Greater(t, p, 0.0)
			assert.Less(t, p, 1.0)
		})
	}
}

func TestPredictProba_MonotoneInRiskInputs(t *testing.T) {
	clf, err := Load(writeArtifact(t, validArtifact))
	require.NoError(t, err)

	base, err := clf.PredictProba(0.3, 0.6, 700, 0)
	require.NoError(t, err)

	higherDTI, err := clf.PredictProba(0.5, 0.6, 700, 0)
	require.NoError(t, err)
	assert.Greater(t, higherDTI, base)

	betterCredit, err := clf.PredictProba(0.3, 0.6, 800, 0)
	require.NoError(t, err)
	assert.Less(t, betterCredit, base)

	withFraud, err := clf.PredictProba(0.3, 0.6, 700, 1)
	require.NoError(t, err)
	assert.Greater(t, withFraud, base)
}
