// Package classifier loads the logistic default-probability model from its
// JSON artifact. The artifact is read once at process start; a missing or
// malformed artifact fails startup, never an individual request. A loaded
// model is immutable and safe for concurrent use.
package classifier

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// Artifact is the on-disk form of the trained model: an intercept plus one
// weight per input feature.
type Artifact struct {
	Version   string             `json:"version"`
	TrainedAt string             `json:"trainedAt"`
	Intercept float64            `json:"intercept"`
	Weights   map[string]float64 `json:"weights"`
}

// requiredWeights are the model inputs; an artifact missing any of them is
// rejected at load time.
var requiredWeights = []string{"dti_ratio", "ltv_ratio", "credit_score", "fraud_flag"}

type Classifier struct {
	version   string
	intercept float64

	wDTI    float64
	wLTV    float64
	wCredit float64
	wFraud  float64
}

// Load reads and validates the model artifact at path.
func Load(path string) (*Classifier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model artifact: %w", err)
	}

	var art Artifact
	if err := json.Unmarshal(data, &art); err != nil {
		return nil, fmt.Errorf("parsing model artifact: %w", err)
	}

	for _, name := range requiredWeights {
		if _, ok := art.Weights[name]; !ok {
			return nil, fmt.Errorf("model artifact missing weight: %s", name)
		}
	}

	return &Classifier{
		version:   art.Version,
		intercept: art.Intercept,
		wDTI:      art.Weights["dti_ratio"],
		wLTV:      art.Weights["ltv_ratio"],
		wCredit:   art.Weights["credit_score"],
		wFraud:    art.Weights["fraud_flag"],
	}, nil
}

// Version returns the artifact version string.
func (c *Classifier) Version() string {
	return c.version
}

// PredictProba returns the probability of default for one applicant.
func (c *Classifier) PredictProba(dtiRatio, ltvRatio, creditScore, fraudFlag float64) (float64, error) {
	z := c.intercept +
		c.wDTI*dtiRatio +
		c.wLTV*ltvRatio +
		c.wCredit*creditScore +
		c.wFraud*fraudFlag
	return sigmoid(z), nil
}

func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}
