// internal/risk/scorer/rule_test.go
package scorer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loanrisk-workers/internal/models"
	"loanrisk-workers/internal/risk/features"
)

func cleanVector() features.Vector {
	return features.Vector{
		"credit_score_normalized": 0.9,
		"credit_score":            795,
		"dti_ratio":               0.2,
		"ltv_ratio":               0.5,
		"fraud_flag":              0,
		"falling_property_flag":   0,
	}
}

func TestRuleScorer_NoPenalties(t *testing.T) {
	res, err := NewRuleScorer().Score(cleanVector())
	require.NoError(t, err)

	assert.Equal(t, 100.0, res.RiskScore)
	assert.Equal(t, models.RiskCategoryLow, res.RiskCategory)
	assert.Empty(t, res.Reasons)
	assert.NotNil(t, res.Reasons)
}

func TestRuleScorer_SinglePenalties(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(v features.Vector)
		wantScore  float64
		wantReason string
	}{
		{
			name:       "low credit score",
			mutate:     func(v features.Vector) { v["credit_score_normalized"] = 0.5636 },
			wantScore:  80,
			wantReason: "Credit score is below 650",
		},
		{
			name:       "high dti",
			mutate:     func(v features.Vector) { v["dti_ratio"] = 0.46 },
			wantScore:  85,
			wantReason: "High Debt-to-Income ratio increases repayment risk",
		},
		{
			name:       "high ltv",
			mutate:     func(v features.Vector) { v["ltv_ratio"] = 0.85 },
			wantScore:  85,
			wantReason: "High Loan-to-Value ratio indicates low property equity",
		},
		{
			name:       "fraud flag",
			mutate:     func(v features.Vector) { v["fraud_flag"] = 1 },
			wantScore:  75,
			wantReason: "Potential fraud signals detected in documents",
		},
		{
			name:       "falling property trend",
			mutate:     func(v features.Vector) { v["falling_property_flag"] = 1 },
			wantScore:  90,
			wantReason: "Property value trend is falling",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := cleanVector()
			tt.mutate(v)

			res, err := NewRuleScorer().Score(v)
			require.NoError(t, err)
			assert.Equal(t, tt.wantScore, res.RiskScore)
			assert.Equal(t, []string{tt.wantReason}, res.Reasons)
		})
	}
}

func TestRuleScorer_WorkedScenario(t *testing.T) {
	// Self-employed borrower, credit 610, doc check failed, falling trend.
	v := cleanVector()
	v["credit_score_normalized"] = (610.0 - 300.0) / 550.0
	v["fraud_flag"] = 1
	v["falling_property_flag"] = 1

	res, err := NewRuleScorer().Score(v)
	require.NoError(t, err)

	assert.Equal(t, 45.0, res.RiskScore)
	assert.Equal(t, models.RiskCategoryHigh, res.RiskCategory)
	assert.Equal(t, []string{
		"Credit score is below 650",
		"Potential fraud signals detected in documents",
		"Property value trend is falling",
	}, res.Reasons)
}

func TestRuleScorer_AllPenaltiesClampToZero(t *testing.T) {
	v := features.Vector{
		"credit_score_normalized": 0.1,
		"dti_ratio":               0.9,
		"ltv_ratio":               0.95,
		"fraud_flag":              1,
		"falling_property_flag":   1,
	}

	res, err := NewRuleScorer().Score(v)
	require.NoError(t, err)

	// 100 - 20 - 15 - 15 - 25 - 10 = 15, no clamp needed but High
	assert.Equal(t, 15.0, res.RiskScore)
	assert.Equal(t, models.RiskCategoryHigh, res.RiskCategory)
	assert.Len(t, res.Reasons, 5)
}

func TestRuleScorer_CategoryBoundaries(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(v features.Vector)
		want   models.RiskCategory
		score  float64
	}{
		{
			name:   "exactly 75 is low",
			mutate: func(v features.Vector) { v["fraud_flag"] = 1 },
			want:   models.RiskCategoryLow,
			score:  75,
		},
		{
			name: "exactly 50 is medium",
			mutate: func(v features.Vector) {
				v["credit_score_normalized"] = 0.5
				v["dti_ratio"] = 0.5
				v["ltv_ratio"] = 0.9
			},
			want:  models.RiskCategoryMedium,
			score: 50,
		},
		{
			name: "just below 50 is high",
			mutate: func(v features.Vector) {
				v["credit_score_normalized"] = 0.5
				v["fraud_flag"] = 1
				v["falling_property_flag"] = 1
			},
			want:  models.RiskCategoryHigh,
			score: 45,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := cleanVector()
			tt.mutate(v)

			res, err := NewRuleScorer().Score(v)
			require.NoError(t, err)
			assert.Equal(t, tt.score, res.RiskScore)
			assert.Equal(t, tt.want, res.RiskCategory)
		})
	}
}

func TestRuleCategory_Cutoffs(t *testing.T) {
	tests := []struct {
		score float64
		want  models.RiskCategory
	}{
		{75, models.RiskCategoryLow},
		{74, models.RiskCategoryMedium},
		{50, models.RiskCategoryMedium},
		{49, models.RiskCategoryHigh},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ruleCategory(tt.score), "score %.0f", tt.score)
	}
}

func TestRuleScorer_ThresholdEdges(t *testing.T) {
	v := cleanVector()
	v["credit_score_normalized"] = 0.65 // not below
	v["dti_ratio"] = 0.4               // not above
	v["ltv_ratio"] = 0.8               // not above

	res, err := NewRuleScorer().Score(v)
	require.NoError(t, err)
	assert.Equal(t, 100.0, res.RiskScore)
	assert.Empty(t, res.Reasons)
}
