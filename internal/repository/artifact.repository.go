package repository

import (
	"encoding/json"
	"finflow/internal/domain"
	"fmt"
	"os"
	"path/filepath"
)

const (
	policyFileName  = "irt_final.zip"
	resultsFileName = "evaluation_results.json"
)

// ArtifactRepository reads the frozen policy-evaluation bundle exactly once.
type ArtifactRepository interface {
	Load() (*domain.RawEvaluation, error)
	BundlePath() string
}

type artifactRepositoryHandler struct {
	bundleDir string
}

func NewArtifactRepository(bundleDir string) ArtifactRepository {
	return artifactRepositoryHandler{bundleDir: bundleDir}
}

func (h artifactRepositoryHandler) BundlePath() string {
	return h.bundleDir
}

type evaluationFile struct {
	Results struct {
		Metrics map[string]float64 `json:"metrics"`
		Series  struct {
			PortfolioValues []float64 `json:"portfolio_values"`
			ValueReturns    []float64 `json:"value_returns"`
			PerStepReturns  []float64 `json:"per_step_returns"`
			CashRatio       []float64 `json:"cash_ratio"`
			Dates           []string  `json:"dates"`
		} `json:"series"`
		Irt struct {
			Symbols       []string        `json:"symbols"`
			ActualWeights json.RawMessage `json:"actual_weights"`
			CrisisLevels  []float64       `json:"crisis_levels"`
		} `json:"irt"`
		TestPeriod struct {
			Start string `json:"start"`
			End   string `json:"end"`
		} `json:"test_period"`
	} `json:"results"`
}

func (h artifactRepositoryHandler) Load() (*domain.RawEvaluation, error) {
	policyPath := filepath.Join(h.bundleDir, policyFileName)
	if _, err := os.Stat(policyPath); err != nil {
		return nil, fmt.Errorf("%w: policy file %s", domain.ErrMissingArtifact, policyPath)
	}

	resultsPath := filepath.Join(h.bundleDir, resultsFileName)
	data, err := os.ReadFile(resultsPath)
	if err != nil {
		return nil, fmt.Errorf("%w: results file %s", domain.ErrMissingArtifact, resultsPath)
	}

	var payload evaluationFile
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", resultsPath, err)
	}

	weights, err := decodeWeightsHistory(payload.Results.Irt.ActualWeights)
	if err != nil {
		return nil, fmt.Errorf("failed to decode weights history: %w", err)
	}

	raw := &domain.RawEvaluation{
		Metrics:         payload.Results.Metrics,
		PortfolioValues: payload.Results.Series.PortfolioValues,
		ValueReturns:    payload.Results.Series.ValueReturns,
		PerStepReturns:  payload.Results.Series.PerStepReturns,
		CashRatio:       payload.Results.Series.CashRatio,
		Dates:           payload.Results.Series.Dates,
		Symbols:         payload.Results.Irt.Symbols,
		WeightsHistory:  weights,
		CrisisLevels:    payload.Results.Irt.CrisisLevels,
		TestStart:       payload.Results.TestPeriod.Start,
		TestEnd:         payload.Results.TestPeriod.End,
	}
	if raw.Metrics == nil {
		raw.Metrics = map[string]float64{}
	}
	return raw, nil
}

// decodeWeightsHistory accepts the weight history either as a matrix or as a
// single flat vector, which is treated as a one-step history.
func decodeWeightsHistory(raw json.RawMessage) ([][]float64, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var matrix [][]float64
	if err := json.Unmarshal(raw, &matrix); err == nil {
		return matrix, nil
	}

	var flat []float64
	if err := json.Unmarshal(raw, &flat); err != nil {
		return nil, err
	}
	if len(flat) == 0 {
		return nil, nil
	}
	return [][]float64{flat}, nil
}
