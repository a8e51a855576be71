package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, []float64{3, 5, 2, 7}, cfg.Data.TrueBetas)
	assert.Equal(t, 50000, cfg.Training.Iterations)
	assert.Equal(t, 0.1, cfg.Training.LearningRate)
}

func TestLoad_OverlaysDefaults(t *testing.T) {
	path := writeFile(t, `
data:
  true_betas: [1, -2]
  observations: 200
training:
  iterations: 300
  learning_rate: 0.05
plot:
  enabled: false
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, -2}, cfg.Data.TrueBetas)
	assert.Equal(t, 200, cfg.Data.Observations)
	assert.Equal(t, 300, cfg.Training.Iterations)
	assert.Equal(t, 0.05, cfg.Training.LearningRate)
	assert.False(t, cfg.Plot.Enabled)
	assert.Equal(t, "data/synthetic.csv", cfg.Data.Path)
	assert.Equal(t, 0.5, cfg.Data.Threshold)
}

func TestLoad_RejectsUnknownKeys(t *testing.T) {
	path := writeFile(t, "training:\n  epochs: 3\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestValidate_ReportsEveryField(t *testing.T) {
	cfg := Default()
	cfg.Training.LearningRate = 0
	cfg.Training.Iterations = -1
	cfg.Data.Threshold = 1.5
	cfg.Plot.Path = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalid))
	assert.Len(t, multierr.Errors(err), 4)
	assert.Contains(t, err.Error(), "LearningRate")
}
