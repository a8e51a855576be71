package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logreg/internal/data"
	"logreg/internal/plotting"
)

func TestAnalyze(t *testing.T) {
	dir := t.TempDir()
	lossPath := filepath.Join(dir, "loss.csv")
	losses := make([]float64, 300)
	for i := range losses {
		losses[i] = 1 / float64(i+1)
	}
	require.NoError(t, data.WriteLossCSV(lossPath, losses))

	img := filepath.Join(dir, "out", "loss.svg")
	s, err := analyze(lossPath, img, plotting.Window{From: 100})
	require.NoError(t, err)
	assert.Equal(t, 100, s.From)
	assert.Equal(t, 300, s.To)
	assert.Equal(t, losses[299], s.Last)
	assert.Equal(t, losses[299], s.Min)

	_, err = os.Stat(img)
	assert.NoError(t, err)
}

func TestAnalyze_MissingFile(t *testing.T) {
	_, err := analyze(filepath.Join(t.TempDir(), "none.csv"), "x.png", plotting.DefaultWindow())
	assert.Error(t, err)
}
