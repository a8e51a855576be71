package evaluation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCount(t *testing.T) {
	y := []int{1, 1, 0, 0, 1}
	ps := []float64{0.9, 0.4, 0.6, 0.1, 0.8}
	c := Count(y, ps, 0.5)
	assert.Equal(t, Confusion{TP: 2, FP: 1, TN: 1, FN: 1}, c)
	assert.InDelta(t, 0.6, c.Accuracy(), 1e-12)
	assert.InDelta(t, 2.0/3, c.Precision(), 1e-12)
	assert.InDelta(t, 2.0/3, c.Recall(), 1e-12)
	assert.InDelta(t, 2.0/3, c.F1(), 1e-12)

	assert.Equal(t, 0.0, Confusion{}.Accuracy())
	assert.Equal(t, 0.0, Confusion{}.F1())
}

func TestSweep_Separable(t *testing.T) {
	c, ok := Sweep([]int{1, 0, 1, 0}, []float64{0.8, 0.2, 0.9, 0.1})
	require.True(t, ok)
	assert.Equal(t, []float64{0, 0.5, 1, 1, 1}, c.TPR)
	assert.Equal(t, []float64{0, 0, 0, 0.5, 1}, c.FPR)
	assert.InDelta(t, 1.0, c.ROCAUC(), 1e-12)
	assert.InDelta(t, 1.0, c.PRAUC(), 1e-12)

	thr, best := c.BestF1()
	assert.Equal(t, 0.8, thr)
	assert.InDelta(t, 1.0, best, 1e-12)
	assert.Equal(t, 1.0, Count([]int{1, 0, 1, 0}, []float64{0.8, 0.2, 0.9, 0.1}, thr).F1())
}

func TestSweep_ROCAUC(t *testing.T) {
	auc := func(y []int, ps []float64) float64 {
		c, ok := Sweep(y, ps)
		require.True(t, ok)
		return c.ROCAUC()
	}
	assert.InDelta(t, 0.0, auc([]int{1, 1, 0, 0}, []float64{0.1, 0.2, 0.8, 0.9}), 1e-12)
	assert.InDelta(t, 0.5, auc([]int{0, 1}, []float64{0.5, 0.5}), 1e-12)
	assert.InDelta(t, 0.75, auc([]int{0, 1, 0, 1}, []float64{0.1, 0.4, 0.5, 0.8}), 1e-12)
}

func TestSweep_SingleClass(t *testing.T) {
	_, ok := Sweep([]int{1, 1}, []float64{0.3, 0.7})
	assert.False(t, ok)

	r := Evaluate([]int{1, 1}, []float64{0.3, 0.7}, 0.5)
	assert.Equal(t, 0.0, r.ROCAUC)
	assert.Equal(t, 0.5, r.Accuracy)
	assert.Equal(t, 0.5, r.BestThreshold)
}

func TestEvaluate(t *testing.T) {
	r := Evaluate([]int{0, 1, 1, 0}, []float64{0.2, 0.9, 0.6, 0.4}, 0.5)
	assert.Equal(t, 1.0, r.Accuracy)
	assert.Equal(t, 1.0, r.F1)
	assert.InDelta(t, 1.0, r.ROCAUC, 1e-12)
	assert.InDelta(t, 1.0, r.PRAUC, 1e-12)
	assert.Equal(t, 0.5, r.Threshold)
	assert.Equal(t, 0.6, r.BestThreshold)
	assert.Equal(t, 1.0, r.BestF1)
}
