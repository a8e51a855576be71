package models

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/num/dual"
)

func randomBatch(t *testing.T, n, nf int, seed uint64) (*Batch, [][]float64, []int) {
	t.Helper()
	rng := rand.New(rand.NewPCG(seed, seed+1))
	X := make([][]float64, n)
	y := make([]int, n)
	for i := range X {
		X[i] = make([]float64, nf)
		for j := range X[i] {
			X[i][j] = rng.NormFloat64()
		}
		if rng.Float64() < 0.5 {
			y[i] = 1
		}
	}
	b, err := NewBatch(X, y)
	require.NoError(t, err)
	return b, X, y
}

func TestSigmoid(t *testing.T) {
	assert.Equal(t, 0.5, Sigmoid(0))
	assert.Equal(t, 1.0, Sigmoid(1000))
	assert.Equal(t, 0.0, Sigmoid(-1000))
	for _, z := range []float64{-30, -3.5, -0.1, 0.7, 12} {
		assert.InDelta(t, 1-Sigmoid(z), Sigmoid(-z), 1e-15)
		assert.InDelta(t, 1/(1+math.Exp(-z)), Sigmoid(z), 1e-15)
	}
}

func TestCrossEntropy_Clipped(t *testing.T) {
	worst := -math.Log(Epsilon)
	assert.InDelta(t, worst, CrossEntropy(1, 0), 1e-9)
	assert.InDelta(t, worst, CrossEntropy(0, 1), 1e-2)
	assert.False(t, math.IsInf(CrossEntropy(0, 1), 0))
	assert.InDelta(t, 0, CrossEntropy(1, 1), 1e-12)
	assert.InDelta(t, math.Ln2, CrossEntropy(0, 0.5), 1e-15)
}

func TestStep_HandComputed(t *testing.T) {
	b, err := NewBatch([][]float64{{1, 0}, {0, 1}}, []int{1, 0})
	require.NoError(t, err)

	res, err := Step([]float64{0, 0}, b, 0.5)
	require.NoError(t, err)
	assert.InDelta(t, math.Ln2, res.Loss, 1e-15)
	assert.Equal(t, []float64{0.5, 0.5}, res.Predictions)
	// grad = [-0.25, 0.25]
	assert.InDeltaSlice(t, []float64{0.125, -0.125}, res.Betas, 1e-15)
}

func TestStep_Deterministic(t *testing.T) {
	b, _, _ := randomBatch(t, 3*shardRows+17, 4, 3)
	betas := []float64{0.3, -1.2, 0.8, 2}

	first, err := Step(betas, b, 0.1)
	require.NoError(t, err)
	second, err := Step(betas, b, 0.1)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Len(t, first.Predictions, 3*shardRows+17)
}

func TestStep_DoesNotMutateInputs(t *testing.T) {
	b, _, y := randomBatch(t, 100, 3, 9)
	betas := []float64{1, 2, 3}
	labels := b.Labels()

	res, err := Step(betas, b, 0.1)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, betas)
	assert.Equal(t, labels, b.Labels())
	assert.NotEqual(t, betas, res.Betas)
	assert.Len(t, y, 100)
}

func TestStep_SimultaneousUpdate(t *testing.T) {
	X := [][]float64{{1, 2}, {-1, 0.5}, {0.3, -2}}
	y := []int{1, 0, 1}
	b, err := NewBatch(X, y)
	require.NoError(t, err)
	betas := []float64{0.4, -0.7}
	lr := 0.3

	grad := make([]float64, 2)
	for i := range X {
		p := Sigmoid(X[i][0]*betas[0] + X[i][1]*betas[1])
		for j := range grad {
			grad[j] += (p - float64(y[i])) * X[i][j] / 3
		}
	}

	res, err := Step(betas, b, lr)
	require.NoError(t, err)
	assert.InDelta(t, betas[0]-lr*grad[0], res.Betas[0], 1e-15)
	assert.InDelta(t, betas[1]-lr*grad[1], res.Betas[1], 1e-15)
}

func TestStep_ShapeMismatch(t *testing.T) {
	b, _, _ := randomBatch(t, 10, 3, 1)
	_, err := Step([]float64{1, 2, 3, 4}, b, 0.1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrShape))
	assert.Contains(t, err.Error(), "3 colunas")

	_, err = Step([]float64{1, 2, 3}, nil, 0.1)
	assert.True(t, errors.Is(err, ErrShape))
}

func TestStep_InvalidLearningRate(t *testing.T) {
	b, _, _ := randomBatch(t, 10, 2, 1)
	for _, lr := range []float64{0, -0.1, math.NaN(), math.Inf(1)} {
		_, err := Step([]float64{0, 0}, b, lr)
		assert.True(t, errors.Is(err, ErrLearningRate), "lr=%v", lr)
	}
}

func TestNewBatch_ReportsEveryViolation(t *testing.T) {
	_, err := NewBatch([][]float64{{1, 2}, {3}, {4, 5}}, []int{1, 2})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrShape))
	assert.True(t, errors.Is(err, ErrLabel))
	assert.Len(t, multierr.Errors(err), 3)

	_, err = NewBatch(nil, nil)
	assert.True(t, errors.Is(err, ErrShape))
}

func TestStep_AllPositiveLabelsStayFinite(t *testing.T) {
	X := [][]float64{{1, 1}, {2, 3}, {5, 8}}
	b, err := NewBatch(X, []int{1, 1, 1})
	require.NoError(t, err)

	// predictions saturate to 0 for every row
	res, err := Step([]float64{-500, -500}, b, 0.1)
	require.NoError(t, err)
	assert.False(t, math.IsInf(res.Loss, 0))
	assert.False(t, math.IsNaN(res.Loss))
	assert.InDelta(t, -math.Log(Epsilon), res.Loss, 1e-9)

	// and to 1
	res, err = Step([]float64{500, 500}, b, 0.1)
	require.NoError(t, err)
	assert.InDelta(t, 0, res.Loss, 1e-12)
}

func TestStep_NonFiniteInput(t *testing.T) {
	b, err := NewBatch([][]float64{{1, math.NaN()}, {0, 1}}, []int{1, 0})
	require.NoError(t, err)
	_, err = Step([]float64{0.1, 0.1}, b, 0.1)
	assert.True(t, errors.Is(err, ErrNonFinite))
}

func TestStep_ShardErrorPropagates(t *testing.T) {
	n := shardRows + 10
	X := make([][]float64, n)
	y := make([]int, n)
	for i := range X {
		X[i] = []float64{1, float64(i % 3)}
		y[i] = i % 2
	}
	X[shardRows+3][1] = math.Inf(1)
	b, err := NewBatch(X, y)
	require.NoError(t, err)

	_, err = Step([]float64{0, 0}, b, 0.1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNonFinite))
	assert.Contains(t, err.Error(), "shard 1")
}

func meanLossDual(X [][]float64, y []int, betas []float64, j int) dual.Number {
	one := dual.Number{Real: 1}
	total := dual.Number{}
	for i := range X {
		z := dual.Number{}
		for k := range betas {
			b := dual.Number{Real: betas[k]}
			if k == j {
				b.Emag = 1
			}
			z = dual.Add(z, dual.Scale(X[i][k], b))
		}
		p := dual.Inv(dual.Add(one, dual.Exp(dual.Scale(-1, z))))
		yi := float64(y[i])
		e := dual.Add(
			dual.Scale(yi, dual.Log(p)),
			dual.Scale(1-yi, dual.Log(dual.Sub(one, p))),
		)
		total = dual.Sub(total, e)
	}
	return dual.Scale(1/float64(len(X)), total)
}

func TestStep_GradientMatchesForwardModeDerivative(t *testing.T) {
	b, X, y := randomBatch(t, 64, 4, 11)
	betas := []float64{0.5, -0.25, 1, 0.1}

	res, err := Step(betas, b, 1)
	require.NoError(t, err)
	for j := range betas {
		d := meanLossDual(X, y, betas, j)
		assert.InDelta(t, d.Real, res.Loss, 1e-12)
		assert.InDelta(t, d.Emag, betas[j]-res.Betas[j], 1e-9, "coef %d", j)
	}
}

func TestStep_GradientMatchesFiniteDifferences(t *testing.T) {
	b, _, _ := randomBatch(t, 300, 3, 5)
	betas := []float64{-0.4, 0.9, 0.2}

	loss := func(x []float64) float64 {
		r, err := Step(x, b, 1)
		require.NoError(t, err)
		return r.Loss
	}
	want := fd.Gradient(nil, loss, betas, &fd.Settings{Formula: fd.Central})

	res, err := Step(betas, b, 1)
	require.NoError(t, err)
	for j := range betas {
		assert.InDelta(t, want[j], betas[j]-res.Betas[j], 1e-6)
	}
}
