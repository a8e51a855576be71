package models

import (
	"fmt"
	"math/rand/v2"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

type LogisticRegression struct {
	LearningRate float64
	Iterations   int
	Seed         uint64
	InitScale    float64
	LogEvery     int
	Initial      []float64
	Betas        []float64
	Losses       []float64

	logger  *zap.Logger
	lastRun *Run
}

func NewLogisticRegression() *LogisticRegression {
	return &LogisticRegression{LearningRate: 0.1, Iterations: 50000, Seed: 1, InitScale: 1}
}

func (lr *LogisticRegression) Name() string { return "LogisticRegression" }

func (lr *LogisticRegression) WithLogger(l *zap.Logger) *LogisticRegression {
	lr.logger = l
	return lr
}

// InitialBetas draws n coefficients from N(0, scale²) with a fixed seed.
func InitialBetas(n int, seed uint64, scale float64) []float64 {
	if scale <= 0 {
		scale = 1
	}
	dist := distuv.Normal{Mu: 0, Sigma: scale, Src: rand.NewPCG(seed, ^seed)}
	out := make([]float64, n)
	for i := range out {
		out[i] = dist.Rand()
	}
	return out
}

func (lr *LogisticRegression) Fit(X [][]float64, y []int) error {
	b, err := NewBatch(X, y)
	if err != nil {
		return err
	}
	_, nf := b.Dims()
	run, err := NewRun(InitialBetas(nf, lr.Seed, lr.InitScale), b, lr.LearningRate, lr.Iterations)
	if err != nil {
		return err
	}
	run.LogEvery = lr.LogEvery
	lr.lastRun = run
	if err := run.Execute(lr.logger); err != nil {
		return err
	}
	lr.Initial = run.Initial()
	lr.Betas = run.Betas()
	lr.Losses = run.Losses()
	return nil
}

func (lr *LogisticRegression) Coefficients() []float64 {
	return append([]float64(nil), lr.Betas...)
}

// LastRun is nil until Fit has been called.
func (lr *LogisticRegression) LastRun() *Run { return lr.lastRun }

func (lr *LogisticRegression) CheckInput(X [][]float64) error {
	if len(lr.Betas) == 0 {
		return ErrNotFitted
	}
	for i, row := range X {
		if len(row) != len(lr.Betas) {
			return fmt.Errorf("%w: linha %d tem %d colunas, modelo espera %d", ErrShape, i, len(row), len(lr.Betas))
		}
	}
	return nil
}

func (lr *LogisticRegression) PredictProba(X [][]float64) []float64 {
	out := make([]float64, len(X))
	for i := range X {
		out[i] = Sigmoid(floats.Dot(X[i], lr.Betas))
	}
	return out
}

// Score is PredictProba for untrusted input: a row whose score is NaN
// (e.g. +Inf and -Inf terms in the linear predictor) fails with ErrNonFinite.
func (lr *LogisticRegression) Score(X [][]float64) ([]float64, error) {
	if err := lr.CheckInput(X); err != nil {
		return nil, err
	}
	ps := lr.PredictProba(X)
	if !allFinite(ps) {
		return nil, fmt.Errorf("%w: scores", ErrNonFinite)
	}
	return ps, nil
}

func (lr *LogisticRegression) Predict(X [][]float64) []int {
	out := make([]int, len(X))
	for i, p := range lr.PredictProba(X) {
		if p >= 0.5 {
			out[i] = 1
		}
	}
	return out
}
