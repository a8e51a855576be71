package models

import (
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Epsilon bounds predictions away from 0 and 1 inside the log terms.
const Epsilon = 1e-15

// Rows per reduction shard. Shard boundaries depend only on the row count so
// sums are combined in the same order on any machine.
const shardRows = 2048

type StepResult struct {
	Loss        float64
	Predictions []float64
	Betas       []float64
}

// Sigmoid never overflows: exp is only taken of non-positive arguments.
func Sigmoid(z float64) float64 {
	if z >= 0 {
		return 1.0 / (1.0 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1.0 + e)
}

func clip(p float64) float64 {
	if p < Epsilon {
		return Epsilon
	}
	if p > 1-Epsilon {
		return 1 - Epsilon
	}
	return p
}

// CrossEntropy is the binary cross-entropy of a single prediction.
func CrossEntropy(y, yhat float64) float64 {
	p := clip(yhat)
	return -(y*math.Log(p) + (1-y)*math.Log(1-p))
}

// Step runs one full-batch gradient descent update: forward pass, mean
// cross-entropy, closed-form gradient and a simultaneous update of every
// coefficient. betas is not modified.
func Step(betas []float64, b *Batch, lr float64) (StepResult, error) {
	if err := checkLearningRate(lr); err != nil {
		return StepResult{}, err
	}
	if err := b.checkBetas(betas); err != nil {
		return StepResult{}, err
	}
	return step(betas, b, lr)
}

func step(betas []float64, b *Batch, lr float64) (StepResult, error) {
	loss, yhat, grad, err := b.forward(betas)
	if err != nil {
		return StepResult{}, err
	}

	next := make([]float64, len(betas))
	copy(next, betas)
	floats.AddScaled(next, -lr, grad)

	res := StepResult{Loss: loss, Predictions: yhat, Betas: next}
	if math.IsNaN(loss) || math.IsInf(loss, 0) {
		return res, fmt.Errorf("%w: loss=%v", ErrNonFinite, loss)
	}
	if !allFinite(next) {
		return res, fmt.Errorf("%w: betas=%v", ErrNonFinite, next)
	}
	if !allFinite(yhat) {
		return res, fmt.Errorf("%w: predições", ErrNonFinite)
	}
	return res, nil
}

type partial struct {
	loss float64
	grad []float64
}

// forward returns the mean loss, the predictions and the mean gradient.
func (b *Batch) forward(betas []float64) (float64, []float64, []float64, error) {
	n, nf := b.x.Dims()
	beta := mat.NewVecDense(nf, betas)
	yhat := make([]float64, n)
	shards := (n + shardRows - 1) / shardRows
	parts := make([]partial, shards)

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for s := 0; s < shards; s++ {
		g.Go(func() error {
			lo := s * shardRows
			hi := min(lo+shardRows, n)
			xs := b.x.Slice(lo, hi, 0, nf)

			z := mat.NewVecDense(hi-lo, yhat[lo:hi])
			z.MulVec(xs, beta)

			resid := make([]float64, hi-lo)
			var loss float64
			for i := range resid {
				p := Sigmoid(yhat[lo+i])
				yhat[lo+i] = p
				y := b.y[lo+i]
				loss += CrossEntropy(y, p)
				resid[i] = p - y
			}
			if math.IsNaN(loss) || math.IsInf(loss, 0) {
				return fmt.Errorf("%w: shard %d, loss=%v", ErrNonFinite, s, loss)
			}
			gv := mat.NewVecDense(nf, nil)
			gv.MulVec(xs.T(), mat.NewVecDense(hi-lo, resid))
			parts[s] = partial{loss: loss, grad: gv.RawVector().Data}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, nil, nil, err
	}

	grad := make([]float64, nf)
	var loss float64
	for _, p := range parts {
		loss += p.loss
		floats.Add(grad, p.grad)
	}
	inv := 1 / float64(n)
	floats.Scale(inv, grad)
	return loss * inv, yhat, grad, nil
}

func allFinite(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
