package models

import (
	"fmt"
	"math"

	"go.uber.org/multierr"
	"gonum.org/v1/gonum/mat"
)

// Batch is an immutable design matrix with its binary targets.
type Batch struct {
	x *mat.Dense
	y []float64
}

// NewBatch copies X and y into a Batch. Every violation found is reported,
// not only the first.
func NewBatch(X [][]float64, y []int) (*Batch, error) {
	if len(X) == 0 || len(X[0]) == 0 {
		return nil, fmt.Errorf("%w: xs vazio", ErrShape)
	}
	n, nf := len(X), len(X[0])
	var err error
	if len(y) != n {
		err = multierr.Append(err, fmt.Errorf("%w: xs tem %d linhas, ys tem %d", ErrShape, n, len(y)))
	}
	flat := make([]float64, 0, n*nf)
	for i, row := range X {
		if len(row) != nf {
			err = multierr.Append(err, fmt.Errorf("%w: linha %d tem %d colunas, esperado %d", ErrShape, i, len(row), nf))
			continue
		}
		flat = append(flat, row...)
	}
	ys := make([]float64, len(y))
	for i, v := range y {
		if v != 0 && v != 1 {
			err = multierr.Append(err, fmt.Errorf("%w: ys[%d]=%d", ErrLabel, i, v))
			continue
		}
		ys[i] = float64(v)
	}
	if err != nil {
		return nil, err
	}
	return &Batch{x: mat.NewDense(n, nf, flat), y: ys}, nil
}

func (b *Batch) Dims() (rows, cols int) { return b.x.Dims() }

func (b *Batch) Labels() []float64 { return append([]float64(nil), b.y...) }

func (b *Batch) checkBetas(betas []float64) error {
	if b == nil {
		return fmt.Errorf("%w: lote nulo", ErrShape)
	}
	_, c := b.x.Dims()
	if c != len(betas) {
		return fmt.Errorf("%w: xs tem %d colunas, betas tem %d", ErrShape, c, len(betas))
	}
	return nil
}

func checkLearningRate(lr float64) error {
	if lr <= 0 || math.IsNaN(lr) || math.IsInf(lr, 0) {
		return fmt.Errorf("%w: %v", ErrLearningRate, lr)
	}
	return nil
}
