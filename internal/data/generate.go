package data

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

var (
	ErrNoCoefficients = errors.New("vetor de coeficientes vazio")
	ErrObservations   = errors.New("número de observações deve ser positivo")
)

// GenerateLogistic draws n rows of len(trueBetas) features from N(0, Spread²)
// and returns the logistic response of each row. The same seed always yields
// the same dataset.
func GenerateLogistic(trueBetas []float64, n int, opts GenOptions) (*Dataset, error) {
	if len(trueBetas) == 0 {
		return nil, ErrNoCoefficients
	}
	if n <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrObservations, n)
	}
	spread := opts.Spread
	if spread <= 0 {
		spread = 1
	}
	dist := distuv.Normal{Mu: 0, Sigma: spread, Src: rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15)}

	betas := append([]float64(nil), trueBetas...)
	X := make([][]float64, n)
	Y := make([]float64, n)
	for i := 0; i < n; i++ {
		row := make([]float64, len(betas))
		z := 0.0
		for j := range row {
			row[j] = dist.Rand()
			z += row[j] * betas[j]
		}
		X[i] = row
		Y[i] = 1.0 / (1.0 + math.Exp(-z))
	}
	return &Dataset{TrueBetas: betas, X: X, Y: Y}, nil
}

func GenerateSyntheticCSV(trueBetas []float64, n int, opts GenOptions, outPath string) (*Dataset, error) {
	ds, err := GenerateLogistic(trueBetas, n, opts)
	if err != nil {
		return nil, err
	}
	if err := WriteCSV(outPath, ds); err != nil {
		return nil, err
	}
	return ds, nil
}
