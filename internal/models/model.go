package models

// Model is what the trainer and the API fit and score through.
type Model interface {
	Fit(X [][]float64, y []int) error
	Predict(X [][]float64) []int
	PredictProba(X [][]float64) []float64
	Name() string
}

// Linear models expose the coefficient vector they score with.
type Linear interface {
	Model
	Coefficients() []float64
}

var _ Linear = (*LogisticRegression)(nil)
