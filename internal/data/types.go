package data

// Dataset is a synthetic design matrix with its continuous outcomes.
// Y holds sigmoid(dot(X[i], TrueBetas)); labels come from thresholding it.
type Dataset struct {
	TrueBetas []float64   `json:"true_betas,omitempty"`
	X         [][]float64 `json:"xs"`
	Y         []float64   `json:"ys"`
}

func (d *Dataset) Observations() int { return len(d.X) }

func (d *Dataset) Features() int {
	if len(d.X) == 0 {
		return len(d.TrueBetas)
	}
	return len(d.X[0])
}

type GenOptions struct {
	Seed   uint64
	Spread float64
}

func DefaultGenOptions() GenOptions {
	return GenOptions{Seed: 42, Spread: 1}
}
