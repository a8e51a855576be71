package features

import (
    "strconv"

    "logreg/internal/data"
)

const DefaultThreshold = 0.5

// Binarize labels an outcome 1 when it is strictly greater than thr.
func Binarize(ys []float64, thr float64) []int {
    out := make([]int, len(ys))
    for i, v := range ys {
        if v > thr { out[i] = 1 }
    }
    return out
}

func Names(n int) []string {
    names := make([]string, n)
    for j := range names { names[j] = "x" + strconv.Itoa(j) }
    return names
}

// Vectorize turns a dataset into the design matrix and binary labels the
// models consume. Rows are shared with the dataset, not copied.
func Vectorize(ds *data.Dataset, thr float64) ([][]float64, []int, []string) {
    return ds.X, Binarize(ds.Y, thr), Names(ds.Features())
}

func Balance(y []int) (pos, neg int) {
    for i := range y { if y[i] == 1 { pos++ } else { neg++ } }
    return
}
