package data

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

var ErrEmptyCSV = errors.New("CSV vazio")

func WriteCSV(path string, ds *Dataset) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	nf := ds.Features()
	header := make([]string, 0, nf+1)
	for j := 0; j < nf; j++ {
		header = append(header, "x"+strconv.Itoa(j))
	}
	header = append(header, "y")
	if err := w.Write(header); err != nil {
		return err
	}
	for i, row := range ds.X {
		rec := make([]string, 0, len(row)+1)
		for _, v := range row {
			rec = append(rec, strconv.FormatFloat(v, 'g', -1, 64))
		}
		rec = append(rec, strconv.FormatFloat(ds.Y[i], 'g', -1, 64))
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// ReadCSV loads a file written by WriteCSV. The last column is the outcome.
func ReadCSV(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyCSV)
	}
	nf := len(rows[0]) - 1
	if nf < 1 {
		return nil, fmt.Errorf("%s: cabeçalho sem colunas de atributos", path)
	}
	ds := &Dataset{X: make([][]float64, 0, len(rows)-1), Y: make([]float64, 0, len(rows)-1)}
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		vals := make([]float64, len(row))
		for j := range row {
			v, err := strconv.ParseFloat(row[j], 64)
			if err != nil {
				return nil, fmt.Errorf("%s linha %d coluna %d: %w", path, i+1, j+1, err)
			}
			vals[j] = v
		}
		ds.X = append(ds.X, vals[:nf:nf])
		ds.Y = append(ds.Y, vals[nf])
	}
	return ds, nil
}

func WriteLossCSV(path string, losses []float64) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.Write([]string{"iteration", "loss"}); err != nil {
		return err
	}
	for i, l := range losses {
		if err := w.Write([]string{strconv.Itoa(i + 1), strconv.FormatFloat(l, 'g', -1, 64)}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// ReadLossCSV returns the trace in iteration order.
func ReadLossCSV(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyCSV)
	}
	out := make([]float64, 0, len(rows)-1)
	for i := 1; i < len(rows); i++ {
		if len(rows[i]) < 2 {
			return nil, fmt.Errorf("%s linha %d: esperado iteration,loss", path, i+1)
		}
		v, err := strconv.ParseFloat(rows[i][1], 64)
		if err != nil {
			return nil, fmt.Errorf("%s linha %d: %w", path, i+1, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
