package plotting

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

var ErrEmptyWindow = errors.New("janela de iterações vazia")

// Window selects trace indices [From, To). To <= 0 means the end of the trace.
type Window struct {
	From int `json:"from"`
	To   int `json:"to"`
}

func DefaultWindow() Window { return Window{From: 100, To: 50000} }

// Clamp bounds the window to a trace of length n.
func (w Window) Clamp(n int) (lo, hi int, err error) {
	lo, hi = w.From, w.To
	if lo < 0 {
		lo = 0
	}
	if hi <= 0 || hi > n {
		hi = n
	}
	if lo >= hi {
		return 0, 0, fmt.Errorf("%w: [%d, %d) em traço de %d", ErrEmptyWindow, w.From, w.To, n)
	}
	return lo, hi, nil
}

func toXY(losses []float64, lo, hi int) plotter.XYs {
	pts := make(plotter.XYs, hi-lo)
	for i := range pts {
		pts[i].X = float64(lo + i + 1)
		pts[i].Y = losses[lo+i]
	}
	return pts
}

// LossCurve writes a PNG/SVG/PDF (by extension) of the loss per iteration.
func LossCurve(path string, losses []float64, w Window) error {
	lo, hi, err := w.Clamp(len(losses))
	if err != nil {
		return err
	}
	p := plot.New()
	p.Title.Text = "Curva de Loss"
	p.X.Label.Text = "Iteração"
	p.Y.Label.Text = "Entropia cruzada média"
	p.Add(plotter.NewGrid())

	if err := plotutil.AddLines(p, "Treino", toXY(losses, lo, hi)); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return p.Save(8*vg.Inch, 4*vg.Inch, path)
}

type Summary struct {
	From  int     `json:"from"`
	To    int     `json:"to"`
	First float64 `json:"first"`
	Last  float64 `json:"last"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Mean  float64 `json:"mean"`
}

func Summarize(losses []float64, w Window) (Summary, error) {
	lo, hi, err := w.Clamp(len(losses))
	if err != nil {
		return Summary{}, err
	}
	win := losses[lo:hi]
	return Summary{
		From:  lo,
		To:    hi,
		First: win[0],
		Last:  win[len(win)-1],
		Min:   floats.Min(win),
		Max:   floats.Max(win),
		Mean:  stat.Mean(win, nil),
	}, nil
}
