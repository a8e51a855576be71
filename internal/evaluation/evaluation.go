package evaluation

import (
	"math"

	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"
)

type Report struct {
	Accuracy      float64 `json:"accuracy"`
	Precision     float64 `json:"precision"`
	Recall        float64 `json:"recall"`
	F1            float64 `json:"f1"`
	ROCAUC        float64 `json:"roc_auc"`
	PRAUC         float64 `json:"pr_auc"`
	Threshold     float64 `json:"threshold"`
	BestThreshold float64 `json:"best_threshold"`
	BestF1        float64 `json:"best_f1"`
}

// Confusion counts outcomes of the rule score >= threshold.
type Confusion struct {
	TP, FP, TN, FN int
}

func Count(y []int, ps []float64, thr float64) Confusion {
	var c Confusion
	for i, p := range ps {
		hit := p >= thr
		switch {
		case hit && y[i] == 1:
			c.TP++
		case hit:
			c.FP++
		case y[i] == 0:
			c.TN++
		default:
			c.FN++
		}
	}
	return c
}

func (c Confusion) Accuracy() float64 {
	n := c.TP + c.FP + c.TN + c.FN
	if n == 0 {
		return 0
	}
	return float64(c.TP+c.TN) / float64(n)
}

func (c Confusion) Precision() float64 { return ratio(c.TP, c.TP+c.FP) }

func (c Confusion) Recall() float64 { return ratio(c.TP, c.TP+c.FN) }

func (c Confusion) F1() float64 { return f1(c.Precision(), c.Recall()) }

func ratio(a, b int) float64 {
	if b == 0 {
		return 0
	}
	return float64(a) / float64(b)
}

func f1(p, r float64) float64 {
	if p+r == 0 {
		return 0
	}
	return 2 * p * r / (p + r)
}

// Curve is the operating characteristic of a score, one point per distinct
// score used as a cutoff, from the strictest (+Inf) to the loosest.
type Curve struct {
	Thresholds []float64
	TPR        []float64
	FPR        []float64
	Precision  []float64
}

// Sweep builds the Curve with stat.ROC. ok is false when y holds a single
// class, where neither rate is defined.
func Sweep(y []int, ps []float64) (c Curve, ok bool) {
	scores := append([]float64(nil), ps...)
	classes := make([]bool, len(y))
	var pos, neg float64
	for i, v := range y {
		classes[i] = v == 1
		if classes[i] {
			pos++
		} else {
			neg++
		}
	}
	if pos == 0 || neg == 0 {
		return Curve{}, false
	}
	stat.SortWeightedLabeled(scores, classes, nil)
	tpr, fpr, thr := stat.ROC(nil, scores, classes, nil)

	prec := make([]float64, len(thr))
	for i := range thr {
		tp := math.Round(tpr[i] * pos)
		fp := math.Round(fpr[i] * neg)
		if tp+fp == 0 {
			prec[i] = 1
			continue
		}
		prec[i] = tp / (tp + fp)
	}
	return Curve{Thresholds: thr, TPR: tpr, FPR: fpr, Precision: prec}, true
}

// ROCAUC is the trapezoid area under TPR(FPR). Tied scores form a single
// point, so a constant score gives 0.5.
func (c Curve) ROCAUC() float64 {
	if len(c.FPR) < 2 {
		return 0
	}
	return integrate.Trapezoidal(c.FPR, c.TPR)
}

// PRAUC is average precision: precision weighted by each recall increment.
func (c Curve) PRAUC() float64 {
	var auc float64
	for i := 1; i < len(c.TPR); i++ {
		auc += (c.TPR[i] - c.TPR[i-1]) * c.Precision[i]
	}
	return auc
}

// BestF1 returns the cutoff with the highest F1 along the curve. The +Inf
// cutoff, which predicts nothing, is never chosen.
func (c Curve) BestF1() (thr, best float64) {
	thr = 0.5
	for i := range c.Thresholds {
		if math.IsInf(c.Thresholds[i], 1) {
			continue
		}
		if v := f1(c.Precision[i], c.TPR[i]); v > best {
			thr, best = c.Thresholds[i], v
		}
	}
	return thr, best
}

// Evaluate scores ps against y at thr and over every possible cutoff. The
// ranking fields stay zero when y holds a single class.
func Evaluate(y []int, ps []float64, thr float64) Report {
	c := Count(y, ps, thr)
	r := Report{
		Accuracy:      c.Accuracy(),
		Precision:     c.Precision(),
		Recall:        c.Recall(),
		F1:            c.F1(),
		Threshold:     thr,
		BestThreshold: thr,
		BestF1:        c.F1(),
	}
	if curve, ok := Sweep(y, ps); ok {
		r.ROCAUC = curve.ROCAUC()
		r.PRAUC = curve.PRAUC()
		r.BestThreshold, r.BestF1 = curve.BestF1()
	}
	return r
}
