package report

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/jhsdatascience/pml-project/compare"
	"github.com/jhsdatascience/pml-project/pkg/errors"
)

// pairwiseXYs adapts the pairwise intervals to the plotter interfaces: one
// point per pair at its mean difference, with asymmetric X error bars
// spanning the confidence interval.
type pairwiseXYs struct {
	pts  plotter.XYs
	errs plotter.XErrors
}

func (p pairwiseXYs) Len() int                { return len(p.pts) }
func (p pairwiseXYs) XY(i int) (x, y float64) { return p.pts[i].X, p.pts[i].Y }
func (p pairwiseXYs) XError(i int) (low, high float64) {
	return p.errs[i].Low, p.errs[i].High
}

// PlotPairwise writes a PNG showing the confidence interval of every
// pairwise accuracy difference, with a reference line at zero. Pairs whose
// interval is not computable are skipped.
func PlotPairwise(path string, rep *compare.Report) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Pairwise accuracy differences (%.1f%% CI)", rep.ConfidenceLevel*100)
	p.X.Label.Text = "accuracy difference"

	data := pairwiseXYs{}
	var labels []string
	for _, pw := range rep.Pairwise {
		if !pw.Computable {
			continue
		}
		y := float64(len(labels))
		data.pts = append(data.pts, plotter.XY{X: pw.MeanDiff, Y: y})
		data.errs = append(data.errs, struct{ Low, High float64 }{
			Low:  pw.MeanDiff - pw.Lower,
			High: pw.Upper - pw.MeanDiff,
		})
		labels = append(labels, pw.ModelA+" - "+pw.ModelB)
	}
	if len(labels) == 0 {
		return errors.NewValueError("PlotPairwise", "no computable pairwise intervals")
	}

	points, err := plotter.NewScatter(data.pts)
	if err != nil {
		return err
	}
	bars, err := plotter.NewXErrorBars(data)
	if err != nil {
		return err
	}
	zero := plotter.XYs{{X: 0, Y: -0.5}, {X: 0, Y: float64(len(labels)) - 0.5}}
	zeroLine, err := plotter.NewLine(zero)
	if err != nil {
		return err
	}
	zeroLine.LineStyle.Width = vg.Points(0.5)

	p.Add(points, bars, zeroLine, plotter.NewGrid())
	p.NominalY(labels...)

	return p.Save(8*vg.Inch, 4*vg.Inch, path)
}
