// Package report renders the comparison and evaluation results as
// human-readable tables and a pairwise confidence-interval plot.
package report

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/jhsdatascience/pml-project/compare"
	"github.com/jhsdatascience/pml-project/evaluate"
)

// WriteComparison renders the model ranking, per-model fold statistics and
// the pairwise accuracy-difference intervals.
func WriteComparison(w io.Writer, rep *compare.Report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, "rank\tmodel\tmean_acc\tstd\ttotal_time\tfinal_fit")
	for i, name := range rep.Ranking {
		res := rep.Results[name]
		fmt.Fprintf(tw, "%d\t%s\t%.4f\t%.4f\t%s\t%s\n",
			i+1, name, res.Mean, res.Std, res.TotalTime.Round(1e6), res.FinalFitTime.Round(1e6))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if rep.Incomplete() {
		failed := make([]string, 0, len(rep.Failures))
		for name := range rep.Failures {
			failed = append(failed, name)
		}
		sort.Strings(failed)

		fmt.Fprintln(w)
		fmt.Fprintln(w, "comparison incomplete; failed models:")
		for _, name := range failed {
			fmt.Fprintf(w, "  %s: %v\n", name, rep.Failures[name])
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "pairwise accuracy differences (%.1f%% confidence):\n", rep.ConfidenceLevel*100)
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "pair\tmean_diff\tlower\tupper\tp_value")
	for _, pw := range rep.Pairwise {
		if !pw.Computable {
			fmt.Fprintf(tw, "%s - %s\t%.4f\tnot computable\tnot computable\tnot computable\n",
				pw.ModelA, pw.ModelB, pw.MeanDiff)
			continue
		}
		fmt.Fprintf(tw, "%s - %s\t%.4f\t%.4f\t%.4f\t%.4g\n",
			pw.ModelA, pw.ModelB, pw.MeanDiff, pw.Lower, pw.Upper, pw.PValue)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if rep.TopPair != nil {
		fmt.Fprintln(w)
		if rep.TopPair.Computable {
			fmt.Fprintf(w, "paired t-test %s vs %s: t=%.3f p=%.4g\n",
				rep.TopPair.ModelA, rep.TopPair.ModelB, rep.TopPair.TStatistic, rep.TopPair.PValue)
		} else {
			fmt.Fprintf(w, "paired t-test %s vs %s: not computable (zero variance)\n",
				rep.TopPair.ModelA, rep.TopPair.ModelB)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "selected model: %s\n", rep.Selected)
	return nil
}

// WriteEvaluation renders the holdout confusion matrix and accuracy with its
// exact binomial interval.
func WriteEvaluation(w io.Writer, ev *evaluate.Evaluation) error {
	fmt.Fprintf(w, "holdout evaluation of %s (%d records)\n\n", ev.ModelName, ev.Confusion.Total())

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprint(tw, "actual\\pred")
	for _, c := range ev.Confusion.Classes {
		fmt.Fprintf(tw, "\t%s", c)
	}
	fmt.Fprintln(tw)
	for i, row := range ev.Confusion.Counts {
		fmt.Fprint(tw, ev.Confusion.Classes[i])
		for _, v := range row {
			fmt.Fprintf(tw, "\t%d", v)
		}
		fmt.Fprintln(tw)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "accuracy: %.4f (%.1f%% CI %.4f-%.4f), %d misclassified\n",
		ev.Accuracy, ev.Confidence*100, ev.CILower, ev.CIUpper, ev.Confusion.Misclassified())
	return nil
}
