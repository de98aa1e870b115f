package tukey

import (
	"fmt"
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	"soilqc/adapters/stats/studentized"
	"soilqc/domain/core"
	"soilqc/domain/qaqc"
	"soilqc/internal/errors"
)

// DefaultAlpha is the family-wise significance level used when none is given
const DefaultAlpha = 0.05

// GroupSummary describes one field's sample for an analyte
type GroupSummary struct {
	Label core.FieldKey `json:"label" yaml:"label"`
	N     int           `json:"n" yaml:"n"`
	Mean  float64       `json:"mean" yaml:"mean"`
}

// Result is the outcome of Tukey's HSD for one analyte
type Result struct {
	Analyte     core.AnalyteKey           `json:"analyte" yaml:"analyte"`
	Alpha       float64                   `json:"alpha" yaml:"alpha"`
	Groups      []GroupSummary            `json:"groups" yaml:"groups"`
	DF          float64                   `json:"df" yaml:"df"`
	MSE         float64                   `json:"mse" yaml:"mse"`
	QCrit       float64                   `json:"q_crit" yaml:"q_crit"`
	Comparisons []qaqc.PairwiseComparison `json:"comparisons" yaml:"comparisons"`
}

// HSD runs Tukey's honestly significant difference test (Tukey–Kramer for unequal sizes).
// values[i] belongs to groups[i]; NaN values and empty labels are dropped first.
// Groups are compared in sorted label order and MeanDiff is mean(GroupB) − mean(GroupA).
func HSD(analyte core.AnalyteKey, values []float64, groups []core.FieldKey, alpha float64) (*Result, error) {
	if len(values) != len(groups) {
		return nil, errors.InvalidInputf("%s: %d values but %d group labels", analyte, len(values), len(groups))
	}
	if alpha <= 0 || alpha >= 1 {
		return nil, errors.InvalidInputf("alpha must be in (0, 1), got %g", alpha)
	}

	byGroup := make(map[core.FieldKey][]float64)
	for i, v := range values {
		if math.IsNaN(v) || groups[i] == "" {
			continue
		}
		byGroup[groups[i]] = append(byGroup[groups[i]], v)
	}

	labels := make([]core.FieldKey, 0, len(byGroup))
	for l := range byGroup {
		labels = append(labels, l)
	}
	sort.Slice(labels, func(i, j int) bool { return labels[i] < labels[j] })

	k := len(labels)
	if k < 2 {
		return nil, errors.ValidationErrorf("%s: Tukey HSD needs at least two groups, got %d", analyte, k)
	}

	summaries := make([]GroupSummary, k)
	total := 0
	sse := 0.0
	for i, l := range labels {
		xs := byGroup[l]
		mean, err := stats.Mean(xs)
		if err != nil {
			return nil, errors.Wrapf(err, "%s: mean of group %s", analyte, l)
		}
		for _, x := range xs {
			sse += (x - mean) * (x - mean)
		}
		summaries[i] = GroupSummary{Label: l, N: len(xs), Mean: mean}
		total += len(xs)
	}

	df := float64(total - k)
	if df < 1 {
		return nil, errors.ValidationErrorf("%s: %d observations in %d groups leave no residual degrees of freedom", analyte, total, k)
	}
	mse := sse / df
	qCrit := studentized.Quantile(1-alpha, k, df)

	res := &Result{
		Analyte: analyte,
		Alpha:   alpha,
		Groups:  summaries,
		DF:      df,
		MSE:     mse,
		QCrit:   qCrit,
	}
	for i := 0; i < k; i++ {
		for j := i + 1; j < k; j++ {
			res.Comparisons = append(res.Comparisons, compare(analyte, summaries[i], summaries[j], mse, qCrit, k, df, alpha))
		}
	}
	return res, nil
}

func compare(analyte core.AnalyteKey, a, b GroupSummary, mse, qCrit float64, k int, df, alpha float64) qaqc.PairwiseComparison {
	diff := b.Mean - a.Mean
	se := math.Sqrt(mse / 2 * (1/float64(a.N) + 1/float64(b.N)))

	row := qaqc.PairwiseComparison{
		Analyte:  analyte,
		GroupA:   a.Label,
		GroupB:   b.Label,
		MeanDiff: diff,
	}

	if se == 0 {
		// no within-group spread: any difference is exact
		row.Lower, row.Upper = diff, diff
		if diff == 0 {
			row.PAdj = 1
		} else {
			row.PAdj = 0
		}
	} else {
		row.PAdj = studentized.Survival(math.Abs(diff)/se, k, df)
		half := qCrit * se
		row.Lower, row.Upper = diff-half, diff+half
	}
	row.Reject = row.PAdj < alpha
	return row
}

// String renders the summary line printed above the comparison table
func (r *Result) String() string {
	return fmt.Sprintf("Multiple Comparison of Means - Tukey HSD, FWER=%.2f (%s, k=%d, df=%.0f)",
		r.Alpha, r.Analyte, len(r.Groups), r.DF)
}
