package tukey

import (
	"soilqc/domain/core"
	"soilqc/domain/qaqc"
	"soilqc/internal"
	"soilqc/internal/errors"
)

// Runner applies HSD to each analyte of an observation table
type Runner struct {
	GroupColumn string
	Alpha       float64
	Logger      *internal.Logger
}

// NewRunner creates a runner grouping by groupColumn at the given alpha
func NewRunner(groupColumn string, alpha float64, logger *internal.Logger) *Runner {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	if alpha == 0 {
		alpha = DefaultAlpha
	}
	return &Runner{GroupColumn: groupColumn, Alpha: alpha, Logger: logger.With("tukey")}
}

// Run tests every analyte and returns one result per analyte, in order
func (r *Runner) Run(t *qaqc.Table, analytes []core.AnalyteKey) ([]*Result, error) {
	if err := t.RequireColumns(r.GroupColumn); err != nil {
		return nil, err
	}

	groups := make([]core.FieldKey, t.Len())
	for i, row := range t.Rows {
		groups[i] = core.FieldKey(row[r.GroupColumn])
	}

	results := make([]*Result, 0, len(analytes))
	for _, a := range analytes {
		if err := t.RequireColumns(string(a)); err != nil {
			return nil, err
		}
		r.Logger.Info("%s", a)

		res, err := HSD(a, t.Floats(string(a)), groups, r.Alpha)
		if err != nil {
			return nil, errors.Wrapf(err, "tukey test for %s", a)
		}
		r.Logger.Debug("%s: k=%d df=%.0f mse=%.6g q_crit=%.4f", a, len(res.Groups), res.DF, res.MSE, res.QCrit)
		results = append(results, res)
	}
	return results, nil
}

// Stack concatenates the comparison tables of several results, tagged by analyte
func Stack(results []*Result) []qaqc.PairwiseComparison {
	var out []qaqc.PairwiseComparison
	for _, res := range results {
		out = append(out, res.Comparisons...)
	}
	return out
}

// Significant filters each result's comparisons independently and concatenates them
func Significant(results []*Result) []qaqc.PairwiseComparison {
	per := make([][]qaqc.PairwiseComparison, len(results))
	for i, res := range results {
		per[i] = res.Comparisons
	}
	return qaqc.FilterSignificantByAnalyte(per)
}
