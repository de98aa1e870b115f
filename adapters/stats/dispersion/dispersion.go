// Package dispersion computes the QAQC dispersion metrics of an observation table:
// per-field variances, coefficient of variation and sample precision.
package dispersion

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	"soilqc/domain/core"
	"soilqc/domain/qaqc"
	"soilqc/internal"
	"soilqc/internal/errors"
)

// Options configures Compute
type Options struct {
	// GroupColumn holds the field label rows are grouped by
	GroupColumn string
	// DegreesOfFreedom is the numerator of sample precision
	DegreesOfFreedom float64
	// PrecisionSkip leading numeric columns get no sample precision
	PrecisionSkip int
	// Exclude lists columns that are never analytes, even when numeric
	Exclude []string
}

// DefaultOptions mirrors the Kansas duplicate workflow
func DefaultOptions() Options {
	return Options{
		GroupColumn:      qaqc.FieldColumn,
		DegreesOfFreedom: 3,
		PrecisionSkip:    10,
	}
}

// Calculator computes dispersion tables
type Calculator struct {
	opts   Options
	logger *internal.Logger
}

// NewCalculator creates a calculator; a nil logger uses the default logger
func NewCalculator(opts Options, logger *internal.Logger) *Calculator {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Calculator{opts: opts, logger: logger.With("dispersion")}
}

// Analytes returns the numeric columns of t that are treated as analytes, in header order
func (c *Calculator) Analytes(t *qaqc.Table) []core.AnalyteKey {
	exclude := append([]string{c.opts.GroupColumn}, c.opts.Exclude...)
	return t.NumericColumns(exclude...)
}

// Compute returns one DispersionRecord per analyte (input order) and the per-field statistics
func (c *Calculator) Compute(t *qaqc.Table) ([]qaqc.DispersionRecord, []qaqc.GroupStatistic, error) {
	if c.opts.DegreesOfFreedom <= 0 {
		return nil, nil, errors.InvalidInput("degrees of freedom must be positive")
	}
	if err := t.RequireColumns(c.opts.GroupColumn); err != nil {
		return nil, nil, err
	}

	analytes := c.Analytes(t)
	if len(analytes) == 0 {
		return nil, nil, errors.ValidationError("no numeric analyte columns found")
	}

	groupStats, err := GroupVariances(t, c.opts.GroupColumn, analytes)
	if err != nil {
		return nil, nil, err
	}
	summed := SumVariances(groupStats)

	records := make([]qaqc.DispersionRecord, 0, len(analytes))
	for i, a := range analytes {
		m, sd, cv := CoefficientOfVariation(t.Floats(string(a)))
		if m == 0 {
			c.logger.Warn("%s has zero mean; coefficient of variation is %v", a, cv)
		}
		rec := qaqc.DispersionRecord{
			Analyte:                a,
			Mean:                   m,
			StdDev:                 sd,
			CoefficientOfVariation: cv,
			SamplePrecision:        math.NaN(),
		}
		if i >= c.opts.PrecisionSkip {
			rec.HasPrecision = true
			rec.SummedVariance = summed[a]
			rec.SamplePrecision = SamplePrecision(c.opts.DegreesOfFreedom, summed[a])
		}
		records = append(records, rec)
	}

	c.logger.Debug("computed dispersion for %d analytes over %d rows", len(records), t.Len())
	return records, groupStats, nil
}

// GroupVariances returns sample statistics per field and analyte, fields sorted by label.
// Rows with an empty field label are ignored; missing cells are skipped.
func GroupVariances(t *qaqc.Table, groupColumn string, analytes []core.AnalyteKey) ([]qaqc.GroupStatistic, error) {
	if err := t.RequireColumns(groupColumn); err != nil {
		return nil, err
	}

	rowsByField := make(map[core.FieldKey][]int)
	for i, r := range t.Rows {
		f := core.FieldKey(r[groupColumn])
		if f == "" {
			continue
		}
		rowsByField[f] = append(rowsByField[f], i)
	}
	fields := make([]core.FieldKey, 0, len(rowsByField))
	for f := range rowsByField {
		fields = append(fields, f)
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i] < fields[j] })

	var out []qaqc.GroupStatistic
	for _, f := range fields {
		for _, a := range analytes {
			var xs []float64
			for _, i := range rowsByField[f] {
				if v := t.Float(i, string(a)); !math.IsNaN(v) {
					xs = append(xs, v)
				}
			}
			out = append(out, qaqc.GroupStatistic{
				Field:    f,
				Analyte:  a,
				Count:    len(xs),
				Mean:     mean(xs),
				Variance: sampleVariance(xs),
			})
		}
	}
	return out, nil
}

// SumVariances adds the per-field variances of each analyte, skipping NaN
func SumVariances(groupStats []qaqc.GroupStatistic) map[core.AnalyteKey]float64 {
	out := make(map[core.AnalyteKey]float64)
	for _, g := range groupStats {
		if _, ok := out[g.Analyte]; !ok {
			out[g.Analyte] = 0
		}
		if !math.IsNaN(g.Variance) {
			out[g.Analyte] += g.Variance
		}
	}
	return out
}

// SamplePrecision is dof divided by the summed variance (+Inf when the sum is zero)
func SamplePrecision(dof, summedVariance float64) float64 {
	return dof / summedVariance
}

// CoefficientOfVariation returns mean, sample standard deviation and their ratio over the
// non-missing values. A zero mean yields ±Inf (or NaN when the deviation is also zero).
func CoefficientOfVariation(values []float64) (m, sd, cv float64) {
	xs := dropNaN(values)
	m = mean(xs)
	sd = sampleStdDev(xs)
	return m, sd, sd / m
}

func dropNaN(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

func mean(xs []float64) float64 {
	m, err := stats.Mean(xs)
	if err != nil {
		return math.NaN()
	}
	return m
}

func sampleVariance(xs []float64) float64 {
	if len(xs) < 2 {
		return math.NaN()
	}
	v, err := stats.SampleVariance(xs)
	if err != nil {
		return math.NaN()
	}
	return v
}

func sampleStdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return math.NaN()
	}
	sd, err := stats.StandardDeviationSample(xs)
	if err != nil {
		return math.NaN()
	}
	return sd
}
