// Package profiling summarizes analyte distributions before the QAQC statistics run.
package profiling

import (
	"math"

	"github.com/montanaflynn/stats"

	"soilqc/domain/core"
	"soilqc/domain/qaqc"
)

// Summarize returns one AnalyteSummary per analyte, in order. Missing cells count
// toward Missing and are excluded from every statistic.
func Summarize(t *qaqc.Table, analytes []core.AnalyteKey) []qaqc.AnalyteSummary {
	out := make([]qaqc.AnalyteSummary, 0, len(analytes))
	for _, a := range analytes {
		col := t.Floats(string(a))
		data := make([]float64, 0, len(col))
		for _, v := range col {
			if !math.IsNaN(v) {
				data = append(data, v)
			}
		}
		s := Describe(data)
		s.Analyte = a
		s.Missing = len(col) - len(data)
		out = append(out, s)
	}
	return out
}

// Describe computes summary statistics of data. Statistics undefined for the
// sample size are NaN.
func Describe(data []float64) qaqc.AnalyteSummary {
	nan := math.NaN()
	s := qaqc.AnalyteSummary{
		Count: len(data), Mean: nan, StdDev: nan, Min: nan, Q1: nan, Median: nan, Q3: nan, Max: nan, Skewness: nan,
	}
	if len(data) == 0 {
		return s
	}

	s.Mean, _ = stats.Mean(data)
	s.Min, _ = stats.Min(data)
	s.Max, _ = stats.Max(data)
	s.Median, _ = stats.Median(data)
	if len(data) < 2 {
		return s
	}

	s.StdDev, _ = stats.StandardDeviationSample(data)
	if q, err := stats.Quartile(data); err == nil {
		s.Q1, s.Q3 = q.Q1, q.Q3
	}
	if o, err := stats.QuartileOutliers(data); err == nil {
		s.Outliers = len(o.Mild) + len(o.Extreme)
	}
	s.Skewness = skewness(data, s.Mean, s.StdDev)
	return s
}

// skewness is the adjusted Fisher-Pearson coefficient
func skewness(data []float64, mean, sd float64) float64 {
	n := float64(len(data))
	if n < 3 || sd == 0 {
		return math.NaN()
	}
	var m3, m2 float64
	for _, x := range data {
		d := x - mean
		m2 += d * d
		m3 += d * d * d
	}
	m2 /= n
	m3 /= n
	g1 := m3 / math.Pow(m2, 1.5)
	return g1 * math.Sqrt(n*(n-1)) / (n - 2)
}
