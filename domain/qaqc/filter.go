package qaqc

import (
	"math"

	"soilqc/domain/core"
)

// FilterSignificant keeps the rows whose reject flag is set, in order
func FilterSignificant(rows []PairwiseComparison) []PairwiseComparison {
	out := make([]PairwiseComparison, 0, len(rows))
	for _, r := range rows {
		if r.Reject {
			out = append(out, r)
		}
	}
	return out
}

// FilterSignificantByAnalyte filters each analyte's table on its own and concatenates the results
func FilterSignificantByAnalyte(perAnalyte [][]PairwiseComparison) []PairwiseComparison {
	var out []PairwiseComparison
	for _, rows := range perAnalyte {
		out = append(out, FilterSignificant(rows)...)
	}
	return out
}

// SplitByAnalyte partitions a stacked comparison table, keeping first-seen analyte order
func SplitByAnalyte(rows []PairwiseComparison) ([]core.AnalyteKey, [][]PairwiseComparison) {
	index := make(map[core.AnalyteKey]int)
	var keys []core.AnalyteKey
	var parts [][]PairwiseComparison
	for _, r := range rows {
		i, ok := index[r.Analyte]
		if !ok {
			i = len(parts)
			index[r.Analyte] = i
			keys = append(keys, r.Analyte)
			parts = append(parts, nil)
		}
		parts[i] = append(parts[i], r)
	}
	return keys, parts
}

// FlagDispersion returns analytes with high variation and low precision:
// CV strictly above cvAbove and sample precision strictly below precisionBelow.
// Analytes without a precision value are never flagged.
func FlagDispersion(records []DispersionRecord, cvAbove, precisionBelow float64) []DispersionRecord {
	var out []DispersionRecord
	for _, r := range records {
		if !r.HasPrecision || math.IsNaN(r.CoefficientOfVariation) || math.IsNaN(r.SamplePrecision) {
			continue
		}
		if r.CoefficientOfVariation > cvAbove && r.SamplePrecision < precisionBelow {
			out = append(out, r)
		}
	}
	return out
}
