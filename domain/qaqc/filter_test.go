package qaqc

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"soilqc/domain/core"
)

func comparisons(analyte core.AnalyteKey, rejects ...bool) []PairwiseComparison {
	groups := []core.FieldKey{"A", "B", "C", "D"}
	out := make([]PairwiseComparison, 0, len(rejects))
	for i, r := range rejects {
		out = append(out, PairwiseComparison{
			Analyte: analyte,
			GroupA:  groups[i%len(groups)],
			GroupB:  groups[(i+1)%len(groups)],
			Reject:  r,
		})
	}
	return out
}

func TestFilterSignificant_SubsetAndIdempotent(t *testing.T) {
	rows := comparisons("pH", true, false, true, false)

	once := FilterSignificant(rows)
	twice := FilterSignificant(once)

	assert.Len(t, once, 2)
	assert.Equal(t, once, twice)
	for _, r := range once {
		assert.True(t, r.Reject)
		assert.Contains(t, rows, r)
	}
}

func TestFilterSignificant_Empty(t *testing.T) {
	assert.Empty(t, FilterSignificant(nil))
	assert.Empty(t, FilterSignificant(comparisons("pH", false, false)))
}

func TestFilterSignificantByAnalyte_RowCountIsSum(t *testing.T) {
	carbon := comparisons("Organic C H2O ppm", true, true, false)
	matter := comparisons("Organic Matter LOI %", false, true, false, true)

	combined := FilterSignificantByAnalyte([][]PairwiseComparison{carbon, matter})

	assert.Len(t, combined, len(FilterSignificant(carbon))+len(FilterSignificant(matter)))
	assert.Equal(t, core.AnalyteKey("Organic C H2O ppm"), combined[0].Analyte)
	assert.Equal(t, core.AnalyteKey("Organic Matter LOI %"), combined[len(combined)-1].Analyte)
}

func TestSplitByAnalyte(t *testing.T) {
	stacked := append(comparisons("b", true, false), comparisons("a", true)...)
	keys, parts := SplitByAnalyte(stacked)

	assert.Equal(t, []core.AnalyteKey{"b", "a"}, keys)
	assert.Len(t, parts[0], 2)
	assert.Len(t, parts[1], 1)
}

func TestFlagDispersion(t *testing.T) {
	records := []DispersionRecord{
		{Analyte: "Na Sat %", CoefficientOfVariation: 1.2, SamplePrecision: 0.01, HasPrecision: true},
		{Analyte: "pH", CoefficientOfVariation: 0.1, SamplePrecision: 0.01, HasPrecision: true},
		{Analyte: "Rhizobia", CoefficientOfVariation: 0.9, SamplePrecision: 0.2, HasPrecision: true},
		{Analyte: "Protozoa", CoefficientOfVariation: 2.0, HasPrecision: false},
		{Analyte: "Zero", CoefficientOfVariation: math.NaN(), SamplePrecision: 0.01, HasPrecision: true},
		{Analyte: "Edge", CoefficientOfVariation: 0.8, SamplePrecision: 0.01, HasPrecision: true},
	}

	flagged := FlagDispersion(records, 0.8, 0.05)

	assert.Len(t, flagged, 1)
	assert.Equal(t, core.AnalyteKey("Na Sat %"), flagged[0].Analyte)
}
