package tukey

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soilqc/domain/core"
	"soilqc/domain/qaqc"
	"soilqc/internal"
	"soilqc/internal/errors"
)

func fieldTable() *qaqc.Table {
	return qaqc.NewTable(
		[]string{"Field", "Organic C H2O ppm", "Organic Matter LOI %"},
		[][]string{
			{"A", "100", "2.0"},
			{"A", "102", "2.1"},
			{"A", "98", ""},
			{"B", "101", "2.2"},
			{"B", "99", "1.9"},
			{"B", "100", "2.0"},
			{"C", "150", "2.1"},
			{"C", "152", "2.0"},
			{"C", "148", "2.2"},
		},
	)
}

func TestRunner_StacksAndFiltersPerAnalyte(t *testing.T) {
	runner := NewRunner("Field", 0.05, internal.NewLogger(internal.LogLevelError))
	analytes := []core.AnalyteKey{"Organic C H2O ppm", "Organic Matter LOI %"}

	results, err := runner.Run(fieldTable(), analytes)
	require.NoError(t, err)
	require.Len(t, results, 2)

	stacked := Stack(results)
	assert.Len(t, stacked, 6)
	assert.Equal(t, analytes[0], stacked[0].Analyte)
	assert.Equal(t, analytes[1], stacked[5].Analyte)

	sig := Significant(results)
	want := len(qaqc.FilterSignificant(results[0].Comparisons)) + len(qaqc.FilterSignificant(results[1].Comparisons))
	assert.Len(t, sig, want)
	for _, c := range sig {
		assert.True(t, c.Reject)
		assert.Equal(t, analytes[0], c.Analyte, "only the carbon column separates field C")
	}
	assert.Len(t, sig, 2)

	// missing LOI cell in field A is dropped for that analyte only
	assert.Equal(t, 2, results[1].Groups[0].N)
	assert.Equal(t, 3, results[0].Groups[0].N)
}

func TestRunner_UnknownColumns(t *testing.T) {
	runner := NewRunner("Field", 0, nil)
	assert.Equal(t, DefaultAlpha, runner.Alpha)

	_, err := runner.Run(fieldTable(), []core.AnalyteKey{"Zn ppm"})
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))

	_, err = NewRunner("Plot", 0.05, nil).Run(fieldTable(), []core.AnalyteKey{"Organic C H2O ppm"})
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))
}
