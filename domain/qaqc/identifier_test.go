package qaqc

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soilqc/domain/core"
	"soilqc/internal/errors"
)

func soilTable() *Table {
	return NewTable(
		[]string{"Sample ID", "Organic C H2O ppm", "Organic Matter LOI %"},
		[][]string{
			{"KS01_1", "120", "2.1"},
			{"KS01_2", "130", "2.3"},
			{"KS01_2 Dup", "500", "9.9"},
			{"KS02_1", "90", ""},
			{"KS02_2", "95", "1.8"},
			{"", "100", "2.0"},
		},
	)
}

func TestIsDuplicate(t *testing.T) {
	assert.True(t, IsDuplicate("KS01_2 Dup", "Dup"))
	assert.True(t, IsDuplicate("Dup_KS01", "Dup"))
	assert.False(t, IsDuplicate("KS01_2", "Dup"))
	assert.False(t, IsDuplicate("", "Dup"))
	assert.False(t, IsDuplicate("KS01_dup", "Dup"), "marker match is case-sensitive")
	assert.False(t, IsDuplicate("anything", ""))
}

func TestParseIdentifier(t *testing.T) {
	id, err := ParseIdentifier("KS12_3", "_")
	require.NoError(t, err)
	assert.Equal(t, Identifier{Field: core.FieldKey("KS12"), Sample: "3"}, id)

	id, err = ParseIdentifier("KS12_3_b", "_")
	require.NoError(t, err)
	assert.Equal(t, core.FieldKey("KS12"), id.Field)
	assert.Equal(t, "3_b", id.Sample)
}

func TestParseIdentifier_Malformed(t *testing.T) {
	for _, in := range []string{"KS12", "_3", ""} {
		_, err := ParseIdentifier(in, "_")
		require.Error(t, err, in)
		assert.True(t, stderrors.Is(err, ErrMalformedIdentifier), in)
		assert.True(t, errors.HasCode(err, errors.CodeValidationError), in)
	}
}

func TestDropDuplicates_ExcludesMarkedRows(t *testing.T) {
	out, err := DropDuplicates(soilTable(), "Sample ID", "Dup")
	require.NoError(t, err)

	assert.Equal(t, 5, out.Len())
	for _, r := range out.Rows {
		assert.NotContains(t, r["Sample ID"], "Dup")
	}
}

func TestDropDuplicates_UnknownColumn(t *testing.T) {
	_, err := DropDuplicates(soilTable(), "Lab ID", "Dup")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))
}

func TestSplitIdentifiers(t *testing.T) {
	deduped, err := DropDuplicates(soilTable(), "Sample ID", "Dup")
	require.NoError(t, err)

	out, err := SplitIdentifiers(deduped, "Sample ID", "_")
	require.NoError(t, err)

	assert.Equal(t, []string{"Sample ID", "Organic C H2O ppm", "Organic Matter LOI %", FieldColumn, SampleColumn}, out.Headers)
	assert.Equal(t, "KS01", out.Rows[0][FieldColumn])
	assert.Equal(t, "1", out.Rows[0][SampleColumn])
	assert.Equal(t, "KS02", out.Rows[3][FieldColumn])
	assert.Equal(t, "", out.Rows[4][FieldColumn], "empty identifiers get no field")

	// input is not mutated
	_, had := deduped.Rows[0][FieldColumn]
	assert.False(t, had)
}

func TestSplitIdentifiers_MalformedRow(t *testing.T) {
	tbl := NewTable([]string{"Sample ID", "pH"}, [][]string{{"KS01_1", "6.1"}, {"KS01", "6.3"}})
	_, err := SplitIdentifiers(tbl, "Sample ID", "_")
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, ErrMalformedIdentifier))
	assert.Contains(t, err.Error(), "row 2")
}

func TestNumericColumns(t *testing.T) {
	tbl := NewTable(
		[]string{"Sample ID", "Field", "pH", "Texture", "Blank"},
		[][]string{
			{"A_1", "1", "6.5", "loam", ""},
			{"A_2", "1", "NA", "clay", ""},
			{"B_1", "2", "7.0", "silt", ""},
		},
	)
	cols := tbl.NumericColumns("Field")
	assert.Equal(t, []core.AnalyteKey{"pH"}, cols)

	ph := tbl.Floats("pH")
	assert.Equal(t, 6.5, ph[0])
	assert.True(t, ph[1] != ph[1], "NA should parse as NaN")
}

func TestNewTable_RaggedRecords(t *testing.T) {
	tbl := NewTable([]string{" a ", "b"}, [][]string{{"1"}, {"2", "3", "4"}})
	assert.Equal(t, []string{"a", "b"}, tbl.Headers)
	assert.Equal(t, "", tbl.Rows[0]["b"])
	assert.Equal(t, "3", tbl.Rows[1]["b"])
}

func TestNewTable_RepeatedAndBlankHeaders(t *testing.T) {
	tbl := NewTable(
		[]string{"Sample ID", "Zn ppm", "Zn ppm", "", "Zn ppm.1", " "},
		[][]string{{"A_1", "1", "100", "x", "7", "y"}},
	)

	assert.Equal(t, []string{"Sample ID", "Zn ppm", "Zn ppm.1", "Unnamed: 3", "Zn ppm.1.1", "Unnamed: 5"}, tbl.Headers)
	r := tbl.Rows[0]
	assert.Equal(t, "1", r["Zn ppm"])
	assert.Equal(t, "100", r["Zn ppm.1"])
	assert.Equal(t, "x", r["Unnamed: 3"])
	assert.Equal(t, "7", r["Zn ppm.1.1"])
	assert.Len(t, r, 6)
}

func TestSplitIdentifiers_KeepsExistingSampleColumn(t *testing.T) {
	tbl := NewTable([]string{"Sample ID", "Sample", "pH"}, [][]string{{"KS01_1", "core-7", "6.1"}})

	_, err := SplitIdentifiers(tbl, "Sample ID", "_")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))
	assert.Contains(t, err.Error(), `"Sample"`)
	assert.Equal(t, "core-7", tbl.Rows[0]["Sample"])
}
