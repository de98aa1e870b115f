package qaqc

import (
	"math"
	"strconv"
	"strings"

	"soilqc/domain/core"
	"soilqc/internal/errors"
)

// Column names added by SplitIdentifiers
const (
	FieldColumn  = "Field"
	SampleColumn = "Sample"
)

// Row is one observation keyed by header
type Row map[string]string

// Table is the observation table: ordered headers and raw string cells
type Table struct {
	Headers []string
	Rows    []Row
}

// NewTable builds a table from a header row and positional records.
// Short records leave the trailing cells empty; extra cells are dropped.
// Blank headers become "Unnamed: N" and repeated headers get ".1", ".2" suffixes.
func NewTable(headers []string, records [][]string) *Table {
	hs := uniqueHeaders(headers)
	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		row := make(Row, len(hs))
		for j, h := range hs {
			if j < len(rec) {
				row[h] = strings.TrimSpace(rec[j])
			} else {
				row[h] = ""
			}
		}
		rows = append(rows, row)
	}
	return &Table{Headers: hs, Rows: rows}
}

func uniqueHeaders(headers []string) []string {
	hs := make([]string, len(headers))
	seen := make(map[string]bool, len(headers))
	for i, h := range headers {
		h = strings.TrimSpace(h)
		if h == "" {
			h = "Unnamed: " + strconv.Itoa(i)
		}
		name := h
		for n := 1; seen[name]; n++ {
			name = h + "." + strconv.Itoa(n)
		}
		seen[name] = true
		hs[i] = name
	}
	return hs
}

// Len returns the number of rows
func (t *Table) Len() int { return len(t.Rows) }

// HasColumn reports whether name is a header
func (t *Table) HasColumn(name string) bool {
	for _, h := range t.Headers {
		if h == name {
			return true
		}
	}
	return false
}

// RequireColumns returns INVALID_INPUT naming the first missing column
func (t *Table) RequireColumns(names ...string) error {
	for _, name := range names {
		if !t.HasColumn(name) {
			return errors.InvalidInputf("column %q not found (have %s)", name, strings.Join(t.Headers, ", "))
		}
	}
	return nil
}

// Filter returns a new table sharing headers with the rows for which keep is true
func (t *Table) Filter(keep func(Row) bool) *Table {
	out := &Table{Headers: append([]string(nil), t.Headers...)}
	for _, r := range t.Rows {
		if keep(r) {
			out.Rows = append(out.Rows, r)
		}
	}
	return out
}

// Float parses the cell at column name for row i; missing or non-numeric cells are NaN
func (t *Table) Float(i int, name string) float64 {
	v, ok := ParseCell(t.Rows[i][name])
	if !ok {
		return math.NaN()
	}
	return v
}

// Floats returns the column as float64, NaN for missing cells
func (t *Table) Floats(name string) []float64 {
	out := make([]float64, len(t.Rows))
	for i := range t.Rows {
		out[i] = t.Float(i, name)
	}
	return out
}

// NumericColumns returns, in header order, the columns whose non-missing cells all
// parse as numbers and that hold at least one value. Columns in exclude are skipped.
func (t *Table) NumericColumns(exclude ...string) []core.AnalyteKey {
	skip := make(map[string]bool, len(exclude))
	for _, e := range exclude {
		skip[e] = true
	}
	var out []core.AnalyteKey
	for _, h := range t.Headers {
		if skip[h] {
			continue
		}
		seen, numeric := 0, true
		for _, r := range t.Rows {
			cell := r[h]
			if isMissing(cell) {
				continue
			}
			if _, ok := ParseCell(cell); !ok {
				numeric = false
				break
			}
			seen++
		}
		if numeric && seen > 0 {
			out = append(out, core.AnalyteKey(h))
		}
	}
	return out
}

var missingTokens = map[string]bool{
	"":     true,
	"na":   true,
	"n/a":  true,
	"nan":  true,
	"null": true,
	"#n/a": true,
	"none": true,
}

func isMissing(cell string) bool {
	return missingTokens[strings.ToLower(strings.TrimSpace(cell))]
}

// ParseCell parses a numeric cell. Missing tokens and non-numbers report ok=false.
func ParseCell(cell string) (float64, bool) {
	if isMissing(cell) {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// GroupStatistic is the per-field, per-analyte summary
type GroupStatistic struct {
	Field    core.FieldKey   `json:"field" yaml:"field"`
	Analyte  core.AnalyteKey `json:"analyte" yaml:"analyte"`
	Count    int             `json:"count" yaml:"count"`
	Mean     float64         `json:"mean" yaml:"mean"`
	Variance float64         `json:"variance" yaml:"variance"`
}

// DispersionRecord joins coefficient of variation and sample precision for one analyte
type DispersionRecord struct {
	Analyte                core.AnalyteKey `json:"analyte" yaml:"analyte"`
	Mean                   float64         `json:"mean" yaml:"mean"`
	StdDev                 float64         `json:"std_dev" yaml:"std_dev"`
	CoefficientOfVariation float64         `json:"coefficient_of_variation" yaml:"coefficient_of_variation"`
	SummedVariance         float64         `json:"summed_variance" yaml:"summed_variance"`
	SamplePrecision        float64         `json:"sample_precision" yaml:"sample_precision"`
	// HasPrecision is false for analytes outside the precision column slice
	HasPrecision bool `json:"has_precision" yaml:"has_precision"`
}

// PairwiseComparison is one Tukey HSD row
type PairwiseComparison struct {
	Analyte  core.AnalyteKey `json:"analyte" yaml:"analyte"`
	GroupA   core.FieldKey   `json:"group1" yaml:"group1"`
	GroupB   core.FieldKey   `json:"group2" yaml:"group2"`
	MeanDiff float64         `json:"meandiff" yaml:"meandiff"`
	PAdj     float64         `json:"p_adj" yaml:"p_adj"`
	Lower    float64         `json:"lower" yaml:"lower"`
	Upper    float64         `json:"upper" yaml:"upper"`
	Reject   bool            `json:"reject" yaml:"reject"`
}

// AnalyteSummary describes the distribution of one analyte column
type AnalyteSummary struct {
	Analyte  core.AnalyteKey `json:"analyte" yaml:"analyte"`
	Count    int             `json:"count" yaml:"count"`
	Missing  int             `json:"missing" yaml:"missing"`
	Mean     float64         `json:"mean" yaml:"mean"`
	StdDev   float64         `json:"std_dev" yaml:"std_dev"`
	Min      float64         `json:"min" yaml:"min"`
	Q1       float64         `json:"q1" yaml:"q1"`
	Median   float64         `json:"median" yaml:"median"`
	Q3       float64         `json:"q3" yaml:"q3"`
	Max      float64         `json:"max" yaml:"max"`
	Skewness float64         `json:"skewness" yaml:"skewness"`
	// Outliers counts values beyond 1.5 IQR of the quartiles
	Outliers int `json:"outliers" yaml:"outliers"`
}
