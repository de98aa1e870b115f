// Package report formats pipeline results for the terminal and for files.
package report

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"soilqc/domain/core"
	"soilqc/domain/qaqc"
	"soilqc/internal/errors"
)

// Format selects an output encoding
type Format string

const (
	FormatTable    Format = "table"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
)

// Formats lists every supported format in help-text order
var Formats = []Format{FormatTable, FormatMarkdown, FormatHTML, FormatJSON, FormatYAML}

// ParseFormat accepts a format name, with "md" as an alias for markdown
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case "md":
		return FormatMarkdown, nil
	case "":
		return FormatTable, nil
	}
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", errors.InvalidInputf("unknown format %q (want %s)", s, FormatNames())
}

// FormatNames joins Formats with "|" for help text and errors
func FormatNames() string {
	names := make([]string, len(Formats))
	for i, f := range Formats {
		names[i] = string(f)
	}
	return strings.Join(names, "|")
}

// Document is a titled result table with run metadata
type Document struct {
	RunID   core.RunID
	Title   string
	Source  string
	Notes   []string
	Columns []string
	Rows    [][]interface{}
}

// Write renders doc in format
func Write(w io.Writer, format Format, doc *Document) error {
	var err error
	switch format {
	case FormatTable, "":
		err = writeTable(w, doc)
	case FormatMarkdown:
		_, err = io.WriteString(w, Markdown(doc))
	case FormatHTML:
		_, err = w.Write(HTML(doc))
	case FormatJSON:
		err = writeJSON(w, doc)
	case FormatYAML:
		err = writeYAML(w, doc)
	default:
		return errors.InvalidInputf("unknown format %q", format)
	}
	if err != nil {
		return errors.Wrapf(err, "failed to write %s report", format)
	}
	return nil
}

// Comparisons builds the Tukey HSD table
func Comparisons(runID core.RunID, source string, alpha float64, rows []qaqc.PairwiseComparison, significantOnly bool) *Document {
	title := "Tukey HSD pairwise comparisons"
	if significantOnly {
		title = "Significant Tukey HSD comparisons"
	}
	doc := &Document{
		RunID:   runID,
		Title:   title,
		Source:  source,
		Notes:   []string{fmt.Sprintf("alpha = %s", formatFloat(alpha, -1))},
		Columns: []string{"analyte", "group1", "group2", "meandiff", "p-adj", "lower", "upper", "reject"},
	}
	for _, c := range rows {
		doc.Rows = append(doc.Rows, []interface{}{
			string(c.Analyte), string(c.GroupA), string(c.GroupB), c.MeanDiff, c.PAdj, c.Lower, c.Upper, c.Reject,
		})
	}
	doc.Notes = append(doc.Notes, fmt.Sprintf("%d comparisons", len(rows)))
	return doc
}

// Dispersion builds the CV and sample precision table
func Dispersion(runID core.RunID, source string, records []qaqc.DispersionRecord, flaggedOnly bool) *Document {
	title := "Coefficient of variation and sample precision"
	if flaggedOnly {
		title = "Analytes with high variability and low precision"
	}
	doc := &Document{
		RunID:   runID,
		Title:   title,
		Source:  source,
		Columns: []string{"analyte", "mean", "std", "CV", "summed_variance", "sample_precision"},
	}
	for _, r := range records {
		sv, sp := interface{}(nil), interface{}(nil)
		if r.HasPrecision {
			sv, sp = r.SummedVariance, r.SamplePrecision
		}
		doc.Rows = append(doc.Rows, []interface{}{string(r.Analyte), r.Mean, r.StdDev, r.CoefficientOfVariation, sv, sp})
	}
	doc.Notes = append(doc.Notes, fmt.Sprintf("%d analytes", len(records)))
	return doc
}

// GroupStatistics builds the per-field variance table
func GroupStatistics(runID core.RunID, source string, stats []qaqc.GroupStatistic) *Document {
	doc := &Document{
		RunID:   runID,
		Title:   "Per-field variance",
		Source:  source,
		Columns: []string{"analyte", "field", "n", "mean", "variance"},
	}
	for _, s := range stats {
		doc.Rows = append(doc.Rows, []interface{}{string(s.Analyte), string(s.Field), s.Count, s.Mean, s.Variance})
	}
	return doc
}

// formatCell renders a value the way the text formats show it; nil is a blank cell
func formatCell(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case float64:
		return formatFloat(x, 4)
	case bool:
		if x {
			return "True"
		}
		return "False"
	case int:
		return strconv.Itoa(x)
	case string:
		return x
	}
	return fmt.Sprint(v)
}

func formatFloat(v float64, prec int) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	return strconv.FormatFloat(v, 'f', prec, 64)
}

// Summaries builds the per-analyte distribution table
func Summaries(runID core.RunID, source string, rows []qaqc.AnalyteSummary) *Document {
	doc := &Document{
		RunID:   runID,
		Title:   "Analyte summary",
		Source:  source,
		Columns: []string{"analyte", "count", "missing", "mean", "std", "min", "25%", "50%", "75%", "max", "skew", "outliers"},
	}
	for _, s := range rows {
		doc.Rows = append(doc.Rows, []interface{}{
			string(s.Analyte), s.Count, s.Missing, s.Mean, s.StdDev, s.Min, s.Q1, s.Median, s.Q3, s.Max, s.Skewness, s.Outliers,
		})
	}
	return doc
}
