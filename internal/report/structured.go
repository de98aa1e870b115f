package report

import (
	"encoding/json"
	"io"
	"math"

	"gopkg.in/yaml.v3"
)

// structured is the JSON/YAML shape: one object per row keyed by column
type structured struct {
	RunID  string                   `json:"run_id" yaml:"run_id"`
	Title  string                   `json:"title" yaml:"title"`
	Source string                   `json:"source,omitempty" yaml:"source,omitempty"`
	Notes  []string                 `json:"notes,omitempty" yaml:"notes,omitempty"`
	Rows   []map[string]interface{} `json:"rows" yaml:"rows"`
}

func toStructured(doc *Document) structured {
	s := structured{
		RunID:  doc.RunID.String(),
		Title:  doc.Title,
		Source: doc.Source,
		Notes:  doc.Notes,
		Rows:   make([]map[string]interface{}, 0, len(doc.Rows)),
	}
	for _, row := range doc.Rows {
		m := make(map[string]interface{}, len(doc.Columns))
		for i, col := range doc.Columns {
			if i < len(row) {
				m[col] = finite(row[i])
			}
		}
		s.Rows = append(s.Rows, m)
	}
	return s
}

// finite maps NaN and ±Inf to nil; JSON has no encoding for them
func finite(v interface{}) interface{} {
	if f, ok := v.(float64); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
		return nil
	}
	return v
}

func writeJSON(w io.Writer, doc *Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(toStructured(doc))
}

func writeYAML(w io.Writer, doc *Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(toStructured(doc)); err != nil {
		return err
	}
	return enc.Close()
}
