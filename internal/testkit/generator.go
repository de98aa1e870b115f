package testkit

import (
	"fmt"
	"math/rand"
	"strconv"

	"soilqc/domain/qaqc"
)

// AnalyteProfile sets the per-field mean and the within-field spread of one analyte
type AnalyteProfile struct {
	Name   string
	Means  []float64 // indexed by field; the last mean repeats for extra fields
	StdDev float64
}

// FieldTrialConfig configures the synthetic survey generator
type FieldTrialConfig struct {
	Fields          []string
	SamplesPerField int
	// DuplicatesPerField lab re-runs appended per field with the duplicate marker
	DuplicatesPerField int
	IDColumn           string
	Delimiter          string
	DuplicateMarker    string
	Analytes           []AnalyteProfile
	Seed               int64
}

// DefaultFieldTrialConfig returns three well separated fields with one duplicate each
func DefaultFieldTrialConfig() FieldTrialConfig {
	return FieldTrialConfig{
		Fields:             []string{"North", "South", "East"},
		SamplesPerField:    6,
		DuplicatesPerField: 1,
		IDColumn:           "Sample ID",
		Delimiter:          "_",
		DuplicateMarker:    "Dup",
		Analytes: []AnalyteProfile{
			{Name: "pH", Means: []float64{6.0, 7.0, 8.0}, StdDev: 0.1},
			{Name: "OM", Means: []float64{3.0}, StdDev: 0.2},
		},
		Seed: 42,
	}
}

// FieldTrialGenerator produces reproducible lab result tables
type FieldTrialGenerator struct {
	config FieldTrialConfig
	rng    *rand.Rand
}

// NewFieldTrialGenerator creates a generator seeded from config
func NewFieldTrialGenerator(config FieldTrialConfig) *FieldTrialGenerator {
	return &FieldTrialGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Generate returns a table with one identifier column followed by the analyte columns.
// Duplicate rows carry values far from the field mean so that failing to drop them is visible.
func (g *FieldTrialGenerator) Generate() *qaqc.Table {
	cfg := g.config
	headers := []string{cfg.IDColumn}
	for _, a := range cfg.Analytes {
		headers = append(headers, a.Name)
	}

	var records [][]string
	for fi, field := range cfg.Fields {
		for s := 1; s <= cfg.SamplesPerField; s++ {
			records = append(records, g.row(fi, field+cfg.Delimiter+strconv.Itoa(s), 0))
		}
		for d := 1; d <= cfg.DuplicatesPerField; d++ {
			id := fmt.Sprintf("%s%s%d%s", field, cfg.Delimiter, d, cfg.DuplicateMarker)
			records = append(records, g.row(fi, id, 100))
		}
	}
	return qaqc.NewTable(headers, records)
}

func (g *FieldTrialGenerator) row(field int, id string, shift float64) []string {
	rec := []string{id}
	for _, a := range g.config.Analytes {
		v := meanFor(a, field) + shift + g.rng.NormFloat64()*a.StdDev
		rec = append(rec, strconv.FormatFloat(v, 'f', 4, 64))
	}
	return rec
}

func meanFor(a AnalyteProfile, field int) float64 {
	if len(a.Means) == 0 {
		return 0
	}
	if field >= len(a.Means) {
		return a.Means[len(a.Means)-1]
	}
	return a.Means[field]
}
