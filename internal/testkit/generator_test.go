package testkit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Shape(t *testing.T) {
	cfg := DefaultFieldTrialConfig()
	tbl := NewFieldTrialGenerator(cfg).Generate()

	assert.Equal(t, []string{"Sample ID", "pH", "OM"}, tbl.Headers)
	assert.Equal(t, len(cfg.Fields)*(cfg.SamplesPerField+cfg.DuplicatesPerField), tbl.Len())
	assert.Equal(t, "North_1", tbl.Rows[0]["Sample ID"])
	assert.Equal(t, "North_1Dup", tbl.Rows[cfg.SamplesPerField]["Sample ID"])
}

func TestGenerate_Reproducible(t *testing.T) {
	a := NewFieldTrialGenerator(DefaultFieldTrialConfig()).Generate()
	b := NewFieldTrialGenerator(DefaultFieldTrialConfig()).Generate()
	require.Equal(t, a.Len(), b.Len())
	for i := range a.Rows {
		assert.Equal(t, a.Rows[i], b.Rows[i])
	}
}

func TestGenerate_DuplicatesAreShifted(t *testing.T) {
	cfg := DefaultFieldTrialConfig()
	tbl := NewFieldTrialGenerator(cfg).Generate()

	ph := tbl.Floats("pH")
	assert.InDelta(t, 6.0, ph[0], 1)
	assert.Greater(t, ph[cfg.SamplesPerField], 100.0)
}
