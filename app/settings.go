package app

import (
	"soilqc/domain/qaqc"
	"soilqc/internal/config"
)

// Settings are the pipeline constants, usually taken from config.Config
type Settings struct {
	IDColumn        string
	Delimiter       string
	DuplicateMarker string
	GroupColumn     string
	Sheet           string

	Alpha            float64
	DegreesOfFreedom float64
	PrecisionSkip    int
	CVAbove          float64
	PrecisionBelow   float64
}

// SettingsFromConfig copies the identity and stats sections of cfg
func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		IDColumn:         cfg.Identity.Column,
		Delimiter:        cfg.Identity.Delimiter,
		DuplicateMarker:  cfg.Identity.DuplicateMarker,
		GroupColumn:      cfg.Identity.GroupColumn,
		Sheet:            cfg.Source.Sheet,
		Alpha:            cfg.Stats.Alpha,
		DegreesOfFreedom: cfg.Stats.DegreesOfFreedom,
		PrecisionSkip:    cfg.Stats.PrecisionSkip,
		CVAbove:          cfg.Stats.CVAbove,
		PrecisionBelow:   cfg.Stats.PrecisionBelow,
	}
}

// nonAnalytes are columns that may parse as numbers but are never measured values
func (s Settings) nonAnalytes() []string {
	return []string{s.IDColumn, s.GroupColumn, qaqc.FieldColumn, qaqc.SampleColumn}
}
