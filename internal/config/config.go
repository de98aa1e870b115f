package config

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"soilqc/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Source   SourceConfig   `mapstructure:"source"`
	Identity IdentityConfig `mapstructure:"identity"`
	Stats    StatsConfig    `mapstructure:"stats"`
	Spatial  SpatialConfig  `mapstructure:"spatial"`
	Output   OutputConfig   `mapstructure:"output"`
	LogLevel string         `mapstructure:"log_level"`
}

// SourceConfig controls how tables are fetched
type SourceConfig struct {
	Sheet       string        `mapstructure:"sheet"`
	// Delimiter separates CSV fields; empty means ','
	Delimiter   string        `mapstructure:"delimiter"`
	HTTPTimeout time.Duration `mapstructure:"http_timeout"`
	UserAgent   string        `mapstructure:"user_agent"`
}

// IdentityConfig describes the composite sample identifier
type IdentityConfig struct {
	Column          string `mapstructure:"column"`
	Delimiter       string `mapstructure:"delimiter"`
	DuplicateMarker string `mapstructure:"duplicate_marker"`
	GroupColumn     string `mapstructure:"group_column"`
}

// StatsConfig holds the statistical constants
type StatsConfig struct {
	Alpha            float64 `mapstructure:"alpha"`
	DegreesOfFreedom float64 `mapstructure:"degrees_of_freedom"`
	PrecisionSkip    int     `mapstructure:"precision_skip"`
	CVAbove          float64 `mapstructure:"cv_above"`
	PrecisionBelow   float64 `mapstructure:"precision_below"`
	HistogramBins    int     `mapstructure:"histogram_bins"`
}

// SpatialConfig holds well-map inputs
type SpatialConfig struct {
	WellsURL        string `mapstructure:"wells_url"`
	StateOutlineURL string `mapstructure:"state_outline_url"`
	AreaOutlineURL  string `mapstructure:"area_outline_url"`
	LongitudeColumn string `mapstructure:"longitude_column"`
	LatitudeColumn  string `mapstructure:"latitude_column"`
	CRS             string `mapstructure:"crs"`
}

// OutputConfig holds rendering targets
type OutputConfig struct {
	Dir    string `mapstructure:"dir"`
	Format string `mapstructure:"format"`
	Width  int    `mapstructure:"width"`
	Height int    `mapstructure:"height"`
}

// Default returns the configuration used when nothing is overridden
func Default() *Config {
	return &Config{
		Source: SourceConfig{
			HTTPTimeout: 30 * time.Second,
			UserAgent:   "soilqc/1.0",
		},
		Identity: IdentityConfig{
			Column:          "Sample ID",
			Delimiter:       "_",
			DuplicateMarker: "Dup",
			GroupColumn:     "Field",
		},
		Stats: StatsConfig{
			Alpha:            0.05,
			DegreesOfFreedom: 3,
			PrecisionSkip:    10,
			CVAbove:          0.8,
			PrecisionBelow:   0.05,
			HistogramBins:    30,
		},
		Spatial: SpatialConfig{
			LongitudeColumn: "Long_Dec",
			LatitudeColumn:  "Lat_Dec",
			CRS:             "EPSG:4326",
		},
		Output: OutputConfig{
			Dir:    ".",
			Format: "table",
			Width:  1400,
			Height: 600,
		},
		LogLevel: "INFO",
	}
}

// Load reads .env, then SOILQC_* environment variables, then the optional YAML file at path.
// Precedence: env > file > defaults.
func Load(path string) (*Config, error) {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("SOILQC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, Default())

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(errors.ConfigInvalid(err.Error()), "failed to read config file %s", path)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(errors.ConfigInvalid(err.Error()), "failed to decode configuration")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it during Unmarshal
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("source.sheet", d.Source.Sheet)
	v.SetDefault("source.delimiter", d.Source.Delimiter)
	v.SetDefault("source.http_timeout", d.Source.HTTPTimeout)
	v.SetDefault("source.user_agent", d.Source.UserAgent)

	v.SetDefault("identity.column", d.Identity.Column)
	v.SetDefault("identity.delimiter", d.Identity.Delimiter)
	v.SetDefault("identity.duplicate_marker", d.Identity.DuplicateMarker)
	v.SetDefault("identity.group_column", d.Identity.GroupColumn)

	v.SetDefault("stats.alpha", d.Stats.Alpha)
	v.SetDefault("stats.degrees_of_freedom", d.Stats.DegreesOfFreedom)
	v.SetDefault("stats.precision_skip", d.Stats.PrecisionSkip)
	v.SetDefault("stats.cv_above", d.Stats.CVAbove)
	v.SetDefault("stats.precision_below", d.Stats.PrecisionBelow)
	v.SetDefault("stats.histogram_bins", d.Stats.HistogramBins)

	v.SetDefault("spatial.wells_url", d.Spatial.WellsURL)
	v.SetDefault("spatial.state_outline_url", d.Spatial.StateOutlineURL)
	v.SetDefault("spatial.area_outline_url", d.Spatial.AreaOutlineURL)
	v.SetDefault("spatial.longitude_column", d.Spatial.LongitudeColumn)
	v.SetDefault("spatial.latitude_column", d.Spatial.LatitudeColumn)
	v.SetDefault("spatial.crs", d.Spatial.CRS)

	v.SetDefault("output.dir", d.Output.Dir)
	v.SetDefault("output.format", d.Output.Format)
	v.SetDefault("output.width", d.Output.Width)
	v.SetDefault("output.height", d.Output.Height)

	v.SetDefault("log_level", d.LogLevel)
}

// Validate checks ranges of the statistical and rendering settings
func (c *Config) Validate() error {
	if c.Stats.Alpha <= 0 || c.Stats.Alpha >= 1 {
		return errors.ConfigInvalid("stats.alpha must be in (0, 1)")
	}
	if c.Stats.DegreesOfFreedom <= 0 {
		return errors.ConfigInvalid("stats.degrees_of_freedom must be positive")
	}
	if c.Stats.PrecisionSkip < 0 {
		return errors.ConfigInvalid("stats.precision_skip must not be negative")
	}
	if c.Stats.HistogramBins < 1 {
		return errors.ConfigInvalid("stats.histogram_bins must be at least 1")
	}
	if c.Identity.Delimiter == "" {
		return errors.ConfigInvalid("identity.delimiter is required")
	}
	if c.Identity.GroupColumn == "" {
		return errors.ConfigInvalid("identity.group_column is required")
	}
	if utf8.RuneCountInString(c.Source.Delimiter) > 1 {
		return errors.ConfigInvalid(fmt.Sprintf("source.delimiter must be a single character, got %q", c.Source.Delimiter))
	}
	if c.Source.HTTPTimeout <= 0 {
		return errors.ConfigInvalid("source.http_timeout must be positive")
	}
	if c.Output.Width <= 0 || c.Output.Height <= 0 {
		return errors.ConfigInvalid("output.width and output.height must be positive")
	}
	return nil
}
