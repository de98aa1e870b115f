package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"soilqc/adapters/api"
	"soilqc/adapters/excel"
	"soilqc/adapters/geo"
	"soilqc/adapters/render"
	"soilqc/app"
	"soilqc/internal"
	"soilqc/internal/config"
	"soilqc/internal/errors"
)

// globals holds the persistent flags shared by every command
type globals struct {
	configPath string
	logLevel   string
	outDir     string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		if code := errors.GetCode(err); code != "UNKNOWN" {
			fmt.Fprintf(os.Stderr, "Error [%s]: %v\n", code, err)
		} else {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globals{}

	rootCmd := &cobra.Command{
		Use:   "soilqc",
		Short: "Soil duplicate QAQC statistics and well location maps",
		Long: `soilqc reads soil lab results (CSV or XLSX, local or over HTTP), drops
duplicate-flagged samples and reports per-field statistics:

  tukey       Tukey HSD pairwise comparisons between fields, per analyte
  dispersion  coefficient of variation and sample precision, per analyte
  describe    distribution summary (quartiles, skew, outliers), per analyte
  wells       well location map with a state locator inset

Settings come from defaults, an optional YAML file (--config), .env and
SOILQC_* environment variables, in increasing order of precedence.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&g.configPath, "config", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "ERROR|WARN|INFO|DEBUG|TRACE (default from config)")
	rootCmd.PersistentFlags().StringVar(&g.outDir, "out-dir", "", "Directory for PNG output (default from config)")

	rootCmd.AddCommand(
		newTukeyCmd(g),
		newDispersionCmd(g),
		newDescribeCmd(g),
		newWellsCmd(g),
	)
	return rootCmd
}

// env is the wired dependency set for one command invocation
type env struct {
	cfg     *config.Config
	logger  *internal.Logger
	fetcher *api.Fetcher
	tables  *excel.DataReader
}

func (g *globals) load() (*env, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, err
	}
	if g.logLevel != "" {
		cfg.LogLevel = g.logLevel
	}
	if g.outDir != "" {
		cfg.Output.Dir = g.outDir
	}

	level, err := internal.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, err)
	}
	logger := internal.NewLogger(level)

	fetcher := api.NewFetcher(api.FetchConfig{
		Timeout:   cfg.Source.HTTPTimeout,
		UserAgent: cfg.Source.UserAgent,
	}, logger)
	readerCfg := excel.DefaultReaderConfig()
	readerCfg.Sheet = cfg.Source.Sheet
	if cfg.Source.Delimiter != "" {
		readerCfg.Comma = []rune(cfg.Source.Delimiter)[0]
	}
	tables := excel.NewDataReader(readerCfg, fetcher, logger)

	return &env{cfg: cfg, logger: logger, fetcher: fetcher, tables: tables}, nil
}

func (e *env) renderer() (*render.Renderer, error) {
	return render.NewRenderer(render.Config{
		Width:  e.cfg.Output.Width,
		Height: e.cfg.Output.Height,
		Bins:   e.cfg.Stats.HistogramBins,
	}, e.logger)
}

func (e *env) qaqcService(settings app.Settings, withPlots bool) (*app.QAQCService, error) {
	if !withPlots {
		return app.NewQAQCService(e.tables, nil, settings, e.logger), nil
	}
	r, err := e.renderer()
	if err != nil {
		return nil, err
	}
	return app.NewQAQCService(e.tables, r, settings, e.logger), nil
}

func (e *env) spatialService() (*app.SpatialService, error) {
	reader, err := geo.NewReader(geo.Config{
		LongitudeColumn: e.cfg.Spatial.LongitudeColumn,
		LatitudeColumn:  e.cfg.Spatial.LatitudeColumn,
		CRS:             e.cfg.Spatial.CRS,
	}, e.fetcher, e.tables, e.logger)
	if err != nil {
		return nil, err
	}
	r, err := e.renderer()
	if err != nil {
		return nil, err
	}
	return app.NewSpatialService(reader, reader, r, e.logger), nil
}

// outPath places relative file names inside the configured output directory
func (e *env) outPath(name string) string {
	if filepath.IsAbs(name) || filepath.Dir(name) != "." {
		return name
	}
	return filepath.Join(e.cfg.Output.Dir, name)
}
