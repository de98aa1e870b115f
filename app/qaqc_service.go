package app

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"soilqc/adapters/stats/dispersion"
	"soilqc/adapters/stats/tukey"
	"soilqc/domain/core"
	"soilqc/domain/qaqc"
	"soilqc/internal"
	"soilqc/internal/errors"
	"soilqc/internal/profiling"
	"soilqc/ports"
)

// QAQCService runs the duplicate-QAQC pipeline: load, dedupe, split identifiers,
// compute statistics, filter
type QAQCService struct {
	source     ports.TableSource
	histograms ports.HistogramRenderer
	settings   Settings
	logger     *internal.Logger
}

// NewQAQCService creates the service; histograms may be nil when plots are never requested
func NewQAQCService(source ports.TableSource, histograms ports.HistogramRenderer, settings Settings, logger *internal.Logger) *QAQCService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &QAQCService{source: source, histograms: histograms, settings: settings, logger: logger.With("qaqc")}
}

// TukeyRequest selects the table and analytes to compare across fields
type TukeyRequest struct {
	Source   string
	Sheet    string
	Analytes []string
	// All keeps non-significant comparisons in Comparisons
	All bool
}

// TukeyResult holds every per-analyte result and the reported comparison rows
type TukeyResult struct {
	RunID       core.RunID
	Source      string
	Alpha       float64
	Results     []*tukey.Result
	Comparisons []qaqc.PairwiseComparison
	Duration    time.Duration
}

// RunTukey runs HSD for each analyte and stacks the rows, significant ones only unless All is set
func (s *QAQCService) RunTukey(ctx context.Context, req TukeyRequest) (*TukeyResult, error) {
	start := time.Now()
	runID := core.NewRunID()
	s.logger.Info("run %s: tukey on %s", runID.Short(), req.Source)

	t, err := s.Prepare(ctx, req.Source, req.Sheet)
	if err != nil {
		return nil, err
	}

	analytes, err := s.selectAnalytes(t, req.Analytes)
	if err != nil {
		return nil, err
	}

	runner := tukey.NewRunner(s.settings.GroupColumn, s.settings.Alpha, s.logger)
	results, err := runner.Run(t, analytes)
	if err != nil {
		return nil, err
	}

	rows := tukey.Significant(results)
	if req.All {
		rows = tukey.Stack(results)
	}
	s.logger.Info("run %s: %d analytes, %d rows reported", runID.Short(), len(results), len(rows))

	return &TukeyResult{
		RunID:       runID,
		Source:      req.Source,
		Alpha:       runner.Alpha,
		Results:     results,
		Comparisons: rows,
		Duration:    time.Since(start),
	}, nil
}

// DispersionRequest selects the table and optional histogram output
type DispersionRequest struct {
	Source string
	Sheet  string
	// PlotPath, when set, receives the CV/precision histogram PNG
	PlotPath string
}

// DispersionResult holds the dispersion table and the analytes flagged by thresholds
type DispersionResult struct {
	RunID      core.RunID
	Source     string
	Records    []qaqc.DispersionRecord
	GroupStats []qaqc.GroupStatistic
	Flagged    []qaqc.DispersionRecord
	PlotPath   string
	Duration   time.Duration
}

// RunDispersion computes CV and sample precision per analyte and flags the noisy ones
func (s *QAQCService) RunDispersion(ctx context.Context, req DispersionRequest) (*DispersionResult, error) {
	start := time.Now()
	runID := core.NewRunID()
	s.logger.Info("run %s: dispersion on %s", runID.Short(), req.Source)

	t, err := s.Prepare(ctx, req.Source, req.Sheet)
	if err != nil {
		return nil, err
	}

	opts := dispersion.DefaultOptions()
	opts.GroupColumn = s.settings.GroupColumn
	opts.DegreesOfFreedom = s.settings.DegreesOfFreedom
	opts.PrecisionSkip = s.settings.PrecisionSkip
	opts.Exclude = s.settings.nonAnalytes()
	calc := dispersion.NewCalculator(opts, s.logger)
	records, groupStats, err := calc.Compute(t)
	if err != nil {
		return nil, err
	}

	res := &DispersionResult{
		RunID:      runID,
		Source:     req.Source,
		Records:    records,
		GroupStats: groupStats,
		Flagged:    qaqc.FlagDispersion(records, s.settings.CVAbove, s.settings.PrecisionBelow),
	}

	if req.PlotPath != "" {
		if s.histograms == nil {
			return nil, errors.InternalError("no histogram renderer configured")
		}
		err := writeFile(req.PlotPath, func(w io.Writer) error {
			return s.histograms.RenderDispersion(w, records)
		})
		if err != nil {
			return nil, err
		}
		res.PlotPath = req.PlotPath
		s.logger.Info("run %s: wrote %s", runID.Short(), req.PlotPath)
	}

	res.Duration = time.Since(start)
	s.logger.Info("run %s: %d analytes, %d flagged", runID.Short(), len(records), len(res.Flagged))
	return res, nil
}

// DescribeResult holds the distribution summary of every analyte
type DescribeResult struct {
	RunID     core.RunID
	Source    string
	Summaries []qaqc.AnalyteSummary
}

// Describe summarizes each analyte after duplicate rows are dropped
func (s *QAQCService) Describe(ctx context.Context, source, sheet string, analytes []string) (*DescribeResult, error) {
	runID := core.NewRunID()
	s.logger.Info("run %s: describe %s", runID.Short(), source)

	t, err := s.Prepare(ctx, source, sheet)
	if err != nil {
		return nil, err
	}
	keys, err := s.selectAnalytes(t, analytes)
	if err != nil {
		return nil, err
	}
	return &DescribeResult{RunID: runID, Source: source, Summaries: profiling.Summarize(t, keys)}, nil
}

// Prepare loads source and applies the identifier steps: duplicate rows are dropped,
// and Field/Sample columns are derived when the table has no group column
func (s *QAQCService) Prepare(ctx context.Context, source, sheet string) (*qaqc.Table, error) {
	if sheet == "" {
		sheet = s.settings.Sheet
	}
	t, err := s.source.Load(ctx, source, sheet)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load %s", source)
	}

	hasID := s.settings.IDColumn != "" && t.HasColumn(s.settings.IDColumn)
	if hasID {
		before := t.Len()
		if t, err = qaqc.DropDuplicates(t, s.settings.IDColumn, s.settings.DuplicateMarker); err != nil {
			return nil, err
		}
		s.logger.Info("dropped %d duplicate rows (%d remain)", before-t.Len(), t.Len())
	} else {
		s.logger.Warn("identifier column %q not found; duplicate rows cannot be excluded", s.settings.IDColumn)
	}

	if !t.HasColumn(s.settings.GroupColumn) {
		if !hasID || s.settings.GroupColumn != qaqc.FieldColumn {
			return nil, errors.InvalidInputf("group column %q not found and cannot be derived", s.settings.GroupColumn)
		}
		if t, err = qaqc.SplitIdentifiers(t, s.settings.IDColumn, s.settings.Delimiter); err != nil {
			return nil, err
		}
		s.logger.Debug("derived %s/%s from %q", qaqc.FieldColumn, qaqc.SampleColumn, s.settings.IDColumn)
	}
	return t, nil
}

func (s *QAQCService) selectAnalytes(t *qaqc.Table, names []string) ([]core.AnalyteKey, error) {
	if len(names) == 0 {
		analytes := t.NumericColumns(s.settings.nonAnalytes()...)
		if len(analytes) == 0 {
			return nil, errors.ValidationError("table has no numeric analyte columns")
		}
		return analytes, nil
	}
	if err := t.RequireColumns(names...); err != nil {
		return nil, err
	}
	out := make([]core.AnalyteKey, len(names))
	for i, n := range names {
		out[i] = core.AnalyteKey(n)
	}
	return out, nil
}

// writeFile creates path (and its directory) and hands it to render
func writeFile(path string, render func(io.Writer) error) (err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "failed to create %s", dir)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", path)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = errors.Wrapf(cerr, "failed to close %s", path)
		}
	}()
	return render(f)
}
