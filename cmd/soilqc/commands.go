package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"soilqc/app"
	"soilqc/internal/errors"
	"soilqc/internal/report"
)

func newTukeyCmd(g *globals) *cobra.Command {
	var (
		sheet    string
		idColumn string
		analytes []string
		alpha    float64
		format   string
		all      bool
	)

	cmd := &cobra.Command{
		Use:   "tukey SOURCE",
		Short: "Tukey HSD comparisons between fields for each analyte",
		Long: `Run Tukey's honestly significant difference test across fields for every
analyte column. Rows whose identifier contains the duplicate marker are dropped
first; Field and Sample columns are derived from the identifier when the table
has no Field column. Only significant comparisons are printed unless --all.

Example:
  soilqc tukey https://example.org/Soil_Data.xlsx --sheet "Lab Results" --alpha 0.01`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := g.load()
			if err != nil {
				return err
			}
			settings := app.SettingsFromConfig(e.cfg)
			if cmd.Flags().Changed("id-column") {
				settings.IDColumn = idColumn
			}
			if cmd.Flags().Changed("alpha") {
				if alpha <= 0 || alpha >= 1 {
					return errors.InvalidInputf("--alpha must be in (0, 1), got %g", alpha)
				}
				settings.Alpha = alpha
			}
			if !cmd.Flags().Changed("format") {
				format = e.cfg.Output.Format
			}
			f, err := report.ParseFormat(format)
			if err != nil {
				return err
			}

			svc, err := e.qaqcService(settings, false)
			if err != nil {
				return err
			}
			res, err := svc.RunTukey(cmd.Context(), app.TukeyRequest{
				Source:   args[0],
				Sheet:    sheet,
				Analytes: analytes,
				All:      all,
			})
			if err != nil {
				return err
			}
			doc := report.Comparisons(res.RunID, res.Source, res.Alpha, res.Comparisons, !all)
			return report.Write(cmd.OutOrStdout(), f, doc)
		},
	}

	cmd.Flags().StringVar(&sheet, "sheet", "", "Worksheet name for XLSX sources (default: first sheet)")
	cmd.Flags().StringVar(&idColumn, "id-column", "Sample ID", "Composite identifier column")
	cmd.Flags().StringSliceVar(&analytes, "analytes", nil, "Analyte columns to test (default: every numeric column)")
	cmd.Flags().Float64Var(&alpha, "alpha", 0.05, "Family-wise significance level")
	cmd.Flags().StringVar(&format, "format", "table", "Output format: "+report.FormatNames())
	cmd.Flags().BoolVar(&all, "all", false, "Print every comparison, not only significant ones")
	return cmd
}

func newDispersionCmd(g *globals) *cobra.Command {
	var (
		sheet          string
		idColumn       string
		groupColumn    string
		skip           int
		dof            float64
		cvAbove        float64
		precisionBelow float64
		format         string
		plot           bool
		plotName       string
		groupStats     bool
	)

	cmd := &cobra.Command{
		Use:   "dispersion SOURCE",
		Short: "Coefficient of variation and sample precision per analyte",
		Long: `Compute the coefficient of variation over all samples and the sample
precision (degrees of freedom / summed per-field variance) for each analyte,
then list analytes with CV above --cv-above and precision below
--precision-below. --plot writes both distributions as a PNG histogram.

Example:
  soilqc dispersion Kansas_Duplicates.csv --skip 10 --plot`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := g.load()
			if err != nil {
				return err
			}
			settings := app.SettingsFromConfig(e.cfg)
			flags := cmd.Flags()
			if flags.Changed("id-column") {
				settings.IDColumn = idColumn
			}
			if flags.Changed("group-column") {
				settings.GroupColumn = groupColumn
			}
			if flags.Changed("skip") {
				settings.PrecisionSkip = skip
			}
			if flags.Changed("dof") {
				settings.DegreesOfFreedom = dof
			}
			if flags.Changed("cv-above") {
				settings.CVAbove = cvAbove
			}
			if flags.Changed("precision-below") {
				settings.PrecisionBelow = precisionBelow
			}
			if !flags.Changed("format") {
				format = e.cfg.Output.Format
			}
			f, err := report.ParseFormat(format)
			if err != nil {
				return err
			}

			svc, err := e.qaqcService(settings, plot)
			if err != nil {
				return err
			}
			req := app.DispersionRequest{Source: args[0], Sheet: sheet}
			if plot {
				req.PlotPath = e.outPath(plotName)
			}
			res, err := svc.RunDispersion(cmd.Context(), req)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			docs := []*report.Document{
				report.Dispersion(res.RunID, res.Source, res.Records, false),
				report.Dispersion(res.RunID, res.Source, res.Flagged, true),
			}
			if groupStats {
				docs = append(docs, report.GroupStatistics(res.RunID, res.Source, res.GroupStats))
			}
			for i, doc := range docs {
				if i > 0 && (f == report.FormatTable || f == report.FormatMarkdown) {
					fmt.Fprintln(out)
				}
				if err := report.Write(out, f, doc); err != nil {
					return err
				}
			}
			if res.PlotPath != "" {
				fmt.Fprintf(os.Stderr, "histograms written to %s\n", res.PlotPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&sheet, "sheet", "", "Worksheet name for XLSX sources (default: first sheet)")
	cmd.Flags().StringVar(&idColumn, "id-column", "Sample ID", "Composite identifier column")
	cmd.Flags().StringVar(&groupColumn, "group-column", "Field", "Column holding the field label")
	cmd.Flags().IntVar(&skip, "skip", 10, "Leading numeric columns without sample precision")
	cmd.Flags().Float64Var(&dof, "dof", 3, "Degrees of freedom numerator for sample precision")
	cmd.Flags().Float64Var(&cvAbove, "cv-above", 0.8, "Flag analytes with CV above this value")
	cmd.Flags().Float64Var(&precisionBelow, "precision-below", 0.05, "... and sample precision below this value")
	cmd.Flags().StringVar(&format, "format", "table", "Output format: "+report.FormatNames())
	cmd.Flags().BoolVar(&plot, "plot", false, "Write CV and precision histograms as PNG")
	cmd.Flags().StringVar(&plotName, "plot-file", "dispersion_histograms.png", "Histogram file name, relative to --out-dir")
	cmd.Flags().BoolVar(&groupStats, "group-stats", false, "Also print per-field variances")
	return cmd
}

func newWellsCmd(g *globals) *cobra.Command {
	var (
		wells string
		state string
		area  string
		out   string
		title string
	)

	cmd := &cobra.Command{
		Use:   "wells",
		Short: "Render a well location map with a state locator inset",
		Long: `Fetch well coordinates (CSV with longitude/latitude columns, EPSG:4326),
the area-of-interest outline and the state outline (GeoJSON) concurrently, and
draw the wells over the area with the state inset in the lower-right corner.

Example:
  soilqc wells --wells wells.csv --area area.geojson --state kansas.geojson --out wells_map.png`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := g.load()
			if err != nil {
				return err
			}
			if wells == "" {
				wells = e.cfg.Spatial.WellsURL
			}
			if state == "" {
				state = e.cfg.Spatial.StateOutlineURL
			}
			if area == "" {
				area = e.cfg.Spatial.AreaOutlineURL
			}

			svc, err := e.spatialService()
			if err != nil {
				return err
			}
			res, err := svc.RenderWellMap(cmd.Context(), app.WellMapRequest{
				Wells:   wells,
				State:   state,
				Area:    area,
				Title:   title,
				OutPath: e.outPath(out),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "run %s: %d wells mapped to %s\n", res.RunID.Short(), res.Wells, res.OutPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&wells, "wells", "", "Wells CSV path or URL (default from config)")
	cmd.Flags().StringVar(&state, "state", "", "State outline GeoJSON path or URL (optional)")
	cmd.Flags().StringVar(&area, "area", "", "Area of interest GeoJSON path or URL")
	cmd.Flags().StringVar(&out, "out", "wells_map.png", "Output PNG, relative to --out-dir")
	cmd.Flags().StringVar(&title, "title", "Well locations", "Map title")
	return cmd
}

func newDescribeCmd(g *globals) *cobra.Command {
	var (
		sheet    string
		idColumn string
		analytes []string
		format   string
	)

	cmd := &cobra.Command{
		Use:   "describe SOURCE",
		Short: "Distribution summary of every analyte",
		Long: `Print count, missing cells, mean, standard deviation, quartiles, skewness
and the number of values outside 1.5 IQR for each analyte, after duplicate
rows are dropped.

Example:
  soilqc describe Soil_Data.xlsx --analytes pH,OM --format markdown`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := g.load()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("format") {
				format = e.cfg.Output.Format
			}
			f, err := report.ParseFormat(format)
			if err != nil {
				return err
			}

			settings := app.SettingsFromConfig(e.cfg)
			if cmd.Flags().Changed("id-column") {
				settings.IDColumn = idColumn
			}
			svc, err := e.qaqcService(settings, false)
			if err != nil {
				return err
			}
			res, err := svc.Describe(cmd.Context(), args[0], sheet, analytes)
			if err != nil {
				return err
			}
			return report.Write(cmd.OutOrStdout(), f, report.Summaries(res.RunID, res.Source, res.Summaries))
		},
	}

	cmd.Flags().StringVar(&sheet, "sheet", "", "Worksheet name for XLSX sources (default: first sheet)")
	cmd.Flags().StringVar(&idColumn, "id-column", "Sample ID", "Composite identifier column")
	cmd.Flags().StringSliceVar(&analytes, "analytes", nil, "Analyte columns to summarize (default: every numeric column)")
	cmd.Flags().StringVar(&format, "format", "table", "Output format: "+report.FormatNames())
	return cmd
}
