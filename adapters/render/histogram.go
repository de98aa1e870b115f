package render

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"math"
	"sort"

	"github.com/aclements/go-moremath/stats"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"soilqc/domain/qaqc"
	"soilqc/internal/errors"
)

// Bins holds equal-width histogram counts; len(Dividers) == len(Counts)+1
type Bins struct {
	Dividers []float64
	Counts   []float64
	// Values are the counted values, sorted
	Values []float64
}

// Histogram counts the finite values of x into n equal-width bins spanning [min, max].
// All-equal input gets a unit-width span centred on the value. Empty input returns empty Bins.
func Histogram(x []float64, n int) Bins {
	if n < 1 {
		n = 1
	}
	vals := make([]float64, 0, len(x))
	for _, v := range x {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			vals = append(vals, v)
		}
	}
	if len(vals) == 0 {
		return Bins{}
	}
	sort.Float64s(vals)

	lo, hi := vals[0], vals[len(vals)-1]
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}
	dividers := floats.Span(make([]float64, n+1), lo, hi)
	// stat.Histogram bins are half-open, so nudge the top edge above the maximum
	dividers[n] = math.Nextafter(hi, math.Inf(1))

	counts := stat.Histogram(nil, dividers, vals, nil)
	return Bins{Dividers: dividers, Counts: counts, Values: vals}
}

// Density evaluates a Gaussian kernel density estimate of b.Values at points evenly
// spaced over the histogram span, scaled so the curve is comparable to the bin counts.
// It returns nil slices when the sample has no spread to estimate a bandwidth from.
func (b Bins) Density(points int) (xs, ys []float64) {
	if len(b.Values) < 2 || points < 2 {
		return nil, nil
	}
	sample := stats.Sample{Xs: b.Values, Sorted: true}
	bw := stats.BandwidthScott(sample)
	if !(bw > 0) || math.IsInf(bw, 0) {
		bw = stats.BandwidthSilverman(sample)
	}
	if !(bw > 0) || math.IsInf(bw, 0) {
		return nil, nil
	}
	kde := &stats.KDE{Sample: sample, Kernel: stats.GaussianKernel, Bandwidth: bw}

	lo, hi := b.Dividers[0], b.Dividers[len(b.Dividers)-1]
	scale := float64(len(b.Values)) * (hi - lo) / float64(len(b.Counts))
	xs = floats.Span(make([]float64, points), lo, hi)
	ys = make([]float64, points)
	for i, x := range xs {
		ys[i] = kde.PDF(x) * scale
	}
	return xs, ys
}

// Total returns the number of counted values
func (b Bins) Total() int {
	return int(floats.Sum(b.Counts))
}

// RenderDispersion draws the CV and sample precision histograms side by side
func (r *Renderer) RenderDispersion(w io.Writer, records []qaqc.DispersionRecord) error {
	cv := make([]float64, 0, len(records))
	prec := make([]float64, 0, len(records))
	for _, rec := range records {
		cv = append(cv, rec.CoefficientOfVariation)
		if rec.HasPrecision {
			prec = append(prec, rec.SamplePrecision)
		}
	}

	panelW := r.config.Width / 2
	left, err := r.histogramPanel("Coefficient of Variation", Histogram(cv, r.config.Bins), panelW, r.config.Height, chart.ColorBlue)
	if err != nil {
		return err
	}
	right, err := r.histogramPanel("Sample Precision", Histogram(prec, r.config.Bins), panelW, r.config.Height, chart.ColorGreen)
	if err != nil {
		return err
	}

	canvas := image.NewRGBA(image.Rect(0, 0, 2*panelW, r.config.Height))
	draw.Draw(canvas, left.Bounds(), left, image.Point{}, draw.Src)
	draw.Draw(canvas, left.Bounds().Add(image.Pt(panelW, 0)), right, image.Point{}, draw.Src)

	if err := png.Encode(w, canvas); err != nil {
		return errors.Wrap(err, "failed to encode histogram PNG")
	}
	r.logger.Info("rendered dispersion histograms (%d CV, %d precision values)", len(cv), len(prec))
	return nil
}

func (r *Renderer) histogramPanel(title string, bins Bins, width, height int, fill drawing.Color) (image.Image, error) {
	if len(bins.Counts) == 0 {
		r.logger.Warn("%s: no finite values to plot", title)
		return blankPanel(title, width, height)
	}

	n := len(bins.Counts)
	centers := make([]float64, n)
	for i := range centers {
		centers[i] = (bins.Dividers[i] + bins.Dividers[i+1]) / 2
	}
	yMax := math.Max(floats.Max(bins.Counts), 1)

	series := []chart.Series{
		chart.HistogramSeries{
			Name:  title,
			Style: chart.Style{FillColor: fill, StrokeColor: fill.WithAlpha(255), StrokeWidth: 1},
			InnerSeries: chart.ContinuousSeries{
				XValues: centers,
				YValues: bins.Counts,
			},
		},
	}
	if xs, ys := bins.Density(densityPoints); xs != nil {
		yMax = math.Max(yMax, floats.Max(ys))
		series = append(series, chart.ContinuousSeries{
			Name:    title + " density",
			Style:   chart.Style{StrokeColor: fill.WithAlpha(255), StrokeWidth: 2},
			XValues: xs,
			YValues: ys,
		})
	} else {
		r.logger.Debug("%s: density curve skipped (no spread)", title)
	}

	c := chart.Chart{
		Title:      title,
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Range:          &chart.ContinuousRange{Min: bins.Dividers[0], Max: bins.Dividers[n]},
			ValueFormatter: axisLabel,
		},
		YAxis: chart.YAxis{
			Name:  "Count",
			Range: &chart.ContinuousRange{Min: 0, Max: yMax * 1.05},
		},
		Series: series,
	}

	var buf bytes.Buffer
	if err := c.Render(chart.PNG, &buf); err != nil {
		return nil, errors.Wrapf(err, "failed to render %s histogram", title)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode %s histogram", title)
	}
	return img, nil
}

// densityPoints is the number of samples along each density curve
const densityPoints = 200

func axisLabel(v interface{}) string {
	if f, ok := v.(float64); ok {
		return tickLabel(f)
	}
	return fmt.Sprint(v)
}

func tickLabel(v float64) string {
	switch a := math.Abs(v); {
	case a >= 100:
		return fmt.Sprintf("%.0f", v)
	case a >= 1:
		return fmt.Sprintf("%.1f", v)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}
