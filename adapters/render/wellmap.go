package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"soilqc/domain/spatial"
	"soilqc/internal/errors"
)

var (
	areaFill    = drawing.Color{R: 200, G: 220, B: 240, A: 255}
	areaStroke  = chart.ColorBlue
	stateFill   = chart.ColorLightGray
	stateStroke = chart.ColorAlternateGray
	wellColor   = chart.ColorRed
)

// RenderWellMap draws the area outline with well locations and composites a
// state locator inset into the lower-right corner
func (r *Renderer) RenderWellMap(w io.Writer, m spatial.WellMap) error {
	if m.Area == nil || len(m.Area.Polygons) == 0 {
		return errors.InvalidInput("well map requires an area outline")
	}

	box := m.Area.Bounds()
	for _, p := range m.Wells {
		box = box.Extend(p)
	}
	box = box.Pad(0.05)

	width, height := r.config.Width, r.config.Height
	base, err := r.drawMap(width, height, 48, box, func(rr chart.Renderer, pr spatial.Projection) {
		drawBoundary(rr, pr, m.Area, areaFill, areaStroke, 2)
		rr.SetFillColor(wellColor)
		rr.SetStrokeColor(wellColor.WithAlpha(255))
		rr.SetStrokeWidth(1)
		for _, p := range m.Wells {
			x, y := pr.Project(p)
			rr.Circle(3, int(x), int(y))
			rr.FillStroke()
		}
		if m.Title != "" {
			rr.SetFont(r.font)
			rr.SetFontColor(chart.ColorBlack)
			rr.SetFontSize(16)
			tb := rr.MeasureText(m.Title)
			rr.Text(m.Title, (width-tb.Width())/2, 30)
		}
	})
	if err != nil {
		return err
	}

	canvas := image.NewRGBA(base.Bounds())
	draw.Draw(canvas, canvas.Bounds(), base, image.Point{}, draw.Src)
	drawLabel(canvas, fmt.Sprintf("%d wells (%s)", len(m.Wells), spatial.CRS84), 12, height-12, color.Black)

	if m.State != nil && len(m.State.Polygons) > 0 {
		insetW, insetH := width/4, height/3
		stateBox := m.State.Bounds().Union(m.Area.Bounds()).Pad(0.05)
		inset, err := r.drawMap(insetW, insetH, 6, stateBox, func(rr chart.Renderer, pr spatial.Projection) {
			drawBoundary(rr, pr, m.State, stateFill, stateStroke, 1)
			drawBoundary(rr, pr, m.Area, wellColor.WithAlpha(160), wellColor, 1)
		})
		if err != nil {
			return err
		}
		origin := image.Pt(width-insetW-10, height-insetH-10)
		frame := image.Rectangle{Min: origin.Sub(image.Pt(2, 2)), Max: origin.Add(image.Pt(insetW+2, insetH+2))}
		draw.Draw(canvas, frame, image.Black, image.Point{}, draw.Src)
		draw.Draw(canvas, inset.Bounds().Add(origin), inset, image.Point{}, draw.Src)
		if m.State.Name != "" {
			drawLabel(canvas, m.State.Name, origin.X+6, origin.Y+16, color.Black)
		}
	}

	if err := png.Encode(w, canvas); err != nil {
		return errors.Wrap(err, "failed to encode well map PNG")
	}
	r.logger.Info("rendered well map with %d wells", len(m.Wells))
	return nil
}

func (r *Renderer) drawMap(width, height, margin int, box spatial.BBox, paint func(chart.Renderer, spatial.Projection)) (image.Image, error) {
	rr, err := chart.PNG(width, height)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create PNG renderer")
	}
	rr.SetFillColor(chart.ColorWhite)
	rr.MoveTo(0, 0)
	rr.LineTo(width, 0)
	rr.LineTo(width, height)
	rr.LineTo(0, height)
	rr.Close()
	rr.Fill()

	paint(rr, spatial.NewProjection(box, width, height, margin))

	var buf bytes.Buffer
	if err := rr.Save(&buf); err != nil {
		return nil, errors.Wrap(err, "failed to render map")
	}
	img, err := png.Decode(&buf)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode map")
	}
	return img, nil
}

// drawBoundary fills each outer ring and strokes every ring; holes are filled white
func drawBoundary(rr chart.Renderer, pr spatial.Projection, b *spatial.Boundary, fill, stroke drawing.Color, strokeWidth float64) {
	rr.SetStrokeColor(stroke)
	rr.SetStrokeWidth(strokeWidth)
	for _, poly := range b.Polygons {
		for i, ring := range poly {
			if len(ring) < 2 {
				continue
			}
			if i == 0 {
				rr.SetFillColor(fill)
			} else {
				rr.SetFillColor(chart.ColorWhite)
			}
			tracePath(rr, pr, ring)
			rr.FillStroke()
		}
	}
}

func tracePath(rr chart.Renderer, pr spatial.Projection, ring spatial.Ring) {
	x, y := pr.Project(ring[0])
	rr.MoveTo(int(x), int(y))
	for _, p := range ring[1:] {
		x, y = pr.Project(p)
		rr.LineTo(int(x), int(y))
	}
	rr.Close()
}
