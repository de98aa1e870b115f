package render

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/golang/freetype/truetype"
	chart "github.com/wcharczuk/go-chart/v2"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"soilqc/internal"
	"soilqc/internal/errors"
	"soilqc/ports"
)

// Config sets the output canvas size and histogram resolution
type Config struct {
	Width  int
	Height int
	Bins   int
}

// DefaultConfig returns a 1400×600 canvas with 30 histogram bins
func DefaultConfig() Config {
	return Config{Width: 1400, Height: 600, Bins: 30}
}

// Renderer draws PNG figures with go-chart
type Renderer struct {
	config Config
	font   *truetype.Font
	logger *internal.Logger
}

var (
	_ ports.HistogramRenderer = (*Renderer)(nil)
	_ ports.MapRenderer       = (*Renderer)(nil)
)

// NewRenderer validates config and loads the default chart font
func NewRenderer(config Config, logger *internal.Logger) (*Renderer, error) {
	def := DefaultConfig()
	if config.Width <= 0 {
		config.Width = def.Width
	}
	if config.Height <= 0 {
		config.Height = def.Height
	}
	if config.Bins <= 0 {
		config.Bins = def.Bins
	}
	if config.Width < 200 || config.Height < 150 {
		return nil, errors.InvalidInputf("canvas %dx%d is too small", config.Width, config.Height)
	}
	f, err := chart.GetDefaultFont()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load chart font")
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Renderer{config: config, font: f, logger: logger.With("render")}, nil
}

// blankPanel draws a white panel with a centred caption
func blankPanel(caption string, width, height int) (image.Image, error) {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	text := caption + ": no data"
	drawLabel(img, text, (width-len(text)*7)/2, height/2, color.Black)
	return img, nil
}

// drawLabel writes text with the 7x13 bitmap face; (x, y) is the baseline origin
func drawLabel(dst draw.Image, text string, x, y int, c color.Color) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}
