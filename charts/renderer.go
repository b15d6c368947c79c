// Package charts renders the PNG figures produced by the EDA, modeling and
// forecasting stages. All presentation settings travel in a Style value
// handed to NewRenderer; nothing is configured globally.
package charts

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// Style holds the figure settings shared by every chart.
type Style struct {
	Width  vg.Length
	Height vg.Length
	DPI    int

	TitleSize vg.Length
	FontSize  vg.Length

	// Palette colours series in order; it wraps around.
	Palette []color.Color
	Grid    bool
}

// DefaultStyle is a white grid with a pastel palette.
func DefaultStyle() Style {
	return Style{
		Width:     12 * vg.Inch,
		Height:    6 * vg.Inch,
		DPI:       150,
		TitleSize: vg.Points(14),
		FontSize:  vg.Points(10),
		Palette: []color.Color{
			color.RGBA{R: 0xFF, G: 0x6B, B: 0x6B, A: 0xFF},
			color.RGBA{R: 0x4E, G: 0xCD, B: 0xC4, A: 0xFF},
			color.RGBA{R: 0x45, G: 0xB7, B: 0xD1, A: 0xFF},
			color.RGBA{R: 0x96, G: 0xCE, B: 0xB4, A: 0xFF},
			color.RGBA{R: 0xF3, G: 0x81, B: 0x81, A: 0xFF},
			color.RGBA{R: 0x95, G: 0xE1, B: 0xD3, A: 0xFF},
		},
		Grid: true,
	}
}

// Color returns the i-th palette colour.
func (s Style) Color(i int) color.Color {
	if len(s.Palette) == 0 {
		return color.Black
	}
	return s.Palette[i%len(s.Palette)]
}

// Renderer writes charts into one directory.
type Renderer struct {
	dir    string
	style  Style
	logger *zap.Logger
}

// NewRenderer creates the output directory if needed.
func NewRenderer(dir string, style Style, logger *zap.Logger) (*Renderer, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create figures directory: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{dir: dir, style: style, logger: logger}, nil
}

// Dir returns the output directory.
func (r *Renderer) Dir() string { return r.dir }

func (r *Renderer) newPlot(title, xLabel, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = r.style.TitleSize
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.X.Label.TextStyle.Font.Size = r.style.FontSize
	p.Y.Label.TextStyle.Font.Size = r.style.FontSize
	p.X.Tick.Label.Font.Size = r.style.FontSize
	p.Y.Tick.Label.Font.Size = r.style.FontSize
	if r.style.Grid {
		p.Add(plotter.NewGrid())
	}
	return p
}

// save draws a single plot at the style size.
func (r *Renderer) save(p *plot.Plot, name string) (string, error) {
	return r.saveGrid([][]*plot.Plot{{p}}, r.style.Width, r.style.Height, name)
}

// saveGrid draws plots as a rows x cols panel figure.
func (r *Renderer) saveGrid(plots [][]*plot.Plot, width, height vg.Length, name string) (string, error) {
	c := vgimg.NewWith(vgimg.UseWH(width, height), vgimg.UseDPI(r.style.DPI))
	dc := draw.New(c)

	if len(plots) == 1 && len(plots[0]) == 1 {
		plots[0][0].Draw(dc)
	} else {
		tiles := draw.Tiles{
			Rows:      len(plots),
			Cols:      len(plots[0]),
			PadX:      vg.Millimeter * 8,
			PadY:      vg.Millimeter * 8,
			PadTop:    vg.Millimeter * 2,
			PadBottom: vg.Millimeter * 2,
			PadLeft:   vg.Millimeter * 2,
			PadRight:  vg.Millimeter * 2,
		}
		canvases := plot.Align(plots, tiles, dc)
		for j := range plots {
			for i := range plots[j] {
				plots[j][i].Draw(canvases[j][i])
			}
		}
	}

	path := filepath.Join(r.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(f); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	r.logger.Info("chart saved", zap.String("file", name))
	return path, nil
}
