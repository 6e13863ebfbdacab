package sim

import (
	"fmt"
	"image/color"

	"github.com/navsim/go-navsim"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// New2DPlot creates new trajectory plot from the three position sources:
// actual:   ground truth positions
// measured: positions dead-reckoned from sensor readings
// belief:   filtered positions
// It returns error if the plot fails to be created. This can be due to either of the following conditions:
// * either of the supplied data matrices is nil
// * either of the supplied data matrices does not have at least 2 columns
// * gonum plot fails to be created
func New2DPlot(actual, measured, belief *mat.Dense) (*plot.Plot, error) {
	if actual == nil || measured == nil || belief == nil {
		return nil, fmt.Errorf("nil trajectory: %w", navsim.ErrInvalidParameters)
	}

	_, ca := actual.Dims()
	_, cm := measured.Dims()
	_, cb := belief.Dims()

	if ca < 2 || cm < 2 || cb < 2 {
		return nil, fmt.Errorf("invalid trajectory dimensions: %w", navsim.ErrInvalidParameters)
	}

	p := plot.New()

	p.Title.Text = "Navigation"
	p.X.Label.Text = "X"
	p.Y.Label.Text = "Y"

	legend := plot.NewLegend()
	legend.Top = true
	p.Legend = legend

	series := []struct {
		name  string
		data  *mat.Dense
		color color.Color
		shape draw.GlyphDrawer
	}{
		{"actual", actual, color.RGBA{R: 255, B: 128, A: 255}, draw.PyramidGlyph{}},
		{"measured", measured, color.RGBA{G: 255, A: 128}, draw.CircleGlyph{}},
		{"belief", belief, color.RGBA{R: 169, G: 169, B: 169, A: 255}, draw.CrossGlyph{}},
	}

	for _, s := range series {
		scatter, err := plotter.NewScatter(makePoints(s.data))
		if err != nil {
			return nil, fmt.Errorf("failed to create %s scatter: %w", s.name, err)
		}
		scatter.GlyphStyle.Color = s.color
		scatter.GlyphStyle.Shape = s.shape
		scatter.GlyphStyle.Radius = vg.Points(2)

		p.Add(scatter)
		p.Legend.Add(s.name, scatter)
	}

	return p, nil
}

// SavePlot saves p into file at path; the image format is derived from the path extension
func SavePlot(p *plot.Plot, path string) error {
	return p.Save(6*vg.Inch, 6*vg.Inch, path)
}

func makePoints(m *mat.Dense) plotter.XYs {
	r, _ := m.Dims()
	pts := make(plotter.XYs, r)
	for i := 0; i < r; i++ {
		pts[i].X = m.At(i, 0)
		pts[i].Y = m.At(i, 1)
	}

	return pts
}
