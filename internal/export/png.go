package export

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/san-kum/carsim/internal/sim"
)

const (
	PNGWidth  = 8 * vg.Inch
	PNGHeight = 8 * vg.Inch
)

// PNG plots column yName against xName and saves it to path. The file
// format follows the extension, so path may also end in .svg or .pdf.
func PNG(tr *sim.Trajectory, xName, yName, path string) error {
	if tr == nil || tr.Len() < 2 {
		return ErrTooShort
	}
	xs, err := tr.Column(xName)
	if err != nil {
		return err
	}
	ys, err := tr.Column(yName)
	if err != nil {
		return err
	}

	pts := make(plotter.XYs, len(xs))
	for i := range xs {
		pts[i] = plotter.XY{X: xs[i], Y: ys[i]}
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s vs %s", yName, xName)
	p.X.Label.Text = xName
	p.Y.Label.Text = yName
	p.Add(plotter.NewGrid())

	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("failed to create line: %w", err)
	}
	line.Width = vg.Points(1)
	line.Color = color.RGBA{R: 0, G: 128, B: 255, A: 255}
	p.Add(line)

	start, err := plotter.NewScatter(pts[:1])
	if err != nil {
		return fmt.Errorf("failed to create marker: %w", err)
	}
	start.Color = color.RGBA{G: 180, A: 255}
	p.Add(start)
	p.Legend.Add("trajectory", line)
	p.Legend.Add("start", start)

	if err := p.Save(PNGWidth, PNGHeight, path); err != nil {
		return fmt.Errorf("failed to save plot: %w", err)
	}
	return nil
}
