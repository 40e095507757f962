package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/san-kum/carsim/internal/sim"
)

// HTML renders the named columns against time as an interactive line chart.
func HTML(w io.Writer, title string, tr *sim.Trajectory, columns ...string) error {
	if tr == nil || tr.Len() < 2 {
		return ErrTooShort
	}
	if len(columns) == 0 {
		columns = []string{"vx", "vy", "psi_dot"}
	}

	axis := make([]string, tr.Len())
	for i, t := range tr.Times {
		axis[i] = strconv.FormatFloat(t, 'f', -1, 64)
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "1200px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: fmt.Sprintf("%d states", tr.Len())}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "t (s)"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider"}),
	)
	line.SetXAxis(axis)

	for _, name := range columns {
		values, err := tr.Column(name)
		if err != nil {
			return err
		}
		data := make([]opts.LineData, len(values))
		for i, v := range values {
			data[i] = opts.LineData{Value: v}
		}
		line.AddSeries(name, data)
	}

	return line.Render(w)
}
