package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/san-kum/carsim/internal/sim"
)

// SVG draws the ground track of tr. Both axes share one scale so circles
// stay round; the start is marked green and the end red.
func SVG(tr *sim.Trajectory, width, height int, strokeColor string) string {
	if tr == nil || tr.Len() < 2 {
		return ""
	}

	minX, maxX := tr.States[0].X, tr.States[0].X
	minY, maxY := tr.States[0].Y, tr.States[0].Y
	for _, st := range tr.States {
		minX, maxX = min(minX, st.X), max(maxX, st.X)
		minY, maxY = min(minY, st.Y), max(maxY, st.Y)
	}

	// Add padding
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	minY -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2

	scale := min(float64(width)/rangeX, float64(height)/rangeY)
	offX := (float64(width) - rangeX*scale) / 2
	offY := (float64(height) - rangeY*scale) / 2
	project := func(x, y float64) (float64, float64) {
		return offX + (x-minX)*scale, float64(height) - offY - (y-minY)*scale
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, strokeColor))

	for i, st := range tr.States {
		x, y := project(st.X, st.Y)
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}
	sb.WriteString("\"/>\n")

	first := tr.States[0]
	_, last := tr.Final()
	sx, sy := project(first.X, first.Y)
	ex, ey := project(last.X, last.Y)
	sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="4" fill="#00cc66"/>
<circle cx="%.1f" cy="%.1f" r="4" fill="#ff3344"/>
</svg>`, sx, sy, ex, ey))
	return sb.String()
}

func WriteSVG(w io.Writer, tr *sim.Trajectory, width, height int) error {
	out := SVG(tr, width, height, "#00ff00")
	if out == "" {
		return ErrTooShort
	}
	_, err := io.WriteString(w, out)
	return err
}
