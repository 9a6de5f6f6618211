package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/san-kum/boilersim/internal/dynamo"
)

// SVGOptions controls ColumnSVG.
type SVGOptions struct {
	Width, Height int
	Stroke        string
	Background    string
}

// DefaultSVGOptions matches the terminal theme.
func DefaultSVGOptions() SVGOptions {
	return SVGOptions{Width: 800, Height: 300, Stroke: "#ff9f1c", Background: "#0a0a0a"}
}

// ColumnSVG renders one column of a trajectory against time as an SVG line chart.
func ColumnSVG(traj *dynamo.Trajectory, column string, opts SVGOptions) (string, error) {
	ys, err := traj.Column(column)
	if err != nil {
		return "", err
	}
	return lineSVG(traj.Times(), ys, column, opts), nil
}

// WriteSVG writes ColumnSVG to w.
func WriteSVG(w io.Writer, traj *dynamo.Trajectory, column string, opts SVGOptions) error {
	svg, err := ColumnSVG(traj, column, opts)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, svg)
	return err
}

func lineSVG(xs, ys []float64, title string, opts SVGOptions) string {
	width, height := opts.Width, opts.Height

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
<title>%s</title>
`, width, height, width, height, opts.Background, title)

	if len(xs) < 2 {
		sb.WriteString("</svg>")
		return sb.String()
	}

	minX, maxX := xs[0], xs[0]
	minY, maxY := ys[0], ys[0]
	for i := range xs {
		minX, maxX = min(minX, xs[i]), max(maxX, xs[i])
		minY, maxY = min(minY, ys[i]), max(maxY, ys[i])
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeY = maxY - minY

	fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="M`, opts.Stroke)
	for i := range xs {
		x := (xs[i] - minX) / rangeX * float64(width)
		y := float64(height) - (ys[i]-minY)/rangeY*float64(height)
		if i == 0 {
			fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}
	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
