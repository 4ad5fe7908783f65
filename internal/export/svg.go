// Package export renders run channels as standalone SVG charts.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/san-kum/dronesim/internal/analysis"
	"github.com/san-kum/dronesim/internal/dynamo"
	"github.com/san-kum/dronesim/internal/metrics"
)

const (
	background = "#0a0a0a"
	axisColor  = "#444466"
	textColor  = "#888899"
)

// Chart describes the canvas of an SVG chart.
type Chart struct {
	Width, Height int
	Stroke        string
	Title         string
}

func DefaultChart() Chart {
	return Chart{Width: 800, Height: 300, Stroke: "#00ff88"}
}

// ChannelSVG writes one channel of samples against time.
func ChannelSVG(w io.Writer, samples []metrics.Sample, channel string, c Chart) error {
	ys, err := analysis.Series(samples, channel)
	if err != nil {
		return err
	}
	pts := make([]analysis.Point, len(samples))
	for i, s := range samples {
		pts[i] = analysis.Point{X: s.Time, Y: ys[i]}
	}
	if c.Title == "" {
		c.Title = channel
	}
	return writePath(w, pts, c)
}

// PhaseSVG writes a phase portrait.
func PhaseSVG(w io.Writer, p *analysis.PhasePortrait, c Chart) error {
	if c.Title == "" {
		c.Title = p.YChannel + " vs " + p.XChannel
	}
	return writePath(w, p.Points, c)
}

func bounds(points []analysis.Point) (minX, maxX, minY, maxY float64) {
	p := analysis.PhasePortrait{Points: points}
	return p.Bounds()
}

func writePath(w io.Writer, points []analysis.Point, c Chart) error {
	if len(points) < 2 {
		return dynamo.InvalidArgument("chart needs at least 2 points, got %d", len(points))
	}
	if c.Width <= 0 || c.Height <= 0 {
		return dynamo.InvalidArgument("chart size %dx%d must be positive", c.Width, c.Height)
	}

	minX, maxX, minY, maxY := bounds(points)
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	// 10% padding on every side
	minX -= rangeX * 0.1
	minY -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2

	width, height := float64(c.Width), float64(c.Height)
	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, c.Width, c.Height, c.Width, c.Height, background)

	if minY < 0 && minY+rangeY > 0 {
		zero := height - (0-minY)/rangeY*height
		fmt.Fprintf(&sb, `<line x1="0" y1="%.1f" x2="%d" y2="%.1f" stroke="%s" stroke-dasharray="4 4"/>
`, zero, c.Width, zero, axisColor)
	}

	fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="`, c.Stroke)
	for i, p := range points {
		x := (p.X - minX) / rangeX * width
		y := height - (p.Y-minY)/rangeY*height
		if i == 0 {
			fmt.Fprintf(&sb, "M%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}
	sb.WriteString("\"/>\n")

	if c.Title != "" {
		fmt.Fprintf(&sb, `<text x="8" y="16" fill="%s" font-family="monospace" font-size="12">%s</text>
`, textColor, escape(c.Title))
	}
	sb.WriteString("</svg>\n")

	_, err := io.WriteString(w, sb.String())
	return err
}

var escaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func escape(s string) string { return escaper.Replace(s) }
