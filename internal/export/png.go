package export

import (
	"fmt"
	"image/color"
	"io"
	"strconv"

	"github.com/banshee-data/coordrecorder/internal/marker"
	"github.com/banshee-data/coordrecorder/internal/waypoint"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

const pngSize = 8 * vg.Inch

// WritePNG draws the route top-down: a grey path through every waypoint in
// log order with routed and unrouted waypoints in their marker colours.
func WritePNG(w io.Writer, entries []waypoint.Entry, opt Options) error {
	if len(entries) == 0 {
		return ErrEmptyRoute
	}

	p := plot.New()
	p.Title.Text = opt.title(len(entries))
	p.X.Label.Text = "X (m)"
	p.Y.Label.Text = "Y (m)"
	p.Add(plotter.NewGrid())

	b := routeBounds(entries)
	p.X.Min, p.X.Max = b.minX, b.maxX
	p.Y.Min, p.Y.Max = b.minY, b.maxY

	path := make(plotter.XYs, len(entries))
	var routed, unrouted plotter.XYs
	for i, e := range entries {
		xy := plotter.XY{X: e.Sample.X, Y: e.Sample.Y}
		path[i] = xy
		if e.Sample.Routed {
			routed = append(routed, xy)
		} else {
			unrouted = append(unrouted, xy)
		}
	}

	line, err := plotter.NewLine(path)
	if err != nil {
		return fmt.Errorf("failed to build path line: %w", err)
	}
	line.Width = vg.Points(1)
	line.Color = color.Gray{Y: 140}
	p.Add(line)
	p.Legend.Add("path", line)

	for _, set := range []struct {
		style marker.Style
		xys   plotter.XYs
	}{
		{marker.StyleRouted, routed},
		{marker.StyleUnrouted, unrouted},
	} {
		if len(set.xys) == 0 {
			continue
		}
		sc, err := plotter.NewScatter(set.xys)
		if err != nil {
			return fmt.Errorf("failed to build %s points: %w", set.style, err)
		}
		sc.GlyphStyle.Color = hexColor(set.style.Color())
		sc.GlyphStyle.Radius = vg.Points(3)
		sc.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(sc)
		p.Legend.Add(set.style.String(), sc)
	}

	if opt.Labels {
		labels := make([]string, len(entries))
		for i, e := range entries {
			labels[i] = strconv.Itoa(waypoint.Label(e.Seq))
		}
		lbl, err := plotter.NewLabels(plotter.XYLabels{XYs: path, Labels: labels})
		if err != nil {
			return fmt.Errorf("failed to build labels: %w", err)
		}
		p.Add(lbl)
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	wt, err := p.WriterTo(pngSize, pngSize, "png")
	if err != nil {
		return fmt.Errorf("failed to render png: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write png: %w", err)
	}
	return nil
}

// hexColor parses "#rrggbb"; anything else is black.
func hexColor(s string) color.RGBA {
	c := color.RGBA{A: 0xff}
	if len(s) != 7 || s[0] != '#' {
		return c
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return c
	}
	c.R = uint8(v >> 16)
	c.G = uint8(v >> 8)
	c.B = uint8(v)
	return c
}
