package export

import (
	"fmt"
	"io"

	"github.com/banshee-data/coordrecorder/internal/marker"
	"github.com/banshee-data/coordrecorder/internal/waypoint"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// WriteHTML renders an interactive scatter of the route. Each point carries
// [x, y, seq, z, heading] so the tooltip can show the full sample.
func WriteHTML(w io.Writer, entries []waypoint.Entry, opt Options) error {
	if len(entries) == 0 {
		return ErrEmptyRoute
	}

	var routed, unrouted []opts.ScatterData
	for _, e := range entries {
		s := e.Sample
		pt := opts.ScatterData{
			Name:  fmt.Sprintf("#%d", e.Seq),
			Value: []interface{}{s.X, s.Y, e.Seq, s.Z, s.Heading},
		}
		if s.Routed {
			routed = append(routed, pt)
		} else {
			unrouted = append(unrouted, pt)
		}
	}

	b := routeBounds(entries)
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Recorded route", Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{Title: opt.title(len(entries)), Subtitle: fmt.Sprintf("waypoints %d..%d", entries[0].Seq, entries[len(entries)-1].Seq)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: b.minX, Max: b.maxX, Name: "X (m)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: b.minY, Max: b.maxY, Name: "Y (m)", NameLocation: "middle", NameGap: 30}),
	)

	for _, set := range []struct {
		style marker.Style
		data  []opts.ScatterData
	}{
		{marker.StyleRouted, routed},
		{marker.StyleUnrouted, unrouted},
	} {
		if len(set.data) == 0 {
			continue
		}
		scatter.AddSeries(set.style.String(), set.data,
			charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 8}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: set.style.Color()}),
		)
	}

	if err := scatter.Render(w); err != nil {
		return fmt.Errorf("failed to render html: %w", err)
	}
	return nil
}
