package export

import (
	"fmt"
	"io"
	"os"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Series is one probe trace to plot against tick number.
type Series struct {
	Name   string
	Start  int // tick of the first sample
	Values []float32
}

var seriesColors = []drawing.Color{
	{R: 230, G: 60, B: 60, A: 255},
	{R: 60, G: 190, B: 90, A: 255},
	{R: 70, G: 110, B: 230, A: 255},
	{R: 255, G: 165, B: 0, A: 255},
}

// WriteChart renders the series as a PNG line chart.
func WriteChart(w io.Writer, title string, width, height int, series []Series) error {
	var lines []chart.Series
	for i, s := range series {
		if len(s.Values) < 2 {
			continue
		}
		xs := make([]float64, len(s.Values))
		ys := make([]float64, len(s.Values))
		for j, v := range s.Values {
			xs[j] = float64(s.Start + j)
			ys[j] = float64(v)
		}
		lines = append(lines, chart.ContinuousSeries{
			Name:    s.Name,
			XValues: xs,
			YValues: ys,
			Style:   chart.Style{StrokeColor: seriesColors[i%len(seriesColors)], StrokeWidth: 1.5},
		})
	}
	if len(lines) == 0 {
		return fmt.Errorf("chart %q: no series with at least two samples", title)
	}
	graph := chart.Chart{
		Title:  title,
		Width:  width,
		Height: height,
		XAxis: chart.XAxis{
			Name:  "tick",
			Style: chart.Style{FontSize: 9},
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("%d", int(v.(float64)))
			},
		},
		YAxis: chart.YAxis{
			Name:  "height",
			Style: chart.Style{FontSize: 9},
		},
		Series: lines,
	}
	if len(lines) > 1 {
		graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	}
	return graph.Render(chart.PNG, w)
}

// SaveChart writes the chart to path.
func SaveChart(path, title string, width, height int, series []Series) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating chart: %w", err)
	}
	if err := WriteChart(f, title, width, height, series); err != nil {
		f.Close()
		return fmt.Errorf("writing chart %s: %w", path, err)
	}
	return f.Close()
}
