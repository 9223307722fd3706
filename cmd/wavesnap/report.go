package main

import (
	"fmt"
	"io"

	"github.com/guptarohit/asciigraph"

	"wavelab/internal/analysis"
	"wavelab/internal/scene"
	"wavelab/internal/wave"
)

const (
	plotHeight = 10
	plotWidth  = 72
)

// writeReport prints the field measurements followed by one plot per probe.
func writeReport(w io.Writer, sc scene.Scene, sim *wave.Simulation) {
	f := sim.Field()
	fmt.Fprintf(w, "scene       %s (%s)\n", sc.Name, sc.Title)
	cfg := sim.Config()
	fmt.Fprintf(w, "grid        %dx%d, tick %d, %s\n", f.Width, f.Height, sim.TickCount(), sim.Backend())
	fmt.Fprintf(w, "border      %s, radius %d, coef %g\n", cfg.BorderMode, cfg.BorderRadius, cfg.BorderCoef)
	fmt.Fprintf(w, "energy      %.6g", analysis.Energy(f))
	for c := 0; c < wave.Channels; c++ {
		fmt.Fprintf(w, "  c%d=%.6g", c, analysis.ChannelEnergy(f, c))
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "mirror err  %.3g\n", analysis.MirrorError(f))
	if f.Width == f.Height {
		fmt.Fprintf(w, "transpose   %.3g\n", analysis.TransposeError(f))
	}
	row := analysis.Row(f, f.Height/2, 0)
	fmt.Fprintf(w, "centre row  peak %.4g, wavelength %.2f cells\n", analysis.PeakAbs(row), analysis.DominantWavelength(row))

	for _, p := range sim.Probes() {
		trace := p.Trace()
		if len(trace) < 2 {
			continue
		}
		series := make([]float64, len(trace))
		for i, v := range trace {
			series[i] = float64(v)
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w, asciigraph.Plot(series,
			asciigraph.Height(plotHeight),
			asciigraph.Width(plotWidth),
			asciigraph.Caption(fmt.Sprintf("probe (%d,%d), last %d ticks", p.X, p.Y, len(trace)))))
	}
}
