package main

import (
	"fmt"
	"strings"

	"wavelab/internal/export"
	"wavelab/internal/scene"
	"wavelab/internal/wave"
)

// parseProbes reads a ';' separated list of x,y cells. Each probe keeps the
// whole run, up to wave.DefaultProbeCapacity samples.
func parseProbes(v string, w, h, ticks int) ([]*wave.Probe, error) {
	capacity := min(max(ticks, 1), wave.DefaultProbeCapacity)
	var probes []*wave.Probe
	for _, item := range strings.Split(v, ";") {
		if strings.TrimSpace(item) == "" && len(probes) > 0 {
			continue
		}
		x, y, err := scene.ParseCell(item, w, h)
		if err != nil {
			return nil, err
		}
		probes = append(probes, wave.NewProbe(x, y, 0, capacity))
	}
	return probes, nil
}

// traceSeries converts the recorded probe traces into chart series ending at
// tick.
func traceSeries(probes []*wave.Probe, tick int) []export.Series {
	series := make([]export.Series, 0, len(probes))
	for _, p := range probes {
		trace := p.Trace()
		series = append(series, export.Series{
			Name:   fmt.Sprintf("(%d,%d)", p.X, p.Y),
			Start:  tick - len(trace) + 1,
			Values: trace,
		})
	}
	return series
}
