package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"wavelab/internal/scene"
	"wavelab/internal/wave"
)

func TestParseProbes(t *testing.T) {
	probes, err := parseProbes("", 40, 30, 100)
	if err != nil {
		t.Fatalf("parseProbes: %v", err)
	}
	if len(probes) != 1 || probes[0].X != 20 || probes[0].Y != 15 {
		t.Fatalf("expected a single centre probe, got %+v", probes)
	}

	probes, err = parseProbes("1,2; 3,4;", 40, 30, 100)
	if err != nil {
		t.Fatalf("parseProbes: %v", err)
	}
	if len(probes) != 2 || probes[1].X != 3 || probes[1].Y != 4 {
		t.Fatalf("expected two probes, got %+v", probes)
	}

	if _, err := parseProbes("1,2;99,0", 40, 30, 100); !errors.Is(err, wave.ErrOutOfBounds) {
		t.Fatalf("expected ErrOutOfBounds, got %v", err)
	}
}

func TestParseOverlay(t *testing.T) {
	if _, show, err := parseOverlay("none"); err != nil || show {
		t.Fatalf("expected none to hide the overlay, got show=%v err=%v", show, err)
	}
	if style, show, err := parseOverlay("hue"); err != nil || !show || style != wave.OverlayHue {
		t.Fatalf("unexpected hue result %v %v %v", style, show, err)
	}
	if _, _, err := parseOverlay("plaid"); err == nil {
		t.Fatalf("expected unknown overlay to be rejected")
	}
}

func TestTraceSeriesEndsAtCurrentTick(t *testing.T) {
	sc, err := scene.Build("point", scene.Params{Width: 48, Height: 48, BorderMode: wave.BorderNone})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	sim, err := wave.New(sc.Config)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer sim.Close()
	probes, err := parseProbes("", 48, 48, 16)
	if err != nil {
		t.Fatalf("parseProbes: %v", err)
	}
	if err := sim.AddProbe(probes[0]); err != nil {
		t.Fatalf("AddProbe: %v", err)
	}
	sim.Run(40)

	series := traceSeries(probes, sim.TickCount())
	if len(series) != 1 || len(series[0].Values) != 16 {
		t.Fatalf("expected one series of 16 samples, got %+v", series)
	}
	if last := series[0].Start + len(series[0].Values) - 1; last != 40 {
		t.Fatalf("expected the trace to end at tick 40, got %d", last)
	}

	var out bytes.Buffer
	writeReport(&out, sc, sim)
	for _, want := range []string{"energy", "border", "mirror err", "transpose", "wavelength", "probe (24,24)"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("expected report to mention %q:\n%s", want, out.String())
		}
	}
}
