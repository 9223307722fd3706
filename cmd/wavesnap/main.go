// Command wavesnap runs a scene headless for a fixed number of ticks and
// writes any of: a PNG snapshot, an MJPEG recording, a probe chart and a
// text report.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"wavelab/internal/export"
	"wavelab/internal/scene"
	"wavelab/internal/wave"
)

const (
	chartWidth  = 1024
	chartHeight = 400
)

var (
	overrides = scene.Overrides{}

	sceneFlag   = flag.String("scene", "point", "scene to run (see -list)")
	listFlag    = flag.Bool("list", false, "list scenes and exit")
	ticksFlag   = flag.Int("ticks", 600, "ticks to simulate")
	renderFlag  = flag.String("render", "", "render mode: direct, absolute or accumulate (default: scene choice)")
	pngFlag     = flag.String("png", "", "write the final frame to this PNG")
	overlayFlag = flag.String("overlay", "none", "weight overlay on the PNG: none, mono or hue")
	markersFlag = flag.Bool("markers", true, "outline sources on the PNG")
	aviFlag     = flag.String("avi", "", "record an MJPEG AVI to this path")
	fpsFlag     = flag.Int("fps", 30, "playback rate of the recording")
	everyFlag   = flag.Int("every", 10, "ticks between recorded frames")
	chartFlag   = flag.String("chart", "", "write the probe trace chart to this PNG")
	probeFlag   = flag.String("probe", "", "probe cells as x,y;x,y (default: grid centre)")
	reportFlag  = flag.Bool("report", true, "print field measurements and the probe trace")
	verboseFlag = flag.Bool("v", false, "log engine lifecycle events")
)

func init() {
	flag.Var(overrides, "set", "scene override key=value (repeatable): "+scene.OverrideKeys)
}

func main() {
	flag.Parse()

	if *listFlag {
		for _, name := range scene.Names() {
			fmt.Printf("%-14s %s\n", name, scene.Title(name))
		}
		return
	}
	if *verboseFlag {
		wave.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	sc, err := scene.Build(*sceneFlag, scene.FromMap(overrides))
	if err != nil {
		return fmt.Errorf("scene setup failed: %w", err)
	}
	mode := sc.Render
	if *renderFlag != "" {
		if mode, err = wave.ParseRenderMode(*renderFlag); err != nil {
			return fmt.Errorf("-render: %w", err)
		}
	}
	overlay, showOverlay, err := parseOverlay(*overlayFlag)
	if err != nil {
		return err
	}
	if *ticksFlag < 0 || *everyFlag <= 0 {
		return fmt.Errorf("-ticks must be >= 0 and -every > 0")
	}

	sim, err := wave.New(sc.Config)
	if err != nil {
		return fmt.Errorf("scene %s: %w", sc.Name, err)
	}
	defer sim.Close()

	probes, err := parseProbes(*probeFlag, sc.Config.Width, sc.Config.Height, *ticksFlag)
	if err != nil {
		return fmt.Errorf("-probe: %w", err)
	}
	for _, p := range probes {
		if err := sim.AddProbe(p); err != nil {
			return err
		}
	}
	log.Printf("Scene %s: %s", sc.Name, sim)

	f := sim.Field()
	renderer := wave.NewRenderer(f.Width, f.Height)

	var rec *export.Recorder
	if *aviFlag != "" {
		if rec, err = export.NewRecorder(*aviFlag, f.Width, f.Height, *fpsFlag); err != nil {
			return err
		}
		defer func() {
			if rec != nil {
				rec.Close()
			}
		}()
	}

	start := time.Now()
	for i := 0; i < *ticksFlag; i++ {
		sim.Tick()
		if rec != nil && sim.TickCount()%*everyFlag == 0 {
			if err := rec.AddFrame(renderer.Image(f, mode)); err != nil {
				return err
			}
		}
	}
	elapsed := time.Since(start)
	log.Printf("Ran %d ticks in %v (%.0f ticks/s)", *ticksFlag, elapsed.Round(time.Millisecond), float64(*ticksFlag)/max(elapsed.Seconds(), 1e-9))

	if rec != nil {
		frames := rec.Frames()
		err := rec.Close()
		rec = nil
		if err != nil {
			return fmt.Errorf("closing %s: %w", *aviFlag, err)
		}
		log.Printf("Wrote %s (%d frames)", *aviFlag, frames)
	}

	if *pngFlag != "" {
		snap := export.Snapshot{
			Frame:   renderer.Image(f, mode),
			Sources: sc.Config.Sources,
			Markers: *markersFlag,
		}
		if showOverlay {
			snap.Overlay = wave.WeightOverlay(f, overlay)
		}
		if err := export.SavePNG(*pngFlag, snap); err != nil {
			return err
		}
		log.Printf("Wrote %s", *pngFlag)
	}

	if *chartFlag != "" {
		if err := export.SaveChart(*chartFlag, sc.Title, chartWidth, chartHeight, traceSeries(sim.Probes(), sim.TickCount())); err != nil {
			return err
		}
		log.Printf("Wrote %s", *chartFlag)
	}

	if *reportFlag {
		writeReport(os.Stdout, sc, sim)
	}
	return nil
}

func parseOverlay(v string) (wave.OverlayStyle, bool, error) {
	switch v {
	case "", "none":
		return wave.OverlayMono, false, nil
	case "mono":
		return wave.OverlayMono, true, nil
	case "hue":
		return wave.OverlayHue, true, nil
	}
	return 0, false, fmt.Errorf("unknown overlay %q", v)
}
