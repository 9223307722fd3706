package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"wavelab/internal/scene"
	"wavelab/internal/wave"
)

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

// run builds the scene and blocks until the window closes. Deferred cleanup
// (simulation, profiles) runs on every return path.
func run() error {
	params := scene.FromMap(sceneOverrides)
	if *workersFlag >= 0 {
		params.Workers = *workersFlag
	}
	if *backendFlag != "" {
		backend, err := wave.ParseBackend(*backendFlag)
		if err != nil {
			return fmt.Errorf("-backend: %w", err)
		}
		params.Backend = backend
	}

	sc, err := scene.Build(*sceneFlag, params)
	if err != nil {
		return fmt.Errorf("scene setup failed: %w", err)
	}
	mode := sc.Render
	if *renderFlag != "" {
		if mode, err = wave.ParseRenderMode(*renderFlag); err != nil {
			return fmt.Errorf("-render: %w", err)
		}
	}

	px, py, err := scene.ParseCell(*probeFlag, sc.Config.Width, sc.Config.Height)
	if err != nil {
		return fmt.Errorf("-probe: %w", err)
	}
	if *wavFlag != "" {
		src, err := wavSource(*wavFlag, *wavRateFlag, px, py, *wavAmpFlag)
		if err != nil {
			return fmt.Errorf("loading %s: %w", *wavFlag, err)
		}
		sc.Config.Sources = append(sc.Config.Sources, src)
		log.Printf("WAV source at (%d,%d): %d samples", px, py, len(src.Samples))
	}

	g, err := newGame(sc, mode, *overlayFlag, px, py)
	if err != nil {
		return fmt.Errorf("simulation setup failed: %w", err)
	}
	defer g.Close()

	if *cpuProfileFlag != "" {
		stop, err := startCPUProfile(*cpuProfileFlag, *cpuProfileForFlag)
		if err != nil {
			return fmt.Errorf("CPU profile: %w", err)
		}
		defer stop()
	}

	if *memProfileFlag != "" {
		defer func() {
			if err := writeHeapProfile(*memProfileFlag); err != nil {
				log.Printf("Heap profile: %v", err)
			}
		}()
	}

	ebiten.SetWindowSize(sc.Config.Width*windowScale, sc.Config.Height*windowScale)
	ebiten.SetWindowTitle("wavelab: " + sc.Title)
	ebiten.SetTPS(int(defaultTPS))
	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}
