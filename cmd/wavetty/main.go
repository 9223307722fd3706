// Command wavetty runs a scene inside a terminal. Each character cell shows
// two grid rows with the upper half block, and the probe can be listened to
// through the default audio device.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"time"

	"wavelab/internal/scene"
	"wavelab/internal/wave"
)

const (
	frameInterval = 33 * time.Millisecond
	maxSteps      = 64
	traceLength   = 1024
)

var (
	overrides = scene.Overrides{}

	sceneFlag   = flag.String("scene", "point", "scene to run (see -list)")
	listFlag    = flag.Bool("list", false, "list scenes and exit")
	renderFlag  = flag.String("render", "", "render mode: direct, absolute or accumulate (default: scene choice)")
	stepsFlag   = flag.Int("steps", 2, "simulation ticks per frame")
	probeFlag   = flag.String("probe", "", "probe cell as x,y (default: grid centre)")
	audioFlag   = flag.Bool("audio", false, "play a tone that follows the probe amplitude")
	logFlag     = flag.String("log", "", "append logs to this file instead of discarding them")
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

	// The terminal owns stdout and stderr while the screen is up.
	logOut, err := openLog(*logFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Opening log: %v\n", err)
		os.Exit(1)
	}
	defer logOut.Close()
	log.SetOutput(logOut)
	if *verboseFlag {
		wave.SetLogger(slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	sc, err := scene.Build(*sceneFlag, scene.FromMap(overrides))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Scene setup failed: %v\n", err)
		os.Exit(1)
	}
	mode := sc.Render
	if *renderFlag != "" {
		if mode, err = wave.ParseRenderMode(*renderFlag); err != nil {
			fmt.Fprintf(os.Stderr, "-render: %v\n", err)
			os.Exit(1)
		}
	}
	px, py, err := scene.ParseCell(*probeFlag, sc.Config.Width, sc.Config.Height)
	if err != nil {
		fmt.Fprintf(os.Stderr, "-probe: %v\n", err)
		os.Exit(1)
	}

	v, err := newViewer(sc, mode, px, py)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	if *audioFlag {
		if err := v.startTone(); err != nil {
			// Non-fatal, the viewer runs silently.
			log.Printf("Audio initialization failed: %v", err)
		}
	}
	defer v.cleanup()

	v.run()
}

type nopWriteCloser struct{}

func (nopWriteCloser) Write(p []byte) (int, error) { return len(p), nil }
func (nopWriteCloser) Close() error                { return nil }

func openLog(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopWriteCloser{}, nil
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}
