package main

import (
	"flag"

	"wavelab/internal/scene"
)

// sceneOverrides receives every -set flag.
var sceneOverrides = scene.Overrides{}

func init() {
	flag.Var(sceneOverrides, "set", "scene override key=value (repeatable): "+scene.OverrideKeys)
}

// Command-line flags that select the scene and control rendering, pacing
// and optional output.
var (
	// sceneFlag names the preset to run.
	sceneFlag = flag.String("scene", defaultScene, "scene to run (see -list)")

	// listFlag prints the registered scenes and exits.
	listFlag = flag.Bool("list", false, "list scenes and exit")

	// renderFlag overrides the scene's render mode.
	renderFlag = flag.String("render", "", "render mode: direct, absolute or accumulate (default: scene choice)")

	// overlayFlag selects the weight overlay style.
	overlayFlag = flag.String("overlay", "mono", "weight overlay: none, mono or hue")

	backendFlag = flag.String("backend", "", "propagation backend: cpu or opencl (overrides -set backend)")
	workersFlag = flag.Int("workers", -1, "kernel goroutines, 0 for one per CPU (overrides -set workers)")

	// stepsFlag is the initial number of ticks per frame.
	stepsFlag = flag.Int("steps", defaultSimMultiplier, "simulation ticks per frame")

	// debugFlag enables the FPS and simulation overlay and its hotkeys.
	debugFlag = flag.Bool("debug", false, "show FPS and simulation speed overlay")

	// verboseFlag routes engine lifecycle logs to stderr.
	verboseFlag = flag.Bool("v", false, "log engine lifecycle events")

	// enableAudioFlag plays the probe signal through the speakers.
	enableAudioFlag = flag.Bool("enable-audio", false, "play the probe cell as audio")

	// probeFlag positions the probe as "x,y" in grid cells; empty means centre.
	probeFlag = flag.String("probe", "", "probe cell as x,y (default: grid centre)")

	// wavFlag drives an extra sampled source from a WAV file.
	wavFlag     = flag.String("wav", "", "WAV file replayed as a sampled source at the probe cell")
	wavRateFlag = flag.Int("wav-rate", defaultWavTickRate, "WAV samples per simulation second")
	wavAmpFlag  = flag.Float64("wav-amp", 1, "amplitude of the WAV-driven source")

	// cpuProfileFlag writes a CPU profile for the first -cpuprofile-for of the run.
	cpuProfileFlag    = flag.String("cpuprofile", "", "write a CPU profile to this path")
	cpuProfileForFlag = flag.Duration("cpuprofile-for", defaultProfileWindow, "how long to record the CPU profile")

	// memProfileFlag writes a heap profile when the window closes.
	memProfileFlag = flag.String("memprofile", "", "write a heap profile to this path on exit")
)
