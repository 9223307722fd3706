package main

import (
	"fmt"
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"

	"wavelab/internal/scene"
	"wavelab/internal/wave"
)

// Game drives one scene: it owns the simulation, the render buffers and the
// optional probe audio pipeline.
type Game struct {
	scene    scene.Scene
	sim      *wave.Simulation
	renderer *wave.Renderer
	mode     wave.RenderMode

	overlayStyle wave.OverlayStyle
	showOverlay  bool
	overlayImg   *ebiten.Image

	probe *wave.Probe
	// heard counts probe samples already pushed to the audio stream.
	heard int

	paused            bool
	simStepMultiplier int
	lastSimDuration   time.Duration

	audioCtx    *audio.Context
	audioStream *probeAudioStream
	audioPlayer *audio.Player
}

// newGame builds the simulation for sc and attaches a probe at (px, py).
func newGame(sc scene.Scene, mode wave.RenderMode, overlay string, px, py int) (*Game, error) {
	g := &Game{
		scene:             sc,
		mode:              mode,
		renderer:          wave.NewRenderer(sc.Config.Width, sc.Config.Height),
		simStepMultiplier: clampMultiplier(*stepsFlag),
	}
	switch overlay {
	case "none", "":
	case "hue":
		g.overlayStyle, g.showOverlay = wave.OverlayHue, true
	default:
		g.overlayStyle, g.showOverlay = wave.OverlayMono, true
	}
	if err := g.reset(px, py); err != nil {
		return nil, err
	}
	g.refreshOverlay()

	if *enableAudioFlag {
		g.audioCtx = audio.NewContext(audioSampleRate)
		g.audioStream = newProbeAudioStream(audioProbeGain, g.simStepsPerSecond())
		if player, err := g.audioCtx.NewPlayer(g.audioStream); err != nil {
			log.Printf("Audio player creation failed: %v", err)
		} else {
			g.audioPlayer = player
			g.audioPlayer.SetBufferSize(audioPlayerBufferSize)
			g.audioPlayer.Play()
		}
	}
	return g, nil
}

// reset rebuilds the simulation from the scene configuration, discarding
// the current field.
func (g *Game) reset(px, py int) error {
	if g.sim != nil {
		g.sim.Close()
	}
	sim, err := wave.New(g.scene.Config)
	if err != nil {
		return fmt.Errorf("scene %s: %w", g.scene.Name, err)
	}
	probe := wave.NewProbe(px, py, 0, probeTraceLength)
	if err := sim.AddProbe(probe); err != nil {
		sim.Close()
		return fmt.Errorf("probe: %w", err)
	}
	g.sim, g.probe, g.heard = sim, probe, 0
	log.Printf("Scene %s ready: %s", g.scene.Name, sim)
	return nil
}

// Update advances the simulation by the current multiplier and feeds the
// probe to the audio stream.
func (g *Game) Update() error {
	if err := g.handleControls(); err != nil {
		return err
	}
	if g.paused {
		return nil
	}
	simStart := time.Now()
	g.sim.Run(g.simStepMultiplier)
	g.lastSimDuration = time.Since(simStart)
	if g.audioStream != nil {
		g.feedAudio()
	}
	return nil
}

// feedAudio pushes the probe samples recorded since the previous call.
func (g *Game) feedAudio() {
	total := g.probe.Recorded()
	fresh := total - g.heard
	g.heard = total
	if fresh <= 0 {
		return
	}
	trace := g.probe.Trace()
	fresh = min(fresh, len(trace))
	g.audioStream.Push(trace[len(trace)-fresh:])
}

// Close releases the simulation and the audio player.
func (g *Game) Close() {
	if g.audioPlayer != nil {
		_ = g.audioPlayer.Close()
	}
	if g.sim != nil {
		g.sim.Close()
	}
}
