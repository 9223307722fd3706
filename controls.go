package main

import (
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"wavelab/internal/wave"
)

// handleControls processes the viewer hotkeys:
//
//	Space      pause / resume
//	1, 2, 3    direct, absolute, accumulate rendering
//	O          toggle the weight overlay
//	R          restart the scene
//	-, =       ticks per frame (debug mode)
//	Escape     quit
func (g *Game) handleControls() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused = !g.paused
	}
	switch {
	case inpututil.IsKeyJustPressed(ebiten.Key1):
		g.mode = wave.RenderDirect
	case inpututil.IsKeyJustPressed(ebiten.Key2):
		g.mode = wave.RenderAbsolute
	case inpututil.IsKeyJustPressed(ebiten.Key3):
		if g.sim.Field().A == nil {
			log.Printf("Accumulation is off for this run; enable it with -set accumulate=true")
		}
		g.mode = wave.RenderAccumulate
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyO) {
		g.showOverlay = !g.showOverlay
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		if err := g.reset(g.probe.X, g.probe.Y); err != nil {
			return err
		}
	}
	g.handleDebugControls()
	return nil
}

// handleDebugControls processes debug overlay hotkeys.
func (g *Game) handleDebugControls() {
	if !*debugFlag {
		return
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyMinus) || inpututil.IsKeyJustPressed(ebiten.KeyKPSubtract) {
		g.adjustSimMultiplier(-simMultiplierStep)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEqual) || inpututil.IsKeyJustPressed(ebiten.KeyKPAdd) {
		g.adjustSimMultiplier(simMultiplierStep)
	}
}

// adjustSimMultiplier clamps the ticks-per-frame delta within bounds.
func (g *Game) adjustSimMultiplier(delta int) {
	g.simStepMultiplier = clampMultiplier(g.simStepMultiplier + delta)
	if g.audioStream != nil {
		g.audioStream.SetTickRate(g.simStepsPerSecond())
	}
}

func clampMultiplier(v int) int {
	if v < minSimMultiplier {
		return minSimMultiplier
	}
	if v > maxSimMultiplier {
		return maxSimMultiplier
	}
	return v
}

// simStepsPerSecond returns the nominal simulation ticks executed each second.
func (g *Game) simStepsPerSecond() float64 {
	return defaultTPS * float64(g.simStepMultiplier)
}
