package main

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"

	"wavelab/internal/wave"
)

var (
	markerColor = color.RGBA{255, 255, 255, 160}
	probeColor  = color.RGBA{0, 255, 200, 255}
	titleColor  = color.RGBA{200, 200, 210, 255}
)

// Draw renders the field, the medium overlay, source and probe markers and
// the optional debug text.
func (g *Game) Draw(screen *ebiten.Image) {
	f := g.sim.Field()
	if pixels := g.renderer.RGBA(f, g.mode); pixels != nil {
		screen.WritePixels(pixels)
	}
	if g.showOverlay && g.overlayImg != nil {
		screen.DrawImage(g.overlayImg, nil)
	}

	for _, src := range g.scene.Config.Sources {
		drawSourceMarker(screen, src, f.Width, f.Height)
	}
	drawCross(screen, g.probe.X, g.probe.Y, probeMarkerRadius, probeColor, f.Width, f.Height)

	text.Draw(screen, g.scene.Title, basicfont.Face7x13, 6, f.Height-8, titleColor)

	if *debugFlag {
		fps := ebiten.ActualFPS()
		tps := ebiten.ActualTPS()
		if tps < 0 {
			tps = 0
		}
		simMS := g.lastSimDuration.Seconds() * 1000
		state := "running"
		if g.paused {
			state = "paused"
		}
		debugMsg := fmt.Sprintf("FPS: %.1f (%.1f TPS)\nTick: %d (%s, %s)\nSim steps: %.1f/s (mult %dx, +/-)\nSim: %.2f ms\nProbe: %+.4f",
			fps, tps, g.sim.TickCount(), state, g.mode, g.simStepsPerSecond(), g.simStepMultiplier, simMS, g.probe.Latest())
		ebitenutil.DebugPrint(screen, debugMsg)
	}
}

// Layout reports the logical screen size used by Ebiten: one pixel per cell.
func (g *Game) Layout(_, _ int) (int, int) {
	return g.scene.Config.Width, g.scene.Config.Height
}

// refreshOverlay uploads the weight overlay. ebiten expects premultiplied
// alpha, which wave.WeightOverlay does not produce.
func (g *Game) refreshOverlay() {
	f := g.sim.Field()
	pix := wave.WeightOverlay(f, g.overlayStyle)
	for i := 0; i < len(pix); i += 4 {
		a := uint16(pix[i+3])
		pix[i] = uint8(uint16(pix[i]) * a / 255)
		pix[i+1] = uint8(uint16(pix[i+1]) * a / 255)
		pix[i+2] = uint8(uint16(pix[i+2]) * a / 255)
	}
	if g.overlayImg == nil {
		g.overlayImg = ebiten.NewImage(f.Width, f.Height)
	}
	g.overlayImg.WritePixels(pix)
}

func drawSourceMarker(screen *ebiten.Image, src wave.Source, w, h int) {
	switch src.Kind {
	case wave.SourceRect:
		x2, y2 := src.X2-1, src.Y2-1
		drawLine(screen, src.X, src.Y, x2, src.Y, markerColor, w, h)
		drawLine(screen, x2, src.Y, x2, y2, markerColor, w, h)
		drawLine(screen, x2, y2, src.X, y2, markerColor, w, h)
		drawLine(screen, src.X, y2, src.X, src.Y, markerColor, w, h)
	default:
		drawCross(screen, src.X, src.Y, probeMarkerRadius, markerColor, w, h)
	}
}

func drawCross(screen *ebiten.Image, cx, cy, r int, clr color.Color, w, h int) {
	drawLine(screen, cx-r, cy, cx+r, cy, clr, w, h)
	drawLine(screen, cx, cy-r, cx, cy+r, clr, w, h)
}

// drawLine plots a line segment using Bresenham's integer algorithm.
func drawLine(screen *ebiten.Image, x0, y0, x1, y1 int, clr color.Color, w, h int) {
	dx := int(math.Abs(float64(x1 - x0)))
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -int(math.Abs(float64(y1 - y0)))
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		if x0 >= 0 && x0 < w && y0 >= 0 && y0 < h {
			screen.Set(x0, y0, clr)
		}
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}
