package scene

import (
	"math"

	"github.com/iand/perlin"

	"wavelab/internal/wave"
)

// mirrorWeight is heavy enough that waves effectively stop at the surface.
const mirrorWeight = 10000000

func init() {
	Register("point", "single point source", pointScene)
	Register("interference", "two mirrored point sources", interferenceScene)
	Register("slits", "plane wave through a double slit", slitsScene)
	Register("prism", "beam through a dispersive prism", prismScene)
	Register("lens", "beam through a glass ball", lensScene)
	Register("mirror", "beam reflecting off a diagonal mirror", mirrorScene)
	Register("refraction", "plane wave entering a slower half-plane", refractionScene)
	Register("noise", "point source in a perlin-noise medium", noiseScene)
}

func pointScene(p Params) Scene {
	l := newLayout(p, 1600, 900)
	cfg := l.config(p, 100, false)
	cfg.Sources = []wave.Source{
		wave.Point(l.x(800), l.y(450), p.freq(0.2), p.amp(1)),
	}
	return Scene{Config: cfg, Render: wave.RenderDirect}
}

func interferenceScene(p Params) Scene {
	l := newLayout(p, 800, 800)
	cfg := l.config(p, 100, false)
	left := l.x(300)
	y := l.y(400)
	freq, amp := p.freq(0.2), p.amp(1)
	cfg.Sources = []wave.Source{
		wave.Point(left, y, freq, amp),
		wave.Point(l.w-1-left, y, freq, amp),
	}
	return Scene{Config: cfg, Render: wave.RenderAbsolute}
}

func slitsScene(p Params) Scene {
	l := newLayout(p, 800, 800)
	cfg := l.config(p, 100, true)
	x1 := l.x(102)
	x2 := max(x1+1, l.x(103))
	cfg.Sources = []wave.Source{
		wave.Rect(x1, l.y(300), x2, max(l.y(300)+1, l.y(500)), p.freq(0.1), p.amp(-1)),
	}
	cfg.Weight = l.medium(p.Dispersion, func(bx, by float64, _ int) float64 {
		if bx < 103 || bx >= 134 {
			return 1
		}
		if (by >= 350 && by < 370) || (by >= 430 && by < 450) {
			return 1
		}
		return mirrorWeight
	})
	return Scene{Config: cfg, Render: wave.RenderAccumulate}
}

func prismScene(p Params) Scene {
	l := newLayout(p, 1600, 900)
	cfg := l.config(p, 100, true)
	cfg.Sources = []wave.Source{
		wave.Directed(l.x(400), l.y(400), p.freq(1), p.amp(1), p.beam(l, 20)),
	}
	cfg.Weight = l.medium(p.Dispersion, func(bx, by float64, _ int) float64 {
		dx := bx - 800
		if by < 600 && -by*0.6+150 < dx && dx < by*0.6-150 {
			return 1.6
		}
		return 1
	})
	return Scene{Config: cfg, Render: wave.RenderAccumulate}
}

func lensScene(p Params) Scene {
	l := newLayout(p, 1600, 900)
	cfg := l.config(p, 100, false)
	cfg.Sources = []wave.Source{
		wave.Directed(l.x(400), l.y(300), p.freq(1), p.amp(1), p.beam(l, 20)),
	}
	cfg.Weight = l.medium(p.Dispersion, func(bx, by float64, k int) float64 {
		dx, dy := bx-800, by-450
		if dx*dx+dy*dy <= 150*150 {
			return 1.4 + float64(k)*0.05
		}
		return 1
	})
	return Scene{Config: cfg, Render: wave.RenderAbsolute}
}

func mirrorScene(p Params) Scene {
	l := newLayout(p, 1600, 900)
	cfg := l.config(p, 100, true)
	cfg.Sources = []wave.Source{
		wave.Directed(l.x(1000), l.y(500), p.freq(1.2), p.amp(1), p.beam(l, 20)),
	}
	cfg.Weight = l.medium(p.Dispersion, func(bx, by float64, _ int) float64 {
		if bx < by {
			return mirrorWeight
		}
		return 1
	})
	return Scene{Config: cfg, Render: wave.RenderAccumulate}
}

func refractionScene(p Params) Scene {
	l := newLayout(p, 800, 400)
	cfg := l.config(p, 40, false)
	cfg.Sources = []wave.Source{
		wave.Rect(1, 1, 2, l.h-1, p.freq(0.1), p.amp(1)),
	}
	cfg.Weight = l.medium(p.Dispersion, func(bx, _ float64, _ int) float64 {
		if bx >= 400 {
			return 2
		}
		return 1
	})
	return Scene{Config: cfg, Render: wave.RenderDirect}
}

func noiseScene(p Params) Scene {
	l := newLayout(p, 800, 800)
	cfg := l.config(p, 100, false)
	cfg.Sources = []wave.Source{
		wave.Point(l.x(400), l.y(400), p.freq(0.2), p.amp(1)),
	}
	cfg.Weight = l.medium(p.Dispersion, func(bx, by float64, _ int) float64 {
		n := perlin.Noise2D(bx/80, by/80, p.Seed, 2, 2, 3)
		return 1 + 0.5*math.Abs(n)
	})
	return Scene{Config: cfg, Render: wave.RenderAbsolute}
}
