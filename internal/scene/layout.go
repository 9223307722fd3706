package scene

import (
	"math"

	"wavelab/internal/wave"
)

// layout maps geometry authored on a base canvas onto the simulated grid.
type layout struct {
	w, h   int
	sx, sy float64
}

func newLayout(p Params, baseW, baseH int) layout {
	scale := p.Scale
	if scale <= 0 {
		scale = 1
	}
	l := layout{
		w: int(math.Round(float64(baseW) * scale)),
		h: int(math.Round(float64(baseH) * scale)),
	}
	if p.Width > 0 {
		l.w = p.Width
	}
	if p.Height > 0 {
		l.h = p.Height
	}
	l.w = max(l.w, 3)
	l.h = max(l.h, 3)
	l.sx = float64(l.w) / float64(baseW)
	l.sy = float64(l.h) / float64(baseH)
	return l
}

// x converts a base column into a grid column clamped to the grid.
func (l layout) x(bx float64) int {
	return clamp(int(math.Round(bx*l.sx)), 0, l.w-1)
}

// y converts a base row into a grid row clamped to the grid.
func (l layout) y(by float64) int {
	return clamp(int(math.Round(by*l.sy)), 0, l.h-1)
}

// length scales a base distance, never below one cell.
func (l layout) length(v float64) int {
	return max(1, int(math.Round(v*math.Min(l.sx, l.sy))))
}

// config returns a wave.Config for the grid with the border and execution
// settings taken from p.
func (l layout) config(p Params, baseRadius float64, accumulate bool) wave.Config {
	cfg := wave.DefaultConfig()
	cfg.Width, cfg.Height = l.w, l.h
	cfg.BorderMode = p.BorderMode
	cfg.BorderRadius = l.length(baseRadius)
	if p.BorderRadius > 0 {
		cfg.BorderRadius = p.BorderRadius
	}
	if p.BorderCoef > 1 {
		cfg.BorderCoef = p.BorderCoef
	}
	cfg.Accumulate = accumulate
	if p.Accumulate != nil {
		cfg.Accumulate = *p.Accumulate
	}
	cfg.Workers = p.Workers
	cfg.Backend = p.Backend
	return cfg
}

// medium evaluates fn at the base coordinate of every cell and channel to
// build a planar weight map. fn returns 1 for empty space. Every other value
// gets k*dispersion added on channel k.
func (l layout) medium(dispersion float64, fn func(bx, by float64, k int) float64) []float32 {
	plane := l.w * l.h
	weights := make([]float32, plane*wave.Channels)
	for y := 0; y < l.h; y++ {
		by := float64(y) / l.sy
		for x := 0; x < l.w; x++ {
			bx := float64(x) / l.sx
			for k := 0; k < wave.Channels; k++ {
				wt := fn(bx, by, k)
				if wt != 1 {
					wt += float64(k) * dispersion
				}
				weights[k*plane+y*l.w+x] = float32(wt)
			}
		}
	}
	return weights
}

func (p Params) freq(def float64) float64 {
	if p.Freq > 0 {
		return p.Freq
	}
	return def
}

func (p Params) amp(def float64) float64 {
	if p.Amp != 0 {
		return p.Amp
	}
	return def
}

// beam returns the override beam size or the scaled default.
func (p Params) beam(l layout, def float64) int {
	if p.Beam > 0 {
		return p.Beam
	}
	return max(2, l.length(def))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
