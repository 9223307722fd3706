package wave

import "math"

// subtractExponent shapes the distance falloff of BorderSubtract.
const subtractExponent = 1.2

// absorber attenuates the band of cells closer than radius to any edge,
// emulating an open boundary. Cells outside the band are never touched.
type absorber struct {
	mode   BorderMode
	radius int
	coef   float32

	// falloff[d] = 1/max(1,d)^1.2 for every band distance d.
	falloff []float32
}

func newAbsorber(cfg Config) *absorber {
	a := &absorber{mode: cfg.BorderMode, radius: cfg.BorderRadius, coef: float32(cfg.BorderCoef)}
	if a.mode == BorderSubtract && a.radius > 0 {
		a.falloff = make([]float32, a.radius)
		for d := range a.falloff {
			a.falloff[d] = float32(1 / math.Pow(float64(max(1, d)), subtractExponent))
		}
	}
	return a
}

// apply runs the boundary policy once over f.
func (a *absorber) apply(f *Field) {
	if a.mode == BorderNone || a.radius <= 0 {
		return
	}
	w, h := f.Width, f.Height
	plane := f.Plane()
	for y := 0; y < h; y++ {
		fullRow := y < a.radius || y >= h-a.radius
		for x := 0; x < w; x++ {
			if !fullRow && x >= a.radius && x < w-a.radius {
				x = w - a.radius - 1
				continue
			}
			idx := y*w + x
			switch a.mode {
			case BorderDivide:
				for c := 0; c < Channels; c++ {
					f.H[c*plane+idx] /= a.coef
				}
			case BorderSubtract:
				k := a.falloff[f.edgeDistance(x, y)]
				for c := 0; c < Channels; c++ {
					i := c*plane + idx
					if hv := f.H[i]; hv*f.V[i] > 0 {
						f.H[i] = hv - hv*k
					}
				}
			}
		}
	}
}
