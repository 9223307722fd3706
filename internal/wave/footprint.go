package wave

import "math"

// beamFootprint caches the separable gaussian window of a directed source,
// clipped to the grid: fade(dx,dy) = gx[dx]*gy[dy]/size, and the carrier
// cos(freq*x) for every covered column.
type beamFootprint struct {
	x0, x1 int // covered columns [x0,x1)
	y0, y1 int // covered rows [y0,y1)
	gx     []float64
	gy     []float64
	carry  []float64
	scale  float64
}

func newBeamFootprint(s Source, width, height int) *beamFootprint {
	size := float64(s.BeamSize)
	reach := s.BeamSize * s.BeamSize
	b := &beamFootprint{
		x0:    clampCoord(s.X-reach, 0, width),
		x1:    clampCoord(s.X+reach, 0, width),
		y0:    clampCoord(s.Y-reach, 0, height),
		y1:    clampCoord(s.Y+reach, 0, height),
		scale: 1 / size,
	}
	denom := 2 * size * size
	b.gx = make([]float64, b.x1-b.x0)
	b.carry = make([]float64, b.x1-b.x0)
	for i := range b.gx {
		x := b.x0 + i
		dx := float64(x - s.X)
		b.gx[i] = math.Exp(-dx * dx / denom)
		b.carry[i] = math.Cos(s.Freq * float64(x))
	}
	b.gy = make([]float64, b.y1-b.y0)
	for i := range b.gy {
		dy := float64(b.y0 + i - s.Y)
		b.gy[i] = math.Exp(-dy * dy / denom)
	}
	return b
}

// add superposes the beam scaled by gain onto every channel of f.
func (b *beamFootprint) add(f *Field, gain float64) {
	if gain == 0 {
		return
	}
	for j, gy := range b.gy {
		y := b.y0 + j
		rowGain := gain * gy * b.scale
		for i, gx := range b.gx {
			v := rowGain * gx * b.carry[i]
			if v == 0 {
				continue
			}
			f.addHeight(b.x0+i, y, float32(v))
		}
	}
}

// clampCoord constrains v to lie within the inclusive [min, max] range.
func clampCoord(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
