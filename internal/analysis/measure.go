// Package analysis measures wave fields: total displacement, mirror symmetry,
// and the spatial wavelength of a row.
package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/floats"

	"wavelab/internal/wave"
)

// Energy returns Σ|Height| over every cell and channel.
func Energy(f *wave.Field) float64 {
	return floats.Norm(toFloat64(f.H), 1)
}

// ChannelEnergy returns Σ|Height| over a single channel.
func ChannelEnergy(f *wave.Field, c int) float64 {
	return floats.Norm(toFloat64(f.Channel(c)), 1)
}

// Row copies the heights of row y on channel c.
func Row(f *wave.Field, y, c int) []float64 {
	start := f.Index(0, y, c)
	return toFloat64(f.H[start : start+f.Width])
}

// Column copies the heights of column x on channel c.
func Column(f *wave.Field, x, c int) []float64 {
	out := make([]float64, f.Height)
	for y := range out {
		out[y] = float64(f.HeightAt(x, y, c))
	}
	return out
}

// MirrorError returns the largest difference between a cell and its mirror
// image across the vertical midline, over every channel.
func MirrorError(f *wave.Field) float64 {
	var worst float64
	mirrored := make([]float64, f.Width)
	for c := 0; c < wave.Channels; c++ {
		for y := 0; y < f.Height; y++ {
			row := Row(f, y, c)
			for x, v := range row {
				mirrored[f.Width-1-x] = v
			}
			if d := floats.Distance(row, mirrored, math.Inf(1)); d > worst {
				worst = d
			}
		}
	}
	return worst
}

// TransposeError returns the largest difference between H[x,y] and H[y,x]
// on a square field. It returns +Inf for non-square fields.
func TransposeError(f *wave.Field) float64 {
	if f.Width != f.Height {
		return math.Inf(1)
	}
	var worst float64
	for c := 0; c < wave.Channels; c++ {
		for y := 0; y < f.Height; y++ {
			if d := floats.Distance(Row(f, y, c), Column(f, y, c), math.Inf(1)); d > worst {
				worst = d
			}
		}
	}
	return worst
}

// ZeroCrossings returns the linearly interpolated positions where xs
// changes sign. Exact zeros count once.
func ZeroCrossings(xs []float64) []float64 {
	var out []float64
	for i := 1; i < len(xs); i++ {
		a, b := xs[i-1], xs[i]
		switch {
		case a == 0:
			continue
		case b == 0:
			if i+1 < len(xs) && xs[i+1]*a < 0 {
				out = append(out, float64(i))
			}
		case a*b < 0:
			out = append(out, float64(i-1)+a/(a-b))
		}
	}
	return out
}

// ZeroCrossingSpacing returns the mean distance between consecutive zero
// crossings of xs, or false when fewer than two crossings exist. For a
// sinusoid this is half the wavelength.
func ZeroCrossingSpacing(xs []float64) (float64, bool) {
	zc := ZeroCrossings(xs)
	if len(zc) < 2 {
		return 0, false
	}
	return (zc[len(zc)-1] - zc[0]) / float64(len(zc)-1), true
}

// DominantWavelength estimates the strongest spatial period of xs, in cells,
// from the peak of its zero-padded power spectrum. The mean is removed first.
// It returns 0 when xs carries no oscillation.
func DominantWavelength(xs []float64) float64 {
	if len(xs) < 4 {
		return 0
	}
	n := 1
	for n < 4*len(xs) {
		n <<= 1
	}
	padded := make([]float64, n)
	copy(padded, xs)
	mean := floats.Sum(xs) / float64(len(xs))
	floats.AddConst(-mean, padded[:len(xs)])

	spectrum := fft.FFTReal(padded)
	mags := make([]float64, n/2)
	for k := 1; k < len(mags); k++ {
		mags[k] = cmplx.Abs(spectrum[k])
	}
	k := floats.MaxIdx(mags)
	if k == 0 || mags[k] == 0 {
		return 0
	}
	return float64(n) / float64(k)
}

// PeakAbs returns max|x| over xs.
func PeakAbs(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return floats.Norm(xs, math.Inf(1))
}

func toFloat64(src []float32) []float64 {
	out := make([]float64, len(src))
	for i, v := range src {
		out[i] = float64(v)
	}
	return out
}
