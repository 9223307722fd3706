package wave

import (
	"fmt"
	"image"
	"math"
	"strings"

	"github.com/crazy3lf/colorconv"
)

// RenderMode selects how heights map to display intensity.
type RenderMode uint8

const (
	// RenderDirect shows clip(H*255): only the positive lobe is visible.
	RenderDirect RenderMode = iota
	// RenderAbsolute shows clip(|H|*255), revealing both lobes.
	RenderAbsolute
	// RenderAccumulate shows clip(A*255), the long-exposure average of |H|.
	RenderAccumulate
)

func (m RenderMode) String() string {
	switch m {
	case RenderDirect:
		return "direct"
	case RenderAbsolute:
		return "absolute"
	case RenderAccumulate:
		return "accumulate"
	default:
		return fmt.Sprintf("RenderMode(%d)", uint8(m))
	}
}

// ParseRenderMode maps a flag value onto a RenderMode.
func ParseRenderMode(s string) (RenderMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "direct", "":
		return RenderDirect, nil
	case "absolute", "abs":
		return RenderAbsolute, nil
	case "accumulate", "acc":
		return RenderAccumulate, nil
	}
	return RenderDirect, fmt.Errorf("render mode %q: %w", s, ErrInvalidConfiguration)
}

// Intensity converts a field value into a clipped display byte.
func Intensity(v float32) uint8 {
	s := v * 255
	if !(s > 0) {
		return 0
	}
	if s >= 255 {
		return 255
	}
	return uint8(s)
}

// Renderer turns a Field into RGBA8 pixels. Channel 0, 1 and 2 become red,
// green and blue. The renderer only reads the field.
type Renderer struct {
	width, height int
	pix           []byte
}

// NewRenderer allocates a renderer for a width×height field.
func NewRenderer(width, height int) *Renderer {
	return &Renderer{width: width, height: height, pix: make([]byte, width*height*4)}
}

// RGBA renders f with the given mode and returns the internal pixel buffer,
// which is reused by the next call. Accumulate mode falls back to absolute
// when f carries no accumulation grid.
func (r *Renderer) RGBA(f *Field, mode RenderMode) []byte {
	if f.Width != r.width || f.Height != r.height {
		return nil
	}
	src := f.H
	abs := false
	switch mode {
	case RenderAbsolute:
		abs = true
	case RenderAccumulate:
		if f.A != nil {
			src = f.A
		} else {
			abs = true
		}
	}
	plane := f.Plane()
	for c := 0; c < Channels; c++ {
		vals := src[c*plane : (c+1)*plane]
		for i, v := range vals {
			if abs && v < 0 {
				v = -v
			}
			r.pix[i*4+c] = Intensity(v)
		}
	}
	for i := 0; i < plane; i++ {
		r.pix[i*4+3] = 255
	}
	return r.pix
}

// Image renders f and wraps the result as an image. The image shares the
// renderer's buffer.
func (r *Renderer) Image(f *Field, mode RenderMode) *image.RGBA {
	pix := r.RGBA(f, mode)
	if pix == nil {
		return nil
	}
	return &image.RGBA{Pix: pix, Stride: 4 * r.width, Rect: image.Rect(0, 0, r.width, r.height)}
}

// OverlayStyle selects how the weight overlay is coloured.
type OverlayStyle uint8

const (
	// OverlayMono scales (W-1) per channel and clips it.
	OverlayMono OverlayStyle = iota
	// OverlayHue maps the mean weight of a cell onto a hue.
	OverlayHue
)

const (
	// OverlayGain is the (W-1) scale of the mono overlay.
	OverlayGain = 100000
	// OverlayAlpha is the alpha byte used for cells that differ from W=1.
	OverlayAlpha = 10
)

// WeightOverlay renders the medium as a translucent RGBA8 layer. Cells with
// unit weight stay fully transparent.
func WeightOverlay(f *Field, style OverlayStyle) []byte {
	plane := f.Plane()
	pix := make([]byte, plane*4)
	maxW := float32(1)
	if style == OverlayHue {
		for _, wt := range f.W {
			if wt > maxW && !math.IsInf(float64(wt), 0) {
				maxW = wt
			}
		}
	}
	for i := 0; i < plane; i++ {
		var sum float32
		uniform := true
		for c := 0; c < Channels; c++ {
			wt := f.W[c*plane+i]
			sum += wt
			if wt != 1 {
				uniform = false
			}
		}
		if uniform {
			continue
		}
		base := i * 4
		switch style {
		case OverlayHue:
			// log scale keeps mirror-grade weights (1e7) from flattening lenses.
			t := math.Log(float64(sum/Channels)) / math.Log(float64(maxW)+1e-9)
			t = math.Max(0, math.Min(1, t))
			r, g, b, err := colorconv.HSVToRGB(240*(1-t), 1, 1)
			if err != nil {
				continue
			}
			pix[base], pix[base+1], pix[base+2] = r, g, b
		default:
			for c := 0; c < Channels; c++ {
				pix[base+c] = Intensity((f.W[c*plane+i] - 1) * OverlayGain / 255)
			}
		}
		pix[base+3] = OverlayAlpha
	}
	return pix
}
