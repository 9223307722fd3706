package wave

import (
	"fmt"
	"math"
)

// SourceKind tags the variant held by a Source.
type SourceKind uint8

const (
	// SourcePoint drives a single cell with amp*sin(freq*tick).
	SourcePoint SourceKind = iota
	// SourceRect drives every cell of the half-open rectangle [X,X2)×[Y,Y2).
	SourceRect
	// SourceDirected adds a gaussian-windowed, spatially modulated beam.
	SourceDirected
	// SourceSampled drives a single cell from a recorded sample stream.
	SourceSampled
)

func (k SourceKind) String() string {
	switch k {
	case SourcePoint:
		return "point"
	case SourceRect:
		return "rect"
	case SourceDirected:
		return "directed"
	case SourceSampled:
		return "sampled"
	default:
		return fmt.Sprintf("SourceKind(%d)", uint8(k))
	}
}

// Source describes one emitter. Only the fields relevant to Kind are used.
// Sources are plain values; build them with Point, Rect, Directed or Sampled.
type Source struct {
	Kind SourceKind

	X, Y   int // anchor, or the first corner of a rect
	X2, Y2 int // exclusive far corner of a rect

	Freq float64
	Amp  float64

	// BeamSize is the gaussian width of a directed source. The injection
	// window spans BeamSize² cells on each side of the anchor.
	BeamSize int

	// Samples feeds a sampled source, one value per tick, looping.
	Samples []float32
}

// Point returns a hard-driven single-cell oscillator.
func Point(x, y int, freq, amp float64) Source {
	return Source{Kind: SourcePoint, X: x, Y: y, Freq: freq, Amp: amp}
}

// Rect returns a plane-wave emitter covering [x1,x2)×[y1,y2).
func Rect(x1, y1, x2, y2 int, freq, amp float64) Source {
	return Source{Kind: SourceRect, X: x1, Y: y1, X2: x2, Y2: y2, Freq: freq, Amp: amp}
}

// Directed returns an additive gaussian beam centred on (x, y).
func Directed(x, y int, freq, amp float64, size int) Source {
	return Source{Kind: SourceDirected, X: x, Y: y, Freq: freq, Amp: amp, BeamSize: size}
}

// Sampled returns a single-cell emitter replaying samples scaled by amp.
func Sampled(x, y int, amp float64, samples []float32) Source {
	return Source{Kind: SourceSampled, X: x, Y: y, Amp: amp, Samples: samples}
}

// Validate checks the source against a width×height grid.
func (s Source) Validate(width, height int) error {
	if math.IsNaN(s.Freq) || math.IsInf(s.Freq, 0) || math.IsNaN(s.Amp) || math.IsInf(s.Amp, 0) {
		return fmt.Errorf("%s source frequency %v amplitude %v: %w", s.Kind, s.Freq, s.Amp, ErrInvalidConfiguration)
	}
	switch s.Kind {
	case SourcePoint, SourceDirected, SourceSampled:
		if !inGrid(s.X, s.Y, width, height) {
			return fmt.Errorf("%s source at (%d,%d) on %dx%d grid: %w", s.Kind, s.X, s.Y, width, height, ErrOutOfBounds)
		}
	case SourceRect:
		if s.X >= s.X2 || s.Y >= s.Y2 {
			return fmt.Errorf("rect source [%d,%d)x[%d,%d): %w", s.X, s.X2, s.Y, s.Y2, ErrInvalidRegion)
		}
		if s.X < 0 || s.Y < 0 || s.X >= width || s.Y >= height || s.X2 > width || s.Y2 > height {
			return fmt.Errorf("rect source [%d,%d)x[%d,%d) on %dx%d grid: %w", s.X, s.X2, s.Y, s.Y2, width, height, ErrOutOfBounds)
		}
	default:
		return fmt.Errorf("unknown source kind %d: %w", uint8(s.Kind), ErrInvalidConfiguration)
	}
	if s.Kind == SourceDirected && s.BeamSize < 1 {
		return fmt.Errorf("directed source beam size %d: %w", s.BeamSize, ErrInvalidConfiguration)
	}
	if s.Kind == SourceSampled && len(s.Samples) == 0 {
		return fmt.Errorf("sampled source without samples: %w", ErrInvalidConfiguration)
	}
	return nil
}

// Inject applies the source to f for the given tick. Point, rect and sampled
// sources overwrite heights; directed sources add to them.
func (s Source) Inject(f *Field, tick int) {
	newEmitter(s, f).inject(f, tick)
}

// emitter pairs a source with whatever it can precompute for a fixed grid.
type emitter struct {
	src  Source
	beam *beamFootprint
}

func newEmitter(s Source, f *Field) emitter {
	e := emitter{src: s}
	if s.Kind == SourceDirected {
		e.beam = newBeamFootprint(s, f.Width, f.Height)
	}
	return e
}

func (e emitter) inject(f *Field, tick int) {
	s := e.src
	switch s.Kind {
	case SourcePoint:
		f.SetHeight(s.X, s.Y, float32(s.Amp*math.Sin(s.Freq*float64(tick))))
	case SourceRect:
		v := float32(s.Amp * math.Sin(s.Freq*float64(tick)))
		plane := f.Plane()
		for c := 0; c < Channels; c++ {
			for y := s.Y; y < s.Y2; y++ {
				row := f.H[c*plane+y*f.Width : c*plane+(y+1)*f.Width]
				for x := s.X; x < s.X2; x++ {
					row[x] = v
				}
			}
		}
	case SourceDirected:
		e.beam.add(f, s.Amp*math.Sin(0.5*s.Freq*float64(tick)))
	case SourceSampled:
		f.SetHeight(s.X, s.Y, float32(s.Amp)*s.Samples[tick%len(s.Samples)])
	}
}
