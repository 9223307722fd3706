package wave

import (
	"fmt"
	"math"
	"strings"
)

// WeightEpsilon is the smallest accepted medium weight. Weights are divisors
// in the velocity update, so anything below it is rejected at setup.
const WeightEpsilon = 1e-6

// BorderMode selects the absorbing boundary policy.
type BorderMode uint8

const (
	// BorderDivide divides every height in the edge band by BorderCoef.
	BorderDivide BorderMode = iota
	// BorderSubtract removes Height/d^1.2 where height and velocity share a sign.
	BorderSubtract
	// BorderNone leaves the edge band alone.
	BorderNone
)

func (m BorderMode) String() string {
	switch m {
	case BorderDivide:
		return "divide"
	case BorderSubtract:
		return "subtract"
	case BorderNone:
		return "none"
	default:
		return fmt.Sprintf("BorderMode(%d)", uint8(m))
	}
}

// ParseBorderMode maps a flag value onto a BorderMode.
func ParseBorderMode(s string) (BorderMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "divide", "":
		return BorderDivide, nil
	case "subtract":
		return BorderSubtract, nil
	case "none", "off":
		return BorderNone, nil
	}
	return BorderDivide, fmt.Errorf("border mode %q: %w", s, ErrInvalidConfiguration)
}

// Backend selects where the propagation kernel runs.
type Backend uint8

const (
	BackendCPU Backend = iota
	BackendOpenCL
)

func (b Backend) String() string {
	if b == BackendOpenCL {
		return "opencl"
	}
	return "cpu"
}

// ParseBackend maps a flag value onto a Backend.
func ParseBackend(s string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cpu", "":
		return BackendCPU, nil
	case "opencl", "gpu":
		return BackendOpenCL, nil
	}
	return BackendCPU, fmt.Errorf("backend %q: %w", s, ErrInvalidConfiguration)
}

// Config describes a simulation. It is validated once by New.
type Config struct {
	Width  int
	Height int

	// Weight is an optional planar Width*Height*Channels medium map. A nil
	// slice means uniform weight 1.
	Weight []float32

	// Sources are injected every tick in slice order.
	Sources []Source

	BorderMode   BorderMode
	BorderRadius int
	BorderCoef   float64

	// Accumulate maintains the running |Height| average needed by
	// RenderAccumulate.
	Accumulate bool

	// Workers is the number of kernel goroutines; 0 selects runtime.NumCPU.
	Workers int

	Backend Backend
}

// DefaultConfig returns a 400×400 grid with a 40-cell divide band.
func DefaultConfig() Config {
	return Config{
		Width:        400,
		Height:       400,
		BorderMode:   BorderDivide,
		BorderRadius: 40,
		BorderCoef:   1.01,
	}
}

// Validate reports the first problem found in c, wrapped around one of
// ErrInvalidConfiguration, ErrOutOfBounds or ErrInvalidRegion.
func (c Config) Validate() error {
	if c.Width < 3 || c.Height < 3 {
		return fmt.Errorf("grid %dx%d needs at least 3x3 cells: %w", c.Width, c.Height, ErrInvalidConfiguration)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers %d: %w", c.Workers, ErrInvalidConfiguration)
	}
	if c.BorderRadius < 0 {
		return fmt.Errorf("border radius %d: %w", c.BorderRadius, ErrInvalidConfiguration)
	}
	switch c.BorderMode {
	case BorderDivide:
		if !(c.BorderCoef > 1) || math.IsInf(c.BorderCoef, 0) {
			return fmt.Errorf("border coefficient %v must be > 1: %w", c.BorderCoef, ErrInvalidConfiguration)
		}
	case BorderSubtract, BorderNone:
	default:
		return fmt.Errorf("border mode %d: %w", uint8(c.BorderMode), ErrInvalidConfiguration)
	}
	if c.Weight != nil {
		want := c.Width * c.Height * Channels
		if len(c.Weight) != want {
			return fmt.Errorf("weight map has %d values, want %d: %w", len(c.Weight), want, ErrInvalidConfiguration)
		}
		for i, wt := range c.Weight {
			if !(wt >= WeightEpsilon) || math.IsInf(float64(wt), 0) {
				plane := c.Width * c.Height
				x, y, ch := (i%plane)%c.Width, (i%plane)/c.Width, i/plane
				return fmt.Errorf("weight %v at (%d,%d) channel %d: %w", wt, x, y, ch, ErrInvalidConfiguration)
			}
		}
	}
	for i, s := range c.Sources {
		if err := s.Validate(c.Width, c.Height); err != nil {
			return fmt.Errorf("source %d: %w", i, err)
		}
	}
	return nil
}
