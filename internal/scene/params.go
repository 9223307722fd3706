package scene

import (
	"strconv"
	"strings"

	"wavelab/internal/wave"
)

// DefaultDispersion is added per channel index to every non-unit weight so
// that the three channels refract slightly differently.
const DefaultDispersion = 0.065

// Params holds the overrides a driver can apply to any scene. Zero values
// mean "use the scene's own choice".
type Params struct {
	// Width and Height force the grid size; geometry is stretched to fit.
	Width  int
	Height int
	// Scale multiplies the scene's base size when Width/Height are unset.
	Scale float64

	Freq float64
	Amp  float64
	Beam int

	BorderMode   wave.BorderMode
	BorderRadius int
	BorderCoef   float64

	// Accumulate overrides the scene default when non-nil.
	Accumulate *bool

	Dispersion float64
	Seed       int64

	Workers int
	Backend wave.Backend
}

// DefaultParams returns half-size scenes with the stock medium dispersion.
func DefaultParams() Params {
	return Params{
		Scale:      0.5,
		BorderMode: wave.BorderDivide,
		BorderCoef: 1.01,
		Dispersion: DefaultDispersion,
		Seed:       1,
	}
}

// FromMap populates Params from flag-style key/value pairs. Unknown keys and
// unparsable values are ignored.
func FromMap(cfg map[string]string) Params {
	p := DefaultParams()
	if cfg == nil {
		return p
	}
	if v, ok := cfg["w"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			p.Width = parsed
		}
	}
	if v, ok := cfg["h"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			p.Height = parsed
		}
	}
	if v, ok := cfg["scale"]; ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed > 0 {
			p.Scale = parsed
		}
	}
	if v, ok := cfg["freq"]; ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed > 0 {
			p.Freq = parsed
		}
	}
	if v, ok := cfg["amp"]; ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed != 0 {
			p.Amp = parsed
		}
	}
	if v, ok := cfg["beam"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			p.Beam = parsed
		}
	}
	if v, ok := cfg["border_mode"]; ok {
		if parsed, err := wave.ParseBorderMode(v); err == nil {
			p.BorderMode = parsed
		}
	}
	if v, ok := cfg["border_radius"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			p.BorderRadius = parsed
		}
	}
	if v, ok := cfg["border_coef"]; ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed > 1 {
			p.BorderCoef = parsed
		}
	}
	if v, ok := cfg["accumulate"]; ok {
		if parsed, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			p.Accumulate = &parsed
		}
	}
	if v, ok := cfg["dispersion"]; ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed >= 0 {
			p.Dispersion = parsed
		}
	}
	if v, ok := cfg["seed"]; ok {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			p.Seed = parsed
		}
	}
	if v, ok := cfg["workers"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			p.Workers = parsed
		}
	}
	if v, ok := cfg["backend"]; ok {
		if parsed, err := wave.ParseBackend(v); err == nil {
			p.Backend = parsed
		}
	}
	return p
}
