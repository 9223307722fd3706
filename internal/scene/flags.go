package scene

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"wavelab/internal/wave"
)

// Overrides collects repeated -set key=value flags. It implements
// flag.Value; pass the collected map to FromMap.
type Overrides map[string]string

func (o Overrides) String() string {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+o[k])
	}
	return strings.Join(parts, ",")
}

// Set accepts "key=value" or a comma separated list of them.
func (o Overrides) Set(v string) error {
	for _, item := range strings.Split(v, ",") {
		key, value, ok := strings.Cut(item, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return fmt.Errorf("expected key=value, got %q", item)
		}
		o[key] = strings.TrimSpace(value)
	}
	return nil
}

// OverrideKeys documents the keys FromMap understands.
const OverrideKeys = "w,h,scale,freq,amp,beam,border_radius,border_coef,border_mode,accumulate,dispersion,seed,workers,backend"

// ParseCell reads "x,y" as a grid cell. An empty value selects the centre.
func ParseCell(v string, w, h int) (int, int, error) {
	if strings.TrimSpace(v) == "" {
		return w / 2, h / 2, nil
	}
	xs, ys, ok := strings.Cut(v, ",")
	if !ok {
		return 0, 0, fmt.Errorf("expected x,y, got %q", v)
	}
	x, err := strconv.Atoi(strings.TrimSpace(xs))
	if err != nil {
		return 0, 0, fmt.Errorf("cell x: %w", err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(ys))
	if err != nil {
		return 0, 0, fmt.Errorf("cell y: %w", err)
	}
	if x < 0 || x >= w || y < 0 || y >= h {
		return 0, 0, fmt.Errorf("(%d,%d) outside %dx%d grid: %w", x, y, w, h, wave.ErrOutOfBounds)
	}
	return x, y, nil
}
