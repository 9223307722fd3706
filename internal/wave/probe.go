package wave

import (
	"fmt"
	"sync"
)

// DefaultProbeCapacity is the trace length used when a capacity of zero is
// requested.
const DefaultProbeCapacity = 4096

// Probe samples the height of one cell after every tick. Its trace is a
// bounded ring; readers on other goroutines (audio streams) are safe.
type Probe struct {
	X, Y    int
	Channel int

	mu    sync.Mutex
	trace []float32
	head  int
	count int
	total int
}

// NewProbe returns a probe recording at most capacity samples.
func NewProbe(x, y, channel, capacity int) *Probe {
	if capacity <= 0 {
		capacity = DefaultProbeCapacity
	}
	return &Probe{X: x, Y: y, Channel: channel, trace: make([]float32, capacity)}
}

func (p *Probe) validate(f *Field) error {
	if !f.InBounds(p.X, p.Y) {
		return fmt.Errorf("probe at (%d,%d) on %dx%d grid: %w", p.X, p.Y, f.Width, f.Height, ErrOutOfBounds)
	}
	if p.Channel < 0 || p.Channel >= Channels {
		return fmt.Errorf("probe channel %d: %w", p.Channel, ErrInvalidConfiguration)
	}
	return nil
}

func (p *Probe) record(f *Field) {
	v := f.HeightAt(p.X, p.Y, p.Channel)
	p.mu.Lock()
	p.trace[p.head] = v
	p.head = (p.head + 1) % len(p.trace)
	if p.count < len(p.trace) {
		p.count++
	}
	p.total++
	p.mu.Unlock()
}

// Latest returns the most recent sample, or 0 before the first tick.
func (p *Probe) Latest() float32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.count == 0 {
		return 0
	}
	return p.trace[(p.head-1+len(p.trace))%len(p.trace)]
}

// Trace returns the recorded samples, oldest first.
func (p *Probe) Trace() []float32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]float32, p.count)
	start := (p.head - p.count + len(p.trace)) % len(p.trace)
	for i := range out {
		out[i] = p.trace[(start+i)%len(p.trace)]
	}
	return out
}

// Recorded returns the number of samples taken since the probe was attached,
// including those that have rotated out of the trace.
func (p *Probe) Recorded() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.total
}
