package wave

import (
	"errors"
	"math"
	"slices"
	"testing"
)

func quietConfig(w, h int) Config {
	cfg := DefaultConfig()
	cfg.Width, cfg.Height = w, h
	cfg.BorderMode = BorderNone
	cfg.Workers = 1
	return cfg
}

func mustNew(t *testing.T, cfg Config) *Simulation {
	t.Helper()
	sim, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { sim.Close() })
	return sim
}

func TestNewFieldDefaults(t *testing.T) {
	f := newField(4, 3, false)
	if len(f.H) != 4*3*Channels || len(f.V) != len(f.H) || len(f.W) != len(f.H) {
		t.Fatalf("unexpected buffer sizes: H=%d V=%d W=%d", len(f.H), len(f.V), len(f.W))
	}
	for i, w := range f.W {
		if w != 1 {
			t.Fatalf("expected unit weight at %d, got %v", i, w)
		}
	}
	if f.A != nil {
		t.Fatalf("expected no accumulation grid without accumulate")
	}
	if got := f.Index(3, 2, 2); got != 2*12+2*4+3 {
		t.Fatalf("unexpected planar index %d", got)
	}
}

func TestConfigurationRejection(t *testing.T) {
	uniform := func(cfg Config, v float32) []float32 {
		w := make([]float32, cfg.Width*cfg.Height*Channels)
		for i := range w {
			w[i] = v
		}
		return w
	}
	cases := []struct {
		name string
		edit func(*Config)
		want error
	}{
		{"tiny grid", func(c *Config) { c.Width = 2 }, ErrInvalidConfiguration},
		{"negative width", func(c *Config) { c.Width = -5 }, ErrInvalidConfiguration},
		{"point outside", func(c *Config) { c.Sources = []Source{Point(20, 5, 0.2, 1)} }, ErrOutOfBounds},
		{"point negative", func(c *Config) { c.Sources = []Source{Point(-1, 5, 0.2, 1)} }, ErrOutOfBounds},
		{"reversed rect", func(c *Config) { c.Sources = []Source{Rect(8, 2, 3, 6, 0.2, 1)} }, ErrInvalidRegion},
		{"empty rect", func(c *Config) { c.Sources = []Source{Rect(3, 2, 8, 2, 0.2, 1)} }, ErrInvalidRegion},
		{"rect past edge", func(c *Config) { c.Sources = []Source{Rect(3, 2, 21, 6, 0.2, 1)} }, ErrOutOfBounds},
		{"directed outside", func(c *Config) { c.Sources = []Source{Directed(5, 30, 1, 1, 3)} }, ErrOutOfBounds},
		{"directed without beam", func(c *Config) { c.Sources = []Source{Directed(5, 5, 1, 1, 0)} }, ErrInvalidConfiguration},
		{"sampled without samples", func(c *Config) { c.Sources = []Source{Sampled(5, 5, 1, nil)} }, ErrInvalidConfiguration},
		{"nan frequency", func(c *Config) { c.Sources = []Source{Point(5, 5, math.NaN(), 1)} }, ErrInvalidConfiguration},
		{"zero weight", func(c *Config) { c.Weight = uniform(*c, 0) }, ErrInvalidConfiguration},
		{"negative weight", func(c *Config) { c.Weight = uniform(*c, -1) }, ErrInvalidConfiguration},
		{"nan weight", func(c *Config) { c.Weight = uniform(*c, float32(math.NaN())) }, ErrInvalidConfiguration},
		{"short weight map", func(c *Config) { c.Weight = make([]float32, 10) }, ErrInvalidConfiguration},
		{"divide coefficient at one", func(c *Config) { c.BorderMode = BorderDivide; c.BorderCoef = 1 }, ErrInvalidConfiguration},
		{"negative radius", func(c *Config) { c.BorderRadius = -1 }, ErrInvalidConfiguration},
		{"negative workers", func(c *Config) { c.Workers = -2 }, ErrInvalidConfiguration},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := quietConfig(20, 10)
			tc.edit(&cfg)
			sim, err := New(cfg)
			if err == nil {
				sim.Close()
				t.Fatalf("expected %v, got nil", tc.want)
			}
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestRectMayTouchFarEdge(t *testing.T) {
	cfg := quietConfig(20, 10)
	cfg.Sources = []Source{Rect(0, 0, 20, 10, 0.2, 1)}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected a rect covering the whole grid to be valid, got %v", err)
	}
}

func TestNoSpontaneousExcitation(t *testing.T) {
	sim := mustNew(t, quietConfig(100, 100))
	sim.Run(50)
	for i, h := range sim.Field().H {
		if h != 0 {
			t.Fatalf("expected all heights zero after 50 quiet ticks, index %d holds %v", i, h)
		}
	}
	if sim.TickCount() != 50 {
		t.Fatalf("expected tick count 50, got %d", sim.TickCount())
	}
}

func TestPointSourceFirstTicks(t *testing.T) {
	cfg := quietConfig(100, 100)
	cfg.Sources = []Source{Point(50, 50, 0.2, 1)}
	sim := mustNew(t, cfg)
	f := sim.Field()

	sim.Tick()
	for i, h := range f.H {
		if h != 0 {
			t.Fatalf("expected sin(0) injection to leave the field at rest, index %d holds %v", i, h)
		}
	}

	sim.Tick()
	if got := f.HeightAt(50, 50, 0); got != 0 {
		t.Fatalf("expected the source cell to relax to 0 after tick 1, got %v", got)
	}
	want := math.Sin(0.2) / 4
	for _, p := range [][2]int{{51, 50}, {49, 50}, {50, 51}, {50, 49}} {
		for c := 0; c < Channels; c++ {
			if got := float64(f.HeightAt(p[0], p[1], c)); math.Abs(got-want) > 1e-6 {
				t.Fatalf("expected neighbour %v channel %d to hold %.6f, got %.6f", p, c, want, got)
			}
		}
	}
	if got := f.HeightAt(52, 50, 0); got != 0 {
		t.Fatalf("expected cells two steps away to be untouched after one propagation, got %v", got)
	}
}

func TestLastRegisteredSourceWins(t *testing.T) {
	cfg := quietConfig(20, 20)
	cfg.Sources = []Source{
		Point(10, 10, 1, 1),
		Rect(8, 8, 13, 13, 1, 0.5),
	}
	f := newField(20, 20, false)
	for _, src := range cfg.Sources {
		src.Inject(f, 1)
	}
	want := float32(0.5 * math.Sin(1))
	if got := f.HeightAt(10, 10, 0); got != want {
		t.Fatalf("expected rect to overwrite point, got %v want %v", got, want)
	}

	f = newField(20, 20, false)
	for _, src := range []Source{cfg.Sources[1], cfg.Sources[0]} {
		src.Inject(f, 1)
	}
	if got, want := f.HeightAt(10, 10, 0), float32(math.Sin(1)); got != want {
		t.Fatalf("expected point to overwrite rect, got %v want %v", got, want)
	}
}

func TestDirectedSourceIsAdditiveAndClipped(t *testing.T) {
	f := newField(30, 30, false)
	f.SetHeight(3, 3, 0.25)
	src := Directed(3, 3, 1, 1, 3)
	src.Inject(f, 1)
	gain := math.Sin(0.5) * math.Cos(3) / 3
	want := 0.25 + gain
	if got := float64(f.HeightAt(3, 3, 1)); math.Abs(got-want) > 1e-6 {
		t.Fatalf("expected additive beam at the anchor %.6f, got %.6f", want, got)
	}
	// window spans size² = 9 cells on either side and is clipped at 0.
	if got := f.HeightAt(12, 3, 0); got != 0 {
		t.Fatalf("expected cells outside the window untouched, got %v", got)
	}
	if got := f.HeightAt(11, 3, 0); got == 0 {
		t.Fatalf("expected the window edge to be reached")
	}
}

func TestSampledSourceLoops(t *testing.T) {
	f := newField(10, 10, false)
	src := Sampled(4, 4, 2, []float32{0.1, -0.2, 0.3})
	for tick, want := range []float32{0.2, -0.4, 0.6, 0.2} {
		src.Inject(f, tick)
		if got := f.HeightAt(4, 4, 2); math.Abs(float64(got-want)) > 1e-7 {
			t.Fatalf("tick %d: expected %v, got %v", tick, want, got)
		}
	}
}

func TestEdgeCellsOnlyChangeThroughSourcesAndBorder(t *testing.T) {
	cfg := quietConfig(16, 16)
	sim := mustNew(t, cfg)
	f := sim.Field()
	f.SetHeight(1, 5, 1)
	f.SetHeight(0, 7, 0.5)
	sim.Run(10)
	if got := f.HeightAt(0, 7, 0); got != 0.5 {
		t.Fatalf("expected edge cell to keep its value without absorption, got %v", got)
	}
	if got := f.HeightAt(0, 5, 0); got != 0 {
		t.Fatalf("expected untouched edge cell to stay zero, got %v", got)
	}
}

func TestDivideBorderTouchesOnlyBand(t *testing.T) {
	cfg := quietConfig(12, 10)
	cfg.BorderMode = BorderDivide
	cfg.BorderRadius = 3
	cfg.BorderCoef = 2
	a := newAbsorber(cfg)
	f := newField(12, 10, false)
	for i := range f.H {
		f.H[i] = 1
	}
	a.apply(f)
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			want := float32(1)
			if f.edgeDistance(x, y) < 3 {
				want = 0.5
			}
			for c := 0; c < Channels; c++ {
				if got := f.HeightAt(x, y, c); got != want {
					t.Fatalf("cell (%d,%d) channel %d: expected %v, got %v", x, y, c, want, got)
				}
			}
		}
	}
}

func TestSubtractBorderNeverFlipsSign(t *testing.T) {
	cfg := quietConfig(10, 10)
	cfg.BorderMode = BorderSubtract
	cfg.BorderRadius = 4
	a := newAbsorber(cfg)
	f := newField(10, 10, false)
	for i := range f.H {
		if i%2 == 0 {
			f.H[i], f.V[i] = 0.8, 0.1
		} else {
			f.H[i], f.V[i] = -0.8, 0.1
		}
	}
	before := slices.Clone(f.H)
	a.apply(f)
	for i, h := range f.H {
		x, y := (i%f.Plane())%f.Width, (i%f.Plane())/f.Width
		d := f.edgeDistance(x, y)
		switch {
		case d >= 4 || before[i]*f.V[i] <= 0:
			if h != before[i] {
				t.Fatalf("cell (%d,%d): expected untouched value %v, got %v", x, y, before[i], h)
			}
		default:
			if h*before[i] < 0 || math.Abs(float64(h)) > math.Abs(float64(before[i])) {
				t.Fatalf("cell (%d,%d): damping flipped or grew %v -> %v", x, y, before[i], h)
			}
		}
	}
	// d=0 and d=1 remove the whole height; (0,4) is an even index.
	if got := f.HeightAt(0, 4, 0); got != 0 {
		t.Fatalf("expected full removal on the edge, got %v", got)
	}
}

func TestWorkerCountDoesNotChangeResult(t *testing.T) {
	build := func(workers int) []float32 {
		cfg := quietConfig(64, 48)
		cfg.BorderMode = BorderDivide
		cfg.BorderRadius = 6
		cfg.BorderCoef = 1.05
		cfg.Workers = workers
		cfg.Sources = []Source{Point(20, 20, 0.3, 1), Directed(40, 30, 1, 1, 3)}
		sim := mustNew(t, cfg)
		sim.Run(80)
		return slices.Clone(sim.Field().H)
	}
	single := build(1)
	for _, workers := range []int{2, 5, 0} {
		if got := build(workers); !slices.Equal(single, got) {
			t.Fatalf("expected %d workers to match the single-worker result", workers)
		}
	}
}

func TestAssignRowsCoversInterior(t *testing.T) {
	masks := assignRows(3, 10)
	seen := map[int]bool{}
	for _, m := range masks {
		for _, y := range m.rows {
			if seen[y] {
				t.Fatalf("row %d assigned twice", y)
			}
			seen[y] = true
		}
	}
	for y := 1; y < 9; y++ {
		if !seen[y] {
			t.Fatalf("interior row %d not assigned", y)
		}
	}
	if seen[0] || seen[9] {
		t.Fatalf("edge rows must not be assigned")
	}
}

func TestRenderPurityAndModes(t *testing.T) {
	cfg := quietConfig(32, 32)
	cfg.Accumulate = true
	cfg.Sources = []Source{Point(16, 16, 0.4, 1)}
	sim := mustNew(t, cfg)
	sim.Run(25)
	f := sim.Field()
	h, v, w, a := slices.Clone(f.H), slices.Clone(f.V), slices.Clone(f.W), slices.Clone(f.A)

	r := NewRenderer(32, 32)
	for _, mode := range []RenderMode{RenderDirect, RenderAbsolute, RenderAccumulate} {
		first := slices.Clone(r.RGBA(f, mode))
		second := r.RGBA(f, mode)
		if !slices.Equal(first, second) {
			t.Fatalf("%s: expected identical output on repeated rendering", mode)
		}
	}
	if !slices.Equal(h, f.H) || !slices.Equal(v, f.V) || !slices.Equal(w, f.W) || !slices.Equal(a, f.A) {
		t.Fatalf("rendering modified the field")
	}

	f.SetHeight(3, 3, -0.5)
	if px := r.RGBA(f, RenderDirect); px[(3*32+3)*4] != 0 {
		t.Fatalf("expected negative heights to render black in direct mode")
	}
	if px := r.RGBA(f, RenderAbsolute); px[(3*32+3)*4] != 127 || px[(3*32+3)*4+3] != 255 {
		t.Fatalf("expected |-0.5| to render as 127 with opaque alpha, got %v", px[(3*32+3)*4:(3*32+3)*4+4])
	}
	img := r.Image(f, RenderAbsolute)
	if img.Bounds().Dx() != 32 || img.RGBAAt(3, 3).R != 127 {
		t.Fatalf("unexpected image rendering %v", img.RGBAAt(3, 3))
	}
}

func TestAccumulateFallsBackToAbsolute(t *testing.T) {
	f := newField(8, 8, false)
	f.SetHeight(2, 2, -1)
	r := NewRenderer(8, 8)
	abs := slices.Clone(r.RGBA(f, RenderAbsolute))
	if got := r.RGBA(f, RenderAccumulate); !slices.Equal(abs, got) {
		t.Fatalf("expected accumulate without an accumulation grid to match absolute")
	}
}

func TestIntensityClips(t *testing.T) {
	cases := map[float32]uint8{-1: 0, 0: 0, 0.5: 127, 1: 255, 3: 255, float32(math.NaN()): 0}
	for in, want := range cases {
		if got := Intensity(in); got != want {
			t.Fatalf("Intensity(%v): expected %d, got %d", in, want, got)
		}
	}
}

func TestWeightOverlay(t *testing.T) {
	f := newField(4, 4, false)
	plane := f.Plane()
	f.W[5] = 1.001
	f.W[plane+5] = 1.001
	f.W[2*plane+5] = 1.001
	pix := WeightOverlay(f, OverlayMono)
	if pix[3] != 0 {
		t.Fatalf("expected unit-weight cells to stay transparent")
	}
	if pix[5*4] != 100 || pix[5*4+3] != OverlayAlpha {
		t.Fatalf("expected (W-1)*1e5 = 100 with alpha %d, got %v", OverlayAlpha, pix[5*4:5*4+4])
	}
	hue := WeightOverlay(f, OverlayHue)
	if hue[5*4+3] != OverlayAlpha || hue[3] != 0 {
		t.Fatalf("expected hue overlay to mark only the weighted cell, got %v", hue[5*4:5*4+4])
	}
}

func TestProbeTraceIsBounded(t *testing.T) {
	cfg := quietConfig(20, 20)
	cfg.Sources = []Source{Point(10, 10, 0.5, 1)}
	sim := mustNew(t, cfg)
	p := NewProbe(10, 10, 0, 8)
	if err := sim.AddProbe(p); err != nil {
		t.Fatalf("AddProbe: %v", err)
	}
	if err := sim.AddProbe(NewProbe(30, 1, 0, 0)); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("expected out-of-bounds probe to be rejected, got %v", err)
	}
	sim.Run(20)
	trace := p.Trace()
	if len(trace) != 8 || p.Recorded() != 20 {
		t.Fatalf("expected 8 retained of 20 samples, got %d of %d", len(trace), p.Recorded())
	}
	if trace[len(trace)-1] != p.Latest() || p.Latest() != sim.Field().HeightAt(10, 10, 0) {
		t.Fatalf("expected latest sample to match the field")
	}
}

func TestClosedSimulationIgnoresTicks(t *testing.T) {
	cfg := quietConfig(10, 10)
	cfg.Workers = 3
	sim, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	sim.Run(3)
	if err := sim.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	sim.Tick()
	if sim.TickCount() != 3 {
		t.Fatalf("expected ticks to stop after Close, got %d", sim.TickCount())
	}
}

// failingKernel runs the CPU stencil on the calling goroutine for ok steps,
// then advances V and reports an error.
type failingKernel struct {
	ok      int
	steps   int
	resyncs int
	closed  bool
}

func (k *failingKernel) step(f *Field) error {
	k.steps++
	rows := assignRows(1, f.Height)[0].rows
	propagateRows(f, rows)
	if k.steps > k.ok {
		return errors.New("device lost")
	}
	f.carryEdges()
	return nil
}

func (k *failingKernel) resync()            { k.resyncs++ }
func (k *failingKernel) deviceName() string { return "fake" }
func (k *failingKernel) close()             { k.closed = true }

func withKernel(t *testing.T, cfg Config, k gpuKernel) *Simulation {
	t.Helper()
	sim := mustNew(t, cfg)
	sim.pool.close()
	sim.pool = nil
	sim.useGPU(k)
	return sim
}

func TestDeviceFailureFallsBackWithoutDoubleStep(t *testing.T) {
	cfg := quietConfig(24, 20)
	cfg.BorderMode = BorderDivide
	cfg.BorderRadius = 4
	cfg.Sources = []Source{Point(12, 10, 0.3, 1), Directed(6, 6, 0.8, 0.5, 2)}

	ref := mustNew(t, cfg)
	ref.Run(20)

	k := &failingKernel{ok: 10}
	sim := withKernel(t, cfg, k)
	if sim.Backend() != BackendOpenCL {
		t.Fatalf("expected the device kernel to be active, got %v", sim.Backend())
	}
	sim.Run(20)

	if sim.Backend() != BackendCPU {
		t.Fatalf("expected fallback to the CPU kernel, got %v", sim.Backend())
	}
	if !k.closed || k.steps != 11 {
		t.Fatalf("expected the device to be closed after its first failure, steps=%d closed=%v", k.steps, k.closed)
	}
	if !slices.Equal(sim.Field().V, ref.Field().V) {
		t.Fatalf("velocity diverged from the CPU run after fallback")
	}
	if !slices.Equal(sim.Field().H, ref.Field().H) {
		t.Fatalf("heights diverged from the CPU run after fallback")
	}
}

func TestResyncReachesDeviceKernel(t *testing.T) {
	k := &failingKernel{ok: 100}
	sim := withKernel(t, quietConfig(8, 8), k)
	sim.Resync()
	if k.resyncs != 1 {
		t.Fatalf("expected Resync to reach the device kernel, got %d calls", k.resyncs)
	}

	cpu := mustNew(t, quietConfig(8, 8))
	cpu.Resync()
}

func TestParseHelpers(t *testing.T) {
	if m, err := ParseBorderMode("Subtract"); err != nil || m != BorderSubtract {
		t.Fatalf("expected subtract, got %v %v", m, err)
	}
	if _, err := ParseBorderMode("bounce"); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("expected unknown border mode to be rejected, got %v", err)
	}
	if b, err := ParseBackend("gpu"); err != nil || b != BackendOpenCL {
		t.Fatalf("expected opencl backend, got %v %v", b, err)
	}
	if m, err := ParseRenderMode("acc"); err != nil || m != RenderAccumulate {
		t.Fatalf("expected accumulate render mode, got %v %v", m, err)
	}
}

func TestSampledCellMustBeOnTheGrid(t *testing.T) {
	sim := mustNew(t, quietConfig(12, 9))
	f := sim.Field()
	if !f.InBounds(11, 8) || f.InBounds(12, 0) || f.InBounds(0, -1) {
		t.Fatalf("unexpected InBounds results on a 12x9 grid")
	}
	if err := sim.AddProbe(NewProbe(12, 4, 0, 4)); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("expected ErrOutOfBounds for an off-grid probe, got %v", err)
	}
	if err := sim.AddProbe(NewProbe(3, 4, Channels, 4)); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration for a bad channel, got %v", err)
	}
	p := NewProbe(3, 4, 1, 4)
	if err := sim.AddProbe(p); err != nil {
		t.Fatalf("AddProbe: %v", err)
	}
	if got := sim.Probes(); len(got) != 1 || got[0] != p {
		t.Fatalf("expected only the valid probe to be attached, got %v", got)
	}
	if sim.Config().Width != 12 {
		t.Fatalf("expected Config to return the construction config")
	}
}
