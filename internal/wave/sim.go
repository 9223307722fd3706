package wave

import (
	"fmt"
	"runtime"
)

// AccumulateWindow is the effective length, in ticks, of the exponential
// running average maintained for RenderAccumulate.
const AccumulateWindow = 300

// gpuKernel advances the interior of a Field on a device. It must leave the
// new heights in f.next with the edge cells already carried over. A failed
// step may have written f.V; the caller restores it.
type gpuKernel interface {
	step(f *Field) error
	// resync forces V and W to be uploaded again on the next step.
	resync()
	deviceName() string
	close()
}

// Simulation owns a Field and advances it one tick at a time. It is not safe
// for concurrent use; rendering must happen between ticks.
type Simulation struct {
	cfg      Config
	field    *Field
	emitters []emitter
	pool     *kernelPool
	border   *absorber
	gpu      gpuKernel
	probes   []*Probe
	tick     int
	closed   bool

	// velSnap holds V from before the device step so a failed step can be
	// undone before the CPU kernel takes over.
	velSnap []float32
}

// New validates cfg and allocates a simulation. The returned error wraps
// ErrInvalidConfiguration, ErrOutOfBounds or ErrInvalidRegion.
func New(cfg Config) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	f := newField(cfg.Width, cfg.Height, cfg.Accumulate)
	if cfg.Weight != nil {
		copy(f.W, cfg.Weight)
	}
	workers := cfg.Workers
	if workers == 0 {
		workers = runtime.NumCPU()
	}
	if interior := cfg.Height - 2; workers > interior {
		workers = interior
	}

	s := &Simulation{cfg: cfg, field: f, border: newAbsorber(cfg)}
	s.emitters = make([]emitter, len(cfg.Sources))
	for i, src := range cfg.Sources {
		s.emitters[i] = newEmitter(src, f)
	}

	log := Logger()
	if cfg.Backend == BackendOpenCL {
		gpu, err := newOpenCLKernel(f)
		if err != nil {
			log.Warn("OpenCL unavailable, using CPU kernel", "err", err)
		} else {
			s.useGPU(gpu)
			log.Info("OpenCL kernel ready", "device", gpu.deviceName())
		}
	}
	if s.gpu == nil {
		s.pool = newKernelPool(f, workers)
		log.Info("CPU kernel ready", "workers", len(s.pool.masks))
	}
	log.Debug("simulation created",
		"width", cfg.Width, "height", cfg.Height,
		"sources", len(cfg.Sources),
		"border", cfg.BorderMode.String(), "radius", cfg.BorderRadius,
		"accumulate", cfg.Accumulate)
	return s, nil
}

// Field exposes the simulation state. Callers may read it between ticks and
// may edit H, V or W to perturb the run; W must stay ≥ WeightEpsilon. After
// editing V or W call Resync, otherwise the OpenCL backend keeps using its
// device copies.
func (s *Simulation) Field() *Field { return s.field }

// Resync makes the next tick pick up edits to V and W made through Field.
// It is a no-op on the CPU backend.
func (s *Simulation) Resync() {
	if s.gpu != nil {
		s.gpu.resync()
	}
}

func (s *Simulation) useGPU(k gpuKernel) {
	s.gpu = k
	s.velSnap = make([]float32, len(s.field.V))
}

// Config returns the configuration the simulation was built with.
func (s *Simulation) Config() Config { return s.cfg }

// TickCount returns the number of completed ticks. It is also the tick value
// handed to sources on the next Tick.
func (s *Simulation) TickCount() int { return s.tick }

// Backend reports which kernel is currently running.
func (s *Simulation) Backend() Backend {
	if s.gpu != nil {
		return BackendOpenCL
	}
	return BackendCPU
}

// AddProbe attaches p; it records from the next tick onwards.
func (s *Simulation) AddProbe(p *Probe) error {
	if err := p.validate(s.field); err != nil {
		return err
	}
	s.probes = append(s.probes, p)
	return nil
}

// Probes returns the attached probes in the order they were added.
func (s *Simulation) Probes() []*Probe { return s.probes }

// Tick advances the simulation by one step: sources are injected, the
// stencil propagates every interior cell, the boundary band is damped, the
// accumulator is folded and the probes sample the result.
func (s *Simulation) Tick() {
	if s.closed {
		return
	}
	f := s.field
	for _, e := range s.emitters {
		e.inject(f, s.tick)
	}
	s.propagate()
	s.border.apply(f)
	if f.A != nil {
		accumulate(f)
	}
	for _, p := range s.probes {
		p.record(f)
	}
	s.tick++
}

// Run performs n ticks.
func (s *Simulation) Run(n int) {
	for i := 0; i < n; i++ {
		s.Tick()
	}
}

func (s *Simulation) propagate() {
	f := s.field
	if s.gpu != nil {
		copy(s.velSnap, f.V)
		err := s.gpu.step(f)
		if err == nil {
			f.swap()
			return
		}
		Logger().Warn("OpenCL step failed, switching to CPU kernel", "tick", s.tick, "err", err)
		copy(f.V, s.velSnap)
		s.gpu.close()
		s.gpu, s.velSnap = nil, nil
		workers := s.cfg.Workers
		if workers == 0 {
			workers = runtime.NumCPU()
		}
		s.pool = newKernelPool(f, min(workers, f.Height-2))
	}
	s.pool.run()
	f.carryEdges()
	f.swap()
}

// accumulate folds |H| into the running average A = (A*299 + |H|)/300.
func accumulate(f *Field) {
	const keep = AccumulateWindow - 1
	for i, h := range f.H {
		if h < 0 {
			h = -h
		}
		f.A[i] = (f.A[i]*keep + h) / AccumulateWindow
	}
}

// Close releases worker goroutines and device resources. Tick is a no-op
// afterwards.
func (s *Simulation) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if s.pool != nil {
		s.pool.close()
	}
	if s.gpu != nil {
		s.gpu.close()
		s.gpu = nil
	}
	return nil
}

// String summarises the simulation for HUDs and logs.
func (s *Simulation) String() string {
	return fmt.Sprintf("%dx%d tick=%d backend=%s sources=%d", s.field.Width, s.field.Height, s.tick, s.Backend(), len(s.emitters))
}
