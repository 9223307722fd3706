package wave

// Channels is the number of independent scalar sub-fields carried by every
// cell. Each channel maps to one colour component when rendered.
const Channels = 3

// Field stores the simulation grids. All slices use a planar layout: the
// value for cell (x, y) on channel c lives at c*Width*Height + y*Width + x.
type Field struct {
	Width, Height int

	H []float32 // displacement
	V []float32 // rate of change of H
	W []float32 // propagation resistance, never below WeightEpsilon

	// A holds the running average of |H|. It is nil unless accumulation
	// was requested in the Config.
	A []float32

	// next receives the advanced heights during propagation and is swapped
	// with H once every row has been processed.
	next []float32
}

// newField allocates a Field with zero height/velocity and unit weight.
func newField(width, height int, accumulate bool) *Field {
	size := width * height * Channels
	f := &Field{
		Width:  width,
		Height: height,
		H:      make([]float32, size),
		V:      make([]float32, size),
		W:      make([]float32, size),
		next:   make([]float32, size),
	}
	for i := range f.W {
		f.W[i] = 1
	}
	if accumulate {
		f.A = make([]float32, size)
	}
	return f
}

// Plane returns the number of values in one channel.
func (f *Field) Plane() int { return f.Width * f.Height }

// Index returns the slice index for (x, y) on channel c.
func (f *Field) Index(x, y, c int) int {
	return c*f.Width*f.Height + y*f.Width + x
}

// InBounds reports whether (x, y) addresses a cell of the grid.
func (f *Field) InBounds(x, y int) bool {
	return inGrid(x, y, f.Width, f.Height)
}

func inGrid(x, y, width, height int) bool {
	return x >= 0 && x < width && y >= 0 && y < height
}

// HeightAt returns the displacement at (x, y) on channel c.
func (f *Field) HeightAt(x, y, c int) float32 {
	return f.H[f.Index(x, y, c)]
}

// SetHeight overwrites the displacement at (x, y) on every channel.
func (f *Field) SetHeight(x, y int, value float32) {
	base := y*f.Width + x
	plane := f.Plane()
	for c := 0; c < Channels; c++ {
		f.H[c*plane+base] = value
	}
}

// addHeight adds value to the displacement at (x, y) on every channel.
func (f *Field) addHeight(x, y int, value float32) {
	base := y*f.Width + x
	plane := f.Plane()
	for c := 0; c < Channels; c++ {
		f.H[c*plane+base] += value
	}
}

// Channel returns the displacement plane for channel c. The slice aliases
// the field and must be treated as read-only by callers outside the tick.
func (f *Field) Channel(c int) []float32 {
	plane := f.Plane()
	return f.H[c*plane : (c+1)*plane]
}

// swap exchanges the current and scratch height buffers.
func (f *Field) swap() {
	f.H, f.next = f.next, f.H
}

// carryEdges copies the edge cells of H into the scratch buffer so that the
// swap leaves them untouched; the stencil never writes them.
func (f *Field) carryEdges() {
	w, h := f.Width, f.Height
	plane := f.Plane()
	for c := 0; c < Channels; c++ {
		base := c * plane
		copy(f.next[base:base+w], f.H[base:base+w])
		last := base + (h-1)*w
		copy(f.next[last:last+w], f.H[last:last+w])
		for y := 1; y < h-1; y++ {
			row := base + y*w
			f.next[row] = f.H[row]
			f.next[row+w-1] = f.H[row+w-1]
		}
	}
}

// edgeDistance is the number of cells between (x, y) and the nearest edge.
func (f *Field) edgeDistance(x, y int) int {
	d := x
	if v := y; v < d {
		d = v
	}
	if v := f.Width - 1 - x; v < d {
		d = v
	}
	if v := f.Height - 1 - y; v < d {
		d = v
	}
	return d
}
