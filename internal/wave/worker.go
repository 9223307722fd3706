package wave

import "sync"

// workerRows collects the interior rows assigned to a worker goroutine.
type workerRows struct {
	rows []int
}

// assignRows distributes the interior rows of a grid across workers in
// round robin fashion.
func assignRows(workerCount, height int) []workerRows {
	if workerCount < 1 {
		workerCount = 1
	}
	masks := make([]workerRows, workerCount)
	for y := 1; y < height-1; y++ {
		idx := (y - 1) % workerCount
		masks[idx].rows = append(masks[idx].rows, y)
	}
	return masks
}

// kernelPool runs the propagation stencil over a Field. With more than one
// worker the rows are processed by persistent goroutines that meet at a
// condition-variable barrier once per tick.
type kernelPool struct {
	field   *Field
	masks   []workerRows
	started bool

	mu      sync.Mutex
	cond    *sync.Cond
	step    int
	pending int
	closed  bool
}

func newKernelPool(f *Field, workers int) *kernelPool {
	p := &kernelPool{field: f, masks: assignRows(workers, f.Height)}
	p.cond = sync.NewCond(&p.mu)
	if len(p.masks) > 1 {
		p.started = true
		for i := range p.masks {
			go p.workerLoop(i)
		}
	}
	return p
}

// run advances every interior cell once. Heights are read from f.H and the
// results written into the scratch buffer, which the caller swaps in.
func (p *kernelPool) run() {
	if !p.started {
		propagateRows(p.field, p.masks[0].rows)
		return
	}
	p.mu.Lock()
	p.pending = len(p.masks)
	p.step++
	p.cond.Broadcast()
	for p.pending > 0 {
		p.cond.Wait()
	}
	p.mu.Unlock()
}

// workerLoop executes stencil passes for the rows assigned to the worker.
func (p *kernelPool) workerLoop(index int) {
	lastStep := 0
	p.mu.Lock()
	for {
		for p.step == lastStep && !p.closed {
			p.cond.Wait()
		}
		if p.closed {
			p.mu.Unlock()
			return
		}
		lastStep = p.step
		rows := p.masks[index].rows
		p.mu.Unlock()

		propagateRows(p.field, rows)

		p.mu.Lock()
		p.pending--
		if p.pending == 0 {
			p.cond.Broadcast()
		}
	}
}

// close stops the worker goroutines. The pool must not be used afterwards.
func (p *kernelPool) close() {
	p.mu.Lock()
	p.closed = true
	p.cond.Broadcast()
	p.mu.Unlock()
}

// propagateRows applies the relaxation stencil to the given rows on every
// channel:
//
//	lap  = (H[x+1]+H[x-1]+H[y+1]+H[y-1])/4 - H
//	V   += lap / W
//	H'   = H + V
//
// Neighbour pairs are summed as (right+left)+(down+up) so that mirrored and
// transposed cells compute bit-identical updates.
func propagateRows(f *Field, rows []int) {
	width := f.Width
	plane := f.Plane()
	for c := 0; c < Channels; c++ {
		base := c * plane
		for _, y := range rows {
			rowBase := base + y*width
			center := f.H[rowBase : rowBase+width]
			top := f.H[rowBase-width : rowBase]
			bottom := f.H[rowBase+width : rowBase+2*width]
			vel := f.V[rowBase : rowBase+width]
			wt := f.W[rowBase : rowBase+width]
			next := f.next[rowBase : rowBase+width]
			for x := 1; x < width-1; x++ {
				h := center[x]
				lap := ((center[x+1]+center[x-1])+(bottom[x]+top[x]))*0.25 - h
				v := vel[x] + lap/wt[x]
				vel[x] = v
				next[x] = h + v
			}
		}
	}
}
