//go:build opencl

package wave

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jgillich/go-opencl/cl"
)

type openCLKernel struct {
	context *cl.Context
	queue   *cl.CommandQueue
	program *cl.Program
	kernel  *cl.Kernel
	hBuf    *cl.MemObject
	vBuf    *cl.MemObject
	wBuf    *cl.MemObject
	nextBuf *cl.MemObject
	size    int
	device  string

	// coldStart is set until V and W have been uploaded; afterwards the
	// device copy of V is authoritative and only read back.
	coldStart bool
}

const relaxKernelSource = `__kernel void relax_step(
    const int width,
    const int height,
    __global const float* h,
    __global float* v,
    __global const float* w,
    __global float* next_h)
{
    int idx = get_global_id(0);
    int plane = width * height;
    if (idx >= plane * 3) {
        return;
    }
    int local_idx = idx % plane;
    int x = local_idx % width;
    int y = local_idx / width;
    float center = h[idx];
    if (x <= 0 || x >= width - 1 || y <= 0 || y >= height - 1) {
        next_h[idx] = center;
        return;
    }
    float lap = ((h[idx + 1] + h[idx - 1]) + (h[idx + width] + h[idx - width])) * 0.25f - center;
    float vel = v[idx] + lap / w[idx];
    v[idx] = vel;
    next_h[idx] = center + vel;
}`

func newOpenCLKernel(f *Field) (gpuKernel, error) {
	platforms, err := cl.GetPlatforms()
	if err != nil {
		msg := "querying OpenCL platforms"
		if strings.Contains(err.Error(), "-1001") {
			msg += ": no ICD loader reported any platforms; install OpenCL drivers and verify with `clinfo`"
		}
		return nil, fmt.Errorf("%s: %w", msg, err)
	}
	if len(platforms) == 0 {
		return nil, errors.New("no OpenCL platforms available")
	}
	device := pickDevice(platforms, cl.DeviceTypeGPU)
	if device == nil {
		device = pickDevice(platforms, cl.DeviceTypeCPU)
	}
	if device == nil {
		return nil, errors.New("no suitable OpenCL devices found")
	}

	k := &openCLKernel{size: len(f.H), device: device.Name(), coldStart: true}
	if k.context, err = cl.CreateContext([]*cl.Device{device}); err != nil {
		return nil, fmt.Errorf("creating OpenCL context: %w", err)
	}
	if k.queue, err = k.context.CreateCommandQueue(device, 0); err != nil {
		k.close()
		return nil, fmt.Errorf("creating OpenCL command queue: %w", err)
	}
	if k.program, err = k.context.CreateProgramWithSource([]string{relaxKernelSource}); err != nil {
		k.close()
		return nil, fmt.Errorf("creating OpenCL program: %w", err)
	}
	if err := k.program.BuildProgram([]*cl.Device{device}, ""); err != nil {
		k.close()
		if buildErr, ok := err.(cl.BuildError); ok {
			return nil, fmt.Errorf("building OpenCL program: %s", string(buildErr))
		}
		return nil, fmt.Errorf("building OpenCL program: %w", err)
	}
	if k.kernel, err = k.program.CreateKernel("relax_step"); err != nil {
		k.close()
		return nil, fmt.Errorf("creating OpenCL kernel: %w", err)
	}
	byteSize := k.size * 4
	for _, b := range []struct {
		dst   **cl.MemObject
		flags cl.MemFlag
		label string
	}{
		{&k.hBuf, cl.MemReadOnly, "height"},
		{&k.vBuf, cl.MemReadWrite, "velocity"},
		{&k.wBuf, cl.MemReadOnly, "weight"},
		{&k.nextBuf, cl.MemWriteOnly, "scratch"},
	} {
		if *b.dst, err = k.context.CreateEmptyBuffer(b.flags, byteSize); err != nil {
			k.close()
			return nil, fmt.Errorf("allocating %s buffer: %w", b.label, err)
		}
	}
	if err := k.kernel.SetArgs(int32(f.Width), int32(f.Height), k.hBuf, k.vBuf, k.wBuf, k.nextBuf); err != nil {
		k.close()
		return nil, fmt.Errorf("setting kernel arguments: %w", err)
	}
	return k, nil
}

func pickDevice(platforms []*cl.Platform, kind cl.DeviceType) *cl.Device {
	for _, p := range platforms {
		devices, err := p.GetDevices(kind)
		if err != nil && err != cl.ErrDeviceNotFound {
			continue
		}
		if len(devices) > 0 {
			return devices[0]
		}
	}
	return nil
}

// step uploads the injected heights, runs one stencil pass and reads back
// velocity and the advanced heights into f.next.
func (k *openCLKernel) step(f *Field) error {
	if len(f.H) != k.size {
		return fmt.Errorf("unexpected field buffer size %d, want %d", len(f.H), k.size)
	}
	if k.coldStart {
		if _, err := k.queue.EnqueueWriteBufferFloat32(k.vBuf, false, 0, f.V, nil); err != nil {
			return fmt.Errorf("writing velocity buffer: %w", err)
		}
		if _, err := k.queue.EnqueueWriteBufferFloat32(k.wBuf, false, 0, f.W, nil); err != nil {
			return fmt.Errorf("writing weight buffer: %w", err)
		}
	}
	if _, err := k.queue.EnqueueWriteBufferFloat32(k.hBuf, false, 0, f.H, nil); err != nil {
		return fmt.Errorf("writing height buffer: %w", err)
	}
	if _, err := k.queue.EnqueueNDRangeKernel(k.kernel, nil, []int{k.size}, nil, nil); err != nil {
		return fmt.Errorf("enqueueing kernel: %w", err)
	}
	if _, err := k.queue.EnqueueReadBufferFloat32(k.vBuf, true, 0, f.V, nil); err != nil {
		return fmt.Errorf("reading velocity buffer: %w", err)
	}
	if _, err := k.queue.EnqueueReadBufferFloat32(k.nextBuf, true, 0, f.next, nil); err != nil {
		return fmt.Errorf("reading height buffer: %w", err)
	}
	k.coldStart = false
	return nil
}

func (k *openCLKernel) resync() { k.coldStart = true }

func (k *openCLKernel) deviceName() string { return k.device }

func (k *openCLKernel) close() {
	for _, b := range []**cl.MemObject{&k.nextBuf, &k.wBuf, &k.vBuf, &k.hBuf} {
		if *b != nil {
			(*b).Release()
			*b = nil
		}
	}
	if k.kernel != nil {
		k.kernel.Release()
		k.kernel = nil
	}
	if k.program != nil {
		k.program.Release()
		k.program = nil
	}
	if k.queue != nil {
		k.queue.Release()
		k.queue = nil
	}
	if k.context != nil {
		k.context.Release()
		k.context = nil
	}
}
