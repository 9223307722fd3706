//go:build !opencl

package wave

import "errors"

func newOpenCLKernel(*Field) (gpuKernel, error) {
	return nil, errors.New("OpenCL support is not enabled; rebuild with -tags opencl")
}
