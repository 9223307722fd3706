package main

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/hajimehoshi/ebiten/v2/audio/wav"

	"wavelab/internal/wave"
)

const wavChunkBytes = 16 << 10

// wavSource decodes path at tickRate samples per simulated second and wraps
// it as a sampled source at (x, y). Samples are normalised to a peak of 1 so
// amp is the emitted amplitude.
func wavSource(path string, tickRate int, x, y int, amp float64) (wave.Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return wave.Source{}, err
	}
	defer f.Close()

	stream, err := wav.DecodeWithSampleRate(tickRate, f)
	if err != nil {
		return wave.Source{}, fmt.Errorf("decoding %q: %w", path, err)
	}
	samples, err := readMono(stream)
	if err != nil {
		return wave.Source{}, fmt.Errorf("reading %q: %w", path, err)
	}
	if !normalizePeak(samples) {
		return wave.Source{}, fmt.Errorf("wav %q is silent", path)
	}
	return wave.Sampled(x, y, amp, samples), nil
}

// readMono reads 16-bit little-endian stereo frames from r and averages the
// channels.
func readMono(r io.Reader) ([]float32, error) {
	var out []float32
	buf := make([]byte, wavChunkBytes)
	for {
		n, err := io.ReadFull(r, buf)
		n -= n % 4
		for off := 0; off < n; off += 4 {
			left := int16(binary.LittleEndian.Uint16(buf[off:]))
			right := int16(binary.LittleEndian.Uint16(buf[off+2:]))
			out = append(out, (float32(left)+float32(right))*(0.5/32768.0))
		}
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			break
		}
		if err != nil {
			return nil, err
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no audio frames")
	}
	return out, nil
}

// normalizePeak scales samples in place so max|s| is 1. It reports false for
// an all-zero signal.
func normalizePeak(samples []float32) bool {
	var peak float64
	for _, s := range samples {
		peak = math.Max(peak, math.Abs(float64(s)))
	}
	if peak == 0 {
		return false
	}
	scale := float32(1 / peak)
	for i := range samples {
		samples[i] *= scale
	}
	return true
}
