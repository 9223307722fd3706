package main

import (
	"sync"
)

// probeAudioStream plays the probe trace as 16-bit stereo PCM. Update pushes
// the samples recorded since the previous frame; Read stretches them from
// the simulation tick rate to the audio sample rate with linear
// interpolation.
type probeAudioStream struct {
	mu    sync.Mutex
	queue []float32
	dc    float32
	gain  float32
	// step is simulated ticks per audio frame.
	step  float64
	phase float64
	hold  float32
}

func newProbeAudioStream(gain float32, ticksPerSecond float64) *probeAudioStream {
	s := &probeAudioStream{gain: gain}
	s.SetTickRate(ticksPerSecond)
	return s
}

// SetTickRate updates the playback ratio after the multiplier changes.
func (s *probeAudioStream) SetTickRate(ticksPerSecond float64) {
	s.mu.Lock()
	s.step = ticksPerSecond / audioSampleRate
	s.mu.Unlock()
}

// Push appends new probe samples. The queue is capped; the oldest samples
// are dropped when playback falls behind.
func (s *probeAudioStream) Push(samples []float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range samples {
		v *= s.gain
		v = max(-1, min(v, 1))
		// AC coupling: remove a slowly varying DC component.
		s.dc += audioDCAlpha * (v - s.dc)
		s.queue = append(s.queue, v-s.dc)
	}
	if over := len(s.queue) - audioQueueLimit; over > 0 {
		s.queue = append(s.queue[:0], s.queue[over:]...)
	}
}

func (s *probeAudioStream) Read(p []byte) (int, error) {
	// whole stereo frames only (4 bytes per frame).
	frameBytes := len(p) - len(p)%4
	if frameBytes == 0 {
		return 0, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := 0; i < frameBytes; i += 4 {
		v := int16(s.next() * pcm16MaxValue)
		p[i] = byte(v)
		p[i+1] = byte(v >> 8)
		p[i+2] = p[i]
		p[i+3] = p[i+1]
	}
	return frameBytes, nil
}

// next returns one audio frame. With fewer than two queued samples the last
// value fades out instead of clicking to zero.
func (s *probeAudioStream) next() float32 {
	if len(s.queue) < 2 {
		s.hold *= audioFade
		return s.hold
	}
	a, b := s.queue[0], s.queue[1]
	v := a + (b-a)*float32(s.phase)
	s.phase += s.step
	for s.phase >= 1 && len(s.queue) >= 2 {
		s.phase--
		s.queue = s.queue[1:]
	}
	s.hold = v
	return v
}

func (s *probeAudioStream) Close() error {
	return nil
}
