package main

import (
	"math"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"wavelab/internal/wave"
)

const (
	toneSampleRate = beep.SampleRate(44100)
	toneFreq       = 440.0
	toneGain       = 4.0
	toneMax        = 0.3
	// toneSmoothing is the per-sample approach rate to the probe level.
	toneSmoothing = 0.002
)

// probeTone is a sine whose loudness follows the absolute probe value. The
// speaker goroutine reads the probe; the viewer swaps it on reset.
type probeTone struct {
	probe atomic.Pointer[wave.Probe]
	pos   int
	level float64
}

func (v *viewer) startTone() error {
	if err := speaker.Init(toneSampleRate, toneSampleRate.N(time.Second/10)); err != nil {
		return err
	}
	v.tone = &probeTone{}
	v.tone.follow(v.probe)
	speaker.Play(beep.StreamerFunc(v.tone.stream))
	return nil
}

func (t *probeTone) follow(p *wave.Probe) {
	t.probe.Store(p)
}

func (t *probeTone) stream(samples [][2]float64) (int, bool) {
	target := 0.0
	if p := t.probe.Load(); p != nil {
		target = min(math.Abs(float64(p.Latest()))*toneGain, toneMax)
	}
	for i := range samples {
		t.level += (target - t.level) * toneSmoothing
		s := t.level * math.Sin(2*math.Pi*toneFreq*float64(t.pos)/float64(toneSampleRate))
		samples[i][0] = s
		samples[i][1] = s
		t.pos = (t.pos + 1) % int(toneSampleRate)
	}
	return len(samples), true
}

func (t *probeTone) close() {
	speaker.Clear()
	speaker.Close()
}
