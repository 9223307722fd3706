package main

import "time"

// Window, pacing and audio constants for the interactive viewer.
const (
	defaultScene          = "point"
	windowScale           = 2
	defaultTPS            = 60.0
	defaultSimMultiplier  = 1
	simMultiplierStep     = 1
	minSimMultiplier      = 1
	maxSimMultiplier      = 64
	probeTraceLength      = 4096
	probeMarkerRadius     = 3
	audioSampleRate       = 48000
	audioPlayerBufferSize = 80 * time.Millisecond
	audioProbeGain        = 4
	audioDCAlpha          = 0.001
	audioFade             = 0.999
	audioQueueLimit       = 1 << 14
	defaultWavTickRate    = 600
	defaultProfileWindow  = 15 * time.Second
	pcm16MaxValue         = 32767
)
