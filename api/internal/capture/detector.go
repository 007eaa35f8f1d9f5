// Copyright (c) 2024-2026 Lulla AI
// Author: Lulla Engineering <engineering@lulla.ai>
//
// Licensed under GPL-2.0 with Lulla Additional Terms.
// See LICENSE.md or contact sales@lulla.ai for commercial usage.

package internal_capture

import (
	"time"

	internal_audio "github.com/lullai/api/internal/audio"
)

// Detector gates level samples into quiet/sound. A sample at or above the
// RMS threshold opens the gate; it stays open for the hangover window after
// the last loud sample so natural pauses between cry bursts do not flap
// the flag. Callers are expected to hold the session lock; the detector
// itself is not goroutine-safe.
type Detector struct {
	threshold float64
	hangover  time.Duration

	active        bool
	lastAbove     time.Time
	activeSamples int
	totalSamples  int
}

func NewDetector(threshold float64, hangover time.Duration) *Detector {
	return &Detector{
		threshold: threshold,
		hangover:  hangover,
	}
}

// Sample feeds one level measurement and reports whether the gate is open.
func (d *Detector) Sample(level internal_audio.Level, now time.Time) bool {
	if float64(level.Rms) >= d.threshold {
		d.active = true
		d.lastAbove = now
	} else if d.active && now.Sub(d.lastAbove) > d.hangover {
		d.active = false
	}

	d.totalSamples++
	if d.active {
		d.activeSamples++
	}
	return d.active
}

// Active reports the current gate state without consuming a sample.
func (d *Detector) Active() bool {
	return d.active
}

// Sustained reports whether the gate was open for at least half of all
// samples, which is what the classifier prompt treats as "crying for most
// of the clip".
func (d *Detector) Sustained() bool {
	return d.totalSamples > 0 && d.activeSamples*2 >= d.totalSamples
}
