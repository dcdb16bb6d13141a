package engine

import (
	"fmt"
	"math"
)

// Delay is a fixed integer-sample delay implemented as a ring buffer,
// initialized to zeros.
type Delay struct {
	buffer []float64
	pos    int
}

// NewDelay builds a Delay of delaySamples, which must be >= 0.
func NewDelay(delaySamples int) (*Delay, error) {
	if delaySamples < 0 {
		return nil, fmt.Errorf("delay: negative delay not allowed: %d", delaySamples)
	}
	if delaySamples == 0 {
		return &Delay{buffer: nil}, nil
	}
	return &Delay{buffer: make([]float64, delaySamples)}, nil
}

// DelaySamplesFromMs converts a millisecond delay to a rounded sample count.
func DelaySamplesFromMs(delayMs float64, sampleRate int) int {
	return int(math.Round(delayMs * float64(sampleRate) / 1000))
}

func (d *Delay) ProcessWaveform(waveform []float64) error {
	if len(d.buffer) == 0 {
		return nil
	}
	for i, x := range waveform {
		waveform[i] = d.buffer[d.pos]
		d.buffer[d.pos] = x
		d.pos++
		if d.pos == len(d.buffer) {
			d.pos = 0
		}
	}
	return nil
}
