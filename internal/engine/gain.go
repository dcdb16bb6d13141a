package engine

import "math"

// Gain is a stateless scalar multiplication.
type Gain struct {
	factor float64
}

// NewGain builds a Gain of db decibels, optionally inverted in sign.
func NewGain(db float64, inverted bool) *Gain {
	factor := math.Pow(10, db/20)
	if inverted {
		factor = -factor
	}
	return &Gain{factor: factor}
}

func (g *Gain) ProcessWaveform(waveform []float64) error {
	for i, x := range waveform {
		waveform[i] = x * g.factor
	}
	return nil
}
