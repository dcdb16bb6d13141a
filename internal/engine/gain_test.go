package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestGainZeroDBIsIdentity(t *testing.T) {
	g := NewGain(0, false)
	waveform := []float64{0.1, -0.2, 0.3}
	_ = g.ProcessWaveform(waveform)
	assert.InDeltaSlice(t, []float64{0.1, -0.2, 0.3}, waveform, 1e-12)
}

func TestGainInvertedFlipsSign(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		db := rapid.Float64Range(-40, 40).Draw(rt, "db")
		x := rapid.Float64Range(-1, 1).Draw(rt, "x")

		plain := NewGain(db, false)
		inverted := NewGain(db, true)

		a := []float64{x}
		b := []float64{x}
		_ = plain.ProcessWaveform(a)
		_ = inverted.ProcessWaveform(b)

		assert.InDelta(rt, a[0], -b[0], 1e-9)
	})
}

func TestGainDoublesAtSixDB(t *testing.T) {
	g := NewGain(6.0206, false)
	waveform := []float64{1.0}
	_ = g.ProcessWaveform(waveform)
	assert.True(t, math.Abs(waveform[0]-2.0) < 1e-3)
}
