package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestDelayRejectsNegative(t *testing.T) {
	_, err := NewDelay(-1)
	require.Error(t, err)
}

func TestDelayZeroIsIdentity(t *testing.T) {
	d, err := NewDelay(0)
	require.NoError(t, err)
	waveform := []float64{1, 2, 3, 4}
	require.NoError(t, d.ProcessWaveform(waveform))
	assert.Equal(t, []float64{1, 2, 3, 4}, waveform)
}

func TestDelayShiftsSamplesByN(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 50).Draw(rt, "n")
		d, err := NewDelay(n)
		require.NoError(rt, err)

		in := make([]float64, n+30)
		for i := range in {
			in[i] = float64(i + 1)
		}
		got := append([]float64(nil), in...)
		require.NoError(rt, d.ProcessWaveform(got))

		for i := 0; i < n; i++ {
			assert.Equal(rt, 0.0, got[i])
		}
		for i := n; i < len(got); i++ {
			assert.Equal(rt, in[i-n], got[i])
		}
	})
}

func TestDelaySamplesFromMs(t *testing.T) {
	assert.Equal(t, 48, DelaySamplesFromMs(1.0, 48000))
	assert.Equal(t, 0, DelaySamplesFromMs(0, 44100))
}
