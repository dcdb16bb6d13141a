package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSincResamplerRejectsBadParams(t *testing.T) {
	_, err := NewSincResampler(0, 48000, 2, 16, 1024)
	require.Error(t, err)
	_, err = NewSincResampler(48000, 44100, 0, 16, 1024)
	require.Error(t, err)
	_, err = NewSincResampler(48000, 44100, 2, 0, 1024)
	require.Error(t, err)
	_, err = NewSincResampler(48000, 44100, 2, 16, 0)
	require.Error(t, err)
}

func TestSincResamplerFramesNeeded(t *testing.T) {
	r, err := NewSincResampler(48000, 44100, 1, 16, 512)
	require.NoError(t, err)
	assert.Equal(t, 512, r.FramesNeeded())
}

func TestSincResamplerProducesApproximateRatioLength(t *testing.T) {
	inRate, outRate := 48000, 44100
	blockIn := 1024
	r, err := NewSincResampler(inRate, outRate, 1, 32, blockIn)
	require.NoError(t, err)

	waveform := make([]float64, blockIn)
	for i := range waveform {
		waveform[i] = math.Sin(2 * math.Pi * 440 * float64(i) / float64(inRate))
	}

	out, err := r.Process([][]float64{waveform})
	require.NoError(t, err)
	require.Len(t, out, 1)

	want := float64(blockIn) * float64(outRate) / float64(inRate)
	assert.InDelta(t, want, float64(len(out[0])), 2)
}

func TestSincResamplerSetResampleRatioRelative(t *testing.T) {
	r, err := NewSincResampler(48000, 48000, 1, 16, 256)
	require.NoError(t, err)
	require.NoError(t, r.SetResampleRatioRelative(1.01))
	assert.InDelta(t, 1.01, r.ratio, 1e-9)

	err = r.SetResampleRatioRelative(0)
	require.Error(t, err)
	err = r.SetResampleRatioRelative(-1)
	require.Error(t, err)
}

func TestSincResamplerRejectsWrongChannelCount(t *testing.T) {
	r, err := NewSincResampler(48000, 44100, 2, 16, 64)
	require.NoError(t, err)
	_, err = r.Process([][]float64{make([]float64, 64)})
	require.Error(t, err)
}

func TestSincResamplerRejectsWrongFrameCount(t *testing.T) {
	r, err := NewSincResampler(48000, 44100, 1, 16, 64)
	require.NoError(t, err)
	_, err = r.Process([][]float64{make([]float64, 63)})
	require.Error(t, err)
}
