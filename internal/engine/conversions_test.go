package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestRoundTripPerFormat(t *testing.T) {
	for _, format := range []SampleFormat{S16LE, S24LE, S32LE, F32LE, F64LE} {
		format := format
		t.Run(format.String(), func(t *testing.T) {
			rapid.Check(t, func(rt *rapid.T) {
				channels := rapid.IntRange(1, 4).Draw(rt, "channels")
				frames := rapid.IntRange(1, 32).Draw(rt, "frames")

				waveforms := make([][]float64, channels)
				for ch := range waveforms {
					waveforms[ch] = make([]float64, frames)
					for i := range waveforms[ch] {
						// Keep well inside range so int quantization
						// error stays small and predictable.
						waveforms[ch][i] = rapid.Float64Range(-0.9, 0.9).Draw(rt, "sample")
					}
				}
				chunk := NewAudioChunk(waveforms, frames)

				buf := make([]byte, frames*channels*format.StoreBytes())
				n := ChunkToBuffer(chunk, buf, format)
				require.Equal(rt, len(buf), n)

				roundTripped := BufferToChunk(buf, channels, format, n)
				require.Equal(rt, frames, roundTripped.ValidFrames)

				tolerance := 1.0 / math.Pow(2, float64(format.Bits()-2))
				if format.IsFloat() {
					tolerance = 1e-6
				}
				for ch := 0; ch < channels; ch++ {
					for i := 0; i < frames; i++ {
						assert.InDelta(rt, waveforms[ch][i], roundTripped.Waveforms[ch][i], tolerance)
					}
				}
			})
		})
	}
}

func TestBufferToChunkMarksShortReadInvalid(t *testing.T) {
	channels := 2
	format := S16LE
	buf := make([]byte, 4*channels*format.StoreBytes())
	chunk := BufferToChunk(buf, channels, format, 2*channels*format.StoreBytes())
	assert.Equal(t, 4, chunk.Frames)
	assert.Equal(t, 2, chunk.ValidFrames)
}

func TestS24LESignExtension(t *testing.T) {
	// -1 in 24-bit two's complement is 0xFFFFFF; stored little-endian
	// across the low three bytes of the four-byte slot.
	buf := []byte{0xFF, 0xFF, 0xFF, 0x00}
	chunk := BufferToChunk(buf, 1, S24LE, len(buf))
	assert.InDelta(t, -1.0/8388608.0, chunk.Waveforms[0][0], 1e-9)
}
