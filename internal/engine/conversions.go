package engine

import (
	"encoding/binary"
	"math"
)

// scaleFactor returns 2^(bits-1), the divisor/multiplier between a
// signed PCM integer and the engine's [-1, +1) floating point range.
func scaleFactor(format SampleFormat) float64 {
	return math.Pow(2, float64(format.Bits()-1))
}

// BufferToChunk decodes an interleaved PCM byte buffer into an
// AudioChunk with the given channel count. Only bytesRead/(channels*
// storeBytes) frames are marked valid; the trailing region of each
// waveform stays zero, matching the byte buffer passed in (callers
// zero-pad short reads before calling this).
func BufferToChunk(buf []byte, channels int, format SampleFormat, bytesRead int) *AudioChunk {
	storeBytes := format.StoreBytes()
	frames := len(buf) / (channels * storeBytes)
	validFrames := bytesRead / (channels * storeBytes)

	waveforms := make([][]float64, channels)
	for ch := range waveforms {
		waveforms[ch] = make([]float64, frames)
	}

	if format.IsFloat() {
		decodeFloatBuffer(buf, waveforms, channels, format)
	} else {
		decodeIntBuffer(buf, waveforms, channels, format)
	}

	return NewAudioChunk(waveforms, validFrames)
}

func decodeIntBuffer(buf []byte, waveforms [][]float64, channels int, format SampleFormat) {
	scale := scaleFactor(format)
	storeBytes := format.StoreBytes()
	frames := len(buf) / (channels * storeBytes)

	for frame := 0; frame < frames; frame++ {
		for ch := 0; ch < channels; ch++ {
			off := (frame*channels + ch) * storeBytes
			var raw int32
			switch format {
			case S16LE:
				raw = int32(int16(binary.LittleEndian.Uint16(buf[off:])))
			case S24LE:
				// 4 bytes on the wire; bits 23..0 significant, high
				// byte sign-extends bit 23.
				u := uint32(buf[off]) | uint32(buf[off+1])<<8 | uint32(buf[off+2])<<16
				if buf[off+2]&0x80 != 0 {
					u |= 0xFF << 24
				}
				raw = int32(u)
			case S32LE:
				raw = int32(binary.LittleEndian.Uint32(buf[off:]))
			}
			waveforms[ch][frame] = float64(raw) / scale
		}
	}
}

func decodeFloatBuffer(buf []byte, waveforms [][]float64, channels int, format SampleFormat) {
	storeBytes := format.StoreBytes()
	frames := len(buf) / (channels * storeBytes)

	for frame := 0; frame < frames; frame++ {
		for ch := 0; ch < channels; ch++ {
			off := (frame*channels + ch) * storeBytes
			switch format {
			case F32LE:
				bits := binary.LittleEndian.Uint32(buf[off:])
				waveforms[ch][frame] = float64(math.Float32frombits(bits))
			case F64LE:
				bits := binary.LittleEndian.Uint64(buf[off:])
				waveforms[ch][frame] = math.Float64frombits(bits)
			}
		}
	}
}

// ChunkToBuffer encodes chunk.Waveforms (up to chunk.ValidFrames frames
// of each) as interleaved PCM into buf, which must be at least
// chunk.ValidFrames*channels*storeBytes bytes. It returns the number of
// bytes written.
func ChunkToBuffer(chunk *AudioChunk, buf []byte, format SampleFormat) int {
	channels := len(chunk.Waveforms)
	storeBytes := format.StoreBytes()
	frames := chunk.ValidFrames

	if format.IsFloat() {
		encodeFloatBuffer(chunk, buf, channels, frames, format)
	} else {
		encodeIntBuffer(chunk, buf, channels, frames, format)
	}
	return frames * channels * storeBytes
}

func encodeIntBuffer(chunk *AudioChunk, buf []byte, channels, frames int, format SampleFormat) {
	scale := scaleFactor(format)
	storeBytes := format.StoreBytes()
	maxVal := scale - 1
	minVal := -scale

	for frame := 0; frame < frames; frame++ {
		for ch := 0; ch < channels; ch++ {
			v := chunk.Waveforms[ch][frame] * scale
			if v > maxVal {
				v = maxVal
			} else if v < minVal {
				v = minVal
			}
			raw := int32(math.Trunc(v))
			off := (frame*channels + ch) * storeBytes
			switch format {
			case S16LE:
				binary.LittleEndian.PutUint16(buf[off:], uint16(int16(raw)))
			case S24LE:
				u := uint32(raw)
				buf[off] = byte(u)
				buf[off+1] = byte(u >> 8)
				buf[off+2] = byte(u >> 16)
				buf[off+3] = byte(u >> 24)
			case S32LE:
				binary.LittleEndian.PutUint32(buf[off:], uint32(raw))
			}
		}
	}
}

func encodeFloatBuffer(chunk *AudioChunk, buf []byte, channels, frames int, format SampleFormat) {
	storeBytes := format.StoreBytes()
	for frame := 0; frame < frames; frame++ {
		for ch := 0; ch < channels; ch++ {
			off := (frame*channels + ch) * storeBytes
			v := chunk.Waveforms[ch][frame]
			switch format {
			case F32LE:
				binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(float32(v)))
			case F64LE:
				binary.LittleEndian.PutUint64(buf[off:], math.Float64bits(v))
			}
		}
	}
}
