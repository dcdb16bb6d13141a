// Package engine implements the capture -> process -> playback pipeline:
// chunked audio messages, the filter/mixer DSP chain, the pluggable
// device interfaces, and the coordinator that wires the three workers
// together behind a startup barrier.
package engine

import "fmt"

// SampleFormat identifies the on-the-wire PCM encoding of a device.
type SampleFormat int

const (
	S16LE SampleFormat = iota
	S24LE
	S32LE
	F32LE
	F64LE
)

func (f SampleFormat) String() string {
	switch f {
	case S16LE:
		return "S16LE"
	case S24LE:
		return "S24LE"
	case S32LE:
		return "S32LE"
	case F32LE:
		return "F32LE"
	case F64LE:
		return "F64LE"
	default:
		return fmt.Sprintf("SampleFormat(%d)", int(f))
	}
}

// Bits returns the bit width of one sample (16/24/32/32/64).
func (f SampleFormat) Bits() int {
	switch f {
	case S16LE:
		return 16
	case S24LE:
		return 24
	case S32LE:
		return 32
	case F32LE:
		return 32
	case F64LE:
		return 64
	default:
		panic("unknown sample format")
	}
}

// StoreBytes returns the number of bytes one sample occupies on the wire.
func (f SampleFormat) StoreBytes() int {
	switch f {
	case S16LE:
		return 2
	case S24LE, S32LE, F32LE:
		return 4
	case F64LE:
		return 8
	default:
		panic("unknown sample format")
	}
}

// IsFloat reports whether the format is an IEEE-754 float encoding.
func (f SampleFormat) IsFloat() bool {
	return f == F32LE || f == F64LE
}

// AudioChunk is one block of decoded, deinterleaved multichannel audio.
type AudioChunk struct {
	// Waveforms holds exactly len(Waveforms) == channels sequences,
	// each of length Frames.
	Waveforms [][]float64
	// Frames is the declared length of each waveform.
	Frames int
	// ValidFrames is the number of leading samples carrying captured
	// data; equal to Frames in steady state, less on a short final read.
	ValidFrames int
	// Minval/Maxval are the minimum/maximum amplitude over the valid
	// region, computed at construction and used for silence detection.
	Minval float64
	Maxval float64
}

// NewAudioChunk builds an AudioChunk from deinterleaved waveforms and
// computes Minval/Maxval over the first validFrames samples of each
// channel. All waveforms must have equal length; that length becomes Frames.
func NewAudioChunk(waveforms [][]float64, validFrames int) *AudioChunk {
	frames := 0
	if len(waveforms) > 0 {
		frames = len(waveforms[0])
	}
	if validFrames > frames {
		validFrames = frames
	}
	c := &AudioChunk{
		Waveforms:   waveforms,
		Frames:      frames,
		ValidFrames: validFrames,
	}
	c.Minval, c.Maxval = minMaxOf(waveforms, validFrames)
	return c
}

func minMaxOf(waveforms [][]float64, validFrames int) (float64, float64) {
	min, max := 0.0, 0.0
	first := true
	for _, w := range waveforms {
		n := validFrames
		if n > len(w) {
			n = len(w)
		}
		for i := 0; i < n; i++ {
			v := w[i]
			if first {
				min, max = v, v
				first = false
				continue
			}
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
	}
	return min, max
}

// AudioMessageKind tags the variant carried by an AudioMessage.
type AudioMessageKind int

const (
	AudioMessageAudio AudioMessageKind = iota
	AudioMessageEndOfStream
)

// AudioMessage is the tagged union flowing through the capture->process
// and process->playback queues: either an Audio chunk, or EndOfStream,
// which is a true terminator - no Audio message follows it.
type AudioMessage struct {
	Kind  AudioMessageKind
	Chunk *AudioChunk
}

func AudioMsg(chunk *AudioChunk) AudioMessage {
	return AudioMessage{Kind: AudioMessageAudio, Chunk: chunk}
}

func EndOfStreamMsg() AudioMessage {
	return AudioMessage{Kind: AudioMessageEndOfStream}
}

// StatusKind tags the variant carried by a StatusMessage.
type StatusKind int

const (
	StatusPlaybackReady StatusKind = iota
	StatusCaptureReady
	StatusPlaybackDone
	StatusCaptureDone
	StatusPlaybackError
	StatusCaptureError
	// StatusProcessingError reports a fatal Pipeline.ProcessChunk
	// failure. The processing worker sits between the spec's
	// Capture/Playback status variants with no status of its own;
	// this one closes that gap so a pipeline fault (e.g. a channel
	// count that somehow still slipped past config validation) stops
	// the run instead of silently dropping chunks forever.
	StatusProcessingError
)

// StatusMessage reports worker lifecycle events to the coordinator.
type StatusMessage struct {
	Kind    StatusKind
	Message string // populated for the *Error variants
}

// CommandKind tags the variant carried by a CommandMessage.
type CommandKind int

const (
	CommandExit CommandKind = iota
	CommandSetSpeed
)

// CommandMessage carries control from the coordinator (or any other
// caller) to the capture worker.
type CommandMessage struct {
	Kind  CommandKind
	Ratio float64 // only meaningful for CommandSetSpeed
}
