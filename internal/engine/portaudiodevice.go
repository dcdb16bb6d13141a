package engine

import (
	"math"

	"github.com/charmbracelet/log"
	"github.com/gordonklaus/portaudio"
)

// PortaudioCaptureDevice reads from the system's default input device
// via PortAudio (github.com/gordonklaus/portaudio), activating the
// stack's live-backend dependency the same role
// original_source/src/alsadevice.rs/pulsedevice.rs play for the
// original's soundcard backends, just not ported here file-for-file
// since neither alsadevice.rs nor pulsedevice.rs was retrieved.
// PortAudio streams trade in native float32 buffers, so unlike
// FileCaptureDevice this backend never touches the byte-oriented
// SampleFormat conversions - those exist for the wire formats the
// file backend uses.
type PortaudioCaptureDevice struct {
	Device             string // only logged; the stream always opens on the default input device
	Chunksize          int
	Samplerate         int
	Channels           int
	SilenceThresholdDB float64
	SilenceTimeout     float64
}

func (d *PortaudioCaptureDevice) Start(audioOut chan<- AudioMessage, barrier *Barrier, status chan<- StatusMessage, commands <-chan CommandMessage) {
	if err := portaudio.Initialize(); err != nil {
		status <- StatusMessage{Kind: StatusCaptureError, Message: err.Error()}
		return
	}
	defer portaudio.Terminate()

	buffer := make([]float32, d.Chunksize*d.Channels)
	stream, err := portaudio.OpenDefaultStream(d.Channels, 0, float64(d.Samplerate), d.Chunksize, &buffer)
	if err != nil {
		status <- StatusMessage{Kind: StatusCaptureError, Message: err.Error()}
		return
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		status <- StatusMessage{Kind: StatusCaptureError, Message: err.Error()}
		return
	}
	defer stream.Stop()

	status <- StatusMessage{Kind: StatusCaptureReady}
	barrier.Wait()

	silenceLinear := math.Pow(10, d.SilenceThresholdDB/20)
	silentLimit := 0
	if d.Chunksize > 0 {
		silentLimit = int(d.SilenceTimeout * float64(d.Samplerate/d.Chunksize))
	}
	silentNbr := 0

	log.Debug("starting portaudio capture loop", "device", d.Device)
	for {
		select {
		case cmd := <-commands:
			if cmd.Kind == CommandExit {
				audioOut <- EndOfStreamMsg()
				status <- StatusMessage{Kind: StatusCaptureDone}
				return
			}
		default:
		}

		if err := stream.Read(); err != nil {
			status <- StatusMessage{Kind: StatusCaptureError, Message: err.Error()}
			continue
		}

		waveforms := make([][]float64, d.Channels)
		for ch := range waveforms {
			waveforms[ch] = make([]float64, d.Chunksize)
		}
		for frame := 0; frame < d.Chunksize; frame++ {
			for ch := 0; ch < d.Channels; ch++ {
				waveforms[ch][frame] = float64(buffer[frame*d.Channels+ch])
			}
		}
		chunk := NewAudioChunk(waveforms, d.Chunksize)

		if chunk.Maxval-chunk.Minval > silenceLinear {
			if silentNbr > silentLimit {
				log.Debug("Resuming processing")
			}
			silentNbr = 0
		} else if silentLimit > 0 {
			if silentNbr == silentLimit {
				log.Debug("Pausing processing")
			}
			silentNbr++
		}

		if silentNbr <= silentLimit {
			audioOut <- AudioMsg(chunk)
		}
	}
}

// PortaudioPlaybackDevice writes to the system's default output
// device via PortAudio.
type PortaudioPlaybackDevice struct {
	Device     string
	Chunksize  int
	Samplerate int
	Channels   int
}

func (d *PortaudioPlaybackDevice) Start(audioIn <-chan AudioMessage, barrier *Barrier, status chan<- StatusMessage) {
	if err := portaudio.Initialize(); err != nil {
		status <- StatusMessage{Kind: StatusPlaybackError, Message: err.Error()}
		return
	}
	defer portaudio.Terminate()

	buffer := make([]float32, d.Chunksize*d.Channels)
	stream, err := portaudio.OpenDefaultStream(0, d.Channels, float64(d.Samplerate), d.Chunksize, &buffer)
	if err != nil {
		status <- StatusMessage{Kind: StatusPlaybackError, Message: err.Error()}
		return
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		status <- StatusMessage{Kind: StatusPlaybackError, Message: err.Error()}
		return
	}
	defer stream.Stop()

	status <- StatusMessage{Kind: StatusPlaybackReady}
	barrier.Wait()

	log.Debug("starting portaudio playback loop", "device", d.Device)
	for msg := range audioIn {
		switch msg.Kind {
		case AudioMessageAudio:
			chunk := msg.Chunk
			for i := range buffer {
				buffer[i] = 0
			}
			for frame := 0; frame < chunk.ValidFrames && frame < d.Chunksize; frame++ {
				for ch := 0; ch < d.Channels && ch < len(chunk.Waveforms); ch++ {
					buffer[frame*d.Channels+ch] = float32(chunk.Waveforms[ch][frame])
				}
			}
			if err := stream.Write(); err != nil {
				status <- StatusMessage{Kind: StatusPlaybackError, Message: err.Error()}
			}
		case AudioMessageEndOfStream:
			status <- StatusMessage{Kind: StatusPlaybackDone}
			return
		}
	}
}
