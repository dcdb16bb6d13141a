package engine

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/markterrill/camilladsp-go/internal/config"
)

// Run wires the capture, processing, and playback workers together
// behind the startup barrier and drives the coordinator's status
// loop, grounded on original_source/src/main.rs's run(): it returns
// nil on a clean PlaybackDone, or the reported error message on a
// CaptureError/PlaybackError/ProcessingError.
func Run(cfg *config.Configuration) error {
	audioToProcess := make(chan AudioMessage, 4)
	audioToPlayback := make(chan AudioMessage, 4)
	status := make(chan StatusMessage, 16)
	commands := make(chan CommandMessage, 4)

	barrier := NewBarrier(4)

	pipeline, err := NewPipelineFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("building pipeline: %w", err)
	}

	go runProcessingWorker(pipeline, barrier, audioToProcess, audioToPlayback, status)

	playback, err := buildPlaybackDevice(cfg)
	if err != nil {
		return fmt.Errorf("building playback device: %w", err)
	}
	go playback.Start(audioToPlayback, barrier, status)

	capture, err := buildCaptureDevice(cfg)
	if err != nil {
		return fmt.Errorf("building capture device: %w", err)
	}
	go capture.Start(audioToProcess, barrier, status, commands)

	return statusLoop(barrier, status)
}

func runProcessingWorker(pipeline *Pipeline, barrier *Barrier, in <-chan AudioMessage, out chan<- AudioMessage, status chan<- StatusMessage) {
	log.Debug("pipeline built, waiting to start processing loop")
	barrier.Wait()
	for msg := range in {
		switch msg.Kind {
		case AudioMessageAudio:
			processed, err := pipeline.ProcessChunk(msg.Chunk)
			if err != nil {
				log.Error("pipeline processing error", "err", err)
				status <- StatusMessage{Kind: StatusProcessingError, Message: err.Error()}
				return
			}
			out <- AudioMsg(processed)
		case AudioMessageEndOfStream:
			out <- EndOfStreamMsg()
		}
	}
}

func statusLoop(barrier *Barrier, status <-chan StatusMessage) error {
	playbackReady := false
	captureReady := false

	for {
		select {
		case msg := <-status:
			switch msg.Kind {
			case StatusPlaybackReady:
				playbackReady = true
				if captureReady {
					barrier.Wait()
				}
			case StatusCaptureReady:
				captureReady = true
				if playbackReady {
					barrier.Wait()
				}
			case StatusPlaybackError:
				log.Error("playback error", "message", msg.Message)
				return fmt.Errorf("playback error: %s", msg.Message)
			case StatusCaptureError:
				log.Error("capture error", "message", msg.Message)
				return fmt.Errorf("capture error: %s", msg.Message)
			case StatusProcessingError:
				log.Error("processing error", "message", msg.Message)
				return fmt.Errorf("processing error: %s", msg.Message)
			case StatusPlaybackDone:
				log.Info("playback finished")
				return nil
			case StatusCaptureDone:
				log.Info("capture finished")
			}
		case <-time.After(time.Second):
		}
	}
}

func buildCaptureDevice(cfg *config.Configuration) (CaptureDevice, error) {
	spec := cfg.Devices.Capture
	switch spec.Type {
	case "file":
		return &FileCaptureDevice{
			Filename:           spec.Filename,
			Chunksize:          cfg.Devices.Buffersize,
			Samplerate:         cfg.Devices.Samplerate,
			CaptureSamplerate:  cfg.Devices.CaptureSamplerate,
			Channels:           cfg.Devices.Channels,
			Format:             sampleFormatFromString(cfg.Devices.Format),
			SilenceThresholdDB: cfg.Devices.SilenceThresholdDB,
			SilenceTimeout:     cfg.Devices.SilenceTimeout,
			ExtraSamples:       cfg.Devices.ExtraSamples,
			Resampler:          buildResampler(cfg),
		}, nil
	case "portaudio":
		return &PortaudioCaptureDevice{
			Device:             spec.Device,
			Chunksize:          cfg.Devices.Buffersize,
			Samplerate:         cfg.Devices.Samplerate,
			Channels:           cfg.Devices.Channels,
			SilenceThresholdDB: cfg.Devices.SilenceThresholdDB,
			SilenceTimeout:     cfg.Devices.SilenceTimeout,
		}, nil
	default:
		return nil, fmt.Errorf("unknown capture device type %q", spec.Type)
	}
}

func buildPlaybackDevice(cfg *config.Configuration) (PlaybackDevice, error) {
	spec := cfg.Devices.Playback
	switch spec.Type {
	case "file":
		return &FilePlaybackDevice{
			Filename:  spec.Filename,
			Chunksize: cfg.Devices.Buffersize,
			Channels:  cfg.Devices.Channels,
			Format:    sampleFormatFromString(cfg.Devices.Format),
		}, nil
	case "portaudio":
		return &PortaudioPlaybackDevice{
			Device:     spec.Device,
			Chunksize:  cfg.Devices.Buffersize,
			Samplerate: cfg.Devices.Samplerate,
			Channels:   cfg.Devices.Channels,
		}, nil
	default:
		return nil, fmt.Errorf("unknown playback device type %q", spec.Type)
	}
}

func buildResampler(cfg *config.Configuration) Resampler {
	if !cfg.Devices.EnableResampling {
		return nil
	}
	captureRate := cfg.Devices.CaptureSamplerate
	if captureRate <= 0 {
		captureRate = cfg.Devices.Samplerate
	}
	r, err := NewSincResampler(captureRate, cfg.Devices.Samplerate, cfg.Devices.Channels, 32, cfg.Devices.Buffersize)
	if err != nil {
		log.Error("failed to build resampler", "err", err)
		return nil
	}
	return r
}

// sampleFormatFromString maps a devices.format string to a
// SampleFormat. config.Validate rejects any value other than the five
// cases below before Run is ever called, so the default case is
// unreachable on a validated Configuration.
func sampleFormatFromString(s string) SampleFormat {
	switch s {
	case "S16LE":
		return S16LE
	case "S24LE":
		return S24LE
	case "S32LE":
		return S32LE
	case "F32LE":
		return F32LE
	case "F64LE":
		return F64LE
	default:
		return S16LE
	}
}
