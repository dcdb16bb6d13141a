package engine

import (
	"errors"
	"io"
	"math"
	"os"

	"github.com/charmbracelet/log"
)

// FileCaptureDevice reads raw interleaved PCM from a plain file,
// grounded on original_source/src/filedevice.rs's FileCaptureDevice
// and its capture_loop/get_nbr_capture_bytes/send_silence helpers.
type FileCaptureDevice struct {
	Filename           string
	Chunksize          int
	Samplerate         int
	CaptureSamplerate  int // 0 means "same as Samplerate"
	Channels           int
	Format             SampleFormat
	SilenceThresholdDB float64
	SilenceTimeout     float64
	ExtraSamples       int
	Resampler          Resampler // nil disables resampling
}

func (d *FileCaptureDevice) Start(audioOut chan<- AudioMessage, barrier *Barrier, status chan<- StatusMessage, commands <-chan CommandMessage) {
	f, err := os.Open(d.Filename)
	if err != nil {
		status <- StatusMessage{Kind: StatusCaptureError, Message: err.Error()}
		return
	}
	defer f.Close()

	status <- StatusMessage{Kind: StatusCaptureReady}
	barrier.Wait()

	captureRate := d.CaptureSamplerate
	if captureRate <= 0 {
		captureRate = d.Samplerate
	}
	storeBytes := d.Format.StoreBytes()
	chunksizeBytes := d.Channels * d.Chunksize * storeBytes

	bufferFrames := nextPowerOfTwo(int(math.Ceil(float64(captureRate) / float64(d.Samplerate) * float64(d.Chunksize))))
	bufferBytes := bufferFrames * 2 * d.Channels * storeBytes
	if bufferBytes < chunksizeBytes {
		bufferBytes = chunksizeBytes
	}

	silenceLinear := math.Pow(10, d.SilenceThresholdDB/20)
	silentLimit := 0
	if d.Chunksize > 0 {
		silentLimit = int(d.SilenceTimeout * float64(d.Samplerate/d.Chunksize))
	}
	extraBytesLeft := d.ExtraSamples * storeBytes * d.Channels

	log.Debug("starting capture loop", "file", d.Filename)
	captureLoopFile(f, fileCaptureParams{
		channels:        d.Channels,
		format:          d.Format,
		storeBytes:      storeBytes,
		chunksizeBytes:  chunksizeBytes,
		bufferBytes:     bufferBytes,
		silentLimit:     silentLimit,
		silenceLinear:   silenceLinear,
		extraBytesLeft:  extraBytesLeft,
		chunksize:       d.Chunksize,
		resampler:       d.Resampler,
	}, audioOut, status, commands)
}

type fileCaptureParams struct {
	channels       int
	format         SampleFormat
	storeBytes     int
	chunksizeBytes int
	bufferBytes    int
	silentLimit    int
	silenceLinear  float64
	extraBytesLeft int
	chunksize      int
	resampler      Resampler
}

func captureLoopFile(f *os.File, p fileCaptureParams, audioOut chan<- AudioMessage, status chan<- StatusMessage, commands <-chan CommandMessage) {
	silentNbr := 0
	buf := make([]byte, p.bufferBytes)
	captureBytes := p.chunksizeBytes
	extraBytesLeft := p.extraBytesLeft

	// carry re-chunks the resampler's variable-length output back to
	// the pipeline's fixed chunksize (spec.md §9 open question 1):
	// fixed-size filters downstream, notably the FFT convolver, were
	// sized to chunksize at Pipeline construction.
	var carry [][]float64
	if p.resampler != nil {
		carry = make([][]float64, p.channels)
	}

	for {
		select {
		case cmd := <-commands:
			switch cmd.Kind {
			case CommandExit:
				audioOut <- EndOfStreamMsg()
				status <- StatusMessage{Kind: StatusCaptureDone}
				return
			case CommandSetSpeed:
				if p.resampler != nil {
					if err := p.resampler.SetResampleRatioRelative(cmd.Ratio); err != nil {
						log.Debug("failed to set resampling speed", "ratio", cmd.Ratio, "err", err)
					}
				}
			}
		default:
		}

		captureBytes = nbrCaptureBytes(p.resampler, captureBytes, p.channels, p.storeBytes)

		bytesRead, readErr := readRetry(f, buf[:captureBytes])
		if readErr != nil {
			log.Debug("capture read error")
			status <- StatusMessage{Kind: StatusCaptureError, Message: readErr.Error()}
			continue
		}

		if bytesRead > 0 && bytesRead < captureBytes {
			for i := bytesRead; i < captureBytes; i++ {
				buf[i] = 0
			}
			log.Debug("end of file, short read", "got", bytesRead, "want", captureBytes)
			missing := captureBytes - bytesRead
			if extraBytesLeft > missing {
				bytesRead = captureBytes
				extraBytesLeft -= missing
			} else {
				bytesRead += extraBytesLeft
				extraBytesLeft = 0
			}
		} else if bytesRead == 0 {
			log.Debug("reached end of file")
			extraSamples := extraBytesLeft / p.storeBytes / p.channels
			if p.resampler != nil && len(carry[0]) > 0 {
				flushCarryChunk(carry, p.channels, p.chunksize, audioOut)
			}
			sendSilence(extraSamples, p.channels, p.chunksize, audioOut)
			audioOut <- EndOfStreamMsg()
			status <- StatusMessage{Kind: StatusCaptureDone}
			return
		}

		chunk := BufferToChunk(buf[:captureBytes], p.channels, p.format, bytesRead)

		if chunk.Maxval-chunk.Minval > p.silenceLinear {
			if silentNbr > p.silentLimit {
				log.Debug("Resuming processing")
			}
			silentNbr = 0
		} else if p.silentLimit > 0 {
			if silentNbr == p.silentLimit {
				log.Debug("Pausing processing")
			}
			silentNbr++
		}

		if silentNbr <= p.silentLimit {
			if p.resampler != nil {
				newWaves, err := p.resampler.Process(chunk.Waveforms)
				if err != nil {
					log.Debug("resampler process failed", "err", err)
				} else {
					appendCarry(carry, newWaves)
					for len(carry[0]) >= p.chunksize {
						emitCarryChunk(carry, p.chunksize, audioOut)
					}
				}
			} else {
				audioOut <- AudioMsg(chunk)
			}
		}
	}
}

func nbrCaptureBytes(resampler Resampler, captureBytes, channels, storeBytes int) int {
	if resampler == nil {
		return captureBytes
	}
	return resampler.FramesNeeded() * channels * storeBytes
}

// appendCarry appends each channel's newly resampled frames onto the
// re-chunking carry buffer.
func appendCarry(carry [][]float64, newWaves [][]float64) {
	for ch := range carry {
		carry[ch] = append(carry[ch], newWaves[ch]...)
	}
}

// emitCarryChunk slices one full chunksize-frame chunk off the front
// of carry, sends it downstream, and leaves the remainder in carry.
func emitCarryChunk(carry [][]float64, chunksize int, audioOut chan<- AudioMessage) {
	out := make([][]float64, len(carry))
	for ch := range carry {
		out[ch] = append([]float64(nil), carry[ch][:chunksize]...)
		rest := make([]float64, len(carry[ch])-chunksize)
		copy(rest, carry[ch][chunksize:])
		carry[ch] = rest
	}
	audioOut <- AudioMsg(NewAudioChunk(out, chunksize))
}

// flushCarryChunk emits whatever partial chunk remains in carry at
// end-of-stream, short (valid_frames = len(carry[0])) the same way a
// final short read is.
func flushCarryChunk(carry [][]float64, channels, chunksize int, audioOut chan<- AudioMessage) {
	validFrames := len(carry[0])
	waveforms := make([][]float64, channels)
	for ch := range waveforms {
		w := make([]float64, chunksize)
		copy(w, carry[ch])
		waveforms[ch] = w
	}
	audioOut <- AudioMsg(NewAudioChunk(waveforms, validFrames))
}

// readRetry reads exactly len(buf) bytes unless end-of-file is
// reached first, retrying on short reads the way
// original_source/src/filedevice.rs's read_retry loops on
// ErrorKind::Interrupted.
func readRetry(f *os.File, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := f.Read(buf[total:])
		total += n
		if err != nil {
			if errors.Is(err, io.EOF) {
				return total, nil
			}
			return total, err
		}
		if n == 0 {
			return total, nil
		}
	}
	return total, nil
}

// FilePlaybackDevice writes raw interleaved PCM to a plain file,
// grounded on original_source/src/filedevice.rs's FilePlaybackDevice.
type FilePlaybackDevice struct {
	Filename   string
	Chunksize  int
	Channels   int
	Format     SampleFormat
}

func (d *FilePlaybackDevice) Start(audioIn <-chan AudioMessage, barrier *Barrier, status chan<- StatusMessage) {
	f, err := os.Create(d.Filename)
	if err != nil {
		status <- StatusMessage{Kind: StatusPlaybackError, Message: err.Error()}
		return
	}
	defer f.Close()

	status <- StatusMessage{Kind: StatusPlaybackReady}
	barrier.Wait()

	log.Debug("starting playback loop", "file", d.Filename)
	buf := make([]byte, d.Chunksize*d.Channels*d.Format.StoreBytes())
	for msg := range audioIn {
		switch msg.Kind {
		case AudioMessageAudio:
			n := ChunkToBuffer(msg.Chunk, buf, d.Format)
			if _, err := f.Write(buf[:n]); err != nil {
				status <- StatusMessage{Kind: StatusPlaybackError, Message: err.Error()}
			}
		case AudioMessageEndOfStream:
			status <- StatusMessage{Kind: StatusPlaybackDone}
			return
		}
	}
}
