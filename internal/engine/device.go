package engine

// CaptureDevice is the source half of the audio path: a pluggable
// backend (file, live soundcard) that produces AudioMessages until it
// observes end-of-stream or a fatal error. Start runs for the whole
// life of the capture (open, CaptureReady, barrier, capture loop) and
// only returns when the loop ends - the caller is expected to run
// Start in its own goroutine.
type CaptureDevice interface {
	// Start opens the backend, sends CaptureReady or CaptureError on
	// status, waits on barrier, then runs the capture loop until Exit
	// is received on commands or the stream ends, writing messages to
	// audioOut.
	Start(audioOut chan<- AudioMessage, barrier *Barrier, status chan<- StatusMessage, commands <-chan CommandMessage)
}

// PlaybackDevice is the sink half of the audio path.
type PlaybackDevice interface {
	// Start opens the backend, sends PlaybackReady or PlaybackError on
	// status, waits on barrier, then consumes audioIn until
	// EndOfStream, at which point it sends PlaybackDone. If audioIn
	// closes first, Start returns without sending any status.
	Start(audioIn <-chan AudioMessage, barrier *Barrier, status chan<- StatusMessage)
}
