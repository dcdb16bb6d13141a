package engine

import "fmt"

// FFTConv convolves a channel with an arbitrary-length FIR kernel
// using uniform partitioned (overlap-add) convolution: the kernel is
// split into chunksize-length segments, each pre-transformed once;
// every processed block contributes its FFT to a sliding history so
// that kernel segment k always multiplies the input block from k
// iterations ago.
type FFTConv struct {
	n        int // block size == pipeline chunksize
	segments [][]complex128
	history  [][]complex128 // history[0] is the most recent block's FFT
	overlap  []float64

	block []complex128 // scratch, reused across calls
	acc   []complex128 // scratch, reused across calls
}

// NewFFTConv builds an FFTConv for blocks of n samples from a
// non-empty FIR kernel.
func NewFFTConv(n int, kernel []float64) (*FFTConv, error) {
	if n <= 0 {
		return nil, fmt.Errorf("fftconv: block size must be positive, got %d", n)
	}
	if n&(n-1) != 0 {
		return nil, fmt.Errorf("fftconv: block size must be a power of two, got %d", n)
	}
	if len(kernel) == 0 {
		return nil, fmt.Errorf("fftconv: kernel must not be empty")
	}

	numSegments := (len(kernel) + n - 1) / n
	segments := make([][]complex128, numSegments)
	for k := 0; k < numSegments; k++ {
		seg := make([]complex128, 2*n)
		start := k * n
		end := start + n
		if end > len(kernel) {
			end = len(kernel)
		}
		for i := start; i < end; i++ {
			seg[i-start] = complex(kernel[i], 0)
		}
		fft(seg)
		segments[k] = seg
	}

	history := make([][]complex128, numSegments)
	for i := range history {
		history[i] = make([]complex128, 2*n)
	}

	return &FFTConv{
		n:        n,
		segments: segments,
		history:  history,
		overlap:  make([]float64, n),
		block:    make([]complex128, 2*n),
		acc:      make([]complex128, 2*n),
	}, nil
}

func (f *FFTConv) ProcessWaveform(waveform []float64) error {
	n := f.n
	if len(waveform) != n {
		return fmt.Errorf("fftconv: waveform length %d, want %d", len(waveform), n)
	}

	for i := 0; i < n; i++ {
		f.block[i] = complex(waveform[i], 0)
	}
	for i := n; i < 2*n; i++ {
		f.block[i] = 0
	}
	fft(f.block)

	numSegments := len(f.segments)
	// Slide the history: history[0] becomes this block's FFT, the
	// previous history[0..numSegments-2] move down one slot.
	mostRecent := f.history[numSegments-1]
	copy(f.history[1:], f.history[:numSegments-1])
	copy(mostRecent, f.block)
	f.history[0] = mostRecent

	for i := range f.acc {
		f.acc[i] = 0
	}
	for k := 0; k < numSegments; k++ {
		seg := f.segments[k]
		hist := f.history[k]
		for i := range f.acc {
			f.acc[i] += seg[i] * hist[i]
		}
	}

	ifft(f.acc)
	scale := 1.0 / float64(2*n)
	for i := 0; i < n; i++ {
		waveform[i] = real(f.acc[i])*scale + f.overlap[i]
	}
	for i := 0; i < n; i++ {
		f.overlap[i] = real(f.acc[n+i]) * scale
	}
	return nil
}
