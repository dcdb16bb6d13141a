package engine

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/dsp/window"
)

// Resampler converts between sample rates, optionally under runtime
// ratio correction for clock drift (spec.md §4.4).
type Resampler interface {
	// FramesNeeded reports how many input frames the next Process
	// call requires, per channel.
	FramesNeeded() int
	// Process consumes exactly FramesNeeded() input frames per
	// channel and produces a new chunk of (generally different)
	// length.
	Process(waveforms [][]float64) ([][]float64, error)
	// SetResampleRatioRelative adjusts the current output/input ratio
	// by a multiplicative factor.
	SetResampleRatioRelative(factor float64) error
}

// SincResampler is a windowed-sinc rate converter: input frames are
// treated as samples of a continuous, band-limited signal and
// re-sampled at the output rate by convolving with a truncated,
// Blackman-windowed sinc kernel centered on each output instant.
type SincResampler struct {
	inRate, outRate int
	ratio           float64 // outRate/inRate, adjustable at runtime
	taps            int     // half-width of the sinc kernel, in input samples
	channels        int

	// history holds the tail of the previous input block so the
	// kernel can reach backward across block boundaries.
	history  [][]float64
	histLen  int
	inputPos float64 // fractional input-sample position of the next output frame, relative to the start of the unconsumed input
	blockIn  int     // nominal input frames requested per Process call
	kernel   []float64
}

// NewSincResampler builds a resampler converting inRate to outRate
// with a kernel reaching taps samples either side of the output
// instant. blockIn is the nominal number of input frames consumed per
// Process call; it determines FramesNeeded before any ratio
// adjustment.
func NewSincResampler(inRate, outRate, channels, taps, blockIn int) (*SincResampler, error) {
	if inRate <= 0 || outRate <= 0 {
		return nil, fmt.Errorf("resampler: rates must be positive")
	}
	if channels <= 0 {
		return nil, fmt.Errorf("resampler: channels must be positive")
	}
	if taps <= 0 {
		return nil, fmt.Errorf("resampler: taps must be positive")
	}
	if blockIn <= 0 {
		return nil, fmt.Errorf("resampler: blockIn must be positive")
	}

	history := make([][]float64, channels)
	for ch := range history {
		history[ch] = make([]float64, taps)
	}

	return &SincResampler{
		inRate:   inRate,
		outRate:  outRate,
		ratio:    float64(outRate) / float64(inRate),
		taps:     taps,
		channels: channels,
		history:  history,
		histLen:  taps,
		blockIn:  blockIn,
		kernel:   blackmanSincKernel(taps),
	}, nil
}

func (r *SincResampler) FramesNeeded() int {
	return r.blockIn
}

func (r *SincResampler) SetResampleRatioRelative(factor float64) error {
	if factor <= 0 {
		return fmt.Errorf("resampler: ratio factor must be positive, got %f", factor)
	}
	r.ratio *= factor
	return nil
}

// Process resamples one input block of FramesNeeded() frames per
// channel, returning as many output frames as the current ratio
// produces from that span.
func (r *SincResampler) Process(waveforms [][]float64) ([][]float64, error) {
	if len(waveforms) != r.channels {
		return nil, fmt.Errorf("resampler: got %d channels, want %d", len(waveforms), r.channels)
	}
	inFrames := r.blockIn
	for ch, w := range waveforms {
		if len(w) != inFrames {
			return nil, fmt.Errorf("resampler: channel %d has %d frames, want %d", ch, len(w), inFrames)
		}
	}

	// extended[ch] = history tail followed by this block, so the
	// kernel can look taps samples into the past even at the start
	// of the block.
	extended := make([][]float64, r.channels)
	for ch := range extended {
		ext := make([]float64, r.histLen+inFrames)
		copy(ext, r.history[ch])
		copy(ext[r.histLen:], waveforms[ch])
		extended[ch] = ext
	}

	// Emit every output instant that falls inside this block, starting
	// from the position carried over from the previous call.
	step := 1.0 / r.ratio
	outCount := 0
	if span := float64(inFrames) - r.inputPos; span > 0 {
		outCount = int(math.Ceil(span / step))
	}
	out := make([][]float64, r.channels)
	for ch := range out {
		out[ch] = make([]float64, outCount)
	}

	for ch := 0; ch < r.channels; ch++ {
		ext := extended[ch]
		pos := r.inputPos
		for o := 0; o < outCount; o++ {
			center := float64(r.histLen) + pos
			out[ch][o] = sincInterpolate(ext, center, r.taps, r.kernel)
			pos += step
		}
	}
	// Advance the fractional position past the frames actually
	// consumed this call, keeping the remainder for next time.
	r.inputPos += float64(outCount) * step
	r.inputPos -= float64(inFrames)

	for ch := 0; ch < r.channels; ch++ {
		tail := waveforms[ch]
		start := len(tail) - r.histLen
		if start < 0 {
			start = 0
		}
		copy(r.history[ch], make([]float64, r.histLen)) // clear, then fill from the right
		copy(r.history[ch][r.histLen-(len(tail)-start):], tail[start:])
	}

	return out, nil
}

// sincInterpolate evaluates the windowed-sinc reconstruction of x at
// fractional position center, using a kernel of radius taps samples.
func sincInterpolate(x []float64, center float64, taps int, kernel []float64) float64 {
	lo := int(math.Floor(center)) - taps + 1
	hi := int(math.Floor(center)) + taps
	if lo < 0 {
		lo = 0
	}
	if hi >= len(x) {
		hi = len(x) - 1
	}

	sum := 0.0
	for i := lo; i <= hi; i++ {
		d := center - float64(i)
		sum += x[i] * sincAt(d, taps, kernel)
	}
	return sum
}

// blackmanSincKernel returns a Blackman window of length 2*taps,
// applied to the sinc lobe weights in sincAt. gonum's window functions
// apply the window to an existing sequence in place, so we seed a
// slice of ones and let Blackman shape it.
func blackmanSincKernel(taps int) []float64 {
	seq := make([]float64, 2*taps)
	for i := range seq {
		seq[i] = 1
	}
	return window.Blackman(seq)
}

func sincAt(d float64, taps int, win []float64) float64 {
	if d == 0 {
		return 1
	}
	idx := d + float64(taps)
	i := int(math.Round(idx))
	w := 0.0
	if i >= 0 && i < len(win) {
		w = win[i]
	}
	x := math.Pi * d
	return w * math.Sin(x) / x
}
