package engine

import "fmt"

// MixerMapping describes one contribution to an output channel: the
// input channel index, its linear gain, and whether it is inverted.
type MixerMapping struct {
	InputChannel int
	GainLinear   float64
	Inverted     bool
}

// Mixer routes and sums input channels into a (possibly different
// number of) output channels. It carries no per-chunk state.
type Mixer struct {
	ChannelsIn  int
	ChannelsOut int
	Mapping     [][]MixerMapping // one slice of contributions per output channel
}

// NewMixer validates that every mapped input channel index is within
// channelsIn and returns a ready-to-use Mixer.
func NewMixer(channelsIn, channelsOut int, mapping [][]MixerMapping) (*Mixer, error) {
	if len(mapping) != channelsOut {
		return nil, fmt.Errorf("mixer: mapping has %d output channels, want %d", len(mapping), channelsOut)
	}
	for out, contribs := range mapping {
		for _, c := range contribs {
			if c.InputChannel < 0 || c.InputChannel >= channelsIn {
				return nil, fmt.Errorf("mixer: output %d references input channel %d, out of range [0,%d)", out, c.InputChannel, channelsIn)
			}
		}
	}
	return &Mixer{ChannelsIn: channelsIn, ChannelsOut: channelsOut, Mapping: mapping}, nil
}

// ProcessChunk produces a new chunk with ChannelsOut waveforms, each
// frame being the weighted sum of its mapped input channels.
func (m *Mixer) ProcessChunk(chunk *AudioChunk) (*AudioChunk, error) {
	if len(chunk.Waveforms) != m.ChannelsIn {
		return nil, fmt.Errorf("mixer: chunk has %d channels, want %d", len(chunk.Waveforms), m.ChannelsIn)
	}

	out := make([][]float64, m.ChannelsOut)
	for outCh := 0; outCh < m.ChannelsOut; outCh++ {
		w := make([]float64, chunk.Frames)
		for _, c := range m.Mapping[outCh] {
			sign := 1.0
			if c.Inverted {
				sign = -1.0
			}
			gain := sign * c.GainLinear
			in := chunk.Waveforms[c.InputChannel]
			for i := 0; i < chunk.Frames; i++ {
				w[i] += gain * in[i]
			}
		}
		out[outCh] = w
	}

	result := NewAudioChunk(out, chunk.ValidFrames)
	return result, nil
}
