package engine

import (
	"fmt"
	"math"
	"strings"

	"github.com/markterrill/camilladsp-go/internal/config"
)

// Filter is the one-method contract every per-channel DSP element
// satisfies: transform a waveform in place. Dispatch across the
// Conv/Biquad/Delay/Gain variants happens once, at FilterGroup
// construction, by building the concrete type and storing it behind
// this interface - the same shape as original_source/src/filters.rs's
// `Filter` trait and `Box<dyn Filter>`.
type Filter interface {
	ProcessWaveform(waveform []float64) error
}

// FilterGroup applies a sequence of filters, in order, to one
// channel's waveform. It owns its filters exclusively; their state
// (biquad registers, delay ring buffers, FFT overlap buffers) lives
// for the lifetime of the containing Pipeline.
type FilterGroup struct {
	channel int
	filters []Filter
}

// NewFilterGroupFromConfig builds a FilterGroup for channel from the
// named filters in cfg.Filters, resolved in the given order.
// waveformLength is the pipeline's chunksize, needed to size the FFT
// convolver's block; sampleRate parameterizes biquad/delay filters.
func NewFilterGroupFromConfig(channel int, names []string, filters map[string]config.FilterConfig, waveformLength, sampleRate int) (*FilterGroup, error) {
	group := &FilterGroup{channel: channel}
	for _, name := range names {
		fc, ok := filters[name]
		if !ok {
			return nil, fmt.Errorf("filter group: unknown filter %q", name)
		}
		filter, err := buildFilter(fc, waveformLength, sampleRate)
		if err != nil {
			return nil, fmt.Errorf("filter %q: %w", name, err)
		}
		group.filters = append(group.filters, filter)
	}
	return group, nil
}

func buildFilter(fc config.FilterConfig, waveformLength, sampleRate int) (Filter, error) {
	switch fc.Type {
	case "Conv":
		var params config.ConvParameters
		if err := fc.Parameters.Decode(&params); err != nil {
			return nil, fmt.Errorf("decoding Conv parameters: %w", err)
		}
		coeffs, err := convCoefficients(params)
		if err != nil {
			return nil, err
		}
		return NewFFTConv(waveformLength, coeffs)
	case "Biquad":
		var params config.BiquadParameters
		if err := fc.Parameters.Decode(&params); err != nil {
			return nil, fmt.Errorf("decoding Biquad parameters: %w", err)
		}
		kind, err := parseBiquadType(params.FilterType)
		if err != nil {
			return nil, err
		}
		coeffs := NewBiquadCoefficients(sampleRate, params.Freq, params.Q, params.Gain, kind)
		return NewBiquad(coeffs), nil
	case "Delay":
		var params config.DelayParameters
		if err := fc.Parameters.Decode(&params); err != nil {
			return nil, fmt.Errorf("decoding Delay parameters: %w", err)
		}
		if params.DelayMs < 0 {
			return nil, fmt.Errorf("negative delay specified")
		}
		samples := DelaySamplesFromMs(params.DelayMs, sampleRate)
		return NewDelay(samples)
	case "Gain":
		var params config.GainParameters
		if err := fc.Parameters.Decode(&params); err != nil {
			return nil, fmt.Errorf("decoding Gain parameters: %w", err)
		}
		return NewGain(params.GainDB, params.Inverted), nil
	default:
		return nil, fmt.Errorf("unknown filter type %q", fc.Type)
	}
}

func convCoefficients(params config.ConvParameters) ([]float64, error) {
	if len(params.Values) > 0 {
		return params.Values, nil
	}
	if params.Filename != "" {
		return readCoeffFile(params.Filename)
	}
	return nil, fmt.Errorf("Conv filter needs either values or filename")
}

func parseBiquadType(s string) (BiquadType, error) {
	switch strings.ToLower(s) {
	case "lowpass":
		return BiquadLowpass, nil
	case "highpass":
		return BiquadHighpass, nil
	case "lowshelf":
		return BiquadLowshelf, nil
	case "highshelf":
		return BiquadHighshelf, nil
	case "peaking":
		return BiquadPeaking, nil
	case "notch":
		return BiquadNotch, nil
	case "allpass":
		return BiquadAllpass, nil
	case "bandpass":
		return BiquadBandpass, nil
	default:
		return 0, fmt.Errorf("unknown biquad filter_type %q", s)
	}
}

// ValidateFilterConfig mirrors original_source/src/filters.rs's
// validate_filter: a cheap structural check, run once before
// streaming begins, that gives a readable error instead of failing
// deep inside FilterGroup construction.
func ValidateFilterConfig(fc config.FilterConfig) error {
	switch fc.Type {
	case "Conv":
		var params config.ConvParameters
		if err := fc.Parameters.Decode(&params); err != nil {
			return err
		}
		if len(params.Values) == 0 && params.Filename == "" {
			return fmt.Errorf("Conv filter needs either values or filename")
		}
		return nil
	case "Biquad":
		var params config.BiquadParameters
		if err := fc.Parameters.Decode(&params); err != nil {
			return err
		}
		_, err := parseBiquadType(params.FilterType)
		return err
	case "Delay":
		var params config.DelayParameters
		if err := fc.Parameters.Decode(&params); err != nil {
			return err
		}
		if params.DelayMs < 0 {
			return fmt.Errorf("negative delay specified")
		}
		return nil
	case "Gain":
		return nil
	default:
		return fmt.Errorf("unknown filter type %q", fc.Type)
	}
}

// processChunk applies every filter in order to the group's channel,
// in place.
func (g *FilterGroup) processChunk(chunk *AudioChunk) error {
	if g.channel < 0 || g.channel >= len(chunk.Waveforms) {
		return fmt.Errorf("filter group: channel %d out of range for %d channels", g.channel, len(chunk.Waveforms))
	}
	for _, f := range g.filters {
		if err := f.ProcessWaveform(chunk.Waveforms[g.channel]); err != nil {
			return err
		}
	}
	return nil
}

// PipelineStep holds either a mixer or a filter group (exactly one of
// the two fields is set), applied to a chunk in declared order by
// Pipeline.ProcessChunk.
type PipelineStep struct {
	mixer       *Mixer
	filterGroup *FilterGroup
}

// Pipeline is the fixed, ordered sequence of mixer/filter steps built
// once at startup and owned exclusively by the processing worker.
type Pipeline struct {
	steps []PipelineStep
}

// NewPipelineFromConfig builds a Pipeline from cfg, resolving each
// step's mixer or filter-group from cfg.Mixers / cfg.Filters.
func NewPipelineFromConfig(cfg *config.Configuration) (*Pipeline, error) {
	p := &Pipeline{}
	for _, step := range cfg.Pipeline {
		switch step.Type {
		case "Mixer":
			mixcfg, ok := cfg.Mixers[step.Name]
			if !ok {
				return nil, fmt.Errorf("pipeline: unknown mixer %q", step.Name)
			}
			mixer, err := mixerFromConfig(mixcfg)
			if err != nil {
				return nil, fmt.Errorf("mixer %q: %w", step.Name, err)
			}
			p.steps = append(p.steps, PipelineStep{mixer: mixer})
		case "Filter":
			group, err := NewFilterGroupFromConfig(step.Channel, step.Names, cfg.Filters, cfg.Devices.Buffersize, cfg.Devices.Samplerate)
			if err != nil {
				return nil, err
			}
			p.steps = append(p.steps, PipelineStep{filterGroup: group})
		default:
			return nil, fmt.Errorf("pipeline: unknown step type %q", step.Type)
		}
	}
	return p, nil
}

func mixerFromConfig(mc config.MixerConfig) (*Mixer, error) {
	mapping := make([][]MixerMapping, mc.ChannelsOut)
	for _, m := range mc.Mapping {
		if m.Dest < 0 || m.Dest >= mc.ChannelsOut {
			return nil, fmt.Errorf("mixer: dest %d out of range [0,%d)", m.Dest, mc.ChannelsOut)
		}
		for _, src := range m.Sources {
			mapping[m.Dest] = append(mapping[m.Dest], MixerMapping{
				InputChannel: src.Channel,
				GainLinear:   math.Pow(10, src.Gain/20),
				Inverted:     src.Inverted,
			})
		}
	}
	return NewMixer(mc.ChannelsIn, mc.ChannelsOut, mapping)
}

// ProcessChunk applies every pipeline step in declared order,
// returning the (possibly channel-count-changed) resulting chunk.
func (p *Pipeline) ProcessChunk(chunk *AudioChunk) (*AudioChunk, error) {
	var err error
	for _, step := range p.steps {
		switch {
		case step.mixer != nil:
			chunk, err = step.mixer.ProcessChunk(chunk)
			if err != nil {
				return nil, err
			}
		case step.filterGroup != nil:
			if err := step.filterGroup.processChunk(chunk); err != nil {
				return nil, err
			}
		}
	}
	return chunk, nil
}
