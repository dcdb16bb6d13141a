// Package config loads and validates the YAML document that
// describes devices, filters, mixers, and the processing pipeline.
// Per spec.md §1 this loader is an external collaborator: the engine
// package only ever consumes the plain Configuration value this
// package produces, never the YAML parsing machinery itself.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DeviceSpec names one end of the audio path: a device kind (e.g.
// "file" or "portaudio") and the parameters that kind needs to open.
type DeviceSpec struct {
	Type     string `yaml:"type"`
	Filename string `yaml:"filename,omitempty"`
	Device   string `yaml:"device,omitempty"`
}

// Devices is the top-level `devices` block (spec.md §6).
type Devices struct {
	Capture            DeviceSpec `yaml:"capture"`
	Playback           DeviceSpec `yaml:"playback"`
	Samplerate         int        `yaml:"samplerate"`
	Buffersize         int        `yaml:"buffersize"`
	Channels           int        `yaml:"channels"`
	CaptureSamplerate  int        `yaml:"capture_samplerate,omitempty"`
	Format             string     `yaml:"format"`
	EnableResampling   bool       `yaml:"enable_resampling,omitempty"`
	ResamplerType      string     `yaml:"resampler_type,omitempty"`
	SilenceThresholdDB float64    `yaml:"silence_threshold_db,omitempty"`
	SilenceTimeout     float64    `yaml:"silence_timeout,omitempty"`
	ExtraSamples       int        `yaml:"extra_samples,omitempty"`
}

// FilterConfig is a tagged union decoded in two passes: Type selects
// which Parameters shape to decode Parameters into.
type FilterConfig struct {
	Type       string    `yaml:"type"`
	Parameters yaml.Node `yaml:"parameters"`
}

// ConvParameters backs FilterConfig{Type: "Conv"}: either inline
// Values or a Filename to load them from (spec.md §3, §6).
type ConvParameters struct {
	Values   []float64 `yaml:"values,omitempty"`
	Filename string    `yaml:"filename,omitempty"`
}

// BiquadParameters backs FilterConfig{Type: "Biquad"}.
type BiquadParameters struct {
	Freq       float64 `yaml:"freq"`
	Q          float64 `yaml:"q"`
	Gain       float64 `yaml:"gain"`
	FilterType string  `yaml:"filter_type"`
}

// DelayParameters backs FilterConfig{Type: "Delay"}.
type DelayParameters struct {
	DelayMs float64 `yaml:"delay"`
}

// GainParameters backs FilterConfig{Type: "Gain"}.
type GainParameters struct {
	GainDB   float64 `yaml:"gain"`
	Inverted bool    `yaml:"inverted,omitempty"`
}

// MixerSource is one contribution to a mixer output channel.
type MixerSource struct {
	Channel  int     `yaml:"channel"`
	Gain     float64 `yaml:"gain"` // dB
	Inverted bool    `yaml:"inverted,omitempty"`
}

// MixerMapping is one output channel's sources.
type MixerMapping struct {
	Dest    int           `yaml:"dest"`
	Sources []MixerSource `yaml:"sources"`
}

// MixerConfig is one named entry of the top-level `mixers` map.
type MixerConfig struct {
	ChannelsIn  int            `yaml:"channels_in"`
	ChannelsOut int            `yaml:"channels_out"`
	Mapping     []MixerMapping `yaml:"mapping"`
}

// PipelineStep is one entry of the top-level `pipeline` list: either
// {type: Mixer, name} or {type: Filter, channel, names}.
type PipelineStep struct {
	Type    string   `yaml:"type"`
	Name    string   `yaml:"name,omitempty"`
	Channel int      `yaml:"channel,omitempty"`
	Names   []string `yaml:"names,omitempty"`
}

// Configuration is the full, immutable-once-loaded document
// (spec.md §3).
type Configuration struct {
	Devices  Devices                 `yaml:"devices"`
	Filters  map[string]FilterConfig `yaml:"filters"`
	Mixers   map[string]MixerConfig  `yaml:"mixers"`
	Pipeline []PipelineStep          `yaml:"pipeline"`
}

// Load reads and parses a Configuration document from path. It does
// not validate the result; call Validate separately, the same two
// step shape original_source/src/main.rs uses (parse, then
// validate_config).
func Load(path string) (*Configuration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not open config file: %w", err)
	}
	var cfg Configuration
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid config file: %w", err)
	}
	return &cfg, nil
}
