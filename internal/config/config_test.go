package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
devices:
  samplerate: 48000
  buffersize: 1024
  channels: 2
  format: S16LE
  capture:
    type: file
    filename: /tmp/in.raw
  playback:
    type: file
    filename: /tmp/out.raw

filters:
  highshelf:
    type: Biquad
    parameters:
      freq: 8000
      q: 0.7
      gain: 3
      filter_type: Highshelf

mixers:
  mono:
    channels_in: 2
    channels_out: 1
    mapping:
      - dest: 0
        sources:
          - channel: 0
            gain: -3
          - channel: 1
            gain: -3

pipeline:
  - type: Mixer
    name: mono
  - type: Filter
    channel: 0
    names: [highshelf]
`

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadParsesFullDocument(t *testing.T) {
	path := writeTempConfig(t, sampleConfig)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 48000, cfg.Devices.Samplerate)
	assert.Equal(t, 2, cfg.Devices.Channels)
	require.Contains(t, cfg.Filters, "highshelf")
	require.Contains(t, cfg.Mixers, "mono")
	require.Len(t, cfg.Pipeline, 2)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not open config file")
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeTempConfig(t, "devices: [this is not a map")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config file")
}

func TestValidateAcceptsSampleConfig(t *testing.T) {
	path := writeTempConfig(t, sampleConfig)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.NoError(t, Validate(cfg))
}

func TestValidateRejectsNonPositiveSamplerate(t *testing.T) {
	cfg := &Configuration{Devices: Devices{Samplerate: 0, Buffersize: 1024, Channels: 2}}
	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "samplerate")
}

func TestValidateRejectsUnknownMixerReference(t *testing.T) {
	cfg := &Configuration{
		Devices:  Devices{Samplerate: 48000, Buffersize: 1024, Channels: 2, Format: "S16LE"},
		Pipeline: []PipelineStep{{Type: "Mixer", Name: "missing"}},
	}
	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mixer")
}

func TestValidateRejectsUnknownFilterReference(t *testing.T) {
	cfg := &Configuration{
		Devices:  Devices{Samplerate: 48000, Buffersize: 1024, Channels: 2, Format: "S16LE"},
		Filters:  map[string]FilterConfig{},
		Pipeline: []PipelineStep{{Type: "Filter", Channel: 0, Names: []string{"missing"}}},
	}
	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown filter")
}

func TestValidateRejectsUnknownStepType(t *testing.T) {
	cfg := &Configuration{
		Devices:  Devices{Samplerate: 48000, Buffersize: 1024, Channels: 2, Format: "S16LE"},
		Pipeline: []PipelineStep{{Type: "Bogus"}},
	}
	err := Validate(cfg)
	require.Error(t, err)
}

func TestValidateRejectsUnknownFormat(t *testing.T) {
	cfg := &Configuration{Devices: Devices{Samplerate: 48000, Buffersize: 1024, Channels: 2, Format: "S16L"}}
	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "devices.format")
}

func TestValidateRejectsMixerChannelsInMismatch(t *testing.T) {
	cfg := &Configuration{
		Devices: Devices{Samplerate: 48000, Buffersize: 1024, Channels: 2, Format: "S16LE"},
		Mixers: map[string]MixerConfig{
			"mono": {ChannelsIn: 4, ChannelsOut: 1},
		},
		Pipeline: []PipelineStep{{Type: "Mixer", Name: "mono"}},
	}
	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "input channels")
}

func TestValidateRejectsFilterChannelOutOfRangeAfterMixer(t *testing.T) {
	cfg := &Configuration{
		Devices: Devices{Samplerate: 48000, Buffersize: 1024, Channels: 2, Format: "S16LE"},
		Filters: map[string]FilterConfig{
			"boost": {Type: "Gain"},
		},
		Mixers: map[string]MixerConfig{
			"mono": {ChannelsIn: 2, ChannelsOut: 1},
		},
		Pipeline: []PipelineStep{
			{Type: "Mixer", Name: "mono"},
			{Type: "Filter", Channel: 1, Names: []string{"boost"}},
		},
	}
	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

func TestValidateRejectsFilterChannelOutOfRangeOnDevice(t *testing.T) {
	cfg := &Configuration{
		Devices: Devices{Samplerate: 48000, Buffersize: 1024, Channels: 2, Format: "S16LE"},
		Filters: map[string]FilterConfig{
			"boost": {Type: "Gain"},
		},
		Pipeline: []PipelineStep{
			{Type: "Filter", Channel: 5, Names: []string{"boost"}},
		},
	}
	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}
