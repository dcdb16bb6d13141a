package config

import "fmt"

// validSampleFormats are the only values devices.format may name
// (spec.md §3's SampleFormat is a closed tagged enumeration).
var validSampleFormats = map[string]bool{
	"S16LE": true,
	"S24LE": true,
	"S32LE": true,
	"F32LE": true,
	"F64LE": true,
}

// Validate checks cross references within the document: every name
// a pipeline step mentions must exist in the matching map, every
// pipeline step must have a recognized type, devices.format must name
// one of the five SampleFormat variants, and the channel count flowing
// into each pipeline step must match what that step expects - a
// Filter's channel must be in range for the channel count flowing into
// it, and a Mixer's channels_in must match it exactly (spec.md §7:
// "incompatible channel counts at pipeline boundaries" is a
// Configuration-class error, reported here before streaming begins,
// not discovered per-chunk once the pipeline is already running).
// Per-filter validation (unknown filter type, negative delay,
// malformed coefficient file) lives in the engine package next to the
// code that builds each filter, mirroring
// original_source/src/filters.rs's validate_filter, which lives in
// filters.rs rather than config.rs.
func Validate(cfg *Configuration) error {
	if cfg.Devices.Samplerate <= 0 {
		return fmt.Errorf("devices.samplerate must be positive")
	}
	if cfg.Devices.Buffersize <= 0 {
		return fmt.Errorf("devices.buffersize must be positive")
	}
	if cfg.Devices.Channels <= 0 {
		return fmt.Errorf("devices.channels must be positive")
	}
	if !validSampleFormats[cfg.Devices.Format] {
		return fmt.Errorf("devices.format %q is not a recognized sample format (want one of S16LE, S24LE, S32LE, F32LE, F64LE)", cfg.Devices.Format)
	}

	channels := cfg.Devices.Channels
	for _, step := range cfg.Pipeline {
		switch step.Type {
		case "Mixer":
			mixer, ok := cfg.Mixers[step.Name]
			if !ok {
				return fmt.Errorf("pipeline references unknown mixer %q", step.Name)
			}
			if mixer.ChannelsIn != channels {
				return fmt.Errorf("pipeline: mixer %q expects %d input channels, but %d channels reach it", step.Name, mixer.ChannelsIn, channels)
			}
			channels = mixer.ChannelsOut
		case "Filter":
			if step.Channel < 0 || step.Channel >= channels {
				return fmt.Errorf("pipeline: filter step references channel %d, out of range [0,%d)", step.Channel, channels)
			}
			for _, name := range step.Names {
				if _, ok := cfg.Filters[name]; !ok {
					return fmt.Errorf("pipeline references unknown filter %q", name)
				}
			}
		default:
			return fmt.Errorf("pipeline step has unknown type %q", step.Type)
		}
	}
	return nil
}
