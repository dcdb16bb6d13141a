package engine

// sendSilence emits samples frames of zero audio downstream as whole
// chunksize-frame chunks, with valid_frames set to the remainder on
// the final, possibly short, chunk. Grounded on
// original_source/src/filedevice.rs's send_silence, called at
// end-of-capture to flush the configured extra_samples reserve.
func sendSilence(samples, channels, chunksize int, audioOut chan<- AudioMessage) {
	samplesLeft := samples
	for samplesLeft > 0 {
		chunkSamples := chunksize
		if samplesLeft < chunksize {
			chunkSamples = samplesLeft
		}
		waveforms := make([][]float64, channels)
		for ch := range waveforms {
			waveforms[ch] = make([]float64, chunksize)
		}
		chunk := NewAudioChunk(waveforms, chunkSamples)
		audioOut <- AudioMsg(chunk)
		samplesLeft -= chunkSamples
	}
}
