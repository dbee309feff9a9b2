package wav

import "encoding/binary"

// pcm16ToMono converts interleaved 16-bit signed little-endian PCM into one
// float32 per frame. Each channel sample is scaled by 1/32768 and the frame
// value is the mean of its channels. A trailing partial frame is dropped.
func pcm16ToMono(pcm []byte, channels int) []float32 {
	if channels <= 0 {
		return nil
	}
	frames := len(pcm) / 2 / channels
	mono := make([]float32, frames)
	for i := range frames {
		var sum float32
		for ch := range channels {
			idx := (i*channels + ch) * 2
			sample := int16(binary.LittleEndian.Uint16(pcm[idx : idx+2]))
			sum += float32(sample) / 32768.0
		}
		mono[i] = sum / float32(channels)
	}
	return mono
}
