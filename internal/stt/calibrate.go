package stt

import "math"

// Ambient-noise calibration. The energy threshold is estimated from a short
// leading sample of the recording, then the leading stretch that stays below
// the threshold is dropped so providers are not fed the silence before the
// speaker starts.

const (
	calibrationMs = 300 // leading window used to estimate ambient energy
	frameMs       = 20
	energyFloor   = 300.0 // minimum threshold, matches common recognizer defaults
	thresholdGain = 1.5   // speech must exceed ambient energy by this factor
)

// CalibratePCM estimates an energy threshold from the leading sample of
// 16-bit mono PCM and returns the audio with the leading below-threshold
// window trimmed. If no frame ever crosses the threshold the input is
// returned unchanged rather than producing empty audio.
func CalibratePCM(pcm []byte, sampleRate int) []byte {
	if sampleRate <= 0 || len(pcm) < 4 {
		return pcm
	}

	samples := toSamples(pcm)
	frameLen := sampleRate * frameMs / 1000
	if frameLen == 0 || len(samples) < 2*frameLen {
		return pcm
	}

	calibLen := sampleRate * calibrationMs / 1000
	if calibLen > len(samples) {
		calibLen = len(samples)
	}
	threshold := thresholdGain * rms(samples[:calibLen])
	if threshold < energyFloor {
		threshold = energyFloor
	}

	start := -1
	for off := 0; off+frameLen <= len(samples); off += frameLen {
		if rms(samples[off:off+frameLen]) > threshold {
			start = off
			break
		}
	}
	if start <= 0 {
		return pcm
	}

	// Keep one frame of lead-in so the first word is not clipped.
	start -= frameLen
	return pcm[start*2:]
}

func toSamples(pcm []byte) []int16 {
	samples := make([]int16, len(pcm)/2)
	for i := range samples {
		samples[i] = int16(uint16(pcm[2*i]) | uint16(pcm[2*i+1])<<8)
	}
	return samples
}

func rms(samples []int16) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		f := float64(s)
		sum += f * f
	}
	return math.Sqrt(sum / float64(len(samples)))
}
