package audio

import (
	"encoding/binary"
	"math"
)

const (
	// pcmBytesPerSample is the number of bytes per 16-bit PCM sample.
	pcmBytesPerSample = 2
	// pcmMaxAmplitude is the maximum amplitude for 16-bit signed audio.
	pcmMaxAmplitude = 32768.0
)

// Level computes the RMS energy of little-endian 16-bit PCM audio,
// normalized to [0,1]. A trailing odd byte is ignored.
func Level(pcm []byte) float64 {
	n := len(pcm) / pcmBytesPerSample
	if n == 0 {
		return 0
	}

	var sum float64
	for i := 0; i < n; i++ {
		sample := int16(binary.LittleEndian.Uint16(pcm[i*pcmBytesPerSample:]))
		normalized := float64(sample) / pcmMaxAmplitude
		sum += normalized * normalized
	}

	rms := math.Sqrt(sum / float64(n))
	if rms > 1 {
		return 1
	}
	return rms
}

// LevelMeter holds the level of the most recent accepted chunk. The monitor
// reads it on its own interval, independent of chunk arrival.
type LevelMeter struct {
	level float64
}

// Observe updates the meter from a PCM chunk.
func (m *LevelMeter) Observe(pcm []byte) {
	m.level = Level(pcm)
}

// Level returns the last observed level.
func (m *LevelMeter) Level() float64 {
	return m.level
}

// Reset zeroes the meter.
func (m *LevelMeter) Reset() {
	m.level = 0
}
