package audio

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
)

// pcmOf encodes samples as little-endian 16-bit PCM.
func pcmOf(samples ...int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}

// constantPCM returns n samples of the given amplitude.
func constantPCM(amplitude int16, n int) []byte {
	samples := make([]int16, n)
	for i := range samples {
		samples[i] = amplitude
	}
	return pcmOf(samples...)
}

func TestLevel(t *testing.T) {
	tests := []struct {
		name string
		pcm  []byte
		want float64
	}{
		{"empty", nil, 0},
		{"single byte", []byte{0x01}, 0},
		{"silence", constantPCM(0, 160), 0},
		{"half scale", constantPCM(16384, 160), 0.5},
		{"negative half scale", constantPCM(-16384, 160), 0.5},
		{"full negative", constantPCM(-32768, 4), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Level(tt.pcm), 1e-9)
		})
	}
}

func TestLevel_IgnoresTrailingByte(t *testing.T) {
	pcm := append(constantPCM(16384, 2), 0x7f)
	assert.InDelta(t, 0.5, Level(pcm), 1e-9)
}

func TestLevelMeter(t *testing.T) {
	var m LevelMeter
	assert.Zero(t, m.Level())

	m.Observe(constantPCM(3277, 10))
	assert.InDelta(t, 0.1, m.Level(), 0.001)

	m.Reset()
	assert.Zero(t, m.Level())
}
