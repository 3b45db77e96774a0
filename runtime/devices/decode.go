package devices

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"mime"
	"strings"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/wav"

	"github.com/AltairaLabs/interviewkit/runtime/audio"
)

var (
	// ErrUnavailable is returned when the binary was built without device support.
	ErrUnavailable = errors.New("audio devices unavailable: build with -tags portaudio")

	// ErrUnsupportedFormat is returned for clips that cannot be decoded.
	ErrUnsupportedFormat = errors.New("unsupported audio format")
)

// Decode opens clip as a beep stream. MP3 and WAV are supported.
func Decode(clip audio.Clip) (beep.StreamSeekCloser, beep.Format, error) {
	if len(clip.Data) == 0 {
		return nil, beep.Format{}, fmt.Errorf("decode %s: empty clip", clip.MIMEType)
	}
	switch mediaType(clip.MIMEType) {
	case "audio/mpeg", "audio/mp3":
		return mp3.Decode(io.NopCloser(bytes.NewReader(clip.Data)))
	case audio.MIMETypeWAV, "audio/wave", "audio/x-wav", "audio/vnd.wave":
		stream, format, err := wav.Decode(bytes.NewReader(clip.Data))
		if err != nil {
			return nil, format, err
		}
		if format.Precision == 2 {
			return fullScale(stream), format, nil
		}
		return stream, format, nil
	default:
		return nil, beep.Format{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, clip.MIMEType)
	}
}

// beep v1 divides 16-bit WAV samples by 1<<16-1 instead of 1<<15, so decoded
// audio peaks at half scale. Gain adds its value to unity: 1 doubles.
const wav16Gain = 1

// scaledStream applies a gain while keeping seeking and closing.
type scaledStream struct {
	beep.StreamSeekCloser
	gain *effects.Gain
}

func fullScale(stream beep.StreamSeekCloser) beep.StreamSeekCloser {
	return &scaledStream{
		StreamSeekCloser: stream,
		gain:             &effects.Gain{Streamer: stream, Gain: wav16Gain},
	}
}

func (s *scaledStream) Stream(samples [][2]float64) (int, bool) {
	return s.gain.Stream(samples)
}

func mediaType(mimeType string) string {
	mt, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(mimeType))
	}
	return mt
}

// samplesToPCM converts samples to little-endian 16-bit PCM.
func samplesToPCM(samples []int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}
