package audio

import "encoding/binary"

// WAV header constants.
const (
	wavHeaderSize = 44
	// MIMETypeWAV is the MIME type of WrapPCMAsWAV output.
	MIMETypeWAV = "audio/wav"
)

// Format describes raw PCM capture.
type Format struct {
	SampleRate    int
	Channels      int
	BitsPerSample int
}

// DefaultFormat is 16 kHz mono 16-bit PCM.
func DefaultFormat() Format {
	return Format{SampleRate: 16000, Channels: 1, BitsPerSample: 16}
}

// BytesPerSecond returns the raw data rate of the format.
func (f Format) BytesPerSecond() int {
	return f.SampleRate * f.Channels * f.BitsPerSample / 8
}

// WrapPCMAsWAV wraps raw little-endian PCM audio in a 44-byte WAV header.
func WrapPCMAsWAV(pcm []byte, f Format) []byte {
	dataSize := len(pcm)
	blockAlign := f.Channels * f.BitsPerSample / 8

	wav := make([]byte, wavHeaderSize+dataSize)

	copy(wav[0:4], "RIFF")
	binary.LittleEndian.PutUint32(wav[4:8], uint32(36+dataSize))
	copy(wav[8:12], "WAVE")

	copy(wav[12:16], "fmt ")
	binary.LittleEndian.PutUint32(wav[16:20], 16) // PCM subchunk size
	binary.LittleEndian.PutUint16(wav[20:22], 1)  // PCM
	binary.LittleEndian.PutUint16(wav[22:24], uint16(f.Channels))
	binary.LittleEndian.PutUint32(wav[24:28], uint32(f.SampleRate))
	binary.LittleEndian.PutUint32(wav[28:32], uint32(f.BytesPerSecond()))
	binary.LittleEndian.PutUint16(wav[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(wav[34:36], uint16(f.BitsPerSample))

	copy(wav[36:40], "data")
	binary.LittleEndian.PutUint32(wav[40:44], uint32(dataSize))
	copy(wav[44:], pcm)

	return wav
}
