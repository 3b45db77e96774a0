// Package devices binds the audio boundary to real hardware.
//
// Microphone captures 16-bit mono PCM through PortAudio and Speaker plays
// MP3 or WAV clips through beep. Both need cgo and the native audio
// libraries, so they are only built with the portaudio build tag:
//
//	go build -tags portaudio ./...
//
// Without the tag NewMicrophone and NewSpeaker return ErrUnavailable.
// Decoding and PCM conversion are pure Go and always available.
package devices
