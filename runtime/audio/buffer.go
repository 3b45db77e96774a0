package audio

// UtteranceBuffer accumulates raw audio fragments between the start of a
// recording session and the detected end of the turn.
type UtteranceBuffer struct {
	chunks [][]byte
	size   int
}

// Append copies data into the buffer.
func (b *UtteranceBuffer) Append(data []byte) {
	if len(data) == 0 {
		return
	}
	chunk := make([]byte, len(data))
	copy(chunk, data)
	b.chunks = append(b.chunks, chunk)
	b.size += len(chunk)
}

// Len returns the number of buffered bytes.
func (b *UtteranceBuffer) Len() int {
	return b.size
}

// Freeze returns the concatenated audio and empties the buffer.
func (b *UtteranceBuffer) Freeze() []byte {
	out := make([]byte, 0, b.size)
	for _, c := range b.chunks {
		out = append(out, c...)
	}
	b.Reset()
	return out
}

// Reset discards all buffered audio.
func (b *UtteranceBuffer) Reset() {
	b.chunks = nil
	b.size = 0
}
