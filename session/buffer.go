package session

import (
	"encoding/binary"
	"math"
	"time"
)

// maxBufferFrames caps a single recording at 10 minutes of 16 kHz audio.
// Frames past the cap are dropped; the controller warns once.
const maxBufferFrames = 16000 * 600

// Buffer accumulates captured samples for one recording. It is written
// by the capture consumer goroutine only and read after that goroutine
// has exited, so it needs no locking.
type Buffer struct {
	chunks  [][]float32
	frames  int
	clipped bool
}

// Append stores a chunk, truncating at the recording cap. It reports
// false the first time truncation happens so the caller can warn.
func (b *Buffer) Append(samples []float32) bool {
	if b.frames >= maxBufferFrames {
		first := !b.clipped
		b.clipped = true
		return !first
	}
	if b.frames+len(samples) > maxBufferFrames {
		samples = samples[:maxBufferFrames-b.frames]
	}
	b.chunks = append(b.chunks, samples)
	b.frames += len(samples)
	return true
}

// Samples returns the recording as one contiguous slice.
func (b *Buffer) Samples() []float32 {
	out := make([]float32, 0, b.frames)
	for _, c := range b.chunks {
		out = append(out, c...)
	}
	return out
}

func (b *Buffer) Frames() int {
	return b.frames
}

func (b *Buffer) Duration(sampleRate int) time.Duration {
	if sampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(b.frames) / float64(sampleRate) * float64(time.Second))
}

// pcmToFloat32 converts little-endian 16-bit mono PCM to normalized
// float32 samples. A trailing odd byte is ignored.
func pcmToFloat32(data []byte) []float32 {
	n := len(data) / 2
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		s := int16(binary.LittleEndian.Uint16(data[i*2:]))
		out[i] = float32(s) / float32(math.MaxInt16+1)
	}
	return out
}
