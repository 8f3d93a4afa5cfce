package session

import (
	"encoding/binary"
	"testing"
	"time"
)

func TestBufferAppendAndSamples(t *testing.T) {
	var b Buffer
	b.Append([]float32{0.1, 0.2})
	b.Append([]float32{0.3})

	if b.Frames() != 3 {
		t.Errorf("Frames = %d, want 3", b.Frames())
	}
	got := b.Samples()
	want := []float32{0.1, 0.2, 0.3}
	if len(got) != len(want) {
		t.Fatalf("Samples len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Samples[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestBufferDuration(t *testing.T) {
	var b Buffer
	b.Append(make([]float32, 8000))
	if d := b.Duration(16000); d != 500*time.Millisecond {
		t.Errorf("Duration = %v, want 500ms", d)
	}
	if d := b.Duration(0); d != 0 {
		t.Errorf("Duration with zero rate = %v, want 0", d)
	}
}

func TestBufferCap(t *testing.T) {
	var b Buffer
	if !b.Append(make([]float32, maxBufferFrames)) {
		t.Error("append up to the cap should succeed")
	}
	if b.Append(make([]float32, 100)) {
		t.Error("first append past the cap should report truncation")
	}
	if !b.Append(make([]float32, 100)) {
		t.Error("later appends past the cap should be silent")
	}
	if b.Frames() != maxBufferFrames {
		t.Errorf("Frames = %d, want %d", b.Frames(), maxBufferFrames)
	}
}

func TestPCMToFloat32(t *testing.T) {
	data := make([]byte, 6)
	binary.LittleEndian.PutUint16(data[0:], uint16(int16(0)))
	binary.LittleEndian.PutUint16(data[2:], uint16(int16(16384)))
	minSample := int16(-32768)
	binary.LittleEndian.PutUint16(data[4:], uint16(minSample))

	got := pcmToFloat32(data)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[0] != 0 {
		t.Errorf("sample 0 = %v, want 0", got[0])
	}
	if got[1] != 0.5 {
		t.Errorf("sample 1 = %v, want 0.5", got[1])
	}
	if got[2] != -1 {
		t.Errorf("sample 2 = %v, want -1", got[2])
	}

	// odd trailing byte is dropped
	if n := len(pcmToFloat32(data[:5])); n != 2 {
		t.Errorf("odd input len = %d samples, want 2", n)
	}
}
