package vad

import (
	"testing"
	"time"
)

func TestProcessorSilenceNeverDetectsVoice(t *testing.T) {
	p, err := NewProcessor()
	if err != nil {
		t.Fatal(err)
	}

	silence := make([]byte, frameBytes*50) // 1s of zeros
	p.Process(silence)

	if p.VoiceDetected() {
		t.Error("voice detected in pure silence")
	}
	if p.HasSpeechTick() {
		t.Error("HasSpeechTick true for pure silence")
	}
}

func TestProcessorBuffersPartialFrames(t *testing.T) {
	p, err := NewProcessor()
	if err != nil {
		t.Fatal(err)
	}

	// Feed one frame in two odd-sized chunks; must not panic or lose data.
	data := make([]byte, frameBytes)
	p.Process(data[:100])
	p.Process(data[100:])

	p.mu.Lock()
	total := p.totalFrames
	p.mu.Unlock()
	if total != 1 {
		t.Errorf("totalFrames = %d, want 1", total)
	}
}

func TestProcessorReset(t *testing.T) {
	p, err := NewProcessor()
	if err != nil {
		t.Fatal(err)
	}
	p.Process(make([]byte, frameBytes+10))
	p.Reset()

	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.buf) != 0 || p.voiceDetected || p.speechRun != 0 {
		t.Error("Reset did not clear state")
	}
}

func TestFilterSilenceReturnsNil(t *testing.T) {
	samples := make([]float32, SampleRate) // 1s of silence
	out, err := Filter(samples, FilterConfig{
		MinSpeech:  250 * time.Millisecond,
		MinSilence: 2 * time.Second,
		Pad:        400 * time.Millisecond,
	})
	if err != nil {
		t.Fatal(err)
	}
	if out != nil {
		t.Errorf("expected nil for silence, got %d samples", len(out))
	}
}

func TestFilterShortInput(t *testing.T) {
	out, err := Filter(make([]float32, frameSamples-1), FilterConfig{})
	if err != nil {
		t.Fatal(err)
	}
	if out != nil {
		t.Error("expected nil for input shorter than one frame")
	}
}

func TestFramesFor(t *testing.T) {
	for _, tt := range []struct {
		d    time.Duration
		want int
	}{
		{250 * time.Millisecond, 12},
		{2 * time.Second, 100},
		{400 * time.Millisecond, 20},
		{0, 1}, // floor of one frame
	} {
		if got := framesFor(tt.d); got != tt.want {
			t.Errorf("framesFor(%v) = %d, want %d", tt.d, got, tt.want)
		}
	}
}
