// Package transcriber turns captured audio into text. Two backends
// exist: a local whisper.cpp model and remote transcription APIs. The
// backend is chosen once at startup and never swapped mid-session.
package transcriber

import (
	"context"
	"fmt"

	"murmur/config"
)

type Segment struct {
	Text             string
	Start            float64
	End              float64
	NoSpeechProb     float64
	AvgLogProb       float64
	CompressionRatio float64
}

// Result is a completed transcription. NoSpeech means the backend ran
// but produced no accepted text; it is not an error.
type Result struct {
	Text     string
	NoSpeech bool
	Duration float64
	Segments []Segment
}

type Backend interface {
	Name() string
	Language() string
	// Transcribe converts mono float32 samples to text. prompt biases
	// decoding toward recent vocabulary and may be empty.
	Transcribe(ctx context.Context, samples []float32, sampleRate int, prompt string) (Result, error)
}

// New selects the backend from config. When remote mode is configured
// without any API credential it falls back once to the local model;
// fellBack reports that so the caller can log it. The fallback decision
// is made here, at startup, and never re-evaluated.
func New(cfg *config.Config) (b Backend, fellBack bool, err error) {
	switch cfg.Mode {
	case config.ModeRemote:
		if cfg.OpenAIKey != "" {
			return NewOpenAI(cfg.OpenAIKey, cfg.Language, cfg.Format), false, nil
		}
		if cfg.GroqKey != "" {
			return NewGroq(cfg.GroqKey, cfg.Language, cfg.Format), false, nil
		}
		w, err := NewWhisper(cfg.ModelPath, cfg.Language)
		if err != nil {
			return nil, true, fmt.Errorf("no remote API key set and local fallback unavailable: %w", err)
		}
		return w, true, nil
	case config.ModeLocal:
		w, err := NewWhisper(cfg.ModelPath, cfg.Language)
		if err != nil {
			return nil, false, err
		}
		return w, false, nil
	default:
		return nil, false, fmt.Errorf("unknown mode %q", cfg.Mode)
	}
}
