package transcriber

import (
	"bytes"
	"compress/zlib"
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"sync"
	"time"

	whisper "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"

	"murmur/config"
	"murmur/log"
	"murmur/vad"
)

// Whisper runs on-device inference through the whisper.cpp bindings.
// The model loads once at startup; each Transcribe call gets a fresh
// decoding context so utterances never condition on each other beyond
// the explicitly supplied prompt.
type Whisper struct {
	model whisper.Model
	lang  string
	mu    sync.Mutex
}

func NewWhisper(modelPath, lang string) (*Whisper, error) {
	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("whisper model %s: %w", modelPath, err)
	}
	model, err := whisper.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("loading whisper model: %w", err)
	}
	return &Whisper{model: model, lang: lang}, nil
}

func (w *Whisper) Name() string     { return "whisper" }
func (w *Whisper) Language() string { return w.lang }

func (w *Whisper) Close() error {
	return w.model.Close()
}

func (w *Whisper) Transcribe(ctx context.Context, samples []float32, sampleRate int, prompt string) (Result, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	_ = ctx // inference cannot be aborted once started

	start := time.Now()

	gated, err := vad.Filter(samples, vad.FilterConfig{
		MinSpeech:  config.MinSpeechDuration,
		MinSilence: config.MinSilenceDuration,
		Pad:        config.SpeechPad,
	})
	if err != nil {
		return Result{}, fmt.Errorf("vad filter: %w", err)
	}
	if len(gated) == 0 {
		return Result{NoSpeech: true}, nil
	}

	wctx, err := w.model.NewContext()
	if err != nil {
		return Result{}, fmt.Errorf("whisper context: %w", err)
	}
	if w.model.IsMultilingual() && w.lang != "" {
		if err := wctx.SetLanguage(w.lang); err != nil {
			return Result{}, fmt.Errorf("whisper language %q: %w", w.lang, err)
		}
	}
	wctx.SetTranslate(false)
	wctx.SetBeamSize(config.BeamSize)
	wctx.SetTemperature(float32(config.Temperature))
	wctx.SetMaxContext(0) // each utterance decoded independently
	if prompt != "" {
		wctx.SetInitialPrompt(prompt)
	}

	if err := wctx.Process(gated, nil, nil, nil); err != nil {
		return Result{}, fmt.Errorf("whisper process: %w", err)
	}

	var parts []string
	var segments []Segment
	for {
		seg, err := wctx.NextSegment()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Result{}, fmt.Errorf("whisper segment: %w", err)
		}
		s := Segment{
			Text:             strings.TrimSpace(seg.Text),
			Start:            seg.Start.Seconds(),
			End:              seg.End.Seconds(),
			AvgLogProb:       avgLogProb(seg.Tokens),
			CompressionRatio: compressionRatio(seg.Text),
		}
		segments = append(segments, s)
		if acceptSegment(s) {
			parts = append(parts, s.Text)
		}
	}

	text := strings.TrimSpace(strings.Join(parts, " "))
	log.Transcription(log.TranscribeStats{
		Backend:    "whisper",
		AudioS:     float64(len(samples)) / float64(sampleRate),
		TotalMs:    float64(time.Since(start).Milliseconds()),
		ContextLen: len(prompt),
		Segments:   len(segments),
	})

	return Result{
		Text:     text,
		NoSpeech: text == "",
		Duration: float64(len(gated)) / float64(sampleRate),
		Segments: segments,
	}, nil
}

// acceptSegment rejects the repetitive or low-confidence output whisper
// produces on marginal audio. NoSpeechProb is only populated by
// backends whose API reports it; zero never trips the gate.
func acceptSegment(s Segment) bool {
	if s.Text == "" {
		return false
	}
	if s.NoSpeechProb > config.NoSpeechThreshold {
		return false
	}
	if s.CompressionRatio > config.CompressionRatioThreshold {
		return false
	}
	if s.AvgLogProb < config.LogProbThreshold {
		return false
	}
	return true
}

func avgLogProb(tokens []whisper.Token) float64 {
	if len(tokens) == 0 {
		return 0
	}
	var sum float64
	for _, tok := range tokens {
		p := float64(tok.P)
		if p < 1e-10 {
			p = 1e-10
		}
		sum += math.Log(p)
	}
	return sum / float64(len(tokens))
}

// compressionRatio measures text repetitiveness: highly repetitive
// (hallucinated) output compresses far better than real speech.
func compressionRatio(text string) float64 {
	if text == "" {
		return 0
	}
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	zw.Write([]byte(text))
	zw.Close()
	return float64(len(text)) / float64(buf.Len())
}
