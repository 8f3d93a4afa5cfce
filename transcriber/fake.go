package transcriber

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Fake returns canned results for tests.
type Fake struct {
	text  string
	err   error
	delay time.Duration

	mu      sync.Mutex
	calls   int
	prompts []string
}

func NewFake(text string, err error) *Fake {
	return &Fake{text: text, err: err}
}

// SetDelay makes Transcribe block, simulating backend latency.
func (f *Fake) SetDelay(d time.Duration) { f.delay = d }

func (f *Fake) Name() string     { return "fake" }
func (f *Fake) Language() string { return "en" }

func (f *Fake) Transcribe(_ context.Context, samples []float32, _ int, prompt string) (Result, error) {
	f.mu.Lock()
	f.calls++
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()

	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return Result{}, fmt.Errorf("fake transcriber error: %w", f.err)
	}
	return Result{Text: f.text, NoSpeech: f.text == ""}, nil
}

func (f *Fake) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *Fake) Prompts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.prompts...)
}
