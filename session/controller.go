// Package session owns the recording lifecycle. A Controller moves
// between Idle, Recording and Transcribing in response to hotkey events,
// collects captured audio, hands it to the transcription backend and
// emits the resulting text to the output sink.
package session

import (
	"context"
	"sync"
	"sync/atomic"

	"murmur/audio"
	"murmur/log"
	"murmur/transcriber"
	"murmur/vad"
)

type State int

const (
	StateIdle State = iota
	StateRecording
	StateTranscribing
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRecording:
		return "recording"
	case StateTranscribing:
		return "transcribing"
	}
	return "unknown"
}

// Sink receives finished transcription text. An Emit failure is logged
// but never rolls back the session; the text is already in the context
// window by then.
type Sink interface {
	Emit(text string) error
}

// chunkQueueSize bounds the capture-to-consumer channel. The capture
// callback must never block, so a full queue drops the chunk instead.
const chunkQueueSize = 256

type recording struct {
	buf     Buffer
	chunks  chan []byte
	done    chan struct{} // closed when the consumer exits
	quit    chan struct{} // stops the silence watcher
	toggle  bool
	dropped atomic.Int64
}

type Controller struct {
	mu     sync.Mutex
	state  State
	rec    *recording
	window *Window
	count  int // completed transcriptions this session

	capture    audio.CaptureDevice
	backend    transcriber.Backend
	sink       Sink
	proc       *vad.Processor // nil when VAD is unavailable
	sampleRate int
}

func NewController(capture audio.CaptureDevice, backend transcriber.Backend, sink Sink, sampleRate int) *Controller {
	proc, err := vad.NewProcessor()
	if err != nil {
		log.Warnf("vad unavailable, silence monitoring disabled: %v", err)
		proc = nil
	}
	return &Controller{
		window:     NewWindow(),
		capture:    capture,
		backend:    backend,
		sink:       sink,
		proc:       proc,
		sampleRate: sampleRate,
	}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Transcriptions reports how many recordings produced text this session.
func (c *Controller) Transcriptions() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

// Start begins a hold-to-talk recording. It reports false, without side
// effects, when the controller is not idle.
func (c *Controller) Start() bool {
	return c.start(false)
}

func (c *Controller) start(toggle bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateIdle {
		return false
	}

	rec := &recording{
		chunks: make(chan []byte, chunkQueueSize),
		done:   make(chan struct{}),
		quit:   make(chan struct{}),
		toggle: toggle,
	}
	if c.proc != nil {
		c.proc.Reset()
	}
	c.capture.SetCallback(func(data []byte, _ uint32) {
		buf := make([]byte, len(data))
		copy(buf, data)
		select {
		case rec.chunks <- buf:
		default:
			rec.dropped.Add(1)
		}
	})
	// The consumer must be draining before the device starts: a capture
	// backend may deliver audio synchronously from Start.
	go c.consume(rec)
	if err := c.capture.Start(); err != nil {
		c.capture.ClearCallback()
		close(rec.chunks)
		<-rec.done
		log.Errorf("capture start failed: %v", err)
		return false
	}

	c.rec = rec
	c.state = StateRecording
	if c.proc != nil {
		go c.watchSilence(rec)
	}

	mode := "hold"
	if toggle {
		mode = "toggle"
	}
	log.Infof("recording started (%s)", mode)
	return true
}

var closedDone = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()

// Stop ends the current recording and transcribes it asynchronously.
// The returned channel closes once transcription has finished and the
// controller is idle again. When the controller is not recording, Stop
// is a no-op and returns an already-closed channel.
func (c *Controller) Stop() <-chan struct{} {
	done, _ := c.stop()
	return done
}

// stop reports whether this call performed the Recording to
// Transcribing transition. Racing callers lose the state check under
// the lock and get a closed channel back.
func (c *Controller) stop() (<-chan struct{}, bool) {
	c.mu.Lock()
	if c.state != StateRecording {
		c.mu.Unlock()
		return closedDone, false
	}
	rec := c.rec
	c.rec = nil
	c.state = StateTranscribing
	c.mu.Unlock()

	close(rec.quit)
	// Stop blocks until in-flight callbacks drain, so closing the chunk
	// channel afterwards is safe.
	c.capture.Stop()
	c.capture.ClearCallback()
	close(rec.chunks)
	<-rec.done
	if n := rec.dropped.Load(); n > 0 {
		log.Warnf("capture overrun, dropped %d chunks", n)
	}

	done := make(chan struct{})
	go c.finish(rec, done)
	return done, true
}

// Toggle starts a recording when idle and stops one when recording.
// Events arriving while a transcription is in flight are ignored. The
// returned channel is non-nil only when the call itself stopped a
// recording, so simultaneous toggles yield exactly one channel.
func (c *Controller) Toggle() <-chan struct{} {
	c.mu.Lock()
	st := c.state
	c.mu.Unlock()
	switch st {
	case StateIdle:
		c.start(true)
	case StateRecording:
		if done, ok := c.stop(); ok {
			return done
		}
	}
	return nil
}

func (c *Controller) finish(rec *recording, done chan struct{}) {
	defer close(done)

	samples := rec.buf.Samples()
	if len(samples) == 0 {
		log.Warn("nothing recorded")
		c.setIdle()
		return
	}

	c.mu.Lock()
	prompt := c.window.Prompt()
	c.mu.Unlock()

	log.Infof("transcribing %.1fs of audio via %s",
		rec.buf.Duration(c.sampleRate).Seconds(), c.backend.Name())
	result, err := c.backend.Transcribe(context.Background(), samples, c.sampleRate, prompt)
	if err != nil {
		log.Errorf("transcription failed: %v", err)
		c.setIdle()
		return
	}
	if result.NoSpeech {
		log.Info("no speech in recording")
		c.setIdle()
		return
	}

	c.mu.Lock()
	c.window.Push(result.Text)
	c.count++
	c.state = StateIdle
	c.mu.Unlock()

	log.TranscriptionText(result.Text)
	if err := c.sink.Emit(result.Text); err != nil {
		log.Errorf("output failed: %v", err)
	}
}

func (c *Controller) setIdle() {
	c.mu.Lock()
	c.state = StateIdle
	c.mu.Unlock()
}
