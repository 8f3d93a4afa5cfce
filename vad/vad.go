// Package vad wraps WebRTC voice-activity detection two ways: a live
// Processor that classifies audio as it is captured, and an offline
// Filter that trims a finished recording down to its speech regions
// before local model inference.
package vad

import (
	"encoding/binary"
	"sync"
	"time"

	webrtcvad "github.com/maxhawkins/go-webrtcvad"
)

const (
	Mode       = 3
	FrameMs    = 20
	debounce   = 3 // consecutive speech frames to confirm voice
	SampleRate = 16000

	frameSamples = SampleRate * FrameMs / 1000 // 320
	frameBytes   = frameSamples * 2            // 640
)

type Processor struct {
	vad *webrtcvad.VAD

	mu            sync.Mutex
	buf           []byte
	voiceDetected bool
	lastVoiceTime time.Time
	speechRun     int
	totalFrames   int
	speechFrames  int
	tickTotal     int
	tickSpeech    int
}

func NewProcessor() (*Processor, error) {
	v, err := webrtcvad.New()
	if err != nil {
		return nil, err
	}
	if err := v.SetMode(Mode); err != nil {
		return nil, err
	}
	return &Processor{vad: v}, nil
}

// Process consumes little-endian 16-bit mono PCM in arbitrary chunk
// sizes, buffering partial frames between calls.
func (p *Processor) Process(data []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.buf = append(p.buf, data...)
	for len(p.buf) >= frameBytes {
		frame := p.buf[:frameBytes]
		p.buf = p.buf[frameBytes:]

		active, err := p.vad.Process(SampleRate, frame)
		if err != nil {
			continue
		}
		p.totalFrames++
		if active {
			p.speechFrames++
			p.speechRun++
			if p.voiceDetected {
				p.lastVoiceTime = time.Now()
			} else if p.speechRun >= debounce {
				p.voiceDetected = true
				p.lastVoiceTime = time.Now()
			}
		} else {
			p.speechRun = 0
		}
	}
}

func (p *Processor) VoiceDetected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.voiceDetected
}

const speechThreshold = 0.10 // 10% of frames must be speech to count as "speaking"

// HasSpeechTick reports whether speech dominated the frames seen since
// the previous call. Used by the silence monitor once per tick.
func (p *Processor) HasSpeechTick() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	t := p.totalFrames - p.tickTotal
	s := p.speechFrames - p.tickSpeech
	p.tickTotal, p.tickSpeech = p.totalFrames, p.speechFrames
	if t == 0 {
		return false
	}
	return float64(s)/float64(t) >= speechThreshold
}

func (p *Processor) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.buf = p.buf[:0]
	p.voiceDetected = false
	p.lastVoiceTime = time.Time{}
	p.speechRun = 0
}

// FilterConfig bounds the offline speech-region detection.
type FilterConfig struct {
	MinSpeech  time.Duration // shortest run counted as speech
	MinSilence time.Duration // silence run that ends a region
	Pad        time.Duration // padding kept around each region
}

// Filter returns the concatenation of detected speech regions, each
// padded by cfg.Pad, or nil when no region qualifies. Samples are mono
// float32 at SampleRate.
func Filter(samples []float32, cfg FilterConfig) ([]float32, error) {
	v, err := webrtcvad.New()
	if err != nil {
		return nil, err
	}
	if err := v.SetMode(Mode); err != nil {
		return nil, err
	}

	nFrames := len(samples) / frameSamples
	if nFrames == 0 {
		return nil, nil
	}

	active := make([]bool, nFrames)
	frame := make([]byte, frameBytes)
	for i := 0; i < nFrames; i++ {
		for j := 0; j < frameSamples; j++ {
			s := samples[i*frameSamples+j]
			if s > 1 {
				s = 1
			} else if s < -1 {
				s = -1
			}
			binary.LittleEndian.PutUint16(frame[j*2:], uint16(int16(s*32767)))
		}
		ok, err := v.Process(SampleRate, frame)
		if err != nil {
			continue
		}
		active[i] = ok
	}

	minSpeechFrames := framesFor(cfg.MinSpeech)
	minSilenceFrames := framesFor(cfg.MinSilence)
	padFrames := framesFor(cfg.Pad)

	type region struct{ start, end int } // frame indices, end exclusive
	var regions []region
	speechRun, silenceRun := 0, 0
	open := -1 // start frame of the open region, -1 if none
	for i, a := range active {
		if a {
			speechRun++
			silenceRun = 0
			if open < 0 && speechRun >= minSpeechFrames {
				open = i - speechRun + 1
			}
		} else {
			silenceRun++
			speechRun = 0
			if open >= 0 && silenceRun >= minSilenceFrames {
				regions = append(regions, region{open, i - silenceRun + 1})
				open = -1
			}
		}
	}
	if open >= 0 {
		regions = append(regions, region{open, nFrames})
	}
	if len(regions) == 0 {
		return nil, nil
	}

	// Pad and merge.
	var merged []region
	for _, r := range regions {
		r.start = max(r.start-padFrames, 0)
		r.end = min(r.end+padFrames, nFrames)
		if n := len(merged); n > 0 && r.start <= merged[n-1].end {
			if r.end > merged[n-1].end {
				merged[n-1].end = r.end
			}
			continue
		}
		merged = append(merged, r)
	}

	var out []float32
	for _, r := range merged {
		lo := r.start * frameSamples
		hi := r.end * frameSamples
		if r.end == nFrames {
			hi = len(samples) // keep the sub-frame tail
		}
		out = append(out, samples[lo:hi]...)
	}
	return out, nil
}

func framesFor(d time.Duration) int {
	n := int(d.Milliseconds()) / FrameMs
	if n < 1 {
		n = 1
	}
	return n
}
