package transcriber

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"murmur/encoder"
	"murmur/log"
)

// remoteTimeout bounds one upload+transcription round trip. The APIs
// answer well under this for dictation-length clips.
const remoteTimeout = 60 * time.Second

// remoteAPI implements Backend against an OpenAI-compatible
// transcription endpoint. Audio is compressed client-side and posted
// multipart in a single batch request.
type remoteAPI struct {
	name   string
	apiURL string
	apiKey string
	model  string
	lang   string
	format string
	client *TracedClient
}

func (r *remoteAPI) Name() string     { return r.name }
func (r *remoteAPI) Language() string { return r.lang }

type apiResponse struct {
	Text     string  `json:"text"`
	Duration float64 `json:"duration"`
	Segments []struct {
		Text             string  `json:"text"`
		Start            float64 `json:"start"`
		End              float64 `json:"end"`
		NoSpeechProb     float64 `json:"no_speech_prob"`
		AvgLogProb       float64 `json:"avg_logprob"`
		CompressionRatio float64 `json:"compression_ratio"`
	} `json:"segments"`
}

func (r *remoteAPI) Transcribe(ctx context.Context, samples []float32, sampleRate int, prompt string) (Result, error) {
	audioData, err := encodeUpload(samples, r.format)
	if err != nil {
		return Result{}, fmt.Errorf("%s encode: %w", r.name, err)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", "audio."+r.format)
	if err != nil {
		return Result{}, err
	}
	if _, err := part.Write(audioData); err != nil {
		return Result{}, err
	}

	writer.WriteField("model", r.model)
	// verbose_json carries per-segment confidence scores, which feed
	// the same acceptance gate the local backend applies.
	writer.WriteField("response_format", "verbose_json")
	writer.WriteField("temperature", "0")
	if r.lang != "" {
		writer.WriteField("language", r.lang)
	}
	if prompt != "" {
		writer.WriteField("prompt", prompt)
	}
	writer.Close()

	ctx, cancel := context.WithTimeout(ctx, remoteTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "POST", r.apiURL, &body)
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Authorization", "Bearer "+r.apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := r.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("%s request: %w", r.name, err)
	}
	if resp.StatusCode != 200 {
		return Result{}, fmt.Errorf("%s API error %d: %s", r.name, resp.StatusCode, string(resp.Body))
	}

	var parsed apiResponse
	if err := json.Unmarshal(resp.Body, &parsed); err != nil {
		return Result{}, fmt.Errorf("%s response parse error: %w", r.name, err)
	}

	text := strings.TrimSpace(parsed.Text)
	var segments []Segment
	if len(parsed.Segments) > 0 {
		var parts []string
		for _, seg := range parsed.Segments {
			s := Segment{
				Text:             strings.TrimSpace(seg.Text),
				Start:            seg.Start,
				End:              seg.End,
				NoSpeechProb:     seg.NoSpeechProb,
				AvgLogProb:       seg.AvgLogProb,
				CompressionRatio: seg.CompressionRatio,
			}
			segments = append(segments, s)
			if acceptSegment(s) {
				parts = append(parts, s.Text)
			}
		}
		text = strings.TrimSpace(strings.Join(parts, " "))
	}

	log.Transcription(log.TranscribeStats{
		Backend:    r.name,
		AudioS:     float64(len(samples)) / float64(sampleRate),
		UploadKB:   float64(len(audioData)) / 1024,
		TotalMs:    float64(resp.Metrics.Total.Milliseconds()),
		NetworkMs:  float64((resp.Metrics.DNS + resp.Metrics.TCP + resp.Metrics.TLS + resp.Metrics.TTFB).Milliseconds()),
		ContextLen: len(prompt),
		Segments:   len(segments),
	})

	return Result{
		Text:     text,
		NoSpeech: text == "",
		Duration: parsed.Duration,
		Segments: segments,
	}, nil
}

// encodeUpload compresses float32 samples to the configured container,
// feeding the encoder in fixed blocks the way the capture path does.
func encodeUpload(samples []float32, format string) ([]byte, error) {
	enc, err := encoder.New(format)
	if err != nil {
		return nil, err
	}

	pcm := make([]int16, len(samples))
	for i, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		pcm[i] = int16(s * 32767)
	}

	for i := 0; i < len(pcm); i += encoder.BlockSize {
		end := i + encoder.BlockSize
		if end > len(pcm) {
			end = len(pcm)
		}
		if err := enc.EncodeBlock(pcm[i:end]); err != nil {
			return nil, err
		}
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return enc.Bytes(), nil
}
