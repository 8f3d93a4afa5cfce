// Package config resolves process-lifetime settings from flags, the
// environment, and an optional .env file. Everything here is fixed at
// startup; nothing is re-read mid-session.
package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

const (
	ModeLocal  = "local"
	ModeRemote = "remote"
)

// Decoding policy for segment acceptance. These mirror the
// faster-whisper parameters the tool has always shipped with and are
// not user-tunable.
const (
	BeamSize                  = 5
	Temperature               = 0.0
	NoSpeechThreshold         = 0.6
	CompressionRatioThreshold = 2.4
	LogProbThreshold          = -1.0
	MinSpeechDuration         = 250 * time.Millisecond
	MinSilenceDuration        = 2000 * time.Millisecond
	SpeechPad                 = 400 * time.Millisecond
)

type Config struct {
	Mode      string // "local" or "remote"
	OpenAIKey string
	GroqKey   string
	ModelSize string // local model: tiny, base, small, medium, large
	ModelPath string // resolved ggml model file
	Language  string
	Format    string // upload format for remote: "flac" or "wav"
	Device    string
	Setup     bool
	AutoPaste bool
	LogPath   string
	TestWAV   string
	Doctor    bool
	Version   bool

	// PasteDelay is the settle time between the clipboard write and the
	// synthesized paste keystroke.
	PasteDelay time.Duration
}

// Load parses flags and the environment. A .env file in the working
// directory is honored if present, matching how the remote API keys are
// usually provisioned.
func Load(args []string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg := &Config{PasteDelay: 100 * time.Millisecond}

	fs := flag.NewFlagSet("murmur", flag.ContinueOnError)
	fs.StringVar(&cfg.Mode, "mode", getEnv("MURMUR_MODE", ModeRemote), "Transcription backend: remote or local")
	fs.StringVar(&cfg.ModelSize, "model", getEnv("MURMUR_MODEL_SIZE", "small"), "Local model size: tiny, base, small, medium, large")
	fs.StringVar(&cfg.Language, "lang", getEnv("MURMUR_LANG", "en"), "Language hint for transcription (e.g. en, es, fr)")
	fs.StringVar(&cfg.Format, "format", getEnv("MURMUR_FORMAT", "flac"), "Upload format for remote backend: flac or wav")
	fs.StringVar(&cfg.Device, "device", "", "Use named microphone device")
	fs.BoolVar(&cfg.Setup, "setup", false, "Select microphone device interactively")
	fs.BoolVar(&cfg.AutoPaste, "autopaste", true, "Paste into the focused window after transcription")
	fs.StringVar(&cfg.LogPath, "logpath", "", "Log directory (default: OS-specific location)")
	fs.StringVar(&cfg.TestWAV, "test", "", "Test mode: feed the given WAV file instead of the microphone")
	fs.BoolVar(&cfg.Doctor, "doctor", false, "Run system diagnostics and exit")
	fs.BoolVar(&cfg.Version, "version", false, "Print version and exit")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	switch cfg.Mode {
	case ModeLocal, ModeRemote:
	default:
		return nil, fmt.Errorf("unknown mode %q (use local or remote)", cfg.Mode)
	}
	switch cfg.Format {
	case "flac", "wav":
	default:
		return nil, fmt.Errorf("unknown format %q (use flac or wav)", cfg.Format)
	}

	cfg.OpenAIKey = os.Getenv("OPENAI_API_KEY")
	cfg.GroqKey = os.Getenv("GROQ_API_KEY")

	var err error
	cfg.ModelPath, err = resolveModelPath(cfg.ModelSize)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// HasRemoteCredentials reports whether any remote backend can be used.
func (c *Config) HasRemoteCredentials() bool {
	return c.OpenAIKey != "" || c.GroqKey != ""
}

// resolveModelPath maps a model size to the expected ggml file. The
// MURMUR_MODEL env var overrides with an explicit path.
func resolveModelPath(size string) (string, error) {
	if p := os.Getenv("MURMUR_MODEL"); p != "" {
		return p, nil
	}
	switch size {
	case "tiny", "base", "small", "medium", "large":
	default:
		return "", fmt.Errorf("unknown model size %q", size)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", "murmur", "models", "ggml-"+size+".bin"), nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
