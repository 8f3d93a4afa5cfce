package config

import (
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MURMUR_MODE", "")
	t.Setenv("MURMUR_MODEL", "")
	cfg, err := Load(nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Mode != ModeRemote {
		t.Errorf("Mode = %q, want %q", cfg.Mode, ModeRemote)
	}
	if cfg.Language != "en" {
		t.Errorf("Language = %q, want en", cfg.Language)
	}
	if cfg.Format != "flac" {
		t.Errorf("Format = %q, want flac", cfg.Format)
	}
	if !strings.Contains(cfg.ModelPath, "ggml-small.bin") {
		t.Errorf("ModelPath = %q, want ggml-small.bin default", cfg.ModelPath)
	}
}

func TestLoadFlagsOverrideEnv(t *testing.T) {
	t.Setenv("MURMUR_MODE", "remote")
	cfg, err := Load([]string{"-mode", "local", "-model", "base", "-lang", "es"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Mode != ModeLocal {
		t.Errorf("Mode = %q, want local", cfg.Mode)
	}
	if cfg.Language != "es" {
		t.Errorf("Language = %q, want es", cfg.Language)
	}
	if !strings.Contains(cfg.ModelPath, "ggml-base.bin") {
		t.Errorf("ModelPath = %q, want ggml-base.bin", cfg.ModelPath)
	}
}

func TestLoadRejectsUnknownMode(t *testing.T) {
	if _, err := Load([]string{"-mode", "hybrid"}); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestLoadRejectsUnknownFormat(t *testing.T) {
	if _, err := Load([]string{"-format", "mp3"}); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestModelPathOverride(t *testing.T) {
	t.Setenv("MURMUR_MODEL", "/opt/models/custom.bin")
	cfg, err := Load(nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ModelPath != "/opt/models/custom.bin" {
		t.Errorf("ModelPath = %q, want override", cfg.ModelPath)
	}
}

func TestHasRemoteCredentials(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GROQ_API_KEY", "")
	cfg, err := Load(nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.HasRemoteCredentials() {
		t.Error("expected no credentials")
	}

	t.Setenv("GROQ_API_KEY", "gsk_test")
	cfg, err = Load(nil)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.HasRemoteCredentials() {
		t.Error("expected credentials with GROQ_API_KEY set")
	}
}
