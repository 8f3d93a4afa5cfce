// Package doctor runs quick environment diagnostics so users can see
// why dictation is not working without reading logs.
package doctor

import (
	"fmt"
	"os"

	"murmur/audio"
	"murmur/clipboard"
	"murmur/config"
	"murmur/hotkey"
)

// Run executes all checks and returns an exit code, 0 when every check
// passed.
func Run(cfg *config.Config) int {
	fmt.Println("murmur doctor")
	fmt.Println("=============")

	allPass := true
	for _, c := range []struct {
		name  string
		check func(*config.Config) (string, error)
	}{
		{"microphone", checkAudio},
		{"backend", checkBackend},
		{"clipboard", checkClipboard},
		{"hotkeys", checkHotkeys},
	} {
		detail, err := c.check(cfg)
		if err != nil {
			fmt.Printf("  FAIL %-10s %v\n", c.name, err)
			allPass = false
			continue
		}
		fmt.Printf("  ok   %-10s %s\n", c.name, detail)
	}

	if !allPass {
		fmt.Println("\nSome checks failed. See details above.")
		return 1
	}
	fmt.Println("\nAll checks passed.")
	return 0
}

func checkAudio(_ *config.Config) (string, error) {
	ctx, err := audio.NewContext()
	if err != nil {
		return "", fmt.Errorf("cannot connect to audio: %w", err)
	}
	defer ctx.Close()

	devices, err := ctx.Devices()
	if err != nil {
		return "", fmt.Errorf("cannot enumerate devices: %w", err)
	}
	if len(devices) == 0 {
		return "", fmt.Errorf("no capture devices found")
	}
	for _, d := range devices {
		if audio.IsBluetooth(d.Name) {
			return fmt.Sprintf("%d devices (warning: %q looks like a Bluetooth headset)", len(devices), d.Name), nil
		}
	}
	return fmt.Sprintf("%d capture devices", len(devices)), nil
}

func checkBackend(cfg *config.Config) (string, error) {
	if cfg.Mode == config.ModeRemote {
		if !cfg.HasRemoteCredentials() {
			if _, err := os.Stat(cfg.ModelPath); err != nil {
				return "", fmt.Errorf("no API key set (OPENAI_API_KEY or GROQ_API_KEY) and no local model at %s", cfg.ModelPath)
			}
			return "no API key, will fall back to local model", nil
		}
		return "remote API credentials present", nil
	}
	info, err := os.Stat(cfg.ModelPath)
	if err != nil {
		return "", fmt.Errorf("local model missing: %s", cfg.ModelPath)
	}
	return fmt.Sprintf("local model %s (%.0f MB)", cfg.ModelPath, float64(info.Size())/(1<<20)), nil
}

func checkClipboard(_ *config.Config) (string, error) {
	prev, _ := clipboard.Read()
	const probe = "murmur-doctor-probe"
	if err := clipboard.Copy(probe); err != nil {
		return "", fmt.Errorf("write failed: %w", err)
	}
	got, err := clipboard.Read()
	if err != nil {
		return "", fmt.Errorf("read failed: %w", err)
	}
	clipboard.Copy(prev)
	if got != probe {
		return "", fmt.Errorf("round-trip mismatch")
	}
	return "round-trip ok", nil
}

func checkHotkeys(_ *config.Config) (string, error) {
	return hotkey.Diagnose()
}
