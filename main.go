// murmur is a push-to-talk dictation tool. Hold Ctrl+Space (or toggle
// with Ctrl+Shift+Space) to record, release to transcribe; the text is
// copied to the clipboard and pasted into the focused window.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"golang.design/x/mainthread"

	"murmur/audio"
	"murmur/clipboard"
	"murmur/config"
	"murmur/doctor"
	"murmur/encoder"
	"murmur/hotkey"
	"murmur/log"
	"murmur/paste"
	"murmur/session"
	"murmur/shutdown"
	"murmur/transcriber"
)

var version = "dev"

// pasteSink delivers transcribed text: clipboard first, then the paste
// keystroke after a short settle so the clipboard write has landed.
type pasteSink struct {
	autoPaste  bool
	pasteDelay time.Duration
}

func (s *pasteSink) Emit(text string) error {
	if err := clipboard.Copy(text); err != nil {
		return fmt.Errorf("clipboard: %w", err)
	}
	if !s.autoPaste {
		return nil
	}
	time.Sleep(s.pasteDelay)
	if err := paste.Send(); err != nil {
		return fmt.Errorf("paste: %w", err)
	}
	return nil
}

func main() {
	// The hotkey library requires the OS main thread.
	mainthread.Init(run)
}

func run() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if cfg.Version {
		fmt.Printf("murmur %s\n", version)
		os.Exit(0)
	}

	logPath, err := log.ResolveDir(cfg.LogPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to resolve log directory: %v\n", err)
		os.Exit(1)
	}
	log.SetDir(logPath)
	if err := log.EnsureDir(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create log directory: %v\n", err)
	}

	crashPath := filepath.Join(log.Dir(), "crash_log.txt")
	if crashFile, err := os.OpenFile(crashPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644); err == nil {
		fmt.Fprintf(crashFile, "\n=== Session %s [pid=%d] ===\n",
			time.Now().Format("2006-01-02 15:04:05"), os.Getpid())
		debug.SetCrashOutput(crashFile, debug.CrashOptions{})
	}

	if cfg.Doctor {
		os.Exit(doctor.Run(cfg))
	}

	if err := log.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not init logging: %v\n", err)
	}
	defer log.Close()

	backend, fellBack, err := transcriber.New(cfg)
	if err != nil {
		log.Errorf("backend init: %v", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if fellBack {
		log.Warn("no remote API key set, using local model")
		fmt.Println("No API key found, falling back to the local model.")
	}
	log.SessionStart(backend.Name(), backend.Language())

	if cfg.TestWAV != "" {
		runTestMode(cfg, backend)
		return
	}

	if cfg.AutoPaste {
		if err := paste.Init(); err != nil {
			log.Warnf("paste init failed: %v", err)
			fmt.Printf("Warning: paste init failed: %v\n", err)
			fmt.Println("Fix with: sudo chmod 660 /dev/uinput && sudo chgrp input /dev/uinput")
		}
	}

	ctx, err := audio.NewContext()
	if err != nil {
		log.Errorf("audio context init: %v", err)
		fmt.Fprintf(os.Stderr, "Error initializing audio: %v\n", err)
		os.Exit(1)
	}
	defer ctx.Close()

	var selected *audio.DeviceInfo
	if cfg.Device != "" {
		devices, err := ctx.Devices()
		if err != nil {
			log.Warnf("device enumeration failed: %v", err)
		}
		for i := range devices {
			if devices[i].Name == cfg.Device {
				selected = &devices[i]
				break
			}
		}
		if selected == nil {
			fmt.Printf("Warning: device %q not found, using system default\n", cfg.Device)
		}
	} else if cfg.Setup {
		selected, err = audio.SelectDevice(ctx)
		if err != nil {
			log.Warnf("device selection failed: %v", err)
			fmt.Printf("Warning: device selection failed: %v\n", err)
			fmt.Println("Falling back to system default")
			selected = nil
		}
	}
	if selected != nil && audio.IsBluetooth(selected.Name) {
		fmt.Printf("Warning: %q looks like a Bluetooth headset; capture quality may be poor\n", selected.Name)
	}

	capture, err := ctx.NewCapture(selected, audio.CaptureConfig{
		SampleRate: encoder.SampleRate,
		Channels:   encoder.Channels,
	})
	if err != nil {
		log.Errorf("capture device init: %v", err)
		fmt.Fprintf(os.Stderr, "Error initializing capture device: %v\n", err)
		os.Exit(1)
	}
	defer capture.Close()
	log.Info("recording_device: " + capture.DeviceName())

	ctrl := session.NewController(capture, backend,
		&pasteSink{autoPaste: cfg.AutoPaste, pasteDelay: cfg.PasteDelay},
		encoder.SampleRate)

	dual := hotkey.NewDual(hotkey.NewToggle(), hotkey.NewHold(), func() bool {
		return ctrl.State() == session.StateIdle
	})
	if err := dual.Start(); err != nil {
		log.Errorf("hotkey register: %v", err)
		fmt.Fprintf(os.Stderr, "Error registering hotkeys: %v\n", err)
		os.Exit(1)
	}
	defer dual.Stop()

	sigChan := make(chan os.Signal, 1)
	shutdown.Notify(sigChan)

	fmt.Printf("murmur %s ready [%s %s]. Hold Ctrl+Space, or Ctrl+Shift+Space to toggle.\n",
		version, backend.Name(), backend.Language())

	for {
		select {
		case ev := <-dual.Events():
			switch ev {
			case hotkey.EventToggle:
				ctrl.Toggle()
			case hotkey.EventHoldStart:
				ctrl.Start()
			case hotkey.EventHoldStop:
				ctrl.Stop()
			}
		case <-sigChan:
			log.SessionEnd(ctrl.Transcriptions())
			return
		}
	}
}
