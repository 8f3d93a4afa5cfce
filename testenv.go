package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"murmur/audio"
	"murmur/config"
	"murmur/encoder"
	"murmur/hotkey"
	"murmur/log"
	"murmur/session"
	"murmur/transcriber"
)

// runTestMode drives a full session headlessly: audio comes from a WAV
// file instead of the microphone and hotkey events arrive on stdin.
// Commands: KEYDOWN, KEYUP, TOGGLE, WAIT, WAIT_AUDIO_DONE, SLEEP <ms>,
// QUIT.
func runTestMode(cfg *config.Config, backend transcriber.Backend) {
	fakeCtx, err := audio.NewFakeContext(cfg.TestWAV)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading WAV: %v\n", err)
		os.Exit(1)
	}

	capture, err := fakeCtx.NewCapture(nil, audio.CaptureConfig{
		SampleRate: encoder.SampleRate, Channels: encoder.Channels,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating capture: %v\n", err)
		os.Exit(1)
	}
	defer capture.Close()
	fakeCapture := capture.(*audio.FakeCapture)

	// Test mode emits the text on stdout instead of pasting, so driver
	// scripts can assert on it.
	ctrl := session.NewController(capture, backend, printSink{}, encoder.SampleRate)

	toggleKey := hotkey.NewFake()
	holdKey := hotkey.NewFake()
	dual := hotkey.NewDual(toggleKey, holdKey, func() bool {
		return ctrl.State() == session.StateIdle
	})
	if err := dual.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer dual.Stop()

	transcribed := make(chan struct{}, 1)

	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			cmd := strings.TrimSpace(scanner.Text())
			switch cmd {
			case "KEYDOWN":
				holdKey.SimKeydown()
			case "KEYUP":
				holdKey.SimKeyup()
			case "TOGGLE":
				toggleKey.SimKeydown()
			case "WAIT":
				<-transcribed
			case "WAIT_AUDIO_DONE":
				<-fakeCapture.AudioDone()
			case "QUIT":
				log.SessionEnd(ctrl.Transcriptions())
				os.Exit(0)
			default:
				if strings.HasPrefix(cmd, "SLEEP ") {
					if ms, err := strconv.Atoi(cmd[6:]); err == nil {
						time.Sleep(time.Duration(ms) * time.Millisecond)
					}
				}
			}
		}
		os.Exit(0)
	}()

	for ev := range dual.Events() {
		var done <-chan struct{}
		switch ev {
		case hotkey.EventToggle:
			done = ctrl.Toggle()
		case hotkey.EventHoldStart:
			ctrl.Start()
			continue
		case hotkey.EventHoldStop:
			done = ctrl.Stop()
		}
		if done != nil {
			go func(d <-chan struct{}) {
				<-d
				select {
				case transcribed <- struct{}{}:
				default:
				}
			}(done)
		}
	}
}

type printSink struct{}

func (printSink) Emit(text string) error {
	fmt.Println(text)
	return nil
}
