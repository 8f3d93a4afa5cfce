package session

import "strings"

// maxContextItems bounds how many past transcriptions feed the decoding
// prompt. Older entries are evicted first.
const maxContextItems = 3

// Window holds recent transcription results. The joined text is passed
// to the backend as an initial prompt so decoding is biased toward
// vocabulary the user just dictated. Not safe for concurrent use; the
// controller serializes access.
type Window struct {
	items []string
}

func NewWindow() *Window {
	return &Window{items: make([]string, 0, maxContextItems)}
}

// Push appends text, evicting the oldest entry when full. Empty text is
// ignored so failed or silent transcriptions never pollute the prompt.
func (w *Window) Push(text string) {
	if text == "" {
		return
	}
	if len(w.items) == maxContextItems {
		copy(w.items, w.items[1:])
		w.items = w.items[:maxContextItems-1]
	}
	w.items = append(w.items, text)
}

// Prompt returns the window contents joined oldest-first, or "" when
// nothing has been transcribed yet.
func (w *Window) Prompt() string {
	return strings.Join(w.items, " ")
}

func (w *Window) Len() int {
	return len(w.items)
}
