package transcriber

// NewOpenAI returns the OpenAI Whisper API backend.
func NewOpenAI(apiKey, lang, format string) Backend {
	apiURL := "https://api.openai.com/v1/audio/transcriptions"
	r := &remoteAPI{
		name:   "openai",
		apiURL: apiURL,
		apiKey: apiKey,
		model:  "whisper-1",
		lang:   lang,
		format: format,
		client: NewTracedClient(apiURL),
	}
	go r.client.Warm()
	return r
}
