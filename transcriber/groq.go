package transcriber

// NewGroq returns the Groq transcription backend. Same wire protocol as
// OpenAI, different host and model.
func NewGroq(apiKey, lang, format string) Backend {
	apiURL := "https://api.groq.com/openai/v1/audio/transcriptions"
	r := &remoteAPI{
		name:   "groq",
		apiURL: apiURL,
		apiKey: apiKey,
		model:  "whisper-large-v3-turbo",
		lang:   lang,
		format: format,
		client: NewTracedClient(apiURL),
	}
	go r.client.Warm()
	return r
}
