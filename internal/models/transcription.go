package models

// Transcription is the ephemeral result of a voice input. It is never
// persisted; the text is fed back into the chat as if it were typed. Low
// confidence is a reason to let the user edit before sending, never to
// auto-reject.
type Transcription struct {
	Text             string  `json:"text"`
	DetectedLanguage string  `json:"detected_language"`
	Confidence       float64 `json:"confidence"`
	NeedsTranslation bool    `json:"needs_translation"`
}
