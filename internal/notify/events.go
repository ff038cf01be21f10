// Package notify carries transcription progress events from running jobs to
// listening clients. Each episode gets its own addressable channel so
// concurrent jobs never interleave their progress streams.
package notify

// Event is a single progress message in the wire shape clients consume.
type Event struct {
	Type    string `json:"type"`
	Text    string `json:"text,omitempty"`
	Message string `json:"message,omitempty"`
}

const (
	TypeExistingTranscript    = "existing_transcript"
	TypeTranscriptionText     = "transcription_text"
	TypeTranscriptionComplete = "transcription_complete"
	TypeError                 = "error"
	TypeKeepalive             = "keepalive"
)

// ExistingTranscript announces that a stored transcript was found and no new
// transcription work will run.
func ExistingTranscript(text string) Event {
	return Event{Type: TypeExistingTranscript, Text: text}
}

// TranscriptionText carries one recognized line as the engine produces it.
func TranscriptionText(line string) Event {
	return Event{Type: TypeTranscriptionText, Text: line}
}

// TranscriptionComplete marks a finished job. Text holds the full transcript
// and is omitted from the wire form when empty.
func TranscriptionComplete(text string) Event {
	return Event{Type: TypeTranscriptionComplete, Text: text}
}

// ErrorEvent reports a failed job with a human-readable message.
func ErrorEvent(message string) Event {
	return Event{Type: TypeError, Message: message}
}

// Keepalive is sent on idle streams so proxies do not close the connection.
func Keepalive() Event {
	return Event{Type: TypeKeepalive}
}

// Terminal reports whether the event ends a progress stream.
func (e Event) Terminal() bool {
	return e.Type == TypeTranscriptionComplete || e.Type == TypeError
}
