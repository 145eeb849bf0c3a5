package realtime

import (
	"github.com/bytedance/sonic"
	"github.com/google/uuid"
)

// Server event types. The type field is the discriminator; events are
// consumed strictly in arrival order and never replayed.
const (
	EventSessionCreated   = "session.created"
	EventSessionUpdated   = "session.updated"
	EventBufferCommitted  = "input_audio_buffer.committed"
	EventItemCreated      = "conversation.item.created"
	EventResponseCreated  = "response.created"
	EventOutputItemAdded  = "response.output_item.added"
	EventContentPartAdded = "response.content_part.added"
	EventTranscriptDelta  = "response.audio_transcript.delta"
	EventAudioDelta       = "response.audio.delta"
	EventAudioDone        = "response.audio.done"
	EventResponseDone     = "response.done"
	EventError            = "error"
)

// Client event types.
const (
	eventSessionUpdate = "session.update"
	eventBufferAppend  = "input_audio_buffer.append"
)

// TurnDetection selects who decides when the caller stopped speaking.
// Only server-driven VAD is used; the client never signals end of turn.
type TurnDetection struct {
	Type string `json:"type"`
}

// SessionConfig is the negotiated session shape. Constructed fresh per
// exchange and not retained afterward.
type SessionConfig struct {
	Modalities        []string       `json:"modalities"`
	Voice             string         `json:"voice"`
	Instructions      string         `json:"instructions"`
	InputAudioFormat  string         `json:"input_audio_format"`
	OutputAudioFormat string         `json:"output_audio_format"`
	TurnDetection     *TurnDetection `json:"turn_detection"`
}

// NewSessionConfig builds the per-exchange configuration. The remote
// contract requires both modalities even when only audio is consumed.
func NewSessionConfig(voice, instructions string) SessionConfig {
	return SessionConfig{
		Modalities:        []string{"audio", "text"},
		Voice:             voice,
		Instructions:      instructions,
		InputAudioFormat:  "pcm16",
		OutputAudioFormat: "pcm16",
		TurnDetection:     &TurnDetection{Type: "server_vad"},
	}
}

type clientEvent struct {
	EventID string         `json:"event_id,omitempty"`
	Type    string         `json:"type"`
	Session *SessionConfig `json:"session,omitempty"`
	Audio   string         `json:"audio,omitempty"`
}

func newSessionUpdateEvent(cfg SessionConfig) clientEvent {
	return clientEvent{EventID: uuid.New().String(), Type: eventSessionUpdate, Session: &cfg}
}

func newAppendEvent(chunk string) clientEvent {
	return clientEvent{EventID: uuid.New().String(), Type: eventBufferAppend, Audio: chunk}
}

func (e clientEvent) marshal() ([]byte, error) {
	return sonic.Marshal(e)
}

// ErrorDetail is the remote-supplied diagnostic inside an error event.
type ErrorDetail struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ServerEvent is the tagged union read off the channel. Fields beyond
// the discriminator are populated only for the types that carry them.
type ServerEvent struct {
	Type  string       `json:"type"`
	Delta string       `json:"delta,omitempty"`
	Error *ErrorDetail `json:"error,omitempty"`
}

func parseServerEvent(data []byte) (ServerEvent, error) {
	var ev ServerEvent
	if err := sonic.Unmarshal(data, &ev); err != nil {
		return ServerEvent{}, err
	}
	return ev, nil
}
