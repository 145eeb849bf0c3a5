// Package whatsapp is the messaging platform REST client and the wire
// types of its webhook payloads.
package whatsapp

// Message types seen on the webhook.
const (
	TypeText  = "text"
	TypeAudio = "audio"
)

// VoiceMIMEType is required at upload time for the platform to render
// a waveform voice bubble instead of a generic attachment.
const VoiceMIMEType = "audio/ogg; codecs=opus"

// WebhookPayload is the envelope POSTed to the webhook endpoint.
type WebhookPayload struct {
	Object string  `json:"object"`
	Entry  []Entry `json:"entry"`
}

type Entry struct {
	ID      string   `json:"id"`
	Changes []Change `json:"changes"`
}

type Change struct {
	Field string `json:"field"`
	Value Value  `json:"value"`
}

type Value struct {
	Messages []Message `json:"messages"`
	Statuses []Status  `json:"statuses"`
}

// Message is one inbound message from a correspondent.
type Message struct {
	ID        string `json:"id"`
	From      string `json:"from"`
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
	Text      *Text  `json:"text,omitempty"`
	Audio     *Media `json:"audio,omitempty"`
}

type Text struct {
	Body string `json:"body"`
}

type Media struct {
	ID       string `json:"id"`
	MimeType string `json:"mime_type,omitempty"`
}

// Status is a delivery/read receipt for an outbound message.
type Status struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// API request/response shapes.

type textBody struct {
	PreviewURL bool   `json:"preview_url"`
	Body       string `json:"body"`
}

type audioBody struct {
	ID    string `json:"id"`
	Voice bool   `json:"voice"` // true renders a voice bubble with waveform
}

type sendRequest struct {
	MessagingProduct string     `json:"messaging_product"`
	RecipientType    string     `json:"recipient_type,omitempty"`
	To               string     `json:"to,omitempty"`
	Type             string     `json:"type,omitempty"`
	Text             *textBody  `json:"text,omitempty"`
	Audio            *audioBody `json:"audio,omitempty"`
	Status           string     `json:"status,omitempty"`
	MessageID        string     `json:"message_id,omitempty"`
}

type sendResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

type mediaInfo struct {
	URL string `json:"url"`
}

type mediaUploadResponse struct {
	ID string `json:"id"`
}
