// Package bot routes inbound messages through the conversation,
// generation, and voice pipelines.
package bot

import (
	"context"
	"errors"
	"log"
	"strings"

	"saman-voice/agent"
	"saman-voice/audio"
	"saman-voice/convo"
	"saman-voice/metrics"
	"saman-voice/whatsapp"
)

// Voice path selection.
const (
	ModeRealtime   = "realtime"   // voice -> realtime session -> voice
	ModeTranscribe = "transcribe" // voice -> transcription -> text path -> voice
)

const clearConfirmation = "Conversation history cleared!"

// Messenger is the outbound messaging capability.
type Messenger interface {
	MarkRead(ctx context.Context, messageID string) error
	DownloadMedia(ctx context.Context, mediaID string) ([]byte, error)
	SendVoice(ctx context.Context, to string, oggBytes []byte) error
}

// Responder produces one assistant turn from a thread snapshot.
type Responder interface {
	Reply(ctx context.Context, turns []convo.Turn) (string, error)
}

// Transcriber converts audio bytes to text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioBytes []byte, filename string) (string, error)
}

// Synthesizer turns a text reply into wire-format voice audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (audio.Buffer, error)
}

// Exchanger runs one voice-to-voice exchange.
type Exchanger interface {
	Exchange(ctx context.Context, in audio.Buffer, instructions string) (audio.Buffer, error)
}

// Handler is the per-message orchestrator. One exchange is linear and
// self-contained; concurrency across correspondents is the caller's
// business and per-correspondent ordering is the store's.
type Handler struct {
	messenger   Messenger
	store       convo.Store
	responder   Responder
	transcriber Transcriber
	synth       Synthesizer
	exchanger   Exchanger

	allowed      []string
	voiceMode    string
	instructions string // persona + tone, also seeds realtime sessions
}

// Config carries the handler's policy knobs.
type Config struct {
	AllowedPhones []string
	VoiceMode     string
	Persona       string
	Tone          string
}

// NewHandler wires the handler's collaborators.
func NewHandler(m Messenger, store convo.Store, r Responder, t Transcriber, s Synthesizer, e Exchanger, cfg Config) *Handler {
	mode := cfg.VoiceMode
	if mode == "" {
		mode = ModeTranscribe
	}
	return &Handler{
		messenger:    m,
		store:        store,
		responder:    r,
		transcriber:  t,
		synth:        s,
		exchanger:    e,
		allowed:      cfg.AllowedPhones,
		voiceMode:    mode,
		instructions: agent.Instructions(cfg.Persona, cfg.Tone),
	}
}

// ProcessWebhook walks a webhook payload and handles each message.
// Statuses are receipts for our own outbound messages; logged only.
func (h *Handler) ProcessWebhook(ctx context.Context, payload whatsapp.WebhookPayload) {
	if payload.Object != "whatsapp_business_account" {
		log.Printf("⚠️ ignoring webhook object %q", payload.Object)
		return
	}
	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			for _, msg := range change.Value.Messages {
				h.HandleMessage(ctx, msg)
			}
			for _, st := range change.Value.Statuses {
				log.Printf("📬 status %s for %s", st.Status, st.ID)
			}
		}
	}
}

// allowedSender reports whether the correspondent may talk to the
// bot. An empty allow-list admits everyone; a non-empty list rejects
// anyone not on it.
func (h *Handler) allowedSender(from string) bool {
	if len(h.allowed) == 0 {
		return true
	}
	for _, p := range h.allowed {
		if p == from {
			return true
		}
	}
	return false
}

// HandleMessage runs one exchange. Failures suppress the reply: the
// correspondent gets silence, the logs get the diagnostics.
func (h *Handler) HandleMessage(ctx context.Context, msg whatsapp.Message) {
	if err := h.messenger.MarkRead(ctx, msg.ID); err != nil {
		log.Printf("⚠️ mark read %s: %v", msg.ID, err)
	}

	if !h.allowedSender(msg.From) {
		log.Printf("🚫 rejected sender %s (not on allow-list)", msg.From)
		metrics.Exchanges.WithLabelValues("rejected").Inc()
		return
	}

	switch msg.Type {
	case whatsapp.TypeText:
		metrics.MessagesReceived.WithLabelValues("text").Inc()
		if msg.Text == nil {
			log.Printf("⚠️ text message %s without body", msg.ID)
			return
		}
		h.handleText(ctx, msg.From, msg.Text.Body)

	case whatsapp.TypeAudio:
		metrics.MessagesReceived.WithLabelValues("audio").Inc()
		if msg.Audio == nil || msg.Audio.ID == "" {
			log.Printf("⚠️ audio message %s without media id", msg.ID)
			return
		}
		h.handleAudio(ctx, msg.From, msg.Audio.ID)

	default:
		metrics.MessagesReceived.WithLabelValues("other").Inc()
		log.Printf("⚠️ unsupported message type %q from %s", msg.Type, msg.From)
	}
}

func (h *Handler) handleText(ctx context.Context, from, body string) {
	if strings.ToLower(strings.TrimSpace(body)) == "/clear" {
		h.handleClear(ctx, from)
		return
	}

	reply, err := h.textReply(ctx, from, body)
	if err != nil {
		log.Printf("❌ text exchange for %s: %v", from, err)
		metrics.Exchanges.WithLabelValues("error").Inc()
		return
	}
	h.speak(ctx, from, reply)
}

// textReply appends the user turn, generates the assistant turn, and
// appends it. A failed generation appends nothing further, so memory
// never holds a partial assistant turn.
func (h *Handler) textReply(ctx context.Context, from, body string) (string, error) {
	if err := h.store.Append(ctx, from, convo.RoleUser, body); err != nil {
		return "", err
	}
	turns, err := h.store.Snapshot(ctx, from)
	if err != nil {
		return "", err
	}
	reply, err := h.responder.Reply(ctx, turns)
	if err != nil {
		return "", err
	}
	if err := h.store.Append(ctx, from, convo.RoleAssistant, reply); err != nil {
		return "", err
	}
	return reply, nil
}

func (h *Handler) handleClear(ctx context.Context, from string) {
	if err := h.store.Clear(ctx, from); err != nil {
		log.Printf("❌ clear thread for %s: %v", from, err)
		return
	}
	log.Printf("🧹 cleared conversation for %s", from)
	h.speak(ctx, from, clearConfirmation)
}

func (h *Handler) handleAudio(ctx context.Context, from, mediaID string) {
	data, err := h.messenger.DownloadMedia(ctx, mediaID)
	if err != nil {
		log.Printf("❌ download media %s: %v", mediaID, err)
		metrics.Exchanges.WithLabelValues("error").Inc()
		return
	}
	in := audio.Buffer{Data: data, Format: audio.OggOpus16k}

	if h.voiceMode == ModeRealtime {
		h.handleVoiceRealtime(ctx, from, in)
		return
	}

	text, err := h.transcriber.Transcribe(ctx, data, "voice.ogg")
	if err != nil {
		log.Printf("❌ transcribe for %s: %v", from, err)
		metrics.Exchanges.WithLabelValues("error").Inc()
		return
	}
	log.Printf("📝 transcription from %s: %.80s", from, text)
	h.handleText(ctx, from, text)
}

// handleVoiceRealtime runs the voice-to-voice path. Conversation
// memory supplies prior context read-only; realtime turns are not
// appended back.
func (h *Handler) handleVoiceRealtime(ctx context.Context, from string, in audio.Buffer) {
	turns, err := h.store.Snapshot(ctx, from)
	if err != nil {
		log.Printf("❌ snapshot for %s: %v", from, err)
		metrics.Exchanges.WithLabelValues("error").Inc()
		return
	}

	instructions := h.instructions
	if prior := convo.RenderContext(turns); prior != "" {
		instructions += "\n\nEerdere gesprekscontext:\n" + prior
	}

	out, err := h.exchanger.Exchange(ctx, in, instructions)
	if err != nil {
		log.Printf("❌ realtime exchange for %s: %v", from, err)
		noteTranscodeFailure(err)
		metrics.Exchanges.WithLabelValues("error").Inc()
		return
	}

	if err := h.messenger.SendVoice(ctx, from, out.Data); err != nil {
		log.Printf("❌ send voice to %s: %v", from, err)
		metrics.Exchanges.WithLabelValues("error").Inc()
		return
	}
	metrics.Exchanges.WithLabelValues("ok").Inc()
}

// noteTranscodeFailure counts ffmpeg failures buried in exchange or
// synthesis errors.
func noteTranscodeFailure(err error) {
	var terr *audio.TranscodeError
	if errors.As(err, &terr) {
		metrics.TranscodeFailures.Inc()
	}
}

// speak synthesizes the reply and sends it as a voice message.
func (h *Handler) speak(ctx context.Context, to, text string) {
	voice, err := h.synth.Synthesize(ctx, text)
	if err != nil {
		log.Printf("❌ synthesize for %s: %v", to, err)
		noteTranscodeFailure(err)
		metrics.SynthesisCalls.WithLabelValues("error").Inc()
		metrics.Exchanges.WithLabelValues("error").Inc()
		return
	}
	metrics.SynthesisCalls.WithLabelValues("ok").Inc()

	if err := h.messenger.SendVoice(ctx, to, voice.Data); err != nil {
		log.Printf("❌ send voice to %s: %v", to, err)
		metrics.Exchanges.WithLabelValues("error").Inc()
		return
	}
	metrics.Exchanges.WithLabelValues("ok").Inc()
}
