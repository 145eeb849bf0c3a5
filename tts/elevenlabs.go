package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultBaseURL = "https://api.elevenlabs.io/v1"

// VoiceSettings are the 0-1 knobs trading expressiveness against
// fidelity to the cloned voice.
type VoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style"`
	UseSpeakerBoost bool    `json:"use_speaker_boost"`
}

// DefaultVoiceSettings favor tonal variation over strict fidelity so
// speech does not sound flat.
var DefaultVoiceSettings = VoiceSettings{
	Stability:       0.3,
	SimilarityBoost: 0.8,
	Style:           0.7,
	UseSpeakerBoost: true,
}

// ElevenLabs is the remote speech-synthesis client. Responses are MP3
// and need a transcode before they can go out on the wire.
type ElevenLabs struct {
	APIKey   string
	VoiceID  string
	ModelID  string
	Settings VoiceSettings

	BaseURL string
	HTTP    *http.Client
}

// NewElevenLabs builds a synthesis client for one voice identity.
func NewElevenLabs(apiKey, voiceID, modelID string) *ElevenLabs {
	return &ElevenLabs{
		APIKey:   apiKey,
		VoiceID:  voiceID,
		ModelID:  modelID,
		Settings: DefaultVoiceSettings,
		BaseURL:  defaultBaseURL,
		HTTP:     &http.Client{Timeout: 60 * time.Second},
	}
}

type synthesisRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings VoiceSettings `json:"voice_settings"`
}

// Synthesize performs one billed synthesis call and returns the raw
// compressed audio. No retry: the call is treated as expensive.
func (e *ElevenLabs) Synthesize(ctx context.Context, text string) ([]byte, error) {
	body, err := json.Marshal(synthesisRequest{
		Text:          text,
		ModelID:       e.ModelID,
		VoiceSettings: e.Settings,
	})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	url := fmt.Sprintf("%s/text-to-speech/%s", e.BaseURL, e.VoiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("xi-api-key", e.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := e.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("synthesis request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("synthesis returned %d: %s", resp.StatusCode, detail)
	}

	return io.ReadAll(resp.Body)
}
