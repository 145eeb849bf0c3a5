package config

import (
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Setenv("WHATSAPP_PHONE_NUMBER_ID", "12345")
	t.Setenv("WHATSAPP_ACCESS_TOKEN", "token")
	t.Setenv("WEBHOOK_VERIFY_TOKEN", "verify")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("ELEVENLABS_API_KEY", "el-test")
	t.Setenv("ELEVENLABS_VOICE_ID", "voice-1")
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.VoiceMode != "transcribe" {
		t.Errorf("VoiceMode = %q, want transcribe", cfg.VoiceMode)
	}
	if cfg.HistoryWindow != 10 {
		t.Errorf("HistoryWindow = %d, want 10", cfg.HistoryWindow)
	}
	if cfg.ExchangeTimeout != 45*time.Second {
		t.Errorf("ExchangeTimeout = %v, want 45s", cfg.ExchangeTimeout)
	}
	if cfg.ChunkSize != 8192 {
		t.Errorf("ChunkSize = %d, want 8192", cfg.ChunkSize)
	}
	if cfg.RealtimeURL != "wss://api.openai.com/v1/realtime?model=gpt-4o-realtime-preview" {
		t.Errorf("RealtimeURL = %q", cfg.RealtimeURL)
	}
	if len(cfg.AllowedPhones) != 0 {
		t.Errorf("AllowedPhones = %v, want empty", cfg.AllowedPhones)
	}
}

func TestLoadConfigMissingRequired(t *testing.T) {
	setRequired(t)
	t.Setenv("OPENAI_API_KEY", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for missing OPENAI_API_KEY")
	}
}

func TestLoadConfigElevenLabsOptionalInRealtimeMode(t *testing.T) {
	setRequired(t)
	t.Setenv("ELEVENLABS_API_KEY", "")
	t.Setenv("ELEVENLABS_VOICE_ID", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error without ElevenLabs credentials in transcribe mode")
	}

	t.Setenv("VOICE_MODE", "realtime")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig in realtime mode: %v", err)
	}
	if cfg.VoiceMode != "realtime" {
		t.Errorf("VoiceMode = %q", cfg.VoiceMode)
	}
}

func TestLoadConfigAllowedPhones(t *testing.T) {
	setRequired(t)
	t.Setenv("ALLOWED_PHONES", "31612345678, 31687654321 ,")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	want := []string{"31612345678", "31687654321"}
	if len(cfg.AllowedPhones) != len(want) {
		t.Fatalf("AllowedPhones = %v, want %v", cfg.AllowedPhones, want)
	}
	for i := range want {
		if cfg.AllowedPhones[i] != want[i] {
			t.Errorf("AllowedPhones[%d] = %q, want %q", i, cfg.AllowedPhones[i], want[i])
		}
	}
}

func TestLoadConfigExchangeTimeoutClamped(t *testing.T) {
	setRequired(t)

	cases := []struct {
		env  string
		want time.Duration
	}{
		{"10", 30 * time.Second},
		{"50", 50 * time.Second},
		{"120", 60 * time.Second},
	}
	for _, tc := range cases {
		t.Setenv("EXCHANGE_TIMEOUT", tc.env)
		cfg, err := LoadConfig()
		if err != nil {
			t.Fatalf("LoadConfig with EXCHANGE_TIMEOUT=%s: %v", tc.env, err)
		}
		if cfg.ExchangeTimeout != tc.want {
			t.Errorf("EXCHANGE_TIMEOUT=%s: got %v, want %v", tc.env, cfg.ExchangeTimeout, tc.want)
		}
	}
}

func TestLoadConfigInvalidVoiceMode(t *testing.T) {
	setRequired(t)
	t.Setenv("VOICE_MODE", "telepathy")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for invalid VOICE_MODE")
	}
}
