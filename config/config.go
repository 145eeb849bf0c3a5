package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all server configuration
type Config struct {
	Port int

	// WhatsApp Cloud API
	WhatsAppAPIVersion    string
	WhatsAppPhoneNumberID string
	WhatsAppAccessToken   string
	WebhookVerifyToken    string
	AllowedPhones         []string

	// OpenAI
	OpenAIAPIKey  string
	ChatModel     string
	RealtimeModel string
	RealtimeURL   string
	RealtimeVoice string

	// ElevenLabs
	ElevenLabsAPIKey  string
	ElevenLabsVoiceID string
	ElevenLabsModelID string

	// Redis (empty RedisURL selects the in-memory store)
	RedisURL      string
	RedisPassword string
	RedisTTL      time.Duration

	// Behavior
	VoiceMode       string // "realtime" or "transcribe"
	PersonaText     string
	Tone            string
	HistoryWindow   int
	ExchangeTimeout time.Duration
	ChunkSize       int
	FFmpegBin       string
}

const realtimeURLBase = "wss://api.openai.com/v1/realtime"

// LoadConfig loads configuration from environment variables with defaults
func LoadConfig() (*Config, error) {
	// Load .env file if it exists (doesn't error if missing)
	_ = godotenv.Load()

	config := &Config{
		Port:               8080,
		WhatsAppAPIVersion: "v22.0",
		ChatModel:          "gpt-4o",
		RealtimeModel:      "gpt-4o-realtime-preview",
		RealtimeVoice:      "alloy",
		ElevenLabsModelID:  "eleven_multilingual_v2",
		RedisTTL:           24 * time.Hour,
		VoiceMode:          "transcribe",
		Tone:               "warm",
		HistoryWindow:      10,
		ExchangeTimeout:    45 * time.Second,
		ChunkSize:          8192,
		FFmpegBin:          "ffmpeg",
	}

	// Required credentials.
	config.WhatsAppPhoneNumberID = os.Getenv("WHATSAPP_PHONE_NUMBER_ID")
	if config.WhatsAppPhoneNumberID == "" {
		return nil, fmt.Errorf("WHATSAPP_PHONE_NUMBER_ID environment variable is required")
	}
	config.WhatsAppAccessToken = os.Getenv("WHATSAPP_ACCESS_TOKEN")
	if config.WhatsAppAccessToken == "" {
		return nil, fmt.Errorf("WHATSAPP_ACCESS_TOKEN environment variable is required")
	}
	config.WebhookVerifyToken = os.Getenv("WEBHOOK_VERIFY_TOKEN")
	if config.WebhookVerifyToken == "" {
		return nil, fmt.Errorf("WEBHOOK_VERIFY_TOKEN environment variable is required")
	}
	config.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	if config.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required")
	}

	// ElevenLabs is only required in transcribe mode, validated below.
	config.ElevenLabsAPIKey = os.Getenv("ELEVENLABS_API_KEY")
	config.ElevenLabsVoiceID = os.Getenv("ELEVENLABS_VOICE_ID")

	if v := os.Getenv("WHATSAPP_API_VERSION"); v != "" {
		config.WhatsAppAPIVersion = v
	}

	// Optional: ALLOWED_PHONES (comma-separated, empty admits everyone)
	if phones := os.Getenv("ALLOWED_PHONES"); phones != "" {
		for _, p := range strings.Split(phones, ",") {
			if p = strings.TrimSpace(p); p != "" {
				config.AllowedPhones = append(config.AllowedPhones, p)
			}
		}
	}

	if m := os.Getenv("CHAT_MODEL"); m != "" {
		config.ChatModel = m
	}
	if m := os.Getenv("REALTIME_MODEL"); m != "" {
		config.RealtimeModel = m
	}
	if v := os.Getenv("REALTIME_VOICE"); v != "" {
		config.RealtimeVoice = v
	}
	config.RealtimeURL = realtimeURLBase + "?model=" + config.RealtimeModel
	if u := os.Getenv("REALTIME_URL"); u != "" {
		config.RealtimeURL = u
	}

	if m := os.Getenv("ELEVENLABS_MODEL_ID"); m != "" {
		config.ElevenLabsModelID = m
	}

	// Optional: REDIS_URL (host:port)
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		config.RedisURL = redisURL
	}
	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		config.RedisPassword = redisPassword
	}

	// Optional: REDIS_TTL (in hours)
	if ttl := os.Getenv("REDIS_TTL"); ttl != "" {
		t, err := strconv.Atoi(ttl)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_TTL: %w", err)
		}
		config.RedisTTL = time.Duration(t) * time.Hour
	}

	// Optional: VOICE_MODE ("realtime" or "transcribe")
	if mode := os.Getenv("VOICE_MODE"); mode != "" {
		switch mode {
		case "realtime", "transcribe":
			config.VoiceMode = mode
		default:
			return nil, fmt.Errorf("invalid VOICE_MODE: must be 'realtime' or 'transcribe'")
		}
	}
	if config.VoiceMode == "transcribe" {
		if config.ElevenLabsAPIKey == "" {
			return nil, fmt.Errorf("ELEVENLABS_API_KEY environment variable is required in transcribe mode")
		}
		if config.ElevenLabsVoiceID == "" {
			return nil, fmt.Errorf("ELEVENLABS_VOICE_ID environment variable is required in transcribe mode")
		}
	}

	config.PersonaText = os.Getenv("PERSONA_TEXT")
	if tone := os.Getenv("PERSONA_TONE"); tone != "" {
		config.Tone = tone
	}

	// Optional: HISTORY_WINDOW (turns kept per correspondent)
	if window := os.Getenv("HISTORY_WINDOW"); window != "" {
		w, err := strconv.Atoi(window)
		if err != nil || w < 1 {
			return nil, fmt.Errorf("invalid HISTORY_WINDOW: %s", window)
		}
		config.HistoryWindow = w
	}

	// Optional: EXCHANGE_TIMEOUT (in seconds, clamped to 30..60)
	if timeout := os.Getenv("EXCHANGE_TIMEOUT"); timeout != "" {
		t, err := strconv.Atoi(timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid EXCHANGE_TIMEOUT: %w", err)
		}
		if t < 30 {
			t = 30
		}
		if t > 60 {
			t = 60
		}
		config.ExchangeTimeout = time.Duration(t) * time.Second
	}

	// Optional: CHUNK_SIZE (base64 characters per upload event)
	if chunk := os.Getenv("CHUNK_SIZE"); chunk != "" {
		c, err := strconv.Atoi(chunk)
		if err != nil || c < 1 {
			return nil, fmt.Errorf("invalid CHUNK_SIZE: %s", chunk)
		}
		config.ChunkSize = c
	}

	if bin := os.Getenv("FFMPEG_BIN"); bin != "" {
		config.FFmpegBin = bin
	}

	// Optional: PORT
	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT: %w", err)
		}
		config.Port = p
	}

	return config, nil
}
