package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"saman-voice/agent"
	"saman-voice/audio"
	"saman-voice/bot"
	"saman-voice/config"
	"saman-voice/convo"
	"saman-voice/realtime"
	"saman-voice/server"
	"saman-voice/tts"
	"saman-voice/whatsapp"

	"github.com/redis/go-redis/v9"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	instructions := agent.Instructions(cfg.PersonaText, cfg.Tone)
	store := newStore(cfg, instructions)

	transcoder := audio.NewFFmpeg(cfg.FFmpegBin)
	chat := agent.NewClient(cfg.OpenAIAPIKey, cfg.ChatModel)
	exchanger := realtime.NewClient(cfg.OpenAIAPIKey, cfg.RealtimeURL, cfg.RealtimeVoice, transcoder,
		realtime.WithTimeout(cfg.ExchangeTimeout),
		realtime.WithChunkSize(cfg.ChunkSize),
	)
	synth := tts.NewPipeline(tts.NewElevenLabs(cfg.ElevenLabsAPIKey, cfg.ElevenLabsVoiceID, cfg.ElevenLabsModelID), transcoder)
	messenger := whatsapp.NewClient(cfg.WhatsAppAPIVersion, cfg.WhatsAppPhoneNumberID, cfg.WhatsAppAccessToken)

	handler := bot.NewHandler(messenger, store, chat, chat, synth, exchanger, bot.Config{
		AllowedPhones: cfg.AllowedPhones,
		VoiceMode:     cfg.VoiceMode,
		Persona:       cfg.PersonaText,
		Tone:          cfg.Tone,
	})

	srv := server.NewServer(cfg, handler)

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println("\nReceived shutdown signal...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	log.Printf("🎙️ Voice mode: %s", cfg.VoiceMode)
	if err := srv.Start(); err != nil && err.Error() != "http: Server closed" {
		log.Fatalf("Server error: %v", err)
	}

	log.Println("Server stopped")
}

// newStore prefers Redis when configured and reachable, with an
// in-memory fallback so the bot still works without it.
func newStore(cfg *config.Config, instructions string) convo.Store {
	if cfg.RedisURL == "" {
		log.Println("💾 Using in-memory conversation store")
		return convo.NewMemoryStore(instructions, cfg.HistoryWindow)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPassword,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("⚠️ Redis unreachable (%v), falling back to in-memory store", err)
		return convo.NewMemoryStore(instructions, cfg.HistoryWindow)
	}

	log.Printf("💾 Using Redis conversation store at %s", cfg.RedisURL)
	return convo.NewRedisStore(client, instructions, cfg.HistoryWindow, cfg.RedisTTL)
}
